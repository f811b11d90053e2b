package frame

import "testing"

func TestParseVerb(t *testing.T) {
	tests := []struct {
		in      string
		want    Verb
		wantErr bool
	}{
		{"I", I, false},
		{" I", I, false},
		{"RQ", RQ, false},
		{"RP", RP, false},
		{"W", W, false},
		{" W", W, false},
		{"XX", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseVerb(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseVerb(%q) err = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseVerb(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestResponder(t *testing.T) {
	if RQ.Responder() != RP {
		t.Error("RQ should be answered by RP")
	}
	if W.Responder() != I {
		t.Error("W should be answered by I")
	}
}

func TestParseAddrs(t *testing.T) {
	tests := []struct {
		name       string
		a0, a1, a2 string
		src, dst   string
		wantErr    bool
	}{
		{"directed", "18:000730", "01:145038", "--:------", "18:000730", "01:145038", false},
		{"broadcast", "01:145038", "--:------", "01:145038", "01:145038", "01:145038", false},
		{"announcement", "--:------", "--:------", "13:163733", "13:163733", "13:163733", false},
		{"three populated", "18:000730", "01:145038", "13:163733", "", "", true},
		{"all empty", "--:------", "--:------", "--:------", "", "", true},
		{"malformed", "1:145038", "--:------", "--:------", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, dst, _, err := ParseAddrs(tt.a0, tt.a1, tt.a2)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v", err)
			}
			if err != nil {
				return
			}
			if src.ID != tt.src || dst.ID != tt.dst {
				t.Errorf("src/dst = %s/%s, want %s/%s", src, dst, tt.src, tt.dst)
			}
		})
	}
}

func TestHeaderUsesCounterpartyForGateway(t *testing.T) {
	f := mustParse(t, "RQ --- 18:000730 01:145038 --:------ 30C9 001 00")
	if got := f.Header(); got != "RQ|01:145038|30C9" {
		t.Errorf("Header() = %q", got)
	}
	if got := f.RxHeader(); got != "RP|01:145038|30C9" {
		t.Errorf("RxHeader() = %q", got)
	}

	// Gateway on the receiving end: still keyed by the counterparty.
	rp := mustParse(t, "RP --- 01:145038 18:000730 --:------ 30C9 003 0107D0")
	if got := rp.Header(); got != "RP|01:145038|30C9" {
		t.Errorf("Header() = %q", got)
	}
}

func TestRxHeaderOnlyForAnsweredVerbs(t *testing.T) {
	f := mustParse(t, " I --- 01:145038 --:------ 01:145038 2309 003 0107D0")
	if got := f.RxHeader(); got != "" {
		t.Errorf("RxHeader() = %q, want empty for I", got)
	}
}

func TestIDToHexRoundTrip(t *testing.T) {
	tests := []struct {
		id  string
		hex string
	}{
		{"01:145038", "06368E"},
		{"18:000730", "4802DA"},
		{"63:262142", "FFFFFE"},
	}
	for _, tt := range tests {
		hex, err := IDToHex(tt.id)
		if err != nil {
			t.Errorf("IDToHex(%q): %v", tt.id, err)
			continue
		}
		if hex != tt.hex {
			t.Errorf("IDToHex(%q) = %q, want %q", tt.id, hex, tt.hex)
		}
		id, err := HexToID(hex)
		if err != nil {
			t.Errorf("HexToID(%q): %v", hex, err)
			continue
		}
		if id != tt.id {
			t.Errorf("round trip %q -> %q -> %q", tt.id, hex, id)
		}
	}
}

func TestIDToHexRejectsNonDevice(t *testing.T) {
	if _, err := IDToHex(NonDeviceID); err == nil {
		t.Error("expected an error for the non-device address")
	}
}

func TestParsePacketLineRSSI(t *testing.T) {
	f := mustParse(t, "045 RP --- 13:163733 18:000730 --:------ 0008 002 00C8")
	if f.Code != "0008" || f.Payload != "00C8" {
		t.Errorf("frame = %+v", f)
	}
}

func TestParsePacketLineLengthMismatch(t *testing.T) {
	if _, err := ParsePacketLine("RP --- 13:163733 18:000730 --:------ 0008 003 00C8"); err == nil {
		t.Error("expected an error for a length field mismatch")
	}
}

func TestFrameStringRoundTrip(t *testing.T) {
	line := " W --- 18:000730 01:145038 --:------ 2349 007 0105DC04FFFFFF"
	f := mustParse(t, line)
	if got := f.String(); got != line {
		t.Errorf("String() = %q, want %q", got, line)
	}
	if !f.IsValid() {
		t.Error("round-tripped frame should be valid")
	}
}

func mustParse(t *testing.T, line string) *Frame {
	t.Helper()
	f, err := ParsePacketLine(line)
	if err != nil {
		t.Fatalf("ParsePacketLine(%q): %v", line, err)
	}
	return f
}
