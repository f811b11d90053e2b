package codec

import (
	"testing"
	"time"
)

func TestTemp(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    Temperature
		wantErr bool
	}{
		{name: "positive", in: "07D0", want: Known(20.0)},
		{name: "fractional", in: "0866", want: Known(21.5)},
		{name: "negative", in: "FF9C", want: Known(-1.0)},
		{name: "absent 7FFF", in: "7FFF", want: AbsentTemp},
		{name: "absent 31FF", in: "31FF", want: AbsentTemp},
		{name: "off is not absent", in: "7EFF", want: OffTemp},
		{name: "too short", in: "7D", wantErr: true},
		{name: "not hex", in: "07GX", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Temp(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Temp(%q) = %v, expected error", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Temp(%q) failed: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("Temp(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestTempRoundTrip(t *testing.T) {
	for _, temp := range []Temperature{
		Known(20.0), Known(5.0), Known(-2.5), Known(35.0), AbsentTemp, OffTemp,
	} {
		got, err := Temp(TempToHex(temp))
		if err != nil {
			t.Fatalf("round trip of %v failed: %v", temp, err)
		}
		if got != temp {
			t.Errorf("round trip of %v = %v", temp, got)
		}
	}
}

func TestPercent(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    float64
		absent  bool
		wantErr bool
	}{
		{name: "zero", in: "00", want: 0},
		{name: "half", in: "64", want: 0.5},
		{name: "full scale", in: "C8", want: 1.0},
		{name: "over full scale faults", in: "C9", wantErr: true},
		{name: "absent EF", in: "EF", absent: true},
		{name: "absent FE", in: "FE", absent: true},
		{name: "absent FF", in: "FF", absent: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Percent(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Percent(%q) = %v, expected error", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Percent(%q) failed: %v", tt.in, err)
			}
			if tt.absent {
				if got != nil {
					t.Fatalf("Percent(%q) = %v, want absent", tt.in, *got)
				}
				return
			}
			if got == nil || *got != tt.want {
				t.Errorf("Percent(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestBool(t *testing.T) {
	if b, err := Bool("00"); err != nil || b == nil || *b {
		t.Errorf("Bool(00) = %v, %v", b, err)
	}
	if b, err := Bool("C8"); err != nil || b == nil || !*b {
		t.Errorf("Bool(C8) = %v, %v", b, err)
	}
	if b, err := Bool("FF"); err != nil || b != nil {
		t.Errorf("Bool(FF) = %v, %v, want absent", b, err)
	}
	if _, err := Bool("01"); err == nil {
		t.Error("Bool(01) should fault")
	}
}

func TestDate(t *testing.T) {
	got, err := Date("1F0C07E5")
	if err != nil {
		t.Fatalf("Date failed: %v", err)
	}
	if got == nil || *got != "2021-12-31" {
		t.Errorf("Date(1F0C07E5) = %v, want 2021-12-31", got)
	}

	// Day-of-week bits in the day byte are masked off.
	got, err = Date("7F0C07E5")
	if err != nil {
		t.Fatalf("Date with dow bits failed: %v", err)
	}
	if got == nil || *got != "2021-12-31" {
		t.Errorf("Date(7F0C07E5) = %v, want 2021-12-31", got)
	}

	if got, err := Date("FFFFFFFF"); err != nil || got != nil {
		t.Errorf("Date(FFFFFFFF) = %v, %v, want absent", got, err)
	}
	if _, err := Date("1F0D07E5"); err == nil {
		t.Error("month 13 should fault")
	}
}

func TestStr(t *testing.T) {
	got, err := Str("4D61696E205A6F6E65000000")
	if err != nil {
		t.Fatalf("Str failed: %v", err)
	}
	if got == nil || *got != "Main Zone" {
		t.Errorf("Str = %v, want Main Zone", got)
	}
	if got, err := Str("0000000000"); err != nil || got != nil {
		t.Errorf("all-NUL Str = %v, %v, want absent", got, err)
	}
}

func TestDouble(t *testing.T) {
	got, err := Double("0834", 100)
	if err != nil {
		t.Fatalf("Double failed: %v", err)
	}
	if got == nil || *got != 21.0 {
		t.Errorf("Double(0834, 100) = %v, want 21.0", got)
	}
	if got, err := Double("7FFF", 1); err != nil || got != nil {
		t.Errorf("Double(7FFF) = %v, %v, want absent", got, err)
	}
	if _, err := Double("8000", 1); err == nil {
		t.Error("Double above 32766 should fault")
	}
}

func TestFlags8(t *testing.T) {
	bits, err := Flags8("81")
	if err != nil {
		t.Fatalf("Flags8 failed: %v", err)
	}
	want := [8]uint8{1, 0, 0, 0, 0, 0, 0, 1}
	if bits != want {
		t.Errorf("Flags8(81) = %v, want %v", bits, want)
	}
}

func TestDateTime(t *testing.T) {
	when := time.Date(2022, 3, 15, 13, 45, 0, 0, time.UTC)
	enc, err := DateTimeToHex(when, 12)
	if err != nil {
		t.Fatalf("DateTimeToHex failed: %v", err)
	}
	got, err := DateTime(enc)
	if err != nil {
		t.Fatalf("DateTime(%q) failed: %v", enc, err)
	}
	if got == nil || !got.Equal(when) {
		t.Errorf("round trip = %v, want %v", got, when)
	}

	// 14-char form carries seconds.
	when = time.Date(2022, 3, 15, 13, 45, 30, 0, time.UTC)
	enc, err = DateTimeToHex(when, 14)
	if err != nil {
		t.Fatalf("DateTimeToHex failed: %v", err)
	}
	got, err = DateTime(enc)
	if err != nil {
		t.Fatalf("DateTime(%q) failed: %v", enc, err)
	}
	if got == nil || !got.Equal(when) {
		t.Errorf("round trip with seconds = %v, want %v", got, when)
	}

	if got, err := DateTime("FF0C1F0307E6"); err != nil || got != nil {
		t.Errorf("DateTime with FF minute = %v, %v, want absent", got, err)
	}
}

func TestTimestampRoundTrip(t *testing.T) {
	when := time.Date(2021, 11, 27, 18, 9, 3, 0, time.UTC)
	got, err := Timestamp(TimestampToHex(when))
	if err != nil {
		t.Fatalf("Timestamp round trip failed: %v", err)
	}
	if got == nil || *got != "2021-11-27 18:09:03" {
		t.Errorf("Timestamp round trip = %v, want 2021-11-27 18:09:03", got)
	}
}
