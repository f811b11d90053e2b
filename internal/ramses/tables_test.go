package ramses

import (
	"testing"

	"github.com/evohub/ramses/internal/frame"
)

func TestTablesLoad(t *testing.T) {
	for _, code := range []frame.Code{
		CodeSetpoint, CodeZoneMode, CodeSystemFault, CodeOpenTherm, CodePuzzle,
	} {
		if !KnownCode(code) {
			t.Errorf("code %s missing from tables", code)
		}
	}
	if KnownCode("DEAD") {
		t.Error("code DEAD should be unknown")
	}
}

func TestPayloadPatterns(t *testing.T) {
	tests := []struct {
		code    frame.Code
		verb    frame.Verb
		payload string
		ok      bool
	}{
		{CodeSetpoint, frame.W, "0107D0", true},
		{CodeSetpoint, frame.W, "0107", false},
		{CodeSetpoint, frame.I, "0007D0010640", true}, // controller array
		{CodeRelayDemand, frame.I, "FC00", true},
		{CodeRelayDemand, frame.I, "0000C8", false},
		{CodeZoneMode, frame.W, "0107D004FFFFFF0B0C1F0307E6", true},
		{CodeZoneMode, frame.W, "0107D002FFFFFF", true},
		{CodeSystemFault, frame.RQ, "000000", true},
		{CodeOpenTherm, frame.RQ, "0080730000", true},
		{CodeDateTime, frame.W, "00601E0D0F0307E6", false}, // one byte short
	}
	for _, tt := range tests {
		info, ok := Lookup(tt.code)
		if !ok {
			t.Fatalf("code %s missing", tt.code)
		}
		re := info.Pattern(tt.verb)
		if re == nil {
			t.Fatalf("code %s has no pattern for verb %q", tt.code, tt.verb)
		}
		if got := re.MatchString(tt.payload); got != tt.ok {
			t.Errorf("%s/%s payload %q: match = %v, want %v",
				tt.code, tt.verb, tt.payload, got, tt.ok)
		}
	}
}

func TestCanSend(t *testing.T) {
	if !CanSend("01", CodeSetpoint, frame.I) {
		t.Error("controller should broadcast setpoints")
	}
	if CanSend("13", CodeSetpoint, frame.I) {
		t.Error("a relay has no business sending setpoints")
	}
	// The gateway type is only checked for code validity.
	if !CanSend("18", CodeSetpoint, frame.W) {
		t.Error("gateway writes should pass the looser check")
	}
	if CanSend("18", "DEAD", frame.W) {
		t.Error("gateway with unknown code should fail")
	}
}

func TestCanReceive(t *testing.T) {
	// a relay answers RP/3EF1, so it may be probed with RQ/3EF1
	if !CanReceive("13", CodeActuatorCycle, frame.RQ) {
		t.Error("a relay should accept RQ/3EF1")
	}
	// a DHW sensor never answers a temperature request
	if CanReceive("07", CodeTemperature, frame.RQ) {
		t.Error("a DHW sensor has no RP role for 30C9")
	}
}

func TestExceptions(t *testing.T) {
	// exceptions are keyed on the destination device type
	if !IsException("01", frame.RQ, CodeActuatorCycle) {
		t.Error("RQ/3EF1 to a controller should be exempt from the destination check")
	}
	if !IsException("13", frame.RQ, CodeActuatorState) {
		t.Error("RQ/3EF0 to a relay should be exempt")
	}
	// The W/0001 exemption applies regardless of destination.
	if !IsException("04", frame.W, CodeRFUnknown) {
		t.Error("W/0001 should be exempt for any destination")
	}
	if IsException("13", frame.RQ, CodeActuatorCycle) {
		t.Error("RQ/3EF1 to a relay is not an exception")
	}
}

func TestModeMaps(t *testing.T) {
	if ZoneModeMap["04"] != ZoneModeTemporary {
		t.Errorf("mode 04 = %q", ZoneModeMap["04"])
	}
	if ZoneModeHex[ZoneModeTemporary] != "04" {
		t.Errorf("inverse map broken: %q", ZoneModeHex[ZoneModeTemporary])
	}
	if SystemModeMap["03"] != "away" {
		t.Errorf("system mode 03 = %q", SystemModeMap["03"])
	}
}
