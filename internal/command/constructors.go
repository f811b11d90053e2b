package command

import (
	"fmt"
	"math/bits"
	"strconv"
	"strings"
	"time"

	"github.com/evohub/ramses/internal/codec"
	"github.com/evohub/ramses/internal/frame"
	"github.com/evohub/ramses/internal/ramses"
)

// zoneIndex normalises a zone argument to its 2-hex wire form. Accepts a
// hex index 00..0F, the stored hot water pseudo-zone FA, or the alias "HW".
func zoneIndex(zone string) (string, error) {
	if strings.EqualFold(zone, "HW") {
		return "FA", nil
	}
	v, err := strconv.ParseUint(zone, 16, 8)
	if err != nil {
		return "", NewInvalidArgsError("zone index %q", zone)
	}
	if v > 0x0F && v != 0xFA {
		return "", NewInvalidArgsError("zone index %q out of range", zone)
	}
	return fmt.Sprintf("%02X", v), nil
}

// normaliseZoneMode resolves an optional mode name against the other
// override arguments, inferring the mode when only a target was given.
func normaliseZoneMode(mode *string, hasTarget bool, until *time.Time, duration *time.Duration) (string, error) {
	if mode == nil && !hasTarget {
		return "", NewInvalidArgsError("a mode or a target is required")
	}
	var name string
	if mode == nil {
		switch {
		case until != nil:
			name = ramses.ZoneModeTemporary
		case duration != nil:
			name = ramses.ZoneModeCountdown
		default:
			name = ramses.ZoneModePermanent
		}
	} else {
		name = *mode
		if _, ok := ramses.ZoneModeHex[name]; !ok {
			return "", NewInvalidArgsError("unknown mode %q", name)
		}
	}
	if name != ramses.ZoneModeFollow && !hasTarget {
		return "", NewInvalidArgsError("mode %q requires a target", name)
	}
	return name, nil
}

// normaliseDuration enforces which expiry arguments each mode takes. A
// temporary override without an until downgrades to an advanced override.
func normaliseDuration(name string, until *time.Time, duration *time.Duration) (string, error) {
	switch name {
	case ramses.ZoneModeTemporary:
		if duration != nil {
			return "", NewInvalidArgsError("temporary override takes an until, not a duration")
		}
		if until == nil {
			name = ramses.ZoneModeAdvanced
		}
	case ramses.ZoneModeCountdown:
		if duration == nil {
			return "", NewInvalidArgsError("countdown override requires a duration")
		}
		if until != nil {
			return "", NewInvalidArgsError("countdown override takes a duration, not an until")
		}
	default:
		if until != nil || duration != nil {
			return "", NewInvalidArgsError("mode %q takes neither an until nor a duration", name)
		}
	}
	return name, nil
}

func tempHex(setpoint *float64) string {
	if setpoint == nil {
		return codec.TempToHex(codec.AbsentTemp)
	}
	return codec.TempToHex(codec.Known(*setpoint))
}

// GetDHWMode requests the stored hot water override state.
func GetDHWMode(ctlID string) (*Command, error) {
	return New(frame.RQ, "1F41", "00", ctlID)
}

// SetDHWMode overrides the stored hot water state. With a nil mode the
// override kind is inferred the same way as for zones: an until makes it
// temporary, a duration a countdown, neither a permanent override.
func SetDHWMode(ctlID string, active *bool, mode *string, until *time.Time, duration *time.Duration) (*Command, error) {
	name, err := normaliseZoneMode(mode, active != nil, until, duration)
	if err != nil {
		return nil, err
	}
	name, err = normaliseDuration(name, until, duration)
	if err != nil {
		return nil, err
	}

	activeByte := "00"
	if active != nil && *active {
		activeByte = "01"
	}
	durHex := "FFFFFF"
	if name == ramses.ZoneModeCountdown {
		minutes := int(duration.Minutes())
		if minutes < 1 || minutes > 0xFFFFFF {
			return nil, NewInvalidArgsError("duration %v out of range", *duration)
		}
		durHex = fmt.Sprintf("%06X", minutes)
	}
	payload := "00" + activeByte + ramses.ZoneModeHex[name] + durHex
	if until != nil {
		suffix, err := codec.DateTimeToHex(*until, 12)
		if err != nil {
			return nil, NewInvalidArgsError("until: %v", err)
		}
		payload += suffix
	}
	return New(frame.W, "1F41", payload, ctlID)
}

// GetDHWParams requests the stored hot water setpoint, overrun and
// differential.
func GetDHWParams(ctlID string) (*Command, error) {
	return New(frame.RQ, "10A0", "00", ctlID)
}

// SetDHWParams writes the stored hot water parameters.
func SetDHWParams(ctlID string, setpoint float64, overrun int, differential float64) (*Command, error) {
	if setpoint < 30 || setpoint > 85 {
		return nil, NewInvalidArgsError("setpoint %v out of range 30..85", setpoint)
	}
	if overrun < 0 || overrun > 10 {
		return nil, NewInvalidArgsError("overrun %d out of range 0..10", overrun)
	}
	if differential < 1 || differential > 10 {
		return nil, NewInvalidArgsError("differential %v out of range 1..10", differential)
	}
	payload := fmt.Sprintf("00%s%02X%s",
		codec.TempToHex(codec.Known(setpoint)), overrun,
		codec.TempToHex(codec.Known(differential)))
	return New(frame.W, "10A0", payload, ctlID)
}

// GetDHWTemp requests the stored hot water temperature.
func GetDHWTemp(ctlID string) (*Command, error) {
	return New(frame.RQ, "1260", "00", ctlID)
}

// GetMixValveParams requests a mixing valve zone's parameters.
func GetMixValveParams(ctlID, zone string) (*Command, error) {
	idx, err := zoneIndex(zone)
	if err != nil {
		return nil, err
	}
	return New(frame.RQ, "1030", idx+"00", ctlID)
}

// SetMixValveParams writes a mixing valve zone's parameters. Flow setpoints
// are whole degrees, run times whole seconds.
func SetMixValveParams(ctlID, zone string, maxFlowSetpoint, minFlowSetpoint, valveRunTime, pumpRunTime int) (*Command, error) {
	idx, err := zoneIndex(zone)
	if err != nil {
		return nil, err
	}
	if maxFlowSetpoint < 0 || maxFlowSetpoint > 99 {
		return nil, NewInvalidArgsError("max flow setpoint %d out of range 0..99", maxFlowSetpoint)
	}
	if minFlowSetpoint < 0 || minFlowSetpoint > 50 {
		return nil, NewInvalidArgsError("min flow setpoint %d out of range 0..50", minFlowSetpoint)
	}
	if valveRunTime < 0 || valveRunTime > 240 {
		return nil, NewInvalidArgsError("valve run time %d out of range 0..240", valveRunTime)
	}
	if pumpRunTime < 0 || pumpRunTime > 99 {
		return nil, NewInvalidArgsError("pump run time %d out of range 0..99", pumpRunTime)
	}
	payload := fmt.Sprintf("%sC801%02XC901%02XCA01%02XCB01%02XCC0101",
		idx, maxFlowSetpoint, minFlowSetpoint, valveRunTime, pumpRunTime)
	return New(frame.W, "1030", payload, ctlID)
}

// GetOpenThermData requests one OpenTherm data id via the bridge. The high
// bit of the flags byte carries the parity of the rest of the request.
func GetOpenThermData(otbID string, msgID int) (*Command, error) {
	if msgID < 0 || msgID > 0xFF {
		return nil, NewInvalidArgsError("data id %d out of range", msgID)
	}
	flags := "00"
	if bits.OnesCount8(uint8(msgID))%2 != 0 {
		flags = "80"
	}
	return New(frame.RQ, "3220", fmt.Sprintf("00%s%02X0000", flags, msgID), otbID)
}

// scheduleHeader is the fixed request prefix for a schedule exchange: the
// hot water pseudo-zone uses its own fragment-set marker.
func scheduleHeader(idx string) string {
	if idx == "FA" {
		return "0023000800"
	}
	return idx + "20000800"
}

// GetScheduleFragment requests one fragment of a zone or hot water
// schedule. Fragment numbering on the wire is 1-based.
func GetScheduleFragment(ctlID, zone string, fragIdx, fragCnt int) (*Command, error) {
	idx, err := zoneIndex(zone)
	if err != nil {
		return nil, err
	}
	if fragIdx < 0 || fragCnt < 0 || fragCnt > 0xFF || fragIdx+1 > 0xFF {
		return nil, NewInvalidArgsError("fragment %d/%d out of range", fragIdx, fragCnt)
	}
	payload := fmt.Sprintf("%s%02X%02X", scheduleHeader(idx), fragIdx+1, fragCnt)
	return New(frame.RQ, "0404", payload, ctlID)
}

// PutScheduleFragment writes one fragment of a compressed schedule. The
// fragment is the hex text of the fragment bytes.
func PutScheduleFragment(ctlID, zone string, fragNum, fragCnt int, fragment string) (*Command, error) {
	idx, err := zoneIndex(zone)
	if err != nil {
		return nil, err
	}
	if fragment == "" || len(fragment)%2 != 0 {
		return nil, NewInvalidArgsError("fragment must be a non-empty even-length hex string")
	}
	if fragNum < 1 || fragNum > fragCnt || fragCnt > 0xFF {
		return nil, NewInvalidArgsError("fragment %d/%d out of range", fragNum, fragCnt)
	}
	payload := fmt.Sprintf("%s%02X%02X%02X%s",
		scheduleHeader(idx)[:8], len(fragment)/2, fragNum, fragCnt,
		strings.ToUpper(fragment))
	return New(frame.W, "0404", payload, ctlID)
}

// GetSystemLanguage requests the system UI language.
func GetSystemLanguage(ctlID string) (*Command, error) {
	return New(frame.RQ, "0100", "00", ctlID)
}

// GetLogEntry requests one fault log entry by its log index, 0 being the
// most recent.
func GetLogEntry(ctlID string, logIdx int) (*Command, error) {
	if logIdx < 0 || logIdx > 0x3F {
		return nil, NewInvalidArgsError("log index %d out of range 0..63", logIdx)
	}
	return New(frame.RQ, "0418", fmt.Sprintf("%06X", logIdx), ctlID)
}

// GetSystemMode requests the system mode.
func GetSystemMode(ctlID string) (*Command, error) {
	return New(frame.RQ, "2E04", "FF", ctlID)
}

// SetSystemMode overrides the system mode. Auto, auto-with-reset and
// heat-off are latching; every other mode runs until a given moment.
func SetSystemMode(ctlID, mode string, until *time.Time) (*Command, error) {
	modeHex, ok := ramses.SystemModeHex[mode]
	if !ok {
		return nil, NewInvalidArgsError("unknown system mode %q", mode)
	}
	switch mode {
	case "auto", "auto_with_reset", "heat_off":
		if until != nil {
			return nil, NewInvalidArgsError("mode %q takes no until", mode)
		}
	default:
		if until == nil {
			return nil, NewInvalidArgsError("mode %q requires an until", mode)
		}
	}

	dtm, perm := "FFFFFFFFFFFF", "00"
	if until != nil {
		var err error
		dtm, err = codec.DateTimeToHex(*until, 12)
		if err != nil {
			return nil, NewInvalidArgsError("until: %v", err)
		}
		perm = "01"
	}
	return New(frame.W, "2E04", modeHex+dtm+perm, ctlID)
}

// GetSystemTime requests the system wall clock.
func GetSystemTime(ctlID string) (*Command, error) {
	return New(frame.RQ, "313F", "00", ctlID)
}

// SetSystemTime writes the system wall clock.
func SetSystemTime(ctlID string, t time.Time) (*Command, error) {
	dtm, err := codec.DateTimeToHex(t, 14)
	if err != nil {
		return nil, NewInvalidArgsError("datetime: %v", err)
	}
	return New(frame.W, "313F", "0060"+dtm, ctlID)
}

// GetTPIParams requests the boiler relay's TPI cycling parameters.
func GetTPIParams(ctlID string) (*Command, error) {
	return New(frame.RQ, "1100", ramses.DomainHtgControl, ctlID)
}

// SetTPIParams writes the boiler relay's TPI cycling parameters. On/off
// times are minutes, stored in quarter-minute units; the proportional band
// width may be left nil.
func SetTPIParams(ctlID string, cycleRate int, minOnTime, minOffTime float64, proportionalBandWidth *float64) (*Command, error) {
	switch cycleRate {
	case 3, 6, 9, 12:
	default:
		return nil, NewInvalidArgsError("cycle rate %d must be 3, 6, 9 or 12", cycleRate)
	}
	if minOnTime < 1 || minOnTime > 5 {
		return nil, NewInvalidArgsError("min on time %v out of range 1..5", minOnTime)
	}
	if minOffTime < 1 || minOffTime > 5 {
		return nil, NewInvalidArgsError("min off time %v out of range 1..5", minOffTime)
	}
	band := codec.AbsentTemp
	if proportionalBandWidth != nil {
		if *proportionalBandWidth < 1.5 || *proportionalBandWidth > 3.0 {
			return nil, NewInvalidArgsError("proportional band width %v out of range 1.5..3.0", *proportionalBandWidth)
		}
		band = codec.Known(*proportionalBandWidth)
	}
	payload := fmt.Sprintf("%s%02X%02X%02XFF%s01",
		ramses.DomainHtgControl, cycleRate*4,
		int(minOnTime*4), int(minOffTime*4), codec.TempToHex(band))
	return New(frame.W, "1100", payload, ctlID)
}

// GetZoneConfig requests a zone's setpoint bounds and option bits.
func GetZoneConfig(ctlID, zone string) (*Command, error) {
	idx, err := zoneIndex(zone)
	if err != nil {
		return nil, err
	}
	return New(frame.RQ, "000A", idx+"00", ctlID)
}

// SetZoneConfig writes a zone's setpoint bounds and option bits. The bitmap
// stores each option inverted: a zero bit means the option is enabled.
func SetZoneConfig(ctlID, zone string, minTemp, maxTemp float64, localOverride, openWindow, multiroomMode bool) (*Command, error) {
	idx, err := zoneIndex(zone)
	if err != nil {
		return nil, err
	}
	if minTemp < 5 || minTemp > 21 {
		return nil, NewInvalidArgsError("min temp %v out of range 5..21", minTemp)
	}
	if maxTemp < 21 || maxTemp > 35 {
		return nil, NewInvalidArgsError("max temp %v out of range 21..35", maxTemp)
	}

	bitmap := 0
	if !localOverride {
		bitmap |= 1
	}
	if !openWindow {
		bitmap |= 2
	}
	if !multiroomMode {
		bitmap |= 16
	}
	payload := fmt.Sprintf("%s%02X%s%s", idx, bitmap,
		codec.TempToHex(codec.Known(minTemp)), codec.TempToHex(codec.Known(maxTemp)))
	return New(frame.W, "000A", payload, ctlID)
}

// GetZoneMode requests a zone's override state.
func GetZoneMode(ctlID, zone string) (*Command, error) {
	idx, err := zoneIndex(zone)
	if err != nil {
		return nil, err
	}
	return New(frame.RQ, "2349", idx+"00", ctlID)
}

// SetZoneMode overrides a zone's setpoint. With a nil mode the override
// kind is inferred: an until makes it temporary, a duration a countdown,
// neither a permanent override.
func SetZoneMode(ctlID, zone string, setpoint *float64, mode *string, until *time.Time, duration *time.Duration) (*Command, error) {
	idx, err := zoneIndex(zone)
	if err != nil {
		return nil, err
	}
	name, err := normaliseZoneMode(mode, setpoint != nil, until, duration)
	if err != nil {
		return nil, err
	}
	name, err = normaliseDuration(name, until, duration)
	if err != nil {
		return nil, err
	}

	durHex := "FFFFFF"
	if name == ramses.ZoneModeCountdown {
		minutes := int(duration.Minutes())
		if minutes < 1 || minutes > 0xFFFFFF {
			return nil, NewInvalidArgsError("duration %v out of range", *duration)
		}
		durHex = fmt.Sprintf("%06X", minutes)
	}
	payload := idx + tempHex(setpoint) + ramses.ZoneModeHex[name] + durHex
	if until != nil {
		suffix, err := codec.DateTimeToHex(*until, 12)
		if err != nil {
			return nil, NewInvalidArgsError("until: %v", err)
		}
		payload += suffix
	}
	return New(frame.W, "2349", payload, ctlID)
}

// GetZoneName requests a zone's display name.
func GetZoneName(ctlID, zone string) (*Command, error) {
	idx, err := zoneIndex(zone)
	if err != nil {
		return nil, err
	}
	return New(frame.RQ, "0004", idx+"00", ctlID)
}

// SetZoneName writes a zone's display name, up to 20 characters.
func SetZoneName(ctlID, zone, name string) (*Command, error) {
	idx, err := zoneIndex(zone)
	if err != nil {
		return nil, err
	}
	if name == "" || len(name) > 20 {
		return nil, NewInvalidArgsError("zone name must be 1..20 characters")
	}
	padded := codec.StrToHex(name)
	padded += strings.Repeat("0", 40-len(padded))
	return New(frame.W, "0004", idx+"00"+padded, ctlID)
}

// SetZoneSetpoint writes a zone's setpoint directly, without an override
// mode: the controller treats it as a permanent override.
func SetZoneSetpoint(ctlID, zone string, setpoint float64) (*Command, error) {
	idx, err := zoneIndex(zone)
	if err != nil {
		return nil, err
	}
	return New(frame.W, "2309", idx+codec.TempToHex(codec.Known(setpoint)), ctlID)
}

// GetZoneTemp requests a zone's measured temperature.
func GetZoneTemp(ctlID, zone string) (*Command, error) {
	idx, err := zoneIndex(zone)
	if err != nil {
		return nil, err
	}
	return New(frame.RQ, "30C9", idx, ctlID)
}

// GetWindowState requests a zone's open-window state.
func GetWindowState(ctlID, zone string) (*Command, error) {
	idx, err := zoneIndex(zone)
	if err != nil {
		return nil, err
	}
	return New(frame.RQ, "12B0", idx, ctlID)
}

// PutActuatorCycle answers an actuator-cycle request on behalf of a relay,
// for bridging devices that are not on the RF bus.
func PutActuatorCycle(srcID, dstID string, modulationLevel float64, actuatorCountdown int, cycleCountdown *int) (*Command, error) {
	if modulationLevel < 0 || modulationLevel > 1 {
		return nil, NewInvalidArgsError("modulation level %v out of range 0..1", modulationLevel)
	}
	if actuatorCountdown < 0 || actuatorCountdown > 0xFFFF {
		return nil, NewInvalidArgsError("actuator countdown %d out of range", actuatorCountdown)
	}
	cycle := "7FFF"
	if cycleCountdown != nil {
		if *cycleCountdown < 0 || *cycleCountdown > 0x7FFE {
			return nil, NewInvalidArgsError("cycle countdown %d out of range", *cycleCountdown)
		}
		cycle = fmt.Sprintf("%04X", *cycleCountdown)
	}
	payload := fmt.Sprintf("00%s%04X%02XFF",
		cycle, actuatorCountdown, int(modulationLevel*200))
	return Packet(frame.RP, "", srcID, dstID, frame.NonDeviceID, "3EF1", payload)
}

// PutActuatorState announces an actuator's modulation level on behalf of a
// relay; a nil level announces "not available".
func PutActuatorState(srcID string, modulationLevel *float64) (*Command, error) {
	payload := "007FFF"
	if modulationLevel != nil {
		if *modulationLevel < 0 || *modulationLevel > 1 {
			return nil, NewInvalidArgsError("modulation level %v out of range 0..1", *modulationLevel)
		}
		payload = fmt.Sprintf("00%02XFF", int(*modulationLevel*200))
	}
	return Packet(frame.I, "", srcID, frame.NonDeviceID, srcID, "3EF0", payload)
}

// PutBind offers (I, broadcast) or accepts (W, directed) a binding for a
// set of codes. The binding code itself is always appended to the offer.
func PutBind(verb frame.Verb, srcID string, codes []frame.Code, dstID string) (*Command, error) {
	if verb != frame.I && verb != frame.W {
		return nil, NewInvalidArgsError("bind verb must be I or W")
	}
	srcHex, err := frame.IDToHex(srcID)
	if err != nil {
		return nil, NewInvalidArgsError("source: %v", err)
	}

	var b strings.Builder
	for _, code := range codes {
		if !code.IsValid() {
			return nil, NewInvalidArgsError("invalid code %q", code)
		}
		b.WriteString("00" + string(code) + srcHex)
	}
	b.WriteString("001FC9" + srcHex)

	addr1, addr2 := frame.NonDeviceID, srcID
	if dstID != "" {
		addr1, addr2 = dstID, frame.NonDeviceID
	}
	cmd, err := Packet(verb, "", srcID, addr1, addr2, "1FC9", b.String())
	if err != nil {
		return nil, err
	}
	cmd.QoS = QoS{Priority: PriorityHigh, Retries: 3, Timeout: time.Second, DisableBackoff: true}
	return cmd, nil
}

// PutOutdoorTemp announces an outdoor temperature on behalf of an outdoor
// sensor.
func PutOutdoorTemp(srcID string, temp float64) (*Command, error) {
	payload := "00" + codec.TempToHex(codec.Known(temp)) + "01"
	return Packet(frame.I, "", srcID, frame.NonDeviceID, srcID, "0002", payload)
}

// PutSensorTemp announces a room temperature on behalf of a zone sensor.
func PutSensorTemp(srcID string, temp float64) (*Command, error) {
	payload := "00" + codec.TempToHex(codec.Known(temp))
	return Packet(frame.I, "", srcID, frame.NonDeviceID, srcID, "30C9", payload)
}

// Puzzle builds a timestamped test frame, used to watermark a packet log.
func Puzzle(message string) (*Command, error) {
	if len(message) > 40 {
		return nil, NewInvalidArgsError("puzzle message must be at most 40 characters")
	}
	payload := "00" + codec.TimestampToHex(time.Now()) + "00" + codec.StrToHex(message)
	return Packet(frame.I, "", frame.GatewayID, frame.NonDeviceID, frame.GatewayID, "7FFF", payload)
}
