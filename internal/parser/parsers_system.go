package parser

import (
	"strconv"
	"strings"

	"github.com/evohub/ramses/internal/codec"
	"github.com/evohub/ramses/internal/frame"
	"github.com/evohub/ramses/internal/ramses"
)

// rf_unknown: test-transmit / field-strength announcements
func parseRFUnknown(payload string, m Meta) (Record, error) {
	return Record{
		"payload": strings.Join(
			[]string{payload[:2], payload[2:6], payload[6:8], payload[8:]}, "-"),
	}, nil
}

// outdoor_sensor
func parseOutdoorSensor(payload string, m Meta) (Record, error) {
	if m.Verb == frame.RQ {
		return Record{}, nil
	}
	temp, err := codec.Temp(payload[2:6])
	if err != nil {
		return nil, NewDecodeError("outdoor temperature", err)
	}
	return Record{"temperature": temp}, nil
}

// schedule_sync: total number of schedule changes
func parseScheduleSync(payload string, m Meta) (Record, error) {
	if m.Verb == frame.RQ {
		return Record{}, nil
	}
	if payload[2:] == "FFFFFF" {
		// RP to an invalid RQ
		return Record{}, nil
	}
	counter, err := strconv.ParseUint(payload[4:], 16, 16)
	if err != nil {
		return nil, NewDecodeError("change counter", err)
	}
	return Record{"change_counter": int(counter)}, nil
}

// relay_demand of a domain, zone or device
func parseRelayDemand(payload string, m Meta) (Record, error) {
	if m.Src.Type() == "31" && len(payload) == 26 {
		return Record{
			"ordinal": "0x" + payload[2:8],
			"blob":    payload[8:],
		}, nil
	}
	demand, err := codec.Percent(payload[2:4])
	if err != nil {
		return nil, NewDecodeError("relay demand", err)
	}
	return Record{"relay_demand": demand}, nil
}

// relay_failsafe: behaviour of a relay when RF comms are lost
func parseRelayFailsafe(payload string, m Meta) (Record, error) {
	var enabled *bool
	switch payload[2:4] {
	case "00":
		b := false
		enabled = &b
	case "01":
		b := true
		enabled = &b
	default:
		return nil, NewCorruptPayloadError("invalid failsafe byte %s", payload[2:4])
	}
	rec := Record{"failsafe_enabled": enabled}
	if ramses.IsDomainID(payload[:2]) {
		rec["domain_id"] = payload[:2]
	} else {
		rec["zone_idx"] = payload[:2]
	}
	return rec, nil
}

// rf_check: signal strength report
func parseRFCheck(payload string, m Meta) (Record, error) {
	if m.Verb == frame.RQ && len(payload) <= 2 {
		return Record{}, nil
	}
	val, err := strconv.ParseUint(payload[2:4], 16, 8)
	if err != nil {
		return nil, NewDecodeError("rf value", err)
	}
	strength := int(val)/5 + 1
	if strength > 5 {
		strength = 5
	}
	return Record{
		"rf_strength": strength,
		"rf_value":    int(val),
	}, nil
}

// language of the system UI
func parseLanguage(payload string, m Meta) (Record, error) {
	if len(payload) <= 2 {
		return Record{}, nil
	}
	lang, err := codec.Str(payload[2:6])
	if err != nil {
		return nil, NewDecodeError("language", err)
	}
	rec := Record{"language": nil}
	if lang != nil {
		rec["language"] = *lang
	}
	return rec, nil
}

// 01D0/01E9: radiator-valve button events
func parseValveEvent(payload string, m Meta) (Record, error) {
	if payload[2:] != "00" && payload[2:] != "03" {
		return nil, NewCorruptPayloadError("unexpected event byte %s", payload[2:])
	}
	return Record{"unknown_0": payload[2:]}, nil
}

// nullFaultEntry is the whole payload of an RP for a log index past the
// end of the fault log.
const nullFaultEntry = "000000B0000000000000000000007FFFFF7000000000"

// system_fault: one fault log entry
func parseSystemFault(payload string, m Meta) (Record, error) {
	if m.Verb == frame.RQ {
		return Record{"log_idx": payload[4:6]}, nil
	}
	if payload == nullFaultEntry {
		return Record{}, nil
	}

	logIdx, err := strconv.ParseUint(payload[4:6], 16, 8)
	if err != nil || logIdx >= 64 {
		return nil, NewCorruptPayloadError("invalid log index %s", payload[4:6])
	}
	state, ok := ramses.FaultState[payload[2:4]]
	if !ok {
		return nil, NewCorruptPayloadError("unknown fault state %s", payload[2:4])
	}
	faultType, ok := ramses.FaultType[payload[8:10]]
	if !ok {
		return nil, NewCorruptPayloadError("unknown fault type %s", payload[8:10])
	}
	class, ok := ramses.FaultDeviceClass[payload[12:14]]
	if !ok {
		return nil, NewCorruptPayloadError("unknown device class %s", payload[12:14])
	}
	when, err := codec.Timestamp(payload[18:30])
	if err != nil {
		return nil, NewDecodeError("fault timestamp", err)
	}

	// A fault against the heating-control domain reported as "actuator" is
	// the boiler relay.
	if payload[10:12] == ramses.DomainHtgControl && class == "actuator" {
		class = ramses.HeatingControl
	}

	rec := Record{
		"log_idx":      payload[4:6],
		"timestamp":    when,
		"fault_state":  state,
		"fault_type":   faultType,
		"device_class": class,
		"_unknown_1":   payload[6:8],
		"_unknown_2":   payload[14:18],
		"_unknown_3":   payload[30:38],
	}

	if payload[12:14] != "00" { // not the controller itself
		val, _ := strconv.ParseUint(payload[10:12], 16, 8)
		if int(val) < m.MaxZones {
			rec["zone_idx"] = payload[10:12]
		} else {
			rec["domain_id"] = payload[10:12]
		}
	}

	switch payload[38:] {
	case "000000", "000001": // the controller
	case "000002": // unknown device
		rec["device_id"] = nil
	default:
		id, err := frame.HexToID(payload[38:])
		if err != nil {
			return nil, NewDecodeError("fault device id", err)
		}
		rec["device_id"] = id
	}
	return rec, nil
}

// system_sync: seconds until the next controller broadcast cycle
func parseSystemSync(payload string, m Meta) (Record, error) {
	if m.Verb == frame.RQ {
		return Record{}, nil
	}
	val, err := strconv.ParseUint(payload[2:6], 16, 16)
	if err != nil {
		return nil, NewDecodeError("sync countdown", err)
	}
	return Record{"remaining_seconds": float64(val) / 10}, nil
}

// rf_bind: the binding table rows a device offers or confirms
func parseRFBind(payload string, m Meta) (Record, error) {
	if m.Verb == frame.RQ {
		return Record{}, nil
	}
	bindings := make([][3]string, 0, len(payload)/12)
	for i := 0; i+12 <= len(payload); i += 12 {
		id, err := frame.HexToID(payload[i+6 : i+12])
		if err != nil {
			return nil, NewDecodeError("binding device id", err)
		}
		bindings = append(bindings, [3]string{
			payload[i : i+2], payload[i+2 : i+6], id,
		})
	}
	return Record{"bindings": bindings}, nil
}

// hometronics state flag
func parseMessage2D49(payload string, m Meta) (Record, error) {
	state, err := codec.Bool(payload[2:4])
	if err != nil {
		return nil, NewDecodeError("state", err)
	}
	return Record{"_state": state}, nil
}

// system_mode with optional expiry
func parseSystemMode(payload string, m Meta) (Record, error) {
	if m.Verb == frame.RQ {
		return Record{}, nil
	}
	if len(payload) == 32 {
		// the hometronics long form carries a lifestyle id up front
		mode, ok := ramses.SystemModeMap[payload[:2]]
		if !ok {
			mode = payload[:2]
		}
		return Record{"system_mode": mode}, nil
	}

	mode, ok := ramses.SystemModeMap[payload[:2]]
	if !ok {
		return nil, NewCorruptPayloadError("unknown system mode %s", payload[:2])
	}
	rec := Record{"system_mode": mode, "until": nil}
	if payload[14:16] != "00" {
		until, err := codec.DateTime(payload[2:14])
		if err != nil {
			return nil, NewDecodeError("until", err)
		}
		rec["until"] = until
	}
	return rec, nil
}

// datetime: the system wall clock
func parseDateTime(payload string, m Meta) (Record, error) {
	if m.Verb == frame.RQ {
		return Record{}, nil
	}
	// the top bit of the seconds byte flags DST
	seconds, err := strconv.ParseUint(payload[4:6], 16, 8)
	if err != nil {
		return nil, NewDecodeError("datetime", err)
	}
	masked := strconv.FormatUint(seconds&0x7F, 16)
	if len(masked) == 1 {
		masked = "0" + masked
	}
	when, err := codec.DateTime(strings.ToUpper(masked) + payload[6:18])
	if err != nil {
		return nil, NewDecodeError("datetime", err)
	}
	rec := Record{"datetime": when}
	if seconds&0x80 != 0 {
		rec["is_dst"] = true
	}
	return rec, nil
}

// actuator_sync: TPI cycle synchronisation pulse
func parseActuatorSync(payload string, m Meta) (Record, error) {
	sync, err := codec.Bool(payload[2:])
	if err != nil {
		return nil, NewDecodeError("actuator sync", err)
	}
	return Record{"actuator_sync": sync}, nil
}
