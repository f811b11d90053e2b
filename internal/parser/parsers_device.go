package parser

import (
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/evohub/ramses/internal/codec"
	"github.com/evohub/ramses/internal/frame"
	"github.com/evohub/ramses/internal/opentherm"
)

// presence counters from a round thermostat or ventilation sensor
func parseCounters(payload string, m Meta) (Record, error) {
	c1, err := strconv.ParseUint(payload[2:6], 16, 16)
	if err != nil {
		return nil, NewDecodeError("counter", err)
	}
	c2, err := strconv.ParseUint(payload[6:10], 16, 16)
	if err != nil {
		return nil, NewDecodeError("counter", err)
	}
	total, err := strconv.ParseUint(payload[10:14], 16, 16)
	if err != nil {
		return nil, NewDecodeError("counter total", err)
	}
	return Record{
		"counter_1":     int(c1),
		"counter_2":     int(c2),
		"counter_total": int(total),
		"unknown_0":     payload[14:],
	}, nil
}

// daily thermostat heartbeat, payload is the constant 00C8
func parseHeartbeat(payload string, m Meta) (Record, error) {
	return Record{"_unknown_0": payload[2:]}, nil
}

// device_battery
func parseBattery(payload string, m Meta) (Record, error) {
	level, err := codec.Percent(payload[2:4])
	if err != nil {
		return nil, NewDecodeError("battery level", err)
	}
	return Record{
		"battery_low":   payload[4:] == "00",
		"battery_level": level,
	}, nil
}

// 1090: a pair of temperatures from an ST9520C programmer
func parseTempPair(payload string, m Meta) (Record, error) {
	if m.Verb == frame.RQ && len(payload) <= 2 {
		return Record{}, nil
	}
	t0, err := codec.Temp(payload[2:6])
	if err != nil {
		return nil, NewDecodeError("temp_0", err)
	}
	t1, err := codec.Temp(payload[6:10])
	if err != nil {
		return nil, NewDecodeError("temp_1", err)
	}
	return Record{"temp_0": t0, "temp_1": t1}, nil
}

// device_info: firmware dates and a NUL-terminated description
func parseDeviceInfo(payload string, m Meta) (Record, error) {
	if m.Verb == frame.RQ {
		return Record{}, nil
	}
	date2, err := codec.Date(payload[20:28])
	if err != nil {
		return nil, NewDecodeError("firmware date", err)
	}
	date1, err := codec.Date(payload[28:36])
	if err != nil {
		return nil, NewDecodeError("manufacture date", err)
	}
	raw, err := hex.DecodeString(payload[36:])
	if err != nil {
		return nil, NewDecodeError("description", err)
	}
	description := string(raw)
	if i := strings.IndexByte(description, 0); i >= 0 {
		description = description[:i]
	}

	rec := Record{
		"unknown":     payload[2:20],
		"date_2":      "0000-00-00",
		"date_1":      "0000-00-00",
		"description": description,
	}
	if date2 != nil {
		rec["date_2"] = *date2
	}
	if date1 != nil {
		rec["date_1"] = *date1
	}
	return rec, nil
}

// tpi_params: boiler relay cycling parameters
func parseTPIParams(payload string, m Meta) (Record, error) {
	if m.Src.Type() == "08" {
		// Jasper gateways reuse this code for an opaque blob
		return Record{
			"ordinal": "0x" + payload[2:8],
			"blob":    payload[8:],
		}, nil
	}
	if m.Verb == frame.RQ && len(payload) <= 4 {
		return Record{}, nil
	}

	cycleRate, err := strconv.ParseUint(payload[2:4], 16, 8)
	if err != nil {
		return nil, NewDecodeError("cycle rate", err)
	}
	minOn, err := strconv.ParseUint(payload[4:6], 16, 8)
	if err != nil {
		return nil, NewDecodeError("min on time", err)
	}
	minOff, err := strconv.ParseUint(payload[6:8], 16, 8)
	if err != nil {
		return nil, NewDecodeError("min off time", err)
	}
	rec := Record{
		"cycle_rate":   int(cycleRate) / 4, // cycles per hour
		"min_on_time":  float64(minOn) / 4, // minutes
		"min_off_time": float64(minOff) / 4,
		"_unknown_0":   payload[8:10],
	}

	if len(payload) > 10 {
		band, err := codec.Temp(payload[10:14])
		if err != nil {
			return nil, NewDecodeError("proportional band", err)
		}
		rec["proportional_band_width"] = band
		rec["_unknown_1"] = payload[14:]
	}
	return rec, nil
}

// opentherm_sync ticker
func parseOpenThermSync(payload string, m Meta) (Record, error) {
	ticker, err := strconv.ParseUint(payload[2:], 16, 16)
	if err != nil {
		return nil, NewDecodeError("ticker", err)
	}
	return Record{"ticker": int(ticker)}, nil
}

// message_22d0: system switch, constant payload
func parseMessage22D0(payload string, m Meta) (Record, error) {
	return Record{"unknown": payload[2:]}, nil
}

// boiler_setpoint
func parseBoilerSetpoint(payload string, m Meta) (Record, error) {
	if m.Verb == frame.RQ {
		return Record{}, nil
	}
	setpoint, err := codec.Temp(payload[2:6])
	if err != nil {
		return nil, NewDecodeError("boiler setpoint", err)
	}
	return Record{"boiler_setpoint": setpoint}, nil
}

// opentherm_msg: an OpenTherm frame tunnelled over RF
func parseOpenTherm(payload string, m Meta) (Record, error) {
	f, err := opentherm.DecodeFrame(payload[2:10])
	if err != nil {
		return nil, NewDecodeError("opentherm frame", err)
	}
	// an unknown data-id is how a controller probes the bridge's support
	if !opentherm.SupportedIDs[f.MsgID] && f.MsgType != opentherm.MsgUnknownDataID {
		return nil, NewCorruptPayloadError(
			"opentherm data-id 0x%02X not supported", f.MsgID)
	}

	rec := Record{
		"msg_id":   f.MsgID,
		"msg_type": f.MsgType,
		"msg_name": f.Name,
	}
	if m.Verb == frame.RQ {
		if f.MsgType != opentherm.MsgReadData {
			for k, v := range f.Values {
				rec[k] = v
			}
		}
		return rec, nil
	}

	if f.MsgType != opentherm.MsgDataInvalid && f.MsgType != opentherm.MsgUnknownDataID {
		for k, v := range f.Values {
			rec[k] = v
		}
		if f.Desc != "" {
			rec["description"] = f.Desc
		}
	}
	return rec, nil
}

// actuator_state: relay or boiler modulation status
func parseActuatorState(payload string, m Meta) (Record, error) {
	if m.Src.Type() == "08" {
		return Record{
			"ordinal": "0x" + payload[2:8],
			"blob":    payload[8:],
		}, nil
	}
	if m.Verb == frame.RQ {
		return Record{}, nil
	}

	var level *float64
	if payload[2:4] != "FF" {
		v, err := codec.Percent(payload[2:4])
		if err != nil {
			return nil, NewDecodeError("modulation level", err)
		}
		level = v
	}
	rec := Record{
		"actuator_enabled": level != nil && *level > 0,
		"modulation_level": level,
	}
	if len(payload) <= 6 {
		return rec, nil
	}

	// the long forms come from an opentherm bridge
	flags, err := strconv.ParseUint(payload[6:8], 16, 8)
	if err != nil {
		return nil, NewDecodeError("status flags", err)
	}
	rec["ch_enabled"] = flags&(1<<1) != 0
	rec["dhw_active"] = flags&(1<<2) != 0
	rec["flame_active"] = flags&(1<<3) != 0
	rec["_unknown_4"] = payload[8:10]
	rec["_unknown_5"] = payload[10:12]

	if len(payload) > 12 {
		flags2, err := strconv.ParseUint(payload[12:14], 16, 8)
		if err != nil {
			return nil, NewDecodeError("status flags", err)
		}
		chSetpoint, err := strconv.ParseUint(payload[14:16], 16, 8)
		if err != nil {
			return nil, NewDecodeError("ch setpoint", err)
		}
		maxMod, err := strconv.ParseUint(payload[16:18], 16, 8)
		if err != nil {
			return nil, NewDecodeError("max modulation", err)
		}
		rec["ch_active"] = flags2&1 != 0
		rec["ch_setpoint"] = int(chSetpoint)
		rec["max_rel_modulation"] = int(maxMod)
	}
	return rec, nil
}

// actuator_cycle: countdowns within the current relay cycle
func parseActuatorCycle(payload string, m Meta) (Record, error) {
	if t := m.Src.Type(); t == "08" || t == "31" {
		return Record{
			"ordinal": "0x" + payload[2:8],
			"blob":    payload[8:],
		}, nil
	}
	if m.Verb == frame.RQ {
		return Record{}, nil
	}

	level, err := codec.Percent(payload[10:12])
	if err != nil {
		return nil, NewDecodeError("modulation level", err)
	}
	actuator, err := strconv.ParseUint(payload[6:10], 16, 16)
	if err != nil {
		return nil, NewDecodeError("actuator countdown", err)
	}
	rec := Record{
		"actuator_enabled":   level != nil && *level > 0,
		"modulation_level":   level,
		"actuator_countdown": int(actuator),
		"cycle_countdown":    nil,
		"_unknown_0":         payload[12:],
	}
	if payload[2:6] != "7FFF" {
		cycle, err := strconv.ParseUint(payload[2:6], 16, 16)
		if err != nil {
			return nil, NewDecodeError("cycle countdown", err)
		}
		rec["cycle_countdown"] = int(cycle)
	}
	return rec, nil
}
