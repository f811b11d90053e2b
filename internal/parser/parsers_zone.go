package parser

import (
	"strconv"

	"github.com/evohub/ramses/internal/codec"
	"github.com/evohub/ramses/internal/frame"
	"github.com/evohub/ramses/internal/ramses"
)

// zone_name
func parseZoneName(payload string, m Meta) (Record, error) {
	if m.Verb == frame.RQ {
		return Record{}, nil
	}
	if len(payload) < 44 {
		return nil, NewCorruptPayloadError("zone name payload too short")
	}
	if payload[4:] == "7F7F7F7F7F7F7F7F7F7F7F7F7F7F7F7F7F7F7F7F" {
		// not a configured zone
		return Record{}, nil
	}
	name, err := codec.Str(payload[4:])
	if err != nil {
		return nil, NewDecodeError("zone name", err)
	}
	rec := Record{"name": nil}
	if name != nil {
		rec["name"] = *name
	}
	return rec, nil
}

// system_zones: one sub-record per zone type, carrying a zone bitmask
func parseSystemZones(payload string, m Meta) (Record, error) {
	if m.Verb == frame.RQ {
		return Record{"zone_type": zoneKindName(payload[2:4])}, nil
	}
	lo, err := codec.Flags8(payload[4:6])
	if err != nil {
		return nil, NewDecodeError("zone mask", err)
	}
	hi, err := codec.Flags8(payload[6:8])
	if err != nil {
		return nil, NewDecodeError("zone mask", err)
	}
	mask := make([]uint8, 0, 16)
	mask = append(mask, lo[:]...)
	mask = append(mask, hi[:]...)
	if len(mask) > m.MaxZones {
		mask = mask[:m.MaxZones]
	}
	return Record{
		"zone_type": zoneKindName(payload[2:4]),
		"zone_mask": mask,
	}, nil
}

func zoneKindName(b string) string {
	if name, ok := ramses.ZoneKind[b]; ok {
		return name
	}
	return b
}

// zone_params: setpoint bounds and option bits
func parseZoneParams(payload string, m Meta) (Record, error) {
	if m.Verb == frame.RQ && len(payload) <= 4 {
		return Record{}, nil
	}
	bitmap, err := strconv.ParseUint(payload[2:4], 16, 8)
	if err != nil {
		return nil, NewDecodeError("zone config bitmap", err)
	}
	minTemp, err := codec.Temp(payload[4:8])
	if err != nil {
		return nil, NewDecodeError("min temp", err)
	}
	maxTemp, err := codec.Temp(payload[8:12])
	if err != nil {
		return nil, NewDecodeError("max temp", err)
	}
	return Record{
		"min_temp":            minTemp,
		"max_temp":            maxTemp,
		"local_override":      bitmap&1 == 0,
		"openwindow_function": bitmap&2 == 0,
		"multiroom_mode":      bitmap&16 == 0,
	}, nil
}

// zone_devices: the devices bound to a zone, domain or circuit
func parseZoneDevices(payload string, m Meta) (Record, error) {
	class := payload[2:4]
	className, ok := ramses.DeviceClass[class]
	if !ok {
		className = "unknown_" + class
	}
	if className == "hotwater_valve" && payload[:2] == "01" {
		className = "hotwater_valve_htg"
	}

	rec := Record{"device_class": className}
	switch {
	case m.Src.Type() == "02":
		val, _ := strconv.ParseUint(payload[:2], 16, 8)
		if val >= 8 {
			return nil, NewCorruptPayloadError("invalid ufh circuit %s", payload[:2])
		}
		rec["ufh_idx"] = payload[:2]
	case class == "0D", class == "0E":
		rec["domain_id"] = ramses.DomainDHWValve
	case class == "0F":
		rec["domain_id"] = ramses.DomainHtgControl
	default:
		val, _ := strconv.ParseUint(payload[:2], 16, 8)
		if int(val) >= m.MaxZones {
			return nil, NewCorruptPayloadError("invalid zone index %s", payload[:2])
		}
		rec["zone_idx"] = payload[:2]
	}
	if m.Verb == frame.RQ {
		return rec, nil
	}

	devices := []string{}
	for i := 0; i+12 <= len(payload); i += 12 {
		if payload[i+4:i+6] == "7F" {
			continue // an unbound slot
		}
		id, err := frame.HexToID(payload[i+6 : i+12])
		if err != nil {
			return nil, NewDecodeError("bound device id", err)
		}
		devices = append(devices, id)
	}
	rec["devices"] = devices
	return rec, nil
}

// zone_schedule: one fragment of a zone or DHW schedule
func parseZoneSchedule(payload string, m Meta) (Record, error) {
	length, err := strconv.ParseUint(payload[8:10], 16, 8)
	if err != nil {
		return nil, NewDecodeError("fragment length", err)
	}
	index, err := strconv.ParseUint(payload[10:12], 16, 8)
	if err != nil {
		return nil, NewDecodeError("fragment index", err)
	}
	rec := Record{
		"frag_length": int(length),
		"frag_index":  int(index),
	}
	if len(payload) >= 14 {
		total, err := strconv.ParseUint(payload[12:14], 16, 8)
		if err != nil {
			return nil, NewDecodeError("fragment total", err)
		}
		rec["frag_total"] = int(total)
	}
	if m.Verb != frame.RQ && len(payload) > 14 {
		rec["fragment"] = payload[14:]
	}
	return rec, nil
}

// mixvalve_params: five parameter triples after the zone index
func parseMixValveParams(payload string, m Meta) (Record, error) {
	names := map[string]string{
		"C8": "max_flow_setpoint",
		"C9": "min_flow_setpoint",
		"CA": "valve_run_time",
		"CB": "pump_run_time",
		"CC": "unknown_cc",
	}
	rec := Record{}
	for i := 2; i+6 <= len(payload); i += 6 {
		name, ok := names[payload[i:i+2]]
		if !ok {
			return nil, NewCorruptPayloadError("unknown mix valve param %s", payload[i:i+2])
		}
		val, err := strconv.ParseUint(payload[i+4:i+6], 16, 8)
		if err != nil {
			return nil, NewDecodeError("mix valve param", err)
		}
		rec[name] = int(val)
	}
	return rec, nil
}

// window_state
func parseWindowState(payload string, m Meta) (Record, error) {
	if m.Verb == frame.RQ {
		return Record{}, nil
	}
	open, err := codec.Bool(payload[2:4])
	if err != nil {
		return nil, NewDecodeError("window state", err)
	}
	return Record{"window_open": open}, nil
}

// setpoint_now: current and next setpoint with minutes remaining
func parseSetpointNow(payload string, m Meta) (Record, error) {
	now, err := codec.Temp(payload[2:6])
	if err != nil {
		return nil, NewDecodeError("setpoint now", err)
	}
	next, err := codec.Temp(payload[6:10])
	if err != nil {
		return nil, NewDecodeError("setpoint next", err)
	}
	minutes, err := strconv.ParseUint(payload[10:14], 16, 16)
	if err != nil {
		return nil, NewDecodeError("minutes remaining", err)
	}
	return Record{
		"setpoint_now":      now,
		"setpoint_next":     next,
		"minutes_remaining": int(minutes),
	}, nil
}

// ufh_setpoint: one circuit's flow temperature band
func parseUFHSetpoint(payload string, m Meta) (Record, error) {
	low, err := codec.Temp(payload[2:6])
	if err != nil {
		return nil, NewDecodeError("temp low", err)
	}
	high, err := codec.Temp(payload[6:10])
	if err != nil {
		return nil, NewDecodeError("temp high", err)
	}
	return Record{"temp_low": low, "temp_high": high}, nil
}

// setpoint
func parseSetpoint(payload string, m Meta) (Record, error) {
	if m.Verb == frame.RQ && len(payload) <= 2 {
		return Record{}, nil
	}
	setpoint, err := codec.Temp(payload[2:6])
	if err != nil {
		return nil, NewDecodeError("setpoint", err)
	}
	return Record{"setpoint": setpoint}, nil
}

// zone_mode: setpoint plus override mode, duration or expiry
func parseZoneMode(payload string, m Meta) (Record, error) {
	if m.Verb == frame.RQ && len(payload) <= 4 {
		return Record{}, nil
	}
	setpoint, err := codec.Temp(payload[2:6])
	if err != nil {
		return nil, NewDecodeError("setpoint", err)
	}
	mode, ok := ramses.ZoneModeMap[payload[6:8]]
	if !ok {
		return nil, NewCorruptPayloadError("unknown zone mode %s", payload[6:8])
	}
	rec := Record{"mode": mode, "setpoint": setpoint}

	if len(payload) >= 14 {
		if payload[8:14] == "FFFFFF" {
			if mode == ramses.ZoneModeCountdown {
				return nil, NewCorruptPayloadError("countdown override without duration")
			}
		} else {
			if mode != ramses.ZoneModeCountdown {
				return nil, NewCorruptPayloadError("duration outside countdown override")
			}
			minutes, err := strconv.ParseUint(payload[8:14], 16, 32)
			if err != nil {
				return nil, NewDecodeError("duration", err)
			}
			rec["duration"] = int(minutes)
		}
	}

	if len(payload) >= 26 {
		if payload[14:26] == "FFFFFFFFFFFF" {
			rec["until"] = nil
		} else {
			until, err := codec.DateTime(payload[14:26])
			if err != nil {
				return nil, NewDecodeError("until", err)
			}
			rec["until"] = until
		}
	}
	return rec, nil
}

// temperature
func parseTemperature(payload string, m Meta) (Record, error) {
	if m.Verb == frame.RQ {
		return Record{}, nil
	}
	temp, err := codec.Temp(payload[2:6])
	if err != nil {
		return nil, NewDecodeError("temperature", err)
	}
	return Record{"temperature": temp}, nil
}

// heat_demand of a zone, circuit or domain
func parseHeatDemand(payload string, m Meta) (Record, error) {
	demand, err := codec.Percent(payload[2:4])
	if err != nil {
		return nil, NewDecodeError("heat demand", err)
	}
	rec := Record{"heat_demand": demand}
	switch {
	case ramses.IsDomainID(payload[:2]):
		rec["domain_id"] = payload[:2]
	case m.Src.Type() == "02":
		rec["ufh_idx"] = payload[:2]
	default:
		rec["zone_idx"] = payload[:2]
	}
	return rec, nil
}
