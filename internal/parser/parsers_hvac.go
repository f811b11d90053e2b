package parser

import (
	"strconv"

	"github.com/evohub/ramses/internal/codec"
	"github.com/evohub/ramses/internal/ramses"
)

// message_000e: unknown, from a round thermostat
func parseMessage000E(payload string, m Meta) (Record, error) {
	return Record{"unknown_0": payload}, nil
}

// hvac_1298: CO2 level in ppm
func parseCO2Level(payload string, m Meta) (Record, error) {
	level, err := codec.Double(payload[2:], 1)
	if err != nil {
		return nil, NewDecodeError("co2 level", err)
	}
	return Record{"co2_level": level}, nil
}

// indoor_humidity, with temperature and dewpoint in the long form
func parseIndoorHumidity(payload string, m Meta) (Record, error) {
	rh, err := codec.PercentAt(payload[2:4], 1)
	if err != nil {
		return nil, NewDecodeError("relative humidity", err)
	}
	rec := Record{"relative_humidity": rh}
	if len(payload) <= 4 {
		return rec, nil
	}

	temp, err := codec.Temp(payload[4:8])
	if err != nil {
		return nil, NewDecodeError("temperature", err)
	}
	dewpoint, err := codec.Temp(payload[8:12])
	if err != nil {
		return nil, NewDecodeError("dewpoint", err)
	}
	rec["temperature"] = temp
	rec["dewpoint_temp"] = dewpoint
	return rec, nil
}

// displayed_temp: the rounded half-degree value a TR87RF shows
func parseDisplayedTemp(payload string, m Meta) (Record, error) {
	var temp *float64
	if payload[2:4] != "80" {
		v, err := strconv.ParseUint(payload[2:4], 16, 8)
		if err != nil {
			return nil, NewDecodeError("displayed temp", err)
		}
		t := float64(v) / 2
		temp = &t
	}
	return Record{"temperature": temp}, nil
}

// hvac_12c8
func parseMessage12C8(payload string, m Meta) (Record, error) {
	val, err := codec.Percent(payload[4:])
	if err != nil {
		return nil, NewDecodeError("value", err)
	}
	return Record{"unknown": val}, nil
}

// switch_mode: a fan or heater switch step change
func parseSwitchMode(payload string, m Meta) (Record, error) {
	step, err := strconv.ParseUint(payload[2:4], 16, 8)
	if err != nil {
		return nil, NewDecodeError("step index", err)
	}
	max, err := strconv.ParseUint(payload[4:6], 16, 8)
	if err != nil {
		return nil, NewDecodeError("step max", err)
	}
	if step > max {
		return nil, NewCorruptPayloadError("step %d exceeds maximum %d", step, max)
	}

	rec := Record{"step_idx": int(step), "step_max": int(max)}
	if mode, ok := ramses.FanSwitchModes[int(step)]; ok {
		rec["fan_mode"] = mode
	} else if mode, ok := ramses.HeaterModes[int(step)]; ok {
		rec["heater_mode"] = mode
	}
	return rec, nil
}

// switch_boost: minutes of boosted fan speed
func parseSwitchBoost(payload string, m Meta) (Record, error) {
	minutes, err := strconv.ParseUint(payload[4:6], 16, 8)
	if err != nil {
		return nil, NewDecodeError("boost timer", err)
	}
	return Record{"boost_timer": int(minutes)}, nil
}

// vent_state: fan speed and status bits
func parseVentState(payload string, m Meta) (Record, error) {
	bitmap, err := strconv.ParseUint(payload[2:4], 16, 8)
	if err != nil {
		return nil, NewDecodeError("status bitmap", err)
	}
	speed, err := codec.Percent(payload[4:6])
	if err != nil {
		return nil, NewDecodeError("fan speed", err)
	}

	rec := Record{
		"exhaust_fan_speed": speed,
		"passive":           bitmap&0x02 != 0,
		"damper_only":       bitmap&0x04 != 0,
		"filter_dirty":      bitmap&0x20 != 0,
		"frost_cycle":       bitmap&0x40 != 0,
		"has_fault":         bitmap&0x80 != 0,
		"_bitmap_0":         payload[2:4],
	}
	if len(payload) > 6 {
		rec["_unknown_2"] = payload[6:8]
		rec["_unknown_3"] = payload[8:32]
		rec["_unknown_4"] = payload[32:]
	}
	return rec, nil
}

// vent_state_extended: the full 31DA sensor block
func parseVentStateExtended(payload string, m Meta) (Record, error) {
	airQuality, err := codec.PercentAt(payload[2:4], 0.5)
	if err != nil {
		return nil, NewDecodeError("air quality", err)
	}
	aqBase, err := strconv.ParseUint(payload[4:6], 16, 8)
	if err != nil {
		return nil, NewDecodeError("air quality base", err)
	}
	co2, err := codec.Double(payload[6:10], 1)
	if err != nil {
		return nil, NewDecodeError("co2 level", err)
	}
	indoorRH, err := codec.PercentAt(payload[10:12], 1)
	if err != nil {
		return nil, NewDecodeError("indoor humidity", err)
	}
	outdoorRH, err := codec.PercentAt(payload[12:14], 1)
	if err != nil {
		return nil, NewDecodeError("outdoor humidity", err)
	}
	exhaustTemp, err := codec.Double(payload[14:18], 100)
	if err != nil {
		return nil, NewDecodeError("exhaust temperature", err)
	}
	supplyTemp, err := codec.Double(payload[18:22], 100)
	if err != nil {
		return nil, NewDecodeError("supply temperature", err)
	}
	indoorTemp, err := codec.Double(payload[22:26], 100)
	if err != nil {
		return nil, NewDecodeError("indoor temperature", err)
	}
	outdoorTemp, err := codec.Double(payload[26:30], 100)
	if err != nil {
		return nil, NewDecodeError("outdoor temperature", err)
	}
	speedCap, err := strconv.ParseUint(payload[30:34], 16, 16)
	if err != nil {
		return nil, NewDecodeError("speed cap", err)
	}
	bypass, err := codec.PercentAt(payload[34:36], 0.5)
	if err != nil {
		return nil, NewDecodeError("bypass position", err)
	}
	fanRaw, err := strconv.ParseUint(payload[36:38], 16, 8)
	if err != nil {
		return nil, NewDecodeError("fan info", err)
	}
	fanInfo, ok := ramses.FanInfo[int(fanRaw)&0x1F]
	if !ok {
		return nil, NewCorruptPayloadError("invalid fan info %s", payload[36:38])
	}
	exhaustSpeed, err := codec.PercentAt(payload[38:40], 0.5)
	if err != nil {
		return nil, NewDecodeError("exhaust fan speed", err)
	}
	supplySpeed, err := codec.PercentAt(payload[40:42], 0.5)
	if err != nil {
		return nil, NewDecodeError("supply fan speed", err)
	}
	remaining, err := codec.Double(payload[42:46], 1)
	if err != nil {
		return nil, NewDecodeError("remaining time", err)
	}
	postHeat, err := codec.PercentAt(payload[46:48], 0.5)
	if err != nil {
		return nil, NewDecodeError("post heat", err)
	}
	preHeat, err := codec.PercentAt(payload[48:50], 0.5)
	if err != nil {
		return nil, NewDecodeError("pre heat", err)
	}
	supplyFlow, err := codec.Double(payload[50:54], 100)
	if err != nil {
		return nil, NewDecodeError("supply flow", err)
	}
	exhaustFlow, err := codec.Double(payload[54:58], 100)
	if err != nil {
		return nil, NewDecodeError("exhaust flow", err)
	}

	return Record{
		"air_quality":         airQuality,
		"air_quality_base":    int(aqBase),
		"co2_level":           co2,
		"indoor_humidity":     indoorRH,
		"outdoor_humidity":    outdoorRH,
		"exhaust_temperature": exhaustTemp,
		"supply_temperature":  supplyTemp,
		"indoor_temperature":  indoorTemp,
		"outdoor_temperature": outdoorTemp,
		"speed_cap":           int(speedCap),
		"bypass_pos":          bypass,
		"fan_info":            fanInfo,
		"exhaust_fan_speed":   exhaustSpeed,
		"supply_fan_speed":    supplySpeed,
		"remaining_time":      remaining,
		"post_heat":           postHeat,
		"pre_heat":            preHeat,
		"supply_flow":         supplyFlow,
		"exhaust_flow":        exhaustFlow,
	}, nil
}

// vent_demand from an external sensor
func parseVentDemand(payload string, m Meta) (Record, error) {
	active, err := codec.Bool(payload[4:6])
	if err != nil {
		return nil, NewDecodeError("active", err)
	}
	return Record{
		"active":     active,
		"_unknown_0": payload[:4],
		"_unknown_1": payload[6:],
	}, nil
}

// message_3120: unknown, broadcast by round thermostats and fans
func parseMessage3120(payload string, m Meta) (Record, error) {
	return Record{
		"unknown_0": payload[2:10],
		"unknown_1": payload[10:12],
		"unknown_2": payload[12:],
	}, nil
}
