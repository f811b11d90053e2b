package parser

import (
	"strconv"

	"github.com/evohub/ramses/internal/codec"
	"github.com/evohub/ramses/internal/frame"
	"github.com/evohub/ramses/internal/ramses"
)

// dhw_params: stored hot water setpoint, overrun and differential
func parseDHWParams(payload string, m Meta) (Record, error) {
	if m.Verb == frame.RQ && len(payload) <= 2 {
		return Record{}, nil
	}
	setpoint, err := codec.Temp(payload[2:6])
	if err != nil {
		return nil, NewDecodeError("dhw setpoint", err)
	}
	rec := Record{"setpoint": setpoint}
	if len(payload) < 12 {
		// the short form from an opentherm bridge carries only a setpoint
		return rec, nil
	}
	overrun, err := strconv.ParseUint(payload[6:8], 16, 8)
	if err != nil {
		return nil, NewDecodeError("dhw overrun", err)
	}
	differential, err := codec.Temp(payload[8:12])
	if err != nil {
		return nil, NewDecodeError("dhw differential", err)
	}
	rec["overrun"] = int(overrun)
	rec["differential"] = differential
	return rec, nil
}

// dhw_temp
func parseDHWTemp(payload string, m Meta) (Record, error) {
	if m.Verb == frame.RQ {
		return Record{}, nil
	}
	temp, err := codec.Temp(payload[2:6])
	if err != nil {
		return nil, NewDecodeError("dhw temperature", err)
	}
	return Record{"temperature": temp}, nil
}

// dhw_mode: on/off state plus override mode and optional expiry
func parseDHWMode(payload string, m Meta) (Record, error) {
	if m.Verb == frame.RQ && len(payload) <= 2 {
		return Record{}, nil
	}
	var active *bool
	switch payload[2:4] {
	case "00":
		b := false
		active = &b
	case "01":
		b := true
		active = &b
	case "FF":
		// no stored hot water
	default:
		return nil, NewCorruptPayloadError("invalid dhw active byte %s", payload[2:4])
	}
	mode, ok := ramses.ZoneModeMap[payload[4:6]]
	if !ok {
		return nil, NewCorruptPayloadError("unknown dhw mode %s", payload[4:6])
	}
	if mode == ramses.ZoneModeTemporary && len(payload) < 24 {
		return nil, NewCorruptPayloadError("temporary override without until")
	}

	rec := Record{"active": active, "mode": mode}
	if mode == ramses.ZoneModeTemporary {
		until, err := codec.DateTime(payload[12:24])
		if err != nil {
			return nil, NewDecodeError("until", err)
		}
		rec["until"] = until
	}
	return rec, nil
}
