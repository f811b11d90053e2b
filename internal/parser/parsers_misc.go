package parser

import (
	"strconv"

	"github.com/evohub/ramses/internal/codec"
)

// puzzle: test frames injected by monitoring tools, never sent by real
// hardware. The first byte selects the body layout.
func parsePuzzle(payload string, m Meta) (Record, error) {
	names := map[string]string{
		"01": "engine", "02": "impersonating", "03": "message",
	}

	switch {
	case payload[:2] == "00":
		when, err := codec.Timestamp(payload[2:14])
		if err != nil {
			return nil, NewDecodeError("puzzle timestamp", err)
		}
		msg, err := codec.Str(payload[16:])
		if err != nil {
			return nil, NewDecodeError("puzzle message", err)
		}
		rec := Record{"datetime": when, "message": nil}
		if msg != nil {
			rec["message"] = *msg
		}
		return rec, nil

	case names[payload[:2]] != "":
		body, err := codec.Str(payload[2:])
		if err != nil {
			return nil, NewDecodeError("puzzle body", err)
		}
		rec := Record{names[payload[:2]]: nil}
		if body != nil {
			rec[names[payload[:2]]] = *body
		}
		return rec, nil

	case payload[:2] == "7F":
		when, err := codec.Timestamp(payload[2:14])
		if err != nil {
			return nil, NewDecodeError("puzzle timestamp", err)
		}
		counter, err := strconv.ParseUint(payload[16:20], 16, 16)
		if err != nil {
			return nil, NewDecodeError("puzzle counter", err)
		}
		interval, err := strconv.ParseUint(payload[22:26], 16, 16)
		if err != nil {
			return nil, NewDecodeError("puzzle interval", err)
		}
		return Record{
			"datetime": when,
			"counter":  int(counter),
			"interval": float64(interval) / 100,
		}, nil
	}

	return Record{"header": payload[:2], "payload": payload[2:]}, nil
}
