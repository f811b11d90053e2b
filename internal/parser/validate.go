package parser

import (
	"strconv"

	"github.com/evohub/ramses/internal/frame"
	"github.com/evohub/ramses/internal/ramses"
)

// parserFunc decodes one payload (or one array sub-record) into a record.
type parserFunc func(payload string, m Meta) (Record, error)

// validated wraps a per-code parser with the shared checks every frame goes
// through before its payload is decoded:
//
//  1. the code must be known;
//  2. the sender's device type must be able to emit this (code, verb);
//     the gateway type "18" only needs the code to be known;
//  3. for directed non-I frames between real devices, the destination
//     must be able to answer with the inverse verb, unless the
//     (dst, verb, code) triple is a known exception;
//  4. the payload must match the per-(code, verb) shape;
//  5. an RQ whose payload is pure context short-circuits to index
//     extraction;
//  6. controller broadcasts of array codes are split into sub-records;
//  7. the extracted index is merged into the single-record result.
func validated(code frame.Code, fn parserFunc) func(m Meta) (*Result, error) {
	return func(m Meta) (*Result, error) {
		info, ok := ramses.Lookup(code)
		if !ok {
			return nil, NewNotImplementedError(string(code))
		}

		if !ramses.CanSend(m.Src.Type(), code, m.Verb) {
			return nil, NewCorruptFrameError(
				"device %s may not send %s/%s", m.Src, m.Verb, code)
		}

		if requiresDstCheck(m) && !ramses.IsException(m.Dst.Type(), m.Verb, code) {
			if !ramses.CanReceive(m.Dst.Type(), code, m.Verb) {
				return nil, NewCorruptFrameError(
					"device %s may not be addressed with %s/%s", m.Dst, m.Verb, code)
			}
		}

		pattern := info.Pattern(m.Verb)
		if pattern == nil {
			return nil, NewCorruptFrameError(
				"verb %q is not valid for code %s", m.Verb, code)
		}
		if !pattern.MatchString(m.Payload) {
			return nil, NewCorruptPayloadError(
				"payload %q does not fit %s/%s", m.Payload, m.Verb, code)
		}

		// An RQ that only names its target needs no decoding beyond the
		// context byte. Codes whose RQ carries real content (a log index, a
		// schedule fragment, an embedded sub-frame) go through the parser.
		if m.Verb == frame.RQ && !info.RQPayload {
			idx, err := classifyIndex(m.Payload, info.Idx, m)
			if err != nil {
				return nil, err
			}
			return &Result{Record: idx}, nil
		}

		if w := info.ArrayWidth; w > 0 && isArrayBroadcast(m) && len(m.Payload)%w == 0 {
			records := make([]Record, 0, len(m.Payload)/w)
			for i := 0; i < len(m.Payload); i += w {
				sub := m.Payload[i : i+w]
				rec, err := fn(sub, m)
				if err != nil {
					return nil, err
				}
				if !hasIndex(rec) {
					idx, err := classifyIndex(sub, info.Idx, m)
					if err != nil {
						return nil, err
					}
					for k, v := range idx {
						rec[k] = v
					}
				}
				records = append(records, rec)
			}
			return &Result{Records: records}, nil
		}

		rec, err := fn(m.Payload, m)
		if err != nil {
			return nil, err
		}
		if rec == nil {
			rec = Record{}
		}
		if !hasIndex(rec) {
			idx, err := classifyIndex(m.Payload, info.Idx, m)
			if err != nil {
				return nil, err
			}
			for k, v := range idx {
				rec[k] = v
			}
		}
		return &Result{Record: rec}, nil
	}
}

// indexKeys are mutually exclusive: a record carries at most one of them.
var indexKeys = [...]string{
	"zone_idx", "domain_id", "ufh_idx", "dhw_idx", "hvac_id", "other_idx",
}

func hasIndex(rec Record) bool {
	for _, k := range indexKeys {
		if _, ok := rec[k]; ok {
			return true
		}
	}
	return false
}

// isArrayBroadcast reports whether the payload carries one sub-record per
// zone: an I broadcast (source repeated as destination) from a device that
// manages multiple zones.
func isArrayBroadcast(m Meta) bool {
	if m.Verb != frame.I || m.Src.ID != m.Dst.ID {
		return false
	}
	switch m.Src.Type() {
	case "01", "02", "23", "34":
		return true
	}
	return false
}

// requiresDstCheck reports whether the frame is directed at a real device.
// Broadcasts, I-frames, frames to the null address and any exchange with
// the gateway on either end carry no destination role to check.
func requiresDstCheck(m Meta) bool {
	if m.Verb == frame.I {
		return false
	}
	if m.Dst.IsNone() || m.Dst.IsNull() {
		return false
	}
	if m.Src.Type() == "18" || m.Dst.Type() == "18" {
		return false
	}
	return m.Src.ID != m.Dst.ID
}

// classifyIndex decodes the leading context byte of a payload according to
// the code's index kind. Exactly one index key is produced, or none for
// unindexed codes.
func classifyIndex(payload string, kind ramses.IndexKind, m Meta) (Record, error) {
	if len(payload) < 2 || kind == ramses.IdxNone {
		return Record{}, nil
	}
	idx := payload[:2]
	val, err := strconv.ParseUint(idx, 16, 8)
	if err != nil {
		return nil, NewDecodeError("bad index byte", err)
	}

	switch kind {
	case ramses.IdxZone:
		if int(val) >= m.MaxZones {
			return nil, NewCorruptPayloadError(
				"zone index %s out of range (max_zones %d)", idx, m.MaxZones)
		}
		return Record{"zone_idx": idx}, nil

	case ramses.IdxZoneOrDomain:
		if ramses.IsDomainID(idx) {
			return Record{"domain_id": idx}, nil
		}
		if idx == "00" {
			// a "00" context byte on these codes is padding, not zone 0
			return Record{}, nil
		}
		if int(val) >= m.MaxZones {
			return nil, NewCorruptPayloadError(
				"index %s is neither a domain nor a zone", idx)
		}
		return Record{"zone_idx": idx}, nil

	case ramses.IdxDHW:
		if idx != "00" && idx != "01" {
			return nil, NewCorruptPayloadError("invalid dhw index %s", idx)
		}
		return Record{"dhw_idx": idx}, nil

	case ramses.IdxUFH:
		if val >= 8 {
			return nil, NewCorruptPayloadError("invalid ufh circuit %s", idx)
		}
		return Record{"ufh_idx": idx}, nil

	case ramses.IdxHVAC:
		if idx != "00" && idx != "01" && idx != "21" {
			return nil, NewCorruptPayloadError("invalid hvac id %s", idx)
		}
		return Record{"hvac_id": idx}, nil

	case ramses.IdxOther:
		return Record{"other_idx": idx}, nil
	}
	return Record{}, nil
}
