package parser

import (
	"time"

	"github.com/evohub/ramses/internal/frame"
)

// DefaultMaxZones is used when the caller does not supply a system size.
const DefaultMaxZones = 12

// Record is one decoded payload: typed values keyed by field name.
type Record = map[string]any

// Meta carries the frame context a payload parser needs.
type Meta struct {
	Verb     frame.Verb
	Code     frame.Code
	Src      frame.Address
	Dst      frame.Address
	Len      int // declared payload length in bytes
	Payload  string
	MaxZones int
	At       time.Time
}

// MetaFromFrame extracts parser context from a received frame.
func MetaFromFrame(f *frame.Frame, maxZones int) Meta {
	if maxZones <= 0 {
		maxZones = DefaultMaxZones
	}
	return Meta{
		Verb:     f.Verb,
		Code:     f.Code,
		Src:      f.Src,
		Dst:      f.Dst,
		Len:      f.Len(),
		Payload:  f.Payload,
		MaxZones: maxZones,
		At:       time.Now(),
	}
}

// Result is the outcome of parsing one payload: a single record, or a list
// of records for codes the controller broadcasts as arrays.
type Result struct {
	Record  Record
	Records []Record
}

// IsArray reports whether the result carries sub-records.
func (r *Result) IsArray() bool { return r.Records != nil }
