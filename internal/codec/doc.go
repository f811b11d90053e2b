// Package codec provides the primitive field decoders and encoders shared
// by every payload parser and command constructor.
//
// Each decoder consumes a fixed-width hex substring and returns a typed
// value. Two failure channels are kept strictly apart: a sentinel byte
// pattern ("value not available") decodes to a nil/Absent result with no
// error, while malformed input (wrong width, value out of range) returns an
// error. Malformed frames must never be mistaken for absent values.
package codec
