package frame

import (
	"fmt"
	"regexp"
	"strings"
)

// Verb is the role of a frame, in its exact 2-character wire spelling.
type Verb string

const (
	I  Verb = " I" // information (unsolicited broadcast)
	RQ Verb = "RQ" // request
	RP Verb = "RP" // response
	W  Verb = " W" // write
)

// ParseVerb normalises a verb token ("I", " I", "RQ", ...) to its wire form.
func ParseVerb(s string) (Verb, error) {
	switch strings.TrimSpace(s) {
	case "I":
		return I, nil
	case "RQ":
		return RQ, nil
	case "RP":
		return RP, nil
	case "W":
		return W, nil
	}
	return "", fmt.Errorf("invalid verb: %q", s)
}

// Responder returns the verb a destination would use to answer this verb.
func (v Verb) Responder() Verb {
	switch v {
	case RQ:
		return RP
	case RP:
		return RQ
	case W:
		return I
	}
	return I
}

// Code identifies the message type/topic, as 4 uppercase hex characters.
type Code string

var codePattern = regexp.MustCompile(`^[0-9A-F]{4}$`)

// IsValid reports whether the code is well-formed (not whether it is known).
func (c Code) IsValid() bool { return codePattern.MatchString(string(c)) }

// MaxPayloadChars bounds the hex payload of any frame (2..48 bytes).
const (
	MinPayloadChars = 2
	MaxPayloadChars = 96
)

// framePattern is the structural validity gate every frame (and every
// constructed command) must pass before it is considered usable.
var framePattern = regexp.MustCompile(
	`^( I|RQ|RP| W) (---|\d{3})` +
		` (--:------|\d{2}:\d{6}) (--:------|\d{2}:\d{6}) (--:------|\d{2}:\d{6})` +
		` [0-9A-F]{4} \d{3} [0-9A-F]{2,96}$`,
)

// Frame is one bus message: verb, optional sequence number, the three
// address slots (with resolved source/destination), code and hex payload.
type Frame struct {
	Verb    Verb
	Seqn    string // "---" or a 3-digit sequence number
	Src     Address
	Dst     Address
	Addrs   [3]Address
	Code    Code
	Payload string // even-length uppercase hex
}

// Len returns the payload length in bytes, as carried in the length field.
func (f *Frame) Len() int { return len(f.Payload) / 2 }

func (f *Frame) String() string {
	seqn := f.Seqn
	if seqn == "" {
		seqn = "---"
	}
	return fmt.Sprintf("%2s %s %s %s %s %s %03d %s",
		f.Verb, seqn, f.Addrs[0], f.Addrs[1], f.Addrs[2], f.Code, f.Len(), f.Payload)
}

// IsValid applies the structural self-check: frame format plus payload
// length bounds. Frames failing this must never be transmitted.
func (f *Frame) IsValid() bool {
	if len(f.Payload) < MinPayloadChars || len(f.Payload) > MaxPayloadChars {
		return false
	}
	return framePattern.MatchString(f.String())
}

// Header returns the correlation header of this frame, used to key response
// callbacks: verb|device-id|code. The device id is the counterparty when the
// gateway itself is one end of the exchange.
func (f *Frame) Header() string {
	addr := f.Src
	if addr.Type() == "18" {
		addr = f.Dst
	}
	return strings.Join([]string{string(f.Verb), addr.String(), string(f.Code)}, "|")
}

// RxHeader returns the header a matching response would carry, or "" for
// verbs that are not answered.
func (f *Frame) RxHeader() string {
	if f.Verb != RQ && f.Verb != W {
		return ""
	}
	addr := f.Dst
	if addr.Type() == "18" {
		addr = f.Src
	}
	return strings.Join(
		[]string{string(f.Verb.Responder()), addr.String(), string(f.Code)}, "|")
}

// packetPattern matches a raw packet line as emitted by the gateway daemon,
// with an optional leading RSSI field.
var packetPattern = regexp.MustCompile(
	`^(?:(\d{3}|---) +)?( I|RQ|RP| W|I|W) +(---|\d{3})` +
		` +(--:------|\d{2}:\d{6}) +(--:------|\d{2}:\d{6}) +(--:------|\d{2}:\d{6})` +
		` +([0-9A-F]{4}) +(\d{3}) +([0-9A-F]{2,96})$`,
)

// ParsePacketLine parses one gateway packet line into a Frame. The declared
// length field must agree with the payload: a mismatch means RF corruption.
func ParsePacketLine(line string) (*Frame, error) {
	m := packetPattern.FindStringSubmatch(strings.TrimRight(line, " \r\n"))
	if m == nil {
		return nil, fmt.Errorf("not a packet line: %q", line)
	}

	verb, err := ParseVerb(m[2])
	if err != nil {
		return nil, err
	}
	src, dst, addrs, err := ParseAddrs(m[4], m[5], m[6])
	if err != nil {
		return nil, err
	}

	f := &Frame{
		Verb:    verb,
		Seqn:    m[3],
		Src:     src,
		Dst:     dst,
		Addrs:   addrs,
		Code:    Code(m[7]),
		Payload: m[9],
	}
	if declared := m[8]; fmt.Sprintf("%03d", f.Len()) != declared {
		return nil, fmt.Errorf("length field %s != payload bytes %d", declared, f.Len())
	}
	return f, nil
}
