package codec

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

// TempState distinguishes the three meanings a temperature field can carry.
type TempState int

const (
	// TempKnown means the field carries a real reading/setpoint.
	TempKnown TempState = iota
	// TempAbsent means the sentinel for "not available" (31FF, 7FFF).
	TempAbsent
	// TempOff means the explicit "disabled" marker (7EFF), which is
	// distinct from absent: a disabled setpoint is a known state.
	TempOff
)

// Temperature is a sentinel-aware temperature/setpoint in degrees C with
// 0.01 resolution.
type Temperature struct {
	State   TempState
	Celsius float64
}

// Known wraps a concrete temperature value.
func Known(celsius float64) Temperature {
	return Temperature{State: TempKnown, Celsius: celsius}
}

// AbsentTemp is the "not available" temperature.
var AbsentTemp = Temperature{State: TempAbsent}

// OffTemp is the explicit "disabled" temperature.
var OffTemp = Temperature{State: TempOff}

func (t Temperature) String() string {
	switch t.State {
	case TempAbsent:
		return "n/a"
	case TempOff:
		return "off"
	}
	return strconv.FormatFloat(t.Celsius, 'f', 2, 64)
}

func hexByte(v string) (int, error) {
	if len(v) != 2 {
		return 0, fmt.Errorf("field is %d chars, expected 2", len(v))
	}
	n, err := strconv.ParseUint(v, 16, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid hex %q: %w", v, err)
	}
	return int(n), nil
}

func hexWord(v string) (int, error) {
	if len(v) != 4 {
		return 0, fmt.Errorf("field is %d chars, expected 4", len(v))
	}
	n, err := strconv.ParseUint(v, 16, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid hex %q: %w", v, err)
	}
	return int(n), nil
}

// Bool decodes a one-byte boolean: 00 false, C8 true, FF absent (nil).
func Bool(v string) (*bool, error) {
	switch v {
	case "00":
		b := false
		return &b, nil
	case "C8":
		b := true
		return &b, nil
	case "FF":
		return nil, nil
	}
	if len(v) != 2 {
		return nil, fmt.Errorf("bool field is %d chars, expected 2", len(v))
	}
	return nil, fmt.Errorf("invalid bool byte: %q", v)
}

// Percent decodes a one-byte percentage at 0.5%% resolution (0x00..0xC8
// maps to 0.0..1.0). EF, FE and FF all mean "not available".
func Percent(v string) (*float64, error) {
	switch v {
	case "EF", "FE", "FF":
		return nil, nil
	}
	n, err := hexByte(v)
	if err != nil {
		return nil, err
	}
	if n > 200 {
		return nil, fmt.Errorf("percent byte %q exceeds 0xC8", v)
	}
	p := float64(n) / 200
	return &p, nil
}

// PercentToHex encodes a 0.0..1.0 ratio to its wire byte; nil encodes to
// the "not available" sentinel.
func PercentToHex(p *float64) string {
	if p == nil {
		return "FF"
	}
	return fmt.Sprintf("%02X", int(*p*200))
}

// PercentAt decodes a one-byte percentage at the given resolution
// (precision 1 means whole percent, cap 100). Used by the extended
// ventilation status payloads.
func PercentAt(v string, precision float64) (*float64, error) {
	switch v {
	case "EF", "FF":
		return nil, nil
	}
	n, err := hexByte(v)
	if err != nil {
		return nil, err
	}
	if float64(n) > 100/precision {
		return nil, fmt.Errorf("percent byte %q exceeds cap for precision %v", v, precision)
	}
	p := float64(n) / 100 * precision
	return &p, nil
}

// Temp decodes a two-byte two's-complement temperature in centi-degrees.
// 31FF and 7FFF are "not available"; 7EFF is the explicit "disabled" marker.
func Temp(v string) (Temperature, error) {
	switch v {
	case "31FF", "7FFF":
		return AbsentTemp, nil
	case "7EFF":
		return OffTemp, nil
	}
	n, err := hexWord(v)
	if err != nil {
		return AbsentTemp, err
	}
	if n >= 1<<15 {
		n -= 1 << 16
	}
	return Known(float64(n) / 100), nil
}

// TempToHex is the inverse of Temp.
func TempToHex(t Temperature) string {
	switch t.State {
	case TempAbsent:
		return "7FFF"
	case TempOff:
		return "7EFF"
	}
	n := int(t.Celsius * 100)
	if t.Celsius < 0 {
		n += 1 << 16
	}
	return fmt.Sprintf("%04X", n&0xFFFF)
}

// Date decodes a four-byte date (day, month, 2-byte year; the top three
// bits of the day byte carry the day-of-week and are masked off) to
// "YYYY-MM-DD". FFFFFFFF means "not available".
func Date(v string) (*string, error) {
	if len(v) != 8 {
		return nil, fmt.Errorf("date field is %d chars, expected 8", len(v))
	}
	if v == "FFFFFFFF" {
		return nil, nil
	}
	day, err := hexByte(v[:2])
	if err != nil {
		return nil, err
	}
	month, err := hexByte(v[2:4])
	if err != nil {
		return nil, err
	}
	year, err := hexWord(v[4:])
	if err != nil {
		return nil, err
	}
	if month < 1 || month > 12 || day&0x1F < 1 || day&0x1F > 31 {
		return nil, fmt.Errorf("invalid date field: %q", v)
	}
	s := fmt.Sprintf("%04d-%02d-%02d", year, month, day&0x1F)
	return &s, nil
}

// Str decodes hex to the printable-ASCII characters it contains, trimmed.
// An empty result is "not available" (nil).
func Str(v string) (*string, error) {
	raw, err := hex.DecodeString(v)
	if err != nil {
		return nil, fmt.Errorf("invalid hex string field: %w", err)
	}
	var b strings.Builder
	for _, c := range raw {
		if c > 31 && c < 127 {
			b.WriteByte(c)
		}
	}
	s := strings.TrimSpace(b.String())
	if s == "" {
		return nil, nil
	}
	return &s, nil
}

// StrToHex encodes a string to hex, for zone names and similar fields.
func StrToHex(s string) string {
	return strings.ToUpper(hex.EncodeToString([]byte(s)))
}

// Flags8 splits one byte into its 8 bits, least-significant first.
func Flags8(v string) ([8]uint8, error) {
	var bits [8]uint8
	n, err := hexByte(v)
	if err != nil {
		return bits, err
	}
	for i := 0; i < 8; i++ {
		bits[i] = uint8(n >> i & 1)
	}
	return bits, nil
}

// Double decodes a two-byte unsigned counter (< 32767), divided by factor.
// 7FFF means "not available".
func Double(v string, factor float64) (*float64, error) {
	if v == "7FFF" {
		return nil, nil
	}
	n, err := hexWord(v)
	if err != nil {
		return nil, err
	}
	if n >= 32767 {
		return nil, fmt.Errorf("double field %q out of range", v)
	}
	d := float64(n)
	if factor != 1 {
		d /= factor
	}
	return &d, nil
}
