package codec

import (
	"fmt"
	"strconv"
	"time"
)

// DateTime decodes the 12- or 14-hex-char wall-clock format used by the
// system time and setpoint-until fields. The 12-char form is minute, hour,
// day, month and a two-byte year; the 14-char form carries a leading
// seconds byte. The top bit of the hour byte flags DST and is masked off.
// FF in the minute byte means "not available".
func DateTime(v string) (*time.Time, error) {
	if len(v) != 12 && len(v) != 14 {
		return nil, fmt.Errorf("datetime field is %d chars, expected 12 or 14", len(v))
	}
	seconds := 0
	if len(v) == 14 {
		s, err := hexByte(v[:2])
		if err != nil {
			return nil, err
		}
		seconds = s
		v = v[2:]
	}
	if v[:2] == "FF" {
		return nil, nil
	}
	minute, err := hexByte(v[:2])
	if err != nil {
		return nil, err
	}
	hour, err := hexByte(v[2:4])
	if err != nil {
		return nil, err
	}
	day, err := hexByte(v[4:6])
	if err != nil {
		return nil, err
	}
	month, err := hexByte(v[6:8])
	if err != nil {
		return nil, err
	}
	year, err := hexWord(v[8:12])
	if err != nil {
		return nil, err
	}
	hour &= 0x7F // high bit flags DST
	if month < 1 || month > 12 || day < 1 || day > 31 ||
		hour > 23 || minute > 59 || seconds > 59 {
		return nil, fmt.Errorf("invalid datetime field: %q", v)
	}
	t := time.Date(year, time.Month(month), day, hour, minute, seconds, 0, time.UTC)
	return &t, nil
}

// DateTimeToHex is the inverse of DateTime. Use 12 chars for setpoint-until
// fields and 14 for the system clock, which carries seconds.
func DateTimeToHex(t time.Time, chars int) (string, error) {
	switch chars {
	case 12:
		return fmt.Sprintf("%02X%02X%02X%02X%04X",
			t.Minute(), t.Hour(), t.Day(), int(t.Month()), t.Year()), nil
	case 14:
		return fmt.Sprintf("%02X%02X%02X%02X%02X%04X",
			t.Second(), t.Minute(), t.Hour(), t.Day(), int(t.Month()), t.Year()), nil
	}
	return "", fmt.Errorf("datetime hex must be 12 or 14 chars, not %d", chars)
}

// Timestamp decodes the packed 6-byte bitfield timestamp carried by fault
// log entries to "YYYY-MM-DD HH:MM:SS". The fields live at fixed bit
// offsets inside the 48-bit value.
func Timestamp(v string) (*string, error) {
	if len(v) != 12 {
		return nil, fmt.Errorf("timestamp field is %d chars, expected 12", len(v))
	}
	n, err := strconv.ParseUint(v, 16, 48)
	if err != nil {
		return nil, fmt.Errorf("invalid timestamp field %q: %w", v, err)
	}
	if n == 0 {
		return nil, nil
	}
	year := int(n>>24&0x7F) + 2000
	month := int(n >> 36 & 0x0F)
	day := int(n >> 31 & 0x1F)
	hour := int(n >> 19 & 0x1F)
	minute := int(n >> 13 & 0x3F)
	second := int(n >> 7 & 0x3F)
	if month < 1 || month > 12 || day < 1 || day > 31 ||
		hour > 23 || minute > 59 || second > 59 {
		return nil, fmt.Errorf("invalid timestamp field: %q", v)
	}
	s := fmt.Sprintf("%04d-%02d-%02d %02d:%02d:%02d",
		year, month, day, hour, minute, second)
	return &s, nil
}

// TimestampToHex is the inverse of Timestamp.
func TimestampToHex(t time.Time) string {
	n := uint64(t.Year()-2000)<<24 |
		uint64(t.Month())<<36 |
		uint64(t.Day())<<31 |
		uint64(t.Hour())<<19 |
		uint64(t.Minute())<<13 |
		uint64(t.Second())<<7
	return fmt.Sprintf("%012X", n)
}
