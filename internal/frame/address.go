package frame

import (
	"fmt"
	"regexp"
	"strconv"
)

// Well-known pseudo-addresses. The "no device" and "null device" addresses
// carry no real destination and bypass destination-role validation.
const (
	NonDeviceID  = "--:------"
	NullDeviceID = "63:262142" // hex FFFFFE
	GatewayID    = "18:000730" // default HGI80-style gateway address
)

var addrPattern = regexp.MustCompile(`^(--:------|\d{2}:\d{6})$`)

// Address identifies a device on the bus: a two-digit device type (class)
// and a six-digit serial number, e.g. "01:145038" for a controller.
type Address struct {
	ID string
}

// ParseAddress validates and wraps a device id string.
func ParseAddress(id string) (Address, error) {
	if !addrPattern.MatchString(id) {
		return Address{}, fmt.Errorf("invalid device id: %q", id)
	}
	return Address{ID: id}, nil
}

// Type returns the two-digit device type, or "--" for the non-device address.
func (a Address) Type() string {
	if len(a.ID) < 2 {
		return "--"
	}
	return a.ID[:2]
}

// IsNone reports whether this is the "no device" placeholder address.
func (a Address) IsNone() bool { return a.ID == NonDeviceID || a.ID == "" }

// IsNull reports whether this is the null (broadcast sink) address.
func (a Address) IsNull() bool { return a.Type() == "63" }

func (a Address) String() string {
	if a.ID == "" {
		return NonDeviceID
	}
	return a.ID
}

// Hex returns the 6-hex-digit wire form of the address: the device type in
// the top 6 bits, the serial in the lower 18.
func (a Address) Hex() (string, error) {
	return IDToHex(a.ID)
}

// IDToHex converts "TT:NNNNNN" to its 3-byte hex wire form.
func IDToHex(id string) (string, error) {
	if id == NonDeviceID || id == "" {
		return "", fmt.Errorf("no hex form for %q", NonDeviceID)
	}
	if len(id) != 9 || id[2] != ':' {
		return "", fmt.Errorf("invalid device id: %q", id)
	}
	devType, err := strconv.Atoi(id[:2])
	if err != nil {
		return "", fmt.Errorf("invalid device type in %q: %w", id, err)
	}
	serial, err := strconv.Atoi(id[3:])
	if err != nil {
		return "", fmt.Errorf("invalid serial in %q: %w", id, err)
	}
	if devType > 0x3F || serial > 0x3FFFF {
		return "", fmt.Errorf("device id out of range: %q", id)
	}
	return fmt.Sprintf("%06X", devType<<18|serial), nil
}

// HexToID converts a 3-byte hex device id to "TT:NNNNNN".
func HexToID(hexID string) (string, error) {
	if len(hexID) != 6 {
		return "", fmt.Errorf("device hex id must be 6 chars, got %q", hexID)
	}
	v, err := strconv.ParseUint(hexID, 16, 32)
	if err != nil {
		return "", fmt.Errorf("invalid device hex id %q: %w", hexID, err)
	}
	return fmt.Sprintf("%02d:%06d", (v&0xFC0000)>>18, v&0x03FFFF), nil
}

// ParseAddrs resolves the three-address field of a frame into source and
// destination. The wire uses three slots; which ones are populated depends
// on who is talking to whom:
//
//	src dst ---  a directed exchange
//	src --- src  a broadcast (source repeated in slot 2)
//	--- --- src  a loopback/announcement, src == dst
func ParseAddrs(a0, a1, a2 string) (src, dst Address, addrs [3]Address, err error) {
	for i, raw := range []string{a0, a1, a2} {
		addrs[i], err = ParseAddress(raw)
		if err != nil {
			return
		}
	}

	switch {
	case !addrs[0].IsNone() && !addrs[1].IsNone():
		if !addrs[2].IsNone() {
			err = fmt.Errorf("invalid address set: %s %s %s", a0, a1, a2)
			return
		}
		src, dst = addrs[0], addrs[1]
	case !addrs[0].IsNone():
		src, dst = addrs[0], addrs[2]
	case !addrs[2].IsNone():
		src, dst = addrs[2], addrs[2]
	default:
		err = fmt.Errorf("invalid address set: %s %s %s", a0, a1, a2)
	}
	return
}
