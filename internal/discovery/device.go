package discovery

import (
	"fmt"
	"time"
)

// Gateway is a gateway daemon found on the local network.
type Gateway struct {
	// Name is the mDNS instance name (e.g. "evofw3 on attic-pi").
	Name string

	// Hostname is the mDNS hostname (e.g. "attic-pi.local.").
	Hostname string

	// IP is the resolved address, IPv4 preferred.
	IP string

	// Port is the WebSocket port the daemon listens on.
	Port int

	// Metadata holds the mDNS TXT record data (e.g. "device=evofw3").
	Metadata map[string]string

	// DiscoveredAt is when the gateway was found.
	DiscoveredAt time.Time
}

func (g *Gateway) String() string {
	return fmt.Sprintf("gateway %s (%s) at %s:%d", g.Name, g.Hostname, g.IP, g.Port)
}

// URL returns the WebSocket endpoint to dial.
func (g *Gateway) URL() string {
	return fmt.Sprintf("ws://%s:%d/ws", g.IP, g.Port)
}

// GetMetadata retrieves a TXT record value, or "" if absent.
func (g *Gateway) GetMetadata(key string) string {
	if g.Metadata == nil {
		return ""
	}
	return g.Metadata[key]
}
