package discovery

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/grandcat/zeroconf"
)

const (
	// ServiceType is the mDNS service type gateway daemons advertise.
	ServiceType = "_ramses-gw._tcp"

	// ServiceDomain is the mDNS domain.
	ServiceDomain = "local."

	// DefaultScanTimeout bounds a discovery scan.
	DefaultScanTimeout = 10 * time.Second

	// DefaultPort is the daemon's default WebSocket port.
	DefaultPort = 7161
)

// Scanner browses mDNS for gateway daemons.
type Scanner struct {
	Timeout time.Duration
}

// NewScanner creates a Scanner with the default timeout.
func NewScanner() *Scanner {
	return &Scanner{Timeout: DefaultScanTimeout}
}

// Scan discovers every gateway on the local network, collecting entries
// until the timeout expires.
func (s *Scanner) Scan(ctx context.Context) ([]*Gateway, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	entries := make(chan *zeroconf.ServiceEntry)
	gateways := make([]*Gateway, 0)
	collected := make(chan struct{})
	go func() {
		defer close(collected)
		for entry := range entries {
			if gw := parseServiceEntry(entry); gw != nil {
				gateways = append(gateways, gw)
			}
		}
	}()

	if err := resolver.Browse(ctx, ServiceType, ServiceDomain, entries); err != nil {
		return nil, fmt.Errorf("failed to browse for mDNS services: %w", err)
	}

	<-ctx.Done()
	<-collected
	return gateways, nil
}

// FindFirst returns the first gateway to answer, without waiting out the
// full scan window.
func (s *Scanner) FindFirst(ctx context.Context) (*Gateway, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	entries := make(chan *zeroconf.ServiceEntry)
	found := make(chan *Gateway, 1)
	go func() {
		for entry := range entries {
			if gw := parseServiceEntry(entry); gw != nil {
				select {
				case found <- gw:
				default:
				}
				cancel()
				return
			}
		}
	}()

	if err := resolver.Browse(ctx, ServiceType, ServiceDomain, entries); err != nil {
		return nil, fmt.Errorf("failed to browse for mDNS services: %w", err)
	}

	select {
	case gw := <-found:
		return gw, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("no gateway found within %v", s.Timeout)
	}
}

// parseServiceEntry converts a zeroconf entry to a Gateway, or nil if the
// entry carries no usable address.
func parseServiceEntry(entry *zeroconf.ServiceEntry) *Gateway {
	var ip string
	for _, addr := range entry.AddrIPv4 {
		ip = addr.String()
		break
	}
	if ip == "" && len(entry.AddrIPv6) > 0 {
		ip = entry.AddrIPv6[0].String()
	}
	if ip == "" {
		return nil
	}

	port := entry.Port
	if port == 0 {
		port = DefaultPort
	}

	metadata := make(map[string]string)
	for _, txt := range entry.Text {
		parts := strings.SplitN(txt, "=", 2)
		if len(parts) == 2 {
			metadata[parts[0]] = parts[1]
		} else {
			metadata[parts[0]] = ""
		}
	}

	return &Gateway{
		Name:         entry.Instance,
		Hostname:     entry.HostName,
		IP:           ip,
		Port:         port,
		Metadata:     metadata,
		DiscoveredAt: time.Now(),
	}
}

// Scan is a convenience wrapper with an explicit timeout.
func Scan(ctx context.Context, timeout time.Duration) ([]*Gateway, error) {
	scanner := NewScanner()
	scanner.Timeout = timeout
	return scanner.Scan(ctx)
}
