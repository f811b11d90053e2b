package discovery

import (
	"net"
	"testing"

	"github.com/grandcat/zeroconf"
)

func TestParseServiceEntry(t *testing.T) {
	entry := &zeroconf.ServiceEntry{
		ServiceRecord: zeroconf.ServiceRecord{Instance: "evofw3 on attic-pi"},
		HostName:      "attic-pi.local.",
		Port:          7161,
		Text:          []string{"device=evofw3", "fw=0.7.1", "flag"},
		AddrIPv4:      []net.IP{net.ParseIP("192.168.1.50")},
	}

	gw := parseServiceEntry(entry)
	if gw == nil {
		t.Fatal("expected a gateway")
	}
	if gw.Name != "evofw3 on attic-pi" {
		t.Errorf("name = %s", gw.Name)
	}
	if gw.IP != "192.168.1.50" || gw.Port != 7161 {
		t.Errorf("endpoint = %s:%d", gw.IP, gw.Port)
	}
	if gw.URL() != "ws://192.168.1.50:7161/ws" {
		t.Errorf("url = %s", gw.URL())
	}
	if gw.GetMetadata("device") != "evofw3" {
		t.Errorf("device = %s", gw.GetMetadata("device"))
	}
	if v, ok := gw.Metadata["flag"]; !ok || v != "" {
		t.Errorf("bare TXT key = %q, %v", v, ok)
	}
}

func TestParseServiceEntryDefaults(t *testing.T) {
	entry := &zeroconf.ServiceEntry{
		HostName: "gw.local.",
		AddrIPv4: []net.IP{net.ParseIP("10.0.0.9")},
	}
	gw := parseServiceEntry(entry)
	if gw == nil {
		t.Fatal("expected a gateway")
	}
	if gw.Port != DefaultPort {
		t.Errorf("port = %d, want %d", gw.Port, DefaultPort)
	}
}

func TestParseServiceEntryNoAddress(t *testing.T) {
	entry := &zeroconf.ServiceEntry{HostName: "gw.local.", Port: 7161}
	if gw := parseServiceEntry(entry); gw != nil {
		t.Fatalf("expected nil for an address-less entry, got %+v", gw)
	}
}
