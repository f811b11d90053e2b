package config

import (
	"fmt"
	"time"

	"github.com/evohub/ramses/internal/frame"
)

const (
	// DefaultMaxZones matches an unconfigured controller.
	DefaultMaxZones = 12
	// MaxZonesLimit is the hard upper bound a controller supports.
	MaxZonesLimit = 16
)

// Config is the whole user configuration file.
type Config struct {
	Version int                `yaml:"version"`
	Gateway *Gateway           `yaml:"gateway,omitempty"`
	System  *System            `yaml:"system,omitempty"`
	Devices map[string]*Device `yaml:"devices,omitempty"` // keyed by device id, e.g. "01:145038"
}

// Gateway describes how to reach the gateway daemon.
type Gateway struct {
	URL      string `yaml:"url,omitempty"` // ws:// or wss:// endpoint
	LogLevel string `yaml:"log_level,omitempty"`
}

// System describes the heating system behind the gateway.
type System struct {
	ControllerID string `yaml:"controller_id,omitempty"`
	MaxZones     int    `yaml:"max_zones,omitempty"`
}

// Device is user-defined metadata for one device on the bus.
type Device struct {
	Nickname string    `yaml:"nickname,omitempty"`
	Class    string    `yaml:"class,omitempty"` // e.g. "controller", "trv", "otb"
	ZoneIdx  string    `yaml:"zone_idx,omitempty"`
	LastSeen time.Time `yaml:"last_seen,omitempty"`
}

// New creates a Config with default values.
func New() *Config {
	return &Config{
		Version: 1,
		Gateway: &Gateway{
			URL: "ws://localhost:7161/ws",
		},
		System: &System{
			MaxZones: DefaultMaxZones,
		},
		Devices: make(map[string]*Device),
	}
}

// Validate checks the bounds a loaded file must satisfy.
func (c *Config) Validate() error {
	if c.Version != 1 {
		return fmt.Errorf("unsupported config version: %d (expected 1)", c.Version)
	}
	if c.System != nil {
		if mz := c.System.MaxZones; mz < 1 || mz > MaxZonesLimit {
			return fmt.Errorf("max_zones %d out of range 1..%d", mz, MaxZonesLimit)
		}
		if id := c.System.ControllerID; id != "" {
			if _, err := frame.ParseAddress(id); err != nil {
				return fmt.Errorf("controller_id: %w", err)
			}
		}
	}
	for id := range c.Devices {
		if _, err := frame.ParseAddress(id); err != nil {
			return fmt.Errorf("device %q: %w", id, err)
		}
	}
	return nil
}

// MaxZones returns the configured zone bound, or the default.
func (c *Config) MaxZones() int {
	if c.System == nil || c.System.MaxZones == 0 {
		return DefaultMaxZones
	}
	return c.System.MaxZones
}

// GatewayURL returns the configured gateway endpoint, or the default.
func (c *Config) GatewayURL() string {
	if c.Gateway == nil || c.Gateway.URL == "" {
		return New().Gateway.URL
	}
	return c.Gateway.URL
}

// EnsureDevice returns the metadata entry for a device id, creating it if
// needed.
func (c *Config) EnsureDevice(id string) *Device {
	if c.Devices == nil {
		c.Devices = make(map[string]*Device)
	}
	if device, ok := c.Devices[id]; ok {
		return device
	}
	device := &Device{}
	c.Devices[id] = device
	return device
}

// TouchDevice updates the last-seen timestamp for a device.
func (c *Config) TouchDevice(id string) {
	c.EnsureDevice(id).LastSeen = time.Now()
}

// SetNickname sets a user-friendly name for a device.
func (c *Config) SetNickname(id, nickname string) {
	c.EnsureDevice(id).Nickname = nickname
}
