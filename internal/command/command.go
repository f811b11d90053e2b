// Package command constructs outbound frames: validated payload builders
// for every supported exchange, plus the transmit policy (priority, retry
// budget, echo timeout) each one carries onto the send queue.
package command

import (
	"time"

	"github.com/evohub/ramses/internal/frame"
)

// Command is a frame queued for transmission, with its transmit policy and
// creation time for stable queue ordering.
type Command struct {
	frame.Frame
	QoS     QoS
	Created time.Time
}

// New builds a directed command from the gateway to a device. The frame is
// structurally validated before it can reach a queue; anything malformed is
// an InvalidArgsError, never a transmit.
func New(verb frame.Verb, code frame.Code, payload, destID string) (*Command, error) {
	src, err := frame.ParseAddress(frame.GatewayID)
	if err != nil {
		return nil, NewInvalidArgsError("gateway address: %v", err)
	}
	dst, err := frame.ParseAddress(destID)
	if err != nil {
		return nil, NewInvalidArgsError("destination: %v", err)
	}

	cmd := &Command{
		Frame: frame.Frame{
			Verb:    verb,
			Seqn:    "---",
			Src:     src,
			Dst:     dst,
			Addrs:   [3]frame.Address{src, dst, {ID: frame.NonDeviceID}},
			Code:    code,
			Payload: payload,
		},
		QoS:     QoSFor(verb, code),
		Created: time.Now(),
	}
	if !cmd.IsValid() {
		return nil, NewInvalidArgsError("malformed frame: %s", cmd.String())
	}
	return cmd, nil
}

// Packet builds a command with explicit address slots, for impersonation
// and announcement frames where the gateway is not the source.
func Packet(verb frame.Verb, seqn string, addr0, addr1, addr2 string, code frame.Code, payload string) (*Command, error) {
	if seqn == "" {
		seqn = "---"
	}
	src, dst, addrs, err := frame.ParseAddrs(addr0, addr1, addr2)
	if err != nil {
		return nil, NewInvalidArgsError("addresses: %v", err)
	}

	cmd := &Command{
		Frame: frame.Frame{
			Verb:    verb,
			Seqn:    seqn,
			Src:     src,
			Dst:     dst,
			Addrs:   addrs,
			Code:    code,
			Payload: payload,
		},
		QoS:     QoSFor(verb, code),
		Created: time.Now(),
	}
	if !cmd.IsValid() {
		return nil, NewInvalidArgsError("malformed frame: %s", cmd.String())
	}
	return cmd, nil
}

// Less orders commands for the send queue: priority first, then age, so
// equal-priority commands transmit in the order they were built.
func (c *Command) Less(other *Command) bool {
	if c.QoS.Priority != other.QoS.Priority {
		return c.QoS.Priority < other.QoS.Priority
	}
	return c.Created.Before(other.Created)
}
