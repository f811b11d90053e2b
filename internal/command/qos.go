package command

import (
	"time"

	"github.com/evohub/ramses/internal/frame"
)

// Priority orders queued commands; lower transmits first.
type Priority int

const (
	PriorityHighest Priority = 0
	PriorityHigh    Priority = 2
	PriorityDefault Priority = 4
	PriorityLow     Priority = 6
	PriorityLowest  Priority = 8
)

// QoS is the transmit policy for one command: queue priority, retransmit
// budget and the echo timeout before a retry.
type QoS struct {
	Priority       Priority
	Retries        int
	Timeout        time.Duration
	DisableBackoff bool
}

// DefaultQoS applies to any (verb, code) without a table entry.
var DefaultQoS = QoS{
	Priority: PriorityDefault,
	Retries:  2,
	Timeout:  50 * time.Millisecond,
}

type qosKey struct {
	verb frame.Verb
	code frame.Code
}

// qosTable carries the per-exchange overrides. The long 3220 timeout covers
// the full round trip to the boiler behind the bridge.
var qosTable = map[qosKey]QoS{
	{frame.RQ, "0016"}: {Priority: PriorityHigh, Retries: 5, Timeout: 50 * time.Millisecond},
	{frame.RQ, "1F09"}: {Priority: PriorityHigh, Retries: 5, Timeout: 50 * time.Millisecond},
	{frame.I, "1FC9"}:  {Priority: PriorityHigh, Retries: 2, Timeout: time.Second, DisableBackoff: true},
	{frame.I, "0404"}:  {Priority: PriorityHigh, Retries: 5, Timeout: 300 * time.Millisecond},
	{frame.W, "0404"}:  {Priority: PriorityHigh, Retries: 5, Timeout: 300 * time.Millisecond},
	{frame.RQ, "0418"}: {Priority: PriorityLow, Retries: 3, Timeout: 50 * time.Millisecond},
	{frame.RQ, "3220"}: {Priority: PriorityDefault, Retries: 1, Timeout: time.Second, DisableBackoff: true},
}

// QoSFor returns the transmit policy for a (verb, code).
func QoSFor(verb frame.Verb, code frame.Code) QoS {
	if qos, ok := qosTable[qosKey{verb, code}]; ok {
		return qos
	}
	return DefaultQoS
}
