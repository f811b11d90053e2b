// Package faultlog retrieves a controller's fault log: a sequence of RQ/RP
// exchanges walking the log index until the controller answers with the
// null entry that marks the end of the log.
package faultlog

import (
	"context"
	"fmt"
	"time"

	"github.com/evohub/ramses/internal/command"
	"github.com/evohub/ramses/internal/frame"
	"github.com/evohub/ramses/internal/parser"
)

// Transport is the slice of the gateway client a fetch needs: queue a
// command for transmission and watch for frames matching a header.
type Transport interface {
	Send(ctx context.Context, cmd *command.Command) error
	Subscribe(header string, fn func(*frame.Frame)) (cancel func())
}

// Entry is one decoded fault log record.
type Entry struct {
	LogIdx      string
	Timestamp   string
	State       string
	Type        string
	DeviceClass string
	DeviceID    string
	ZoneIdx     string
	DomainID    string
}

const (
	defaultStart    = 0
	defaultLimit    = 6
	defaultMaxZones = 12
	pollInterval    = 50 * time.Millisecond
	fetchDeadline   = 2 * time.Minute
)

// Fetcher walks a controller's fault log entry by entry.
type Fetcher struct {
	ctlID    string
	start    int
	limit    int
	maxZones int
}

// Option adjusts a Fetcher.
type Option func(*Fetcher)

// WithStart sets the first log index to request.
func WithStart(idx int) Option { return func(f *Fetcher) { f.start = idx } }

// WithLimit bounds how many entries are requested.
func WithLimit(n int) Option { return func(f *Fetcher) { f.limit = n } }

// WithMaxZones sets the zone bound used when decoding entries.
func WithMaxZones(n int) Option { return func(f *Fetcher) { f.maxZones = n } }

// NewFetcher builds a Fetcher for one controller.
func NewFetcher(ctlID string, opts ...Option) *Fetcher {
	f := &Fetcher{
		ctlID:    ctlID,
		start:    defaultStart,
		limit:    defaultLimit,
		maxZones: defaultMaxZones,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch requests log entries sequentially until the limit is reached, the
// controller reports the end of the log, or the deadline expires. Entries
// already retrieved are returned alongside any error.
func (f *Fetcher) Fetch(ctx context.Context, tp Transport) ([]Entry, error) {
	ctx, cancel := context.WithTimeout(ctx, fetchDeadline)
	defer cancel()

	frames := make(chan *frame.Frame, 8)
	unsubscribe := tp.Subscribe(rxHeader(f.ctlID), func(fr *frame.Frame) {
		select {
		case frames <- fr:
		default:
		}
	})
	defer unsubscribe()

	var entries []Entry
	for idx := f.start; idx < f.start+f.limit; idx++ {
		cmd, err := command.GetLogEntry(f.ctlID, idx)
		if err != nil {
			return entries, err
		}
		if err := tp.Send(ctx, cmd); err != nil {
			return entries, err
		}

		entry, last, err := f.await(ctx, frames, idx)
		if err != nil {
			return entries, err
		}
		if last {
			return entries, nil
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// await waits for the response carrying the requested log index. A null
// entry decodes to an empty record and marks the end of the log.
func (f *Fetcher) await(ctx context.Context, frames <-chan *frame.Frame, idx int) (Entry, bool, error) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return Entry{}, false, &ExpiredError{LogIdx: idx, Err: ctx.Err()}
		case <-ticker.C:
		}

		select {
		case fr := <-frames:
			result := parser.ParsePayload(fr, f.maxZones)
			if result == nil || result.IsArray() {
				continue
			}
			if len(result.Record) == 0 {
				return Entry{}, true, nil
			}
			entry := toEntry(result.Record)
			if entry.LogIdx != fmt.Sprintf("%02X", idx) {
				continue // a stale response from an earlier request
			}
			return entry, false, nil
		default:
		}
	}
}

func rxHeader(ctlID string) string {
	return "RP|" + ctlID + "|0418"
}

func toEntry(rec map[string]any) Entry {
	str := func(key string) string {
		if v, ok := rec[key].(string); ok {
			return v
		}
		return ""
	}
	e := Entry{
		LogIdx:      str("log_idx"),
		State:       str("fault_state"),
		Type:        str("fault_type"),
		DeviceClass: str("device_class"),
		DeviceID:    str("device_id"),
		ZoneIdx:     str("zone_idx"),
		DomainID:    str("domain_id"),
	}
	if ts, ok := rec["timestamp"].(*string); ok && ts != nil {
		e.Timestamp = *ts
	}
	return e
}
