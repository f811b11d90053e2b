package faultlog

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/evohub/ramses/internal/command"
	"github.com/evohub/ramses/internal/frame"
)

const ctlID = "01:145038"

const (
	faultEntry = "000000B00401010000008694A3CC7FFFFF70000ECC8A"
	nullEntry  = "000000B0000000000000000000007FFFFF7000000000"
)

// mockTransport answers every 0418 request from a canned log.
type mockTransport struct {
	mu       sync.Mutex
	subs     map[string][]func(*frame.Frame)
	logSize  int
	requests []int
}

func newMockTransport(logSize int) *mockTransport {
	return &mockTransport{
		subs:    make(map[string][]func(*frame.Frame)),
		logSize: logSize,
	}
}

func (m *mockTransport) Subscribe(header string, fn func(*frame.Frame)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs[header] = append(m.subs[header], fn)
	return func() {}
}

func (m *mockTransport) Send(ctx context.Context, cmd *command.Command) error {
	idx := 0
	if _, err := fmt.Sscanf(cmd.Payload, "%06X", &idx); err != nil {
		return err
	}
	m.mu.Lock()
	m.requests = append(m.requests, idx)
	subs := m.subs[cmd.RxHeader()]
	m.mu.Unlock()

	payload := nullEntry
	if idx < m.logSize {
		payload = faultEntry[:4] + fmt.Sprintf("%02X", idx) + faultEntry[6:]
	}
	line := fmt.Sprintf("RP --- %s %s --:------ 0418 022 %s",
		ctlID, frame.GatewayID, payload)
	fr, err := frame.ParsePacketLine(line)
	if err != nil {
		return err
	}
	for _, fn := range subs {
		go fn(fr)
	}
	return nil
}

func TestFetchStopsAtLimit(t *testing.T) {
	tp := newMockTransport(64)
	entries, err := NewFetcher(ctlID).Fetch(context.Background(), tp)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(entries) != 6 {
		t.Fatalf("got %d entries, want 6", len(entries))
	}
	for i, e := range entries {
		if e.LogIdx != fmt.Sprintf("%02X", i) {
			t.Errorf("entry %d: log_idx = %s", i, e.LogIdx)
		}
		if e.Type != "battery_low" {
			t.Errorf("entry %d: type = %s", i, e.Type)
		}
		if e.DeviceID != "03:183434" {
			t.Errorf("entry %d: device_id = %s", i, e.DeviceID)
		}
	}
}

func TestFetchStopsAtNullEntry(t *testing.T) {
	tp := newMockTransport(3)
	entries, err := NewFetcher(ctlID, WithLimit(10)).Fetch(context.Background(), tp)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}
	if got := len(tp.requests); got != 4 {
		t.Errorf("made %d requests, want 4 (3 entries plus the terminator)", got)
	}
}

func TestFetchEmptyLog(t *testing.T) {
	tp := newMockTransport(0)
	entries, err := NewFetcher(ctlID).Fetch(context.Background(), tp)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("got %d entries, want none", len(entries))
	}
}

func TestFetchHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tp := newMockTransport(64)
	_, err := NewFetcher(ctlID).Fetch(ctx, tp)
	if err == nil {
		t.Fatal("expected a context error")
	}
	if !IsExpired(err) {
		t.Errorf("err = %v, want an expired fetch", err)
	}
}

func TestFetchStart(t *testing.T) {
	tp := newMockTransport(64)
	entries, err := NewFetcher(ctlID, WithStart(4), WithLimit(2)).
		Fetch(context.Background(), tp)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].LogIdx != "04" || entries[1].LogIdx != "05" {
		t.Errorf("log indexes = %s, %s", entries[0].LogIdx, entries[1].LogIdx)
	}
	if got := len(tp.requests); got != 2 || tp.requests[0] != 4 {
		t.Errorf("requests = %v, want [4 5]", tp.requests)
	}
}

// the fetch deadline must comfortably exceed the per-entry poll cadence
func TestFetchTiming(t *testing.T) {
	if fetchDeadline < 100*pollInterval {
		t.Error("deadline too tight for a 64-entry log")
	}
	if fetchDeadline != 2*time.Minute {
		t.Errorf("deadline = %v", fetchDeadline)
	}
}
