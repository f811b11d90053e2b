package monitor

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/evohub/ramses/internal/frame"
)

type stubSource struct {
	header    string
	cancelled bool
	done      chan struct{}
}

func newStubSource() *stubSource {
	return &stubSource{done: make(chan struct{})}
}

func (s *stubSource) Subscribe(header string, fn func(*frame.Frame)) func() {
	s.header = header
	return func() { s.cancelled = true }
}

func (s *stubSource) Done() <-chan struct{} { return s.done }

func mustFrame(t *testing.T, line string) *frame.Frame {
	t.Helper()
	f, err := frame.ParsePacketLine(line)
	if err != nil {
		t.Fatalf("ParsePacketLine(%q): %v", line, err)
	}
	return f
}

func sized(t *testing.T, m *Model) *Model {
	t.Helper()
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return updated.(*Model)
}

func TestFormatFrameDecodesRecord(t *testing.T) {
	m := New(newStubSource(), 12)
	f := mustFrame(t, " I --- 01:145038 --:------ 01:145038 2309 003 0107D0")

	line := m.formatFrame(f)
	if !strings.Contains(line, "setpoint") {
		t.Errorf("line missing code name: %q", line)
	}
	if !strings.Contains(line, "01:145038") {
		t.Errorf("line missing source address: %q", line)
	}
	if !strings.Contains(line, "20.00") {
		t.Errorf("line missing decoded setpoint: %q", line)
	}
}

func TestFormatFrameCorruptPayload(t *testing.T) {
	m := New(newStubSource(), 12)
	f := mustFrame(t, " I --- 01:145038 18:000730 --:------ 2309 001 01")

	line := m.formatFrame(f)
	if !strings.Contains(line, "setpoint") {
		t.Errorf("line missing code name: %q", line)
	}
	if strings.Contains(line, "=") {
		t.Errorf("corrupt payload should not decode to a record: %q", line)
	}
}

func TestUpdateAppendsFrames(t *testing.T) {
	m := sized(t, New(newStubSource(), 12))

	f := mustFrame(t, "RP --- 13:163733 18:000730 --:------ 0008 002 00C8")
	updated, _ := m.Update(frameMsg{frame: f})
	m = updated.(*Model)

	if m.seen != 1 {
		t.Errorf("seen = %d, want 1", m.seen)
	}
	if len(m.lines) != 1 {
		t.Fatalf("lines = %d, want 1", len(m.lines))
	}
	if !strings.Contains(m.lines[0], "relay_demand") {
		t.Errorf("line missing record: %q", m.lines[0])
	}
}

func TestUpdatePauseDropsFrames(t *testing.T) {
	m := sized(t, New(newStubSource(), 12))

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'p'}})
	m = updated.(*Model)
	if !m.paused {
		t.Fatal("p did not pause")
	}

	f := mustFrame(t, "RP --- 13:163733 18:000730 --:------ 0008 002 00C8")
	updated, _ = m.Update(frameMsg{frame: f})
	m = updated.(*Model)

	if m.dropped != 1 || len(m.lines) != 0 {
		t.Errorf("dropped = %d lines = %d, want 1 and 0", m.dropped, len(m.lines))
	}
}

func TestQuitCancelsSubscription(t *testing.T) {
	src := newStubSource()
	m := New(src, 12)
	m.Init()

	if src.header != "*" {
		t.Errorf("subscribed to %q, want wildcard", src.header)
	}

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("quit returned no command")
	}
	if !src.cancelled {
		t.Error("quit did not cancel the subscription")
	}
}

func TestDisconnectedState(t *testing.T) {
	m := sized(t, New(newStubSource(), 12))

	updated, _ := m.Update(disconnectedMsg{})
	m = updated.(*Model)
	if !m.gone {
		t.Error("disconnect not recorded")
	}
	if !strings.Contains(m.View(), "disconnected") {
		t.Error("view missing disconnected state")
	}
}

func TestFormatValue(t *testing.T) {
	temp := 21.5
	on := true
	name := "Kitchen"

	tests := []struct {
		in   any
		want string
	}{
		{&temp, "21.50"},
		{(*float64)(nil), "n/a"},
		{&on, "true"},
		{&name, "Kitchen"},
		{nil, "n/a"},
		{"04", "04"},
	}
	for _, tt := range tests {
		if got := formatValue(tt.in); got != tt.want {
			t.Errorf("formatValue(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
