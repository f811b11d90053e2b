// Package monitor is the interactive packet monitor: a live, scrollable
// view of decoded frames as they arrive from the gateway.
package monitor

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/evohub/ramses/internal/frame"
	"github.com/evohub/ramses/internal/parser"
	"github.com/evohub/ramses/internal/ramses"
	"github.com/evohub/ramses/internal/transport"
	"github.com/evohub/ramses/internal/ui"
)

// Source is the slice of the gateway client the monitor needs.
type Source interface {
	Subscribe(header string, fn func(*frame.Frame)) (cancel func())
	Done() <-chan struct{}
}

// frameMsg carries one received frame into the Bubble Tea loop.
type frameMsg struct{ frame *frame.Frame }

// disconnectedMsg signals the gateway session ended.
type disconnectedMsg struct{}

// Model is the packet monitor TUI state.
type Model struct {
	source   Source
	maxZones int

	frames chan *frame.Frame
	cancel func()

	viewport viewport.Model
	spinner  spinner.Model

	lines    []string
	seen     int
	dropped  int
	paused   bool
	gone     bool
	ready    bool
	width    int
	height   int
}

const maxLines = 2000

// New creates a monitor reading every frame from the source.
func New(source Source, maxZones int) *Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(ui.PrimaryColor)

	return &Model{
		source:   source,
		maxZones: maxZones,
		frames:   make(chan *frame.Frame, 64),
		spinner:  sp,
	}
}

// Run starts the monitor and blocks until the user quits or the session
// ends.
func Run(client *transport.Client, maxZones int) error {
	m := New(client, maxZones)
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	m.cancel = m.source.Subscribe(transport.WildcardHeader, func(f *frame.Frame) {
		select {
		case m.frames <- f:
		default:
		}
	})
	return tea.Batch(m.waitForFrame(), m.waitForDisconnect(), m.spinner.Tick)
}

func (m *Model) waitForFrame() tea.Cmd {
	return func() tea.Msg {
		f, ok := <-m.frames
		if !ok {
			return disconnectedMsg{}
		}
		return frameMsg{frame: f}
	}
}

func (m *Model) waitForDisconnect() tea.Cmd {
	return func() tea.Msg {
		<-m.source.Done()
		return disconnectedMsg{}
	}
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit
		case "p", " ":
			m.paused = !m.paused
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		viewHeight := msg.Height - 4 // header and status bars
		if viewHeight < 1 {
			viewHeight = 1
		}
		if !m.ready {
			m.viewport = viewport.New(msg.Width, viewHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = viewHeight
		}
		m.refresh()
		return m, nil

	case frameMsg:
		m.seen++
		if m.paused {
			m.dropped++
		} else {
			m.append(m.formatFrame(msg.frame))
		}
		return m, m.waitForFrame()

	case disconnectedMsg:
		m.gone = true
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *Model) append(line string) {
	m.lines = append(m.lines, line)
	if len(m.lines) > maxLines {
		m.lines = m.lines[len(m.lines)-maxLines:]
	}
	m.refresh()
}

func (m *Model) refresh() {
	if !m.ready {
		return
	}
	atBottom := m.viewport.AtBottom()
	m.viewport.SetContent(strings.Join(m.lines, "\n"))
	if atBottom {
		m.viewport.GotoBottom()
	}
}

var (
	verbStyle    = lipgloss.NewStyle().Foreground(ui.PrimaryColor).Bold(true)
	codeStyle    = lipgloss.NewStyle().Foreground(ui.TextColor)
	addrStyle    = lipgloss.NewStyle().Foreground(ui.MutedColor)
	recordStyle  = lipgloss.NewStyle().Foreground(ui.SuccessColor)
	corruptStyle = lipgloss.NewStyle().Foreground(ui.ErrorColor)
)

// formatFrame renders one frame as a monitor line: time, verb, code name,
// addresses and the decoded record, or the raw payload when decoding
// fails.
func (m *Model) formatFrame(f *frame.Frame) string {
	name := string(f.Code)
	if info, ok := ramses.Lookup(f.Code); ok {
		name = info.Name
	}

	head := fmt.Sprintf("%s %s %-18s %s",
		time.Now().Format("15:04:05"),
		verbStyle.Render(string(f.Verb)),
		codeStyle.Render(name),
		addrStyle.Render(f.Src.String()+" > "+f.Dst.String()))

	result, err := parser.Parse(f, m.maxZones)
	if err != nil {
		return head + " " + corruptStyle.Render(err.Error())
	}
	if result.IsArray() {
		parts := make([]string, 0, len(result.Records))
		for _, rec := range result.Records {
			parts = append(parts, formatRecord(rec))
		}
		return head + " " + recordStyle.Render("["+strings.Join(parts, " | ")+"]")
	}
	return head + " " + recordStyle.Render(formatRecord(result.Record))
}

// formatRecord renders a decoded record with stable key order, hiding the
// underscore-prefixed diagnostic fields.
func formatRecord(rec map[string]any) string {
	keys := make([]string, 0, len(rec))
	for k := range rec {
		if strings.HasPrefix(k, "_") {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+formatValue(rec[k]))
	}
	return strings.Join(parts, " ")
}

func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "n/a"
	case *float64:
		if val == nil {
			return "n/a"
		}
		return fmt.Sprintf("%.2f", *val)
	case *bool:
		if val == nil {
			return "n/a"
		}
		return fmt.Sprintf("%t", *val)
	case *string:
		if val == nil {
			return "n/a"
		}
		return *val
	case *time.Time:
		if val == nil {
			return "n/a"
		}
		return val.Format("2006-01-02 15:04")
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprintf("%v", val)
	}
}

var (
	titleBarStyle  = lipgloss.NewStyle().Foreground(ui.TextColor).Background(ui.PrimaryColor).Bold(true).Padding(0, 1)
	statusBarStyle = lipgloss.NewStyle().Foreground(ui.MutedColor)
	pausedStyle    = lipgloss.NewStyle().Foreground(ui.WarningColor).Bold(true)
	goneStyle      = lipgloss.NewStyle().Foreground(ui.ErrorColor).Bold(true)
)

// View implements tea.Model.
func (m *Model) View() string {
	if !m.ready {
		return "\n  " + m.spinner.View() + " waiting for terminal size..."
	}

	title := titleBarStyle.Render("ramses monitor")

	state := m.spinner.View() + " listening"
	switch {
	case m.gone:
		state = goneStyle.Render("disconnected")
	case m.paused:
		state = pausedStyle.Render("paused")
	}
	status := statusBarStyle.Render(fmt.Sprintf(
		"%s  %d frames  %d dropped  [p] pause  [q] quit", state, m.seen, m.dropped))

	return lipgloss.JoinVertical(lipgloss.Left,
		title, "", m.viewport.View(), status)
}
