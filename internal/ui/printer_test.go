package ui

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestPrintTableAlignsColumns(t *testing.T) {
	var buf bytes.Buffer
	p := &Printer{out: &buf, width: 80}

	p.PrintTable(
		[]string{"IDX", "DEVICE", "STATE"},
		[][]string{
			{"00", "04:081849", "fault"},
			{"01", "01:145038", "restore"},
		},
	)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d: %q", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], "DEVICE") {
		t.Errorf("header row missing column name: %q", lines[0])
	}
	if !strings.Contains(lines[1], "04:081849") || !strings.Contains(lines[1], "fault") {
		t.Errorf("first row incomplete: %q", lines[1])
	}
}

func TestRenderSuccessBox(t *testing.T) {
	out := RenderSuccessBox("fault log fetched", map[string]string{"Entries": "6"}, 80)
	if !strings.Contains(out, "SUCCESS") {
		t.Error("success box missing SUCCESS marker")
	}
	if !strings.Contains(out, "fault log fetched") {
		t.Error("success box missing title")
	}
	if !strings.Contains(out, "Entries") {
		t.Error("success box missing detail key")
	}
}

func TestRenderErrorBox(t *testing.T) {
	out := RenderErrorBox("gateway unreachable", errors.New("dial tcp: refused"),
		[]string{"Check the daemon is running"}, 80)
	if !strings.Contains(out, "FAILED") {
		t.Error("error box missing FAILED marker")
	}
	if !strings.Contains(out, "dial tcp: refused") {
		t.Error("error box missing error message")
	}
	if !strings.Contains(out, "Check the daemon is running") {
		t.Error("error box missing troubleshooting tip")
	}
}

func TestRenderHeaderStableParamOrder(t *testing.T) {
	params := map[string]string{
		"Gateway":    "ws://localhost:7161/ws",
		"Controller": "01:145038",
	}
	a := RenderHeader("fault log", "ramses faultlog", params, 80)
	b := RenderHeader("fault log", "ramses faultlog", params, 80)
	if a != b {
		t.Error("header rendering is not deterministic")
	}
	if !strings.Contains(a, "FAULT LOG") {
		t.Error("header title not upper-cased")
	}
}

func TestProgressSteps(t *testing.T) {
	p := NewProgress("Fetching fault log...", 3)
	p.SetStepNames([]string{"entry 00", "entry 01", "entry 02"})

	p.StartStep(1, "")
	if p.Current != 1 {
		t.Errorf("Current = %d, want 1", p.Current)
	}

	p.CompleteStep(1, "fault")
	p.CompleteStep(2, "restore")
	if p.Percent < 0.66 || p.Percent > 0.67 {
		t.Errorf("Percent = %f, want ~0.666", p.Percent)
	}

	out := p.Render()
	if !strings.Contains(out, "entry 00") || !strings.Contains(out, "(fault)") {
		t.Errorf("render missing step details: %q", out)
	}
}
