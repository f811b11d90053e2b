package replay

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

const sampleLog = `# capture from 2026-08-20
RP --- 13:163733 18:000730 --:------ 0008 002 00C8

 I --- 01:145038 --:------ 01:145038 2309 003 0107D0
`

func writeLog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "packets.log")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadPacketLog(t *testing.T) {
	lines, err := loadPacketLog(writeLog(t, sampleLog))
	if err != nil {
		t.Fatalf("loadPacketLog: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2 (comments and blanks skipped)", len(lines))
	}
	if !strings.HasPrefix(lines[0], "RP") {
		t.Errorf("first line = %q", lines[0])
	}
}

func TestLoadPacketLogMissingFile(t *testing.T) {
	if _, err := loadPacketLog(filepath.Join(t.TempDir(), "nope.log")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func TestLoadPacketLogEmpty(t *testing.T) {
	if _, err := loadPacketLog(writeLog(t, "# only a comment\n")); err == nil {
		t.Fatal("expected an error for a log with no packet lines")
	}
}

func TestStreamsLogToClient(t *testing.T) {
	srv, err := New(&Config{
		LogPath:  writeLog(t, sampleLog),
		Interval: 5 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ts := httptest.NewServer(http.HandlerFunc(srv.handleWS))
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var got []string
	for len(got) < 2 {
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("ReadMessage: %v", err)
		}
		for _, line := range strings.Split(string(data), "\n") {
			if line = strings.TrimRight(line, "\r"); line != "" {
				got = append(got, line)
			}
		}
	}

	if !strings.Contains(got[0], "0008") || !strings.Contains(got[1], "2309") {
		t.Errorf("replayed lines out of order: %q", got)
	}
}

func TestLoopRestartsLog(t *testing.T) {
	srv, err := New(&Config{
		LogPath:  writeLog(t, sampleLog),
		Interval: 5 * time.Millisecond,
		Loop:     true,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ts := httptest.NewServer(http.HandlerFunc(srv.handleWS))
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	// Two lines in the log; reading a third proves the loop restarted.
	for i := 0; i < 3; i++ {
		if _, _, err := conn.ReadMessage(); err != nil {
			t.Fatalf("ReadMessage %d: %v", i, err)
		}
	}
}
