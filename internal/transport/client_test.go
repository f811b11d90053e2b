package transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/evohub/ramses/internal/command"
	"github.com/evohub/ramses/internal/frame"
)

func TestQueueOrdering(t *testing.T) {
	q := newSendQueue()

	low, err := command.GetLogEntry("01:145038", 0)
	if err != nil {
		t.Fatalf("GetLogEntry: %v", err)
	}
	def, err := command.GetZoneTemp("01:145038", "00")
	if err != nil {
		t.Fatalf("GetZoneTemp: %v", err)
	}
	high, err := command.New(frame.RQ, "1F09", "00", "01:145038")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	for _, cmd := range []*command.Command{low, def, high} {
		if !q.push(cmd) {
			t.Fatal("push on open queue failed")
		}
	}

	want := []*command.Command{high, def, low}
	for i, w := range want {
		got, ok := q.pop()
		if !ok {
			t.Fatalf("pop %d: queue closed", i)
		}
		if got != w {
			t.Errorf("pop %d: got %s, want %s", i, got.Code, w.Code)
		}
	}

	q.close()
	if _, ok := q.pop(); ok {
		t.Error("pop on a closed empty queue must report closed")
	}
	if q.push(low) {
		t.Error("push on a closed queue must fail")
	}
}

func TestDispatchRouting(t *testing.T) {
	c := &Client{
		queue: newSendQueue(),
		subs:  make(map[string]map[int]func(*frame.Frame)),
		done:  make(chan struct{}),
	}

	var matched, all int
	cancel := c.Subscribe("RP|13:163733|0008", func(*frame.Frame) { matched++ })
	c.Subscribe(WildcardHeader, func(*frame.Frame) { all++ })

	c.dispatch("RP --- 13:163733 18:000730 --:------ 0008 002 00C8")
	c.dispatch("RP --- 01:145038 18:000730 --:------ 30C9 003 000837")
	c.dispatch("not a packet line")

	if matched != 1 {
		t.Errorf("matched = %d, want 1", matched)
	}
	if all != 2 {
		t.Errorf("wildcard saw %d frames, want 2", all)
	}

	cancel()
	c.dispatch("RP --- 13:163733 18:000730 --:------ 0008 002 00C8")
	if matched != 1 {
		t.Error("cancelled subscription must not fire")
	}
}

func TestSendReceivesResponse(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if !strings.Contains(string(data), "30C9") {
				continue
			}
			reply := "RP --- 01:145038 18:000730 --:------ 30C9 003 000837\r\n"
			if err := conn.WriteMessage(websocket.TextMessage, []byte(reply)); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c, err := Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"))
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer c.Close()

	got := make(chan *frame.Frame, 1)
	c.Subscribe("RP|01:145038|30C9", func(f *frame.Frame) {
		select {
		case got <- f:
		default:
		}
	})

	cmd, err := command.GetZoneTemp("01:145038", "00")
	if err != nil {
		t.Fatalf("GetZoneTemp: %v", err)
	}
	if err := c.Send(ctx, cmd); err != nil {
		t.Fatalf("Send: %v", err)
	}

	select {
	case f := <-got:
		if f.Payload != "000837" {
			t.Errorf("payload = %s, want 000837", f.Payload)
		}
	case <-ctx.Done():
		t.Fatal("no response before deadline")
	}
}

func TestSendAfterClose(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	c, err := Dial(context.Background(), "ws"+strings.TrimPrefix(srv.URL, "http"))
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	_ = c.Close()

	cmd, err := command.GetSystemTime("01:145038")
	if err != nil {
		t.Fatalf("GetSystemTime: %v", err)
	}
	if err := c.Send(context.Background(), cmd); err != ErrClosed {
		t.Errorf("Send after close = %v, want ErrClosed", err)
	}
}
