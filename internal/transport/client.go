// Package transport connects to a gateway daemon over WebSocket and moves
// frames in both directions: inbound packet lines are parsed and fanned out
// to header subscribers, outbound commands go through a priority queue with
// per-command retry and timeout handling.
package transport

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/evohub/ramses/internal/command"
	"github.com/evohub/ramses/internal/frame"
	"github.com/evohub/ramses/internal/logging"
)

// WildcardHeader subscribes to every inbound frame.
const WildcardHeader = "*"

const writeWait = 10 * time.Second

// Client is a connected gateway session.
type Client struct {
	conn  *websocket.Conn
	queue *sendQueue

	writeMu sync.Mutex

	mu     sync.Mutex
	subs   map[string]map[int]func(*frame.Frame)
	nextID int

	done      chan struct{}
	closeOnce sync.Once
}

// Dial connects to a gateway daemon at a ws:// or wss:// URL.
func Dial(ctx context.Context, url string) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	logging.LogConnection(url, "connected")

	c := &Client{
		conn:  conn,
		queue: newSendQueue(),
		subs:  make(map[string]map[int]func(*frame.Frame)),
		done:  make(chan struct{}),
	}
	go c.readLoop()
	go c.sendLoop()
	return c, nil
}

// Close shuts the session down. Queued commands are dropped.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		close(c.done)
		c.queue.close()
	})
	return c.conn.Close()
}

// Done is closed when the session ends, by Close or by a read failure.
func (c *Client) Done() <-chan struct{} { return c.done }

// Subscribe registers a callback for inbound frames whose header matches.
// Use WildcardHeader to observe every frame. The returned function removes
// the subscription.
func (c *Client) Subscribe(header string, fn func(*frame.Frame)) (cancel func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextID
	c.nextID++
	if c.subs[header] == nil {
		c.subs[header] = make(map[int]func(*frame.Frame))
	}
	c.subs[header][id] = fn

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.subs[header], id)
		if len(c.subs[header]) == 0 {
			delete(c.subs, header)
		}
	}
}

// Send queues a command for transmission. It returns once the command is
// queued; delivery, retries and timeouts follow the command's QoS.
func (c *Client) Send(ctx context.Context, cmd *command.Command) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-c.done:
		return ErrClosed
	default:
	}
	if !c.queue.push(cmd) {
		return ErrClosed
	}
	return nil
}

// QueueLen reports how many commands are waiting to be transmitted.
func (c *Client) QueueLen() int { return c.queue.len() }

func (c *Client) readLoop() {
	defer c.Close()
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			select {
			case <-c.done:
			default:
				logging.Warn("gateway read failed", zap.Error(err))
			}
			return
		}
		for _, line := range strings.Split(string(data), "\n") {
			line = strings.TrimSpace(line)
			if line != "" {
				c.dispatch(line)
			}
		}
	}
}

// dispatch parses one packet line and fans it out to matching subscribers.
// Unparseable lines are expected on a lossy RF link and only logged.
func (c *Client) dispatch(line string) {
	f, err := frame.ParsePacketLine(line)
	if err != nil {
		logging.Debug("dropping unparseable line",
			zap.String("line", line), zap.Error(err))
		return
	}
	logging.LogFrame("rx", string(f.Verb), string(f.Code),
		f.Src.String(), f.Dst.String(), f.Payload)

	c.mu.Lock()
	fns := make([]func(*frame.Frame), 0, 4)
	for _, fn := range c.subs[f.Header()] {
		fns = append(fns, fn)
	}
	for _, fn := range c.subs[WildcardHeader] {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn(f)
	}
}

func (c *Client) sendLoop() {
	for {
		cmd, ok := c.queue.pop()
		if !ok {
			return
		}
		c.transmit(cmd)
	}
}

// transmit writes a command and, when the exchange expects an answer, waits
// for it, retransmitting per the command's QoS. The timeout doubles on each
// retry unless the command disables backoff.
func (c *Client) transmit(cmd *command.Command) {
	var answered chan struct{}
	if rx := cmd.RxHeader(); rx != "" {
		answered = make(chan struct{}, 1)
		cancel := c.Subscribe(rx, func(*frame.Frame) {
			select {
			case answered <- struct{}{}:
			default:
			}
		})
		defer cancel()
	}

	timeout := cmd.QoS.Timeout
	for attempt := 0; attempt <= cmd.QoS.Retries; attempt++ {
		if err := c.write(cmd.String()); err != nil {
			logging.Warn("gateway write failed",
				zap.String("command", cmd.String()), zap.Error(err))
			return
		}
		logging.LogFrame("tx", string(cmd.Verb), string(cmd.Code),
			cmd.Src.String(), cmd.Dst.String(), cmd.Payload)

		if answered == nil {
			return
		}
		select {
		case <-answered:
			return
		case <-c.done:
			return
		case <-time.After(timeout):
			if !cmd.QoS.DisableBackoff {
				timeout *= 2
			}
		}
	}
	logging.Warn("command went unanswered",
		zap.String("command", cmd.String()),
		zap.Int("attempts", cmd.QoS.Retries+1))
}

func (c *Client) write(line string) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.TextMessage, []byte(line+"\r\n"))
}
