// Package replay is a gateway daemon stand-in: it replays a captured
// packet log over the same WebSocket endpoint a real gateway daemon
// serves, and advertises itself via mDNS so discovery finds it.
//
// It exists for demos and for exercising the client without an RF dongle.
package replay

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/grandcat/zeroconf"
	"go.uber.org/zap"

	"github.com/evohub/ramses/internal/discovery"
	"github.com/evohub/ramses/internal/frame"
	"github.com/evohub/ramses/internal/logging"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// DefaultInterval is the pause between replayed lines.
	DefaultInterval = 250 * time.Millisecond
)

// Config holds the replay daemon configuration.
type Config struct {
	Host        string
	Port        int
	LogPath     string        // packet log to replay
	Interval    time.Duration // pause between lines (0 = DefaultInterval)
	Loop        bool          // restart from the top when the log ends
	ServiceName string        // mDNS instance name (empty = no advertisement)
}

// Server replays a packet log to every connected client.
type Server struct {
	config *Config
	lines  []string

	mu          sync.Mutex
	activeConns map[string]*websocket.Conn
	wg          sync.WaitGroup

	upgrader websocket.Upgrader
}

// New creates a Server, loading the packet log up front.
func New(config *Config) (*Server, error) {
	lines, err := loadPacketLog(config.LogPath)
	if err != nil {
		return nil, err
	}
	if config.Interval <= 0 {
		config.Interval = DefaultInterval
	}

	return &Server{
		config:      config,
		lines:       lines,
		activeConns: make(map[string]*websocket.Conn),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}, nil
}

// loadPacketLog reads the replay source, skipping blanks and comments.
func loadPacketLog(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open packet log: %w", err)
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), " \r")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read packet log: %w", err)
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("packet log %s contains no packet lines", path)
	}
	return lines, nil
}

// Start serves until the context is cancelled.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	if s.config.ServiceName != "" {
		zc, err := zeroconf.Register(
			s.config.ServiceName,
			discovery.ServiceType,
			discovery.ServiceDomain,
			s.config.Port,
			[]string{"device=replay", "log=" + s.config.LogPath},
			nil,
		)
		if err != nil {
			logging.Warn("mDNS registration failed, continuing without it",
				zap.Error(err),
			)
		} else {
			defer zc.Shutdown()
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)

	httpSrv := &http.Server{Handler: mux}

	logging.Info("Replay daemon listening",
		zap.String("addr", addr),
		zap.Int("lines", len(s.lines)),
		zap.Duration("interval", s.config.Interval),
		zap.Bool("loop", s.config.Loop),
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpSrv.Serve(listener)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = httpSrv.Shutdown(shutdownCtx)

	s.closeAll()
	s.wg.Wait()
	return nil
}

// handleWS upgrades the connection and streams the log to the client.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Warn("WebSocket upgrade failed",
			zap.String("remote_addr", r.RemoteAddr),
			zap.Error(err),
		)
		return
	}

	remoteAddr := r.RemoteAddr
	logging.LogConnection(remoteAddr, "websocket_connected")
	s.track(remoteAddr, conn)

	s.wg.Add(2)
	go func() {
		defer s.wg.Done()
		s.readLoop(conn, remoteAddr)
	}()
	go func() {
		defer s.wg.Done()
		defer s.untrack(remoteAddr)
		defer logging.LogConnection(remoteAddr, "websocket_closed")
		s.streamLog(conn, remoteAddr)
	}()
}

// readLoop drains client messages. A replay daemon cannot answer
// commands, so received lines are only logged.
func (s *Server) readLoop(conn *websocket.Conn, remoteAddr string) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		logging.Debug("Ignoring command from client",
			zap.String("remote_addr", remoteAddr),
			zap.String("line", strings.TrimSpace(string(data))),
		)
	}
}

// streamLog writes log lines at the configured cadence until the client
// goes away or the log is exhausted.
func (s *Server) streamLog(conn *websocket.Conn, remoteAddr string) {
	defer conn.Close()

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	idx := 0
	for range ticker.C {
		if idx >= len(s.lines) {
			if !s.config.Loop {
				logging.Info("Replay finished",
					zap.String("remote_addr", remoteAddr),
					zap.Int("lines", len(s.lines)),
				)
				return
			}
			idx = 0
		}

		line := s.lines[idx]
		idx++

		if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
			return
		}
		if err := conn.WriteMessage(websocket.TextMessage, []byte(line+"\r\n")); err != nil {
			return
		}
		if f, err := frame.ParsePacketLine(line); err == nil {
			logging.LogFrame("tx", string(f.Verb), string(f.Code),
				f.Src.String(), f.Dst.String(), f.Payload)
		}
	}
}

func (s *Server) track(remoteAddr string, conn *websocket.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeConns[remoteAddr] = conn
}

func (s *Server) untrack(remoteAddr string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.activeConns, remoteAddr)
}

func (s *Server) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for addr, conn := range s.activeConns {
		_ = conn.Close()
		delete(s.activeConns, addr)
	}
}

// ClientCount reports the number of connected clients.
func (s *Server) ClientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.activeConns)
}
