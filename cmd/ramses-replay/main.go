// Ramses-replay is a gateway daemon stand-in that replays a captured
// packet log over WebSocket and advertises itself via mDNS.
//
// It serves the same /ws endpoint as a real gateway daemon, so the
// ramses client connects to it unchanged:
//
//	ramses-replay --log packets.log --loop &
//	ramses monitor --gateway ws://localhost:7161/ws
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/evohub/ramses/internal/discovery"
	"github.com/evohub/ramses/internal/logging"
	"github.com/evohub/ramses/internal/replay"
	"github.com/evohub/ramses/internal/version"
)

var (
	host     string
	port     int
	logPath  string
	interval time.Duration
	loop     bool
	name     string
	logLevel string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "ramses-replay",
	Short: "Replay a packet log as a gateway daemon",
	Long: `Serve a captured packet log over the gateway daemon's WebSocket
endpoint, for demos and for exercising the client without an RF dongle.`,
	Version: version.Version,
	RunE:    run,
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.Flags().StringVar(&host, "host", "", "Listen address (default all interfaces)")
	rootCmd.Flags().IntVar(&port, "port", discovery.DefaultPort, "Listen port")
	rootCmd.Flags().StringVar(&logPath, "log", "", "Packet log to replay (required)")
	rootCmd.Flags().DurationVar(&interval, "interval", replay.DefaultInterval, "Pause between lines")
	rootCmd.Flags().BoolVar(&loop, "loop", false, "Restart from the top when the log ends")
	rootCmd.Flags().StringVar(&name, "name", "ramses-replay", "mDNS instance name (empty disables advertisement)")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	_ = rootCmd.MarkFlagRequired("log")
}

func run(cmd *cobra.Command, args []string) error {
	if err := logging.Initialize(logLevel); err != nil {
		return err
	}

	srv, err := replay.New(&replay.Config{
		Host:        host,
		Port:        port,
		LogPath:     logPath,
		Interval:    interval,
		Loop:        loop,
		ServiceName: name,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.Start(ctx)
}
