package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/evohub/ramses/internal/command"
	"github.com/evohub/ramses/internal/config"
	"github.com/evohub/ramses/internal/discovery"
	"github.com/evohub/ramses/internal/faultlog"
	"github.com/evohub/ramses/internal/frame"
	"github.com/evohub/ramses/internal/monitor"
	"github.com/evohub/ramses/internal/parser"
	"github.com/evohub/ramses/internal/transport"
	"github.com/evohub/ramses/internal/ui"
)

// Command flags
var (
	gatewayURL   string
	controllerID string
	logLevel     string
	outputFormat string
	scanTimeout  int
	logStart     int
	logLimit     int
	modeUntil    string
	sendTimeout  int
)

func init() {
	// Common flags for gateway commands (persistent on root)
	rootCmd.PersistentFlags().StringVar(&gatewayURL, "gateway", "", "Gateway WebSocket URL (skips discovery)")
	rootCmd.PersistentFlags().StringVar(&controllerID, "controller", "", "Controller device ID (e.g. 01:145038)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	// Add subcommands directly to root
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(decodeCmd)
	rootCmd.AddCommand(monitorCmd)
	rootCmd.AddCommand(faultlogCmd)
	rootCmd.AddCommand(setSetpointCmd)
	rootCmd.AddCommand(setModeCmd)
	rootCmd.AddCommand(bindCmd)
}

// scanCmd discovers gateway daemons on the network
var scanCmd = &cobra.Command{
	Use:     "scan",
	Aliases: []string{"discover"},
	Short:   "Scan for gateway daemons on the network",
	Long: `Scan for RAMSES gateway daemons using mDNS/DNS-SD discovery.

This command listens for mDNS broadcasts from gateway daemons and displays
all discovered gateways with their addresses and metadata.`,
	Example: `  # Scan for 10 seconds (default)
  ramses scan

  # Quick 3-second scan
  ramses scan --timeout 3`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().IntVar(&scanTimeout, "timeout", 10, "Scan timeout in seconds")
}

func runScan(cmd *cobra.Command, args []string) error {
	fmt.Printf("Scanning for gateways (timeout: %ds)...\n\n", scanTimeout)

	gateways, err := discovery.Scan(cmd.Context(), time.Duration(scanTimeout)*time.Second)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	if len(gateways) == 0 {
		fmt.Println("No gateways found.")
		fmt.Println("\nTroubleshooting:")
		fmt.Println("  - Ensure the gateway daemon is running")
		fmt.Println("  - Check that mDNS traffic is allowed on your network")
		fmt.Println("  - Try increasing --timeout for slower networks")
		fmt.Println("  - Use --gateway flag to specify the URL manually")
		return nil
	}

	p := ui.NewPrinter(nil)
	rows := make([][]string, 0, len(gateways))
	for _, gw := range gateways {
		rows = append(rows, []string{gw.Name, gw.IP, strconv.Itoa(gw.Port), gw.URL()})
	}
	p.PrintTable([]string{"NAME", "IP", "PORT", "URL"}, rows)
	p.Newline()
	p.Println("Use 'ramses monitor --gateway <url>' to watch the packet stream")

	return nil
}

// decodeCmd decodes packet lines without a gateway connection
var decodeCmd = &cobra.Command{
	Use:   "decode [packet line]",
	Short: "Decode packet lines",
	Long: `Decode one or more gateway packet lines and print the decoded records.

Packet lines are read from the arguments, or from stdin when no argument
is given (one line per packet, as written by the gateway daemon).`,
	Example: `  # Decode a single line
  ramses decode "RP --- 01:145038 18:000730 --:------ 2349 007 01C8000400FFFF"

  # Decode a capture file
  ramses decode < packets.log

  # JSON output for scripting
  ramses decode --format json < packets.log`,
	RunE: runDecode,
}

func init() {
	decodeCmd.Flags().StringVar(&outputFormat, "format", "text", "Output format (text, json)")
}

func runDecode(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	lines := args
	if len(lines) == 0 {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines = append(lines, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			return fmt.Errorf("reading stdin: %w", err)
		}
	}

	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if err := decodeLine(line, cfg.MaxZones()); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
		}
	}
	return nil
}

func decodeLine(line string, maxZones int) error {
	f, err := frame.ParsePacketLine(line)
	if err != nil {
		return err
	}
	result, err := parser.Parse(f, maxZones)
	if err != nil {
		return fmt.Errorf("%s: %w", f.Header(), err)
	}

	if outputFormat == "json" {
		out := map[string]any{
			"header": f.Header(),
			"verb":   strings.TrimSpace(string(f.Verb)),
			"code":   string(f.Code),
			"src":    f.Src.String(),
			"dst":    f.Dst.String(),
		}
		if result.IsArray() {
			out["records"] = result.Records
		} else {
			out["record"] = result.Record
		}
		data, err := json.Marshal(out)
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	if result.IsArray() {
		fmt.Printf("%s %s -> %s %s\n", string(f.Verb), f.Src, f.Dst, f.Code)
		for _, rec := range result.Records {
			fmt.Printf("    %s\n", formatRecord(rec))
		}
		return nil
	}
	fmt.Printf("%s %s -> %s %s  %s\n", string(f.Verb), f.Src, f.Dst, f.Code, formatRecord(result.Record))
	return nil
}

func formatRecord(rec map[string]any) string {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Sprintf("%v", rec)
	}
	return string(data)
}

// monitorCmd streams decoded frames in a full-screen view
var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Watch the live packet stream",
	Long: `Connect to the gateway and watch decoded frames as they arrive.

The monitor shows every frame the gateway relays from the RF network,
decoded where the payload is understood. Press p to pause, q to quit.`,
	Example: `  # Monitor with auto-discovery
  ramses monitor
  # Or simply (monitor is default):
  ramses

  # Monitor a specific gateway
  ramses monitor --gateway ws://192.168.1.40:7161/ws`,
	RunE: runMonitor,
}

func runMonitor(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	client, err := connect(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer client.Close()

	return monitor.Run(client, cfg.MaxZones())
}

// faultlogCmd fetches the controller fault log
var faultlogCmd = &cobra.Command{
	Use:   "faultlog",
	Short: "Fetch the controller fault log",
	Long: `Fetch the controller's fault log, newest entry first.

Entries are requested one at a time until the requested count is reached
or the controller reports no further entries.`,
	Example: `  # Latest 6 entries (default)
  ramses faultlog --controller 01:145038

  # Full history
  ramses faultlog --controller 01:145038 --limit 64`,
	RunE: runFaultlog,
}

func init() {
	faultlogCmd.Flags().IntVar(&logStart, "start", 0, "First log index to fetch")
	faultlogCmd.Flags().IntVar(&logLimit, "limit", 6, "Maximum entries to fetch")
}

func runFaultlog(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	ctl, err := controller(cfg)
	if err != nil {
		return err
	}

	client, err := connect(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer client.Close()

	p := ui.NewPrinter(nil)
	p.PrintHeader("fault log", "ramses faultlog", map[string]string{
		"Controller": ctl,
		"Entries":    strconv.Itoa(logLimit),
	})

	fetcher := faultlog.NewFetcher(ctl,
		faultlog.WithStart(logStart),
		faultlog.WithLimit(logLimit),
		faultlog.WithMaxZones(cfg.MaxZones()),
	)
	entries, err := fetcher.Fetch(cmd.Context(), client)
	if err != nil {
		p.PrintError("fault log fetch", err, []string{
			"Check the controller ID is correct",
			"The controller answers one entry at a time; retry on a busy RF network",
		})
		return err
	}

	if len(entries) == 0 {
		p.Println("  Fault log is empty.")
		return nil
	}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		location := e.ZoneIdx
		if location == "" {
			location = e.DomainID
		}
		rows = append(rows, []string{
			e.LogIdx, e.Timestamp, e.State, e.Type, e.DeviceClass, e.DeviceID, location,
		})
	}
	p.PrintTable([]string{"IDX", "TIMESTAMP", "STATE", "FAULT", "DEVICE", "ID", "ZONE"}, rows)

	return nil
}

// setSetpointCmd overrides a zone setpoint
var setSetpointCmd = &cobra.Command{
	Use:   "set-setpoint <zone> <temperature>",
	Short: "Set a zone setpoint",
	Long: `Set a zone's target temperature.

The zone is given as its index (0-15). The override follows the zone's
current mode; use set-mode on the controller for system-wide changes.`,
	Example: `  # Zone 1 to 20.5 degrees
  ramses set-setpoint 01 20.5 --controller 01:145038`,
	Args: cobra.ExactArgs(2),
	RunE: runSetSetpoint,
}

func runSetSetpoint(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	ctl, err := controller(cfg)
	if err != nil {
		return err
	}

	setpoint, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("invalid temperature %q: %w", args[1], err)
	}

	c, err := command.SetZoneSetpoint(ctl, args[0], setpoint)
	if err != nil {
		return err
	}

	return deliver(cmd.Context(), cfg, c, "setpoint updated", map[string]string{
		"Zone":     args[0],
		"Setpoint": fmt.Sprintf("%.1f°C", setpoint),
	})
}

// setModeCmd changes the system mode
var setModeCmd = &cobra.Command{
	Use:   "set-mode <mode>",
	Short: "Set the system mode",
	Long: `Set the controller's system mode.

Modes: auto, heat_off, eco_boost, away, day_off, day_off_eco, auto_with_reset,
custom. Temporary modes take --until; auto, auto_with_reset and heat_off
are always permanent.`,
	Example: `  # Permanent away mode
  ramses set-mode away --controller 01:145038

  # Day off until tomorrow morning
  ramses set-mode day_off --until 2026-09-01T07:00:00`,
	Args: cobra.ExactArgs(1),
	RunE: runSetMode,
}

func init() {
	setModeCmd.Flags().StringVar(&modeUntil, "until", "", "End of a temporary override (RFC 3339 local time)")
}

func runSetMode(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	ctl, err := controller(cfg)
	if err != nil {
		return err
	}

	var until *time.Time
	if modeUntil != "" {
		t, err := time.ParseInLocation("2006-01-02T15:04:05", modeUntil, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --until %q: %w", modeUntil, err)
		}
		until = &t
	}

	c, err := command.SetSystemMode(ctl, args[0], until)
	if err != nil {
		return err
	}

	details := map[string]string{"Mode": args[0]}
	if until != nil {
		details["Until"] = until.Format("2006-01-02 15:04")
	}
	return deliver(cmd.Context(), cfg, c, "system mode set", details)
}

// bindCmd broadcasts a bind offer
var bindCmd = &cobra.Command{
	Use:   "bind <device> <code> [counterparty]",
	Short: "Broadcast a bind offer for a device",
	Long: `Transmit a bind offer on behalf of a device.

With no counterparty the offer is broadcast and any device in listening
mode may accept it. With a counterparty a confirmation is sent directly.
This changes pairings on your live RF network and asks for confirmation
first.`,
	Example: `  # Offer an outdoor sensor binding
  ramses bind 17:025000 0002

  # Confirm a binding to a controller
  ramses bind 17:025000 0002 01:145038`,
	Args: cobra.RangeArgs(2, 3),
	RunE: runBind,
}

func runBind(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if !ui.BindConfirmation() {
		return nil
	}

	verb := frame.I
	dst := ""
	if len(args) == 3 {
		verb = frame.W
		dst = args[2]
	}

	c, err := command.PutBind(verb, args[0], []frame.Code{frame.Code(args[1])}, dst)
	if err != nil {
		return err
	}

	details := map[string]string{"Device": args[0], "Code": args[1]}
	if dst != "" {
		details["Counterparty"] = dst
	}
	return deliver(cmd.Context(), cfg, c, "bind frame sent", details)
}

// deliver connects, sends one command and prints the outcome.
func deliver(ctx context.Context, cfg *config.Config, c *command.Command, title string, details map[string]string) error {
	client, err := connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer client.Close()

	p := ui.NewPrinter(nil)
	if err := client.Send(ctx, c); err != nil {
		p.PrintError(title, err, []string{
			"Check the gateway daemon is reachable",
			"Use 'ramses scan' to locate gateways on the network",
		})
		return err
	}

	// Give the retransmit loop a chance to run before tearing down.
	wait := time.Duration(sendTimeout) * time.Second
	select {
	case <-time.After(wait):
	case <-client.Done():
	case <-ctx.Done():
	}

	p.PrintSuccess(title, details)
	return nil
}

func init() {
	rootCmd.PersistentFlags().IntVar(&sendTimeout, "send-timeout", 3, "Seconds to wait for command delivery")
}

// connect resolves the gateway URL (flag, config, then discovery) and dials it.
func connect(ctx context.Context, cfg *config.Config) (*transport.Client, error) {
	url := gatewayURL
	if url == "" && cfg.Gateway != nil {
		url = cfg.Gateway.URL
	}
	if url == "" {
		fmt.Println("No gateway configured, attempting auto-discovery...")
		gw, err := discovery.NewScanner().FindFirst(ctx)
		if err != nil {
			return nil, fmt.Errorf("discovery failed: %w (use --gateway to specify the URL manually)", err)
		}
		fmt.Printf("Found %s\n\n", gw)
		url = gw.URL()
	}
	return transport.Dial(ctx, url)
}

// controller resolves the controller ID from the flag or the config file.
func controller(cfg *config.Config) (string, error) {
	if controllerID != "" {
		return controllerID, nil
	}
	if cfg.System != nil && cfg.System.ControllerID != "" {
		return cfg.System.ControllerID, nil
	}
	return "", fmt.Errorf("no controller ID configured (use --controller or set system.controller_id in the config file)")
}
