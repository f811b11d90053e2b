//go:build ignore

// Validate-packets runs the frame and payload decoders over captured
// packet logs and reports the failure rate per code.
//
// Usage: go run tools/validate-packets.go <packet-log> [<packet-log>...]
package main

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/evohub/ramses/internal/frame"
	"github.com/evohub/ramses/internal/parser"
)

// Statistics tracks parsing results
type Statistics struct {
	TotalLines   int
	TotalFiles   int
	ParseSuccess int
	ParseFailure int
	Failures     []Failure
	PerCode      map[string][2]int // code -> [success, failure]
}

// Failure stores information about one undecodable line
type Failure struct {
	File       string
	LineNumber int
	Line       string
	Error      string
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: validate-packets <packet-log> [<packet-log>...]")
		os.Exit(1)
	}

	stats := &Statistics{PerCode: make(map[string][2]int)}
	for _, path := range os.Args[1:] {
		if err := processFile(path, stats); err != nil {
			fmt.Printf("Error reading %s: %v\n", path, err)
			os.Exit(1)
		}
		stats.TotalFiles++
	}

	report(stats)
	if stats.ParseFailure > 0 {
		os.Exit(1)
	}
}

func processFile(path string, stats *Statistics) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimRight(scanner.Text(), " \r")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		stats.TotalLines++

		code, err := decodeLine(line)
		counts := stats.PerCode[code]
		if err != nil {
			counts[1]++
			stats.ParseFailure++
			stats.Failures = append(stats.Failures, Failure{
				File:       path,
				LineNumber: lineNum,
				Line:       line,
				Error:      err.Error(),
			})
		} else {
			counts[0]++
			stats.ParseSuccess++
		}
		stats.PerCode[code] = counts
	}
	return scanner.Err()
}

func decodeLine(line string) (string, error) {
	f, err := frame.ParsePacketLine(line)
	if err != nil {
		return "????", err
	}
	if _, err := parser.Parse(f, 16); err != nil {
		return string(f.Code), err
	}
	return string(f.Code), nil
}

func report(stats *Statistics) {
	fmt.Println("=== Packet Log Validation ===")
	fmt.Printf("Files:    %d\n", stats.TotalFiles)
	fmt.Printf("Lines:    %d\n", stats.TotalLines)
	fmt.Printf("Decoded:  %d\n", stats.ParseSuccess)
	fmt.Printf("Failed:   %d\n\n", stats.ParseFailure)

	codes := make([]string, 0, len(stats.PerCode))
	for code := range stats.PerCode {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	fmt.Println("Per code:")
	for _, code := range codes {
		counts := stats.PerCode[code]
		fmt.Printf("  %s  ok=%-6d fail=%d\n", code, counts[0], counts[1])
	}

	if len(stats.Failures) > 0 {
		fmt.Println("\nFailures:")
		for _, f := range stats.Failures {
			fmt.Printf("  %s:%d  %s\n    %s\n", f.File, f.LineNumber, f.Line, f.Error)
		}
	}
}
