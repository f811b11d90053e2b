//go:build ignore

// Analyze-packets summarises a captured packet log: per-code traffic,
// top talkers and verb mix.
//
// Usage: go run tools/analyze-packets.go <packet-log>
package main

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/evohub/ramses/internal/frame"
	"github.com/evohub/ramses/internal/ramses"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: analyze-packets <packet-log>")
		os.Exit(1)
	}

	file, err := os.Open(os.Args[1])
	if err != nil {
		fmt.Printf("Error reading file: %v\n", err)
		os.Exit(1)
	}
	defer file.Close()

	codeCounts := make(map[string]int)
	deviceCounts := make(map[string]int)
	verbCounts := make(map[string]int)
	total, bad := 0, 0

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), " \r")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		total++

		f, err := frame.ParsePacketLine(line)
		if err != nil {
			bad++
			continue
		}
		codeCounts[string(f.Code)]++
		deviceCounts[f.Src.String()]++
		verbCounts[strings.TrimSpace(string(f.Verb))]++
	}
	if err := scanner.Err(); err != nil {
		fmt.Printf("Error reading file: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("=== Packet Log Analyzer ===")
	fmt.Printf("File:    %s\n", os.Args[1])
	fmt.Printf("Packets: %d (%d unparseable)\n\n", total, bad)

	fmt.Println("Verbs:")
	for _, verb := range []string{"I", "RQ", "RP", "W"} {
		if n := verbCounts[verb]; n > 0 {
			fmt.Printf("  %-2s  %d\n", verb, n)
		}
	}

	fmt.Println("\nCodes:")
	for _, kv := range sortedByCount(codeCounts) {
		name := ""
		if info, ok := ramses.Lookup(frame.Code(kv.key)); ok {
			name = info.Name
		}
		fmt.Printf("  %s  %-24s %d\n", kv.key, name, kv.count)
	}

	fmt.Println("\nTop talkers:")
	talkers := sortedByCount(deviceCounts)
	if len(talkers) > 10 {
		talkers = talkers[:10]
	}
	for _, kv := range talkers {
		fmt.Printf("  %s  %d\n", kv.key, kv.count)
	}
}

type keyCount struct {
	key   string
	count int
}

func sortedByCount(m map[string]int) []keyCount {
	out := make([]keyCount, 0, len(m))
	for k, n := range m {
		out = append(out, keyCount{k, n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return out[i].key < out[j].key
	})
	return out
}
