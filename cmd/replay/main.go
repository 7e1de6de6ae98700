package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/borovskvet/intake-bot/internal/record"
	"github.com/borovskvet/intake-bot/internal/replay"
)

// #region main

func main() {
	scriptPath := flag.String("script", "", "path to replay script JSON")
	verbose := flag.Bool("v", false, "print the full transcript")
	flag.Parse()

	if *scriptPath == "" {
		fmt.Fprintln(os.Stderr, "usage: replay --script path/to/script.json [-v]")
		os.Exit(2)
	}

	script, events, err := replay.LoadScript(*scriptPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load script: %v\n", err)
		os.Exit(2)
	}

	if script.Description != "" {
		fmt.Printf("Script: %s\n\n", script.Description)
	}

	h := replay.NewHarness(nil)
	exchanges, sum := h.Run(context.Background(), events)

	if *verbose {
		printTranscript(exchanges)
	}
	printSummary(sum)

	if sum.Rejections > 0 {
		os.Exit(1)
	}
}

// #endregion main

// #region output

func printTranscript(exchanges []replay.Exchange) {
	for i, ex := range exchanges {
		in := ex.Event.Text
		if in == "" {
			in = "<" + string(ex.Event.Kind) + ">"
		}
		if ex.Event.Token != "" {
			in += " [" + ex.Event.Token + "]"
		}
		fmt.Printf("%3d > %s\n", i+1, in)
		fmt.Printf("    < %s\n\n", firstLine(ex.Reply.Text))
	}
}

func printSummary(sum replay.Summary) {
	fmt.Printf("Summary: %d turns, %d rejections, %d records\n",
		sum.Turns, sum.Rejections, len(sum.Records))

	for i, row := range sum.Records {
		fmt.Printf("\nRecord %d (%d cells):\n", i+1, len(row))
		if len(row) != record.ColumnCount {
			fmt.Printf("  WARNING: expected %d cells\n", record.ColumnCount)
		}
		for j, cell := range row {
			fmt.Printf("  %2d | %s\n", j+1, cell)
		}
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " …"
	}
	return s
}

// #endregion output
