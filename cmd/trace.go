// SPDX-License-Identifier: MIT
// Copyright (c) 2026 Johannes Frohnhofen

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jfrohnhofen/electric-piano/pkg/flasher"
	"github.com/jfrohnhofen/electric-piano/pkg/sysex"
)

var traceCmd = &cobra.Command{
	Use:   "trace <capture>",
	Short: "Display a trace capture in human-readable format",
	Long: `Decode a CBOR trace capture recorded with --trace-file and print
every frame with its timestamp, direction, and decoded contents.`,
	Args: cobra.ExactArgs(1),
	RunE: runTrace,
}

func init() {
	rootCmd.AddCommand(traceCmd)
}

func runTrace(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	capture, err := flasher.LoadTrace(f)
	if err != nil {
		return err
	}

	fmt.Printf("Session:  %s\n", capture.Session)
	fmt.Printf("Started:  %s\n", capture.Started.Format("2006-01-02 15:04:05.000"))
	fmt.Printf("Records:  %d\n\n", len(capture.Records))

	// Each direction is an independent byte stream, so each gets its own
	// parser. Frames print in record order.
	parsers := map[flasher.Direction]*sysex.Parser{
		flasher.DirTX: sysex.NewParser(pageSize),
		flasher.DirRX: sysex.NewParser(pageSize),
	}

	for _, rec := range capture.Records {
		p := parsers[rec.Dir]
		for _, b := range rec.Data {
			frame, werr := p.Feed(b)
			if werr != nil {
				fmt.Printf("[%s] %s frame error: %s\n",
					rec.At.Format("15:04:05.000"), rec.Dir, werr.Code)
				continue
			}
			if frame != nil {
				fmt.Printf("[%s] %s %s",
					rec.At.Format("15:04:05.000"), rec.Dir, sysex.FormatFrame(frame))
			}
		}
	}
	return nil
}
