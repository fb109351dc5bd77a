// SPDX-License-Identifier: MIT
// Copyright (c) 2026 Johannes Frohnhofen

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/jfrohnhofen/electric-piano/pkg/flasher"
)

// withFlasher opens the configured connection, builds a Flasher, and runs
// fn with a Ctrl+C-cancellable context. The trace capture, if requested,
// is written out even when fn fails, so broken sessions can be inspected.
func withFlasher(fn func(ctx context.Context, f *flasher.Flasher) error) error {
	conn, connInfo, err := OpenConnection()
	if err != nil {
		return err
	}
	defer conn.Close()

	fmt.Printf("Connection: %s\n", connInfo)

	opts := []flasher.Option{flasher.WithPageSize(pageSize)}
	var capture *flasher.Trace
	if traceFile != "" {
		capture = flasher.NewTrace()
		opts = append(opts, flasher.WithTrace(capture))
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	runErr := fn(ctx, flasher.New(conn, opts...))

	if capture != nil {
		if err := saveTrace(capture, traceFile); err != nil {
			fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		} else {
			fmt.Printf("Trace written to %s (session %s)\n", traceFile, capture.Session)
		}
	}

	return runErr
}

func saveTrace(capture *flasher.Trace, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create trace file: %w", err)
	}
	defer f.Close()

	if err := capture.Save(f); err != nil {
		return fmt.Errorf("write trace file: %w", err)
	}
	return nil
}
