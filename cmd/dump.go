// SPDX-License-Identifier: MIT
// Copyright (c) 2026 Johannes Frohnhofen

package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jfrohnhofen/electric-piano/pkg/flasher"
)

var dumpOutput string

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Read the application flash to a file",
	Long: `Read every page of the application flash region and write the
concatenated contents to a file (or stdout with -o -).`,
	RunE: runDump,
}

func init() {
	dumpCmd.Flags().StringVarP(&dumpOutput, "output", "o", "flash.bin", "Output file ('-' for stdout)")
	rootCmd.AddCommand(dumpCmd)
}

func runDump(cmd *cobra.Command, args []string) error {
	return withFlasher(func(ctx context.Context, f *flasher.Flasher) error {
		f.SetProgress(func(phase flasher.Phase, page, total int) {
			fmt.Fprintf(os.Stderr, "\r%-10s %d/%d pages", phase, page, total)
		})
		data, err := f.Dump(ctx, numPages)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return err
		}

		if dumpOutput == "-" {
			_, err := os.Stdout.Write(data)
			return err
		}
		if err := os.WriteFile(dumpOutput, data, 0o644); err != nil {
			return err
		}
		fmt.Printf("Wrote %d bytes to %s\n", len(data), dumpOutput)
		return nil
	})
}
