// SPDX-License-Identifier: MIT
// Copyright (c) 2026 Johannes Frohnhofen

package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jfrohnhofen/electric-piano/pkg/flasher"
)

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check that the bootloader is listening",
	Long: `Send a Ping command and wait for the Success reply.

A successful ping confirms the device is in bootloader mode and the link,
framing, and checksum all work end to end.`,
	RunE: runPing,
}

func init() {
	rootCmd.AddCommand(pingCmd)
}

func runPing(cmd *cobra.Command, args []string) error {
	return withFlasher(func(ctx context.Context, f *flasher.Flasher) error {
		if err := f.Ping(ctx); err != nil {
			return err
		}
		fmt.Println("Bootloader is alive")
		return nil
	})
}
