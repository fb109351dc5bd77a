// SPDX-License-Identifier: MIT
// Copyright (c) 2026 Johannes Frohnhofen

package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jfrohnhofen/electric-piano/pkg/flasher"
)

var bootCmd = &cobra.Command{
	Use:   "boot",
	Short: "Start the resident application",
	Long: `Send a Quit command, telling the bootloader to hand control to the
resident application. The device acknowledges before it jumps, so a
successful boot always means the command was received.`,
	RunE: runBoot,
}

func init() {
	rootCmd.AddCommand(bootCmd)
}

func runBoot(cmd *cobra.Command, args []string) error {
	return withFlasher(func(ctx context.Context, f *flasher.Flasher) error {
		if err := f.Quit(ctx); err != nil {
			return err
		}
		fmt.Println("Resident application started")
		return nil
	})
}
