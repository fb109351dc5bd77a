// SPDX-License-Identifier: MIT
// Copyright (c) 2026 Johannes Frohnhofen

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/jfrohnhofen/electric-piano/pkg/sysex"
)

var (
	// Serial connection flags
	portName string
	baudRate int

	// WebSocket connection flags
	wsURL         string
	wsUsername    string
	wsNoSSLVerify bool

	// Device geometry flags
	pageSize int
	numPages int

	// Trace capture flag
	traceFile string
)

var rootCmd = &cobra.Command{
	Use:   "pianoboot",
	Short: "Electric-piano bootloader host tool",
	Long: `Pianoboot - flash, dump, and verify firmware on the electric-piano
controller through its MIDI SysEx bootloader.

The bootloader speaks a framed, checksummed protocol inside MIDI
System-Exclusive messages, so any plain serial link at MIDI baud rate
works; no separate hardware programmer is needed.

Connection modes:
  Serial:    --port /dev/ttyUSB0 [--baud 31250]
  WebSocket: --url ws://host/path [--username user]

For WebSocket authentication, the password is read from the
PIANOBOOT_PASSWORD environment variable, or prompted interactively if not
set. The --password flag is intentionally not provided to avoid leaking
credentials in shell history.`,
	Version: "1.0.0",
}

func init() {
	// Serial connection flags
	rootCmd.PersistentFlags().StringVarP(&portName, "port", "p", "", "Serial port device")
	rootCmd.PersistentFlags().IntVarP(&baudRate, "baud", "b", 31250, "Baud rate (serial only)")

	// WebSocket connection flags
	rootCmd.PersistentFlags().StringVarP(&wsURL, "url", "u", "", "WebSocket URL (ws:// or wss://)")
	rootCmd.PersistentFlags().StringVar(&wsUsername, "username", "", "Username for HTTP Basic auth")
	rootCmd.PersistentFlags().BoolVar(&wsNoSSLVerify, "no-ssl-verify", false, "Skip TLS certificate verification (wss:// only)")

	// Device geometry flags
	rootCmd.PersistentFlags().IntVar(&pageSize, "page-size", sysex.DefaultPageSize, "Flash page size in bytes")
	rootCmd.PersistentFlags().IntVar(&numPages, "pages", 96, "Number of application flash pages")

	// Trace capture flag
	rootCmd.PersistentFlags().StringVar(&traceFile, "trace-file", "", "Record wire traffic to a CBOR capture file")
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
