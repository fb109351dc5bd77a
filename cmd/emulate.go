// SPDX-License-Identifier: MIT
// Copyright (c) 2026 Johannes Frohnhofen

package cmd

import (
	"fmt"
	"log"
	"net"
	"os"

	"github.com/spf13/cobra"

	"github.com/jfrohnhofen/electric-piano/pkg/bootloader"
)

var emulateAddr string

var emulateCmd = &cobra.Command{
	Use:   "emulate",
	Short: "Run an in-memory bootloader device over TCP",
	Long: `Serve the device side of the bootloader protocol on a TCP port,
backed by an in-memory flash. Lets the host commands be exercised without
hardware: point any pianoboot command at the emulator through a TCP-to-
serial bridge, or flash it directly in tests.

The emulated device handles one connection at a time, mirroring the
single-threaded request/reply cycle of the real bootloader. A Quit
command logs the control transfer and ends the connection; the flash
contents persist until the emulator exits.`,
	RunE: runEmulate,
}

func init() {
	emulateCmd.Flags().StringVar(&emulateAddr, "listen", "localhost:7524", "TCP listen address")
	rootCmd.AddCommand(emulateCmd)
}

func runEmulate(cmd *cobra.Command, args []string) error {
	logger := log.New(os.Stderr, "emulator: ", log.LstdFlags)

	ln, err := net.Listen("tcp", emulateAddr)
	if err != nil {
		return err
	}
	defer ln.Close()

	fmt.Printf("Emulated bootloader listening on %s (%d pages x %d bytes)\n",
		emulateAddr, numPages, pageSize)

	flash := bootloader.NewMemFlash(pageSize, numPages)
	for {
		conn, err := ln.Accept()
		if err != nil {
			logger.Printf("accept error: %v", err)
			continue
		}
		logger.Printf("connection from %s", conn.RemoteAddr())

		device := bootloader.New(flash,
			bootloader.WithLogger(logger),
			bootloader.WithControlTransfer(func() {
				logger.Printf("control transferred to resident application")
			}))
		if err := device.Run(conn); err != nil {
			logger.Printf("connection error: %v", err)
		}
		_ = conn.Close()
		logger.Printf("connection closed")
	}
}
