// SPDX-License-Identifier: MIT
// Copyright (c) 2026 Johannes Frohnhofen
//
// pianoboot - host tool for the electric-piano SysEx bootloader.
//
// Flashes, dumps, and verifies firmware on the electric-piano controller
// over its MIDI serial link, and hosts an in-memory device emulator for
// development without hardware.

package main

import (
	"os"

	"github.com/jfrohnhofen/electric-piano/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
