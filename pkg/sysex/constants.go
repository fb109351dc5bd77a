// SPDX-License-Identifier: MIT
// Copyright (c) 2026 Johannes Frohnhofen

// Package sysex implements the electric-piano bootloader wire protocol.
//
// The bootloader speaks a framed binary protocol carried inside MIDI
// System-Exclusive messages: each frame is delimited by 0xF0/0xF7, starts
// with a fixed three-byte header, and carries a command byte plus payload,
// every 8-bit byte split into two 7-bit-clean nibble bytes and protected by
// a running XOR checksum. This package provides the byte-stream parser,
// the frame encoder, and typed request/reply messages shared by the device
// core (pkg/bootloader) and the host programmer (pkg/flasher).
package sysex

// Frame delimiters. Any byte >= 0x80 that is neither of these is treated
// as a foreign status byte and ignored, never as frame data.
const (
	StartByte = 0xF0
	EndByte   = 0xF7
)

// Fixed frame header: MIDI manufacturer marker, device-class identifier,
// protocol version. A frame whose header does not match exactly is rejected.
const (
	ManufacturerID  = 0x00
	DeviceID        = 0x70
	ProtocolVersion = 0x01

	HeaderSize = 3
)

// Header is the fixed header carried by every frame, in wire order.
var Header = [HeaderSize]byte{ManufacturerID, DeviceID, ProtocolVersion}

// Command codes (host -> device)
const (
	CmdPing   = 0x10
	CmdWrite  = 0x11
	CmdRead   = 0x12
	CmdVerify = 0x13
	CmdQuit   = 0x14
)

// Reply codes (device -> host)
const (
	ReplySuccess = 0x20
	ReplyError   = 0x21
	ReplyRead    = 0x22
	ReplyVerify  = 0x23
)

// DefaultPageSize is the flash page size of the stock electric-piano
// controller. Other targets configure their own via NewParser and the
// bootloader/flasher options.
const DefaultPageSize = 64

// Parser states (internal)
const (
	stateIdle = iota
	stateMatchingHeader
	stateReadingBody
	stateExpectingEnd
)
