// SPDX-License-Identifier: MIT
// Copyright (c) 2026 Johannes Frohnhofen

package sysex

// Checksum returns the XOR fold of data. This is both the frame checksum
// and the page checksum the device computes for Verify.
func Checksum(data []byte) byte {
	var sum byte
	for _, b := range data {
		sum ^= b
	}
	return sum
}

// MessageCode returns the wire command/reply code of a message.
func MessageCode(m Message) byte {
	return m.code()
}

// Encode converts a typed message to its full wire representation.
// The checksum is always computed over the bytes actually transmitted,
// never copied from a previous frame.
func Encode(m Message) []byte {
	return EncodeFrame(m.code(), m.appendPayload(nil))
}

// EncodeFrame builds the wire representation of a raw code/payload pair:
// StartByte, the fixed header, then the code, payload, and XOR checksum
// each expanded into two nibble bytes (high nibble first), and EndByte.
func EncodeFrame(code byte, payload []byte) []byte {
	out := make([]byte, 0, 2*(len(payload)+2)+HeaderSize+2)
	out = append(out, StartByte)
	out = append(out, Header[:]...)

	sum := code
	out = append(out, code>>4, code&0x0F)
	for _, b := range payload {
		out = append(out, b>>4, b&0x0F)
		sum ^= b
	}
	out = append(out, sum>>4, sum&0x0F)

	return append(out, EndByte)
}
