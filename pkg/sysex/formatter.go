// SPDX-License-Identifier: MIT
// Copyright (c) 2026 Johannes Frohnhofen

package sysex

import (
	"fmt"
	"strings"
)

// CodeName returns the mnemonic for a command or reply code.
func CodeName(code byte) string {
	switch code {
	case CmdPing:
		return "PING"
	case CmdWrite:
		return "WRITE"
	case CmdRead:
		return "READ"
	case CmdVerify:
		return "VERIFY"
	case CmdQuit:
		return "QUIT"
	case ReplySuccess:
		return "SUCCESS"
	case ReplyError:
		return "ERROR"
	case ReplyRead:
		return "READ_DATA"
	case ReplyVerify:
		return "VERIFY_DATA"
	default:
		return "UNKNOWN"
	}
}

// FormatFrame renders a decoded frame in human-readable form, one line per
// frame plus an indented payload summary where one applies.
func FormatFrame(f *Frame) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s (0x%02X) len=%d\n", CodeName(f.Code), f.Code, len(f.Payload))

	switch f.Code {
	case CmdWrite:
		if len(f.Payload) >= 1 {
			fmt.Fprintf(&sb, "  Page: %d, Data: %d bytes\n", f.Payload[0], len(f.Payload)-1)
		}
	case CmdRead, CmdVerify:
		if len(f.Payload) == 1 {
			fmt.Fprintf(&sb, "  Page: %d\n", f.Payload[0])
		}
	case ReplyError:
		if len(f.Payload) == 1 {
			fmt.Fprintf(&sb, "  Error: %s (0x%02X)\n", ErrorCode(f.Payload[0]), f.Payload[0])
		}
	case ReplyVerify:
		if len(f.Payload) == 1 {
			fmt.Fprintf(&sb, "  Checksum: 0x%02X\n", f.Payload[0])
		}
	case ReplyRead:
		sb.WriteString(formatHexDump(f.Payload))
	}

	return sb.String()
}

func formatHexDump(data []byte) string {
	var sb strings.Builder
	sb.WriteString("  Data: ")
	for i, b := range data {
		if i > 0 && i%16 == 0 {
			sb.WriteString("\n        ")
		}
		fmt.Fprintf(&sb, "%02X ", b)
	}
	sb.WriteString("\n")
	return sb.String()
}
