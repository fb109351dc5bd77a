// SPDX-License-Identifier: MIT
// Copyright (c) 2026 Johannes Frohnhofen

package sysex

import "fmt"

// ErrorCode is an on-wire protocol error code. The device reports every
// parse or dispatch failure to the host as an Error reply carrying one of
// these codes; there are no silent failures.
type ErrorCode byte

const (
	ErrNone ErrorCode = iota
	ErrHeaderMismatch
	ErrInvalidFormat
	ErrIncompleteMessage
	ErrInvalidNibble
	ErrInvalidChecksum
	ErrUnknownCommand
	ErrInvalidPayloadSize
	ErrInvalidPageNumber
)

func (c ErrorCode) String() string {
	switch c {
	case ErrNone:
		return "NONE"
	case ErrHeaderMismatch:
		return "HEADER_MISMATCH"
	case ErrInvalidFormat:
		return "INVALID_FORMAT"
	case ErrIncompleteMessage:
		return "INCOMPLETE_MESSAGE"
	case ErrInvalidNibble:
		return "INVALID_NIBBLE"
	case ErrInvalidChecksum:
		return "INVALID_CHECKSUM"
	case ErrUnknownCommand:
		return "UNKNOWN_COMMAND"
	case ErrInvalidPayloadSize:
		return "INVALID_PAYLOAD_SIZE"
	case ErrInvalidPageNumber:
		return "INVALID_PAGE_NUMBER"
	default:
		return fmt.Sprintf("UNKNOWN(0x%02X)", byte(c))
	}
}

// WireError is a frame-level protocol violation detected by the Parser.
// The Code is the exact error code the device reports on the wire.
type WireError struct {
	Code ErrorCode
}

func (e *WireError) Error() string {
	return fmt.Sprintf("sysex: %s", e.Code)
}
