// SPDX-License-Identifier: MIT
// Copyright (c) 2026 Johannes Frohnhofen

package sysex

import "fmt"

// Frame is a decoded wire frame: the command/reply code plus the raw
// payload bytes, after nibble reassembly and checksum verification. The
// checksum and command bytes themselves are already stripped.
type Frame struct {
	Code    byte
	Payload []byte
}

// Message is a typed protocol message. Each command and reply kind is its
// own variant carrying only its own fields; Encode converts any of them to
// wire format.
type Message interface {
	code() byte
	appendPayload(dst []byte) []byte
}

// Ping requests a liveness check. Carries no payload.
type Ping struct{}

// Write programs one flash page: erase, fill, commit as a single operation.
type Write struct {
	Page byte
	Data []byte
}

// Read requests the contents of one flash page.
type Read struct {
	Page byte
}

// Verify requests the XOR checksum of one flash page.
type Verify struct {
	Page byte
}

// Quit asks the bootloader to hand control to the resident application.
// The device sends a Success reply before transferring control.
type Quit struct{}

// Success is the empty acknowledgement reply.
type Success struct{}

// ErrorReply reports a protocol or dispatch failure with its error code.
type ErrorReply struct {
	Reason ErrorCode
}

// PageData is the reply to Read, carrying one page of flash contents.
type PageData struct {
	Data []byte
}

// PageChecksum is the reply to Verify.
type PageChecksum struct {
	Sum byte
}

func (Ping) code() byte                      { return CmdPing }
func (Ping) appendPayload(dst []byte) []byte { return dst }

func (Write) code() byte { return CmdWrite }
func (m Write) appendPayload(dst []byte) []byte {
	dst = append(dst, m.Page)
	return append(dst, m.Data...)
}

func (Read) code() byte                        { return CmdRead }
func (m Read) appendPayload(dst []byte) []byte { return append(dst, m.Page) }

func (Verify) code() byte                        { return CmdVerify }
func (m Verify) appendPayload(dst []byte) []byte { return append(dst, m.Page) }

func (Quit) code() byte                      { return CmdQuit }
func (Quit) appendPayload(dst []byte) []byte { return dst }

func (Success) code() byte                      { return ReplySuccess }
func (Success) appendPayload(dst []byte) []byte { return dst }

func (ErrorReply) code() byte { return ReplyError }
func (m ErrorReply) appendPayload(dst []byte) []byte {
	return append(dst, byte(m.Reason))
}

func (PageData) code() byte { return ReplyRead }
func (m PageData) appendPayload(dst []byte) []byte {
	return append(dst, m.Data...)
}

func (PageChecksum) code() byte { return ReplyVerify }
func (m PageChecksum) appendPayload(dst []byte) []byte {
	return append(dst, m.Sum)
}

// DecodeRequest converts a frame into a typed command message, enforcing
// the payload size the command's variant requires. The payload size is
// fully determined by the command code; any mismatch is rejected with
// ErrInvalidPayloadSize before the command can execute. Unrecognized codes
// yield ErrUnknownCommand.
func DecodeRequest(f *Frame, pageSize int) (Message, ErrorCode) {
	switch f.Code {
	case CmdPing:
		if len(f.Payload) != 0 {
			return nil, ErrInvalidPayloadSize
		}
		return Ping{}, ErrNone

	case CmdWrite:
		if len(f.Payload) != 1+pageSize {
			return nil, ErrInvalidPayloadSize
		}
		return Write{Page: f.Payload[0], Data: f.Payload[1:]}, ErrNone

	case CmdRead:
		if len(f.Payload) != 1 {
			return nil, ErrInvalidPayloadSize
		}
		return Read{Page: f.Payload[0]}, ErrNone

	case CmdVerify:
		if len(f.Payload) != 1 {
			return nil, ErrInvalidPayloadSize
		}
		return Verify{Page: f.Payload[0]}, ErrNone

	case CmdQuit:
		if len(f.Payload) != 0 {
			return nil, ErrInvalidPayloadSize
		}
		return Quit{}, ErrNone

	default:
		return nil, ErrUnknownCommand
	}
}

// DecodeReply converts a frame into a typed reply message. Used by the
// host side; the device never receives replies.
func DecodeReply(f *Frame) (Message, error) {
	switch f.Code {
	case ReplySuccess:
		if len(f.Payload) != 0 {
			return nil, fmt.Errorf("sysex: SUCCESS reply with %d payload bytes", len(f.Payload))
		}
		return Success{}, nil

	case ReplyError:
		if len(f.Payload) != 1 {
			return nil, fmt.Errorf("sysex: ERROR reply with %d payload bytes", len(f.Payload))
		}
		return ErrorReply{Reason: ErrorCode(f.Payload[0])}, nil

	case ReplyRead:
		if len(f.Payload) == 0 {
			return nil, fmt.Errorf("sysex: READ reply with empty payload")
		}
		return PageData{Data: f.Payload}, nil

	case ReplyVerify:
		if len(f.Payload) != 1 {
			return nil, fmt.Errorf("sysex: VERIFY reply with %d payload bytes", len(f.Payload))
		}
		return PageChecksum{Sum: f.Payload[0]}, nil

	default:
		return nil, fmt.Errorf("sysex: unknown reply code 0x%02X", f.Code)
	}
}
