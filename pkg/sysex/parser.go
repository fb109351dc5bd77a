// SPDX-License-Identifier: MIT
// Copyright (c) 2026 Johannes Frohnhofen

package sysex

// Parser implements the frame parser state machine. It consumes the byte
// stream one byte at a time, recognizes the frame delimiters, matches the
// fixed header, reassembles nibble pairs into payload bytes, and verifies
// the running XOR checksum, handing out one Frame per valid wire frame.
//
// The parser always returns to idle after a completed or aborted frame, so
// a single malformed frame never poisons subsequent traffic.
type Parser struct {
	state      int
	headerPos  int
	checksum   byte
	highNibble byte
	haveHigh   bool
	buf        []byte
	size       int
}

// NewParser creates a parser for the given flash page size. The internal
// buffer is sized for the largest possible frame: one page of data plus the
// command, page-number, and checksum bytes.
func NewParser(pageSize int) *Parser {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Parser{
		state: stateIdle,
		buf:   make([]byte, pageSize+3),
	}
}

// Reset returns the parser to the idle state, discarding any frame in
// progress.
func (p *Parser) Reset() {
	p.state = stateIdle
	p.headerPos = 0
	p.checksum = 0
	p.haveHigh = false
	p.size = 0
}

// Feed processes a single byte. On frame completion it returns the decoded
// Frame; on a protocol violation it returns a WireError carrying the exact
// error code to report to the peer. Both results nil means the frame is
// still in progress (or the byte was ignored).
//
// A StartByte always begins a new frame. If one was already in progress
// that is itself reported as ErrIncompleteMessage, but parsing of the new
// frame proceeds normally.
func (p *Parser) Feed(b byte) (*Frame, *WireError) {
	if b >= 0x80 {
		switch b {
		case StartByte:
			var werr *WireError
			if p.state != stateIdle {
				werr = &WireError{Code: ErrIncompleteMessage}
			}
			p.Reset()
			p.state = stateMatchingHeader
			return nil, werr

		case EndByte:
			if p.state == stateIdle {
				return nil, nil
			}
			return p.finalize()

		default:
			// Foreign status byte (e.g. MIDI real-time); not ours.
			return nil, nil
		}
	}

	switch p.state {
	case stateIdle:
		return nil, nil

	case stateMatchingHeader:
		if b != Header[p.headerPos] {
			p.Reset()
			return nil, &WireError{Code: ErrHeaderMismatch}
		}
		p.headerPos++
		if p.headerPos == HeaderSize {
			p.state = stateReadingBody
		}
		return nil, nil

	case stateReadingBody:
		if b > 0x0F {
			p.Reset()
			return nil, &WireError{Code: ErrInvalidNibble}
		}
		if !p.haveHigh {
			p.highNibble = b
			p.haveHigh = true
			return nil, nil
		}
		v := p.highNibble<<4 | b
		p.haveHigh = false
		p.buf[p.size] = v
		p.checksum ^= v
		p.size++
		if p.size == len(p.buf) {
			p.state = stateExpectingEnd
		}
		return nil, nil

	case stateExpectingEnd:
		p.Reset()
		return nil, &WireError{Code: ErrInvalidPayloadSize}

	default:
		p.Reset()
		return nil, nil
	}
}

// finalize validates a frame terminated by EndByte. The decoded body must
// contain at least the command byte and the checksum byte, and the XOR of
// every decoded byte (checksum included) must be zero. A trailing unpaired
// high nibble is dropped, matching the device firmware.
func (p *Parser) finalize() (*Frame, *WireError) {
	state, size, sum := p.state, p.size, p.checksum
	p.Reset()

	if state == stateMatchingHeader || size <= 1 {
		return nil, &WireError{Code: ErrInvalidFormat}
	}
	if sum != 0 {
		return nil, &WireError{Code: ErrInvalidChecksum}
	}

	// Strip the command byte (front) and checksum byte (back); what is
	// left is the command payload.
	payload := make([]byte, size-2)
	copy(payload, p.buf[1:size-1])
	return &Frame{Code: p.buf[0], Payload: payload}, nil
}
