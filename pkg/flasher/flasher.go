// SPDX-License-Identifier: MIT
// Copyright (c) 2026 Johannes Frohnhofen

// Package flasher implements the host side of the electric-piano SysEx
// bootloader: typed page operations over any byte connection, a complete
// program-and-verify flow with progress reporting, firmware image loading,
// and trace capture of the wire traffic.
package flasher

import (
	"context"
	"fmt"
	"io"

	"github.com/jfrohnhofen/electric-piano/pkg/sysex"
)

// Phase identifies a stage of the programming flow for progress reporting.
type Phase int

const (
	PhaseWriting Phase = iota
	PhaseVerifying
	PhaseReading
	PhaseComplete
)

func (p Phase) String() string {
	switch p {
	case PhaseWriting:
		return "writing"
	case PhaseReading:
		return "reading"
	case PhaseVerifying:
		return "verifying"
	case PhaseComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// ProgressFunc receives progress updates during Program and Dump.
type ProgressFunc func(phase Phase, page, totalPages int)

// Option configures a Flasher.
type Option func(*Flasher)

// WithPageSize sets the device flash page size. Defaults to
// sysex.DefaultPageSize.
func WithPageSize(pageSize int) Option {
	return func(f *Flasher) { f.pageSize = pageSize }
}

// WithProgress sets the progress callback for Program and Dump.
func WithProgress(fn ProgressFunc) Option {
	return func(f *Flasher) { f.progress = fn }
}

// WithTrace records all wire traffic into the given trace.
func WithTrace(tr *Trace) Option {
	return func(f *Flasher) { f.trace = tr }
}

// Flasher drives the bootloader over a byte connection. Requests are
// strictly sequential: each operation sends one frame and waits for
// exactly one reply before returning.
type Flasher struct {
	conn     io.ReadWriter
	parser   *sysex.Parser
	pageSize int
	progress ProgressFunc
	trace    *Trace
}

// New creates a Flasher on the given connection.
func New(conn io.ReadWriter, opts ...Option) *Flasher {
	f := &Flasher{
		conn:     conn,
		pageSize: sysex.DefaultPageSize,
	}
	for _, opt := range opts {
		opt(f)
	}
	f.parser = sysex.NewParser(f.pageSize)
	return f
}

// PageSize returns the configured device page size.
func (f *Flasher) PageSize() int { return f.pageSize }

// SetProgress replaces the progress callback. Useful when the callback is
// not known until after construction, e.g. when a UI attaches later.
func (f *Flasher) SetProgress(fn ProgressFunc) { f.progress = fn }

// Ping checks that the bootloader is alive and speaking our protocol.
func (f *Flasher) Ping(ctx context.Context) error {
	reply, err := f.roundTrip(ctx, sysex.Ping{})
	if err != nil {
		return err
	}
	return expectSuccess("ping", reply)
}

// WritePage programs one flash page.
func (f *Flasher) WritePage(ctx context.Context, page int, data []byte) error {
	if err := f.checkPage(page); err != nil {
		return err
	}
	if len(data) != f.pageSize {
		return fmt.Errorf("flasher: page data must be %d bytes, got %d", f.pageSize, len(data))
	}
	reply, err := f.roundTrip(ctx, sysex.Write{Page: byte(page), Data: data})
	if err != nil {
		return fmt.Errorf("write page %d: %w", page, err)
	}
	return expectSuccess(fmt.Sprintf("write page %d", page), reply)
}

// ReadPage reads one flash page back from the device.
func (f *Flasher) ReadPage(ctx context.Context, page int) ([]byte, error) {
	if err := f.checkPage(page); err != nil {
		return nil, err
	}
	reply, err := f.roundTrip(ctx, sysex.Read{Page: byte(page)})
	if err != nil {
		return nil, fmt.Errorf("read page %d: %w", page, err)
	}
	data, ok := reply.(sysex.PageData)
	if !ok {
		return nil, &UnexpectedReplyError{Op: fmt.Sprintf("read page %d", page), Reply: reply}
	}
	return data.Data, nil
}

// VerifyPage asks the device for the XOR checksum of one flash page.
func (f *Flasher) VerifyPage(ctx context.Context, page int) (byte, error) {
	if err := f.checkPage(page); err != nil {
		return 0, err
	}
	reply, err := f.roundTrip(ctx, sysex.Verify{Page: byte(page)})
	if err != nil {
		return 0, fmt.Errorf("verify page %d: %w", page, err)
	}
	sum, ok := reply.(sysex.PageChecksum)
	if !ok {
		return 0, &UnexpectedReplyError{Op: fmt.Sprintf("verify page %d", page), Reply: reply}
	}
	return sum.Sum, nil
}

// Quit tells the bootloader to start the resident application. The device
// acknowledges with Success before transferring control.
func (f *Flasher) Quit(ctx context.Context) error {
	reply, err := f.roundTrip(ctx, sysex.Quit{})
	if err != nil {
		return err
	}
	return expectSuccess("quit", reply)
}

// Program writes a firmware image to the device and then verifies every
// page via its checksum. No page is skipped: short trailing pages are
// padded with erased-flash bytes by the image split.
func (f *Flasher) Program(ctx context.Context, img *Image) error {
	pages := img.Pages(f.pageSize)
	if len(pages) > 256 {
		return fmt.Errorf("flasher: image needs %d pages, protocol addresses at most 256", len(pages))
	}

	for i, data := range pages {
		if err := f.WritePage(ctx, i, data); err != nil {
			return err
		}
		f.reportProgress(PhaseWriting, i+1, len(pages))
	}

	for i, data := range pages {
		sum, err := f.VerifyPage(ctx, i)
		if err != nil {
			return err
		}
		if want := sysex.Checksum(data); sum != want {
			return &ChecksumMismatchError{Page: i, Want: want, Got: sum}
		}
		f.reportProgress(PhaseVerifying, i+1, len(pages))
	}

	f.reportProgress(PhaseComplete, len(pages), len(pages))
	return nil
}

// Dump reads numPages pages of flash and returns their concatenation.
func (f *Flasher) Dump(ctx context.Context, numPages int) ([]byte, error) {
	out := make([]byte, 0, numPages*f.pageSize)
	for page := 0; page < numPages; page++ {
		data, err := f.ReadPage(ctx, page)
		if err != nil {
			return nil, err
		}
		out = append(out, data...)
		f.reportProgress(PhaseReading, page+1, numPages)
	}
	return out, nil
}

// roundTrip sends one request and parses the byte stream until one reply
// frame arrives. A device Error reply is surfaced as *DeviceError.
func (f *Flasher) roundTrip(ctx context.Context, req sysex.Message) (sysex.Message, error) {
	wire := sysex.Encode(req)
	f.trace.Record(DirTX, wire)
	if _, err := f.conn.Write(wire); err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}

	f.parser.Reset()
	buf := make([]byte, 256)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		n, err := f.conn.Read(buf)
		if err != nil {
			return nil, fmt.Errorf("read reply: %w", err)
		}
		f.trace.Record(DirRX, buf[:n])

		for _, b := range buf[:n] {
			frame, werr := f.parser.Feed(b)
			if werr != nil {
				return nil, fmt.Errorf("malformed reply: %w", werr)
			}
			if frame == nil {
				continue
			}

			reply, err := sysex.DecodeReply(frame)
			if err != nil {
				return nil, err
			}
			if e, ok := reply.(sysex.ErrorReply); ok {
				return nil, &DeviceError{Code: e.Reason}
			}
			return reply, nil
		}
	}
}

func (f *Flasher) checkPage(page int) error {
	if page < 0 || page > 0xFF {
		return fmt.Errorf("flasher: page number %d out of protocol range 0-255", page)
	}
	return nil
}

func (f *Flasher) reportProgress(phase Phase, page, total int) {
	if f.progress != nil {
		f.progress(phase, page, total)
	}
}

func expectSuccess(op string, reply sysex.Message) error {
	if _, ok := reply.(sysex.Success); !ok {
		return &UnexpectedReplyError{Op: op, Reply: reply}
	}
	return nil
}
