// SPDX-License-Identifier: MIT
// Copyright (c) 2026 Johannes Frohnhofen

// Package bootloader implements the device side of the electric-piano
// SysEx bootloader: the byte-fed frame parser loop, the command
// dispatcher, and the flash primitives it drives. The serial transport,
// the bootloader-activation check, and the jump to the resident
// application are collaborators injected by the caller, so the same core
// runs against real hardware glue or the in-process emulator.
package bootloader

import (
	"errors"
	"io"
	"log"

	"github.com/jfrohnhofen/electric-piano/pkg/sysex"
)

// Option configures a Bootloader.
type Option func(*Bootloader)

// WithLogger sets the logger for protocol events. By default nothing is
// logged.
func WithLogger(logger *log.Logger) Option {
	return func(b *Bootloader) { b.logger = logger }
}

// WithControlTransfer sets the hook invoked when a Quit command hands
// control to the resident application, after the Success reply has been
// sent. On hardware this never returns; the emulator uses it to log and
// let Run return.
func WithControlTransfer(fn func()) Option {
	return func(b *Bootloader) { b.transfer = fn }
}

// WithActivation sets the startup check deciding whether the bootloader
// stays active. It is evaluated exactly once per Run; when it returns
// false, control transfers to the resident application immediately and no
// byte is consumed. The default is to always stay active.
func WithActivation(fn func() bool) Option {
	return func(b *Bootloader) { b.active = fn }
}

// Bootloader is the device protocol engine. It owns the parser state and
// processes requests strictly in arrival order, one full request/reply
// cycle at a time, on the single goroutine that calls Run.
type Bootloader struct {
	dispatcher *Dispatcher
	parser     *sysex.Parser
	logger     *log.Logger
	transfer   func()
	active     func() bool
}

// New creates a bootloader core for the given flash.
func New(flash Flash, opts ...Option) *Bootloader {
	b := &Bootloader{
		dispatcher: NewDispatcher(flash),
		parser:     sysex.NewParser(flash.PageSize()),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Run serves the bootloader protocol on conn until a Quit command or a
// transport error. Every parse error and every dispatch failure is
// answered with an Error reply carrying the specific code; the loop then
// resumes listening. Run returns nil after Quit or when the peer closes
// the connection.
func (b *Bootloader) Run(conn io.ReadWriter) error {
	if b.active != nil && !b.active() {
		b.logf("bootloader not requested, starting resident application")
		b.transferControl()
		return nil
	}

	b.parser.Reset()
	buf := make([]byte, 256)
	for {
		n, err := conn.Read(buf)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		for _, c := range buf[:n] {
			frame, werr := b.parser.Feed(c)
			if werr != nil {
				b.logf("frame error: %s", werr.Code)
				if err := b.send(conn, sysex.ErrorReply{Reason: werr.Code}); err != nil {
					return err
				}
				continue
			}
			if frame == nil {
				continue
			}

			reply, quit := b.dispatcher.Dispatch(frame)
			b.logf("%s -> %s", sysex.CodeName(frame.Code), sysex.CodeName(sysex.MessageCode(reply)))
			if err := b.send(conn, reply); err != nil {
				return err
			}
			if quit {
				b.logf("quit received, starting resident application")
				b.transferControl()
				return nil
			}
		}
	}
}

func (b *Bootloader) send(w io.Writer, m sysex.Message) error {
	_, err := w.Write(sysex.Encode(m))
	return err
}

func (b *Bootloader) transferControl() {
	if b.transfer != nil {
		b.transfer()
	}
}

func (b *Bootloader) logf(format string, args ...interface{}) {
	if b.logger != nil {
		b.logger.Printf(format, args...)
	}
}
