// SPDX-License-Identifier: MIT
// Copyright (c) 2026 Johannes Frohnhofen

package bootloader

import (
	"github.com/jfrohnhofen/electric-piano/pkg/sysex"
)

// Dispatcher executes validated frames against the flash. It is stateless
// between calls: every call produces exactly one reply, and a destructive
// flash operation runs only after both the payload-size and page-range
// checks have passed.
type Dispatcher struct {
	flash Flash
}

// NewDispatcher creates a dispatcher driving the given flash.
func NewDispatcher(flash Flash) *Dispatcher {
	return &Dispatcher{flash: flash}
}

// Dispatch executes one frame and returns the reply. quit is true when the
// frame was a Quit command: the caller must send the reply first and then
// transfer control to the resident application.
func (d *Dispatcher) Dispatch(f *sysex.Frame) (reply sysex.Message, quit bool) {
	msg, code := sysex.DecodeRequest(f, d.flash.PageSize())
	if code != sysex.ErrNone {
		return sysex.ErrorReply{Reason: code}, false
	}

	switch m := msg.(type) {
	case sysex.Ping:
		return sysex.Success{}, false

	case sysex.Write:
		if int(m.Page) >= d.flash.NumPages() {
			return sysex.ErrorReply{Reason: sysex.ErrInvalidPageNumber}, false
		}
		d.flash.EraseAndProgram(int(m.Page), m.Data)
		return sysex.Success{}, false

	case sysex.Read:
		if int(m.Page) >= d.flash.NumPages() {
			return sysex.ErrorReply{Reason: sysex.ErrInvalidPageNumber}, false
		}
		return sysex.PageData{Data: d.flash.ReadPage(int(m.Page))}, false

	case sysex.Verify:
		if int(m.Page) >= d.flash.NumPages() {
			return sysex.ErrorReply{Reason: sysex.ErrInvalidPageNumber}, false
		}
		return sysex.PageChecksum{Sum: d.flash.ChecksumPage(int(m.Page))}, false

	case sysex.Quit:
		return sysex.Success{}, true

	default:
		return sysex.ErrorReply{Reason: sysex.ErrUnknownCommand}, false
	}
}
