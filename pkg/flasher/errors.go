// SPDX-License-Identifier: MIT
// Copyright (c) 2026 Johannes Frohnhofen

package flasher

import (
	"fmt"

	"github.com/jfrohnhofen/electric-piano/pkg/sysex"
)

// DeviceError is an Error reply received from the bootloader.
type DeviceError struct {
	Code sysex.ErrorCode
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("device reported %s", e.Code)
}

// UnexpectedReplyError indicates the device answered with a reply kind the
// operation did not ask for.
type UnexpectedReplyError struct {
	Op    string
	Reply sysex.Message
}

func (e *UnexpectedReplyError) Error() string {
	return fmt.Sprintf("%s: unexpected reply %s", e.Op, sysex.CodeName(sysex.MessageCode(e.Reply)))
}

// ChecksumMismatchError indicates a programmed page did not verify.
type ChecksumMismatchError struct {
	Page int
	Want byte
	Got  byte
}

func (e *ChecksumMismatchError) Error() string {
	return fmt.Sprintf("checksum mismatch for page %d: expected 0x%02X, got 0x%02X",
		e.Page, e.Want, e.Got)
}
