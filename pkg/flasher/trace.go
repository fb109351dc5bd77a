// SPDX-License-Identifier: MIT
// Copyright (c) 2026 Johannes Frohnhofen

package flasher

import (
	"fmt"
	"io"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
)

// Direction marks which side of the link produced the bytes of a record.
type Direction uint8

const (
	DirTX Direction = iota // host -> device
	DirRX                  // device -> host
)

func (d Direction) String() string {
	switch d {
	case DirTX:
		return "TX"
	case DirRX:
		return "RX"
	default:
		return "??"
	}
}

// Record is one timestamped chunk of raw wire traffic.
type Record struct {
	Dir  Direction `cbor:"1,keyasint"`
	At   time.Time `cbor:"2,keyasint"`
	Data []byte    `cbor:"3,keyasint"`
}

// Trace is a capture of one flashing session's wire traffic. Captures
// serialize to CBOR so they can be archived and inspected offline with the
// trace command.
type Trace struct {
	Session uuid.UUID `cbor:"1,keyasint"`
	Started time.Time `cbor:"2,keyasint"`
	Records []Record  `cbor:"3,keyasint"`
}

// NewTrace creates an empty capture with a fresh session ID.
func NewTrace() *Trace {
	return &Trace{
		Session: uuid.New(),
		Started: time.Now(),
	}
}

// Record appends one chunk of wire traffic. Safe to call on a nil trace,
// so callers can record unconditionally.
func (t *Trace) Record(dir Direction, data []byte) {
	if t == nil {
		return
	}
	chunk := make([]byte, len(data))
	copy(chunk, data)
	t.Records = append(t.Records, Record{Dir: dir, At: time.Now(), Data: chunk})
}

// Bytes returns the concatenated raw bytes captured for one direction, in
// order. Used to replay a capture through a parser.
func (t *Trace) Bytes(dir Direction) []byte {
	var out []byte
	for _, r := range t.Records {
		if r.Dir == dir {
			out = append(out, r.Data...)
		}
	}
	return out
}

// Save writes the capture as CBOR.
func (t *Trace) Save(w io.Writer) error {
	data, err := cbor.Marshal(t)
	if err != nil {
		return fmt.Errorf("encode trace: %w", err)
	}
	_, err = w.Write(data)
	return err
}

// LoadTrace reads a CBOR capture written by Save.
func LoadTrace(r io.Reader) (*Trace, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var t Trace
	if err := cbor.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("decode trace: %w", err)
	}
	return &t, nil
}
