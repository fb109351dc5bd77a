// SPDX-License-Identifier: MIT
// Copyright (c) 2026 Johannes Frohnhofen

package flasher

import (
	"bytes"
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jfrohnhofen/electric-piano/pkg/bootloader"
	"github.com/jfrohnhofen/electric-piano/pkg/sysex"
)

const (
	testPageSize = 8
	testNumPages = 4
)

// newTestFlasher wires a Flasher to an in-process bootloader over a pipe.
func newTestFlasher(t *testing.T, opts ...Option) (*Flasher, *bootloader.MemFlash) {
	t.Helper()
	host, device := net.Pipe()
	t.Cleanup(func() {
		_ = host.Close()
		_ = device.Close()
	})

	flash := bootloader.NewMemFlash(testPageSize, testNumPages)
	go func() {
		_ = bootloader.New(flash).Run(device)
	}()

	opts = append([]Option{WithPageSize(testPageSize)}, opts...)
	return New(host, opts...), flash
}

func testCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestFlasher_Ping(t *testing.T) {
	t.Parallel()
	f, _ := newTestFlasher(t)
	require.NoError(t, f.Ping(testCtx(t)))
}

func TestFlasher_WriteReadVerifyRoundTrip(t *testing.T) {
	t.Parallel()
	f, _ := newTestFlasher(t)
	ctx := testCtx(t)

	data := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	require.NoError(t, f.WritePage(ctx, 1, data))

	got, err := f.ReadPage(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, data, got)

	sum, err := f.VerifyPage(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, sysex.Checksum(data), sum)
}

func TestFlasher_DeviceErrorSurfaced(t *testing.T) {
	t.Parallel()
	f, _ := newTestFlasher(t)

	// Page past the end of the application region.
	_, err := f.ReadPage(testCtx(t), testNumPages)
	var devErr *DeviceError
	require.ErrorAs(t, err, &devErr)
	assert.Equal(t, sysex.ErrInvalidPageNumber, devErr.Code)
}

func TestFlasher_PageArgumentValidation(t *testing.T) {
	t.Parallel()
	f, _ := newTestFlasher(t)
	ctx := testCtx(t)

	assert.Error(t, f.WritePage(ctx, 0, make([]byte, testPageSize-1)))
	assert.Error(t, f.WritePage(ctx, 256, make([]byte, testPageSize)))
	_, err := f.ReadPage(ctx, -1)
	assert.Error(t, err)
}

func TestFlasher_Program(t *testing.T) {
	t.Parallel()

	var phases []Phase
	f, flash := newTestFlasher(t, WithProgress(func(phase Phase, _, _ int) {
		phases = append(phases, phase)
	}))

	// Two and a half pages: the tail must be padded with 0xFF.
	img := &Image{Data: bytes.Repeat([]byte{0xA5, 0x5A}, 10)}
	require.NoError(t, f.Program(testCtx(t), img))

	want := append(bytes.Repeat([]byte{0xA5, 0x5A}, 10), bytes.Repeat([]byte{0xFF}, 4)...)
	got := append(flash.ReadPage(0), append(flash.ReadPage(1), flash.ReadPage(2)...)...)
	assert.Equal(t, want, got)

	require.NotEmpty(t, phases)
	assert.Equal(t, PhaseComplete, phases[len(phases)-1])
	assert.Contains(t, phases, PhaseWriting)
	assert.Contains(t, phases, PhaseVerifying)
}

func TestFlasher_ProgramImageTooLarge(t *testing.T) {
	t.Parallel()
	f, _ := newTestFlasher(t)

	img := &Image{Data: make([]byte, 257*testPageSize)}
	err := f.Program(testCtx(t), img)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "256")
}

func TestFlasher_Dump(t *testing.T) {
	t.Parallel()
	f, flash := newTestFlasher(t)
	ctx := testCtx(t)

	data := []byte{9, 8, 7, 6, 5, 4, 3, 2}
	flash.EraseAndProgram(0, data)

	out, err := f.Dump(ctx, 2)
	require.NoError(t, err)
	require.Len(t, out, 2*testPageSize)
	assert.Equal(t, data, out[:testPageSize])
	assert.Equal(t, bytes.Repeat([]byte{0xFF}, testPageSize), out[testPageSize:])
}

func TestFlasher_Quit(t *testing.T) {
	t.Parallel()
	f, _ := newTestFlasher(t)
	require.NoError(t, f.Quit(testCtx(t)))
}

func TestFlasher_TraceRecordsTraffic(t *testing.T) {
	t.Parallel()
	tr := NewTrace()
	f, _ := newTestFlasher(t, WithTrace(tr))
	require.NoError(t, f.Ping(testCtx(t)))

	assert.Equal(t, sysex.Encode(sysex.Ping{}), tr.Bytes(DirTX))
	assert.Equal(t, sysex.Encode(sysex.Success{}), tr.Bytes(DirRX))
}
