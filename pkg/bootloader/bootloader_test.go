// SPDX-License-Identifier: MIT
// Copyright (c) 2026 Johannes Frohnhofen

package bootloader

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jfrohnhofen/electric-piano/pkg/sysex"
)

// startBootloader runs a bootloader over an in-process pipe and returns
// the host end of the connection plus a channel resolving to Run's result.
func startBootloader(t *testing.T, flash Flash, opts ...Option) (net.Conn, chan error) {
	t.Helper()
	host, device := net.Pipe()
	t.Cleanup(func() {
		_ = host.Close()
		_ = device.Close()
	})

	done := make(chan error, 1)
	go func() {
		done <- New(flash, opts...).Run(device)
	}()
	return host, done
}

// readReply feeds bytes from conn into a parser until one frame arrives.
func readReply(t *testing.T, conn net.Conn, p *sysex.Parser) *sysex.Frame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	buf := make([]byte, 256)
	for {
		n, err := conn.Read(buf)
		require.NoError(t, err)
		for _, b := range buf[:n] {
			frame, werr := p.Feed(b)
			require.Nil(t, werr)
			if frame != nil {
				return frame
			}
		}
	}
}

func TestBootloader_PingReply(t *testing.T) {
	t.Parallel()
	host, _ := startBootloader(t, NewMemFlash(testPageSize, testNumPages))
	p := sysex.NewParser(testPageSize)

	_, err := host.Write(sysex.Encode(sysex.Ping{}))
	require.NoError(t, err)

	frame := readReply(t, host, p)
	assert.Equal(t, byte(sysex.ReplySuccess), frame.Code)
	assert.Empty(t, frame.Payload)
}

func TestBootloader_ParseErrorsAnswered(t *testing.T) {
	t.Parallel()
	host, _ := startBootloader(t, NewMemFlash(testPageSize, testNumPages))
	p := sysex.NewParser(testPageSize)

	// Bad header byte right after the start delimiter.
	_, err := host.Write([]byte{0xF0, 0x55})
	require.NoError(t, err)

	frame := readReply(t, host, p)
	require.Equal(t, byte(sysex.ReplyError), frame.Code)
	require.Len(t, frame.Payload, 1)
	assert.Equal(t, byte(sysex.ErrHeaderMismatch), frame.Payload[0])

	// The loop keeps listening after the error.
	_, err = host.Write(sysex.Encode(sysex.Ping{}))
	require.NoError(t, err)
	frame = readReply(t, host, p)
	assert.Equal(t, byte(sysex.ReplySuccess), frame.Code)
}

func TestBootloader_QuitTransfersControl(t *testing.T) {
	t.Parallel()
	transferred := make(chan struct{})
	host, done := startBootloader(t, NewMemFlash(testPageSize, testNumPages),
		WithControlTransfer(func() { close(transferred) }))
	p := sysex.NewParser(testPageSize)

	_, err := host.Write(sysex.Encode(sysex.Quit{}))
	require.NoError(t, err)

	// The Success reply arrives before control transfers.
	frame := readReply(t, host, p)
	assert.Equal(t, byte(sysex.ReplySuccess), frame.Code)

	select {
	case <-transferred:
	case <-time.After(5 * time.Second):
		t.Fatal("control was not transferred")
	}
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after quit")
	}
}

func TestBootloader_ActivationSkipsLoop(t *testing.T) {
	t.Parallel()
	flash := NewMemFlash(testPageSize, testNumPages)
	transferred := false

	_, device := net.Pipe()
	defer device.Close()

	b := New(flash,
		WithActivation(func() bool { return false }),
		WithControlTransfer(func() { transferred = true }))
	require.NoError(t, b.Run(device))
	assert.True(t, transferred, "expected immediate transfer to resident application")
}

func TestBootloader_PeerCloseEndsRun(t *testing.T) {
	t.Parallel()
	host, done := startBootloader(t, NewMemFlash(testPageSize, testNumPages))
	require.NoError(t, host.Close())

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after peer close")
	}
}
