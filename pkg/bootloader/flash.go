// SPDX-License-Identifier: MIT
// Copyright (c) 2026 Johannes Frohnhofen

package bootloader

// Flash exposes the page-level flash primitives the bootloader core drives.
// The core validates page numbers against NumPages before invoking any
// primitive, so implementations may assume in-range arguments; a hardware
// programming failure is outside the protocol's error model.
//
// NumPages counts only the pages addressable by the protocol, i.e. the
// region reserved for the resident application. The bootloader's own
// resident region is excluded.
type Flash interface {
	PageSize() int
	NumPages() int

	// EraseAndProgram erases one page and programs it from data as a
	// single logical operation. len(data) == PageSize.
	EraseAndProgram(page int, data []byte)

	// ReadPage returns the current contents of one page.
	ReadPage(page int) []byte

	// ChecksumPage returns the XOR of every byte in one page.
	ChecksumPage(page int) byte
}

// MemFlash is an in-memory Flash used by the emulator and by tests.
// Unprogrammed pages read back as erased flash (0xFF).
type MemFlash struct {
	pageSize int
	pages    [][]byte
}

// NewMemFlash creates a memory flash with numPages application pages of
// pageSize bytes each, all erased.
func NewMemFlash(pageSize, numPages int) *MemFlash {
	f := &MemFlash{
		pageSize: pageSize,
		pages:    make([][]byte, numPages),
	}
	for i := range f.pages {
		f.pages[i] = make([]byte, pageSize)
		for j := range f.pages[i] {
			f.pages[i][j] = 0xFF
		}
	}
	return f
}

func (f *MemFlash) PageSize() int { return f.pageSize }
func (f *MemFlash) NumPages() int { return len(f.pages) }

func (f *MemFlash) EraseAndProgram(page int, data []byte) {
	copy(f.pages[page], data)
}

func (f *MemFlash) ReadPage(page int) []byte {
	out := make([]byte, f.pageSize)
	copy(out, f.pages[page])
	return out
}

func (f *MemFlash) ChecksumPage(page int) byte {
	var sum byte
	for _, b := range f.pages[page] {
		sum ^= b
	}
	return sum
}
