// SPDX-License-Identifier: MIT
// Copyright (c) 2026 Johannes Frohnhofen

package flasher

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Image is a firmware image destined for the application region of the
// device flash, as a flat byte blob starting at address zero.
type Image struct {
	Data []byte
}

// LoadImage reads a firmware image from disk. Files ending in .hex or .ihx
// are parsed as Intel HEX; anything else is taken as a raw binary.
func LoadImage(path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".hex", ".ihx":
		data, err := parseIntelHex(f)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		return &Image{Data: data}, nil
	default:
		data, err := io.ReadAll(f)
		if err != nil {
			return nil, err
		}
		return &Image{Data: data}, nil
	}
}

// NumPages returns the number of flash pages the image occupies.
func (img *Image) NumPages(pageSize int) int {
	return (len(img.Data) + pageSize - 1) / pageSize
}

// Pages splits the image into page-sized chunks. The final page is padded
// with erased-flash bytes (0xFF) so writes always cover whole pages.
func (img *Image) Pages(pageSize int) [][]byte {
	pages := make([][]byte, 0, img.NumPages(pageSize))
	for off := 0; off < len(img.Data); off += pageSize {
		page := make([]byte, pageSize)
		for i := range page {
			page[i] = 0xFF
		}
		copy(page, img.Data[off:min(off+pageSize, len(img.Data))])
		pages = append(pages, page)
	}
	return pages
}

// parseIntelHex reads Intel HEX records into a flat image starting at
// address zero. Data records beyond 64 KiB (via extended address records)
// are rejected; the bootloader addresses at most 256 one-byte-numbered
// pages anyway.
func parseIntelHex(r io.Reader) ([]byte, error) {
	var image []byte
	var base uint32

	scanner := bufio.NewScanner(r)
	for line := 1; scanner.Scan(); line++ {
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		if text[0] != ':' {
			return nil, fmt.Errorf("line %d: missing record mark", line)
		}

		record, err := hex.DecodeString(text[1:])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if len(record) < 5 {
			return nil, fmt.Errorf("line %d: record too short", line)
		}

		var sum byte
		for _, b := range record {
			sum += b
		}
		if sum != 0 {
			return nil, fmt.Errorf("line %d: record checksum mismatch", line)
		}

		count := int(record[0])
		if len(record) != 5+count {
			return nil, fmt.Errorf("line %d: length field does not match record", line)
		}
		addr := uint32(record[1])<<8 | uint32(record[2])
		data := record[4 : 4+count]

		switch record[3] {
		case 0x00: // data
			end := base + addr + uint32(count)
			if end > 0x10000 {
				return nil, fmt.Errorf("line %d: data beyond 64 KiB address space", line)
			}
			if int(end) > len(image) {
				grown := make([]byte, end)
				for i := range grown {
					grown[i] = 0xFF
				}
				copy(grown, image)
				image = grown
			}
			copy(image[base+addr:], data)

		case 0x01: // end of file
			return image, nil

		case 0x02, 0x04: // extended segment / linear address
			if count != 2 {
				return nil, fmt.Errorf("line %d: malformed extended address record", line)
			}
			val := uint32(data[0])<<8 | uint32(data[1])
			if record[3] == 0x02 {
				base = val << 4
			} else {
				base = val << 16
			}
			if base != 0 {
				return nil, fmt.Errorf("line %d: extended address 0x%X outside device flash", line, base)
			}

		case 0x03, 0x05: // start address records, irrelevant for flashing
			continue

		default:
			return nil, fmt.Errorf("line %d: unsupported record type 0x%02X", line, record[3])
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("missing end-of-file record")
}
