// seehuhn.de/go/raster - convert rendered pages to CUPS raster data
// Copyright (C) 2026  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package raster

import "fmt"

// SampleFormat is the pixel layout of a rendered bitmap.
type SampleFormat int

// These are the sample formats a renderer can produce.
const (
	// RGB8 uses three bytes per pixel, red first.
	RGB8 SampleFormat = iota

	// Gray8 uses one byte per pixel, 0 is black.
	Gray8

	// Mono1 uses one bit per pixel, most significant bit first.
	// A set bit is white.
	Mono1
)

func (f SampleFormat) String() string {
	switch f {
	case RGB8:
		return "RGB8"
	case Gray8:
		return "Gray8"
	case Mono1:
		return "Mono1"
	}
	return fmt.Sprintf("SampleFormat(%d)", int(f))
}

// BitsPerPixel returns the number of bits used for one pixel.
func (f SampleFormat) BitsPerPixel() int {
	switch f {
	case RGB8:
		return 24
	case Gray8:
		return 8
	default:
		return 1
	}
}

// Bitmap is a rendered page.  Rows are stored top to bottom.
type Bitmap struct {
	Format SampleFormat
	Width  int
	Height int
	Stride int // bytes between the starts of adjacent rows
	Pix    []byte
}

// NewBitmap allocates a bitmap, filled with white.
func NewBitmap(format SampleFormat, width, height int) *Bitmap {
	stride := (width*format.BitsPerPixel() + 7) / 8
	b := &Bitmap{
		Format: format,
		Width:  width,
		Height: height,
		Stride: stride,
		Pix:    make([]byte, stride*height),
	}
	for i := range b.Pix {
		b.Pix[i] = 0xFF
	}
	return b
}

// Row returns the pixel data of row y.
func (b *Bitmap) Row(y int) []byte {
	start := y * b.Stride
	return b.Pix[start : start+b.Stride]
}
