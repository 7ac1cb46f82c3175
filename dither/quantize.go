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

// Package dither reduces 8-bit color samples to the bit depth of a printer,
// using ordered dithering.
//
// The threshold matrices are fixed.  Quantization at position (x, y) uses
// the matrix entry at (x mod N, y mod N), so that the result only depends
// on the sample value and the pixel position.
package dither

import (
	"fmt"

	"seehuhn.de/go/raster"
)

// Kind identifies a quantization strategy.
type Kind int

// These are the quantization strategies.
const (
	// Passthrough leaves samples unchanged.
	Passthrough Kind = iota

	// Threshold1 compares each channel against the 16×16 matrix and
	// concatenates the resulting bits into one code byte.
	Threshold1

	// Dither2 adds the 8×8 matrix and keeps the top two bits of each channel.
	Dither2

	// Dither4 adds the 4×4 matrix and keeps the top four bits of each channel.
	Dither4

	// Expand16 repeats every byte, turning 8-bit into 16-bit samples.
	Expand16
)

func (k Kind) String() string {
	switch k {
	case Passthrough:
		return "passthrough"
	case Threshold1:
		return "threshold1"
	case Dither2:
		return "dither2"
	case Dither4:
		return "dither4"
	case Expand16:
		return "expand16"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Quantizer converts the channels of one pixel to the output bit depth.
// The zero value is not usable; use [NewQuantizer].
type Quantizer struct {
	Kind      Kind
	NumColors int

	fn func(dst, src []byte, x, y int) []byte
}

// NewQuantizer returns the quantizer for samples of the given depth.
//
// If passthrough is set, samples are assumed to be already in the output
// depth.  The color conversion guarantees this for single channel data
// taken from a 1-bit bitmap, for six-color KCMYcm data, and for the
// output of a color management transform.
func NewQuantizer(bitsPerColor, numColors int, passthrough bool) (*Quantizer, error) {
	if numColors < 1 || numColors > raster.MaxColors {
		return nil, fmt.Errorf("%w: %d colors", raster.ErrInconsistent, numColors)
	}

	switch bitsPerColor {
	case 1, 2, 4, 8, 16:
	default:
		return nil, fmt.Errorf("%w: %d bits per color",
			raster.ErrUnsupportedDepth, bitsPerColor)
	}

	q := &Quantizer{NumColors: numColors}
	switch {
	case bitsPerColor == 8 || passthrough:
		q.Kind = Passthrough
		q.fn = passthroughFn
	case bitsPerColor == 1:
		q.Kind = Threshold1
		q.fn = q.threshold1
	case bitsPerColor == 2:
		q.Kind = Dither2
		q.fn = q.dither2
	case bitsPerColor == 4:
		q.Kind = Dither4
		q.fn = q.dither4
	default:
		q.Kind = Expand16
		q.fn = q.expand16
	}
	return q, nil
}

// Quantize converts the pixel src at position (x, y).
// The result is either src itself or a prefix of dst.
// The buffer dst must have room for 2*NumColors bytes.
func (q *Quantizer) Quantize(dst, src []byte, x, y int) []byte {
	return q.fn(dst, src, x, y)
}

func passthroughFn(dst, src []byte, x, y int) []byte {
	return src
}

func (q *Quantizer) threshold1(dst, src []byte, x, y int) []byte {
	d := Threshold16(x, y)
	var code byte
	for _, v := range src[:q.NumColors] {
		code <<= 1
		if v > d || v == 255 {
			code |= 1
		}
	}
	dst[0] = code
	return dst[:1]
}

func (q *Quantizer) dither2(dst, src []byte, x, y int) []byte {
	d := int(Threshold8(x, y))
	var code byte
	for _, v := range src[:q.NumColors] {
		code = code<<2 | byte(min(int(v)+d, 255)>>6)
	}
	dst[0] = code
	return dst[:1]
}

func (q *Quantizer) dither4(dst, src []byte, x, y int) []byte {
	d := int(Threshold4(x, y))
	var code uint16
	for _, v := range src[:q.NumColors] {
		code = code<<4 | uint16(min(int(v)+d, 255)>>4)
	}
	if q.NumColors < 3 {
		dst[0] = byte(code)
		return dst[:1]
	}
	dst[0] = byte(code >> 8)
	dst[1] = byte(code)
	return dst[:2]
}

func (q *Quantizer) expand16(dst, src []byte, x, y int) []byte {
	for i, v := range src[:q.NumColors] {
		dst[2*i] = v
		dst[2*i+1] = v
	}
	return dst[:2*q.NumColors]
}
