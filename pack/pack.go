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

// Package pack stores quantized pixels in raster rows.
//
// A quantized pixel is the output of a dither.Quantizer: for sample
// depths below 8 bits the channels are concatenated into a code of one or
// two bytes, with the first channel in the most significant position.
// For 8 and 16 bits the channels are stored as separate bytes or
// big-endian byte pairs.
//
// In chunked order the pixel code is stored as a whole.  In planar and
// banded order, only the channel belonging to the requested plane is
// stored, and the rows of the different planes are written separately.
//
// Writes of less than a byte only modify the bits of the pixel being
// written.  No bounds checks are performed; the caller must make sure
// that the row buffer is large enough.
package pack

import (
	"fmt"

	"seehuhn.de/go/raster"
)

// Kind identifies a packing strategy.
type Kind int

// These are the packing strategies.
const (
	Bit        Kind = iota // 1 bit per pixel, MSB first
	Crumb                  // 2 bits per pixel
	Nibble                 // 4 bits per pixel, high nibble first
	Byte                   // 1 byte per pixel
	Word                   // 2 bytes per pixel
	Contiguous             // all channel bytes of the pixel

	PlanarBit    // one channel of a 1-bit code
	PlanarCrumb  // one channel of a 2-bit code
	PlanarNibble // one channel of a 4-bit code
	PlanarByte   // one 8-bit channel
	PlanarWord   // one 16-bit channel
)

func (k Kind) String() string {
	switch k {
	case Bit:
		return "bit"
	case Crumb:
		return "crumb"
	case Nibble:
		return "nibble"
	case Byte:
		return "byte"
	case Word:
		return "word"
	case Contiguous:
		return "contiguous"
	case PlanarBit:
		return "planar-bit"
	case PlanarCrumb:
		return "planar-crumb"
	case PlanarNibble:
		return "planar-nibble"
	case PlanarByte:
		return "planar-byte"
	case PlanarWord:
		return "planar-word"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Packer writes quantized pixels into raster rows.
type Packer struct {
	Kind Kind

	// PixelBytes is the length of a quantized pixel.
	PixelBytes int

	numColors int
	size      int // bytes per pixel for Contiguous
}

// New returns the packer for the given sample depth, number of channels
// and color order.  Planar and banded data with a single channel are
// packed like chunked data.
func New(bitsPerColor, numColors int, order raster.Order) (*Packer, error) {
	if numColors < 1 || numColors > raster.MaxColors {
		return nil, fmt.Errorf("%w: %d colors", raster.ErrInconsistent, numColors)
	}
	switch order {
	case raster.Chunked, raster.Banded, raster.Planar:
	default:
		return nil, fmt.Errorf("%w: %s", raster.ErrUnsupportedOrder, order)
	}

	p := &Packer{numColors: numColors, PixelBytes: 1}
	n := numColors
	if order == raster.Chunked || n == 1 {
		switch {
		case bitsPerColor == 1 && n == 1:
			p.Kind = Bit
		case bitsPerColor == 1 && n == 6:
			p.Kind = Byte
		case bitsPerColor == 1:
			p.Kind = Nibble
		case bitsPerColor == 2 && n == 1:
			p.Kind = Crumb
		case bitsPerColor == 2:
			p.Kind = Byte
		case bitsPerColor == 4 && n == 1:
			p.Kind = Nibble
		case bitsPerColor == 4:
			p.Kind = Word
			p.PixelBytes = 2
		case bitsPerColor == 8 || bitsPerColor == 16:
			p.Kind = Contiguous
			p.size = n * bitsPerColor / 8
			p.PixelBytes = p.size
		default:
			return nil, fmt.Errorf("%w: %d bits per color",
				raster.ErrUnsupportedDepth, bitsPerColor)
		}
		return p, nil
	}

	switch bitsPerColor {
	case 1:
		p.Kind = PlanarBit
	case 2:
		p.Kind = PlanarCrumb
	case 4:
		p.Kind = PlanarNibble
		if n >= 3 {
			p.PixelBytes = 2
		}
	case 8:
		p.Kind = PlanarByte
		p.PixelBytes = n
	case 16:
		p.Kind = PlanarWord
		p.PixelBytes = 2 * n
	default:
		return nil, fmt.Errorf("%w: %d bits per color",
			raster.ErrUnsupportedDepth, bitsPerColor)
	}
	return p, nil
}

// Put stores the quantized pixel px as pixel i of the row dst.
// For planar kinds, only the channel for the given plane is stored;
// otherwise plane is ignored.
func (p *Packer) Put(dst []byte, plane, i int, px []byte) {
	switch p.Kind {
	case Bit:
		putBits(dst, i, 1, px[0])
	case Crumb:
		putBits(dst, i, 2, px[0])
	case Nibble:
		putBits(dst, i, 4, px[0])
	case Byte:
		dst[i] = px[0]
	case Word:
		dst[2*i] = px[0]
		dst[2*i+1] = px[1]
	case Contiguous:
		copy(dst[i*p.size:], px[:p.size])

	case PlanarBit:
		putBits(dst, i, 1, px[0]>>(p.numColors-plane-1))
	case PlanarCrumb:
		putBits(dst, i, 2, px[0]>>(2*(p.numColors-plane-1)))
	case PlanarNibble:
		putBits(dst, i, 4, byte(p.code16(px)>>(4*(p.numColors-plane-1))))
	case PlanarByte:
		dst[i] = px[plane]
	case PlanarWord:
		dst[2*i] = px[2*plane]
		dst[2*i+1] = px[2*plane+1]
	}
}

// Get is the inverse of Put.  It reads pixel i of the row src into px and
// returns px[:PixelBytes].
//
// For planar kinds only the bits or bytes of the given channel are
// replaced, so that calling Get once for every plane reassembles the
// complete pixel.  The buffer px must hold 2*raster.MaxColors bytes.
func (p *Packer) Get(src []byte, plane, i int, px []byte) []byte {
	switch p.Kind {
	case Bit:
		px[0] = getBits(src, i, 1)
	case Crumb:
		px[0] = getBits(src, i, 2)
	case Nibble:
		px[0] = getBits(src, i, 4)
	case Byte:
		px[0] = src[i]
	case Word:
		px[0] = src[2*i]
		px[1] = src[2*i+1]
	case Contiguous:
		copy(px, src[i*p.size:(i+1)*p.size])

	case PlanarBit:
		shift := p.numColors - plane - 1
		px[0] = px[0]&^(1<<shift) | getBits(src, i, 1)<<shift
	case PlanarCrumb:
		shift := 2 * (p.numColors - plane - 1)
		px[0] = px[0]&^(3<<shift) | getBits(src, i, 2)<<shift
	case PlanarNibble:
		shift := 4 * (p.numColors - plane - 1)
		code := p.code16(px)&^(0xF<<shift) | uint16(getBits(src, i, 4))<<shift
		if p.PixelBytes == 1 {
			px[0] = byte(code)
		} else {
			px[0] = byte(code >> 8)
			px[1] = byte(code)
		}
	case PlanarByte:
		px[plane] = src[i]
	case PlanarWord:
		px[2*plane] = src[2*i]
		px[2*plane+1] = src[2*i+1]
	}
	return px[:p.PixelBytes]
}

func (p *Packer) code16(px []byte) uint16 {
	if p.PixelBytes == 1 {
		return uint16(px[0])
	}
	return uint16(px[0])<<8 | uint16(px[1])
}

// putBits stores the low bits of v as the i-th field of the given width,
// counting from the most significant end of the row.
func putBits(dst []byte, i, width int, v byte) {
	perByte := 8 / width
	shift := 8 - width*(i%perByte+1)
	mask := byte(1<<width-1) << shift
	k := i / perByte
	dst[k] = dst[k]&^mask | v<<shift&mask
}

func getBits(src []byte, i, width int) byte {
	perByte := 8 / width
	shift := 8 - width*(i%perByte+1)
	return src[i/perByte] >> shift & (1<<width - 1)
}
