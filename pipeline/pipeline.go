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

// Package pipeline composes color conversion, quantization and packing
// into line transforms, which turn one row of a rendered bitmap into one
// row of raster data.
//
// A [Pipeline] is selected once per job, and is read-only afterwards.
// For a few common formats, hand-written line transforms replace the
// general per-pixel path.  These shortcuts produce the same bytes as the
// general path.
package pipeline

import (
	"errors"
	"fmt"

	"seehuhn.de/go/raster"
	"seehuhn.de/go/raster/cms"
	"seehuhn.de/go/raster/colconv"
	"seehuhn.de/go/raster/dither"
	"seehuhn.de/go/raster/duplex"
	"seehuhn.de/go/raster/pack"
)

// LineFunc converts the first pixels pixels of the bitmap row src into
// one raster row for the given plane (or band).  The row index is used
// as the vertical dither phase.
//
// The result is either a prefix of dst, or a prefix of src if no
// conversion is needed.  The buffer dst must hold a full raster row.
// LineFuncs never modify src.
type LineFunc func(dst, src []byte, row, plane, pixels int) []byte

// Pipeline holds the conversion stages for one raster format.
type Pipeline struct {
	Desc *raster.Descriptor

	// Shortcut is the name of the special case line transform in use,
	// or the empty string for the general path.
	Shortcut string

	Converter *colconv.Converter
	Quantizer *dither.Quantizer
	Packer    *pack.Packer

	// Odd converts rows of odd (front side) pages, Even rows of even
	// pages.  Even is mirrored horizontally when the back side image
	// needs to be swapped.
	Odd, Even LineFunc

	// NeedsScratch is set if the line transforms write to dst.
	NeedsScratch bool

	// SourceFormat is the bitmap sample format the line transforms read.
	SourceFormat raster.SampleFormat
}

// Select chooses the pipeline for the raster format d.  The orientation o
// is used for duplex jobs.  If xf is not nil, colors are converted
// using the color transform.
//
// Errors are of type *raster.ConfigError.
func Select(d *raster.Descriptor, o duplex.Orientation, xf cms.Transform) (*Pipeline, error) {
	p, err := general(d, o, xf)
	if err != nil {
		return nil, err
	}
	if xf == nil && (d.ColorOrder == raster.Chunked || d.NumColors == 1) {
		p.useShortcut(d.Duplex && o.SwapImageX)
	}
	return p, nil
}

// general returns the pipeline without shortcuts.
func general(d *raster.Descriptor, o duplex.Orientation, xf cms.Transform) (*Pipeline, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	space := d.ColorSpace

	if space == raster.CIELab || space == raster.CIEXYZ || space.IsICC() {
		if d.BitsPerColor != 8 && d.BitsPerColor != 16 {
			return nil, configError(d, raster.ErrUnsupportedDepth)
		}
		if d.ColorOrder != raster.Chunked {
			return nil, configError(d, raster.ErrUnsupportedOrder)
		}
	}
	if xf != nil && space.IsGray() {
		return nil, configError(d,
			fmt.Errorf("%w: no color transform for gray output", raster.ErrUnsupportedSpace))
	}

	p := &Pipeline{
		Desc:         d,
		SourceFormat: raster.RGB8,
		NeedsScratch: true,
	}
	if space.IsGray() {
		if d.BitsPerColor == 1 {
			p.SourceFormat = raster.Mono1
		} else {
			p.SourceFormat = raster.Gray8
		}
	}

	conv, err := colconv.New(d, xf)
	if err != nil {
		return nil, configError(d, err)
	}
	p.Converter = conv

	passthrough := xf != nil ||
		d.BitsPerColor == 1 && (d.NumColors == 1 || space == raster.KCMYcm)
	q, err := dither.NewQuantizer(d.BitsPerColor, d.NumColors, passthrough)
	if err != nil {
		return nil, configError(d, err)
	}
	p.Quantizer = q

	pk, err := pack.New(d.BitsPerColor, d.NumColors, d.ColorOrder)
	if err != nil {
		return nil, configError(d, err)
	}
	p.Packer = pk

	p.Odd = p.assemble(false)
	if d.Duplex && o.SwapImageX {
		p.Even = p.assemble(true)
	} else {
		p.Even = p.Odd
	}
	return p, nil
}

// LineBytes returns the length of a raster row (or band) for a page
// pixels pixels wide.
func (p *Pipeline) LineBytes(pixels int) int {
	return (p.Desc.BitsPerPixel*pixels + 7) / 8
}

// assemble returns the general line transform.  Chunked and planar
// (or banded) data differ only in the packer, which either stores whole
// pixels or the channel given by the plane argument.
func (p *Pipeline) assemble(mirror bool) LineFunc {
	conv := p.Converter
	quant := p.Quantizer
	pk := p.Packer
	sample := sampleFunc(p.SourceFormat)

	return func(dst, src []byte, row, plane, pixels int) []byte {
		n := p.LineBytes(pixels)
		dst = dst[:n]
		clear(dst)

		var sbuf [3]byte
		var cbuf, qbuf [2 * raster.MaxColors]byte
		for i := range pixels {
			j := i
			if mirror {
				j = pixels - 1 - i
			}
			px := sample(sbuf[:], src, j)
			px = conv.Convert(cbuf[:], px, i, row)
			px = quant.Quantize(qbuf[:], px, i, row)
			pk.Put(dst, plane, i, px)
		}
		return dst
	}
}

// sampleFunc returns a function which extracts pixel j from a bitmap row.
func sampleFunc(f raster.SampleFormat) func(buf, src []byte, j int) []byte {
	switch f {
	case raster.Gray8:
		return func(buf, src []byte, j int) []byte {
			return src[j : j+1]
		}
	case raster.Mono1:
		return func(buf, src []byte, j int) []byte {
			buf[0] = src[j/8] >> (7 - j%8) & 1
			return buf[:1]
		}
	default:
		return func(buf, src []byte, j int) []byte {
			return src[3*j : 3*j+3]
		}
	}
}

func configError(d *raster.Descriptor, err error) error {
	var cerr *raster.ConfigError
	if errors.As(err, &cerr) {
		return err
	}
	return &raster.ConfigError{
		Space:        d.ColorSpace,
		BitsPerColor: d.BitsPerColor,
		Order:        d.ColorOrder,
		Err:          err,
	}
}
