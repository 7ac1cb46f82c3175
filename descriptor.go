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

// Package raster converts rendered page bitmaps into CUPS raster data.
//
// The root package holds the data model shared by all stages: the
// [Descriptor] of the target raster format, the source [Bitmap], and the
// error types reported by the conversion.  The conversion itself is
// split into the packages dither, colconv, pack and pipeline; page
// drives a pipeline over a bitmap, and job ties everything together.
package raster

import "fmt"

// MaxColors is the largest number of color channels a descriptor may have.
const MaxColors = 6

// Descriptor describes the raster format expected by the printer.
//
// A Descriptor is created once per job and must not be modified while
// pages are being converted.
type Descriptor struct {
	// ColorSpace is the device color space.
	ColorSpace Space

	// BitsPerColor is the sample depth. Must be 1, 2, 4, 8 or 16.
	BitsPerColor int

	// BitsPerPixel is the number of bits per pixel in a chunked row,
	// or BitsPerColor for banded and planar rows.
	BitsPerPixel int

	// ColorOrder is the arrangement of the channels.
	ColorOrder Order

	// NumColors is the number of color channels.
	NumColors int

	// Width and Height give the imageable area of the current page in
	// device pixels.
	Width, Height int

	// Resolution is the horizontal and vertical device resolution in
	// dots per inch.
	Resolution [2]int

	// Duplex is set for two-sided printing.  Tumble is set if the back
	// side is printed upside down relative to the front side.
	Duplex, Tumble bool

	// PageSize is the paper size in PostScript points.
	PageSize [2]float64

	// Margins gives the left, bottom, right and top margins of the current
	// page in PostScript points.
	Margins [4]float64
}

// Complete fills in NumColors and BitsPerPixel, if these are zero, using
// the rules of the CUPS raster format.
func (d *Descriptor) Complete() {
	if d.NumColors == 0 {
		d.NumColors = defaultColors(d.ColorSpace, d.BitsPerColor)
	}
	if d.BitsPerPixel == 0 {
		d.BitsPerPixel = d.expectedBitsPerPixel()
	}
}

// Validate checks that the fields of d are consistent with each other.
// The error, if any, is a *ConfigError.
func (d *Descriptor) Validate() error {
	switch d.BitsPerColor {
	case 1, 2, 4, 8, 16:
	default:
		return d.configError(ErrUnsupportedDepth)
	}
	switch d.ColorOrder {
	case Chunked, Banded, Planar:
	default:
		return d.configError(ErrUnsupportedOrder)
	}
	want := defaultColors(d.ColorSpace, d.BitsPerColor)
	if want == 0 {
		return d.configError(ErrUnsupportedSpace)
	}
	if d.NumColors != want || d.NumColors > MaxColors {
		return d.configError(fmt.Errorf("%w: %d colors, expected %d",
			ErrInconsistent, d.NumColors, want))
	}
	if bpp := d.expectedBitsPerPixel(); d.BitsPerPixel != bpp {
		return d.configError(fmt.Errorf("%w: %d bits per pixel, expected %d",
			ErrInconsistent, d.BitsPerPixel, bpp))
	}
	if d.Resolution[0] <= 0 || d.Resolution[1] <= 0 {
		return d.configError(fmt.Errorf("%w: resolution %dx%d",
			ErrInconsistent, d.Resolution[0], d.Resolution[1]))
	}
	return nil
}

// BytesPerLine returns the length of one raster row for a page Width
// pixels wide.  For banded data this covers all bands of the row.
func (d *Descriptor) BytesPerLine() int {
	n := (d.BitsPerPixel*d.Width + 7) / 8
	if d.ColorOrder == Banded {
		n *= d.NumColors
	}
	return n
}

// Planes returns the number of planes of the raster data.
func (d *Descriptor) Planes() int {
	if d.ColorOrder == Planar {
		return d.NumColors
	}
	return 1
}

// Bands returns the number of bands per row of the raster data.
func (d *Descriptor) Bands() int {
	if d.ColorOrder == Banded {
		return d.NumColors
	}
	return 1
}

func (d *Descriptor) configError(err error) error {
	return &ConfigError{
		Space:        d.ColorSpace,
		BitsPerColor: d.BitsPerColor,
		Order:        d.ColorOrder,
		Err:          err,
	}
}

func (d *Descriptor) expectedBitsPerPixel() int {
	if d.ColorOrder != Chunked {
		return d.BitsPerColor
	}
	n := d.NumColors
	if d.ColorSpace == KCMYcm && d.BitsPerColor == 1 {
		return 8
	}
	if n == 3 && d.BitsPerColor < 8 {
		n = 4
	}
	return n * d.BitsPerColor
}

// defaultColors returns the number of channels of s, or 0 if s cannot
// be produced.
func defaultColors(s Space, bitsPerColor int) int {
	switch s {
	case W, K, White, Gold, Silver:
		return 1
	case RGB, CMY, YMC, CIELab, CIEXYZ:
		return 3
	case RGBA, RGBW, CMYK, YMCK, KCMY, GMCK, GMCS:
		return 4
	case KCMYcm:
		if bitsPerColor == 1 {
			return 6
		}
		return 4
	}
	if s.IsICC() {
		return 3
	}
	return 0
}
