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

package pipeline

import (
	"math/bits"

	"seehuhn.de/go/raster"
	"seehuhn.de/go/raster/colconv"
)

type shortcutKey struct {
	space        raster.Space
	bitsPerPixel int
	bitsPerColor int
}

type shortcut struct {
	name     string
	odd      LineFunc
	mirrored LineFunc

	// noop is set if odd may return src unchanged.
	noop bool
}

var (
	invertBytes = shortcut{"invert", invertLine, invertLineMirrored, false}
	invertBits  = shortcut{"invert-bits", invertBitLine, invertBitLineMirrored, false}
	copyBytes   = shortcut{"noop", noopLine, reverseBytesLine, true}
	copyBits    = shortcut{"noop-bits", noopBitLine, reverseBitsLine, false}
)

var shortcuts = map[shortcutKey]shortcut{
	{raster.K, 8, 8}:      invertBytes,
	{raster.K, 1, 1}:      invertBits,
	{raster.Gold, 8, 8}:   invertBytes,
	{raster.Gold, 1, 1}:   invertBits,
	{raster.Silver, 8, 8}: invertBytes,
	{raster.Silver, 1, 1}: invertBits,

	{raster.CMYK, 32, 8}: {"cmyk", inkLine(colconv.RGBToCMYK, 4, false), inkLine(colconv.RGBToCMYK, 4, true), false},
	{raster.KCMY, 32, 8}: {"kcmy", inkLine(colconv.RGBToKCMY, 4, false), inkLine(colconv.RGBToKCMY, 4, true), false},
	{raster.CMY, 24, 8}:  {"cmy", inkLine(colconv.RGBToCMY, 3, false), inkLine(colconv.RGBToCMY, 3, true), false},

	{raster.RGB, 24, 8}:  {"noop", noopLine24, reverse24Line, true},
	{raster.W, 8, 8}:     copyBytes,
	{raster.W, 1, 1}:     copyBits,
	{raster.White, 8, 8}: copyBytes,
	{raster.White, 1, 1}: copyBits,
}

// useShortcut replaces the line transforms of p by a special case, if one
// exists for the descriptor.
func (p *Pipeline) useShortcut(mirror bool) {
	d := p.Desc
	sc, ok := shortcuts[shortcutKey{d.ColorSpace, d.BitsPerPixel, d.BitsPerColor}]
	if !ok {
		return
	}
	p.Shortcut = sc.name
	p.Odd = sc.odd
	p.NeedsScratch = !sc.noop
	if mirror {
		p.Even = sc.mirrored
		p.NeedsScratch = true
	} else {
		p.Even = sc.odd
	}
}

func invertLine(dst, src []byte, row, plane, pixels int) []byte {
	for j, v := range src[:pixels] {
		dst[j] = ^v
	}
	return dst[:pixels]
}

func invertLineMirrored(dst, src []byte, row, plane, pixels int) []byte {
	for j := range pixels {
		dst[j] = ^src[pixels-1-j]
	}
	return dst[:pixels]
}

func invertBitLine(dst, src []byte, row, plane, pixels int) []byte {
	n := (pixels + 7) / 8
	for j, v := range src[:n] {
		dst[j] = ^v
	}
	dst[n-1] &= padMask(pixels)
	return dst[:n]
}

func invertBitLineMirrored(dst, src []byte, row, plane, pixels int) []byte {
	dst = reverseBitsLine(dst, src, row, plane, pixels)
	for j := range dst {
		dst[j] = ^dst[j]
	}
	dst[len(dst)-1] &= padMask(pixels)
	return dst
}

func noopLine(dst, src []byte, row, plane, pixels int) []byte {
	return src[:pixels]
}

func noopLine24(dst, src []byte, row, plane, pixels int) []byte {
	return src[:3*pixels]
}

// noopBitLine returns src if the row ends on a byte boundary.  Otherwise
// the row is copied, so that the padding bits can be cleared.
func noopBitLine(dst, src []byte, row, plane, pixels int) []byte {
	n := (pixels + 7) / 8
	if pixels%8 == 0 {
		return src[:n]
	}
	copy(dst, src[:n])
	dst[n-1] &= padMask(pixels)
	return dst[:n]
}

func reverseBytesLine(dst, src []byte, row, plane, pixels int) []byte {
	for j := range pixels {
		dst[j] = src[pixels-1-j]
	}
	return dst[:pixels]
}

func reverse24Line(dst, src []byte, row, plane, pixels int) []byte {
	for i := range pixels {
		s := 3 * (pixels - 1 - i)
		copy(dst[3*i:3*i+3], src[s:s+3])
	}
	return dst[:3*pixels]
}

// reverseBitsLine mirrors a row of 1-bit pixels.  The padding bits of
// the last byte are cleared.
func reverseBitsLine(dst, src []byte, row, plane, pixels int) []byte {
	n := (pixels + 7) / 8
	sw := uint(8*n - pixels)
	if sw == 0 {
		for j := range n {
			dst[j] = bits.Reverse8(src[n-1-j])
		}
		return dst[:n]
	}

	pd := uint(src[n-1])
	for j := range n - 1 {
		d := uint(src[n-2-j])
		dst[j] = bits.Reverse8(byte((d<<8 | pd) >> sw))
		pd = d
	}
	dst[n-1] = bits.Reverse8(byte(pd >> sw))
	return dst[:n]
}

func inkLine(conv func(dst, src []byte), size int, mirror bool) LineFunc {
	return func(dst, src []byte, row, plane, pixels int) []byte {
		for i := range pixels {
			j := i
			if mirror {
				j = pixels - 1 - i
			}
			conv(dst[size*i:], src[3*j:])
		}
		return dst[:size*pixels]
	}
}

// padMask returns the mask for the valid bits in the last byte of a
// 1-bit row.
func padMask(pixels int) byte {
	if r := pixels % 8; r != 0 {
		return 0xFF << (8 - r)
	}
	return 0xFF
}
