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

package colconv

import "seehuhn.de/go/raster/dither"

// RGBToCMYK converts an RGB pixel to CMYK, using the black generation
// and hue correction of the CUPS image library.
func RGBToCMYK(dst, src []byte) {
	r, g, b := int(src[0]), int(src[1]), int(src[2])
	c := 255 - r
	m := 255 - g
	y := 255 - b
	k := min(c, m, y)
	if km := max(c, m, y); km > k {
		k = k * k * k / (km * km)
	}
	c -= k
	m -= k
	y -= k

	dst[0] = byte((255 - g/4) * c / 255)
	dst[1] = byte((255 - b/4) * m / 255)
	dst[2] = byte((255 - r/4) * y / 255)
	dst[3] = byte(k)
}

// RGBToCMY converts an RGB pixel to CMY.  The gray component is kept in
// all three channels.
func RGBToCMY(dst, src []byte) {
	r, g, b := int(src[0]), int(src[1]), int(src[2])
	c := 255 - r
	m := 255 - g
	y := 255 - b
	k := min(c, m, y)
	c -= k
	m -= k
	y -= k

	dst[0] = byte((255-g/4)*c/255 + k)
	dst[1] = byte((255-b/4)*m/255 + k)
	dst[2] = byte((255-r/4)*y/255 + k)
}

// RGBToKCMY converts an RGB pixel to CMYK with black as the first channel.
func RGBToKCMY(dst, src []byte) {
	RGBToCMYK(dst, src)
	dst[0], dst[1], dst[2], dst[3] = dst[3], dst[0], dst[1], dst[2]
}

// Bits of the six-color KCMYcm code.
const (
	KCMYcmBlack        = 0x20
	KCMYcmCyan         = 0x10
	KCMYcmMagenta      = 0x08
	KCMYcmYellow       = 0x04
	KCMYcmLightCyan    = 0x02
	KCMYcmLightMagenta = 0x01
)

// RGBToKCMYcm converts an RGB pixel at position (x, y) to a one bit per
// ink code for a six-color printer.
//
// The inks are selected by ordered dithering of the CMYK values.
// Cyan together with magenta is printed as cyan and light magenta, and
// cyan together with yellow as light cyan and yellow, since the full
// strength combinations give wrong hues on these devices.
func RGBToKCMYcm(src []byte, x, y int) byte {
	var cmyk [4]byte
	RGBToCMYK(cmyk[:], src)
	d := dither.Threshold16(x, y)

	// full intensity prints at every position, as in the 1-bit quantizer
	on := func(v byte) bool { return v > d || v == 255 }

	var code byte
	if on(cmyk[3]) {
		code |= KCMYcmBlack
	}
	if on(cmyk[0]) {
		code |= KCMYcmCyan
	}
	if on(cmyk[1]) {
		code |= KCMYcmMagenta
	}
	if on(cmyk[2]) {
		code |= KCMYcmYellow
	}

	switch code {
	case KCMYcmCyan | KCMYcmMagenta:
		code = KCMYcmCyan | KCMYcmLightMagenta
	case KCMYcmCyan | KCMYcmYellow:
		code = KCMYcmLightCyan | KCMYcmYellow
	}
	return code
}
