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

// Package colconv converts rendered pixels to the color channels of a
// printer.
//
// Source pixels are 8-bit RGB, 8-bit gray, or single bits taken from a
// 1-bit bitmap.  The output has one byte per channel, except for the
// six-color KCMYcm space which produces a one byte ink code, and for
// 16-bit color managed output which uses two bytes per channel.
package colconv

import (
	"fmt"
	"math"

	"seehuhn.de/go/raster"
	"seehuhn.de/go/raster/cms"
)

// Kind identifies a color conversion strategy.
type Kind int

// These are the conversion strategies.
const (
	Identity  Kind = iota // samples are copied unchanged
	Invert                // gray to black: complement of the gray value
	InvertBit             // 1-bit white to black: 1 - bit
	ToCMY
	ToYMC
	ToCMYK
	ToKCMY
	ToYMCK // also used for GMCK and GMCS
	ToKCMYcm
	ToRGBA
	ToRGBW
	Managed      // device samples from a color transform
	ManagedLab8  // CIE L*a*b* from a color transform, 8 bits
	ManagedLab16 // CIE L*a*b* from a color transform, 16 bits
	ManagedXYZ8  // CIE XYZ from a color transform, 8 bits
	ManagedXYZ16 // CIE XYZ from a color transform, 16 bits
)

var kindNames = [...]string{
	Identity:     "identity",
	Invert:       "invert",
	InvertBit:    "invert-bit",
	ToCMY:        "cmy",
	ToYMC:        "ymc",
	ToCMYK:       "cmyk",
	ToKCMY:       "kcmy",
	ToYMCK:       "ymck",
	ToKCMYcm:     "kcmycm",
	ToRGBA:       "rgba",
	ToRGBW:       "rgbw",
	Managed:      "managed",
	ManagedLab8:  "managed-lab8",
	ManagedLab16: "managed-lab16",
	ManagedXYZ8:  "managed-xyz8",
	ManagedXYZ16: "managed-xyz16",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Converter maps one source pixel to device channels.
// Use [New] to create a Converter.
type Converter struct {
	Kind Kind

	// InChannels is the number of source samples per pixel.
	InChannels int

	fn func(dst, src []byte, x, y int) []byte
}

// Convert converts the source pixel src at position (x, y).
// The result is either src itself or a prefix of dst.
// The buffer dst must have room for 2*raster.MaxColors bytes.
func (c *Converter) Convert(dst, src []byte, x, y int) []byte {
	return c.fn(dst, src, x, y)
}

// New returns the converter for the raster format d.
//
// If xf is not nil, pixels are converted by the color transform.  The
// transform must be a [cms.LabTransform] for the CIE L*a*b*, CIE XYZ and
// ICC-based spaces, and a [cms.DeviceTransform] otherwise.
//
// Spaces from the gray family (W, White, K, Gold, Silver) read gray
// samples; at one bit per color the samples are the single bits of a
// 1-bit bitmap.  All other spaces read RGB samples.
func New(d *raster.Descriptor, xf cms.Transform) (*Converter, error) {
	if xf != nil {
		return WithTransform(d, xf)
	}
	return Direct(d)
}

// Direct returns the converter for d which uses the fixed CUPS formulas.
func Direct(d *raster.Descriptor) (*Converter, error) {
	c := &Converter{InChannels: 3}
	space := d.ColorSpace
	switch {
	case space == raster.W || space == raster.White:
		c.Kind, c.InChannels = Identity, 1
	case space == raster.K || space == raster.Gold || space == raster.Silver:
		c.InChannels = 1
		if d.BitsPerColor == 1 {
			c.Kind = InvertBit
		} else {
			c.Kind = Invert
		}
	case space == raster.RGB:
		c.Kind = Identity
	case space == raster.CIELab || space == raster.CIEXYZ || space.IsICC():
		c.Kind = Identity
	case space == raster.CMY:
		c.Kind = ToCMY
	case space == raster.YMC:
		c.Kind = ToYMC
	case space == raster.CMYK:
		c.Kind = ToCMYK
	case space == raster.KCMY:
		c.Kind = ToKCMY
	case space == raster.KCMYcm:
		if d.BitsPerColor == 1 {
			c.Kind = ToKCMYcm
		} else {
			c.Kind = ToKCMY
		}
	case space == raster.YMCK || space == raster.GMCK || space == raster.GMCS:
		c.Kind = ToYMCK
	case space == raster.RGBA:
		c.Kind = ToRGBA
	case space == raster.RGBW:
		c.Kind = ToRGBW
	default:
		return nil, fmt.Errorf("%w: %s", raster.ErrUnsupportedSpace, space)
	}
	c.fn = directFuncs[c.Kind]
	return c, nil
}

var directFuncs = map[Kind]func(dst, src []byte, x, y int) []byte{
	Identity: func(dst, src []byte, x, y int) []byte {
		return src
	},
	Invert: func(dst, src []byte, x, y int) []byte {
		dst[0] = ^src[0]
		return dst[:1]
	},
	InvertBit: func(dst, src []byte, x, y int) []byte {
		dst[0] = 1 - src[0]&1
		return dst[:1]
	},
	ToCMY: func(dst, src []byte, x, y int) []byte {
		RGBToCMY(dst, src)
		return dst[:3]
	},
	ToYMC: func(dst, src []byte, x, y int) []byte {
		RGBToCMY(dst, src)
		dst[0], dst[2] = dst[2], dst[0]
		return dst[:3]
	},
	ToCMYK: func(dst, src []byte, x, y int) []byte {
		RGBToCMYK(dst, src)
		return dst[:4]
	},
	ToKCMY: func(dst, src []byte, x, y int) []byte {
		RGBToKCMY(dst, src)
		return dst[:4]
	},
	ToYMCK: func(dst, src []byte, x, y int) []byte {
		RGBToCMYK(dst, src)
		dst[0], dst[2] = dst[2], dst[0]
		return dst[:4]
	},
	ToKCMYcm: func(dst, src []byte, x, y int) []byte {
		dst[0] = RGBToKCMYcm(src, x, y)
		return dst[:1]
	},
	ToRGBA: func(dst, src []byte, x, y int) []byte {
		copy(dst, src[:3])
		dst[3] = 255
		return dst[:4]
	},
	ToRGBW: func(dst, src []byte, x, y int) []byte {
		RGBToCMYK(dst, src)
		for i := range 4 {
			dst[i] = ^dst[i]
		}
		return dst[:4]
	},
}

// WithTransform returns a converter for d which obtains the output samples
// from the color transform xf.
func WithTransform(d *raster.Descriptor, xf cms.Transform) (*Converter, error) {
	c := &Converter{InChannels: 3}
	space := d.ColorSpace

	if space == raster.CIELab || space == raster.CIEXYZ || space.IsICC() {
		lab, ok := xf.(cms.LabTransform)
		if !ok {
			return nil, fmt.Errorf("%s needs a CIELab transform, got %T", space, xf)
		}
		switch {
		case space == raster.CIEXYZ && d.BitsPerColor == 8:
			c.Kind = ManagedXYZ8
			c.fn = func(dst, src []byte, x, y int) []byte {
				X, Y, Z := cms.LabToXYZ(lab.Lab(src))
				dst[0] = scale8(X * xyzScale8)
				dst[1] = scale8(Y * xyzScale8)
				dst[2] = scale8(Z * xyzScale8)
				return dst[:3]
			}
		case space == raster.CIEXYZ && d.BitsPerColor == 16:
			c.Kind = ManagedXYZ16
			c.fn = func(dst, src []byte, x, y int) []byte {
				X, Y, Z := cms.LabToXYZ(lab.Lab(src))
				put16(dst[0:], X*xyzScale16)
				put16(dst[2:], Y*xyzScale16)
				put16(dst[4:], Z*xyzScale16)
				return dst[:6]
			}
		case d.BitsPerColor == 8:
			c.Kind = ManagedLab8
			c.fn = func(dst, src []byte, x, y int) []byte {
				l, a, b := lab.Lab(src)
				dst[0] = scale8(l * 2.55)
				dst[1] = scale8(a + 128)
				dst[2] = scale8(b + 128)
				return dst[:3]
			}
		case d.BitsPerColor == 16:
			c.Kind = ManagedLab16
			c.fn = func(dst, src []byte, x, y int) []byte {
				l, a, b := lab.Lab(src)
				put16(dst[0:], l*655.35)
				put16(dst[2:], 256*(a+128))
				put16(dst[4:], 256*(b+128))
				return dst[:6]
			}
		default:
			return nil, fmt.Errorf("%w: %s needs 8 or 16 bits per color",
				raster.ErrUnsupportedDepth, space)
		}
		return c, nil
	}

	dev, ok := xf.(cms.DeviceTransform)
	if !ok {
		return nil, fmt.Errorf("%s needs a device transform, got %T", space, xf)
	}
	if d.BitsPerColor != 8 && d.BitsPerColor != 16 {
		return nil, fmt.Errorf("%w: color management needs 8 or 16 bits per color",
			raster.ErrUnsupportedDepth)
	}
	n := d.NumColors * d.BitsPerColor / 8
	c.Kind = Managed
	c.fn = func(dst, src []byte, x, y int) []byte {
		dev.Device(dst[:n], src)
		return dst[:n]
	}
	return c, nil
}

// CIE XYZ samples are scaled so that 1.1 maps to the largest value.
const (
	xyzScale8  = 255 / 1.1
	xyzScale16 = 65535 / 1.1
)

func scale8(v float64) byte {
	return byte(math.Min(math.Max(v+0.5, 0), 255))
}

func put16(dst []byte, v float64) {
	u := uint16(math.Min(math.Max(v+0.5, 0), 65535))
	dst[0] = byte(u >> 8)
	dst[1] = byte(u)
}
