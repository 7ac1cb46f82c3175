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

import (
	"fmt"
	"strconv"
	"strings"
)

// Space is a device color space.
// The numeric values are the cupsColorSpace codes used in CUPS raster
// page headers.
type Space int

// These are the color spaces known to the CUPS raster format.
const (
	W        Space = 0 // luminance
	RGB      Space = 1
	RGBA     Space = 2
	K        Space = 3 // black
	CMY      Space = 4
	YMC      Space = 5
	CMYK     Space = 6
	YMCK     Space = 7
	KCMY     Space = 8
	KCMYcm   Space = 9 // six-ink: black, cyan, magenta, yellow, light cyan, light magenta
	GMCK     Space = 10
	GMCS     Space = 11
	White    Space = 12
	Gold     Space = 13
	Silver   Space = 14
	CIEXYZ   Space = 15
	CIELab   Space = 16
	RGBW     Space = 17
	SGray    Space = 18
	SRGB     Space = 19
	AdobeRGB Space = 20

	ICC1 Space = 32 // first of 15 ICC-based spaces, ICC1 to ICCF
	ICCF Space = 46

	Device1 Space = 48 // first of 15 device-specific spaces, Device1 to DeviceF
	DeviceF Space = 62
)

var spaceNames = map[Space]string{
	W:        "W",
	RGB:      "RGB",
	RGBA:     "RGBA",
	K:        "K",
	CMY:      "CMY",
	YMC:      "YMC",
	CMYK:     "CMYK",
	YMCK:     "YMCK",
	KCMY:     "KCMY",
	KCMYcm:   "KCMYcm",
	GMCK:     "GMCK",
	GMCS:     "GMCS",
	White:    "WHITE",
	Gold:     "GOLD",
	Silver:   "SILVER",
	CIEXYZ:   "CIEXYZ",
	CIELab:   "CIELab",
	RGBW:     "RGBW",
	SGray:    "sGray",
	SRGB:     "sRGB",
	AdobeRGB: "AdobeRGB",
}

func (s Space) String() string {
	if name, ok := spaceNames[s]; ok {
		return name
	}
	switch {
	case s.IsICC():
		return fmt.Sprintf("ICC%X", int(s-ICC1)+1)
	case s >= Device1 && s <= DeviceF:
		return fmt.Sprintf("Device%X", int(s-Device1)+1)
	}
	return fmt.Sprintf("Space(%d)", int(s))
}

// IsICC reports whether s is one of the ICC-based spaces ICC1 to ICCF.
// These spaces carry CIELab encoded samples.
func (s Space) IsICC() bool {
	return s >= ICC1 && s <= ICCF
}

// IsGray reports whether s is rendered from a gray source bitmap.
func (s Space) IsGray() bool {
	switch s {
	case W, White, K, Gold, Silver:
		return true
	}
	return false
}

// ParseSpace converts a color space name or numeric code to a Space.
// Names are matched case-insensitively.
func ParseSpace(s string) (Space, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return Space(n), nil
	}
	for sp, name := range spaceNames {
		if strings.EqualFold(name, s) {
			return sp, nil
		}
	}
	switch strings.ToLower(s) {
	case "gray":
		return W, nil
	case "black":
		return K, nil
	case "lab":
		return CIELab, nil
	case "xyz":
		return CIEXYZ, nil
	}
	var prefix string
	var base Space
	switch {
	case len(s) == 4 && strings.EqualFold(s[:3], "ICC"):
		prefix, base = s[3:], ICC1
	case len(s) == 7 && strings.EqualFold(s[:6], "Device"):
		prefix, base = s[6:], Device1
	default:
		return 0, fmt.Errorf("unknown color space %q", s)
	}
	n, err := strconv.ParseUint(prefix, 16, 8)
	if err != nil || n == 0 {
		return 0, fmt.Errorf("unknown color space %q", s)
	}
	return base + Space(n-1), nil
}

// Order describes how the color channels of a page are arranged.
type Order int

// These are the color orders of the CUPS raster format.
const (
	// Chunked stores all channels of a pixel before the next pixel.
	Chunked Order = 0

	// Banded stores each row once per channel, one band after the other.
	Banded Order = 1

	// Planar stores each channel as a separate page-sized plane.
	Planar Order = 2
)

func (o Order) String() string {
	switch o {
	case Chunked:
		return "chunked"
	case Banded:
		return "banded"
	case Planar:
		return "planar"
	}
	return fmt.Sprintf("Order(%d)", int(o))
}

// ParseOrder converts an order name or numeric code to an Order.
func ParseOrder(s string) (Order, error) {
	switch strings.ToLower(s) {
	case "0", "chunked", "chunky":
		return Chunked, nil
	case "1", "banded":
		return Banded, nil
	case "2", "planar":
		return Planar, nil
	}
	return 0, fmt.Errorf("unknown color order %q", s)
}
