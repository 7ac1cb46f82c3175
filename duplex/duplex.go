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

// Package duplex determines how the back sides of duplex pages must be
// mirrored for a given printer.
package duplex

import "strings"

// FlippedMargin is the value of the printer's flipped margin attribute.
type FlippedMargin int

// These are the possible values of a FlippedMargin.
const (
	MarginUnset FlippedMargin = iota
	MarginFalse
	MarginTrue
)

// ParseFlippedMargin converts an attribute value to a FlippedMargin.
// The empty string means the attribute is absent; "true" (in any case)
// gives MarginTrue and every other value gives MarginFalse.
func ParseFlippedMargin(s string) FlippedMargin {
	switch {
	case s == "":
		return MarginUnset
	case strings.EqualFold(s, "true"):
		return MarginTrue
	default:
		return MarginFalse
	}
}

// Metadata describes the duplex behavior of a printer.
type Metadata struct {
	// BackSide is the binding of the back side: "Normal", "ManualTumble",
	// "Rotated" or "Flipped".
	BackSide string

	// Tumble is set for short-edge binding.
	Tumble bool

	// FlipDuplex is the legacy flip duplex flag.  It is only used if
	// BackSide is empty, and then implies "Rotated".
	FlipDuplex bool

	FlippedMargin FlippedMargin
}

// Orientation gives the mirroring of even (back side) pages.
type Orientation struct {
	SwapImageX, SwapImageY   bool
	SwapMarginX, SwapMarginY bool
}

// Resolve computes the back side orientation for the printer metadata m.
func Resolve(m Metadata) Orientation {
	backSide := m.BackSide
	if backSide == "" && m.FlipDuplex {
		backSide = "Rotated"
	}

	var o Orientation
	switch {
	case strings.EqualFold(backSide, "ManualTumble") && m.Tumble,
		strings.EqualFold(backSide, "Rotated") && !m.Tumble:
		o = Orientation{true, true, true, true}
		if m.FlippedMargin == MarginTrue {
			o.SwapMarginY = false
		}
	case strings.EqualFold(backSide, "Flipped"):
		if m.Tumble {
			o.SwapImageX = true
			o.SwapMarginX = true
			o.SwapMarginY = true
		} else {
			o.SwapImageY = true
		}
		if m.FlippedMargin == MarginFalse {
			o.SwapMarginY = !o.SwapMarginY
		}
	}
	return o
}
