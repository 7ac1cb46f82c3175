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

package cms

import (
	"fmt"
	"strings"
)

// Intent is an ICC rendering intent.
// The numeric values are the ones used in ICC profile headers.
type Intent int

// These are the four ICC rendering intents.
const (
	Perceptual           Intent = 0
	RelativeColorimetric Intent = 1
	Saturation           Intent = 2
	AbsoluteColorimetric Intent = 3
)

func (i Intent) String() string {
	switch i {
	case Perceptual:
		return "Perceptual"
	case RelativeColorimetric:
		return "RelativeColorimetric"
	case Saturation:
		return "Saturation"
	case AbsoluteColorimetric:
		return "AbsoluteColorimetric"
	}
	return fmt.Sprintf("Intent(%d)", int(i))
}

// ParseLegacyIntent interprets the rendering intent attribute of a
// printer description.
//
// The mapping reproduces the behaviour of the CUPS pdftoraster filter,
// which tests the names with inverted comparisons: the value
// "PERCEPTUAL" selects RelativeColorimetric, and every other value
// selects Perceptual.  Printer descriptions in the field were written
// against this behaviour, so it is kept until the intended semantics are
// confirmed.  Use [ParseIntent] for the documented names.
func ParseLegacyIntent(s string) Intent {
	if s == "" {
		return Perceptual
	}
	if !strings.EqualFold(s, "PERCEPTUAL") {
		return Perceptual
	}
	return RelativeColorimetric
}

// ParseIntent interprets a rendering intent name.  Both the ICC style
// names ("RELATIVE_COLORIMETRIC") and the IPP keywords
// ("relative-colorimetric") are understood, case-insensitively.
func ParseIntent(s string) (Intent, error) {
	key := strings.ToLower(strings.NewReplacer("-", "", "_", "").Replace(s))
	switch key {
	case "perceptual", "auto":
		return Perceptual, nil
	case "relativecolorimetric", "relative":
		return RelativeColorimetric, nil
	case "saturation":
		return Saturation, nil
	case "absolutecolorimetric", "absolute":
		return AbsoluteColorimetric, nil
	}
	return 0, fmt.Errorf("unknown rendering intent %q", s)
}
