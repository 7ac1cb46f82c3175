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

// Package printer reads printer descriptions and turns job options into
// the settings of a conversion job.
package printer

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"seehuhn.de/go/raster/page"
)

// Description lists the capabilities of a printer.  It is stored as a
// JSON file, and takes the role a PPD file has for CUPS drivers.
type Description struct {
	Name string `json:"name"`

	// DefaultOptions are applied before the job options, in CUPS option
	// syntax.
	DefaultOptions string `json:"defaultOptions"`

	// ColorModels maps the choices of the ColorModel option to raster
	// formats.
	ColorModels map[string]ColorModel `json:"colorModels"`

	// Resolutions lists the allowed choices of the Resolution option.
	// If empty, any resolution is accepted.
	Resolutions []string `json:"resolutions"`

	PageSizes     []page.PageSize `json:"pageSizes"`
	CustomMargins [4]float64      `json:"customMargins"`

	Duplex DuplexInfo `json:"duplex"`

	// RenderingIntent is the legacy rendering intent attribute.
	RenderingIntent string `json:"renderingIntent"`

	ICCProfiles   []ProfileEntry `json:"iccProfiles"`
	ICCQualifier2 string         `json:"iccQualifier2"`
	ICCQualifier3 string         `json:"iccQualifier3"`

	MarkerType string `json:"markerType"`
	Compressed bool   `json:"compressed"`
}

// ColorModel is the raster format used for one ColorModel choice.
type ColorModel struct {
	ColorSpace   string `json:"colorSpace"`
	BitsPerColor int    `json:"bitsPerColor"`
	ColorOrder   string `json:"colorOrder"`
}

// DuplexInfo describes how the printer handles back sides.
type DuplexInfo struct {
	BackSide              string `json:"backSide"`
	FlipDuplex            bool   `json:"flipDuplex"`
	RequiresFlippedMargin string `json:"requiresFlippedMargin"`
}

// ProfileEntry is an ICC profile for the printer.  The qualifier has the
// form "ColorModel.Q2.Q3", where Q2 and Q3 are the values of the options
// named by Description.ICCQualifier2 and ICCQualifier3.
type ProfileEntry struct {
	Qualifier string `json:"qualifier"`
	Path      string `json:"path"`
}

// ReadDescription decodes a printer description.  Unknown fields are
// reported as errors.
func ReadDescription(r io.Reader) (*Description, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	desc := &Description{}
	if err := dec.Decode(desc); err != nil {
		return nil, fmt.Errorf("printer description: %w", err)
	}
	for _, ps := range desc.PageSizes {
		if ps.Width <= 0 || ps.Length <= 0 {
			return nil, fmt.Errorf("printer description: page size %q has no area", ps.Name)
		}
	}
	return desc, nil
}

// LoadDescription reads a printer description from a file.
func LoadDescription(path string) (*Description, error) {
	fd, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fd.Close()
	return ReadDescription(fd)
}
