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

package printer

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"seehuhn.de/go/raster"
	"seehuhn.de/go/raster/cms"
	"seehuhn.de/go/raster/duplex"
	"seehuhn.de/go/raster/page"
)

// Settings are the parameters of one conversion job, derived from a
// printer description and the job options.
type Settings struct {
	Descriptor *raster.Descriptor
	Duplex     duplex.Metadata

	// ColorModel is the name of the selected color model.
	ColorModel string

	// PageSize is the requested paper size, or nil if the job options do
	// not name one of the printer's sizes.
	PageSize *page.PageSize

	PageSizes     []page.PageSize
	CustomMargins [4]float64

	MediaType string
	Copies    int
	Collate   bool

	Intent     cms.Intent
	MarkerType string
	Compressed bool

	// ProfilePath is the printer ICC profile for the job, or the empty
	// string if none is configured.
	ProfilePath string
}

// Configure applies the job options opts to the printer description.
// The printer's default options are applied first.
func Configure(desc *Description, opts Options) (*Settings, error) {
	defaults, err := ParseOptions(desc.DefaultOptions)
	if err != nil {
		return nil, fmt.Errorf("default options: %w", err)
	}
	all := append(slices.Clip(defaults), opts...)

	s := &Settings{
		PageSizes:     desc.PageSizes,
		CustomMargins: desc.CustomMargins,
		MediaType:     all.Get("MediaType"),
		Copies:        1,
		Intent:        cms.ParseLegacyIntent(desc.RenderingIntent),
		MarkerType:    desc.MarkerType,
		Compressed:    desc.Compressed,
	}

	d, err := s.colorModel(desc, all)
	if err != nil {
		return nil, err
	}
	if err := applyOverrides(d, all); err != nil {
		return nil, err
	}

	res, err := resolution(desc, all)
	if err != nil {
		return nil, err
	}
	d.Resolution = [2]int{res.X, res.Y}

	d.Duplex, d.Tumble, err = sides(all)
	if err != nil {
		return nil, err
	}
	s.Duplex = duplex.Metadata{
		BackSide:      desc.Duplex.BackSide,
		Tumble:        d.Tumble,
		FlipDuplex:    desc.Duplex.FlipDuplex,
		FlippedMargin: duplex.ParseFlippedMargin(desc.Duplex.RequiresFlippedMargin),
	}

	d.Complete()
	if err := d.Validate(); err != nil {
		return nil, err
	}
	s.Descriptor = d

	s.PageSize = findPageSize(desc.PageSizes, all)

	if v := all.Get("copies"); v != "" {
		n, ok := ParseNumber(v)
		if !ok || n < 1 {
			return nil, fmt.Errorf("invalid number of copies %q", v)
		}
		s.Copies = n
	}
	if v := all.Get("Collate"); v != "" {
		b, ok := ParseBool(v)
		if !ok {
			return nil, fmt.Errorf("invalid Collate value %q", v)
		}
		s.Collate = b
	}

	if v := all.Get("print-rendering-intent"); v != "" {
		intent, err := cms.ParseIntent(v)
		if err != nil {
			return nil, err
		}
		s.Intent = intent
	}

	q := [3]string{
		s.ColorModel,
		all.Get(qualifierName(desc.ICCQualifier2, "MediaType")),
		all.Get(qualifierName(desc.ICCQualifier3, "Resolution")),
	}
	s.ProfilePath = SelectProfile(desc.ICCProfiles, q, DataDir())

	return s, nil
}

func qualifierName(name, def string) string {
	if name != "" {
		return name
	}
	return def
}

// colorModel looks up the ColorModel option.  Without the option, the
// alphabetically first model is used.
func (s *Settings) colorModel(desc *Description, opts Options) (*raster.Descriptor, error) {
	d := &raster.Descriptor{}
	if len(desc.ColorModels) == 0 {
		return d, nil
	}

	name := opts.Get("ColorModel")
	if name == "" {
		name = slices.Sorted(maps.Keys(desc.ColorModels))[0]
	}
	var cm ColorModel
	found := false
	for key, model := range desc.ColorModels {
		if strings.EqualFold(key, name) {
			name, cm, found = key, model, true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("unknown ColorModel %q", name)
	}
	s.ColorModel = name

	space, err := raster.ParseSpace(cm.ColorSpace)
	if err != nil {
		return nil, fmt.Errorf("ColorModel %s: %w", name, err)
	}
	order := raster.Chunked
	if cm.ColorOrder != "" {
		order, err = raster.ParseOrder(cm.ColorOrder)
		if err != nil {
			return nil, fmt.Errorf("ColorModel %s: %w", name, err)
		}
	}
	d.ColorSpace = space
	d.BitsPerColor = cm.BitsPerColor
	d.ColorOrder = order
	return d, nil
}

// applyOverrides handles the cupsColorSpace, cupsBitsPerColor and
// cupsColorOrder options.
func applyOverrides(d *raster.Descriptor, opts Options) error {
	if v := opts.Get("cupsColorSpace"); v != "" {
		space, err := raster.ParseSpace(v)
		if err != nil {
			return err
		}
		d.ColorSpace = space
	}
	if v := opts.Get("cupsBitsPerColor"); v != "" {
		n, ok := ParseNumber(v)
		if !ok {
			return fmt.Errorf("invalid cupsBitsPerColor %q", v)
		}
		d.BitsPerColor = n
	}
	if v := opts.Get("cupsColorOrder"); v != "" {
		order, err := raster.ParseOrder(v)
		if err != nil {
			return err
		}
		d.ColorOrder = order
	}
	return nil
}

func resolution(desc *Description, opts Options) (Resolution, error) {
	v := opts.Get("Resolution")
	if v == "" {
		if len(desc.Resolutions) == 0 {
			return Resolution{300, 300}, nil
		}
		v = desc.Resolutions[0]
	}
	res, ok := ParseResolution(v)
	if !ok {
		return Resolution{}, fmt.Errorf("invalid Resolution %q", v)
	}
	if len(desc.Resolutions) == 0 {
		return res, nil
	}
	for _, allowed := range desc.Resolutions {
		if r, ok := ParseResolution(allowed); ok && r == res {
			return res, nil
		}
	}
	return Resolution{}, fmt.Errorf("resolution %s not supported by the printer", res)
}

// sides interprets the Duplex and sides options.  Duplex takes
// precedence.
func sides(opts Options) (dup, tumble bool, err error) {
	if v := opts.Get("Duplex"); v != "" {
		switch strings.ToLower(v) {
		case "none", "false", "off":
			return false, false, nil
		case "duplexnotumble":
			return true, false, nil
		case "duplextumble":
			return true, true, nil
		}
		return false, false, fmt.Errorf("invalid Duplex value %q", v)
	}
	if v := opts.Get("sides"); v != "" {
		switch strings.ToLower(v) {
		case "one-sided":
			return false, false, nil
		case "two-sided-long-edge":
			return true, false, nil
		case "two-sided-short-edge":
			return true, true, nil
		}
		return false, false, fmt.Errorf("invalid sides value %q", v)
	}
	return false, false, nil
}

// findPageSize returns the paper size named by the last PageSize or
// media option.  The media option may list a size together with other
// media attributes.
func findPageSize(sizes []page.PageSize, opts Options) *page.PageSize {
	for i := len(opts) - 1; i >= 0; i-- {
		opt := opts[i]
		if !strings.EqualFold(opt.Name, "PageSize") && !strings.EqualFold(opt.Name, "media") {
			continue
		}
		for _, name := range opt.Values {
			for j := range sizes {
				if strings.EqualFold(sizes[j].Name, name) {
					return &sizes[j]
				}
			}
		}
	}
	return nil
}
