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
	"bytes"
	"fmt"
	"os"

	"seehuhn.de/go/icc"
)

// Profile is a decoded ICC profile.
type Profile struct {
	// Name identifies the profile in log messages, usually the file name.
	Name string

	// Data is the encoded profile.
	Data []byte

	// Space is the data color space of the profile.
	Space icc.ColorSpace

	// Channels is the number of components of Space.
	Channels int
}

// DecodeProfile parses the ICC profile in data.
func DecodeProfile(name string, data []byte) (*Profile, error) {
	p, err := icc.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("ICC profile %s: %w", name, err)
	}
	n := p.ColorSpace.NumComponents()
	if n < 1 {
		return nil, fmt.Errorf("ICC profile %s: unsupported color space %v",
			name, p.ColorSpace)
	}
	return &Profile{
		Name:     name,
		Data:     data,
		Space:    p.ColorSpace,
		Channels: n,
	}, nil
}

// LoadProfile reads and decodes an ICC profile file.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return DecodeProfile(path, data)
}

// SRGB returns the sRGB profile.  Rendered bitmaps are assumed to be in
// this color space unless the printer profile is used for rendering.
//
// This is the matrix/TRC version 2 profile, which maps colors the same way
// for every rendering intent.
func SRGB() *Profile {
	p, err := DecodeProfile("sRGB", icc.SRGBv2Profile)
	if err != nil {
		// The embedded profile is known to be valid.
		panic(err)
	}
	return p
}

// Same reports whether p and q describe the same profile.
// Two nil profiles are the same.
func (p *Profile) Same(q *Profile) bool {
	if p == nil || q == nil {
		return p == q
	}
	return bytes.Equal(p.Data, q.Data)
}

// IsSRGB reports whether p is the built-in sRGB profile.
func (p *Profile) IsSRGB() bool {
	return p != nil && (bytes.Equal(p.Data, icc.SRGBv4Profile) ||
		bytes.Equal(p.Data, icc.SRGBv2Profile))
}
