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

// Package cms decides when rendered pages need an ICC color transform,
// and constructs these transforms.
//
// The color math is delegated to an [Engine].  The default engine, [ICC],
// evaluates the profiles with seehuhn.de/go/icc.
package cms

import (
	"errors"
	"fmt"

	"seehuhn.de/go/icc"

	"seehuhn.de/go/raster"
)

// ErrNoEngine is returned by engines which cannot build the requested
// transform, for example because a profile lacks the required tags.
var ErrNoEngine = errors.New("color management module cannot build this transform")

// Config describes a color transform from rendered pixels to device
// samples.
type Config struct {
	// Source is the profile of the rendered pixels.
	Source *Profile

	// Dest is the printer profile.  Nil selects the D65 CIE L*a*b* space.
	Dest *Profile

	// Space is the raster color space the transform output is used for.
	Space raster.Space

	// Channels is the number of output samples per pixel.
	Channels int

	// BytesPerSample is 1 or 2 for device samples.  It is 0 if the
	// transform produces CIE L*a*b* coordinates.
	BytesPerSample int

	// Intent is the rendering intent.
	Intent Intent
}

// A Transform is a color transform built from a Config.
//
// Every transform implements either [DeviceTransform] or [LabTransform],
// depending on Config.BytesPerSample.
type Transform interface {
	// Close releases resources held by the transform.
	Close() error
}

// DeviceTransform converts one 8-bit RGB pixel to device samples.
type DeviceTransform interface {
	Transform

	// Device writes Config.Channels samples to dst.
	// Two byte samples are stored in big-endian order.
	Device(dst, src []byte)
}

// LabTransform converts one 8-bit RGB pixel to CIE L*a*b*.
type LabTransform interface {
	Transform

	// Lab returns the coordinates of src, relative to the D65 white point.
	Lab(src []byte) (l, a, b float64)
}

// Engine constructs color transforms.
type Engine interface {
	NewTransform(cfg *Config) (Transform, error)
}

// Plan decides whether pages for the raster format d need a color
// transform.  The printer profile device may be nil.
//
// The result is nil if no transform is needed.  This is the case when
// no profile is given, when the bit depth is not 8 or 16, and for RGB
// and gray spaces where the printer profile is used as the rendering
// profile.  A printer profile which equals the source profile needs no
// transform either; the direct conversion is used.  CIE L*a*b*, CIE XYZ
// and the ICC-based spaces always need a transform.
func Plan(d *raster.Descriptor, device *Profile, intent Intent) (*Config, error) {
	if d.BitsPerColor != 8 && d.BitsPerColor != 16 {
		return nil, nil
	}
	src := SRGB()

	switch {
	case d.ColorSpace == raster.CIELab || d.ColorSpace == raster.CIEXYZ || d.ColorSpace.IsICC():
		if device != nil && device.Space != icc.CIELabSpace {
			return nil, fmt.Errorf("%s needs a CIELab profile, %s has %v",
				d.ColorSpace, device.Name, device.Space)
		}
		return &Config{
			Source:   src,
			Dest:     device,
			Space:    d.ColorSpace,
			Channels: 3,
			Intent:   intent,
		}, nil

	case d.ColorSpace == raster.RGB || d.ColorSpace.IsGray():
		return nil, nil
	}

	switch d.ColorSpace {
	case raster.CMYK, raster.KCMY, raster.KCMYcm, raster.YMCK, raster.RGBA,
		raster.RGBW, raster.GMCK, raster.GMCS, raster.CMY, raster.YMC:
	default:
		return nil, fmt.Errorf("%w: %s", raster.ErrUnsupportedSpace, d.ColorSpace)
	}
	if device == nil {
		return nil, nil
	}
	if device.Channels != d.NumColors {
		return nil, fmt.Errorf("profile %s has %d channels, %s needs %d",
			device.Name, device.Channels, d.ColorSpace, d.NumColors)
	}
	if device.Same(src) {
		return nil, nil
	}
	return &Config{
		Source:         src,
		Dest:           device,
		Space:          d.ColorSpace,
		Channels:       d.NumColors,
		BytesPerSample: d.BitsPerColor / 8,
		Intent:         intent,
	}, nil
}

// Open constructs the transform for cfg.  If engine is nil, [ICC] is
// used.
func Open(engine Engine, cfg *Config) (Transform, error) {
	if engine == nil {
		engine = ICC
	}
	t, err := engine.NewTransform(cfg)
	if err != nil {
		return nil, err
	}

	var ok bool
	if cfg.BytesPerSample == 0 {
		_, ok = t.(LabTransform)
	} else {
		_, ok = t.(DeviceTransform)
	}
	if !ok {
		t.Close()
		return nil, fmt.Errorf("engine returned %T, which cannot produce %s samples",
			t, cfg.Space)
	}
	return t, nil
}
