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
	"encoding/binary"
	"fmt"
	"math"

	"seehuhn.de/go/icc"
)

// ICC builds transforms with the seehuhn.de/go/icc color management
// module.  Rendered pixels are taken to the D50 profile connection space
// with the source profile, and from there to the printer profile.  It is
// the default engine.
//
// Transforms made by ICC are not safe for concurrent use.
var ICC Engine = iccEngine{}

type iccEngine struct{}

func (iccEngine) NewTransform(cfg *Config) (Transform, error) {
	src := cfg.Source
	if src == nil {
		src = SRGB()
	}
	if src.Space != icc.RGBSpace {
		return nil, fmt.Errorf("%w: source profile %s is %v, not RGB",
			ErrNoEngine, src.Name, src.Space)
	}
	intent := icc.RenderingIntent(cfg.Intent)

	sp, err := icc.Decode(src.Data)
	if err != nil {
		return nil, fmt.Errorf("ICC profile %s: %w", src.Name, err)
	}
	in, err := icc.NewTransform(sp, icc.DeviceToPCS, intent)
	if err != nil {
		return nil, fmt.Errorf("%w: %s to PCS: %v", ErrNoEngine, src.Name, err)
	}
	x := &iccTransform{in: in}

	if cfg.Dest != nil {
		dp, err := icc.Decode(cfg.Dest.Data)
		if err != nil {
			return nil, fmt.Errorf("ICC profile %s: %w", cfg.Dest.Name, err)
		}
		x.out, err = icc.NewTransform(dp, icc.PCSToDevice, intent)
		if err != nil {
			return nil, fmt.Errorf("%w: PCS to %s: %v", ErrNoEngine, cfg.Dest.Name, err)
		}
	}

	if cfg.BytesPerSample == 0 {
		if cfg.Dest != nil && cfg.Dest.Space != icc.CIELabSpace {
			return nil, fmt.Errorf("%w: %s output with %v profile %s",
				ErrNoEngine, cfg.Space, cfg.Dest.Space, cfg.Dest.Name)
		}
		return &iccLab{iccTransform: x, cache: make(map[uint32][3]float64)}, nil
	}

	switch {
	case cfg.Dest == nil:
		return nil, fmt.Errorf("%w: %s samples need a printer profile", ErrNoEngine, cfg.Space)
	case cfg.Dest.Channels != cfg.Channels:
		return nil, fmt.Errorf("profile %s has %d channels, %s needs %d",
			cfg.Dest.Name, cfg.Dest.Channels, cfg.Space, cfg.Channels)
	case cfg.BytesPerSample != 1 && cfg.BytesPerSample != 2:
		return nil, fmt.Errorf("%d bytes per sample not supported", cfg.BytesPerSample)
	}
	return &iccDevice{
		iccTransform: x,
		size:         cfg.Channels * cfg.BytesPerSample,
		wide:         cfg.BytesPerSample == 2,
		cache:        make(map[uint32][]byte),
	}, nil
}

// maxCached bounds the number of pixel values remembered by a transform.
// Rendered pages mostly consist of few distinct colors.
const maxCached = 1 << 16

type iccTransform struct {
	in  *icc.Transform
	out *icc.Transform

	rgb [3]float64
}

func (x *iccTransform) toPCS(src []byte) (X, Y, Z float64) {
	for i := range x.rgb {
		x.rgb[i] = float64(src[i]) / 255
	}
	return x.in.ToXYZ(x.rgb[:])
}

func (x *iccTransform) Close() error {
	return nil
}

func rgbKey(src []byte) uint32 {
	return uint32(src[0])<<16 | uint32(src[1])<<8 | uint32(src[2])
}

type iccDevice struct {
	*iccTransform
	size  int
	wide  bool
	cache map[uint32][]byte
}

func (x *iccDevice) Device(dst, src []byte) {
	key := rgbKey(src)
	if v, ok := x.cache[key]; ok {
		copy(dst, v)
		return
	}

	dev := x.out.FromXYZ(x.toPCS(src))
	v := make([]byte, x.size)
	for i, c := range dev {
		c = min(max(c, 0), 1)
		if x.wide {
			binary.BigEndian.PutUint16(v[2*i:], uint16(math.Round(c*65535)))
		} else {
			v[i] = uint8(math.Round(c * 255))
		}
	}

	if len(x.cache) >= maxCached {
		clear(x.cache)
	}
	x.cache[key] = v
	copy(dst, v)
}

type iccLab struct {
	*iccTransform
	cache map[uint32][3]float64
}

func (x *iccLab) Lab(src []byte) (l, a, b float64) {
	key := rgbKey(src)
	if v, ok := x.cache[key]; ok {
		return v[0], v[1], v[2]
	}

	X, Y, Z := x.toPCS(src)
	if x.out != nil {
		// CIELab device values are encoded as in ICC v4 profiles
		v := x.out.FromXYZ(X, Y, Z)
		l, a, b = 100*v[0], 255*v[1]-128, 255*v[2]-128
	} else {
		l, a, b = XYZToLab(AdaptD50ToD65(X, Y, Z))
	}

	if len(x.cache) >= maxCached {
		clear(x.cache)
	}
	x.cache[key] = [3]float64{l, a, b}
	return l, a, b
}
