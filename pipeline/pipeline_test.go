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

package pipeline

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/google/go-cmp/cmp"

	"seehuhn.de/go/raster"
	"seehuhn.de/go/raster/dither"
	"seehuhn.de/go/raster/duplex"
)

func descriptor(space raster.Space, bits int, order raster.Order) *raster.Descriptor {
	d := &raster.Descriptor{
		ColorSpace:   space,
		BitsPerColor: bits,
		ColorOrder:   order,
		Resolution:   [2]int{300, 300},
	}
	d.Complete()
	return d
}

// TestSelectIsTotal checks that every combination of color space, depth
// and order gives either a complete pipeline or a configuration error.
func TestSelectIsTotal(t *testing.T) {
	mirror := duplex.Orientation{SwapImageX: true}
	count := 0
	for space := raster.Space(0); space <= raster.DeviceF+1; space++ {
		for _, bits := range []int{1, 2, 3, 4, 8, 16} {
			for _, order := range []raster.Order{raster.Chunked, raster.Banded, raster.Planar} {
				d := descriptor(space, bits, order)
				d.Duplex = true
				p, err := Select(d, mirror, nil)
				if err != nil {
					var cerr *raster.ConfigError
					if !errors.As(err, &cerr) {
						t.Errorf("%s/%d/%s: error %v is not a ConfigError", space, bits, order, err)
					}
					if p != nil {
						t.Errorf("%s/%d/%s: pipeline returned with error", space, bits, order)
					}
					continue
				}
				if p.Converter == nil || p.Quantizer == nil || p.Packer == nil ||
					p.Odd == nil || p.Even == nil {
					t.Errorf("%s/%d/%s: incomplete pipeline", space, bits, order)
				}
				count++
			}
		}
	}
	if count == 0 {
		t.Error("no pipeline selected")
	}
}

func TestSelectErrors(t *testing.T) {
	cases := []struct {
		d    *raster.Descriptor
		want error
	}{
		{descriptor(raster.CIELab, 4, raster.Chunked), raster.ErrUnsupportedDepth},
		{descriptor(raster.CIEXYZ, 8, raster.Planar), raster.ErrUnsupportedOrder},
		{descriptor(raster.ICC1, 1, raster.Chunked), raster.ErrUnsupportedDepth},
		{descriptor(raster.SRGB, 8, raster.Chunked), raster.ErrUnsupportedSpace},
		{descriptor(raster.Device1+2, 8, raster.Chunked), raster.ErrUnsupportedSpace},
		{descriptor(raster.RGB, 3, raster.Chunked), raster.ErrUnsupportedDepth},
	}
	for _, tc := range cases {
		_, err := Select(tc.d, duplex.Orientation{}, nil)
		if !errors.Is(err, tc.want) {
			t.Errorf("%s/%d/%s: got %v, want %v", tc.d.ColorSpace, tc.d.BitsPerColor,
				tc.d.ColorOrder, err, tc.want)
		}
	}
}

func TestSourceFormat(t *testing.T) {
	cases := []struct {
		space raster.Space
		bits  int
		want  raster.SampleFormat
	}{
		{raster.K, 1, raster.Mono1},
		{raster.White, 1, raster.Mono1},
		{raster.W, 2, raster.Gray8},
		{raster.Silver, 16, raster.Gray8},
		{raster.RGB, 1, raster.RGB8},
		{raster.KCMYcm, 1, raster.RGB8},
		{raster.CMYK, 8, raster.RGB8},
	}
	for _, tc := range cases {
		p, err := Select(descriptor(tc.space, tc.bits, raster.Chunked), duplex.Orientation{}, nil)
		if err != nil {
			t.Fatal(err)
		}
		if p.SourceFormat != tc.want {
			t.Errorf("%s/%d: source %s, want %s", tc.space, tc.bits, p.SourceFormat, tc.want)
		}
	}
}

// TestShortcutsMatchGeneral compares every special case line transform
// with the general path, for random rows of various widths.
func TestShortcutsMatchGeneral(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for key, sc := range shortcuts {
		for _, mirror := range []bool{false, true} {
			name := fmt.Sprintf("%s-%d-%t", key.space, key.bitsPerColor, mirror)
			t.Run(name, func(t *testing.T) {
				d := descriptor(key.space, key.bitsPerColor, raster.Chunked)
				d.Duplex = true
				o := duplex.Orientation{SwapImageX: mirror}

				fast, err := Select(d, o, nil)
				if err != nil {
					t.Fatal(err)
				}
				if fast.Shortcut != sc.name {
					t.Fatalf("shortcut %q, want %q", fast.Shortcut, sc.name)
				}
				slow, err := general(d, o, nil)
				if err != nil {
					t.Fatal(err)
				}

				for _, width := range []int{1, 5, 8, 13, 16, 31} {
					src := make([]byte, 3*width+8)
					for i := range src {
						src[i] = byte(rng.IntN(256))
					}
					orig := append([]byte(nil), src...)
					for row := range 3 {
						dst1 := make([]byte, 4*width)
						dst2 := make([]byte, 4*width)
						got := fast.Even(dst1, src, row, 0, width)
						want := slow.Even(dst2, src, row, 0, width)
						if d := cmp.Diff(want, got); d != "" {
							t.Fatalf("width %d (-want +got):\n%s", width, d)
						}
						got = fast.Odd(dst1, src, row, 0, width)
						want = slow.Odd(dst2, src, row, 0, width)
						if d := cmp.Diff(want, got); d != "" {
							t.Fatalf("odd, width %d (-want +got):\n%s", width, d)
						}
					}
					if d := cmp.Diff(orig, src); d != "" {
						t.Fatalf("source modified:\n%s", d)
					}
				}
			})
		}
	}
}

func TestNoShortcutWithTransform(t *testing.T) {
	d := descriptor(raster.CMYK, 8, raster.Chunked)
	p, err := Select(d, duplex.Orientation{}, fixedDevice{})
	if err != nil {
		t.Fatal(err)
	}
	if p.Shortcut != "" {
		t.Errorf("shortcut %q used with a color transform", p.Shortcut)
	}
	if p.Quantizer.Kind != dither.Passthrough {
		t.Errorf("quantizer %s", p.Quantizer.Kind)
	}
	row := p.Odd(make([]byte, 8), []byte{1, 2, 3, 4, 5, 6}, 0, 0, 2)
	if d := cmp.Diff([]byte{9, 9, 9, 9, 9, 9, 9, 9}, row); d != "" {
		t.Errorf("(-want +got):\n%s", d)
	}
}

type fixedDevice struct{}

func (fixedDevice) Device(dst, src []byte) {
	for i := range dst {
		dst[i] = 9
	}
}
func (fixedDevice) Close() error { return nil }

func TestPlanarRows(t *testing.T) {
	d := descriptor(raster.CMYK, 1, raster.Planar)
	p, err := Select(d, duplex.Orientation{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	// white, black, white, red
	src := []byte{255, 255, 255, 0, 0, 0, 255, 255, 255, 255, 0, 0}
	want := [][]byte{
		{0b0000_0000}, // C
		{0b0001_0000}, // M
		{0b0001_0000}, // Y
		{0b0100_0000}, // K
	}
	for plane := range 4 {
		got := p.Odd(make([]byte, 1), src, 0, plane, 4)
		if d := cmp.Diff(want[plane], got); d != "" {
			t.Errorf("plane %d (-want +got):\n%s", plane, d)
		}
	}
}

func TestMirroredRow(t *testing.T) {
	d := descriptor(raster.CMYK, 2, raster.Chunked)
	d.Duplex = true
	p, err := Select(d, duplex.Orientation{SwapImageX: true}, nil)
	if err != nil {
		t.Fatal(err)
	}
	src := []byte{0, 0, 0, 255, 255, 255}
	odd := p.Odd(make([]byte, 2), src, 0, 0, 2)
	even := p.Even(make([]byte, 2), src, 0, 0, 2)
	if d := cmp.Diff([]byte{0b00_00_00_11, 0}, odd); d != "" {
		t.Errorf("odd (-want +got):\n%s", d)
	}
	if d := cmp.Diff([]byte{0, 0b00_00_00_11}, even); d != "" {
		t.Errorf("even (-want +got):\n%s", d)
	}

	d.Duplex = false
	p, err = Select(d, duplex.Orientation{SwapImageX: true}, nil)
	if err != nil {
		t.Fatal(err)
	}
	even = p.Even(make([]byte, 2), src, 0, 0, 2)
	if d := cmp.Diff(odd, even); d != "" {
		t.Errorf("simplex even page mirrored:\n%s", d)
	}
}

func BenchmarkGeneralCMYK(b *testing.B) {
	d := descriptor(raster.CMYK, 2, raster.Chunked)
	p, err := Select(d, duplex.Orientation{}, nil)
	if err != nil {
		b.Fatal(err)
	}
	const width = 2480
	src := make([]byte, 3*width)
	dst := make([]byte, p.LineBytes(width))
	for b.Loop() {
		p.Odd(dst, src, 0, 0, width)
	}
}
