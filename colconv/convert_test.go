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

package colconv

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"seehuhn.de/go/raster"
	"seehuhn.de/go/raster/cms"
	"seehuhn.de/go/raster/dither"
)

func TestRGBToCMYK(t *testing.T) {
	cases := []struct {
		rgb  []byte
		want []byte
	}{
		{[]byte{255, 255, 255}, []byte{0, 0, 0, 0}},
		{[]byte{0, 0, 0}, []byte{0, 0, 0, 255}},
		{[]byte{128, 128, 128}, []byte{0, 0, 0, 127}},
		{[]byte{255, 0, 0}, []byte{0, 255, 192, 0}},
		{[]byte{0, 0, 255}, []byte{255, 192, 0, 0}},
	}
	for _, tc := range cases {
		got := make([]byte, 4)
		RGBToCMYK(got, tc.rgb)
		if d := cmp.Diff(tc.want, got); d != "" {
			t.Errorf("RGBToCMYK(%v) (-want +got):\n%s", tc.rgb, d)
		}
	}
}

func TestRGBToCMY(t *testing.T) {
	cases := []struct {
		rgb  []byte
		want []byte
	}{
		{[]byte{255, 255, 255}, []byte{0, 0, 0}},
		{[]byte{0, 0, 0}, []byte{255, 255, 255}},
		{[]byte{128, 128, 128}, []byte{127, 127, 127}},
		{[]byte{255, 0, 0}, []byte{0, 255, 192}},
	}
	for _, tc := range cases {
		got := make([]byte, 3)
		RGBToCMY(got, tc.rgb)
		if d := cmp.Diff(tc.want, got); d != "" {
			t.Errorf("RGBToCMY(%v) (-want +got):\n%s", tc.rgb, d)
		}
	}
}

// TestKCMYcmRemap checks the replacement of full strength blue and green
// by light inks at every position of the dither tile.
func TestKCMYcmRemap(t *testing.T) {
	blue := []byte{0, 0, 255}  // C=255, M=192
	green := []byte{0, 255, 0} // C=192, Y=255

	for y := range 16 {
		for x := range 16 {
			d := dither.Threshold16(x, y)

			wantBlue := byte(KCMYcmCyan)
			if d < 192 {
				wantBlue = KCMYcmCyan | KCMYcmLightMagenta
			}
			if got := RGBToKCMYcm(blue, x, y); got != wantBlue {
				t.Errorf("blue at (%d,%d): got %#02x, want %#02x", x, y, got, wantBlue)
			}

			wantGreen := byte(KCMYcmYellow)
			if d < 192 {
				wantGreen = KCMYcmLightCyan | KCMYcmYellow
			}
			if got := RGBToKCMYcm(green, x, y); got != wantGreen {
				t.Errorf("green at (%d,%d): got %#02x, want %#02x", x, y, got, wantGreen)
			}

			if got := RGBToKCMYcm([]byte{0, 0, 0}, x, y); got != KCMYcmBlack {
				t.Errorf("black at (%d,%d): got %#02x", x, y, got)
			}
		}
	}
}

// At (0, 15) the dither threshold is 255.  Full intensity inks must still
// print there, like in the 1-bit quantizer.
func TestKCMYcmFullIntensity(t *testing.T) {
	const x, y = 0, 15
	if d := dither.Threshold16(x, y); d != 255 {
		t.Fatalf("threshold at (%d,%d) is %d", x, y, d)
	}
	cases := []struct {
		rgb  []byte
		want byte
	}{
		{[]byte{0, 0, 0}, KCMYcmBlack},
		{[]byte{0, 0, 255}, KCMYcmCyan},    // C=255, M=192
		{[]byte{255, 0, 0}, KCMYcmMagenta}, // M=255, Y=192
		{[]byte{0, 255, 0}, KCMYcmYellow},  // C=192, Y=255
		{[]byte{1, 1, 1}, 0},               // K=254
		{[]byte{255, 255, 255}, 0},
	}
	for _, tc := range cases {
		if got := RGBToKCMYcm(tc.rgb, x, y); got != tc.want {
			t.Errorf("RGBToKCMYcm(%v) = %#02x, want %#02x", tc.rgb, got, tc.want)
		}
	}
}

func TestDirect(t *testing.T) {
	type testCase struct {
		space raster.Space
		bits  int
		src   []byte
		kind  Kind
		want  []byte
	}
	cases := []testCase{
		{raster.RGB, 8, []byte{1, 2, 3}, Identity, []byte{1, 2, 3}},
		{raster.W, 8, []byte{7}, Identity, []byte{7}},
		{raster.K, 8, []byte{7}, Invert, []byte{248}},
		{raster.Gold, 1, []byte{1}, InvertBit, []byte{0}},
		{raster.Silver, 1, []byte{0}, InvertBit, []byte{1}},
		{raster.CMY, 8, []byte{255, 0, 0}, ToCMY, []byte{0, 255, 192}},
		{raster.YMC, 8, []byte{255, 0, 0}, ToYMC, []byte{192, 255, 0}},
		{raster.CMYK, 8, []byte{0, 0, 0}, ToCMYK, []byte{0, 0, 0, 255}},
		{raster.KCMY, 8, []byte{255, 0, 0}, ToKCMY, []byte{0, 0, 255, 192}},
		{raster.KCMYcm, 8, []byte{255, 0, 0}, ToKCMY, []byte{0, 0, 255, 192}},
		{raster.YMCK, 8, []byte{255, 0, 0}, ToYMCK, []byte{192, 255, 0, 0}},
		{raster.GMCK, 8, []byte{255, 0, 0}, ToYMCK, []byte{192, 255, 0, 0}},
		{raster.GMCS, 8, []byte{255, 0, 0}, ToYMCK, []byte{192, 255, 0, 0}},
		{raster.RGBA, 8, []byte{1, 2, 3}, ToRGBA, []byte{1, 2, 3, 255}},
		{raster.RGBW, 8, []byte{255, 255, 255}, ToRGBW, []byte{255, 255, 255, 255}},
		{raster.CIELab, 8, []byte{1, 2, 3}, Identity, []byte{1, 2, 3}},
		{raster.ICC1 + 4, 16, []byte{1, 2, 3}, Identity, []byte{1, 2, 3}},
	}
	for _, tc := range cases {
		t.Run(tc.space.String(), func(t *testing.T) {
			d := &raster.Descriptor{ColorSpace: tc.space, BitsPerColor: tc.bits}
			d.Complete()
			c, err := Direct(d)
			if err != nil {
				t.Fatal(err)
			}
			if c.Kind != tc.kind {
				t.Errorf("kind %s, want %s", c.Kind, tc.kind)
			}
			buf := make([]byte, 2*raster.MaxColors)
			got := c.Convert(buf, tc.src, 0, 0)
			if d := cmp.Diff(tc.want, got); d != "" {
				t.Errorf("Convert (-want +got):\n%s", d)
			}
		})
	}
}

func TestDirectRejects(t *testing.T) {
	for _, space := range []raster.Space{raster.SGray, raster.SRGB, raster.AdobeRGB, raster.Device1} {
		d := &raster.Descriptor{ColorSpace: space, BitsPerColor: 8, NumColors: 3}
		_, err := New(d, nil)
		if !errors.Is(err, raster.ErrUnsupportedSpace) {
			t.Errorf("%s: got %v", space, err)
		}
	}
}

type fixedLab struct{ l, a, b float64 }

func (f fixedLab) Lab([]byte) (float64, float64, float64) { return f.l, f.a, f.b }
func (fixedLab) Close() error                             { return nil }

type fixedDevice []byte

func (f fixedDevice) Device(dst, src []byte) { copy(dst, f) }
func (fixedDevice) Close() error             { return nil }

func TestWithTransform(t *testing.T) {
	mid := fixedLab{60, -20, 30}
	white := fixedLab{100, 0, 0}

	cases := []struct {
		name  string
		space raster.Space
		bits  int
		xf    cms.Transform
		kind  Kind
		want  []byte
	}{
		{"lab8", raster.CIELab, 8, mid, ManagedLab8, []byte{153, 108, 158}},
		{"lab16", raster.CIELab, 16, mid, ManagedLab16, []byte{0x99, 0x99, 0x6C, 0x00, 0x9E, 0x00}},
		{"icc8", raster.ICC1, 8, mid, ManagedLab8, []byte{153, 108, 158}},
		{"xyz8", raster.CIEXYZ, 8, white, ManagedXYZ8, []byte{220, 232, 252}},
		{"cmyk16", raster.CMYK, 16, fixedDevice{1, 2, 3, 4, 5, 6, 7, 8}, Managed, []byte{1, 2, 3, 4, 5, 6, 7, 8}},
		{"cmy8", raster.CMY, 8, fixedDevice{9, 8, 7}, Managed, []byte{9, 8, 7}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := &raster.Descriptor{ColorSpace: tc.space, BitsPerColor: tc.bits}
			d.Complete()
			c, err := New(d, tc.xf)
			if err != nil {
				t.Fatal(err)
			}
			if c.Kind != tc.kind {
				t.Errorf("kind %s, want %s", c.Kind, tc.kind)
			}
			buf := make([]byte, 2*raster.MaxColors)
			got := c.Convert(buf, []byte{10, 20, 30}, 0, 0)
			if d := cmp.Diff(tc.want, got); d != "" {
				t.Errorf("Convert (-want +got):\n%s", d)
			}
		})
	}
}

func TestWithTransformKind(t *testing.T) {
	d := &raster.Descriptor{ColorSpace: raster.CIELab, BitsPerColor: 8}
	d.Complete()
	if _, err := WithTransform(d, fixedDevice{1, 2, 3}); err == nil {
		t.Error("device transform accepted for CIELab")
	}
	d = &raster.Descriptor{ColorSpace: raster.CMYK, BitsPerColor: 8}
	d.Complete()
	if _, err := WithTransform(d, fixedLab{}); err == nil {
		t.Error("Lab transform accepted for CMYK")
	}
}

func BenchmarkRGBToCMYK(b *testing.B) {
	dst := make([]byte, 4)
	src := []byte{12, 200, 77}
	for b.Loop() {
		RGBToCMYK(dst, src)
	}
}
