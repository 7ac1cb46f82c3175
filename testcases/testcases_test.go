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

package testcases

import (
	"bytes"
	"context"
	"io"
	"maps"
	"regexp"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"

	"seehuhn.de/go/raster"
	"seehuhn.de/go/raster/cupsraster"
)

var validName = regexp.MustCompile(`^[a-z0-9_]+$`)

func TestNames(t *testing.T) {
	seen := make(map[string]bool)
	for _, category := range slices.Sorted(maps.Keys(All)) {
		for _, tc := range All[category] {
			name := category + "_" + tc.Name
			if !validName.MatchString(tc.Name) {
				t.Errorf("invalid test case name %q", name)
			}
			if seen[name] {
				t.Errorf("duplicate test case %q", name)
			}
			seen[name] = true
		}
	}
}

type decodedPage struct {
	header *cupsraster.Header
	data   []byte
}

func decode(t *testing.T, r io.Reader) []decodedPage {
	t.Helper()
	dec, err := cupsraster.NewDecoder(r)
	if err != nil {
		t.Fatal(err)
	}
	var pages []decodedPage
	for {
		p, err := dec.NextPage()
		if err == io.EOF {
			return pages
		} else if err != nil {
			t.Fatal(err)
		}
		data := make([]byte, p.Header.Size())
		if err := p.ReadAll(data); err != nil {
			t.Fatal(err)
		}
		pages = append(pages, decodedPage{p.Header, data})
	}
}

// TestConvert converts every test case, with and without compression,
// and checks that both streams hold the same pages.
func TestConvert(t *testing.T) {
	for _, category := range slices.Sorted(maps.Keys(All)) {
		for _, tc := range All[category] {
			t.Run(category+"_"+tc.Name, func(t *testing.T) {
				plain := &bytes.Buffer{}
				if err := Convert(context.Background(), &tc, plain, false); err != nil {
					t.Fatal(err)
				}
				packed := &bytes.Buffer{}
				if err := Convert(context.Background(), &tc, packed, true); err != nil {
					t.Fatal(err)
				}

				want := decode(t, plain)
				got := decode(t, packed)
				numPages := max(tc.Pages, 1)
				if len(want) != numPages || len(got) != numPages {
					t.Fatalf("got %d and %d pages, want %d", len(want), len(got), numPages)
				}

				d := tc.Settings().Descriptor
				for i := range want {
					h := want[i].header
					if h.CUPSColorSpace != uint32(d.ColorSpace) ||
						h.CUPSBitsPerColor != uint32(d.BitsPerColor) ||
						h.CUPSColorOrder != uint32(d.ColorOrder) {
						t.Errorf("page %d: format %d/%d/%d", i+1,
							h.CUPSColorSpace, h.CUPSBitsPerColor, h.CUPSColorOrder)
					}
					wantBPL := (int(h.CUPSWidth)*int(h.CUPSBitsPerPixel) + 7) / 8 * d.Bands()
					if int(h.CUPSBytesPerLine) != wantBPL {
						t.Errorf("page %d: %d bytes per line, want %d", i+1, h.CUPSBytesPerLine, wantBPL)
					}

					got[i].header.CUPSCompression = 0
					if diff := cmp.Diff(h, got[i].header); diff != "" {
						t.Errorf("page %d header (-plain +compressed):\n%s", i+1, diff)
					}
					if !bytes.Equal(want[i].data, got[i].data) {
						t.Errorf("page %d: compressed data differs", i+1)
					}
				}
			})
		}
	}
}

func TestLayout(t *testing.T) {
	cases := []struct {
		name          string
		sizeName      string
		width, height uint32
	}{
		{"card", "Card", 126, 90},
		{"card_landscape", "Card", 126, 90},
		{"custom", "", 80, 90},
		{"unaligned", "", 59, 30},
		{"a4_150dpi", "A4", 1164, 1604},
	}
	for _, c := range cases {
		idx := slices.IndexFunc(All["layout"], func(tc TestCase) bool { return tc.Name == c.name })
		if idx < 0 {
			t.Fatalf("missing test case %q", c.name)
		}
		tc := All["layout"][idx]

		buf := &bytes.Buffer{}
		if err := Convert(context.Background(), &tc, buf, true); err != nil {
			t.Fatal(err)
		}
		h := decode(t, buf)[0].header
		if h.CUPSPageSizeName != c.sizeName || h.CUPSWidth != c.width || h.CUPSHeight != c.height {
			t.Errorf("%s: got %q %dx%d, want %q %dx%d", c.name,
				h.CUPSPageSizeName, h.CUPSWidth, h.CUPSHeight,
				c.sizeName, c.width, c.height)
		}
	}
}

// TestNormalBackSide checks that back sides in "Normal" mode are
// printed like front sides.
func TestNormalBackSide(t *testing.T) {
	tc := duplexCases[slices.IndexFunc(duplexCases, func(tc TestCase) bool {
		return tc.BackSide == "Normal"
	})]
	buf := &bytes.Buffer{}
	if err := Convert(context.Background(), &tc, buf, false); err != nil {
		t.Fatal(err)
	}
	pages := decode(t, buf)
	for i := 1; i < len(pages); i++ {
		if !bytes.Equal(pages[0].data, pages[i].data) {
			t.Errorf("page %d differs from page 1", i+1)
		}
	}
}

// TestRotatedBackSide checks that the back side of a rotated duplex
// job is the front side turned by 180 degrees.
func TestRotatedBackSide(t *testing.T) {
	tc := TestCase{
		Name:         "rotated8",
		Space:        raster.W,
		BitsPerColor: 8,
		Paper:        small,
		Pages:        2,
		BackSide:     "Rotated",
	}
	buf := &bytes.Buffer{}
	if err := Convert(context.Background(), &tc, buf, false); err != nil {
		t.Fatal(err)
	}
	pages := decode(t, buf)
	front, back := pages[0].data, pages[1].data
	for i := range front {
		if front[i] != back[len(back)-1-i] {
			t.Fatalf("byte %d: front %d, back %d", i, front[i], back[len(back)-1-i])
		}
	}
}

func BenchmarkConvert(b *testing.B) {
	tc := &ink[3] // cmyk8
	for b.Loop() {
		if err := Convert(context.Background(), tc, io.Discard, true); err != nil {
			b.Fatal(err)
		}
	}
}
