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

package job

import (
	"bytes"
	"context"
	"errors"
	"image"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"seehuhn.de/go/icc"

	"seehuhn.de/go/raster"
	"seehuhn.de/go/raster/cms"
	"seehuhn.de/go/raster/cupsraster"
	"seehuhn.de/go/raster/duplex"
	"seehuhn.de/go/raster/page"
	"seehuhn.de/go/raster/printer"
	"seehuhn.de/go/raster/source"
)

// settings returns job settings for a 72dpi printer, so that points
// and pixels coincide.  There are no named page sizes and no margins.
func settings(space raster.Space, bits int) *printer.Settings {
	d := &raster.Descriptor{
		ColorSpace:   space,
		BitsPerColor: bits,
		ColorOrder:   raster.Chunked,
		Resolution:   [2]int{72, 72},
	}
	d.Complete()
	return &printer.Settings{
		Descriptor: d,
		Copies:     1,
		Intent:     cms.Perceptual,
	}
}

// grayDocument returns a one page document with the given gray levels,
// at 72dpi.
func grayDocument(width, height int, levels ...uint8) *source.ImageDocument {
	img := image.NewGray(image.Rect(0, 0, width, height))
	copy(img.Pix, levels)
	doc := source.NewImageDocument(img)
	doc.DPI = 72
	return doc
}

// convert runs a job and decodes the resulting raster stream.
func convert(t *testing.T, cfg Config, doc source.Document) ([]*cupsraster.Header, [][]byte) {
	t.Helper()
	j, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	buf := &bytes.Buffer{}
	w := j.NewWriter(buf)
	if err := j.Run(context.Background(), doc, w); err != nil {
		t.Fatal(err)
	}
	if err := j.Close(); err != nil {
		t.Fatal(err)
	}

	dec, err := cupsraster.NewDecoder(buf)
	if err != nil {
		t.Fatal(err)
	}
	var headers []*cupsraster.Header
	var pages [][]byte
	for {
		p, err := dec.NextPage()
		if err == io.EOF {
			break
		} else if err != nil {
			t.Fatal(err)
		}
		data := make([]byte, p.Header.Size())
		if err := p.ReadAll(data); err != nil && err != io.EOF {
			t.Fatal(err)
		}
		headers = append(headers, p.Header)
		pages = append(pages, data)
	}
	return headers, pages
}

func TestWhitePageBlackInk(t *testing.T) {
	doc := grayDocument(2, 2, 255, 255, 255, 255)
	headers, pages := convert(t, Config{Settings: settings(raster.K, 1)}, doc)
	if len(pages) != 1 {
		t.Fatalf("%d pages", len(pages))
	}
	h := headers[0]
	if h.CUPSWidth != 2 || h.CUPSHeight != 2 || h.CUPSBytesPerLine != 1 {
		t.Errorf("unexpected header %dx%d, %d bytes/line", h.CUPSWidth, h.CUPSHeight, h.CUPSBytesPerLine)
	}
	if diff := cmp.Diff([]byte{0x00, 0x00}, pages[0]); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestDuplexBackSide(t *testing.T) {
	s := settings(raster.W, 8)
	s.Descriptor.Duplex = true
	s.Duplex = duplex.Metadata{BackSide: "Rotated"}

	img := image.NewGray(image.Rect(0, 0, 2, 2))
	copy(img.Pix, []uint8{10, 20, 30, 40})
	doc := source.NewImageDocument(img, img)
	doc.DPI = 72

	_, pages := convert(t, Config{Settings: s}, doc)
	want := [][]byte{
		{10, 20, 30, 40},
		{40, 30, 20, 10},
	}
	if diff := cmp.Diff(want, pages); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestLabOutput(t *testing.T) {
	doc := grayDocument(1, 1, 255)
	headers, pages := convert(t, Config{Settings: settings(raster.CIELab, 8)}, doc)
	if diff := cmp.Diff([]byte{255, 128, 128}, pages[0]); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
	if headers[0].CUPSColorSpace != uint32(raster.CIELab) {
		t.Errorf("color space %d", headers[0].CUPSColorSpace)
	}
}

func TestHeaderFromSettings(t *testing.T) {
	s := settings(raster.CMYK, 8)
	s.Copies = 4
	s.Collate = true
	s.MediaType = "glossy"
	s.MarkerType = "ink"
	s.Intent = cms.Saturation
	s.Compressed = true
	s.PageSizes = []page.PageSize{{Name: "Tiny", Width: 3, Length: 3, Left: 1, Bottom: 1, Right: 2, Top: 2}}

	doc := grayDocument(3, 3)
	headers, pages := convert(t, Config{Settings: s}, doc)
	h := headers[0]
	if h.NumCopies != 4 || !h.Collate || h.MediaType != "glossy" ||
		h.CUPSMarkerType != "ink" || h.CUPSRenderingIntent != "Saturation" {
		t.Errorf("job options not copied:\n%+v", h)
	}
	if h.CUPSCompression != 1 || h.CUPSPageSizeName != "Tiny" {
		t.Errorf("compression %d, size %q", h.CUPSCompression, h.CUPSPageSizeName)
	}
	// a black pixel in the imageable area
	if diff := cmp.Diff([]byte{0, 0, 0, 255}, pages[0]); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestProfileIgnored(t *testing.T) {
	logs := &bytes.Buffer{}
	logger := slog.New(slog.NewTextHandler(logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	cfg := Config{
		Settings: settings(raster.CMYK, 2),
		Profile:  &cms.Profile{Name: "printer.icc", Space: icc.CMYKSpace, Channels: 4},
		Logger:   logger,
	}
	j, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer j.Close()
	if !strings.Contains(logs.String(), "ICC profile ignored") {
		t.Errorf("no warning logged:\n%s", logs.String())
	}
	if j.Pipeline().Shortcut != "" || j.Pipeline().Converter.Kind.String() != "cmyk" {
		t.Errorf("unexpected pipeline %q %s", j.Pipeline().Shortcut, j.Pipeline().Converter.Kind)
	}
}

func TestDeviceTransform(t *testing.T) {
	profile := &cms.Profile{Name: "printer.icc", Space: icc.CMYKSpace, Channels: 4}

	_, err := New(Config{Settings: settings(raster.CMYK, 8), Profile: profile})
	var cerr *raster.ConfigError
	if !errors.As(err, &cerr) {
		t.Errorf("profile without data: %v", err)
	}

	eng := &fakeEngine{}
	doc := grayDocument(1, 1, 0)
	_, pages := convert(t, Config{Settings: settings(raster.CMYK, 8), Profile: profile, Engine: eng}, doc)
	if diff := cmp.Diff([]byte{1, 2, 3, 4}, pages[0]); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
	if !eng.closed {
		t.Error("transform not closed")
	}
}

// TestICCEngine converts through the default engine to a printer profile
// which describes the same colors as sRGB, so that the device samples
// equal the rendered pixels.
func TestICCEngine(t *testing.T) {
	p, err := icc.Decode(icc.SRGBv2Profile)
	if err != nil {
		t.Fatal(err)
	}
	p.DeviceModel++
	data, err := p.Encode()
	if err != nil {
		t.Fatal(err)
	}
	profile, err := cms.DecodeProfile("printer.icc", data)
	if err != nil {
		t.Fatal(err)
	}

	for _, bits := range []int{8, 16} {
		cfg := Config{Settings: settings(raster.CMY, bits), Profile: profile}
		_, pages := convert(t, cfg, grayDocument(2, 1, 255, 0))
		want := []int{255, 255, 255, 0, 0, 0}
		got := pages[0]
		if len(got) != len(want)*bits/8 {
			t.Fatalf("%d bits: %d bytes", bits, len(got))
		}
		for i, w := range want {
			v := int(got[i*bits/8])
			if d := v - w; d < -2 || d > 2 {
				t.Errorf("%d bits: sample %d = %d, want %d", bits, i, v, w)
			}
		}
	}
}

type fakeEngine struct {
	closed bool
}

func (e *fakeEngine) NewTransform(cfg *cms.Config) (cms.Transform, error) {
	return fakeTransform{e}, nil
}

type fakeTransform struct {
	e *fakeEngine
}

func (t fakeTransform) Device(dst, src []byte) {
	copy(dst, []byte{1, 2, 3, 4})
}

func (t fakeTransform) Close() error {
	t.e.closed = true
	return nil
}

func TestRunErrors(t *testing.T) {
	j, err := New(Config{Settings: settings(raster.K, 1)})
	if err != nil {
		t.Fatal(err)
	}
	defer j.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	doc := grayDocument(2, 2)
	if err := j.Run(ctx, doc, j.NewWriter(io.Discard)); !errors.Is(err, context.Canceled) {
		t.Errorf("canceled: %v", err)
	}

	var rerr *raster.RenderError
	err = j.Run(context.Background(), failingDocument{}, cupsraster.NewWriter(io.Discard, nil))
	if !errors.As(err, &rerr) || rerr.Page != 1 {
		t.Errorf("render failure: %v", err)
	}
}

type failingDocument struct{}

func (failingDocument) NumPages() int { return 1 }

func (failingDocument) PageSize(ctx context.Context, n int) ([2]float64, error) {
	return [2]float64{10, 10}, nil
}

func (failingDocument) Render(ctx context.Context, n, width, height int, landscape bool,
	format raster.SampleFormat) (*raster.Bitmap, error) {
	return nil, errors.New("broken page")
}

func TestConfigErrors(t *testing.T) {
	s := settings(raster.CMYK, 8)
	s.ProfilePath = "/does/not/exist.icc"
	_, err := New(Config{Settings: s})
	var cerr *raster.ConfigError
	if !errors.As(err, &cerr) {
		t.Errorf("missing profile: %v", err)
	}

	s = settings(raster.CIELab, 8)
	_, err = New(Config{Settings: s, Profile: cms.SRGB()})
	if !errors.As(err, &cerr) {
		t.Errorf("RGB profile for CIELab: %v", err)
	}
}
