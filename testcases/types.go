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

// Package testcases defines conversion scenarios shared by the tests
// and by the export tool, which writes the resulting raster streams to
// testdata/ for inspection with other CUPS tools.
package testcases

//go:generate go run ./export

import (
	"context"
	"io"
	"log/slog"

	"seehuhn.de/go/raster"
	"seehuhn.de/go/raster/cms"
	"seehuhn.de/go/raster/duplex"
	"seehuhn.de/go/raster/job"
	"seehuhn.de/go/raster/page"
	"seehuhn.de/go/raster/printer"
	"seehuhn.de/go/raster/source"
)

// TestCase defines a single conversion test.
type TestCase struct {
	Name         string // lowercase a-z, 0-9 and _ only
	Space        raster.Space
	BitsPerColor int
	Order        raster.Order
	Resolution   int        // dots per inch (0 means 72)
	Paper        [2]float64 // paper size of the test document, in points
	Pages        int        // number of pages (0 means 1)

	// Sizes are the named page sizes of the printer.  Custom gives the
	// margins used for all other paper sizes.
	Sizes  []page.PageSize
	Custom [4]float64

	// BackSide is the duplex back side mode.  The empty string selects
	// simplex printing.
	BackSide string
	Tumble   bool
}

// Settings returns the job settings for the test case.
func (tc *TestCase) Settings() *printer.Settings {
	res := tc.Resolution
	if res == 0 {
		res = 72
	}
	d := &raster.Descriptor{
		ColorSpace:   tc.Space,
		BitsPerColor: tc.BitsPerColor,
		ColorOrder:   tc.Order,
		Resolution:   [2]int{res, res},
		Duplex:       tc.BackSide != "",
		Tumble:       tc.Tumble,
	}
	d.Complete()
	return &printer.Settings{
		Descriptor: d,
		Duplex: duplex.Metadata{
			BackSide: tc.BackSide,
			Tumble:   tc.Tumble,
		},
		PageSizes:     tc.Sizes,
		CustomMargins: tc.Custom,
		Copies:        1,
		Intent:        cms.Perceptual,
	}
}

// Document returns the test document for the test case.
func (tc *TestCase) Document() source.Document {
	pages := tc.Pages
	if pages == 0 {
		pages = 1
	}
	return &source.TestPage{Pages: pages, Paper: tc.Paper}
}

// Convert writes the raster stream for the test case to w.
func Convert(ctx context.Context, tc *TestCase, w io.Writer, compressed bool) error {
	s := tc.Settings()
	s.Compressed = compressed
	j, err := job.New(job.Config{
		Settings: s,
		Logger:   slog.New(slog.DiscardHandler),
	})
	if err != nil {
		return err
	}
	err = j.Run(ctx, tc.Document(), j.NewWriter(w))
	if cerr := j.Close(); err == nil {
		err = cerr
	}
	return err
}
