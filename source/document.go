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

// Package source supplies rendered page bitmaps for the raster
// conversion.  Images are fitted onto the paper, and a synthetic test
// page is available for printer calibration.
package source

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/draw"

	"seehuhn.de/go/raster"
)

var errNoPage = errors.New("page does not exist")

// Document is a sequence of pages which can be rendered to bitmaps.
// Pages are numbered starting from 1.
type Document interface {
	// NumPages returns the number of pages.
	NumPages() int

	// PageSize returns the size of page n in PostScript points.
	PageSize(ctx context.Context, n int) ([2]float64, error)

	// Render draws page n onto a width x height pixel bitmap covering the
	// whole paper.  If landscape is set, the page content is rotated by
	// 90 degrees.
	Render(ctx context.Context, n, width, height int, landscape bool,
		format raster.SampleFormat) (*raster.Bitmap, error)
}

// canvas returns a white RGBA image of the given size.
func canvas(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	return img
}

// rotate90 returns img rotated by 90 degrees counter-clockwise.
func rotate90(img *image.RGBA) *image.RGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewRGBA(image.Rect(0, 0, h, w))
	for y := range h {
		src := img.Pix[y*img.Stride : y*img.Stride+4*w]
		for x := range w {
			// (x, y) moves to (y, w-1-x)
			o := (w-1-x)*out.Stride + 4*y
			copy(out.Pix[o:o+4], src[4*x:4*x+4])
		}
	}
	return out
}

func checkPage(doc Document, n int) error {
	if n < 1 || n > doc.NumPages() {
		return &raster.RenderError{Page: n, Err: errNoPage}
	}
	return nil
}
