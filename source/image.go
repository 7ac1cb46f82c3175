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

package source

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	"image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"math"

	_ "golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
	_ "golang.org/x/image/tiff"
	"seehuhn.de/go/geom/matrix"

	"seehuhn.de/go/raster"
)

// DefaultPaper is the paper size used for images without a resolution,
// A4 in PostScript points.
var DefaultPaper = [2]float64{595, 842}

// ImageDocument presents raster images as pages.  Every image becomes one
// page; animated GIF files give one page per frame.
type ImageDocument struct {
	pages []image.Image

	// DPI, if positive, is the image resolution used to compute the page
	// size.  Otherwise all pages have size Paper.
	DPI float64

	// Paper is the page size for images without a resolution.
	// If zero, DefaultPaper is used.
	Paper [2]float64
}

// NewImageDocument returns a document with one page per image.
func NewImageDocument(images ...image.Image) *ImageDocument {
	return &ImageDocument{pages: images}
}

// DecodeImages reads an image file.  PNG, JPEG, GIF, BMP and TIFF files
// are supported.
func DecodeImages(r io.Reader) (*ImageDocument, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &raster.RenderError{Err: err}
	}

	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, &raster.RenderError{Err: err}
	}
	if format == "gif" {
		frames, err := decodeGIF(data)
		if err != nil {
			return nil, &raster.RenderError{Err: err}
		}
		return NewImageDocument(frames...), nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &raster.RenderError{Err: err}
	}
	return NewImageDocument(img), nil
}

// decodeGIF returns the frames of an animated GIF.  Each frame is drawn
// over the previous frames, so that partial frames give complete pages.
func decodeGIF(data []byte) ([]image.Image, error) {
	g, err := gif.DecodeAll(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if len(g.Image) == 0 {
		return nil, fmt.Errorf("GIF file has no frames")
	}
	bounds := image.Rect(0, 0, g.Config.Width, g.Config.Height)
	if bounds.Empty() {
		bounds = g.Image[0].Bounds()
	}

	acc := image.NewRGBA(bounds)
	frames := make([]image.Image, 0, len(g.Image))
	for _, frame := range g.Image {
		draw.Draw(acc, frame.Bounds(), frame, frame.Bounds().Min, draw.Over)
		page := image.NewRGBA(bounds)
		copy(page.Pix, acc.Pix)
		frames = append(frames, page)
	}
	return frames, nil
}

// NumPages implements the [Document] interface.
func (doc *ImageDocument) NumPages() int {
	return len(doc.pages)
}

// PageSize implements the [Document] interface.
func (doc *ImageDocument) PageSize(ctx context.Context, n int) ([2]float64, error) {
	if err := checkPage(doc, n); err != nil {
		return [2]float64{}, err
	}
	if doc.DPI > 0 {
		b := doc.pages[n-1].Bounds()
		return [2]float64{
			float64(b.Dx()) / doc.DPI * 72,
			float64(b.Dy()) / doc.DPI * 72,
		}, nil
	}
	if doc.Paper != ([2]float64{}) {
		return doc.Paper, nil
	}
	return DefaultPaper, nil
}

// Render implements the [Document] interface.  The image is scaled to fit
// the paper, keeping its aspect ratio, and centered.
func (doc *ImageDocument) Render(ctx context.Context, n, width, height int, landscape bool,
	format raster.SampleFormat) (*raster.Bitmap, error) {
	if err := checkPage(doc, n); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if width <= 0 || height <= 0 {
		return nil, &raster.RenderError{Page: n, Err: fmt.Errorf("invalid bitmap size %dx%d", width, height)}
	}

	img := doc.pages[n-1]
	dst := canvas(width, height)
	m := placement(img.Bounds(), width, height, landscape)
	xdraw.CatmullRom.Transform(dst, toAff3(m), img, img.Bounds(), xdraw.Over, nil)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return ToBitmap(dst, format), nil
}

// placement returns the matrix which maps image coordinates to bitmap
// coordinates.  The image is centered on the origin, optionally rotated,
// scaled to fit and then moved to the center of the bitmap.
func placement(src image.Rectangle, width, height int, landscape bool) matrix.Matrix {
	iw, ih := float64(src.Dx()), float64(src.Dy())
	cx := float64(src.Min.X) + iw/2
	cy := float64(src.Min.Y) + ih/2

	m := matrix.Translate(-cx, -cy)
	if landscape {
		m = m.Mul(matrix.RotateDeg(90))
		iw, ih = ih, iw
	}
	scale := math.Min(float64(width)/iw, float64(height)/ih)
	m = m.Mul(matrix.Scale(scale, scale))
	m = m.Mul(matrix.Translate(float64(width)/2, float64(height)/2))
	return m
}

// toAff3 converts a PDF style matrix, where points are row vectors, to
// the affine transform used by golang.org/x/image/draw.
func toAff3(m matrix.Matrix) f64.Aff3 {
	return f64.Aff3{
		m[0], m[2], m[4],
		m[1], m[3], m[5],
	}
}
