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

package page

import (
	"context"
	"fmt"
	"log/slog"

	"seehuhn.de/go/raster"
	"seehuhn.de/go/raster/cupsraster"
	"seehuhn.de/go/raster/duplex"
	"seehuhn.de/go/raster/pipeline"
)

// RowWriter receives the pages of a raster stream.
// It is implemented by [cupsraster.Writer].
type RowWriter interface {
	WriteHeader(h *cupsraster.Header) error
	WritePixels(p []byte) (int, error)
}

// rowsPerCheck is the number of rows written between checks for
// cancellation.
const rowsPerCheck = 64

// Emitter writes pages using a fixed pipeline.
type Emitter struct {
	Pipeline    *pipeline.Pipeline
	Orientation duplex.Orientation

	// Template supplies the header fields which do not depend on the
	// page geometry, for example NumCopies, Collate and MediaType.
	Template cupsraster.Header

	// Logger is used for debug messages.  If nil, slog.Default() is used.
	Logger *slog.Logger
}

func (e *Emitter) logger() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return slog.Default()
}

// Header returns the raster page header for a page with layout l.
func (e *Emitter) Header(l *Layout) *cupsraster.Header {
	d := l.Apply(e.Pipeline.Desc)

	h := e.Template
	h.HorizDPI = uint32(d.Resolution[0])
	h.VertDPI = uint32(d.Resolution[1])
	h.Duplex = d.Duplex
	h.Tumble = d.Tumble
	h.MirrorPrint = false
	h.Orientation = 0

	h.Width = uint32(l.Paper[0])
	h.Length = uint32(l.Paper[1])
	h.CUPSPageSize = [2]float32{float32(l.Paper[0]), float32(l.Paper[1])}
	h.MarginLeft = uint32(l.Margins[0])
	h.MarginBottom = uint32(l.Margins[1])
	bbox := l.ImagingBBox
	h.BoundingBox = cupsraster.BoundingBox{
		Left:   uint32(bbox.LLx),
		Bottom: uint32(bbox.LLy),
		Right:  uint32(bbox.URx),
		Top:    uint32(bbox.URy),
	}
	h.CUPSImagingBBox = cupsraster.ImagingBox{
		Left:   float32(bbox.LLx),
		Bottom: float32(bbox.LLy),
		Right:  float32(bbox.URx),
		Top:    float32(bbox.URy),
	}
	h.CUPSPageSizeName = l.SizeName

	h.CUPSWidth = uint32(d.Width)
	h.CUPSHeight = uint32(d.Height)
	h.CUPSBitsPerColor = uint32(d.BitsPerColor)
	h.CUPSBitsPerPixel = uint32(d.BitsPerPixel)
	h.CUPSBytesPerLine = uint32(d.BytesPerLine())
	h.CUPSColorOrder = uint32(d.ColorOrder)
	h.CUPSColorSpace = uint32(d.ColorSpace)
	h.CUPSNumColors = uint32(d.NumColors)
	return &h
}

// WritePage converts the bitmap bm, rendered at paper size, and writes it
// to w as page pageNo (counting from 1).
//
// Rows are written plane by plane, and within each row band by band.  On
// the back side of duplex jobs, rows are written bottom to top if the
// orientation asks for it.
func (e *Emitter) WritePage(ctx context.Context, w RowWriter, pageNo int, l *Layout, bm *raster.Bitmap) error {
	p := e.Pipeline
	d := p.Desc

	if bm.Format != p.SourceFormat {
		return &raster.RenderError{
			Page: pageNo,
			Err:  fmt.Errorf("bitmap format %s, expected %s", bm.Format, p.SourceFormat),
		}
	}
	x0, y0 := l.BitmapOffset[0], l.BitmapOffset[1]
	if x0 < 0 || y0 < 0 || x0+l.Width > bm.Width || y0+l.Height > bm.Height {
		return &raster.RenderError{
			Page: pageNo,
			Err: fmt.Errorf("%dx%d bitmap does not contain %dx%d pixels at (%d, %d)",
				bm.Width, bm.Height, l.Width, l.Height, x0, y0),
		}
	}

	h := e.Header(l)
	if err := w.WriteHeader(h); err != nil {
		return &raster.IOError{Page: pageNo, Op: "header", Err: err}
	}

	line := p.Odd
	back := d.Duplex && pageNo%2 == 0
	if pageNo%2 == 0 {
		line = p.Even
	}
	bottomUp := back && e.Orientation.SwapImageY

	e.logger().Debug("writing page",
		"page", pageNo,
		"size", l.SizeName,
		"landscape", l.Landscape,
		"width", l.Width,
		"height", l.Height,
		"bottomUp", bottomUp)

	n := p.LineBytes(l.Width)
	if n == 0 || l.Height == 0 {
		return nil
	}

	var dst []byte
	if p.NeedsScratch {
		dst = make([]byte, n)
	}
	bpp := bm.Format.BitsPerPixel()
	skip := x0 * bpp / 8
	shift := uint(x0 * bpp % 8)
	var aligned []byte
	if shift != 0 {
		aligned = make([]byte, (l.Width*bpp+7)/8)
	}

	row := 0
	for plane := range d.Planes() {
		for out := range l.Height {
			if row%rowsPerCheck == 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
			}
			row++

			y := y0 + out
			if bottomUp {
				y = y0 + l.Height - 1 - out
			}
			src := bm.Row(y)[skip:]
			if shift != 0 {
				shiftLeft(aligned, src, shift)
				src = aligned
			}

			for band := range d.Bands() {
				buf := line(dst, src, out, plane+band, l.Width)
				k, err := w.WritePixels(buf)
				if err == nil && k < len(buf) {
					err = raster.ErrShortWrite
				}
				if err != nil {
					return &raster.IOError{Page: pageNo, Op: "row", Err: err}
				}
			}
		}
	}
	return nil
}

// shiftLeft fills dst with the bits of src, shifted left by 0 < shift < 8
// bit positions.
func shiftLeft(dst, src []byte, shift uint) {
	for i := range dst {
		var next byte
		if i+1 < len(src) {
			next = src[i+1]
		}
		dst[i] = src[i]<<shift | next>>(8-shift)
	}
}
