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

// Package page computes the geometry of output pages and writes them to
// a raster stream.
package page

import (
	"math"

	"seehuhn.de/go/geom/rect"

	"seehuhn.de/go/raster"
	"seehuhn.de/go/raster/duplex"
)

// sizeTolerance is the largest difference, in PostScript points, between
// a document page and a printer paper size which still counts as a match.
const sizeTolerance = 5

// PageSize is a paper size supported by the printer.  The imageable area
// is given by Left, Bottom, Right and Top, measured in PostScript points
// from the lower left corner of the paper.
type PageSize struct {
	Name   string  `json:"name"`
	Width  float64 `json:"width"`
	Length float64 `json:"length"`
	Left   float64 `json:"left"`
	Bottom float64 `json:"bottom"`
	Right  float64 `json:"right"`
	Top    float64 `json:"top"`
}

// Layout describes the placement of one page on the paper.
type Layout struct {
	// Paper is the paper width and length in PostScript points.
	Paper [2]float64

	// Margins are the left, bottom, right and top margins in PostScript
	// points.
	Margins [4]float64

	// BitmapOffset is the position of the imageable area inside a bitmap
	// rendered at paper size, in device pixels from the top left corner.
	BitmapOffset [2]int

	// Width and Height give the size of the imageable area in device
	// pixels.
	Width, Height int

	// Landscape is set if the page matched a paper size only after
	// rotation.  The page must then be rendered rotated by 90 degrees.
	Landscape bool

	// SizeName is the name of the matched paper size, or the empty
	// string for custom sizes.
	SizeName string

	// ImagingBBox is the imageable area in PostScript points.
	ImagingBBox rect.Rect

	resolution [2]int
}

// ComputeLayout places a document page of size docSize (in PostScript
// points) on the paper.  If the page size matches one of the printer's
// sizes, in portrait or landscape orientation, that size is used.
// Otherwise the document size becomes a custom paper size with the
// margins custom.  Page numbers start at 1; on duplex jobs the even
// pages are back sides.
func ComputeLayout(docSize [2]float64, sizes []PageSize, custom [4]float64,
	d *raster.Descriptor, o duplex.Orientation, pageNo int) *Layout {
	size := [2]float64{
		math.Trunc(math.Abs(docSize[0])),
		math.Trunc(math.Abs(docSize[1])),
	}

	l := &Layout{resolution: d.Resolution}
	if ps, landscape := MatchSize(size, sizes); ps != nil {
		l.Paper = [2]float64{ps.Width, ps.Length}
		l.Margins = [4]float64{ps.Left, ps.Bottom, ps.Width - ps.Right, ps.Length - ps.Top}
		l.Landscape = landscape
		l.SizeName = ps.Name
	} else {
		l.Paper = size
		l.Margins = custom
	}

	if d.Duplex && pageNo%2 == 0 {
		if o.SwapMarginX {
			l.Margins[0], l.Margins[2] = l.Margins[2], l.Margins[0]
		}
		if o.SwapMarginY {
			l.Margins[1], l.Margins[3] = l.Margins[3], l.Margins[1]
		}
	}

	m := l.Margins
	resX := float64(d.Resolution[0])
	resY := float64(d.Resolution[1])
	l.BitmapOffset = [2]int{int(m[0] / 72 * resX), int(m[3] / 72 * resY)}
	l.Width = int((l.Paper[0] - m[0] - m[2]) / 72 * resX)
	l.Height = int((l.Paper[1] - m[1] - m[3]) / 72 * resY)
	l.Width = max(l.Width, 0)
	l.Height = max(l.Height, 0)
	l.ImagingBBox = rect.Rect{
		LLx: m[0],
		LLy: m[1],
		URx: l.Paper[0] - m[2],
		URy: l.Paper[1] - m[3],
	}
	return l
}

// MatchSize finds the printer paper size for a document page.  Portrait
// matches take precedence over landscape matches.  If no size matches,
// nil is returned.
func MatchSize(size [2]float64, sizes []PageSize) (ps *PageSize, landscape bool) {
	near := func(a, b float64) bool {
		return math.Abs(a-b) < sizeTolerance
	}
	for i := range sizes {
		if near(size[0], sizes[i].Width) && near(size[1], sizes[i].Length) {
			return &sizes[i], false
		}
	}
	for i := range sizes {
		if near(size[1], sizes[i].Width) && near(size[0], sizes[i].Length) {
			return &sizes[i], true
		}
	}
	return nil, false
}

// RenderSize returns the size, in device pixels, of a bitmap covering
// the whole paper.
func (l *Layout) RenderSize() (width, height int) {
	width = int(math.Ceil(l.Paper[0] / 72 * float64(l.resolution[0])))
	height = int(math.Ceil(l.Paper[1] / 72 * float64(l.resolution[1])))
	return width, height
}

// Apply returns a copy of d with the page dependent fields set from the
// layout.
func (l *Layout) Apply(d *raster.Descriptor) *raster.Descriptor {
	pd := *d
	pd.Width = l.Width
	pd.Height = l.Height
	pd.PageSize = l.Paper
	pd.Margins = l.Margins
	return &pd
}
