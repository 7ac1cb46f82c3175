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
	"context"
	"image"
	"image/color"
	"math"

	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"

	"seehuhn.de/go/raster"
	"seehuhn.de/go/raster/internal/fill"
)

// TestPage is a document of synthetic calibration pages.  Each page shows
// a frame along the paper edge, a color wheel and a row of gray patches.
type TestPage struct {
	Pages int
	Paper [2]float64
}

// NumPages implements the [Document] interface.
func (tp *TestPage) NumPages() int {
	return tp.Pages
}

// PageSize implements the [Document] interface.
func (tp *TestPage) PageSize(ctx context.Context, n int) ([2]float64, error) {
	if err := checkPage(tp, n); err != nil {
		return [2]float64{}, err
	}
	if tp.Paper == ([2]float64{}) {
		return DefaultPaper, nil
	}
	return tp.Paper, nil
}

// Render implements the [Document] interface.
func (tp *TestPage) Render(ctx context.Context, n, width, height int, landscape bool,
	format raster.SampleFormat) (*raster.Bitmap, error) {
	if err := checkPage(tp, n); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	w, h := width, height
	if landscape {
		w, h = h, w
	}
	img := canvas(w, h)
	drawTestPage(img)
	if landscape {
		img = rotate90(img)
	}
	return ToBitmap(img, format), nil
}

// numWedges is the number of segments in the color wheel.
const numWedges = 12

// numPatches is the number of gray patches.
const numPatches = 16

func drawTestPage(img *image.RGBA) {
	b := img.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())
	r := fill.NewRasterizer(rect.Rect{URx: w, URy: h})

	// frame: two nested rectangles, the inner one cut out by the even-odd rule
	t := max(math.Floor(min(w, h)/100), 1)
	frame := rectPath(&path.Data{}, 0, 0, w, h)
	frame = rectPath(frame, t, t, w-t, h-t)
	r.FillEvenOdd(frame, painter(img, color.RGBA{A: 255}))

	cx, cy := w/2, h/3
	radius := min(w, h) / 4
	for i := range numWedges {
		a0 := 2 * math.Pi * float64(i) / numWedges
		a1 := 2 * math.Pi * float64(i+1) / numWedges
		r.FillNonZero(wedgePath(cx, cy, radius, a0, a1), painter(img, hue(float64(i)/numWedges)))
	}

	pw := (w - 4*t) / numPatches
	top := h * 3 / 4
	for i := range numPatches {
		x := 2*t + float64(i)*pw
		g := uint8(255 * i / (numPatches - 1))
		r.FillNonZero(rectPath(&path.Data{}, x, top, x+pw, top+pw), painter(img, color.RGBA{g, g, g, 255}))
	}
}

// painter returns a callback which blends c into img, weighted by the
// pixel coverage.
func painter(img *image.RGBA, c color.RGBA) fill.Emit {
	src := [3]float32{float32(c.R), float32(c.G), float32(c.B)}
	return func(y, xMin int, coverage []float32) {
		row := img.Pix[img.PixOffset(xMin, y):]
		for i, a := range coverage {
			px := row[4*i : 4*i+3]
			for k, v := range src {
				px[k] = uint8(float32(px[k])*(1-a) + v*a + 0.5)
			}
		}
	}
}

// rectPath appends an axis-parallel rectangle to p.
func rectPath(p *path.Data, x0, y0, x1, y1 float64) *path.Data {
	return p.MoveTo(vec.Vec2{X: x0, Y: y0}).
		LineTo(vec.Vec2{X: x1, Y: y0}).
		LineTo(vec.Vec2{X: x1, Y: y1}).
		LineTo(vec.Vec2{X: x0, Y: y1}).
		Close()
}

// wedgePath returns a circle segment between the angles a0 and a1.  The
// arc is a single cubic Bézier curve, which is accurate for the small
// angles used on the test page.
func wedgePath(cx, cy, radius, a0, a1 float64) *path.Data {
	at := func(a, r float64) vec.Vec2 {
		return vec.Vec2{X: cx + r*math.Cos(a), Y: cy - r*math.Sin(a)}
	}
	k := 4.0 / 3.0 * math.Tan((a1-a0)/4)
	d := math.Hypot(1, k) * radius
	return (&path.Data{}).
		MoveTo(vec.Vec2{X: cx, Y: cy}).
		LineTo(at(a0, radius)).
		CubeTo(at(a0+math.Atan(k), d), at(a1-math.Atan(k), d), at(a1, radius)).
		Close()
}

// hue returns the fully saturated color with hue h in [0, 1).
func hue(h float64) color.RGBA {
	h6 := h * 6
	k := int(h6)
	f := uint8(255 * (h6 - float64(k)))
	switch k % 6 {
	case 0:
		return color.RGBA{255, f, 0, 255}
	case 1:
		return color.RGBA{255 - f, 255, 0, 255}
	case 2:
		return color.RGBA{0, 255, f, 255}
	case 3:
		return color.RGBA{0, 255 - f, 255, 255}
	case 4:
		return color.RGBA{f, 0, 255, 255}
	default:
		return color.RGBA{255, 0, 255 - f, 255}
	}
}
