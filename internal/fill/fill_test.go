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

package fill

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"golang.org/x/image/vector"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"
)

func rectangle(x0, y0, x1, y1 float64) *path.Data {
	return (&path.Data{}).
		MoveTo(vec.Vec2{X: x0, Y: y0}).
		LineTo(vec.Vec2{X: x1, Y: y0}).
		LineTo(vec.Vec2{X: x1, Y: y1}).
		LineTo(vec.Vec2{X: x0, Y: y1}).
		Close()
}

// circle appends a circle made of four cubic Bézier arcs.
func circle(p *path.Data, cx, cy, r float64, clockwise bool) *path.Data {
	const k = 0.5522847498
	kr := k * r
	s := 1.0
	if clockwise {
		s = -1
	}
	pt := func(x, y float64) vec.Vec2 { return vec.Vec2{X: cx + s*x, Y: cy + y} }
	return p.MoveTo(pt(0, -r)).
		CubeTo(pt(kr, -r), pt(r, -kr), pt(r, 0)).
		CubeTo(pt(r, kr), pt(kr, r), pt(0, r)).
		CubeTo(pt(-kr, r), pt(-r, kr), pt(-r, 0)).
		CubeTo(pt(-r, -kr), pt(-kr, -r), pt(0, -r)).
		Close()
}

// render collects the coverage of p into a w×h grid.
func render(r *Rasterizer, p *path.Data, rule Rule, w, h int) [][]float32 {
	grid := make([][]float32, h)
	for y := range grid {
		grid[y] = make([]float32, w)
	}
	r.Fill(p, rule, func(y, xMin int, coverage []float32) {
		copy(grid[y][xMin:], coverage)
	})
	return grid
}

func total(grid [][]float32) float64 {
	var sum float64
	for _, row := range grid {
		for _, c := range row {
			sum += float64(c)
		}
	}
	return sum
}

// The triangle (0,0), (10,0), (10,1) has the diagonal edge y = x/10, so
// pixel x is covered to (2x+1)/20.
func TestTriangleCoverage(t *testing.T) {
	p := (&path.Data{}).
		MoveTo(vec.Vec2{X: 0, Y: 0}).
		LineTo(vec.Vec2{X: 10, Y: 0}).
		LineTo(vec.Vec2{X: 10, Y: 1}).
		Close()
	r := NewRasterizer(rect.Rect{URx: 10, URy: 1})
	got := render(r, p, NonZero, 10, 1)[0]

	want := make([]float32, 10)
	for x := range want {
		want[x] = float32(2*x+1) / 20
	}
	if d := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-6)); d != "" {
		t.Errorf("coverage (-want +got):\n%s", d)
	}
}

func TestRectangle(t *testing.T) {
	cases := []struct {
		name string
		p    *path.Data
		want [][]float32
	}{
		{
			name: "aligned",
			p:    rectangle(1, 1, 3, 2),
			want: [][]float32{{0, 0, 0, 0}, {0, 1, 1, 0}, {0, 0, 0, 0}},
		},
		{
			name: "half pixel",
			p:    rectangle(0.5, 0.5, 2.5, 1.5),
			want: [][]float32{{0.25, 0.5, 0.25, 0}, {0.25, 0.5, 0.25, 0}, {0, 0, 0, 0}},
		},
		{
			name: "reversed",
			p:    rectangle(3, 2, 1, 1),
			want: [][]float32{{0, 0, 0, 0}, {0, 1, 1, 0}, {0, 0, 0, 0}},
		},
		{
			name: "clipped",
			p:    rectangle(-5, -5, 2, 10),
			want: [][]float32{{1, 1, 0, 0}, {1, 1, 0, 0}, {1, 1, 0, 0}},
		},
		{
			name: "outside",
			p:    rectangle(10, 10, 12, 12),
			want: [][]float32{{0, 0, 0, 0}, {0, 0, 0, 0}, {0, 0, 0, 0}},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := NewRasterizer(rect.Rect{URx: 4, URy: 3})
			got := render(r, tc.p, NonZero, 4, 3)
			if d := cmp.Diff(tc.want, got, cmpopts.EquateApprox(0, 1e-6)); d != "" {
				t.Errorf("coverage (-want +got):\n%s", d)
			}
		})
	}
}

func TestOpenSubpath(t *testing.T) {
	p := (&path.Data{}).
		MoveTo(vec.Vec2{X: 0, Y: 0}).
		LineTo(vec.Vec2{X: 2, Y: 0}).
		LineTo(vec.Vec2{X: 2, Y: 2}).
		LineTo(vec.Vec2{X: 0, Y: 2}).
		MoveTo(vec.Vec2{X: 2, Y: 2}).
		LineTo(vec.Vec2{X: 4, Y: 2}).
		LineTo(vec.Vec2{X: 4, Y: 4}).
		LineTo(vec.Vec2{X: 2, Y: 4})
	r := NewRasterizer(rect.Rect{URx: 4, URy: 4})
	got := render(r, p, NonZero, 4, 4)
	want := [][]float32{{1, 1, 0, 0}, {1, 1, 0, 0}, {0, 0, 1, 1}, {0, 0, 1, 1}}
	if d := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-6)); d != "" {
		t.Errorf("coverage (-want +got):\n%s", d)
	}
}

func TestRules(t *testing.T) {
	// both rectangles run in the same direction, so the inner one has
	// winding number two
	p := rectangle(0, 0, 6, 6)
	inner := rectangle(2, 2, 4, 4)
	p.Cmds = append(p.Cmds, inner.Cmds...)
	p.Coords = append(p.Coords, inner.Coords...)

	cases := []struct {
		rule   Rule
		center float32
		area   float64
	}{
		{NonZero, 1, 36},
		{EvenOdd, 0, 32},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprint(tc.rule), func(t *testing.T) {
			r := NewRasterizer(rect.Rect{URx: 6, URy: 6})
			grid := render(r, p, tc.rule, 6, 6)
			if grid[3][3] != tc.center {
				t.Errorf("center coverage %g, want %g", grid[3][3], tc.center)
			}
			if a := total(grid); math.Abs(a-tc.area) > 1e-4 {
				t.Errorf("area %g, want %g", a, tc.area)
			}
		})
	}
}

func TestCircleArea(t *testing.T) {
	const size = 100
	p := circle(&path.Data{}, 50, 50, 40, false)
	r := NewRasterizer(rect.Rect{URx: size, URy: size})
	area := total(render(r, p, NonZero, size, size))
	want := math.Pi * 40 * 40
	if math.Abs(area-want)/want > 1e-2 {
		t.Errorf("area %g, want %g", area, want)
	}
}

// The buffered and the scanning code paths must agree.
func TestScanningMatchesBuffered(t *testing.T) {
	const size = 64
	p := circle(&path.Data{}, 32, 30, 25, false)
	p = circle(p, 32, 30, 12.3, true)

	clip := rect.Rect{URx: size, URy: size}
	buffered := NewRasterizer(clip)
	scanning := NewRasterizer(clip)
	scanning.smallArea = 0

	for _, rule := range []Rule{NonZero, EvenOdd} {
		a := render(buffered, p, rule, size, size)
		b := render(scanning, p, rule, size, size)
		if d := cmp.Diff(a, b, cmpopts.EquateApprox(0, 1e-5)); d != "" {
			t.Errorf("rule %d (-buffered +scanning):\n%s", rule, d)
		}
	}
}

func TestCTM(t *testing.T) {
	r := NewRasterizer(rect.Rect{URx: 4, URy: 4})
	r.CTM = matrix.Matrix{2, 0, 0, 2, 1, 1}
	got := render(r, rectangle(0, 0, 1, 1), NonZero, 4, 4)
	want := [][]float32{{0, 0, 0, 0}, {0, 1, 1, 0}, {0, 1, 1, 0}, {0, 0, 0, 0}}
	if d := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-6)); d != "" {
		t.Errorf("coverage (-want +got):\n%s", d)
	}

	r.Reset(rect.Rect{URx: 4, URy: 4})
	if r.CTM != matrix.Identity {
		t.Errorf("Reset kept CTM %v", r.CTM)
	}
}

func BenchmarkFillRing(b *testing.B) {
	for _, size := range []int{20, 200, 2000} {
		b.Run(fmt.Sprintf("%dx%d", size, size), func(b *testing.B) {
			s := float64(size)
			p := circle(&path.Data{}, s/2, s/2, 0.45*s, false)
			p = circle(p, s/2, s/2, 0.3*s, true)
			clip := rect.Rect{URx: s, URy: s}
			r := NewRasterizer(clip)
			dst := image.NewAlpha(image.Rect(0, 0, size, size))

			b.ReportAllocs()
			for b.Loop() {
				r.Reset(clip)
				r.FillNonZero(p, func(y, xMin int, coverage []float32) {
					row := dst.Pix[y*dst.Stride+xMin:]
					for i, c := range coverage {
						row[i] = uint8(c * 255)
					}
				})
			}
		})
	}
}

// BenchmarkVectorRing draws the same shape with x/image/vector, for
// comparison.
func BenchmarkVectorRing(b *testing.B) {
	for _, size := range []int{20, 200, 2000} {
		b.Run(fmt.Sprintf("%dx%d", size, size), func(b *testing.B) {
			r := vector.NewRasterizer(size, size)
			dst := image.NewAlpha(image.Rect(0, 0, size, size))
			src := image.NewUniform(color.Alpha{255})
			s := float32(size)

			b.ReportAllocs()
			for b.Loop() {
				r.Reset(size, size)
				vectorCircle(r, s/2, s/2, 0.45*s, false)
				vectorCircle(r, s/2, s/2, 0.3*s, true)
				r.Draw(dst, dst.Bounds(), src, image.Point{})
			}
		})
	}
}

func vectorCircle(r *vector.Rasterizer, cx, cy, radius float32, clockwise bool) {
	const k = float32(0.5522847498)
	kr := k * radius
	s := float32(1)
	if clockwise {
		s = -1
	}
	r.MoveTo(cx, cy-radius)
	r.CubeTo(cx+s*kr, cy-radius, cx+s*radius, cy-kr, cx+s*radius, cy)
	r.CubeTo(cx+s*radius, cy+kr, cx+s*kr, cy+radius, cx, cy+radius)
	r.CubeTo(cx-s*kr, cy+radius, cx-s*radius, cy+kr, cx-s*radius, cy)
	r.CubeTo(cx-s*radius, cy-kr, cx-s*kr, cy-radius, cx, cy-radius)
	r.ClosePath()
}
