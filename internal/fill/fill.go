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

// Package fill computes anti-aliased pixel coverage for filled vector
// paths.  The synthetic test pages are drawn with it.
package fill

import (
	"cmp"
	"math"
	"slices"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"
)

// Rule selects how the winding number of a point decides whether the point
// is inside the path.
type Rule int

// These are the supported fill rules.
const (
	NonZero Rule = iota
	EvenOdd
)

// Emit receives the coverage of one pixel row.  Coverage values are in
// [0, 1] and coverage[i] belongs to pixel xMin+i.  The slice is reused
// after Emit returns.
type Emit func(y, xMin int, coverage []float32)

// segment is a path edge in device coordinates.
type segment struct {
	x0, y0 float64
	x1, y1 float64
	dxdy   float64
}

func (s *segment) yRange() (float64, float64) {
	return min(s.y0, s.y1), max(s.y0, s.y1)
}

func (s *segment) xAt(y float64) float64 {
	return s.x0 + s.dxdy*(y-s.y0)
}

// Rasterizer turns paths into per-pixel coverage.  Buffers are kept
// between calls, so one Rasterizer should be reused for all paths on a
// page.
//
// A Rasterizer is not safe for concurrent use.
type Rasterizer struct {
	// CTM maps path coordinates to device pixels.
	CTM matrix.Matrix

	// Clip limits the output to this device rectangle.  The corners must
	// have integer coordinates.
	Clip rect.Rect

	// Flatness is the maximal distance, in pixels, between a curve and
	// its polygonal approximation.
	Flatness float64

	// Paths whose bounding box has at most this many pixels are
	// accumulated in a 2D buffer.  Larger paths use an active edge list.
	smallArea int

	segs    []segment
	active  []int
	cover   []float32
	area    []float32
	touched []bool

	bboxEmpty    bool
	bxMin, bxMax float64
	byMin, byMax float64
}

const (
	defaultFlatness  = 0.25
	defaultSmallArea = 65536

	// edges with a smaller vertical extent are treated as horizontal
	flatEdge = 1e-10
)

// NewRasterizer returns a Rasterizer for the given clip rectangle, with
// the identity CTM.
func NewRasterizer(clip rect.Rect) *Rasterizer {
	r := &Rasterizer{}
	r.Reset(clip)
	return r
}

// Reset restores the default CTM and flatness and sets a new clip
// rectangle.  Buffer capacity is retained.
func (r *Rasterizer) Reset(clip rect.Rect) {
	r.CTM = matrix.Identity
	r.Clip = clip
	r.Flatness = defaultFlatness
	r.smallArea = defaultSmallArea
	r.segs = r.segs[:0]
	r.active = r.active[:0]
}

// FillNonZero computes the coverage of p under the nonzero winding rule
// and delivers it row by row, top to bottom.  Rows without coverage are
// skipped and each row is trimmed to its non-zero span.
func (r *Rasterizer) FillNonZero(p *path.Data, emit Emit) {
	r.Fill(p, NonZero, emit)
}

// FillEvenOdd is like FillNonZero, but uses the even-odd rule.
func (r *Rasterizer) FillEvenOdd(p *path.Data, emit Emit) {
	r.Fill(p, EvenOdd, emit)
}

// Fill computes the coverage of p under the given rule.
func (r *Rasterizer) Fill(p *path.Data, rule Rule, emit Emit) {
	xMin, xMax, yMin, yMax, ok := r.collect(p)
	if !ok {
		return
	}
	if (xMax-xMin)*(yMax-yMin) <= r.smallArea {
		r.fillBuffered(xMin, xMax, yMin, yMax, rule, emit)
	} else {
		r.fillScanning(xMin, xMax, yMin, yMax, rule, emit)
	}
}

// collect flattens p into device space segments and returns the pixel
// bounding box, clipped.
func (r *Rasterizer) collect(p *path.Data) (xMin, xMax, yMin, yMax int, ok bool) {
	r.segs = r.segs[:0]
	r.bboxEmpty = true

	var cur, start vec.Vec2
	k := 0
	for _, cmd := range p.Cmds {
		switch cmd {
		case path.CmdMoveTo:
			if cur != start {
				r.addSegment(cur, start)
			}
			cur = p.Coords[k]
			start = cur
			k++
		case path.CmdLineTo:
			r.addSegment(cur, p.Coords[k])
			cur = p.Coords[k]
			k++
		case path.CmdQuadTo:
			r.flattenQuad(cur, p.Coords[k], p.Coords[k+1])
			cur = p.Coords[k+1]
			k += 2
		case path.CmdCubeTo:
			r.flattenCube(cur, p.Coords[k], p.Coords[k+1], p.Coords[k+2])
			cur = p.Coords[k+2]
			k += 3
		case path.CmdClose:
			if cur != start {
				r.addSegment(cur, start)
			}
			cur = start
		}
	}
	// open subpaths are filled as if closed
	if cur != start {
		r.addSegment(cur, start)
	}
	if len(r.segs) == 0 {
		return 0, 0, 0, 0, false
	}

	xMin = max(int(math.Floor(r.bxMin)), int(r.Clip.LLx))
	xMax = min(int(math.Floor(r.bxMax))+1, int(r.Clip.URx))
	yMin = max(int(math.Floor(r.byMin)), int(r.Clip.LLy))
	yMax = min(int(math.Floor(r.byMax))+1, int(r.Clip.URy))
	if xMin >= xMax || yMin >= yMax {
		return 0, 0, 0, 0, false
	}
	return xMin, xMax, yMin, yMax, true
}

func (r *Rasterizer) toDevice(p vec.Vec2) (float64, float64) {
	m := r.CTM
	return m[0]*p.X + m[2]*p.Y + m[4], m[1]*p.X + m[3]*p.Y + m[5]
}

func (r *Rasterizer) addSegment(a, b vec.Vec2) {
	x0, y0 := r.toDevice(a)
	x1, y1 := r.toDevice(b)
	dy := y1 - y0
	if math.Abs(dy) < flatEdge {
		return
	}
	r.segs = append(r.segs, segment{x0: x0, y0: y0, x1: x1, y1: y1, dxdy: (x1 - x0) / dy})

	if r.bboxEmpty {
		r.bxMin, r.bxMax = min(x0, x1), max(x0, x1)
		r.byMin, r.byMax = min(y0, y1), max(y0, y1)
		r.bboxEmpty = false
		return
	}
	r.bxMin = min(r.bxMin, x0, x1)
	r.bxMax = max(r.bxMax, x0, x1)
	r.byMin = min(r.byMin, y0, y1)
	r.byMax = max(r.byMax, y0, y1)
}

// deviceLength measures a path space vector in device pixels, ignoring
// the translation part of the CTM.
func (r *Rasterizer) deviceLength(v vec.Vec2) float64 {
	m := r.CTM
	return math.Hypot(m[0]*v.X+m[2]*v.Y, m[1]*v.X+m[3]*v.Y)
}

func (r *Rasterizer) flattenQuad(p0, p1, p2 vec.Vec2) {
	dev := r.deviceLength(p0.Sub(p1.Mul(2)).Add(p2).Mul(0.25))
	n := 1
	if dev > r.Flatness {
		n = int(math.Ceil(math.Sqrt(dev / r.Flatness)))
	}
	prev := p0
	for i := 1; i <= n; i++ {
		t := float64(i) / float64(n)
		s := 1 - t
		q := p0.Mul(s * s).Add(p1.Mul(2 * s * t)).Add(p2.Mul(t * t))
		r.addSegment(prev, q)
		prev = q
	}
}

// flattenCube uses Wang's bound to choose the number of line segments.
func (r *Rasterizer) flattenCube(p0, p1, p2, p3 vec.Vec2) {
	dev := max(
		r.deviceLength(p0.Sub(p1.Mul(2)).Add(p2)),
		r.deviceLength(p1.Sub(p2.Mul(2)).Add(p3)))
	n := 1
	if nf := math.Sqrt(3 * dev / (4 * r.Flatness)); nf > 1 {
		n = int(math.Ceil(nf))
	}
	prev := p0
	for i := 1; i <= n; i++ {
		t := float64(i) / float64(n)
		s := 1 - t
		q := p0.Mul(s * s * s).
			Add(p1.Mul(3 * s * s * t)).
			Add(p2.Mul(3 * s * t * t)).
			Add(p3.Mul(t * t * t))
		r.addSegment(prev, q)
		prev = q
	}
}

// The accumulation keeps two numbers per pixel.  cover is the signed
// height of all segment pieces inside the pixel column, area is the part
// of that height which lies to the right of the segment inside the pixel.
// Summing cover from the left and adding area gives the signed coverage.

// accumulate adds the part of s inside row y to cover and area, which
// hold the pixels xMin, ..., xMax-1.  Contributions left of xMin are
// folded into the first pixel.
func accumulate(s *segment, y int, cover, area []float32, xMin, xMax int) {
	lo, hi := s.yRange()
	yTop := max(float64(y), lo)
	yBot := min(float64(y+1), hi)
	if yBot <= yTop {
		return
	}
	sign := float32(1)
	if s.y1 < s.y0 {
		sign = -1
	}

	xa, xb := s.xAt(yTop), s.xAt(yBot)
	if xa > xb {
		xa, xb = xb, xa
	}
	left := int(math.Floor(xa))
	right := int(math.Floor(xb))

	switch {
	case right < xMin:
		c := sign * float32(yBot-yTop)
		cover[0] += c
		area[0] += c
		return
	case left >= xMax:
		return
	case left == right:
		addPiece(s, yTop, yBot, sign, left, cover, area, xMin, xMax)
		return
	}

	dydx := 1 / s.dxdy
	for px := left; px <= right; px++ {
		ya := s.y0 + dydx*(float64(px)-s.x0)
		yb := s.y0 + dydx*(float64(px+1)-s.x0)
		top := max(min(ya, yb), yTop)
		bot := min(max(ya, yb), yBot)
		if bot <= top {
			continue
		}
		addPiece(s, top, bot, sign, px, cover, area, xMin, xMax)
	}
}

// addPiece records the part of s between yTop and yBot, which lies inside
// pixel column px.
func addPiece(s *segment, yTop, yBot float64, sign float32, px int, cover, area []float32, xMin, xMax int) {
	c := sign * float32(yBot-yTop)
	if px < xMin {
		cover[0] += c
		area[0] += c
		return
	}
	if px >= xMax {
		return
	}
	frac := s.xAt((yTop+yBot)/2) - float64(px)
	i := px - xMin
	cover[i] += c
	area[i] += c * float32(1-frac)
}

// integrate turns the accumulated values of one row into coverage,
// in place.
func integrate(cover, area []float32, rule Rule) {
	var sum float32
	for i := range cover {
		v := sum + area[i]
		sum += cover[i]
		if v < 0 {
			v = -v
		}
		if rule == EvenOdd {
			v -= 2 * float32(int(v/2))
			if v > 1 {
				v = 2 - v
			}
		} else if v > 1 {
			v = 1
		}
		cover[i] = v
	}
}

// trim returns the span of row between the first and last non-zero entry.
func trim(row []float32) ([]float32, int) {
	lo, hi := 0, len(row)
	for lo < hi && row[lo] == 0 {
		lo++
	}
	for hi > lo && row[hi-1] == 0 {
		hi--
	}
	if lo == hi {
		return nil, 0
	}
	return row[lo:hi], lo
}

// fillBuffered accumulates all rows at once into a 2D buffer.
func (r *Rasterizer) fillBuffered(xMin, xMax, yMin, yMax int, rule Rule, emit Emit) {
	w, h := xMax-xMin, yMax-yMin
	r.cover = grow(r.cover, w*h)
	r.area = grow(r.area, w*h)
	r.touched = slices.Grow(r.touched[:0], h)[:h]
	clear(r.touched)

	for i := range r.segs {
		s := &r.segs[i]
		lo, hi := s.yRange()
		from := max(int(math.Floor(lo)), yMin)
		to := min(int(math.Floor(hi))+1, yMax)
		for y := from; y < to; y++ {
			row := y - yMin
			off := row * w
			accumulate(s, y, r.cover[off:off+w], r.area[off:off+w], xMin, xMax)
			r.touched[row] = true
		}
	}

	for row := range h {
		if !r.touched[row] {
			continue
		}
		off := row * w
		cov := r.cover[off : off+w]
		integrate(cov, r.area[off:off+w], rule)
		if span, dx := trim(cov); span != nil {
			emit(yMin+row, xMin+dx, span)
		}
	}
}

// fillScanning walks the rows top to bottom, keeping a list of the
// segments which intersect the current row.
func (r *Rasterizer) fillScanning(xMin, xMax, yMin, yMax int, rule Rule, emit Emit) {
	w := xMax - xMin
	r.cover = grow(r.cover, w)
	r.area = grow(r.area, w)

	slices.SortFunc(r.segs, func(a, b segment) int {
		return cmp.Compare(min(a.y0, a.y1), min(b.y0, b.y1))
	})
	r.active = r.active[:0]
	next := 0

	for y := yMin; y < yMax; y++ {
		yf := float64(y)
		for next < len(r.segs) && min(r.segs[next].y0, r.segs[next].y1) < yf+1 {
			r.active = append(r.active, next)
			next++
		}
		if len(r.active) == 0 {
			continue
		}

		clear(r.cover)
		clear(r.area)
		hit := false
		for i := 0; i < len(r.active); {
			s := &r.segs[r.active[i]]
			if _, hi := s.yRange(); hi <= yf {
				last := len(r.active) - 1
				r.active[i] = r.active[last]
				r.active = r.active[:last]
				continue
			}
			accumulate(s, y, r.cover, r.area, xMin, xMax)
			hit = true
			i++
		}
		if !hit {
			continue
		}

		integrate(r.cover, r.area, rule)
		if span, dx := trim(r.cover); span != nil {
			emit(y, xMin+dx, span)
		}
	}
}

// grow returns buf resized to n zeroed elements.
func grow(buf []float32, n int) []float32 {
	buf = slices.Grow(buf[:0], n)[:n]
	clear(buf)
	return buf
}
