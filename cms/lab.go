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

package cms

import "math"

// WhitePointD50 is the CIE XYZ value of the ICC profile connection space
// white point, with Y = 1.
var WhitePointD50 = [3]float64{0.9642, 1.0, 0.8249}

// WhitePointD65 is the CIE XYZ value of the D65 white point, with Y = 1.
var WhitePointD65 = [3]float64{0.95047, 1.0, 1.08883}

// bradfordD50ToD65 adapts XYZ values from the D50 to the D65 white point.
var bradfordD50ToD65 = [9]float64{
	0.9555766, -0.0230393, 0.0631636,
	-0.0282895, 1.0099416, 0.0210077,
	0.0122982, -0.0204830, 1.3299098,
}

// AdaptD50ToD65 maps profile connection space XYZ values to D65 using the
// Bradford transform.
func AdaptD50ToD65(x, y, z float64) (float64, float64, float64) {
	m := &bradfordD50ToD65
	return m[0]*x + m[1]*y + m[2]*z,
		m[3]*x + m[4]*y + m[5]*z,
		m[6]*x + m[7]*y + m[8]*z
}

// XYZToLab converts CIE XYZ to CIE L*a*b*, relative to [WhitePointD65].
func XYZToLab(x, y, z float64) (l, a, b float64) {
	fx := labF(x / WhitePointD65[0])
	fy := labF(y / WhitePointD65[1])
	fz := labF(z / WhitePointD65[2])
	return 116*fy - 16, 500 * (fx - fy), 200 * (fy - fz)
}

// LabToXYZ converts CIE L*a*b* to CIE XYZ, relative to [WhitePointD65].
func LabToXYZ(l, a, b float64) (x, y, z float64) {
	fy := (l + 16) / 116
	fx := fy + a/500
	fz := fy - b/200
	x = labFInv(fx) * WhitePointD65[0]
	y = labFInv(fy) * WhitePointD65[1]
	z = labFInv(fz) * WhitePointD65[2]
	return x, y, z
}

func labF(t float64) float64 {
	const delta = 6.0 / 29.0
	if t > delta*delta*delta {
		return math.Cbrt(t)
	}
	return t/(3*delta*delta) + 4.0/29.0
}

func labFInv(t float64) float64 {
	const delta = 6.0 / 29.0
	if t > delta {
		return t * t * t
	}
	return 3 * delta * delta * (t - 4.0/29.0)
}
