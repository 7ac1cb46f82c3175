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

package testcases

import (
	"seehuhn.de/go/raster"
	"seehuhn.de/go/raster/page"
)

// All contains all test cases, organized by category.
var All = map[string][]TestCase{
	"gray":   gray,
	"ink":    ink,
	"device": device,
	"order":  order,
	"duplex": duplexCases,
	"layout": layout,
}

// small is the default paper size for the test cases, in points.
var small = [2]float64{144, 108}

// printerSizes are the named page sizes of a typical printer.
var printerSizes = []page.PageSize{
	{Name: "A4", Width: 595, Length: 842, Left: 18, Bottom: 36, Right: 577, Top: 806},
	{Name: "Letter", Width: 612, Length: 792, Left: 18, Bottom: 36, Right: 594, Top: 756},
	{Name: "Card", Width: 144, Length: 108, Left: 9, Bottom: 9, Right: 135, Top: 99},
}

var gray = []TestCase{
	{Name: "k1", Space: raster.K, BitsPerColor: 1, Paper: small},
	{Name: "k2", Space: raster.K, BitsPerColor: 2, Paper: small},
	{Name: "k8", Space: raster.K, BitsPerColor: 8, Paper: small},
	{Name: "w1", Space: raster.W, BitsPerColor: 1, Paper: small},
	{Name: "w4", Space: raster.W, BitsPerColor: 4, Paper: small},
	{Name: "silver16", Space: raster.Silver, BitsPerColor: 16, Paper: small},
	{Name: "gold8", Space: raster.Gold, BitsPerColor: 8, Paper: small},
}

var ink = []TestCase{
	{Name: "cmy1", Space: raster.CMY, BitsPerColor: 1, Paper: small},
	{Name: "ymc2", Space: raster.YMC, BitsPerColor: 2, Paper: small},
	{Name: "cmyk1", Space: raster.CMYK, BitsPerColor: 1, Paper: small},
	{Name: "cmyk8", Space: raster.CMYK, BitsPerColor: 8, Paper: small},
	{Name: "kcmy4", Space: raster.KCMY, BitsPerColor: 4, Paper: small},
	{Name: "ymck16", Space: raster.YMCK, BitsPerColor: 16, Paper: small},
	{Name: "kcmycm1", Space: raster.KCMYcm, BitsPerColor: 1, Paper: small},
	{Name: "kcmycm8", Space: raster.KCMYcm, BitsPerColor: 8, Paper: small},
	{Name: "gmck8", Space: raster.GMCK, BitsPerColor: 8, Paper: small},
}

var device = []TestCase{
	{Name: "rgb8", Space: raster.RGB, BitsPerColor: 8, Paper: small},
	{Name: "rgb16", Space: raster.RGB, BitsPerColor: 16, Paper: small},
	{Name: "rgba2", Space: raster.RGBA, BitsPerColor: 2, Paper: small},
	{Name: "rgbw8", Space: raster.RGBW, BitsPerColor: 8, Paper: small},
	{Name: "lab8", Space: raster.CIELab, BitsPerColor: 8, Paper: small},
	{Name: "lab16", Space: raster.CIELab, BitsPerColor: 16, Paper: small},
	{Name: "xyz8", Space: raster.CIEXYZ, BitsPerColor: 8, Paper: small},
	{Name: "icc3_16", Space: raster.ICC1 + 2, BitsPerColor: 16, Paper: small},
}

var order = []TestCase{
	{Name: "cmyk1_banded", Space: raster.CMYK, BitsPerColor: 1, Order: raster.Banded, Paper: small},
	{Name: "cmyk8_banded", Space: raster.CMYK, BitsPerColor: 8, Order: raster.Banded, Paper: small},
	{Name: "cmy2_planar", Space: raster.CMY, BitsPerColor: 2, Order: raster.Planar, Paper: small},
	{Name: "kcmy16_planar", Space: raster.KCMY, BitsPerColor: 16, Order: raster.Planar, Paper: small},
	{Name: "rgb4_banded", Space: raster.RGB, BitsPerColor: 4, Order: raster.Banded, Paper: small},
}

var duplexCases = []TestCase{
	{Name: "rotated", Space: raster.K, BitsPerColor: 1, Paper: small, Pages: 2, BackSide: "Rotated"},
	{Name: "rotated_tumble", Space: raster.CMYK, BitsPerColor: 8, Paper: small, Pages: 2,
		BackSide: "Rotated", Tumble: true},
	{Name: "flipped", Space: raster.W, BitsPerColor: 8, Paper: small, Pages: 2, BackSide: "Flipped"},
	{Name: "manual_tumble", Space: raster.K, BitsPerColor: 2, Paper: small, Pages: 2,
		BackSide: "ManualTumble", Tumble: true},
	{Name: "normal", Space: raster.RGB, BitsPerColor: 8, Paper: small, Pages: 3, BackSide: "Normal"},
}

var layout = []TestCase{
	{Name: "card", Space: raster.K, BitsPerColor: 8, Paper: small, Sizes: printerSizes},
	{Name: "card_landscape", Space: raster.K, BitsPerColor: 8, Paper: [2]float64{108, 144},
		Sizes: printerSizes},
	{Name: "custom", Space: raster.K, BitsPerColor: 8, Paper: [2]float64{100, 120},
		Sizes: printerSizes, Custom: [4]float64{5, 10, 15, 20}},
	{Name: "unaligned", Space: raster.K, BitsPerColor: 1, Paper: [2]float64{64, 32},
		Custom: [4]float64{3, 1, 2, 1}},
	{Name: "a4_150dpi", Space: raster.CMYK, BitsPerColor: 1, Resolution: 150,
		Paper: [2]float64{595, 842}, Sizes: printerSizes},
}
