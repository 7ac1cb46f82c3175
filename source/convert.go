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
	"image"
	"image/color"

	"github.com/makeworld-the-better-one/dither/v2"

	"seehuhn.de/go/raster"
)

// ToBitmap converts an image to the sample format f.  Transparent areas
// are composited onto white.
//
// Gray samples use the luminance weights 0.30, 0.59 and 0.11.  One-bit
// bitmaps are produced by Floyd-Steinberg error diffusion of the gray
// image, so that solid black and white areas stay solid.
func ToBitmap(img image.Image, f raster.SampleFormat) *raster.Bitmap {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	switch f {
	case raster.RGB8:
		bm := raster.NewBitmap(raster.RGB8, w, h)
		for y := range h {
			row := bm.Row(y)
			for x := range w {
				r, g, bl := rgbAt(img, b.Min.X+x, b.Min.Y+y)
				row[3*x], row[3*x+1], row[3*x+2] = r, g, bl
			}
		}
		return bm

	case raster.Gray8:
		gray := grayImage(img)
		bm := raster.NewBitmap(raster.Gray8, w, h)
		for y := range h {
			copy(bm.Row(y), gray.Pix[y*gray.Stride:y*gray.Stride+w])
		}
		return bm

	default:
		return monoBitmap(grayImage(img))
	}
}

// rgbAt returns the color of a pixel, composited onto white.
func rgbAt(img image.Image, x, y int) (r, g, b uint8) {
	if rgba, ok := img.(*image.RGBA); ok {
		i := rgba.PixOffset(x, y)
		p := rgba.Pix[i : i+4 : i+4]
		bg := 255 - p[3]
		return p[0] + bg, p[1] + bg, p[2] + bg
	}
	r32, g32, b32, a32 := img.At(x, y).RGBA()
	bg := 0xffff - a32
	return uint8((r32 + bg) >> 8), uint8((g32 + bg) >> 8), uint8((b32 + bg) >> 8)
}

// luminance returns the gray value of an RGB color.
func luminance(r, g, b uint8) uint8 {
	return uint8((30*int(r) + 59*int(g) + 11*int(b) + 50) / 100)
}

func grayImage(img image.Image) *image.Gray {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	gray := image.NewGray(image.Rect(0, 0, w, h))
	for y := range h {
		row := gray.Pix[y*gray.Stride:]
		for x := range w {
			row[x] = luminance(rgbAt(img, b.Min.X+x, b.Min.Y+y))
		}
	}
	return gray
}

func monoBitmap(gray *image.Gray) *raster.Bitmap {
	w, h := gray.Rect.Dx(), gray.Rect.Dy()
	bm := raster.NewBitmap(raster.Mono1, w, h)
	clear(bm.Pix)

	d := dither.NewDitherer([]color.Color{color.Black, color.White})
	d.Matrix = dither.FloydSteinberg
	dithered := d.DitherPaletted(gray)

	for y := range h {
		row := bm.Row(y)
		for x := range w {
			var white bool
			if dithered != nil {
				c := dithered.Palette[dithered.ColorIndexAt(x, y)]
				r, _, _, _ := c.RGBA()
				white = r > 0x7fff
			} else {
				white = gray.Pix[y*gray.Stride+x] >= 0x80
			}
			if white {
				row[x/8] |= 0x80 >> (x % 8)
			}
		}
	}
	return bm
}
