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

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"

	"seehuhn.de/go/raster"
	"seehuhn.de/go/raster/cupsraster"
	"seehuhn.de/go/raster/pack"
)

var infoCmd = &cobra.Command{
	Use:   "info [file]",
	Short: "Show the page headers of a CUPS raster stream",
	Long: `Show the page headers of a CUPS raster stream.

With --pixels=N, the first N rows of every page are printed as well, one
hexadecimal code per pixel.  For banded and planar pages the channels of
a pixel are collected from all color planes.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInfo,
}

func init() {
	infoCmd.Flags().Int("pixels", 0, "number of pixel rows to print per page")
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	rows, err := cmd.Flags().GetInt("pixels")
	if err != nil {
		return err
	}
	var in io.Reader = os.Stdin
	if len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}
	return dumpStream(cmd.OutOrStdout(), in, rows)
}

// dumpStream prints the headers of all pages in r, followed by the
// first rows pixel rows of each page.
func dumpStream(w io.Writer, r io.Reader, rows int) error {
	dec, err := cupsraster.NewDecoder(r)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "version %d, %v\n", dec.Version(), dec.ByteOrder())
	for n := 1; ; n++ {
		p, err := dec.NextPage()
		if err == io.EOF {
			return nil
		} else if err != nil {
			return fmt.Errorf("page %d: %w", n, err)
		}
		fmt.Fprintf(w, "\npage %d:\n", n)
		spew.Fdump(w, p.Header)
		if rows > 0 {
			if err := dumpPixels(w, p, rows); err != nil {
				return fmt.Errorf("page %d: %w", n, err)
			}
		}
	}
}

// dumpPixels prints the first rows pixel rows of p.  Only the lines
// needed for these rows are decoded.
func dumpPixels(w io.Writer, p *cupsraster.Page, rows int) error {
	h := p.Header
	order := raster.Order(h.CUPSColorOrder)
	pk, err := pack.New(int(h.CUPSBitsPerColor), int(h.CUPSNumColors), order)
	if err != nil {
		return err
	}

	height := int(h.CUPSHeight)
	rows = min(rows, height)
	if rows <= 0 {
		return nil
	}
	planes := 1
	if order != raster.Chunked {
		planes = int(h.CUPSNumColors)
	}

	// Banded lines hold all bands of a row, planar pages store the
	// planes one after the other.
	bpl := p.LineSize()
	need := rows
	if order == raster.Planar {
		need += (planes - 1) * height
	}
	data := make([]byte, need*bpl)
	for i := range need {
		if err := p.ReadLine(data[i*bpl : (i+1)*bpl]); err != nil {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return err
		}
	}
	plane := func(y, k int) []byte {
		switch order {
		case raster.Banded:
			n := bpl / planes
			return data[y*bpl+k*n : y*bpl+(k+1)*n]
		case raster.Planar:
			y += k * height
		}
		return data[y*bpl : (y+1)*bpl]
	}

	px := make([]byte, 2*raster.MaxColors)
	for y := range rows {
		fmt.Fprintf(w, "row %d:", y)
		for x := range int(h.CUPSWidth) {
			clear(px)
			var code []byte
			for k := range planes {
				code = pk.Get(plane(y, k), k, x, px)
			}
			fmt.Fprintf(w, " %x", code)
		}
		fmt.Fprintln(w)
	}
	return nil
}
