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

// Command export writes the raster streams of all test cases to testdata/,
// together with an index file describing them.
package main

import (
	"context"
	"encoding/json"
	"maps"
	"os"
	"path/filepath"
	"slices"

	"seehuhn.de/go/raster/testcases"
)

func main() {
	var out struct {
		TestCases []jsonTestCase `json:"testcases"`
	}

	if err := os.MkdirAll("testdata", 0o755); err != nil {
		panic(err)
	}
	for _, category := range slices.Sorted(maps.Keys(testcases.All)) {
		for _, tc := range testcases.All[category] {
			jtc := toJSON(category, &tc)
			if err := export(&tc, filepath.Join("testdata", jtc.File)); err != nil {
				panic(err)
			}
			out.TestCases = append(out.TestCases, jtc)
		}
	}

	f, err := os.Create("testdata/testcases.json")
	if err != nil {
		panic(err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		panic(err)
	}
}

func export(tc *testcases.TestCase, fname string) error {
	f, err := os.Create(fname)
	if err != nil {
		return err
	}
	err = testcases.Convert(context.Background(), tc, f, true)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return err
}

type jsonTestCase struct {
	Name         string     `json:"name"`
	File         string     `json:"file"`
	ColorSpace   string     `json:"color_space"`
	BitsPerColor int        `json:"bits_per_color"`
	ColorOrder   string     `json:"color_order"`
	Resolution   int        `json:"resolution,omitempty"`
	Paper        [2]float64 `json:"paper"`
	Pages        int        `json:"pages,omitempty"`
	BackSide     string     `json:"back_side,omitempty"`
	Tumble       bool       `json:"tumble,omitempty"`
}

func toJSON(category string, tc *testcases.TestCase) jsonTestCase {
	name := category + "_" + tc.Name
	return jsonTestCase{
		Name:         name,
		File:         name + ".ras",
		ColorSpace:   tc.Space.String(),
		BitsPerColor: tc.BitsPerColor,
		ColorOrder:   tc.Order.String(),
		Resolution:   tc.Resolution,
		Paper:        tc.Paper,
		Pages:        tc.Pages,
		BackSide:     tc.BackSide,
		Tumble:       tc.Tumble,
	}
}
