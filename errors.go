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

package raster

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedSpace is reported for color spaces which cannot be
	// produced from a rendered bitmap.
	ErrUnsupportedSpace = errors.New("unsupported color space")

	// ErrUnsupportedDepth is reported for bit depths other than 1, 2, 4, 8
	// and 16, and for depths which the color space does not allow.
	ErrUnsupportedDepth = errors.New("unsupported bit depth")

	// ErrUnsupportedOrder is reported for unknown color orders, and for
	// color orders which the color space does not allow.
	ErrUnsupportedOrder = errors.New("unsupported color order")

	// ErrInconsistent is reported when the fields of a Descriptor
	// contradict each other.
	ErrInconsistent = errors.New("inconsistent raster format")

	// ErrShortWrite is reported when the raster stream accepts fewer bytes
	// than a row contains.
	ErrShortWrite = errors.New("short write")
)

// ConfigError reports a target raster format which cannot be produced.
// Configuration errors are detected before the first page is converted.
type ConfigError struct {
	Space        Space
	BitsPerColor int
	Order        Order
	Err          error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("raster format %s, %d bits/color, %s: %v",
		e.Space, e.BitsPerColor, e.Order, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// IOError reports a failure to write the raster stream.
type IOError struct {
	Page int    // 1-based page number, 0 if not page specific
	Op   string // "header", "row" or "close"
	Err  error
}

func (e *IOError) Error() string {
	if e.Page == 0 {
		return fmt.Sprintf("cannot write raster %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("cannot write page %d %s: %v", e.Page, e.Op, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// RenderError reports a document which cannot be opened or rendered.
type RenderError struct {
	Page int // 1-based page number, 0 for the document as a whole
	Err  error
}

func (e *RenderError) Error() string {
	if e.Page == 0 {
		return fmt.Sprintf("cannot read document: %v", e.Err)
	}
	return fmt.Sprintf("cannot render page %d: %v", e.Page, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}
