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

// Package cupsraster reads and writes CUPS raster streams.
//
// A stream starts with a four byte synchronization word, which gives the
// format version and the byte order.  It is followed by the pages, each
// consisting of a page header and the raster data.  Version 1 headers
// are 420 bytes long; version 2 and 3 headers are 1796 bytes long.
// Version 2 streams use a run-length encoding for the raster data.
//
// The [Writer] produces big-endian version 2 or version 3 streams.  The
// [Decoder] reads all three versions in both byte orders.
package cupsraster

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
)

var (
	// ErrUnknownVersion is returned when encountering an unknown
	// synchronization word.
	ErrUnknownVersion = errors.New("unsupported file format or version")

	// ErrInvalidFormat is returned when a header contains values which
	// are not possible in the supported versions of the format.
	ErrInvalidFormat = errors.New("error in the format")

	// ErrBufferTooSmall is returned from ReadLine and ReadAll when
	// the buffer is smaller than a line or a page, respectively.
	ErrBufferTooSmall = errors.New("buffer too small")

	// ErrIncompletePage is returned by the Writer if a page receives
	// fewer bytes than its header announces.
	ErrIncompletePage = errors.New("incomplete page")

	// ErrPageOverflow is returned by the Writer if more bytes are written
	// than the page header allows.
	ErrPageOverflow = errors.New("too much data for page")

	// ErrNoHeader is returned by the Writer if pixels are written before
	// the first page header.
	ErrNoHeader = errors.New("missing page header")
)

const (
	syncV1BE = "RaSt"
	syncV1LE = "tSaR"
	syncV2BE = "RaS2"
	syncV2LE = "2SaR"
	syncV3BE = "RaS3"
	syncV3LE = "3SaR"
)

// Sizes of the page headers.
const (
	HeaderSizeV1 = 420
	HeaderSizeV2 = 1796
)

// Color orders used in CUPSColorOrder.
const (
	ChunkyPixels = 0
	BandedPixels = 1
	PlanarPixels = 2
)

// BoundingBox is a rectangle in PostScript points.
type BoundingBox struct {
	Left   uint32
	Bottom uint32
	Right  uint32
	Top    uint32
}

// ImagingBox is the imageable area of a page in PostScript points.
type ImagingBox struct {
	Left   float32
	Bottom float32
	Right  float32
	Top    float32
}

// Header is a CUPS raster page header.
type Header struct {
	// v1

	MediaClass       string
	MediaColor       string
	MediaType        string
	OutputType       string
	AdvanceDistance  uint32
	AdvanceMedia     uint32
	Collate          bool
	CutMedia         uint32
	Duplex           bool
	HorizDPI         uint32
	VertDPI          uint32
	BoundingBox      BoundingBox
	InsertSheet      bool
	Jog              uint32
	LeadingEdge      uint32
	MarginLeft       uint32
	MarginBottom     uint32
	ManualFeed       bool
	MediaPosition    uint32
	MediaWeight      uint32
	MirrorPrint      bool
	NegativePrint    bool
	NumCopies        uint32
	Orientation      uint32
	OutputFaceUp     bool
	Width            uint32 // page width in points
	Length           uint32 // page length in points
	Separations      bool
	TraySwitch       bool
	Tumble           bool
	CUPSWidth        uint32
	CUPSHeight       uint32
	CUPSMediaType    uint32
	CUPSBitsPerColor uint32
	CUPSBitsPerPixel uint32
	CUPSBytesPerLine uint32
	CUPSColorOrder   uint32
	CUPSColorSpace   uint32
	CUPSCompression  uint32
	CUPSRowCount     uint32
	CUPSRowFeed      uint32
	CUPSRowStep      uint32

	// v2, v3

	CUPSNumColors               uint32
	CUPSBorderlessScalingFactor float32
	CUPSPageSize                [2]float32
	CUPSImagingBBox             ImagingBox
	CUPSInteger                 [16]uint32
	CUPSReal                    [16]float32
	CUPSString                  [16]string
	CUPSMarkerType              string
	CUPSRenderingIntent         string
	CUPSPageSizeName            string
}

// Lines returns the number of lines of raster data on the page.
// Planar pages store every color plane as a separate set of lines.
func (h *Header) Lines() int {
	n := int(h.CUPSHeight)
	if h.CUPSColorOrder == PlanarPixels {
		n *= max(int(h.CUPSNumColors), 1)
	}
	return n
}

// Size returns the number of bytes of raster data on the page.
func (h *Header) Size() int {
	return h.Lines() * int(h.CUPSBytesPerLine)
}

// colorSize returns the size of the unit used by the run-length
// encoding.
func (h *Header) colorSize() (int, error) {
	switch h.CUPSColorOrder {
	case ChunkyPixels:
		return int(h.CUPSBitsPerPixel+7) / 8, nil
	case BandedPixels, PlanarPixels:
		return int(h.CUPSBitsPerColor+7) / 8, nil
	default:
		return 0, ErrInvalidFormat
	}
}

type cstring [64]byte

func newCString(s string) cstring {
	var c cstring
	copy(c[:63], s)
	return c
}

func (c *cstring) String() string {
	if idx := bytes.IndexByte(c[:], 0); idx >= 0 {
		return string(c[:idx])
	}
	return string(c[:])
}

func boolValue(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

// wireV1 is the version 1 part of a page header, as stored in the stream.
type wireV1 struct {
	MediaClass       cstring
	MediaColor       cstring
	MediaType        cstring
	OutputType       cstring
	AdvanceDistance  uint32
	AdvanceMedia     uint32
	Collate          uint32
	CutMedia         uint32
	Duplex           uint32
	HorizDPI         uint32
	VertDPI          uint32
	BoundingBox      BoundingBox
	InsertSheet      uint32
	Jog              uint32
	LeadingEdge      uint32
	MarginLeft       uint32
	MarginBottom     uint32
	ManualFeed       uint32
	MediaPosition    uint32
	MediaWeight      uint32
	MirrorPrint      uint32
	NegativePrint    uint32
	NumCopies        uint32
	Orientation      uint32
	OutputFaceUp     uint32
	Width            uint32
	Length           uint32
	Separations      uint32
	TraySwitch       uint32
	Tumble           uint32
	CUPSWidth        uint32
	CUPSHeight       uint32
	CUPSMediaType    uint32
	CUPSBitsPerColor uint32
	CUPSBitsPerPixel uint32
	CUPSBytesPerLine uint32
	CUPSColorOrder   uint32
	CUPSColorSpace   uint32
	CUPSCompression  uint32
	CUPSRowCount     uint32
	CUPSRowFeed      uint32
	CUPSRowStep      uint32
}

// wireV2 is the remainder of a version 2 or 3 page header.
type wireV2 struct {
	CUPSNumColors               uint32
	CUPSBorderlessScalingFactor float32
	CUPSPageSize                [2]float32
	CUPSImagingBBox             ImagingBox
	CUPSInteger                 [16]uint32
	CUPSReal                    [16]float32
	CUPSString                  [16]cstring
	CUPSMarkerType              cstring
	CUPSRenderingIntent         cstring
	CUPSPageSizeName            cstring
}

func (h *Header) encode(w io.Writer, bo binary.ByteOrder) error {
	v1 := wireV1{
		MediaClass:       newCString(h.MediaClass),
		MediaColor:       newCString(h.MediaColor),
		MediaType:        newCString(h.MediaType),
		OutputType:       newCString(h.OutputType),
		AdvanceDistance:  h.AdvanceDistance,
		AdvanceMedia:     h.AdvanceMedia,
		Collate:          boolValue(h.Collate),
		CutMedia:         h.CutMedia,
		Duplex:           boolValue(h.Duplex),
		HorizDPI:         h.HorizDPI,
		VertDPI:          h.VertDPI,
		BoundingBox:      h.BoundingBox,
		InsertSheet:      boolValue(h.InsertSheet),
		Jog:              h.Jog,
		LeadingEdge:      h.LeadingEdge,
		MarginLeft:       h.MarginLeft,
		MarginBottom:     h.MarginBottom,
		ManualFeed:       boolValue(h.ManualFeed),
		MediaPosition:    h.MediaPosition,
		MediaWeight:      h.MediaWeight,
		MirrorPrint:      boolValue(h.MirrorPrint),
		NegativePrint:    boolValue(h.NegativePrint),
		NumCopies:        h.NumCopies,
		Orientation:      h.Orientation,
		OutputFaceUp:     boolValue(h.OutputFaceUp),
		Width:            h.Width,
		Length:           h.Length,
		Separations:      boolValue(h.Separations),
		TraySwitch:       boolValue(h.TraySwitch),
		Tumble:           boolValue(h.Tumble),
		CUPSWidth:        h.CUPSWidth,
		CUPSHeight:       h.CUPSHeight,
		CUPSMediaType:    h.CUPSMediaType,
		CUPSBitsPerColor: h.CUPSBitsPerColor,
		CUPSBitsPerPixel: h.CUPSBitsPerPixel,
		CUPSBytesPerLine: h.CUPSBytesPerLine,
		CUPSColorOrder:   h.CUPSColorOrder,
		CUPSColorSpace:   h.CUPSColorSpace,
		CUPSCompression:  h.CUPSCompression,
		CUPSRowCount:     h.CUPSRowCount,
		CUPSRowFeed:      h.CUPSRowFeed,
		CUPSRowStep:      h.CUPSRowStep,
	}
	v2 := wireV2{
		CUPSNumColors:               h.CUPSNumColors,
		CUPSBorderlessScalingFactor: h.CUPSBorderlessScalingFactor,
		CUPSPageSize:                h.CUPSPageSize,
		CUPSImagingBBox:             h.CUPSImagingBBox,
		CUPSInteger:                 h.CUPSInteger,
		CUPSReal:                    h.CUPSReal,
		CUPSMarkerType:              newCString(h.CUPSMarkerType),
		CUPSRenderingIntent:         newCString(h.CUPSRenderingIntent),
		CUPSPageSizeName:            newCString(h.CUPSPageSizeName),
	}
	for i, s := range h.CUPSString {
		v2.CUPSString[i] = newCString(s)
	}

	if err := binary.Write(w, bo, &v1); err != nil {
		return err
	}
	return binary.Write(w, bo, &v2)
}

func (h *Header) setV1(v1 *wireV1) {
	h.MediaClass = v1.MediaClass.String()
	h.MediaColor = v1.MediaColor.String()
	h.MediaType = v1.MediaType.String()
	h.OutputType = v1.OutputType.String()
	h.AdvanceDistance = v1.AdvanceDistance
	h.AdvanceMedia = v1.AdvanceMedia
	h.Collate = v1.Collate == 1
	h.CutMedia = v1.CutMedia
	h.Duplex = v1.Duplex == 1
	h.HorizDPI = v1.HorizDPI
	h.VertDPI = v1.VertDPI
	h.BoundingBox = v1.BoundingBox
	h.InsertSheet = v1.InsertSheet == 1
	h.Jog = v1.Jog
	h.LeadingEdge = v1.LeadingEdge
	h.MarginLeft = v1.MarginLeft
	h.MarginBottom = v1.MarginBottom
	h.ManualFeed = v1.ManualFeed == 1
	h.MediaPosition = v1.MediaPosition
	h.MediaWeight = v1.MediaWeight
	h.MirrorPrint = v1.MirrorPrint == 1
	h.NegativePrint = v1.NegativePrint == 1
	h.NumCopies = v1.NumCopies
	h.Orientation = v1.Orientation
	h.OutputFaceUp = v1.OutputFaceUp == 1
	h.Width = v1.Width
	h.Length = v1.Length
	h.Separations = v1.Separations == 1
	h.TraySwitch = v1.TraySwitch == 1
	h.Tumble = v1.Tumble == 1
	h.CUPSWidth = v1.CUPSWidth
	h.CUPSHeight = v1.CUPSHeight
	h.CUPSMediaType = v1.CUPSMediaType
	h.CUPSBitsPerColor = v1.CUPSBitsPerColor
	h.CUPSBitsPerPixel = v1.CUPSBitsPerPixel
	h.CUPSBytesPerLine = v1.CUPSBytesPerLine
	h.CUPSColorOrder = v1.CUPSColorOrder
	h.CUPSColorSpace = v1.CUPSColorSpace
	h.CUPSCompression = v1.CUPSCompression
	h.CUPSRowCount = v1.CUPSRowCount
	h.CUPSRowFeed = v1.CUPSRowFeed
	h.CUPSRowStep = v1.CUPSRowStep
}

func (h *Header) setV2(v2 *wireV2) {
	h.CUPSNumColors = v2.CUPSNumColors
	h.CUPSBorderlessScalingFactor = v2.CUPSBorderlessScalingFactor
	h.CUPSPageSize = v2.CUPSPageSize
	h.CUPSImagingBBox = v2.CUPSImagingBBox
	h.CUPSInteger = v2.CUPSInteger
	h.CUPSReal = v2.CUPSReal
	for i := range v2.CUPSString {
		h.CUPSString[i] = v2.CUPSString[i].String()
	}
	h.CUPSMarkerType = v2.CUPSMarkerType.String()
	h.CUPSRenderingIntent = v2.CUPSRenderingIntent.String()
	h.CUPSPageSizeName = v2.CUPSPageSizeName.String()
}
