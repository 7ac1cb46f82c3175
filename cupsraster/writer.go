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

package cupsraster

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// Options control the output of a Writer.
type Options struct {
	// Compressed selects the run-length encoded version 2 format.
	// Otherwise, version 3 with uncompressed lines is written.
	Compressed bool
}

// Writer writes a CUPS raster stream.
//
// Every page starts with a call to WriteHeader, followed by calls to
// WritePixels which together supply exactly Header.Size() bytes.
type Writer struct {
	w   *bufio.Writer
	opt Options

	started bool
	header  *Header

	remaining int // bytes still expected for the current page
	lineSize  int
	unit      int

	line   []byte // the current, possibly incomplete line
	prev   []byte // the last complete line, not yet written (compressed only)
	repeat int    // number of copies of prev
	enc    []byte
}

// NewWriter returns a Writer which writes to w.  If opt is nil, the
// default options are used.
func NewWriter(w io.Writer, opt *Options) *Writer {
	if opt == nil {
		opt = &Options{}
	}
	return &Writer{
		w:   bufio.NewWriter(w),
		opt: *opt,
	}
}

// WriteHeader starts a new page.  The CUPSCompression field of h is
// ignored.
func (w *Writer) WriteHeader(h *Header) error {
	if err := w.finishPage(); err != nil {
		return err
	}

	unit, err := h.colorSize()
	if err != nil {
		return err
	}
	if unit == 0 || h.CUPSBytesPerLine%uint32(unit) != 0 {
		return fmt.Errorf("%w: %d bytes per line for %d byte colors",
			ErrInvalidFormat, h.CUPSBytesPerLine, unit)
	}

	if !w.started {
		sync := syncV3BE
		if w.opt.Compressed {
			sync = syncV2BE
		}
		if _, err := w.w.WriteString(sync); err != nil {
			return err
		}
		w.started = true
	}

	hdr := *h
	hdr.CUPSCompression = 0
	if w.opt.Compressed {
		hdr.CUPSCompression = 1
	}
	if err := hdr.encode(w.w, binary.BigEndian); err != nil {
		return err
	}

	w.header = &hdr
	w.remaining = hdr.Size()
	w.lineSize = int(hdr.CUPSBytesPerLine)
	w.unit = unit
	w.line = w.line[:0]
	w.prev = w.prev[:0]
	w.repeat = 0
	return nil
}

// WritePixels appends raster data to the current page.
func (w *Writer) WritePixels(p []byte) (int, error) {
	if w.header == nil {
		return 0, ErrNoHeader
	}
	if len(p) > w.remaining {
		return 0, fmt.Errorf("%w: %d bytes left, got %d",
			ErrPageOverflow, w.remaining, len(p))
	}

	if !w.opt.Compressed {
		n, err := w.w.Write(p)
		w.remaining -= n
		return n, err
	}

	n := 0
	for len(p) > 0 {
		k := min(w.lineSize-len(w.line), len(p))
		w.line = append(w.line, p[:k]...)
		p = p[k:]
		n += k
		w.remaining -= k
		if len(w.line) == w.lineSize {
			if err := w.addLine(); err != nil {
				return n, err
			}
		}
	}
	if w.remaining == 0 {
		if err := w.flushLine(); err != nil {
			return n, err
		}
	}
	return n, nil
}

// Close checks that the last page is complete, and flushes all buffered
// data to the underlying writer.  The underlying writer is not closed.
func (w *Writer) Close() error {
	if err := w.finishPage(); err != nil {
		return err
	}
	return w.w.Flush()
}

func (w *Writer) finishPage() error {
	if w.header == nil {
		return nil
	}
	if w.remaining > 0 {
		return fmt.Errorf("%w: %d bytes missing", ErrIncompletePage, w.remaining)
	}
	w.header = nil
	return nil
}

// addLine merges the complete line in w.line with the pending lines.
func (w *Writer) addLine() error {
	if w.repeat > 0 && w.repeat < 256 && bytes.Equal(w.line, w.prev) {
		w.repeat++
		w.line = w.line[:0]
		return nil
	}
	if err := w.flushLine(); err != nil {
		return err
	}
	w.prev, w.line = w.line, w.prev[:0]
	w.repeat = 1
	return nil
}

// flushLine writes the pending line, together with its repeat count.
func (w *Writer) flushLine() error {
	if w.repeat == 0 {
		return nil
	}
	w.enc = append(w.enc[:0], byte(w.repeat-1))
	w.enc = encodeLine(w.enc, w.prev, w.unit)
	w.repeat = 0
	_, err := w.w.Write(w.enc)
	return err
}

// encodeLine appends the run-length encoding of line to dst.  Colors are
// units of the given size.  A byte n <= 127 is followed by one color,
// which is repeated n+1 times.  A byte n >= 128 is followed by 257-n
// colors.
func encodeLine(dst, line []byte, unit int) []byte {
	n := len(line) / unit
	color := func(i int) []byte {
		return line[i*unit : (i+1)*unit]
	}

	for i := 0; i < n; {
		j := i + 1
		for j < n && j-i < 128 && bytes.Equal(color(j), color(i)) {
			j++
		}
		if j-i > 1 || j == n {
			dst = append(dst, byte(j-i-1))
			dst = append(dst, color(i)...)
			i = j
			continue
		}

		for j < n && j-i < 128 && (j+1 == n || !bytes.Equal(color(j), color(j+1))) {
			j++
		}
		if j-i == 1 {
			dst = append(dst, 0)
		} else {
			dst = append(dst, byte(257-(j-i)))
		}
		dst = append(dst, line[i*unit:j*unit]...)
		i = j
	}
	return dst
}
