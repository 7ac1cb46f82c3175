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
	"encoding/binary"
	"io"
)

func parseSync(b []byte) (version int, bo binary.ByteOrder, ok bool) {
	switch string(b) {
	case syncV1BE:
		return 1, binary.BigEndian, true
	case syncV2BE:
		return 2, binary.BigEndian, true
	case syncV3BE:
		return 3, binary.BigEndian, true
	case syncV1LE:
		return 1, binary.LittleEndian, true
	case syncV2LE:
		return 2, binary.LittleEndian, true
	case syncV3LE:
		return 3, binary.LittleEndian, true
	default:
		return 0, nil, false
	}
}

type countingReader struct {
	r *bufio.Reader
	n int
}

func (r *countingReader) Read(b []byte) (int, error) {
	n, err := r.r.Read(b)
	r.n += n
	return n, err
}

func (r *countingReader) ReadByte() (byte, error) {
	c, err := r.r.ReadByte()
	if err == nil {
		r.n++
	}
	return c, err
}

// Decoder reads the pages of a CUPS raster stream.
type Decoder struct {
	r       *countingReader
	bo      binary.ByteOrder
	version int
	curPage *Page
}

// NewDecoder reads the synchronization word from r and returns a Decoder
// for the remaining stream.
func NewDecoder(r io.Reader) (*Decoder, error) {
	d := &Decoder{r: &countingReader{r: bufio.NewReader(r)}}
	sync := make([]byte, 4)
	if _, err := io.ReadFull(d.r, sync); err != nil {
		return nil, err
	}
	var ok bool
	d.version, d.bo, ok = parseSync(sync)
	if !ok {
		return nil, ErrUnknownVersion
	}
	return d, nil
}

// Version returns the format version of the stream.
func (d *Decoder) Version() int {
	return d.version
}

// ByteOrder returns the byte order of the stream.
func (d *Decoder) ByteOrder() binary.ByteOrder {
	return d.bo
}

// Page gives access to the raster data of one page.
type Page struct {
	Header *Header

	dec       *Decoder
	line      []byte
	color     []byte
	lineRep   int
	linesRead int
}

// NextPage returns the next page of the stream, or io.EOF at the end of
// the stream.  Unread lines of the previous page are skipped.  After a
// call to NextPage, previously returned pages can no longer be used to
// read raster data.
func (d *Decoder) NextPage() (*Page, error) {
	if d.curPage != nil {
		if err := d.curPage.discard(); err != nil {
			return nil, err
		}
		d.curPage = nil
	}

	h := &Header{}
	n := d.r.n
	var v1 wireV1
	err := binary.Read(d.r, d.bo, &v1)
	if err == nil {
		h.setV1(&v1)
		if d.version > 1 {
			var v2 wireV2
			err = binary.Read(d.r, d.bo, &v2)
			h.setV2(&v2)
		}
	}
	if err == io.EOF && d.r.n != n {
		return nil, io.ErrUnexpectedEOF
	}
	if err != nil {
		return nil, err
	}

	unit, err := h.colorSize()
	if err != nil {
		return nil, err
	}
	if d.version == 2 && (unit == 0 || h.CUPSBytesPerLine%uint32(unit) != 0) {
		return nil, ErrInvalidFormat
	}
	p := &Page{
		Header: h,
		dec:    d,
		line:   make([]byte, 0, h.CUPSBytesPerLine),
		color:  make([]byte, unit),
	}
	d.curPage = p
	return p, nil
}

// LineSize returns the number of bytes per line.
func (p *Page) LineSize() int {
	return int(p.Header.CUPSBytesPerLine)
}

// UnreadLines returns the number of unread lines of the page.
func (p *Page) UnreadLines() int {
	return p.Header.Lines() - p.linesRead
}

// ReadLine reads the next line of raster data into b.  It returns io.EOF
// if all lines have been read.
func (p *Page) ReadLine(b []byte) error {
	if len(b) < p.LineSize() {
		return ErrBufferTooSmall
	}
	if p.UnreadLines() == 0 {
		return io.EOF
	}
	p.linesRead++
	if p.dec.version == 2 {
		return p.readV2Line(b)
	}
	return p.readRawLine(b)
}

// ReadAll reads the remaining lines of the page into b.
func (p *Page) ReadAll(b []byte) error {
	n := p.UnreadLines()
	if n == 0 {
		return io.EOF
	}
	size := p.LineSize()
	if len(b) < n*size {
		return ErrBufferTooSmall
	}
	for i := range n {
		err := p.ReadLine(b[i*size : (i+1)*size])
		if err == io.EOF {
			return io.ErrUnexpectedEOF
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (p *Page) discard() error {
	b := make([]byte, p.LineSize())
	for p.UnreadLines() > 0 {
		if err := p.ReadLine(b); err != nil {
			if err == io.EOF {
				return io.ErrUnexpectedEOF
			}
			return err
		}
	}
	return nil
}

func (p *Page) readRawLine(b []byte) error {
	_, err := io.ReadFull(p.dec.r, b[:p.LineSize()])
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return err
}

func (p *Page) readV2Line(b []byte) (err error) {
	defer func() {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
	}()

	if p.lineRep > 0 {
		p.lineRep--
		copy(b, p.line)
		return nil
	}

	lineRep, err := p.dec.r.ReadByte()
	if err != nil {
		return err
	}
	// The count is stored as count - 1, and this call returns the first
	// copy.
	p.lineRep = int(lineRep)

	size := p.LineSize()
	p.line = p.line[:0]
	for len(p.line) < size {
		n, err := p.dec.r.ReadByte()
		if err != nil {
			return err
		}
		if n <= 127 {
			if _, err := io.ReadFull(p.dec.r, p.color); err != nil {
				return err
			}
			for range int(n) + 1 {
				p.line = append(p.line, p.color...)
			}
		} else {
			k := (257 - int(n)) * len(p.color)
			start := len(p.line)
			p.line = append(p.line, make([]byte, k)...)
			if _, err := io.ReadFull(p.dec.r, p.line[start:]); err != nil {
				return err
			}
		}
	}
	if len(p.line) > size {
		return ErrInvalidFormat
	}
	copy(b, p.line)
	return nil
}
