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

package printer

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// ErrSyntax is returned for malformed option strings.
var ErrSyntax = errors.New("invalid option syntax")

// Option is one job option.  Options without a value are stored with the
// value "true", or "false" if the name starts with "no".
type Option struct {
	Name   string
	Values []string
}

// Options is a list of job options, in the order given.
// Later options take precedence over earlier ones.
type Options []Option

// ParseOptions parses a CUPS option string, as passed to filters in the
// fifth command line argument.  Examples of valid option strings are
//
//	PageSize=A4 Duplex=DuplexNoTumble
//	media=A4,plain job-name='My Document'
//	Collate nofitplot
func ParseOptions(s string) (Options, error) {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '{' && s[len(s)-1] == '}' {
		s = s[1 : len(s)-1]
	}

	d := &decoder{input: s}
	var res Options
	for {
		d.consumeSpace()
		if d.done() {
			return res, nil
		}
		name := d.parseName()
		if name == "" {
			return nil, d.errorf("missing option name")
		}
		d.consumeSpace()
		if d.done() || d.peek() != '=' {
			res = append(res, flagOption(name))
			continue
		}
		d.offset++

		opt := Option{Name: name}
		for {
			v, err := d.parseValue()
			if err != nil {
				return nil, err
			}
			opt.Values = append(opt.Values, v)
			if d.done() || d.peek() != ',' {
				break
			}
			d.offset++
			if d.done() {
				return nil, d.errorf("trailing comma")
			}
		}
		res = append(res, opt)
	}
}

func flagOption(name string) Option {
	if len(name) > 2 && strings.EqualFold(name[:2], "no") {
		return Option{Name: name[2:], Values: []string{"false"}}
	}
	return Option{Name: name, Values: []string{"true"}}
}

// Lookup returns the values of the last option with the given name.
// Names are compared case-insensitively.
func (o Options) Lookup(name string) ([]string, bool) {
	for i := len(o) - 1; i >= 0; i-- {
		if strings.EqualFold(o[i].Name, name) {
			return o[i].Values, true
		}
	}
	return nil, false
}

// Get returns the first value of the last option with the given name, or
// the empty string if the option is not present.
func (o Options) Get(name string) string {
	v, ok := o.Lookup(name)
	if !ok || len(v) == 0 {
		return ""
	}
	return v[0]
}

func (o Options) String() string {
	parts := make([]string, len(o))
	for i, opt := range o {
		vals := make([]string, len(opt.Values))
		for j, v := range opt.Values {
			vals[j] = quoteValue(v)
		}
		parts[i] = opt.Name + "=" + strings.Join(vals, ",")
	}
	return strings.Join(parts, " ")
}

func quoteValue(v string) string {
	if v != "" && !strings.ContainsAny(v, " ,'\"\\{}") {
		return v
	}
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	return "'" + r.Replace(v) + "'"
}

type decoder struct {
	input  string
	offset int
}

func (d *decoder) done() bool {
	return d.offset >= len(d.input)
}

func (d *decoder) peek() byte {
	return d.input[d.offset]
}

func (d *decoder) errorf(format string, args ...any) error {
	return fmt.Errorf("%w at offset %d: %s", ErrSyntax, d.offset, fmt.Sprintf(format, args...))
}

func (d *decoder) consumeSpace() {
	for !d.done() && unicode.IsSpace(rune(d.peek())) {
		d.offset++
	}
}

func (d *decoder) parseName() string {
	d.consumeSpace()
	start := d.offset
	for !d.done() {
		c := d.peek()
		if unicode.IsSpace(rune(c)) || c == '=' {
			break
		}
		d.offset++
	}
	return d.input[start:d.offset]
}

func (d *decoder) parseValue() (string, error) {
	d.consumeSpace()
	if d.done() {
		return "", d.errorf("missing value")
	}
	switch c := d.peek(); c {
	case '{':
		return d.parseCollection()
	case '\'', '"':
		d.offset++
		return d.parseString(c)
	default:
		return d.parseString(0)
	}
}

// parseString reads a value up to the closing quote, or for unquoted
// values (quote == 0) up to the next space or comma.  A backslash
// escapes the following character, and a backslash followed by three
// octal digits gives the byte with that code.
func (d *decoder) parseString(quote byte) (string, error) {
	var b strings.Builder
	for !d.done() {
		c := d.peek()
		switch {
		case c == '\\':
			d.offset++
			if d.done() {
				return "", d.errorf("unterminated escape")
			}
			if n, ok := d.octal(); ok {
				b.WriteByte(n)
				continue
			}
			b.WriteByte(d.peek())
			d.offset++
			continue
		case quote != 0 && c == quote:
			d.offset++
			return b.String(), nil
		case quote == 0 && (c == ',' || unicode.IsSpace(rune(c))):
			return b.String(), nil
		case quote == 0 && (c == '\'' || c == '"'):
			return "", d.errorf("unexpected quote")
		case c < 0x20 || c == 0x7f:
			return "", d.errorf("invalid character %q", c)
		}
		b.WriteByte(c)
		d.offset++
	}
	if quote != 0 {
		return "", d.errorf("missing closing %c", quote)
	}
	return b.String(), nil
}

// octal reads three octal digits, if present.
func (d *decoder) octal() (byte, bool) {
	if d.offset+3 > len(d.input) {
		return 0, false
	}
	n, err := strconv.ParseUint(d.input[d.offset:d.offset+3], 8, 8)
	if err != nil {
		return 0, false
	}
	d.offset += 3
	return byte(n), true
}

// parseCollection returns a {...} value verbatim, including the braces.
func (d *decoder) parseCollection() (string, error) {
	start := d.offset
	depth := 0
	var quote byte
	for ; !d.done(); d.offset++ {
		c := d.peek()
		switch {
		case c == '\\':
			d.offset++
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				d.offset++
				return d.input[start:d.offset], nil
			}
		}
	}
	return "", d.errorf("unterminated collection")
}

// Resolution is a device resolution in dots per inch.
type Resolution struct {
	X int
	Y int
}

func (r Resolution) String() string {
	if r.X == r.Y {
		return fmt.Sprintf("%ddpi", r.X)
	}
	return fmt.Sprintf("%dx%ddpi", r.X, r.Y)
}

// ParseBool interprets s as a boolean value.  "yes", "on" and "true"
// evaluate to true, while "no", "off" and "false" evaluate to false.
// Other values are not permitted.
func ParseBool(s string) (v bool, ok bool) {
	switch strings.ToLower(s) {
	case "yes", "on", "true":
		return true, true
	case "no", "off", "false":
		return false, true
	}
	return false, false
}

// ParseNumber interprets s as a whole number, optionally with a sign.
func ParseNumber(s string) (v int, ok bool) {
	if !isNumber(s) {
		return 0, false
	}
	n, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, false
	}
	return int(n), true
}

// ParseResolution interprets s as a resolution.  Valid inputs look
// like "600dpi", "600x300dpi", "600dpc" or "600x300dpc".  Resolutions
// in dots per centimeter are converted to dots per inch.
func ParseResolution(s string) (v Resolution, ok bool) {
	if len(s) < 4 {
		return Resolution{}, false
	}
	suffix := strings.ToLower(s[len(s)-3:])
	if suffix != "dpi" && suffix != "dpc" {
		return Resolution{}, false
	}
	s1, s2, found := strings.Cut(s[:len(s)-3], "x")
	if !found {
		s2 = s1
	}
	if !isDigits(s1) || !isDigits(s2) {
		return Resolution{}, false
	}
	n1, err1 := strconv.ParseInt(s1, 10, 32)
	n2, err2 := strconv.ParseInt(s2, 10, 32)
	if err1 != nil || err2 != nil || n1 == 0 || n2 == 0 {
		return Resolution{}, false
	}

	if suffix == "dpi" {
		return Resolution{int(n1), int(n2)}, true
	}
	return Resolution{
		int(math.Floor(float64(n1)*2.54 + 0.5)),
		int(math.Floor(float64(n2)*2.54 + 0.5)),
	}, true
}

func isNumber(s string) bool {
	if len(s) > 0 && (s[0] == '-' || s[0] == '+') {
		s = s[1:]
	}
	return isDigits(s)
}

func isDigits(s string) bool {
	if len(s) == 0 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
