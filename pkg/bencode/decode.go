package bencode

import (
	"fmt"
	"log/slog"
	"strconv"
)

// MaxDepth is the deepest nesting of lists and dictionaries Decode accepts.
const MaxDepth = 512

// decoder walks a single backing buffer with an explicit position, so nested
// lists and dictionaries never copy or re-slice the input.
type decoder struct {
	data  []byte
	pos   int
	depth int
}

// Decode reads one value from the front of data and returns it together with
// the bytes that follow it. Byte strings in the result share memory with data.
//
// Integers and length prefixes must be canonical: no leading zeros, no "-0"
// and no empty digit run. Dictionary keys keep the order they appear in and a
// repeated key is rejected. Nesting deeper than MaxDepth is malformed.
func Decode(data []byte) (Value, []byte, error) {
	d := &decoder{data: data}
	if len(data) == 0 {
		return nil, nil, fmt.Errorf("%w: empty input", ErrUnsupportedType)
	}
	v, err := d.value()
	if err != nil {
		return nil, nil, err
	}
	return v, data[d.pos:], nil
}

// DecodeAll is Decode for inputs that must hold exactly one value.
func DecodeAll(data []byte) (Value, error) {
	v, rest, err := Decode(data)
	if err != nil {
		return nil, err
	}
	if len(rest) != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes after value", ErrMalformedEncoding, len(rest))
	}
	return v, nil
}

func (d *decoder) malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s at offset %d", ErrMalformedEncoding, fmt.Sprintf(format, args...), d.pos)
}

func (d *decoder) value() (Value, error) {
	if d.pos >= len(d.data) {
		return nil, d.malformed("unexpected end of input")
	}
	switch c := d.data[d.pos]; {
	case c >= '0' && c <= '9':
		return d.str()
	case c == 'i':
		return d.integer()
	case c == 'l':
		return d.list()
	case c == 'd':
		return d.dict()
	default:
		return nil, fmt.Errorf("%w: leading byte %q at offset %d", ErrUnsupportedType, c, d.pos)
	}
}

func (d *decoder) str() (String, error) {
	start := d.pos
	for d.pos < len(d.data) && d.data[d.pos] != ':' {
		if c := d.data[d.pos]; c < '0' || c > '9' {
			return nil, d.malformed("non-digit %q in string length", c)
		}
		d.pos++
	}
	if d.pos >= len(d.data) {
		return nil, d.malformed("unterminated string length")
	}
	digits := d.data[start:d.pos]
	if len(digits) > 1 && digits[0] == '0' {
		d.pos = start
		return nil, d.malformed("string length %q has a leading zero", digits)
	}
	n, err := strconv.Atoi(string(digits))
	if err != nil {
		d.pos = start
		return nil, d.malformed("string length %q out of range", digits)
	}
	d.pos++ // ':'
	if n > len(d.data)-d.pos {
		return nil, d.malformed("string length %d exceeds the %d bytes left", n, len(d.data)-d.pos)
	}
	s := String(d.data[d.pos : d.pos+n : d.pos+n])
	d.pos += n
	return s, nil
}

func (d *decoder) integer() (Int, error) {
	d.pos++ // 'i'
	start := d.pos
	for d.pos < len(d.data) && d.data[d.pos] != 'e' {
		c := d.data[d.pos]
		if (c < '0' || c > '9') && !(c == '-' && d.pos == start) {
			return 0, d.malformed("non-digit %q in integer", c)
		}
		d.pos++
	}
	if d.pos >= len(d.data) {
		return 0, d.malformed("unterminated integer")
	}
	digits := string(d.data[start:d.pos])
	switch {
	case digits == "" || digits == "-":
		return 0, d.malformed("integer has no digits")
	case digits == "-0" || (len(digits) > 1 && digits[0] == '0') || (len(digits) > 2 && digits[:2] == "-0"):
		return 0, d.malformed("integer %q is not canonical", digits)
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, d.malformed("integer %q out of range", digits)
	}
	d.pos++ // 'e'
	return Int(n), nil
}

func (d *decoder) enter() error {
	if d.depth >= MaxDepth {
		return d.malformed("nesting deeper than %d", MaxDepth)
	}
	d.depth++
	return nil
}

func (d *decoder) list() (List, error) {
	if err := d.enter(); err != nil {
		return nil, err
	}
	defer func() { d.depth-- }()
	d.pos++ // 'l'
	list := List{}
	for {
		if d.pos >= len(d.data) {
			return nil, d.malformed("unterminated list")
		}
		if d.data[d.pos] == 'e' {
			d.pos++
			return list, nil
		}
		v, err := d.value()
		if err != nil {
			return nil, err
		}
		list = append(list, v)
	}
}

func (d *decoder) dict() (*Dict, error) {
	if err := d.enter(); err != nil {
		return nil, err
	}
	defer func() { d.depth-- }()
	d.pos++ // 'd'
	dict := NewDict()
	for {
		if d.pos >= len(d.data) {
			return nil, d.malformed("unterminated dictionary")
		}
		c := d.data[d.pos]
		if c == 'e' {
			d.pos++
			return dict, nil
		}
		if c < '0' || c > '9' {
			return nil, d.malformed("dictionary key is not a byte string")
		}
		keyAt := d.pos
		key, err := d.str()
		if err != nil {
			return nil, err
		}
		if dict.Has(string(key)) {
			d.pos = keyAt
			return nil, d.malformed("duplicate dictionary key %q", key)
		}
		if d.pos < len(d.data) && d.data[d.pos] == 'e' {
			return nil, d.malformed("missing value for key %q", key)
		}
		v, err := d.value()
		if err != nil {
			return nil, err
		}
		slog.Debug("decoded dictionary entry", "key", string(key), "kind", v.kind())
		dict.Set(string(key), v)
	}
}
