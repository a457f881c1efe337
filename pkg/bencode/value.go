package bencode

import (
	"encoding/json"
	"fmt"
	"unicode/utf8"
)

// Value is one of String, Int, List or *Dict.
type Value interface {
	kind() string
}

// String is a bencode byte string. It is binary safe and may hold bytes that
// are not valid UTF-8.
type String []byte

// Int is a bencode integer.
type Int int64

// List is an ordered bencode list.
type List []Value

// Dict is a bencode dictionary. Keys keep the order in which they were set,
// so a decoded dictionary re-encodes to exactly the bytes it was read from.
type Dict struct {
	keys   []string
	values map[string]Value
}

func (String) kind() string { return "string" }
func (Int) kind() string    { return "integer" }
func (List) kind() string   { return "list" }
func (*Dict) kind() string  { return "dictionary" }

func (s String) String() string { return string(s) }

func (s String) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(s))
}

func NewDict() *Dict {
	return &Dict{values: make(map[string]Value)}
}

// Set stores v under key. A new key is appended after the existing ones; an
// existing key keeps its position. Set panics if v is nil, since a nil value
// has no encoding.
func (d *Dict) Set(key string, v Value) {
	if v == nil {
		panic(fmt.Sprintf("bencode: nil value for key %q", key))
	}
	if d.values == nil {
		d.values = make(map[string]Value)
	}
	if _, ok := d.values[key]; !ok {
		d.keys = append(d.keys, key)
	}
	d.values[key] = v
}

func (d *Dict) Get(key string) (Value, bool) {
	if d == nil {
		return nil, false
	}
	v, ok := d.values[key]
	return v, ok
}

func (d *Dict) Has(key string) bool {
	_, ok := d.Get(key)
	return ok
}

// Keys returns the keys in stored order.
func (d *Dict) Keys() []string {
	if d == nil {
		return nil
	}
	keys := make([]string, len(d.keys))
	copy(keys, d.keys)
	return keys
}

func (d *Dict) Len() int {
	if d == nil {
		return 0
	}
	return len(d.keys)
}

// MarshalJSON writes the dictionary as a JSON object in stored key order.
func (d *Dict) MarshalJSON() ([]byte, error) {
	out := []byte{'{'}
	for i, k := range d.Keys() {
		if i > 0 {
			out = append(out, ',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(d.values[k])
		if err != nil {
			return nil, err
		}
		out = append(out, key...)
		out = append(out, ':')
		out = append(out, val...)
	}
	return append(out, '}'), nil
}

func (d *Dict) lookup(key, want string) (Value, error) {
	v, ok := d.Get(key)
	if !ok {
		return nil, fmt.Errorf("%w: missing key %q", ErrSchema, key)
	}
	if got := v.kind(); got != want {
		return nil, fmt.Errorf("%w: key %q is a %s, want %s", ErrSchema, key, got, want)
	}
	return v, nil
}

// GetBytes returns the byte string stored under key.
func (d *Dict) GetBytes(key string) ([]byte, error) {
	v, err := d.lookup(key, "string")
	if err != nil {
		return nil, err
	}
	return v.(String), nil
}

// GetString returns the byte string stored under key, which must be valid
// UTF-8.
func (d *Dict) GetString(key string) (string, error) {
	b, err := d.GetBytes(key)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", fmt.Errorf("%w: key %q is not valid UTF-8", ErrSchema, key)
	}
	return string(b), nil
}

func (d *Dict) GetInt(key string) (int64, error) {
	v, err := d.lookup(key, "integer")
	if err != nil {
		return 0, err
	}
	return int64(v.(Int)), nil
}

func (d *Dict) GetList(key string) (List, error) {
	v, err := d.lookup(key, "list")
	if err != nil {
		return nil, err
	}
	return v.(List), nil
}

func (d *Dict) GetDict(key string) (*Dict, error) {
	v, err := d.lookup(key, "dictionary")
	if err != nil {
		return nil, err
	}
	return v.(*Dict), nil
}

// Kind names the kind of v for error messages.
func Kind(v Value) string {
	if v == nil {
		return "nil"
	}
	return v.kind()
}
