package bencode_test

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/TheLox95/torrent-wire/pkg/bencode"
)

func dictOf(pairs ...any) *bencode.Dict {
	d := bencode.NewDict()
	for i := 0; i < len(pairs); i += 2 {
		d.Set(pairs[i].(string), pairs[i+1].(bencode.Value))
	}
	return d
}

func decodeAndAssert(t *testing.T, input string, expected bencode.Value) {
	t.Helper()
	decoded, rest, err := bencode.Decode([]byte(input))
	if err != nil {
		t.Fatalf("Failed to decode input %q: %v", input, err)
	}
	if len(rest) != 0 {
		t.Errorf("decode %q left %q unconsumed", input, rest)
	}
	if !reflect.DeepEqual(decoded, expected) {
		t.Errorf("decode %q: expected %#v but got %#v", input, expected, decoded)
	}
}

func TestDecodeString(t *testing.T) {
	decodeAndAssert(t, "4:spam", bencode.String("spam"))
	decodeAndAssert(t, "0:", bencode.String(""))
	decodeAndAssert(t, "3:\x00\xff:", bencode.String("\x00\xff:"))
}

func TestDecodeInteger(t *testing.T) {
	decodeAndAssert(t, "i52e", bencode.Int(52))
	decodeAndAssert(t, "i-52e", bencode.Int(-52))
	decodeAndAssert(t, "i0e", bencode.Int(0))
	decodeAndAssert(t, "i9223372036854775807e", bencode.Int(9223372036854775807))
}

func TestDecodeList(t *testing.T) {
	decodeAndAssert(t, "l4:spam4:eggse", bencode.List{bencode.String("spam"), bencode.String("eggs")})
	decodeAndAssert(t, "le", bencode.List{})
	decodeAndAssert(t, "lli1eel9:test testelee", bencode.List{
		bencode.List{bencode.Int(1)},
		bencode.List{bencode.String("test test")},
		bencode.List{},
	})
}

func TestDecodeDictionary(t *testing.T) {
	decodeAndAssert(t, "d3:cow3:moo4:spam4:eggse", dictOf(
		"cow", bencode.String("moo"),
		"spam", bencode.String("eggs"),
	))
	decodeAndAssert(t, "d4:dictd9:space keyi4eee", dictOf(
		"dict", dictOf("space key", bencode.Int(4)),
	))
	decodeAndAssert(t, "de", bencode.NewDict())
}

func TestDecodeKeepsKeyOrder(t *testing.T) {
	v, _, err := bencode.Decode([]byte("d4:spam4:eggs3:cow3:mooe"))
	if err != nil {
		t.Fatal(err)
	}
	got := v.(*bencode.Dict).Keys()
	want := []string{"spam", "cow"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("keys = %q, want %q", got, want)
	}
}

func TestDecodeRemainder(t *testing.T) {
	v, rest, err := bencode.Decode([]byte("4:spami1e"))
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(v, bencode.String("spam")) {
		t.Errorf("value = %#v, want spam", v)
	}
	if string(rest) != "i1e" {
		t.Errorf("rest = %q, want %q", rest, "i1e")
	}

	if _, err := bencode.DecodeAll([]byte("4:spami1e")); !errors.Is(err, bencode.ErrMalformedEncoding) {
		t.Errorf("DecodeAll with trailing bytes: err = %v, want ErrMalformedEncoding", err)
	}
}

func TestMalformedBencode(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"unterminated integer", "i52"},
		{"integer with letters", "i5x2e"},
		{"empty integer", "ie"},
		{"lone minus", "i-e"},
		{"negative zero", "i-0e"},
		{"leading zero", "i03e"},
		{"negative leading zero", "i-03e"},
		{"integer overflow", "i9223372036854775808e"},
		{"string too long", "5:spam"},
		{"string length without colon", "4spam"},
		{"unterminated string length", "12"},
		{"string length leading zero", "04:spam"},
		{"unterminated list", "l4:spam"},
		{"malformed list element", "li13i2e"},
		{"unterminated dictionary", "d3:cow3:moo"},
		{"dictionary missing value", "d3:cowe"},
		{"integer key", "di1e3:mooe"},
		{"list key", "dle3:mooe"},
		{"duplicate key", "d3:cowi1e3:cowi2ee"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, _, err := bencode.Decode([]byte(tt.input))
			if !errors.Is(err, bencode.ErrMalformedEncoding) {
				t.Errorf("Decode(%q) = %#v, %v; want ErrMalformedEncoding", tt.input, v, err)
			}
		})
	}
}

func TestDecodeDepthLimit(t *testing.T) {
	nested := func(n int) string {
		return strings.Repeat("l", n) + strings.Repeat("e", n)
	}
	if _, err := bencode.DecodeAll([]byte(nested(bencode.MaxDepth))); err != nil {
		t.Errorf("%d nested lists: %v", bencode.MaxDepth, err)
	}
	for _, input := range []string{
		nested(bencode.MaxDepth + 1),
		nested(1 << 20),
		strings.Repeat("d1:a", bencode.MaxDepth+1) + "i1e" + strings.Repeat("e", bencode.MaxDepth+1),
	} {
		if _, _, err := bencode.Decode([]byte(input)); !errors.Is(err, bencode.ErrMalformedEncoding) {
			t.Errorf("Decode of %d bytes of nesting err = %v, want ErrMalformedEncoding", len(input), err)
		}
	}
}

func TestUnsupportedType(t *testing.T) {
	for _, input := range []string{"", "x", "-1", "e", "lxe"} {
		_, _, err := bencode.Decode([]byte(input))
		if !errors.Is(err, bencode.ErrUnsupportedType) {
			t.Errorf("Decode(%q) err = %v, want ErrUnsupportedType", input, err)
		}
	}
}
