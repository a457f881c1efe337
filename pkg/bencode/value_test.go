package bencode_test

import (
	"errors"
	"testing"

	"github.com/TheLox95/torrent-wire/pkg/bencode"
)

func TestDictAccessors(t *testing.T) {
	d := dictOf(
		"name", bencode.String("debian.iso"),
		"raw", bencode.String([]byte{0xff, 0xfe}),
		"length", bencode.Int(42),
		"files", bencode.List{},
		"info", bencode.NewDict(),
	)

	if s, err := d.GetString("name"); err != nil || s != "debian.iso" {
		t.Errorf("GetString(name) = %q, %v", s, err)
	}
	if n, err := d.GetInt("length"); err != nil || n != 42 {
		t.Errorf("GetInt(length) = %d, %v", n, err)
	}
	if _, err := d.GetList("files"); err != nil {
		t.Errorf("GetList(files): %v", err)
	}
	if _, err := d.GetDict("info"); err != nil {
		t.Errorf("GetDict(info): %v", err)
	}
	if b, err := d.GetBytes("raw"); err != nil || len(b) != 2 {
		t.Errorf("GetBytes(raw) = %x, %v", b, err)
	}

	failures := []struct {
		name string
		call func() error
	}{
		{"missing", func() error { _, err := d.GetInt("nope"); return err }},
		{"int as string", func() error { _, err := d.GetString("length"); return err }},
		{"string as int", func() error { _, err := d.GetInt("name"); return err }},
		{"list as dict", func() error { _, err := d.GetDict("files"); return err }},
		{"invalid utf8", func() error { _, err := d.GetString("raw"); return err }},
	}
	for _, f := range failures {
		if err := f.call(); !errors.Is(err, bencode.ErrSchema) {
			t.Errorf("%s: err = %v, want ErrSchema", f.name, err)
		}
	}
}

func TestDictSetNilPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Set with a nil value did not panic")
		}
	}()
	bencode.NewDict().Set("k", nil)
}

func TestDictSetKeepsPosition(t *testing.T) {
	d := dictOf("b", bencode.Int(1), "a", bencode.Int(2))
	d.Set("b", bencode.Int(3))
	if got := string(bencode.Encode(d)); got != "d1:bi3e1:ai2ee" {
		t.Errorf("encoded %q", got)
	}
	if d.Len() != 2 {
		t.Errorf("Len = %d, want 2", d.Len())
	}
}
