package clientidentifier

import (
	"strings"
	"testing"
)

func TestNewPeerID(t *testing.T) {
	a, err := NewPeerID(DefaultPrefix)
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewPeerID(DefaultPrefix)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(a[:]), DefaultPrefix) {
		t.Errorf("peer id %q lacks prefix %q", a[:], DefaultPrefix)
	}
	for _, c := range a[len(DefaultPrefix):] {
		if !strings.ContainsRune(peerIDAlphabet, rune(c)) {
			t.Errorf("peer id %q has non-alphanumeric byte %q", a[:], c)
		}
	}
	if a == b {
		t.Errorf("two generated peer ids are equal: %q", a[:])
	}
}

func TestNewPeerIDPrefixTooLong(t *testing.T) {
	if _, err := NewPeerID(strings.Repeat("x", PeerIDLen+1)); err == nil {
		t.Error("expected error for a prefix longer than a peer id")
	}
}

func TestParsePeerID(t *testing.T) {
	id, err := ParsePeerID("00112233445566778899")
	if err != nil {
		t.Fatal(err)
	}
	if string(id[:]) != "00112233445566778899" {
		t.Errorf("id = %q", id[:])
	}
	if _, err := ParsePeerID("short"); err == nil {
		t.Error("expected error for a short peer id")
	}
}
