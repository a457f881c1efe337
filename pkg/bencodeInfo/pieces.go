package bencodeinfo

import (
	"encoding/hex"
	"fmt"

	"github.com/TheLox95/torrent-wire/pkg/bencode"
)

// HashLen is the length of a SHA-1 digest.
const HashLen = 20

// Hash is a SHA-1 digest: a piece hash or an info hash.
type Hash [HashLen]byte

func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// PieceHashes holds the concatenated SHA-1 hash of every piece in one flat
// buffer whose length is a multiple of HashLen.
type PieceHashes struct {
	buf []byte
}

// NewPieceHashes copies buf into a PieceHashes.
func NewPieceHashes(buf []byte) (PieceHashes, error) {
	if len(buf)%HashLen != 0 {
		return PieceHashes{}, fmt.Errorf("%w: pieces length %d is not a multiple of %d", bencode.ErrSchema, len(buf), HashLen)
	}
	p := PieceHashes{buf: make([]byte, len(buf))}
	copy(p.buf, buf)
	return p, nil
}

// DecodePieceHashes builds a PieceHashes from a single bencode byte string.
func DecodePieceHashes(v bencode.Value) (PieceHashes, error) {
	s, ok := v.(bencode.String)
	if !ok {
		return PieceHashes{}, fmt.Errorf("%w: pieces is a %s, want string", bencode.ErrSchema, bencode.Kind(v))
	}
	return NewPieceHashes(s)
}

// Encode returns the hashes as one bencode byte string.
func (p PieceHashes) Encode() bencode.String {
	return bencode.String(p.Bytes())
}

func (p PieceHashes) Len() int {
	return len(p.buf) / HashLen
}

// Hash returns the hash of piece i. It panics if i is out of range.
func (p PieceHashes) Hash(i int) Hash {
	var h Hash
	copy(h[:], p.buf[i*HashLen:(i+1)*HashLen])
	return h
}

func (p PieceHashes) Split() []Hash {
	hashes := make([]Hash, p.Len())
	for i := range hashes {
		hashes[i] = p.Hash(i)
	}
	return hashes
}

func (p PieceHashes) Bytes() []byte {
	b := make([]byte, len(p.buf))
	copy(b, p.buf)
	return b
}
