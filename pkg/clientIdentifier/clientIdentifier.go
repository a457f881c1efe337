package clientidentifier

import (
	"crypto/rand"
	"fmt"

	bencodeinfo "github.com/TheLox95/torrent-wire/pkg/bencodeInfo"
)

// PeerIDLen is the length of a peer id.
const PeerIDLen = 20

// DefaultPrefix marks peer ids generated by this client, in the
// "-XXnnnn-" style most clients use.
const DefaultPrefix = "-TW0001-"

const peerIDAlphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

type PeerID [PeerIDLen]byte

func (id PeerID) String() string {
	return fmt.Sprintf("%x", id[:])
}

// ClientIdentifier carries the content identity and our own peer id into
// every tracker request and handshake.
type ClientIdentifier struct {
	InfoHash bencodeinfo.Hash
	PeerID   PeerID
}

// NewPeerID returns prefix followed by random alphanumerics. The prefix may
// be at most PeerIDLen bytes.
func NewPeerID(prefix string) (PeerID, error) {
	var id PeerID
	if len(prefix) > PeerIDLen {
		return id, fmt.Errorf("peer id prefix %q is longer than %d bytes", prefix, PeerIDLen)
	}
	n := copy(id[:], prefix)
	random := make([]byte, PeerIDLen-n)
	if _, err := rand.Read(random); err != nil {
		return id, fmt.Errorf("error generating peer id: %w", err)
	}
	for i, b := range random {
		id[n+i] = peerIDAlphabet[int(b)%len(peerIDAlphabet)]
	}
	return id, nil
}

// ParsePeerID accepts a literal peer id of exactly PeerIDLen bytes.
func ParsePeerID(s string) (PeerID, error) {
	var id PeerID
	if len(s) != PeerIDLen {
		return id, fmt.Errorf("peer id %q must be %d bytes, got %d", s, PeerIDLen, len(s))
	}
	copy(id[:], s)
	return id, nil
}
