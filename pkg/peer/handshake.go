package peer

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"

	bencodeinfo "github.com/TheLox95/torrent-wire/pkg/bencodeInfo"
	clientidentifier "github.com/TheLox95/torrent-wire/pkg/clientIdentifier"
)

// Protocol is the protocol tag every handshake starts with.
const Protocol = "BitTorrent protocol"

// Field offsets of the handshake record. The record is packed by hand so no
// padding ever reaches the wire.
const (
	pstrlenOffset  = 0
	pstrOffset     = 1
	reservedOffset = pstrOffset + len(Protocol)
	infoHashOffset = reservedOffset + 8
	peerIDOffset   = infoHashOffset + bencodeinfo.HashLen
	// HandshakeLen is the size of a handshake: 68 bytes.
	HandshakeLen = peerIDOffset + clientidentifier.PeerIDLen
)

// ErrProtocolMismatch reports a handshake whose protocol tag is wrong or
// whose info hash is not the one we asked for.
var ErrProtocolMismatch = errors.New("handshake protocol mismatch")

// Handshake is the 68-byte record exchanged at the start of a peer session.
type Handshake [HandshakeLen]byte

func NewHandshake(client clientidentifier.ClientIdentifier) Handshake {
	var h Handshake
	h[pstrlenOffset] = byte(len(Protocol))
	copy(h[pstrOffset:reservedOffset], Protocol)
	// reserved bytes stay zero
	copy(h[infoHashOffset:peerIDOffset], client.InfoHash[:])
	copy(h[peerIDOffset:], client.PeerID[:])
	return h
}

func (h *Handshake) Reserved() [8]byte {
	var r [8]byte
	copy(r[:], h[reservedOffset:infoHashOffset])
	return r
}

func (h *Handshake) InfoHash() bencodeinfo.Hash {
	var ih bencodeinfo.Hash
	copy(ih[:], h[infoHashOffset:peerIDOffset])
	return ih
}

func (h *Handshake) PeerID() clientidentifier.PeerID {
	var id clientidentifier.PeerID
	copy(id[:], h[peerIDOffset:])
	return id
}

// Validate checks the protocol tag length and tag.
func (h *Handshake) Validate() error {
	if n := h[pstrlenOffset]; int(n) != len(Protocol) {
		return fmt.Errorf("%w: protocol tag length %d, want %d", ErrProtocolMismatch, n, len(Protocol))
	}
	if tag := h[pstrOffset:reservedOffset]; !bytes.Equal(tag, []byte(Protocol)) {
		return fmt.Errorf("%w: protocol tag %q", ErrProtocolMismatch, tag)
	}
	return nil
}

// Exchange writes our handshake to rw, reads the remote's handshake back into
// the same buffer and returns the remote peer id. There is no retry: any
// malformed reply ends the attempt.
func Exchange(rw io.ReadWriter, client clientidentifier.ClientIdentifier) (clientidentifier.PeerID, error) {
	h := NewHandshake(client)
	if _, err := rw.Write(h[:]); err != nil {
		return clientidentifier.PeerID{}, fmt.Errorf("could not send handshake: %w", err)
	}
	if _, err := io.ReadFull(rw, h[:]); err != nil {
		return clientidentifier.PeerID{}, fmt.Errorf("could not read handshake: %w", err)
	}
	if err := h.Validate(); err != nil {
		return clientidentifier.PeerID{}, err
	}
	if got := h.InfoHash(); got != client.InfoHash {
		return clientidentifier.PeerID{}, fmt.Errorf("%w: expected info hash %s but got %s", ErrProtocolMismatch, client.InfoHash, got)
	}
	remote := h.PeerID()
	slog.Debug("handshake complete", "info hash", client.InfoHash.String(), "remote peer id", remote.String())
	return remote, nil
}
