package tracker

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	bencodeinfo "github.com/TheLox95/torrent-wire/pkg/bencodeInfo"
	clientidentifier "github.com/TheLox95/torrent-wire/pkg/clientIdentifier"
)

// DefaultPort is the port announced when none is configured.
const DefaultPort = 6881

// Request is one announce to a tracker.
type Request struct {
	InfoHash   bencodeinfo.Hash
	PeerID     clientidentifier.PeerID
	Port       uint16
	Uploaded   int64
	Downloaded int64
	Left       int64
	Compact    bool
}

// NewRequest starts an announce for a download that has nothing yet.
func NewRequest(client clientidentifier.ClientIdentifier, port uint16, left int64) Request {
	return Request{
		InfoHash: client.InfoHash,
		PeerID:   client.PeerID,
		Port:     port,
		Left:     left,
		Compact:  true,
	}
}

// Query returns the request's query string. Every field except info_hash is
// form-encoded; info_hash is raw bytes, so it is percent-encoded byte by byte
// and appended on its own.
func (r Request) Query() string {
	compact := "0"
	if r.Compact {
		compact = "1"
	}
	params := url.Values{
		"peer_id":    []string{string(r.PeerID[:])},
		"port":       []string{strconv.Itoa(int(r.Port))},
		"uploaded":   []string{strconv.FormatInt(r.Uploaded, 10)},
		"downloaded": []string{strconv.FormatInt(r.Downloaded, 10)},
		"left":       []string{strconv.FormatInt(r.Left, 10)},
		"compact":    []string{compact},
	}
	return params.Encode() + "&info_hash=" + EscapeBytes(r.InfoHash[:])
}

// EscapeBytes writes every byte of b as %XX with uppercase hex.
func EscapeBytes(b []byte) string {
	const hexDigits = "0123456789ABCDEF"
	var sb strings.Builder
	sb.Grow(3 * len(b))
	for _, c := range b {
		sb.WriteByte('%')
		sb.WriteByte(hexDigits[c>>4])
		sb.WriteByte(hexDigits[c&0x0f])
	}
	return sb.String()
}

// BuildURL appends the request's query to the announce URL, keeping any query
// the announce URL already carries.
func BuildURL(announce string, r Request) (string, error) {
	base, err := url.Parse(announce)
	if err != nil {
		return "", fmt.Errorf("could not parse announce %q: %w", announce, err)
	}
	if base.RawQuery != "" {
		base.RawQuery += "&" + r.Query()
	} else {
		base.RawQuery = r.Query()
	}
	return base.String(), nil
}
