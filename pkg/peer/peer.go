package peer

import (
	"encoding/binary"
	"fmt"
	"net"
	"strconv"
	"time"

	clientidentifier "github.com/TheLox95/torrent-wire/pkg/clientIdentifier"
)

// CompactLen is the size of one peer in the compact format: a big-endian
// IPv4 address followed by a big-endian port.
const CompactLen = 6

type Peer struct {
	IP   net.IP
	Port uint16
}

func (p Peer) String() string {
	return net.JoinHostPort(p.IP.String(), strconv.Itoa(int(p.Port)))
}

// ParseCompact splits buf into 6-byte peer records. It reports false if the
// length of buf is not a multiple of CompactLen.
func ParseCompact(buf []byte) ([]Peer, bool) {
	if len(buf)%CompactLen != 0 {
		return nil, false
	}
	peers := make([]Peer, len(buf)/CompactLen)
	for i := range peers {
		offset := i * CompactLen
		ip := make(net.IP, net.IPv4len)
		copy(ip, buf[offset:offset+4])
		peers[i] = Peer{IP: ip, Port: binary.BigEndian.Uint16(buf[offset+4 : offset+6])}
	}
	return peers, true
}

// Session is a connection that has completed the handshake.
type Session struct {
	Conn         net.Conn
	RemotePeerID clientidentifier.PeerID
}

// Connect dials p and runs the handshake. The deadline covers dialing and
// the handshake and is cleared before the session is returned.
func (p Peer) Connect(client clientidentifier.ClientIdentifier, timeout time.Duration) (*Session, error) {
	conn, err := net.DialTimeout("tcp", p.String(), timeout)
	if err != nil {
		return nil, fmt.Errorf("could not call peer %s: %w", p, err)
	}
	session, err := NewSession(conn, client, timeout)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("peer %s: %w", p, err)
	}
	return session, nil
}

// NewSession runs the handshake over an open connection within timeout. The
// caller closes conn if an error is returned.
func NewSession(conn net.Conn, client clientidentifier.ClientIdentifier, timeout time.Duration) (*Session, error) {
	if err := conn.SetDeadline(time.Now().Add(timeout)); err != nil {
		return nil, fmt.Errorf("could not set handshake deadline: %w", err)
	}
	remote, err := Exchange(conn, client)
	if err != nil {
		return nil, err
	}
	if err := conn.SetDeadline(time.Time{}); err != nil {
		return nil, fmt.Errorf("could not clear handshake deadline: %w", err)
	}
	return &Session{Conn: conn, RemotePeerID: remote}, nil
}
