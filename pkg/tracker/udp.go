package tracker

import (
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net"

	"github.com/TheLox95/torrent-wire/pkg/peer"
)

// ProtocolID is the magic constant that opens a UDP tracker connect request.
const ProtocolID = 0x41727101980

const (
	ConnectAction  = 0
	AnnounceAction = 1
	ErrorAction    = 3
)

const (
	connectLen        = 16
	announceLen       = 98
	announceHeaderLen = 20
	maxPacketLen      = 4096
)

// ErrMalformedPacket reports a UDP tracker packet that is too short or whose
// action or transaction id do not match the request.
var ErrMalformedPacket = errors.New("malformed udp tracker packet")

func BuildConnectRequest(transactionID uint32) []byte {
	buf := make([]byte, connectLen)
	binary.BigEndian.PutUint64(buf[0:8], ProtocolID)
	binary.BigEndian.PutUint32(buf[8:12], ConnectAction)
	binary.BigEndian.PutUint32(buf[12:16], transactionID)
	return buf
}

// checkHeader validates the action and transaction id that start every
// response and turns an error action into ErrTrackerFailure.
func checkHeader(buf []byte, action, transactionID uint32) error {
	if len(buf) < 8 {
		return fmt.Errorf("%w: %d bytes", ErrMalformedPacket, len(buf))
	}
	gotAction := binary.BigEndian.Uint32(buf[0:4])
	if got := binary.BigEndian.Uint32(buf[4:8]); got != transactionID {
		return fmt.Errorf("%w: transaction id %d, want %d", ErrMalformedPacket, got, transactionID)
	}
	if gotAction == ErrorAction {
		return fmt.Errorf("%w: %s", ErrTrackerFailure, buf[8:])
	}
	if gotAction != action {
		return fmt.Errorf("%w: action %d, want %d", ErrMalformedPacket, gotAction, action)
	}
	return nil
}

// ParseConnectResponse returns the connection id a tracker handed out.
func ParseConnectResponse(buf []byte, transactionID uint32) (uint64, error) {
	if err := checkHeader(buf, ConnectAction, transactionID); err != nil {
		return 0, err
	}
	if len(buf) < connectLen {
		return 0, fmt.Errorf("%w: wanted connect message to be %d bytes, got %d", ErrMalformedPacket, connectLen, len(buf))
	}
	return binary.BigEndian.Uint64(buf[8:16]), nil
}

func BuildAnnounceRequest(connectionID uint64, transactionID, key uint32, r Request) []byte {
	buf := make([]byte, announceLen)
	binary.BigEndian.PutUint64(buf[0:8], connectionID)
	binary.BigEndian.PutUint32(buf[8:12], AnnounceAction)
	binary.BigEndian.PutUint32(buf[12:16], transactionID)
	copy(buf[16:36], r.InfoHash[:])
	copy(buf[36:56], r.PeerID[:])
	binary.BigEndian.PutUint64(buf[56:64], uint64(r.Downloaded))
	binary.BigEndian.PutUint64(buf[64:72], uint64(r.Left))
	binary.BigEndian.PutUint64(buf[72:80], uint64(r.Uploaded))
	binary.BigEndian.PutUint32(buf[80:84], 0) // event: none
	binary.BigEndian.PutUint32(buf[84:88], 0) // ip: sender's
	binary.BigEndian.PutUint32(buf[88:92], key)
	binary.BigEndian.PutUint32(buf[92:96], 0xffffffff) // num_want: tracker default
	binary.BigEndian.PutUint16(buf[96:98], r.Port)
	return buf
}

func ParseAnnounceResponse(buf []byte, transactionID uint32) (*Response, error) {
	if err := checkHeader(buf, AnnounceAction, transactionID); err != nil {
		return nil, err
	}
	if len(buf) < announceHeaderLen {
		return nil, fmt.Errorf("%w: announce response of %d bytes", ErrMalformedPacket, len(buf))
	}
	peers, ok := peer.ParseCompact(buf[announceHeaderLen:])
	if !ok {
		return nil, fmt.Errorf("%w: peers length %d is not a multiple of %d", ErrMalformedPacket, len(buf)-announceHeaderLen, peer.CompactLen)
	}
	return &Response{
		Interval:   int64(binary.BigEndian.Uint32(buf[8:12])),
		Incomplete: int64(binary.BigEndian.Uint32(buf[12:16])),
		Complete:   int64(binary.BigEndian.Uint32(buf[16:20])),
		Peers:      peers,
	}, nil
}

// AnnounceUDP runs the connect and announce exchange on conn. Deadlines are
// the caller's to set.
func AnnounceUDP(conn net.Conn, r Request) (*Response, error) {
	transactionID := rand.Uint32()
	if _, err := conn.Write(BuildConnectRequest(transactionID)); err != nil {
		return nil, fmt.Errorf("failed to send connect request: %w", err)
	}
	buf := make([]byte, maxPacketLen)
	n, err := conn.Read(buf)
	if err != nil {
		return nil, fmt.Errorf("failed to read connect response: %w", err)
	}
	connectionID, err := ParseConnectResponse(buf[:n], transactionID)
	if err != nil {
		return nil, err
	}
	slog.Debug("udp tracker connected", "connection id", connectionID)

	transactionID = rand.Uint32()
	if _, err := conn.Write(BuildAnnounceRequest(connectionID, transactionID, rand.Uint32(), r)); err != nil {
		return nil, fmt.Errorf("failed to send announce request: %w", err)
	}
	n, err = conn.Read(buf)
	if err != nil {
		return nil, fmt.Errorf("failed to read announce response: %w", err)
	}
	return ParseAnnounceResponse(buf[:n], transactionID)
}
