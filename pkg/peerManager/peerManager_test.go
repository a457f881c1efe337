package peermanager

import (
	"errors"
	"net"
	"sync/atomic"
	"testing"
	"time"

	clientidentifier "github.com/TheLox95/torrent-wire/pkg/clientIdentifier"
	"github.com/TheLox95/torrent-wire/pkg/peer"
)

func TestHandshakeAllKeepsOrder(t *testing.T) {
	peers := []peer.Peer{
		{IP: net.IPv4(10, 0, 0, 1), Port: 1},
		{IP: net.IPv4(10, 0, 0, 2), Port: 2},
		{IP: net.IPv4(10, 0, 0, 3), Port: 3},
	}
	refused := errors.New("refused")

	var inFlight, maxInFlight atomic.Int32
	m := New(clientidentifier.ClientIdentifier{}, time.Second)
	m.MaxConcurrent = 2
	m.Connect = func(p peer.Peer, _ clientidentifier.ClientIdentifier, _ time.Duration) (*peer.Session, error) {
		n := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			old := maxInFlight.Load()
			if n <= old || maxInFlight.CompareAndSwap(old, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		if p.Port == 2 {
			return nil, refused
		}
		var id clientidentifier.PeerID
		id[0] = byte(p.Port)
		return &peer.Session{RemotePeerID: id}, nil
	}

	results := m.HandshakeAll(peers)
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	for i, r := range results {
		if r.Peer.Port != peers[i].Port {
			t.Errorf("results[%d] is for port %d", i, r.Peer.Port)
		}
	}
	if !errors.Is(results[1].Err, refused) || results[1].Session != nil {
		t.Errorf("results[1] = %+v, want refused", results[1])
	}
	if results[2].Err != nil || results[2].Session.RemotePeerID[0] != 3 {
		t.Errorf("results[2] = %+v", results[2])
	}
	if got := maxInFlight.Load(); got > 2 {
		t.Errorf("%d handshakes in flight, limit is 2", got)
	}
}

func TestHandshakeAllEmpty(t *testing.T) {
	m := New(clientidentifier.ClientIdentifier{}, time.Second)
	if got := m.HandshakeAll(nil); len(got) != 0 {
		t.Errorf("got %d results for no peers", len(got))
	}
}
