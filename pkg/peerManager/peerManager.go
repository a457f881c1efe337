package peermanager

import (
	"log/slog"
	"sync"
	"time"

	clientidentifier "github.com/TheLox95/torrent-wire/pkg/clientIdentifier"
	"github.com/TheLox95/torrent-wire/pkg/peer"
)

// Connector opens a handshaken session with one peer.
type Connector func(p peer.Peer, client clientidentifier.ClientIdentifier, timeout time.Duration) (*peer.Session, error)

// Result is the outcome of handshaking one peer.
type Result struct {
	Peer    peer.Peer
	Session *peer.Session
	Err     error
}

// PeerManager handshakes a set of peers, each on its own connection.
type PeerManager struct {
	Client  clientidentifier.ClientIdentifier
	Timeout time.Duration
	// MaxConcurrent bounds the handshakes in flight; zero means no bound.
	MaxConcurrent int
	Connect       Connector
}

func New(client clientidentifier.ClientIdentifier, timeout time.Duration) *PeerManager {
	return &PeerManager{
		Client:  client,
		Timeout: timeout,
		Connect: peer.Peer.Connect,
	}
}

// HandshakeAll handshakes every peer and returns one result per peer, in the
// order given. Failed peers carry their error; nothing is retried.
func (m *PeerManager) HandshakeAll(peers []peer.Peer) []Result {
	results := make([]Result, len(peers))
	limit := m.MaxConcurrent
	if limit <= 0 || limit > len(peers) {
		limit = len(peers)
	}
	sem := make(chan struct{}, limit)

	var wg sync.WaitGroup
	for i, p := range peers {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, p peer.Peer) {
			defer wg.Done()
			defer func() { <-sem }()
			session, err := m.Connect(p, m.Client, m.Timeout)
			if err != nil {
				slog.Debug("handshake failed", "peer", p.String(), "err", err)
			}
			results[i] = Result{Peer: p, Session: session, Err: err}
		}(i, p)
	}
	wg.Wait()
	return results
}

// Close closes every session in results.
func Close(results []Result) {
	for _, r := range results {
		if r.Session != nil {
			r.Session.Conn.Close()
		}
	}
}
