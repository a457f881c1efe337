package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/TheLox95/torrent-wire/pkg/bencode"
	bencodeinfo "github.com/TheLox95/torrent-wire/pkg/bencodeInfo"
	bencodetorrent "github.com/TheLox95/torrent-wire/pkg/bencodeTorrent"
	clientidentifier "github.com/TheLox95/torrent-wire/pkg/clientIdentifier"
	"github.com/TheLox95/torrent-wire/pkg/peer"
	peermanager "github.com/TheLox95/torrent-wire/pkg/peerManager"
	"github.com/TheLox95/torrent-wire/pkg/tracker"
)

type torrentLoader interface {
	LoadTorrent(name string) (*bencodetorrent.BencodeTorrent, error)
}

type announcer interface {
	Announce(announce string, r tracker.Request) (*tracker.Response, error)
}

type commands struct {
	out         io.Writer
	files       torrentLoader
	announcer   announcer
	peerID      clientidentifier.PeerID
	port        uint16
	dialTimeout time.Duration
}

func (c *commands) run(args []string) error {
	command := args[0]
	slog.Info("running command", "command", command)
	switch command {
	case "decode":
		return c.decode(args[1])
	case "info":
		return c.info(args[1])
	case "peers":
		return c.peers(args[1])
	case "handshake":
		if len(args) < 3 {
			return fmt.Errorf("handshake needs a torrent file and a peer address")
		}
		return c.handshake(args[1], args[2])
	case "swarm":
		return c.swarm(args[1])
	default:
		return fmt.Errorf("unknown command: %s", command)
	}
}

func (c *commands) decode(bencoded string) error {
	v, err := bencode.DecodeAll([]byte(bencoded))
	if err != nil {
		return err
	}
	out, err := json.Marshal(v)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.out, string(out))
	return nil
}

func (c *commands) info(file string) error {
	t, err := c.files.LoadTorrent(file)
	if err != nil {
		return err
	}
	hash, err := t.InfoHash()
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Tracker URL: %s\n", t.Announce)
	fmt.Fprintf(c.out, "Length: %d\n", t.Info.TotalLength())
	fmt.Fprintf(c.out, "Info Hash: %s\n", hash)
	fmt.Fprintf(c.out, "Piece Length: %d\n", t.Info.PieceLength)
	fmt.Fprintln(c.out, "Piece Hashes:")
	for _, h := range t.Info.Pieces.Split() {
		fmt.Fprintln(c.out, h)
	}
	if layout, ok := t.Info.Layout.(bencodeinfo.MultiFile); ok {
		fmt.Fprintln(c.out, "Files:")
		for _, f := range layout.Files {
			fmt.Fprintf(c.out, "%s (%d)\n", strings.Join(f.Path, "/"), f.Length)
		}
	}
	return nil
}

func (c *commands) client(t *bencodetorrent.BencodeTorrent) (clientidentifier.ClientIdentifier, error) {
	hash, err := t.InfoHash()
	if err != nil {
		return clientidentifier.ClientIdentifier{}, err
	}
	return clientidentifier.ClientIdentifier{InfoHash: hash, PeerID: c.peerID}, nil
}

func (c *commands) announce(t *bencodetorrent.BencodeTorrent) ([]peer.Peer, error) {
	client, err := c.client(t)
	if err != nil {
		return nil, err
	}
	req := tracker.NewRequest(client, c.port, t.Info.TotalLength())
	resp, err := c.announcer.Announce(t.Announce, req)
	if err != nil {
		return nil, err
	}
	if resp.WarningMessage != "" {
		slog.Warn("tracker warning", "message", resp.WarningMessage)
	}
	slog.Info("tracker answered", "peers", len(resp.Peers), "interval", resp.Interval)
	return resp.Peers, nil
}

func (c *commands) peers(file string) error {
	t, err := c.files.LoadTorrent(file)
	if err != nil {
		return err
	}
	peers, err := c.announce(t)
	if err != nil {
		return err
	}
	for _, p := range peers {
		fmt.Fprintln(c.out, p)
	}
	return nil
}

// swarm announces and then handshakes every peer the tracker returned.
func (c *commands) swarm(file string) error {
	t, err := c.files.LoadTorrent(file)
	if err != nil {
		return err
	}
	peers, err := c.announce(t)
	if err != nil {
		return err
	}
	client, err := c.client(t)
	if err != nil {
		return err
	}
	m := peermanager.New(client, c.dialTimeout)
	m.MaxConcurrent = 8
	results := m.HandshakeAll(peers)
	defer peermanager.Close(results)
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(c.out, "%s: %v\n", r.Peer, r.Err)
			continue
		}
		fmt.Fprintf(c.out, "%s: Peer ID: %s\n", r.Peer, r.Session.RemotePeerID)
	}
	return nil
}

func (c *commands) handshake(file, addr string) error {
	t, err := c.files.LoadTorrent(file)
	if err != nil {
		return err
	}
	p, err := parsePeer(addr)
	if err != nil {
		return err
	}
	client, err := c.client(t)
	if err != nil {
		return err
	}
	session, err := p.Connect(client, c.dialTimeout)
	if err != nil {
		return err
	}
	defer session.Conn.Close()
	fmt.Fprintf(c.out, "Peer ID: %s\n", session.RemotePeerID)
	return nil
}

func parsePeer(addr string) (peer.Peer, error) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return peer.Peer{}, fmt.Errorf("invalid peer address %q: %w", addr, err)
	}
	ip := net.ParseIP(host)
	if ip == nil {
		return peer.Peer{}, fmt.Errorf("invalid peer ip %q", host)
	}
	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil {
		return peer.Peer{}, fmt.Errorf("invalid peer port %q: %w", portStr, err)
	}
	return peer.Peer{IP: ip, Port: uint16(port)}, nil
}
