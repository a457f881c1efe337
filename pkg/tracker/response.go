package tracker

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/TheLox95/torrent-wire/pkg/bencode"
	"github.com/TheLox95/torrent-wire/pkg/peer"
)

// ErrTrackerFailure reports a tracker that answered with a failure reason.
var ErrTrackerFailure = errors.New("tracker failure")

// Response is a decoded announce response.
type Response struct {
	// Interval is the number of seconds to wait before the next announce.
	Interval       int64
	MinInterval    int64
	Complete       int64
	Incomplete     int64
	WarningMessage string
	Peers          []peer.Peer
}

// DecodeResponse decodes a compact announce response. Only the compact peer
// format is understood.
func DecodeResponse(data []byte) (*Response, error) {
	v, err := bencode.DecodeAll(data)
	if err != nil {
		return nil, err
	}
	d, ok := v.(*bencode.Dict)
	if !ok {
		return nil, fmt.Errorf("%w: tracker response is a %s, want dictionary", bencode.ErrSchema, bencode.Kind(v))
	}
	if d.Has("failure reason") {
		reason, err := d.GetBytes("failure reason")
		if err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s", ErrTrackerFailure, reason)
	}

	var resp Response
	if resp.Interval, err = d.GetInt("interval"); err != nil {
		return nil, err
	}
	optional := []struct {
		key string
		dst *int64
	}{
		{"min interval", &resp.MinInterval},
		{"complete", &resp.Complete},
		{"incomplete", &resp.Incomplete},
	}
	for _, o := range optional {
		if !d.Has(o.key) {
			continue
		}
		if *o.dst, err = d.GetInt(o.key); err != nil {
			return nil, err
		}
	}
	if d.Has("warning message") {
		warning, err := d.GetBytes("warning message")
		if err != nil {
			return nil, err
		}
		resp.WarningMessage = string(warning)
	}

	peersBin, err := d.GetBytes("peers")
	if err != nil {
		return nil, err
	}
	peers, ok := peer.ParseCompact(peersBin)
	if !ok {
		return nil, fmt.Errorf("%w: peers length %d is not a multiple of %d", bencode.ErrMalformedEncoding, len(peersBin), peer.CompactLen)
	}
	resp.Peers = peers

	slog.Debug("decoded tracker response", "interval", resp.Interval, "peers", len(resp.Peers))
	return &resp, nil
}
