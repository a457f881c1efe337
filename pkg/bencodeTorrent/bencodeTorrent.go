package bencodetorrent

import (
	"fmt"
	"log/slog"

	"github.com/TheLox95/torrent-wire/pkg/bencode"
	bencodeinfo "github.com/TheLox95/torrent-wire/pkg/bencodeInfo"
)

// BencodeTorrent is a parsed metainfo document.
type BencodeTorrent struct {
	Announce     string
	AnnounceList [][]string
	Info         *bencodeinfo.BencodeInfo
}

// Parse decodes a metainfo document. The whole input must be one dictionary.
func Parse(data []byte) (*BencodeTorrent, error) {
	v, err := bencode.DecodeAll(data)
	if err != nil {
		return nil, err
	}
	root, ok := v.(*bencode.Dict)
	if !ok {
		return nil, fmt.Errorf("%w: metainfo is a %s, want dictionary", bencode.ErrSchema, bencode.Kind(v))
	}

	var t BencodeTorrent
	if t.Announce, err = root.GetString("announce"); err != nil {
		return nil, err
	}
	if root.Has("announce-list") {
		if t.AnnounceList, err = announceList(root); err != nil {
			return nil, err
		}
	}
	infoDict, err := root.GetDict("info")
	if err != nil {
		return nil, err
	}
	if t.Info, err = bencodeinfo.FromDict(infoDict); err != nil {
		return nil, fmt.Errorf("info: %w", err)
	}

	slog.Debug("parsed metainfo", "announce", t.Announce, "tiers", len(t.AnnounceList), "name", t.Info.Name)
	return &t, nil
}

func announceList(root *bencode.Dict) ([][]string, error) {
	tiers, err := root.GetList("announce-list")
	if err != nil {
		return nil, err
	}
	out := make([][]string, 0, len(tiers))
	for i, tier := range tiers {
		urls, ok := tier.(bencode.List)
		if !ok {
			return nil, fmt.Errorf("%w: announce-list[%d] is a %s, want list", bencode.ErrSchema, i, bencode.Kind(tier))
		}
		row := make([]string, 0, len(urls))
		for j, u := range urls {
			s, ok := u.(bencode.String)
			if !ok {
				return nil, fmt.Errorf("%w: announce-list[%d][%d] is a %s, want string", bencode.ErrSchema, i, j, bencode.Kind(u))
			}
			row = append(row, string(s))
		}
		out = append(out, row)
	}
	return out, nil
}

// InfoHash is the identity of the document's content.
func (t *BencodeTorrent) InfoHash() (bencodeinfo.Hash, error) {
	return t.Info.InfoHash()
}

// Trackers lists the announce URL followed by every announce-list URL not
// already seen, in tier order.
func (t *BencodeTorrent) Trackers() []string {
	seen := map[string]bool{t.Announce: true}
	urls := []string{t.Announce}
	for _, tier := range t.AnnounceList {
		for _, u := range tier {
			if !seen[u] {
				seen[u] = true
				urls = append(urls, u)
			}
		}
	}
	return urls
}
