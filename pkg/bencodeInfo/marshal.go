package bencodeinfo

import (
	"bytes"
	"fmt"

	jackpal "github.com/jackpal/bencode-go"

	"github.com/TheLox95/torrent-wire/pkg/bencode"
)

type bencodeFile struct {
	Length int64    `bencode:"length"`
	Path   []string `bencode:"path"`
}

type bencodeSingleFile struct {
	Length      int64  `bencode:"length"`
	Name        string `bencode:"name"`
	PieceLength int64  `bencode:"piece length"`
	Pieces      string `bencode:"pieces"`
}

type bencodeMultiFile struct {
	Files       []bencodeFile `bencode:"files"`
	Name        string        `bencode:"name"`
	PieceLength int64         `bencode:"piece length"`
	Pieces      string        `bencode:"pieces"`
}

// Marshal returns the bencoding of the info dictionary. An info read by
// FromDict is re-encoded in its source key order; a constructed one is
// marshaled with sorted keys.
func (i *BencodeInfo) Marshal() ([]byte, error) {
	if i.raw != nil {
		return bencode.Encode(i.raw), nil
	}

	var v interface{}
	switch l := i.Layout.(type) {
	case SingleFile:
		v = bencodeSingleFile{
			Length:      l.Length,
			Name:        i.Name,
			PieceLength: i.PieceLength,
			Pieces:      string(i.Pieces.Bytes()),
		}
	case MultiFile:
		files := make([]bencodeFile, len(l.Files))
		for n, f := range l.Files {
			files[n] = bencodeFile{Length: f.Length, Path: f.Path}
		}
		v = bencodeMultiFile{
			Files:       files,
			Name:        i.Name,
			PieceLength: i.PieceLength,
			Pieces:      string(i.Pieces.Bytes()),
		}
	default:
		return nil, fmt.Errorf("%w: info has no layout", bencode.ErrSchema)
	}

	var buf bytes.Buffer
	if err := jackpal.Marshal(&buf, v); err != nil {
		return nil, fmt.Errorf("could not marshal info: %w", err)
	}
	return buf.Bytes(), nil
}

// Dict returns the info as a bencode dictionary. For an info read by FromDict
// this is the original dictionary, which callers must not modify.
func (i *BencodeInfo) Dict() (*bencode.Dict, error) {
	if i.raw != nil {
		return i.raw, nil
	}
	data, err := i.Marshal()
	if err != nil {
		return nil, err
	}
	v, err := bencode.DecodeAll(data)
	if err != nil {
		return nil, err
	}
	return v.(*bencode.Dict), nil
}
