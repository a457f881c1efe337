package bencodeinfo

import (
	"fmt"
	"log/slog"
	"math"
	"unicode/utf8"

	"github.com/TheLox95/torrent-wire/pkg/bencode"
)

// Layout is SingleFile or MultiFile.
type Layout interface {
	layout()
}

type SingleFile struct {
	Length int64
}

type MultiFile struct {
	Files []File
}

func (SingleFile) layout() {}
func (MultiFile) layout()  {}

type File struct {
	Length int64
	Path   []string
}

// BencodeInfo is the info dictionary of a metainfo document.
type BencodeInfo struct {
	Name        string
	PieceLength int64
	Pieces      PieceHashes
	Layout      Layout

	// raw is the dictionary this info was decoded from. It is kept so the
	// info hash is computed over the same keys in the same order.
	raw *bencode.Dict
}

// FromDict maps a decoded info dictionary onto a BencodeInfo. The layout is
// chosen by which of "length" and "files" is present; having both or neither
// is an error.
func FromDict(d *bencode.Dict) (*BencodeInfo, error) {
	info := &BencodeInfo{raw: d}
	var err error

	if info.Name, err = d.GetString("name"); err != nil {
		return nil, err
	}
	if info.PieceLength, err = d.GetInt("piece length"); err != nil {
		return nil, err
	}
	if info.PieceLength <= 0 {
		return nil, fmt.Errorf("%w: piece length %d is not positive", bencode.ErrSchema, info.PieceLength)
	}
	pieces, ok := d.Get("pieces")
	if !ok {
		return nil, fmt.Errorf("%w: missing key %q", bencode.ErrSchema, "pieces")
	}
	if info.Pieces, err = DecodePieceHashes(pieces); err != nil {
		return nil, err
	}

	hasLength, hasFiles := d.Has("length"), d.Has("files")
	switch {
	case hasLength && hasFiles:
		return nil, fmt.Errorf("%w: info has both length and files", bencode.ErrSchema)
	case hasLength:
		length, err := d.GetInt("length")
		if err != nil {
			return nil, err
		}
		if length < 0 {
			return nil, fmt.Errorf("%w: negative length %d", bencode.ErrSchema, length)
		}
		info.Layout = SingleFile{Length: length}
	case hasFiles:
		list, err := d.GetList("files")
		if err != nil {
			return nil, err
		}
		files, err := decodeFiles(list)
		if err != nil {
			return nil, err
		}
		info.Layout = MultiFile{Files: files}
	default:
		return nil, fmt.Errorf("%w: info has neither length nor files", bencode.ErrSchema)
	}

	if n := int64(info.Pieces.Len()); n > math.MaxInt64/info.PieceLength {
		return nil, fmt.Errorf("%w: %d pieces of %d bytes overflow int64", bencode.ErrSchema, n, info.PieceLength)
	}

	slog.Debug("decoded info dictionary", "name", info.Name, "piece length", info.PieceLength, "pieces", info.Pieces.Len())
	return info, nil
}

func decodeFiles(list bencode.List) ([]File, error) {
	files := make([]File, 0, len(list))
	var total int64
	for i, item := range list {
		d, ok := item.(*bencode.Dict)
		if !ok {
			return nil, fmt.Errorf("%w: files[%d] is a %s, want dictionary", bencode.ErrSchema, i, bencode.Kind(item))
		}
		length, err := d.GetInt("length")
		if err != nil {
			return nil, fmt.Errorf("files[%d]: %w", i, err)
		}
		if length < 0 {
			return nil, fmt.Errorf("%w: files[%d] has negative length %d", bencode.ErrSchema, i, length)
		}
		if length > math.MaxInt64-total {
			return nil, fmt.Errorf("%w: files[%d] overflows the total length", bencode.ErrSchema, i)
		}
		total += length
		segments, err := d.GetList("path")
		if err != nil {
			return nil, fmt.Errorf("files[%d]: %w", i, err)
		}
		if len(segments) == 0 {
			return nil, fmt.Errorf("%w: files[%d] has an empty path", bencode.ErrSchema, i)
		}
		path := make([]string, len(segments))
		for j, seg := range segments {
			s, ok := seg.(bencode.String)
			if !ok {
				return nil, fmt.Errorf("%w: files[%d].path[%d] is a %s, want string", bencode.ErrSchema, i, j, bencode.Kind(seg))
			}
			if !utf8.Valid(s) {
				return nil, fmt.Errorf("%w: files[%d].path[%d] is not valid UTF-8", bencode.ErrSchema, i, j)
			}
			path[j] = string(s)
		}
		files = append(files, File{Length: length, Path: path})
	}
	return files, nil
}

// TotalLength is the length of the single file or the sum of all files.
func (i *BencodeInfo) TotalLength() int64 {
	switch l := i.Layout.(type) {
	case SingleFile:
		return l.Length
	case MultiFile:
		var total int64
		for _, f := range l.Files {
			total += f.Length
		}
		return total
	}
	return 0
}

func (i *BencodeInfo) PieceCount() int {
	return i.Pieces.Len()
}

// PieceLengthAt returns the length of piece idx; only the last piece may be
// shorter than PieceLength. It is zero for an index out of range.
func (i *BencodeInfo) PieceLengthAt(idx int) int64 {
	if idx < 0 || idx >= i.PieceCount() {
		return 0
	}
	begin := int64(idx) * i.PieceLength
	end := begin + i.PieceLength
	if total := i.TotalLength(); end > total {
		end = total
	}
	if end < begin {
		return 0
	}
	return end - begin
}
