package bencodeinfo

import (
	"crypto/sha1"
)

// InfoHash is the SHA-1 of the info dictionary's bencoding. Because a decoded
// dictionary keeps the key order it was read with, the bytes hashed are the
// bytes that appeared in the metainfo file.
func (i *BencodeInfo) InfoHash() (Hash, error) {
	data, err := i.Marshal()
	if err != nil {
		return Hash{}, err
	}
	return sha1.Sum(data), nil
}
