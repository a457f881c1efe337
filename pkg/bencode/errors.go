package bencode

import "errors"

var (
	// ErrMalformedEncoding reports a violation of the bencode grammar: a bad
	// length prefix, an unterminated integer, list or dictionary, or input
	// that ends before a value is complete.
	ErrMalformedEncoding = errors.New("malformed bencode")
	// ErrUnsupportedType reports a value whose leading byte is not one of
	// the four bencode tags, or an empty input.
	ErrUnsupportedType = errors.New("unsupported bencode type")
	// ErrSchema reports well-formed bencode whose shape does not match what
	// the caller expected: a missing key or a value of the wrong kind.
	ErrSchema = errors.New("bencode schema mismatch")
)
