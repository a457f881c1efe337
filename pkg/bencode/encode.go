package bencode

import (
	"fmt"
	"strconv"
)

// Encode returns the bencoding of v. Dictionaries are written in their stored
// key order; Encode never sorts.
func Encode(v Value) []byte {
	return Append(nil, v)
}

// Append appends the bencoding of v to dst and returns the extended slice.
// It panics if v, or any list element inside it, is nil.
func Append(dst []byte, v Value) []byte {
	switch v := v.(type) {
	case String:
		dst = strconv.AppendInt(dst, int64(len(v)), 10)
		dst = append(dst, ':')
		return append(dst, v...)
	case Int:
		dst = append(dst, 'i')
		dst = strconv.AppendInt(dst, int64(v), 10)
		return append(dst, 'e')
	case List:
		dst = append(dst, 'l')
		for _, item := range v {
			dst = Append(dst, item)
		}
		return append(dst, 'e')
	case *Dict:
		dst = append(dst, 'd')
		for _, k := range v.Keys() {
			dst = Append(dst, String(k))
			dst = Append(dst, v.values[k])
		}
		return append(dst, 'e')
	default:
		panic(fmt.Sprintf("bencode: cannot encode %T", v))
	}
}
