// Package codec implements the small-int and codepoint encodings used
// throughout the dictionary file format: a LEB128-style variable-length
// unsigned integer codec, and codepoint<->byte conversions for the word
// records of the dictionary body.
package codec

import (
	"bytes"
	"errors"
	"unicode/utf8"
)

// ErrTruncated is returned when a varint's continuation bit chain runs
// past the end of the available bytes.
var ErrTruncated = errors.New("codec: truncated varint")

// MaxVarintBytes bounds a single varint's encoded length; the dictionary
// format never encodes values needing more than 5 bytes (32-bit range).
const MaxVarintBytes = 5

// PutUvarint appends the LEB128 encoding of v to dst and returns the
// extended slice.
func PutUvarint(dst []byte, v uint32) []byte {
	for v >= 0x80 {
		dst = append(dst, byte(v)|0x80)
		v >>= 7
	}
	return append(dst, byte(v))
}

// Uvarint decodes a LEB128-encoded uint32 from the front of src,
// returning the value and the number of bytes consumed. It returns
// ErrTruncated if src ends mid-sequence.
func Uvarint(src []byte) (uint32, int, error) {
	var result uint32
	var shift uint
	for i, b := range src {
		if i >= MaxVarintBytes {
			return 0, 0, ErrTruncated
		}
		result |= uint32(b&0x7f) << shift
		if b&0x80 == 0 {
			return result, i + 1, nil
		}
		shift += 7
	}
	return 0, 0, ErrTruncated
}

// CodepointsToUTF8 renders a codepoint sequence (as used by Word) as a
// UTF-8 byte string.
func CodepointsToUTF8(codepoints []rune) []byte {
	var buf bytes.Buffer
	buf.Grow(len(codepoints) * utf8.UTFMax)
	for _, r := range codepoints {
		buf.WriteRune(r)
	}
	return buf.Bytes()
}

// UTF8ToCodepoints parses a UTF-8 byte string into its codepoint
// sequence. Each byte of an invalid encoding decodes to one
// utf8.RuneError; no "?" replacement is applied here.
func UTF8ToCodepoints(b []byte) []rune {
	return []rune(string(b))
}

// IsValidUTF8 reports whether b is a well-formed UTF-8 byte string.
func IsValidUTF8(b []byte) bool {
	return utf8.Valid(b)
}
