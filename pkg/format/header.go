// Package format parses and writes the dictionary file header (spec.md
// §6): magic, format-version, option flags, locale, attribute map, and
// size. The fixed-width prefix is reinterpreted in place with
// github.com/outofforest/photon (zero-copy struct<->byte-slice casts,
// the same technique the teacher's storage layer uses for its node
// headers) and the variable-length attribute block is walked as
// NUL-terminated key/value pairs.
package format

import (
	"bytes"
	"sort"

	"github.com/outofforest/photon"
	"github.com/pkg/errors"

	"github.com/bastiangx/wordict/internal/logger"
	"github.com/bastiangx/wordict/pkg/codec"
)

var log = logger.New("format")

// Magic identifies a wordict dictionary file. Opening a file with any
// other 4-byte prefix fails (spec.md §3 invariant).
var Magic = [4]byte{'W', 'D', 'C', 'T'}

// SupportedVersions whitelists the format versions this build can open.
// Unknown versions fail open (spec.md §3, §6).
var SupportedVersions = map[uint16]bool{
	3: true,
	4: true,
	5: true,
}

// Option flags, packed into Header.OptionFlags.
const (
	OptionGermanUmlautDiacritics uint16 = 1 << 0
	OptionFrenchLigatures        uint16 = 1 << 1
	OptionContractions           uint16 = 1 << 2
)

// Recognised attribute keys. On read, a missing or non-UTF-8 value is
// replaced by "?" (spec.md §6 question-mark policy).
const (
	AttrDictionary = "dictionary"
	AttrVersion    = "version"
	AttrDate       = "date"
)

const questionMarkPolicy = "?"

// fixedPrefix is the portion of the header photon can cast directly:
// magic, format version, option flags, and the total header size. The
// attribute block that follows is variable-length and parsed
// separately.
type fixedPrefix struct {
	Magic         [4]byte
	FormatVersion uint16
	OptionFlags   uint16
	HeaderSize    uint32
}

const fixedPrefixSize = 12

// Header is the parsed file header.
type Header struct {
	FormatVersion uint16
	OptionFlags   uint16
	Attributes    map[string]string
}

// NewHeader builds a header for a freshly-constructed in-memory
// dictionary at the given format version and locale.
func NewHeader(formatVersion uint16, locale string) *Header {
	return &Header{
		FormatVersion: formatVersion,
		OptionFlags:   0,
		Attributes: map[string]string{
			AttrDictionary: locale,
		},
	}
}

// Parse reads a header from the front of raw. It returns the parsed
// Header and the number of bytes consumed (HeaderSize), so the caller
// can locate the body at that offset.
func Parse(raw []byte) (*Header, int, error) {
	if len(raw) < fixedPrefixSize {
		return nil, 0, errors.New("format: buffer too small for header")
	}

	prefix := *photon.FromBytes[fixedPrefix](raw[:fixedPrefixSize])
	if prefix.Magic != Magic {
		return nil, 0, errors.Errorf("format: bad magic %x", prefix.Magic)
	}
	if !SupportedVersions[prefix.FormatVersion] {
		return nil, 0, errors.Errorf("format: unsupported version %d", prefix.FormatVersion)
	}
	if int(prefix.HeaderSize) < fixedPrefixSize || int(prefix.HeaderSize) > len(raw) {
		return nil, 0, errors.Errorf("format: header size %d out of range", prefix.HeaderSize)
	}

	attrBlock := raw[fixedPrefixSize:prefix.HeaderSize]
	attrs, err := parseAttributeBlock(attrBlock)
	if err != nil {
		log.Warnf("attribute block parse error, continuing with partial attributes: %v", err)
	}
	for _, key := range []string{AttrDictionary, AttrVersion, AttrDate} {
		if _, ok := attrs[key]; !ok {
			attrs[key] = questionMarkPolicy
		}
	}

	return &Header{
		FormatVersion: prefix.FormatVersion,
		OptionFlags:   prefix.OptionFlags,
		Attributes:    attrs,
	}, int(prefix.HeaderSize), nil
}

// parseAttributeBlock walks repeated {KeyZStr, ValueZStr} pairs
// terminated by an empty key (spec.md §6).
func parseAttributeBlock(block []byte) (map[string]string, error) {
	attrs := make(map[string]string)
	pos := 0
	for pos < len(block) {
		key, keyLen, ok := readZString(block[pos:])
		if !ok {
			return attrs, errors.New("format: truncated attribute key")
		}
		pos += keyLen
		if key == "" {
			return attrs, nil
		}
		valueBytes, valueLen, ok := readZStringBytes(block[pos:])
		if !ok {
			return attrs, errors.New("format: truncated attribute value")
		}
		pos += valueLen

		if isRecognisedAttr(key) && !bytes.Equal(valueBytes, []byte(questionMarkPolicy)) {
			if !codec.IsValidUTF8(valueBytes) {
				attrs[key] = questionMarkPolicy
				continue
			}
		}
		attrs[key] = string(valueBytes)
	}
	return attrs, nil
}

func isRecognisedAttr(key string) bool {
	return key == AttrDictionary || key == AttrVersion || key == AttrDate
}

func readZString(b []byte) (string, int, bool) {
	raw, n, ok := readZStringBytes(b)
	if !ok {
		return "", 0, false
	}
	return string(raw), n, true
}

func readZStringBytes(b []byte) ([]byte, int, bool) {
	idx := bytes.IndexByte(b, 0)
	if idx < 0 {
		return nil, 0, false
	}
	return b[:idx], idx + 1, true
}

// Write serialises h as a header byte block. The block's length is
// recorded in its HeaderSize field.
func (h *Header) Write() []byte {
	var attrBlock bytes.Buffer
	for _, key := range orderedAttrKeys(h.Attributes) {
		attrBlock.WriteString(key)
		attrBlock.WriteByte(0)
		attrBlock.WriteString(h.Attributes[key])
		attrBlock.WriteByte(0)
	}
	attrBlock.WriteByte(0) // empty key terminates the block

	headerSize := fixedPrefixSize + attrBlock.Len()

	out := make([]byte, headerSize)
	prefix := fixedPrefix{
		Magic:         Magic,
		FormatVersion: h.FormatVersion,
		OptionFlags:   h.OptionFlags,
		HeaderSize:    uint32(headerSize),
	}
	*photon.FromBytes[fixedPrefix](out[:fixedPrefixSize]) = prefix
	copy(out[fixedPrefixSize:], attrBlock.Bytes())
	return out
}

// orderedAttrKeys returns attribute keys in a stable order so that two
// consecutive writes of an unchanged Header produce byte-identical
// output (spec.md §8 "Idempotence").
func orderedAttrKeys(attrs map[string]string) []string {
	preferred := []string{AttrDictionary, AttrVersion, AttrDate}
	seen := make(map[string]bool, len(preferred))
	keys := make([]string, 0, len(attrs))
	for _, k := range preferred {
		if _, ok := attrs[k]; ok {
			keys = append(keys, k)
			seen[k] = true
		}
	}
	rest := make([]string, 0, len(attrs)-len(keys))
	for k := range attrs {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	return append(keys, rest...)
}
