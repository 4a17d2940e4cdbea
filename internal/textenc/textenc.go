// Package textenc decodes source bytes using a declared text encoding.
package textenc

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// DefaultEncoding is used when no encoding is declared.
const DefaultEncoding = "utf-8"

var (
	// ErrUnknownEncoding is returned for names the IANA index does not know.
	ErrUnknownEncoding = errors.New("unknown text encoding")
	// ErrInvalidText is returned when bytes are not valid in the declared encoding.
	ErrInvalidText = errors.New("invalid text for encoding")
)

var utf8BOM = []byte{0xef, 0xbb, 0xbf}

// Decoder turns raw source bytes into text.
type Decoder struct {
	name     string
	encoding encoding.Encoding
}

// Lookup resolves an IANA encoding name ("utf-8", "windows-1252", "utf-16le").
func Lookup(name string) (*Decoder, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultEncoding
	}

	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil || enc == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, name)
	}

	canonical, err := ianaindex.IANA.Name(enc)
	if err != nil {
		canonical = strings.ToLower(name)
	}

	return &Decoder{name: strings.ToLower(canonical), encoding: enc}, nil
}

// Name returns the canonical lower-case IANA name of the declared encoding.
func (d *Decoder) Name() string {
	return d.name
}

// Decode converts raw to a string. A byte order mark overrides the declared
// encoding, as compilers do when they read sources. It returns the text and
// the name of the encoding actually used.
func (d *Decoder) Decode(raw []byte) (string, string, error) {
	switch {
	case bytes.HasPrefix(raw, utf8BOM):
		return decodeUTF8(raw[len(utf8BOM):], "utf-8")
	case bytes.HasPrefix(raw, []byte{0xff, 0xfe}):
		return decodeWith(unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM), raw, "utf-16le")
	case bytes.HasPrefix(raw, []byte{0xfe, 0xff}):
		return decodeWith(unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM), raw, "utf-16be")
	}

	if d.encoding == unicode.UTF8 {
		return decodeUTF8(raw, d.name)
	}

	return decodeWith(d.encoding, raw, d.name)
}

func decodeUTF8(raw []byte, name string) (string, string, error) {
	if !utf8.Valid(raw) {
		return "", name, fmt.Errorf("%w: %s", ErrInvalidText, name)
	}

	return string(raw), name, nil
}

func decodeWith(enc encoding.Encoding, raw []byte, name string) (string, string, error) {
	out, _, err := transform.Bytes(enc.NewDecoder(), raw)
	if err != nil {
		return "", name, fmt.Errorf("%w: %s: %w", ErrInvalidText, name, err)
	}

	return string(out), name, nil
}
