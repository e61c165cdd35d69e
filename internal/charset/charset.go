// Package charset maps legacy codepage names to text decoders for query replies.
package charset

import (
	"fmt"
	"strings"

	"github.com/woozymasta/sampq/internal/codec"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/ianaindex"
)

// Default codepage used by most SA-MP communities.
const Default = "windows-1251"

// Raw disables decoding; reply bytes are passed through unchanged.
const Raw = "raw"

// aliases covers spellings common in SA-MP tooling that IANA does not register.
var aliases = map[string]encoding.Encoding{
	"win1250": charmap.Windows1250,
	"win1251": charmap.Windows1251,
	"win1252": charmap.Windows1252,
	"win1253": charmap.Windows1253,
	"win1254": charmap.Windows1254,
	"win1257": charmap.Windows1257,
	"cp1250":  charmap.Windows1250,
	"cp1251":  charmap.Windows1251,
	"cp1252":  charmap.Windows1252,
	"cp866":   charmap.CodePage866,
	"latin1":  charmap.ISO8859_1,
	"koi8r":   charmap.KOI8R,
}

// Lookup returns the decoder for the named codepage. An empty name or Raw
// returns a nil decoder, which codec treats as pass-through.
func Lookup(name string) (codec.TextDecoder, error) {
	enc, err := Encoding(name)
	if err != nil || enc == nil {
		return nil, err
	}

	return Decoder(enc), nil
}

// Encoding resolves a codepage name. Nil with a nil error means raw bytes.
func Encoding(name string) (encoding.Encoding, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" || key == Raw {
		return nil, nil
	}

	if enc, ok := aliases[key]; ok {
		return enc, nil
	}

	enc, err := ianaindex.IANA.Encoding(key)
	if err == nil && enc != nil {
		return enc, nil
	}

	// WHATWG labels cover a few more spellings, e.g. "x-cp1251"
	if enc, err := htmlindex.Get(key); err == nil {
		return enc, nil
	}

	return nil, fmt.Errorf("charset: unsupported codepage %q", name)
}

// Decoder wraps enc as a codec.TextDecoder.
func Decoder(enc encoding.Encoding) codec.TextDecoder {
	return func(raw []byte) (string, error) {
		out, err := enc.NewDecoder().Bytes(raw)
		if err != nil {
			return "", fmt.Errorf("charset: decode: %w", err)
		}

		return string(out), nil
	}
}

// Encoder returns a function converting UTF-8 text into the named codepage.
// It is the inverse of Lookup and is used to build test replies.
func Encoder(name string) (func(string) ([]byte, error), error) {
	enc, err := Encoding(name)
	if err != nil {
		return nil, err
	}
	if enc == nil {
		return func(s string) ([]byte, error) { return []byte(s), nil }, nil
	}

	return func(s string) ([]byte, error) {
		return enc.NewEncoder().Bytes([]byte(s))
	}, nil
}
