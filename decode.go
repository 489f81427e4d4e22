package madtsql

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// LookupCharset resolves an IANA or WHATWG charset name such as
// "windows-1252" or "shift_jis". An empty name yields a nil encoding.
func LookupCharset(name string) (encoding.Encoding, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCharset, name)
	}
	return enc, nil
}

// decodeText turns raw source bytes into UTF-8 text.
//
// Strict UTF-8 without a byte-order mark is taken as is. Otherwise a
// BOM-aware decoder is tried (UTF-8, UTF-16LE, UTF-16BE marks), and last
// the optional fallback charset. Anything still undecodable is a DecodeError.
func decodeText(path string, data []byte, fallback encoding.Encoding) ([]byte, error) {
	if utf8.Valid(data) && !bytes.HasPrefix(data, utf8BOM) {
		return data, nil
	}

	if hasBOM(data) {
		decoded, _, err := transform.Bytes(unicode.BOMOverride(transform.Nop), data)
		if err == nil && utf8.Valid(decoded) {
			return decoded, nil
		}
	}

	if fallback != nil {
		decoded, _, err := transform.Bytes(fallback.NewDecoder(), data)
		if err != nil {
			return nil, &DecodeError{Path: path, Err: err}
		}
		return decoded, nil
	}

	return nil, &DecodeError{Path: path, Err: ErrInvalidUTF8}
}

func hasBOM(data []byte) bool {
	return bytes.HasPrefix(data, utf8BOM) ||
		bytes.HasPrefix(data, []byte{0xFF, 0xFE}) ||
		bytes.HasPrefix(data, []byte{0xFE, 0xFF})
}
