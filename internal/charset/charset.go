// Package charset decodes named character sets into UTF-8.
package charset

import (
	"fmt"
	"io"

	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// NewReader returns a reader producing UTF-8 from r, which is encoded in the
// IANA charset name. An empty name means UTF-8. A leading byte order mark is
// dropped in both cases.
func NewReader(r io.Reader, name string) (io.Reader, error) {
	if name == "" {
		return transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder())), nil
	}
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		return nil, fmt.Errorf("charset %q: %w", name, err)
	}
	if enc == nil {
		return nil, fmt.Errorf("charset %q: unsupported", name)
	}
	return transform.NewReader(r, unicode.BOMOverride(enc.NewDecoder())), nil
}

// ReadAll decodes everything from r.
func ReadAll(r io.Reader, name string) (string, error) {
	dr, err := NewReader(r, name)
	if err != nil {
		return "", err
	}
	data, err := io.ReadAll(dr)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
