package csv

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// decodeReader wraps r so that its bytes come out as UTF-8. The encoding name
// is resolved through the IANA registry, which covers the names seen in
// practice ("utf-8", "iso-8859-1", "windows-1250", "utf-16", ...). An empty
// or UTF-8 name returns r unchanged; encoding/csv consumes UTF-8 natively.
func decodeReader(r io.Reader, name string) (io.Reader, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	switch n {
	case "", "utf-8", "utf8":
		return r, nil
	case "utf-16", "utf16":
		// BOM-sensitive; defaults to little-endian when no BOM is present.
		enc := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)
		return transform.NewReader(r, enc.NewDecoder()), nil
	}

	enc, err := ianaindex.IANA.Encoding(n)
	if err != nil || enc == nil {
		return nil, fmt.Errorf("unsupported encoding %q", name)
	}
	return transform.NewReader(r, enc.NewDecoder()), nil
}
