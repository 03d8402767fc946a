package output

import (
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
)

const utf8BOMName = "utf-8-bom"

// DefaultEncoding is the encoding of an Item that never had one assigned.
var DefaultEncoding encoding.Encoding = unicode.UTF8

// LookupEncoding resolves an encoding by its WHATWG label ("utf-8",
// "windows-1252", "utf-16le", ...). The label "utf-8-bom" selects UTF-8 with a
// byte order mark. An empty label yields DefaultEncoding.
func LookupEncoding(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "":
		return DefaultEncoding, nil
	case utf8BOMName:
		return unicode.UTF8BOM, nil
	}

	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("unknown encoding %q: %w", name, err)
	}
	return enc, nil
}

// EncodingName returns the canonical label of enc, or an empty string when
// the encoding has no registered label.
func EncodingName(enc encoding.Encoding) string {
	if enc == unicode.UTF8BOM {
		return utf8BOMName
	}
	name, err := htmlindex.Name(enc)
	if err != nil {
		return ""
	}
	return name
}

// NormalizePath converts project-style paths, which use backslash
// separators, to the separator of the current platform.
func NormalizePath(path string) string {
	if path == "" {
		return ""
	}
	return filepath.FromSlash(strings.ReplaceAll(path, `\`, "/"))
}
