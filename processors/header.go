package processors

import (
	"bytes"
	"path/filepath"
	"strings"
)

// GeneratedHeader prepends an auto-generated comment block. Only files with
// a known line comment syntax are changed, and a file that already starts
// with the header is left alone.
type GeneratedHeader struct {
	Tool string
}

func NewGeneratedHeader(tool string) *GeneratedHeader {
	return &GeneratedHeader{Tool: tool}
}

var lineComments = map[string]string{
	".go":   "//",
	".cs":   "//",
	".ts":   "//",
	".js":   "//",
	".vb":   "'",
	".sql":  "--",
	".py":   "#",
	".yml":  "#",
	".yaml": "#",
}

func (h *GeneratedHeader) ProcessContent(filePath string, content []byte) ([]byte, error) {
	prefix, ok := lineComments[strings.ToLower(filepath.Ext(filePath))]
	if !ok {
		return content, nil
	}

	header := h.header(prefix)
	if bytes.HasPrefix(content, []byte(header)) {
		return content, nil
	}
	return append([]byte(header), content...), nil
}

func (h *GeneratedHeader) header(prefix string) string {
	tool := h.Tool
	if tool == "" {
		tool = "a text template"
	}
	return prefix + " <auto-generated>\n" +
		prefix + " This file was generated by " + tool + ". Changes will be lost when it is regenerated.\n" +
		prefix + " </auto-generated>\n"
}
