package output

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
)

// File is the rendered form of an Item handed to the host at the end of a
// transformation. It is a value; changing it does not affect the Item it
// was taken from.
type File struct {
	Name                 string
	Directory            string
	Project              string
	ItemType             string
	Encoding             encoding.Encoding
	Metadata             map[string]string
	References           []string
	PreserveExistingFile bool
	Content              string
}

// Path resolves the file location the same way Item.Path does.
func (f File) Path() string {
	return joinPath(f.Project, f.Directory, f.Name)
}

// MetadataValue looks up a metadata value ignoring key case.
func (f File) MetadataValue(key string) string {
	if value, ok := f.Metadata[key]; ok {
		return value
	}
	for k, value := range f.Metadata {
		if strings.EqualFold(k, key) {
			return value
		}
	}
	return ""
}

func (f File) CustomTool() string { return f.MetadataValue(MetadataGenerator) }

func (f File) CustomToolNamespace() string { return f.MetadataValue(MetadataCustomToolNamespace) }

func (f File) CopyToOutputDirectory() CopyToOutputDirectory {
	c, err := ParseCopyToOutputDirectory(f.MetadataValue(MetadataCopyToOutputDirectory))
	if err != nil {
		return DoNotCopy
	}
	return c
}

// Bytes encodes Content with the file's encoding.
func (f File) Bytes() ([]byte, error) {
	enc := f.encoding()
	data, err := enc.NewEncoder().Bytes([]byte(f.Content))
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s as %s: %w", f.Path(), EncodingName(enc), err)
	}
	return data, nil
}

// Compatible reports whether two renders may be merged into one output file:
// they must agree on everything except content and references. Paths are
// compared ignoring case.
func (f File) Compatible(other File) bool {
	if !strings.EqualFold(f.Path(), other.Path()) ||
		f.ItemType != other.ItemType ||
		f.PreserveExistingFile != other.PreserveExistingFile ||
		EncodingName(f.encoding()) != EncodingName(other.encoding()) {
		return false
	}
	mine, theirs := metadataOf(f.Metadata), metadataOf(other.Metadata)
	return mine.Equal(&theirs)
}

func (f File) encoding() encoding.Encoding {
	if f.Encoding == nil {
		return DefaultEncoding
	}
	return f.Encoding
}
