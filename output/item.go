// Package output describes the files a template generates together with the
// project metadata a host attaches to them.
package output

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"

	"golang.org/x/text/encoding"
)

// ErrArgument reports that a required value was not supplied.
var ErrArgument = errors.New("required argument is missing")

// CopyToOutputDirectory controls whether a generated project item is copied
// to the build output directory.
type CopyToOutputDirectory int

const (
	DoNotCopy CopyToOutputDirectory = iota
	CopyAlways
	CopyIfNewer
)

func (c CopyToOutputDirectory) String() string {
	switch c {
	case DoNotCopy:
		return "DoNotCopy"
	case CopyAlways:
		return "CopyAlways"
	case CopyIfNewer:
		return "CopyIfNewer"
	default:
		return fmt.Sprintf("CopyToOutputDirectory(%d)", int(c))
	}
}

// MetadataValue returns the project metadata spelling of c.
func (c CopyToOutputDirectory) MetadataValue() string {
	switch c {
	case CopyAlways:
		return "Always"
	case CopyIfNewer:
		return "PreserveNewest"
	default:
		return ""
	}
}

// ParseCopyToOutputDirectory accepts both the metadata spelling ("Always",
// "PreserveNewest", "") and the enum names.
func ParseCopyToOutputDirectory(value string) (CopyToOutputDirectory, error) {
	switch value {
	case "", "Never", "DoNotCopy":
		return DoNotCopy, nil
	case "Always", "CopyAlways":
		return CopyAlways, nil
	case "PreserveNewest", "CopyIfNewer":
		return CopyIfNewer, nil
	default:
		return DoNotCopy, fmt.Errorf("invalid CopyToOutputDirectory value %q", value)
	}
}

// Item describes a desired output: where it goes and which project metadata
// it carries. The zero value is an empty item with UTF-8 encoding.
type Item struct {
	file                 string
	directory            string
	project              string
	itemType             string
	encoding             encoding.Encoding
	metadata             Metadata
	references           []string
	preserveExistingFile bool
}

// File returns the output file name without its directory.
func (i *Item) File() string { return i.file }

// SetFile sets the file name. A directory component in value replaces
// Directory; without one, Directory is left as is.
func (i *Item) SetFile(value string) {
	value = NormalizePath(value)
	if value == "" {
		i.file = ""
		return
	}
	if dir := filepath.Dir(value); dir != "." {
		i.directory = dir
	}
	i.file = filepath.Base(value)
}

func (i *Item) Directory() string { return i.directory }

func (i *Item) SetDirectory(value string) { i.directory = NormalizePath(value) }

// Project returns the path of the project file the output belongs to.
func (i *Item) Project() string { return i.project }

func (i *Item) SetProject(value string) { i.project = NormalizePath(value) }

func (i *Item) ItemType() string { return i.itemType }

func (i *Item) SetItemType(value string) { i.itemType = value }

// CustomTool is the name of the generator the project runs for this item.
func (i *Item) CustomTool() string { return i.metadata.Value(MetadataGenerator) }

func (i *Item) SetCustomTool(value string) { i.metadata.Set(MetadataGenerator, value) }

func (i *Item) CustomToolNamespace() string { return i.metadata.Value(MetadataCustomToolNamespace) }

func (i *Item) SetCustomToolNamespace(value string) {
	i.metadata.Set(MetadataCustomToolNamespace, value)
}

func (i *Item) Encoding() encoding.Encoding {
	if i.encoding == nil {
		return DefaultEncoding
	}
	return i.encoding
}

func (i *Item) SetEncoding(enc encoding.Encoding) error {
	if enc == nil {
		return fmt.Errorf("encoding: %w", ErrArgument)
	}
	i.encoding = enc
	return nil
}

func (i *Item) CopyToOutputDirectory() CopyToOutputDirectory {
	c, err := ParseCopyToOutputDirectory(i.metadata.Value(MetadataCopyToOutputDirectory))
	if err != nil {
		return DoNotCopy
	}
	return c
}

func (i *Item) SetCopyToOutputDirectory(value CopyToOutputDirectory) {
	i.metadata.Set(MetadataCopyToOutputDirectory, value.MetadataValue())
}

// Metadata returns the item's project metadata. Mutations are visible to
// subsequent renders of the item.
func (i *Item) Metadata() *Metadata { return &i.metadata }

// References returns the assembly paths the output depends on, in the order
// they were added.
func (i *Item) References() []string { return slices.Clone(i.references) }

// AddReference appends an assembly reference unless it is already present.
func (i *Item) AddReference(path string) error {
	if path == "" {
		return fmt.Errorf("reference: %w", ErrArgument)
	}
	if !slices.Contains(i.references, path) {
		i.references = append(i.references, path)
	}
	return nil
}

// PreserveExistingFile reports whether a host must keep an existing file
// instead of overwriting it.
func (i *Item) PreserveExistingFile() bool { return i.preserveExistingFile }

func (i *Item) SetPreserveExistingFile(value bool) { i.preserveExistingFile = value }

// Path combines Project, Directory and File. A rooted Directory ignores
// Project; otherwise the directory of Project prefixes the result.
func (i *Item) Path() string {
	return joinPath(i.project, i.directory, i.file)
}

func joinPath(project, directory, file string) string {
	path := file
	if directory != "" {
		path = filepath.Join(directory, path)
	}
	if project != "" && !filepath.IsAbs(directory) {
		path = filepath.Join(filepath.Dir(project), path)
	}
	return path
}

// Snapshot freezes the item's identity and metadata into a File with the
// given content.
func (i *Item) Snapshot(content string) File {
	return File{
		Name:                 i.file,
		Directory:            i.directory,
		Project:              i.project,
		ItemType:             i.itemType,
		Encoding:             i.Encoding(),
		Metadata:             i.metadata.Map(),
		References:           i.References(),
		PreserveExistingFile: i.preserveExistingFile,
		Content:              content,
	}
}
