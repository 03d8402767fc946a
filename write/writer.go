// Package write puts output files on disk.
package write

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/cpcf/t4toolbox/output"
)

// Writer abstracts the file system operations used to deliver outputs.
type Writer interface {
	Write(path string, content []byte, options Options) error
	NeedsWrite(path string, content []byte) (bool, error)
	Exists(path string) bool
	Remove(path string) error
}

type Options struct {
	CreateDirs bool
	// Backup copies an existing file to BackupDir, or next to it, before
	// it is overwritten.
	Backup    bool
	BackupDir string
	Atomic    bool
}

// DefaultOptions creates parent directories and replaces files atomically.
var DefaultOptions = Options{CreateDirs: true, Atomic: true}

// Action describes what WriteFile did with a file.
type Action string

const (
	ActionCreate    Action = "create"
	ActionUpdate    Action = "update"
	ActionUnchanged Action = "unchanged"
	ActionPreserve  Action = "preserve"
	ActionRemove    Action = "remove"
)

// WriteFile encodes file and writes it to its path. Files whose content did
// not change are not touched, and existing files marked PreserveExistingFile
// are left alone.
func WriteFile(w Writer, file output.File, options Options) (Action, error) {
	path := file.Path()
	exists := w.Exists(path)
	if exists && file.PreserveExistingFile {
		return ActionPreserve, nil
	}

	content, err := file.Bytes()
	if err != nil {
		return "", fmt.Errorf("encode %s: %w", path, err)
	}

	needed, err := w.NeedsWrite(path, content)
	if err != nil {
		return "", fmt.Errorf("compare %s: %w", path, err)
	}
	if !needed {
		return ActionUnchanged, nil
	}

	if err := w.Write(path, content, options); err != nil {
		return "", err
	}
	if exists {
		return ActionUpdate, nil
	}
	return ActionCreate, nil
}

// FileWriter writes to the local file system.
type FileWriter struct{}

func NewFileWriter() *FileWriter {
	return &FileWriter{}
}

func (fw *FileWriter) Write(path string, content []byte, options Options) error {
	if options.CreateDirs {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	if options.Backup {
		if _, err := Backup(path, options.BackupDir); err != nil {
			return fmt.Errorf("back up %s: %w", path, err)
		}
	}

	put := os.WriteFile
	if options.Atomic {
		put = replaceFile
	}
	if err := put(path, content, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func (fw *FileWriter) NeedsWrite(path string, content []byte) (bool, error) {
	current, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return !bytes.Equal(current, content), nil
}

func (fw *FileWriter) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Remove deletes path. Removing a missing file succeeds.
func (fw *FileWriter) Remove(path string) error {
	err := os.Remove(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("remove %s: %w", path, err)
}

// Backup saves a copy of path as <name>.bak inside backupDir, defaulting to
// the directory of path, and returns where the copy went. Nothing is copied
// and the returned path is empty when path does not exist.
func Backup(path, backupDir string) (string, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	if backupDir == "" {
		backupDir = filepath.Dir(path)
	}
	if err := os.MkdirAll(backupDir, 0o755); err != nil {
		return "", err
	}

	src, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer src.Close()

	target := filepath.Join(backupDir, filepath.Base(path)+".bak")
	dst, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return "", err
	}
	return target, dst.Close()
}

// replaceFile has the signature of os.WriteFile but goes through a
// temporary sibling and a rename, so readers never see a partial file.
func replaceFile(path string, content []byte, perm fs.FileMode) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(content); err != nil {
		tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmp.Name(), perm); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
