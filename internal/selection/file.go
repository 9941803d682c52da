package selection

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/ini.v1"
)

// Section is the INI section holding the character flags.
const Section = "Katakana"

const fileMode = 0o644

var errMissingSection = errors.New("missing [" + Section + "] section")

// FilePersister stores the selection as a single-section INI file.
type FilePersister struct {
	path string
}

// NewFilePersister returns a persister for the given path.
func NewFilePersister(path string) *FilePersister {
	return &FilePersister{path: path}
}

// Read parses the file. A missing or blank file yields ErrNotExist; a file
// with content but no flag section is reported as a decode error.
func (f *FilePersister) Read(_ context.Context) (map[string]string, error) {
	if _, err := os.Stat(f.path); err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotExist
		}
		return nil, fmt.Errorf("failed to stat selection file: %w", err)
	}
	file, err := ini.Load(f.path)
	if err != nil {
		return nil, fmt.Errorf("failed to parse selection file: %w", err)
	}
	sec, err := file.GetSection(Section)
	if err != nil {
		if blank(file) {
			return nil, ErrNotExist
		}
		return nil, fmt.Errorf("failed to decode selection file %s: %w", f.path, errMissingSection)
	}
	out := make(map[string]string, len(sec.Keys()))
	for _, key := range sec.Keys() {
		out[key.Name()] = key.Value()
	}
	return out, nil
}

// Write replaces the whole file via a temp file and rename.
func (f *FilePersister) Write(_ context.Context, entries []Entry) error {
	file := ini.Empty()
	sec, err := file.NewSection(Section)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if _, err := sec.NewKey(e.Key, e.Value); err != nil {
			return fmt.Errorf("failed to encode %q: %w", e.Key, err)
		}
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create selection dir: %w", err)
	}
	tmpFile, err := os.CreateTemp(dir, "selection-*.ini")
	if err != nil {
		return fmt.Errorf("failed to create temp selection file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	writer := bufio.NewWriter(tmpFile)
	if _, err := file.WriteTo(writer); err != nil {
		return fmt.Errorf("failed to write selection file: %w", err)
	}
	if err := writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush selection file: %w", err)
	}
	if err := tmpFile.Chmod(fileMode); err != nil {
		return fmt.Errorf("failed to set selection file mode: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close selection file: %w", err)
	}
	if err := os.Rename(tmpPath, f.path); err != nil {
		return fmt.Errorf("failed to replace selection file: %w", err)
	}
	return nil
}

func blank(file *ini.File) bool {
	for _, sec := range file.Sections() {
		if sec.Name() != ini.DefaultSection || len(sec.Keys()) > 0 {
			return false
		}
	}
	return true
}
