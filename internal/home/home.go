package home

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

const (
	// DefaultDirName is the default name for the leostoc home directory.
	DefaultDirName = ".leos"

	// TemplatesDirName is the subdirectory for structure-definition overrides.
	TemplatesDirName = "templates"

	// DocumentsDirName is the subdirectory for committed flat structures.
	DocumentsDirName = "documents"

	// ConfigFileName is the default config file name.
	ConfigFileName = "config.yaml"
)

// Dir represents the leostoc home directory structure.
type Dir struct {
	path string
}

// New creates a new Dir with the given path.
// If path is empty, uses the default (~/.leos).
func New(path string) (*Dir, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		path = filepath.Join(home, DefaultDirName)
	}

	return &Dir{path: path}, nil
}

// Path returns the root path of the home directory.
func (d *Dir) Path() string {
	return d.path
}

// TemplatesPath returns the directory searched for <template>.yaml files
// before the built-in definitions.
func (d *Dir) TemplatesPath() string {
	return filepath.Join(d.path, TemplatesDirName)
}

// DocumentsPath returns the directory holding committed document structures.
func (d *Dir) DocumentsPath() string {
	return filepath.Join(d.path, DocumentsDirName)
}

// DocumentPath returns the flat-structure file of a document.
func (d *Dir) DocumentPath(docID string) string {
	return filepath.Join(d.DocumentsPath(), docID+".yaml")
}

// ConfigPath returns the path to the default config file.
func (d *Dir) ConfigPath() string {
	return filepath.Join(d.path, ConfigFileName)
}

// EnsureExists creates the home directory and subdirectories if they don't exist.
func (d *Dir) EnsureExists() error {
	for _, p := range []string{d.TemplatesPath(), d.DocumentsPath()} {
		if err := os.MkdirAll(p, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", p, err)
		}
	}
	return nil
}

// Exists returns true if the home directory exists.
func (d *Dir) Exists() bool {
	_, err := os.Stat(d.path)
	return err == nil
}

// ConfigExists returns true if the config file exists in the home directory.
func (d *Dir) ConfigExists() bool {
	_, err := os.Stat(d.ConfigPath())
	return err == nil
}

// Templates returns the override directory as a filesystem, or nil if it
// does not exist.
func (d *Dir) Templates(dir string) fs.FS {
	if dir == "" {
		dir = d.TemplatesPath()
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return nil
	}
	return os.DirFS(dir)
}
