package cli

import (
	"os"
	"path/filepath"
)

// Paths provides access to the vocalis directory layout under the
// user's home directory.
type Paths struct {
	HomeDir string
}

// NewPaths creates a Paths instance.
func NewPaths() (*Paths, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return &Paths{HomeDir: home}, nil
}

// BaseDir returns the base directory (~/.vocalis).
func (p *Paths) BaseDir() string {
	return filepath.Join(p.HomeDir, DefaultBaseDir)
}

// ArchiveDir returns the session archive directory
// (~/.vocalis/archive).
func (p *Paths) ArchiveDir() string {
	return filepath.Join(p.BaseDir(), "archive")
}

// ExportDir returns the default export directory
// (~/.vocalis/exports).
func (p *Paths) ExportDir() string {
	return filepath.Join(p.BaseDir(), "exports")
}

// EnsureArchiveDir creates the archive directory if it does not exist.
func (p *Paths) EnsureArchiveDir() error {
	return os.MkdirAll(p.ArchiveDir(), 0755)
}

// EnsureExportDir creates the export directory if it does not exist.
func (p *Paths) EnsureExportDir() error {
	return os.MkdirAll(p.ExportDir(), 0755)
}
