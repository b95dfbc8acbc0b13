package blob

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Dir implements Store on the local filesystem, rooted at a directory.
type Dir struct {
	root string
}

// NewDir creates a Dir store rooted at dir, creating the directory
// (with parents) if needed.
func NewDir(dir string) (*Dir, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, err
	}
	return &Dir{root: abs}, nil
}

func (d *Dir) resolve(path string) string {
	return filepath.Join(d.root, filepath.FromSlash(path))
}

func (d *Dir) Read(_ context.Context, path string) (io.ReadCloser, error) {
	return os.Open(d.resolve(path))
}

func (d *Dir) Write(_ context.Context, path string) (io.WriteCloser, error) {
	full := d.resolve(path)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return nil, err
	}
	return os.Create(full)
}

func (d *Dir) Delete(_ context.Context, path string) error {
	err := os.Remove(d.resolve(path))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func (d *Dir) Exists(_ context.Context, path string) (bool, error) {
	_, err := os.Stat(d.resolve(path))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

var _ Store = (*Dir)(nil)
