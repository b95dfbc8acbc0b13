// Package blob abstracts the destination for exported session
// artifacts (transcripts, captured audio) so callers can target local
// disk or an S3-compatible object store without changing code.
package blob

import (
	"context"
	"io"
)

// Store is a minimal file-oriented storage interface.
//
// Paths are forward-slash separated and relative to the store root.
// Implementations must be safe for concurrent use.
type Store interface {
	// Read opens the named file for reading. The caller must close
	// the returned ReadCloser. A missing file yields an error
	// wrapping os.ErrNotExist.
	Read(ctx context.Context, path string) (io.ReadCloser, error)

	// Write opens the named file for writing, truncating any existing
	// content and creating parents as needed. The caller must close
	// the returned WriteCloser to flush data.
	Write(ctx context.Context, path string) (io.WriteCloser, error)

	// Delete removes the named file. Deleting a missing file is not
	// an error.
	Delete(ctx context.Context, path string) error

	// Exists reports whether the named file exists.
	Exists(ctx context.Context, path string) (bool, error)
}

// WriteAll writes data to path in one shot.
func WriteAll(ctx context.Context, s Store, path string, data []byte) error {
	w, err := s.Write(ctx, path)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

// ReadAll reads the whole of path.
func ReadAll(ctx context.Context, s Store, path string) ([]byte, error) {
	r, err := s.Read(ctx, path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}
