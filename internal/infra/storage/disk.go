package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/bryanwahyu/finsight/internal/domain/projects"
)

// Disk keeps uploads in a local directory under collision-resistant names.
type Disk struct {
	Dir string
}

var _ projects.FileStore = (*Disk)(nil)

// NewDisk makes sure dir exists.
func NewDisk(dir string) (*Disk, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads dir: %w", err)
	}
	return &Disk{Dir: dir}, nil
}

// Save writes r to <dir>/<uuid><ext>, keeping the original extension.
func (d *Disk) Save(ctx context.Context, originalName string, r io.Reader) (string, int64, error) {
	if err := ctx.Err(); err != nil {
		return "", 0, err
	}
	name := uuid.NewString() + strings.ToLower(filepath.Ext(originalName))
	path := filepath.Join(d.Dir, name)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", 0, err
	}
	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path)
		return "", 0, err
	}
	return path, n, nil
}

// Remove deletes a stored file; a file that is already gone is not an error.
func (d *Disk) Remove(_ context.Context, path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Check verifies the uploads directory still exists and is a directory.
func (d *Disk) Check(_ context.Context) error {
	info, err := os.Stat(d.Dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", d.Dir)
	}
	return nil
}
