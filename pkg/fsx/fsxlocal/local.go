package fsxlocal

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/Abraxas-365/careerqr/pkg/fsx"
)

// LocalFileSystem implements fsx.FileSystem on the local disk,
// rooted at a base directory. Useful for development and tests.
type LocalFileSystem struct {
	root string
}

// NewLocalFileSystem creates a disk-backed file system rooted at root
func NewLocalFileSystem(root string) *LocalFileSystem {
	return &LocalFileSystem{root: root}
}

func (f *LocalFileSystem) abs(p string) string {
	return filepath.Join(f.root, filepath.FromSlash(p))
}

// ReadFile reads the whole file into memory
func (f *LocalFileSystem) ReadFile(_ context.Context, p string) ([]byte, error) {
	return os.ReadFile(f.abs(p))
}

// ReadFileStream opens the file for reading; the caller closes it
func (f *LocalFileSystem) ReadFileStream(_ context.Context, p string) (io.ReadCloser, error) {
	return os.Open(f.abs(p))
}

// WriteFile writes data, creating parent directories as needed
func (f *LocalFileSystem) WriteFile(_ context.Context, p string, data []byte) error {
	full := f.abs(p)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return err
	}
	return os.WriteFile(full, data, 0o644)
}

// WriteFileStream writes the reader's contents, creating parent directories as needed
func (f *LocalFileSystem) WriteFileStream(_ context.Context, p string, r io.Reader) error {
	full := f.abs(p)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return err
	}
	file, err := os.Create(full)
	if err != nil {
		return err
	}
	defer file.Close()
	_, err = io.Copy(file, r)
	return err
}

// DeleteFile removes a file; missing files are not an error
func (f *LocalFileSystem) DeleteFile(_ context.Context, p string) error {
	err := os.Remove(f.abs(p))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Exists checks whether the file is present
func (f *LocalFileSystem) Exists(_ context.Context, p string) (bool, error) {
	_, err := os.Stat(f.abs(p))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Stat returns file metadata
func (f *LocalFileSystem) Stat(_ context.Context, p string) (*fsx.FileInfo, error) {
	info, err := os.Stat(f.abs(p))
	if err != nil {
		return nil, err
	}
	return &fsx.FileInfo{
		Path:         p,
		Size:         info.Size(),
		LastModified: info.ModTime(),
	}, nil
}

// Join joins path segments with forward slashes
func (f *LocalFileSystem) Join(parts ...string) string {
	return filepath.ToSlash(filepath.Join(parts...))
}
