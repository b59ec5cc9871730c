package tokenstore

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// File stores the token as plain text in a single file.
type File struct {
	path string
}

// NewFile returns a File storage writing to path. Parent directories are
// created on the first Save.
func NewFile(path string) *File {
	return &File{path: path}
}

// DefaultFilePath returns <user config dir>/<app>/token.
func DefaultFilePath(app string) (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, app, Key), nil
}

// Path returns the file the token is stored in.
func (f *File) Path() string {
	return f.path
}

func (f *File) Load(ctx context.Context) (string, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}

	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", ErrNotFound
	}
	return token, nil
}

// Save writes the token through a temporary file and a rename so that a crash
// never leaves a truncated token behind.
func (f *File) Save(ctx context.Context, token string) error {
	if token == "" {
		return ErrEmptyToken
	}

	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), "."+filepath.Base(f.path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return err
	}
	if _, err := tmp.WriteString(token); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), f.path)
}

func (f *File) Clear(ctx context.Context) error {
	err := os.Remove(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
