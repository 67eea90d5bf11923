package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// LocalStore writes blobs into a single directory on the server.
type LocalStore struct {
	basePath string
}

func NewLocalStore(basePath string) (*LocalStore, error) {
	if basePath == "" {
		basePath = "uploads"
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	return &LocalStore{basePath: basePath}, nil
}

func (s *LocalStore) Save(ctx context.Context, r io.Reader, suggestedName string) (StoredFile, error) {
	if err := ctx.Err(); err != nil {
		return StoredFile{}, err
	}

	name := uniqueName(suggestedName)
	dstPath := filepath.Join(s.basePath, name)

	dst, err := os.Create(dstPath)
	if err != nil {
		return StoredFile{}, fmt.Errorf("failed to create destination file: %w", err)
	}

	n, err := io.Copy(dst, r)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(dstPath)
		return StoredFile{}, fmt.Errorf("failed to save file content: %w", err)
	}

	return StoredFile{Ref: name, Size: n}, nil
}

func (s *LocalStore) Delete(ctx context.Context, ref string) (bool, error) {
	path, err := s.path(ref)
	if err != nil {
		return false, err
	}
	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("failed to delete file: %w", err)
	}
	return true, nil
}

func (s *LocalStore) Exists(ctx context.Context, ref string) (bool, error) {
	_, err := s.stat(ref)
	if errors.Is(err, ErrBlobNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (s *LocalStore) Size(ctx context.Context, ref string) (int64, error) {
	info, err := s.stat(ref)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

func (s *LocalStore) Open(ctx context.Context, ref string) (io.ReadCloser, error) {
	path, err := s.path(ref)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrBlobNotFound
	}
	return f, err
}

func (s *LocalStore) stat(ref string) (fs.FileInfo, error) {
	path, err := s.path(ref)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrBlobNotFound
	}
	return info, err
}

// path refuses references that would escape the base directory.
func (s *LocalStore) path(ref string) (string, error) {
	if ref == "" || ref != filepath.Base(ref) || ref == "." || ref == ".." {
		return "", fmt.Errorf("invalid blob reference %q: %w", ref, ErrBlobNotFound)
	}
	return filepath.Join(s.basePath, ref), nil
}
