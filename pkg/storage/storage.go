package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrBlobNotFound is returned when a reference does not point to a stored file.
var ErrBlobNotFound = errors.New("blob not found")

// StoredFile is what a BlobStore hands back after a successful write.
type StoredFile struct {
	Ref  string
	Size int64
}

// BlobStore keeps uploaded note files. References are opaque to callers.
type BlobStore interface {
	Save(ctx context.Context, r io.Reader, suggestedName string) (StoredFile, error)
	// Delete reports whether the blob existed. A missing blob is not an error.
	Delete(ctx context.Context, ref string) (bool, error)
	Exists(ctx context.Context, ref string) (bool, error)
	Size(ctx context.Context, ref string) (int64, error)
	Open(ctx context.Context, ref string) (io.ReadCloser, error)
}

// Config selects and configures a BlobStore implementation.
type Config struct {
	Driver string

	LocalDir string

	CloudinaryURL    string
	CloudinaryFolder string

	S3 S3Config
}

func New(cfg Config) (BlobStore, error) {
	switch strings.ToLower(cfg.Driver) {
	case "", "local":
		return NewLocalStore(cfg.LocalDir)
	case "cloudinary":
		return NewCloudinaryStore(cfg.CloudinaryURL, cfg.CloudinaryFolder)
	case "s3":
		return NewS3Store(cfg.S3)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// uniqueName keeps the extension of the suggested name and replaces the rest.
func uniqueName(suggestedName string) string {
	ext := strings.ToLower(filepath.Ext(suggestedName))
	return strings.ReplaceAll(uuid.NewString(), "-", "") + ext
}
