package testutil

import (
	"bytes"
	"context"
	"io"
	"sync"

	"anoa.com/notevault/pkg/storage"
	"github.com/google/uuid"
)

// Blobs is an in-memory storage.BlobStore.
type Blobs struct {
	mu      sync.Mutex
	files   map[string][]byte
	SaveErr error
}

func NewBlobs() *Blobs {
	return &Blobs{files: map[string][]byte{}}
}

func (b *Blobs) Save(ctx context.Context, r io.Reader, suggestedName string) (storage.StoredFile, error) {
	if b.SaveErr != nil {
		return storage.StoredFile{}, b.SaveErr
	}
	content, err := io.ReadAll(r)
	if err != nil {
		return storage.StoredFile{}, err
	}

	ref := uuid.NewString() + "-" + suggestedName
	b.mu.Lock()
	b.files[ref] = content
	b.mu.Unlock()
	return storage.StoredFile{Ref: ref, Size: int64(len(content))}, nil
}

// Put stores content under a fixed ref, for notes seeded straight into the database.
func (b *Blobs) Put(ref string, content []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.files[ref] = content
}

func (b *Blobs) Delete(ctx context.Context, ref string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.files[ref]
	delete(b.files, ref)
	return ok, nil
}

func (b *Blobs) Exists(ctx context.Context, ref string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.files[ref]
	return ok, nil
}

func (b *Blobs) Size(ctx context.Context, ref string) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	content, ok := b.files[ref]
	if !ok {
		return 0, storage.ErrBlobNotFound
	}
	return int64(len(content)), nil
}

func (b *Blobs) Open(ctx context.Context, ref string) (io.ReadCloser, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	content, ok := b.files[ref]
	if !ok {
		return nil, storage.ErrBlobNotFound
	}
	return io.NopCloser(bytes.NewReader(content)), nil
}

func (b *Blobs) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.files)
}

var _ storage.BlobStore = (*Blobs)(nil)
