package implementations

import (
	"context"
	"io"

	"photo-gallery/internal/domain/photo"
	"photo-gallery/internal/platform/storage"
)

// objectStore is the part of storage.Service the adapter needs
type objectStore interface {
	Store(ctx context.Context, name string, contentType string, data io.Reader, size int64) error
	Retrieve(ctx context.Context, name string) (io.ReadCloser, error)
	Delete(ctx context.Context, name string) error
	ListObjects(ctx context.Context, prefix string) ([]storage.ObjectInfo, error)
}

// StorageServiceImpl implements photo.StorageService on top of the bucket client
type StorageServiceImpl struct {
	store objectStore
}

// NewStorageService creates a new storage service implementation
func NewStorageService(store objectStore) *StorageServiceImpl {
	return &StorageServiceImpl{store: store}
}

var _ photo.StorageService = (*StorageServiceImpl)(nil)

func (s *StorageServiceImpl) Store(ctx context.Context, name string, contentType string, data io.Reader, size int64) error {
	return s.store.Store(ctx, name, contentType, data, size)
}

func (s *StorageServiceImpl) Retrieve(ctx context.Context, name string) (io.ReadCloser, error) {
	return s.store.Retrieve(ctx, name)
}

func (s *StorageServiceImpl) Delete(ctx context.Context, name string) error {
	return s.store.Delete(ctx, name)
}

// List returns every object in the bucket
func (s *StorageServiceImpl) List(ctx context.Context) ([]photo.StoredObject, error) {
	infos, err := s.store.ListObjects(ctx, "")
	if err != nil {
		return nil, err
	}

	objects := make([]photo.StoredObject, len(infos))
	for i, info := range infos {
		objects[i] = photo.StoredObject{
			Name:        info.Key,
			Size:        info.Size,
			ContentType: info.ContentType,
		}
	}
	return objects, nil
}
