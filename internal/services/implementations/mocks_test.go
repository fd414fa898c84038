package implementations

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"photo-gallery/internal/domain/photo"
	"photo-gallery/internal/platform/database"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, p *photo.Photo) error {
	args := m.Called(ctx, p)
	if args.Error(0) == nil {
		p.ID = 1
	}
	return args.Error(0)
}

func (m *MockRepository) GetByID(ctx context.Context, id int64) (*photo.Photo, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*photo.Photo), args.Error(1)
}

func (m *MockRepository) GetByHash(ctx context.Context, hash string) (*photo.Photo, error) {
	args := m.Called(ctx, hash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*photo.Photo), args.Error(1)
}

func (m *MockRepository) List(ctx context.Context, sort photo.SortKey) ([]*photo.Photo, error) {
	args := m.Called(ctx, sort)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*photo.Photo), args.Error(1)
}

func (m *MockRepository) Update(ctx context.Context, p *photo.Photo) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockRepository) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) Store(ctx context.Context, name string, contentType string, data io.Reader, size int64) error {
	return m.Called(ctx, name, contentType, data, size).Error(0)
}

func (m *MockStorage) Retrieve(ctx context.Context, name string) (io.ReadCloser, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

func (m *MockStorage) Delete(ctx context.Context, name string) error {
	return m.Called(ctx, name).Error(0)
}

func (m *MockStorage) List(ctx context.Context) ([]photo.StoredObject, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]photo.StoredObject), args.Error(1)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) GetPhoto(ctx context.Context, id int64) (*photo.Photo, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*photo.Photo), args.Error(1)
}

func (m *MockCache) SetPhoto(ctx context.Context, p *photo.Photo) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockCache) DeletePhoto(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockCache) GetPhotoList(ctx context.Context, sort photo.SortKey) ([]*photo.Photo, error) {
	args := m.Called(ctx, sort)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*photo.Photo), args.Error(1)
}

func (m *MockCache) SetPhotoList(ctx context.Context, sort photo.SortKey, photos []*photo.Photo) error {
	return m.Called(ctx, sort, photos).Error(0)
}

func (m *MockCache) InvalidatePhotoLists(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// MockDatabaseRepository is a mock implementation of database.PhotoRepository
type MockDatabaseRepository struct {
	mock.Mock
}

func (m *MockDatabaseRepository) Create(ctx context.Context, p *database.Photo) error {
	args := m.Called(ctx, p)
	if args.Error(0) == nil {
		p.ID = 11
	}
	return args.Error(0)
}

func (m *MockDatabaseRepository) GetByID(ctx context.Context, id int64) (*database.Photo, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*database.Photo), args.Error(1)
}

func (m *MockDatabaseRepository) GetByHash(ctx context.Context, hash string) (*database.Photo, error) {
	args := m.Called(ctx, hash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*database.Photo), args.Error(1)
}

func (m *MockDatabaseRepository) Update(ctx context.Context, p *database.Photo) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockDatabaseRepository) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockDatabaseRepository) List(ctx context.Context, sort database.SortParams) ([]*database.Photo, error) {
	args := m.Called(ctx, sort)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*database.Photo), args.Error(1)
}

func (m *MockDatabaseRepository) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}
