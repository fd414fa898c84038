package handlers

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"photo-gallery/internal/domain/photo"
)

type MockPhotoService struct {
	mock.Mock
}

var _ photo.Service = (*MockPhotoService)(nil)

func (m *MockPhotoService) Upload(ctx context.Context, req *photo.UploadRequest, data io.Reader, handling photo.DuplicateHandling) (*photo.UploadResult, error) {
	args := m.Called(ctx, req, data, handling)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*photo.UploadResult), args.Error(1)
}

func (m *MockPhotoService) Replace(ctx context.Context, id int64, req *photo.UploadRequest, data io.Reader) (*photo.Photo, error) {
	args := m.Called(ctx, id, req, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*photo.Photo), args.Error(1)
}

func (m *MockPhotoService) Get(ctx context.Context, id int64) (*photo.Photo, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*photo.Photo), args.Error(1)
}

func (m *MockPhotoService) List(ctx context.Context, sort photo.SortKey) ([]*photo.Photo, error) {
	args := m.Called(ctx, sort)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*photo.Photo), args.Error(1)
}

func (m *MockPhotoService) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockPhotoService) Open(ctx context.Context, id int64) (*photo.Photo, io.ReadCloser, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*photo.Photo), args.Get(1).(io.ReadCloser), args.Error(2)
}

func (m *MockPhotoService) Thumbnail(ctx context.Context, id int64, maxEdge int) ([]byte, string, error) {
	args := m.Called(ctx, id, maxEdge)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).([]byte), args.String(1), args.Error(2)
}

func (m *MockPhotoService) Reconcile(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}
