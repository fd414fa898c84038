package implementations

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"photo-gallery/internal/domain/photo"
	"photo-gallery/internal/platform/database"
)

func TestPhotoRepositoryAdapter_Create(t *testing.T) {
	dbRepo := &MockDatabaseRepository{}
	adapter := NewPhotoRepositoryAdapter(dbRepo)
	width, height := 10, 20

	p := &photo.Photo{
		OriginalName: "a.jpg",
		FileName:     "x.jpg",
		ContentType:  "image/jpeg",
		Size:         4,
		FileHash:     "hash",
		Width:        &width,
		Height:       &height,
	}

	dbRepo.On("Create", mock.Anything, mock.MatchedBy(func(row *database.Photo) bool {
		return row.OriginalName == "a.jpg" && row.FileName == "x.jpg" && *row.Width == 10
	})).Return(nil)

	require.NoError(t, adapter.Create(context.Background(), p))
	assert.Equal(t, int64(11), p.ID)
	dbRepo.AssertExpectations(t)
}

func TestPhotoRepositoryAdapter_ErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		dbErr   error
		wantErr error
	}{
		{"not found", database.ErrNotFound, photo.ErrPhotoNotFound},
		{"wrapped not found", errors.Join(errors.New("photo with ID 4"), database.ErrNotFound), photo.ErrPhotoNotFound},
		{"duplicate hash", database.ErrDuplicateHash, photo.ErrDuplicate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dbRepo := &MockDatabaseRepository{}
			adapter := NewPhotoRepositoryAdapter(dbRepo)
			dbRepo.On("GetByID", mock.Anything, int64(4)).Return(nil, tt.dbErr)

			_, err := adapter.GetByID(context.Background(), 4)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, tt.dbErr, "original error stays in the chain")
		})
	}

	t.Run("other errors pass through", func(t *testing.T) {
		dbRepo := &MockDatabaseRepository{}
		adapter := NewPhotoRepositoryAdapter(dbRepo)
		boom := errors.New("connection reset")
		dbRepo.On("Delete", mock.Anything, int64(1)).Return(boom)

		assert.Same(t, boom, adapter.Delete(context.Background(), 1))
	})
}

func TestPhotoRepositoryAdapter_List(t *testing.T) {
	tests := []struct {
		key  photo.SortKey
		want database.SortParams
	}{
		{photo.SortUploadDate, database.SortParams{Field: database.SortByUploadDate, Order: database.SortDesc}},
		{photo.SortUploadDateAsc, database.SortParams{Field: database.SortByUploadDate, Order: database.SortAsc}},
		{photo.SortName, database.SortParams{Field: database.SortByOriginalName, Order: database.SortAsc}},
		{photo.SortSize, database.SortParams{Field: database.SortBySize, Order: database.SortDesc}},
		{"camera", database.DefaultSort()},
	}

	for _, tt := range tests {
		t.Run(string(tt.key), func(t *testing.T) {
			dbRepo := &MockDatabaseRepository{}
			adapter := NewPhotoRepositoryAdapter(dbRepo)
			now := time.Now()
			dbRepo.On("List", mock.Anything, tt.want).Return([]*database.Photo{
				{ID: 1, OriginalName: "a.jpg", UploadDate: now},
			}, nil)

			photos, err := adapter.List(context.Background(), tt.key)
			require.NoError(t, err)
			require.Len(t, photos, 1)
			assert.Equal(t, "a.jpg", photos[0].OriginalName)
			assert.Equal(t, now, photos[0].UploadDate)
			dbRepo.AssertExpectations(t)
		})
	}
}

func TestPhotoRepositoryAdapter_Update(t *testing.T) {
	dbRepo := &MockDatabaseRepository{}
	adapter := NewPhotoRepositoryAdapter(dbRepo)
	stamp := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	dbRepo.On("Update", mock.Anything, mock.AnythingOfType("*database.Photo")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*database.Photo).UploadDate = stamp
		}).
		Return(nil)

	p := &photo.Photo{ID: 2, FileName: "new.jpg"}
	require.NoError(t, adapter.Update(context.Background(), p))
	assert.Equal(t, stamp, p.UploadDate)
}
