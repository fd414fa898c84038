package implementations

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"photo-gallery/internal/domain/photo"
)

func TestCacheService_WithNilClient(t *testing.T) {
	service := NewCacheService(nil)
	ctx := context.Background()
	p := &photo.Photo{ID: 1, OriginalName: "a.jpg"}

	t.Run("GetPhoto returns cache unavailable", func(t *testing.T) {
		_, err := service.GetPhoto(ctx, 1)
		assert.ErrorIs(t, err, photo.ErrCacheUnavailable)
	})

	t.Run("SetPhoto succeeds silently", func(t *testing.T) {
		assert.NoError(t, service.SetPhoto(ctx, p))
	})

	t.Run("DeletePhoto succeeds silently", func(t *testing.T) {
		assert.NoError(t, service.DeletePhoto(ctx, 1))
	})

	t.Run("GetPhotoList returns cache unavailable", func(t *testing.T) {
		_, err := service.GetPhotoList(ctx, photo.SortName)
		assert.ErrorIs(t, err, photo.ErrCacheUnavailable)
	})

	t.Run("SetPhotoList succeeds silently", func(t *testing.T) {
		assert.NoError(t, service.SetPhotoList(ctx, photo.SortName, []*photo.Photo{p}))
	})

	t.Run("InvalidatePhotoLists succeeds silently", func(t *testing.T) {
		assert.NoError(t, service.InvalidatePhotoLists(ctx))
	})
}
