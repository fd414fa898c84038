package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"photo-gallery/internal/config"
	"photo-gallery/internal/domain/photo"
	"photo-gallery/internal/testutils"
)

func TestNewRedisClient(t *testing.T) {
	tests := []struct {
		name   string
		config config.CacheConfig
	}{
		{
			name:   "cache disabled",
			config: config.CacheConfig{Enabled: false},
		},
		{
			name: "invalid redis address",
			config: config.CacheConfig{
				Enabled:     true,
				Address:     "invalid:address:123",
				DialTimeout: 1 * time.Second,
				MaxRetries:  -1,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewRedisClient(context.Background(), tt.config)
			assert.Error(t, err)
			assert.Nil(t, client)
		})
	}
}

func TestPhotoKey(t *testing.T) {
	assert.Equal(t, "photo:42", photoKey(42))
}

func TestRedisClientIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}

	ctx := context.Background()
	tc := &testutils.TestContainers{}
	t.Cleanup(func() { _ = tc.Cleanup(context.Background()) })
	require.NoError(t, tc.StartRedis(ctx))

	client, err := NewRedisClient(ctx, tc.CacheConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	require.NoError(t, client.Health(ctx))

	t.Run("photo round trip", func(t *testing.T) {
		require.NoError(t, client.FlushCache(ctx))
		width := 640
		p := &photo.Photo{
			ID:           9,
			OriginalName: "dog.jpg",
			FileName:     "abc.jpg",
			ContentType:  "image/jpeg",
			Size:         100,
			FileHash:     "h",
			Width:        &width,
			UploadDate:   time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		}

		_, err := client.GetPhoto(ctx, 9)
		assert.ErrorIs(t, err, ErrCacheMiss)

		require.NoError(t, client.SetPhoto(ctx, p))
		cached, err := client.GetPhoto(ctx, 9)
		require.NoError(t, err)
		assert.Equal(t, p.OriginalName, cached.OriginalName)
		assert.Equal(t, 640, *cached.Width)
		assert.True(t, p.UploadDate.Equal(cached.UploadDate))

		require.NoError(t, client.DeletePhoto(ctx, 9))
		_, err = client.GetPhoto(ctx, 9)
		assert.ErrorIs(t, err, ErrCacheMiss)
	})

	t.Run("list invalidation", func(t *testing.T) {
		require.NoError(t, client.FlushCache(ctx))
		photos := []*photo.Photo{{ID: 1, OriginalName: "a.png"}, {ID: 2, OriginalName: "b.png"}}

		require.NoError(t, client.SetPhotoList(ctx, photo.SortName, photos))
		require.NoError(t, client.SetPhotoList(ctx, photo.SortSize, photos))

		cached, err := client.GetPhotoList(ctx, photo.SortName)
		require.NoError(t, err)
		assert.Len(t, cached, 2)

		require.NoError(t, client.InvalidatePhotoLists(ctx))
		_, err = client.GetPhotoList(ctx, photo.SortName)
		assert.ErrorIs(t, err, ErrCacheMiss)
		_, err = client.GetPhotoList(ctx, photo.SortSize)
		assert.ErrorIs(t, err, ErrCacheMiss)
	})

	t.Run("shared key", func(t *testing.T) {
		first, err := client.SharedKey(ctx, "csrf", []byte("first-candidate"))
		require.NoError(t, err)
		assert.Equal(t, []byte("first-candidate"), first)

		second, err := client.SharedKey(ctx, "csrf", []byte("second-candidate"))
		require.NoError(t, err)
		assert.Equal(t, first, second, "the first stored key wins")
	})
}
