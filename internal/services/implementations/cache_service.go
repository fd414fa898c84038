package implementations

import (
	"context"

	"photo-gallery/internal/domain/photo"
	"photo-gallery/internal/platform/cache"
)

// CacheService implements photo.CacheService using Redis/Valkey.
// A nil client turns every write into a no-op and every read into a miss.
type CacheService struct {
	client *cache.RedisClient
}

// NewCacheService creates a new cache service
func NewCacheService(client *cache.RedisClient) *CacheService {
	return &CacheService{client: client}
}

var _ photo.CacheService = (*CacheService)(nil)

func (c *CacheService) GetPhoto(ctx context.Context, id int64) (*photo.Photo, error) {
	if c.client == nil {
		return nil, photo.ErrCacheUnavailable
	}
	return c.client.GetPhoto(ctx, id)
}

func (c *CacheService) SetPhoto(ctx context.Context, p *photo.Photo) error {
	if c.client == nil {
		return nil
	}
	return c.client.SetPhoto(ctx, p)
}

func (c *CacheService) DeletePhoto(ctx context.Context, id int64) error {
	if c.client == nil {
		return nil
	}
	return c.client.DeletePhoto(ctx, id)
}

func (c *CacheService) GetPhotoList(ctx context.Context, sort photo.SortKey) ([]*photo.Photo, error) {
	if c.client == nil {
		return nil, photo.ErrCacheUnavailable
	}
	return c.client.GetPhotoList(ctx, sort)
}

func (c *CacheService) SetPhotoList(ctx context.Context, sort photo.SortKey, photos []*photo.Photo) error {
	if c.client == nil {
		return nil
	}
	return c.client.SetPhotoList(ctx, sort, photos)
}

func (c *CacheService) InvalidatePhotoLists(ctx context.Context) error {
	if c.client == nil {
		return nil
	}
	return c.client.InvalidatePhotoLists(ctx)
}
