// Package services wires the photo gallery's dependencies together
package services

import (
	"context"
	"database/sql"

	"photo-gallery/internal/config"
	"photo-gallery/internal/domain/photo"
	"photo-gallery/internal/observability"
	"photo-gallery/internal/platform/cache"
	"photo-gallery/internal/platform/database"
	"photo-gallery/internal/platform/storage"
	"photo-gallery/internal/services/implementations"
)

// Container holds all the application dependencies
type Container struct {
	config *config.Config
	db     *sql.DB
	logger *observability.Logger

	// Infrastructure
	storageClient *storage.Service
	redisClient   *cache.RedisClient // nil when caching is disabled

	// Repositories
	photoRows       database.PhotoRepository
	photoRepository photo.Repository

	// Services
	storageService photo.StorageService
	imageProcessor *storage.ImageProcessor
	cacheService   photo.CacheService
	photoService   *implementations.PhotoService
}

// NewContainer builds the dependency graph. redisClient may be nil.
func NewContainer(
	cfg *config.Config,
	db *sql.DB,
	storageClient *storage.Service,
	redisClient *cache.RedisClient,
	logger *observability.Logger,
) *Container {
	if logger == nil {
		logger = observability.NewNopLogger()
	}
	c := &Container{
		config:        cfg,
		db:            db,
		logger:        logger,
		storageClient: storageClient,
		redisClient:   redisClient,
	}
	c.initializeServices()
	return c
}

// initializeServices initializes all services in dependency order
func (c *Container) initializeServices() {
	c.photoRows = database.NewPhotoRepository(c.db)
	c.photoRepository = implementations.NewPhotoRepositoryAdapter(c.photoRows)

	c.storageService = implementations.NewStorageService(c.storageClient)
	c.imageProcessor = storage.NewImageProcessor(85)

	if c.redisClient != nil {
		c.cacheService = implementations.NewCacheService(c.redisClient)
	}

	c.photoService = implementations.NewPhotoService(
		c.photoRepository,
		c.storageService,
		c.imageProcessor,
		c.cacheService,
		c.logger,
		c.config.Storage.MaxUploadSize,
	)

	c.logger.Info(context.Background()).
		Bool("cache_enabled", c.redisClient != nil).
		Msg("Dependency injection container initialized")
}

// Getters for accessing services

func (c *Container) Config() *config.Config {
	return c.config
}

func (c *Container) DB() *sql.DB {
	return c.db
}

func (c *Container) StorageClient() *storage.Service {
	return c.storageClient
}

// RedisClient returns nil when caching is disabled
func (c *Container) RedisClient() *cache.RedisClient {
	return c.redisClient
}

func (c *Container) PhotoRows() database.PhotoRepository {
	return c.photoRows
}

func (c *Container) PhotoService() photo.Service {
	return c.photoService
}

// Close releases the cache connection and the database pool
func (c *Container) Close() error {
	if c.redisClient != nil {
		_ = c.redisClient.Close() //nolint:errcheck // Best effort on shutdown
	}
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}
