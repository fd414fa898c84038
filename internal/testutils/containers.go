// Package testutils starts throwaway Postgres, MinIO and Valkey containers
// for integration tests
package testutils

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/minio"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	redisModule "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"

	"photo-gallery/internal/config"
	"photo-gallery/internal/platform/database"
)

// Test container credentials
const (
	MinioUsername = "testuser"
	MinioPassword = "testpass123"
	TestBucket    = "test-photos"
)

// TestContainers holds whichever containers a test started
type TestContainers struct {
	PostgresContainer testcontainers.Container
	MinioContainer    testcontainers.Container
	RedisContainer    testcontainers.Container
	DB                *sql.DB
	DatabaseURL       string
	MinioEndpoint     string
	RedisEndpoint     string
}

// SetupTestContainers starts all three containers and migrates the database
func SetupTestContainers(ctx context.Context) (*TestContainers, error) {
	tc := &TestContainers{}

	if err := tc.StartPostgres(ctx); err != nil {
		_ = tc.Cleanup(ctx) //nolint:errcheck // Error path cleanup
		return nil, fmt.Errorf("failed to setup postgres container: %w", err)
	}

	if err := tc.StartMinio(ctx); err != nil {
		_ = tc.Cleanup(ctx) //nolint:errcheck // Error path cleanup
		return nil, fmt.Errorf("failed to setup minio container: %w", err)
	}

	if err := tc.StartRedis(ctx); err != nil {
		_ = tc.Cleanup(ctx) //nolint:errcheck // Error path cleanup
		return nil, fmt.Errorf("failed to setup redis container: %w", err)
	}

	return tc, nil
}

// StartPostgres runs PostgreSQL and applies the embedded migrations
func (tc *TestContainers) StartPostgres(ctx context.Context) error {
	postgresContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		postgres.WithSQLDriver("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		return fmt.Errorf("failed to start postgres container: %w", err)
	}
	tc.PostgresContainer = postgresContainer

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return fmt.Errorf("failed to get postgres connection string: %w", err)
	}
	tc.DatabaseURL = connStr

	db, err := database.NewConnection(ctx, connStr, database.DefaultPoolConfig())
	if err != nil {
		return fmt.Errorf("failed to connect to postgres: %w", err)
	}
	tc.DB = db

	if _, err := database.RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// StartMinio runs MinIO; the storage service creates the bucket itself
func (tc *TestContainers) StartMinio(ctx context.Context) error {
	minioContainer, err := minio.Run(ctx,
		"minio/minio:latest",
		minio.WithUsername(MinioUsername),
		minio.WithPassword(MinioPassword),
	)
	if err != nil {
		return fmt.Errorf("failed to start minio container: %w", err)
	}
	tc.MinioContainer = minioContainer

	endpoint, err := minioContainer.ConnectionString(ctx)
	if err != nil {
		return fmt.Errorf("failed to get minio endpoint: %w", err)
	}
	tc.MinioEndpoint = endpoint
	return nil
}

// StartRedis runs Valkey, which speaks the Redis protocol
func (tc *TestContainers) StartRedis(ctx context.Context) error {
	redisContainer, err := redisModule.Run(ctx,
		"valkey/valkey:7-alpine",
		redisModule.WithLogLevel(redisModule.LogLevelVerbose),
	)
	if err != nil {
		return fmt.Errorf("failed to start valkey container: %w", err)
	}
	tc.RedisContainer = redisContainer

	endpoint, err := redisContainer.ConnectionString(ctx)
	if err != nil {
		return fmt.Errorf("failed to get valkey endpoint: %w", err)
	}
	// go-redis wants host:port, the module returns redis://host:port
	tc.RedisEndpoint = strings.TrimPrefix(endpoint, "redis://")
	return nil
}

// StorageConfig points a storage service at the MinIO container
func (tc *TestContainers) StorageConfig() config.StorageConfig {
	return config.StorageConfig{
		Endpoint:        tc.MinioEndpoint,
		AccessKeyID:     MinioUsername,
		SecretAccessKey: MinioPassword,
		BucketName:      TestBucket,
		UseSSL:          false,
		Region:          "us-east-1",
		MaxUploadSize:   10 * 1024 * 1024,
	}
}

// CacheConfig points a cache client at the Valkey container
func (tc *TestContainers) CacheConfig() config.CacheConfig {
	return config.CacheConfig{
		Enabled:     true,
		Address:     tc.RedisEndpoint,
		DefaultTTL:  time.Hour,
		DialTimeout: 5 * time.Second,
		PoolSize:    5,
	}
}

// ResetDatabase deletes every photo row
func (tc *TestContainers) ResetDatabase(ctx context.Context) error {
	if tc.DB == nil {
		return fmt.Errorf("postgres not started")
	}
	if _, err := tc.DB.ExecContext(ctx, "TRUNCATE photos RESTART IDENTITY"); err != nil {
		return fmt.Errorf("failed to reset photos: %w", err)
	}
	return nil
}

// Cleanup terminates all started containers and closes connections
func (tc *TestContainers) Cleanup(ctx context.Context) error {
	var errs []error

	if tc.DB != nil {
		if err := tc.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	for name, c := range map[string]testcontainers.Container{
		"postgres": tc.PostgresContainer,
		"minio":    tc.MinioContainer,
		"valkey":   tc.RedisContainer,
	} {
		if c == nil {
			continue
		}
		if err := c.Terminate(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to terminate %s container: %w", name, err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("cleanup errors: %v", errs)
	}
	return nil
}
