package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"photo-gallery/internal/config"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Storage errors
var (
	ErrObjectNotFound    = errors.New("object not found")
	ErrInvalidObjectName = errors.New("invalid object name")
)

// ObjectInfo describes a stored object
type ObjectInfo struct {
	Key          string
	Size         int64
	ContentType  string
	LastModified time.Time
}

// Service stores photo files in a MinIO/S3 bucket
type Service struct {
	client     *minio.Client
	bucketName string
	region     string
}

// NewService connects to the bucket described by cfg, creating it if needed.
// Without static keys the AWS credential chain is used (env, credentials
// file, instance role).
func NewService(ctx context.Context, cfg config.StorageConfig) (*Service, error) {
	var creds *credentials.Credentials
	if cfg.AccessKeyID == "" || cfg.SecretAccessKey == "" {
		creds = credentials.NewChainCredentials([]credentials.Provider{
			&credentials.EnvAWS{},
			&credentials.FileAWSCredentials{},
			&credentials.IAM{},
		})
	} else {
		creds = credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, "")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  creds,
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	s := &Service{
		client:     client,
		bucketName: cfg.BucketName,
		region:     cfg.Region,
	}

	if err := s.ensureBucket(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure bucket exists: %w", err)
	}

	return s, nil
}

func (s *Service) ensureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucketName)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return s.client.MakeBucket(ctx, s.bucketName, minio.MakeBucketOptions{Region: s.region})
}

// Store uploads data under name. size may be -1 when unknown.
func (s *Service) Store(ctx context.Context, name string, contentType string, data io.Reader, size int64) error {
	if err := ValidateObjectName(name); err != nil {
		return err
	}
	if data == nil {
		return errors.New("data cannot be nil")
	}

	_, err := s.client.PutObject(ctx, s.bucketName, name, data, size, minio.PutObjectOptions{
		ContentType: contentType,
		UserMetadata: map[string]string{
			"upload-time": time.Now().UTC().Format(time.RFC3339),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", name, err)
	}
	return nil
}

// Retrieve opens the object for reading
func (s *Service) Retrieve(ctx context.Context, name string) (io.ReadCloser, error) {
	if err := ValidateObjectName(name); err != nil {
		return nil, err
	}

	obj, err := s.client.GetObject(ctx, s.bucketName, name, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get object: %w", err)
	}

	// GetObject is lazy; Stat surfaces a missing key now rather than on first read
	if _, err := obj.Stat(); err != nil {
		_ = obj.Close() //nolint:errcheck // Error path cleanup
		if isNoSuchKey(err) {
			return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, name)
		}
		return nil, fmt.Errorf("failed to stat object: %w", err)
	}

	return obj, nil
}

// Delete removes the object. Deleting a missing object is not an error.
func (s *Service) Delete(ctx context.Context, name string) error {
	if err := ValidateObjectName(name); err != nil {
		return err
	}

	if err := s.client.RemoveObject(ctx, s.bucketName, name, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

// Exists reports whether the object is present
func (s *Service) Exists(ctx context.Context, name string) (bool, error) {
	if err := ValidateObjectName(name); err != nil {
		return false, err
	}

	_, err := s.client.StatObject(ctx, s.bucketName, name, minio.StatObjectOptions{})
	if err != nil {
		if isNoSuchKey(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat object: %w", err)
	}
	return true, nil
}

// ListObjects returns every object under prefix
func (s *Service) ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	objectCh := s.client.ListObjects(ctx, s.bucketName, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	})

	var objects []ObjectInfo
	for object := range objectCh {
		if object.Err != nil {
			return nil, fmt.Errorf("error listing objects: %w", object.Err)
		}
		objects = append(objects, ObjectInfo{
			Key:          object.Key,
			Size:         object.Size,
			ContentType:  object.ContentType,
			LastModified: object.LastModified,
		})
	}
	return objects, nil
}

// Health checks that the bucket is reachable
func (s *Service) Health(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucketName)
	if err != nil {
		return fmt.Errorf("storage unreachable: %w", err)
	}
	if !exists {
		return fmt.Errorf("bucket %s does not exist", s.bucketName)
	}
	return nil
}

func isNoSuchKey(err error) bool {
	return minio.ToErrorResponse(err).Code == "NoSuchKey"
}

// ObjectName returns a fresh, collision-free object name that keeps the
// lowercased extension of the original filename
func ObjectName(originalName string) string {
	ext := strings.ToLower(path.Ext(originalName))
	if len(ext) > 10 || strings.ContainsAny(ext, `/\`) {
		ext = ""
	}
	return uuid.NewString() + ext
}

// ValidateObjectName rejects names that could escape the bucket namespace
func ValidateObjectName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: empty", ErrInvalidObjectName)
	case len(name) > 255:
		return fmt.Errorf("%w: too long", ErrInvalidObjectName)
	case strings.Contains(name, ".."):
		return fmt.Errorf("%w: path traversal", ErrInvalidObjectName)
	case strings.ContainsAny(name, "\\\x00"):
		return fmt.Errorf("%w: illegal character", ErrInvalidObjectName)
	case strings.HasPrefix(name, "/"):
		return fmt.Errorf("%w: absolute path", ErrInvalidObjectName)
	case strings.HasPrefix(path.Base(name), "."):
		return fmt.Errorf("%w: hidden file", ErrInvalidObjectName)
	}
	return nil
}
