package implementations

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"photo-gallery/internal/domain/photo"
	"photo-gallery/internal/observability"
	"photo-gallery/internal/platform/storage"
)

// DefaultMaxUploadSize applies when no limit is configured
const DefaultMaxUploadSize = 10 * 1024 * 1024

// PhotoService implements photo.Service
type PhotoService struct {
	repo      photo.Repository
	storage   photo.StorageService
	processor photo.ImageProcessor
	cache     photo.CacheService // can be nil
	logger    *observability.Logger
	tracer    trace.Tracer

	maxSize    int64
	objectName func(original string) string
}

// NewPhotoService creates the photo service. cache may be nil.
func NewPhotoService(
	repo photo.Repository,
	store photo.StorageService,
	processor photo.ImageProcessor,
	cache photo.CacheService,
	logger *observability.Logger,
	maxUploadSize int64,
) *PhotoService {
	if logger == nil {
		logger = observability.NewNopLogger()
	}
	if maxUploadSize <= 0 {
		maxUploadSize = DefaultMaxUploadSize
	}
	return &PhotoService{
		repo:       repo,
		storage:    store,
		processor:  processor,
		cache:      cache,
		logger:     logger,
		tracer:     otel.Tracer("photo-gallery/photos"),
		maxSize:    maxUploadSize,
		objectName: storage.ObjectName,
	}
}

var _ photo.Service = (*PhotoService)(nil)

// Upload validates the file, hashes it and applies the duplicate policy
func (s *PhotoService) Upload(ctx context.Context, req *photo.UploadRequest, data io.Reader, handling photo.DuplicateHandling) (*photo.UploadResult, error) {
	if req == nil {
		return nil, errors.New("upload request cannot be nil")
	}

	ctx, span := s.tracer.Start(ctx, "photos.Upload", trace.WithAttributes(
		attribute.String("photo.original_name", req.OriginalName),
		attribute.String("photo.on_duplicate", handling.String()),
	))
	defer span.End()

	result, err := s.upload(ctx, req, data, handling)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(
		attribute.Int64("photo.id", result.Photo.ID),
		attribute.String("photo.outcome", result.Outcome.String()),
	)
	return result, nil
}

func (s *PhotoService) upload(ctx context.Context, req *photo.UploadRequest, data io.Reader, handling photo.DuplicateHandling) (*photo.UploadResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	content, hash, err := s.readContent(data)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByHash(ctx, hash)
	switch {
	case errors.Is(err, photo.ErrPhotoNotFound):
		created, err := s.create(ctx, req, content, hash)
		if err != nil {
			return nil, err
		}
		return &photo.UploadResult{Photo: created, Outcome: photo.OutcomeCreated}, nil
	case err != nil:
		return nil, fmt.Errorf("failed to look up photo by hash: %w", err)
	}

	switch handling {
	case photo.DuplicateSkip:
		s.logger.Info(ctx).
			Int64("photo_id", existing.ID).
			Str("original_name", req.OriginalName).
			Msg("Duplicate upload skipped")
		return &photo.UploadResult{Photo: existing, Outcome: photo.OutcomeSkipped}, nil
	case photo.DuplicateOverwrite:
		updated, err := s.replaceFile(ctx, existing, req, content, hash)
		if err != nil {
			return nil, err
		}
		return &photo.UploadResult{Photo: updated, Outcome: photo.OutcomeOverwritten}, nil
	default:
		return nil, photo.ErrDuplicate
	}
}

// readContent buffers at most maxSize bytes and returns the SHA-256 hex digest
func (s *PhotoService) readContent(data io.Reader) ([]byte, string, error) {
	if data == nil {
		return nil, "", photo.ErrEmptyFile
	}

	content, err := io.ReadAll(io.LimitReader(data, s.maxSize+1))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(content)) > s.maxSize {
		return nil, "", photo.ErrFileTooLarge
	}
	if len(content) == 0 {
		return nil, "", photo.ErrEmptyFile
	}

	return content, hashContent(content), nil
}

func hashContent(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

func (s *PhotoService) create(ctx context.Context, req *photo.UploadRequest, content []byte, hash string) (*photo.Photo, error) {
	name := s.objectName(req.OriginalName)
	if err := s.storage.Store(ctx, name, req.ContentType, bytes.NewReader(content), int64(len(content))); err != nil {
		return nil, fmt.Errorf("failed to store photo: %w", err)
	}

	p := &photo.Photo{
		OriginalName: req.OriginalName,
		FileName:     name,
		ContentType:  req.ContentType,
		Size:         int64(len(content)),
		FileHash:     hash,
	}
	s.fillDimensions(ctx, p, content)

	if err := p.Validate(); err != nil {
		s.deleteObject(ctx, name)
		return nil, err
	}

	if err := s.repo.Create(ctx, p); err != nil {
		s.deleteObject(ctx, name)
		return nil, fmt.Errorf("failed to save photo: %w", err)
	}

	s.invalidate(ctx, 0)
	s.logger.Info(ctx).
		Int64("photo_id", p.ID).
		Str("file_name", p.FileName).
		Int64("size", p.Size).
		Msg("Photo uploaded")

	return p, nil
}

// replaceFile stores new content for p and removes the previous object
func (s *PhotoService) replaceFile(ctx context.Context, p *photo.Photo, req *photo.UploadRequest, content []byte, hash string) (*photo.Photo, error) {
	name := s.objectName(req.OriginalName)
	if err := s.storage.Store(ctx, name, req.ContentType, bytes.NewReader(content), int64(len(content))); err != nil {
		return nil, fmt.Errorf("failed to store photo: %w", err)
	}

	oldName := p.FileName
	updated := *p
	updated.OriginalName = req.OriginalName
	updated.FileName = name
	updated.ContentType = req.ContentType
	updated.Size = int64(len(content))
	updated.FileHash = hash
	updated.Width, updated.Height = nil, nil
	s.fillDimensions(ctx, &updated, content)

	if err := s.repo.Update(ctx, &updated); err != nil {
		s.deleteObject(ctx, name)
		return nil, fmt.Errorf("failed to update photo: %w", err)
	}

	if oldName != name {
		s.deleteObject(ctx, oldName)
	}
	s.invalidate(ctx, updated.ID)

	s.logger.Info(ctx).
		Int64("photo_id", updated.ID).
		Str("old_file_name", oldName).
		Str("file_name", updated.FileName).
		Msg("Photo file replaced")

	return &updated, nil
}

// fillDimensions is best effort; formats without a decoder keep nil dimensions
func (s *PhotoService) fillDimensions(ctx context.Context, p *photo.Photo, content []byte) {
	if s.processor == nil {
		return
	}
	w, h, err := s.processor.Dimensions(ctx, bytes.NewReader(content))
	if err != nil {
		s.logger.Debug(ctx).Err(err).Str("file_name", p.FileName).Msg("Could not read image dimensions")
		return
	}
	p.Width, p.Height = &w, &h
}

// Replace swaps the file behind an existing photo
func (s *PhotoService) Replace(ctx context.Context, id int64, req *photo.UploadRequest, data io.Reader) (*photo.Photo, error) {
	if req == nil {
		return nil, errors.New("upload request cannot be nil")
	}

	ctx, span := s.tracer.Start(ctx, "photos.Replace", trace.WithAttributes(attribute.Int64("photo.id", id)))
	defer span.End()

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}

	content, hash, err := s.readContent(data)
	if err != nil {
		return nil, err
	}

	if hash == existing.FileHash {
		return nil, photo.ErrIdenticalContent
	}

	other, err := s.repo.GetByHash(ctx, hash)
	switch {
	case err == nil && other.ID != id:
		return nil, photo.ErrDuplicateOfOther
	case err != nil && !errors.Is(err, photo.ErrPhotoNotFound):
		return nil, fmt.Errorf("failed to look up photo by hash: %w", err)
	}

	updated, err := s.replaceFile(ctx, existing, req, content, hash)
	if errors.Is(err, photo.ErrDuplicate) {
		// Lost a race with a concurrent upload of the same content
		return nil, photo.ErrDuplicateOfOther
	}
	return updated, err
}

// Get returns a photo, consulting the cache first
func (s *PhotoService) Get(ctx context.Context, id int64) (*photo.Photo, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetPhoto(ctx, id); err == nil {
			return cached, nil
		}
	}

	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetPhoto(ctx, p); err != nil {
			s.logger.Warn(ctx).Err(err).Int64("photo_id", id).Msg("Failed to cache photo")
		}
	}
	return p, nil
}

// List returns every photo in the requested order
func (s *PhotoService) List(ctx context.Context, sort photo.SortKey) ([]*photo.Photo, error) {
	sort = photo.ParseSortKey(string(sort))

	if s.cache != nil {
		if cached, err := s.cache.GetPhotoList(ctx, sort); err == nil {
			return cached, nil
		}
	}

	photos, err := s.repo.List(ctx, sort)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetPhotoList(ctx, sort, photos); err != nil {
			s.logger.Warn(ctx).Err(err).Str("sort", string(sort)).Msg("Failed to cache photo list")
		}
	}
	return photos, nil
}

// Delete removes the record first, then the stored object
func (s *PhotoService) Delete(ctx context.Context, id int64) error {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.deleteObject(ctx, p.FileName)
	s.invalidate(ctx, id)

	s.logger.Info(ctx).Int64("photo_id", id).Str("file_name", p.FileName).Msg("Photo deleted")
	return nil
}

// Open returns the photo and a reader over its stored content
func (s *PhotoService) Open(ctx context.Context, id int64) (*photo.Photo, io.ReadCloser, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	rc, err := s.storage.Retrieve(ctx, p.FileName)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, nil, fmt.Errorf("%w: file %s is missing", photo.ErrPhotoNotFound, p.FileName)
		}
		return nil, nil, fmt.Errorf("failed to open photo: %w", err)
	}
	return p, rc, nil
}

// Thumbnail renders a downscaled copy of the stored photo
func (s *PhotoService) Thumbnail(ctx context.Context, id int64, maxEdge int) ([]byte, string, error) {
	_, rc, err := s.Open(ctx, id)
	if err != nil {
		return nil, "", err
	}
	defer rc.Close() //nolint:errcheck // Read-only stream

	out, contentType, err := s.processor.Thumbnail(ctx, rc, maxEdge)
	if err != nil {
		if errors.Is(err, storage.ErrUnsupportedImage) {
			return nil, "", photo.ErrNotAnImage
		}
		return nil, "", err
	}
	return out, contentType, nil
}

// Reconcile imports stored objects that have no photo record
func (s *PhotoService) Reconcile(ctx context.Context) (int, error) {
	ctx, span := s.tracer.Start(ctx, "photos.Reconcile")
	defer span.End()

	objects, err := s.storage.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list stored objects: %w", err)
	}

	known, err := s.repo.List(ctx, photo.SortUploadDate)
	if err != nil {
		return 0, fmt.Errorf("failed to list photos: %w", err)
	}
	recorded := make(map[string]struct{}, len(known))
	for _, p := range known {
		recorded[p.FileName] = struct{}{}
	}

	imported := 0
	for _, obj := range objects {
		if _, ok := recorded[obj.Name]; ok {
			continue
		}
		if !photo.HasImageExtension(obj.Name) {
			s.logger.Debug(ctx).Str("object", obj.Name).Msg("Skipping non-image object")
			continue
		}

		if err := s.importObject(ctx, obj); err != nil {
			s.logger.Warn(ctx).Err(err).Str("object", obj.Name).Msg("Skipping stored object")
			continue
		}
		imported++
	}

	if imported > 0 {
		s.invalidate(ctx, 0)
	}
	span.SetAttributes(attribute.Int("photos.imported", imported))
	s.logger.Info(ctx).Int("imported", imported).Int("objects", len(objects)).Msg("Storage reconciled")
	return imported, nil
}

func (s *PhotoService) importObject(ctx context.Context, obj photo.StoredObject) error {
	rc, err := s.storage.Retrieve(ctx, obj.Name)
	if err != nil {
		return err
	}
	content, hash, err := s.readContent(rc)
	_ = rc.Close() //nolint:errcheck // Read-only stream
	if err != nil {
		return err
	}

	if _, err := s.repo.GetByHash(ctx, hash); err == nil {
		return photo.ErrDuplicate
	} else if !errors.Is(err, photo.ErrPhotoNotFound) {
		return err
	}

	contentType := obj.ContentType
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = photo.ContentTypeFor(obj.Name)
	}

	p := &photo.Photo{
		OriginalName: obj.Name,
		FileName:     obj.Name,
		ContentType:  contentType,
		Size:         int64(len(content)),
		FileHash:     hash,
	}
	s.fillDimensions(ctx, p, content)

	if err := p.Validate(); err != nil {
		return err
	}
	return s.repo.Create(ctx, p)
}

func (s *PhotoService) deleteObject(ctx context.Context, name string) {
	if err := s.storage.Delete(ctx, name); err != nil {
		s.logger.Warn(ctx).Err(err).Str("file_name", name).Msg("Failed to delete stored object")
	}
}

// invalidate drops the cached photo (when id is set) and every cached listing
func (s *PhotoService) invalidate(ctx context.Context, id int64) {
	if s.cache == nil {
		return
	}
	if id != 0 {
		if err := s.cache.DeletePhoto(ctx, id); err != nil {
			s.logger.Warn(ctx).Err(err).Int64("photo_id", id).Msg("Failed to evict cached photo")
		}
	}
	if err := s.cache.InvalidatePhotoLists(ctx); err != nil {
		s.logger.Warn(ctx).Err(err).Msg("Failed to invalidate photo lists")
	}
}
