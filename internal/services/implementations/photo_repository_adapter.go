package implementations

import (
	"context"
	"errors"
	"fmt"

	"photo-gallery/internal/domain/photo"
	"photo-gallery/internal/platform/database"
)

// PhotoRepositoryAdapter adapts database.PhotoRepository to photo.Repository
type PhotoRepositoryAdapter struct {
	dbRepo database.PhotoRepository
}

// NewPhotoRepositoryAdapter creates a domain repository adapter
func NewPhotoRepositoryAdapter(dbRepo database.PhotoRepository) *PhotoRepositoryAdapter {
	return &PhotoRepositoryAdapter{dbRepo: dbRepo}
}

var _ photo.Repository = (*PhotoRepositoryAdapter)(nil)

func (a *PhotoRepositoryAdapter) Create(ctx context.Context, p *photo.Photo) error {
	row := toRow(p)
	if err := a.dbRepo.Create(ctx, row); err != nil {
		return mapRepoError(err)
	}
	p.ID = row.ID
	p.UploadDate = row.UploadDate
	return nil
}

func (a *PhotoRepositoryAdapter) GetByID(ctx context.Context, id int64) (*photo.Photo, error) {
	row, err := a.dbRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return toDomain(row), nil
}

func (a *PhotoRepositoryAdapter) GetByHash(ctx context.Context, hash string) (*photo.Photo, error) {
	row, err := a.dbRepo.GetByHash(ctx, hash)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return toDomain(row), nil
}

func (a *PhotoRepositoryAdapter) List(ctx context.Context, sort photo.SortKey) ([]*photo.Photo, error) {
	rows, err := a.dbRepo.List(ctx, sortParams(sort))
	if err != nil {
		return nil, mapRepoError(err)
	}

	photos := make([]*photo.Photo, len(rows))
	for i, row := range rows {
		photos[i] = toDomain(row)
	}
	return photos, nil
}

func (a *PhotoRepositoryAdapter) Update(ctx context.Context, p *photo.Photo) error {
	row := toRow(p)
	if err := a.dbRepo.Update(ctx, row); err != nil {
		return mapRepoError(err)
	}
	p.UploadDate = row.UploadDate
	return nil
}

func (a *PhotoRepositoryAdapter) Delete(ctx context.Context, id int64) error {
	return mapRepoError(a.dbRepo.Delete(ctx, id))
}

// sortParams maps an API sort key onto a whitelisted column and direction
func sortParams(key photo.SortKey) database.SortParams {
	switch photo.ParseSortKey(string(key)) {
	case photo.SortUploadDateAsc:
		return database.SortParams{Field: database.SortByUploadDate, Order: database.SortAsc}
	case photo.SortName:
		return database.SortParams{Field: database.SortByOriginalName, Order: database.SortAsc}
	case photo.SortSize:
		return database.SortParams{Field: database.SortBySize, Order: database.SortDesc}
	default:
		return database.DefaultSort()
	}
}

// mapRepoError translates persistence errors into domain errors, keeping
// the original message for logs
func mapRepoError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, database.ErrNotFound):
		return fmt.Errorf("%w: %w", photo.ErrPhotoNotFound, err)
	case errors.Is(err, database.ErrDuplicateHash):
		return fmt.Errorf("%w: %w", photo.ErrDuplicate, err)
	default:
		return err
	}
}

func toRow(p *photo.Photo) *database.Photo {
	return &database.Photo{
		ID:           p.ID,
		OriginalName: p.OriginalName,
		FileName:     p.FileName,
		ContentType:  p.ContentType,
		Size:         p.Size,
		FileHash:     p.FileHash,
		Width:        p.Width,
		Height:       p.Height,
		UploadDate:   p.UploadDate,
	}
}

func toDomain(row *database.Photo) *photo.Photo {
	return &photo.Photo{
		ID:           row.ID,
		OriginalName: row.OriginalName,
		FileName:     row.FileName,
		ContentType:  row.ContentType,
		Size:         row.Size,
		FileHash:     row.FileHash,
		Width:        row.Width,
		Height:       row.Height,
		UploadDate:   row.UploadDate,
	}
}
