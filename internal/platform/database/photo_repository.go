package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// photoRepository implements PhotoRepository on PostgreSQL
type photoRepository struct {
	db *sql.DB
}

// NewPhotoRepository creates a new PhotoRepository
func NewPhotoRepository(db *sql.DB) PhotoRepository {
	return &photoRepository{db: db}
}

// Create inserts a new photo record. A second record with the same content
// hash fails with ErrDuplicateHash.
func (r *photoRepository) Create(ctx context.Context, photo *Photo) error {
	query := `
		INSERT INTO photos (
			original_name, file_name, content_type, size, file_hash, width, height
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, upload_date, updated_at
	`

	err := r.db.QueryRowContext(
		ctx, query,
		photo.OriginalName,
		photo.FileName,
		photo.ContentType,
		photo.Size,
		photo.FileHash,
		photo.Width,
		photo.Height,
	).Scan(
		&photo.ID,
		&photo.UploadDate,
		&photo.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return ErrDuplicateHash
	}

	return err
}

// getOne runs a single-row photo query, mapping no rows to ErrNotFound
func (r *photoRepository) getOne(ctx context.Context, query string, args ...any) (*Photo, error) {
	photo, err := scanPhoto(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return photo, err
}

// GetByID retrieves a photo by its ID
func (r *photoRepository) GetByID(ctx context.Context, id int64) (*Photo, error) {
	photo, err := r.getOne(ctx, `SELECT `+photoColumns+` FROM photos WHERE id = $1`, id)
	if errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("photo with ID %d: %w", id, err)
	}
	return photo, err
}

// GetByHash retrieves the photo with the given content hash
func (r *photoRepository) GetByHash(ctx context.Context, hash string) (*Photo, error) {
	return r.getOne(ctx, `SELECT `+photoColumns+` FROM photos WHERE file_hash = $1`, hash)
}

// Update replaces the file fields of an existing photo and stamps a new upload date
func (r *photoRepository) Update(ctx context.Context, photo *Photo) error {
	query := `
		UPDATE photos SET
			original_name = $2,
			file_name = $3,
			content_type = $4,
			size = $5,
			file_hash = $6,
			width = $7,
			height = $8,
			upload_date = NOW()
		WHERE id = $1
		RETURNING upload_date, updated_at
	`

	err := r.db.QueryRowContext(
		ctx, query,
		photo.ID,
		photo.OriginalName,
		photo.FileName,
		photo.ContentType,
		photo.Size,
		photo.FileHash,
		photo.Width,
		photo.Height,
	).Scan(&photo.UploadDate, &photo.UpdatedAt)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("photo with ID %d: %w", photo.ID, ErrNotFound)
	case isUniqueViolation(err):
		return ErrDuplicateHash
	}
	return err
}

// Delete removes a photo record by ID
func (r *photoRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM photos WHERE id = $1`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return fmt.Errorf("photo with ID %d: %w", id, ErrNotFound)
	}

	return nil
}

// List retrieves every photo in the requested order
func (r *photoRepository) List(ctx context.Context, sort SortParams) ([]*Photo, error) {
	query := `SELECT ` + photoColumns + ` FROM photos ORDER BY ` + sort.orderByClause()

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}

	return scanPhotos(rows)
}

// Count returns the total number of photos
func (r *photoRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM photos").Scan(&count)
	return count, err
}
