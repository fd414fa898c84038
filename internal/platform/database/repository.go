package database

import (
	"context"
	"database/sql"
)

// PhotoRepository defines the interface for photo data access
type PhotoRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, photo *Photo) error
	GetByID(ctx context.Context, id int64) (*Photo, error)
	GetByHash(ctx context.Context, hash string) (*Photo, error)
	Update(ctx context.Context, photo *Photo) error
	Delete(ctx context.Context, id int64) error

	// List operations
	List(ctx context.Context, sort SortParams) ([]*Photo, error)
	Count(ctx context.Context) (int, error)
}

// photoColumns is the select list every photo query scans
const photoColumns = `id, original_name, file_name, content_type, size,
	file_hash, width, height, upload_date, updated_at`

// rowScanner is satisfied by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

func scanPhoto(row rowScanner) (*Photo, error) {
	photo := &Photo{}
	err := row.Scan(
		&photo.ID,
		&photo.OriginalName,
		&photo.FileName,
		&photo.ContentType,
		&photo.Size,
		&photo.FileHash,
		&photo.Width,
		&photo.Height,
		&photo.UploadDate,
		&photo.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return photo, nil
}

// scanPhotos is a shared helper function to scan multiple photo records from database rows
func scanPhotos(rows *sql.Rows) ([]*Photo, error) {
	defer func() { _ = rows.Close() }() //nolint:errcheck // Resource cleanup

	photos := []*Photo{}
	for rows.Next() {
		photo, err := scanPhoto(rows)
		if err != nil {
			return nil, err
		}
		photos = append(photos, photo)
	}

	return photos, rows.Err()
}
