package photo

import (
	"context"
	"io"
)

// SortKey selects the ordering of a photo listing
type SortKey string

const (
	SortUploadDate    SortKey = "uploadDate"
	SortUploadDateAsc SortKey = "uploadDateAsc"
	SortName          SortKey = "name"
	SortSize          SortKey = "size"
)

// ParseSortKey returns the sort key for raw, falling back to SortUploadDate
func ParseSortKey(raw string) SortKey {
	switch SortKey(raw) {
	case SortUploadDate, SortUploadDateAsc, SortName, SortSize:
		return SortKey(raw)
	default:
		return SortUploadDate
	}
}

// Repository defines the interface for photo persistence
type Repository interface {
	// Create stores a new photo and fills its ID and upload date
	Create(ctx context.Context, p *Photo) error

	// GetByID retrieves a photo by its ID
	GetByID(ctx context.Context, id int64) (*Photo, error)

	// GetByHash retrieves the photo whose content hash matches
	GetByHash(ctx context.Context, hash string) (*Photo, error)

	// List returns all photos in the requested order
	List(ctx context.Context, sort SortKey) ([]*Photo, error)

	// Update replaces the file fields of an existing photo
	Update(ctx context.Context, p *Photo) error

	// Delete removes a photo record
	Delete(ctx context.Context, id int64) error
}

// StorageService defines the interface for photo object storage
type StorageService interface {
	// Store saves an object under name
	Store(ctx context.Context, name string, contentType string, data io.Reader, size int64) error

	// Retrieve opens an object for reading
	Retrieve(ctx context.Context, name string) (io.ReadCloser, error)

	// Delete removes an object
	Delete(ctx context.Context, name string) error

	// List returns every stored object
	List(ctx context.Context) ([]StoredObject, error)
}

// StoredObject is an object found in storage
type StoredObject struct {
	Name        string
	Size        int64
	ContentType string
}

// ImageProcessor decodes image data
type ImageProcessor interface {
	// Dimensions decodes the image header and returns width and height
	Dimensions(ctx context.Context, data io.Reader) (width, height int, err error)

	// Thumbnail returns a downscaled rendition and its content type
	Thumbnail(ctx context.Context, data io.Reader, maxEdge int) ([]byte, string, error)
}

// CacheService caches photo records and listings
type CacheService interface {
	GetPhoto(ctx context.Context, id int64) (*Photo, error)
	SetPhoto(ctx context.Context, p *Photo) error
	DeletePhoto(ctx context.Context, id int64) error
	GetPhotoList(ctx context.Context, sort SortKey) ([]*Photo, error)
	SetPhotoList(ctx context.Context, sort SortKey, photos []*Photo) error
	InvalidatePhotoLists(ctx context.Context) error
}

// Service is the photo application service used by the HTTP layer
type Service interface {
	// Upload stores a new photo applying the duplicate policy
	Upload(ctx context.Context, req *UploadRequest, data io.Reader, handling DuplicateHandling) (*UploadResult, error)

	// Replace swaps the file behind an existing photo
	Replace(ctx context.Context, id int64, req *UploadRequest, data io.Reader) (*Photo, error)

	// Get returns a single photo
	Get(ctx context.Context, id int64) (*Photo, error)

	// List returns every photo in the requested order
	List(ctx context.Context, sort SortKey) ([]*Photo, error)

	// Delete removes a photo and its stored file
	Delete(ctx context.Context, id int64) error

	// Open streams the stored file of a photo
	Open(ctx context.Context, id int64) (*Photo, io.ReadCloser, error)

	// Thumbnail renders a downscaled copy of a photo
	Thumbnail(ctx context.Context, id int64, maxEdge int) ([]byte, string, error)

	// Reconcile creates records for stored objects that have none
	Reconcile(ctx context.Context) (int, error)
}
