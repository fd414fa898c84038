package photo

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

// Photo represents a stored photo and the record returned by the upload API
type Photo struct {
	ID           int64     `json:"id" db:"id"`
	OriginalName string    `json:"originalName" db:"original_name"`
	FileName     string    `json:"fileName" db:"file_name"`
	ContentType  string    `json:"contentType" db:"content_type"`
	Size         int64     `json:"size" db:"size"`
	FileHash     string    `json:"fileHash" db:"file_hash"`
	Width        *int      `json:"width,omitempty" db:"width"`
	Height       *int      `json:"height,omitempty" db:"height"`
	UploadDate   time.Time `json:"uploadDate" db:"upload_date"`
}

// UploadRequest carries one uploaded file into the photo service
type UploadRequest struct {
	OriginalName string
	ContentType  string
	Size         int64
}

// Outcome tells the caller what an upload did to the gallery
type Outcome int

const (
	// OutcomeCreated means a new photo record was created
	OutcomeCreated Outcome = iota
	// OutcomeSkipped means an identical photo already existed and was returned as-is
	OutcomeSkipped
	// OutcomeOverwritten means an identical photo's file was replaced
	OutcomeOverwritten
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCreated:
		return "created"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeOverwritten:
		return "overwritten"
	default:
		return "unknown"
	}
}

// UploadResult is the photo an upload resolved to and how it got there
type UploadResult struct {
	Photo   *Photo
	Outcome Outcome
}

// Domain errors
var (
	ErrInvalidFileType     = errors.New("invalid file type")
	ErrNotAnImage          = errors.New("not an image file")
	ErrDuplicate           = errors.New("duplicate file")
	ErrDuplicateOfOther    = errors.New("file already exists (duplicate detected)")
	ErrIdenticalContent    = errors.New("file is identical to current photo")
	ErrPhotoNotFound       = errors.New("photo not found")
	ErrFileTooLarge        = errors.New("file too large")
	ErrEmptyFile           = errors.New("file is empty")
	ErrInvalidDuplicateArg = errors.New("invalid onDuplicate value")
	ErrCacheUnavailable    = errors.New("cache unavailable")
)

// Constants for validation
const (
	MaxOriginalNameLen = 255
	HashLength         = 64
)

var allowedExtension = regexp.MustCompile(`(?i)\.(jpg|jpeg|png|gif|bmp|webp)$`)

var extensionTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".bmp":  "image/bmp",
	".webp": "image/webp",
}

// HasImageExtension reports whether name ends in an accepted image extension
func HasImageExtension(name string) bool {
	return allowedExtension.MatchString(name)
}

// ContentTypeFor guesses the content type of a file from its extension
func ContentTypeFor(name string) string {
	if ct, ok := extensionTypes[strings.ToLower(filepath.Ext(name))]; ok {
		return ct
	}
	return "application/octet-stream"
}

// Validate checks the filename and content type of an upload
func (r *UploadRequest) Validate() error {
	if r.OriginalName == "" || !allowedExtension.MatchString(r.OriginalName) {
		return ErrInvalidFileType
	}
	if len(r.OriginalName) > MaxOriginalNameLen || !utf8.ValidString(r.OriginalName) {
		return fmt.Errorf("%w: filename too long or not UTF-8", ErrInvalidFileType)
	}
	if !strings.HasPrefix(strings.ToLower(r.ContentType), "image/") {
		return ErrNotAnImage
	}
	return nil
}

// Extension returns the lowercased extension of the original filename
func (r *UploadRequest) Extension() string {
	return strings.ToLower(filepath.Ext(r.OriginalName))
}

// Validate checks a photo record before it is persisted
func (p *Photo) Validate() error {
	if p.OriginalName == "" || p.FileName == "" {
		return fmt.Errorf("%w: filename cannot be empty", ErrInvalidFileType)
	}
	if !strings.HasPrefix(p.ContentType, "image/") {
		return ErrNotAnImage
	}
	if p.Size <= 0 {
		return ErrEmptyFile
	}
	if len(p.FileHash) != HashLength {
		return fmt.Errorf("invalid file hash length %d", len(p.FileHash))
	}
	return nil
}

// GetAspectRatio returns the aspect ratio of the photo if dimensions are available
func (p *Photo) GetAspectRatio() *float64 {
	if p.Width != nil && p.Height != nil && *p.Height != 0 {
		ratio := float64(*p.Width) / float64(*p.Height)
		return &ratio
	}
	return nil
}
