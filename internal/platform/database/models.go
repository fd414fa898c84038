package database

import (
	"time"
)

// Photo represents a row of the photos table
type Photo struct {
	ID           int64     `db:"id"`
	OriginalName string    `db:"original_name"`
	FileName     string    `db:"file_name"`
	ContentType  string    `db:"content_type"`
	Size         int64     `db:"size"`
	FileHash     string    `db:"file_hash"`
	Width        *int      `db:"width"`
	Height       *int      `db:"height"`
	UploadDate   time.Time `db:"upload_date"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// SortOrder represents sort direction
type SortOrder string

const (
	SortAsc  SortOrder = "ASC"
	SortDesc SortOrder = "DESC"
)

// PhotoSortField represents columns photos can be sorted by
type PhotoSortField string

const (
	SortByUploadDate   PhotoSortField = "upload_date"
	SortByOriginalName PhotoSortField = "original_name"
	SortBySize         PhotoSortField = "size"
)

// SortParams represents sorting parameters
type SortParams struct {
	Field PhotoSortField
	Order SortOrder
}

// DefaultSort returns default sorting (newest first)
func DefaultSort() SortParams {
	return SortParams{
		Field: SortByUploadDate,
		Order: SortDesc,
	}
}

// orderByClause builds an ORDER BY clause from a whitelist. Unknown fields
// fall back to the default sort. id breaks ties so listings are stable.
func (s SortParams) orderByClause() string {
	field := s.Field
	switch field {
	case SortByUploadDate, SortBySize:
	case SortByOriginalName:
		field = "LOWER(original_name)"
	default:
		return "upload_date DESC, id DESC"
	}

	order := s.Order
	if order != SortAsc {
		order = SortDesc
	}
	return string(field) + " " + string(order) + ", id " + string(order)
}
