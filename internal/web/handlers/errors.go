package handlers

import (
	"errors"
	"net/http"

	"photo-gallery/internal/domain/photo"
)

var (
	errMissingFile = errors.New("no file provided")
	errInvalidID   = errors.New("invalid photo id")
)

// statusFor maps a domain error onto an HTTP status and the message shown
// to the user
func statusFor(err error) (int, string) {
	var maxBytes *http.MaxBytesError
	switch {
	case errors.Is(err, photo.ErrInvalidFileType):
		return http.StatusBadRequest, "Invalid file type"
	case errors.Is(err, photo.ErrNotAnImage):
		return http.StatusBadRequest, "Not an image file"
	case errors.Is(err, photo.ErrInvalidDuplicateArg):
		return http.StatusBadRequest, "Invalid onDuplicate value"
	case errors.Is(err, photo.ErrEmptyFile):
		return http.StatusBadRequest, "File is empty"
	case errors.Is(err, errMissingFile):
		return http.StatusBadRequest, "No file provided"
	case errors.Is(err, errInvalidID):
		return http.StatusBadRequest, "Invalid photo id"
	case errors.Is(err, photo.ErrDuplicateOfOther):
		return http.StatusConflict, "File already exists (duplicate detected)"
	case errors.Is(err, photo.ErrIdenticalContent):
		return http.StatusConflict, "File is identical to current photo"
	case errors.Is(err, photo.ErrDuplicate):
		return http.StatusConflict, "Duplicate file"
	case errors.Is(err, photo.ErrPhotoNotFound):
		return http.StatusNotFound, "Photo not found"
	case errors.Is(err, photo.ErrFileTooLarge), errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge, "File too large"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, message := statusFor(err)

	event := h.logger.Warn(r.Context())
	if status >= http.StatusInternalServerError {
		event = h.logger.Error(r.Context())
	}
	event.Err(err).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Int("status", status).
		Msg("Request failed")

	http.Error(w, message, status)
}
