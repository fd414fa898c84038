package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"photo-gallery/internal/domain/photo"
)

// LegacyUploadResponse is the envelope returned by POST /api/upload
type LegacyUploadResponse struct {
	Success bool   `json:"success"`
	ID      int64  `json:"id,omitempty"`
	Error   string `json:"error,omitempty"`
}

// uploadedFile is the single "file" part of a multipart request
type uploadedFile struct {
	req  *photo.UploadRequest
	file multipart.File
}

// uploadPhotoHandler handles POST /api/photos?onDuplicate=<mode>
func (h *Handler) uploadPhotoHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "UploadPhoto")
	defer span.End()
	r = r.WithContext(ctx)

	handling, err := photo.ParseDuplicateHandling(r.URL.Query().Get("onDuplicate"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	upload, err := h.readUpload(w, r)
	if err != nil {
		span.RecordError(err)
		h.writeError(w, r, err)
		return
	}
	defer upload.close(r)

	result, err := h.photos.Upload(ctx, upload.req, upload.file, handling)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "upload failed")
		h.writeError(w, r, err)
		return
	}

	span.SetAttributes(
		attribute.Int64("photo.id", result.Photo.ID),
		attribute.String("upload.outcome", result.Outcome.String()),
	)
	h.logger.Info(ctx).
		Int64("photo_id", result.Photo.ID).
		Str("filename", upload.req.OriginalName).
		Str("on_duplicate", handling.String()).
		Str("outcome", result.Outcome.String()).
		Msg("Photo uploaded")

	status := http.StatusOK
	if result.Outcome == photo.OutcomeCreated {
		status = http.StatusCreated
	}
	h.writeJSON(w, r, status, result.Photo)
}

// legacyUploadHandler handles POST /api/upload. Every outcome is reported
// with status 200 in a {success, error} envelope, and a duplicate resolves
// to the photo already stored.
func (h *Handler) legacyUploadHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	fail := func(err error) {
		_, message := statusFor(err)
		h.logger.Warn(ctx).Err(err).Msg("Legacy upload failed")
		h.writeJSON(w, r, http.StatusOK, LegacyUploadResponse{Success: false, Error: message})
	}

	upload, err := h.readUpload(w, r)
	if err != nil {
		fail(err)
		return
	}
	defer upload.close(r)

	result, err := h.photos.Upload(ctx, upload.req, upload.file, photo.DuplicateSkip)
	if err != nil {
		fail(err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, LegacyUploadResponse{Success: true, ID: result.Photo.ID})
}

func (h *Handler) listPhotosHandler(w http.ResponseWriter, r *http.Request) {
	sort := photo.ParseSortKey(r.URL.Query().Get("sortBy"))

	photos, err := h.photos.List(r.Context(), sort)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if photos == nil {
		photos = []*photo.Photo{}
	}
	h.writeJSON(w, r, http.StatusOK, photos)
}

func (h *Handler) getPhotoHandler(w http.ResponseWriter, r *http.Request) {
	id, err := photoID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	p, err := h.photos.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, p)
}

// replacePhotoHandler handles PUT /api/photos/{id} with a multipart "file"
func (h *Handler) replacePhotoHandler(w http.ResponseWriter, r *http.Request) {
	id, err := photoID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	upload, err := h.readUpload(w, r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	defer upload.close(r)

	p, err := h.photos.Replace(r.Context(), id, upload.req, upload.file)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.logger.Info(r.Context()).
		Int64("photo_id", p.ID).
		Str("filename", upload.req.OriginalName).
		Msg("Photo replaced")
	h.writeJSON(w, r, http.StatusOK, p)
}

func (h *Handler) deletePhotoHandler(w http.ResponseWriter, r *http.Request) {
	id, err := photoID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.photos.Delete(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// photoContentHandler streams the stored file of a photo
func (h *Handler) photoContentHandler(w http.ResponseWriter, r *http.Request) {
	id, err := photoID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	p, rc, err := h.photos.Open(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	defer rc.Close() //nolint:errcheck // Read-only stream

	w.Header().Set("Content-Type", p.ContentType)
	w.Header().Set("Content-Length", strconv.FormatInt(p.Size, 10))
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", p.OriginalName))
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, rc); err != nil {
		h.logger.Warn(r.Context()).Err(err).Int64("photo_id", id).Msg("Failed to stream photo")
	}
}

// thumbnailHandler handles GET /api/photos/{id}/thumbnail?size=<edge>.
// A missing or malformed size yields the default edge.
func (h *Handler) thumbnailHandler(w http.ResponseWriter, r *http.Request) {
	id, err := photoID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	size, _ := strconv.Atoi(r.URL.Query().Get("size")) //nolint:errcheck // Zero selects the default

	data, contentType, err := h.photos.Thumbnail(r.Context(), id, size)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data) //nolint:errcheck // Best effort response
}

// readUpload parses the multipart body and opens its "file" part
func (h *Handler) readUpload(w http.ResponseWriter, r *http.Request) (*uploadedFile, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize+maxMemoryPerUpload)

	if err := r.ParseMultipartForm(maxMemoryPerUpload); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", errMissingFile, err)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		removeMultipart(r)
		return nil, fmt.Errorf("%w: %w", errMissingFile, err)
	}

	contentType, err := detectContentType(file, header)
	if err != nil {
		_ = file.Close() //nolint:errcheck // Already returning error
		removeMultipart(r)
		return nil, err
	}

	return &uploadedFile{
		req: &photo.UploadRequest{
			OriginalName: header.Filename,
			ContentType:  contentType,
			Size:         header.Size,
		},
		file: file,
	}, nil
}

func (u *uploadedFile) close(r *http.Request) {
	_ = u.file.Close() //nolint:errcheck // Upload already consumed
	removeMultipart(r)
}

func removeMultipart(r *http.Request) {
	if r.MultipartForm != nil {
		_ = r.MultipartForm.RemoveAll() //nolint:errcheck // Cleanup operation
	}
}

// detectContentType prefers the part's declared type and sniffs the first
// 512 bytes otherwise
func detectContentType(file multipart.File, header *multipart.FileHeader) (string, error) {
	if ct := header.Header.Get("Content-Type"); ct != "" {
		return ct, nil
	}

	buffer := make([]byte, 512)
	n, err := io.ReadFull(file, buffer)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("failed to seek file: %w", err)
	}
	return http.DetectContentType(buffer[:n]), nil
}

func photoID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errInvalidID
	}
	return id, nil
}

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error(r.Context()).Err(err).Msg("Failed to encode response")
	}
}
