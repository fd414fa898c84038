package uploader

import (
	"errors"
	"fmt"
)

// Messages shown to the user through the Notifier
const (
	MsgMissingCSRF  = "Missing CSRF token; refresh and try again."
	MsgUploadFailed = "Upload failed: "
	MsgNetworkError = "Network error or server unavailable"
)

// ErrMissingCSRFToken is returned when the deployment requires a CSRF token
// and none could be read. No request is sent.
var ErrMissingCSRFToken = errors.New("missing CSRF token")

// ErrInvalidResponse wraps a success body that is not valid JSON. It is
// reported as a *TransportError.
var ErrInvalidResponse = errors.New("invalid response from server")

// RejectedError reports a file the server refused. Files before it stay
// uploaded; files after it were not attempted.
type RejectedError struct {
	Index      int
	File       string
	StatusCode int
	Message    string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("upload of %s (file %d) rejected with status %d: %s", e.File, e.Index+1, e.StatusCode, e.Message)
}

// TransportError reports a request that could not be sent or whose response
// could not be received
type TransportError struct {
	Index int
	File  string
	Err   error
}

func (e *TransportError) Error() string {
	if e.File == "" {
		return fmt.Sprintf("transport failure: %v", e.Err)
	}
	return fmt.Sprintf("transport failure uploading %s (file %d): %v", e.File, e.Index+1, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// FileError reports a selected file that could not be read locally
type FileError struct {
	Index int
	File  string
	Err   error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("failed to read %s (file %d): %v", e.File, e.Index+1, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}
