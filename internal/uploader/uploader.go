// Package uploader sends a selection of photos to the gallery, one request
// per file, strictly in selection order. The first failure stops the batch;
// a fully successful batch ends with a single reload of the gallery view.
package uploader

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime"
	"os"
	"path/filepath"
)

// DuplicateMode is the server-defined policy for uploads that collide with an
// existing photo. The client never interprets it.
type DuplicateMode string

// Contract selects the endpoint and response shape a deployment speaks
type Contract int

const (
	// ContractResource posts to /api/photos with onDuplicate and CSRF and
	// expects the created photo record back
	ContractResource Contract = iota
	// ContractEnvelope posts to /api/upload without duplicate mode or CSRF
	// and expects {success, error}
	ContractEnvelope
)

const (
	resourceEndpoint = "/api/photos"
	envelopeEndpoint = "/api/upload"

	// FileField is the multipart field carrying the file
	FileField = "file"
	// DuplicateParam is the query parameter carrying the duplicate mode
	DuplicateParam = "onDuplicate"
	// DefaultCSRFHeader is used when the page does not name one
	DefaultCSRFHeader = "X-CSRF-TOKEN"
)

// ParseContract maps "resource" or "envelope" to a Contract
func ParseContract(raw string) (Contract, bool) {
	switch raw {
	case "", "resource":
		return ContractResource, true
	case "envelope":
		return ContractEnvelope, true
	default:
		return ContractResource, false
	}
}

func (c Contract) String() string {
	if c == ContractEnvelope {
		return "envelope"
	}
	return "resource"
}

func (c Contract) defaultEndpoint() string {
	if c == ContractEnvelope {
		return envelopeEndpoint
	}
	return resourceEndpoint
}

// sendsDuplicateMode reports whether requests carry the onDuplicate parameter
func (c Contract) sendsDuplicateMode() bool {
	return c == ContractResource
}

// sendsCSRF reports whether the contract can require an anti-forgery token
func (c Contract) sendsCSRF() bool {
	return c == ContractResource
}

// Credential is the anti-forgery token and the header that carries it
type Credential struct {
	Token  string
	Header string
}

// Present reports whether a token is available
func (c Credential) Present() bool {
	return c.Token != ""
}

// HeaderName returns the configured header or the default
func (c Credential) HeaderName() string {
	if c.Header == "" {
		return DefaultCSRFHeader
	}
	return c.Header
}

// Record is the decoded body of a successful upload. Any JSON value is
// accepted; the server normally sends the photo resource as an object.
type Record struct {
	Value any
}

// Field returns a member of an object body
func (r Record) Field(name string) (any, bool) {
	obj, ok := r.Value.(map[string]any)
	if !ok {
		return nil, false
	}
	v, ok := obj[name]
	return v, ok
}

// UnmarshalJSON stores any JSON value
func (r *Record) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &r.Value)
}

// MarshalJSON writes the value back unchanged
func (r Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Value)
}

// File is one selected file: a display name and a way to read it
type File struct {
	Name        string
	ContentType string
	Open        func() (io.ReadCloser, error)
}

// FileFromPath selects a file on disk
func FileFromPath(path string) File {
	return File{
		Name:        filepath.Base(path),
		ContentType: mime.TypeByExtension(filepath.Ext(path)),
		Open: func() (io.ReadCloser, error) {
			return os.Open(path)
		},
	}
}

// FileFromBytes selects in-memory content
func FileFromBytes(name string, data []byte) File {
	return File{
		Name:        name,
		ContentType: mime.TypeByExtension(filepath.Ext(name)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

// Notifier surfaces errors to the user and blocks until they are acknowledged
type Notifier interface {
	Alert(ctx context.Context, message string)
}

// Reloader refreshes the gallery view after a successful batch
type Reloader interface {
	Reload(ctx context.Context) error
}

// CredentialSource reads the CSRF credential at dispatch time
type CredentialSource interface {
	Credential(ctx context.Context) (Credential, error)
}

// NotifierFunc adapts a function to Notifier
type NotifierFunc func(ctx context.Context, message string)

// Alert calls f
func (f NotifierFunc) Alert(ctx context.Context, message string) { f(ctx, message) }

// ReloaderFunc adapts a function to Reloader
type ReloaderFunc func(ctx context.Context) error

// Reload calls f
func (f ReloaderFunc) Reload(ctx context.Context) error { return f(ctx) }
