package uploader

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"

	"photo-gallery/internal/observability"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	instrumentationName = "photo-gallery/uploader"

	// maxErrorBody bounds how much of a rejection body is shown to the user
	maxErrorBody = 64 << 10
)

// Options configures a Dispatcher
type Options struct {
	// BaseURL is the gallery origin, e.g. http://localhost:8080
	BaseURL string
	// Contract selects endpoint and response handling
	Contract Contract
	// Endpoint overrides the contract's default path
	Endpoint string
	// RequireCSRF makes a missing token fatal. The envelope contract ignores it.
	RequireCSRF bool

	Client   *http.Client
	Notifier Notifier
	Reloader Reloader
	Logger   *observability.Logger
	Tracer   trace.Tracer
}

// Report describes a finished batch
type Report struct {
	// Attempted counts files for which a request was issued
	Attempted int
	// Uploaded holds the decoded responses of the successful files, in order
	Uploaded []Record
	// Reloaded is true when the gallery view was refreshed
	Reloaded bool
}

// Dispatcher uploads a selection of files one after another
type Dispatcher struct {
	client      *http.Client
	endpoint    *url.URL
	origin      string
	contract    Contract
	requireCSRF bool
	notifier    Notifier
	reloader    Reloader
	logger      *observability.Logger
	tracer      trace.Tracer
}

// New creates a Dispatcher. Nil collaborators get quiet defaults: no alerts,
// no reload, no logs.
func New(opts Options) (*Dispatcher, error) {
	base, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("invalid base URL %q: scheme must be http or https", opts.BaseURL)
	}

	path := opts.Endpoint
	if path == "" {
		path = opts.Contract.defaultEndpoint()
	}
	endpoint, err := base.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint %q: %w", path, err)
	}

	d := &Dispatcher{
		client:      opts.Client,
		endpoint:    endpoint,
		origin:      base.Scheme + "://" + base.Host,
		contract:    opts.Contract,
		requireCSRF: opts.RequireCSRF && opts.Contract.sendsCSRF(),
		notifier:    opts.Notifier,
		reloader:    opts.Reloader,
		logger:      opts.Logger,
		tracer:      opts.Tracer,
	}

	if d.client == nil {
		d.client = http.DefaultClient
	}
	if d.notifier == nil {
		d.notifier = NotifierFunc(func(context.Context, string) {})
	}
	if d.reloader == nil {
		d.reloader = ReloaderFunc(func(context.Context) error { return nil })
	}
	if d.logger == nil {
		d.logger = observability.NewNopLogger()
	}
	if d.tracer == nil {
		d.tracer = otel.Tracer(instrumentationName)
	}

	return d, nil
}

// Endpoint returns the URL uploads are posted to, without query parameters
func (d *Dispatcher) Endpoint() string {
	return d.endpoint.String()
}

// Dispatch uploads files in order. An empty selection does nothing.
//
// Errors are ErrMissingCSRFToken, *RejectedError, *TransportError or
// *FileError; each has already been reported through the Notifier. The
// reload happens only when every file succeeded.
func (d *Dispatcher) Dispatch(ctx context.Context, files []File, mode DuplicateMode, cred Credential) (*Report, error) {
	report := &Report{}
	if len(files) == 0 {
		return report, nil
	}

	ctx, span := d.tracer.Start(ctx, "UploadBatch",
		trace.WithAttributes(
			attribute.Int("upload.file_count", len(files)),
			attribute.String("upload.contract", d.contract.String()),
			attribute.String("upload.on_duplicate", string(mode)),
		),
	)
	defer span.End()

	if d.requireCSRF && !cred.Present() {
		span.SetStatus(codes.Error, "missing CSRF token")
		d.logger.Error(ctx).Msg("CSRF token required but not available; no files sent")
		d.notifier.Alert(ctx, MsgMissingCSRF)
		return report, ErrMissingCSRFToken
	}

	target := d.targetURL(mode)

	d.logger.Info(ctx).
		Int("file_count", len(files)).
		Str("endpoint", target).
		Str("on_duplicate", string(mode)).
		Msg("Starting upload batch")

	for i, file := range files {
		report.Attempted = i + 1

		record, err := d.uploadOne(ctx, target, i, file, cred)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "batch aborted")
			d.notifier.Alert(ctx, alertMessage(err))
			d.logger.Warn(ctx).
				Err(err).
				Int("uploaded", len(report.Uploaded)).
				Int("skipped", len(files)-i-1).
				Msg("Upload batch aborted")

			var fileErr *FileError
			if errors.As(err, &fileErr) {
				// no request went out for this file
				report.Attempted = i
			}
			return report, err
		}

		report.Uploaded = append(report.Uploaded, record)
		d.logger.Info(ctx).
			Str("filename", file.Name).
			Interface("photo", record).
			Msg("Uploaded")
	}

	span.SetAttributes(attribute.Int("upload.success_count", len(report.Uploaded)))

	if err := d.reloader.Reload(ctx); err != nil {
		d.logger.Warn(ctx).Err(err).Msg("Gallery reload failed")
	} else {
		report.Reloaded = true
	}

	span.SetStatus(codes.Ok, "all uploads successful")
	return report, nil
}

func (d *Dispatcher) targetURL(mode DuplicateMode) string {
	u := *d.endpoint
	if d.contract.sendsDuplicateMode() {
		q := u.Query()
		q.Set(DuplicateParam, string(mode))
		u.RawQuery = q.Encode()
	}
	return u.String()
}

// uploadOne sends a single file and decodes the response
func (d *Dispatcher) uploadOne(ctx context.Context, target string, index int, file File, cred Credential) (Record, error) {
	ctx, span := d.tracer.Start(ctx, "UploadFile",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("file.name", file.Name),
			attribute.Int("file.index", index),
		),
	)
	defer span.End()

	body, contentType, err := buildBody(file)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to read file")
		return Record{}, &FileError{Index: index, File: file.Name, Err: err}
	}
	span.SetAttributes(attribute.Int("http.request.body.size", body.Len()))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, body)
	if err != nil {
		return Record{}, &TransportError{Index: index, File: file.Name, Err: err}
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	// the page's origin, as a browser would send it; checked over TLS
	req.Header.Set("Origin", d.origin)
	if cred.Present() {
		req.Header.Set(cred.HeaderName(), cred.Token)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport failure")
		return Record{}, &TransportError{Index: index, File: file.Name, Err: err}
	}
	defer func() { _ = resp.Body.Close() }() //nolint:errcheck // Response cleanup

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text, readErr := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		if readErr != nil {
			return Record{}, &TransportError{Index: index, File: file.Name, Err: readErr}
		}
		span.SetStatus(codes.Error, "rejected")
		return Record{}, &RejectedError{
			Index:      index,
			File:       file.Name,
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(text)),
		}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Record{}, &TransportError{Index: index, File: file.Name, Err: err}
	}

	return d.decode(index, file.Name, resp.StatusCode, data)
}

// envelope is the response body of the legacy upload endpoint
type envelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// decode parses a 2xx body. A body that is not JSON fails like a dropped
// connection.
func (d *Dispatcher) decode(index int, name string, status int, data []byte) (Record, error) {
	invalid := func(err error) error {
		return &TransportError{Index: index, File: name, Err: fmt.Errorf("%w: %v", ErrInvalidResponse, err)}
	}

	if d.contract == ContractEnvelope {
		var env envelope
		if err := json.Unmarshal(data, &env); err != nil {
			return Record{}, invalid(err)
		}
		if !env.Success {
			msg := env.Error
			if msg == "" {
				msg = "upload was not accepted"
			}
			return Record{}, &RejectedError{Index: index, File: name, StatusCode: status, Message: msg}
		}
		return Record{Value: map[string]any{"success": true}}, nil
	}

	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		return Record{}, invalid(err)
	}
	return record, nil
}

// buildBody encodes file as the only part of a multipart/form-data body
func buildBody(file File) (*bytes.Buffer, string, error) {
	if file.Open == nil {
		return nil, "", errors.New("file has no content")
	}

	rc, err := file.Open()
	if err != nil {
		return nil, "", err
	}
	defer func() { _ = rc.Close() }() //nolint:errcheck // Read-only file

	content, err := io.ReadAll(rc)
	if err != nil {
		return nil, "", err
	}

	contentType := file.ContentType
	if contentType == "" {
		contentType = http.DetectContentType(content)
	}

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="%s"; filename="%s"`, FileField, quoteEscaper.Replace(file.Name)))
	header.Set("Content-Type", contentType)

	part, err := mw.CreatePart(header)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(content); err != nil {
		return nil, "", err
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}

	return body, mw.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// alertMessage renders an error the way the gallery page words it
func alertMessage(err error) string {
	var rejected *RejectedError
	var transport *TransportError
	var fileErr *FileError

	switch {
	case errors.As(err, &rejected):
		return MsgUploadFailed + rejected.Message
	case errors.As(err, &transport):
		return MsgNetworkError
	case errors.As(err, &fileErr):
		return MsgUploadFailed + fileErr.Error()
	default:
		return MsgUploadFailed + err.Error()
	}
}
