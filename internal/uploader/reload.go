package uploader

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"photo-gallery/internal/observability"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// NewHTTPClient returns a traced client with a cookie jar, so the session
// cookie from the gallery page accompanies the uploads
func NewHTTPClient(timeout time.Duration) *http.Client {
	jar, _ := cookiejar.New(nil) //nolint:errcheck // only fails on a bad PublicSuffixList
	return &http.Client{
		Timeout:   timeout,
		Jar:       jar,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
}

// GalleryReloader re-reads the photo list after a successful batch. It is the
// command-line counterpart of refreshing the gallery page.
type GalleryReloader struct {
	client  *http.Client
	listURL string
	logger  *observability.Logger
}

// NewGalleryReloader lists photos from baseURL
func NewGalleryReloader(client *http.Client, baseURL string, logger *observability.Logger) (*GalleryReloader, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	list, err := base.Parse(resourceEndpoint)
	if err != nil {
		return nil, err
	}
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = observability.NewNopLogger()
	}
	return &GalleryReloader{client: client, listURL: list.String(), logger: logger}, nil
}

// Reload fetches the list and logs how many photos the gallery now holds
func (g *GalleryReloader) Reload(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.listURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to list photos: %w", err)
	}
	defer func() { _ = resp.Body.Close() }() //nolint:errcheck // Response cleanup

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to list photos: status %d", resp.StatusCode)
	}

	var photos []Record
	if err := json.NewDecoder(resp.Body).Decode(&photos); err != nil {
		return fmt.Errorf("failed to decode photo list: %w", err)
	}

	g.logger.Info(ctx).Int("photo_count", len(photos)).Msg("Gallery refreshed")
	return nil
}
