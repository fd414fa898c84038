package uploader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// Names of the meta tags a gallery page uses to publish its CSRF credential
const (
	MetaToken  = "_csrf"
	MetaHeader = "_csrf_header"
)

// ParseCredential reads the CSRF meta tags from an HTML document. A missing
// header tag yields the default header; a missing token yields an empty one.
func ParseCredential(r io.Reader) (Credential, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return Credential{}, fmt.Errorf("failed to parse page: %w", err)
	}

	var cred Credential
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "meta" {
			switch getAttr(n, "name") {
			case MetaToken:
				if cred.Token == "" {
					cred.Token = strings.TrimSpace(getAttr(n, "content"))
				}
			case MetaHeader:
				if cred.Header == "" {
					cred.Header = strings.TrimSpace(getAttr(n, "content"))
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if cred.Header == "" {
		cred.Header = DefaultCSRFHeader
	}
	return cred, nil
}

func getAttr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// StaticCredential is a credential supplied up front, e.g. from a flag
type StaticCredential Credential

// Credential returns the stored credential
func (s StaticCredential) Credential(context.Context) (Credential, error) {
	return Credential(s), nil
}

// PageCredentialSource fetches the gallery page and reads its meta tags. The
// page response also sets the session cookie the token is bound to, so the
// same client must be used for uploads.
type PageCredentialSource struct {
	Client  *http.Client
	PageURL string
}

// NewPageCredentialSource reads credentials from the root page of baseURL
func NewPageCredentialSource(client *http.Client, baseURL string) (*PageCredentialSource, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	page, err := base.Parse("/")
	if err != nil {
		return nil, err
	}
	return &PageCredentialSource{Client: client, PageURL: page.String()}, nil
}

// Credential fetches the page and parses it
func (p *PageCredentialSource) Credential(ctx context.Context) (Credential, error) {
	client := p.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.PageURL, nil)
	if err != nil {
		return Credential{}, err
	}
	req.Header.Set("Accept", "text/html")

	resp, err := client.Do(req)
	if err != nil {
		return Credential{}, fmt.Errorf("failed to fetch gallery page: %w", err)
	}
	defer func() { _ = resp.Body.Close() }() //nolint:errcheck // Response cleanup

	if resp.StatusCode != http.StatusOK {
		return Credential{}, fmt.Errorf("failed to fetch gallery page: status %d", resp.StatusCode)
	}

	return ParseCredential(resp.Body)
}
