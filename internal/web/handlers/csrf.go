package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/csrf"
	"github.com/gorilla/securecookie"

	"photo-gallery/internal/config"
	"photo-gallery/internal/observability"
)

const csrfKeyName = "csrf-auth-key"

// KeyStore shares the token signing key between server replicas
type KeyStore interface {
	SharedKey(ctx context.Context, name string, candidate []byte) ([]byte, error)
}

// CSRF rejects unsafe requests that do not echo the session token in the
// configured header. A nil *CSRF lets every request through.
type CSRF struct {
	cfg     config.CSRFConfig
	protect func(http.Handler) http.Handler
	logger  *observability.Logger
}

// NewCSRF builds the guard. The signing key is CSRF_AUTH_KEY when set,
// otherwise a random key, agreed on through keys when it is not nil.
func NewCSRF(ctx context.Context, cfg config.CSRFConfig, keys KeyStore, logger *observability.Logger) (*CSRF, error) {
	if logger == nil {
		logger = observability.NewNopLogger()
	}
	if cfg.HeaderName == "" {
		cfg.HeaderName = config.DefaultCSRFHeader
	}
	if cfg.CookieName == "" {
		cfg.CookieName = "GALLERY_SESSION"
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 12 * time.Hour
	}

	c := &CSRF{cfg: cfg, logger: logger}
	if !cfg.Enabled {
		return c, nil
	}

	key, err := authKey(ctx, cfg, keys)
	if err != nil {
		return nil, err
	}

	c.protect = csrf.Protect(key,
		csrf.RequestHeader(cfg.HeaderName),
		csrf.CookieName(cfg.CookieName),
		csrf.MaxAge(int(cfg.TokenTTL/time.Second)),
		csrf.Secure(cfg.Secure),
		csrf.HttpOnly(true),
		csrf.Path("/"),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.ErrorHandler(http.HandlerFunc(c.reject)),
	)
	return c, nil
}

func authKey(ctx context.Context, cfg config.CSRFConfig, keys KeyStore) ([]byte, error) {
	if cfg.AuthKey != "" {
		return cfg.DecodeAuthKey()
	}

	key := securecookie.GenerateRandomKey(config.CSRFAuthKeyLength)
	if key == nil {
		return nil, fmt.Errorf("failed to generate csrf auth key")
	}
	if keys == nil {
		return key, nil
	}

	shared, err := keys.SharedKey(ctx, csrfKeyName, key)
	if err != nil {
		return nil, err
	}
	if len(shared) != config.CSRFAuthKeyLength {
		return nil, fmt.Errorf("shared csrf auth key has %d bytes", len(shared))
	}
	return shared, nil
}

// Enabled reports whether requests are checked
func (c *CSRF) Enabled() bool {
	return c != nil && c.cfg.Enabled && c.protect != nil
}

// HeaderName is the request header that must carry the token
func (c *CSRF) HeaderName() string {
	if c == nil {
		return config.DefaultCSRFHeader
	}
	return c.cfg.HeaderName
}

// Token returns the masked token of the request's session. The request must
// have passed through Protect.
func (c *CSRF) Token(r *http.Request) string {
	if !c.Enabled() {
		return ""
	}
	return csrf.Token(r)
}

// Protect issues the session cookie and rejects unsafe requests without a
// matching token with 403
func (c *CSRF) Protect(next http.Handler) http.Handler {
	if !c.Enabled() {
		return next
	}

	protected := c.protect(next)
	if c.cfg.Secure {
		return protected
	}

	// Without TLS there is no Origin to compare against a https scheme.
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		protected.ServeHTTP(w, csrf.PlaintextHTTPRequest(r))
	})
}

func (c *CSRF) reject(w http.ResponseWriter, r *http.Request) {
	c.logger.Warn(r.Context()).
		Err(csrf.FailureReason(r)).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Msg("Rejected request with invalid CSRF token")
	http.Error(w, "Invalid CSRF token", http.StatusForbidden)
}
