package uploader

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGalleryReloader(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr bool
	}{
		{name: "photo list", status: http.StatusOK, body: `[{"id":1},{"id":2}]`},
		{name: "empty gallery", status: http.StatusOK, body: `[]`},
		{name: "server error", status: http.StatusInternalServerError, body: "boom", wantErr: true},
		{name: "not a list", status: http.StatusOK, body: `{"id":1}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var path string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				path = r.URL.Path
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			reloader, err := NewGalleryReloader(srv.Client(), srv.URL, nil)
			require.NoError(t, err)

			err = reloader.Reload(context.Background())
			assert.Equal(t, "/api/photos", path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}
