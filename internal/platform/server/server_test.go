package server

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"photo-gallery/internal/config"
)

func TestNew(t *testing.T) {
	cfg := &config.Config{
		Host: "0.0.0.0",
		Port: "8080",
		Server: &config.ServerConfig{
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 0,
			IdleTimeout:  90 * time.Second,
		},
	}

	srv := New(cfg, http.NotFoundHandler())

	assert.Equal(t, "0.0.0.0:8080", srv.Addr)
	assert.Equal(t, 5*time.Second, srv.ReadTimeout)
	assert.Equal(t, 30*time.Second, srv.WriteTimeout)
	assert.Equal(t, 90*time.Second, srv.IdleTimeout)
}

func TestAddress(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.Config
		want string
	}{
		{"development localhost", config.Config{Host: "localhost", Port: "8080", Environment: "development"}, "localhost:8080"},
		{"production localhost binds all", config.Config{Host: "localhost", Port: "80", Environment: "production"}, ":80"},
		{"explicit host", config.Config{Host: "10.0.0.5", Port: "9000", Environment: "production"}, "10.0.0.5:9000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Address(&tt.cfg))
		})
	}
}
