package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSampler(t *testing.T) {
	tests := []struct {
		name    string
		sampler string
		arg     string
		want    string
		wantErr bool
	}{
		{name: "always on", sampler: SamplerAlwaysOn, want: "AlwaysOnSampler"},
		{name: "ratio", sampler: SamplerTraceIDRatio, arg: "0.25", want: "TraceIDRatioBased{0.25}"},
		{name: "parent ratio", sampler: SamplerParentBasedTraceIDRatio, arg: "0.5", want: "ParentBased{root:TraceIDRatioBased{0.5}"},
		{name: "bad ratio", sampler: SamplerTraceIDRatio, arg: "half", wantErr: true},
		{name: "unknown", sampler: "sometimes", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := newSampler(tt.sampler, tt.arg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Contains(t, s.Description(), tt.want)
		})
	}
}

func TestProvider_ExportersDisabled(t *testing.T) {
	ctx := context.Background()
	cfg := LoadClientConfig("photo-upload")
	cfg.TracesEnabled = false
	cfg.MetricsEnabled = false

	p, err := NewProvider(ctx, cfg)
	require.NoError(t, err)

	assert.NotNil(t, p.Tracer("photo-gallery/uploader"))
	assert.NotNil(t, p.Meter("photo-gallery/http"))
	assert.NoError(t, p.Shutdown(ctx))
}
