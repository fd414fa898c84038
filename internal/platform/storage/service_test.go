package storage

import (
	"bytes"
	"context"
	"io"
	"path"
	"regexp"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"photo-gallery/internal/testutils"
)

var uuidName = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}`)

func TestObjectName(t *testing.T) {
	tests := []struct {
		original string
		ext      string
	}{
		{"holiday.JPG", ".jpg"},
		{"scan.png", ".png"},
		{"archive.tar.webp", ".webp"},
		{"noextension", ""},
		{"weird.averyveryverylongextension", ""},
	}

	for _, tt := range tests {
		t.Run(tt.original, func(t *testing.T) {
			name := ObjectName(tt.original)
			assert.Regexp(t, uuidName, name)
			assert.Equal(t, tt.ext, path.Ext(name))
			assert.NoError(t, ValidateObjectName(name))
		})
	}

	assert.NotEqual(t, ObjectName("a.jpg"), ObjectName("a.jpg"), "names must not collide")
}

func TestValidateObjectName(t *testing.T) {
	valid := []string{
		"0b6f7c2e-8a1b-4c1d-9e2f-3a4b5c6d7e8f.jpg",
		"imported/sunset.png",
		"IMG_0001.jpeg",
	}
	for _, name := range valid {
		assert.NoError(t, ValidateObjectName(name), name)
	}

	invalid := []string{
		"",
		"../../../etc/passwd",
		"file/../../secret.jpg",
		"..\\windows\\system32",
		"/etc/passwd",
		".env",
		"folder/.secret",
		"nul\x00byte.jpg",
		strings.Repeat("a", 256),
	}
	for _, name := range invalid {
		assert.ErrorIs(t, ValidateObjectName(name), ErrInvalidObjectName, name)
	}
}

func TestService_RejectsInvalidNames(t *testing.T) {
	// Validation runs before any network call, so a zero Service is enough
	service := &Service{bucketName: "test-bucket"}
	ctx := context.Background()

	err := service.Store(ctx, "../escape.jpg", "image/jpeg", strings.NewReader("x"), 1)
	assert.ErrorIs(t, err, ErrInvalidObjectName)

	_, err = service.Retrieve(ctx, "/abs.jpg")
	assert.ErrorIs(t, err, ErrInvalidObjectName)

	assert.ErrorIs(t, service.Delete(ctx, ".hidden"), ErrInvalidObjectName)

	_, err = service.Exists(ctx, "")
	assert.ErrorIs(t, err, ErrInvalidObjectName)
}

func TestService_StoreNilData(t *testing.T) {
	service := &Service{bucketName: "test-bucket"}
	err := service.Store(context.Background(), "ok.jpg", "image/jpeg", nil, 0)
	assert.Error(t, err)
}

func TestServiceIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}

	ctx := context.Background()
	tc := &testutils.TestContainers{}
	t.Cleanup(func() { _ = tc.Cleanup(context.Background()) })
	require.NoError(t, tc.StartMinio(ctx))

	service, err := NewService(ctx, tc.StorageConfig())
	require.NoError(t, err)

	t.Run("health check", func(t *testing.T) {
		assert.NoError(t, service.Health(ctx))
	})

	t.Run("store retrieve delete", func(t *testing.T) {
		data := testutils.JPEGBytes(32, 32, 10)
		name := ObjectName("photo.jpg")

		require.NoError(t, service.Store(ctx, name, "image/jpeg", bytes.NewReader(data), int64(len(data))))

		exists, err := service.Exists(ctx, name)
		require.NoError(t, err)
		assert.True(t, exists)

		reader, err := service.Retrieve(ctx, name)
		require.NoError(t, err)
		content, err := io.ReadAll(reader)
		require.NoError(t, reader.Close())
		require.NoError(t, err)
		assert.Equal(t, data, content)

		require.NoError(t, service.Delete(ctx, name))
		exists, err = service.Exists(ctx, name)
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("retrieve missing", func(t *testing.T) {
		_, err := service.Retrieve(ctx, "missing.jpg")
		assert.ErrorIs(t, err, ErrObjectNotFound)
	})

	t.Run("list objects", func(t *testing.T) {
		for _, name := range []string{"list/a.png", "list/b.png"} {
			data := testutils.PNGBytes(4, 4, 1)
			require.NoError(t, service.Store(ctx, name, "image/png", bytes.NewReader(data), int64(len(data))))
		}

		objects, err := service.ListObjects(ctx, "list/")
		require.NoError(t, err)

		keys := make([]string, 0, len(objects))
		for _, obj := range objects {
			keys = append(keys, obj.Key)
		}
		sort.Strings(keys)
		assert.Equal(t, []string{"list/a.png", "list/b.png"}, keys)
	})
}
