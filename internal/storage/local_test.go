package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"rentwear-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStore(t *testing.T) {
	store, err := NewLocalStore("http://localhost:8080/", t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	key, err := NewImageKey("ORD-001", "before", "image/jpeg")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "sanitization/ORD-001/before-"))
	assert.True(t, strings.HasSuffix(key, ".jpg"))

	t.Run("Save and open", func(t *testing.T) {
		url, err := store.Save(ctx, key, strings.NewReader("jpegbytes"))
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:8080/api/v1/images/"+key, url)

		rc, err := store.Open(ctx, key)
		require.NoError(t, err)
		defer rc.Close()
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		assert.Equal(t, "jpegbytes", string(data))
	})

	t.Run("Delete then open", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, key))
		require.NoError(t, store.Delete(ctx, key))

		_, err := store.Open(ctx, key)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("Traversal rejected", func(t *testing.T) {
		for _, bad := range []string{"../etc/passwd", "a/../../b", "", "/abs"} {
			_, err := store.Save(ctx, bad, strings.NewReader("x"))
			assert.ErrorIs(t, err, domain.ErrValidation, bad)
		}
	})
}

func TestNewImageKey(t *testing.T) {
	_, err := NewImageKey("ORD-001", "before", "image/gif")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = NewImageKey("../ORD", "after", "image/png")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = NewImageKey("ORD-001", "during", "image/png")
	assert.ErrorIs(t, err, domain.ErrValidation)

	assert.Equal(t, "image/png", ContentType("sanitization/ORD-1/after-x.PNG"))
	assert.Equal(t, "application/octet-stream", ContentType("notes.txt"))
}
