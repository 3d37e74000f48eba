package storage

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"verifyapi/internal/config"
)

func TestDocumentKey(t *testing.T) {
	k1 := DocumentKey("farm-1", "Camara de Comercio.PDF")
	k2 := DocumentKey("farm-1", "Camara de Comercio.PDF")

	assert.True(t, strings.HasPrefix(k1, "farms/farm-1/documents/"))
	assert.True(t, strings.HasSuffix(k1, ".pdf"))
	assert.NotEqual(t, k1, k2)
	assert.NotContains(t, k1, "Camara")
}

func TestMemory_RoundTrip(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	info, err := m.Put(ctx, "farms/f/documents/a.txt", strings.NewReader("hello"), PutObjectOptions{Size: 5, ContentType: "text/plain"})
	require.NoError(t, err)
	assert.Equal(t, int64(5), info.Size)
	assert.NotEmpty(t, info.ETag)

	rc, got, err := m.Get(ctx, "farms/f/documents/a.txt")
	require.NoError(t, err)
	defer rc.Close()
	body, _ := io.ReadAll(rc)
	assert.Equal(t, "hello", string(body))
	assert.Equal(t, "text/plain", got.ContentType)

	u, err := m.PresignGet(ctx, "farms/f/documents/a.txt", "a.txt", time.Minute)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(u, "memory:///farms/f/documents/a.txt?expires="))
	assert.Contains(t, u, "filename=a.txt")

	require.NoError(t, m.Delete(ctx, "farms/f/documents/a.txt"))
	_, _, err = m.Get(ctx, "farms/f/documents/a.txt")
	assert.ErrorIs(t, err, ErrObjectNotFound)
	_, err = m.PresignGet(ctx, "farms/f/documents/a.txt", "", time.Minute)
	assert.ErrorIs(t, err, ErrObjectNotFound)
}

func TestNew_MemoryOnlyWhenAllowed(t *testing.T) {
	s, err := New(config.MinIOConfig{})
	assert.ErrorIs(t, err, ErrNoEndpoint)
	assert.Nil(t, s)

	s, err = New(config.MinIOConfig{AllowMemory: true})
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, s)
}

func TestNewMinIO_RequiresSettings(t *testing.T) {
	_, err := NewMinIO(config.MinIOConfig{Endpoint: "localhost:9000"})
	assert.EqualError(t, err, "minio credentials are required")

	_, err = NewMinIO(config.MinIOConfig{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "b"})
	assert.EqualError(t, err, "minio bucket is required")
}
