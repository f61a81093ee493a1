package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docuisine/internal/domain"
)

type memBlobs struct {
	mu   sync.Mutex
	objs map[string][]byte
	puts int
}

func newMemBlobs() *memBlobs { return &memBlobs{objs: map[string][]byte{}} }

func (m *memBlobs) Exists(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objs[key]
	return ok, nil
}

func (m *memBlobs) Put(_ context.Context, key string, data []byte, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objs[key] = append([]byte(nil), data...)
	m.puts++
	return nil
}

func (m *memBlobs) URL(key string) string { return "http://blobs.local/images/" + key }

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

func TestImages_UploadIsContentAddressed(t *testing.T) {
	ctx := context.Background()
	blobs := newMemBlobs()
	imgs := NewImages(blobs, nil, 1<<20, nil)

	first, err := imgs.Upload(ctx, pngHeader)
	require.NoError(t, err)
	assert.True(t, first.Stored)
	assert.True(t, strings.HasSuffix(first.Key, ".png"))
	assert.Len(t, strings.TrimSuffix(first.Key, ".png"), 64)
	assert.Equal(t, "image/png", first.ContentType)
	assert.Equal(t, blobs.URL(first.Key), first.URL)

	again, err := imgs.Upload(ctx, pngHeader)
	require.NoError(t, err)
	assert.Equal(t, first.Key, again.Key)
	assert.False(t, again.Stored)
	assert.Equal(t, 1, blobs.puts)
}

func TestImages_UnsupportedFormats(t *testing.T) {
	imgs := NewImages(newMemBlobs(), []string{"png"}, 0, nil)

	cases := map[string][]byte{
		"gif":  []byte("GIF89a\x01\x00\x01\x00\x00\x00\x00"),
		"text": []byte("definitely not an image"),
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := imgs.Upload(context.Background(), data)
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrUnsupportedFormat))
		})
	}
}

func TestImages_SizeLimits(t *testing.T) {
	imgs := NewImages(newMemBlobs(), nil, 8, nil)

	_, err := imgs.Upload(context.Background(), nil)
	assert.True(t, errors.Is(err, domain.ErrInvalidArgument))

	_, err = imgs.Upload(context.Background(), pngHeader)
	assert.True(t, errors.Is(err, domain.ErrInvalidArgument))
}
