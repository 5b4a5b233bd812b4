package imageref

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// Smallest valid PNG header; enough for content sniffing.
var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

type shrinker struct {
	err  error
	seen CompressOptions
}

func (s *shrinker) Compress(_ context.Context, data []byte, _ string, opts CompressOptions) ([]byte, string, error) {
	s.seen = opts
	if s.err != nil {
		return nil, "", s.err
	}
	return data[:4], "image/jpeg", nil
}

func TestIngestInline(t *testing.T) {
	in := NewIngestor(NewBlobStorage(t.TempDir()), Options{MaxBytes: 1024, Inline: true}, zap.NewNop())

	url, err := in.Ingest(context.Background(), "b1", "facade.png", bytes.NewReader(pngBytes))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "data:image/png;base64,"))

	mime, data, err := ParseDataURL(url)
	require.NoError(t, err)
	assert.Equal(t, "image/png", mime)
	assert.Equal(t, pngBytes, data)
}

func TestIngestStoredFile(t *testing.T) {
	blobs := NewBlobStorage(t.TempDir())
	in := NewIngestor(blobs, Options{MaxBytes: 1024}, zap.NewNop())

	ref, err := in.Ingest(context.Background(), "b1", "plan.png", bytes.NewReader(pngBytes))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ref, FileScheme))
	assert.True(t, strings.HasSuffix(ref, ".png"))

	data, err := blobs.Load(ref)
	require.NoError(t, err)
	assert.Equal(t, pngBytes, data)
}

func TestIngestRejects(t *testing.T) {
	in := NewIngestor(NewBlobStorage(t.TempDir()), Options{MaxBytes: 16, Inline: true}, zap.NewNop())
	ctx := context.Background()

	tests := []struct {
		name string
		file string
		data []byte
	}{
		{"too large", "big.png", append(pngBytes, make([]byte, 64)...)},
		{"not an image", "notes.txt", []byte("hello")},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := in.Ingest(ctx, "b1", tc.file, bytes.NewReader(tc.data))
			assert.ErrorIs(t, err, ErrCouldNotProcess)
		})
	}

	_, err := in.IngestFile(ctx, "b1", filepath.Join(t.TempDir(), "missing.png"))
	assert.ErrorIs(t, err, ErrCouldNotProcess)
}

func TestIngestUsesCompressor(t *testing.T) {
	c := &shrinker{}
	in := NewIngestor(NewBlobStorage(t.TempDir()), Options{Inline: true, Compressor: c}, zap.NewNop())

	url, err := in.Ingest(context.Background(), "p1", "plan.png", bytes.NewReader(pngBytes))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "data:image/jpeg;base64,"))
	assert.Equal(t, DefaultCompressOptions, c.seen)

	c.err = errors.New("decoder crashed")
	_, err = in.Ingest(context.Background(), "p1", "plan.png", bytes.NewReader(pngBytes))
	assert.ErrorIs(t, err, ErrCouldNotProcess)
}

func TestIngestFileSVG(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "floor.svg")
	require.NoError(t, os.WriteFile(path, []byte(`<?xml version="1.0"?><svg xmlns="http://www.w3.org/2000/svg"></svg>`), 0o644))

	in := NewIngestor(NewBlobStorage(dir), Options{Inline: true}, zap.NewNop())
	url, err := in.IngestFile(context.Background(), "b1", path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "data:image/svg+xml;base64,"))
}

func TestParseDataURLErrors(t *testing.T) {
	_, _, err := ParseDataURL("https://example.com/a.png")
	assert.Error(t, err)
	_, _, err = ParseDataURL("data:image/png,raw")
	assert.Error(t, err)
}
