package imageref

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ============================================================
// Image ingestion
// ============================================================

// ErrCouldNotProcess is the single failure an operator sees for any image
// that cannot be turned into a reference.
var ErrCouldNotProcess = errors.New("could not process image")

// CompressOptions are handed to the external encoder.
type CompressOptions struct {
	MaxWidth int
	Quality  float64
}

var DefaultCompressOptions = CompressOptions{MaxWidth: 1200, Quality: 0.75}

// Compressor resizes/re-encodes an image. It lives outside this module;
// without one images are stored as uploaded.
type Compressor interface {
	Compress(ctx context.Context, data []byte, mime string, opts CompressOptions) ([]byte, string, error)
}

type Options struct {
	MaxBytes   int64
	Inline     bool
	Compressor Compressor
}

type Ingestor struct {
	blobs  *BlobStorage
	opts   Options
	logger *zap.Logger
}

func NewIngestor(blobs *BlobStorage, opts Options, logger *zap.Logger) *Ingestor {
	return &Ingestor{blobs: blobs, opts: opts, logger: logger}
}

// IngestFile reads path and returns an image URL for owner.
func (i *Ingestor) IngestFile(ctx context.Context, owner, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		i.logger.Warn("image unreadable", zap.String("path", path), zap.Error(err))
		return "", fmt.Errorf("%w: %v", ErrCouldNotProcess, err)
	}
	defer f.Close()
	return i.Ingest(ctx, owner, filepath.Base(path), f)
}

// Ingest turns an uploaded image into either a data URL or a stored file
// reference, depending on Options.Inline.
func (i *Ingestor) Ingest(ctx context.Context, owner, name string, r io.Reader) (string, error) {
	if i.opts.MaxBytes > 0 {
		r = io.LimitReader(r, i.opts.MaxBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCouldNotProcess, err)
	}
	if i.opts.MaxBytes > 0 && int64(len(data)) > i.opts.MaxBytes {
		i.logger.Warn("image too large", zap.String("name", name), zap.Int64("limit", i.opts.MaxBytes))
		return "", fmt.Errorf("%w: larger than %d bytes", ErrCouldNotProcess, i.opts.MaxBytes)
	}

	mime := DetectMIME(name, data)
	if !strings.HasPrefix(mime, "image/") {
		return "", fmt.Errorf("%w: %s is %s", ErrCouldNotProcess, name, mime)
	}

	if i.opts.Compressor != nil {
		out, outMIME, err := i.opts.Compressor.Compress(ctx, data, mime, DefaultCompressOptions)
		if err != nil {
			i.logger.Warn("image compression failed", zap.String("name", name), zap.Error(err))
			return "", fmt.Errorf("%w: %v", ErrCouldNotProcess, err)
		}
		data, mime = out, outMIME
	}

	if i.opts.Inline {
		return DataURL(mime, data), nil
	}
	ref, err := i.blobs.Save(owner, uuid.NewString(), extension(mime), data)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCouldNotProcess, err)
	}
	i.logger.Debug("image stored", zap.String("owner", owner), zap.String("ref", ref))
	return ref, nil
}

// DetectMIME sniffs the content type. SVG sniffs as XML, so the file name
// decides for text payloads.
func DetectMIME(name string, data []byte) string {
	mime := http.DetectContentType(data)
	if strings.EqualFold(filepath.Ext(name), ".svg") && bytes.Contains(data, []byte("<svg")) {
		return "image/svg+xml"
	}
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = mime[:i]
	}
	return mime
}

func DataURL(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// ParseDataURL splits a base64 data URL into its type and payload.
func ParseDataURL(url string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(url, "data:")
	if !ok {
		return "", nil, fmt.Errorf("not a data url")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok || !strings.HasSuffix(meta, ";base64") {
		return "", nil, fmt.Errorf("unsupported data url")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("decode data url: %w", err)
	}
	return strings.TrimSuffix(meta, ";base64"), data, nil
}

func extension(mime string) string {
	switch mime {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	case "image/svg+xml":
		return ".svg"
	default:
		return ".bin"
	}
}
