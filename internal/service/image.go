package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"

	"docuisine/internal/domain"
)

// BlobStore is the object storage the images land in.
type BlobStore interface {
	Exists(ctx context.Context, key string) (bool, error)
	Put(ctx context.Context, key string, data []byte, contentType string) error
	URL(key string) string
}

var DefaultImageFormats = []string{"png", "jpeg", "webp", "gif"}

// Images stores uploads under a content address, so uploading the same
// bytes twice yields the same key and a single stored object.
type Images struct {
	store    BlobStore
	formats  map[string]bool
	maxBytes int64
	log      *zap.Logger
}

type Upload struct {
	Key         string `json:"key"`
	URL         string `json:"url"`
	ContentType string `json:"contentType"`
	Stored      bool   `json:"stored"` // false when the object already existed
}

func NewImages(store BlobStore, formats []string, maxBytes int64, l *zap.Logger) *Images {
	if len(formats) == 0 {
		formats = DefaultImageFormats
	}
	if l == nil {
		l = zap.NewNop()
	}
	allowed := make(map[string]bool, len(formats))
	for _, f := range formats {
		allowed[strings.ToLower(strings.TrimSpace(f))] = true
	}
	return &Images{store: store, formats: allowed, maxBytes: maxBytes, log: l.With(zap.String("entity", "image"))}
}

// Upload sniffs the format from data, rejects anything outside the allowed
// list, and stores data under "<sha256>.<format>" unless already present.
func (s *Images) Upload(ctx context.Context, data []byte) (Upload, error) {
	if len(data) == 0 {
		return Upload{}, domain.InvalidArgument("image is empty")
	}
	if s.maxBytes > 0 && int64(len(data)) > s.maxBytes {
		return Upload{}, domain.InvalidArgument("image is larger than %d bytes", s.maxBytes)
	}
	format, contentType := sniff(data)
	if !s.formats[format] {
		return Upload{}, domain.UnsupportedFormat(format)
	}

	sum := sha256.Sum256(data)
	key := hex.EncodeToString(sum[:]) + "." + format
	up := Upload{Key: key, URL: s.store.URL(key), ContentType: contentType}

	exists, err := s.store.Exists(ctx, key)
	if err != nil {
		s.log.Error("head object", zap.String("key", key), zap.Error(err))
		return Upload{}, err
	}
	if exists {
		s.log.Debug("image already stored", zap.String("key", key))
		return up, nil
	}
	if err := s.store.Put(ctx, key, data, contentType); err != nil {
		s.log.Error("put object", zap.String("key", key), zap.Error(err))
		return Upload{}, err
	}
	up.Stored = true
	s.log.Info("image stored", zap.String("key", key), zap.Int("bytes", len(data)))
	return up, nil
}

func (s *Images) URL(key string) string { return s.store.URL(key) }

// sniff returns the short format name ("png") and the media type.
func sniff(data []byte) (string, string) {
	m := mimetype.Detect(data)
	mt := m.String()
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = mt[:i]
	}
	kind, sub, ok := strings.Cut(mt, "/")
	if !ok || kind != "image" {
		if ext := strings.TrimPrefix(m.Extension(), "."); ext != "" {
			return ext, mt
		}
		return "unknown", mt
	}
	return sub, mt
}
