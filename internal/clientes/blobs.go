package clientes

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime"
	"strings"

	"github.com/google/uuid"

	"github.com/JaimeStill/clientes/pkg/metrics"
	"github.com/JaimeStill/clientes/pkg/storage"
)

type blobStore struct {
	storage storage.System
	metrics *metrics.Metrics
}

// NewBlobStore adapts a storage system to BlobStore. m may be nil.
func NewBlobStore(store storage.System, m *metrics.Metrics) BlobStore {
	return &blobStore{storage: store, metrics: m}
}

func (b *blobStore) Upload(ctx context.Context, data []byte, mimeType, name string) (FileRef, error) {
	key := objectKey(name, mimeType)

	if err := b.storage.Upload(ctx, key, bytes.NewReader(data), mimeType); err != nil {
		b.count("upload", metrics.ResultError)
		return FileRef{}, fmt.Errorf("upload icon %s: %w", key, err)
	}

	b.count("upload", metrics.ResultOK)
	return FileRef{FileID: key, URL: b.storage.URL(key)}, nil
}

func (b *blobStore) Delete(ctx context.Context, fileID string) (bool, error) {
	err := b.storage.Delete(ctx, fileID)
	switch {
	case err == nil:
		b.count("delete", metrics.ResultOK)
		return true, nil
	case errors.Is(err, storage.ErrNotFound):
		b.count("delete", metrics.ResultMissing)
		return false, nil
	default:
		b.count("delete", metrics.ResultError)
		return false, fmt.Errorf("delete icon %s: %w", fileID, err)
	}
}

func (b *blobStore) count(op, result string) {
	if b.metrics != nil {
		b.metrics.BlobOperation(op, result)
	}
}

// objectKey names a blob <name>-<uuid><ext>. The uuid keeps successive
// uploads for the same cliente from colliding.
func objectKey(name, mimeType string) string {
	return fmt.Sprintf("%s-%s%s", sanitizeName(name), uuid.New(), extension(mimeType))
}

func sanitizeName(name string) string {
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '-', r == '_':
			return r
		default:
			return -1
		}
	}, name)
	if name == "" {
		return "icon"
	}
	return name
}

func extension(mimeType string) string {
	switch mimeType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	}
	exts, err := mime.ExtensionsByType(mimeType)
	if err != nil || len(exts) == 0 {
		return ""
	}
	return exts[0]
}
