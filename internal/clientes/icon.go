package clientes

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// BlobStore uploads and deletes icon files.
type BlobStore interface {
	// Upload stores data under a name derived from name and returns its reference.
	Upload(ctx context.Context, data []byte, mimeType, name string) (FileRef, error)
	// Delete removes the object. Returns false when it was already gone.
	Delete(ctx context.Context, fileID string) (bool, error)
}

// ParsedIcon is a classified RawIcon: either a ready code icon or an upload
// still to be sent to the blob store.
type ParsedIcon struct {
	icon   Icon
	upload *IconUpload
}

// NeedsUpload reports whether resolving the icon calls the blob store.
func (p ParsedIcon) NeedsUpload() bool {
	return p.upload != nil
}

// ParseIcon classifies raw without side effects.
// A single-digit string or an integer in [0, 9] becomes a code icon; an
// image upload becomes a pending upload; anything else fails with
// ErrInvalidCharacterIcon.
func ParseIcon(raw RawIcon) (ParsedIcon, error) {
	switch v := raw.(type) {
	case IconText:
		s := string(v)
		if !digitPattern.MatchString(s) {
			return ParsedIcon{}, invalidIcon(s)
		}
		code, _ := strconv.Atoi(s)
		icon, err := CodeIcon(code)
		return ParsedIcon{icon: icon}, err
	case IconNumber:
		icon, err := CodeIcon(int(v))
		return ParsedIcon{icon: icon}, err
	case IconUpload:
		return parseUpload(v)
	case *IconUpload:
		if v == nil {
			return ParsedIcon{}, fmt.Errorf("%w: required", ErrInvalidCharacterIcon)
		}
		return parseUpload(*v)
	case nil:
		return ParsedIcon{}, fmt.Errorf("%w: required", ErrInvalidCharacterIcon)
	default:
		return ParsedIcon{}, invalidIcon(raw)
	}
}

func parseUpload(u IconUpload) (ParsedIcon, error) {
	if len(u.Data) == 0 {
		return ParsedIcon{}, fmt.Errorf("%w: empty file", ErrInvalidCharacterIcon)
	}

	u.ContentType = detectContentType(u.ContentType, u.Data)
	if !strings.HasPrefix(u.ContentType, "image/") {
		return ParsedIcon{}, fmt.Errorf("%w: only image files are allowed, got %s", ErrInvalidCharacterIcon, u.ContentType)
	}

	return ParsedIcon{upload: &u}, nil
}

func detectContentType(declared string, data []byte) string {
	declared = strings.TrimSpace(declared)
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}
	return http.DetectContentType(data)
}

// Resolver turns raw icons into stored Icon values.
type Resolver struct {
	blobs BlobStore
}

// NewResolver creates a Resolver uploading files to blobs.
func NewResolver(blobs BlobStore) *Resolver {
	return &Resolver{blobs: blobs}
}

// Resolve classifies raw and uploads it when it is a file, naming the
// object after key.
func (r *Resolver) Resolve(ctx context.Context, raw RawIcon, key string) (Icon, error) {
	p, err := ParseIcon(raw)
	if err != nil {
		return Icon{}, err
	}
	return r.Complete(ctx, p, key)
}

// Complete finishes a previously parsed icon.
func (r *Resolver) Complete(ctx context.Context, p ParsedIcon, key string) (Icon, error) {
	if !p.NeedsUpload() {
		return p.icon, nil
	}

	ref, err := r.blobs.Upload(ctx, p.upload.Data, p.upload.ContentType, key)
	if err != nil {
		return Icon{}, dependency("upload icon", err)
	}
	return FileIcon(ref), nil
}
