package storage

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/novy-stil/service-atelier/pkg/domain"
)

var allowedImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// ImageStore keeps uploaded images and turns stored keys into public URLs.
type ImageStore interface {
	// Save stores the image under name and returns the key to persist.
	Save(ctx context.Context, name string, r io.Reader) (string, error)

	// Delete removes a stored image. Missing images are not an error.
	Delete(ctx context.Context, key string) error

	// URL returns the public address of a stored image.
	URL(key string) string
}

// ImageName checks the upload's extension and returns a fresh uuid-based
// file name that keeps it.
func ImageName(original string) (string, error) {
	ext := strings.ToLower(filepath.Ext(original))
	if !allowedImageExtensions[ext] {
		return "", domain.NewValidationError("unsupported image format, only .jpg, .jpeg and .png are allowed")
	}
	return uuid.NewString() + ext, nil
}
