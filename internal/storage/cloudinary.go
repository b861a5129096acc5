package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"go.uber.org/zap"
)

// CloudinaryStore keeps images in a Cloudinary folder. Keys are public ids.
type CloudinaryStore struct {
	cld    *cloudinary.Cloudinary
	folder string
	logger *zap.Logger
}

// NewCloudinaryStore creates a store from account credentials.
func NewCloudinaryStore(cloudName, apiKey, apiSecret, folder string, logger *zap.Logger) (*CloudinaryStore, error) {
	if cloudName == "" || apiKey == "" || apiSecret == "" {
		return nil, fmt.Errorf("cloudinary credentials are not set")
	}
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary: %w", err)
	}
	cld.Config.URL.Secure = true
	return &CloudinaryStore{cld: cld, folder: folder, logger: logger}, nil
}

// Save uploads r with the file name (without extension) as public id.
func (s *CloudinaryStore) Save(ctx context.Context, name string, r io.Reader) (string, error) {
	result, err := s.cld.Upload.Upload(ctx, r, uploader.UploadParams{
		PublicID: strings.TrimSuffix(name, filepath.Ext(name)),
		Folder:   s.folder,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}
	if result.PublicID == "" {
		return "", fmt.Errorf("failed to upload image: no public id returned")
	}
	return result.PublicID, nil
}

// Delete destroys the asset.
func (s *CloudinaryStore) Delete(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	if _, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: key}); err != nil {
		return fmt.Errorf("failed to delete image: %w", err)
	}
	return nil
}

// URL builds the delivery URL of the asset.
func (s *CloudinaryStore) URL(key string) string {
	if key == "" {
		return ""
	}
	img, err := s.cld.Image(key)
	if err != nil {
		s.logger.Warn("failed to build image url", zap.String("public_id", key), zap.Error(err))
		return ""
	}
	url, err := img.String()
	if err != nil {
		s.logger.Warn("failed to build image url", zap.String("public_id", key), zap.Error(err))
		return ""
	}
	return url
}
