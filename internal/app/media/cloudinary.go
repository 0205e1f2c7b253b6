package media

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// CloudinaryStore uploads blobs to Cloudinary. The key is used as the
// public ID, so re-uploading the same key overwrites the hosted asset.
type CloudinaryStore struct {
	cld *cloudinary.Cloudinary

	mu   sync.RWMutex
	urls map[string]string // key -> secure URL from the upload response
}

// NewCloudinaryStore builds a store from a cloudinary:// URL.
func NewCloudinaryStore(cloudinaryURL string) (*CloudinaryStore, error) {
	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("configuring cloudinary: %w", err)
	}
	return &CloudinaryStore{cld: cld, urls: make(map[string]string)}, nil
}

func (s *CloudinaryStore) Put(ctx context.Context, key string, r io.Reader, _ string) error {
	overwrite := true
	resp, err := s.cld.Upload.Upload(ctx, r, uploader.UploadParams{
		PublicID:  key,
		Overwrite: &overwrite,
	})
	if err != nil {
		return fmt.Errorf("uploading to cloudinary: %w", err)
	}

	s.mu.Lock()
	s.urls[key] = resp.SecureURL
	s.mu.Unlock()
	return nil
}

func (s *CloudinaryStore) URL(key string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.urls[key]
}
