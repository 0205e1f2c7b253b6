package media

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Uploader resolves local image files into hosted URLs.
//
// Keys are derived from the filename alone (images/<name>), so two
// uploads of files with the same name overwrite each other. That is
// the historical key scheme of the image data; do not switch to
// content hashing without migrating existing records.
type Uploader struct {
	store BlobStore
	log   *zap.Logger
}

func NewUploader(store BlobStore, log *zap.Logger) *Uploader {
	return &Uploader{store: store, log: log}
}

// Upload stores the file at localPath in the blob backend and returns
// its public URL. There is no retry or progress reporting; a failure
// surfaces to the caller and nothing is recorded.
func (u *Uploader) Upload(ctx context.Context, localPath string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("opening image file: %w", err)
	}
	defer f.Close()

	key := "images/" + sanitizeFilename(filepath.Base(localPath))
	contentType := contentTypeFor(localPath)

	if err := u.store.Put(ctx, key, f, contentType); err != nil {
		return "", fmt.Errorf("uploading image: %w", err)
	}

	url := u.store.URL(key)
	u.log.Info("image uploaded", zap.String("key", key))
	return url, nil
}

func contentTypeFor(path string) string {
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(path))); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// sanitizeFilename removes or replaces characters that could be
// problematic in blob keys.
func sanitizeFilename(filename string) string {
	result := make([]byte, 0, len(filename))
	for i := 0; i < len(filename); i++ {
		c := filename[i]
		if isAllowedFilenameChar(c) {
			result = append(result, c)
		} else {
			result = append(result, '_')
		}
	}

	if len(result) == 0 {
		return "file"
	}
	if len(result) > 100 {
		// Truncate but preserve extension if present
		ext := filepath.Ext(string(result))
		if len(ext) > 0 && len(ext) < 10 {
			result = append(result[:100-len(ext)], ext...)
		} else {
			result = result[:100]
		}
	}
	return string(result)
}

func isAllowedFilenameChar(c byte) bool {
	return (c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9') ||
		c == '-' || c == '_' || c == '.'
}
