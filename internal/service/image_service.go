package service

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"talkshalk/internal/models"
	"talkshalk/internal/observability"
	"talkshalk/internal/storage"
)

const DefaultImageMaxUploadSizeMB = 5

var allowedImageExtensions = map[string]struct{}{
	".jpeg": {},
	".jpg":  {},
	".png":  {},
	".gif":  {},
}

var allowedImageContentTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/jpg":  {},
	"image/png":  {},
	"image/gif":  {},
}

type UploadImageInput struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ImageService screens uploads against the image allow-list and size cap
// before handing the bytes to the blob store. Image content is never decoded.
type ImageService struct {
	store    storage.BlobStore
	maxBytes int64
	now      func() time.Time
}

func NewImageService(store storage.BlobStore, maxUploadMB int) *ImageService {
	if maxUploadMB <= 0 {
		maxUploadMB = DefaultImageMaxUploadSizeMB
	}
	return &ImageService{
		store:    store,
		maxBytes: int64(maxUploadMB) << 20,
		now:      time.Now,
	}
}

// MaxBytes is the largest accepted upload.
func (s *ImageService) MaxBytes() int64 {
	return s.maxBytes
}

// Upload stores an accepted image and returns its reference.
func (s *ImageService) Upload(ctx context.Context, in UploadImageInput) (string, error) {
	ext := strings.ToLower(filepath.Ext(in.Filename))
	if _, ok := allowedImageExtensions[ext]; !ok {
		return "", models.NewValidationError("Only image files (jpeg, jpg, png, gif) are allowed")
	}

	mediaType, _, err := mime.ParseMediaType(in.ContentType)
	if err != nil {
		return "", models.NewValidationError("Only image files (jpeg, jpg, png, gif) are allowed")
	}
	if _, ok := allowedImageContentTypes[strings.ToLower(mediaType)]; !ok {
		return "", models.NewValidationError("Only image files (jpeg, jpg, png, gif) are allowed")
	}

	if len(in.Data) == 0 {
		return "", models.NewValidationError("Image file is empty")
	}
	if int64(len(in.Data)) > s.maxBytes {
		return "", models.NewValidationError(fmt.Sprintf("Image exceeds the %dMB limit", s.maxBytes>>20))
	}

	name := fmt.Sprintf("%d-%d%s", s.now().UnixMilli(), rand.Int64N(1_000_000_000), ext)
	ref, err := s.store.Store(ctx, in.Data, name, mediaType)
	if err != nil {
		observability.Logger.ErrorContext(ctx, "failed to store image",
			slog.String("name", name),
			slog.String("error", err.Error()),
		)
		return "", models.NewUnavailableError(err)
	}
	return ref, nil
}

// URL resolves a stored reference against the blob store's base URL.
func (s *ImageService) URL(ref string) string {
	return storage.URL(s.store, ref)
}
