package services

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"

	"github.com/google/uuid"
	"github.com/nfnt/resize"
)

const (
	mediumMaxDim    = 1024
	thumbnailMaxDim = 256
	jpegQuality     = 85
)

// DerivedPaths are the exactly-three stored renditions every photo
// must have after upload.
type DerivedPaths struct {
	Original  string
	Medium    string
	Thumbnail string
}

// Uploader is the slice of the storage client the deriver needs.
// *storage.MinIOClient satisfies it.
type Uploader interface {
	Upload(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) error
}

// ImageService turns an uploaded original into the three stored
// renditions. The original bytes are stored untouched; medium and
// thumbnail are JPEG re-encodes.
type ImageService struct {
	Storage Uploader
}

func NewImageService(uploader Uploader) *ImageService {
	return &ImageService{Storage: uploader}
}

func (s *ImageService) Derive(ctx context.Context, galleryID uuid.UUID, filename string, original io.Reader, size int64, contentType string) (*DerivedPaths, error) {
	raw, err := io.ReadAll(original)
	if err != nil {
		return nil, fmt.Errorf("reading upload: %w", err)
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}

	base := fmt.Sprintf("%s/%s", galleryID.String(), uuid.New().String())
	paths := &DerivedPaths{
		Original:  fmt.Sprintf("%s/original/%s", base, filename),
		Medium:    fmt.Sprintf("%s/medium/%s.jpg", base, filename),
		Thumbnail: fmt.Sprintf("%s/thumb/%s.jpg", base, filename),
	}

	if err := s.Storage.Upload(ctx, paths.Original, bytes.NewReader(raw), int64(len(raw)), contentType); err != nil {
		return nil, err
	}

	medium := resize.Thumbnail(mediumMaxDim, mediumMaxDim, img, resize.Lanczos3)
	if err := s.uploadJPEG(ctx, paths.Medium, medium); err != nil {
		return nil, err
	}

	thumb := resize.Thumbnail(thumbnailMaxDim, thumbnailMaxDim, img, resize.Lanczos3)
	if err := s.uploadJPEG(ctx, paths.Thumbnail, thumb); err != nil {
		return nil, err
	}

	return paths, nil
}

func (s *ImageService) uploadJPEG(ctx context.Context, objectName string, img image.Image) error {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return fmt.Errorf("encoding %s: %w", objectName, err)
	}
	return s.Storage.Upload(ctx, objectName, &buf, int64(buf.Len()), "image/jpeg")
}
