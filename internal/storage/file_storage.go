package storage

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io/fs"
	"os"

	apperrors "go-iris-segmenter/internal/errors"
)

// FileImageFetcher reads images from the local filesystem.
type FileImageFetcher struct{}

// NewFileImageFetcher creates a local file fetcher
func NewFileImageFetcher() *FileImageFetcher {
	return &FileImageFetcher{}
}

// FetchImage opens path and decodes it.
func (f *FileImageFetcher) FetchImage(ctx context.Context, path string) (image.Image, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", apperrors.NewTimeoutError("image load cancelled", err)
	}

	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, "", apperrors.NewNotFoundError(fmt.Sprintf("image file %q not found", path), err)
		}
		return nil, "", apperrors.NewProcessingError("failed to open image file", err)
	}
	defer file.Close()

	return DecodeImage(file)
}
