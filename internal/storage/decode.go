package storage

import (
	"bufio"
	"context"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	apperrors "go-iris-segmenter/internal/errors"
)

// ImageFetcher resolves a reference to a decoded image. The returned string
// is the format name reported by the decoder ("png", "jpeg", "webp", ...).
type ImageFetcher interface {
	FetchImage(ctx context.Context, ref string) (image.Image, string, error)
}

// DecodeImage decodes any registered format: png, jpeg, gif, bmp, tiff, webp.
func DecodeImage(r io.Reader) (image.Image, string, error) {
	img, format, err := image.Decode(bufio.NewReader(r))
	if err != nil {
		return nil, "", apperrors.NewValidationError("failed to decode image", err)
	}
	return img, format, nil
}
