package repository

import (
	"context"
	"strings"

	apperrors "go-iris-segmenter/internal/errors"
	"go-iris-segmenter/internal/storage"
	"go-iris-segmenter/pkg/models"
	"go-iris-segmenter/pkg/validation"
)

// SourceImageRepository loads images through a storage fetcher after
// validating the source and before handing them to the segmenter.
type SourceImageRepository struct {
	fetcher   storage.ImageFetcher
	sources   *validation.SourceValidator
	qualities *validation.QualityValidator
}

// NewImageRepository creates an image repository
func NewImageRepository(fetcher storage.ImageFetcher, sources *validation.SourceValidator, qualities *validation.QualityValidator) ImageRepository {
	return &SourceImageRepository{
		fetcher:   fetcher,
		sources:   sources,
		qualities: qualities,
	}
}

// FetchImage loads source and rejects images that cannot be segmented.
func (r *SourceImageRepository) FetchImage(ctx context.Context, source string) (*LoadedImage, error) {
	if err := r.ValidateSource(source); err != nil {
		return nil, err
	}

	img, format, err := r.fetcher.FetchImage(ctx, source)
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	meta := models.ImageMetadata{
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
		Format: format,
	}

	issues := r.qualities.ValidateDimensions(meta.Width, meta.Height)
	if r.qualities.HasCriticalIssues(issues) {
		return nil, apperrors.NewInvalidInputError(
			strings.Join(r.qualities.ConvertIssuesToMessages(issues), " "), nil)
	}

	return &LoadedImage{Image: img, Metadata: meta}, nil
}

// ValidateSource checks a source string without loading it
func (r *SourceImageRepository) ValidateSource(source string) error {
	return r.sources.ValidateSource(source)
}
