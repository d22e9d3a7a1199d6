package repository

import (
	"context"
	"image"

	"go-iris-segmenter/pkg/models"
)

// ImageRepository resolves raw source strings to decoded images
type ImageRepository interface {
	// FetchImage validates source, loads it and checks its dimensions
	FetchImage(ctx context.Context, source string) (*LoadedImage, error)

	// ValidateSource checks a source string without loading it
	ValidateSource(source string) error
}

// LoadedImage is a decoded image with its metadata
type LoadedImage struct {
	Image    image.Image
	Metadata models.ImageMetadata
}

// SegmentationRepository stores segmentation results
type SegmentationRepository interface {
	// Save stores a record and returns its id
	Save(ctx context.Context, record *models.SegmentationRecord) (int64, error)

	// Get returns ErrSegmentationNotFound when id is unknown
	Get(ctx context.Context, id int64) (*models.SegmentationRecord, error)

	// List returns the newest records first
	List(ctx context.Context, limit int) ([]models.SegmentationRecord, error)

	Close() error
}
