package repository

import "errors"

var (
	// ErrSegmentationNotFound indicates no stored segmentation has the id
	ErrSegmentationNotFound = errors.New("segmentation not found")

	// ErrRepositoryUnavailable indicates persistence is disabled
	ErrRepositoryUnavailable = errors.New("repository unavailable")
)
