package storage

import (
	"context"
	"encoding/base64"
	"image"
	"strings"

	apperrors "go-iris-segmenter/internal/errors"
)

// DataURIPrefix marks an inline base64 image.
const DataURIPrefix = "data:image"

// DataURIFetcher decodes inline data:image/...;base64,<payload> references.
type DataURIFetcher struct{}

// NewDataURIFetcher creates a data URI decoder
func NewDataURIFetcher() *DataURIFetcher {
	return &DataURIFetcher{}
}

// IsDataURI reports whether ref is an inline image.
func IsDataURI(ref string) bool {
	return strings.HasPrefix(ref, DataURIPrefix)
}

// FetchImage decodes everything after the first comma as standard base64.
func (d *DataURIFetcher) FetchImage(ctx context.Context, ref string) (image.Image, string, error) {
	if !IsDataURI(ref) {
		return nil, "", apperrors.NewValidationError("not a data:image URI", nil)
	}
	_, payload, ok := strings.Cut(ref, ",")
	if !ok {
		return nil, "", apperrors.NewValidationError("data URI has no payload", nil)
	}

	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(payload))
	if err != nil {
		return nil, "", apperrors.NewValidationError("data URI payload is not valid base64", err)
	}

	return DecodeImage(strings.NewReader(string(raw)))
}

// Redact shortens a data URI to its header so it can be logged or stored.
func Redact(ref string) string {
	if !IsDataURI(ref) {
		return ref
	}
	header, _, ok := strings.Cut(ref, ",")
	if !ok {
		return DataURIPrefix + ",..."
	}
	return header + ",..."
}
