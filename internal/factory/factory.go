package factory

import (
	"context"
	"fmt"
	"image"
	"strings"
	"time"

	apperrors "go-iris-segmenter/internal/errors"
	"go-iris-segmenter/internal/storage"
)

// StorageType names an image source backend
type StorageType string

const (
	// DataURIStorage decodes inline data:image URIs
	DataURIStorage StorageType = "data_uri"
	// HTTPStorage downloads http(s) URLs
	HTTPStorage StorageType = "http"
	// AzureStorage reads azblob://container/blob references
	AzureStorage StorageType = "azure"
	// LocalStorage reads files from disk
	LocalStorage StorageType = "local"
)

// Classify picks the backend for a raw input. Precedence is data URI, then
// http(s), then azblob, then a local path.
func Classify(input string) StorageType {
	switch {
	case storage.IsDataURI(input):
		return DataURIStorage
	case strings.HasPrefix(input, "http://"), strings.HasPrefix(input, "https://"):
		return HTTPStorage
	case storage.IsBlobRef(input):
		return AzureStorage
	default:
		return LocalStorage
	}
}

// StorageFactory creates storage implementations
type StorageFactory interface {
	CreateStorage(storageType StorageType) (storage.ImageFetcher, error)
	SourceFor(input string) (storage.ImageFetcher, error)
}

// StorageSettings configures the backends the factory builds.
type StorageSettings struct {
	FetchTimeout     time.Duration
	AzureAccountName string
	AzureAccountKey  string
}

// storageFactory builds each backend once and reuses it.
type storageFactory struct {
	dataURI *storage.DataURIFetcher
	http    *storage.HTTPImageFetcher
	local   *storage.FileImageFetcher
	azure   storage.ImageFetcher
	azErr   error
}

// NewStorageFactory creates a storage factory. Azure is available only when
// both credentials are set.
func NewStorageFactory(settings StorageSettings) StorageFactory {
	f := &storageFactory{
		dataURI: storage.NewDataURIFetcher(),
		http:    storage.NewHTTPImageFetcher(settings.FetchTimeout),
		local:   storage.NewFileImageFetcher(),
	}

	az, err := storage.NewAzureImageFetcher(settings.AzureAccountName, settings.AzureAccountKey)
	if err != nil {
		f.azErr = err
	} else {
		f.azure = az
	}
	return f
}

// CreateStorage returns the backend for storageType
func (f *storageFactory) CreateStorage(storageType StorageType) (storage.ImageFetcher, error) {
	switch storageType {
	case DataURIStorage:
		return f.dataURI, nil
	case HTTPStorage:
		return f.http, nil
	case AzureStorage:
		if f.azErr != nil {
			return nil, f.azErr
		}
		return f.azure, nil
	case LocalStorage:
		return f.local, nil
	default:
		return nil, apperrors.NewValidationError(fmt.Sprintf("unsupported storage type: %s", storageType), nil)
	}
}

// SourceFor returns the backend that can resolve input.
func (f *storageFactory) SourceFor(input string) (storage.ImageFetcher, error) {
	return f.CreateStorage(Classify(input))
}

// Resolver dispatches each reference to the backend chosen by SourceFor.
// It satisfies storage.ImageFetcher itself.
type Resolver struct {
	factory StorageFactory
}

// NewResolver wraps a factory as a single fetcher
func NewResolver(factory StorageFactory) *Resolver {
	return &Resolver{factory: factory}
}

// FetchImage resolves ref through its backend.
func (r *Resolver) FetchImage(ctx context.Context, ref string) (image.Image, string, error) {
	fetcher, err := r.factory.SourceFor(ref)
	if err != nil {
		return nil, "", err
	}
	return fetcher.FetchImage(ctx, ref)
}
