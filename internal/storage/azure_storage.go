package storage

import (
	"context"
	"fmt"
	"image"
	"net/url"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"

	apperrors "go-iris-segmenter/internal/errors"
)

// BlobScheme prefixes references resolved from Azure Blob Storage:
// azblob://<container>/<blob path>.
const BlobScheme = "azblob"

// blobDownloader is the subset of *azblob.Client used here.
type blobDownloader interface {
	DownloadStream(ctx context.Context, containerName string, blobName string, o *azblob.DownloadStreamOptions) (azblob.DownloadStreamResponse, error)
}

// AzureImageFetcher downloads images from one storage account.
type AzureImageFetcher struct {
	client blobDownloader
}

// NewAzureImageFetcher authenticates against accountName with a shared key.
func NewAzureImageFetcher(accountName, accountKey string) (*AzureImageFetcher, error) {
	if accountName == "" || accountKey == "" {
		return nil, apperrors.NewUnavailableError("azure storage credentials are not configured", nil)
	}

	credential, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, fmt.Errorf("invalid azure credentials: %w", err)
	}

	client, err := azblob.NewClientWithSharedKeyCredential(
		fmt.Sprintf("https://%s.blob.core.windows.net", accountName),
		credential,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create azure client: %w", err)
	}

	return &AzureImageFetcher{client: client}, nil
}

// IsBlobRef reports whether ref uses the azblob scheme.
func IsBlobRef(ref string) bool {
	return strings.HasPrefix(ref, BlobScheme+"://")
}

// ParseBlobRef splits azblob://container/path/to/blob into its container
// and blob name.
func ParseBlobRef(ref string) (container, blobName string, err error) {
	parsed, err := url.Parse(ref)
	if err != nil {
		return "", "", apperrors.NewValidationError("invalid blob reference", err)
	}
	if parsed.Scheme != BlobScheme {
		return "", "", apperrors.NewValidationError(fmt.Sprintf("blob reference must use %s://", BlobScheme), nil)
	}

	container = parsed.Host
	blobName = strings.TrimPrefix(parsed.Path, "/")
	if container == "" || blobName == "" {
		return "", "", apperrors.NewValidationError("blob reference needs a container and a blob name", nil)
	}
	return container, blobName, nil
}

// FetchImage downloads and decodes the referenced blob.
func (s *AzureImageFetcher) FetchImage(ctx context.Context, ref string) (image.Image, string, error) {
	container, blobName, err := ParseBlobRef(ref)
	if err != nil {
		return nil, "", err
	}

	resp, err := s.client.DownloadStream(ctx, container, blobName, nil)
	if err != nil {
		return nil, "", apperrors.NewNetworkError("blob download failed", err)
	}

	body := resp.NewRetryReader(ctx, &blob.RetryReaderOptions{MaxRetries: 3})
	defer body.Close()

	return DecodeImage(body)
}
