package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"

	apperrors "go-iris-segmenter/internal/errors"
)

type failingDownloader struct {
	container, blob string
}

func (f *failingDownloader) DownloadStream(ctx context.Context, containerName string, blobName string, o *azblob.DownloadStreamOptions) (azblob.DownloadStreamResponse, error) {
	f.container, f.blob = containerName, blobName
	return azblob.DownloadStreamResponse{}, errors.New("connection refused")
}

func TestParseBlobRef(t *testing.T) {
	testCases := []struct {
		ref       string
		container string
		blob      string
		valid     bool
	}{
		{"azblob://eyes/subject-1/left.png", "eyes", "subject-1/left.png", true},
		{"azblob://eyes/left.png", "eyes", "left.png", true},
		{"azblob://eyes/", "", "", false},
		{"azblob:///left.png", "", "", false},
		{"https://eyes/left.png", "", "", false},
	}

	for _, tc := range testCases {
		t.Run(tc.ref, func(t *testing.T) {
			container, blob, err := ParseBlobRef(tc.ref)
			if !tc.valid {
				if !apperrors.IsType(err, apperrors.ErrorTypeValidation) {
					t.Errorf("Expected validation error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if container != tc.container || blob != tc.blob {
				t.Errorf("Expected %s/%s, got %s/%s", tc.container, tc.blob, container, blob)
			}
		})
	}
}

func TestNewAzureImageFetcher_MissingCredentials(t *testing.T) {
	_, err := NewAzureImageFetcher("", "")
	if !apperrors.IsType(err, apperrors.ErrorTypeUnavailable) {
		t.Errorf("Expected unavailable error, got %v", err)
	}
}

func TestAzureImageFetcher_DownloadFailure(t *testing.T) {
	downloader := &failingDownloader{}
	fetcher := &AzureImageFetcher{client: downloader}

	_, _, err := fetcher.FetchImage(context.Background(), "azblob://eyes/scan/left.png")
	if !apperrors.IsType(err, apperrors.ErrorTypeNetwork) {
		t.Errorf("Expected network error, got %v", err)
	}
	if downloader.container != "eyes" || downloader.blob != "scan/left.png" {
		t.Errorf("Unexpected download target %s/%s", downloader.container, downloader.blob)
	}
}
