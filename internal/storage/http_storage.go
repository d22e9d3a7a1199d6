package storage

import (
	"context"
	"errors"
	"fmt"
	"image"
	"net/http"
	"time"

	apperrors "go-iris-segmenter/internal/errors"
)

const maxAttempts = 3

// HTTPImageFetcher downloads images over HTTP(S) with retries on transient
// failures.
type HTTPImageFetcher struct {
	client  *http.Client
	backoff time.Duration
}

// HTTPOption customises an HTTPImageFetcher
type HTTPOption func(*HTTPImageFetcher)

// WithRetryBackoff sets the base delay between attempts. Attempt n waits
// n*backoff.
func WithRetryBackoff(d time.Duration) HTTPOption {
	return func(h *HTTPImageFetcher) {
		h.backoff = d
	}
}

// WithHTTPClient replaces the default client
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(h *HTTPImageFetcher) {
		h.client = client
	}
}

// NewHTTPImageFetcher creates an HTTP image fetcher. timeout bounds a single
// attempt; a non-positive value uses 30s.
func NewHTTPImageFetcher(timeout time.Duration, opts ...HTTPOption) *HTTPImageFetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	transport := &http.Transport{
		MaxIdleConns:           10,
		MaxIdleConnsPerHost:    2,
		IdleConnTimeout:        30 * time.Second,
		TLSHandshakeTimeout:    10 * time.Second,
		ResponseHeaderTimeout:  10 * time.Second,
		ExpectContinueTimeout:  1 * time.Second,
		MaxResponseHeaderBytes: 4096,
	}

	h := &HTTPImageFetcher{
		client: &http.Client{
			Transport: transport,
			Timeout:   timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("too many redirects (limit: 3)")
				}
				return nil
			},
		},
		backoff: time.Second,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// FetchImage downloads and decodes imageURL. 5xx responses and transport
// errors are retried; 4xx responses are not.
func (h *HTTPImageFetcher) FetchImage(ctx context.Context, imageURL string) (image.Image, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, "", apperrors.NewValidationError("invalid image URL", err)
	}
	req.Header.Set("Accept", "image/jpeg, image/png, image/webp, image/gif, image/bmp, image/tiff, */*")
	req.Header.Set("User-Agent", "Go-Iris-Segmenter/1.0")

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, "", apperrors.NewTimeoutError("image fetch cancelled", ctx.Err())
			case <-time.After(time.Duration(attempt) * h.backoff):
			}
		}

		resp, err := h.client.Do(req)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
				return nil, "", apperrors.NewTimeoutError("image fetch timeout", err)
			}
			lastErr = err
			continue
		}

		if resp.StatusCode == http.StatusOK {
			img, format, err := DecodeImage(resp.Body)
			resp.Body.Close()
			return img, format, err
		}
		resp.Body.Close()

		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			cause := fmt.Errorf("client error: status code %d", resp.StatusCode)
			if resp.StatusCode == http.StatusNotFound {
				return nil, "", apperrors.NewNotFoundError("image not found", cause)
			}
			return nil, "", apperrors.NewNetworkError("failed to fetch image", cause)
		}
		lastErr = fmt.Errorf("server error: status code %d", resp.StatusCode)
	}

	return nil, "", apperrors.NewNetworkError(
		fmt.Sprintf("failed to fetch image after %d attempts", maxAttempts), lastErr)
}
