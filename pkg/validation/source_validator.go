package validation

import (
	"net/url"
	"strings"

	apperrors "go-iris-segmenter/internal/errors"
)

// SourceValidator checks raw image references before anything is fetched.
type SourceValidator struct {
	allowedSchemes []string
	allowedHosts   []string
	allowLocal     bool
}

// NewSourceValidator accepts http(s) URLs, data URIs and azblob references
// but no local paths. Remote callers must not read the server's disk.
func NewSourceValidator() *SourceValidator {
	return &SourceValidator{
		allowedSchemes: []string{"http", "https", "azblob"},
		allowedHosts:   []string{}, // empty means all hosts allowed
	}
}

// NewLocalSourceValidator also accepts local file paths.
func NewLocalSourceValidator() *SourceValidator {
	v := NewSourceValidator()
	v.allowLocal = true
	return v
}

// NewSourceValidatorWithOptions creates a validator with custom schemes and
// hosts. hosts applies to http(s) only.
func NewSourceValidatorWithOptions(schemes []string, hosts []string, allowLocal bool) *SourceValidator {
	return &SourceValidator{
		allowedSchemes: schemes,
		allowedHosts:   hosts,
		allowLocal:     allowLocal,
	}
}

// ValidateSource validates an http(s) URL, data:image URI, azblob reference
// or, when allowed, a local path.
func (v *SourceValidator) ValidateSource(source string) error {
	if strings.TrimSpace(source) == "" {
		return apperrors.NewValidationError("source cannot be empty", nil)
	}

	if strings.HasPrefix(source, "data:") {
		return validateDataURI(source)
	}

	if !strings.Contains(source, "://") {
		if !v.allowLocal {
			return apperrors.NewValidationError("local files are not allowed", nil)
		}
		return nil
	}

	parsedURL, err := url.Parse(source)
	if err != nil {
		return apperrors.NewValidationError("invalid source format", err)
	}

	if !v.isSchemeAllowed(parsedURL.Scheme) {
		return apperrors.NewValidationError("source scheme not allowed", nil)
	}

	if parsedURL.Host == "" {
		return apperrors.NewValidationError("source must have a valid host", nil)
	}

	if parsedURL.Scheme == "azblob" {
		if strings.TrimPrefix(parsedURL.Path, "/") == "" {
			return apperrors.NewValidationError("blob reference needs a blob name", nil)
		}
		return nil
	}

	if !v.isHostAllowed(parsedURL.Host) {
		return apperrors.NewValidationError("source host not allowed", nil)
	}

	return nil
}

func validateDataURI(source string) error {
	if !strings.HasPrefix(source, "data:image") {
		return apperrors.NewValidationError("data URI must carry an image", nil)
	}
	_, payload, ok := strings.Cut(source, ",")
	if !ok || strings.TrimSpace(payload) == "" {
		return apperrors.NewValidationError("data URI has no payload", nil)
	}
	return nil
}

// isSchemeAllowed checks if the URL scheme is in the allowed list
func (v *SourceValidator) isSchemeAllowed(scheme string) bool {
	for _, allowed := range v.allowedSchemes {
		if scheme == allowed {
			return true
		}
	}
	return false
}

// isHostAllowed checks if the URL host is in the allowed list
// Returns true if no host restrictions are set (empty allowedHosts)
func (v *SourceValidator) isHostAllowed(host string) bool {
	if len(v.allowedHosts) == 0 {
		return true
	}
	for _, allowed := range v.allowedHosts {
		if host == allowed {
			return true
		}
	}
	return false
}
