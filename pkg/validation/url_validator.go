package validation

import (
	"net/url"
	"slices"
	"strings"

	apperrors "go-image-reader/internal/errors"
)

// RemoteSchemes are the location schemes that are fetched rather than
// opened from disk
var RemoteSchemes = []string{"http", "https", "az", "s3"}

// URLValidator checks remote image locations before they are fetched
type URLValidator struct {
	allowedSchemes []string
	allowedHosts   []string
}

// NewURLValidator accepts every remote scheme and any host
func NewURLValidator() *URLValidator {
	return &URLValidator{
		allowedSchemes: RemoteSchemes,
		allowedHosts:   []string{}, // empty means all hosts allowed
	}
}

// NewURLValidatorWithOptions restricts schemes and, if hosts is non-empty,
// hosts (buckets and containers for object stores)
func NewURLValidatorWithOptions(schemes []string, hosts []string) *URLValidator {
	return &URLValidator{
		allowedSchemes: schemes,
		allowedHosts:   hosts,
	}
}

// IsRemote reports whether location names a remote image rather than a path.
// Anything without a known scheme prefix is a local path, so file names
// containing colons still resolve locally.
func IsRemote(location string) bool {
	for _, scheme := range RemoteSchemes {
		if strings.HasPrefix(strings.ToLower(location), scheme+"://") {
			return true
		}
	}
	return false
}

// ValidateImageURL validates a remote image location
func (v *URLValidator) ValidateImageURL(imageURL string) error {
	if strings.TrimSpace(imageURL) == "" {
		return apperrors.NewValidationError("URL cannot be empty", nil)
	}

	parsedURL, err := url.Parse(imageURL)
	if err != nil {
		return apperrors.NewValidationError("Invalid URL format", err)
	}

	scheme := strings.ToLower(parsedURL.Scheme)
	if !v.isSchemeAllowed(scheme) {
		return apperrors.NewValidationError("URL scheme not allowed", nil)
	}

	if parsedURL.Host == "" {
		return apperrors.NewValidationError("URL must have a valid host", nil)
	}

	if scheme == "az" || scheme == "s3" {
		if strings.Trim(parsedURL.Path, "/") == "" {
			return apperrors.NewValidationError("object URL must name a key", nil)
		}
	}

	if !v.isHostAllowed(parsedURL.Host) {
		return apperrors.NewValidationError("URL host not allowed", nil)
	}

	return nil
}

func (v *URLValidator) isSchemeAllowed(scheme string) bool {
	return slices.Contains(v.allowedSchemes, scheme)
}

// isHostAllowed returns true if no host restrictions are set
func (v *URLValidator) isHostAllowed(host string) bool {
	if len(v.allowedHosts) == 0 {
		return true
	}
	return slices.Contains(v.allowedHosts, host)
}
