package repository

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"

	apperrors "go-image-reader/internal/errors"
	"go-image-reader/internal/factory"
	"go-image-reader/pkg/validation"
)

// RemoteImageRepository downloads images through the storage sources
type RemoteImageRepository struct {
	sources   factory.StorageFactory
	validator *validation.URLValidator
	tempDir   string
}

// NewRemoteImageRepository creates a repository writing to the system temp dir
func NewRemoteImageRepository(sources factory.StorageFactory, validator *validation.URLValidator) *RemoteImageRepository {
	return &RemoteImageRepository{
		sources:   sources,
		validator: validator,
	}
}

// ValidateImageURL validates if the provided location is acceptable
func (r *RemoteImageRepository) ValidateImageURL(location string) error {
	if err := r.validator.ValidateImageURL(location); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidImageURL, err)
	}
	return nil
}

// Download fetches location into a temp file that keeps the original
// extension, so decoders and OCR see a familiar name
func (r *RemoteImageRepository) Download(ctx context.Context, location string) (*LocalImage, error) {
	if err := r.ValidateImageURL(location); err != nil {
		return nil, err
	}

	parsed, err := url.Parse(location)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidImageURL, err)
	}
	source, err := r.sources.CreateSource(parsed.Scheme)
	if err != nil {
		return nil, err
	}

	tmp, err := os.CreateTemp(r.tempDir, "imagereader-*"+path.Ext(parsed.Path))
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	local := &LocalImage{Path: tmp.Name(), Location: location}

	fetchErr := source.Fetch(ctx, location, tmp)
	closeErr := tmp.Close()
	if fetchErr != nil {
		local.Remove()
		return nil, fetchError(location, fetchErr)
	}
	if closeErr != nil {
		local.Remove()
		return nil, fmt.Errorf("write temp file: %w", closeErr)
	}

	if info, err := os.Stat(local.Path); err == nil {
		local.SizeBytes = info.Size()
	}
	return local, nil
}

// fetchError classifies a failed download. ErrImageNotFound stays in the chain.
func fetchError(location string, err error) error {
	cause := fmt.Errorf("%w: %w", ErrImageNotFound, err)
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.NewTimeoutError(fmt.Sprintf("timed out fetching %s", location), cause)
	}
	return apperrors.NewNetworkError(fmt.Sprintf("failed to fetch %s", location), cause)
}
