package repository

import (
	"context"
	"os"
)

// ImageRepository turns remote image locations into local files
type ImageRepository interface {
	// ValidateImageURL validates if the provided location is acceptable
	ValidateImageURL(location string) error

	// Download copies the image at location into a temporary file
	Download(ctx context.Context, location string) (*LocalImage, error)
}

// LocalImage is a downloaded copy of a remote image
type LocalImage struct {
	Path      string
	Location  string
	SizeBytes int64
}

// Remove deletes the temporary file
func (l *LocalImage) Remove() error {
	if err := os.Remove(l.Path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
