package repository

import "errors"

var (
	// ErrInvalidImageURL indicates a remote location that failed validation
	ErrInvalidImageURL = errors.New("invalid image URL")

	// ErrImageNotFound indicates the image could not be downloaded
	ErrImageNotFound = errors.New("image not found")
)
