package storage

import (
	"context"
	"io"
)

// ImageSource downloads a remote image so the backends can read it from disk
type ImageSource interface {
	// Fetch copies the object at location into dst
	Fetch(ctx context.Context, location string, dst io.Writer) error
}
