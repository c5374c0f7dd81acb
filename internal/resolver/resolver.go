package resolver

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	apperrors "go-image-reader/internal/errors"
	"go-image-reader/internal/repository"
	"go-image-reader/pkg/validation"
)

// Usage is printed whenever no image can be resolved
const Usage = "Usage: imagereader [image_path]"

// DefaultRelativeImage is the default image, relative to the directory that
// holds the executable
var DefaultRelativeImage = filepath.Join("..", "image", "home page.png")

// Target is the image the backends inspect
type Target struct {
	// Path is always a local file
	Path string
	// Source is the argument as given; for remote images the URL
	Source string

	download *repository.LocalImage
}

// Remote reports whether Path is a downloaded copy
func (t *Target) Remote() bool {
	return t.download != nil
}

// Close removes the downloaded copy of a remote image. It is a no-op for
// local files.
func (t *Target) Close() error {
	if t.download == nil {
		return nil
	}
	return t.download.Remove()
}

// Resolver decides which image to inspect
type Resolver struct {
	defaultImage string
	images       repository.ImageRepository
	executable   func() (string, error)
}

// New creates a resolver. defaultImage overrides the location next to the
// executable; images may be nil when remote sources are not needed.
func New(defaultImage string, images repository.ImageRepository) *Resolver {
	return &Resolver{
		defaultImage: defaultImage,
		images:       images,
		executable:   os.Executable,
	}
}

// DefaultPath returns the image used when no argument is given
func (r *Resolver) DefaultPath() (string, error) {
	if r.defaultImage != "" {
		return r.defaultImage, nil
	}
	exe, err := r.executable()
	if err != nil {
		return "", apperrors.NewInternalError("cannot locate executable", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Join(filepath.Dir(exe), DefaultRelativeImage), nil
}

// Resolve accepts zero or one argument. A given argument is used verbatim.
// The caller must Close the returned target.
func (r *Resolver) Resolve(ctx context.Context, args []string) (*Target, error) {
	if len(args) > 1 {
		return nil, apperrors.NewValidationError(fmt.Sprintf("expected at most one image path, got %d", len(args)), nil)
	}

	location := ""
	if len(args) == 1 {
		location = args[0]
	} else {
		def, err := r.DefaultPath()
		if err != nil {
			return nil, err
		}
		location = def
	}

	if validation.IsRemote(location) {
		return r.resolveRemote(ctx, location)
	}

	info, err := os.Stat(location)
	if err != nil {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("Image not found at '%s'", location), err)
	}
	if info.IsDir() {
		return nil, apperrors.NewValidationError(fmt.Sprintf("'%s' is a directory, not an image", location), nil)
	}
	return &Target{Path: location, Source: location}, nil
}

func (r *Resolver) resolveRemote(ctx context.Context, location string) (*Target, error) {
	if r.images == nil {
		return nil, apperrors.NewValidationError("remote images are not supported here", nil)
	}
	if err := r.images.ValidateImageURL(location); err != nil {
		return nil, apperrors.NewValidationError(fmt.Sprintf("invalid image location '%s'", location), err)
	}

	local, err := r.images.Download(ctx, location)
	if err != nil {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("Image not found at '%s'", location), err)
	}
	return &Target{Path: local.Path, Source: location, download: local}, nil
}
