package resolver

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "go-image-reader/internal/errors"
	"go-image-reader/internal/repository"
)

type fakeImages struct {
	validateErr error
	downloadErr error
	dir         string
	downloads   int
}

func (f *fakeImages) ValidateImageURL(string) error { return f.validateErr }

func (f *fakeImages) Download(_ context.Context, location string) (*repository.LocalImage, error) {
	f.downloads++
	if f.downloadErr != nil {
		return nil, f.downloadErr
	}
	path := filepath.Join(f.dir, "download.png")
	if err := os.WriteFile(path, []byte("img"), 0o600); err != nil {
		return nil, err
	}
	return &repository.LocalImage{Path: path, Location: location, SizeBytes: 3}, nil
}

func touch(t *testing.T, path string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("img"), 0o600))
	return path
}

func TestResolve_ArgumentIsVerbatim(t *testing.T) {
	path := touch(t, filepath.Join(t.TempDir(), "my shot.png"))

	target, err := New("", nil).Resolve(context.Background(), []string{path})
	require.NoError(t, err)
	defer target.Close()

	assert.Equal(t, path, target.Path)
	assert.Equal(t, path, target.Source)
	assert.False(t, target.Remote())
}

func TestResolve_DefaultNextToExecutable(t *testing.T) {
	root := t.TempDir()
	exe := filepath.Join(root, "bin", "imagereader")
	want := touch(t, filepath.Join(root, "image", "home page.png"))

	r := New("", nil)
	r.executable = func() (string, error) { return exe, nil }

	target, err := r.Resolve(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, want, target.Path)
}

func TestResolve_ConfiguredDefault(t *testing.T) {
	path := touch(t, filepath.Join(t.TempDir(), "configured.png"))

	target, err := New(path, nil).Resolve(context.Background(), []string{})
	require.NoError(t, err)
	assert.Equal(t, path, target.Path)
}

func TestResolve_Missing(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.png")

	_, err := New("", nil).Resolve(context.Background(), []string{missing})
	require.Error(t, err)

	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrorTypeNotFound, appErr.Type)
	assert.Equal(t, "Image not found at '"+missing+"'", appErr.Message)
}

func TestResolve_MissingDefault(t *testing.T) {
	r := New("", nil)
	r.executable = func() (string, error) { return filepath.Join(t.TempDir(), "bin", "imagereader"), nil }

	_, err := r.Resolve(context.Background(), nil)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
}

func TestResolve_RejectsDirectoriesAndExtraArgs(t *testing.T) {
	_, err := New("", nil).Resolve(context.Background(), []string{t.TempDir()})
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))

	_, err = New("", nil).Resolve(context.Background(), []string{"a.png", "b.png"})
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
}

func TestResolve_Remote(t *testing.T) {
	images := &fakeImages{dir: t.TempDir()}

	target, err := New("", images).Resolve(context.Background(), []string{"s3://designs/home.png"})
	require.NoError(t, err)

	assert.True(t, target.Remote())
	assert.Equal(t, "s3://designs/home.png", target.Source)
	assert.FileExists(t, target.Path)

	require.NoError(t, target.Close())
	assert.NoFileExists(t, target.Path)
}

func TestResolve_RemoteFailures(t *testing.T) {
	images := &fakeImages{dir: t.TempDir(), downloadErr: errors.New("503")}
	_, err := New("", images).Resolve(context.Background(), []string{"https://example.com/a.png"})
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))

	images = &fakeImages{validateErr: errors.New("bad host")}
	_, err = New("", images).Resolve(context.Background(), []string{"https://example.com/a.png"})
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	assert.Zero(t, images.downloads)

	_, err = New("", nil).Resolve(context.Background(), []string{"https://example.com/a.png"})
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
}

func TestTarget_CloseLocalIsNoop(t *testing.T) {
	path := touch(t, filepath.Join(t.TempDir(), "keep.png"))
	target := &Target{Path: path, Source: path}

	require.NoError(t, target.Close())
	assert.FileExists(t, path)
}
