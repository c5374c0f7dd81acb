package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
)

// AzureSource downloads blobs addressed as az://container/path/to/blob
type AzureSource struct {
	client   *azblob.Client
	maxBytes int64
}

// NewAzureSource creates an Azure blob source. With an empty accountKey the
// client is anonymous, which works for public containers.
func NewAzureSource(accountName, accountKey, serviceURL string, maxBytes int64) (*AzureSource, error) {
	if serviceURL == "" {
		if accountName == "" {
			return nil, fmt.Errorf("azure storage account is not configured")
		}
		serviceURL = fmt.Sprintf("https://%s.blob.core.windows.net", accountName)
	}

	var (
		client *azblob.Client
		err    error
	)
	if accountKey != "" {
		credential, credErr := azblob.NewSharedKeyCredential(accountName, accountKey)
		if credErr != nil {
			return nil, fmt.Errorf("invalid azure credentials: %w", credErr)
		}
		client, err = azblob.NewClientWithSharedKeyCredential(serviceURL, credential, nil)
	} else {
		client, err = azblob.NewClientWithNoCredential(serviceURL, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("create azure client: %w", err)
	}

	return &AzureSource{client: client, maxBytes: maxBytes}, nil
}

func (s *AzureSource) Fetch(ctx context.Context, location string, dst io.Writer) error {
	containerName, blobName, err := splitObjectURL(location, "az")
	if err != nil {
		return err
	}

	downloadResponse, err := s.client.DownloadStream(ctx, containerName, blobName, nil)
	if err != nil {
		return fmt.Errorf("download failed: %w", err)
	}
	retryReader := downloadResponse.Body
	defer retryReader.Close()

	return copyLimited(dst, retryReader, s.maxBytes)
}

// splitObjectURL splits scheme://bucket/key into bucket and key
func splitObjectURL(location, scheme string) (string, string, error) {
	parsedURL, err := url.Parse(location)
	if err != nil {
		return "", "", fmt.Errorf("invalid object URL: %w", err)
	}
	if parsedURL.Scheme != scheme {
		return "", "", fmt.Errorf("expected %s:// URL, got %q", scheme, location)
	}
	bucket := parsedURL.Host
	key := strings.TrimPrefix(parsedURL.Path, "/")
	if bucket == "" || key == "" {
		return "", "", fmt.Errorf("object URL must look like %s://container/name, got %q", scheme, location)
	}
	return bucket, key, nil
}
