package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	maxAttempts  = 3
	maxRedirects = 3
)

// ErrTooLarge is returned when a download exceeds the configured size cap
var ErrTooLarge = errors.New("image exceeds size limit")

// HTTPSource fetches images over HTTP(S) with retries on transient errors
type HTTPSource struct {
	client   *http.Client
	maxBytes int64
	backoff  time.Duration
}

// NewHTTPSource creates an HTTP image source.
// maxBytes caps the downloaded size; timeout bounds each attempt.
func NewHTTPSource(timeout time.Duration, maxBytes int64) *HTTPSource {
	transport := &http.Transport{
		Proxy:                  http.ProxyFromEnvironment,
		MaxIdleConns:           10,
		MaxIdleConnsPerHost:    2,
		IdleConnTimeout:        30 * time.Second,
		TLSHandshakeTimeout:    10 * time.Second,
		ResponseHeaderTimeout:  10 * time.Second,
		ExpectContinueTimeout:  1 * time.Second,
		MaxResponseHeaderBytes: 4096,
	}

	return &HTTPSource{
		client: &http.Client{
			Transport: transport,
			Timeout:   timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return fmt.Errorf("too many redirects (limit: %d)", maxRedirects)
				}
				return nil
			},
		},
		maxBytes: maxBytes,
		backoff:  time.Second,
	}
}

func (h *HTTPSource) Fetch(ctx context.Context, imageURL string, dst io.Writer) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	req.Header.Set("Accept", "image/png, image/jpeg, image/webp, image/gif, */*")
	req.Header.Set("User-Agent", "Go-Image-Reader/1.0")

	var resp *http.Response
	var lastErr error

	// Only transport errors and 5xx are retried
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * h.backoff):
			}
		}

		resp, err = h.client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		if resp.StatusCode == http.StatusOK {
			break
		}

		resp.Body.Close()
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return fmt.Errorf("client error: status code %d", resp.StatusCode)
		}
		lastErr = fmt.Errorf("server error: status code %d", resp.StatusCode)
		resp = nil
	}

	if resp == nil {
		if lastErr == nil {
			lastErr = errors.New("unknown error")
		}
		return fmt.Errorf("failed to fetch image after %d attempts: %w", maxAttempts, lastErr)
	}
	defer resp.Body.Close()

	return copyLimited(dst, resp.Body, h.maxBytes)
}

// copyLimited copies at most limit bytes and fails if src holds more
func copyLimited(dst io.Writer, src io.Reader, limit int64) error {
	n, err := io.Copy(dst, io.LimitReader(src, limit+1))
	if err != nil {
		return fmt.Errorf("download failed: %w", err)
	}
	if n > limit {
		return fmt.Errorf("%w (%d bytes)", ErrTooLarge, limit)
	}
	return nil
}
