package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"casedocs/internal/config"
)

var (
	// ErrFailed covers transport errors, non-2xx responses and oversized bodies.
	ErrFailed = errors.New("download failed")
	// ErrTimeout is returned when the source did not answer within the configured timeout.
	ErrTimeout = errors.New("download timed out")
)

// Downloader fetches the bytes of a source document.
type Downloader interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// HTTPDownloader fetches documents over HTTP(S) with a hard timeout and a size cap.
type HTTPDownloader struct {
	client   *http.Client
	maxBytes int64
}

var _ Downloader = (*HTTPDownloader)(nil)

func NewHTTPDownloader(cfg config.DownloadConfig) *HTTPDownloader {
	return &HTTPDownloader{
		client: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		maxBytes: cfg.MaxBytes,
	}
}

func (d *HTTPDownloader) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailed, err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, classify(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d", ErrFailed, resp.StatusCode)
	}

	body := io.Reader(resp.Body)
	if d.maxBytes > 0 {
		body = io.LimitReader(resp.Body, d.maxBytes+1)
	}
	b, err := io.ReadAll(body)
	if err != nil {
		return nil, classify(err)
	}
	if d.maxBytes > 0 && int64(len(b)) > d.maxBytes {
		return nil, fmt.Errorf("%w: body exceeds %d bytes", ErrFailed, d.maxBytes)
	}
	return b, nil
}

func classify(err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrFailed, err)
}

