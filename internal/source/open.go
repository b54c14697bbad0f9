package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"
)

const defaultTimeout = 30 * time.Second

// HTTPClient interface for making HTTP requests (allows injection for testing).
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Option configures the Opener.
type Option func(*Opener)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient HTTPClient) Option {
	return func(o *Opener) {
		o.httpClient = httpClient
	}
}

// WithTimeout sets the timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(o *Opener) {
		if d > 0 {
			o.httpClient = &http.Client{Timeout: d}
		}
	}
}

// Opener opens interaction logs by location: an http or https URL, or a
// local file path.
type Opener struct {
	httpClient HTTPClient
}

// NewOpener creates an Opener.
func NewOpener(opts ...Option) *Opener {
	o := &Opener{httpClient: &http.Client{Timeout: defaultTimeout}}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Open returns a reader over the log at location. The caller closes it.
func (o *Opener) Open(ctx context.Context, location string) (io.ReadCloser, error) {
	if location == "" {
		return nil, fmt.Errorf("no input given: pass --input or set ENGAGEMIX_INPUT")
	}
	if IsURL(location) {
		return o.fetch(ctx, location)
	}

	f, err := os.Open(location) // #nosec G304 -- reading the user-chosen input is the point
	if err != nil {
		return nil, fmt.Errorf("failed to open input: %w", err)
	}
	return f, nil
}

// OpenCSV opens location and wraps it in a CSVReader.
func (o *Opener) OpenCSV(ctx context.Context, location string) (*CSVReader, io.Closer, error) {
	rc, err := o.Open(ctx, location)
	if err != nil {
		return nil, nil, err
	}
	return NewCSVReader(rc), rc, nil
}

// IsURL reports whether location is an absolute http or https URL.
func IsURL(location string) bool {
	u, err := url.Parse(location)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func (o *Opener) fetch(ctx context.Context, location string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "text/csv, text/plain;q=0.9, */*;q=0.5")

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch input: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, handleHTTPError(resp.StatusCode)
	}

	return resp.Body, nil
}

func handleHTTPError(statusCode int) error {
	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("input URL refused access (status %d) - check the URL credentials", statusCode)
	case http.StatusNotFound:
		return fmt.Errorf("input URL not found (status 404) - check the address")
	case http.StatusTooManyRequests:
		return fmt.Errorf("input server rate limit exceeded - please try again later")
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return fmt.Errorf("input server error (status %d) - please try again later", statusCode)
	default:
		return fmt.Errorf("input fetch failed (status %d)", statusCode)
	}
}
