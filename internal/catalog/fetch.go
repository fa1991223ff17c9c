package catalog

import (
	"context"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"
)

// Fetcher retrieves raw catalog documents by path relative to the content
// root. Implementations are read-only.
type Fetcher interface {
	Fetch(ctx context.Context, path string) ([]byte, error)
}

// FSFetcher reads documents from a file system, typically os.DirFS of the
// content root.
type FSFetcher struct {
	fsys fs.FS
}

// NewFSFetcher returns a Fetcher over fsys.
func NewFSFetcher(fsys fs.FS) *FSFetcher {
	return &FSFetcher{fsys: fsys}
}

func (f *FSFetcher) Fetch(ctx context.Context, p string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, &ErrFetch{Path: p, Err: err}
	}
	data, err := fs.ReadFile(f.fsys, cleanPath(p))
	if err != nil {
		return nil, &ErrFetch{Path: p, Err: err}
	}
	return data, nil
}

// HTTPFetcher fetches documents from a static HTTP host.
type HTTPFetcher struct {
	baseURL string
	client  *http.Client
}

// HTTPOption configures an HTTPFetcher.
type HTTPOption func(*HTTPFetcher)

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(f *HTTPFetcher) { f.client = c }
}

// WithTimeout sets a per-request timeout on the default client.
func WithTimeout(d time.Duration) HTTPOption {
	return func(f *HTTPFetcher) { f.client = &http.Client{Timeout: d} }
}

// NewHTTPFetcher returns a Fetcher rooted at baseURL.
func NewHTTPFetcher(baseURL string, opts ...HTTPOption) *HTTPFetcher {
	f := &HTTPFetcher{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *HTTPFetcher) Fetch(ctx context.Context, p string) ([]byte, error) {
	u, err := url.JoinPath(f.baseURL, cleanPath(p))
	if err != nil {
		return nil, &ErrFetch{Path: p, Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &ErrFetch{Path: p, Err: err}
	}
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &ErrFetch{Path: p, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &ErrFetch{Path: p, StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ErrFetch{Path: p, Err: err}
	}
	return data, nil
}

// cleanPath normalizes an index-relative path for fs.FS and URL joining.
func cleanPath(p string) string {
	return strings.TrimPrefix(path.Clean("/"+p), "/")
}
