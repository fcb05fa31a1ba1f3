package opencatalog

import (
	"context"
	"io"
	"net/http"
	"time"
)

// AccessTokenHeader carries the caller's access token.
const AccessTokenHeader = "Api-Token"

// Getter performs a GET and returns the whole response body.
type Getter interface {
	Get(ctx context.Context, rawURL string, header http.Header) ([]byte, error)
}

// HTTPGetter is the default Getter over net/http. Credentials embedded in
// the URL are sent as basic auth by net/http itself.
type HTTPGetter struct {
	httpClient *http.Client
}

// NewHTTPGetter returns a Getter with the given timeout; zero leaves the
// transport defaults in charge.
func NewHTTPGetter(timeout time.Duration) *HTTPGetter {
	return &HTTPGetter{
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// NewHTTPGetterWithClient wraps an existing *http.Client.
func NewHTTPGetterWithClient(httpClient *http.Client) *HTTPGetter {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &HTTPGetter{httpClient: httpClient}
}

// Get reads the body regardless of status; the service reports lookup
// failures inside the XML document.
func (g *HTTPGetter) Get(ctx context.Context, rawURL string, header http.Header) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Accept", "application/xml")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	return io.ReadAll(resp.Body)
}
