package opencatalog

import "strings"

// ClientConfig describes where the OpenCatalog service lives.
// HTTPAuth is the "user:password" pair embedded in the request URL.
type ClientConfig struct {
	Scheme   string
	HTTPAuth string
	HTTPURL  string
}

// scheme accepts both "https" and the "https://" form.
func (c ClientConfig) scheme() string {
	s := strings.TrimSuffix(c.Scheme, "://")
	if s == "" {
		return "https"
	}
	return s
}
