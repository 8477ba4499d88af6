// Package httpx executes catalog and detail-page requests: retries with backoff,
// transparent brotli/gzip decoding, and typed errors for non-2xx responses.
package httpx

import (
	"fmt"
	"strings"
)

// HTTPError carries status/body for non-2xx responses.
// Callers use errors.As to decide whether a failure is worth retrying or skipping.
type HTTPError struct {
	Method     string
	URL        string
	StatusCode int
	Body       []byte
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("http error: %s %s status=%d body=%s", e.Method, e.URL, e.StatusCode, snippet(e.Body, 300))
}

func snippet(b []byte, max int) string {
	s := strings.TrimSpace(string(b))
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
