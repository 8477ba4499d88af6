package httpx

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

// RequestBuilder builds a fresh request for every attempt.
type RequestBuilder func(ctx context.Context) (*http.Request, error)

// PostForm returns a builder for a form-encoded POST. form may be nil for an empty body.
func PostForm(target string, form url.Values, header http.Header) RequestBuilder {
	body := form.Encode()
	return func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, strings.NewReader(body))
		if err != nil {
			return nil, err
		}
		for k, vs := range header {
			for _, v := range vs {
				req.Header.Add(k, v)
			}
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=UTF-8")
		return req, nil
	}
}

// Get returns a builder for a plain GET.
func Get(target string, header http.Header) RequestBuilder {
	return func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return nil, err
		}
		for k, vs := range header {
			for _, v := range vs {
				req.Header.Add(k, v)
			}
		}
		return req, nil
	}
}
