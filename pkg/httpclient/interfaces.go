package httpclient

import "context"

// Response is the slice of an HTTP response the page fetcher needs.
type Response interface {
	Body() []byte
	StatusCode() int
}

// Client issues GET requests; tests swap in canned implementations.
type Client interface {
	Get(ctx context.Context, url string, headers map[string]string) (Response, error)
}
