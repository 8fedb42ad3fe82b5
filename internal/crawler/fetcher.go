package crawler

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/Adda-Baaj/thread-digest/internal/domain"
	"github.com/Adda-Baaj/thread-digest/pkg/httpclient"
)

// FetchError reports a source that could not be retrieved. It is recoverable:
// the aggregator skips the source and moves on.
type FetchError struct {
	SourceID   string
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d: %v", e.SourceID, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.SourceID, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Fetcher performs one GET per source with a browser-identifying header.
type Fetcher struct {
	client    httpclient.Client
	userAgent string
}

// NewFetcher builds a Fetcher on top of client. The request timeout is owned by the client.
func NewFetcher(client httpclient.Client, userAgent string) *Fetcher {
	return &Fetcher{client: client, userAgent: strings.TrimSpace(userAgent)}
}

// Fetch returns the page body, or a *FetchError on transport failure or a non-2xx status.
func (f *Fetcher) Fetch(ctx context.Context, src domain.Source) ([]byte, error) {
	if f == nil || f.client == nil {
		return nil, &FetchError{SourceID: src.ID, URL: src.URL, Err: fmt.Errorf("fetcher is not initialized")}
	}

	headers := map[string]string{}
	if f.userAgent != "" {
		headers["User-Agent"] = f.userAgent
	}

	resp, err := f.client.Get(ctx, src.URL, headers)
	if err != nil {
		return nil, &FetchError{SourceID: src.ID, URL: src.URL, Err: fmt.Errorf("http get: %w", err)}
	}

	body := resp.Body()
	if code := resp.StatusCode(); code < http.StatusOK || code >= http.StatusMultipleChoices {
		return nil, &FetchError{
			SourceID:   src.ID,
			URL:        src.URL,
			StatusCode: resp.StatusCode(),
			Err:        fmt.Errorf("unexpected response body: %s", responseSnippet(body)),
		}
	}
	return body, nil
}

func responseSnippet(body []byte) string {
	const maxLen = 256
	s := strings.TrimSpace(string(body))
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	if s == "" {
		return "<empty>"
	}
	return s
}
