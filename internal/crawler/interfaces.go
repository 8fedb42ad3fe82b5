package crawler

import (
	"context"

	"github.com/Adda-Baaj/thread-digest/internal/domain"
)

// PageFetcher retrieves the raw body of a source page.
type PageFetcher interface {
	Fetch(ctx context.Context, src domain.Source) ([]byte, error)
}

// ContentExtractor turns a raw page body into topics and discussions.
type ContentExtractor interface {
	Extract(body []byte) (Extraction, error)
}
