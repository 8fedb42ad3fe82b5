package sinks

import (
	"context"

	"github.com/Adda-Baaj/thread-digest/internal/domain"
)

// Sink writes a whole result set to one destination (a file format, a queue, a webhook).
type Sink interface {
	ID() string
	Type() string
	// Target names the destination for logs: a path, URL, queue or topic.
	Target() string
	Write(ctx context.Context, rs domain.ResultSet) error
}
