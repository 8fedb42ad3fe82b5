package sinks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Adda-Baaj/thread-digest/internal/domain"
)

// Event is the payload network sinks publish, one per record.
type Event struct {
	SourceID    string        `json:"source_id"`
	Record      domain.Record `json:"record"`
	PublishedAt time.Time     `json:"published_at"`
}

// NewEvent wraps a record for publishing.
func NewEvent(rec domain.Record) Event {
	return Event{
		SourceID:    rec.SubredditName,
		Record:      rec,
		PublishedAt: time.Now().UTC(),
	}
}

// publishEach sends one event per record, attempting every record even after a failure.
func publishEach(ctx context.Context, rs domain.ResultSet, send func(context.Context, Event) error) error {
	var errs []error
	for _, rec := range rs {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if err := send(ctx, NewEvent(rec)); err != nil {
			errs = append(errs, fmt.Errorf("record %s: %w", rec.SubredditName, err))
		}
	}
	return errors.Join(errs...)
}
