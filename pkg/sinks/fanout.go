package sinks

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/Adda-Baaj/thread-digest/internal/domain"
)

// Result is the outcome of writing the result set to one sink.
type Result struct {
	ID     string
	Type   string
	Target string
	Err    error
}

// OK reports whether the sink write succeeded.
func (r Result) OK() bool { return r.Err == nil }

// Fanout writes a result set to every configured sink.
type Fanout struct {
	sinks []Sink
}

// NewFanout builds a dispatcher over sinks, dropping nil entries.
func NewFanout(sinks []Sink) *Fanout {
	cp := make([]Sink, 0, len(sinks))
	for _, s := range sinks {
		if s == nil {
			continue
		}
		cp = append(cp, s)
	}
	return &Fanout{sinks: cp}
}

// Write hands rs to every sink in order. A failing sink never stops the
// others; each outcome is reported in its own Result.
func (f *Fanout) Write(ctx context.Context, rs domain.ResultSet) []Result {
	if f == nil || len(f.sinks) == 0 {
		return nil
	}

	results := make([]Result, 0, len(f.sinks))
	for _, s := range f.sinks {
		res := Result{ID: s.ID(), Type: s.Type(), Target: s.Target()}
		if err := s.Write(ctx, rs); err != nil {
			res.Err = fmt.Errorf("%s sink[%s]: %w", s.Type(), s.ID(), err)
		}
		results = append(results, res)
	}
	return results
}

// Close releases sinks holding client connections.
func (f *Fanout) Close() error {
	if f == nil {
		return nil
	}
	var errs []error
	for _, s := range f.sinks {
		if c, ok := s.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close %s sink[%s]: %w", s.Type(), s.ID(), err))
			}
		}
	}
	return errors.Join(errs...)
}

// Size returns the number of active sinks.
func (f *Fanout) Size() int {
	if f == nil {
		return 0
	}
	return len(f.sinks)
}

// Failed filters results down to the failed writes.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if !r.OK() {
			out = append(out, r)
		}
	}
	return out
}
