package crawler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Adda-Baaj/thread-digest/internal/domain"
	"github.com/Adda-Baaj/thread-digest/internal/logger"
)

// Summary tallies one crawl pass. Counts are accumulated over the whole ResultSet.
type Summary struct {
	Sources     int `json:"sources"`
	Succeeded   int `json:"succeeded"`
	Failed      int `json:"failed"`
	Topics      int `json:"total_topics"`
	Discussions int `json:"total_discussions"`
}

// Service drives the source list through the fetcher and extractor, one source at a time.
type Service struct {
	fetcher   PageFetcher
	extractor ContentExtractor
	delay     time.Duration
	log       logger.Logger
	now       func() time.Time
	sleep     func(ctx context.Context, d time.Duration) error
}

// NewService wires a crawler with its fetcher, extractor and the pause between sources.
func NewService(fetcher PageFetcher, extractor ContentExtractor, delay time.Duration, log logger.Logger) *Service {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Service{
		fetcher:   fetcher,
		extractor: extractor,
		delay:     delay,
		log:       log,
		now:       time.Now,
		sleep:     sleepContext,
	}
}

// Run visits every source in order and returns one record per source that was
// fetched and parsed. Failed sources are logged and left out.
func (s *Service) Run(ctx context.Context, srcs []domain.Source) (domain.ResultSet, Summary) {
	summary := Summary{Sources: len(srcs)}
	results := make(domain.ResultSet, 0, len(srcs))
	if s == nil || s.fetcher == nil || s.extractor == nil {
		s.logger().ErrorObj("crawler service is not initialized", "sources", len(srcs))
		summary.Failed = len(srcs)
		return results, summary
	}

	for i, src := range srcs {
		if err := ctx.Err(); err != nil {
			s.log.WarnObj("crawl interrupted", "crawl_interrupt", map[string]any{
				"remaining": len(srcs) - i,
				"reason":    err.Error(),
			})
			summary.Failed += len(srcs) - i
			break
		}

		s.log.InfoObj(fmt.Sprintf("Scraping for %s", src.ID), "source", src)

		record, err := s.runSource(ctx, src)
		if err != nil {
			summary.Failed++
			s.log.ErrorObj("source scrape failed", "source_error", sourceErrorFields(src, err))
			continue
		}

		results = append(results, record)
		summary.Succeeded++
		s.log.InfoObj("source scraped", "source_result", map[string]any{
			"source_id":   src.ID,
			"title":       record.Title,
			"topics":      len(record.Topics),
			"discussions": len(record.Discussions),
		})

		if s.delay > 0 && i < len(srcs)-1 {
			if err := s.sleep(ctx, s.delay); err != nil {
				s.log.WarnObj("crawl interrupted", "crawl_interrupt", map[string]any{
					"remaining": len(srcs) - i - 1,
					"reason":    err.Error(),
				})
				summary.Failed += len(srcs) - i - 1
				break
			}
		}
	}

	summary.Topics, summary.Discussions = results.Totals()
	return results, summary
}

func (s *Service) runSource(ctx context.Context, src domain.Source) (domain.Record, error) {
	body, err := s.fetcher.Fetch(ctx, src)
	if err != nil {
		return domain.Record{}, err
	}

	ex, err := s.extractor.Extract(body)
	if err != nil {
		return domain.Record{}, fmt.Errorf("extract %s: %w", src.ID, err)
	}

	return domain.NewRecord(src, ex.Title, ex.Topics, ex.Discussions, s.now()), nil
}

func (s *Service) logger() logger.Logger {
	if s == nil || s.log == nil {
		return logger.NopLogger{}
	}
	return s.log
}

func sourceErrorFields(src domain.Source, err error) map[string]any {
	fields := map[string]any{
		"source_id": src.ID,
		"url":       src.URL,
		"error":     err.Error(),
	}
	var fetchErr *FetchError
	if errors.As(err, &fetchErr) {
		fields["stage"] = "fetch"
		if fetchErr.StatusCode != 0 {
			fields["status"] = fetchErr.StatusCode
		}
	} else {
		fields["stage"] = "extract"
	}
	return fields
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
