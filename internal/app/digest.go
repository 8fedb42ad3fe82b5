package app

import (
	"context"
	"fmt"
	"time"

	"github.com/Adda-Baaj/thread-digest/internal/config"
	"github.com/Adda-Baaj/thread-digest/internal/crawler"
	"github.com/Adda-Baaj/thread-digest/internal/domain"
	"github.com/Adda-Baaj/thread-digest/internal/logger"
	"github.com/Adda-Baaj/thread-digest/pkg/httpclient"
	"github.com/Adda-Baaj/thread-digest/pkg/sinks"
	"github.com/Adda-Baaj/thread-digest/pkg/sources"
)

// Digest is the single-run batch: crawl every source once, then hand the
// result set to each configured sink.
type Digest struct {
	cfg          *config.Config
	sources      []domain.Source
	fanout       *sinks.Fanout
	crawlService *crawler.Service
	log          logger.Logger
}

// NewDigest builds a digest runtime from config.
func NewDigest(ctx context.Context, cfg *config.Config, log logger.Logger) (*Digest, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	srcs, err := loadSources(cfg)
	if err != nil {
		return nil, fmt.Errorf("load sources: %w", err)
	}
	sourceIDs := make([]string, 0, len(srcs))
	for _, s := range srcs {
		sourceIDs = append(sourceIDs, s.ID)
	}
	log.InfoObj("sources loaded", "sources_meta", map[string]any{
		"count": len(sourceIDs),
		"ids":   sourceIDs,
	})

	sinkCfgs, err := sinkConfigs(cfg)
	if err != nil {
		return nil, err
	}
	built, err := sinks.BuildAll(ctx, sinks.DefaultRegistry(), sinkCfgs, log)
	if err != nil {
		return nil, fmt.Errorf("build sinks: %w", err)
	}
	fanout := sinks.NewFanout(built)
	sinkSummaries := make([]map[string]string, 0, len(built))
	for _, s := range built {
		sinkSummaries = append(sinkSummaries, map[string]string{
			"id":     s.ID(),
			"type":   s.Type(),
			"target": s.Target(),
		})
	}
	log.InfoObj("sinks configured", "sinks_meta", map[string]any{
		"count": len(sinkSummaries),
		"sinks": sinkSummaries,
	})

	client := httpclient.NewRestyClient(cfg.RequestTimeout, cfg.UserAgent)
	extractor := crawler.NewExtractor(crawler.ExtractorOptions{
		Keywords:         cfg.Keywords,
		DiscussionMarker: cfg.DiscussionMarker,
	})
	crawlService := crawler.NewService(crawler.NewFetcher(client, cfg.UserAgent), extractor, cfg.RequestDelay, log)

	return &Digest{
		cfg:          cfg,
		sources:      srcs,
		fanout:       fanout,
		crawlService: crawlService,
		log:          log,
	}, nil
}

// loadSources prefers the sources file, then the configured URL list, then the built-in list.
func loadSources(cfg *config.Config) ([]domain.Source, error) {
	if cfg.SourcesFile == "" && len(cfg.SourceURLs) > 0 {
		return sources.FromURLs(cfg.SourceURLs...)
	}
	return sources.Load(cfg.SourcesFile)
}

// sinkConfigs returns the enabled sinks from the sinks file, or the json and
// csv file sinks when no file is configured.
func sinkConfigs(cfg *config.Config) ([]sinks.SinkConfig, error) {
	if cfg.SinksFile == "" {
		return sinks.DefaultConfigs(cfg.JSONPath, cfg.CSVPath, cfg.JSONEscapeNonASCII, cfg.CSVCRLF), nil
	}
	reg, err := sinks.LoadRegistry(cfg.SinksFile)
	if err != nil {
		return nil, fmt.Errorf("load sinks registry: %w", err)
	}
	enabled := reg.Enabled()
	if len(enabled) == 0 {
		return nil, fmt.Errorf("no sinks enabled in %s", cfg.SinksFile)
	}
	return enabled, nil
}

// Run performs one crawl pass and writes the results. Per-source and per-sink
// failures are logged, not returned.
func (d *Digest) Run(ctx context.Context) error {
	if d == nil || d.crawlService == nil {
		return fmt.Errorf("digest is not initialized")
	}
	defer d.closeSinks()

	start := time.Now()
	d.log.InfoObj("crawl started", "crawl_meta", map[string]any{
		"sources_count": len(d.sources),
		"sinks_count":   d.fanout.Size(),
		"started_at":    start.UTC(),
	})

	results, summary := d.crawlService.Run(ctx, d.sources)
	d.log.InfoObj("crawl completed", "crawl_meta", map[string]any{
		"sources_count": summary.Sources,
		"succeeded":     summary.Succeeded,
		"failed":        summary.Failed,
		"elapsed_ms":    time.Since(start).Milliseconds(),
	})

	if results.Empty() {
		d.log.WarnObj("No Data Returned", "crawl_summary", summary)
		return nil
	}
	d.log.InfoObj(fmt.Sprintf("Total %d topics, %d discussions", summary.Topics, summary.Discussions), "crawl_summary", summary)

	written := d.fanout.Write(ctx, results)
	for _, res := range written {
		fields := map[string]any{
			"sink_id": res.ID,
			"type":    res.Type,
			"target":  res.Target,
		}
		if !res.OK() {
			fields["error"] = res.Err.Error()
			d.log.ErrorObj("save failed", "sink_result", fields)
			continue
		}
		d.log.InfoObj("saved", "sink_result", fields)
	}
	if failed := sinks.Failed(written); len(failed) > 0 {
		d.log.WarnObj("some sinks failed", "sinks_written", map[string]any{
			"total":  len(written),
			"failed": len(failed),
		})
	}
	return nil
}

func (d *Digest) closeSinks() {
	if err := d.fanout.Close(); err != nil {
		d.log.ErrorObj("sink close failed", "error", err)
	}
}
