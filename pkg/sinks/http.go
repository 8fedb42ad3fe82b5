package sinks

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Adda-Baaj/thread-digest/internal/domain"
	"github.com/Adda-Baaj/thread-digest/pkg/httpclient"
	"github.com/go-resty/resty/v2"
)

type httpSink struct {
	id      string
	method  string
	url     string
	headers map[string]string
	client  *resty.Client
	log     Logger
}

func newHTTPSink(_ context.Context, cfg SinkConfig, log Logger) (Sink, error) {
	if cfg.HTTP == nil {
		return nil, fmt.Errorf("sink %q missing http configuration", cfg.ID)
	}

	client := httpclient.NewRestyHTTPClient(time.Duration(cfg.HTTP.TimeoutSeconds) * time.Second)

	return &httpSink{
		id:      cfg.ID,
		method:  cfg.HTTP.Method,
		url:     cfg.HTTP.URL,
		headers: cfg.HTTP.Headers,
		client:  client,
		log:     ensureLogger(log),
	}, nil
}

func (h *httpSink) ID() string     { return h.id }
func (h *httpSink) Type() string   { return TypeHTTP }
func (h *httpSink) Target() string { return h.url }

func (h *httpSink) Write(ctx context.Context, rs domain.ResultSet) error {
	return publishEach(ctx, rs, h.send)
}

func (h *httpSink) send(ctx context.Context, evt Event) error {
	req := h.client.R().
		SetContext(ctx).
		SetBody(evt)

	if len(h.headers) > 0 {
		req.SetHeaders(h.headers)
	}

	req.SetHeader("Content-Type", "application/json")

	resp, err := req.Execute(h.method, h.url)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("http response status %d: %s", resp.StatusCode(), readBodySnippet(resp.Body()))
	}
	h.log.DebugObj("http sink delivered event", "sink_http_delivery", map[string]any{
		"sink_id":   h.id,
		"source_id": evt.SourceID,
	})
	return nil
}

func readBodySnippet(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	if len(body) > 512 {
		body = body[:512]
	}
	return strings.TrimSpace(string(body))
}
