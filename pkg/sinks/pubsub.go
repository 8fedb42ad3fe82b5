package sinks

import (
	"context"
	"encoding/json"
	"fmt"

	"cloud.google.com/go/pubsub"
	"github.com/Adda-Baaj/thread-digest/internal/domain"
	"google.golang.org/api/option"
)

// pubsubSink publishes one message per record to a Pub/Sub topic.
type pubsubSink struct {
	id     string
	name   string
	client *pubsub.Client
	topic  *pubsub.Topic
	log    Logger
}

func newPubSubSink(ctx context.Context, cfg SinkConfig, log Logger) (Sink, error) {
	if cfg.PubSub == nil {
		return nil, fmt.Errorf("sink %q missing pubsub configuration", cfg.ID)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var opts []option.ClientOption
	if cfg.PubSub.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.PubSub.CredentialsFile))
	}

	client, err := pubsub.NewClient(ctx, cfg.PubSub.ProjectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("create pubsub client: %w", err)
	}

	return &pubsubSink{
		id:     cfg.ID,
		name:   fmt.Sprintf("projects/%s/topics/%s", cfg.PubSub.ProjectID, cfg.PubSub.Topic),
		client: client,
		topic:  client.Topic(cfg.PubSub.Topic),
		log:    ensureLogger(log),
	}, nil
}

func (p *pubsubSink) ID() string     { return p.id }
func (p *pubsubSink) Type() string   { return TypePubSub }
func (p *pubsubSink) Target() string { return p.name }

func (p *pubsubSink) Write(ctx context.Context, rs domain.ResultSet) error {
	return publishEach(ctx, rs, p.send)
}

func (p *pubsubSink) send(ctx context.Context, evt Event) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	res := p.topic.Publish(ctx, &pubsub.Message{
		Data:       payload,
		Attributes: map[string]string{"source_id": evt.SourceID},
	})
	serverID, err := res.Get(ctx)
	if err != nil {
		return fmt.Errorf("publish to pubsub: %w", err)
	}
	p.log.DebugObj("pubsub sink delivered event", "sink_pubsub_delivery", map[string]any{
		"sink_id":    p.id,
		"source_id":  evt.SourceID,
		"message_id": serverID,
	})
	return nil
}

// Close flushes pending messages and closes the client.
func (p *pubsubSink) Close() error {
	if p == nil || p.client == nil {
		return nil
	}
	p.topic.Stop()
	return p.client.Close()
}
