package sinks

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Adda-Baaj/thread-digest/internal/domain"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	snstypes "github.com/aws/aws-sdk-go-v2/service/sns/types"
)

type snsClient interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// snsSink publishes one notification per record to an SNS topic.
type snsSink struct {
	id       string
	topicARN string
	client   snsClient
	log      Logger
}

func newSNSSink(ctx context.Context, cfg SinkConfig, log Logger) (Sink, error) {
	if cfg.SNS == nil {
		return nil, fmt.Errorf("sink %q missing sns configuration", cfg.ID)
	}

	awsCfg, err := loadAWSConfig(ctx, cfg.SNS.Region, cfg.SNS.Credentials)
	if err != nil {
		return nil, err
	}

	return &snsSink{
		id:       cfg.ID,
		topicARN: cfg.SNS.TopicARN,
		client:   sns.NewFromConfig(awsCfg),
		log:      ensureLogger(log),
	}, nil
}

func (s *snsSink) ID() string     { return s.id }
func (s *snsSink) Type() string   { return TypeSNS }
func (s *snsSink) Target() string { return s.topicARN }

func (s *snsSink) Write(ctx context.Context, rs domain.ResultSet) error {
	return publishEach(ctx, rs, s.send)
}

func (s *snsSink) send(ctx context.Context, evt Event) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	input := &sns.PublishInput{
		TopicArn: aws.String(s.topicARN),
		Message:  aws.String(string(payload)),
		MessageAttributes: map[string]snstypes.MessageAttributeValue{
			"source_id": {
				DataType:    aws.String("String"),
				StringValue: aws.String(evt.SourceID),
			},
		},
	}

	out, err := s.client.Publish(ctx, input)
	if err != nil {
		return fmt.Errorf("publish to sns: %w", err)
	}
	var messageID string
	if out != nil {
		messageID = aws.ToString(out.MessageId)
	}
	s.log.DebugObj("sns sink delivered event", "sink_sns_delivery", map[string]any{
		"sink_id":    s.id,
		"source_id":  evt.SourceID,
		"message_id": messageID,
	})
	return nil
}
