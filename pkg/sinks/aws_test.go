package sinks

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

type fakeSQSClient struct {
	inputs []*sqs.SendMessageInput
	err    error
}

func (f *fakeSQSClient) SendMessage(_ context.Context, params *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	f.inputs = append(f.inputs, params)
	if f.err != nil {
		return nil, f.err
	}
	return &sqs.SendMessageOutput{MessageId: aws.String("msg-123")}, nil
}

type fakeSNSClient struct {
	inputs []*sns.PublishInput
	err    error
}

func (f *fakeSNSClient) Publish(_ context.Context, params *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	f.inputs = append(f.inputs, params)
	if f.err != nil {
		return nil, f.err
	}
	return &sns.PublishOutput{MessageId: aws.String("msg-123")}, nil
}

func TestSQSSinkWriteSuccess(t *testing.T) {
	client := &fakeSQSClient{}
	sink := &sqsSink{
		id:       "queue",
		queueURL: "https://example.com/queue",
		client:   client,
		log:      noopLogger{},
	}

	if err := sink.Write(context.Background(), sampleResultSet()); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}
	if len(client.inputs) != 2 {
		t.Fatalf("expected one message per record, got %d", len(client.inputs))
	}
	input := client.inputs[0]
	if got := aws.ToString(input.QueueUrl); got != "https://example.com/queue" {
		t.Fatalf("QueueUrl = %s", got)
	}
	attr, ok := input.MessageAttributes["source_id"]
	if !ok || aws.ToString(attr.StringValue) != "golang" {
		t.Fatalf("source_id attribute missing or wrong: %#v", attr)
	}
	if aws.ToString(attr.DataType) != "String" {
		t.Fatalf("DataType should be String, got %#v", attr.DataType)
	}
	if !strings.Contains(aws.ToString(input.MessageBody), `"source_id":"golang"`) {
		t.Fatalf("MessageBody missing source_id: %s", aws.ToString(input.MessageBody))
	}
}

func TestSQSSinkWriteAttemptsEveryRecord(t *testing.T) {
	client := &fakeSQSClient{err: errors.New("boom")}
	sink := &sqsSink{id: "queue", queueURL: "https://example.com/queue", client: client, log: noopLogger{}}

	if err := sink.Write(context.Background(), sampleResultSet()); err == nil {
		t.Fatalf("expected error from Write")
	}
	if len(client.inputs) != 2 {
		t.Fatalf("expected both records attempted, got %d", len(client.inputs))
	}
}

func TestSNSSinkWriteSuccess(t *testing.T) {
	client := &fakeSNSClient{}
	sink := &snsSink{
		id:       "topic",
		topicARN: "arn:aws:sns:::topic",
		client:   client,
		log:      noopLogger{},
	}

	if err := sink.Write(context.Background(), sampleResultSet()[1:]); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}
	if len(client.inputs) != 1 {
		t.Fatalf("expected 1 publish, got %d", len(client.inputs))
	}
	input := client.inputs[0]
	if got := aws.ToString(input.TopicArn); got != "arn:aws:sns:::topic" {
		t.Fatalf("TopicArn = %s", got)
	}
	if attr := input.MessageAttributes["source_id"]; aws.ToString(attr.StringValue) != "rust" {
		t.Fatalf("source_id attribute missing or wrong: %#v", attr)
	}
	if !strings.Contains(aws.ToString(input.Message), `"source_id":"rust"`) {
		t.Fatalf("Message missing source_id: %s", aws.ToString(input.Message))
	}
}

func TestSNSSinkWriteError(t *testing.T) {
	sink := &snsSink{id: "topic", topicARN: "arn", client: &fakeSNSClient{err: errors.New("boom")}, log: noopLogger{}}
	if err := sink.Write(context.Background(), sampleResultSet()); err == nil {
		t.Fatalf("expected error from Write")
	}
}

func TestPublishEachStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := publishEach(ctx, sampleResultSet(), func(context.Context, Event) error {
		calls++
		return nil
	})
	if !errors.Is(err, context.Canceled) || calls != 0 {
		t.Fatalf("expected cancellation before any send, err=%v calls=%d", err, calls)
	}
}
