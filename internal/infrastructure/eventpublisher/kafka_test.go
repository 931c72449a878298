package eventpublisher

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/bankledger/internal/domain"
)

type fakeWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (f *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestKafkaPublisherPublish(t *testing.T) {
	w := &fakeWriter{}
	p := &KafkaPublisher{writer: w}

	event := domain.NewTransferCompletedEvent("evt-1", &domain.Transaction{
		ID:                "tx-1",
		TrackingCode:      "ABCDEFGHJK",
		SenderAccountID:   "a",
		ReceiverAccountID: "b",
		Amount:            decimal.RequireFromString("10.5"),
		Channel:           domain.ChannelInterbankBatch,
		CreatedAt:         time.Date(2026, 10, 16, 10, 0, 0, 0, time.UTC),
	})

	require.NoError(t, p.Publish(context.Background(), event))
	require.Len(t, w.messages, 1)

	msg := w.messages[0]
	assert.Equal(t, "tx-1", string(msg.Key))
	assert.Contains(t, msg.Headers, kafka.Header{Key: "event_type", Value: []byte(domain.EventTypeTransferCompleted)})

	var envelope eventEnvelope
	require.NoError(t, json.Unmarshal(msg.Value, &envelope))
	assert.Equal(t, "evt-1", envelope.ID)
	assert.Equal(t, "10.50", envelope.Payload["amount"])
	assert.Equal(t, "interbank-batch", envelope.Payload["channel"])

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestKafkaPublisherWriteError(t *testing.T) {
	p := &KafkaPublisher{writer: &fakeWriter{err: errors.New("leader not available")}}

	err := p.Publish(context.Background(), &domain.OutboxEvent{ID: "evt-1", AggregateID: "tx-1"})
	assert.Error(t, err)
}

func TestNewKafkaPublisherConfiguresWriter(t *testing.T) {
	p := NewKafkaPublisher([]string{"localhost:9092"}, "bankledger.transfers")

	w, ok := p.writer.(*kafka.Writer)
	require.True(t, ok)
	assert.Equal(t, "bankledger.transfers", w.Topic)
	require.NoError(t, p.Close())
}
