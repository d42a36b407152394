package producer

import (
	"context"
	"errors"
	"testing"

	"go-fleetpay/internal/messaging/kafka"
	kafkaMock "go-fleetpay/internal/messaging/kafka/mock"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

type fakeWriter struct {
	written []kafkago.Message
	failOn  string
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafkago.Message) error {
	for _, m := range msgs {
		if string(m.Key) == w.failOn {
			return errors.New("leader not available")
		}
		w.written = append(w.written, m)
	}
	return nil
}

func TestProcessPendingEvents(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := kafkaMock.NewMockOutboxRepository(ctrl)
	writer := &fakeWriter{failOn: "s-2"}
	ctx := context.Background()

	ok := kafka.OutboxEvent{ID: "e-1", AggregateID: "s-1", Topic: "t", EventType: "shipment_completed", Payload: []byte(`{}`), RequestID: "rid-1"}
	bad := kafka.OutboxEvent{ID: "e-2", AggregateID: "s-2", Topic: "t", EventType: "shipment_status_changed", Payload: []byte(`{}`)}
	held := kafka.OutboxEvent{ID: "e-3", AggregateID: "s-2", Topic: "t", EventType: "shipment_completed", Payload: []byte(`{}`)}
	other := kafka.OutboxEvent{ID: "e-4", AggregateID: "s-3", Topic: "t", EventType: "shipment_completed", Payload: []byte(`{}`)}

	repo.EXPECT().ListPending(ctx, batchSize).Return([]kafka.OutboxEvent{ok, bad, held, other}, nil)
	repo.EXPECT().MarkSent(ctx, "e-1").Return(nil)
	repo.EXPECT().MarkFailed(ctx, bad, "leader not available").Return(nil)
	repo.EXPECT().MarkSent(ctx, "e-4").Return(nil)

	err := processPendingEvents(ctx, repo, writer, zap.NewNop())

	assert.NoError(t, err)
	// e-3 waits behind the failed e-2 of the same shipment
	assert.Len(t, writer.written, 2)
	assert.Equal(t, []byte("s-3"), writer.written[1].Key)
	assert.Equal(t, "t", writer.written[0].Topic)
	assert.Equal(t, []byte("s-1"), writer.written[0].Key)
	assert.Contains(t, writer.written[0].Headers, kafkago.Header{Key: "request_id", Value: []byte("rid-1")})
	assert.Contains(t, writer.written[0].Headers, kafkago.Header{Key: "outbox_id", Value: []byte("e-1")})
	assert.NotContains(t, writer.written[1].Headers, kafkago.Header{Key: "request_id", Value: []byte("")})
}

func TestProcessPendingEvents_ListError(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := kafkaMock.NewMockOutboxRepository(ctrl)
	ctx := context.Background()

	repo.EXPECT().ListPending(ctx, batchSize).Return(nil, errors.New("db down"))

	err := processPendingEvents(ctx, repo, &fakeWriter{}, zap.NewNop())
	assert.EqualError(t, err, "db down")
}
