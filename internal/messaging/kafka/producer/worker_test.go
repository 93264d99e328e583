package producer_test

import (
	"context"
	"errors"
	"testing"

	"go-leave/internal/messaging/kafka"
	kafkaMock "go-leave/internal/messaging/kafka/mock"
	"go-leave/internal/messaging/kafka/producer"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

type recordingWriter struct {
	fail     map[string]error
	messages []kafkago.Message
}

func (w *recordingWriter) WriteMessages(ctx context.Context, msgs ...kafkago.Message) error {
	for _, m := range msgs {
		if err := w.fail[string(m.Key)]; err != nil {
			return err
		}
		w.messages = append(w.messages, m)
	}
	return nil
}

func TestProcessPendingEvents(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := kafkaMock.NewMockOutboxRepository(ctrl)
	ctx := context.Background()

	events := []kafka.OutboxEvent{
		{ID: "e1", RequestID: "req-1", AggregateType: "holiday", AggregateID: "h1", EventType: "holiday_date_changed", Topic: "t", Payload: []byte(`{}`)},
		{ID: "e2", AggregateType: "holiday", AggregateID: "h2", EventType: "holiday_date_changed", Topic: "t", Payload: []byte(`{}`)},
	}

	t.Run("sends and marks each event", func(t *testing.T) {
		writer := &recordingWriter{}
		repo.EXPECT().ListPending(ctx, 50).Return(events, nil)
		repo.EXPECT().MarkSent(ctx, "e1").Return(nil)
		repo.EXPECT().MarkSent(ctx, "e2").Return(nil)

		sent, err := producer.ProcessPendingEvents(ctx, repo, writer, zap.NewNop())

		require.NoError(t, err)
		assert.Equal(t, 2, sent)
		require.Len(t, writer.messages, 2)
		assert.Equal(t, "h1", string(writer.messages[0].Key))
		assert.Len(t, writer.messages[0].Headers, 3)
		assert.Len(t, writer.messages[1].Headers, 2)
	})

	t.Run("failed publish is marked for retry", func(t *testing.T) {
		writer := &recordingWriter{fail: map[string]error{"h1": errors.New("broker down")}}
		repo.EXPECT().ListPending(ctx, 50).Return(events, nil)
		repo.EXPECT().MarkFailed(ctx, "e1", "broker down").Return(nil)
		repo.EXPECT().MarkSent(ctx, "e2").Return(nil)

		sent, err := producer.ProcessPendingEvents(ctx, repo, writer, zap.NewNop())

		require.NoError(t, err)
		assert.Equal(t, 1, sent)
	})

	t.Run("list failure", func(t *testing.T) {
		repo.EXPECT().ListPending(ctx, 50).Return(nil, errors.New("db down"))

		_, err := producer.ProcessPendingEvents(ctx, repo, &recordingWriter{}, zap.NewNop())

		assert.Error(t, err)
	})
}
