package kafka

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/Domenick1991/railbooking/internal/events"
	"github.com/Domenick1991/railbooking/internal/logger"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

type fakeReader struct {
	msgs      []kafka.Message
	committed []int64
	commitErr error
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	if r.commitErr != nil {
		return r.commitErr
	}
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *fakeReader) FetchMessage(_ context.Context) (kafka.Message, error) {
	if len(r.msgs) == 0 {
		return kafka.Message{}, io.EOF
	}
	m := r.msgs[0]
	r.msgs = r.msgs[1:]
	return m, nil
}

func (r *fakeReader) Close() error { return nil }

func TestProducer_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := &Producer{topic: "reservations", writer: w, log: logger.Discard()}

	ev := events.ReservationEvent{ID: "1", Type: events.ReservationCreated, ConfirmationCode: "AB1234CD"}
	require.NoError(t, p.Publish(context.Background(), ev))

	require.Len(t, w.msgs, 1)
	assert.Equal(t, "reservations", w.msgs[0].Topic)
	assert.Equal(t, []byte("AB1234CD"), w.msgs[0].Key)

	decoded, err := events.Decode(w.msgs[0].Value)
	require.NoError(t, err)
	assert.Equal(t, ev.ConfirmationCode, decoded.ConfirmationCode)
}

func TestProducer_PublishWithRetry(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker down")}
	p := &Producer{topic: "reservations", writer: w, log: logger.Discard()}

	err := p.PublishWithRetry(context.Background(), events.ReservationEvent{ConfirmationCode: "AB1234CD"}, 1)
	assert.ErrorContains(t, err, "failed after 1 retries")
}

func TestProducer_CheckConnectionNoBrokers(t *testing.T) {
	p := &Producer{log: logger.Discard()}
	assert.Error(t, p.CheckConnection(context.Background()))
}

func TestConsumer_Consume(t *testing.T) {
	good, _ := events.ReservationEvent{Type: events.ReservationCancelled, ConfirmationCode: "AB1234CD"}.Encode()
	r := &fakeReader{msgs: []kafka.Message{{Offset: 0, Value: []byte("garbage")}, {Offset: 1, Value: good}}}
	c := &Consumer{reader: r, log: logger.Discard()}

	var seen []string
	err := c.Consume(context.Background(), func(_ context.Context, ev events.ReservationEvent) error {
		seen = append(seen, ev.ConfirmationCode)
		return nil
	})

	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, []string{"AB1234CD"}, seen)
	assert.Equal(t, []int64{0, 1}, r.committed)
}

func TestConsumer_HandlerErrorStops(t *testing.T) {
	good, _ := events.ReservationEvent{Type: events.ReservationCancelled, ConfirmationCode: "AB1234CD"}.Encode()
	r := &fakeReader{msgs: []kafka.Message{{Offset: 7, Value: good}, {Offset: 8, Value: good}}}
	c := &Consumer{reader: r, log: logger.Discard()}

	calls := 0
	boom := errors.New("boom")
	err := c.Consume(context.Background(), func(context.Context, events.ReservationEvent) error {
		calls++
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
	assert.Empty(t, r.committed, "a failed message must stay uncommitted")
}

func TestConsumer_CommitErrorStops(t *testing.T) {
	good, _ := events.ReservationEvent{Type: events.ReservationCancelled, ConfirmationCode: "AB1234CD"}.Encode()
	commitErr := errors.New("rebalance in progress")
	r := &fakeReader{msgs: []kafka.Message{{Value: good}, {Value: good}}, commitErr: commitErr}
	c := &Consumer{reader: r, log: logger.Discard()}

	calls := 0
	err := c.Consume(context.Background(), func(context.Context, events.ReservationEvent) error {
		calls++
		return nil
	})

	assert.ErrorIs(t, err, commitErr)
	assert.Equal(t, 1, calls)
}

func TestNilConsumerClose(t *testing.T) {
	var c *Consumer
	assert.NoError(t, c.Close())
}
