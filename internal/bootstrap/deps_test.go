package bootstrap

import (
	"context"
	"testing"

	"github.com/Domenick1991/railbooking/config"
	"github.com/Domenick1991/railbooking/internal/events"
	"github.com/Domenick1991/railbooking/internal/kafka"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPublisher_KafkaUnreachableWarns(t *testing.T) {
	log, hook := test.NewNullLogger()
	cfg := &config.Config{
		Events: config.EventsConfig{Driver: "kafka"},
		Kafka:  config.KafkaConfig{Brokers: []string{"127.0.0.1:1"}, ReservationsTopic: "rail.reservations"},
	}

	p, err := NewPublisher(context.Background(), cfg, log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })

	assert.IsType(t, &kafka.Producer{}, p)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	assert.Equal(t, "kafka unreachable, reservation events may be lost", hook.LastEntry().Message)
}

func TestNewPublisher_Disabled(t *testing.T) {
	log, hook := test.NewNullLogger()

	p, err := NewPublisher(context.Background(), &config.Config{}, log)
	require.NoError(t, err)
	assert.Equal(t, events.NopPublisher{}, p)
	assert.Empty(t, hook.AllEntries())
}

func TestOpenStorage_Memory(t *testing.T) {
	log, _ := test.NewNullLogger()
	store, err := OpenStorage(context.Background(), &config.Config{Storage: config.StorageConfig{Driver: "memory"}}, log)
	require.NoError(t, err)
	defer store.Close()

	list, err := store.Trains.List(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, list)
}
