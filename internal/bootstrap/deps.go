package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/Domenick1991/railbooking/config"
	"github.com/Domenick1991/railbooking/internal/events"
	"github.com/Domenick1991/railbooking/internal/kafka"
	"github.com/Domenick1991/railbooking/internal/rabbitmq"
	"github.com/Domenick1991/railbooking/internal/repository"
	"github.com/Domenick1991/railbooking/internal/repository/memory"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

// Storage bundles the repositories of the configured driver.
type Storage struct {
	Trains       repository.TrainRepository
	Reservations repository.ReservationRepository
	Customers    repository.CustomerRepository
	closeFn      func()
}

func (s *Storage) Close() {
	if s.closeFn != nil {
		s.closeFn()
	}
}

// OpenStorage connects to Postgres (migrating and seeding when configured) or
// builds a seeded in-memory store.
func OpenStorage(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (*Storage, error) {
	if cfg.Storage.Driver == "memory" {
		log.Info("using in-memory storage")
		store := memory.NewSeededStore()
		return &Storage{
			Trains:       store.Trains(),
			Reservations: store.Reservations(),
			Customers:    store.Customers(),
		}, nil
	}

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if cfg.Storage.Migrate {
		if err := repository.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		log.Info("database schema migrated")
	}
	return &Storage{
		Trains:       repository.NewTrainRepository(pool),
		Reservations: repository.NewReservationRepository(pool),
		Customers:    repository.NewCustomerRepository(pool),
		closeFn:      pool.Close,
	}, nil
}

// NewPublisher returns the event publisher for the configured driver. An
// unreachable Kafka cluster is logged and the producer returned anyway, since
// publishing is best effort and the writer reconnects on its own.
func NewPublisher(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (events.Publisher, error) {
	switch cfg.Events.Driver {
	case "kafka":
		p := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.ReservationsTopic, log)
		checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := p.CheckConnection(checkCtx); err != nil {
			log.WithError(err).WithField("brokers", cfg.Kafka.Brokers).Warn("kafka unreachable, reservation events may be lost")
		}
		return p, nil
	case "rabbitmq":
		p, err := rabbitmq.NewPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Queue, log)
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		return events.NopPublisher{}, nil
	}
}

// NewSubscriber returns the event consumer for the configured driver, or nil
// when events are disabled.
func NewSubscriber(cfg *config.Config, log logrus.FieldLogger) (events.Subscriber, error) {
	switch cfg.Events.Driver {
	case "kafka":
		return kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.ReservationsTopic, log), nil
	case "rabbitmq":
		c, err := rabbitmq.NewConsumer(cfg.RabbitMQ.URL, cfg.RabbitMQ.Queue, log)
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, nil
	}
}
