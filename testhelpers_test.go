//go:build integration

package main_test

import (
	"context"
	"fmt"
	"io"
	"net"
	"testing"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	kafkamodule "github.com/testcontainers/testcontainers-go/modules/kafka"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/novy-stil/service-atelier/internal/application"
	costumeDomain "github.com/novy-stil/service-atelier/internal/domain/costume"
	userDomain "github.com/novy-stil/service-atelier/internal/domain/user"
	atelierEvents "github.com/novy-stil/service-atelier/internal/events"
	"github.com/novy-stil/service-atelier/internal/metrics"
	"github.com/novy-stil/service-atelier/internal/repository"
	"github.com/novy-stil/service-atelier/pkg/database"
	"github.com/novy-stil/service-atelier/pkg/events"
	"github.com/novy-stil/service-atelier/pkg/kafka"
)

// setupPostgres starts a PostgreSQL testcontainer, applies the SQL migrations
// and returns a connected GORM DB.
func setupPostgres(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()
	logger := zap.NewNop()

	pgReq := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "test_atelier",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pgContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: pgReq,
		Started:          true,
	})
	require.NoError(t, err, "failed to start PostgreSQL container")
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate PostgreSQL container: %v", err)
		}
	})

	pgHost, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	pgPort, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	cfg := database.PostgresConfig{
		Host:     pgHost,
		Port:     pgPort.Port(),
		User:     "test",
		Password: "test",
		DBName:   "test_atelier",
		SSLMode:  "disable",
	}

	// Poll until GORM can actually connect and ping.
	var db *gorm.DB
	require.Eventually(t, func() bool {
		var err error
		db, err = database.Connect(cfg, logger)
		return err == nil
	}, 30*time.Second, time.Second, "PostgreSQL not ready for connections")

	require.NoError(t, database.RunMigrations(cfg.DatabaseURL(), "migrations", logger))
	return db
}

// setupKafka starts a Kafka testcontainer and pre-creates the service topics.
func setupKafka(t *testing.T) []string {
	t.Helper()
	ctx := context.Background()

	// confluent-local supports KRaft natively.
	kafkaContainer, err := kafkamodule.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err, "failed to start Kafka container")
	t.Cleanup(func() {
		if err := kafkaContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate Kafka container: %v", err)
		}
	})

	brokers, err := kafkaContainer.Brokers(ctx)
	require.NoError(t, err, "failed to get Kafka brokers")

	createTopics(t, brokers, events.TopicBookingEvents, events.TopicWorkshopEvents)
	return brokers
}

// atelierStack holds wired-up service components over a real database.
type atelierStack struct {
	DB       *gorm.DB
	Booking  *application.BookingService
	Costumes *application.CostumeService
	Users    *repository.GormUserRepository
	Catalog  *repository.GormCostumeRepository
}

// setupStack wires the booking and catalog services. publisher may be nil.
func setupStack(t *testing.T, db *gorm.DB, publisher application.EventPublisher) *atelierStack {
	t.Helper()
	logger, _ := zap.NewDevelopment()
	if publisher == nil {
		publisher = atelierEvents.NewNopPublisher(logger)
	}

	costumeRepo := repository.NewGormCostumeRepository(db)
	return &atelierStack{
		DB: db,
		Booking: application.NewBookingService(
			costumeRepo,
			repository.NewGormOrderRepository(db),
			repository.NewGormReservationRepository(db),
			repository.NewGormCalendarRepository(db),
			database.NewTxRunner(db),
			publisher,
			metrics.New(nil),
			logger,
		),
		Costumes: application.NewCostumeService(costumeRepo, nopImages{}, logger),
		Users:    repository.NewGormUserRepository(db),
		Catalog:  costumeRepo,
	}
}

// seedUser inserts an active user and returns its id.
func seedUser(t *testing.T, s *atelierStack) int64 {
	t.Helper()
	u, err := userDomain.NewUser(fmt.Sprintf("user-%s@example.com", uuid.NewString()[:8]), "not-a-real-hash")
	require.NoError(t, err)
	require.NoError(t, s.Users.Save(context.Background(), u))
	return u.ID()
}

// seedCostume inserts a costume and returns its id.
func seedCostume(t *testing.T, s *atelierStack, available bool) int64 {
	t.Helper()
	c, err := costumeDomain.NewCostume("Лиса", "", 1500, available, uuid.NewString()+".png")
	require.NoError(t, err)
	require.NoError(t, s.Catalog.Save(context.Background(), c))
	return c.ID()
}

// publishTestEvent publishes a CloudEvent to Kafka.
func publishTestEvent(t *testing.T, brokers []string, topic, key, source, eventType string, data interface{}) {
	t.Helper()
	logger, _ := zap.NewDevelopment()
	producer := kafka.NewProducer(brokers, logger)
	defer func() { _ = producer.Close() }()

	ce, err := kafka.NewCloudEvent(source, eventType, data)
	require.NoError(t, err, "failed to create cloud event")

	err = producer.PublishEvent(context.Background(), topic, key, ce)
	require.NoError(t, err, "failed to publish event")
}

// waitForOrderStatus polls the orders table until the status matches.
func waitForOrderStatus(t *testing.T, db *gorm.DB, orderID int64, expectedStatus string, timeout time.Duration) {
	t.Helper()
	require.Eventually(t, func() bool {
		var model repository.OrderModel
		if err := db.Where("id = ?", orderID).First(&model).Error; err != nil {
			return false
		}
		return model.Status == expectedStatus
	}, timeout, 200*time.Millisecond, "order did not transition to %s", expectedStatus)
}

// consumeOneEvent reads from a Kafka topic until it finds an event of the expected type.
func consumeOneEvent(t *testing.T, brokers []string, topic, expectedType string, timeout time.Duration) kafka.CloudEvent {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	groupID := fmt.Sprintf("test-assert-%s", uuid.New().String()[:8])
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     brokers,
		GroupID:     groupID,
		Topic:       topic,
		MinBytes:    1,
		MaxBytes:    10e6,
		StartOffset: kafkago.FirstOffset,
	})
	defer func() { _ = reader.Close() }()

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				t.Fatalf("timed out waiting for event type %q on topic %q", expectedType, topic)
			}
			continue
		}
		ce, err := kafka.ParseCloudEvent(msg.Value)
		if err != nil {
			continue
		}
		if ce.Type == expectedType {
			return ce
		}
	}
}

// createTopics pre-creates Kafka topics so producers don't fail with "Unknown Topic".
func createTopics(t *testing.T, brokers []string, topics ...string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", brokers[0])
	require.NoError(t, err, "failed to dial Kafka for topic creation")
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err, "failed to get Kafka controller")

	controllerConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, fmt.Sprintf("%d", controller.Port)))
	require.NoError(t, err, "failed to connect to Kafka controller")
	defer controllerConn.Close()

	topicConfigs := make([]kafkago.TopicConfig, len(topics))
	for i, topic := range topics {
		topicConfigs[i] = kafkago.TopicConfig{
			Topic:             topic,
			NumPartitions:     1,
			ReplicationFactor: 1,
		}
	}
	err = controllerConn.CreateTopics(topicConfigs...)
	require.NoError(t, err, "failed to create Kafka topics")

	// Give Kafka a moment to propagate topic metadata.
	time.Sleep(1 * time.Second)
}

// nopImages satisfies storage.ImageStore without touching disk.
type nopImages struct{}

func (nopImages) Save(_ context.Context, name string, _ io.Reader) (string, error) { return name, nil }
func (nopImages) Delete(context.Context, string) error                             { return nil }
func (nopImages) URL(key string) string                                            { return "/uploads/" + key }
