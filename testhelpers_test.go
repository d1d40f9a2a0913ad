//go:build integration

package main_test

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	kafkamodule "github.com/testcontainers/testcontainers-go/modules/kafka"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/staynest/service-booking/internal/application"
	"github.com/staynest/service-booking/internal/cache"
	bookingDomain "github.com/staynest/service-booking/internal/domain/booking"
	propertyDomain "github.com/staynest/service-booking/internal/domain/property"
	bookingEvents "github.com/staynest/service-booking/internal/events"
	"github.com/staynest/service-booking/internal/repository"
	"github.com/staynest/service-booking/pkg/database"
	"github.com/staynest/service-booking/pkg/events"
	"github.com/staynest/service-booking/pkg/kafka"
)

// testInfra holds shared test infrastructure.
type testInfra struct {
	DB           *gorm.DB
	Redis        *redis.Client
	KafkaBrokers []string
	Cleanup      func()
}

// bookingStack holds wired-up service components on top of testInfra.
type bookingStack struct {
	Bookings        *application.BookingService
	Availability    *application.AvailabilityService
	Properties      *repository.GormPropertyRepository
	Sweeper         *bookingEvents.ConflictSweeper
	CleanupProducer func()
}

// setupContainers starts PostgreSQL, Redis and Kafka and applies the SQL migrations.
func setupContainers(t *testing.T) *testInfra {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "test",
				"POSTGRES_PASSWORD": "test",
				"POSTGRES_DB":       "test_stays",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err, "failed to start PostgreSQL container")

	pgHost, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	pgPort, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dbConfig := database.PostgresConfig{
		Host:     pgHost,
		Port:     pgPort.Port(),
		User:     "test",
		Password: "test",
		DBName:   "test_stays",
		SSLMode:  "disable",
	}

	var db *gorm.DB
	require.Eventually(t, func() bool {
		var err error
		db, err = database.Connect(dbConfig, zap.NewNop())
		return err == nil
	}, 30*time.Second, time.Second, "PostgreSQL not ready for connections")
	require.NoError(t, database.RunMigrations(dbConfig.DatabaseURL(), "migrations", zap.NewNop()))

	redisContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err, "failed to start Redis container")
	redisHost, err := redisContainer.Host(ctx)
	require.NoError(t, err)
	redisPort, err := redisContainer.MappedPort(ctx, "6379")
	require.NoError(t, err)
	redisClient, err := cache.NewRedisClient(ctx, net.JoinHostPort(redisHost, redisPort.Port()), "", 0)
	require.NoError(t, err)

	kafkaContainer, err := kafkamodule.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err, "failed to start Kafka container")
	kafkaBrokers, err := kafkaContainer.Brokers(ctx)
	require.NoError(t, err, "failed to get Kafka brokers")
	createTopics(t, kafkaBrokers, events.TopicBookingEvents)

	cleanup := func() {
		_ = redisClient.Close()
		for name, c := range map[string]testcontainers.Container{
			"Kafka": kafkaContainer, "Redis": redisContainer, "PostgreSQL": pgContainer,
		} {
			if err := c.Terminate(ctx); err != nil {
				t.Logf("failed to terminate %s container: %v", name, err)
			}
		}
	}

	return &testInfra{
		DB:           db,
		Redis:        redisClient,
		KafkaBrokers: kafkaBrokers,
		Cleanup:      cleanup,
	}
}

// setupBookingStack wires the booking services the way cmd/server does.
func setupBookingStack(t *testing.T, infra *testInfra) *bookingStack {
	t.Helper()
	logger, _ := zap.NewDevelopment()

	bookingRepo := repository.NewGormBookingRepository(infra.DB)
	propertyRepo := repository.NewGormPropertyRepository(infra.DB)
	producer := kafka.NewProducer(infra.KafkaBrokers, logger)

	blocked := cache.NewRedisBlockedDatesCache(infra.Redis, time.Minute, logger)
	availability := application.NewAvailabilityService(bookingRepo, blocked, logger)
	bookingSvc := application.NewBookingService(
		bookingRepo, propertyRepo, availability,
		bookingDomain.NewNightlyPricingStrategy(),
		application.NewRequestValidator(),
		producer, logger,
	)

	groupID := fmt.Sprintf("test-sweeper-%s", uuid.New().String()[:8])
	sweeper := bookingEvents.NewConflictSweeper(infra.KafkaBrokers, groupID, bookingSvc, logger)

	return &bookingStack{
		Bookings:        bookingSvc,
		Availability:    availability,
		Properties:      propertyRepo,
		Sweeper:         sweeper,
		CleanupProducer: func() { _ = producer.Close() },
	}
}

// seedProperty stores an active listing for hostID.
func seedProperty(t *testing.T, repo propertyDomain.PropertyRepository, hostID uuid.UUID) *propertyDomain.Property {
	t.Helper()
	prop, err := propertyDomain.NewProperty(hostID, propertyDomain.Details{
		Name:        "Integration Loft",
		Description: "Loft used by the integration suite",
		Address: propertyDomain.Address{
			Street: "9 Test Ave", City: "Portland", State: "OR", ZipCode: "97201",
		},
		PricePerNight: decimal.RequireFromString("99.50"),
		MaxGuests:     4,
		NumBedrooms:   2,
		Images:        []string{"https://img.example.com/loft.jpg"},
	})
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), prop))
	return prop
}

// waitForBookingStatus polls the bookings table until the status matches.
func waitForBookingStatus(t *testing.T, db *gorm.DB, bookingID uuid.UUID, expectedStatus string, timeout time.Duration) repository.BookingModel {
	t.Helper()
	var result repository.BookingModel
	require.Eventually(t, func() bool {
		var model repository.BookingModel
		if err := db.Where("id = ?", bookingID).First(&model).Error; err != nil {
			return false
		}
		if model.Status == expectedStatus {
			result = model
			return true
		}
		return false
	}, timeout, 200*time.Millisecond, "booking did not transition to %s", expectedStatus)
	return result
}

// consumeOneEvent reads from a Kafka topic until it finds an event of the expected type about subject.
func consumeOneEvent(t *testing.T, brokers []string, topic, expectedType, subject string, timeout time.Duration) kafka.CloudEvent {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     brokers,
		GroupID:     fmt.Sprintf("test-assert-%s", uuid.New().String()[:8]),
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
		if ce.Type == expectedType && ce.Subject == subject {
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

	configs := make([]kafkago.TopicConfig, len(topics))
	for i, topic := range topics {
		configs[i] = kafkago.TopicConfig{Topic: topic, NumPartitions: 1, ReplicationFactor: 1}
	}
	require.NoError(t, controllerConn.CreateTopics(configs...), "failed to create Kafka topics")

	time.Sleep(time.Second)
}
