package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/staynest/service-booking/internal/application"
	"github.com/staynest/service-booking/internal/cache"
	"github.com/staynest/service-booking/internal/config"
	bookingDomain "github.com/staynest/service-booking/internal/domain/booking"
	favoriteDomain "github.com/staynest/service-booking/internal/domain/favorite"
	propertyDomain "github.com/staynest/service-booking/internal/domain/property"
	bookingEvents "github.com/staynest/service-booking/internal/events"
	"github.com/staynest/service-booking/internal/handler"
	"github.com/staynest/service-booking/internal/repository"
	"github.com/staynest/service-booking/pkg/auth"
	"github.com/staynest/service-booking/pkg/database"
	"github.com/staynest/service-booking/pkg/health"
	"github.com/staynest/service-booking/pkg/kafka"
	"github.com/staynest/service-booking/pkg/logger"
	"github.com/staynest/service-booking/pkg/middleware"
)

const serviceName = "service-booking"

type stores struct {
	db         *gorm.DB
	bookings   bookingDomain.BookingRepository
	properties propertyDomain.PropertyRepository
	favorites  favoriteDomain.FavoriteRepository
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewNamed(cfg.AppEnv, serviceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting "+serviceName,
		zap.String("port", cfg.Port),
		zap.String("store", cfg.StoreDriver),
	)

	st, err := openStores(cfg, log)
	if err != nil {
		log.Fatal("failed to open store", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	blockedCache := openCache(ctx, cfg, log)

	jwtManager := auth.NewJWTManager(
		cfg.JWTConfig.Secret,
		15*time.Minute,
		7*24*time.Hour,
	)

	var publisher application.EventPublisher
	if len(cfg.KafkaConfig.Brokers) > 0 {
		producer := kafka.NewProducer(cfg.KafkaConfig.Brokers, log)
		defer func() { _ = producer.Close() }()
		publisher = producer
	} else {
		log.Warn("no kafka brokers configured, booking events are not published")
	}

	validator := application.NewRequestValidator()
	availabilityService := application.NewAvailabilityService(st.bookings, blockedCache, log)
	bookingService := application.NewBookingService(
		st.bookings,
		st.properties,
		availabilityService,
		bookingDomain.NewNightlyPricingStrategy(),
		validator,
		publisher,
		log,
	)
	propertyService := application.NewPropertyService(st.properties, st.bookings, validator, log)
	favoriteService := application.NewFavoriteService(st.favorites, st.properties, log)

	switch {
	case !cfg.AutoDeclineConflicts:
		log.Info("conflict sweeper disabled, hosts decline overlapping requests themselves")
	case len(cfg.KafkaConfig.Brokers) > 0:
		groupID := cfg.KafkaConfig.GroupPrefix + "booking-conflict-sweeper"
		sweeper := bookingEvents.NewConflictSweeper(cfg.KafkaConfig.Brokers, groupID, bookingService, log)
		defer func() { _ = sweeper.Close() }()

		go func() {
			log.Info("starting booking conflict sweeper")
			if err := sweeper.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("conflict sweeper stopped", zap.Error(err))
			}
		}()
	}

	if cfg.AppEnv != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	health.NewHandler(st.db, serviceName).RegisterRoutes(router)

	api := &router.RouterGroup
	handler.NewPropertyHandler(propertyService, bookingService, availabilityService).RegisterRoutes(api, jwtManager)
	handler.NewBookingHandler(bookingService).RegisterRoutes(api, jwtManager)
	handler.NewFavoriteHandler(favoriteService).RegisterRoutes(api, jwtManager)
	handler.NewAdminBookingHandler(bookingService).RegisterRoutes(api, jwtManager)

	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down " + serviceName)
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	log.Info(serviceName + " stopped")
}

// openStores connects the configured storage backend and applies migrations.
func openStores(cfg *config.ServiceConfig, log *zap.Logger) (*stores, error) {
	if cfg.StoreDriver == config.StoreDriverMemory {
		mem := repository.NewMemoryStore()
		log.Warn("using in-memory store, data is lost on restart")
		return &stores{
			bookings:   mem.Bookings(),
			properties: mem.Properties(),
			favorites:  mem.Favorites(),
		}, nil
	}

	dbConfig := database.PostgresConfig{
		Host:     cfg.DBConfig.Host,
		Port:     cfg.DBConfig.Port,
		User:     cfg.DBConfig.User,
		Password: cfg.DBConfig.Password,
		DBName:   cfg.DBConfig.DBName,
		SSLMode:  cfg.DBConfig.SSLMode,
	}
	db, err := database.Connect(dbConfig, log)
	if err != nil {
		return nil, err
	}
	if err := database.RunMigrations(dbConfig.DatabaseURL(), cfg.MigrationsDir, log); err != nil {
		return nil, err
	}

	return &stores{
		db:         db,
		bookings:   repository.NewGormBookingRepository(db),
		properties: repository.NewGormPropertyRepository(db),
		favorites:  repository.NewGormFavoriteRepository(db),
	}, nil
}

// openCache returns the Redis blocked-dates cache, or a no-op cache when Redis is not
// configured or unreachable.
func openCache(ctx context.Context, cfg *config.ServiceConfig, log *zap.Logger) cache.BlockedDatesCache {
	if cfg.RedisConfig.Addr == "" {
		return cache.NopBlockedDatesCache{}
	}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	client, err := cache.NewRedisClient(pingCtx, cfg.RedisConfig.Addr, cfg.RedisConfig.Password, cfg.RedisConfig.DB)
	if err != nil {
		log.Warn("redis unavailable, blocked-dates cache disabled", zap.Error(err))
		return cache.NopBlockedDatesCache{}
	}
	return cache.NewRedisBlockedDatesCache(client, cache.DefaultTTL, log)
}
