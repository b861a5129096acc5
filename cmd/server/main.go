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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/novy-stil/service-atelier/internal/application"
	"github.com/novy-stil/service-atelier/internal/cache"
	"github.com/novy-stil/service-atelier/internal/config"
	"github.com/novy-stil/service-atelier/internal/domain/chat"
	atelierEvents "github.com/novy-stil/service-atelier/internal/events"
	"github.com/novy-stil/service-atelier/internal/handler"
	"github.com/novy-stil/service-atelier/internal/integrations/gemini"
	"github.com/novy-stil/service-atelier/internal/metrics"
	"github.com/novy-stil/service-atelier/internal/repository"
	"github.com/novy-stil/service-atelier/internal/storage"
	"github.com/novy-stil/service-atelier/pkg/auth"
	"github.com/novy-stil/service-atelier/pkg/database"
	"github.com/novy-stil/service-atelier/pkg/health"
	"github.com/novy-stil/service-atelier/pkg/kafka"
	"github.com/novy-stil/service-atelier/pkg/logger"
	"github.com/novy-stil/service-atelier/pkg/middleware"
)

const (
	serviceName    = "service-atelier"
	serviceVersion = "1.0.0"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewNamed(cfg.AppEnv, serviceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting "+serviceName,
		zap.String("port", cfg.Port),
		zap.String("env", cfg.AppEnv),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect to database
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
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	// Run database migrations. The foreign key actions live in SQL, so every
	// environment uses the migration files.
	if err := database.RunMigrations(dbConfig.DatabaseURL(), cfg.MigrationsDir, log); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(
		cfg.JWTConfig.Secret,
		time.Duration(cfg.JWTConfig.AccessTTL)*time.Minute,
	)

	// Initialize metrics
	var m *metrics.Metrics
	registry := prometheus.NewRegistry()
	if cfg.MetricsEnabled {
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		m = metrics.New(registry)
	}

	// Initialize event publisher
	var publisher application.EventPublisher = atelierEvents.NewNopPublisher(log)
	if cfg.KafkaConfig.Enabled {
		kafkaProducer := kafka.NewProducer(cfg.KafkaConfig.Brokers, log)
		defer func() { _ = kafkaProducer.Close() }()
		publisher = atelierEvents.NewKafkaPublisher(kafkaProducer, log)
	}

	// Initialize image storage
	images, localDir, err := newImageStore(cfg.Storage, log)
	if err != nil {
		log.Fatal("failed to initialize image storage", zap.Error(err))
	}

	// Initialize repositories
	userRepo := repository.NewGormUserRepository(db)
	profileRepo := repository.NewGormProfileRepository(db)
	costumeRepo := repository.NewGormCostumeRepository(db)
	orderRepo := repository.NewGormOrderRepository(db)
	reservationRepo := repository.NewGormReservationRepository(db)
	calendarRepo := repository.NewGormCalendarRepository(db)

	// Initialize application services
	authService := application.NewAuthService(userRepo, jwtManager, log)
	profileService := application.NewProfileService(userRepo, profileRepo, images, log)
	costumeService := application.NewCostumeService(costumeRepo, images, log)
	bookingService := application.NewBookingService(
		costumeRepo,
		orderRepo,
		reservationRepo,
		calendarRepo,
		database.NewTxRunner(db),
		publisher,
		m,
		log,
	)

	// Bootstrap the administrator account
	if cfg.Superuser.Email != "" {
		if _, err := authService.EnsureSuperuser(ctx, cfg.Superuser.Email, cfg.Superuser.Password, cfg.Superuser.ForcePassword); err != nil {
			log.Fatal("failed to bootstrap superuser", zap.Error(err))
		}
	}

	healthHandler := health.NewHandler(db, serviceName)

	// Initialize chat assistant
	kb, err := chat.LoadKnowledgeBase(cfg.Chat.KnowledgeBasePath)
	if err != nil {
		log.Fatal("failed to load chat knowledge base", zap.Error(err))
	}
	var answerCache application.AnswerCache
	if cfg.Chat.CacheEnabled {
		redisClient := cache.NewRedisClient(cfg.RedisConfig.Addr, cfg.RedisConfig.Password, cfg.RedisConfig.DB)
		defer func() { _ = redisClient.Close() }()
		redisCache := cache.NewRedisAnswerCache(redisClient, cfg.Chat.AnswerTTL)
		healthHandler.WithChecker("redis", redisCache)
		answerCache = redisCache
	}
	var llm application.TextGenerator
	if cfg.Gemini.APIKey != "" {
		geminiClient, err := gemini.NewClient(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
		if err != nil {
			log.Error("gemini disabled, client init failed", zap.Error(err))
		} else {
			defer func() { _ = geminiClient.Close() }()
			llm = geminiClient
		}
	}
	chatService := application.NewChatService(kb, answerCache, llm, m, log)

	// Initialize and start workshop event consumer in a goroutine
	if cfg.KafkaConfig.Enabled {
		groupID := cfg.KafkaConfig.GroupPrefix + serviceName
		workshopConsumer := atelierEvents.NewWorkshopEventConsumer(
			cfg.KafkaConfig.Brokers,
			groupID,
			bookingService,
			log,
		)
		defer func() { _ = workshopConsumer.Close() }()

		go func() {
			log.Info("starting workshop event consumer")
			if err := workshopConsumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("workshop event consumer error", zap.Error(err))
			}
		}()
	}

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	// Apply global middleware
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())
	if m != nil {
		router.Use(middleware.MetricsMiddleware(m.HTTPDuration))
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	}

	// Register health check routes
	healthHandler.RegisterRoutes(router)
	handler.RegisterRootRoute(router, serviceName, serviceVersion)
	if localDir != "" {
		router.Static(cfg.Storage.PublicPrefix, localDir)
	}

	// Register routes
	authMW := middleware.AuthMiddleware(jwtManager, authService)
	adminMW := middleware.RequireAdmin()
	chatLimiter := middleware.NewRateLimiter(cfg.Chat.RequestsPerMinute, cfg.Chat.Burst, log)
	api := &router.RouterGroup

	handler.NewAuthHandler(authService).RegisterRoutes(api, authMW)
	handler.NewProfileHandler(profileService).RegisterRoutes(api, authMW)
	handler.NewCostumeHandler(costumeService).RegisterRoutes(api, authMW, adminMW)
	handler.NewBookingHandler(bookingService).RegisterRoutes(api, authMW)
	handler.NewAdminHandler(bookingService).RegisterRoutes(api, authMW, adminMW)
	handler.NewChatHandler(chatService, log).RegisterRoutes(api, authMW, chatLimiter.Middleware())

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down " + serviceName + "...")

	// Cancel the consumer context
	cancel()

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	log.Info(serviceName + " stopped")
}

// newImageStore builds the configured image backend. For the local driver it
// also returns the directory to serve statically.
func newImageStore(cfg config.StorageConfig, log *zap.Logger) (storage.ImageStore, string, error) {
	switch cfg.Driver {
	case "cloudinary":
		store, err := storage.NewCloudinaryStore(cfg.CloudName, cfg.CloudAPIKey, cfg.CloudSecret, cfg.CloudFolder, log)
		if err != nil {
			return nil, "", err
		}
		return store, "", nil
	case "local", "":
		store, err := storage.NewLocalStore(cfg.UploadDir, cfg.PublicPrefix)
		if err != nil {
			return nil, "", err
		}
		return store, store.Dir(), nil
	default:
		return nil, "", fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
