// cmd/server/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/mohittaneja156/AI-Powered-Trust-Safety-System/internal/config"
	"github.com/mohittaneja156/AI-Powered-Trust-Safety-System/internal/handler"
	"github.com/mohittaneja156/AI-Powered-Trust-Safety-System/internal/inference"
	"github.com/mohittaneja156/AI-Powered-Trust-Safety-System/internal/repository"
	"github.com/mohittaneja156/AI-Powered-Trust-Safety-System/internal/service"
	"github.com/mohittaneja156/AI-Powered-Trust-Safety-System/pkg/database"
	"github.com/mohittaneja156/AI-Powered-Trust-Safety-System/pkg/logger"
	"github.com/mohittaneja156/AI-Powered-Trust-Safety-System/pkg/middleware"
	"github.com/mohittaneja156/AI-Powered-Trust-Safety-System/pkg/redis"
)

const serviceName = "trust-safety"

func main() {
	cfg := config.Load()

	log := logger.MustNew(logger.Options{
		Service:    serviceName,
		Production: cfg.IsProduction(),
		Level:      cfg.LogLevel,
	})
	defer log.Sync()

	ctx := context.Background()

	// Initialize storage
	stores, cleanup, err := openStores(ctx, cfg, log)
	if err != nil {
		log.Fatal("failed to initialize storage", zap.Error(err))
	}
	defer cleanup()

	// Initialize services
	var classifier inference.Classifier = inference.NewLinearModel()
	if cfg.InferenceURL != "" {
		classifier = inference.NewHTTPClient(cfg.InferenceURL, cfg.InferenceTimeout, log)
		log.Info("using remote inference", zap.String("url", cfg.InferenceURL))
	} else {
		log.Info("no inference endpoint configured, using local text model")
	}
	gateway := service.NewModelGateway(classifier, log)

	var alerts service.Alerter = service.NewAlertPublisher(serviceName, cfg.AlertWebhookURL, log)
	registry := service.NewFlagRegistry(stores.flags, alerts, log)

	narrativeCache := service.NewNarrativeCache(stores.kv, cfg.NarrativeTTL, log)
	defer narrativeCache.Close()
	if narrator := newNarrator(cfg, narrativeCache, log); narrator != nil {
		registry.WithNarrator(narrator)
	}

	if cfg.FlagFixtures != "" {
		src, err := repository.LoadFlagFixtures(cfg.FlagFixtures)
		if err != nil {
			log.Fatal("failed to load flag fixtures", zap.Error(err))
		}
		n, err := registry.Seed(ctx, src)
		if err != nil {
			log.Fatal("failed to seed flags", zap.Error(err))
		}
		log.Info("seeded flags", zap.Int("count", n), zap.String("path", cfg.FlagFixtures))
	}

	var reviews repository.ReviewSource
	if cfg.ReviewFixtures != "" {
		src, err := repository.LoadReviewFixtures(cfg.ReviewFixtures)
		if err != nil {
			log.Fatal("failed to load review fixtures", zap.Error(err))
		}
		reviews = src
	}

	triage := service.NewTriageController(registry, log)

	// Initialize handlers
	analysisHandler := handler.NewAnalysisHandler(
		service.NewReviewAnalyzer(gateway, registry, reviews, log),
		service.NewStepMonitor(gateway, stores.monitoring, log),
		service.NewListingAnalyzer(gateway, registry, log),
		service.NewVerificationScanner(gateway, registry, log),
		log,
	)
	flagHandler := handler.NewFlagHandler(registry, triage, log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := setupRouter(analysisHandler, flagHandler, stores.ready, log)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	go func() {
		log.Info("starting trust & safety service",
			zap.String("port", cfg.Port),
			zap.String("store", cfg.StoreBackend),
			zap.String("narrative", cfg.NarrativeMode))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	log.Info("server exited")
}

type stores struct {
	flags      repository.FlagStore
	monitoring repository.MonitoringStore
	kv         service.KV
	ready      func(context.Context) error
}

// openStores picks the flag store by STORE_BACKEND and layers redis on top
// for sessions and narratives when REDIS_URL is set.
func openStores(ctx context.Context, cfg config.Config, log *zap.Logger) (*stores, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	s := &stores{ready: func(context.Context) error { return nil }}

	switch cfg.StoreBackend {
	case config.StorePostgres:
		db, err := database.NewPostgresDB(cfg.DatabaseURL)
		if err != nil {
			return nil, cleanup, err
		}
		closers = append(closers, func() { db.Close() })
		if err := db.Migrate(); err != nil {
			cleanup()
			return nil, func() {}, err
		}
		s.flags = repository.NewPostgresFlagStore(db.DB)
		s.monitoring = repository.NewMemoryMonitoringStore()
		s.ready = db.PingContext

	case config.StoreMongo:
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			return nil, cleanup, fmt.Errorf("connect mongo: %w", err)
		}
		closers = append(closers, func() {
			disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Disconnect(disconnectCtx)
		})
		store := repository.NewMongoFlagStore(client, cfg.MongoDB)
		if err := store.EnsureIndexes(connectCtx); err != nil {
			cleanup()
			return nil, func() {}, fmt.Errorf("ensure mongo indexes: %w", err)
		}
		s.flags = store
		s.monitoring = store.MonitoringStore()
		s.ready = func(ctx context.Context) error { return client.Ping(ctx, nil) }

	case config.StoreMemory, "":
		s.flags = repository.NewMemoryFlagStore()
		s.monitoring = repository.NewMemoryMonitoringStore()

	default:
		return nil, cleanup, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}

	if cfg.RedisURL != "" {
		rdb, err := redis.NewRedisClient(cfg.RedisURL)
		if err != nil {
			cleanup()
			return nil, func() {}, fmt.Errorf("redis: %w", err)
		}
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := rdb.Ping(pingCtx); err != nil {
			log.Warn("redis unavailable, keeping sessions and narratives in memory", zap.Error(err))
			_ = rdb.Close()
		} else {
			closers = append(closers, func() { rdb.Close() })
			s.monitoring = repository.NewRedisMonitoringStore(rdb, 24*time.Hour)
			s.kv = rdb
		}
	}
	return s, cleanup, nil
}

func newNarrator(cfg config.Config, cache *service.NarrativeCache, log *zap.Logger) *service.Narrator {
	switch cfg.NarrativeMode {
	case config.NarrativeOff:
		return nil
	case config.NarrativeLLM:
		if cfg.NarrativeAPIKey == "" {
			log.Warn("NARRATIVE_MODE=llm without NARRATIVE_API_KEY, falling back to template narratives")
			return service.NewNarrator(service.TemplateNarrative{}, cache, log)
		}
		var modelNames []string
		for _, m := range strings.Split(cfg.NarrativeModel, ",") {
			if m = strings.TrimSpace(m); m != "" {
				modelNames = append(modelNames, m)
			}
		}
		llm := service.NewLLMNarrative(cfg.NarrativeURL, cfg.NarrativeAPIKey, modelNames, 30*time.Second, log)
		return service.NewNarrator(llm, cache, log)
	default:
		return service.NewNarrator(service.TemplateNarrative{}, cache, log)
	}
}

func setupRouter(analysis *handler.AnalysisHandler, flags *handler.FlagHandler, ready func(context.Context) error, log *zap.Logger) *gin.Engine {
	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))
	router.Use(middleware.Recovery(log))
	router.Use(middleware.CORS())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	router.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := ready(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	handler.RegisterRoutes(router.Group("/api/v1"), analysis, flags)

	return router
}
