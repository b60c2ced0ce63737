package main

import (
	"Mnemo/internal/api"
	"Mnemo/internal/config"
	"Mnemo/internal/database/kafka"
	"Mnemo/internal/database/mongo"
	"Mnemo/internal/database/mysql"
	"Mnemo/internal/database/neo4j"
	"Mnemo/internal/database/redis"
	"Mnemo/internal/memory/consumer"
	"Mnemo/internal/memory/dedup"
	"Mnemo/internal/memory/service"
	"Mnemo/internal/memory/store"
	"Mnemo/internal/models"
	"Mnemo/internal/profile"
	mnhttp "Mnemo/pkg/http"
	"Mnemo/pkg/logger"
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	goredis "github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

const (
	defaultProfileCacheSize = 1024
	defaultProfileCacheTTL  = 5 * time.Minute
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig("config.yaml")
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	// Initialize logger
	level, err := logrus.ParseLevel(cfg.Logger.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.Init(level)
	appLogger := logger.New("memory_service", "", "")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	graphTimeout := service.DefaultGraphTimeout
	if cfg.Memory.GraphTimeout != "" {
		d, err := time.ParseDuration(cfg.Memory.GraphTimeout)
		if err != nil {
			appLogger.Fatal("invalid memory.graphTimeout: " + err.Error())
		}
		graphTimeout = d
	}

	// Authoritative local fact store
	var localStore store.LocalStore
	switch cfg.Memory.LocalBackend {
	case "memory":
		localStore = store.NewMemoryStore()
		appLogger.Warn("using in-process local store; facts will not survive a restart")
	default:
		db, err := mongo.GetDatabase(&cfg.Databases.MongoDB)
		if err != nil {
			appLogger.WithError(models.ErrorInfo{Message: err.Error()}).Fatal("failed to connect to MongoDB")
		}
		defer mongo.Close(context.Background())

		mongoStore := store.NewMongoStore(db, cfg.Databases.MongoDB.Collection)
		if err := mongoStore.EnsureIndexes(ctx); err != nil {
			appLogger.WithError(models.ErrorInfo{Message: err.Error()}).Fatal("failed to ensure MongoDB indexes")
		}
		localStore = mongoStore
		appLogger.Info("connected to MongoDB local store")
	}

	// Graph index backend
	var graphStore store.GraphIndex
	switch cfg.Memory.GraphBackend {
	case "neo4j":
		neo4jClient, err := neo4j.GetClient(ctx, &cfg.Databases.Neo4j)
		if err != nil {
			appLogger.WithError(models.ErrorInfo{Message: err.Error()}).Fatal("failed to connect to Neo4j")
		}
		defer neo4jClient.Close(context.Background())
		graphStore = store.NewNeo4jGraphStore(neo4jClient)
		appLogger.Info("using Neo4j graph backend")
	default:
		httpClient, err := mnhttp.NewClient(cfg.Middleware.CircuitBreaker, graphTimeout)
		if err != nil {
			appLogger.WithError(models.ErrorInfo{Message: err.Error()}).Fatal("failed to create graph HTTP client")
		}
		graphStore = store.NewHTTPGraphStore(cfg.Graph, httpClient)
		appLogger.Info("using HTTP graph backend at " + cfg.Graph.BaseURL)
	}

	// Cognitive state provider: MySQL profiles behind an LRU and optional
	// Redis cache. Without a configured MySQL every user gets full trust.
	var profiles profile.Provider
	if cfg.Databases.MySQL.Address == "" {
		profiles = profile.Static(models.DefaultCognitiveState)
		appLogger.Warn("no MySQL configured; cognitive state fixed at default")
	} else {
		gormDB, err := mysql.GetDB(&cfg.Databases.MySQL)
		if err != nil {
			appLogger.WithError(models.ErrorInfo{Message: err.Error()}).Fatal("failed to connect to MySQL")
		}
		defer mysql.Close()

		gormProvider, err := profile.NewGormProvider(gormDB)
		if err != nil {
			appLogger.WithError(models.ErrorInfo{Message: err.Error()}).Fatal("failed to initialize profile provider")
		}

		var redisClient *goredis.Client
		if cfg.Databases.Redis.Address != "" {
			redisClient, err = redis.GetClient(&cfg.Databases.Redis)
			if err != nil {
				appLogger.WithError(models.ErrorInfo{Message: err.Error()}).Fatal("failed to connect to Redis")
			}
			defer redis.Close()
		}

		cacheSize := cfg.Profile.CacheSize
		if cacheSize <= 0 {
			cacheSize = defaultProfileCacheSize
		}
		cacheTTL := defaultProfileCacheTTL
		if cfg.Profile.CacheTTL != "" {
			d, err := time.ParseDuration(cfg.Profile.CacheTTL)
			if err != nil {
				appLogger.Fatal("invalid profile.cacheTTL: " + err.Error())
			}
			cacheTTL = d
		}

		profiles, err = profile.NewCachedProvider(gormProvider, redisClient, cacheSize, cacheTTL)
		if err != nil {
			appLogger.WithError(models.ErrorInfo{Message: err.Error()}).Fatal("failed to initialize profile cache")
		}
	}

	// Assemble the write pipeline
	detector := dedup.NewDetector(cfg.Memory.SimilarityThreshold).
		WithCombinedMinLength(cfg.Memory.CombinedMinLength)
	memoryService := service.NewMemoryService(localStore, graphStore, profiles, appLogger,
		service.WithDetector(detector),
		service.WithGraphTimeout(graphTimeout),
	)

	// Fact batch intake from Kafka
	var kafkaClient *kafka.KafkaClient
	if len(cfg.Databases.Kafka.Brokers) > 0 {
		kafkaClient, err = kafka.GetClient(&cfg.Databases.Kafka)
		if err != nil {
			appLogger.WithError(models.ErrorInfo{Message: err.Error()}).Fatal("failed to connect to Kafka")
		}

		kafkaConsumer := consumer.NewKafkaConsumer(kafkaClient, memoryService, appLogger)
		kafkaConsumer.Start(ctx)
		appLogger.Info("fact batch consumer started on topic " + cfg.Databases.Kafka.Topic)
	}

	// Setup HTTP server
	gin.SetMode(gin.ReleaseMode)
	router := gin.Default()
	api.RegisterRoutes(router, api.NewAPI(memoryService, appLogger), cfg.Middleware)

	srv := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: router,
	}

	go func() {
		appLogger.Info("starting HTTP server on " + srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.WithError(models.ErrorInfo{Message: err.Error()}).Fatal("HTTP server failed to start")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.WithError(models.ErrorInfo{Message: err.Error()}).Error("server forced to shutdown")
	}

	cancel()
	if kafkaClient != nil {
		if err := kafkaClient.Close(); err != nil {
			appLogger.WithError(models.ErrorInfo{Message: err.Error()}).Error("error closing Kafka client")
		}
	}

	appLogger.Info("memory service stopped")
}
