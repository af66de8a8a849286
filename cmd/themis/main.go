package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/fortuna/themis/internal/api/rest"
	"github.com/fortuna/themis/internal/api/ws"
	"github.com/fortuna/themis/internal/archive"
	"github.com/fortuna/themis/internal/averages"
	"github.com/fortuna/themis/internal/backend"
	"github.com/fortuna/themis/internal/jobs"
	"github.com/fortuna/themis/internal/league"
	"github.com/fortuna/themis/internal/provider"
	"github.com/fortuna/themis/internal/reconcile"
	"github.com/fortuna/themis/internal/scheduler"
	"github.com/fortuna/themis/internal/store"
)

const serviceName = "themis"

func main() {
	// .env is a development convenience; absence is fine.
	_ = godotenv.Load()

	config := loadConfig()

	logger, err := buildLogger(config.LogLevel)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("starting", zap.String("service", serviceName))

	if config.BackendToken == "" {
		logger.Warn("BACKEND_TOKEN not set, event-store calls will be unauthenticated")
	}

	// Redis backs the job store.
	redisOpt, err := redis.ParseURL(config.RedisURL)
	if err != nil {
		logger.Fatal("parsing REDIS_URL", zap.Error(err))
	}
	redisClient := redis.NewClient(redisOpt)
	defer redisClient.Close()

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		pingCancel()
		logger.Fatal("connecting to redis", zap.Error(err))
	}
	pingCancel()
	logger.Info("connected to redis")

	jobStore := jobs.NewStore(redisClient)

	providerClient := provider.NewClient(provider.Config{
		ScoreboardBase: config.ScoreboardBase,
		BoxscoreBase:   config.BoxscoreBase,
	}, logger.Named("provider"))

	backendClient := backend.NewClient(config.BackendURL, config.BackendToken, 15*time.Second, logger.Named("backend"))

	// Optional S3 archival, plus the averages collector reading it back.
	var archiver reconcile.Archiver
	var avgCollector *averages.Collector
	if config.ArchiveBucket != "" {
		awsCfg, err := awsconfig.LoadDefaultConfig(context.Background())
		if err != nil {
			logger.Fatal("loading AWS config", zap.Error(err))
		}
		s3Archive := archive.NewS3Archive(s3.NewFromConfig(awsCfg), config.ArchiveBucket, logger.Named("archive"))
		archiver = s3Archive
		avgCollector = averages.NewCollector(s3Archive, logger.Named("averages"))
		logger.Info("archival enabled", zap.String("bucket", config.ArchiveBucket))
	}

	// Optional Postgres snapshot archive.
	var snapshotStore reconcile.SnapshotStore
	if config.ArchiveDSN != "" {
		db, err := store.NewDatabase(config.ArchiveDSN)
		if err != nil {
			logger.Fatal("connecting to archive database", zap.Error(err))
		}
		defer db.Close()

		if err := db.EnsureSchema(context.Background()); err != nil {
			logger.Fatal("preparing archive schema", zap.Error(err))
		}
		snapshotStore = store.NewSnapshotRepository(db)
		logger.Info("snapshot archive enabled")
	}

	driver := reconcile.NewDriver(reconcile.DriverConfig{
		Provider:       providerClient,
		Events:         backendClient,
		Leagues:        config.Leagues,
		MatchThreshold: config.MatchThreshold,
		Archive:        archiver,
		Snapshots:      snapshotStore,
		Logger:         logger.Named("reconcile"),
	})

	wsServer := ws.NewServer(logger.Named("ws"))
	go func() {
		if err := wsServer.Start(config.WSPort); err != nil {
			logger.Error("websocket server stopped", zap.Error(err))
		}
	}()

	schedConfig := &scheduler.Config{
		PollInterval:         config.PollInterval,
		MaxConsecutiveErrors: 5,
		ErrorBackoff:         time.Minute,
	}
	sched := scheduler.NewOrchestrator(driver, jobStore, wsServer, schedConfig, logger.Named("scheduler"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if config.PollEnabled {
		go sched.Start(ctx)
	} else {
		logger.Info("polling disabled, passes run on demand only")
	}

	handler := rest.NewHandler(sched, jobStore, avgCollector)
	restServer := rest.NewServer(config.RESTPort, handler, logger.Named("rest"))
	go func() {
		if err := restServer.Start(); err != nil {
			logger.Error("rest server stopped", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutting down")

	cancel()
	sched.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := restServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("rest server shutdown", zap.Error(err))
	}
	if err := wsServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("websocket server shutdown", zap.Error(err))
	}

	logger.Info("stopped")
}

type Config struct {
	RedisURL       string
	BackendURL     string
	BackendToken   string
	ScoreboardBase string
	BoxscoreBase   string
	ArchiveBucket  string
	ArchiveDSN     string
	RESTPort       string
	WSPort         string
	LogLevel       string
	PollEnabled    bool
	PollInterval   time.Duration
	MatchThreshold int
	Leagues        []league.League
}

func loadConfig() Config {
	return Config{
		RedisURL:       getEnv("REDIS_URL", "redis://localhost:6379"),
		BackendURL:     getEnv("BACKEND_URL", "http://localhost:8000"),
		BackendToken:   getEnv("BACKEND_TOKEN", ""),
		ScoreboardBase: getEnv("SCOREBOARD_BASE", provider.DefaultScoreboardBase),
		BoxscoreBase:   getEnv("BOXSCORE_BASE", provider.DefaultBoxscoreBase),
		ArchiveBucket:  getEnv("ARCHIVE_BUCKET", ""),
		ArchiveDSN:     getEnv("ARCHIVE_DSN", ""),
		RESTPort:       getEnv("REST_PORT", "8080"),
		WSPort:         getEnv("WS_PORT", "8081"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		PollEnabled:    getEnv("POLL_ENABLED", "true") == "true",
		PollInterval:   getDurationEnv("POLL_INTERVAL", 3*time.Minute),
		MatchThreshold: getIntEnv("MATCH_THRESHOLD", reconcile.DefaultMatchThreshold),
		Leagues:        loadLeagues(),
	}
}

func loadLeagues() []league.League {
	csv := getEnv("LEAGUES", "")
	if csv == "" {
		return league.All
	}
	if leagues := league.ParseSlugs(csv); len(leagues) > 0 {
		return leagues
	}
	return league.All
}

func buildLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	return cfg.Build()
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
