package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang-portfolio-analyzer/internal/analyzer/config"
	"golang-portfolio-analyzer/internal/analyzer/delivery/consumer"
	delivery "golang-portfolio-analyzer/internal/analyzer/delivery/http"
	"golang-portfolio-analyzer/internal/analyzer/dto"
	"golang-portfolio-analyzer/internal/analyzer/repository"
	"golang-portfolio-analyzer/internal/analyzer/service"
	"golang-portfolio-analyzer/pkg/common"
	"golang-portfolio-analyzer/pkg/logger"
	"golang-portfolio-analyzer/pkg/postgres"
	pkgredis "golang-portfolio-analyzer/pkg/redis"
	"golang-portfolio-analyzer/pkg/telegram"

	"github.com/labstack/echo/v4"
	goredis "github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
)

var configPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the scoring service",
	Run:   runServe,
}

func runServe(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()

	appLogger.Info("Starting Scoring Service", logger.Field("name", cfg.App.Name))

	// Initialize database
	postgresCfg := postgres.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		DBName:          cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}
	db, err := postgres.NewDB(postgresCfg)
	if err != nil {
		appLogger.Fatal("Failed to initialize database", logger.ErrorField(err))
	}
	if sqlDB, err := db.DB.DB(); err == nil {
		defer sqlDB.Close()
	}

	// Initialize Redis
	redisCfg := pkgredis.Config{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	}
	redisClient, err := pkgredis.NewClient(redisCfg)
	if err != nil {
		appLogger.Fatal("Failed to initialize Redis", logger.ErrorField(err))
	}
	defer redisClient.Close()

	// MKSTREAM creates the stream if it doesn't exist
	if err := redisClient.XGroupCreateMkStream(context.Background(), common.RedisStreamScoreRequest, common.RedisStreamGroup, "0").Err(); err != nil {
		if err.Error() != "BUSYGROUP Consumer Group name already exists" {
			appLogger.Fatal("Failed to create consumer group", logger.ErrorField(err))
		}
	}

	// Initialize repositories
	artifactRepo, err := repository.NewArtifactRepository(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize artifact repository", logger.ErrorField(err))
	}
	yahooFinanceRepo := repository.NewYahooFinanceRepository(cfg, appLogger)
	scoreRecordRepo := repository.NewScoreRecordRepository(db.DB)

	telegramNotifier, err := telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
	if err != nil {
		appLogger.Fatal("Failed to initialize Telegram notifier", logger.ErrorField(err))
	}

	// Initialize services
	technicalSvc := service.NewTechnicalAnalysisService(cfg, appLogger, yahooFinanceRepo, artifactRepo)
	scorerSvc := service.NewScorerService(cfg, appLogger, redisClient.Client, technicalSvc, artifactRepo, scoreRecordRepo, telegramNotifier)
	batchSvc := service.NewBatchScorerService(cfg, appLogger, scorerSvc, artifactRepo, telegramNotifier)

	// Initialize and start the Redis consumer
	redisConsumer := consumer.NewRedisConsumer(cfg, redisClient.Client, scorerSvc, appLogger)
	redisConsumer.Start(ctx)

	// Schedule the daily portfolio sweep
	cronRunner := cron.New()
	if cfg.Analyzer.SchedulerCron != "" {
		_, err := cronRunner.AddFunc(cfg.Analyzer.SchedulerCron, func() {
			enqueuePortfolio(ctx, appLogger, artifactRepo, redisClient.Client, cfg.Analyzer.DefaultProfile)
		})
		if err != nil {
			appLogger.Fatal("Invalid scheduler cron expression", logger.ErrorField(err))
		}
		cronRunner.Start()
		defer cronRunner.Stop()
	}

	// Initialize Echo server
	e := echo.New()
	e.HideBanner = true

	scoreHandler := delivery.NewScoreHandler(artifactRepo, scoreRecordRepo, batchSvc, redisClient.Client, appLogger)
	apiV1 := e.Group("/api/v1")
	scoreHandler.RegisterRoutes(apiV1)

	// Start server
	go func() {
		addr := fmt.Sprintf(":%d", cfg.API.Port)
		appLogger.Info("HTTP server starting", logger.Field("address", addr))
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			appLogger.Error("HTTP server failed to start", logger.ErrorField(err))
			stop() // trigger shutdown
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()

	appLogger.Info("Shutting down scoring service...")
	redisConsumer.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		appLogger.Fatal("Server forced to shutdown", logger.ErrorField(err))
	}

	appLogger.Info("Scoring service stopped")
}

// enqueuePortfolio pushes one score request per holding onto the stream so
// the consumer spreads the sweep out under its own pacing.
func enqueuePortfolio(ctx context.Context, appLogger *logger.Logger,
	artifactRepo repository.ArtifactRepository, redisClient *goredis.Client, profile string) {
	hs, err := artifactRepo.LoadHoldings(ctx)
	if err != nil {
		appLogger.Error("Scheduled sweep skipped, holdings unavailable", logger.ErrorField(err))
		return
	}

	for _, h := range hs {
		payload, err := json.Marshal(dto.StreamDataScoreRequest{
			Symbol:  h.Symbol,
			Broker:  h.Broker,
			Profile: profile,
		})
		if err != nil {
			appLogger.Error("Failed to marshal score request", logger.ErrorField(err), logger.StringField("symbol", h.Symbol))
			continue
		}
		if err := redisClient.XAdd(ctx, &goredis.XAddArgs{
			Stream: common.RedisStreamScoreRequest,
			Values: map[string]interface{}{"payload": string(payload)},
		}).Err(); err != nil {
			appLogger.Error("Failed to enqueue score request", logger.ErrorField(err), logger.StringField("symbol", h.Symbol))
		}
	}
	appLogger.Info("Scheduled sweep enqueued", logger.IntField("holdings", len(hs)))
}

func main() {
	rootCmd := &cobra.Command{Use: "scoring-service"}

	serveCmd.Flags().StringVarP(&configPath, "config", "c", "configs/config-analyzer.yaml", "Path to the configuration file")

	rootCmd.AddCommand(serveCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing scoring-service CLI: %s\n", err)
		os.Exit(1)
	}
}
