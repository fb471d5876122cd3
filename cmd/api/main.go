package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"go.uber.org/zap"

	"task-management/configs"
	"task-management/internal/api/panel"
	v1 "task-management/internal/api/v1"
	"task-management/internal/auth"
	"task-management/internal/cache"
	"task-management/internal/config"
	"task-management/internal/middleware"
	"task-management/internal/repository"
	"task-management/internal/service"
	"task-management/pkg/crypto"
	"task-management/pkg/database"
	"task-management/pkg/logger"
)

func main() {
	// Load config
	cfg := configs.LoadConfig()

	// Inisialisasi logger
	logger.InitLoggers(cfg.LogDir)
	defer logger.SyncLoggers()
	logger.SystemLogger.Info("Starting application", zap.String("time", time.Now().Format(time.RFC3339)))

	if err := run(cfg); err != nil {
		logger.ErrorLogger.Error("Application stopped", zap.Error(err))
		logger.SyncLoggers()
		os.Exit(1)
	}
}

func run(cfg configs.Config) error {
	ctx := context.Background()

	// Inisialisasi database
	db, err := database.ConnectDB(ctx, cfg, cfg.DBName)
	if err != nil {
		return err
	}
	defer db.Close()
	logger.SystemLogger.Info("Database Connected")

	// Buat tabel jika belum ada
	if err := repository.CreateTableIfNotExists(ctx, db); err != nil {
		return err
	}

	// Inisialisasi Redis
	rdb, err := database.ConnectRedis(ctx, fmt.Sprintf("%s:%d", cfg.RedisHost, cfg.RedisPort), cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return err
	}
	defer rdb.Close()
	logger.SystemLogger.Info("Redis Connected")

	cipher, err := crypto.NewCipher(cfg.ReportEncryptionKey)
	if err != nil {
		return fmt.Errorf("init report cipher: %w", err)
	}

	accounts := repository.NewAccountStore(db)
	tasks := repository.NewTaskStore(db, cipher)
	config.Accounts = service.NewAccountService(accounts, tasks, cache.NewAccountCache(rdb, cfg.AccountCacheTTL))
	config.Tasks = service.NewTaskService(tasks, accounts)
	config.Tokens = auth.NewTokenService(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL, cache.NewDenylist(rdb))

	app := NewApp(cfg)

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-stop
		logger.SystemLogger.Info("Shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logger.ErrorLogger.Error("Shutdown failed", zap.Error(err))
		}
	}()

	addr := fmt.Sprintf(":%d", cfg.HTTPPort)
	logger.SystemLogger.Info("Application ready", zap.String("addr", addr))
	return app.Listen(addr)
}

// NewApp builds the Fiber app with middleware and every route registered.
func NewApp(cfg configs.Config) *fiber.App {
	app := fiber.New(fiber.Config{AppName: "task-management"})

	// Middleware
	app.Use(middleware.ErrorHandler())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(limiter.New(limiter.Config{
		Max:        cfg.RateLimitMax,
		Expiration: cfg.RateLimitWindow,
	}))

	v1.RegisterRoutes(app)
	panel.RegisterRoutes(app)
	return app
}
