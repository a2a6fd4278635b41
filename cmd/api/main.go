package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/reelspay/reelspay-backend/internal/config"
	"github.com/reelspay/reelspay-backend/internal/db"
	"github.com/reelspay/reelspay-backend/internal/logging"
	"github.com/reelspay/reelspay-backend/internal/media"
	appmw "github.com/reelspay/reelspay-backend/internal/middleware"
	"github.com/reelspay/reelspay-backend/internal/ratelimit"
	"github.com/reelspay/reelspay-backend/internal/revenue"
	"github.com/reelspay/reelspay-backend/internal/server"
	"github.com/reelspay/reelspay-backend/internal/service"
)

// Set with -ldflags at build time.
var (
	gitSHA    = "dev"
	buildTime = ""
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger, closer := logging.Setup(logging.Options{Service: "reelspay-api", Env: cfg.AppEnv, File: cfg.LogFile})
	defer closer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := db.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	if err := db.Migrate(conn); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	split, err := revenue.Load(cfg.RevenueSplitFile)
	if err != nil {
		return err
	}

	var window service.WindowReserver
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("parse REDIS_URL: %w", err)
		}
		rdb := redis.NewClient(opts)
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unavailable at startup; views fall back to the database throttle", "err", err)
		}
		window = ratelimit.NewRedisWindow(rdb, cfg.ViewRateLimit, cfg.ViewRateWindow)
	}

	host, err := media.NewGCSHost(ctx, cfg.MediaBucket, cfg.MediaCredentialsFile, cfg.MediaPublicBaseURL, cfg.MediaTimeout)
	if err != nil {
		return fmt.Errorf("init media host: %w", err)
	}
	defer host.Close()

	authMw, err := appmw.NewAuthMiddleware(ctx, cfg.FirebaseProjectID, cfg.AuthTimeout)
	if err != nil {
		return fmt.Errorf("init firebase auth: %w", err)
	}

	srv := server.New(server.Deps{
		DB:        conn,
		Config:    cfg,
		Auth:      authMw,
		Media:     host,
		Window:    window,
		Split:     split,
		Logger:    logger,
		SHA:       gitSHA,
		BuildTime: buildTime,
	})

	addr := ":" + cfg.Port
	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", "addr", addr, "git_sha", gitSHA)
		errCh <- srv.Start(addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
