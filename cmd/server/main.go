package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Skotchmaster/favcart/internal/cache"
	"github.com/Skotchmaster/favcart/internal/config"
	"github.com/Skotchmaster/favcart/internal/db"
	"github.com/Skotchmaster/favcart/internal/httpserver"
	"github.com/Skotchmaster/favcart/internal/imagestore"
	"github.com/Skotchmaster/favcart/internal/logging"
	"github.com/Skotchmaster/favcart/internal/middleware/csrf"
	"github.com/Skotchmaster/favcart/internal/mykafka"
	"github.com/Skotchmaster/favcart/internal/repo"
	"github.com/Skotchmaster/favcart/internal/service"
	"github.com/Skotchmaster/favcart/internal/tokens"
)

func main() {
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("config_invalid", "error", err)
		os.Exit(1)
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("server_failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gdb, err := db.Open(ctx, cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(gdb); err != nil {
			logger.Warn("db_close_error", "error", err)
		}
	}()
	if err := db.Migrate(gdb); err != nil {
		return err
	}

	var productCache cache.ProductCache = cache.Nop{}
	if cfg.RedisAddr != "" {
		rdb := cache.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		defer rdb.Close()
		rc := cache.NewRedis(rdb, cfg.CacheTTL)
		if err := rc.Ping(ctx); err != nil {
			logger.Warn("redis_unavailable", "addr", cfg.RedisAddr, "error", err)
		}
		productCache = rc
	}

	uploader, closeUploader, err := newUploader(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeUploader()
	images := imagestore.New(uploader)

	var producer mykafka.Publisher = mykafka.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		p := mykafka.NewProducer(cfg.KafkaBrokers)
		defer func() {
			if err := p.Close(); err != nil {
				logger.Warn("kafka_close_error", "error", err)
			}
		}()
		producer = p
	}

	r := &repo.GormRepo{DB: gdb}
	iss := tokens.NewIssuer(cfg.JWTAccessSecret, cfg.JWTRefreshSecret, cfg.AccessTTL, cfg.RefreshTTL)
	authSvc := &service.AuthService{Repo: r, Tokens: iss, Images: images, Products: productCache}

	deps := &httpserver.Deps{
		DB: gdb,
		Auth: &httpserver.AuthHTTP{
			Svc:          authSvc,
			Favorites:    &service.FavoritesService{Repo: r},
			Producer:     producer,
			CookieSecure: cfg.CookieSecure,
		},
		Catalog: &httpserver.CatalogHTTP{
			Svc:      &service.CatalogService{Repo: r, Cache: productCache, Images: images},
			Producer: producer,
		},
		Cart: &httpserver.CartHTTP{
			Svc:      &service.CartService{Repo: r},
			Producer: producer,
		},
		RequireAuth: httpserver.NewRequireAuth(cfg.JWTAccessSecret, authSvc, cfg.CookieSecure),
	}
	if cfg.CSRFEnabled {
		csrfCfg := csrf.DefaultConfig()
		csrfCfg.Secure = cfg.CookieSecure
		csrfCfg.SkipPaths = httpserver.CSRFSkipPaths()
		deps.CSRF = &csrfCfg
	}

	e := httpserver.NewEcho(logger, httpserver.Options{CORSOrigins: cfg.CORSOrigins})
	httpserver.Register(e, deps)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           e,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server_started", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting_down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("server_shutdown_error", "error", err)
	}
	logger.Info("shutdown_complete")
	return nil
}

// newUploader picks the image backend. An empty backend keeps data URLs inline.
func newUploader(ctx context.Context, cfg config.Config) (imagestore.Uploader, func(), error) {
	noop := func() {}
	switch cfg.ImageBackend {
	case "s3":
		up, err := imagestore.NewS3Uploader(ctx, imagestore.S3Config{
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			PublicURL: cfg.S3PublicURL,
		})
		if err != nil {
			return nil, noop, err
		}
		return up, noop, nil
	case "gcs":
		up, err := imagestore.NewGCSUploader(ctx, cfg.GCSBucket, cfg.GCSCredentialsFile)
		if err != nil {
			return nil, noop, err
		}
		return up, func() { _ = up.Close() }, nil
	default:
		return nil, noop, nil
	}
}
