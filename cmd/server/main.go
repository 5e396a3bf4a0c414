// Command catalog-server starts the product catalog HTTP API.
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

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/and161185/goph-catalog/internal/config"
	"github.com/and161185/goph-catalog/internal/limiter"
	"github.com/and161185/goph-catalog/internal/migrate"
	"github.com/and161185/goph-catalog/internal/model"
	"github.com/and161185/goph-catalog/internal/repository"
	"github.com/and161185/goph-catalog/internal/repository/jsonfile"
	"github.com/and161185/goph-catalog/internal/repository/postgres"
	httpserver "github.com/and161185/goph-catalog/internal/server/http"
	"github.com/and161185/goph-catalog/internal/service"
	"github.com/and161185/goph-catalog/internal/token"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

// backend bundles the collections and limiter chosen by --storage.
type backend struct {
	users    repository.Collection[model.User]
	products repository.ProductRepository
	lim      limiter.Limiter
	close    func()
}

// main loads configuration, opens storage, and serves HTTP until SIGINT/SIGTERM.
func main() {
	cfg, err := config.Load(os.Args[1:], os.Getenv)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logger, _ := zap.NewProduction()
	if cfg.Dev {
		logger, _ = zap.NewDevelopment()
	}
	defer func() { _ = logger.Sync() }()
	logger.Info("starting",
		zap.String("version", version),
		zap.String("buildDate", buildDate),
		zap.String("addr", cfg.Addr),
		zap.String("storage", cfg.Storage),
	)

	// Context with OS signals
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	be, err := openBackend(ctx, cfg)
	if err != nil {
		logger.Fatal("open storage", zap.Error(err))
	}
	defer be.close()

	// Services
	tokens := token.NewManager([]byte(cfg.JWTKey), cfg.TokenTTL)
	authSvc := service.NewAuthService(repository.NewUserRepo(be.users), tokens, be.lim, cfg.BcryptCost)
	var opts []service.ProductOption
	if cfg.ValidateProducts {
		opts = append(opts, service.WithValidator(service.NonNegative))
	}
	productSvc := service.NewProductService(be.products, opts...)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpserver.New(authSvc, productSvc, tokens, logger, httpserver.WithTrustProxy(cfg.TrustProxy)).Routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", cfg.Addr))
		errCh <- srv.ListenAndServe()
	}()

	// Wait for stop
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("forced shutdown", zap.Error(err))
			_ = srv.Close()
		}
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", zap.Error(err))
			be.close()
			os.Exit(1)
		}
	}

	logger.Info("shutdown complete")
}

func openBackend(ctx context.Context, cfg *config.Config) (*backend, error) {
	policy := limiter.Policy{Window: cfg.LoginWindow, MaxFails: cfg.LoginMaxFails, BlockFor: cfg.LoginBlockFor}

	switch cfg.Storage {
	case config.StoragePostgres:
		if err := migrate.Up(ctx, cfg.DSN); err != nil {
			return nil, fmt.Errorf("migrate up: %w", err)
		}
		db, err := postgres.New(ctx, cfg.DSN)
		if err != nil {
			return nil, err
		}
		st := postgres.NewStore(db)
		return &backend{
			users:    st.Users(),
			products: st.Products(),
			lim:      limiter.NewPG(db.Pool, policy),
			close:    db.Close,
		}, nil
	default:
		st, err := jsonfile.Open(cfg.DataDir)
		if err != nil {
			return nil, err
		}
		return &backend{
			users:    st.Users(),
			products: st.Products(),
			lim:      limiter.NewMemory(policy),
			close:    func() {},
		}, nil
	}
}
