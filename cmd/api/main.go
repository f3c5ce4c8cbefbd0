package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"claimflow/internal/analytics"
	"claimflow/internal/auth"
	"claimflow/internal/claims"
	"claimflow/internal/config"
	"claimflow/internal/httpserver"
	"claimflow/internal/insights"
	"claimflow/internal/logger"
	"claimflow/internal/seed"
	"claimflow/internal/store"
	"claimflow/internal/telemetry"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		logger.New("info").Fatalw("config invalid", "error", err)
	}
	lg := logger.New(cfg.LogLevel)
	defer lg.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, "claimflow", telemetry.Config{Endpoint: cfg.OTel.Endpoint, Enabled: cfg.OTel.Enabled})
	if err != nil {
		lg.Fatalw("tracing setup failed", "error", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			lg.Warnw("tracing shutdown failed", "error", err)
		}
	}()

	st, err := openStore(ctx, cfg, lg)
	if err != nil {
		lg.Fatalw("store init failed", "driver", cfg.StoreDriver, "error", err)
	}
	if cfg.SeedDemoData {
		if _, err := seed.Run(ctx, st, lg, time.Now().UTC()); err != nil {
			lg.Fatalw("seed failed", "error", err)
		}
	}

	var gen insights.Generator
	if cfg.Insights.APIKey != "" {
		gen = insights.NewOpenAIGenerator(insights.OpenAIConfig{
			APIKey:      cfg.Insights.APIKey,
			BaseURL:     cfg.Insights.BaseURL,
			Model:       cfg.Insights.Model,
			Temperature: cfg.Insights.Temperature,
			MaxTokens:   cfg.Insights.MaxTokens,
			HTTPClient:  &http.Client{Timeout: 60 * time.Second},
		})
	} else {
		lg.Warnw("GROQ_API_KEY not set, insights disabled")
	}

	an := analytics.NewService(st, st, lg)
	router := httpserver.NewRouter(httpserver.Deps{
		Store:     st,
		Signer:    auth.NewSigner(cfg.JWTSecret, cfg.JWTExpiresIn),
		Claims:    claims.NewService(st, lg),
		Analytics: an,
		Insights:  insights.NewService(an, gen, lg),
	}, lg)

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(sctx)
	}()
	lg.Infow("listening", "port", cfg.HTTPPort, "store", cfg.StoreDriver)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		lg.Fatalw("server failed", "error", err)
	}
}

func openStore(ctx context.Context, cfg *config.Config, lg *zap.SugaredLogger) (store.Store, error) {
	if cfg.StoreDriver == config.DriverMemory {
		return store.NewMemoryStore(), nil
	}
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, err
	}
	gs := store.NewGormStore(db)
	if err := gs.Migrate(ctx); err != nil {
		return nil, err
	}
	lg.Infow("postgres store ready")
	return gs, nil
}
