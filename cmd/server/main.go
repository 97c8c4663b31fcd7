package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"invoicedesk/backend/internal/auth"
	"invoicedesk/backend/internal/cache"
	"invoicedesk/backend/internal/config"
	"invoicedesk/backend/internal/documents"
	"invoicedesk/backend/internal/httpapi"
	"invoicedesk/backend/internal/logging"
	"invoicedesk/backend/internal/metrics"
	"invoicedesk/backend/internal/service"
	"invoicedesk/backend/internal/stats"
	"invoicedesk/backend/internal/store"
	fsstore "invoicedesk/backend/internal/store/firestore"
	"invoicedesk/backend/internal/store/memory"
	pgstore "invoicedesk/backend/internal/store/postgres"
)

func main() {
	cfg := config.Load()

	logger, err := logging.New(cfg.LogLevel, cfg.AppStage)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := validateSecurityConfig(cfg); err != nil {
		logger.Fatal("invalid security configuration", zap.Error(err))
	}
	loc, err := cfg.Location()
	if err != nil {
		logger.Fatal("invalid timezone", zap.Error(err))
	}
	company, err := config.LoadCompany(cfg.CompanyProfile)
	if err != nil {
		logger.Fatal("invalid company profile", zap.Error(err))
	}

	metrics.Init()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	docs, closers, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("document store unavailable", zap.String("backend", cfg.StoreBackend), zap.Error(err))
	}
	statsCache, closeCache := openCache(ctx, cfg, logger)
	if closeCache != nil {
		closers = append(closers, closeCache)
	}

	aggregator := stats.NewAggregator(docs, stats.WithLocation(loc))
	svc := service.New(aggregator, statsCache, logging.Component(logger, "stats"),
		service.WithStaleAfter(cfg.StaleAfter()),
	)
	docService := documents.New(docs, company, cfg.TaxPercent,
		documents.WithLocation(loc),
		documents.WithLogger(logging.Component(logger, "documents")),
	)
	authManager, err := auth.NewManager(cfg.AuthSecret, cfg.SessionTTL(), cfg.AdminUser, cfg.AdminPass)
	if err != nil {
		logger.Fatal("auth setup failed", zap.Error(err))
	}

	var warmer *service.Warmer
	if cfg.StatsWarmSchedule != "" {
		warmer, err = service.NewWarmer(svc, cfg.StatsWarmSchedule, loc, logging.Component(logger, "warmer"))
		if err != nil {
			logger.Fatal("invalid STATS_WARM_SCHEDULE", zap.Error(err))
		}
		warmer.Start()
		logger.Info("stats warmup scheduled", zap.String("schedule", cfg.StatsWarmSchedule))
	}

	api := httpapi.New(svc, docService, authManager, cfg.AllowedOrigin, logging.Component(logger, "http"))

	server := &http.Server{
		Addr:              cfg.Address(),
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("invoicedesk backend listening",
			zap.String("addr", cfg.Address()),
			zap.String("store", cfg.StoreBackend),
			zap.String("timezone", loc.String()),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("shutdown error", zap.Error(err))
	}
	if warmer != nil {
		warmer.Stop(shutdownCtx)
	}
	svc.Wait()

	for _, closeFn := range closers {
		if err := closeFn(); err != nil {
			logger.Warn("close error", zap.Error(err))
		}
	}

	logger.Info("server stopped")
}

// openStore connects the configured document store. A configured remote
// backend that cannot be reached is fatal; there is no silent fallback to
// memory.
func openStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (store.DocumentStore, []func() error, error) {
	switch cfg.StoreBackend {
	case config.BackendMemory:
		logger.Info("document store: in-memory (seeded)")
		return memory.NewSeeded(), nil, nil
	case config.BackendPostgres:
		if cfg.DatabaseURL == "" {
			return nil, nil, errors.New("DATABASE_URL is required for the postgres backend")
		}
		pg, err := pgstore.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := pg.EnsureSchema(ctx); err != nil {
			_ = pg.Close()
			return nil, nil, err
		}
		logger.Info("document store: postgres")
		return pg, []func() error{pg.Close}, nil
	case config.BackendFirestore:
		if cfg.FirestoreProjectID == "" {
			return nil, nil, errors.New("FIRESTORE_PROJECT_ID is required for the firestore backend")
		}
		fs, err := fsstore.New(ctx, cfg.FirestoreProjectID)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("document store: firestore", zap.String("project", cfg.FirestoreProjectID))
		return fs, []func() error{fs.Close}, nil
	}
	return nil, nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend)
}

// openCache prefers redis and falls back to an in-process cache when redis is
// not configured or not reachable.
func openCache(ctx context.Context, cfg config.Config, logger *zap.Logger) (cache.StatsCache, func() error) {
	if cfg.RedisAddr == "" {
		logger.Info("stats cache: in-memory")
		return cache.NewMemoryStatsCache(), nil
	}
	redisCache := cache.NewRedisStatsCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err := redisCache.Ping(ctx); err != nil {
		_ = redisCache.Close()
		logger.Warn("redis unavailable, using in-memory stats cache", zap.Error(err))
		return cache.NewMemoryStatsCache(), nil
	}
	logger.Info("stats cache: redis", zap.String("addr", cfg.RedisAddr))
	return redisCache, redisCache.Close
}

func validateSecurityConfig(cfg config.Config) error {
	if len(cfg.AuthSecret) < 32 {
		return fmt.Errorf("AUTH_SECRET must be set and at least 32 characters")
	}
	if strings.TrimSpace(cfg.AdminUser) == "" {
		return fmt.Errorf("ADMIN_USER must be set")
	}
	if len(cfg.AdminPass) < 10 {
		return fmt.Errorf("ADMIN_PASS must be set and at least 10 characters")
	}
	if err := validatePasswordStrength(cfg.AdminUser, cfg.AdminPass); err != nil {
		return fmt.Errorf("ADMIN_PASS is too weak: %w", err)
	}
	return nil
}

// validatePasswordStrength rejects passwords that repeat one character, match
// the username or appear on a short list of common choices.
func validatePasswordStrength(username, password string) error {
	known := map[string]bool{
		"password123": true, "admin12345": true, "1234567890": true,
		"qwertyuiop": true, "0987654321": true, "letmein123": true,
	}
	if known[strings.ToLower(password)] {
		return fmt.Errorf("common password not allowed")
	}
	if strings.EqualFold(password, username) {
		return fmt.Errorf("password must differ from the username")
	}

	allSame := true
	for i := 1; i < len(password); i++ {
		if password[i] != password[0] {
			allSame = false
			break
		}
	}
	if allSame {
		return fmt.Errorf("single-character password not allowed")
	}
	return nil
}
