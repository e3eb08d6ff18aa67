package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"roomie/internal/config"
	"roomie/internal/handler"
	"roomie/internal/logging"
	"roomie/internal/metrics"
	"roomie/internal/middleware"
	"roomie/internal/randx"
	"roomie/internal/repository"
	"roomie/internal/service"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// listingStore is what the server needs from either repository
type listingStore interface {
	service.ListingStore
	Close() error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config_load_failed", "error", err)
		os.Exit(1)
	}

	logger, err := logging.NewLogger(cfg.Logging)
	if err != nil {
		slog.Error("logger_init_failed", "error", err)
		os.Exit(1)
	}

	logger.Info("roomie_starting",
		"version", Version,
		"build_time", BuildTime,
		"git_commit", GitCommit,
	)

	if err := run(cfg, logger); err != nil {
		logger.Error("server_exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	gin.SetMode(cfg.Server.GinMode)

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	store, err := openStore(cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	catalogue, err := service.LoadCatalogue(cfg.Chat.CategoriesPath)
	if err != nil {
		return fmt.Errorf("load reply catalogue: %w", err)
	}

	// One locked source shared by every simulation
	rng := randx.NewSeeded(cfg.Chat.Seed)
	delay := service.TimerDelayer{}

	selector, err := service.NewResponseSelector(catalogue, rng, delay,
		service.WithDelayRange(cfg.Chat.DelayMin, cfg.Chat.DelayMax),
		service.WithFollowUpProbability(cfg.Chat.FollowUpProbability),
		service.WithSelectorMetrics(m),
		service.WithSelectorLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("build response selector: %w", err)
	}
	extractor := service.NewListingExtractor(delay, cfg.Parser.Delay, m, logger)

	ranker := service.NewRanker(
		cfg.Ranking.WeightVibe,
		cfg.Ranking.WeightPrice,
		cfg.Ranking.WeightRecency,
	)
	searchService := service.NewSearchService(
		store,
		service.NewIntentParser(logger),
		ranker,
		cfg.Listings.DefaultLimit,
		cfg.Listings.MaxLimit,
		logger,
	)
	suggester, err := service.NewSuggester(nil)
	if err != nil {
		return fmt.Errorf("load school directory: %w", err)
	}
	sixer := service.NewSixerService(rng, delay,
		cfg.Sixer.PaymentDelay,
		cfg.Sixer.MatchDelay,
		cfg.Sixer.SuccessRate,
		m,
		logger,
	)

	logger.Info("services_initialized",
		"categories", len(catalogue.Categories),
		"chat_delay_min", cfg.Chat.DelayMin,
		"chat_delay_max", cfg.Chat.DelayMax,
		"parse_delay", cfg.Parser.Delay,
		"seeded", cfg.Chat.Seed != 0,
	)

	router := gin.New()
	router.Use(
		middleware.RequestID(),
		middleware.Recovery(logger),
		middleware.RequestLogger(logger, m),
		cors.New(newCORSConfig(cfg)),
		newGzipMiddleware(cfg),
	)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":     "healthy",
			"service":    "roomie",
			"store":      storeKind(cfg),
			"version":    Version,
			"build_time": BuildTime,
			"git_commit": GitCommit,
		})
	})

	router.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    Version,
			"build_time": BuildTime,
			"git_commit": GitCommit,
		})
	})

	if m != nil {
		router.GET(cfg.Metrics.Path, gin.WrapH(m.Handler()))
	}

	handler.Register(router.Group("/api"),
		handler.NewAIHandler(selector, extractor, logger),
		handler.NewSearchHandler(searchService, suggester, logger),
		handler.NewSixerHandler(sixer, logger),
	)

	// Implemented in embed.go (production) or static_dev.go (development)
	setupStaticFiles(router, logger)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	signalCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(signalCtx)

	g.Go(func() error {
		logger.Info("server_start", "addr", addr, "store", storeKind(cfg))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutdown_signal_received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		logger.Info("server_stopped")
		return nil
	})

	return g.Wait()
}

func openStore(cfg *config.Config, logger *slog.Logger) (listingStore, error) {
	if !cfg.PostgreSQLEnabled() {
		logger.Warn("postgres_not_configured", "hint", "listings are kept in memory; set DATABASE_URL or PG_HOST to persist them")
		return repository.NewMemoryRepository(), nil
	}

	repo, err := repository.NewPostgresRepository(
		cfg.GetPostgreSQLDSN(),
		cfg.PostgreSQL.MaxConnections,
		cfg.PostgreSQL.MaxIdleConnections,
	)
	if err != nil {
		return nil, err
	}

	if cfg.PostgreSQL.AutoMigrate {
		if err := repo.Migrate(context.Background()); err != nil {
			repo.Close()
			return nil, err
		}
	}

	logger.Info("postgres_connected", "auto_migrate", cfg.PostgreSQL.AutoMigrate)
	return repo, nil
}

func storeKind(cfg *config.Config) string {
	if cfg.PostgreSQLEnabled() {
		return "postgres"
	}
	return "memory"
}

func newCORSConfig(cfg *config.Config) cors.Config {
	corsConfig := cors.DefaultConfig()
	origins := cfg.AllowedOrigins()
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = origins
	}
	corsConfig.AllowMethods = splitCSV(cfg.Server.AllowedMethods)
	corsConfig.AllowHeaders = splitCSV(cfg.Server.AllowedHeaders)
	corsConfig.ExposeHeaders = []string{middleware.RequestIDHeader}
	return corsConfig
}

func newGzipMiddleware(cfg *config.Config) gin.HandlerFunc {
	return gzip.Gzip(gzip.DefaultCompression, gzip.WithCustomShouldCompressFn(func(c *gin.Context) bool {
		path := c.Request.URL.Path
		// SSE must reach the client unbuffered
		if strings.HasSuffix(path, "/stream") {
			return false
		}
		if path == "/health" || path == cfg.Metrics.Path {
			return false
		}
		return strings.Contains(c.Request.Header.Get("Accept-Encoding"), "gzip")
	}))
}

func splitCSV(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
