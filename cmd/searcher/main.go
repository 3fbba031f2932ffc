package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/cohensh96/Rank-Rangers--Information-Retrieval/internal/crawler"
	"github.com/cohensh96/Rank-Rangers--Information-Retrieval/internal/fetcher"
	"github.com/cohensh96/Rank-Rangers--Information-Retrieval/internal/htmlpage"
	"github.com/cohensh96/Rank-Rangers--Information-Retrieval/internal/index"
	"github.com/cohensh96/Rank-Rangers--Information-Retrieval/internal/scorer"
	"github.com/cohensh96/Rank-Rangers--Information-Retrieval/internal/search"
	"github.com/cohensh96/Rank-Rangers--Information-Retrieval/internal/search/cache"
	"github.com/cohensh96/Rank-Rangers--Information-Retrieval/internal/search/handler"
	"github.com/cohensh96/Rank-Rangers--Information-Retrieval/internal/tokenizer"
	"github.com/cohensh96/Rank-Rangers--Information-Retrieval/pkg/config"
	"github.com/cohensh96/Rank-Rangers--Information-Retrieval/pkg/health"
	"github.com/cohensh96/Rank-Rangers--Information-Retrieval/pkg/logger"
	"github.com/cohensh96/Rank-Rangers--Information-Retrieval/pkg/metrics"
	"github.com/cohensh96/Rank-Rangers--Information-Retrieval/pkg/middleware"
	pkgredis "github.com/cohensh96/Rank-Rangers--Information-Retrieval/pkg/redis"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting search service", "port", cfg.Server.Port, "seed", cfg.Crawler.SeedURL)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New(prometheus.DefaultRegisterer)

	stemmer, err := tokenizer.StemmerByName(cfg.Tokenizer.Stemmer)
	if err != nil {
		slog.Error("invalid stemmer", "error", err)
		os.Exit(1)
	}
	tok := tokenizer.New(stemmer)
	store := index.NewStore()
	page := htmlpage.New()
	c, err := crawler.New(cfg.Crawler, store, tok, fetcher.New(cfg.Crawler), page,
		crawler.WithTextExtractor(page),
		crawler.WithMetrics(m),
	)
	if err != nil {
		slog.Error("failed to create crawler", "error", err)
		os.Exit(1)
	}

	var queryCache *cache.QueryCache
	var redisClient *pkgredis.Client
	if cfg.Redis.Enabled {
		redisClient, err = pkgredis.NewClient(ctx, cfg.Redis)
		if err != nil {
			slog.Warn("redis unavailable, search caching disabled", "error", err)
			redisClient = nil
		} else {
			defer redisClient.Close()
			queryCache = cache.New(redisClient, cfg.Redis.CacheTTL, m)
			slog.Info("search cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL)
		}
	}

	engine := search.NewEngine()
	go func() {
		result, err := c.Crawl(ctx)
		if err != nil && result == nil {
			slog.Error("startup crawl failed", "error", err)
			return
		}
		if err != nil {
			slog.Warn("startup crawl interrupted, serving partial index", "error", err)
		}
		engine.Load(&search.Session{
			ID:     result.SessionID,
			Seed:   cfg.Crawler.SeedURL,
			Store:  store,
			Scorer: scorer.New(store, tok, m),
		})
		if queryCache != nil {
			if err := queryCache.Invalidate(context.WithoutCancel(ctx)); err != nil {
				slog.Warn("cache invalidation after crawl failed", "error", err)
			}
		}
		slog.Info("index ready", "session_id", result.SessionID, "documents", store.DocumentCount())
	}()

	checker := health.NewChecker()
	checker.Register("index", func(ctx context.Context) health.ComponentHealth {
		s, err := engine.Session()
		if err != nil {
			return health.ComponentHealth{Status: health.StatusDown, Message: "crawl in progress"}
		}
		return health.ComponentHealth{Status: health.StatusUp, Message: fmt.Sprintf("%d documents indexed", s.Store.DocumentCount())}
	})
	checker.Register("redis", func(ctx context.Context) health.ComponentHealth {
		if redisClient == nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: "not configured"}
		}
		if err := redisClient.Ping(ctx); err != nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: err.Error()}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	})

	h := handler.New(engine, queryCache)

	mux := http.NewServeMux()
	h.Register(mux)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())
	mux.Handle("GET /metrics", metrics.Handler())

	var chain http.Handler = mux
	chain = middleware.Timeout(cfg.Server.WriteTimeout)(chain)
	chain = middleware.Metrics(m)(chain)
	chain = middleware.CORS(cfg.Server.CORSOrigins)(chain)
	chain = middleware.RequestID(chain)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("search service listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("search service stopped")
}
