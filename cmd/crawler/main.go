package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/cohensh96/Rank-Rangers--Information-Retrieval/internal/crawler"
	"github.com/cohensh96/Rank-Rangers--Information-Retrieval/internal/fetcher"
	"github.com/cohensh96/Rank-Rangers--Information-Retrieval/internal/htmlpage"
	"github.com/cohensh96/Rank-Rangers--Information-Retrieval/internal/index"
	"github.com/cohensh96/Rank-Rangers--Information-Retrieval/internal/report"
	"github.com/cohensh96/Rank-Rangers--Information-Retrieval/internal/scorer"
	"github.com/cohensh96/Rank-Rangers--Information-Retrieval/internal/sink/kafkasink"
	"github.com/cohensh96/Rank-Rangers--Information-Retrieval/internal/sink/sqlsink"
	"github.com/cohensh96/Rank-Rangers--Information-Retrieval/internal/sink/xlsxsink"
	"github.com/cohensh96/Rank-Rangers--Information-Retrieval/internal/tokenizer"
	"github.com/cohensh96/Rank-Rangers--Information-Retrieval/pkg/config"
	"github.com/cohensh96/Rank-Rangers--Information-Retrieval/pkg/kafka"
	"github.com/cohensh96/Rank-Rangers--Information-Retrieval/pkg/logger"
	"github.com/cohensh96/Rank-Rangers--Information-Retrieval/pkg/metrics"
	"github.com/cohensh96/Rank-Rangers--Information-Retrieval/pkg/postgres"
)

const sinkTimeout = 2 * time.Minute

func main() {
	configPath := flag.String("config", "", "path to config file")
	seed := flag.String("seed", "", "seed URL (overrides config)")
	maxPages := flag.Int("max-pages", 0, "maximum pages to crawl (overrides config)")
	query := flag.String("query", "", "query to score (overrides config)")
	xlsxPath := flag.String("xlsx", "", "write the report workbook to this path")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *seed != "" {
		cfg.Crawler.SeedURL = *seed
	}
	if *maxPages > 0 {
		cfg.Crawler.MaxPages = *maxPages
	}
	if *query != "" {
		cfg.Query.Text = *query
	}
	if *xlsxPath != "" {
		cfg.Output.XLSXPath = *xlsxPath
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting crawl",
		"seed", cfg.Crawler.SeedURL,
		"max_pages", cfg.Crawler.MaxPages,
		"workers", cfg.Crawler.Workers,
		"stemmer", cfg.Tokenizer.Stemmer,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("crawl failed", "error", err)
		os.Exit(1)
	}
	slog.Info("crawler stopped")
}

func run(ctx context.Context, cfg *config.Config) error {
	m := metrics.New(prometheus.DefaultRegisterer)
	if cfg.Metrics.Enabled {
		shutdown := metrics.StartServer(cfg.Metrics.Port)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			shutdown(shutdownCtx)
		}()
	}

	stemmer, err := tokenizer.StemmerByName(cfg.Tokenizer.Stemmer)
	if err != nil {
		return err
	}
	tok := tokenizer.New(stemmer)
	store := index.NewStore()
	page := htmlpage.New()

	c, err := crawler.New(cfg.Crawler, store, tok, fetcher.New(cfg.Crawler), page,
		crawler.WithTextExtractor(page),
		crawler.WithMetrics(m),
	)
	if err != nil {
		return fmt.Errorf("building crawler: %w", err)
	}

	result, err := c.Crawl(ctx)
	if err != nil {
		if result == nil {
			return err
		}
		slog.Warn("crawl interrupted, reporting partial results", "error", err, "indexed", len(result.Documents))
	}

	sc := scorer.New(store, tok, m)
	rep := report.Build(store, sc, result.SessionID, cfg.Crawler.SeedURL, cfg.Query.Text, cfg.Report.TopTerms)
	slog.Info("report built",
		"session_id", rep.SessionID,
		"documents", len(rep.WordCounts),
		"score_rows", len(rep.Scores),
	)
	for i, doc := range rep.Ranking {
		if i == 5 {
			break
		}
		slog.Info("ranked document", "rank", i+1, "doc_id", doc.DocumentID, "url", doc.URL, "score", doc.Score)
	}

	sinks, closeSinks, err := openSinks(context.WithoutCancel(ctx), cfg, m)
	defer closeSinks()
	if err != nil {
		return err
	}
	if sinks.Len() == 0 {
		slog.Info("no sinks configured, skipping report output")
		return nil
	}
	// Output is written even after an interrupt so partial crawls are kept.
	return sinks.Write(context.WithoutCancel(ctx), rep)
}

func openSinks(ctx context.Context, cfg *config.Config, m *metrics.Metrics) (*report.MultiSink, func(), error) {
	var (
		sinks   []report.Sink
		closers []func() error
	)
	closeAll := func() {
		for _, c := range closers {
			if err := c(); err != nil {
				slog.Warn("closing sink failed", "error", err)
			}
		}
	}

	if cfg.Output.XLSXPath != "" {
		sinks = append(sinks, xlsxsink.New(cfg.Output.XLSXPath))
		slog.Info("xlsx sink enabled", "path", cfg.Output.XLSXPath)
	}
	if cfg.Output.SQLitePath != "" {
		s, err := sqlsink.OpenSQLite(ctx, cfg.Output.SQLitePath)
		if err != nil {
			return nil, closeAll, fmt.Errorf("opening sqlite sink: %w", err)
		}
		sinks = append(sinks, s)
		closers = append(closers, s.Close)
		slog.Info("sqlite sink enabled", "path", cfg.Output.SQLitePath)
	}
	if cfg.Postgres.Enabled {
		client, err := postgres.New(ctx, cfg.Postgres)
		if err != nil {
			return nil, closeAll, fmt.Errorf("connecting to postgres: %w", err)
		}
		closers = append(closers, client.Close)
		s, err := sqlsink.NewPostgres(ctx, client)
		if err != nil {
			return nil, closeAll, fmt.Errorf("opening postgres sink: %w", err)
		}
		sinks = append(sinks, s)
		slog.Info("postgres sink enabled", "host", cfg.Postgres.Host, "database", cfg.Postgres.Database)
	}
	if cfg.Kafka.Enabled {
		producer := kafka.NewProducer(cfg.Kafka)
		closers = append(closers, producer.Close)
		sinks = append(sinks, kafkasink.New(producer))
		slog.Info("kafka sink enabled", "brokers", cfg.Kafka.Brokers, "topic", cfg.Kafka.ScoresTopic)
	}
	return report.NewMultiSink(sinkTimeout, m, sinks...), closeAll, nil
}
