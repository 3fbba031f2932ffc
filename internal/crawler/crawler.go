// Package crawler walks pages reachable from a seed URL, breadth first,
// until a page budget is spent or nothing is left to fetch. Fetching, link
// extraction and text extraction are delegated to the collaborators below;
// every fetched page is tokenized into the session's index.Store.
package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/juju/clock"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/cohensh96/Rank-Rangers--Information-Retrieval/internal/index"
	"github.com/cohensh96/Rank-Rangers--Information-Retrieval/internal/tokenizer"
	"github.com/cohensh96/Rank-Rangers--Information-Retrieval/pkg/config"
	apperrors "github.com/cohensh96/Rank-Rangers--Information-Retrieval/pkg/errors"
	"github.com/cohensh96/Rank-Rangers--Information-Retrieval/pkg/logger"
	"github.com/cohensh96/Rank-Rangers--Information-Retrieval/pkg/metrics"
)

// PageFetcher retrieves the raw content of a URL. A non-nil error means
// the page could not be fetched; it must not panic.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// LinkExtractor returns the absolute URLs linked from content. It must be
// pure.
type LinkExtractor interface {
	ExtractLinks(content, baseURL string) []string
}

// TextExtractor returns the indexable text of content.
type TextExtractor interface {
	ExtractText(content string) string
}

type identityText struct{}

func (identityText) ExtractText(content string) string { return content }

// Result summarises one crawl session.
type Result struct {
	SessionID string
	// Documents holds the term table of every indexed page, in indexing order.
	Documents []index.DocumentCounts
	Visited   int
	Failed    int
	Elapsed   time.Duration
}

// Option customises a Crawler.
type Option func(*Crawler)

// WithTextExtractor sets the extractor applied to content before
// tokenizing. The default indexes content as is.
func WithTextExtractor(t TextExtractor) Option {
	return func(c *Crawler) { c.text = t }
}

// WithClock replaces the wall clock used for the politeness delay.
func WithClock(clk clock.Clock) Option {
	return func(c *Crawler) { c.clock = clk }
}

// WithMetrics records fetch and indexing metrics on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Crawler) { c.metrics = m }
}

// Crawler runs one crawl per Crawl call against a shared Store.
type Crawler struct {
	cfg       config.CrawlerConfig
	store     *index.Store
	tokenizer *tokenizer.Tokenizer
	fetcher   PageFetcher
	links     LinkExtractor
	text      TextExtractor
	clock     clock.Clock
	limiter   *rate.Limiter
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// New validates cfg and builds a Crawler writing into store.
func New(
	cfg config.CrawlerConfig,
	store *index.Store,
	tok *tokenizer.Tokenizer,
	fetcher PageFetcher,
	links LinkExtractor,
	opts ...Option,
) (*Crawler, error) {
	if cfg.SeedURL == "" {
		return nil, fmt.Errorf("%w: seed URL is required", apperrors.ErrInvalidInput)
	}
	if cfg.MaxPages <= 0 {
		return nil, fmt.Errorf("%w: max pages must be positive, got %d", apperrors.ErrInvalidInput, cfg.MaxPages)
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	c := &Crawler{
		cfg:       cfg,
		store:     store,
		tokenizer: tok,
		fetcher:   fetcher,
		links:     links,
		text:      identityText{},
		clock:     clock.WallClock,
		logger:    slog.Default().With("component", "crawler"),
	}
	if cfg.RequestsPerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Crawl fetches and indexes pages starting at the configured seed. Running
// out of candidates before the budget is normal completion. If ctx ends,
// the pages indexed so far are returned with ctx's error.
func (c *Crawler) Crawl(ctx context.Context) (*Result, error) {
	start := time.Now()
	sessionID := uuid.NewString()
	ctx = logger.WithSession(ctx, sessionID)
	log := c.logger.With("session_id", sessionID)
	log.Info("crawl started", "seed", c.cfg.SeedURL, "max_pages", c.cfg.MaxPages, "workers", c.cfg.Workers)

	f := newFrontier(c.cfg.MaxPages)
	f.push(c.cfg.SeedURL)
	stop := context.AfterFunc(ctx, f.close)
	defer stop()

	s := &session{crawler: c, frontier: f, logger: log}
	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < c.cfg.Workers; w++ {
		g.Go(func() error {
			for {
				url, ok := f.next()
				if !ok {
					return nil
				}
				s.visit(gctx, url)
			}
		})
	}
	g.Wait()

	queued, visited := f.stats()
	res := &Result{
		SessionID: sessionID,
		Documents: s.documents,
		Visited:   visited,
		Failed:    s.failed,
		Elapsed:   time.Since(start),
	}
	log.Info("crawl complete",
		"visited", res.Visited,
		"failed", res.Failed,
		"registered", c.store.Registry().Len(),
		"left_in_frontier", queued,
		"elapsed", res.Elapsed.Round(time.Millisecond),
	)
	if err := ctx.Err(); err != nil {
		return res, fmt.Errorf("crawl interrupted: %w", err)
	}
	return res, nil
}

// session is the mutable state of one Crawl call.
type session struct {
	crawler  *Crawler
	frontier *frontier
	logger   *slog.Logger

	mu        sync.Mutex
	documents []index.DocumentCounts
	failed    int
}

func (s *session) visit(ctx context.Context, url string) {
	c := s.crawler
	doc := c.store.Resolve(url)
	log := s.logger.With("url", url, "doc_id", doc.ID)
	log.Info("crawling")

	content, err := s.fetch(ctx, url)
	if err != nil {
		log.Warn("fetch failed", "error", err)
		s.mu.Lock()
		s.failed++
		s.mu.Unlock()
		s.frontier.complete(url, false, nil)
		s.observeFrontier()
		return
	}

	counts := c.store.IndexDocument(doc, c.tokenizer.Terms(c.text.ExtractText(content)))
	links := c.sameSite(c.links.ExtractLinks(content, url))

	s.mu.Lock()
	s.documents = append(s.documents, counts)
	s.mu.Unlock()
	s.frontier.complete(url, true, links)

	if c.metrics != nil {
		c.metrics.DocsIndexedTotal.Inc()
		c.metrics.TermsRecordedTotal.Add(float64(counts.Total))
	}
	s.observeFrontier()
	log.Debug("page indexed", "terms", counts.Total, "distinct_terms", len(counts.Terms), "links", len(links))
}

// fetch waits out the politeness delay and the shared limiter, then fetches.
func (s *session) fetch(ctx context.Context, url string) (string, error) {
	c := s.crawler
	if d := c.cfg.PolitenessDelay; d > 0 {
		select {
		case <-c.clock.After(d):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", err
		}
	}

	start := time.Now()
	content, err := c.fetcher.Fetch(ctx, url)
	if c.metrics != nil {
		c.metrics.FetchDuration.Observe(time.Since(start).Seconds())
		outcome := "ok"
		if err != nil {
			outcome = "failed"
		}
		c.metrics.FetchesTotal.WithLabelValues(outcome).Inc()
	}
	return content, err
}

func (s *session) observeFrontier() {
	if s.crawler.metrics == nil {
		return
	}
	queued, visited := s.frontier.stats()
	s.crawler.metrics.FrontierSize.Set(float64(queued))
	s.crawler.metrics.PagesVisited.Set(float64(visited))
}

// sameSite keeps links that textually start with the seed URL.
func (c *Crawler) sameSite(links []string) []string {
	kept := links[:0:0]
	for _, link := range links {
		if strings.HasPrefix(link, c.cfg.SeedURL) {
			kept = append(kept, link)
		}
	}
	return kept
}
