package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/cohensh96/Rank-Rangers--Information-Retrieval/internal/index"
	"github.com/cohensh96/Rank-Rangers--Information-Retrieval/internal/registry"
	"github.com/cohensh96/Rank-Rangers--Information-Retrieval/internal/search"
	"github.com/cohensh96/Rank-Rangers--Information-Retrieval/internal/search/cache"
	apperrors "github.com/cohensh96/Rank-Rangers--Information-Retrieval/pkg/errors"
	"github.com/cohensh96/Rank-Rangers--Information-Retrieval/pkg/logger"
	"github.com/cohensh96/Rank-Rangers--Information-Retrieval/pkg/middleware"
)

// Searcher answers queries; *search.Engine satisfies it.
type Searcher interface {
	Session() (*search.Session, error)
	Search(ctx context.Context, query string) (*search.Result, error)
}

type Handler struct {
	engine Searcher
	cache  *cache.QueryCache
	logger *slog.Logger
}

// New builds the HTTP handlers. queryCache may be nil.
func New(engine Searcher, queryCache *cache.QueryCache) *Handler {
	return &Handler{
		engine: engine,
		cache:  queryCache,
		logger: slog.Default().With("component", "search-handler"),
	}
}

// Register mounts every route on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/search", h.Search)
	mux.HandleFunc("GET /api/v1/documents", h.Documents)
	mux.HandleFunc("GET /api/v1/documents/{id}", h.Document)
	mux.HandleFunc("GET /api/v1/cache/stats", h.CacheStats)
	mux.HandleFunc("POST /api/v1/cache/invalidate", h.CacheInvalidate)
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	log := logger.FromContext(ctx)

	query := r.URL.Query().Get("q")
	if query == "" {
		h.writeError(w, apperrors.New(apperrors.ErrInvalidInput, http.StatusBadRequest, "query parameter 'q' is required"))
		return
	}
	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 {
			h.writeError(w, apperrors.New(apperrors.ErrInvalidInput, http.StatusBadRequest, "limit must be a positive integer"))
			return
		}
		limit = parsed
	}

	session, err := h.engine.Session()
	if err != nil {
		h.writeError(w, err)
		return
	}

	var result *search.Result
	cacheHit := false
	if h.cache != nil {
		key := cache.Key(session.ID, session.Scorer.QueryTerms(query))
		result, cacheHit, err = h.cache.GetOrCompute(ctx, key, func() (*search.Result, error) {
			return h.engine.Search(ctx, query)
		})
	} else {
		result, err = h.engine.Search(ctx, query)
	}
	if err != nil {
		log.Error("search failed", "query", query, "error", err)
		h.writeError(w, err)
		return
	}

	if limit > 0 && len(result.Ranking) > limit {
		trimmed := *result
		trimmed.Ranking = result.Ranking[:limit]
		result = &trimmed
	}

	log.Info("search completed",
		"query", query,
		"terms", len(result.Terms),
		"rows", len(result.Rows),
		"cache_hit", cacheHit,
		"request_id", middleware.GetRequestID(ctx),
		"latency_ms", time.Since(start).Milliseconds(),
	)
	h.writeJSON(w, http.StatusOK, result)
}

type documentSummary struct {
	ID        registry.DocumentID `json:"id"`
	URL       string              `json:"url"`
	WordCount int                 `json:"word_count"`
}

// Documents lists indexed documents with their word counts.
func (h *Handler) Documents(w http.ResponseWriter, r *http.Request) {
	session, err := h.engine.Session()
	if err != nil {
		h.writeError(w, err)
		return
	}
	docs := session.Store.Documents()
	out := make([]documentSummary, len(docs))
	for i, d := range docs {
		out[i] = documentSummary{ID: d.ID, URL: d.URL, WordCount: session.Store.WordCount(d.ID)}
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"session_id": session.ID,
		"registered": session.Store.Registry().Len(),
		"documents":  out,
	})
}

// Document returns one document's term table. Registered but unindexed
// documents (failed fetches) are reported with an empty table.
func (h *Handler) Document(w http.ResponseWriter, r *http.Request) {
	session, err := h.engine.Session()
	if err != nil {
		h.writeError(w, err)
		return
	}
	n, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		h.writeError(w, apperrors.New(apperrors.ErrInvalidInput, http.StatusBadRequest, "document id must be an integer"))
		return
	}
	id := registry.DocumentID(n)
	url, err := session.Store.Registry().Lookup(id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	terms := session.Store.Index().DocumentTerms(id)
	h.writeJSON(w, http.StatusOK, index.DocumentCounts{
		Document: registry.Document{ID: id, URL: url},
		Terms:    terms,
		Total:    session.Store.WordCount(id),
	})
}

func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
		return
	}
	hits, misses := h.cache.Stats()
	total := hits + misses
	var hitRate float64
	if total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"hits":     hits,
		"misses":   misses,
		"total":    total,
		"hit_rate": strconv.FormatFloat(hitRate, 'f', 1, 64) + "%",
		"breaker":  h.cache.BreakerState(),
	})
}

func (h *Handler) CacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeError(w, apperrors.New(apperrors.ErrNotReady, http.StatusServiceUnavailable, "caching is disabled"))
		return
	}
	if err := h.cache.Invalidate(r.Context()); err != nil {
		h.logger.Error("cache invalidation failed", "error", err)
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "invalidated"})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := apperrors.HTTPStatusCode(err)
	msg := err.Error()
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		msg = appErr.Message
	} else if status == http.StatusInternalServerError {
		msg = "internal error"
	}
	h.writeJSON(w, status, map[string]string{"error": msg})
}
