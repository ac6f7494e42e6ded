// Package server exposes the aggregated dataset over HTTP: the
// comparison payload and the v1 REST API.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/auralabs/aura/internal/cache"
	"github.com/auralabs/aura/internal/models"
	"github.com/auralabs/aura/internal/ratelimit"
	"github.com/auralabs/aura/internal/scoring"
)

// Per-endpoint request budgets per client per minute.
const (
	projectsLimit = 100
	rankingsLimit = 150
	slugLimit     = 200
)

// Enricher produces one full dataset pass.
type Enricher interface {
	Enrich(ctx context.Context, base []models.Project) []models.EnrichedProject
}

// SnapshotStore persists a scored refresh for offline history. Optional.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, variant string, projects []models.ScoredProject) error
}

type Server struct {
	registry []models.Project
	enricher Enricher
	cache    *cache.Cache
	store    SnapshotStore
	log      *slog.Logger

	projectsLimiter *ratelimit.Limiter
	slugLimiter     *ratelimit.Limiter
	rankingsLimiter *ratelimit.Limiter

	// enrichTimeout caps one full refresh pipeline.
	enrichTimeout time.Duration
	now           func() time.Time
}

func New(registry []models.Project, enricher Enricher, c *cache.Cache, store SnapshotStore, log *slog.Logger) *Server {
	return &Server{
		registry:        registry,
		enricher:        enricher,
		cache:           c,
		store:           store,
		log:             log,
		projectsLimiter: ratelimit.New(projectsLimit),
		slugLimiter:     ratelimit.New(slugLimit),
		rankingsLimiter: ratelimit.New(rankingsLimit),
		enrichTimeout:   25 * time.Second,
		now:             time.Now,
	}
}

// Router builds the gin engine with every route attached.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", s.handleHealth)
	r.GET("/api/comparison", s.handleComparison)
	r.HEAD("/api/comparison", s.handleComparisonHead)

	v1 := r.Group("/api/v1")
	v1.GET("/projects", s.handleProjects)
	v1.GET("/projects/:slug", s.handleProjectBySlug)
	v1.GET("/rankings", s.handleRankings)

	return r
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleComparisonHead(c *gin.Context) {
	c.Header("Cache-Control", "no-cache")
	c.Status(http.StatusOK)
}

// clientKey identifies the caller for rate limiting: the forwarded
// address when a proxy set one, otherwise the connection peer.
func clientKey(c *gin.Context) string {
	if fwd := c.GetHeader("X-Forwarded-For"); fwd != "" {
		return fwd
	}
	return c.ClientIP()
}

// enrichWithTimeout runs one dataset pass under the pipeline cap. The
// pass keeps running in the background on timeout; the buffered channel
// lets it finish without leaking.
func (s *Server) enrichWithTimeout(ctx context.Context) ([]models.EnrichedProject, error) {
	ctx, cancel := context.WithTimeout(ctx, s.enrichTimeout)
	defer cancel()

	done := make(chan []models.EnrichedProject, 1)
	go func() { done <- s.enricher.Enrich(ctx, s.registry) }()

	select {
	case enriched := <-done:
		return enriched, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *Server) saveSnapshot(variant string, projects []models.ScoredProject) {
	if s.store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.store.SaveSnapshot(ctx, variant, projects); err != nil {
		s.log.Error("failed to save snapshot", "variant", variant, "err", err)
	}
}

// simplifiedDataset returns the simplified-variant ranked dataset shared
// by the v1 endpoints, refreshing the cache slot when it is cold.
func (s *Server) simplifiedDataset(c *gin.Context) ([]models.ScoredProject, time.Duration, bool, error) {
	const key = "v1:dataset"

	if v, age, ok := s.cache.Get(key); ok {
		return v.([]models.ScoredProject), age, true, nil
	}

	enriched, err := s.enrichWithTimeout(c.Request.Context())
	if err != nil {
		return nil, 0, false, err
	}
	ranked := scoring.Rank(enriched, scoring.Simplified)
	s.cache.Put(key, ranked)
	s.saveSnapshot("simplified", ranked)
	return ranked, 0, false, nil
}
