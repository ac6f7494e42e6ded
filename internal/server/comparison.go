package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/auralabs/aura/internal/models"
	"github.com/auralabs/aura/internal/scoring"
)

const comparisonKey = "comparison"

type comparisonPayload struct {
	Projects      []models.ScoredProject `json:"projects"`
	LastUpdated   string                 `json:"lastUpdated"`
	TotalProjects int                    `json:"totalProjects"`
	ResponseTime  int64                  `json:"responseTime"`
}

type staleComparison struct {
	comparisonPayload
	IsStale bool   `json:"isStale"`
	Error   string `json:"error"`
}

// handleComparison serves the full production-scored dataset. Freshness
// order: cache hit, fresh fetch, stale cache, 503.
func (s *Server) handleComparison(c *gin.Context) {
	start := s.now()

	if v, _, ok := s.cache.Get(comparisonKey); ok {
		s.log.Info("serving cached comparison data")
		c.Header("Cache-Control", "public, max-age=60, s-maxage=300")
		c.Header("X-Cache", "HIT")
		c.Header("X-Response-Time", responseTimeSince(start, s.now))
		c.JSON(http.StatusOK, v)
		return
	}

	s.log.Info("fetching fresh comparison data")
	enriched, err := s.enrichWithTimeout(c.Request.Context())
	if err == nil {
		ranked := scoring.Rank(enriched, scoring.Production)
		payload := comparisonPayload{
			Projects:      ranked,
			LastUpdated:   s.now().UTC().Format(time.RFC3339),
			TotalProjects: len(ranked),
			ResponseTime:  s.now().Sub(start).Milliseconds(),
		}
		s.cache.Put(comparisonKey, payload)
		s.saveSnapshot("production", ranked)

		c.Header("Cache-Control", "public, max-age=60, s-maxage=300")
		c.Header("X-Cache", "MISS")
		c.Header("X-Response-Time", responseTimeSince(start, s.now))
		c.JSON(http.StatusOK, payload)
		return
	}

	s.log.Error("comparison refresh failed", "err", err)

	if v, _, ok := s.cache.GetStale(comparisonKey); ok {
		s.log.Info("serving stale comparison data")
		c.Header("Cache-Control", "public, max-age=30, s-maxage=60")
		c.Header("X-Cache", "STALE")
		c.Header("X-Response-Time", responseTimeSince(start, s.now))
		c.JSON(http.StatusOK, staleComparison{
			comparisonPayload: v.(comparisonPayload),
			IsStale:           true,
			Error:             "Fresh data unavailable, showing cached results",
		})
		return
	}

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Response-Time", responseTimeSince(start, s.now))
	c.JSON(http.StatusServiceUnavailable, gin.H{
		"error":        "Unable to fetch data",
		"message":      err.Error(),
		"timestamp":    s.now().UTC().Format(time.RFC3339),
		"responseTime": s.now().Sub(start).Milliseconds(),
	})
}

func responseTimeSince(start time.Time, now func() time.Time) string {
	return fmt.Sprintf("%dms", now().Sub(start).Milliseconds())
}
