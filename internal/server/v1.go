package server

import (
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/auralabs/aura/internal/models"
	"github.com/auralabs/aura/internal/scoring"
)

type v1Meta struct {
	Total         int    `json:"total,omitempty"`
	TotalProjects int    `json:"totalProjects,omitempty"`
	Limit         int    `json:"limit,omitempty"`
	Offset        int    `json:"offset"`
	Category      string `json:"category,omitempty"`
	SortBy        string `json:"sortBy,omitempty"`
	ResponseTime  int64  `json:"responseTime"`
	LastUpdated   string `json:"lastUpdated"`
	Cached        bool   `json:"cached"`
	CacheAge      int    `json:"cacheAge,omitempty"`
}

type rateLimitInfo struct {
	Limit     int   `json:"limit"`
	Remaining int   `json:"remaining"`
	ResetTime int64 `json:"resetTime,omitempty"`
}

type apiInfo struct {
	Version   string        `json:"version"`
	Endpoint  string        `json:"endpoint,omitempty"`
	RateLimit rateLimitInfo `json:"rateLimit"`
}

func tooManyRequests(c *gin.Context, limit int) {
	c.JSON(http.StatusTooManyRequests, gin.H{
		"error": fmt.Sprintf("Rate limit exceeded. Maximum %d requests per minute.", limit),
	})
}

func intQuery(c *gin.Context, name string, def int) int {
	raw := c.Query(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

// sortKeys maps the sort query parameter onto dataset fields. Unknown
// keys leave the rank order untouched.
var sortKeys = map[string]func(models.ScoredProject) float64{
	"annualizedRevenue": func(p models.ScoredProject) float64 { return p.AnnualizedRevenue },
	"amountRaised":      func(p models.ScoredProject) float64 { return p.AmountRaised },
	"auraRank":          func(p models.ScoredProject) float64 { return float64(p.AuraRank) },
	"fdv":               func(p models.ScoredProject) float64 { return deref(p.FDV) },
	"currentPrice":      func(p models.ScoredProject) float64 { return deref(p.CurrentPrice) },
	"returnSinceTGE":    func(p models.ScoredProject) float64 { return deref(p.ReturnSinceTGE) },
	"returnVsFunding":   func(p models.ScoredProject) float64 { return deref(p.ReturnVsFunding) },
	"lastFundingRoundValuation": func(p models.ScoredProject) float64 {
		return deref(p.LastFundingRoundValuation)
	},
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func (s *Server) handleProjects(c *gin.Context) {
	start := s.now()

	decision := s.projectsLimiter.Allow(clientKey(c))
	if !decision.Allowed {
		tooManyRequests(c, decision.Limit)
		return
	}

	ranked, age, cached, err := s.simplifiedDataset(c)
	if err != nil {
		s.log.Error("projects refresh failed", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal server error",
			"message": "Failed to fetch project data",
		})
		return
	}

	category := c.Query("category")
	sortBy := c.DefaultQuery("sort", "auraScore")
	limit := intQuery(c, "limit", 50)
	offset := intQuery(c, "offset", 0)

	filtered := scoring.FilterCategory(ranked, category)
	if key, ok := sortKeys[sortBy]; ok && sortBy != "auraScore" {
		filtered = append([]models.ScoredProject(nil), filtered...)
		sort.SliceStable(filtered, func(i, j int) bool { return key(filtered[i]) > key(filtered[j]) })
	}

	page := paginate(filtered, offset, limit)

	if category == "" {
		category = "all"
	}
	c.JSON(http.StatusOK, gin.H{
		"data": page,
		"meta": v1Meta{
			Total:         len(filtered),
			TotalProjects: len(ranked),
			Limit:         limit,
			Offset:        offset,
			Category:      category,
			SortBy:        sortBy,
			ResponseTime:  s.now().Sub(start).Milliseconds(),
			LastUpdated:   s.now().UTC().Format(time.RFC3339),
			Cached:        cached,
			CacheAge:      int(age.Seconds()),
		},
		"api": apiInfo{
			Version: "1.0",
			RateLimit: rateLimitInfo{
				Limit:     decision.Limit,
				Remaining: decision.Remaining,
				ResetTime: decision.ResetAt.UnixMilli(),
			},
		},
	})
}

func paginate(projects []models.ScoredProject, offset, limit int) []models.ScoredProject {
	if offset < 0 {
		offset = 0
	}
	if limit < 0 {
		limit = 0
	}
	if offset >= len(projects) {
		return []models.ScoredProject{}
	}
	end := offset + limit
	if end > len(projects) {
		end = len(projects)
	}
	return projects[offset:end]
}

type projectDetail struct {
	models.ScoredProject

	Insights    scoring.ProjectInsights    `json:"insights"`
	Competitors []scoring.Competitor       `json:"competitors"`
	Performance scoring.PerformanceMetrics `json:"performance"`
}

func (s *Server) handleProjectBySlug(c *gin.Context) {
	start := s.now()

	decision := s.slugLimiter.Allow(clientKey(c))
	if !decision.Allowed {
		tooManyRequests(c, decision.Limit)
		return
	}

	slug := c.Param("slug")

	ranked, age, cached, err := s.simplifiedDataset(c)
	if err != nil {
		s.log.Error("project lookup refresh failed", "slug", slug, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal server error",
			"message": "Failed to fetch project data",
		})
		return
	}

	target, ok := findBySlug(ranked, slug)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{
			"error":      "Project not found",
			"message":    fmt.Sprintf("No project found with identifier: %s", slug),
			"suggestion": "Try using the exact project name or check /api/v1/projects for available projects",
		})
		return
	}

	detail := projectDetail{
		ScoredProject: target,
		Insights:      scoring.Insights(target, ranked),
		Competitors:   scoring.Competitors(target, ranked),
		Performance:   scoring.Performance(target),
	}

	c.JSON(http.StatusOK, gin.H{
		"data": detail,
		"meta": v1Meta{
			TotalProjects: len(ranked),
			ResponseTime:  s.now().Sub(start).Milliseconds(),
			LastUpdated:   s.now().UTC().Format(time.RFC3339),
			Cached:        cached,
			CacheAge:      int(age.Seconds()),
		},
		"api": apiInfo{
			Version:  "1.0",
			Endpoint: "/api/v1/projects/" + slug,
			RateLimit: rateLimitInfo{
				Limit:     decision.Limit,
				Remaining: decision.Remaining,
			},
		},
	})
}

func findBySlug(ranked []models.ScoredProject, identifier string) (models.ScoredProject, bool) {
	want := models.Slugify(identifier)
	for _, p := range ranked {
		if p.Slug() == want || strings.EqualFold(p.Name, identifier) {
			return p, true
		}
	}
	return models.ScoredProject{}, false
}

type rankingEntry struct {
	Name                      string                   `json:"name"`
	Category                  string                   `json:"category"`
	AuraScore                 models.Score             `json:"auraScore"`
	RevenueEfficiency         float64                  `json:"revenueEfficiency"`
	AnnualizedRevenue         float64                  `json:"annualizedRevenue"`
	MarketCap                 float64                  `json:"marketCap"`
	AmountRaised              float64                  `json:"amountRaised"`
	FDV                       *float64                 `json:"fdv,omitempty"`
	CurrentPrice              *float64                 `json:"currentPrice,omitempty"`
	TGEPrice                  *float64                 `json:"tgePrice,omitempty"`
	ReturnSinceTGE            *float64                 `json:"returnSinceTGE,omitempty"`
	ReturnVsFunding           *float64                 `json:"returnVsFunding,omitempty"`
	LastFundingRoundValuation *float64                 `json:"lastFundingRoundValuation,omitempty"`
	AuraScoreRank             int                      `json:"auraScoreRank"`
	Insights                  *scoring.RankingInsights `json:"insights,omitempty"`
}

func toRankingEntry(p models.ScoredProject) rankingEntry {
	raised := p.AmountRaised
	if raised == 0 {
		raised = 1
	}
	return rankingEntry{
		Name:                      p.Name,
		Category:                  p.Category,
		AuraScore:                 p.AuraScore,
		RevenueEfficiency:         p.AnnualizedRevenue / raised,
		AnnualizedRevenue:         p.AnnualizedRevenue,
		MarketCap:                 deref(p.FDV),
		AmountRaised:              p.AmountRaised,
		FDV:                       p.FDV,
		CurrentPrice:              p.CurrentPrice,
		TGEPrice:                  p.TGEPrice,
		ReturnSinceTGE:            p.ReturnSinceTGE,
		ReturnVsFunding:           p.ReturnVsFunding,
		LastFundingRoundValuation: p.LastFundingRoundValuation,
		AuraScoreRank:             p.AuraRank,
	}
}

func (s *Server) handleRankings(c *gin.Context) {
	start := s.now()

	decision := s.rankingsLimiter.Allow(clientKey(c))
	if !decision.Allowed {
		tooManyRequests(c, decision.Limit)
		return
	}

	ranked, age, cached, err := s.simplifiedDataset(c)
	if err != nil {
		s.log.Error("rankings refresh failed", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal server error",
			"message": "Failed to fetch rankings data",
		})
		return
	}

	category := c.Query("category")
	metric := c.DefaultQuery("metric", "auraScore")
	limit := intQuery(c, "limit", 25)
	includeInsights := c.Query("insights") == "true"

	byMetric := scoring.MetricRanking(ranked, metric)
	filtered := scoring.FilterCategory(byMetric, category)
	limited := paginate(filtered, 0, limit)

	data := make([]rankingEntry, len(limited))
	for i, p := range limited {
		entry := toRankingEntry(p)
		if includeInsights {
			entry.Insights = &scoring.RankingInsights{
				Rank:           i + 1,
				Percentile:     scoring.Percentile(i, len(limited)),
				CategoryLeader: i == 0 && category != "",
				OverallRank:    p.AuraRank,
				Strengths:      scoring.Strengths(p),
				Weaknesses:     scoring.Weaknesses(p),
			}
		}
		data[i] = entry
	}

	metaCategory := category
	if metaCategory == "" {
		metaCategory = "all"
	}
	c.JSON(http.StatusOK, gin.H{
		"data": data,
		"meta": gin.H{
			"total":               len(data),
			"category":            metaCategory,
			"metric":              metric,
			"limit":               limit,
			"includeInsights":     includeInsights,
			"availableMetrics":    scoring.RankingMetrics,
			"availableCategories": []string{"L1", "L2", "Application", "Stablecoins"},
			"responseTime":        s.now().Sub(start).Milliseconds(),
			"lastUpdated":         s.now().UTC().Format(time.RFC3339),
			"cached":              cached,
			"cacheAge":            int(age.Seconds()),
		},
		"api": apiInfo{
			Version:  "1.0",
			Endpoint: "/api/v1/rankings",
			RateLimit: rateLimitInfo{
				Limit:     decision.Limit,
				Remaining: decision.Remaining,
			},
		},
	})
}
