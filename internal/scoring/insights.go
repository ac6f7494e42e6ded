package scoring

import (
	"math"
	"sort"
	"strings"

	"github.com/auralabs/aura/internal/models"
)

// ProjectInsights summarizes where one project sits inside the full
// ranked set.
type ProjectInsights struct {
	CategoryRank      int     `json:"categoryRank"`
	CategoryTotal     int     `json:"categoryTotal"`
	RevenueEfficiency float64 `json:"revenueEfficiency"`
	IsTopPerformer    bool    `json:"isTopPerformer"`
	PerformanceLevel  string  `json:"performanceLevel"`
}

// Competitor is the trimmed view of a same-category project.
type Competitor struct {
	Name              string       `json:"name"`
	AuraScore         models.Score `json:"auraScore"`
	AuraRank          int          `json:"auraRank"`
	AnnualizedRevenue float64      `json:"annualizedRevenue"`
}

// PerformanceMetrics carries qualitative labels; "unknown" when the
// underlying figures are absent.
type PerformanceMetrics struct {
	RevenueGrowthPotential string `json:"revenueGrowthPotential"`
	MarketPosition         string `json:"marketPosition"`
	FundingEfficiency      string `json:"fundingEfficiency"`
}

// RankingInsights annotates one entry of a metric ranking.
type RankingInsights struct {
	Rank           int      `json:"rank"`
	Percentile     int      `json:"percentile"`
	CategoryLeader bool     `json:"categoryLeader"`
	OverallRank    int      `json:"overallRank"`
	Strengths      []string `json:"strengths"`
	Weaknesses     []string `json:"weaknesses"`
}

// Insights computes the in-category position of project within ranked.
// ranked must already be ordered, rank ascending.
func Insights(project models.ScoredProject, ranked []models.ScoredProject) ProjectInsights {
	var categoryRank, categoryTotal int
	for _, p := range ranked {
		if p.Category != project.Category {
			continue
		}
		categoryTotal++
		if p.Name == project.Name {
			categoryRank = categoryTotal
		}
	}

	raised := project.AmountRaised
	if raised == 0 {
		raised = 1
	}

	level := "developing"
	switch {
	case project.AuraRank <= 5:
		level = "exceptional"
	case project.AuraRank <= 15:
		level = "excellent"
	case project.AuraRank <= 30:
		level = "good"
	}

	return ProjectInsights{
		CategoryRank:      categoryRank,
		CategoryTotal:     categoryTotal,
		RevenueEfficiency: project.AnnualizedRevenue / raised,
		IsTopPerformer:    project.AuraRank <= 10,
		PerformanceLevel:  level,
	}
}

// Competitors returns up to five same-category projects, in rank order.
func Competitors(project models.ScoredProject, ranked []models.ScoredProject) []Competitor {
	competitors := make([]Competitor, 0, 5)
	for _, p := range ranked {
		if p.Category != project.Category || p.Name == project.Name {
			continue
		}
		competitors = append(competitors, Competitor{
			Name:              p.Name,
			AuraScore:         p.AuraScore,
			AuraRank:          p.AuraRank,
			AnnualizedRevenue: p.AnnualizedRevenue,
		})
		if len(competitors) == 5 {
			break
		}
	}
	return competitors
}

// Performance labels the project's funding efficiency and market
// position.
func Performance(project models.ScoredProject) PerformanceMetrics {
	metrics := PerformanceMetrics{
		RevenueGrowthPotential: "unknown",
		MarketPosition:         "unknown",
		FundingEfficiency:      "unknown",
	}

	if project.AnnualizedRevenue != 0 && project.AmountRaised != 0 {
		efficiency := project.AnnualizedRevenue / project.AmountRaised
		switch {
		case efficiency > 10:
			metrics.FundingEfficiency = "excellent"
		case efficiency > 2:
			metrics.FundingEfficiency = "good"
		case efficiency > 0.5:
			metrics.FundingEfficiency = "fair"
		default:
			metrics.FundingEfficiency = "poor"
		}
	}

	if project.FDV != nil && *project.FDV != 0 &&
		project.LastFundingRoundValuation != nil && *project.LastFundingRoundValuation != 0 {
		growth := *project.FDV / *project.LastFundingRoundValuation
		switch {
		case growth > 2:
			metrics.MarketPosition = "strong"
		case growth > 1:
			metrics.MarketPosition = "stable"
		default:
			metrics.MarketPosition = "declining"
		}
	}

	return metrics
}

// Strengths returns threshold-based positive tags, or a single
// placeholder when none apply.
func Strengths(p models.ScoredProject) []string {
	raised := p.AmountRaised
	if raised == 0 {
		raised = 1
	}
	efficiency := p.AnnualizedRevenue / raised

	var strengths []string
	if efficiency > 10 {
		strengths = append(strengths, "Exceptional revenue efficiency")
	}
	if p.AnnualizedRevenue > 1_000_000_000 {
		strengths = append(strengths, "High revenue scale")
	}
	if p.ReturnSinceTGE != nil && *p.ReturnSinceTGE > 100 {
		strengths = append(strengths, "Strong token performance")
	}
	if p.FDV != nil && *p.FDV > 10_000_000_000 {
		strengths = append(strengths, "Large market cap")
	}
	if len(strengths) == 0 {
		return []string{"Developing fundamentals"}
	}
	return strengths
}

// Weaknesses returns threshold-based negative tags; may be empty.
func Weaknesses(p models.ScoredProject) []string {
	raised := p.AmountRaised
	if raised == 0 {
		raised = 1
	}
	efficiency := p.AnnualizedRevenue / raised

	weaknesses := []string{}
	if efficiency < 0.1 {
		weaknesses = append(weaknesses, "Low revenue efficiency")
	}
	if p.AnnualizedRevenue < 1_000_000 {
		weaknesses = append(weaknesses, "Limited revenue scale")
	}
	if p.ReturnSinceTGE != nil && *p.ReturnSinceTGE < -50 {
		weaknesses = append(weaknesses, "Poor token performance")
	}
	return weaknesses
}

// Metrics the rankings endpoint can sort by.
var RankingMetrics = []string{"auraScore", "revenue", "efficiency", "marketCap", "funding", "performance"}

// MetricRanking orders scored projects by one named metric, descending.
// Unknown metrics fall back to auraScore. The performance metric drops
// projects without a TGE return figure. The input order breaks ties, so
// callers should pass a rank-ordered slice.
func MetricRanking(ranked []models.ScoredProject, metric string) []models.ScoredProject {
	out := make([]models.ScoredProject, 0, len(ranked))
	if metric == "performance" {
		for _, p := range ranked {
			if p.ReturnSinceTGE != nil {
				out = append(out, p)
			}
		}
	} else {
		out = append(out, ranked...)
	}

	key := metricKey(metric)
	sort.SliceStable(out, func(i, j int) bool { return key(out[i]) > key(out[j]) })
	return out
}

func metricKey(metric string) func(models.ScoredProject) float64 {
	switch metric {
	case "revenue":
		return func(p models.ScoredProject) float64 { return p.AnnualizedRevenue }
	case "efficiency":
		return func(p models.ScoredProject) float64 {
			raised := p.AmountRaised
			if raised == 0 {
				raised = 1
			}
			return p.AnnualizedRevenue / raised
		}
	case "marketCap":
		return func(p models.ScoredProject) float64 {
			if p.FDV == nil {
				return 0
			}
			return *p.FDV
		}
	case "funding":
		return func(p models.ScoredProject) float64 { return p.AmountRaised }
	case "performance":
		return func(p models.ScoredProject) float64 {
			if p.ReturnSinceTGE == nil {
				return 0
			}
			return *p.ReturnSinceTGE
		}
	default:
		return func(p models.ScoredProject) float64 { return float64(p.AuraScore) }
	}
}

// FilterCategory keeps projects whose category matches, ignoring case.
func FilterCategory(projects []models.ScoredProject, category string) []models.ScoredProject {
	if category == "" {
		return projects
	}
	out := make([]models.ScoredProject, 0, len(projects))
	for _, p := range projects {
		if strings.EqualFold(p.Category, category) {
			out = append(out, p)
		}
	}
	return out
}

// Percentile maps a 0-based index within a set of size total onto a
// 0-100 percentile, top entry highest.
func Percentile(index, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round((1 - float64(index)/float64(total)) * 100))
}
