// Package scoring turns enriched project records into Aura scores and
// ranked lists.
package scoring

import (
	"math"
	"sort"

	"github.com/auralabs/aura/internal/models"
)

// Variant selects which score formula a ranking is built from. The two
// formulas are intentionally separate surfaces: Production drives the
// comparison payload, Simplified drives the v1 API.
type Variant int

const (
	Production Variant = iota
	Simplified
)

// ecosystemWeight discounts ecosystem revenue relative to native revenue
// when scoring infrastructure projects.
const ecosystemWeight = 0.7

// WeightedRevenue combines a project's revenue streams into the single
// figure the production score is computed from. Applications and
// stablecoins use native revenue alone; infrastructure adds the
// discounted ecosystem stream.
func WeightedRevenue(p models.EnrichedProject) float64 {
	if !p.IsInfrastructure() {
		return p.AnnualizedRevenue
	}
	weighted := p.AnnualizedRevenue
	if p.EcosystemRevenue != nil {
		weighted += *p.EcosystemRevenue * ecosystemWeight
	}
	return weighted
}

// ProductionScore maps the revenue-to-funding ratio onto a piecewise
// logarithmic scale. Zero raised with positive revenue scores +Inf; zero
// raised with zero revenue scores 0. Each band stretches its input range
// onto a fixed output band so projects cluster by order of magnitude.
func ProductionScore(weightedRevenue, amountRaised float64) float64 {
	if amountRaised == 0 {
		if weightedRevenue > 0 {
			return math.Inf(1)
		}
		return 0
	}

	ratio := weightedRevenue / amountRaised
	var score float64
	switch {
	case ratio <= 0:
		score = -1000
	case ratio < 0.001:
		score = math.Log10(ratio*1000)*200 - 800
	case ratio < 0.01:
		score = math.Log10(ratio*100)*150 - 200
	case ratio < 0.1:
		score = math.Log10(ratio*10)*200 + 200
	case ratio < 1:
		score = math.Log10(ratio)*300 + 700
	case ratio < 10:
		score = math.Log2(ratio)*400 + 700
	case ratio < 100:
		score = math.Log2(ratio/10)*600 + 2000
	default:
		score = math.Log2(ratio/100)*1000 + 5000
	}
	return math.Round(score)
}

// SimplifiedScore is the flat composite used by the v1 API: revenue
// efficiency dominates, market performance and absolute scale contribute
// smaller shares. The market term only applies when both FDV and a last
// funding round valuation are known.
func SimplifiedScore(p models.EnrichedProject) float64 {
	revenue := p.AnnualizedRevenue
	raised := p.AmountRaised
	if raised == 0 {
		raised = 1
	}

	score := 0.6 * (revenue / raised)
	if p.FDV != nil && *p.FDV > 0 && p.LastFundingRoundValuation != nil && *p.LastFundingRoundValuation != 0 {
		score += 0.3 * math.Log10(*p.FDV / *p.LastFundingRoundValuation+1)
	}
	score += 0.1 * (math.Log10(revenue+1) / 10)

	return math.Round(score*100) / 100
}

func score(p models.EnrichedProject, v Variant) float64 {
	if v == Simplified {
		return SimplifiedScore(p)
	}
	return ProductionScore(WeightedRevenue(p), p.AmountRaised)
}

// Rank scores every project with the chosen variant and orders the
// result by descending score. The sort is stable so equal scores keep
// their input order; +Inf sorts ahead of every finite score.
func Rank(enriched []models.EnrichedProject, v Variant) []models.ScoredProject {
	scored := make([]models.ScoredProject, len(enriched))
	for i, p := range enriched {
		scored[i] = models.ScoredProject{
			EnrichedProject: p,
			AuraScore:       models.Score(score(p, v)),
		}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].AuraScore > scored[j].AuraScore
	})
	for i := range scored {
		scored[i].AuraRank = i + 1
	}
	return scored
}
