package models

import (
	"encoding/json"
	"math"
	"strings"
)

// Project categories as they appear in the source spreadsheet.
const (
	CategoryL1          = "L1"
	CategoryL2          = "L2"
	CategoryL3          = "L3"
	CategoryApplication = "Application"
	CategoryStablecoins = "Stablecoins"
)

// Project is static configuration, loaded once and never mutated.
type Project struct {
	Name              string `json:"name"`
	Category          string `json:"category"`
	SecondaryCategory string `json:"secondaryCategory,omitempty"`

	// AmountRaised is total funding in USD. Zero means bootstrapped,
	// which the production score treats as a special case.
	AmountRaised float64 `json:"amountRaised"`

	// UseDefillama selects the adapter family: true routes through the
	// DeFiLlama fee APIs, false through builder-attributed revenue.
	UseDefillama bool `json:"useDefillama"`

	// HyperliquidBuilder is the fee-sharing builder address, when any.
	HyperliquidBuilder string `json:"hyperliquidBuilder,omitempty"`

	LastFundingRoundValuation *float64 `json:"lastFundingRoundValuation,omitempty"`
	TGEPrice                  *float64 `json:"tgePrice,omitempty"`
}

// IsInfrastructure reports whether the project is a chain tier (L1/L2/L3)
// rather than an application or stablecoin.
func (p Project) IsInfrastructure() bool {
	switch p.Category {
	case CategoryL1, CategoryL2, CategoryL3:
		return true
	}
	return false
}

// Slug returns the normalized identifier used for URL lookups.
func (p Project) Slug() string {
	return Slugify(p.Name)
}

// EnrichedProject is a Project plus whatever the adapters produced for one
// pass. Pointer fields distinguish "unknown" from zero; AnnualizedRevenue
// defaults to zero because every score formula does.
type EnrichedProject struct {
	Project

	AnnualizedRevenue float64 `json:"annualizedRevenue"`

	// EcosystemRevenue is populated (possibly zero) for infrastructure
	// projects only; applications never carry it.
	EcosystemRevenue *float64 `json:"ecosystemRevenue,omitempty"`

	// AppFees mirrors the ecosystem figure or the fee-detail fetch,
	// kept for compatibility with older payload consumers.
	AppFees *float64 `json:"appFees,omitempty"`

	FDV             *float64 `json:"fdv,omitempty"`
	CurrentPrice    *float64 `json:"currentPrice,omitempty"`
	ReturnSinceTGE  *float64 `json:"returnSinceTGE,omitempty"`
	ReturnVsFunding *float64 `json:"returnVsFunding,omitempty"`
}

// Score is a float64 that marshals non-finite values as null, since JSON
// has no infinity literal. The bootstrapped-project score is +Inf.
type Score float64

func (s Score) MarshalJSON() ([]byte, error) {
	f := float64(s)
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return []byte("null"), nil
	}
	return json.Marshal(f)
}

// ScoredProject carries the API-facing score and the 1-based rank within
// the set it was scored against.
type ScoredProject struct {
	EnrichedProject

	AuraScore Score `json:"auraScore"`
	AuraRank  int   `json:"auraRank"`
}

// Slugify lowercases the name and replaces every non-alphanumeric rune
// with '-', so "Pump.fun", "pump-fun" and "PUMP FUN" all normalize to
// "pump-fun".
func Slugify(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return '-'
		}
	}, name)
}

// Float64 returns a pointer to v, for optional field literals.
func Float64(v float64) *float64 {
	return &v
}
