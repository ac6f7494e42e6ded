// Package projects holds the static project set the service scores.
// The constants come from the tracking spreadsheet and change only with
// a redeploy.
package projects

import (
	"strings"

	"github.com/auralabs/aura/internal/models"
)

var base = []models.Project{
	{Name: "Hyperliquid", Category: models.CategoryL1, AmountRaised: 0, UseDefillama: true, TGEPrice: models.Float64(3.81)},
	{Name: "Berachain", Category: models.CategoryL1, AmountRaised: 211_000_000, UseDefillama: true, LastFundingRoundValuation: models.Float64(1_500_000_000), TGEPrice: models.Float64(15.00)},
	{Name: "Blast", Category: models.CategoryL2, AmountRaised: 20_000_000, UseDefillama: true, LastFundingRoundValuation: models.Float64(100_000_000), TGEPrice: models.Float64(0.03)},
	{Name: "Sonic", Category: models.CategoryL1, AmountRaised: 29_350_000, UseDefillama: true, LastFundingRoundValuation: models.Float64(100_000_000), TGEPrice: models.Float64(0.32)},
	{Name: "Celestia", Category: models.CategoryL1, AmountRaised: 155_000_000, UseDefillama: true, LastFundingRoundValuation: models.Float64(1_500_000_000), TGEPrice: models.Float64(1.50)},
	{Name: "Optimism", Category: models.CategoryL2, AmountRaised: 267_500_000, UseDefillama: true, LastFundingRoundValuation: models.Float64(1_650_000_000), TGEPrice: models.Float64(1.91)},
	{Name: "Arbitrum", Category: models.CategoryL2, AmountRaised: 143_700_000, UseDefillama: true, LastFundingRoundValuation: models.Float64(4_500_000_000), TGEPrice: models.Float64(1.20)},
	{Name: "Solana", Category: models.CategoryL1, AmountRaised: 319_500_000, UseDefillama: true, LastFundingRoundValuation: models.Float64(110_000_000), TGEPrice: models.Float64(0.22)},
	{Name: "Ethereum", Category: models.CategoryL1, AmountRaised: 18_000_000, UseDefillama: true, LastFundingRoundValuation: models.Float64(22_000_000), TGEPrice: models.Float64(0.31)},
	{Name: "Story Protocol", Category: models.CategoryL1, AmountRaised: 143_000_000, UseDefillama: true, LastFundingRoundValuation: models.Float64(2_250_000_000), TGEPrice: models.Float64(2.50)},
	{Name: "Movement", Category: models.CategoryL1, AmountRaised: 55_000_000, UseDefillama: true, LastFundingRoundValuation: models.Float64(1_600_000_000), TGEPrice: models.Float64(0.68)},
	{Name: "Sui Network", Category: models.CategoryL1, AmountRaised: 336_000_000, UseDefillama: true, LastFundingRoundValuation: models.Float64(1_500_000_000), TGEPrice: models.Float64(0.10)},
	{Name: "Initia", Category: models.CategoryL1, AmountRaised: 24_000_000, UseDefillama: true, LastFundingRoundValuation: models.Float64(600_000_000), TGEPrice: models.Float64(0.60)},
	{Name: "Tron", Category: models.CategoryL1, AmountRaised: 76_000_000, UseDefillama: true, TGEPrice: models.Float64(0.002)},
	{Name: "Polygon", Category: models.CategoryL1, AmountRaised: 450_000_000, UseDefillama: true, TGEPrice: models.Float64(0.003)},
	{Name: "Ton", Category: models.CategoryL1, AmountRaised: 658_000_000, UseDefillama: true, TGEPrice: models.Float64(0.78)},

	{Name: "pvp.trade", Category: models.CategoryApplication, SecondaryCategory: "Hyperliquid", AmountRaised: 1_200_000, UseDefillama: false, HyperliquidBuilder: "0x0cbf655b0d22ae71fba3a674b0e1c0c7e7f975af"},
	{Name: "Axiom", Category: models.CategoryApplication, AmountRaised: 500_000, UseDefillama: true, HyperliquidBuilder: "0x1cc34f6af34653c515b47a83e1de70ba9b0cda1f"},
	{Name: "Okto", Category: models.CategoryApplication, SecondaryCategory: "Hyperliquid", AmountRaised: 27_000_000, UseDefillama: false, HyperliquidBuilder: "0x6acc0acd626b29b48923228c111c94bd4faa6a43"},
	{Name: "Defi App", Category: models.CategoryApplication, SecondaryCategory: "Hyperliquid", AmountRaised: 6_000_000, UseDefillama: false, HyperliquidBuilder: "0x1922810825c90f4270048b96da7b1803cd8609ef", LastFundingRoundValuation: models.Float64(100_000_000), TGEPrice: models.Float64(0.03)},
	{Name: "Dexari", Category: models.CategoryApplication, SecondaryCategory: "Hyperliquid", AmountRaised: 2_300_000, UseDefillama: false, HyperliquidBuilder: "0x7975cafdff839ed5047244ed3a0dd82a89866081"},

	{Name: "Moonshot", Category: models.CategoryApplication, AmountRaised: 60_000_000, UseDefillama: true},
	{Name: "Tether", Category: models.CategoryStablecoins, AmountRaised: 69_420_000, UseDefillama: true},
	{Name: "Circle", Category: models.CategoryStablecoins, AmountRaised: 1_200_000_000, UseDefillama: true},
	{Name: "Pump.fun", Category: models.CategoryApplication, AmountRaised: 1_170_000, UseDefillama: true, LastFundingRoundValuation: models.Float64(12_000_000), TGEPrice: models.Float64(0.004)},
	{Name: "Phantom", Category: models.CategoryApplication, AmountRaised: 268_000_000, UseDefillama: true},
}

// All returns a copy of the project set so callers cannot mutate the
// registry.
func All() []models.Project {
	out := make([]models.Project, len(base))
	copy(out, base)
	return out
}

// Find resolves an identifier to a project by case-insensitive exact name
// or by normalized slug.
func Find(identifier string) (models.Project, bool) {
	want := models.Slugify(identifier)
	for _, p := range base {
		if p.Slug() == want || strings.EqualFold(p.Name, identifier) {
			return p, true
		}
	}
	return models.Project{}, false
}
