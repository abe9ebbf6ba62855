package book

import "github.com/spotdeck/spotdeck/internal/domain"

// Notional thresholds for the qualitative depth tiers. Display styling
// only; no computation depends on them beyond the comparison.
const (
	tierHighNotional   = 100000
	tierMediumNotional = 10000
	tierLowNotional    = 1000
)

// Summarize reduces a raw book to the compact top-of-book indicator: best
// prices, total notional within the displayed best-price neighborhood of
// each side, and the spread.
func Summarize(raw domain.RawOrderBook, depth int) domain.DepthSummary {
	ladder := Analyze(raw, depth)

	summary := domain.DepthSummary{
		Exchange: raw.Exchange,
		Symbol:   raw.Symbol,
		BestBid:  ladder.BestBid,
		BestAsk:  ladder.BestAsk,
		Spread:   ladder.SpreadPct,
	}

	// The full displayed-depth total is the cumulative of the level
	// furthest from the touch.
	if n := len(ladder.Bids); n > 0 {
		summary.BidDepth = ladder.Bids[n-1].Cumulative
	}
	if n := len(ladder.Asks); n > 0 {
		summary.AskDepth = ladder.Asks[0].Cumulative
	}

	summary.BidTier = Tier(summary.BidDepth)
	summary.AskTier = Tier(summary.AskDepth)
	return summary
}

// Tier buckets a notional depth value for display styling.
func Tier(notional float64) domain.DepthTier {
	switch {
	case notional >= tierHighNotional:
		return domain.DepthTierHigh
	case notional >= tierMediumNotional:
		return domain.DepthTierMedium
	case notional >= tierLowNotional:
		return domain.DepthTierLow
	default:
		return domain.DepthTierMinimal
	}
}
