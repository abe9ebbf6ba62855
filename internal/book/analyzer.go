// Package book reduces raw order-book snapshots to bounded, display-ready
// depth ladders and compact top-of-book summaries.
package book

import (
	"sort"

	"github.com/spotdeck/spotdeck/internal/domain"
)

// Display depths. The inline view shows CompactDepth levels per side, the
// detailed modal shows DetailDepth.
const (
	CompactDepth = 10
	DetailDepth  = 15
)

// Analyze reduces a raw book to a depth ladder.
//
// The source gives no ordering guarantee, so both sides are sorted here:
// asks ascending and bids descending, best price first. Each side is then
// truncated to depth (clamped, never an error, when the source returned
// fewer levels) and annotated with a running cumulative notional that
// accumulates from the touch outward. Asks are finally reversed so the best
// ask sits adjacent to the spread divider.
func Analyze(raw domain.RawOrderBook, depth int) domain.DepthLadder {
	if depth <= 0 {
		depth = CompactDepth
	}

	asks := sortSide(raw.Asks, false)
	bids := sortSide(raw.Bids, true)

	if len(asks) > depth {
		asks = asks[:depth]
	}
	if len(bids) > depth {
		bids = bids[:depth]
	}

	ladder := domain.DepthLadder{
		Exchange: raw.Exchange,
		Symbol:   raw.Symbol,
		Asks:     reverse(cumulate(asks)),
		Bids:     cumulate(bids),
	}

	if len(asks) > 0 {
		ladder.BestAsk = domain.Float(asks[0].Price)
	}
	if len(bids) > 0 {
		ladder.BestBid = domain.Float(bids[0].Price)
	}
	if ladder.BestAsk != nil && ladder.BestBid != nil {
		spread := (*ladder.BestAsk - *ladder.BestBid) / *ladder.BestAsk * 100
		ladder.SpreadPct = &spread
	}

	return ladder
}

// sortSide copies the side, drops degenerate levels, and orders it best
// price first.
func sortSide(levels []domain.BookLevel, descending bool) []domain.BookLevel {
	side := make([]domain.BookLevel, 0, len(levels))
	for _, l := range levels {
		if l.Price <= 0 || l.Amount <= 0 {
			continue
		}
		side = append(side, l)
	}
	sort.SliceStable(side, func(i, j int) bool {
		if descending {
			return side[i].Price > side[j].Price
		}
		return side[i].Price < side[j].Price
	})
	return side
}

// cumulate annotates a best-first side with running notional totals: the
// level at the touch carries only its own notional, the furthest level the
// full displayed-depth total.
func cumulate(side []domain.BookLevel) []domain.LadderLevel {
	out := make([]domain.LadderLevel, len(side))
	var running float64
	for i, l := range side {
		running += l.Price * l.Amount
		out[i] = domain.LadderLevel{
			Price:      l.Price,
			Amount:     l.Amount,
			Cumulative: running,
		}
	}
	return out
}

func reverse(levels []domain.LadderLevel) []domain.LadderLevel {
	for i, j := 0, len(levels)-1; i < j; i, j = i+1, j-1 {
		levels[i], levels[j] = levels[j], levels[i]
	}
	return levels
}
