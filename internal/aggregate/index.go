// Package aggregate builds the cross-exchange comparison view: a symbol
// index over one poll batch and the enriched, sortable, filterable rows
// derived from it. Everything here is a pure transform over an in-memory
// batch; the caller owns fetching and render cadence.
package aggregate

import "github.com/spotdeck/spotdeck/internal/domain"

// SymbolIndex maps each trading symbol to the per-exchange snapshots that
// carry it, preserving batch insertion order. It is rebuilt from scratch on
// every poll batch so it can never go stale against a partial update.
type SymbolIndex struct {
	bySymbol map[string][]domain.TickerSnapshot
}

// BuildIndex indexes one batch of snapshots by symbol. O(n).
func BuildIndex(snapshots []domain.TickerSnapshot) *SymbolIndex {
	idx := &SymbolIndex{
		bySymbol: make(map[string][]domain.TickerSnapshot, len(snapshots)),
	}
	for _, s := range snapshots {
		idx.bySymbol[s.Symbol] = append(idx.bySymbol[s.Symbol], s)
	}
	return idx
}

// PeersOf returns every snapshot under the same symbol whose exchange
// differs from s's.
func (idx *SymbolIndex) PeersOf(s domain.TickerSnapshot) []domain.TickerSnapshot {
	group := idx.bySymbol[s.Symbol]
	if len(group) <= 1 {
		return nil
	}
	peers := make([]domain.TickerSnapshot, 0, len(group)-1)
	for _, p := range group {
		if p.Exchange != s.Exchange {
			peers = append(peers, p)
		}
	}
	return peers
}

// ExchangeCount reports how many exchanges carry symbol; 0 if absent.
func (idx *SymbolIndex) ExchangeCount(symbol string) int {
	return len(idx.bySymbol[symbol])
}

// TotalVolume sums turnover across all exchanges carrying symbol, treating
// missing turnover as 0.
func (idx *SymbolIndex) TotalVolume(symbol string) float64 {
	var total float64
	for _, s := range idx.bySymbol[symbol] {
		total += domain.FloatOrZero(s.Turnover24h)
	}
	return total
}

// Symbols returns every indexed symbol in unspecified order.
func (idx *SymbolIndex) Symbols() []string {
	out := make([]string, 0, len(idx.bySymbol))
	for sym := range idx.bySymbol {
		out = append(out, sym)
	}
	return out
}
