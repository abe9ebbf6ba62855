package aggregate

import (
	"sort"
	"strings"

	"github.com/spotdeck/spotdeck/internal/domain"
)

// diffDeadBandPct is the half-width, in percent, of the band around zero
// inside which cross-exchange price differences are classified neutral.
// Comparisons are strict: exactly ±0.01% is still neutral.
const diffDeadBandPct = 0.01

// Diff classification labels.
const (
	DiffPositive = "positive"
	DiffNegative = "negative"
	DiffNeutral  = "neutral"
)

// ListFilter selects rows by watch/block list membership.
type ListFilter string

const (
	ListFilterAll       ListFilter = ""
	ListFilterWhitelist ListFilter = "whitelist"
	ListFilterBlacklist ListFilter = "blacklist"
	ListFilterNone      ListFilter = "none" // member of neither list
)

// Filters narrows the aggregated view. All predicates are AND-combined.
type Filters struct {
	// Exchange keeps only rows from one exchange; "" or "all" keeps every
	// exchange.
	Exchange string

	// Search is matched case-insensitively as a substring of the symbol
	// or the base currency.
	Search string

	// MultiExchangeOnly keeps only symbols carried by more than one
	// exchange.
	MultiExchangeOnly bool

	List ListFilter
}

// SortColumn names a sortable column of the ticker table.
type SortColumn string

const (
	SortSymbol SortColumn = "symbol"
	SortPrice  SortColumn = "price"
	SortVolume SortColumn = "volume"
	SortChange SortColumn = "change"
)

// Sort describes the requested row ordering. The sort is stable so equal
// rows keep their relative order across re-renders.
type Sort struct {
	Column     SortColumn
	Descending bool
}

// ClassifyDiff buckets a peer price difference (in percent) into positive,
// negative, or neutral.
func ClassifyDiff(diffPct float64) string {
	switch {
	case diffPct > diffDeadBandPct:
		return DiffPositive
	case diffPct < -diffDeadBandPct:
		return DiffNegative
	default:
		return DiffNeutral
	}
}

// Aggregate filters and sorts one batch of snapshots and enriches each
// surviving row with peer comparison data and cross-exchange totals.
func Aggregate(snapshots []domain.TickerSnapshot, idx *SymbolIndex, filters Filters, order Sort) []domain.AggregatedRow {
	filtered := applyFilters(snapshots, idx, filters)
	sortSnapshots(filtered, order)

	rows := make([]domain.AggregatedRow, 0, len(filtered))
	for _, s := range filtered {
		rows = append(rows, buildRow(s, idx))
	}
	return rows
}

// BuildRow enriches a single snapshot. Exposed for callers that already
// hold a filtered row (e.g. the depth prefetcher).
func BuildRow(s domain.TickerSnapshot, idx *SymbolIndex) domain.AggregatedRow {
	return buildRow(s, idx)
}

func buildRow(s domain.TickerSnapshot, idx *SymbolIndex) domain.AggregatedRow {
	peerSnaps := idx.PeersOf(s)
	peers := make([]domain.PeerEntry, 0, len(peerSnaps))
	for _, p := range peerSnaps {
		entry := domain.PeerEntry{
			Exchange:    p.Exchange,
			Symbol:      p.Symbol,
			Price:       p.Price,
			Turnover24h: p.Turnover24h,
		}
		if s.Price != nil && *s.Price != 0 && p.Price != nil {
			diff := (*p.Price - *s.Price) / *s.Price * 100
			entry.PriceDiffPct = &diff
			entry.DiffClass = ClassifyDiff(diff)
		}
		peers = append(peers, entry)
	}

	// Present best-priced peers first.
	sort.SliceStable(peers, func(i, j int) bool {
		return domain.FloatOrZero(peers[i].Price) > domain.FloatOrZero(peers[j].Price)
	})

	return domain.AggregatedRow{
		TickerSnapshot: s,
		Peers:          peers,
		ExchangeCount:  idx.ExchangeCount(s.Symbol),
		TotalVolume:    idx.TotalVolume(s.Symbol),
	}
}

func applyFilters(snapshots []domain.TickerSnapshot, idx *SymbolIndex, f Filters) []domain.TickerSnapshot {
	exchange := strings.ToUpper(strings.TrimSpace(f.Exchange))
	search := strings.ToLower(strings.TrimSpace(f.Search))

	out := make([]domain.TickerSnapshot, 0, len(snapshots))
	for _, s := range snapshots {
		if exchange != "" && exchange != "ALL" && s.Exchange != exchange {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(s.Symbol), search) &&
			!strings.Contains(strings.ToLower(s.BaseCurrency), search) {
			continue
		}
		if f.MultiExchangeOnly && idx.ExchangeCount(s.Symbol) <= 1 {
			continue
		}
		if !matchesList(s, f.List) {
			continue
		}
		out = append(out, s)
	}
	return out
}

func matchesList(s domain.TickerSnapshot, lf ListFilter) bool {
	switch lf {
	case ListFilterWhitelist:
		return s.Whitelisted
	case ListFilterBlacklist:
		return s.Blacklisted
	case ListFilterNone:
		return !s.Whitelisted && !s.Blacklisted
	default:
		return true
	}
}

func sortSnapshots(snapshots []domain.TickerSnapshot, order Sort) {
	var less func(a, b domain.TickerSnapshot) bool

	switch order.Column {
	case SortPrice:
		less = func(a, b domain.TickerSnapshot) bool {
			return domain.FloatOrZero(a.Price) < domain.FloatOrZero(b.Price)
		}
	case SortVolume:
		less = func(a, b domain.TickerSnapshot) bool {
			return domain.FloatOrZero(a.Turnover24h) < domain.FloatOrZero(b.Turnover24h)
		}
	case SortChange:
		less = func(a, b domain.TickerSnapshot) bool {
			return domain.FloatOrZero(a.Change24h) < domain.FloatOrZero(b.Change24h)
		}
	default: // SortSymbol
		less = func(a, b domain.TickerSnapshot) bool {
			return a.Symbol < b.Symbol
		}
	}

	sort.SliceStable(snapshots, func(i, j int) bool {
		if order.Descending {
			return less(snapshots[j], snapshots[i])
		}
		return less(snapshots[i], snapshots[j])
	})
}
