// Package domain defines the core value types shared by the engine, the
// stores, and the HTTP layer: ticker snapshots, aggregated rows, order books,
// fetch logs, and market list membership.
package domain

import "time"

// Exchange identifies one of the supported spot exchanges. Values are
// upper-case identifiers matching what the adapters report.
type Exchange = string

// TickerSnapshot is one exchange's view of one trading pair at poll time.
// Numeric fields are pointers because absence and zero are distinct: a
// missing price renders as "−" while a true zero renders as "0.00".
//
// A batch of snapshots is replaced wholesale on every poll; rows are never
// mutated in place. (exchange, symbol) is unique within a batch.
type TickerSnapshot struct {
	Exchange      Exchange `json:"exchange"`
	Symbol        string   `json:"symbol"` // canonical "BASE/QUOTE"
	BaseCurrency  string   `json:"base_currency"`
	QuoteCurrency string   `json:"quote_currency"`

	Price       *float64 `json:"price"`
	Volume24h   *float64 `json:"volume_24h"`
	High24h     *float64 `json:"high_24h"`
	Low24h      *float64 `json:"low_24h"`
	Change24h   *float64 `json:"change_24h"`   // signed percentage
	Turnover24h *float64 `json:"turnover_24h"` // quote-denominated

	Blacklisted  bool `json:"is_blacklisted"`
	Whitelisted  bool `json:"is_whitelisted"`
	WalletLocked bool `json:"is_wallet_locked"`

	FetchedAt time.Time `json:"fetched_at"`
}

// PeerEntry is a read-only projection of a peer exchange's snapshot for the
// same symbol, with the price difference against the row's own price.
type PeerEntry struct {
	Exchange    Exchange `json:"exchange"`
	Symbol      string   `json:"symbol"`
	Price       *float64 `json:"price"`
	Turnover24h *float64 `json:"turnover_24h"`

	// PriceDiffPct is (peer - own) / own * 100, nil when either price is
	// missing.
	PriceDiffPct *float64 `json:"price_diff_pct"`

	// DiffClass is "positive", "negative", or "neutral" per the ±0.01%
	// dead-band, "" when PriceDiffPct is nil.
	DiffClass string `json:"diff_class,omitempty"`
}

// AggregatedRow is the per-row view model handed to rendering: the row's own
// snapshot enriched with cross-exchange comparison data.
type AggregatedRow struct {
	TickerSnapshot

	// Peers lists every other exchange carrying the same symbol. Never
	// includes the row's own exchange.
	Peers []PeerEntry `json:"peers"`

	// ExchangeCount is 1 + len(Peers).
	ExchangeCount int `json:"exchange_count"`

	// TotalVolume sums turnover across own and all peers, missing as 0.
	TotalVolume float64 `json:"total_volume"`
}

// ExchangeStatus summarizes the most recent fetch outcome for one exchange,
// as returned by GET /api/status.
type ExchangeStatus struct {
	Status          string     `json:"status"` // "never", "success", or "error"
	LastFetch       *time.Time `json:"last_fetch"`
	PairsCount      int        `json:"pairs_count"`
	WhitelistCount  int        `json:"whitelist_count"`
	BlacklistCount  int        `json:"blacklist_count"`
	WalletLockCount int        `json:"walletlock_count"`
}

// Float returns a pointer to v. Convenience for building snapshots.
func Float(v float64) *float64 { return &v }

// FloatOrZero dereferences p, treating nil as 0.
func FloatOrZero(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}
