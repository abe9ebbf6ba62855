package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// BookLevel is a single price+amount entry on one side of an order book.
//
// Exchanges deliver levels either as two-element tuples ([price, amount],
// numbers or numeric strings) or as objects ({"price": .., "amount": ..}).
// UnmarshalJSON accepts both so the analyzer never has to care.
type BookLevel struct {
	Price  float64 `json:"price"`
	Amount float64 `json:"amount"`
}

// UnmarshalJSON decodes a level from tuple or object form.
func (l *BookLevel) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '[' {
		var tuple []json.Number
		if err := json.Unmarshal(data, &tuple); err != nil {
			// Mixed-type tuples (e.g. string price, float amount).
			var loose []any
			if err2 := json.Unmarshal(data, &loose); err2 != nil {
				return fmt.Errorf("domain: book level tuple: %w", err)
			}
			if len(loose) < 2 {
				return fmt.Errorf("domain: book level tuple has %d elements", len(loose))
			}
			p, err := looseFloat(loose[0])
			if err != nil {
				return fmt.Errorf("domain: book level price: %w", err)
			}
			a, err := looseFloat(loose[1])
			if err != nil {
				return fmt.Errorf("domain: book level amount: %w", err)
			}
			l.Price, l.Amount = p, a
			return nil
		}
		if len(tuple) < 2 {
			return fmt.Errorf("domain: book level tuple has %d elements", len(tuple))
		}
		p, err := tuple[0].Float64()
		if err != nil {
			return fmt.Errorf("domain: book level price: %w", err)
		}
		a, err := tuple[1].Float64()
		if err != nil {
			return fmt.Errorf("domain: book level amount: %w", err)
		}
		l.Price, l.Amount = p, a
		return nil
	}

	var obj struct {
		Price    any `json:"price"`
		Amount   any `json:"amount"`
		Quantity any `json:"quantity"` // some venues name the size field differently
		Size     any `json:"size"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("domain: book level object: %w", err)
	}
	amount := obj.Amount
	if amount == nil {
		amount = obj.Quantity
	}
	if amount == nil {
		amount = obj.Size
	}
	p, err := looseFloat(obj.Price)
	if err != nil {
		return fmt.Errorf("domain: book level price: %w", err)
	}
	a, err := looseFloat(amount)
	if err != nil {
		return fmt.Errorf("domain: book level amount: %w", err)
	}
	l.Price, l.Amount = p, a
	return nil
}

func looseFloat(v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case string:
		return strconv.ParseFloat(x, 64)
	case json.Number:
		return x.Float64()
	default:
		return 0, fmt.Errorf("unsupported type %T", v)
	}
}

// RawOrderBook is an order book snapshot as delivered by an exchange for one
// symbol. No ordering guarantee is assumed from the source.
type RawOrderBook struct {
	Exchange Exchange    `json:"exchange"`
	Symbol   string      `json:"symbol"`
	Bids     []BookLevel `json:"bids"`
	Asks     []BookLevel `json:"asks"`
}

// LadderLevel is one display-ready row of a depth ladder.
type LadderLevel struct {
	Price  float64 `json:"price"`
	Amount float64 `json:"amount"`

	// Cumulative is the running notional (price*amount) accumulated from
	// the side's best price outward to this level.
	Cumulative float64 `json:"cumulative"`
}

// DepthLadder is the bounded, display-ready reduction of a raw book.
//
// Asks are listed worst-to-best so the best ask sits adjacent to the spread
// divider at the bottom of the ask stack; bids are listed best-to-worst so
// the best bid sits at the top, adjacent to the divider.
type DepthLadder struct {
	Exchange Exchange      `json:"exchange"`
	Symbol   string        `json:"symbol"`
	Asks     []LadderLevel `json:"asks"`
	Bids     []LadderLevel `json:"bids"`

	BestBid *float64 `json:"best_bid"`
	BestAsk *float64 `json:"best_ask"`

	// SpreadPct is (best_ask - best_bid) / best_ask * 100, nil when either
	// side is empty.
	SpreadPct *float64 `json:"spread_pct"`
}

// DepthTier buckets a notional depth value for display styling.
type DepthTier string

const (
	DepthTierHigh    DepthTier = "high"    // >= 100000
	DepthTierMedium  DepthTier = "medium"  // >= 10000
	DepthTierLow     DepthTier = "low"     // >= 1000
	DepthTierMinimal DepthTier = "minimal"
)

// DepthSummary is the compact top-of-book indicator served inline per row.
type DepthSummary struct {
	Exchange Exchange `json:"exchange"`
	Symbol   string   `json:"symbol"`

	BestBid *float64 `json:"best_bid"`
	BestAsk *float64 `json:"best_ask"`

	// BidDepth / AskDepth are the total notional within the displayed
	// best-price neighborhood of each side.
	BidDepth float64 `json:"bid_depth"`
	AskDepth float64 `json:"ask_depth"`

	BidTier DepthTier `json:"bid_tier"`
	AskTier DepthTier `json:"ask_tier"`

	Spread *float64 `json:"spread"`
}
