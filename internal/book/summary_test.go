package book

import (
	"testing"

	"github.com/spotdeck/spotdeck/internal/domain"
)

func TestSummarize(t *testing.T) {
	raw := domain.RawOrderBook{
		Exchange: "GATEIO",
		Symbol:   "ETH/USDT",
		Asks:     []domain.BookLevel{lvl(3501, 2), lvl(3502, 1)},
		Bids:     []domain.BookLevel{lvl(3500, 3), lvl(3499, 1)},
	}

	s := Summarize(raw, CompactDepth)

	if s.BestBid == nil || *s.BestBid != 3500 {
		t.Fatalf("BestBid = %v, want 3500", s.BestBid)
	}
	if s.BestAsk == nil || *s.BestAsk != 3501 {
		t.Fatalf("BestAsk = %v, want 3501", s.BestAsk)
	}
	approx(t, s.BidDepth, 3500*3+3499, "bid depth")
	approx(t, s.AskDepth, 3501*2+3502, "ask depth")
	if s.BidTier != domain.DepthTierMedium || s.AskTier != domain.DepthTierMedium {
		t.Errorf("tiers = %s/%s, want medium/medium", s.BidTier, s.AskTier)
	}
	if s.Spread == nil {
		t.Fatal("expected a spread")
	}
}

func TestSummarizeOneSided(t *testing.T) {
	s := Summarize(domain.RawOrderBook{
		Bids: []domain.BookLevel{lvl(10, 5)},
	}, CompactDepth)

	if s.Spread != nil {
		t.Error("one-sided summary must not have a spread")
	}
	if s.AskDepth != 0 {
		t.Errorf("AskDepth = %v, want 0", s.AskDepth)
	}
	if s.AskTier != domain.DepthTierMinimal {
		t.Errorf("AskTier = %s, want minimal", s.AskTier)
	}
	if s.BidTier != domain.DepthTierMinimal {
		t.Errorf("BidTier = %s, want minimal", s.BidTier)
	}
}

func TestTierThresholds(t *testing.T) {
	cases := []struct {
		notional float64
		want     domain.DepthTier
	}{
		{100000, domain.DepthTierHigh},
		{99999.99, domain.DepthTierMedium},
		{10000, domain.DepthTierMedium},
		{9999.99, domain.DepthTierLow},
		{1000, domain.DepthTierLow},
		{999.99, domain.DepthTierMinimal},
		{0, domain.DepthTierMinimal},
	}
	for _, tc := range cases {
		if got := Tier(tc.notional); got != tc.want {
			t.Errorf("Tier(%v) = %s, want %s", tc.notional, got, tc.want)
		}
	}
}
