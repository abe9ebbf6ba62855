package book

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/spotdeck/spotdeck/internal/domain"
)

func lvl(price, amount float64) domain.BookLevel {
	return domain.BookLevel{Price: price, Amount: amount}
}

func approx(t *testing.T, got, want float64, what string) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("%s = %v, want %v", what, got, want)
	}
}

func TestAnalyzeSortsAndReversesAsks(t *testing.T) {
	raw := domain.RawOrderBook{
		Exchange: "LBANK",
		Symbol:   "BTC/USDT",
		Asks:     []domain.BookLevel{lvl(100, 1), lvl(98, 1), lvl(99, 1)},
		Bids:     []domain.BookLevel{lvl(95, 2), lvl(97, 1), lvl(96, 1)},
	}

	ladder := Analyze(raw, 3)

	if ladder.BestAsk == nil || *ladder.BestAsk != 98 {
		t.Fatalf("BestAsk = %v, want 98", ladder.BestAsk)
	}
	if ladder.BestBid == nil || *ladder.BestBid != 97 {
		t.Fatalf("BestBid = %v, want 97", ladder.BestBid)
	}

	// Asks display worst-to-best so the best ask borders the spread.
	wantAskPrices := []float64{100, 99, 98}
	wantAskCums := []float64{98 + 99 + 100, 98 + 99, 98}
	for i, l := range ladder.Asks {
		if l.Price != wantAskPrices[i] {
			t.Errorf("ask[%d].Price = %v, want %v", i, l.Price, wantAskPrices[i])
		}
		approx(t, l.Cumulative, wantAskCums[i], "ask cumulative")
	}

	// Bids display best-to-worst.
	wantBidPrices := []float64{97, 96, 95}
	wantBidCums := []float64{97, 97 + 96, 97 + 96 + 95*2}
	for i, l := range ladder.Bids {
		if l.Price != wantBidPrices[i] {
			t.Errorf("bid[%d].Price = %v, want %v", i, l.Price, wantBidPrices[i])
		}
		approx(t, l.Cumulative, wantBidCums[i], "bid cumulative")
	}

	if ladder.SpreadPct == nil {
		t.Fatal("expected a spread")
	}
	// (98 - 97) / 98 * 100
	approx(t, *ladder.SpreadPct, 100.0/98, "spread pct")
}

func TestAnalyzeSpreadFormula(t *testing.T) {
	ladder := Analyze(domain.RawOrderBook{
		Asks: []domain.BookLevel{lvl(100, 1)},
		Bids: []domain.BookLevel{lvl(99, 1)},
	}, CompactDepth)

	if ladder.SpreadPct == nil {
		t.Fatal("expected a spread")
	}
	approx(t, *ladder.SpreadPct, 1.0, "spread pct")
}

func TestAnalyzeTruncatesToDepth(t *testing.T) {
	var raw domain.RawOrderBook
	for p := 1.0; p <= 30; p++ {
		raw.Asks = append(raw.Asks, lvl(100+p, 1))
		raw.Bids = append(raw.Bids, lvl(100-p, 1))
	}

	ladder := Analyze(raw, CompactDepth)
	if len(ladder.Asks) != CompactDepth || len(ladder.Bids) != CompactDepth {
		t.Fatalf("sides = %d/%d levels, want %d", len(ladder.Asks), len(ladder.Bids), CompactDepth)
	}
}

func TestAnalyzeClampsShallowBook(t *testing.T) {
	ladder := Analyze(domain.RawOrderBook{
		Asks: []domain.BookLevel{lvl(101, 1), lvl(102, 1)},
		Bids: []domain.BookLevel{lvl(99, 1)},
	}, DetailDepth)

	if len(ladder.Asks) != 2 || len(ladder.Bids) != 1 {
		t.Fatalf("sides = %d/%d levels, want 2/1", len(ladder.Asks), len(ladder.Bids))
	}
}

func TestAnalyzeEmptyAndOneSidedBooks(t *testing.T) {
	empty := Analyze(domain.RawOrderBook{}, CompactDepth)
	if len(empty.Asks) != 0 || len(empty.Bids) != 0 {
		t.Fatal("empty book must yield empty ladders")
	}
	if empty.SpreadPct != nil {
		t.Error("empty book must not have a spread")
	}

	oneSided := Analyze(domain.RawOrderBook{
		Bids: []domain.BookLevel{lvl(99, 1)},
	}, CompactDepth)
	if oneSided.SpreadPct != nil {
		t.Error("one-sided book must not have a spread")
	}
	if oneSided.BestBid == nil || *oneSided.BestBid != 99 {
		t.Errorf("BestBid = %v, want 99", oneSided.BestBid)
	}
	if oneSided.BestAsk != nil {
		t.Errorf("BestAsk = %v, want nil", oneSided.BestAsk)
	}
}

func TestAnalyzeDropsDegenerateLevels(t *testing.T) {
	ladder := Analyze(domain.RawOrderBook{
		Asks: []domain.BookLevel{lvl(0, 5), lvl(101, 0), lvl(102, 1)},
	}, CompactDepth)

	if len(ladder.Asks) != 1 || ladder.Asks[0].Price != 102 {
		t.Fatalf("expected only the 102 level to survive, got %+v", ladder.Asks)
	}
}

func TestBookLevelUnmarshalForms(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want domain.BookLevel
	}{
		{"number tuple", `[97.5, 2.25]`, lvl(97.5, 2.25)},
		{"string tuple", `["97.5", "2.25"]`, lvl(97.5, 2.25)},
		{"mixed tuple", `["97.5", 2.25]`, lvl(97.5, 2.25)},
		{"object", `{"price": 97.5, "amount": 2.25}`, lvl(97.5, 2.25)},
		{"string object", `{"price": "97.5", "amount": "2.25"}`, lvl(97.5, 2.25)},
	}
	for _, tc := range cases {
		var got domain.BookLevel
		if err := json.Unmarshal([]byte(tc.in), &got); err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if got != tc.want {
			t.Errorf("%s: got %+v, want %+v", tc.name, got, tc.want)
		}
	}

	var bad domain.BookLevel
	if err := json.Unmarshal([]byte(`[97.5]`), &bad); err == nil {
		t.Error("expected error for one-element tuple")
	}
}
