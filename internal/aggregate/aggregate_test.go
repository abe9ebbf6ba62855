package aggregate

import (
	"math/rand"
	"reflect"
	"testing"

	"github.com/spotdeck/spotdeck/internal/domain"
)

func snap(exchange, symbol string, price, turnover float64) domain.TickerSnapshot {
	base, _, _ := cut(symbol)
	return domain.TickerSnapshot{
		Exchange:     exchange,
		Symbol:       symbol,
		BaseCurrency: base,
		Price:        domain.Float(price),
		Turnover24h:  domain.Float(turnover),
	}
}

func cut(symbol string) (string, string, bool) {
	for i := range symbol {
		if symbol[i] == '/' {
			return symbol[:i], symbol[i+1:], true
		}
	}
	return symbol, "", false
}

func testBatch() []domain.TickerSnapshot {
	return []domain.TickerSnapshot{
		snap("LBANK", "BTC/USDT", 97000, 5_000_000),
		snap("HASHKEY", "BTC/USDT", 97100, 2_000_000),
		snap("GATEIO", "BTC/USDT", 96950, 8_000_000),
		snap("LBANK", "ETH/USDT", 3500, 1_200_000),
		snap("HASHKEY", "ETH/USDT", 3501, 900_000),
		snap("LBANK", "DOGE/USDT", 0.32, 400_000),
	}
}

func TestIndexPeersExcludeSelf(t *testing.T) {
	batch := testBatch()
	idx := BuildIndex(batch)

	for _, s := range batch {
		peers := idx.PeersOf(s)
		for _, p := range peers {
			if p.Exchange == s.Exchange {
				t.Fatalf("PeersOf(%s %s) includes own exchange", s.Exchange, s.Symbol)
			}
			if p.Symbol != s.Symbol {
				t.Fatalf("PeersOf(%s %s) returned foreign symbol %s", s.Exchange, s.Symbol, p.Symbol)
			}
		}
		if got, want := idx.ExchangeCount(s.Symbol), 1+len(peers); got != want {
			t.Errorf("ExchangeCount(%s) = %d, want %d", s.Symbol, got, want)
		}
	}
}

func TestIndexSingleExchangeSymbol(t *testing.T) {
	idx := BuildIndex(testBatch())

	if peers := idx.PeersOf(snap("LBANK", "DOGE/USDT", 0.32, 0)); len(peers) != 0 {
		t.Errorf("expected no peers for single-exchange symbol, got %d", len(peers))
	}
	if got := idx.ExchangeCount("DOGE/USDT"); got != 1 {
		t.Errorf("ExchangeCount = %d, want 1", got)
	}
	if got := idx.ExchangeCount("ABSENT/USDT"); got != 0 {
		t.Errorf("ExchangeCount of absent symbol = %d, want 0", got)
	}
}

func TestIndexTotalVolumeOrderIndependent(t *testing.T) {
	batch := testBatch()
	// Missing turnover counts as zero.
	batch = append(batch, domain.TickerSnapshot{
		Exchange: "POLONIEX", Symbol: "BTC/USDT", BaseCurrency: "BTC",
		Price: domain.Float(97050),
	})

	want := 15_000_000.0
	if got := BuildIndex(batch).TotalVolume("BTC/USDT"); got != want {
		t.Fatalf("TotalVolume = %v, want %v", got, want)
	}

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 10; i++ {
		shuffled := append([]domain.TickerSnapshot(nil), batch...)
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})
		if got := BuildIndex(shuffled).TotalVolume("BTC/USDT"); got != want {
			t.Fatalf("TotalVolume after shuffle = %v, want %v", got, want)
		}
	}
}

func TestClassifyDiffDeadBand(t *testing.T) {
	cases := []struct {
		diff float64
		want string
	}{
		{0.0099, DiffNeutral},
		{0.01, DiffNeutral},
		{0.0101, DiffPositive},
		{-0.0099, DiffNeutral},
		{-0.01, DiffNeutral},
		{-0.0101, DiffNegative},
		{0, DiffNeutral},
		{2.5, DiffPositive},
	}
	for _, tc := range cases {
		if got := ClassifyDiff(tc.diff); got != tc.want {
			t.Errorf("ClassifyDiff(%v) = %q, want %q", tc.diff, got, tc.want)
		}
	}
}

func TestAggregateRowEnrichment(t *testing.T) {
	batch := testBatch()
	idx := BuildIndex(batch)

	rows := Aggregate(batch, idx, Filters{Exchange: "LBANK", Search: "btc"}, Sort{Column: SortSymbol})
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}

	row := rows[0]
	if row.ExchangeCount != 3 {
		t.Errorf("ExchangeCount = %d, want 3", row.ExchangeCount)
	}
	if row.TotalVolume != 15_000_000 {
		t.Errorf("TotalVolume = %v, want 15000000", row.TotalVolume)
	}
	if len(row.Peers) != 2 {
		t.Fatalf("expected 2 peers, got %d", len(row.Peers))
	}
	// Peers are presented best price first.
	if row.Peers[0].Exchange != "HASHKEY" || row.Peers[1].Exchange != "GATEIO" {
		t.Errorf("peer order = %s, %s; want HASHKEY, GATEIO", row.Peers[0].Exchange, row.Peers[1].Exchange)
	}

	hashkey := row.Peers[0]
	if hashkey.PriceDiffPct == nil {
		t.Fatal("expected peer diff for HASHKEY")
	}
	// (97100 - 97000) / 97000 * 100
	if got := *hashkey.PriceDiffPct; got < 0.1030 || got > 0.1032 {
		t.Errorf("PriceDiffPct = %v, want ~0.1031", got)
	}
	if hashkey.DiffClass != DiffPositive {
		t.Errorf("DiffClass = %q, want positive", hashkey.DiffClass)
	}
}

func TestAggregateUnpricedRowHasNoDiffs(t *testing.T) {
	batch := []domain.TickerSnapshot{
		{Exchange: "LBANK", Symbol: "NEW/USDT", BaseCurrency: "NEW"},
		snap("HASHKEY", "NEW/USDT", 1.23, 1000),
	}
	idx := BuildIndex(batch)

	rows := Aggregate(batch, idx, Filters{Exchange: "LBANK"}, Sort{})
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if len(rows[0].Peers) != 1 {
		t.Fatalf("expected 1 peer, got %d", len(rows[0].Peers))
	}
	if rows[0].Peers[0].PriceDiffPct != nil {
		t.Error("unpriced row must not produce a peer diff")
	}
	if rows[0].Peers[0].DiffClass != "" {
		t.Errorf("DiffClass = %q, want empty", rows[0].Peers[0].DiffClass)
	}
}

func TestAggregateFilters(t *testing.T) {
	batch := testBatch()
	batch[5].Whitelisted = true // LBANK DOGE/USDT
	batch[0].Blacklisted = true // LBANK BTC/USDT
	idx := BuildIndex(batch)

	cases := []struct {
		name    string
		filters Filters
		want    int
	}{
		{"all", Filters{}, 6},
		{"exchange keyword all", Filters{Exchange: "all"}, 6},
		{"exchange", Filters{Exchange: "HASHKEY"}, 2},
		{"exchange case insensitive", Filters{Exchange: "hashkey"}, 2},
		{"search symbol", Filters{Search: "eth"}, 2},
		{"search base currency", Filters{Search: "DOGE"}, 1},
		{"multi exchange only", Filters{MultiExchangeOnly: true}, 5},
		{"whitelist", Filters{List: ListFilterWhitelist}, 1},
		{"blacklist", Filters{List: ListFilterBlacklist}, 1},
		{"no list", Filters{List: ListFilterNone}, 4},
		{"combined", Filters{Exchange: "LBANK", MultiExchangeOnly: true}, 2},
	}
	for _, tc := range cases {
		if got := len(Aggregate(batch, idx, tc.filters, Sort{})); got != tc.want {
			t.Errorf("%s: got %d rows, want %d", tc.name, got, tc.want)
		}
	}
}

func TestSortStability(t *testing.T) {
	// Three rows share a turnover so their relative order is the tie-break.
	batch := []domain.TickerSnapshot{
		snap("LBANK", "AAA/USDT", 1, 100),
		snap("LBANK", "BBB/USDT", 2, 100),
		snap("LBANK", "CCC/USDT", 3, 100),
		snap("LBANK", "DDD/USDT", 4, 50),
	}
	idx := BuildIndex(batch)
	order := Sort{Column: SortVolume}

	once := Aggregate(batch, idx, Filters{}, order)
	twice := Aggregate(batch, idx, Filters{}, order)
	if !reflect.DeepEqual(once, twice) {
		t.Fatal("repeated sort changed row order")
	}

	wantAsc := []string{"DDD/USDT", "AAA/USDT", "BBB/USDT", "CCC/USDT"}
	for i, row := range once {
		if row.Symbol != wantAsc[i] {
			t.Fatalf("ascending order = %v, want %v at %d", row.Symbol, wantAsc[i], i)
		}
	}

	// Descending reverses only rows with distinct keys; the tied group
	// keeps its prior relative order.
	desc := Aggregate(batch, idx, Filters{}, Sort{Column: SortVolume, Descending: true})
	wantDesc := []string{"AAA/USDT", "BBB/USDT", "CCC/USDT", "DDD/USDT"}
	for i, row := range desc {
		if row.Symbol != wantDesc[i] {
			t.Fatalf("descending order = %v, want %v at %d", row.Symbol, wantDesc[i], i)
		}
	}
}

func TestSortMissingNumericAsZero(t *testing.T) {
	batch := []domain.TickerSnapshot{
		snap("LBANK", "AAA/USDT", 5, 0),
		{Exchange: "LBANK", Symbol: "BBB/USDT", BaseCurrency: "BBB"},
		snap("LBANK", "CCC/USDT", -1, 0), // sanity: below-zero sorts before missing
	}
	idx := BuildIndex(batch)

	rows := Aggregate(batch, idx, Filters{}, Sort{Column: SortPrice})
	want := []string{"CCC/USDT", "BBB/USDT", "AAA/USDT"}
	for i, row := range rows {
		if row.Symbol != want[i] {
			t.Fatalf("order = %v, want %v at %d", row.Symbol, want[i], i)
		}
	}
}
