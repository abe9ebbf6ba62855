package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/spotdeck/spotdeck/internal/domain"
	"github.com/spotdeck/spotdeck/internal/exchange"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeTickerStore struct {
	snapshots []domain.TickerSnapshot
	err       error
}

func (f *fakeTickerStore) ReplaceForExchange(context.Context, domain.Exchange, []domain.TickerSnapshot) error {
	return nil
}

func (f *fakeTickerStore) List(context.Context) ([]domain.TickerSnapshot, error) {
	return f.snapshots, f.err
}

func (f *fakeTickerStore) CountByExchange(_ context.Context, exchange domain.Exchange) (int, error) {
	n := 0
	for _, s := range f.snapshots {
		if s.Exchange == exchange {
			n++
		}
	}
	return n, nil
}

type fakeFetchLogStore struct {
	logs []domain.FetchLog
}

func (f *fakeFetchLogStore) Insert(context.Context, domain.FetchLog) error { return nil }

func (f *fakeFetchLogStore) LastByExchange(_ context.Context, exchange domain.Exchange) (domain.FetchLog, error) {
	for i := len(f.logs) - 1; i >= 0; i-- {
		if f.logs[i].Exchange == exchange {
			return f.logs[i], nil
		}
	}
	return domain.FetchLog{}, domain.ErrNotFound
}

func (f *fakeFetchLogStore) ListRecent(_ context.Context, limit int) ([]domain.FetchLog, error) {
	if len(f.logs) > limit {
		return f.logs[:limit], nil
	}
	return f.logs, nil
}

type fakeMarketListStore struct {
	added  bool
	err    error
	counts domain.ListCounts
}

func (f *fakeMarketListStore) Toggle(context.Context, domain.Exchange, string, domain.ListType) (bool, error) {
	return f.added, f.err
}

func (f *fakeMarketListStore) MembershipFor(context.Context, domain.Exchange) (map[string]domain.ListMembership, error) {
	return nil, nil
}

func (f *fakeMarketListStore) Counts(context.Context, domain.Exchange) (domain.ListCounts, error) {
	return f.counts, nil
}

type fakePoller struct {
	pairs int
	err   error
}

func (f *fakePoller) PollExchange(context.Context, domain.Exchange) (int, error) {
	return f.pairs, f.err
}

type fakeAdapter struct {
	name domain.Exchange
	book domain.RawOrderBook
	err  error
}

func (f *fakeAdapter) Name() domain.Exchange { return f.name }

func (f *fakeAdapter) FetchTickers(context.Context) ([]domain.TickerSnapshot, error) {
	return nil, nil
}

func (f *fakeAdapter) FetchOrderBook(context.Context, string, int) (domain.RawOrderBook, error) {
	return f.book, f.err
}

type fakeDepthCache struct {
	summary domain.DepthSummary
	err     error
}

func (f *fakeDepthCache) Set(context.Context, domain.DepthSummary, time.Duration) error { return nil }

func (f *fakeDepthCache) Get(context.Context, domain.Exchange, string) (domain.DepthSummary, error) {
	return f.summary, f.err
}

func snapshot(exchange domain.Exchange, symbol string, price float64) domain.TickerSnapshot {
	return domain.TickerSnapshot{
		Exchange:      exchange,
		Symbol:        symbol,
		BaseCurrency:  strings.TrimSuffix(symbol, "/USDT"),
		QuoteCurrency: "USDT",
		Price:         domain.Float(price),
		FetchedAt:     time.Now().UTC(),
	}
}

// mux builds a request router matching the production route patterns so path
// parameters resolve in tests.
func mux(pattern string, h http.HandlerFunc) *http.ServeMux {
	m := http.NewServeMux()
	m.HandleFunc(pattern, h)
	return m
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return body
}

func TestListTickersEnvelope(t *testing.T) {
	store := &fakeTickerStore{snapshots: []domain.TickerSnapshot{
		snapshot("LBANK", "BTC/USDT", 50000),
		snapshot("GATEIO", "BTC/USDT", 50050),
		snapshot("LBANK", "RARE/USDT", 2),
	}}
	h := NewTickerHandler(store, discard())

	rec := httptest.NewRecorder()
	h.ListTickers(rec, httptest.NewRequest(http.MethodGet, "/api/tickers", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["status"] != "success" {
		t.Errorf("status field = %v, want success", body["status"])
	}
	if body["recordsTotal"] != float64(3) {
		t.Errorf("recordsTotal = %v, want 3", body["recordsTotal"])
	}
	if body["comparablePairs"] != float64(1) {
		t.Errorf("comparablePairs = %v, want 1", body["comparablePairs"])
	}
	rows, ok := body["data"].([]any)
	if !ok || len(rows) != 3 {
		t.Fatalf("data = %v, want 3 rows", body["data"])
	}
}

func TestListTickersMultiExchangeFilter(t *testing.T) {
	store := &fakeTickerStore{snapshots: []domain.TickerSnapshot{
		snapshot("LBANK", "BTC/USDT", 50000),
		snapshot("GATEIO", "BTC/USDT", 50050),
		snapshot("LBANK", "RARE/USDT", 2),
	}}
	h := NewTickerHandler(store, discard())

	rec := httptest.NewRecorder()
	h.ListTickers(rec, httptest.NewRequest(http.MethodGet, "/api/tickers?multi_exchange=true", nil))

	body := decodeBody(t, rec)
	rows := body["data"].([]any)
	if len(rows) != 2 {
		t.Fatalf("filtered rows = %d, want 2", len(rows))
	}
}

func TestListTickersStoreError(t *testing.T) {
	h := NewTickerHandler(&fakeTickerStore{err: errors.New("boom")}, discard())

	rec := httptest.NewRecorder()
	h.ListTickers(rec, httptest.NewRequest(http.MethodGet, "/api/tickers", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if decodeBody(t, rec)["status"] != "error" {
		t.Error("error envelope expected")
	}
}

func TestTriggerFetch(t *testing.T) {
	h := NewFetchHandler(&fakePoller{pairs: 42}, discard())
	m := mux("POST /api/fetch/{exchange}", h.TriggerFetch)

	rec := httptest.NewRecorder()
	m.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/fetch/lbank", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["status"] != "success" {
		t.Errorf("status = %v, want success", body["status"])
	}
	msg, _ := body["message"].(string)
	if !strings.Contains(msg, "42") || !strings.Contains(msg, "LBANK") {
		t.Errorf("message = %q, want pair count and exchange name", msg)
	}
}

func TestTriggerFetchUnknownExchange(t *testing.T) {
	h := NewFetchHandler(&fakePoller{err: domain.ErrUnknownExchange}, discard())
	m := mux("POST /api/fetch/{exchange}", h.TriggerFetch)

	rec := httptest.NewRecorder()
	m.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/fetch/NOPE", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestGetStatusNeverFetched(t *testing.T) {
	h := NewStatusHandler(
		[]domain.Exchange{"LBANK", "GATEIO"},
		&fakeFetchLogStore{},
		&fakeTickerStore{},
		&fakeMarketListStore{},
		discard(),
	)

	rec := httptest.NewRecorder()
	h.GetStatus(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))

	body := decodeBody(t, rec)
	// The status map is served flat at the top level, keyed by lowercase
	// exchange name.
	if _, ok := body["data"]; ok {
		t.Fatalf("response nests status under data: %v", body)
	}
	lbank, ok := body["lbank"].(map[string]any)
	if !ok {
		t.Fatalf("missing lowercase lbank key in %v", body)
	}
	if lbank["status"] != "never" {
		t.Errorf("lbank status = %v, want never", lbank["status"])
	}
	if lbank["last_fetch"] != nil {
		t.Errorf("lbank last_fetch = %v, want null", lbank["last_fetch"])
	}
	if _, ok := body["gateio"]; !ok {
		t.Errorf("missing gateio key in %v", body)
	}
}

func TestGetStatusReportsLastFetch(t *testing.T) {
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	logs := &fakeFetchLogStore{logs: []domain.FetchLog{{
		Exchange:   "LBANK",
		Status:     domain.FetchStatusSuccess,
		PairsCount: 120,
		FetchedAt:  at,
	}}}
	lists := &fakeMarketListStore{counts: domain.ListCounts{Whitelist: 3, Blacklist: 1}}

	h := NewStatusHandler([]domain.Exchange{"LBANK"}, logs, &fakeTickerStore{}, lists, discard())

	rec := httptest.NewRecorder()
	h.GetStatus(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))

	lbank := decodeBody(t, rec)["lbank"].(map[string]any)
	if lbank["status"] != "success" {
		t.Errorf("status = %v, want success", lbank["status"])
	}
	if lbank["pairs_count"] != float64(120) {
		t.Errorf("pairs_count = %v, want 120", lbank["pairs_count"])
	}
	if lbank["whitelist_count"] != float64(3) {
		t.Errorf("whitelist_count = %v, want 3", lbank["whitelist_count"])
	}
}

func TestToggleList(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		added      bool
		wantCode   int
		wantAction string
	}{
		{"added", `{"exchange":"lbank","symbol":"btc/usdt","list_type":"whitelist"}`, true, http.StatusOK, "added"},
		{"removed", `{"exchange":"LBANK","symbol":"BTC/USDT","list_type":"blacklist"}`, false, http.StatusOK, "removed"},
		{"bad list type", `{"exchange":"LBANK","symbol":"BTC/USDT","list_type":"favorites"}`, false, http.StatusBadRequest, ""},
		{"missing symbol", `{"exchange":"LBANK","list_type":"whitelist"}`, false, http.StatusBadRequest, ""},
		{"invalid json", `{`, false, http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewMarketListHandler(&fakeMarketListStore{added: tt.added}, discard())

			req := httptest.NewRequest(http.MethodPost, "/api/market-list/toggle", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.ToggleList(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			if tt.wantAction != "" {
				if got := decodeBody(t, rec)["action"]; got != tt.wantAction {
					t.Errorf("action = %v, want %v", got, tt.wantAction)
				}
			}
		})
	}
}

func TestGetDepthFromCache(t *testing.T) {
	cache := &fakeDepthCache{summary: domain.DepthSummary{
		Exchange: "LBANK",
		Symbol:   "BTC/USDT",
		BestBid:  domain.Float(49990),
		BestAsk:  domain.Float(50010),
		BidDepth: 125000,
		AskDepth: 8000,
		BidTier:  domain.DepthTierHigh,
		AskTier:  domain.DepthTierLow,
		Spread:   domain.Float(0.04),
	}}
	adapter := &fakeAdapter{name: "LBANK", err: errors.New("must not be called")}
	h := NewOrderBookHandler(exchange.NewRegistry(adapter), cache, discard())

	m := mux("GET /api/depth/{exchange}/{symbol...}", h.GetDepth)
	rec := httptest.NewRecorder()
	m.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/depth/LBANK/BTC/USDT", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["best_bid"] != float64(49990) {
		t.Errorf("best_bid = %v, want 49990", body["best_bid"])
	}
	if body["bid_tier"] != "high" {
		t.Errorf("bid_tier = %v, want high", body["bid_tier"])
	}
	if _, nested := body["data"]; nested {
		t.Error("depth response must be flat, not nested under data")
	}
}

func TestGetDepthCacheMissFallsBack(t *testing.T) {
	cache := &fakeDepthCache{err: domain.ErrNotFound}
	adapter := &fakeAdapter{name: "LBANK", book: domain.RawOrderBook{
		Exchange: "LBANK",
		Symbol:   "BTC/USDT",
		Bids:     []domain.BookLevel{{Price: 49990, Amount: 1}},
		Asks:     []domain.BookLevel{{Price: 50010, Amount: 2}},
	}}
	h := NewOrderBookHandler(exchange.NewRegistry(adapter), cache, discard())

	m := mux("GET /api/depth/{exchange}/{symbol...}", h.GetDepth)
	rec := httptest.NewRecorder()
	m.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/depth/LBANK/BTC/USDT", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["best_bid"] != float64(49990) {
		t.Errorf("best_bid = %v, want 49990 from live fallback", body["best_bid"])
	}
}

func TestGetOrderBookUpstreamError(t *testing.T) {
	adapter := &fakeAdapter{name: "LBANK", err: domain.ErrUpstream}
	h := NewOrderBookHandler(exchange.NewRegistry(adapter), nil, discard())

	m := mux("GET /api/orderbook/{exchange}/{symbol...}", h.GetOrderBook)
	rec := httptest.NewRecorder()
	m.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/orderbook/LBANK/BTC/USDT", nil))

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
}

func TestGetOrderBookUnknownExchange(t *testing.T) {
	h := NewOrderBookHandler(exchange.NewRegistry(), nil, discard())

	m := mux("GET /api/orderbook/{exchange}/{symbol...}", h.GetOrderBook)
	rec := httptest.NewRecorder()
	m.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/orderbook/NOPE/BTC/USDT", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestGetOrderBookLadder(t *testing.T) {
	adapter := &fakeAdapter{name: "LBANK", book: domain.RawOrderBook{
		Exchange: "LBANK",
		Symbol:   "BTC/USDT",
		Bids:     []domain.BookLevel{{Price: 49990, Amount: 1}, {Price: 49980, Amount: 2}},
		Asks:     []domain.BookLevel{{Price: 50010, Amount: 1}, {Price: 50020, Amount: 3}},
	}}
	h := NewOrderBookHandler(exchange.NewRegistry(adapter), nil, discard())

	m := mux("GET /api/orderbook/{exchange}/{symbol...}", h.GetOrderBook)
	rec := httptest.NewRecorder()
	m.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/orderbook/LBANK/BTC/USDT?limit=5", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := decodeBody(t, rec)
	data := body["data"].(map[string]any)
	bids := data["bids"].([]any)
	asks := data["asks"].([]any)
	if len(bids) != 2 || len(asks) != 2 {
		t.Fatalf("got %d bids / %d asks, want 2 / 2", len(bids), len(asks))
	}
	// Asks are listed worst-to-best.
	topAsk := asks[0].(map[string]any)
	if topAsk["price"] != float64(50020) {
		t.Errorf("top-of-stack ask price = %v, want 50020", topAsk["price"])
	}
	if topAsk["price_display"] != "50020.00" {
		t.Errorf("price_display = %v, want 50020.00", topAsk["price_display"])
	}
	if topAsk["amount_display"] != "3.0000" {
		t.Errorf("amount_display = %v, want 3.0000", topAsk["amount_display"])
	}
}
