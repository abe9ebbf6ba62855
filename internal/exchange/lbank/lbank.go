// Package lbank implements the exchange adapter for LBANK's v1 spot API.
package lbank

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spotdeck/spotdeck/internal/domain"
	"github.com/spotdeck/spotdeck/internal/exchange"
)

const (
	name    = "LBANK"
	baseURL = "https://api.lbkex.com"
)

// Adapter is the LBANK REST adapter.
type Adapter struct {
	client *exchange.Client
}

// New creates the LBANK adapter.
func New() *Adapter {
	return &Adapter{client: exchange.NewClient(baseURL, 5, 3)}
}

// Name returns the exchange identifier.
func (a *Adapter) Name() domain.Exchange { return name }

// tickerItem is one entry of GET /v1/ticker.do?symbol=all. LBANK encodes
// numerics as JSON numbers.
type tickerItem struct {
	Symbol string `json:"symbol"`
	Ticker struct {
		Latest   *float64 `json:"latest"`
		Vol      *float64 `json:"vol"`
		High     *float64 `json:"high"`
		Low      *float64 `json:"low"`
		Change   *float64 `json:"change"`
		Turnover *float64 `json:"turnover"`
	} `json:"ticker"`
}

// FetchTickers returns every USDT pair LBANK quotes.
func (a *Adapter) FetchTickers(ctx context.Context) ([]domain.TickerSnapshot, error) {
	var items []tickerItem
	query := url.Values{"symbol": {"all"}}
	if err := a.client.GetJSON(ctx, "/v1/ticker.do", query, &items); err != nil {
		return nil, fmt.Errorf("lbank: fetch tickers: %w", err)
	}

	now := time.Now().UTC()
	tickers := make([]domain.TickerSnapshot, 0, len(items))
	for _, item := range items {
		if !strings.HasSuffix(item.Symbol, "_usdt") {
			continue
		}
		base := strings.ToUpper(strings.TrimSuffix(item.Symbol, "_usdt"))
		tickers = append(tickers, domain.TickerSnapshot{
			Exchange:      name,
			Symbol:        base + "/USDT",
			BaseCurrency:  base,
			QuoteCurrency: "USDT",
			Price:         item.Ticker.Latest,
			Volume24h:     item.Ticker.Vol,
			High24h:       item.Ticker.High,
			Low24h:        item.Ticker.Low,
			Change24h:     item.Ticker.Change,
			Turnover24h:   item.Ticker.Turnover,
			FetchedAt:     now,
		})
	}
	return tickers, nil
}

// FetchOrderBook returns the current depth for one symbol.
func (a *Adapter) FetchOrderBook(ctx context.Context, symbol string, limit int) (domain.RawOrderBook, error) {
	if limit <= 0 {
		limit = 20
	}

	var resp struct {
		Asks []domain.BookLevel `json:"asks"`
		Bids []domain.BookLevel `json:"bids"`
	}
	query := url.Values{
		"symbol": {apiSymbol(symbol)},
		"size":   {fmt.Sprint(limit)},
	}
	if err := a.client.GetJSON(ctx, "/v1/depth.do", query, &resp); err != nil {
		return domain.RawOrderBook{}, fmt.Errorf("lbank: fetch orderbook %s: %w", symbol, err)
	}

	return domain.RawOrderBook{
		Exchange: name,
		Symbol:   symbol,
		Asks:     resp.Asks,
		Bids:     resp.Bids,
	}, nil
}

// apiSymbol converts "BTC/USDT" to LBANK's "btc_usdt".
func apiSymbol(symbol string) string {
	return strings.ToLower(strings.ReplaceAll(symbol, "/", "_"))
}
