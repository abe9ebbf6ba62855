// Package hashkey implements the exchange adapter for HashKey Global's
// quote API. HashKey encodes all numerics as strings and uses single-letter
// field names on the 24hr ticker endpoint.
package hashkey

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
	name    = "HASHKEY"
	baseURL = "https://api-glb.hashkey.com"
)

// Adapter is the HashKey REST adapter.
type Adapter struct {
	client *exchange.Client
}

// New creates the HashKey adapter.
func New() *Adapter {
	return &Adapter{client: exchange.NewClient(baseURL, 5, 3)}
}

// Name returns the exchange identifier.
func (a *Adapter) Name() domain.Exchange { return name }

type tickerItem struct {
	Symbol      string `json:"s"`
	Open        string `json:"o"`
	Close       string `json:"c"`
	High        string `json:"h"`
	Low         string `json:"l"`
	Volume      string `json:"v"`
	QuoteVolume string `json:"qv"`
}

// FetchTickers returns every USDT pair HashKey quotes. The 24h change is
// derived from open/close because the endpoint reports no percentage.
func (a *Adapter) FetchTickers(ctx context.Context) ([]domain.TickerSnapshot, error) {
	var items []tickerItem
	if err := a.client.GetJSON(ctx, "/quote/v1/ticker/24hr", nil, &items); err != nil {
		return nil, fmt.Errorf("hashkey: fetch tickers: %w", err)
	}

	now := time.Now().UTC()
	tickers := make([]domain.TickerSnapshot, 0, len(items))
	for _, item := range items {
		if !strings.HasSuffix(item.Symbol, "USDT") {
			continue
		}
		base := strings.TrimSuffix(item.Symbol, "USDT")

		open := exchange.ParseFloat(item.Open)
		price := exchange.ParseFloat(item.Close)

		var change *float64
		if open != nil && price != nil && *open > 0 {
			c := (*price - *open) / *open * 100
			change = &c
		}

		tickers = append(tickers, domain.TickerSnapshot{
			Exchange:      name,
			Symbol:        base + "/USDT",
			BaseCurrency:  base,
			QuoteCurrency: "USDT",
			Price:         price,
			Volume24h:     exchange.ParseFloat(item.Volume),
			High24h:       exchange.ParseFloat(item.High),
			Low24h:        exchange.ParseFloat(item.Low),
			Change24h:     change,
			Turnover24h:   exchange.ParseFloat(item.QuoteVolume),
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
		Bids []domain.BookLevel `json:"b"`
		Asks []domain.BookLevel `json:"a"`
	}
	query := url.Values{
		"symbol": {apiSymbol(symbol)},
		"limit":  {fmt.Sprint(limit)},
	}
	if err := a.client.GetJSON(ctx, "/quote/v1/depth", query, &resp); err != nil {
		return domain.RawOrderBook{}, fmt.Errorf("hashkey: fetch orderbook %s: %w", symbol, err)
	}

	return domain.RawOrderBook{
		Exchange: name,
		Symbol:   symbol,
		Asks:     resp.Asks,
		Bids:     resp.Bids,
	}, nil
}

// apiSymbol converts "BTC/USDT" to HashKey's "BTCUSDT".
func apiSymbol(symbol string) string {
	return strings.ReplaceAll(symbol, "/", "")
}
