// Package poloniex implements the exchange adapter for Poloniex's v2 API.
// Poloniex reports the daily change as a fraction (0.05 for 5%), so it is
// rescaled to a percentage during normalization.
package poloniex

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
	name    = "POLONIEX"
	baseURL = "https://api.poloniex.com"
)

// Adapter is the Poloniex REST adapter.
type Adapter struct {
	client *exchange.Client
}

// New creates the Poloniex adapter.
func New() *Adapter {
	return &Adapter{client: exchange.NewClient(baseURL, 5, 3)}
}

// Name returns the exchange identifier.
func (a *Adapter) Name() domain.Exchange { return name }

type tickerItem struct {
	Symbol      string `json:"symbol"`
	Close       string `json:"close"`
	Quantity    string `json:"quantity"`
	Amount      string `json:"amount"`
	High        string `json:"high"`
	Low         string `json:"low"`
	DailyChange string `json:"dailyChange"`
}

// FetchTickers returns every USDT pair Poloniex quotes.
func (a *Adapter) FetchTickers(ctx context.Context) ([]domain.TickerSnapshot, error) {
	var items []tickerItem
	if err := a.client.GetJSON(ctx, "/markets/ticker24h", nil, &items); err != nil {
		return nil, fmt.Errorf("poloniex: fetch tickers: %w", err)
	}

	now := time.Now().UTC()
	tickers := make([]domain.TickerSnapshot, 0, len(items))
	for _, item := range items {
		if !strings.HasSuffix(item.Symbol, "_USDT") {
			continue
		}
		base := strings.TrimSuffix(item.Symbol, "_USDT")
		tickers = append(tickers, domain.TickerSnapshot{
			Exchange:      name,
			Symbol:        base + "/USDT",
			BaseCurrency:  base,
			QuoteCurrency: "USDT",
			Price:         exchange.ParseFloat(item.Close),
			Volume24h:     exchange.ParseFloat(item.Quantity),
			High24h:       exchange.ParseFloat(item.High),
			Low24h:        exchange.ParseFloat(item.Low),
			Change24h:     exchange.ParseScaled(item.DailyChange, 100),
			Turnover24h:   exchange.ParseFloat(item.Amount),
			FetchedAt:     now,
		})
	}
	return tickers, nil
}

// FetchOrderBook returns the current depth for one symbol. Poloniex may
// deliver levels as tuples or as {"price","quantity"} objects depending on
// endpoint version; both decode through domain.BookLevel.
func (a *Adapter) FetchOrderBook(ctx context.Context, symbol string, limit int) (domain.RawOrderBook, error) {
	if limit <= 0 {
		limit = 20
	}

	var resp struct {
		Asks []domain.BookLevel `json:"asks"`
		Bids []domain.BookLevel `json:"bids"`
	}
	path := "/markets/" + url.PathEscape(apiSymbol(symbol)) + "/orderBook"
	query := url.Values{"limit": {fmt.Sprint(limit)}}
	if err := a.client.GetJSON(ctx, path, query, &resp); err != nil {
		return domain.RawOrderBook{}, fmt.Errorf("poloniex: fetch orderbook %s: %w", symbol, err)
	}

	return domain.RawOrderBook{
		Exchange: name,
		Symbol:   symbol,
		Asks:     resp.Asks,
		Bids:     resp.Bids,
	}, nil
}

// apiSymbol converts "BTC/USDT" to Poloniex's "BTC_USDT".
func apiSymbol(symbol string) string {
	return strings.ReplaceAll(symbol, "/", "_")
}
