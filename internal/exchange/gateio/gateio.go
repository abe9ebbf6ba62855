// Package gateio implements the exchange adapter for Gate.io's v4 spot API.
package gateio

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
	name    = "GATEIO"
	baseURL = "https://api.gateio.ws/api/v4"
)

// Adapter is the Gate.io REST adapter.
type Adapter struct {
	client *exchange.Client
}

// New creates the Gate.io adapter.
func New() *Adapter {
	return &Adapter{client: exchange.NewClient(baseURL, 10, 5)}
}

// Name returns the exchange identifier.
func (a *Adapter) Name() domain.Exchange { return name }

type tickerItem struct {
	CurrencyPair     string `json:"currency_pair"`
	Last             string `json:"last"`
	BaseVolume       string `json:"base_volume"`
	QuoteVolume      string `json:"quote_volume"`
	High24h          string `json:"high_24h"`
	Low24h           string `json:"low_24h"`
	ChangePercentage string `json:"change_percentage"`
}

// FetchTickers returns every USDT pair Gate.io quotes.
func (a *Adapter) FetchTickers(ctx context.Context) ([]domain.TickerSnapshot, error) {
	var items []tickerItem
	if err := a.client.GetJSON(ctx, "/spot/tickers", nil, &items); err != nil {
		return nil, fmt.Errorf("gateio: fetch tickers: %w", err)
	}

	now := time.Now().UTC()
	tickers := make([]domain.TickerSnapshot, 0, len(items))
	for _, item := range items {
		if !strings.HasSuffix(item.CurrencyPair, "_USDT") {
			continue
		}
		base := strings.TrimSuffix(item.CurrencyPair, "_USDT")
		tickers = append(tickers, domain.TickerSnapshot{
			Exchange:      name,
			Symbol:        base + "/USDT",
			BaseCurrency:  base,
			QuoteCurrency: "USDT",
			Price:         exchange.ParseFloat(item.Last),
			Volume24h:     exchange.ParseFloat(item.BaseVolume),
			High24h:       exchange.ParseFloat(item.High24h),
			Low24h:        exchange.ParseFloat(item.Low24h),
			Change24h:     exchange.ParseFloat(item.ChangePercentage),
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
		Asks []domain.BookLevel `json:"asks"`
		Bids []domain.BookLevel `json:"bids"`
	}
	query := url.Values{
		"currency_pair": {apiSymbol(symbol)},
		"limit":         {fmt.Sprint(limit)},
	}
	if err := a.client.GetJSON(ctx, "/spot/order_book", query, &resp); err != nil {
		return domain.RawOrderBook{}, fmt.Errorf("gateio: fetch orderbook %s: %w", symbol, err)
	}

	return domain.RawOrderBook{
		Exchange: name,
		Symbol:   symbol,
		Asks:     resp.Asks,
		Bids:     resp.Bids,
	}, nil
}

// apiSymbol converts "BTC/USDT" to Gate.io's "BTC_USDT".
func apiSymbol(symbol string) string {
	return strings.ReplaceAll(symbol, "/", "_")
}
