package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/spotdeck/spotdeck/internal/book"
	"github.com/spotdeck/spotdeck/internal/domain"
	"github.com/spotdeck/spotdeck/internal/exchange"
	"github.com/spotdeck/spotdeck/internal/format"
)

// OrderBookHandler serves depth ladders and compact depth summaries.
type OrderBookHandler struct {
	registry *exchange.Registry
	depths   domain.DepthCache
	logger   *slog.Logger
}

// NewOrderBookHandler creates an OrderBookHandler. The depth cache may be
// nil, in which case every summary request hits the upstream exchange.
func NewOrderBookHandler(registry *exchange.Registry, depths domain.DepthCache, logger *slog.Logger) *OrderBookHandler {
	return &OrderBookHandler{registry: registry, depths: depths, logger: logger}
}

// GetOrderBook fetches a live order book and returns the display-ready
// depth ladder.
// GET /api/orderbook/{exchange}/{symbol...}?limit=
func (h *OrderBookHandler) GetOrderBook(w http.ResponseWriter, r *http.Request) {
	name, symbol, ok := h.bookParams(w, r)
	if !ok {
		return
	}

	limit := book.DetailDepth
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	adapter, err := h.registry.Get(name)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	raw, err := adapter.FetchOrderBook(r.Context(), symbol, limit)
	if err != nil {
		h.upstreamError(w, r, name, symbol, err)
		return
	}

	writeSuccess(w, decorateLadder(book.Analyze(raw, limit)))
}

// ladderView pairs the numeric ladder with pre-rendered display strings so
// clients do not reimplement the magnitude precision rules.
type ladderView struct {
	domain.DepthLadder
	Asks          []ladderLevelView `json:"asks"`
	Bids          []ladderLevelView `json:"bids"`
	SpreadDisplay string            `json:"spread_display,omitempty"`
}

type ladderLevelView struct {
	domain.LadderLevel
	PriceDisplay      string `json:"price_display"`
	AmountDisplay     string `json:"amount_display"`
	CumulativeDisplay string `json:"cumulative_display"`
}

func decorateLadder(ladder domain.DepthLadder) ladderView {
	view := ladderView{
		DepthLadder: ladder,
		Asks:        decorateLevels(ladder.Asks),
		Bids:        decorateLevels(ladder.Bids),
	}
	if ladder.SpreadPct != nil {
		view.SpreadDisplay = format.Change(ladder.SpreadPct) + "%"
	}
	return view
}

func decorateLevels(levels []domain.LadderLevel) []ladderLevelView {
	out := make([]ladderLevelView, 0, len(levels))
	for _, lvl := range levels {
		out = append(out, ladderLevelView{
			LadderLevel:       lvl,
			PriceDisplay:      format.Price(domain.Float(lvl.Price)),
			AmountDisplay:     format.Quantity(domain.Float(lvl.Amount)),
			CumulativeDisplay: format.Volume(domain.Float(lvl.Cumulative)),
		})
	}
	return out
}

// GetDepth returns the compact top-of-book summary, preferring the
// prefetched cache and falling back to a live look-up on a miss.
// GET /api/depth/{exchange}/{symbol...}
func (h *OrderBookHandler) GetDepth(w http.ResponseWriter, r *http.Request) {
	name, symbol, ok := h.bookParams(w, r)
	if !ok {
		return
	}

	if h.depths != nil {
		if summary, err := h.depths.Get(r.Context(), name, symbol); err == nil {
			h.writeDepth(w, summary)
			return
		}
	}

	adapter, err := h.registry.Get(name)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	raw, err := adapter.FetchOrderBook(r.Context(), symbol, book.CompactDepth)
	if err != nil {
		h.upstreamError(w, r, name, symbol, err)
		return
	}

	h.writeDepth(w, book.Summarize(raw, book.CompactDepth))
}

// writeDepth flattens a summary into the endpoint's historical top-level
// shape rather than nesting it under data.
func (h *OrderBookHandler) writeDepth(w http.ResponseWriter, summary domain.DepthSummary) {
	writeJSON(w, http.StatusOK, envelope{
		"status":    "success",
		"best_bid":  summary.BestBid,
		"best_ask":  summary.BestAsk,
		"bid_depth": summary.BidDepth,
		"ask_depth": summary.AskDepth,
		"bid_tier":  summary.BidTier,
		"ask_tier":  summary.AskTier,
		"spread":    summary.Spread,
	})
}

func (h *OrderBookHandler) bookParams(w http.ResponseWriter, r *http.Request) (domain.Exchange, string, bool) {
	name := domain.Exchange(strings.ToUpper(pathParam(r, "exchange")))
	symbol := strings.ToUpper(pathParam(r, "symbol"))
	if name == "" || symbol == "" {
		writeError(w, http.StatusBadRequest, "missing exchange or symbol")
		return "", "", false
	}
	return name, symbol, true
}

func (h *OrderBookHandler) upstreamError(w http.ResponseWriter, r *http.Request, name domain.Exchange, symbol string, err error) {
	h.logger.ErrorContext(r.Context(), "handler: order book fetch failed",
		slog.String("exchange", string(name)),
		slog.String("symbol", symbol),
		slog.String("error", err.Error()),
	)
	if errors.Is(err, domain.ErrUpstream) {
		writeError(w, http.StatusBadGateway, "upstream exchange error")
		return
	}
	writeError(w, http.StatusInternalServerError, "failed to load order book")
}
