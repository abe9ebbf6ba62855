package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/spotdeck/spotdeck/internal/aggregate"
	"github.com/spotdeck/spotdeck/internal/domain"
)

// TickerHandler serves the aggregated ticker table.
type TickerHandler struct {
	tickers domain.TickerStore
	logger  *slog.Logger
}

// NewTickerHandler creates a TickerHandler reading from the given store.
func NewTickerHandler(tickers domain.TickerStore, logger *slog.Logger) *TickerHandler {
	return &TickerHandler{tickers: tickers, logger: logger}
}

// ListTickers returns aggregated rows with cross-exchange comparison data.
// GET /api/tickers?exchange=&search=&multi_exchange=&list_filter=&sort=&dir=
func (h *TickerHandler) ListTickers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filters := aggregate.Filters{
		Exchange:          q.Get("exchange"),
		Search:            q.Get("search"),
		MultiExchangeOnly: isTruthy(q.Get("multi_exchange")),
		List:              aggregate.ListFilter(q.Get("list_filter")),
	}
	order := aggregate.Sort{
		Column:     aggregate.SortColumn(q.Get("sort")),
		Descending: strings.EqualFold(q.Get("dir"), "desc"),
	}

	snapshots, err := h.tickers.List(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: list tickers failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to load tickers")
		return
	}

	idx := aggregate.BuildIndex(snapshots)
	rows := aggregate.Aggregate(snapshots, idx, filters, order)
	if rows == nil {
		rows = []domain.AggregatedRow{}
	}

	comparable := 0
	for _, symbol := range idx.Symbols() {
		if idx.ExchangeCount(symbol) > 1 {
			comparable++
		}
	}

	writeJSON(w, http.StatusOK, envelope{
		"status":          "success",
		"data":            rows,
		"recordsTotal":    len(snapshots),
		"comparablePairs": comparable,
	})
}

// isTruthy accepts the query-string spellings of a boolean flag.
func isTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
