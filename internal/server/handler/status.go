package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/spotdeck/spotdeck/internal/domain"
)

// StatusHandler serves the per-exchange fetch status panel.
type StatusHandler struct {
	exchanges []domain.Exchange
	logs      domain.FetchLogStore
	tickers   domain.TickerStore
	lists     domain.MarketListStore
	logger    *slog.Logger
}

// NewStatusHandler creates a StatusHandler reporting on the given exchanges
// in order.
func NewStatusHandler(
	exchanges []domain.Exchange,
	logs domain.FetchLogStore,
	tickers domain.TickerStore,
	lists domain.MarketListStore,
	logger *slog.Logger,
) *StatusHandler {
	return &StatusHandler{
		exchanges: exchanges,
		logs:      logs,
		tickers:   tickers,
		lists:     lists,
		logger:    logger,
	}
}

// GetStatus returns the most recent fetch outcome per exchange as a flat
// top-level mapping keyed by lowercase exchange name, with no envelope.
// An exchange with no fetch log rows reports status "never".
// GET /api/status
func (h *StatusHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	out := make(map[string]domain.ExchangeStatus, len(h.exchanges))

	for _, name := range h.exchanges {
		status := domain.ExchangeStatus{Status: "never"}

		last, err := h.logs.LastByExchange(ctx, name)
		switch {
		case err == nil:
			status.Status = string(last.Status)
			fetchedAt := last.FetchedAt
			status.LastFetch = &fetchedAt
			status.PairsCount = last.PairsCount
		case errors.Is(err, domain.ErrNotFound):
			// never fetched
		default:
			h.logger.ErrorContext(ctx, "handler: status lookup failed",
				slog.String("exchange", string(name)),
				slog.String("error", err.Error()),
			)
			writeError(w, http.StatusInternalServerError, "failed to load status")
			return
		}

		if n, err := h.tickers.CountByExchange(ctx, name); err == nil && n > 0 {
			status.PairsCount = n
		}

		if counts, err := h.lists.Counts(ctx, name); err == nil {
			status.WhitelistCount = counts.Whitelist
			status.BlacklistCount = counts.Blacklist
			status.WalletLockCount = counts.WalletLock
		}

		out[strings.ToLower(string(name))] = status
	}

	writeJSON(w, http.StatusOK, out)
}
