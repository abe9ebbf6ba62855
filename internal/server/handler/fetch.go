package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/spotdeck/spotdeck/internal/domain"
)

// PollTrigger runs one on-demand poll cycle for an exchange. Implemented by
// the poller.
type PollTrigger interface {
	PollExchange(ctx context.Context, exchange domain.Exchange) (int, error)
}

// FetchHandler serves the manual refresh endpoint.
type FetchHandler struct {
	poller PollTrigger
	logger *slog.Logger
}

// NewFetchHandler creates a FetchHandler triggering the given poller.
func NewFetchHandler(poller PollTrigger, logger *slog.Logger) *FetchHandler {
	return &FetchHandler{poller: poller, logger: logger}
}

// TriggerFetch polls one exchange immediately and reports the pair count.
// POST /api/fetch/{exchange}
func (h *FetchHandler) TriggerFetch(w http.ResponseWriter, r *http.Request) {
	name := domain.Exchange(strings.ToUpper(pathParam(r, "exchange")))
	if name == "" {
		writeError(w, http.StatusBadRequest, "missing exchange")
		return
	}

	pairs, err := h.poller.PollExchange(r.Context(), name)
	if err != nil {
		if errors.Is(err, domain.ErrUnknownExchange) {
			writeError(w, http.StatusNotFound, fmt.Sprintf("unknown exchange %q", name))
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: manual fetch failed",
			slog.String("exchange", string(name)),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadGateway, fmt.Sprintf("fetch from %s failed: %v", name, err))
		return
	}

	writeJSON(w, http.StatusOK, envelope{
		"status":  "success",
		"message": fmt.Sprintf("fetched %d pairs from %s", pairs, name),
	})
}
