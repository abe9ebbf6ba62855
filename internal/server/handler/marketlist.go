package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/spotdeck/spotdeck/internal/domain"
)

// MarketListHandler serves watch/block list mutations.
type MarketListHandler struct {
	lists  domain.MarketListStore
	logger *slog.Logger
}

// NewMarketListHandler creates a MarketListHandler on the given store.
func NewMarketListHandler(lists domain.MarketListStore, logger *slog.Logger) *MarketListHandler {
	return &MarketListHandler{lists: lists, logger: logger}
}

// toggleRequest is the POST body for the toggle endpoint.
type toggleRequest struct {
	Exchange string `json:"exchange"`
	Symbol   string `json:"symbol"`
	ListType string `json:"list_type"`
}

// ToggleList flips an (exchange, symbol) membership in one list.
// POST /api/market-list/toggle
func (h *MarketListHandler) ToggleList(w http.ResponseWriter, r *http.Request) {
	var req toggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	req.Exchange = strings.ToUpper(strings.TrimSpace(req.Exchange))
	req.Symbol = strings.ToUpper(strings.TrimSpace(req.Symbol))
	if req.Exchange == "" || req.Symbol == "" {
		writeError(w, http.StatusBadRequest, "exchange and symbol are required")
		return
	}

	list, err := domain.ParseListType(req.ListType)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid list_type")
		return
	}

	added, err := h.lists.Toggle(r.Context(), domain.Exchange(req.Exchange), req.Symbol, list)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: list toggle failed",
			slog.String("exchange", req.Exchange),
			slog.String("symbol", req.Symbol),
			slog.String("list_type", string(list)),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to update list")
		return
	}

	action := "removed"
	if added {
		action = "added"
	}
	writeJSON(w, http.StatusOK, envelope{
		"status": "success",
		"action": action,
	})
}
