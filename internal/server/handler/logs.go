package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/spotdeck/spotdeck/internal/domain"
	"github.com/spotdeck/spotdeck/internal/format"
)

// defaultLogLimit bounds GET /api/logs when no limit is given.
const defaultLogLimit = 50

// LogsHandler serves recent fetch log rows.
type LogsHandler struct {
	logs   domain.FetchLogStore
	logger *slog.Logger
}

// NewLogsHandler creates a LogsHandler reading from the given store.
func NewLogsHandler(logs domain.FetchLogStore, logger *slog.Logger) *LogsHandler {
	return &LogsHandler{logs: logs, logger: logger}
}

// ListLogs returns the newest fetch log rows, newest first.
// GET /api/logs?limit=50
func (h *LogsHandler) ListLogs(w http.ResponseWriter, r *http.Request) {
	limit := defaultLogLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > 500 {
		limit = 500
	}

	logs, err := h.logs.ListRecent(r.Context(), limit)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: list logs failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to load logs")
		return
	}
	now := time.Now().UTC()
	rows := make([]logView, 0, len(logs))
	for _, entry := range logs {
		rows = append(rows, logView{
			FetchLog:   entry,
			FetchedAgo: format.RelativeTime(entry.FetchedAt, now),
		})
	}

	writeSuccess(w, rows)
}

// logView adds the human relative age shown in the activity panel.
type logView struct {
	domain.FetchLog
	FetchedAgo string `json:"fetched_ago"`
}
