package domain

import "time"

// FetchStatus is the outcome of a single exchange poll.
type FetchStatus string

const (
	FetchStatusSuccess FetchStatus = "success"
	FetchStatusError   FetchStatus = "error"
)

// FetchLog records the outcome of one poll of one exchange. The most recent
// row per exchange drives the status panel.
type FetchLog struct {
	ID           string      `json:"id"`
	Exchange     Exchange    `json:"exchange"`
	Status       FetchStatus `json:"status"`
	PairsCount   int         `json:"pairs_count"`
	ErrorMessage string      `json:"error_message,omitempty"`
	FetchedAt    time.Time   `json:"fetched_at"`
}
