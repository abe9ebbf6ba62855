// Package notify delivers operator alerts about poll failures. Alerts are
// dispatched to all registered senders (Telegram, Discord) with a
// per-exchange cooldown so a flapping upstream does not flood the channel.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/spotdeck/spotdeck/internal/domain"
)

// Sender is the interface that each notification channel must implement.
type Sender interface {
	// Send delivers a notification with the given title and message body.
	Send(ctx context.Context, title, message string) error
	// Name returns a human-readable identifier for the sender (e.g. "telegram").
	Name() string
}

// DefaultCooldown is the minimum interval between failure alerts for the
// same exchange.
const DefaultCooldown = 15 * time.Minute

// Notifier dispatches poll outcome alerts to one or more Senders. Failure
// alerts for one exchange are rate-limited by a cooldown window; a recovery
// alert is sent once when an exchange that previously alerted succeeds
// again, and resets the window.
type Notifier struct {
	senders  []Sender
	cooldown time.Duration
	logger   *slog.Logger

	mu        sync.Mutex
	lastAlert map[domain.Exchange]time.Time
}

// NewNotifier creates a Notifier delivering to the given senders. A
// non-positive cooldown falls back to DefaultCooldown.
func NewNotifier(senders []Sender, cooldown time.Duration, logger *slog.Logger) *Notifier {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	return &Notifier{
		senders:   senders,
		cooldown:  cooldown,
		logger:    logger.With(slog.String("component", "notifier")),
		lastAlert: make(map[domain.Exchange]time.Time),
	}
}

// FetchFailed alerts that polling one exchange failed. Repeated failures
// within the cooldown window are logged but not delivered.
func (n *Notifier) FetchFailed(ctx context.Context, exchange domain.Exchange, cause error) error {
	n.mu.Lock()
	last, alerted := n.lastAlert[exchange]
	now := time.Now()
	if alerted && now.Sub(last) < n.cooldown {
		n.mu.Unlock()
		n.logger.DebugContext(ctx, "failure alert suppressed by cooldown",
			slog.String("exchange", string(exchange)),
		)
		return nil
	}
	n.lastAlert[exchange] = now
	n.mu.Unlock()

	title := fmt.Sprintf("Fetch failed: %s", exchange)
	return n.dispatch(ctx, title, cause.Error())
}

// FetchRecovered alerts that an exchange which previously alerted is healthy
// again. It is a no-op for exchanges that never alerted.
func (n *Notifier) FetchRecovered(ctx context.Context, exchange domain.Exchange, pairs int) error {
	n.mu.Lock()
	_, alerted := n.lastAlert[exchange]
	delete(n.lastAlert, exchange)
	n.mu.Unlock()

	if !alerted {
		return nil
	}

	title := fmt.Sprintf("Fetch recovered: %s", exchange)
	return n.dispatch(ctx, title, fmt.Sprintf("%d pairs fetched", pairs))
}

// dispatch iterates over all senders and sends the notification. Errors from
// individual senders are collected and returned as a combined error; a single
// sender failure does not prevent delivery to the remaining senders.
func (n *Notifier) dispatch(ctx context.Context, title, message string) error {
	if len(n.senders) == 0 {
		return nil
	}

	var errs []string
	for _, s := range n.senders {
		if err := s.Send(ctx, title, message); err != nil {
			n.logger.ErrorContext(ctx, "sender failed",
				slog.String("sender", s.Name()),
				slog.String("error", err.Error()),
			)
			errs = append(errs, fmt.Sprintf("%s: %v", s.Name(), err))
		} else {
			n.logger.DebugContext(ctx, "notification sent",
				slog.String("sender", s.Name()),
				slog.String("title", title),
			)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("notify: %d sender(s) failed: %s", len(errs), strings.Join(errs, "; "))
	}
	return nil
}
