package notify

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"
)

type recordingSender struct {
	titles []string
	err    error
}

func (r *recordingSender) Send(_ context.Context, title, _ string) error {
	r.titles = append(r.titles, title)
	return r.err
}

func (r *recordingSender) Name() string { return "recording" }

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNotifierCooldownSuppressesRepeats(t *testing.T) {
	s := &recordingSender{}
	n := NewNotifier([]Sender{s}, time.Hour, discard())

	cause := errors.New("timeout")
	if err := n.FetchFailed(context.Background(), "LBANK", cause); err != nil {
		t.Fatalf("first alert: %v", err)
	}
	if err := n.FetchFailed(context.Background(), "LBANK", cause); err != nil {
		t.Fatalf("suppressed alert: %v", err)
	}

	if len(s.titles) != 1 {
		t.Fatalf("got %d deliveries, want 1", len(s.titles))
	}
}

func TestNotifierCooldownIsPerExchange(t *testing.T) {
	s := &recordingSender{}
	n := NewNotifier([]Sender{s}, time.Hour, discard())

	cause := errors.New("timeout")
	_ = n.FetchFailed(context.Background(), "LBANK", cause)
	_ = n.FetchFailed(context.Background(), "GATEIO", cause)

	if len(s.titles) != 2 {
		t.Fatalf("got %d deliveries, want 2", len(s.titles))
	}
}

func TestNotifierRecoveryOnlyAfterAlert(t *testing.T) {
	s := &recordingSender{}
	n := NewNotifier([]Sender{s}, time.Hour, discard())

	// Never alerted, so recovery is silent.
	if err := n.FetchRecovered(context.Background(), "HASHKEY", 120); err != nil {
		t.Fatalf("silent recovery: %v", err)
	}
	if len(s.titles) != 0 {
		t.Fatalf("got %d deliveries, want 0", len(s.titles))
	}

	_ = n.FetchFailed(context.Background(), "HASHKEY", errors.New("503"))
	if err := n.FetchRecovered(context.Background(), "HASHKEY", 120); err != nil {
		t.Fatalf("recovery: %v", err)
	}
	if len(s.titles) != 2 {
		t.Fatalf("got %d deliveries, want 2", len(s.titles))
	}

	// Recovery resets the cooldown, so the next failure alerts again.
	_ = n.FetchFailed(context.Background(), "HASHKEY", errors.New("503"))
	if len(s.titles) != 3 {
		t.Fatalf("got %d deliveries, want 3", len(s.titles))
	}
}

func TestNotifierSenderErrorDoesNotBlockOthers(t *testing.T) {
	bad := &recordingSender{err: errors.New("webhook down")}
	good := &recordingSender{}
	n := NewNotifier([]Sender{bad, good}, time.Hour, discard())

	err := n.FetchFailed(context.Background(), "POLONIEX", errors.New("timeout"))
	if err == nil {
		t.Fatal("expected combined error from failed sender")
	}
	if len(good.titles) != 1 {
		t.Fatalf("healthy sender got %d deliveries, want 1", len(good.titles))
	}
}
