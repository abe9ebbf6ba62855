// Package exchange defines the adapter contract for upstream spot exchanges
// and the registry the rest of the service resolves adapters through. Each
// supported venue lives in its own sub-package, normalizing that venue's
// payloads into domain types.
package exchange

import (
	"context"
	"fmt"

	"github.com/spotdeck/spotdeck/internal/domain"
)

// Adapter is implemented once per exchange. FetchTickers returns every USDT
// spot pair the venue quotes, already normalized to "BASE/USDT" symbols.
type Adapter interface {
	Name() domain.Exchange
	FetchTickers(ctx context.Context) ([]domain.TickerSnapshot, error)
	FetchOrderBook(ctx context.Context, symbol string, limit int) (domain.RawOrderBook, error)
}

// Registry resolves adapters by exchange name, preserving registration
// order for status panels and poll scheduling.
type Registry struct {
	byName map[domain.Exchange]Adapter
	order  []domain.Exchange
}

// NewRegistry builds a registry from the given adapters. Later registrations
// with a duplicate name are ignored.
func NewRegistry(adapters ...Adapter) *Registry {
	r := &Registry{byName: make(map[domain.Exchange]Adapter, len(adapters))}
	for _, a := range adapters {
		name := a.Name()
		if _, dup := r.byName[name]; dup {
			continue
		}
		r.byName[name] = a
		r.order = append(r.order, name)
	}
	return r
}

// Get resolves an adapter by name (case-sensitive, upper-case identifiers).
func (r *Registry) Get(name domain.Exchange) (Adapter, error) {
	a, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("exchange %q: %w", name, domain.ErrUnknownExchange)
	}
	return a, nil
}

// All returns every adapter in registration order.
func (r *Registry) All() []Adapter {
	out := make([]Adapter, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.byName[name])
	}
	return out
}

// Names returns the registered exchange names in registration order.
func (r *Registry) Names() []domain.Exchange {
	return append([]domain.Exchange(nil), r.order...)
}
