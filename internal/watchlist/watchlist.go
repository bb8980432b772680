// Package watchlist holds a session's ordered watchlist and the day-keyed
// rotation that picks one symbol as today's focus.
package watchlist

import (
	"fmt"
	"sync"
	"time"

	"etfdesk/internal/domain"
)

// Pick returns symbols[day-of-month(date) % len(symbols)]. The same date and
// list always give the same symbol; editing the list or crossing a month
// boundary reshuffles the pick.
func Pick(symbols []string, date time.Time) (string, error) {
	if len(symbols) == 0 {
		return "", domain.ErrEmptyInput
	}
	return symbols[date.Day()%len(symbols)], nil
}

// Watchlist is an insertion-ordered list of symbols. Duplicates are kept.
// It is safe for concurrent use.
type Watchlist struct {
	mu      sync.RWMutex
	entries []domain.WatchlistEntry
}

// New returns a watchlist seeded with the given symbols. Seeds are expected
// to be validated by the caller; blank ones are skipped.
func New(seed ...string) *Watchlist {
	w := &Watchlist{}
	for _, s := range seed {
		_ = w.Add(s)
	}
	return w
}

// Add appends symbol after normalizing it.
func (w *Watchlist) Add(symbol string) error {
	sym := domain.NormalizeSymbol(symbol)
	if sym == "" {
		return &domain.ValidationError{Field: "symbol", Err: fmt.Errorf("%w: symbol is required", domain.ErrInvalidTrade)}
	}
	w.mu.Lock()
	w.entries = append(w.entries, domain.WatchlistEntry{Symbol: sym})
	w.mu.Unlock()
	return nil
}

// RemoveAt deletes the entry at index i.
func (w *Watchlist) RemoveAt(i int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if i < 0 || i >= len(w.entries) {
		return fmt.Errorf("watchlist index %d: %w", i, domain.ErrNotFound)
	}
	w.entries = append(w.entries[:i], w.entries[i+1:]...)
	return nil
}

// Symbols returns the symbols in insertion order.
func (w *Watchlist) Symbols() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]string, len(w.entries))
	for i, e := range w.entries {
		out[i] = e.Symbol
	}
	return out
}

// Today returns the rotation pick for date.
func (w *Watchlist) Today(date time.Time) (string, error) {
	return Pick(w.Symbols(), date)
}
