package journal

import (
	"sync"

	"etfdesk/internal/domain"
)

// Ledger is an append-only, insertion-ordered list of trades. It is safe
// for concurrent use.
type Ledger struct {
	mu     sync.RWMutex
	trades []domain.Trade
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{}
}

// Append adds t to the end of the ledger.
func (l *Ledger) Append(t domain.Trade) {
	l.mu.Lock()
	l.trades = append(l.trades, t)
	l.mu.Unlock()
}

// Len returns the number of recorded trades.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.trades)
}

// Snapshot returns a copy of the trades in insertion order.
func (l *Ledger) Snapshot() []domain.Trade {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]domain.Trade, len(l.trades))
	copy(out, l.trades)
	return out
}
