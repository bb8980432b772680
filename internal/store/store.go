// Package store persists archived ledger snapshots. Live session ledgers are
// never written here; an archive is an explicit, point-in-time copy.
package store

import (
	"context"
	"time"

	"etfdesk/internal/domain"
)

// Archive describes one archived ledger snapshot.
type Archive struct {
	ID         string    `json:"id"`
	SessionID  string    `json:"sessionId"`
	CreatedAt  time.Time `json:"createdAt"`
	TradeCount int       `json:"tradeCount"`
}

// LedgerArchive stores and retrieves ledger snapshots.
type LedgerArchive interface {
	// SaveArchive stores trades, in order, as a new archive for sessionID.
	SaveArchive(ctx context.Context, sessionID string, trades []domain.Trade) (Archive, error)

	// GetArchive returns an archive and its trades in insertion order.
	GetArchive(ctx context.Context, id string) (Archive, []domain.Trade, error)

	// ListArchives returns archives for sessionID, newest first.
	ListArchives(ctx context.Context, sessionID string) ([]Archive, error)
}
