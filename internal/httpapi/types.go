// Package httpapi exposes the trading dashboard over a JSON HTTP API:
// checklist, price widgets, market clock, and per-session ledger, watchlist
// and checklist state.
package httpapi

import (
	"time"

	"etfdesk/internal/dashboard"
	"etfdesk/internal/domain"
	"etfdesk/internal/journal"
	"etfdesk/internal/session"
	"etfdesk/internal/store"
)

// TradeRequest is the body of POST /api/sessions/{id}/trades. Date defaults
// to today in the market time zone and Contracts to 1.
type TradeRequest struct {
	Date      string  `json:"date"`
	Ticker    string  `json:"ticker"`
	Direction string  `json:"direction"`
	Entry     float64 `json:"entry"`
	Exit      float64 `json:"exit"`
	Contracts *int    `json:"contracts"`
	Notes     string  `json:"notes"`
}

// TradeJSON is one ledger row.
type TradeJSON struct {
	ID            string  `json:"id"`
	Date          string  `json:"date"`
	Ticker        string  `json:"ticker"`
	Direction     string  `json:"direction"`
	Entry         float64 `json:"entry"`
	Exit          float64 `json:"exit"`
	Contracts     int     `json:"contracts"`
	ReturnPct     float64 `json:"returnPct"`
	ReturnDisplay string  `json:"returnDisplay"`
	Notes         string  `json:"notes,omitempty"`
}

// StatsJSON carries raw summary numbers plus their display strings.
// AvgReturn is null for an empty ledger.
type StatsJSON struct {
	Total            int             `json:"total"`
	Wins             int             `json:"wins"`
	WinRate          float64         `json:"winRate"`
	AvgReturn        *float64        `json:"avgReturn"`
	CumulativeReturn float64         `json:"cumulativeReturn"`
	Display          dashboard.Stats `json:"display"`
}

// WatchlistJSON lists the watchlist and today's rotation pick. Today is
// null when the watchlist is empty.
type WatchlistJSON struct {
	Symbols []string `json:"symbols"`
	Today   *string  `json:"today"`
	Date    string   `json:"date"`
}

// WatchlistRequest is the body of POST /api/sessions/{id}/watchlist.
type WatchlistRequest struct {
	Symbol string `json:"symbol"`
}

// ChecklistUpdate is the body of PUT /api/sessions/{id}/checklist.
type ChecklistUpdate struct {
	Section string `json:"section"`
	Task    string `json:"task"`
	Done    bool   `json:"done"`
}

// SessionJSON is the full per-session dashboard view.
type SessionJSON struct {
	ID        string                  `json:"id"`
	CreatedAt time.Time               `json:"createdAt"`
	Tickers   []string                `json:"tickers"`
	Trades    []TradeJSON             `json:"trades"`
	Stats     StatsJSON               `json:"stats"`
	Watchlist WatchlistJSON           `json:"watchlist"`
	Checklist []session.SectionStatus `json:"checklist"`
}

// QuotesJSON is the price widget board.
type QuotesJSON struct {
	Tiles     []dashboard.Tile `json:"tiles"`
	FetchedAt time.Time        `json:"fetchedAt"`
}

// ClockJSON is the market clock. Times are omitted when unknown.
type ClockJSON struct {
	Known     bool       `json:"known"`
	IsOpen    bool       `json:"isOpen"`
	NextOpen  *time.Time `json:"nextOpen,omitempty"`
	NextClose *time.Time `json:"nextClose,omitempty"`
	Display   string     `json:"display"`
}

// ArchiveJSON is an archived ledger with its trades.
type ArchiveJSON struct {
	Archive store.Archive `json:"archive"`
	Trades  []TradeJSON   `json:"trades"`
	Stats   StatsJSON     `json:"stats"`
}

func tradeToJSON(t domain.Trade) TradeJSON {
	return TradeJSON{
		ID:            t.ID,
		Date:          t.DateString(),
		Ticker:        t.Symbol,
		Direction:     string(t.Direction),
		Entry:         t.Entry,
		Exit:          t.Exit,
		Contracts:     t.Contracts,
		ReturnPct:     t.ReturnPct,
		ReturnDisplay: dashboard.FormatSignedPct(t.ReturnPct),
		Notes:         t.Note,
	}
}

func tradesToJSON(trades []domain.Trade) []TradeJSON {
	out := make([]TradeJSON, len(trades))
	for i, t := range trades {
		out[i] = tradeToJSON(t)
	}
	return out
}

func statsToJSON(s journal.Summary) StatsJSON {
	out := StatsJSON{
		Total:            s.Total,
		Wins:             s.Wins,
		WinRate:          s.WinRate,
		CumulativeReturn: s.CumulativeReturn,
		Display:          dashboard.RenderStats(s),
	}
	if s.HasTrades {
		avg := s.AvgReturn
		out.AvgReturn = &avg
	}
	return out
}
