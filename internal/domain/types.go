// Package domain defines the core value types shared across etfdesk: trades,
// trade directions, watchlist entries and the error taxonomy.
package domain

import (
	"strings"
	"time"
)

// DateLayout is the calendar-date format used on the wire and in exports.
const DateLayout = "2006-01-02"

// Direction is the side of an options trade.
type Direction string

const (
	DirectionCall Direction = "Call"
	DirectionPut  Direction = "Put"
)

// ParseDirection accepts "call"/"put" in any case.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "call":
		return DirectionCall, nil
	case "put":
		return DirectionPut, nil
	default:
		return "", ErrInvalidDirection
	}
}

// Valid reports whether d is Call or Put.
func (d Direction) Valid() bool {
	return d == DirectionCall || d == DirectionPut
}

// Trade is a single manually recorded options trade. Trades are immutable
// once appended to a ledger.
type Trade struct {
	ID        string
	Date      time.Time // calendar date, time-of-day is zero
	Symbol    string
	Direction Direction
	Entry     float64
	Exit      float64
	Contracts int
	ReturnPct float64 // rounded to 2 decimal places
	Note      string
}

// DateString returns the trade date as YYYY-MM-DD.
func (t Trade) DateString() string {
	return t.Date.Format(DateLayout)
}

// WatchlistEntry is one symbol on a session watchlist.
type WatchlistEntry struct {
	Symbol string
}

// NormalizeSymbol trims and upper-cases a ticker symbol.
func NormalizeSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// TruncateDate drops the time-of-day of t in its own location.
func TruncateDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
