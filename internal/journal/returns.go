// Package journal implements the manual trade ledger: per-trade return
// calculation, input validation, the append-only ledger itself, summary
// statistics and CSV/Parquet export.
package journal

import (
	"github.com/shopspring/decimal"

	"etfdesk/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// ReturnPct computes the signed percentage return of an options trade,
// rounded to 2 decimal places. A Call gains when exit > entry, a Put gains
// when exit < entry. A zero entry price yields domain.ErrDivideByZero.
func ReturnPct(entry, exit float64, dir domain.Direction) (float64, error) {
	if !dir.Valid() {
		return 0, domain.ErrInvalidDirection
	}
	if entry == 0 {
		return 0, domain.ErrDivideByZero
	}

	e := decimal.NewFromFloat(entry)
	x := decimal.NewFromFloat(exit)

	diff := x.Sub(e)
	if dir == domain.DirectionPut {
		diff = e.Sub(x)
	}
	return diff.Div(e).Mul(hundred).Round(2).InexactFloat64(), nil
}
