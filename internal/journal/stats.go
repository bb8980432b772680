package journal

import (
	"github.com/shopspring/decimal"

	"etfdesk/internal/domain"
)

// Summary holds aggregate statistics over a ledger snapshot. Percentages are
// in percent units (66.67 means 66.67%). AvgReturn is 0 when HasTrades is
// false; callers render it as unavailable in that case.
type Summary struct {
	Total            int
	Wins             int
	WinRate          float64
	AvgReturn        float64
	CumulativeReturn float64
	HasTrades        bool
}

// Summarize computes count, win count, win rate, mean return and cumulative
// return. A trade counts as a win when its return is strictly positive.
func Summarize(trades []domain.Trade) Summary {
	s := Summary{Total: len(trades)}
	if s.Total == 0 {
		return s
	}
	s.HasTrades = true

	sum := decimal.Zero
	for _, t := range trades {
		if t.ReturnPct > 0 {
			s.Wins++
		}
		sum = sum.Add(decimal.NewFromFloat(t.ReturnPct))
	}

	n := decimal.NewFromInt(int64(s.Total))
	s.WinRate = decimal.NewFromInt(int64(s.Wins)).Div(n).Mul(hundred).InexactFloat64()
	s.AvgReturn = sum.Div(n).InexactFloat64()
	s.CumulativeReturn = sum.InexactFloat64()
	return s
}
