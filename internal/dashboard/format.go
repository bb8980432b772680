// Package dashboard turns quotes, ledger statistics and market status into
// the display strings shown on the trading dashboard.
package dashboard

import (
	"fmt"
	"math"

	"etfdesk/internal/journal"
	"etfdesk/internal/quote"
)

// NA is shown wherever a value is unavailable.
const NA = "N/A"

// FormatPrice formats a price as "$X.XX" (currency) or "X.XX", or NA for
// values that are not real prices.
func FormatPrice(p float64, currency bool) string {
	if math.IsNaN(p) || math.IsInf(p, 0) || p <= 0 {
		return NA
	}
	if currency {
		return fmt.Sprintf("$%.2f", p)
	}
	return fmt.Sprintf("%.2f", p)
}

// FormatPct formats a percentage value as "X.XX%".
func FormatPct(v float64) string {
	return fmt.Sprintf("%.2f%%", v)
}

// FormatSignedPct formats a return with an explicit sign, e.g. "+20.00%".
func FormatSignedPct(v float64) string {
	if v > 0 {
		return fmt.Sprintf("+%.2f%%", v)
	}
	return fmt.Sprintf("%.2f%%", v)
}

// Tile is a rendered price widget.
type Tile struct {
	Symbol    string   `json:"symbol"`
	Label     string   `json:"label"`
	Display   string   `json:"display"`
	Price     *float64 `json:"price,omitempty"`
	Available bool     `json:"available"`
}

// RenderTiles formats quote tiles; unavailable quotes render as NA.
func RenderTiles(tiles []quote.Tile) []Tile {
	out := make([]Tile, len(tiles))
	for i, t := range tiles {
		rt := Tile{Symbol: t.Widget.Symbol, Label: t.Widget.Label, Display: NA}
		if rt.Label == "" {
			rt.Label = t.Widget.Symbol
		}
		if p, ok := t.Result.Price(); ok {
			price := p
			rt.Price = &price
			rt.Available = true
			rt.Display = FormatPrice(p, t.Widget.Currency)
		}
		out[i] = rt
	}
	return out
}

// Stats is a rendered summary block.
type Stats struct {
	TotalTrades      int    `json:"totalTrades"`
	WinRate          string `json:"winRate"`
	AvgReturn        string `json:"avgReturn"`
	CumulativeReturn string `json:"cumulativeReturn"`
}

// RenderStats formats a ledger summary. Average return is NA for an empty
// ledger.
func RenderStats(s journal.Summary) Stats {
	out := Stats{
		TotalTrades:      s.Total,
		WinRate:          FormatPct(s.WinRate),
		AvgReturn:        NA,
		CumulativeReturn: FormatPct(s.CumulativeReturn),
	}
	if s.HasTrades {
		out.AvgReturn = FormatPct(s.AvgReturn)
	}
	return out
}

// CheckMark renders a checklist tick.
func CheckMark(done bool) string {
	if done {
		return "✅"
	}
	return "❌"
}
