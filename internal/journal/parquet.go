package journal

import (
	"fmt"
	"io"
	"time"

	"github.com/parquet-go/parquet-go"

	"etfdesk/internal/domain"
)

// TradeRecord is the Parquet schema for an exported ledger row.
type TradeRecord struct {
	ID        string  `parquet:"id"`
	Date      string  `parquet:"date"`
	Symbol    string  `parquet:"ticker"`
	Direction string  `parquet:"direction"`
	Entry     float64 `parquet:"entry"`
	Exit      float64 `parquet:"exit"`
	Contracts int64   `parquet:"contracts"`
	ReturnPct float64 `parquet:"return_pct"`
	Note      string  `parquet:"notes"`
}

// WriteParquet writes trades to w as a single Parquet file.
func WriteParquet(w io.Writer, trades []domain.Trade) error {
	rows := make([]TradeRecord, len(trades))
	for i, t := range trades {
		rows[i] = TradeRecord{
			ID:        t.ID,
			Date:      t.DateString(),
			Symbol:    t.Symbol,
			Direction: string(t.Direction),
			Entry:     t.Entry,
			Exit:      t.Exit,
			Contracts: int64(t.Contracts),
			ReturnPct: t.ReturnPct,
			Note:      t.Note,
		}
	}
	return parquet.Write(w, rows)
}

// ReadParquet reads a ledger written by WriteParquet.
func ReadParquet(r io.ReaderAt, size int64) ([]domain.Trade, error) {
	rows, err := parquet.Read[TradeRecord](r, size)
	if err != nil {
		return nil, fmt.Errorf("reading parquet ledger: %w", err)
	}
	trades := make([]domain.Trade, 0, len(rows))
	for _, row := range rows {
		date, err := time.Parse(domain.DateLayout, row.Date)
		if err != nil {
			return nil, fmt.Errorf("trade %s date: %w", row.ID, err)
		}
		trades = append(trades, domain.Trade{
			ID:        row.ID,
			Date:      date,
			Symbol:    row.Symbol,
			Direction: domain.Direction(row.Direction),
			Entry:     row.Entry,
			Exit:      row.Exit,
			Contracts: int(row.Contracts),
			ReturnPct: row.ReturnPct,
			Note:      row.Note,
		})
	}
	return trades, nil
}
