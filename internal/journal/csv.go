package journal

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"etfdesk/internal/domain"
)

// CSVHeader is the column layout of a ledger export.
var CSVHeader = []string{"Date", "Ticker", "Direction", "Entry", "Exit", "Contracts", "Return %", "Notes"}

// WriteCSV writes trades as a UTF-8 CSV table with a header row, one row per
// trade in the given order.
func WriteCSV(w io.Writer, trades []domain.Trade) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	for _, t := range trades {
		if err := cw.Write([]string{
			t.DateString(),
			t.Symbol,
			string(t.Direction),
			num(t.Entry),
			num(t.Exit),
			strconv.Itoa(t.Contracts),
			num(t.ReturnPct),
			t.Note,
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV parses a ledger export produced by WriteCSV. Trade IDs are not
// part of the export and come back empty; dates are parsed in UTC.
func ReadCSV(r io.Reader) ([]domain.Trade, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(CSVHeader)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	for i, col := range CSVHeader {
		if header[i] != col {
			return nil, fmt.Errorf("unexpected column %d: got %q, want %q", i, header[i], col)
		}
	}

	var trades []domain.Trade
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		t, err := parseRow(rec)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		trades = append(trades, t)
	}
	return trades, nil
}

func parseRow(rec []string) (domain.Trade, error) {
	date, err := time.Parse(domain.DateLayout, rec[0])
	if err != nil {
		return domain.Trade{}, fmt.Errorf("date: %w", err)
	}
	dir, err := domain.ParseDirection(rec[2])
	if err != nil {
		return domain.Trade{}, fmt.Errorf("direction: %w", err)
	}
	entry, err := strconv.ParseFloat(rec[3], 64)
	if err != nil {
		return domain.Trade{}, fmt.Errorf("entry: %w", err)
	}
	exit, err := strconv.ParseFloat(rec[4], 64)
	if err != nil {
		return domain.Trade{}, fmt.Errorf("exit: %w", err)
	}
	contracts, err := strconv.Atoi(rec[5])
	if err != nil {
		return domain.Trade{}, fmt.Errorf("contracts: %w", err)
	}
	ret, err := strconv.ParseFloat(rec[6], 64)
	if err != nil {
		return domain.Trade{}, fmt.Errorf("return: %w", err)
	}
	return domain.Trade{
		Date:      date,
		Symbol:    rec[1],
		Direction: dir,
		Entry:     entry,
		Exit:      exit,
		Contracts: contracts,
		ReturnPct: ret,
		Note:      rec[7],
	}, nil
}

// num formats f in its shortest round-trip form.
func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
