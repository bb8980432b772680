package journal

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"etfdesk/internal/domain"
)

// TradeInput is an unvalidated trade submission.
type TradeInput struct {
	Date      time.Time
	Symbol    string
	Direction string
	Entry     float64
	Exit      float64
	Contracts int
	Note      string
}

// NewTrade validates in and builds an immutable Trade with its return
// already computed. Validation failures are *domain.ValidationError.
func NewTrade(in TradeInput) (domain.Trade, error) {
	symbol := domain.NormalizeSymbol(in.Symbol)
	if symbol == "" {
		return domain.Trade{}, invalid("symbol", fmt.Errorf("%w: symbol is required", domain.ErrInvalidTrade))
	}
	dir, err := domain.ParseDirection(in.Direction)
	if err != nil {
		return domain.Trade{}, invalid("direction", err)
	}
	if in.Date.IsZero() {
		return domain.Trade{}, invalid("date", fmt.Errorf("%w: date is required", domain.ErrInvalidTrade))
	}
	if !finite(in.Entry) || in.Entry < 0 {
		return domain.Trade{}, invalid("entry", fmt.Errorf("%w: entry price must be a non-negative number", domain.ErrInvalidTrade))
	}
	if in.Entry == 0 {
		return domain.Trade{}, invalid("entry", domain.ErrDivideByZero)
	}
	if !finite(in.Exit) || in.Exit < 0 {
		return domain.Trade{}, invalid("exit", fmt.Errorf("%w: exit price must be a non-negative number", domain.ErrInvalidTrade))
	}
	if in.Contracts < 1 {
		return domain.Trade{}, invalid("contracts", fmt.Errorf("%w: contracts must be at least 1", domain.ErrInvalidTrade))
	}

	ret, err := ReturnPct(in.Entry, in.Exit, dir)
	if err != nil {
		return domain.Trade{}, err
	}

	return domain.Trade{
		ID:        uuid.NewString(),
		Date:      domain.TruncateDate(in.Date),
		Symbol:    symbol,
		Direction: dir,
		Entry:     in.Entry,
		Exit:      in.Exit,
		Contracts: in.Contracts,
		ReturnPct: ret,
		Note:      strings.TrimSpace(in.Note),
	}, nil
}

func invalid(field string, err error) error {
	return &domain.ValidationError{Field: field, Err: err}
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
