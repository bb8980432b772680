package journal

import (
	"errors"
	"math"
	"testing"
	"time"

	"etfdesk/internal/domain"
)

func validInput() TradeInput {
	return TradeInput{
		Date:      time.Date(2024, 6, 5, 10, 45, 0, 0, time.UTC),
		Symbol:    " tqqq",
		Direction: "call",
		Entry:     10,
		Exit:      12,
		Contracts: 2,
		Note:      "  opening drive ",
	}
}

func TestNewTrade(t *testing.T) {
	tr, err := NewTrade(validInput())
	if err != nil {
		t.Fatalf("NewTrade returned error: %v", err)
	}
	if tr.ID == "" {
		t.Error("expected a generated trade ID")
	}
	if tr.Symbol != "TQQQ" {
		t.Errorf("Symbol = %q, want TQQQ", tr.Symbol)
	}
	if tr.Direction != domain.DirectionCall {
		t.Errorf("Direction = %q, want Call", tr.Direction)
	}
	if tr.ReturnPct != 20 {
		t.Errorf("ReturnPct = %v, want 20", tr.ReturnPct)
	}
	if tr.Note != "opening drive" {
		t.Errorf("Note = %q, want trimmed note", tr.Note)
	}
	if tr.Date.Hour() != 0 {
		t.Errorf("Date should be truncated to the day, got %v", tr.Date)
	}
}

func TestNewTradeRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*TradeInput)
		field  string
		is     error
	}{
		{"empty symbol", func(in *TradeInput) { in.Symbol = "  " }, "symbol", domain.ErrInvalidTrade},
		{"bad direction", func(in *TradeInput) { in.Direction = "short" }, "direction", domain.ErrInvalidDirection},
		{"missing date", func(in *TradeInput) { in.Date = time.Time{} }, "date", domain.ErrInvalidTrade},
		{"zero entry", func(in *TradeInput) { in.Entry = 0 }, "entry", domain.ErrDivideByZero},
		{"negative entry", func(in *TradeInput) { in.Entry = -1 }, "entry", domain.ErrInvalidTrade},
		{"nan entry", func(in *TradeInput) { in.Entry = math.NaN() }, "entry", domain.ErrInvalidTrade},
		{"negative exit", func(in *TradeInput) { in.Exit = -0.5 }, "exit", domain.ErrInvalidTrade},
		{"infinite exit", func(in *TradeInput) { in.Exit = math.Inf(1) }, "exit", domain.ErrInvalidTrade},
		{"zero contracts", func(in *TradeInput) { in.Contracts = 0 }, "contracts", domain.ErrInvalidTrade},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)
			_, err := NewTrade(in)
			var ve *domain.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if ve.Field != tt.field {
				t.Errorf("Field = %q, want %q", ve.Field, tt.field)
			}
			if !errors.Is(err, tt.is) {
				t.Errorf("expected error to wrap %v, got %v", tt.is, err)
			}
		})
	}
}
