package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestParseDirection(t *testing.T) {
	tests := []struct {
		in      string
		want    Direction
		wantErr bool
	}{
		{"Call", DirectionCall, false},
		{"call", DirectionCall, false},
		{" PUT ", DirectionPut, false},
		{"long", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseDirection(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseDirection(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseDirection(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
	if Direction("Straddle").Valid() {
		t.Error("Straddle should not be a valid direction")
	}
}

func TestNormalizeSymbol(t *testing.T) {
	if got := NormalizeSymbol("  tqqq "); got != "TQQQ" {
		t.Errorf("NormalizeSymbol = %q, want %q", got, "TQQQ")
	}
}

func TestTradeDateString(t *testing.T) {
	tr := Trade{Date: time.Date(2024, 6, 5, 15, 4, 0, 0, time.UTC)}
	if got := tr.DateString(); got != "2024-06-05" {
		t.Errorf("DateString = %q, want %q", got, "2024-06-05")
	}
	if d := TruncateDate(tr.Date); d.Hour() != 0 || d.Minute() != 0 {
		t.Errorf("TruncateDate left time-of-day: %v", d)
	}
}

func TestValidationError(t *testing.T) {
	err := fmt.Errorf("adding trade: %w", &ValidationError{Field: "entry", Err: ErrDivideByZero})
	if !IsValidation(err) {
		t.Fatal("expected wrapped ValidationError to be detected")
	}
	if !errors.Is(err, ErrDivideByZero) {
		t.Error("expected ValidationError to unwrap to ErrDivideByZero")
	}
	if IsValidation(ErrNotFound) {
		t.Error("ErrNotFound is not a validation error")
	}
}
