// Package quote fetches last-traded prices for dashboard widgets. Fetch
// failures never surface as errors to callers: a Result is either Ok with a
// price or Unavailable with a reason.
package quote

import (
	"context"
	"fmt"
	"math"
	"time"

	"etfdesk/internal/domain"
)

// Result is the outcome of a single quote lookup.
type Result struct {
	Symbol string
	price  float64
	asOf   time.Time
	err    error
}

// Ok builds an available result.
func Ok(symbol string, price float64, asOf time.Time) Result {
	return Result{Symbol: symbol, price: price, asOf: asOf}
}

// Unavailable builds a result carrying the reason the price is missing. The
// reason always wraps domain.ErrUnavailable.
func Unavailable(symbol string, reason error) Result {
	if reason == nil {
		reason = domain.ErrUnavailable
	} else {
		reason = fmt.Errorf("%w: %v", domain.ErrUnavailable, reason)
	}
	return Result{Symbol: symbol, err: reason}
}

// Price returns the price and whether it is available.
func (r Result) Price() (float64, bool) {
	return r.price, r.err == nil
}

// Available reports whether the result holds a price.
func (r Result) Available() bool { return r.err == nil }

// AsOf is the trade timestamp reported by the provider, zero if unavailable.
func (r Result) AsOf() time.Time { return r.asOf }

// Reason is nil for available results.
func (r Result) Reason() error { return r.err }

// Provider returns the latest price for a symbol.
type Provider interface {
	Quote(ctx context.Context, symbol string) Result
}

// checkPrice turns a raw provider price into a Result.
func checkPrice(symbol string, price float64, asOf time.Time) Result {
	if math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 {
		return Unavailable(symbol, fmt.Errorf("provider returned price %v", price))
	}
	return Ok(symbol, price, asOf)
}

// Static serves fixed prices; unknown symbols are unavailable. A nil Static
// reports every symbol as unavailable, which is what the server uses when no
// market-data credentials are configured.
type Static map[string]float64

// Quote implements Provider.
func (s Static) Quote(_ context.Context, symbol string) Result {
	p, ok := s[symbol]
	if !ok {
		return Unavailable(symbol, fmt.Errorf("no quote for %s", symbol))
	}
	return checkPrice(symbol, p, time.Time{})
}
