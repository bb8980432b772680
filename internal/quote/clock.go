package quote

import (
	"context"
	"fmt"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/alpaca"
)

// MarketStatus is the exchange session state. Known is false when the clock
// could not be read.
type MarketStatus struct {
	Known     bool
	IsOpen    bool
	Timestamp time.Time
	NextOpen  time.Time
	NextClose time.Time
}

// Clock reports whether the market is open.
type Clock interface {
	Status(ctx context.Context) MarketStatus
}

type clockClient interface {
	GetClock() (*alpaca.Clock, error)
}

// AlpacaClock reads the market clock from the Alpaca trading API.
type AlpacaClock struct {
	client clockClient
}

// NewAlpacaClock creates a clock backed by the Alpaca trading API at baseURL.
func NewAlpacaClock(apiKey, apiSecret, baseURL string) *AlpacaClock {
	return &AlpacaClock{client: alpaca.NewClient(alpaca.ClientOpts{
		APIKey:    apiKey,
		APISecret: apiSecret,
		BaseURL:   baseURL,
	})}
}

// Status implements Clock.
func (c *AlpacaClock) Status(ctx context.Context) MarketStatus {
	type reply struct {
		clock *alpaca.Clock
		err   error
	}
	ch := make(chan reply, 1)
	go func() {
		clk, err := c.client.GetClock()
		ch <- reply{clk, err}
	}()

	select {
	case <-ctx.Done():
		return MarketStatus{}
	case r := <-ch:
		if r.err != nil || r.clock == nil {
			return MarketStatus{}
		}
		return MarketStatus{
			Known:     true,
			IsOpen:    r.clock.IsOpen,
			Timestamp: r.clock.Timestamp,
			NextOpen:  r.clock.NextOpen,
			NextClose: r.clock.NextClose,
		}
	}
}

// UnknownClock always reports an unknown status.
type UnknownClock struct{}

// Status implements Clock.
func (UnknownClock) Status(context.Context) MarketStatus { return MarketStatus{} }

func (s MarketStatus) String() string {
	switch {
	case !s.Known:
		return "unknown"
	case s.IsOpen:
		return fmt.Sprintf("open (closes %s)", s.NextClose.Format(time.Kitchen))
	default:
		return fmt.Sprintf("closed (opens %s)", s.NextOpen.Format("Mon Jan 2 3:04PM"))
	}
}
