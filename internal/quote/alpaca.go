package quote

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"

	"etfdesk/internal/util"
)

// Compile-time interface check.
var _ Provider = (*AlpacaProvider)(nil)

// latestTradeClient is the subset of *marketdata.Client used here.
type latestTradeClient interface {
	GetLatestTrade(symbol string, req marketdata.GetLatestTradeRequest) (*marketdata.Trade, error)
}

// AlpacaOptions configures an AlpacaProvider.
type AlpacaOptions struct {
	APIKey      string
	APISecret   string
	DataURL     string
	Feed        string // "iex" or "sip"; empty uses the account default
	RateLimit   int    // requests per minute, 0 disables limiting
	MaxAttempts int    // 1 means no retry
	RetryDelay  time.Duration
	Logger      *slog.Logger
}

// AlpacaProvider fetches latest trades from the Alpaca market-data API.
type AlpacaProvider struct {
	client     latestTradeClient
	feed       marketdata.Feed
	limiter    *util.RateLimiter
	attempts   int
	retryDelay time.Duration
	log        *slog.Logger
}

// NewAlpacaProvider creates a provider with its own market-data client.
func NewAlpacaProvider(opts AlpacaOptions) *AlpacaProvider {
	co := marketdata.ClientOpts{
		APIKey:    opts.APIKey,
		APISecret: opts.APISecret,
	}
	if opts.DataURL != "" {
		co.BaseURL = opts.DataURL
	}
	return newAlpacaProvider(marketdata.NewClient(co), opts)
}

func newAlpacaProvider(client latestTradeClient, opts AlpacaOptions) *AlpacaProvider {
	p := &AlpacaProvider{
		client:     client,
		feed:       marketdata.Feed(opts.Feed),
		attempts:   opts.MaxAttempts,
		retryDelay: opts.RetryDelay,
		log:        opts.Logger,
	}
	if p.attempts < 1 {
		p.attempts = 1
	}
	if opts.RateLimit > 0 {
		p.limiter = util.NewRateLimiter(opts.RateLimit)
	}
	if p.log == nil {
		p.log = slog.Default()
	}
	p.log = p.log.With("component", "alpaca-quotes")
	return p
}

// Quote returns the latest trade price for symbol. Any failure, including
// context cancellation, is reported as Unavailable.
func (p *AlpacaProvider) Quote(ctx context.Context, symbol string) Result {
	var trade *marketdata.Trade
	err := util.Retry(ctx, p.attempts, p.retryDelay, func() error {
		if p.limiter != nil {
			if err := p.limiter.Wait(ctx); err != nil {
				return err
			}
		}
		t, err := p.latestTrade(ctx, symbol)
		if err != nil {
			return err
		}
		trade = t
		return nil
	})
	if err != nil {
		p.log.Warn("quote unavailable", "symbol", symbol, "error", err)
		return Unavailable(symbol, err)
	}
	if trade == nil {
		return Unavailable(symbol, fmt.Errorf("no latest trade for %s", symbol))
	}
	return checkPrice(symbol, trade.Price, trade.Timestamp)
}

// latestTrade runs the blocking SDK call so that ctx can abandon it.
func (p *AlpacaProvider) latestTrade(ctx context.Context, symbol string) (*marketdata.Trade, error) {
	type reply struct {
		trade *marketdata.Trade
		err   error
	}
	ch := make(chan reply, 1)
	go func() {
		t, err := p.client.GetLatestTrade(symbol, marketdata.GetLatestTradeRequest{Feed: p.feed})
		ch <- reply{t, err}
	}()
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		if r.err != nil {
			return nil, fmt.Errorf("GetLatestTrade %s: %w", symbol, r.err)
		}
		return r.trade, nil
	}
}
