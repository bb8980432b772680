package quote

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Widget is one price tile on the dashboard. Source is the symbol sent to
// the provider when it differs from the displayed Symbol; Alpaca has no
// index or futures feed, so those tiles are priced off a listed proxy.
type Widget struct {
	Symbol   string `yaml:"symbol"`
	Source   string `yaml:"source"`
	Label    string `yaml:"label"`
	Currency bool   `yaml:"currency"` // render with a "$" prefix
}

// ProviderSymbol is the symbol to look up for w.
func (w Widget) ProviderSymbol() string {
	if w.Source != "" {
		return w.Source
	}
	return w.Symbol
}

// DefaultWidgets mirrors the routine's four reference instruments. VIX is
// tracked through VIXY and Nasdaq futures through QQQ.
var DefaultWidgets = []Widget{
	{Symbol: "TQQQ", Label: "TQQQ", Currency: true},
	{Symbol: "SQQQ", Label: "SQQQ", Currency: true},
	{Symbol: "^VIX", Source: "VIXY", Label: "VIX (VIXY)"},
	{Symbol: "NQ=F", Source: "QQQ", Label: "Nasdaq Futures (QQQ)", Currency: true},
}

// Tile pairs a widget with its quote.
type Tile struct {
	Widget Widget
	Result Result
}

// Board fetches all widgets, at most parallel lookups at a time, and returns
// tiles in widget order.
func Board(ctx context.Context, p Provider, widgets []Widget, parallel int) []Tile {
	tiles := make([]Tile, len(widgets))
	g, gctx := errgroup.WithContext(ctx)
	if parallel > 0 {
		g.SetLimit(parallel)
	}
	for i, w := range widgets {
		g.Go(func() error {
			tiles[i] = Tile{Widget: w, Result: p.Quote(gctx, w.ProviderSymbol())}
			return nil
		})
	}
	_ = g.Wait()
	return tiles
}

// Cached wraps a Provider and reuses available results for ttl.
type Cached struct {
	next Provider
	ttl  time.Duration
	now  func() time.Time

	mu      sync.Mutex
	entries map[string]cachedResult
}

type cachedResult struct {
	result  Result
	fetched time.Time
}

// NewCached returns a caching provider. Unavailable results are not cached.
func NewCached(next Provider, ttl time.Duration) *Cached {
	return &Cached{
		next:    next,
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cachedResult),
	}
}

// Quote implements Provider.
func (c *Cached) Quote(ctx context.Context, symbol string) Result {
	now := c.now()
	c.mu.Lock()
	e, ok := c.entries[symbol]
	c.mu.Unlock()
	if ok && now.Sub(e.fetched) < c.ttl {
		return e.result
	}

	r := c.next.Quote(ctx, symbol)
	if r.Available() {
		c.mu.Lock()
		c.entries[symbol] = cachedResult{result: r, fetched: now}
		c.mu.Unlock()
	}
	return r
}
