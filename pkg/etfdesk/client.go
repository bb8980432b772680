// Package etfdesk is a Go client for the etfdesk-server HTTP API.
package etfdesk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Client provides a Go SDK for interacting with the etfdesk-server API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new etfdesk API client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("etfdesk: HTTP %d: %s", e.StatusCode, e.Message)
}

// Trade is one ledger row as returned by the server.
type Trade struct {
	ID            string  `json:"id"`
	Date          string  `json:"date"`
	Ticker        string  `json:"ticker"`
	Direction     string  `json:"direction"`
	Entry         float64 `json:"entry"`
	Exit          float64 `json:"exit"`
	Contracts     int     `json:"contracts"`
	ReturnPct     float64 `json:"returnPct"`
	ReturnDisplay string  `json:"returnDisplay"`
	Notes         string  `json:"notes,omitempty"`
}

// NewTrade is the input to AddTrade. Empty Date means today; zero Contracts
// means 1.
type NewTrade struct {
	Date      string  `json:"date,omitempty"`
	Ticker    string  `json:"ticker"`
	Direction string  `json:"direction"`
	Entry     float64 `json:"entry"`
	Exit      float64 `json:"exit"`
	Contracts int     `json:"contracts,omitempty"`
	Notes     string  `json:"notes,omitempty"`
}

// Stats is the ledger summary.
type Stats struct {
	Total            int      `json:"total"`
	Wins             int      `json:"wins"`
	WinRate          float64  `json:"winRate"`
	AvgReturn        *float64 `json:"avgReturn"`
	CumulativeReturn float64  `json:"cumulativeReturn"`
	Display          struct {
		TotalTrades      int    `json:"totalTrades"`
		WinRate          string `json:"winRate"`
		AvgReturn        string `json:"avgReturn"`
		CumulativeReturn string `json:"cumulativeReturn"`
	} `json:"display"`
}

// Watchlist is a session watchlist with today's pick. Today is nil when
// the watchlist is empty.
type Watchlist struct {
	Symbols []string `json:"symbols"`
	Today   *string  `json:"today"`
	Date    string   `json:"date"`
}

// Session is the full session view.
type Session struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	Tickers   []string  `json:"tickers"`
	Trades    []Trade   `json:"trades"`
	Stats     Stats     `json:"stats"`
	Watchlist Watchlist `json:"watchlist"`
}

// Tile is one price widget.
type Tile struct {
	Symbol    string   `json:"symbol"`
	Label     string   `json:"label"`
	Display   string   `json:"display"`
	Price     *float64 `json:"price,omitempty"`
	Available bool     `json:"available"`
}

// CreateSession starts a new dashboard session.
func (c *Client) CreateSession(ctx context.Context) (*Session, error) {
	var s Session
	if err := c.do(ctx, http.MethodPost, "/api/sessions", nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// GetSession retrieves the full view of a session.
func (c *Client) GetSession(ctx context.Context, id string) (*Session, error) {
	var s Session
	if err := c.do(ctx, http.MethodGet, sessionPath(id, ""), nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// DeleteSession ends a session.
func (c *Client) DeleteSession(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, sessionPath(id, ""), nil, nil)
}

// AddTrade records a trade in a session ledger.
func (c *Client) AddTrade(ctx context.Context, sessionID string, t NewTrade) (*Trade, error) {
	var out Trade
	if err := c.do(ctx, http.MethodPost, sessionPath(sessionID, "/trades"), t, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Trades lists a session ledger in insertion order.
func (c *Client) Trades(ctx context.Context, sessionID string) ([]Trade, error) {
	var out struct {
		Trades []Trade `json:"trades"`
	}
	if err := c.do(ctx, http.MethodGet, sessionPath(sessionID, "/trades"), nil, &out); err != nil {
		return nil, err
	}
	return out.Trades, nil
}

// Stats retrieves summary statistics for a session ledger.
func (c *Client) Stats(ctx context.Context, sessionID string) (*Stats, error) {
	var out Stats
	if err := c.do(ctx, http.MethodGet, sessionPath(sessionID, "/stats"), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ExportCSV downloads the session ledger as CSV.
func (c *Client) ExportCSV(ctx context.Context, sessionID string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+sessionPath(sessionID, "/export.csv"), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("exporting csv: %w", err)
	}
	defer resp.Body.Close()
	if err := checkStatus(resp); err != nil {
		return nil, err
	}
	return io.ReadAll(resp.Body)
}

// Watchlist retrieves the session watchlist and today's pick.
func (c *Client) Watchlist(ctx context.Context, sessionID string) (*Watchlist, error) {
	var out Watchlist
	if err := c.do(ctx, http.MethodGet, sessionPath(sessionID, "/watchlist"), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AddSymbol appends a symbol to the session watchlist.
func (c *Client) AddSymbol(ctx context.Context, sessionID, symbol string) (*Watchlist, error) {
	var out Watchlist
	body := map[string]string{"symbol": symbol}
	if err := c.do(ctx, http.MethodPost, sessionPath(sessionID, "/watchlist"), body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RemoveSymbol removes the watchlist entry at index.
func (c *Client) RemoveSymbol(ctx context.Context, sessionID string, index int) (*Watchlist, error) {
	var out Watchlist
	if err := c.do(ctx, http.MethodDelete, sessionPath(sessionID, "/watchlist/"+strconv.Itoa(index)), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SetTask ticks or unticks a checklist task.
func (c *Client) SetTask(ctx context.Context, sessionID, section, task string, done bool) error {
	body := map[string]any{"section": section, "task": task, "done": done}
	return c.do(ctx, http.MethodPut, sessionPath(sessionID, "/checklist"), body, nil)
}

// Quotes retrieves the price widget board.
func (c *Client) Quotes(ctx context.Context) ([]Tile, error) {
	var out struct {
		Tiles []Tile `json:"tiles"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/quotes", nil, &out); err != nil {
		return nil, err
	}
	return out.Tiles, nil
}

func sessionPath(id, suffix string) string {
	return "/api/sessions/" + url.PathEscape(id) + suffix
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return err
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s %s: %w", method, path, err)
	}
	return nil
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	var e struct {
		Error string `json:"error"`
	}
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if json.Unmarshal(b, &e) != nil || e.Error == "" {
		e.Error = http.StatusText(resp.StatusCode)
	}
	return &APIError{StatusCode: resp.StatusCode, Message: e.Error}
}
