package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"etfdesk/internal/checklist"
	"etfdesk/internal/journal"
	"etfdesk/internal/quote"
	"etfdesk/internal/session"
	"etfdesk/internal/store"
)

func newTestServer(t *testing.T, archive store.LedgerArchive) *httptest.Server {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatal(err)
	}
	mgr := session.NewManager(checklist.Default(), session.Options{SeedWatchlist: []string{"TQQQ", "SQQQ", "SOXL"}})
	s := NewDashboardServer(Options{
		Sessions:       mgr,
		Quotes:         quote.Static{"TQQQ": 61.456, "SQQQ": 9.8},
		Widgets:        quote.DefaultWidgets,
		QuoteTimeout:   time.Second,
		Parallel:       2,
		Archive:        archive,
		Location:       loc,
		Tickers:        []string{"TQQQ", "SQQQ", "Other"},
		AllowedOrigins: []string{"http://localhost:3000"},
	})
	// 2024-03-05 10:00 ET: day-of-month 5.
	s.now = func() time.Time { return time.Date(2024, 3, 5, 15, 0, 0, 0, time.UTC) }
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func do(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, rd)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	return v
}

func createSession(t *testing.T, ts *httptest.Server) SessionJSON {
	t.Helper()
	resp := do(t, http.MethodPost, ts.URL+"/api/sessions", nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create session status = %d", resp.StatusCode)
	}
	return decode[SessionJSON](t, resp)
}

func intPtr(n int) *int { return &n }

func TestHealthAndChecklist(t *testing.T) {
	ts := newTestServer(t, nil)

	resp := do(t, http.MethodGet, ts.URL+"/api/health", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("health status = %d", resp.StatusCode)
	}

	resp = do(t, http.MethodGet, ts.URL+"/api/checklist", nil)
	body := decode[struct {
		Sections []checklist.Section `json:"sections"`
	}](t, resp)
	if len(body.Sections) != 5 {
		t.Errorf("got %d checklist sections, want 5", len(body.Sections))
	}
}

func TestQuotes(t *testing.T) {
	ts := newTestServer(t, nil)
	resp := do(t, http.MethodGet, ts.URL+"/api/quotes", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("quotes status = %d", resp.StatusCode)
	}
	q := decode[QuotesJSON](t, resp)
	want := []string{"$61.46", "$9.80", "N/A", "N/A"}
	if len(q.Tiles) != len(want) {
		t.Fatalf("got %d tiles, want %d", len(q.Tiles), len(want))
	}
	for i, w := range want {
		if q.Tiles[i].Display != w {
			t.Errorf("tile %d (%s) = %q, want %q", i, q.Tiles[i].Symbol, q.Tiles[i].Display, w)
		}
	}
}

func TestClockUnknownByDefault(t *testing.T) {
	ts := newTestServer(t, nil)
	c := decode[ClockJSON](t, do(t, http.MethodGet, ts.URL+"/api/market/clock", nil))
	if c.Known || c.Display != "unknown" || c.NextOpen != nil {
		t.Errorf("unexpected clock: %+v", c)
	}
}

func TestTradeFlow(t *testing.T) {
	ts := newTestServer(t, nil)
	sess := createSession(t, ts)
	base := ts.URL + "/api/sessions/" + sess.ID

	if sess.Stats.Total != 0 || sess.Stats.AvgReturn != nil || sess.Stats.Display.AvgReturn != "N/A" {
		t.Errorf("new session stats = %+v", sess.Stats)
	}

	reqs := []TradeRequest{
		{Date: "2024-03-01", Ticker: "TQQQ", Direction: "Call", Entry: 10, Exit: 11, Contracts: intPtr(2)},
		{Date: "2024-03-04", Ticker: "SQQQ", Direction: "put", Entry: 10, Exit: 10.5},
		{Ticker: "tqqq", Direction: "Call", Entry: 10, Exit: 12, Notes: "trend day"},
	}
	for _, tr := range reqs {
		resp := do(t, http.MethodPost, base+"/trades", tr)
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("add trade status = %d", resp.StatusCode)
		}
	}

	list := decode[struct {
		Trades []TradeJSON `json:"trades"`
	}](t, do(t, http.MethodGet, base+"/trades", nil))
	if len(list.Trades) != 3 {
		t.Fatalf("got %d trades, want 3", len(list.Trades))
	}
	if list.Trades[1].ReturnPct != -5 || list.Trades[1].Contracts != 1 {
		t.Errorf("second trade = %+v", list.Trades[1])
	}
	if list.Trades[2].Date != "2024-03-05" || list.Trades[2].Ticker != "TQQQ" || list.Trades[2].ReturnDisplay != "+20.00%" {
		t.Errorf("third trade = %+v", list.Trades[2])
	}

	stats := decode[StatsJSON](t, do(t, http.MethodGet, base+"/stats", nil))
	if stats.Total != 3 || stats.Wins != 2 || stats.CumulativeReturn != 25 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.Display.WinRate != "66.67%" || stats.Display.AvgReturn != "8.33%" || stats.Display.CumulativeReturn != "25.00%" {
		t.Errorf("stats display = %+v", stats.Display)
	}
}

func TestAddTradeValidation(t *testing.T) {
	ts := newTestServer(t, nil)
	sess := createSession(t, ts)
	url := ts.URL + "/api/sessions/" + sess.ID + "/trades"

	bad := []any{
		TradeRequest{Ticker: "TQQQ", Direction: "Call", Entry: 0, Exit: 1},
		TradeRequest{Ticker: "TQQQ", Direction: "Straddle", Entry: 1, Exit: 1},
		TradeRequest{Ticker: "TQQQ", Direction: "Call", Entry: 1, Exit: 1, Contracts: intPtr(0)},
		TradeRequest{Ticker: "TQQQ", Direction: "Call", Entry: 1, Exit: 1, Date: "03/05/2024"},
		map[string]any{"ticker": "TQQQ", "unknown": true},
	}
	for i, b := range bad {
		if resp := do(t, http.MethodPost, url, b); resp.StatusCode != http.StatusBadRequest {
			t.Errorf("case %d: status = %d, want 400", i, resp.StatusCode)
		}
	}
}

func TestUnknownSession(t *testing.T) {
	ts := newTestServer(t, nil)
	for _, path := range []string{"", "/trades", "/stats", "/watchlist", "/checklist", "/export.csv"} {
		resp := do(t, http.MethodGet, ts.URL+"/api/sessions/nope"+path, nil)
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("GET %s status = %d, want 404", path, resp.StatusCode)
		}
	}
}

func TestDeleteSession(t *testing.T) {
	ts := newTestServer(t, nil)
	sess := createSession(t, ts)
	if resp := do(t, http.MethodDelete, ts.URL+"/api/sessions/"+sess.ID, nil); resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete status = %d", resp.StatusCode)
	}
	if resp := do(t, http.MethodGet, ts.URL+"/api/sessions/"+sess.ID, nil); resp.StatusCode != http.StatusNotFound {
		t.Errorf("get after delete status = %d", resp.StatusCode)
	}
}

func TestExportCSV(t *testing.T) {
	ts := newTestServer(t, nil)
	sess := createSession(t, ts)
	base := ts.URL + "/api/sessions/" + sess.ID
	do(t, http.MethodPost, base+"/trades", TradeRequest{Date: "2024-03-01", Ticker: "TQQQ", Direction: "Call", Entry: 10, Exit: 12, Notes: "a, b"})
	do(t, http.MethodPost, base+"/trades", TradeRequest{Date: "2024-03-02", Ticker: "SQQQ", Direction: "Put", Entry: 10, Exit: 8})

	resp := do(t, http.MethodGet, base+"/export.csv", nil)
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("Content-Type = %q", ct)
	}
	if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, "trade_log.csv") {
		t.Errorf("Content-Disposition = %q", cd)
	}
	trades, err := journal.ReadCSV(resp.Body)
	if err != nil {
		t.Fatalf("ReadCSV returned error: %v", err)
	}
	if len(trades) != 2 || trades[0].Note != "a, b" || trades[1].ReturnPct != 20 {
		t.Errorf("unexpected exported trades: %+v", trades)
	}
}

func TestExportParquet(t *testing.T) {
	ts := newTestServer(t, nil)
	sess := createSession(t, ts)
	base := ts.URL + "/api/sessions/" + sess.ID
	do(t, http.MethodPost, base+"/trades", TradeRequest{Date: "2024-03-01", Ticker: "TQQQ", Direction: "Call", Entry: 10, Exit: 12})

	resp := do(t, http.MethodGet, base+"/export.parquet", nil)
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		t.Fatal(err)
	}
	trades, err := journal.ReadParquet(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("ReadParquet returned error: %v", err)
	}
	if len(trades) != 1 || trades[0].Symbol != "TQQQ" || trades[0].ReturnPct != 20 {
		t.Errorf("unexpected parquet trades: %+v", trades)
	}
}

func TestWatchlist(t *testing.T) {
	ts := newTestServer(t, nil)
	sess := createSession(t, ts)
	base := ts.URL + "/api/sessions/" + sess.ID + "/watchlist"

	// Seed TQQQ, SQQQ, SOXL; day 5 -> 5 % 3 = 2.
	if sess.Watchlist.Today == nil || *sess.Watchlist.Today != "SOXL" {
		t.Fatalf("today = %v, want SOXL", sess.Watchlist.Today)
	}

	resp := do(t, http.MethodPost, base, WatchlistRequest{Symbol: "tna"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("add status = %d", resp.StatusCode)
	}
	wl := decode[WatchlistJSON](t, resp)
	// 5 % 4 = 1.
	if len(wl.Symbols) != 4 || wl.Symbols[3] != "TNA" || *wl.Today != "SQQQ" {
		t.Errorf("after add = %+v", wl)
	}

	if resp := do(t, http.MethodPost, base, WatchlistRequest{Symbol: " "}); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("blank symbol status = %d", resp.StatusCode)
	}
	if resp := do(t, http.MethodDelete, base+"/9", nil); resp.StatusCode != http.StatusNotFound {
		t.Errorf("remove out of range status = %d", resp.StatusCode)
	}
	if resp := do(t, http.MethodDelete, base+"/x", nil); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("remove bad index status = %d", resp.StatusCode)
	}

	for i := 0; i < 4; i++ {
		do(t, http.MethodDelete, base+"/0", nil)
	}
	wl = decode[WatchlistJSON](t, do(t, http.MethodGet, base, nil))
	if len(wl.Symbols) != 0 || wl.Today != nil {
		t.Errorf("empty watchlist = %+v", wl)
	}
}

func TestChecklistTick(t *testing.T) {
	ts := newTestServer(t, nil)
	sess := createSession(t, ts)
	url := ts.URL + "/api/sessions/" + sess.ID + "/checklist"

	upd := ChecklistUpdate{Section: "Pre-Market (8:00am – 9:20am)", Task: "Review VIX movement", Done: true}
	resp := do(t, http.MethodPut, url, upd)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("tick status = %d", resp.StatusCode)
	}
	body := decode[struct {
		Sections []session.SectionStatus `json:"sections"`
	}](t, resp)
	if !body.Sections[0].Tasks[1].Done || body.Sections[0].Tasks[0].Done {
		t.Errorf("unexpected tick state: %+v", body.Sections[0])
	}

	upd.Task = "Not a task"
	if resp := do(t, http.MethodPut, url, upd); resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown task status = %d", resp.StatusCode)
	}
}

func TestArchiveDisabled(t *testing.T) {
	ts := newTestServer(t, nil)
	sess := createSession(t, ts)
	resp := do(t, http.MethodPost, ts.URL+"/api/sessions/"+sess.ID+"/archive", nil)
	if resp.StatusCode != http.StatusNotImplemented {
		t.Errorf("archive status = %d, want 501", resp.StatusCode)
	}
}

func TestArchive(t *testing.T) {
	db, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "archive.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	ts := newTestServer(t, db)
	sess := createSession(t, ts)
	base := ts.URL + "/api/sessions/" + sess.ID
	do(t, http.MethodPost, base+"/trades", TradeRequest{Date: "2024-03-01", Ticker: "TQQQ", Direction: "Call", Entry: 10, Exit: 12})

	resp := do(t, http.MethodPost, base+"/archive", nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("archive status = %d", resp.StatusCode)
	}
	a := decode[store.Archive](t, resp)
	if a.TradeCount != 1 || a.SessionID != sess.ID {
		t.Errorf("archive = %+v", a)
	}

	// The live ledger keeps accepting trades after archiving.
	do(t, http.MethodPost, base+"/trades", TradeRequest{Date: "2024-03-02", Ticker: "SQQQ", Direction: "Put", Entry: 10, Exit: 8})

	got := decode[ArchiveJSON](t, do(t, http.MethodGet, ts.URL+"/api/archives/"+a.ID, nil))
	if len(got.Trades) != 1 || got.Trades[0].Ticker != "TQQQ" || got.Stats.Total != 1 {
		t.Errorf("archived ledger = %+v", got)
	}

	list := decode[struct {
		Archives []store.Archive `json:"archives"`
	}](t, do(t, http.MethodGet, base+"/archives", nil))
	if len(list.Archives) != 1 || list.Archives[0].ID != a.ID {
		t.Errorf("archives = %+v", list.Archives)
	}

	if resp := do(t, http.MethodGet, ts.URL+"/api/archives/missing", nil); resp.StatusCode != http.StatusNotFound {
		t.Errorf("missing archive status = %d", resp.StatusCode)
	}
}

func TestCORS(t *testing.T) {
	ts := newTestServer(t, nil)
	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/api/health", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
}
