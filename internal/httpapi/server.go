package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/cors"

	"etfdesk/internal/dashboard"
	"etfdesk/internal/domain"
	"etfdesk/internal/journal"
	"etfdesk/internal/quote"
	"etfdesk/internal/session"
	"etfdesk/internal/store"
)

const maxBodyBytes = 1 << 20

// Options wires a DashboardServer. Archive may be nil to disable archiving.
type Options struct {
	Sessions       *session.Manager
	Quotes         quote.Provider
	Widgets        []quote.Widget
	QuoteTimeout   time.Duration
	Parallel       int
	Clock          quote.Clock
	Archive        store.LedgerArchive
	Location       *time.Location
	Tickers        []string
	AllowedOrigins []string
	Log            *slog.Logger
}

// DashboardServer serves the dashboard HTTP API.
type DashboardServer struct {
	sessions     *session.Manager
	quotes       quote.Provider
	widgets      []quote.Widget
	quoteTimeout time.Duration
	parallel     int
	clock        quote.Clock
	archive      store.LedgerArchive
	loc          *time.Location
	tickers      []string
	origins      []string
	log          *slog.Logger
	now          func() time.Time
}

// NewDashboardServer creates a new dashboard HTTP server.
func NewDashboardServer(opts Options) *DashboardServer {
	s := &DashboardServer{
		sessions:     opts.Sessions,
		quotes:       opts.Quotes,
		widgets:      opts.Widgets,
		quoteTimeout: opts.QuoteTimeout,
		parallel:     opts.Parallel,
		clock:        opts.Clock,
		archive:      opts.Archive,
		loc:          opts.Location,
		tickers:      opts.Tickers,
		origins:      opts.AllowedOrigins,
		log:          opts.Log,
		now:          time.Now,
	}
	if s.quotes == nil {
		s.quotes = quote.Static(nil)
	}
	if s.clock == nil {
		s.clock = quote.UnknownClock{}
	}
	if s.loc == nil {
		s.loc = time.UTC
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	s.log = s.log.With("component", "httpapi")
	return s
}

// RegisterRoutes registers all API routes on the given mux.
func (s *DashboardServer) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/checklist", s.handleChecklist)
	mux.HandleFunc("GET /api/quotes", s.handleQuotes)
	mux.HandleFunc("GET /api/market/clock", s.handleClock)

	mux.HandleFunc("POST /api/sessions", s.handleCreateSession)
	mux.HandleFunc("GET /api/sessions/{id}", s.handleGetSession)
	mux.HandleFunc("DELETE /api/sessions/{id}", s.handleDeleteSession)

	mux.HandleFunc("GET /api/sessions/{id}/trades", s.handleListTrades)
	mux.HandleFunc("POST /api/sessions/{id}/trades", s.handleAddTrade)
	mux.HandleFunc("GET /api/sessions/{id}/stats", s.handleStats)
	mux.HandleFunc("GET /api/sessions/{id}/export.csv", s.handleExportCSV)
	mux.HandleFunc("GET /api/sessions/{id}/export.parquet", s.handleExportParquet)

	mux.HandleFunc("POST /api/sessions/{id}/archive", s.handleArchive)
	mux.HandleFunc("GET /api/sessions/{id}/archives", s.handleListArchives)
	mux.HandleFunc("GET /api/archives/{archiveID}", s.handleGetArchive)

	mux.HandleFunc("GET /api/sessions/{id}/watchlist", s.handleGetWatchlist)
	mux.HandleFunc("POST /api/sessions/{id}/watchlist", s.handleAddWatchlist)
	mux.HandleFunc("DELETE /api/sessions/{id}/watchlist/{index}", s.handleRemoveWatchlist)

	mux.HandleFunc("GET /api/sessions/{id}/checklist", s.handleGetChecklistStatus)
	mux.HandleFunc("PUT /api/sessions/{id}/checklist", s.handleSetChecklist)
}

// Handler returns an http.Handler with CORS middleware.
func (s *DashboardServer) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	c := cors.New(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	})
	return c.Handler(mux)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// fail maps err onto an HTTP status: validation 400, not found 404,
// anything else 500.
func (s *DashboardServer) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case domain.IsValidation(err):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		s.log.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return &domain.ValidationError{Field: "body", Err: err}
	}
	return nil
}

// today returns the current calendar date in the market time zone.
func (s *DashboardServer) today() time.Time {
	return domain.TruncateDate(s.now().In(s.loc))
}

func (s *DashboardServer) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := s.sessions.Get(r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return nil, false
	}
	return sess, true
}

// ---------------------------------------------------------------------------
// Global endpoints
// ---------------------------------------------------------------------------

func (s *DashboardServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "sessions": s.sessions.Len()})
}

func (s *DashboardServer) handleChecklist(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"sections": s.sessions.Checklist().Sections()})
}

func (s *DashboardServer) handleQuotes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if s.quoteTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.quoteTimeout)
		defer cancel()
	}
	tiles := quote.Board(ctx, s.quotes, s.widgets, s.parallel)
	writeJSON(w, http.StatusOK, QuotesJSON{
		Tiles:     dashboard.RenderTiles(tiles),
		FetchedAt: s.now().UTC(),
	})
}

func (s *DashboardServer) handleClock(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if s.quoteTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.quoteTimeout)
		defer cancel()
	}
	st := s.clock.Status(ctx)
	out := ClockJSON{Known: st.Known, IsOpen: st.IsOpen, Display: st.String()}
	if st.Known {
		out.NextOpen = &st.NextOpen
		out.NextClose = &st.NextClose
	}
	writeJSON(w, http.StatusOK, out)
}

// ---------------------------------------------------------------------------
// Sessions
// ---------------------------------------------------------------------------

func (s *DashboardServer) handleCreateSession(w http.ResponseWriter, _ *http.Request) {
	sess := s.sessions.Create()
	writeJSON(w, http.StatusCreated, s.sessionView(sess))
}

func (s *DashboardServer) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.sessionView(sess))
}

func (s *DashboardServer) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Delete(r.PathValue("id")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *DashboardServer) sessionView(sess *session.Session) SessionJSON {
	trades := sess.Trades()
	return SessionJSON{
		ID:        sess.ID,
		CreatedAt: sess.Created.UTC(),
		Tickers:   s.tickers,
		Trades:    tradesToJSON(trades),
		Stats:     statsToJSON(journal.Summarize(trades)),
		Watchlist: s.watchlistView(sess),
		Checklist: sess.ChecklistStatus(),
	}
}

// ---------------------------------------------------------------------------
// Trades
// ---------------------------------------------------------------------------

func (s *DashboardServer) handleListTrades(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"trades": tradesToJSON(sess.Trades())})
}

func (s *DashboardServer) handleAddTrade(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req TradeRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	date := s.today()
	if req.Date != "" {
		d, err := time.ParseInLocation(domain.DateLayout, req.Date, s.loc)
		if err != nil {
			s.fail(w, r, &domain.ValidationError{Field: "date", Err: fmt.Errorf("%w: %v", domain.ErrInvalidTrade, err)})
			return
		}
		date = d
	}
	contracts := 1
	if req.Contracts != nil {
		contracts = *req.Contracts
	}

	t, err := sess.AddTrade(journal.TradeInput{
		Date:      date,
		Symbol:    req.Ticker,
		Direction: req.Direction,
		Entry:     req.Entry,
		Exit:      req.Exit,
		Contracts: contracts,
		Note:      req.Notes,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.log.Info("trade added", "session", sess.ID, "symbol", t.Symbol, "direction", t.Direction, "returnPct", t.ReturnPct)
	writeJSON(w, http.StatusCreated, tradeToJSON(t))
}

func (s *DashboardServer) handleStats(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, statsToJSON(sess.Summary()))
}

func (s *DashboardServer) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := journal.WriteCSV(&buf, sess.Trades()); err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="trade_log.csv"`)
	w.Write(buf.Bytes())
}

func (s *DashboardServer) handleExportParquet(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := journal.WriteParquet(&buf, sess.Trades()); err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.apache.parquet")
	w.Header().Set("Content-Disposition", `attachment; filename="trade_log.parquet"`)
	w.Write(buf.Bytes())
}

// ---------------------------------------------------------------------------
// Archives
// ---------------------------------------------------------------------------

func (s *DashboardServer) archiveEnabled(w http.ResponseWriter) bool {
	if s.archive == nil {
		writeError(w, http.StatusNotImplemented, "archiving is not configured")
		return false
	}
	return true
}

func (s *DashboardServer) handleArchive(w http.ResponseWriter, r *http.Request) {
	if !s.archiveEnabled(w) {
		return
	}
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	a, err := s.archive.SaveArchive(r.Context(), sess.ID, sess.Trades())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.log.Info("ledger archived", "session", sess.ID, "archive", a.ID, "trades", a.TradeCount)
	writeJSON(w, http.StatusCreated, a)
}

func (s *DashboardServer) handleListArchives(w http.ResponseWriter, r *http.Request) {
	if !s.archiveEnabled(w) {
		return
	}
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	list, err := s.archive.ListArchives(r.Context(), sess.ID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if list == nil {
		list = []store.Archive{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"archives": list})
}

func (s *DashboardServer) handleGetArchive(w http.ResponseWriter, r *http.Request) {
	if !s.archiveEnabled(w) {
		return
	}
	a, trades, err := s.archive.GetArchive(r.Context(), r.PathValue("archiveID"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ArchiveJSON{
		Archive: a,
		Trades:  tradesToJSON(trades),
		Stats:   statsToJSON(journal.Summarize(trades)),
	})
}

// ---------------------------------------------------------------------------
// Watchlist
// ---------------------------------------------------------------------------

func (s *DashboardServer) watchlistView(sess *session.Session) WatchlistJSON {
	today := s.today()
	out := WatchlistJSON{Symbols: sess.Watchlist().Symbols(), Date: today.Format(domain.DateLayout)}
	if pick, err := sess.Watchlist().Today(today); err == nil {
		out.Today = &pick
	}
	return out
}

func (s *DashboardServer) handleGetWatchlist(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.watchlistView(sess))
}

func (s *DashboardServer) handleAddWatchlist(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req WatchlistRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := sess.Watchlist().Add(req.Symbol); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, s.watchlistView(sess))
}

func (s *DashboardServer) handleRemoveWatchlist(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	idx, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		s.fail(w, r, &domain.ValidationError{Field: "index", Err: err})
		return
	}
	if err := sess.Watchlist().RemoveAt(idx); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.watchlistView(sess))
}

// ---------------------------------------------------------------------------
// Checklist
// ---------------------------------------------------------------------------

func (s *DashboardServer) handleGetChecklistStatus(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sections": sess.ChecklistStatus()})
}

func (s *DashboardServer) handleSetChecklist(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req ChecklistUpdate
	if err := decodeBody(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := sess.SetTask(req.Section, req.Task, req.Done); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sections": sess.ChecklistStatus()})
}
