package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"etfdesk/internal/api"
	"etfdesk/internal/checklist"
	"etfdesk/internal/config"
	"etfdesk/internal/httpapi"
	"etfdesk/internal/quote"
	"etfdesk/internal/session"
	"etfdesk/internal/store"
	"etfdesk/internal/util"
)

func main() {
	// A missing .env is fine; real environment variables still apply.
	_ = godotenv.Load()

	cfgPath := "config/etfdesk.yaml"
	if p := os.Getenv("ETFDESK_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.LoadOrDefault(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := util.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	util.SetDefault(logger)

	loc, err := cfg.Market.Location()
	if err != nil {
		log.Fatalf("loading market time zone %q: %v", cfg.Market.Timezone, err)
	}

	cl, err := checklist.Load(cfg.Checklist.Path)
	if err != nil {
		log.Fatalf("loading checklist: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	sessions := session.NewManager(cl, session.Options{
		IdleTTL:       cfg.Session.IdleTTL,
		SeedWatchlist: cfg.Session.Watchlist,
		Logger:        logger,
	})
	go sessions.Run(ctx, cfg.Session.SweepInterval)

	var (
		provider quote.Provider = quote.Static(nil)
		clock    quote.Clock    = quote.UnknownClock{}
	)
	if cfg.Alpaca.Configured() {
		provider = quote.NewAlpacaProvider(quote.AlpacaOptions{
			APIKey:      cfg.Alpaca.APIKey,
			APISecret:   cfg.Alpaca.APISecret,
			DataURL:     cfg.Alpaca.DataURL,
			Feed:        cfg.Alpaca.Feed,
			RateLimit:   cfg.Quotes.RateLimitPerMin,
			MaxAttempts: cfg.Quotes.MaxAttempts,
			RetryDelay:  cfg.Quotes.RetryDelay,
			Logger:      logger,
		})
		clock = quote.NewAlpacaClock(cfg.Alpaca.APIKey, cfg.Alpaca.APISecret, cfg.Alpaca.BaseURL)
	} else {
		slog.Warn("alpaca credentials not configured, quotes will show N/A")
	}
	if cfg.Quotes.CacheTTL > 0 {
		provider = quote.NewCached(provider, cfg.Quotes.CacheTTL)
	}

	opts := httpapi.Options{
		Sessions:       sessions,
		Quotes:         provider,
		Widgets:        cfg.Quotes.Widgets,
		QuoteTimeout:   cfg.Quotes.Timeout,
		Parallel:       cfg.Quotes.Parallel,
		Clock:          clock,
		Location:       loc,
		Tickers:        cfg.Market.Tickers,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Log:            logger,
	}
	if cfg.Storage.SQLitePath != "" {
		db, err := store.NewSQLiteStore(cfg.Storage.SQLitePath)
		if err != nil {
			log.Fatalf("opening archive database: %v", err)
		}
		defer db.Close()
		opts.Archive = db
		slog.Info("ledger archive enabled", "path", cfg.Storage.SQLitePath)
	}

	dash := httpapi.NewDashboardServer(opts)
	srv := api.NewServer(cfg, dash.Handler(), logger)

	slog.Info("etfdesk-server starting", "host", cfg.Server.Host, "port", cfg.Server.Port, "grpc_port", cfg.Server.GRPCPort)
	if err := srv.ListenAndServe(ctx); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}
