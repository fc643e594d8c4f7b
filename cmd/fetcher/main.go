// Command fetcher scrapes price history and insider trades for the tickers
// listed in a file and stores them in the configured database.
//
// Usage:
//
//	fetcher [-l debug|info|warning] [-n threads] [-p max-pages] [-t tickers.txt]
//
// The exit code is 0 when every task succeeded, 2 when at least one task
// failed and 1 when the run could not start.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	flag "github.com/spf13/pflag"

	"stocks/internal/cache"
	"stocks/internal/config"
	"stocks/internal/database"
	"stocks/internal/fetcher"
	"stocks/internal/logger"
	"stocks/internal/scraper"
	"stocks/internal/store"
)

const (
	exitOK       = 0
	exitSetup    = 1
	exitFailures = 2
)

type options struct {
	logLevel    string
	threads     int
	maxPages    int
	tickersPath string
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func parseFlags(args []string) (options, error) {
	var opts options
	fs := flag.NewFlagSet("fetcher", flag.ContinueOnError)
	fs.StringVarP(&opts.logLevel, "loglevel", "l", "info", "log level: debug, info or warning")
	fs.IntVarP(&opts.threads, "threads", "n", 4, "number of concurrent fetch workers")
	fs.IntVarP(&opts.maxPages, "max-pages", "p", 1, "insider-trades pages to fetch per ticker")
	fs.StringVarP(&opts.tickersPath, "tickers", "t", "tickers.txt", "file with one ticker per line")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	if _, err := logger.ParseLevel(opts.logLevel); err != nil {
		return opts, err
	}
	if opts.threads < 1 {
		return opts, fmt.Errorf("threads must be at least 1, got %d", opts.threads)
	}
	if opts.maxPages < 0 {
		return opts, fmt.Errorf("max-pages must not be negative, got %d", opts.maxPages)
	}
	return opts, nil
}

func run(args []string) int {
	opts, err := parseFlags(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitSetup
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		return exitSetup
	}

	logger.Init(cfg.App.Env, opts.logLevel)
	defer logger.Sync()
	log := logger.Get()

	tickers, err := readTickers(opts.tickersPath)
	if err != nil {
		log.Errorw("failed to read tickers", "path", opts.tickersPath, "error", err)
		return exitSetup
	}

	dbManager, err := database.NewManager(database.NewConfig(cfg))
	if err != nil {
		log.Errorw("failed to connect to database", "error", err)
		return exitSetup
	}
	defer dbManager.Close()

	if err := dbManager.RunMigrations(); err != nil {
		log.Errorw("failed to run database migrations", "error", err)
		return exitSetup
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var invalidator fetcher.Invalidator
	if cfg.Redis.Addr != "" {
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		rc, err := cache.Connect(pingCtx, &redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, cfg.Cache.TTL)
		cancel()
		if err != nil {
			log.Warnw("redis unavailable, cached analytics will not be invalidated", "error", err)
		} else {
			defer rc.Close()
			invalidator = rc
		}
	}

	source := scraper.NewClient(scraper.NewHTTPClient(cfg.Source.Timeout), cfg.Source.BaseURL, cfg.Source.UserAgent)
	f := fetcher.New(source, store.New(dbManager.DB()), invalidator, logger.Named("fetcher"), fetcher.Options{
		MaxWorkers:     opts.threads,
		MaxTradesPages: opts.maxPages,
	})

	result := f.Fetch(ctx, tickers)
	for _, r := range result.Results {
		if r.Err != nil {
			log.Warnw("task failed", "kind", r.Kind, "ticker", r.Ticker, "page", r.Page, "failure", r.Failure(), "error", r.Err)
		}
	}

	if result.HasFailures() {
		return exitFailures
	}
	return exitOK
}
