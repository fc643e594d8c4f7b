// Package fetcher runs the scrape pipeline: for every ticker, one history task
// and a fixed number of insider-trades page tasks are spread over a bounded
// worker pool. Each task fetches, parses and stores its page independently.
package fetcher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"go.uber.org/zap"

	"stocks/internal/models"
	"stocks/internal/parser"
	"stocks/internal/uuid"
)

// Source downloads raw pages.
type Source interface {
	History(ctx context.Context, ticker string) ([]byte, error)
	Trades(ctx context.Context, ticker string, page int) ([]byte, error)
}

// Store persists parsed rows.
type Store interface {
	UpsertStock(ctx context.Context, ticker string) (*models.Stock, error)
	UpsertQuote(ctx context.Context, q *models.Quote) error
	UpsertInsider(ctx context.Context, name, relation string) (*models.Insider, error)
	InsertTrade(ctx context.Context, t *models.Trade) error
}

// Invalidator drops derived data for a ticker after its quotes change.
type Invalidator interface {
	Invalidate(ctx context.Context, ticker string) error
}

// TaskKind identifies the page a task scrapes.
type TaskKind string

const (
	KindHistory TaskKind = "history"
	KindTrades  TaskKind = "trades"
)

// Options bounds a run.
type Options struct {
	MaxWorkers     int
	MaxTradesPages int
}

type task struct {
	kind   TaskKind
	ticker string
	page   int
}

// TaskResult is the outcome of one task.
type TaskResult struct {
	Kind    TaskKind `json:"kind"`
	Ticker  string   `json:"ticker"`
	Page    int      `json:"page,omitempty"`
	Rows    int      `json:"rows"`
	Message string   `json:"message,omitempty"`
	Err     error    `json:"-"`
}

// Failure returns the failure label of the task, empty on success.
func (r TaskResult) Failure() Failure {
	return Classify(r.Err)
}

// MarshalJSON adds the failure label and error text to failed tasks.
func (r TaskResult) MarshalJSON() ([]byte, error) {
	type plain TaskResult
	out := struct {
		plain
		Failure Failure `json:"failure,omitempty"`
		Error   string  `json:"error,omitempty"`
	}{plain: plain(r)}
	if r.Err != nil {
		out.Failure = Classify(r.Err)
		out.Error = r.Err.Error()
	}
	return json.Marshal(out)
}

// RunResult contains the outcome of a fetch run. Results are in scheduling
// order regardless of completion order.
type RunResult struct {
	RunID     string        `json:"run_id"`
	Tasks     int           `json:"tasks"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	Results   []TaskResult  `json:"results"`
	Duration  time.Duration `json:"duration"`
}

// HasFailures reports whether any task failed.
func (r *RunResult) HasFailures() bool {
	return r.Failed > 0
}

// Fetcher schedules and runs scrape tasks.
type Fetcher struct {
	source Source
	store  Store
	parser *parser.Parser
	cache  Invalidator
	opts   Options
	log    *zap.SugaredLogger
}

// New creates a Fetcher. cache may be nil.
func New(source Source, store Store, cache Invalidator, log *zap.SugaredLogger, opts Options) *Fetcher {
	if opts.MaxWorkers < 1 {
		opts.MaxWorkers = 1
	}
	if opts.MaxTradesPages < 0 {
		opts.MaxTradesPages = 0
	}
	return &Fetcher{
		source: source,
		store:  store,
		parser: parser.New(log.Named("parser")),
		cache:  cache,
		opts:   opts,
		log:    log,
	}
}

// Fetch scrapes tickers under a new run ID and blocks until every task has
// finished.
func (f *Fetcher) Fetch(ctx context.Context, tickers []string) *RunResult {
	return f.Run(ctx, uuid.New(), tickers)
}

// Run is Fetch with a caller-chosen run ID. Task failures are logged and
// counted; they never stop sibling tasks.
func (f *Fetcher) Run(ctx context.Context, runID string, tickers []string) *RunResult {
	start := time.Now()
	log := f.log.With("run_id", runID)

	tasks := f.schedule(tickers)
	result := &RunResult{
		RunID:   runID,
		Tasks:   len(tasks),
		Results: make([]TaskResult, len(tasks)),
	}

	workers := f.opts.MaxWorkers
	if workers > len(tasks) {
		workers = len(tasks)
	}
	log.Infow("fetch run started",
		"tickers", len(tickers), "tasks", len(tasks), "workers", workers, "max_trades_pages", f.opts.MaxTradesPages)

	queue := make(chan int, len(tasks))
	for i := range tasks {
		queue <- i
	}
	close(queue)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range queue {
				// Each index is written by exactly one worker.
				result.Results[i] = f.runTask(ctx, log, tasks[i])
			}
		}()
	}
	wg.Wait()

	for _, r := range result.Results {
		if r.Err != nil {
			result.Failed++
		} else {
			result.Succeeded++
		}
	}
	result.Duration = time.Since(start)

	log.Infow("fetch run finished",
		"tasks", result.Tasks, "succeeded", result.Succeeded, "failed", result.Failed,
		"duration", result.Duration.String())
	return result
}

func (f *Fetcher) schedule(tickers []string) []task {
	tasks := make([]task, 0, len(tickers)*(1+f.opts.MaxTradesPages))
	for _, ticker := range tickers {
		tasks = append(tasks, task{kind: KindHistory, ticker: ticker})
		for page := 1; page <= f.opts.MaxTradesPages; page++ {
			tasks = append(tasks, task{kind: KindTrades, ticker: ticker, page: page})
		}
	}
	return tasks
}

func (f *Fetcher) runTask(ctx context.Context, log *zap.SugaredLogger, t task) (res TaskResult) {
	res = TaskResult{Kind: t.kind, Ticker: t.ticker, Page: t.page}

	defer func() {
		if v := recover(); v != nil {
			res.Err = &PanicError{Value: v}
			log.Errorw("task panicked",
				"kind", t.kind, "ticker", t.ticker, "page", t.page, "panic", v, "stack", string(debug.Stack()))
		}
	}()

	if err := ctx.Err(); err != nil {
		res.Err = err
	} else if t.kind == KindHistory {
		res.Rows, res.Err = f.history(ctx, log, t.ticker)
	} else {
		res.Rows, res.Err = f.trades(ctx, t.ticker, t.page)
	}

	if res.Err != nil {
		log.Errorw("task failed",
			"kind", t.kind, "ticker", t.ticker, "page", t.page, "failure", Classify(res.Err), "error", res.Err)
		return res
	}

	res.Message = summary(t, res.Rows)
	log.Infow(res.Message, "kind", t.kind, "ticker", t.ticker, "page", t.page)
	return res
}

func summary(t task, rows int) string {
	if t.kind == KindHistory {
		return fmt.Sprintf("%s: stored %d quotes", t.ticker, rows)
	}
	return fmt.Sprintf("%s page %d: stored %d trades", t.ticker, t.page, rows)
}

func (f *Fetcher) history(ctx context.Context, log *zap.SugaredLogger, ticker string) (int, error) {
	body, err := f.source.History(ctx, ticker)
	if err != nil {
		return 0, err
	}
	rows, err := f.parser.ParseHistory(ticker, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}

	stock, err := f.store.UpsertStock(ctx, ticker)
	if err != nil {
		return 0, &StoreError{Op: "upsert stock", Err: err}
	}

	for _, row := range rows {
		q := &models.Quote{
			StockID:    stock.ID,
			Date:       row.Date,
			OpenPrice:  row.Open,
			ClosePrice: row.Close,
			HighPrice:  row.High,
			LowPrice:   row.Low,
			Volume:     row.Volume,
		}
		if err := f.store.UpsertQuote(ctx, q); err != nil {
			return 0, &StoreError{Op: "upsert quote " + row.Date.String(), Err: err}
		}
	}

	if f.cache != nil {
		if err := f.cache.Invalidate(ctx, ticker); err != nil {
			log.Warnw("failed to invalidate analytics cache", "ticker", ticker, "error", err)
		}
	}
	return len(rows), nil
}

func (f *Fetcher) trades(ctx context.Context, ticker string, page int) (int, error) {
	body, err := f.source.Trades(ctx, ticker, page)
	if err != nil {
		return 0, err
	}
	rows, err := f.parser.ParseTrades(ticker, page, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}

	// The stock is recorded even when the page has no trades.
	stock, err := f.store.UpsertStock(ctx, ticker)
	if err != nil {
		return 0, &StoreError{Op: "upsert stock", Err: err}
	}

	for _, row := range rows {
		insider, err := f.store.UpsertInsider(ctx, row.Insider, row.Relation)
		if err != nil {
			return 0, &StoreError{Op: "upsert insider " + row.Insider, Err: err}
		}
		t := &models.Trade{
			StockID:         stock.ID,
			InsiderID:       insider.ID,
			TransactionType: row.TransactionType,
			OwnerType:       row.OwnerType,
			LastDate:        row.LastDate,
			SharesTraded:    row.SharesTraded,
			LastPrice:       row.LastPrice,
			SharesHold:      row.SharesHold,
		}
		if err := f.store.InsertTrade(ctx, t); err != nil {
			return 0, &StoreError{Op: "insert trade", Err: err}
		}
	}
	return len(rows), nil
}
