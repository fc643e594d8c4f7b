package fetcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"stocks/internal/models"
	"stocks/internal/parser"
	"stocks/internal/scraper"
	"stocks/internal/store"
	"stocks/internal/testutil"
)

const historyPage = `<html><body><div id="quotes_content_left_pnlAJAX"><table>
<thead><tr><th>Date</th><th>Open</th><th>High</th><th>Low</th><th>Close</th><th>Volume</th></tr></thead>
<tbody>
<tr><td>03/05/2024</td><td>170.76</td><td>172.04</td><td>169.62</td><td>170.12</td><td>95,132,355</td></tr>
<tr><td>03/04/2024</td><td>176.15</td><td>176.90</td><td>173.79</td><td>175.10</td><td>81,510,100</td></tr>
</tbody></table></div></body></html>`

const tradesPage = `<html><body><div class="genTable"><table>
<tr><th>Insider</th><th>Relation</th><th>Date</th><th>Type</th><th>Owner</th><th>Traded</th><th>Price</th><th>Held</th></tr>
<tr><td>COOK TIMOTHY D</td><td>Chief Executive Officer</td><td>10/02/2023</td><td>Sell</td><td>Direct</td><td>511,000</td><td>173.04</td><td>3,280,557</td></tr>
<tr><td>LEVINSON ARTHUR D</td><td>Director</td><td>08/28/2023</td><td>Sell</td><td>Indirect</td><td>50,000</td><td></td><td>4,200,000</td></tr>
</table></div>
<a id="quotes_content_left_lb_LastPage" href="?page=1">Last</a>
</body></html>`

// mockSource implements Source for testing.
type mockSource struct {
	historyFn func(ctx context.Context, ticker string) ([]byte, error)
	tradesFn  func(ctx context.Context, ticker string, page int) ([]byte, error)
}

func (m *mockSource) History(ctx context.Context, ticker string) ([]byte, error) {
	if m.historyFn == nil {
		return []byte(historyPage), nil
	}
	return m.historyFn(ctx, ticker)
}

func (m *mockSource) Trades(ctx context.Context, ticker string, page int) ([]byte, error) {
	if m.tradesFn == nil {
		return []byte(tradesPage), nil
	}
	return m.tradesFn(ctx, ticker, page)
}

// memStore implements Store in memory.
type memStore struct {
	mu       sync.Mutex
	stocks   map[string]uint
	insiders map[string]uint
	quotes   map[string]*models.Quote
	trades   []*models.Trade
	failOn   string
}

func newMemStore() *memStore {
	return &memStore{
		stocks:   make(map[string]uint),
		insiders: make(map[string]uint),
		quotes:   make(map[string]*models.Quote),
	}
}

func (m *memStore) UpsertStock(_ context.Context, ticker string) (*models.Stock, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ticker == m.failOn {
		return nil, errors.New("database is locked")
	}
	id, ok := m.stocks[ticker]
	if !ok {
		id = uint(len(m.stocks) + 1)
		m.stocks[ticker] = id
	}
	s := &models.Stock{Ticker: ticker}
	s.ID = id
	return s, nil
}

func (m *memStore) UpsertQuote(_ context.Context, q *models.Quote) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.quotes[fmt.Sprintf("%d/%s", q.StockID, q.Date)] = q
	return nil
}

func (m *memStore) UpsertInsider(_ context.Context, name, relation string) (*models.Insider, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.insiders[name]
	if !ok {
		id = uint(len(m.insiders) + 1)
		m.insiders[name] = id
	}
	i := &models.Insider{Name: name, Relation: relation}
	i.ID = id
	return i, nil
}

func (m *memStore) InsertTrade(_ context.Context, t *models.Trade) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t.ID = uint(len(m.trades) + 1)
	m.trades = append(m.trades, t)
	return nil
}

// mockInvalidator records invalidated tickers.
type mockInvalidator struct {
	mu      sync.Mutex
	tickers []string
	err     error
}

func (m *mockInvalidator) Invalidate(_ context.Context, ticker string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tickers = append(m.tickers, ticker)
	return m.err
}

func newTestFetcher(t *testing.T, src Source, st Store, opts Options) *Fetcher {
	return New(src, st, nil, zaptest.NewLogger(t).Sugar(), opts)
}

func TestFetch_SchedulesTasks(t *testing.T) {
	var historyCalls, tradeCalls atomic.Int32
	pages := make(map[string][]int)
	var mu sync.Mutex

	src := &mockSource{
		historyFn: func(_ context.Context, _ string) ([]byte, error) {
			historyCalls.Add(1)
			return []byte(historyPage), nil
		},
		tradesFn: func(_ context.Context, ticker string, page int) ([]byte, error) {
			tradeCalls.Add(1)
			mu.Lock()
			pages[ticker] = append(pages[ticker], page)
			mu.Unlock()
			return []byte(tradesPage), nil
		},
	}

	f := newTestFetcher(t, src, newMemStore(), Options{MaxWorkers: 2, MaxTradesPages: 2})
	result := f.Fetch(context.Background(), []string{"AAPL", "MSFT", "GOOG"})

	if result.Tasks != 9 {
		t.Errorf("expected 9 tasks, got %d", result.Tasks)
	}
	if historyCalls.Load() != 3 {
		t.Errorf("expected 3 history fetches, got %d", historyCalls.Load())
	}
	if tradeCalls.Load() != 6 {
		t.Errorf("expected 6 trades fetches, got %d", tradeCalls.Load())
	}
	for _, ticker := range []string{"AAPL", "MSFT", "GOOG"} {
		if len(pages[ticker]) != 2 {
			t.Errorf("%s: expected pages 1 and 2, got %v", ticker, pages[ticker])
		}
	}
	if result.Succeeded != 9 || result.Failed != 0 {
		t.Errorf("expected 9 succeeded, got %d succeeded %d failed", result.Succeeded, result.Failed)
	}
	if result.RunID == "" {
		t.Error("expected a run ID")
	}
}

func TestFetch_ResultsInScheduleOrder(t *testing.T) {
	f := newTestFetcher(t, &mockSource{}, newMemStore(), Options{MaxWorkers: 4, MaxTradesPages: 1})
	result := f.Fetch(context.Background(), []string{"AAPL", "MSFT"})

	want := []struct {
		kind   TaskKind
		ticker string
		page   int
	}{
		{KindHistory, "AAPL", 0},
		{KindTrades, "AAPL", 1},
		{KindHistory, "MSFT", 0},
		{KindTrades, "MSFT", 1},
	}
	if len(result.Results) != len(want) {
		t.Fatalf("expected %d results, got %d", len(want), len(result.Results))
	}
	for i, w := range want {
		r := result.Results[i]
		if r.Kind != w.kind || r.Ticker != w.ticker || r.Page != w.page {
			t.Errorf("result %d: expected %v %s %d, got %v %s %d", i, w.kind, w.ticker, w.page, r.Kind, r.Ticker, r.Page)
		}
	}

	if result.Results[0].Rows != 2 || result.Results[0].Message != "AAPL: stored 2 quotes" {
		t.Errorf("unexpected history result: %+v", result.Results[0])
	}
	if result.Results[1].Rows != 2 || result.Results[1].Message != "AAPL page 1: stored 2 trades" {
		t.Errorf("unexpected trades result: %+v", result.Results[1])
	}
}

func TestFetch_PageBeyondLastIsEmpty(t *testing.T) {
	st := newMemStore()
	f := newTestFetcher(t, &mockSource{}, st, Options{MaxWorkers: 1, MaxTradesPages: 3})
	result := f.Fetch(context.Background(), []string{"AAPL"})

	if result.HasFailures() {
		t.Fatalf("expected no failures, got %+v", result.Results)
	}
	for _, r := range result.Results {
		if r.Kind == KindTrades && r.Page > 1 && r.Rows != 0 {
			t.Errorf("page %d: expected 0 rows, got %d", r.Page, r.Rows)
		}
	}
	if len(st.trades) != 2 {
		t.Errorf("expected only page 1 trades to be stored, got %d", len(st.trades))
	}
}

func TestFetch_FailureIsIsolated(t *testing.T) {
	src := &mockSource{
		historyFn: func(_ context.Context, ticker string) ([]byte, error) {
			if ticker == "BAD" {
				return nil, &scraper.StatusError{URL: "/symbol/bad/historical", StatusCode: 404}
			}
			return []byte(historyPage), nil
		},
		tradesFn: func(_ context.Context, ticker string, _ int) ([]byte, error) {
			if ticker == "BAD" {
				return nil, &scraper.StatusError{URL: "/symbol/bad/insider-trades", StatusCode: 404}
			}
			return []byte(tradesPage), nil
		},
	}

	st := newMemStore()
	f := newTestFetcher(t, src, st, Options{MaxWorkers: 3, MaxTradesPages: 1})
	result := f.Fetch(context.Background(), []string{"AAPL", "BAD", "MSFT"})

	if result.Failed != 2 || result.Succeeded != 4 {
		t.Fatalf("expected 2 failed and 4 succeeded, got %d and %d", result.Failed, result.Succeeded)
	}
	for _, r := range result.Results {
		if r.Ticker == "BAD" {
			if r.Failure() != FailureHTTP {
				t.Errorf("expected http failure, got %q", r.Failure())
			}
			continue
		}
		if r.Err != nil {
			t.Errorf("%s %s: unexpected error %v", r.Ticker, r.Kind, r.Err)
		}
	}

	if _, ok := st.stocks["BAD"]; ok {
		t.Error("failed ticker should not be stored")
	}
	if len(st.quotes) != 4 {
		t.Errorf("expected 4 quotes for the healthy tickers, got %d", len(st.quotes))
	}
}

func TestFetch_ParsingFailure(t *testing.T) {
	src := &mockSource{
		historyFn: func(context.Context, string) ([]byte, error) {
			return []byte("<html><body>maintenance</body></html>"), nil
		},
	}

	f := newTestFetcher(t, src, newMemStore(), Options{MaxWorkers: 1})
	result := f.Fetch(context.Background(), []string{"AAPL"})

	if result.Failed != 1 {
		t.Fatalf("expected 1 failure, got %d", result.Failed)
	}
	if got := result.Results[0].Failure(); got != FailureParsing {
		t.Errorf("expected parsing failure, got %q", got)
	}
}

func TestFetch_StoreFailure(t *testing.T) {
	st := newMemStore()
	st.failOn = "AAPL"

	f := newTestFetcher(t, &mockSource{}, st, Options{MaxWorkers: 1, MaxTradesPages: 1})
	result := f.Fetch(context.Background(), []string{"AAPL"})

	for _, r := range result.Results {
		if r.Failure() != FailureStore {
			t.Errorf("%s: expected store failure, got %q (%v)", r.Kind, r.Failure(), r.Err)
		}
	}
}

func TestFetch_PanicRecovered(t *testing.T) {
	src := &mockSource{
		historyFn: func(_ context.Context, ticker string) ([]byte, error) {
			if ticker == "BOOM" {
				panic("nil map")
			}
			return []byte(historyPage), nil
		},
	}

	f := newTestFetcher(t, src, newMemStore(), Options{MaxWorkers: 2})
	result := f.Fetch(context.Background(), []string{"BOOM", "AAPL"})

	if result.Failed != 1 || result.Succeeded != 1 {
		t.Fatalf("expected one failure and one success, got %d/%d", result.Failed, result.Succeeded)
	}
	if got := result.Results[0].Failure(); got != FailureUnexpected {
		t.Errorf("expected unexpected failure, got %q", got)
	}
}

func TestFetch_BoundedWorkers(t *testing.T) {
	var inFlight, peak atomic.Int32
	track := func() {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		inFlight.Add(-1)
	}

	src := &mockSource{
		historyFn: func(context.Context, string) ([]byte, error) {
			track()
			return []byte(historyPage), nil
		},
		tradesFn: func(context.Context, string, int) ([]byte, error) {
			track()
			return []byte(tradesPage), nil
		},
	}

	f := newTestFetcher(t, src, newMemStore(), Options{MaxWorkers: 2, MaxTradesPages: 3})
	result := f.Fetch(context.Background(), []string{"A", "B", "C", "D"})

	if result.Tasks != 16 {
		t.Errorf("expected 16 tasks, got %d", result.Tasks)
	}
	if peak.Load() > 2 {
		t.Errorf("expected at most 2 concurrent fetches, saw %d", peak.Load())
	}
}

func TestFetch_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := newTestFetcher(t, &mockSource{}, newMemStore(), Options{MaxWorkers: 2, MaxTradesPages: 1})
	result := f.Fetch(ctx, []string{"AAPL"})

	if result.Failed != 2 {
		t.Errorf("expected every task to fail, got %d failures", result.Failed)
	}
}

func TestFetch_NoTickers(t *testing.T) {
	f := newTestFetcher(t, &mockSource{}, newMemStore(), Options{MaxWorkers: 4, MaxTradesPages: 2})
	result := f.Fetch(context.Background(), nil)

	if result.Tasks != 0 || result.HasFailures() {
		t.Errorf("expected empty run, got %+v", result)
	}
}

func TestFetch_InvalidatesCacheAfterHistory(t *testing.T) {
	inv := &mockInvalidator{}
	f := New(&mockSource{}, newMemStore(), inv, zap.NewNop().Sugar(), Options{MaxWorkers: 1, MaxTradesPages: 1})
	f.Fetch(context.Background(), []string{"AAPL"})

	if len(inv.tickers) != 1 || inv.tickers[0] != "AAPL" {
		t.Errorf("expected AAPL to be invalidated once, got %v", inv.tickers)
	}
}

func TestFetch_InvalidateFailureLoggedWithRunID(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	inv := &mockInvalidator{err: errors.New("redis down")}
	f := New(&mockSource{}, newMemStore(), inv, zap.New(core).Sugar(), Options{MaxWorkers: 1, MaxTradesPages: 1})

	result := f.Fetch(context.Background(), []string{"AAPL"})
	if result.HasFailures() {
		t.Fatalf("cache failure should not fail the task, got %+v", result.Results)
	}

	entries := logs.FilterMessage("failed to invalidate analytics cache").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 invalidation warning, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["run_id"]; got != result.RunID {
		t.Errorf("expected run_id %q, got %v", result.RunID, got)
	}
}

func TestFetch_EmptyTradesPageRecordsStock(t *testing.T) {
	const emptyTrades = `<html><body><div class="genTable"><table>
<tr><th>Insider</th><th>Relation</th><th>Date</th><th>Type</th><th>Owner</th><th>Traded</th><th>Price</th><th>Held</th></tr>
</table></div></body></html>`

	src := &mockSource{
		historyFn: func(context.Context, string) ([]byte, error) {
			return nil, &scraper.StatusError{URL: "/symbol/aapl/historical", StatusCode: 503}
		},
		tradesFn: func(context.Context, string, int) ([]byte, error) {
			return []byte(emptyTrades), nil
		},
	}
	st := newMemStore()
	f := newTestFetcher(t, src, st, Options{MaxWorkers: 1, MaxTradesPages: 1})

	result := f.Fetch(context.Background(), []string{"AAPL"})
	if result.Failed != 1 || result.Succeeded != 1 {
		t.Fatalf("expected 1 failed and 1 succeeded, got %d and %d", result.Failed, result.Succeeded)
	}
	if _, ok := st.stocks["AAPL"]; !ok {
		t.Error("expected AAPL to be stored from an empty trades page")
	}
	if len(st.trades) != 0 {
		t.Errorf("expected no trades, got %d", len(st.trades))
	}
}

func TestFetch_PersistsThroughStore(t *testing.T) {
	db := testutil.SetupTestDB(t)
	f := newTestFetcher(t, &mockSource{}, store.New(db), Options{MaxWorkers: 4, MaxTradesPages: 2})

	result := f.Fetch(context.Background(), []string{"AAPL", "MSFT"})
	if result.HasFailures() {
		for _, r := range result.Results {
			if r.Err != nil {
				t.Errorf("%s %s page %d: %v", r.Ticker, r.Kind, r.Page, r.Err)
			}
		}
		t.FailNow()
	}

	testutil.AssertRowCount(t, db, "stocks", 2)
	testutil.AssertRowCount(t, db, "quotes", 4)
	testutil.AssertRowCount(t, db, "insiders", 2)
	testutil.AssertRowCount(t, db, "trades", 4)

	// A second run updates quotes in place and appends trades again.
	f.Fetch(context.Background(), []string{"AAPL"})
	testutil.AssertRowCount(t, db, "quotes", 4)
	testutil.AssertRowCount(t, db, "trades", 6)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Failure
	}{
		{name: "nil", err: nil, want: FailureNone},
		{name: "parsing", err: &parser.ParsingError{Selector: "div.genTable"}, want: FailureParsing},
		{name: "http", err: fmt.Errorf("get: %w", &scraper.StatusError{StatusCode: 500}), want: FailureHTTP},
		{name: "transport", err: fmt.Errorf("http request: %w", &url.Error{Op: "Get", URL: "x", Err: errors.New("refused")}), want: FailureTransport},
		{name: "deadline", err: context.DeadlineExceeded, want: FailureTransport},
		{name: "store", err: &StoreError{Op: "upsert stock", Err: errors.New("locked")}, want: FailureStore},
		{name: "panic", err: &PanicError{Value: "boom"}, want: FailureUnexpected},
		{name: "other", err: errors.New("something"), want: FailureUnexpected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err); got != tt.want {
				t.Errorf("Classify(%v) = %q, want %q", tt.err, got, tt.want)
			}
		})
	}
}

func TestStoreError(t *testing.T) {
	err := &StoreError{Op: "insert trade", Err: errors.New("disk full")}
	if !strings.Contains(err.Error(), "insert trade") {
		t.Errorf("unexpected message %q", err.Error())
	}
	if errors.Unwrap(err) == nil {
		t.Error("expected wrapped error")
	}
}

func TestTaskResult_MarshalJSON(t *testing.T) {
	ok, err := json.Marshal(TaskResult{Kind: KindHistory, Ticker: "AAPL", Rows: 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(string(ok), "failure") {
		t.Errorf("successful task must not carry a failure: %s", ok)
	}

	failed, err := json.Marshal(TaskResult{
		Kind: KindTrades, Ticker: "AAPL", Page: 2,
		Err: &scraper.StatusError{URL: "u", StatusCode: 502},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal(failed, &decoded); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decoded["failure"] != "http" || decoded["ticker"] != "AAPL" || decoded["page"] != float64(2) {
		t.Errorf("unexpected encoding: %s", failed)
	}
}
