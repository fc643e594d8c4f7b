package services

import (
	"context"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	apperrors "stocks/internal/errors"
	"stocks/internal/fetcher"
	"stocks/internal/uuid"
	"stocks/internal/validator"
)

// Runner runs a fetch under a given run ID. *fetcher.Fetcher implements it.
type Runner interface {
	Run(ctx context.Context, runID string, tickers []string) *fetcher.RunResult
}

// fetchService starts at most one background fetch run at a time.
type fetchService struct {
	runner  Runner
	log     *zap.SugaredLogger
	running atomic.Bool
	wg      sync.WaitGroup

	mu   sync.RWMutex
	last *fetcher.RunResult
}

// NewFetchService creates a new FetchServicer.
func NewFetchService(runner Runner, log *zap.SugaredLogger) FetchServicer {
	return &fetchService{runner: runner, log: log}
}

// Start validates tickers and launches a run in the background, returning its
// run ID. It fails with ErrFetchInProgress while another run is active.
func (s *fetchService) Start(tickers []string) (string, error) {
	if len(tickers) == 0 {
		return "", apperrors.WithMessage(apperrors.ErrInvalidInput, "At least one ticker is required")
	}

	normalized := make([]string, 0, len(tickers))
	seen := make(map[string]bool, len(tickers))
	for _, t := range tickers {
		t = NormalizeTicker(t)
		if !validator.IsTicker(t) {
			return "", apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid ticker: "+t)
		}
		if !seen[t] {
			seen[t] = true
			normalized = append(normalized, t)
		}
	}

	if !s.running.CompareAndSwap(false, true) {
		return "", apperrors.ErrFetchInProgress
	}

	runID := uuid.New()
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.running.Store(false)

		result := s.runner.Run(context.Background(), runID, normalized)

		s.mu.Lock()
		s.last = result
		s.mu.Unlock()
	}()

	s.log.Infow("fetch run scheduled", "run_id", runID, "tickers", normalized)
	return runID, nil
}

// Running reports whether a run is in progress.
func (s *fetchService) Running() bool {
	return s.running.Load()
}

// LastRun returns the result of the most recently finished run, or nil.
func (s *fetchService) LastRun() *fetcher.RunResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}

// Wait blocks until the current run, if any, has finished.
func (s *fetchService) Wait() {
	s.wg.Wait()
}
