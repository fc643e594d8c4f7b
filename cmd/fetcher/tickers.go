package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"stocks/internal/logger"
	"stocks/internal/services"
	"stocks/internal/validator"
)

// readTickers reads one ticker per line from path.
func readTickers(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parseTickers(f)
}

// parseTickers upper-cases each line, skipping blank lines and symbols that
// cannot be tickers. Duplicates are dropped in order.
func parseTickers(r io.Reader) ([]string, error) {
	var tickers []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		t := services.NormalizeTicker(scanner.Text())
		if t == "" {
			continue
		}
		if !validator.IsTicker(t) {
			logger.Get().Warnw("skipping invalid ticker", "line", line, "value", t)
			continue
		}
		if seen[t] {
			continue
		}
		seen[t] = true
		tickers = append(tickers, t)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read tickers: %w", err)
	}
	return tickers, nil
}
