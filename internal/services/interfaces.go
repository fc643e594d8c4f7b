package services

import (
	"context"

	"stocks/internal/fetcher"
	"stocks/internal/models"
	"stocks/internal/pagination"
)

// StockServicer defines the contract for reading scraped stocks, quotes and trades.
type StockServicer interface {
	ListStocks(page pagination.PageRequest) (*pagination.PageResponse[models.Stock], error)
	GetStock(ticker string) (*models.Stock, error)
	ListQuotes(ticker string, page pagination.PageRequest) (*pagination.PageResponse[models.Quote], error)
	ListTrades(ticker string, page pagination.PageRequest) (*pagination.PageResponse[models.Trade], error)
	ListInsiderTrades(ticker, name string, page pagination.PageRequest) (*pagination.PageResponse[models.Trade], error)
}

// PriceDiff is the change of one price type between two trading days.
type PriceDiff struct {
	StartDate  models.Date      `json:"start_date"`
	EndDate    models.Date      `json:"end_date"`
	StartPrice float64          `json:"start_price"`
	EndPrice   float64          `json:"end_price"`
	PriceType  models.PriceType `json:"price_type"`
	PriceDiff  float64          `json:"price_diff"`
	DateDiff   int              `json:"date_diff,omitempty"`
}

// AnalyticsServicer defines the contract for price-difference analytics.
type AnalyticsServicer interface {
	Analytics(ctx context.Context, ticker string, from, to models.Date) ([]PriceDiff, error)
	Delta(ctx context.Context, ticker string, value float64, priceType models.PriceType) ([]PriceDiff, error)
}

// FetchServicer defines the contract for triggering scrape runs from the API.
type FetchServicer interface {
	Start(tickers []string) (string, error)
	Running() bool
	LastRun() *fetcher.RunResult
	Wait()
}
