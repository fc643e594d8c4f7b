package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"stocks/internal/models"

	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestStock creates a stock with a unique ticker.
func CreateTestStock(t *testing.T, db *gorm.DB) *models.Stock {
	t.Helper()
	return CreateTestStockWithTicker(t, db, fmt.Sprintf("T%d", nextID()))
}

// CreateTestStockWithTicker creates a stock with the given ticker.
func CreateTestStockWithTicker(t *testing.T, db *gorm.DB, ticker string) *models.Stock {
	t.Helper()

	stock := &models.Stock{Ticker: ticker}
	if err := db.Create(stock).Error; err != nil {
		t.Fatalf("failed to create test stock: %v", err)
	}
	return stock
}

// CreateTestQuote creates a quote for stockID on date. Every price is set to
// price so tests can control the deltas directly.
func CreateTestQuote(t *testing.T, db *gorm.DB, stockID uint, date string, price float64) *models.Quote {
	t.Helper()

	quote := &models.Quote{
		StockID:    stockID,
		Date:       Day(t, date),
		OpenPrice:  price,
		ClosePrice: price,
		HighPrice:  price,
		LowPrice:   price,
		Volume:     1000,
	}
	if err := db.Create(quote).Error; err != nil {
		t.Fatalf("failed to create test quote: %v", err)
	}
	return quote
}

// CreateTestInsider creates an insider with the given name.
func CreateTestInsider(t *testing.T, db *gorm.DB, name string) *models.Insider {
	t.Helper()

	insider := &models.Insider{Name: name, Relation: "Director"}
	if err := db.Create(insider).Error; err != nil {
		t.Fatalf("failed to create test insider: %v", err)
	}
	return insider
}

// CreateTestTrade creates a direct purchase trade by insiderID on stockID.
func CreateTestTrade(t *testing.T, db *gorm.DB, stockID, insiderID uint, date string) *models.Trade {
	t.Helper()

	price := 10.5
	trade := &models.Trade{
		StockID:         stockID,
		InsiderID:       insiderID,
		TransactionType: "Buy",
		OwnerType:       models.OwnerTypeDirect,
		LastDate:        Day(t, date),
		SharesTraded:    100,
		LastPrice:       &price,
		SharesHold:      1000,
	}
	if err := db.Create(trade).Error; err != nil {
		t.Fatalf("failed to create test trade: %v", err)
	}
	return trade
}

// Day returns date as a models.Date, failing the test on a bad layout.
func Day(t *testing.T, date string) models.Date {
	t.Helper()

	d, err := models.ParseDate(date)
	if err != nil {
		t.Fatalf("invalid date %q: %v", date, err)
	}
	return d
}
