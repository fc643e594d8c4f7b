package testutil_test

import (
	"testing"

	"stocks/internal/errors"
	"stocks/internal/models"
	"stocks/internal/testutil"
)

func TestSetupTestDB(t *testing.T) {
	db := testutil.SetupTestDB(t)

	for _, table := range []string{"stocks", "quotes", "insiders", "trades"} {
		testutil.AssertRowCount(t, db, table, 0)
	}
}

func TestFixtures(t *testing.T) {
	db := testutil.SetupTestDB(t)

	stock := testutil.CreateTestStock(t, db)
	if stock.ID == 0 {
		t.Fatal("stock should have a non-zero ID")
	}

	quote := testutil.CreateTestQuote(t, db, stock.ID, "2024-01-02", 12.5)
	if quote.ClosePrice != 12.5 || quote.Date.String() != "2024-01-02" {
		t.Errorf("unexpected quote: %+v", quote)
	}

	insider := testutil.CreateTestInsider(t, db, "DOE JANE")
	trade := testutil.CreateTestTrade(t, db, stock.ID, insider.ID, "2024-01-03")
	if trade.OwnerType != models.OwnerTypeDirect {
		t.Errorf("expected direct owner type, got %v", trade.OwnerType)
	}

	testutil.AssertRowCount(t, db, "trades", 1)
}

func TestAssertAppError(t *testing.T) {
	testutil.AssertAppError(t, errors.ErrStockNotFound, "STOCK_NOT_FOUND")
}
