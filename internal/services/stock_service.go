package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "stocks/internal/errors"
	"stocks/internal/models"
	"stocks/internal/pagination"
)

// stockService handles read access to scraped data.
type stockService struct {
	db *gorm.DB
}

// NewStockService creates a new StockServicer.
func NewStockService(db *gorm.DB) StockServicer {
	return &stockService{db: db}
}

// NormalizeTicker trims and upper-cases a ticker the way it is stored.
func NormalizeTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}

func (s *stockService) ListStocks(page pagination.PageRequest) (*pagination.PageResponse[models.Stock], error) {
	result, err := pagination.Load[models.Stock](s.db, page, pagination.OrderBy("ticker ASC"))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return result, nil
}

// GetStock returns the stock for ticker or ErrStockNotFound.
func (s *stockService) GetStock(ticker string) (*models.Stock, error) {
	return findStock(s.db, ticker)
}

func findStock(db *gorm.DB, ticker string) (*models.Stock, error) {
	var stock models.Stock
	if err := db.Where("ticker = ?", NormalizeTicker(ticker)).First(&stock).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrStockNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &stock, nil
}

// ListQuotes returns the quotes of ticker, newest first.
func (s *stockService) ListQuotes(ticker string, page pagination.PageRequest) (*pagination.PageResponse[models.Quote], error) {
	stock, err := findStock(s.db, ticker)
	if err != nil {
		return nil, err
	}

	result, err := pagination.Load[models.Quote](s.db.Where("stock_id = ?", stock.ID), page, pagination.OrderBy("date DESC"))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return result, nil
}

// ListTrades returns the insider trades of ticker with their insiders, newest first.
func (s *stockService) ListTrades(ticker string, page pagination.PageRequest) (*pagination.PageResponse[models.Trade], error) {
	stock, err := findStock(s.db, ticker)
	if err != nil {
		return nil, err
	}
	return s.listTrades(s.db.Where("stock_id = ?", stock.ID), page)
}

// ListInsiderTrades returns the trades of ticker made by the insider called name.
func (s *stockService) ListInsiderTrades(ticker, name string, page pagination.PageRequest) (*pagination.PageResponse[models.Trade], error) {
	stock, err := findStock(s.db, ticker)
	if err != nil {
		return nil, err
	}

	var insider models.Insider
	if err := s.db.Where("name = ?", name).First(&insider).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInsiderNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return s.listTrades(s.db.Where("stock_id = ? AND insider_id = ?", stock.ID, insider.ID), page)
}

func (s *stockService) listTrades(scope *gorm.DB, page pagination.PageRequest) (*pagination.PageResponse[models.Trade], error) {
	result, err := pagination.Load[models.Trade](scope, page,
		func(db *gorm.DB) *gorm.DB { return db.Preload("Insider") },
		pagination.OrderBy("last_date DESC, id ASC"),
	)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return result, nil
}
