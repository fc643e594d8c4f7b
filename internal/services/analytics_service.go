package services

import (
	"context"
	"math"
	"strconv"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"stocks/internal/cache"
	apperrors "stocks/internal/errors"
	"stocks/internal/models"
)

// analyticsService computes price differences between trading days. Results
// are cached per ticker until the next fetch replaces its quotes.
type analyticsService struct {
	db    *gorm.DB
	cache cache.Cache
	log   *zap.SugaredLogger
}

// NewAnalyticsService creates a new AnalyticsServicer.
func NewAnalyticsService(db *gorm.DB, c cache.Cache, log *zap.SugaredLogger) AnalyticsServicer {
	if c == nil {
		c = cache.Nop{}
	}
	return &analyticsService{db: db, cache: c, log: log}
}

// Analytics returns, for every price type, the difference between every pair
// of trading days d1 < d2 with from <= d1 and d2 <= to.
func (s *analyticsService) Analytics(ctx context.Context, ticker string, from, to models.Date) ([]PriceDiff, error) {
	if from.After(to.Time) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "date_from must not be after date_to")
	}

	stock, err := findStock(s.db, ticker)
	if err != nil {
		return nil, err
	}

	key := cache.Key(stock.Ticker, "analytics", from.String(), to.String())
	return s.cached(ctx, key, func() ([]PriceDiff, error) {
		quotes, err := s.quotes(ctx, stock.ID, &from, &to)
		if err != nil {
			return nil, err
		}
		return pairDiffs(quotes), nil
	})
}

// Delta returns the pairs of trading days whose priceType difference is at
// least value, keeping only the pairs with the shortest distance in days.
func (s *analyticsService) Delta(ctx context.Context, ticker string, value float64, priceType models.PriceType) ([]PriceDiff, error) {
	if value < 0 || math.IsNaN(value) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "value must not be negative")
	}
	if _, err := models.ParsePriceType(priceType.String()); err != nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "unknown price type")
	}

	stock, err := findStock(s.db, ticker)
	if err != nil {
		return nil, err
	}

	key := cache.Key(stock.Ticker, "delta", strconv.FormatFloat(value, 'g', -1, 64), priceType.String())
	return s.cached(ctx, key, func() ([]PriceDiff, error) {
		quotes, err := s.quotes(ctx, stock.ID, nil, nil)
		if err != nil {
			return nil, err
		}
		return minimalDeltas(quotes, value, priceType), nil
	})
}

// cached serves key from the cache, computing and storing it on a miss. Cache
// failures degrade to computing the result every time.
func (s *analyticsService) cached(ctx context.Context, key string, compute func() ([]PriceDiff, error)) ([]PriceDiff, error) {
	var result []PriceDiff
	found, err := s.cache.Get(ctx, key, &result)
	if err != nil {
		s.log.Warnw("analytics cache read failed", "key", key, "error", err)
	}
	if found {
		return result, nil
	}

	result, err = compute()
	if err != nil {
		return nil, err
	}
	if result == nil {
		result = []PriceDiff{}
	}

	if err := s.cache.Set(ctx, key, result); err != nil {
		s.log.Warnw("analytics cache write failed", "key", key, "error", err)
	}
	return result, nil
}

// quotes loads the quotes of a stock in date order, optionally bounded.
func (s *analyticsService) quotes(ctx context.Context, stockID uint, from, to *models.Date) ([]models.Quote, error) {
	q := s.db.WithContext(ctx).Where("stock_id = ?", stockID)
	if from != nil {
		q = q.Where("date >= ?", *from)
	}
	if to != nil {
		q = q.Where("date <= ?", *to)
	}

	var quotes []models.Quote
	if err := q.Order("date ASC").Find(&quotes).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return quotes, nil
}

// pairDiffs expects quotes in ascending date order with unique dates.
func pairDiffs(quotes []models.Quote) []PriceDiff {
	n := len(quotes)
	result := make([]PriceDiff, 0, len(models.PriceTypes)*n*(n-1)/2)
	for _, pt := range models.PriceTypes {
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				result = append(result, newPriceDiff(quotes[i], quotes[j], pt))
			}
		}
	}
	return result
}

// minimalDeltas expects quotes in ascending date order with unique dates.
func minimalDeltas(quotes []models.Quote, value float64, pt models.PriceType) []PriceDiff {
	var result []PriceDiff
	best := math.MaxInt
	for i := 0; i < len(quotes); i++ {
		for j := i + 1; j < len(quotes); j++ {
			days := quotes[i].Date.DaysUntil(quotes[j].Date)
			if days > best {
				// Later j only move further away from i.
				break
			}

			d := newPriceDiff(quotes[i], quotes[j], pt)
			if d.PriceDiff < value {
				continue
			}
			if days < best {
				best = days
				result = result[:0]
			}
			d.DateDiff = days
			result = append(result, d)
		}
	}
	return result
}

func newPriceDiff(start, end models.Quote, pt models.PriceType) PriceDiff {
	startPrice, endPrice := pt.Price(start), pt.Price(end)
	return PriceDiff{
		StartDate:  start.Date,
		EndDate:    end.Date,
		StartPrice: startPrice,
		EndPrice:   endPrice,
		PriceType:  pt,
		PriceDiff:  math.Abs(startPrice - endPrice),
	}
}
