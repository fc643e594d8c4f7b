// Package store persists scraped records. Stocks, quotes and insiders are
// upserted by natural key; trades are appended.
package store

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"stocks/internal/models"
)

const pgUniqueViolation = "23505"

// Store writes records through a shared *gorm.DB. Every call runs in its own
// transaction, so a Store is safe to use from many workers at once.
type Store struct {
	db *gorm.DB
}

// New creates a Store.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// UpsertStock returns the stock for ticker, creating it if needed.
func (s *Store) UpsertStock(ctx context.Context, ticker string) (*models.Stock, error) {
	stock := &models.Stock{Ticker: ticker}
	if err := upsert(ctx, s.db, stock); err != nil {
		return nil, err
	}
	return stock, nil
}

// UpsertQuote inserts q or overwrites the prices of the existing
// (stock, date) quote. q is reloaded with the resident row.
func (s *Store) UpsertQuote(ctx context.Context, q *models.Quote) error {
	return upsert(ctx, s.db, q)
}

// UpsertInsider returns the insider called name, creating it if needed. An
// existing insider takes the new relation.
func (s *Store) UpsertInsider(ctx context.Context, name, relation string) (*models.Insider, error) {
	insider := &models.Insider{Name: name, Relation: relation}
	if err := upsert(ctx, s.db, insider); err != nil {
		return nil, err
	}
	return insider, nil
}

// InsertTrade appends t. Trades have no natural key and are never merged.
func (s *Store) InsertTrade(ctx context.Context, t *models.Trade) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Omit("Stock", "Insider").Create(t).Error
	})
}

// upsert tries to insert rec. When the insert hits the natural-key unique
// index, the failed transaction is rolled back and the resident row is
// updated with rec's assignments in a fresh one. rec ends up holding the
// resident row either way.
func upsert[T any, PT interface {
	*T
	models.Keyed
}](ctx context.Context, db *gorm.DB, rec PT) error {
	db = db.WithContext(ctx)

	err := db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(rec).Error
	})
	if err == nil {
		return nil
	}
	if !isUniqueConstraintError(err) {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		key := rec.NaturalKey()
		if err := tx.Model(PT(new(T))).Where(key).Updates(rec.Assignments()).Error; err != nil {
			return err
		}

		resident := PT(new(T))
		if err := tx.Where(key).First(resident).Error; err != nil {
			return err
		}
		*rec = *resident
		return nil
	})
}

// isUniqueConstraintError checks if an insert failed on a unique index.
func isUniqueConstraintError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}

	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || // SQLite
		strings.Contains(msg, "duplicate key value violates unique constraint") // PostgreSQL
}
