package models

import "time"

// Base contains common columns for the reference tables (stocks, insiders).
type Base struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// Keyed is a record that can be upserted by its natural key.
type Keyed interface {
	// NaturalKey returns the column/value pairs identifying the record.
	NaturalKey() map[string]interface{}
	// Assignments returns every column written when the record already exists.
	Assignments() map[string]interface{}
}

// All returns every model, in foreign-key order, for auto-migration.
func All() []interface{} {
	return []interface{}{
		&Stock{},
		&Quote{},
		&Insider{},
		&Trade{},
	}
}
