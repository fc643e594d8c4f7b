package models

// Stock is a ticker we have fetched data for. Rows are never deleted.
type Stock struct {
	Base
	Ticker string `gorm:"size:10;not null;uniqueIndex:uq_stocks_ticker" json:"ticker"`
}

func (s *Stock) NaturalKey() map[string]interface{} {
	return map[string]interface{}{"ticker": s.Ticker}
}

func (s *Stock) Assignments() map[string]interface{} {
	return map[string]interface{}{"ticker": s.Ticker}
}

// Quote is one trading day of price history, unique per (stock, date).
// This is time-series data: no Base embed.
type Quote struct {
	ID         uint    `gorm:"primaryKey" json:"-"`
	StockID    uint    `gorm:"not null;uniqueIndex:uq_quotes_stock_date" json:"-"`
	Date       Date    `gorm:"not null;uniqueIndex:uq_quotes_stock_date" json:"date"`
	OpenPrice  float64 `gorm:"not null" json:"open_price"`
	ClosePrice float64 `gorm:"not null" json:"close_price"`
	HighPrice  float64 `gorm:"not null" json:"high_price"`
	LowPrice   float64 `gorm:"not null" json:"low_price"`
	Volume     float64 `gorm:"not null" json:"volume"`
	Stock      *Stock  `gorm:"foreignKey:StockID;constraint:OnUpdate:CASCADE" json:"-"`
}

func (q *Quote) NaturalKey() map[string]interface{} {
	return map[string]interface{}{"stock_id": q.StockID, "date": q.Date}
}

func (q *Quote) Assignments() map[string]interface{} {
	return map[string]interface{}{
		"stock_id":    q.StockID,
		"date":        q.Date,
		"open_price":  q.OpenPrice,
		"close_price": q.ClosePrice,
		"high_price":  q.HighPrice,
		"low_price":   q.LowPrice,
		"volume":      q.Volume,
	}
}
