package models

// Insider is a company officer or affiliate, identified by name. The relation
// follows the latest observation.
type Insider struct {
	Base
	Name     string `gorm:"size:100;not null;uniqueIndex:uq_insiders_name" json:"name"`
	Relation string `gorm:"size:100;not null" json:"relation"`
}

func (i *Insider) NaturalKey() map[string]interface{} {
	return map[string]interface{}{"name": i.Name}
}

func (i *Insider) Assignments() map[string]interface{} {
	return map[string]interface{}{"name": i.Name, "relation": i.Relation}
}

// Trade is a disclosed insider transaction. Trades have no natural key:
// every scraped row is appended, so re-fetching a page duplicates its rows.
type Trade struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	StockID         uint      `gorm:"not null;index" json:"stock_id"`
	InsiderID       uint      `gorm:"not null;index" json:"insider_id"`
	TransactionType string    `gorm:"size:100;not null" json:"transaction_type"`
	OwnerType       OwnerType `gorm:"not null" json:"owner_type"`
	LastDate        Date      `gorm:"not null" json:"last_date"`
	SharesTraded    int64     `gorm:"not null" json:"shares_traded"`
	LastPrice       *float64  `json:"last_price"`
	SharesHold      int64     `gorm:"not null" json:"shares_hold"`
	Stock           *Stock    `gorm:"foreignKey:StockID;constraint:OnUpdate:CASCADE" json:"-"`
	Insider         *Insider  `gorm:"foreignKey:InsiderID;constraint:OnUpdate:CASCADE" json:"insider,omitempty"`
}
