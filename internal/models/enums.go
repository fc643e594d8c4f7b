package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// OwnerType classifies how an insider holds the traded shares.
type OwnerType int

const (
	OwnerTypeDirect OwnerType = iota + 1
	OwnerTypeIndirect
)

var ownerTypeNames = map[OwnerType]string{
	OwnerTypeDirect:   "direct",
	OwnerTypeIndirect: "indirect",
}

// ParseOwnerType maps a scraped or stored label to an OwnerType.
// The single-letter SEC abbreviations D and I are accepted too.
func ParseOwnerType(s string) (OwnerType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "direct", "d":
		return OwnerTypeDirect, nil
	case "indirect", "i":
		return OwnerTypeIndirect, nil
	}
	return 0, fmt.Errorf("unknown owner type %q", s)
}

func (o OwnerType) String() string {
	if name, ok := ownerTypeNames[o]; ok {
		return name
	}
	return fmt.Sprintf("OwnerType(%d)", int(o))
}

// GormDataType implements gorm's schema.GormDataTypeInterface.
func (OwnerType) GormDataType() string {
	return "varchar(8)"
}

// Value implements driver.Valuer.
func (o OwnerType) Value() (driver.Value, error) {
	name, ok := ownerTypeNames[o]
	if !ok {
		return nil, fmt.Errorf("invalid owner type %d", int(o))
	}
	return name, nil
}

// Scan implements sql.Scanner.
func (o *OwnerType) Scan(value interface{}) error {
	var s string
	switch v := value.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return fmt.Errorf("cannot scan %T into OwnerType", value)
	}
	parsed, err := ParseOwnerType(s)
	if err != nil {
		return err
	}
	*o = parsed
	return nil
}

func (o OwnerType) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.String())
}

// PriceType selects one of the four daily quote prices.
type PriceType int

const (
	PriceTypeOpen PriceType = iota + 1
	PriceTypeClose
	PriceTypeLow
	PriceTypeHigh
)

// PriceTypes lists every price type in display order.
var PriceTypes = []PriceType{PriceTypeOpen, PriceTypeClose, PriceTypeLow, PriceTypeHigh}

var priceTypeNames = map[PriceType]string{
	PriceTypeOpen:  "open",
	PriceTypeClose: "close",
	PriceTypeLow:   "low",
	PriceTypeHigh:  "high",
}

// ParsePriceType maps "open", "close", "low" or "high" to a PriceType.
func ParsePriceType(s string) (PriceType, error) {
	for t, name := range priceTypeNames {
		if name == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown price type %q", s)
}

func (p PriceType) String() string {
	if name, ok := priceTypeNames[p]; ok {
		return name
	}
	return fmt.Sprintf("PriceType(%d)", int(p))
}

// Price returns the quote's price of this type.
func (p PriceType) Price(q Quote) float64 {
	switch p {
	case PriceTypeOpen:
		return q.OpenPrice
	case PriceTypeClose:
		return q.ClosePrice
	case PriceTypeLow:
		return q.LowPrice
	case PriceTypeHigh:
		return q.HighPrice
	}
	return 0
}

func (p PriceType) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

func (p *PriceType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParsePriceType(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
