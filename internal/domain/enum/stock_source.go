package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// StockSource selects which inventory pool a product line draws from
type StockSource int

const (
	StockSourceForSale     StockSource = 0
	StockSourceInternalUse StockSource = 1
)

var stockSourceNames = []string{"for_sale", "internal_use"}

func (s StockSource) String() string {
	return nameOf(stockSourceNames, int(s), "unknown")
}

// IsValid reports whether s is a known pool
func (s StockSource) IsValid() bool {
	return s == StockSourceForSale || s == StockSourceInternalUse
}

func (s StockSource) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *StockSource) UnmarshalJSON(data []byte) error {
	i, err := decodeName(data, stockSourceNames, "stock source")
	if err != nil {
		return err
	}
	*s = StockSource(i)
	return nil
}

func (s StockSource) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *StockSource) Scan(value interface{}) error {
	if i, ok := scanInt(value); ok {
		*s = StockSource(i)
		return nil
	}
	*s = StockSourceForSale
	return nil
}

// Column returns the products column holding this pool's quantity
func (s StockSource) Column() string {
	if s == StockSourceInternalUse {
		return "stock_internal"
	}
	return "stock_for_sale"
}
