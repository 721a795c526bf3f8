package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// SaleStatus represents the status of a recorded sale
type SaleStatus int

const (
	SaleStatusCompleted SaleStatus = 0
	SaleStatusCancelled SaleStatus = 1
)

var saleStatusNames = []string{"completed", "cancelled"}

func (s SaleStatus) String() string {
	return nameOf(saleStatusNames, int(s), "completed")
}

func (s SaleStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *SaleStatus) UnmarshalJSON(data []byte) error {
	i, err := decodeName(data, saleStatusNames, "sale status")
	if err != nil {
		return err
	}
	*s = SaleStatus(i)
	return nil
}

func (s SaleStatus) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *SaleStatus) Scan(value interface{}) error {
	if i, ok := scanInt(value); ok {
		*s = SaleStatus(i)
		return nil
	}
	*s = SaleStatusCompleted
	return nil
}
