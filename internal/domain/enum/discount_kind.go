package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// DiscountKind represents how a global sale discount is expressed
type DiscountKind int

const (
	DiscountKindPercentage DiscountKind = 0
	DiscountKindAmount     DiscountKind = 1
)

var discountKindNames = []string{"percentage", "amount"}

func (d DiscountKind) String() string {
	return nameOf(discountKindNames, int(d), "unknown")
}

func (d DiscountKind) IsValid() bool {
	return d == DiscountKindPercentage || d == DiscountKindAmount
}

func (d DiscountKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *DiscountKind) UnmarshalJSON(data []byte) error {
	i, err := decodeName(data, discountKindNames, "discount kind")
	if err != nil {
		return err
	}
	*d = DiscountKind(i)
	return nil
}

func (d DiscountKind) Value() (driver.Value, error) {
	return int64(d), nil
}

func (d *DiscountKind) Scan(value interface{}) error {
	if i, ok := scanInt(value); ok {
		*d = DiscountKind(i)
		return nil
	}
	*d = DiscountKindPercentage
	return nil
}
