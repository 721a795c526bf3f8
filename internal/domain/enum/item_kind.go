package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// ItemKind distinguishes catalog services from stocked products
type ItemKind int

const (
	ItemKindService ItemKind = 0
	ItemKindProduct ItemKind = 1
)

var itemKindNames = []string{"service", "product"}

func (k ItemKind) String() string {
	return nameOf(itemKindNames, int(k), "unknown")
}

// IsValid reports whether k is a known kind
func (k ItemKind) IsValid() bool {
	return k == ItemKindService || k == ItemKindProduct
}

func (k ItemKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

func (k *ItemKind) UnmarshalJSON(data []byte) error {
	i, err := decodeName(data, itemKindNames, "item kind")
	if err != nil {
		return err
	}
	*k = ItemKind(i)
	return nil
}

func (k ItemKind) Value() (driver.Value, error) {
	return int64(k), nil
}

func (k *ItemKind) Scan(value interface{}) error {
	if i, ok := scanInt(value); ok {
		*k = ItemKind(i)
		return nil
	}
	*k = ItemKindService
	return nil
}
