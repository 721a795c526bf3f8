package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// LoyaltyEntryType classifies a movement on a customer's points balance
type LoyaltyEntryType int

const (
	LoyaltyEntryEarn     LoyaltyEntryType = 0
	LoyaltyEntryRedeem   LoyaltyEntryType = 1
	LoyaltyEntryReversal LoyaltyEntryType = 2
)

var loyaltyEntryNames = []string{"earn", "redeem", "reversal"}

func (t LoyaltyEntryType) String() string {
	return nameOf(loyaltyEntryNames, int(t), "earn")
}

func (t LoyaltyEntryType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *LoyaltyEntryType) UnmarshalJSON(data []byte) error {
	i, err := decodeName(data, loyaltyEntryNames, "loyalty entry type")
	if err != nil {
		return err
	}
	*t = LoyaltyEntryType(i)
	return nil
}

func (t LoyaltyEntryType) Value() (driver.Value, error) {
	return int64(t), nil
}

func (t *LoyaltyEntryType) Scan(value interface{}) error {
	if i, ok := scanInt(value); ok {
		*t = LoyaltyEntryType(i)
		return nil
	}
	*t = LoyaltyEntryEarn
	return nil
}
