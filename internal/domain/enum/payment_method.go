package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// PaymentMethod represents how one instalment of a sale was paid
type PaymentMethod int

const (
	PaymentMethodCash        PaymentMethod = 0
	PaymentMethodOrangeMoney PaymentMethod = 1
	PaymentMethodWave        PaymentMethod = 2
	PaymentMethodCard        PaymentMethod = 3
)

var paymentMethodNames = []string{"cash", "orange_money", "wave", "card"}

// PaymentMethods lists every accepted method in display order
func PaymentMethods() []PaymentMethod {
	return []PaymentMethod{PaymentMethodCash, PaymentMethodOrangeMoney, PaymentMethodWave, PaymentMethodCard}
}

func (m PaymentMethod) String() string {
	return nameOf(paymentMethodNames, int(m), "unknown")
}

func (m PaymentMethod) IsValid() bool {
	return m >= PaymentMethodCash && m <= PaymentMethodCard
}

// IsMobileMoney reports whether the method is a mobile-money wallet.
// Mobile-money payments are expected to carry a transaction reference.
func (m PaymentMethod) IsMobileMoney() bool {
	return m == PaymentMethodOrangeMoney || m == PaymentMethodWave
}

func (m PaymentMethod) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

func (m *PaymentMethod) UnmarshalJSON(data []byte) error {
	i, err := decodeName(data, paymentMethodNames, "payment method")
	if err != nil {
		return err
	}
	*m = PaymentMethod(i)
	return nil
}

func (m PaymentMethod) Value() (driver.Value, error) {
	return int64(m), nil
}

func (m *PaymentMethod) Scan(value interface{}) error {
	if i, ok := scanInt(value); ok {
		*m = PaymentMethod(i)
		return nil
	}
	*m = PaymentMethodCash
	return nil
}
