package entity

import "github.com/shopspring/decimal"

// ReceiptHeader holds the salon details printed at the top of a receipt.
type ReceiptHeader struct {
	SalonName string `json:"salon_name"`
	Address   string `json:"address,omitempty"`
	Phone     string `json:"phone,omitempty"`
	TaxID     string `json:"tax_id,omitempty"`
}

// ReceiptItem represents a single line on a receipt.
type ReceiptItem struct {
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Discount  decimal.Decimal `json:"discount"`
	Total     decimal.Decimal `json:"total"`
}

// ReceiptPayment is one payment line on a receipt.
type ReceiptPayment struct {
	Method    string          `json:"method"`
	Amount    decimal.Decimal `json:"amount"`
	Reference string          `json:"reference,omitempty"`
}

// Receipt is composed from a sale at print time. It is not persisted.
type Receipt struct {
	Header         ReceiptHeader    `json:"header"`
	InvoiceNo      string           `json:"invoice_no"`
	Date           string           `json:"date"`
	Cashier        string           `json:"cashier,omitempty"`
	Customer       string           `json:"customer,omitempty"`
	Currency       string           `json:"currency,omitempty"`
	Items          []ReceiptItem    `json:"items"`
	Subtotal       decimal.Decimal  `json:"subtotal"`
	GlobalDiscount decimal.Decimal  `json:"global_discount"`
	PointsDiscount decimal.Decimal  `json:"points_discount"`
	GrandTotal     decimal.Decimal  `json:"grand_total"`
	Payments       []ReceiptPayment `json:"payments"`
	TotalPaid      decimal.Decimal  `json:"total_paid"`
	ChangeOwed     decimal.Decimal  `json:"change_owed"`
	PointsEarned   int64            `json:"points_earned"`
	PointsBalance  *int64           `json:"points_balance,omitempty"`
	Footer         string           `json:"footer,omitempty"`
	Cancelled      bool             `json:"cancelled"`
}
