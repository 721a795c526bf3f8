package request

// CreateStaffRequest adds a staff account to the salon
type CreateStaffRequest struct {
	FirstName string  `json:"first_name" binding:"required,min=2,max=255"`
	LastName  string  `json:"last_name" binding:"required,min=2,max=255"`
	Email     string  `json:"email" binding:"required,email"`
	Phone     *string `json:"phone" binding:"omitempty,max=50"`
	Password  string  `json:"password" binding:"omitempty,min=8"`
	Role      string  `json:"role" binding:"omitempty,oneof=owner cashier"`
}

// UpdateStaffRequest changes a staff member's role or status
type UpdateStaffRequest struct {
	Role   *string `json:"role" binding:"omitempty,oneof=owner cashier"`
	Active *bool   `json:"active"`
}

// UpdateSalonRequest edits the salon profile and receipt settings
type UpdateSalonRequest struct {
	Name          *string `json:"name" binding:"omitempty,min=2,max=255"`
	Address       *string `json:"address" binding:"omitempty,max=500"`
	Phone         *string `json:"phone" binding:"omitempty,max=50"`
	Email         *string `json:"email" binding:"omitempty,email"`
	Currency      *string `json:"currency" binding:"omitempty,len=3"`
	Timezone      *string `json:"timezone" binding:"omitempty,max=64"`
	InvoicePrefix *string `json:"invoice_prefix" binding:"omitempty,max=20"`
	ReceiptFooter *string `json:"receipt_footer" binding:"omitempty,max=255"`
	TaxID         *string `json:"tax_id" binding:"omitempty,max=50"`
}
