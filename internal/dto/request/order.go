package request

// CreateOrderRequest sengaja tidak punya field total; total selalu dihitung server
type CreateOrderRequest struct {
	EventID          string  `json:"event_id" validate:"required,uuid4"`
	Quantity         int     `json:"quantity" validate:"required,min=1,max=10"`
	PaymentMethod    string  `json:"payment_method" validate:"required,oneof=credit_card bank_transfer mobile_money"`
	PaymentReference *string `json:"payment_reference,omitempty" validate:"omitempty,max=100"`
}

type UpdateOrderStatusRequest struct {
	Status     string  `json:"status" validate:"required"`
	AdminNotes *string `json:"admin_notes,omitempty"`
}

// OrderDecisionRequest body untuk approve/reject langsung oleh admin
type OrderDecisionRequest struct {
	Notes *string `json:"notes,omitempty"`
}

type OrderListRequest struct {
	PaginatedRequest
	Status string `json:"status" validate:"omitempty,oneof=pending approved rejected"`
}
