package request

// Upload is a file received from a multipart form
type Upload struct {
	Filename string
	Data     []byte
}

// SubmitConfirmationRequest - semua field optional, hanya yang diisi yang di-merge
type SubmitConfirmationRequest struct {
	TransactionID     *string `json:"transaction_id,omitempty" validate:"omitempty,max=100"`
	ConfirmationNotes *string `json:"confirmation_notes,omitempty" validate:"omitempty,max=1000"`
	Screenshot        *Upload `json:"-"`
}

type ReviewConfirmationRequest struct {
	Status            string  `json:"status" validate:"required"`
	ConfirmationNotes *string `json:"confirmation_notes,omitempty"`
}
