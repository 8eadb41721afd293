package response

import (
	"time"

	"event-ticketing/internal/data/entity"
)

type PaymentMethodResponse struct {
	ID      string                   `json:"id"`
	Type    entity.PaymentMethodType `json:"type"`
	Name    string                   `json:"name"`
	Details map[string]*string       `json:"details"`
}

// PaymentMethodToResponse memilih field details sesuai type
func PaymentMethodToResponse(pm *entity.PaymentMethod) PaymentMethodResponse {
	details := map[string]*string{}

	switch pm.Type {
	case entity.PaymentMethodBank:
		details["account_name"] = pm.AccountName
		details["account_number"] = pm.AccountNumber
		details["bank_name"] = pm.BankName
		details["branch"] = pm.Branch
		details["sort_code"] = pm.SortCode
	case entity.PaymentMethodMobileMoney:
		details["number"] = pm.MomoNumber
		details["name"] = pm.AccountName
		details["network"] = pm.Network
	}

	return PaymentMethodResponse{
		ID:      pm.ID.String(),
		Type:    pm.Type,
		Name:    pm.Name,
		Details: details,
	}
}

type PaymentConfirmationResponse struct {
	ID                string    `json:"id"`
	OrderID           string    `json:"order_id"`
	ConfirmedBy       *string   `json:"confirmed_by"`
	TransactionID     *string   `json:"transaction_id"`
	PaymentScreenshot *string   `json:"payment_screenshot"`
	ConfirmationNotes *string   `json:"confirmation_notes"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// PaymentConfirmationToResponse - screenshotURL sudah berupa URL absolut (atau nil)
func PaymentConfirmationToResponse(pc *entity.PaymentConfirmation, orderCode string, screenshotURL *string) *PaymentConfirmationResponse {
	if pc == nil {
		return nil
	}

	var confirmedBy *string
	if pc.ConfirmedBy != nil {
		id := pc.ConfirmedBy.String()
		confirmedBy = &id
	}

	return &PaymentConfirmationResponse{
		ID:                pc.ID.String(),
		OrderID:           orderCode,
		ConfirmedBy:       confirmedBy,
		TransactionID:     pc.TransactionID,
		PaymentScreenshot: screenshotURL,
		ConfirmationNotes: pc.ConfirmationNotes,
		CreatedAt:         pc.CreatedAt,
		UpdatedAt:         pc.UpdatedAt,
	}
}
