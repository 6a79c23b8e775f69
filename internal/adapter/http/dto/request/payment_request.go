package request

import (
	"bizdesk/internal/domain/entities"
	"bizdesk/internal/usecase"
)

type PaymentRequest struct {
	QuoteID       *string `json:"quote_id"`
	ClientID      *string `json:"client_id"`
	ClientName    string  `json:"client_name"`
	Service       string  `json:"service" binding:"required"`
	Value         string  `json:"value" binding:"required"`
	Status        string  `json:"status"`
	PaymentMethod *string `json:"payment_method"`
}

func (r PaymentRequest) ToInput() (usecase.PaymentInput, error) {
	value, err := entities.ParseMoney(r.Value)
	if err != nil {
		return usecase.PaymentInput{}, err
	}
	return usecase.PaymentInput{
		QuoteID:    r.QuoteID,
		ClientID:   r.ClientID,
		ClientName: r.ClientName,
		Service:    r.Service,
		Value:      value,
		Status:     entities.PaymentStatus(normalize(r.Status)),
		Method:     paymentMethod(r.PaymentMethod),
	}, nil
}

// MarkPaidRequest keeps payment_method optional; a missing method is
// rejected by the paid transition, not by binding.
type MarkPaidRequest struct {
	PaymentMethod *string `json:"payment_method"`
}

func (r MarkPaidRequest) Method() *entities.PaymentMethod {
	return paymentMethod(r.PaymentMethod)
}

type MarkPendingRequest struct {
	ClearPaidAt bool `json:"clear_paid_at"`
}

func paymentMethod(raw *string) *entities.PaymentMethod {
	if raw == nil || normalize(*raw) == "" {
		return nil
	}
	m := entities.PaymentMethod(normalize(*raw))
	return &m
}
