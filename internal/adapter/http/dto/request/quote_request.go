package request

import (
	"strings"

	"bizdesk/internal/domain/entities"
	"bizdesk/internal/usecase"
)

// QuoteRequest carries money as a decimal string, e.g. "150.00".
type QuoteRequest struct {
	ClientID   *string `json:"client_id"`
	ClientName string  `json:"client_name"`
	Service    string  `json:"service" binding:"required"`
	Value      string  `json:"value" binding:"required"`
	Status     string  `json:"status"`
}

func (r QuoteRequest) ToInput() (usecase.QuoteInput, error) {
	value, err := entities.ParseMoney(r.Value)
	if err != nil {
		return usecase.QuoteInput{}, err
	}
	return usecase.QuoteInput{
		ClientID:   r.ClientID,
		ClientName: r.ClientName,
		Service:    r.Service,
		Value:      value,
		Status:     entities.QuoteStatus(normalize(r.Status)),
	}, nil
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
