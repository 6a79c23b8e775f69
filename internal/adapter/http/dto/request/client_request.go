package request

import "bizdesk/internal/usecase"

type ClientRequest struct {
	Name        string  `json:"name" binding:"required"`
	Phone       string  `json:"phone" binding:"required"`
	ServiceType string  `json:"service_type" binding:"required"`
	Notes       *string `json:"notes"`
}

func (r ClientRequest) ToInput() usecase.ClientInput {
	return usecase.ClientInput{
		Name:        r.Name,
		Phone:       r.Phone,
		ServiceType: r.ServiceType,
		Notes:       r.Notes,
	}
}
