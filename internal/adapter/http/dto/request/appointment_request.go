package request

import (
	"time"

	"bizdesk/internal/domain/entities"
	"bizdesk/internal/usecase"
)

type AppointmentRequest struct {
	Title      string    `json:"title" binding:"required"`
	ClientID   *string   `json:"client_id"`
	ClientName string    `json:"client_name"`
	Date       time.Time `json:"date" binding:"required"`
	Status     string    `json:"status"`
	Notes      *string   `json:"notes"`
}

func (r AppointmentRequest) ToInput() usecase.AppointmentInput {
	return usecase.AppointmentInput{
		Title:      r.Title,
		ClientID:   r.ClientID,
		ClientName: r.ClientName,
		Date:       r.Date,
		Status:     entities.AppointmentStatus(normalize(r.Status)),
		Notes:      r.Notes,
	}
}
