package response

import (
	"encoding/json"
	"time"

	"bizdesk/internal/domain/entities"
	"bizdesk/internal/usecase"
)

type ClientResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Phone       string    `json:"phone"`
	ServiceType string    `json:"service_type"`
	Notes       *string   `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func FromClient(c entities.Client) ClientResponse {
	return ClientResponse{
		ID:          c.ID,
		Name:        c.Name,
		Phone:       c.Phone,
		ServiceType: c.ServiceType,
		Notes:       c.Notes,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func FromClients(list []entities.Client) []ClientResponse {
	out := make([]ClientResponse, 0, len(list))
	for _, c := range list {
		out = append(out, FromClient(c))
	}
	return out
}

type QuoteResponse struct {
	ID         string    `json:"id"`
	ClientID   *string   `json:"client_id,omitempty"`
	ClientName string    `json:"client_name"`
	Service    string    `json:"service"`
	Value      string    `json:"value"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func FromQuote(q entities.Quote) QuoteResponse {
	return QuoteResponse{
		ID:         q.ID,
		ClientID:   q.ClientID,
		ClientName: q.ClientName,
		Service:    q.Service,
		Value:      entities.FormatMoney(q.Value),
		Status:     string(q.Status),
		CreatedAt:  q.CreatedAt,
		UpdatedAt:  q.UpdatedAt,
	}
}

func FromQuotes(list []entities.Quote) []QuoteResponse {
	out := make([]QuoteResponse, 0, len(list))
	for _, q := range list {
		out = append(out, FromQuote(q))
	}
	return out
}

type PaymentResponse struct {
	ID            string     `json:"id"`
	QuoteID       *string    `json:"quote_id"`
	ClientID      *string    `json:"client_id,omitempty"`
	ClientName    string     `json:"client_name"`
	Service       string     `json:"service"`
	Value         string     `json:"value"`
	Status        string     `json:"status"`
	PaymentMethod *string    `json:"payment_method,omitempty"`
	PaidAt        *time.Time `json:"paid_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func FromPayment(p entities.Payment) PaymentResponse {
	var method *string
	if p.Method != nil {
		m := string(*p.Method)
		method = &m
	}
	return PaymentResponse{
		ID:            p.ID,
		QuoteID:       p.QuoteID,
		ClientID:      p.ClientID,
		ClientName:    p.ClientName,
		Service:       p.Service,
		Value:         entities.FormatMoney(p.Value),
		Status:        string(p.Status),
		PaymentMethod: method,
		PaidAt:        p.PaidAt,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func FromPayments(list []entities.Payment) []PaymentResponse {
	out := make([]PaymentResponse, 0, len(list))
	for _, p := range list {
		out = append(out, FromPayment(p))
	}
	return out
}

type PixChargeResponse struct {
	Payment           PaymentResponse `json:"payment"`
	ProviderPaymentID string          `json:"provider_payment_id"`
	ProviderStatus    string          `json:"provider_status"`
	ProviderResponse  json.RawMessage `json:"provider_response,omitempty" swaggertype:"object"`
}

func FromPixCharge(c usecase.PixCharge) PixChargeResponse {
	return PixChargeResponse{
		Payment:           FromPayment(c.Payment),
		ProviderPaymentID: c.ProviderPaymentID,
		ProviderStatus:    c.ProviderStatus,
		ProviderResponse:  c.ProviderResponse,
	}
}

type AppointmentResponse struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	ClientID   *string   `json:"client_id,omitempty"`
	ClientName string    `json:"client_name"`
	Date       time.Time `json:"date"`
	Status     string    `json:"status"`
	Notes      *string   `json:"notes,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func FromAppointment(a entities.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:         a.ID,
		Title:      a.Title,
		ClientID:   a.ClientID,
		ClientName: a.ClientName,
		Date:       a.Date,
		Status:     string(a.Status),
		Notes:      a.Notes,
		CreatedAt:  a.CreatedAt,
		UpdatedAt:  a.UpdatedAt,
	}
}

func FromAppointments(list []entities.Appointment) []AppointmentResponse {
	out := make([]AppointmentResponse, 0, len(list))
	for _, a := range list {
		out = append(out, FromAppointment(a))
	}
	return out
}

// DashboardResponse reports totals for the half-open window [start, end).
type DashboardResponse struct {
	Start          time.Time         `json:"start"`
	End            time.Time         `json:"end"`
	Received       string            `json:"received"`
	Pending        string            `json:"pending"`
	LostThisMonth  string            `json:"lost_this_month"`
	ReceivedCount  int               `json:"received_count"`
	PendingCount   int               `json:"pending_count"`
	LostCount      int               `json:"lost_count"`
	RecentActivity []PaymentResponse `json:"recent_activity"`
}

func FromDashboard(d usecase.Dashboard) DashboardResponse {
	return DashboardResponse{
		Start:          d.Window.Start,
		End:            d.Window.End,
		Received:       entities.FormatMoney(d.Summary.Received),
		Pending:        entities.FormatMoney(d.Summary.Pending),
		LostThisMonth:  entities.FormatMoney(d.Summary.LostThisMonth),
		ReceivedCount:  d.Summary.ReceivedCount,
		PendingCount:   d.Summary.PendingCount,
		LostCount:      d.Summary.LostCount,
		RecentActivity: FromPayments(d.RecentActivity),
	}
}
