package entities

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// QuoteStatus is the lifecycle state of a quote.
type QuoteStatus string

const (
	QuoteStatusSent     QuoteStatus = "sent"
	QuoteStatusApproved QuoteStatus = "approved"
	QuoteStatusLost     QuoteStatus = "lost"
)

func (s QuoteStatus) Valid() bool {
	switch s {
	case QuoteStatusSent, QuoteStatusApproved, QuoteStatusLost:
		return true
	}
	return false
}

// ParseQuoteStatus rejects anything outside sent, approved and lost.
func ParseQuoteStatus(raw string) (QuoteStatus, error) {
	s := QuoteStatus(strings.ToLower(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", fmt.Errorf("%w: quote status %q", ErrUnknownStatus, raw)
	}
	return s, nil
}

// Quote is a proposed price for a service.
//
// ClientName is a snapshot taken when the quote is saved; it is never
// refreshed from the client record.
type Quote struct {
	ID         string          `json:"id"`
	UserID     string          `json:"user_id"`
	ClientID   *string         `json:"client_id,omitempty"`
	ClientName string          `json:"client_name"`
	Service    string          `json:"service"`
	Value      decimal.Decimal `json:"value"`
	Status     QuoteStatus     `json:"status"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// QuoteSnapshot carries the quote fields copied into its derived payment.
type QuoteSnapshot struct {
	ID         string
	ClientID   *string
	ClientName string
	Service    string
	Value      decimal.Decimal
}

func (q Quote) Snapshot() QuoteSnapshot {
	return QuoteSnapshot{
		ID:         q.ID,
		ClientID:   q.ClientID,
		ClientName: q.ClientName,
		Service:    q.Service,
		Value:      q.Value,
	}
}
