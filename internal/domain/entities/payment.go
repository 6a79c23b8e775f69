package entities

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus is the settlement state of a payment.
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
)

func (s PaymentStatus) Valid() bool {
	return s == PaymentStatusPending || s == PaymentStatusPaid
}

func ParsePaymentStatus(raw string) (PaymentStatus, error) {
	s := PaymentStatus(strings.ToLower(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", fmt.Errorf("%w: payment status %q", ErrUnknownStatus, raw)
	}
	return s, nil
}

// PaymentMethod is how a paid payment was settled.
type PaymentMethod string

const (
	PaymentMethodPix   PaymentMethod = "pix"
	PaymentMethodCash  PaymentMethod = "cash"
	PaymentMethodOther PaymentMethod = "other"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodPix, PaymentMethodCash, PaymentMethodOther:
		return true
	}
	return false
}

func ParsePaymentMethod(raw string) (PaymentMethod, error) {
	m := PaymentMethod(strings.ToLower(strings.TrimSpace(raw)))
	if !m.Valid() {
		return "", fmt.Errorf("%w: payment method %q", ErrUnknownStatus, raw)
	}
	return m, nil
}

// Payment tracks money owed or received.
//
// QuoteID points at the approved quote the payment was derived from. It is
// nil for manual payments and for payments whose quote was deleted.
type Payment struct {
	ID         string          `json:"id"`
	UserID     string          `json:"user_id"`
	QuoteID    *string         `json:"quote_id,omitempty"`
	ClientID   *string         `json:"client_id,omitempty"`
	ClientName string          `json:"client_name"`
	Service    string          `json:"service"`
	Value      decimal.Decimal `json:"value"`
	Status     PaymentStatus   `json:"status"`
	Method     *PaymentMethod  `json:"payment_method,omitempty"`
	PaidAt     *time.Time      `json:"paid_at,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// InSyncWith reports whether the fields copied from the quote already match.
func (p Payment) InSyncWith(q QuoteSnapshot) bool {
	return equalOptional(p.ClientID, q.ClientID) &&
		p.ClientName == q.ClientName &&
		p.Service == q.Service &&
		p.Value.Equal(q.Value)
}

func equalOptional(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
