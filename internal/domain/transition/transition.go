// Package transition holds the quote and payment state machines.
package transition

import (
	"fmt"
	"time"

	"bizdesk/internal/domain/entities"
)

// QuoteEffect lists the side effects a quote save must trigger.
type QuoteEffect struct {
	EnsurePayment bool
}

// QuoteTransition validates a quote status change. Any direction is allowed;
// every save that lands on approved, including approved to approved, must
// ensure the derived payment. Leaving approved keeps the payment as is.
//
// from is empty when the quote is being created.
func QuoteTransition(from, to entities.QuoteStatus) (QuoteEffect, error) {
	if from != "" && !from.Valid() {
		return QuoteEffect{}, fmt.Errorf("%w: current quote status %q", entities.ErrInvalidTransition, from)
	}
	if !to.Valid() {
		return QuoteEffect{}, fmt.Errorf("%w: quote status %q", entities.ErrInvalidTransition, to)
	}
	return QuoteEffect{EnsurePayment: to == entities.QuoteStatusApproved}, nil
}

// PaymentChange describes a requested payment status change.
type PaymentChange struct {
	To     entities.PaymentStatus
	Method *entities.PaymentMethod
	// ClearPaidAt drops paid_at and the method when moving back to pending.
	ClearPaidAt bool
}

// PaymentTransition applies change to current and returns the new state.
// On error current is returned untouched.
func PaymentTransition(current entities.Payment, change PaymentChange, now time.Time) (entities.Payment, error) {
	switch change.To {
	case entities.PaymentStatusPaid:
		if change.Method == nil {
			return current, fmt.Errorf("%w: payment method is required to mark a payment as paid", entities.ErrInvalidTransition)
		}
		if !change.Method.Valid() {
			return current, fmt.Errorf("%w: payment method %q", entities.ErrInvalidTransition, *change.Method)
		}
		next := current
		method := *change.Method
		next.Method = &method
		if current.Status != entities.PaymentStatusPaid || current.PaidAt == nil {
			paidAt := now.UTC()
			next.PaidAt = &paidAt
		}
		next.Status = entities.PaymentStatusPaid
		return next, nil

	case entities.PaymentStatusPending:
		next := current
		next.Status = entities.PaymentStatusPending
		if change.ClearPaidAt {
			next.PaidAt = nil
			next.Method = nil
		}
		return next, nil

	default:
		return current, fmt.Errorf("%w: payment status %q", entities.ErrInvalidTransition, change.To)
	}
}
