package interfaces

import (
	"context"

	"bizdesk/internal/domain/entities"
)

// IPaymentRepository persists payments for the current account.
//
// SyncFromQuote and SetQuoteID only touch the columns they name so that a
// quote edit never rewrites a payment's status, method or paid_at.
// UpdateStatus is the mirror image: it writes status, payment_method and
// paid_at only, so a status change never rewrites synced quote fields.
type IPaymentRepository interface {
	Create(ctx context.Context, p entities.Payment) (entities.Payment, error)
	GetByID(ctx context.Context, id string) (entities.Payment, error)
	List(ctx context.Context) ([]entities.Payment, error)
	ListByQuoteID(ctx context.Context, quoteID string) ([]entities.Payment, error)
	Update(ctx context.Context, p entities.Payment) (entities.Payment, error)
	UpdateStatus(ctx context.Context, p entities.Payment) (entities.Payment, error)
	SyncFromQuote(ctx context.Context, paymentID string, q entities.QuoteSnapshot) error
	SetQuoteID(ctx context.Context, paymentID string, quoteID *string) error
	Delete(ctx context.Context, id string) error
}
