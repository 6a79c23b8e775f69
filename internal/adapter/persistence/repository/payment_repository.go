package repository

import (
	"context"

	"bizdesk/internal/domain/entities"
	"bizdesk/internal/usecase/interfaces"
)

const (
	colPaymentMethod = "payment_method"
	colPaidAt        = "paid_at"
)

// PaymentRepository maps payments to rows of the payments table.
type PaymentRepository struct {
	store interfaces.IEntityStore
}

var _ interfaces.IPaymentRepository = (*PaymentRepository)(nil)

func NewPaymentRepository(store interfaces.IEntityStore) *PaymentRepository {
	return &PaymentRepository{store: store}
}

func (r *PaymentRepository) Create(ctx context.Context, p entities.Payment) (entities.Payment, error) {
	row := paymentColumns(p)
	row[interfaces.ColQuoteID] = optional(p.QuoteID)
	if p.ID != "" {
		row[interfaces.ColID] = p.ID
	}
	created, err := r.store.Insert(ctx, interfaces.TablePayments, row)
	if err != nil {
		return entities.Payment{}, err
	}
	return paymentFromRow(created)
}

func (r *PaymentRepository) GetByID(ctx context.Context, id string) (entities.Payment, error) {
	items, err := r.list(ctx, byID(id))
	if err != nil {
		return entities.Payment{}, err
	}
	if len(items) == 0 {
		return entities.Payment{}, nil
	}
	return items[0], nil
}

func (r *PaymentRepository) List(ctx context.Context) ([]entities.Payment, error) {
	return r.list(ctx, nil)
}

func (r *PaymentRepository) ListByQuoteID(ctx context.Context, quoteID string) ([]entities.Payment, error) {
	return r.list(ctx, interfaces.Filter{interfaces.ColQuoteID: quoteID})
}

// Update writes every payment column except quote_id, which only changes
// through SetQuoteID.
func (r *PaymentRepository) Update(ctx context.Context, p entities.Payment) (entities.Payment, error) {
	if err := r.store.Update(ctx, interfaces.TablePayments, p.ID, paymentColumns(p)); err != nil {
		return entities.Payment{}, err
	}
	return r.GetByID(ctx, p.ID)
}

// UpdateStatus writes only the status columns of p.
func (r *PaymentRepository) UpdateStatus(ctx context.Context, p entities.Payment) (entities.Payment, error) {
	if err := r.store.Update(ctx, interfaces.TablePayments, p.ID, statusColumns(p)); err != nil {
		return entities.Payment{}, err
	}
	return r.GetByID(ctx, p.ID)
}

func (r *PaymentRepository) SyncFromQuote(ctx context.Context, paymentID string, q entities.QuoteSnapshot) error {
	return r.store.Update(ctx, interfaces.TablePayments, paymentID, interfaces.Row{
		interfaces.ColClientID:   optional(q.ClientID),
		interfaces.ColClientName: q.ClientName,
		interfaces.ColService:    q.Service,
		interfaces.ColValue:      q.Value,
	})
}

func (r *PaymentRepository) SetQuoteID(ctx context.Context, paymentID string, quoteID *string) error {
	return r.store.Update(ctx, interfaces.TablePayments, paymentID, interfaces.Row{
		interfaces.ColQuoteID: optional(quoteID),
	})
}

func (r *PaymentRepository) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, interfaces.TablePayments, id)
}

func (r *PaymentRepository) list(ctx context.Context, filter interfaces.Filter) ([]entities.Payment, error) {
	rows, err := r.store.List(ctx, interfaces.TablePayments, filter)
	if err != nil {
		return nil, err
	}
	items := make([]entities.Payment, 0, len(rows))
	for _, row := range rows {
		p, err := paymentFromRow(row)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, nil
}

func paymentColumns(p entities.Payment) interfaces.Row {
	row := statusColumns(p)
	row[interfaces.ColClientID] = optional(p.ClientID)
	row[interfaces.ColClientName] = p.ClientName
	row[interfaces.ColService] = p.Service
	row[interfaces.ColValue] = p.Value
	return row
}

func statusColumns(p entities.Payment) interfaces.Row {
	var method any
	if p.Method != nil {
		method = string(*p.Method)
	}
	return interfaces.Row{
		interfaces.ColStatus: string(p.Status),
		colPaymentMethod:     method,
		colPaidAt:            optionalTime(p.PaidAt),
	}
}

func paymentFromRow(row interfaces.Row) (entities.Payment, error) {
	r := rowReader{row: row}
	p := entities.Payment{
		ID:         r.str(interfaces.ColID),
		UserID:     r.str(interfaces.ColUserID),
		QuoteID:    r.optStr(interfaces.ColQuoteID),
		ClientID:   r.optStr(interfaces.ColClientID),
		ClientName: r.str(interfaces.ColClientName),
		Service:    r.str(interfaces.ColService),
		Value:      r.money(interfaces.ColValue),
		PaidAt:     r.optTimestamp(colPaidAt),
		CreatedAt:  r.timestamp(interfaces.ColCreatedAt),
		UpdatedAt:  r.timestamp(interfaces.ColUpdatedAt),
	}
	status, err := entities.ParsePaymentStatus(r.str(interfaces.ColStatus))
	r.check(err)
	p.Status = status
	if raw := r.optStr(colPaymentMethod); raw != nil {
		m, err := entities.ParsePaymentMethod(*raw)
		r.check(err)
		p.Method = &m
	}
	if r.err != nil {
		return entities.Payment{}, r.err
	}
	return p, nil
}
