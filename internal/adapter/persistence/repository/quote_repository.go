package repository

import (
	"context"

	"bizdesk/internal/domain/entities"
	"bizdesk/internal/usecase/interfaces"
)

// QuoteRepository maps quotes to rows of the quotes table.
type QuoteRepository struct {
	store interfaces.IEntityStore
}

var _ interfaces.IQuoteRepository = (*QuoteRepository)(nil)

func NewQuoteRepository(store interfaces.IEntityStore) *QuoteRepository {
	return &QuoteRepository{store: store}
}

func (r *QuoteRepository) Create(ctx context.Context, q entities.Quote) (entities.Quote, error) {
	row := quoteColumns(q)
	if q.ID != "" {
		row[interfaces.ColID] = q.ID
	}
	created, err := r.store.Insert(ctx, interfaces.TableQuotes, row)
	if err != nil {
		return entities.Quote{}, err
	}
	return quoteFromRow(created)
}

func (r *QuoteRepository) GetByID(ctx context.Context, id string) (entities.Quote, error) {
	rows, err := r.store.List(ctx, interfaces.TableQuotes, byID(id))
	if err != nil {
		return entities.Quote{}, err
	}
	if len(rows) == 0 {
		return entities.Quote{}, nil
	}
	return quoteFromRow(rows[0])
}

func (r *QuoteRepository) List(ctx context.Context) ([]entities.Quote, error) {
	rows, err := r.store.List(ctx, interfaces.TableQuotes, nil)
	if err != nil {
		return nil, err
	}
	items := make([]entities.Quote, 0, len(rows))
	for _, row := range rows {
		q, err := quoteFromRow(row)
		if err != nil {
			return nil, err
		}
		items = append(items, q)
	}
	return items, nil
}

func (r *QuoteRepository) Update(ctx context.Context, q entities.Quote) (entities.Quote, error) {
	if err := r.store.Update(ctx, interfaces.TableQuotes, q.ID, quoteColumns(q)); err != nil {
		return entities.Quote{}, err
	}
	return r.GetByID(ctx, q.ID)
}

func (r *QuoteRepository) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, interfaces.TableQuotes, id)
}

func quoteColumns(q entities.Quote) interfaces.Row {
	return interfaces.Row{
		interfaces.ColClientID:   optional(q.ClientID),
		interfaces.ColClientName: q.ClientName,
		interfaces.ColService:    q.Service,
		interfaces.ColValue:      q.Value,
		interfaces.ColStatus:     string(q.Status),
	}
}

func quoteFromRow(row interfaces.Row) (entities.Quote, error) {
	r := rowReader{row: row}
	q := entities.Quote{
		ID:         r.str(interfaces.ColID),
		UserID:     r.str(interfaces.ColUserID),
		ClientID:   r.optStr(interfaces.ColClientID),
		ClientName: r.str(interfaces.ColClientName),
		Service:    r.str(interfaces.ColService),
		Value:      r.money(interfaces.ColValue),
		CreatedAt:  r.timestamp(interfaces.ColCreatedAt),
		UpdatedAt:  r.timestamp(interfaces.ColUpdatedAt),
	}
	status, err := entities.ParseQuoteStatus(r.str(interfaces.ColStatus))
	r.check(err)
	q.Status = status
	if r.err != nil {
		return entities.Quote{}, r.err
	}
	return q, nil
}
