package repository

import (
	"context"

	"bizdesk/internal/domain/entities"
	"bizdesk/internal/usecase/interfaces"
)

type ClientRepository struct {
	store interfaces.IEntityStore
}

var _ interfaces.IClientRepository = (*ClientRepository)(nil)

func NewClientRepository(store interfaces.IEntityStore) *ClientRepository {
	return &ClientRepository{store: store}
}

func (r *ClientRepository) Create(ctx context.Context, c entities.Client) (entities.Client, error) {
	row := clientColumns(c)
	if c.ID != "" {
		row[interfaces.ColID] = c.ID
	}
	created, err := r.store.Insert(ctx, interfaces.TableClients, row)
	if err != nil {
		return entities.Client{}, err
	}
	return clientFromRow(created)
}

func (r *ClientRepository) GetByID(ctx context.Context, id string) (entities.Client, error) {
	rows, err := r.store.List(ctx, interfaces.TableClients, byID(id))
	if err != nil {
		return entities.Client{}, err
	}
	if len(rows) == 0 {
		return entities.Client{}, nil
	}
	return clientFromRow(rows[0])
}

func (r *ClientRepository) List(ctx context.Context) ([]entities.Client, error) {
	rows, err := r.store.List(ctx, interfaces.TableClients, nil)
	if err != nil {
		return nil, err
	}
	items := make([]entities.Client, 0, len(rows))
	for _, row := range rows {
		c, err := clientFromRow(row)
		if err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, nil
}

func (r *ClientRepository) Update(ctx context.Context, c entities.Client) (entities.Client, error) {
	if err := r.store.Update(ctx, interfaces.TableClients, c.ID, clientColumns(c)); err != nil {
		return entities.Client{}, err
	}
	return r.GetByID(ctx, c.ID)
}

func (r *ClientRepository) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, interfaces.TableClients, id)
}

func clientColumns(c entities.Client) interfaces.Row {
	return interfaces.Row{
		"name":         c.Name,
		"phone":        c.Phone,
		"service_type": c.ServiceType,
		"notes":        optional(c.Notes),
	}
}

func clientFromRow(row interfaces.Row) (entities.Client, error) {
	r := rowReader{row: row}
	c := entities.Client{
		ID:          r.str(interfaces.ColID),
		UserID:      r.str(interfaces.ColUserID),
		Name:        r.str("name"),
		Phone:       r.str("phone"),
		ServiceType: r.str("service_type"),
		Notes:       r.optStr("notes"),
		CreatedAt:   r.timestamp(interfaces.ColCreatedAt),
		UpdatedAt:   r.timestamp(interfaces.ColUpdatedAt),
	}
	if r.err != nil {
		return entities.Client{}, r.err
	}
	return c, nil
}
