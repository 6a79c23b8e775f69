package interfaces

import "context"

// Table names known to the entity store.
type Table string

const (
	TableClients      Table = "clients"
	TableQuotes       Table = "quotes"
	TablePayments     Table = "payments"
	TableAppointments Table = "appointments"
)

// Column names shared by several tables.
const (
	ColID         = "id"
	ColUserID     = "user_id"
	ColClientID   = "client_id"
	ColClientName = "client_name"
	ColQuoteID    = "quote_id"
	ColService    = "service"
	ColValue      = "value"
	ColStatus     = "status"
	ColCreatedAt  = "created_at"
	ColUpdatedAt  = "updated_at"
)

// Row is one record keyed by column name. Values are string, nil,
// decimal.Decimal for money and time.Time for timestamps.
type Row map[string]any

// Filter is a conjunction of equality predicates. A nil value matches NULL.
type Filter map[string]any

// IEntityStore is the generic row gateway to the backing store.
//
// Every call is scoped to the account found in ctx (see domain/account):
// inserts are stamped with its user_id and reads, updates and deletes never
// see other accounts' rows. Failures carry one of the entity error kinds:
//   - ErrNotAuthenticated when ctx has no account
//   - ErrNotFound when Update/Delete target no row
//   - ErrReferentialConflict when an integrity rule rejects the write
//   - ErrStoreUnavailable for any other backend failure
type IEntityStore interface {
	List(ctx context.Context, table Table, filter Filter) ([]Row, error)
	Insert(ctx context.Context, table Table, row Row) (Row, error)
	Update(ctx context.Context, table Table, id string, patch Row) error
	Delete(ctx context.Context, table Table, id string) error
}
