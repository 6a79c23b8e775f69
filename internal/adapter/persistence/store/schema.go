package store

import (
	"fmt"
	"sort"
	"time"

	"bizdesk/internal/domain/entities"
	"bizdesk/internal/usecase/interfaces"

	"github.com/shopspring/decimal"
)

type columnKind int

const (
	kindText columnKind = iota
	kindNullableText
	kindMoney
	kindTime
	kindNullableTime
)

type column struct {
	name string
	kind columnKind
}

// reference is a foreign key from column to the id of table.
type reference struct {
	column string
	table  interfaces.Table
}

type tableSchema struct {
	name    interfaces.Table
	columns []column
	kinds   map[string]columnKind
	refs    []reference
}

func newTableSchema(name interfaces.Table, refs []reference, cols ...column) *tableSchema {
	base := []column{{interfaces.ColID, kindText}, {interfaces.ColUserID, kindText}}
	all := append(base, cols...)
	all = append(all, column{interfaces.ColCreatedAt, kindTime}, column{interfaces.ColUpdatedAt, kindTime})
	kinds := make(map[string]columnKind, len(all))
	for _, c := range all {
		kinds[c.name] = c.kind
	}
	return &tableSchema{name: name, columns: all, kinds: kinds, refs: refs}
}

var schemas = map[interfaces.Table]*tableSchema{
	interfaces.TableClients: newTableSchema(interfaces.TableClients, nil,
		column{"name", kindText},
		column{"phone", kindText},
		column{"service_type", kindText},
		column{"notes", kindNullableText},
	),
	interfaces.TableQuotes: newTableSchema(interfaces.TableQuotes,
		[]reference{{interfaces.ColClientID, interfaces.TableClients}},
		column{interfaces.ColClientID, kindNullableText},
		column{interfaces.ColClientName, kindText},
		column{interfaces.ColService, kindText},
		column{interfaces.ColValue, kindMoney},
		column{interfaces.ColStatus, kindText},
	),
	interfaces.TablePayments: newTableSchema(interfaces.TablePayments,
		[]reference{{interfaces.ColClientID, interfaces.TableClients}, {interfaces.ColQuoteID, interfaces.TableQuotes}},
		column{interfaces.ColQuoteID, kindNullableText},
		column{interfaces.ColClientID, kindNullableText},
		column{interfaces.ColClientName, kindText},
		column{interfaces.ColService, kindText},
		column{interfaces.ColValue, kindMoney},
		column{interfaces.ColStatus, kindText},
		column{"payment_method", kindNullableText},
		column{"paid_at", kindNullableTime},
	),
	interfaces.TableAppointments: newTableSchema(interfaces.TableAppointments,
		[]reference{{interfaces.ColClientID, interfaces.TableClients}},
		column{"title", kindText},
		column{interfaces.ColClientID, kindNullableText},
		column{interfaces.ColClientName, kindText},
		column{"date", kindTime},
		column{interfaces.ColStatus, kindText},
		column{"notes", kindNullableText},
	),
}

// tableOrder lists tables parents first.
var tableOrder = []interfaces.Table{
	interfaces.TableClients,
	interfaces.TableQuotes,
	interfaces.TablePayments,
	interfaces.TableAppointments,
}

func schemaFor(table interfaces.Table) (*tableSchema, error) {
	s, ok := schemas[table]
	if !ok {
		return nil, fmt.Errorf("%w: unknown table %q", entities.ErrInvalidValue, table)
	}
	return s, nil
}

// inboundRef is a foreign key seen from the referenced table.
type inboundRef struct {
	from   interfaces.Table
	column string
}

// referencing returns the foreign keys that point at table.
func referencing(table interfaces.Table) []inboundRef {
	var out []inboundRef
	for _, name := range tableOrder {
		for _, ref := range schemas[name].refs {
			if ref.table == table {
				out = append(out, inboundRef{from: name, column: ref.column})
			}
		}
	}
	return out
}

var immutableColumns = map[string]bool{
	interfaces.ColID:        true,
	interfaces.ColUserID:    true,
	interfaces.ColCreatedAt: true,
}

// normalizeRow validates row against s and converts every value to its
// canonical type. user_id is always owned by the store and rejected here.
func (s *tableSchema) normalizeRow(row interfaces.Row, forUpdate bool) (interfaces.Row, error) {
	out := make(interfaces.Row, len(row))
	for k, v := range row {
		kind, ok := s.kinds[k]
		if !ok {
			return nil, fmt.Errorf("%w: unknown column %s.%s", entities.ErrInvalidValue, s.name, k)
		}
		if k == interfaces.ColUserID || (forUpdate && immutableColumns[k]) {
			return nil, fmt.Errorf("%w: column %s.%s cannot be written", entities.ErrInvalidValue, s.name, k)
		}
		nv, err := normalizeValue(kind, v)
		if err != nil {
			return nil, fmt.Errorf("%w: column %s.%s: %v", entities.ErrInvalidValue, s.name, k, err)
		}
		out[k] = nv
	}
	return out, nil
}

func (s *tableSchema) normalizeFilter(filter interfaces.Filter) (interfaces.Filter, error) {
	out := make(interfaces.Filter, len(filter))
	for k, v := range filter {
		kind, ok := s.kinds[k]
		if !ok {
			return nil, fmt.Errorf("%w: unknown filter column %s.%s", entities.ErrInvalidValue, s.name, k)
		}
		if v == nil {
			out[k] = nil
			continue
		}
		nv, err := normalizeValue(kind, v)
		if err != nil {
			return nil, fmt.Errorf("%w: filter %s.%s: %v", entities.ErrInvalidValue, s.name, k, err)
		}
		out[k] = nv
	}
	return out, nil
}

// complete fills the columns an insert may omit and checks that every
// non-nullable column is present.
func (s *tableSchema) complete(row interfaces.Row, id, accountID string, now time.Time) (interfaces.Row, error) {
	if v, _ := row[interfaces.ColID].(string); v == "" {
		row[interfaces.ColID] = id
	}
	row[interfaces.ColUserID] = accountID
	if _, ok := row[interfaces.ColCreatedAt]; !ok {
		row[interfaces.ColCreatedAt] = now
	}
	if _, ok := row[interfaces.ColUpdatedAt]; !ok {
		row[interfaces.ColUpdatedAt] = row[interfaces.ColCreatedAt]
	}
	for _, c := range s.columns {
		v, ok := row[c.name]
		switch c.kind {
		case kindNullableText, kindNullableTime:
			if !ok {
				row[c.name] = nil
			}
		default:
			if !ok || v == nil {
				return nil, fmt.Errorf("%w: column %s.%s is required", entities.ErrInvalidValue, s.name, c.name)
			}
		}
	}
	return row, nil
}

func normalizeValue(kind columnKind, v any) (any, error) {
	switch kind {
	case kindText:
		switch t := v.(type) {
		case string:
			return t, nil
		case *string:
			if t != nil {
				return *t, nil
			}
		}
		return nil, fmt.Errorf("expected text, got %T", v)
	case kindNullableText:
		switch t := v.(type) {
		case nil:
			return nil, nil
		case string:
			return t, nil
		case *string:
			if t == nil {
				return nil, nil
			}
			return *t, nil
		}
		return nil, fmt.Errorf("expected nullable text, got %T", v)
	case kindMoney:
		switch t := v.(type) {
		case decimal.Decimal:
			return t, nil
		case string:
			return decimal.NewFromString(t)
		}
		return nil, fmt.Errorf("expected decimal, got %T", v)
	case kindTime:
		if t, ok := v.(time.Time); ok {
			return t.UTC(), nil
		}
		return nil, fmt.Errorf("expected time, got %T", v)
	case kindNullableTime:
		switch t := v.(type) {
		case nil:
			return nil, nil
		case time.Time:
			return t.UTC(), nil
		case *time.Time:
			if t == nil {
				return nil, nil
			}
			return t.UTC(), nil
		}
		return nil, fmt.Errorf("expected nullable time, got %T", v)
	}
	return nil, fmt.Errorf("unsupported column kind %d", kind)
}

func valuesEqual(a, b any) bool {
	switch x := a.(type) {
	case nil:
		return b == nil
	case string:
		y, ok := b.(string)
		return ok && x == y
	case decimal.Decimal:
		y, ok := b.(decimal.Decimal)
		return ok && x.Equal(y)
	case time.Time:
		y, ok := b.(time.Time)
		return ok && x.Equal(y)
	}
	return false
}

func matches(row interfaces.Row, filter interfaces.Filter) bool {
	for k, v := range filter {
		if !valuesEqual(row[k], v) {
			return false
		}
	}
	return true
}

func copyRow(row interfaces.Row) interfaces.Row {
	out := make(interfaces.Row, len(row))
	for k, v := range row {
		out[k] = v
	}
	return out
}

// sortRows orders rows newest first, then by id.
func sortRows(rows []interfaces.Row) {
	sort.SliceStable(rows, func(i, j int) bool {
		ti, _ := rows[i][interfaces.ColCreatedAt].(time.Time)
		tj, _ := rows[j][interfaces.ColCreatedAt].(time.Time)
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		idi, _ := rows[i][interfaces.ColID].(string)
		idj, _ := rows[j][interfaces.ColID].(string)
		return idi < idj
	})
}

// sortedKeys gives deterministic column order for generated SQL.
func sortedKeys[M ~map[string]any](m M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
