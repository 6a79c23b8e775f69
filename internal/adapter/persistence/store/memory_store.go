package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"bizdesk/internal/domain/account"
	"bizdesk/internal/domain/entities"
	"bizdesk/internal/usecase/interfaces"

	"github.com/google/uuid"
)

// MemoryStore keeps rows in process memory. It enforces the same foreign
// keys as the SQL schema but, like the hosted schema it mirrors, has no
// unique index on payments.quote_id.
//
// Rows are copied on every read and write, so a concurrent reader sees a
// row either before or after a write and never in between.
type MemoryStore struct {
	mu     sync.RWMutex
	tables map[interfaces.Table]map[string]interfaces.Row
	now    func() time.Time
}

var _ interfaces.IEntityStore = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	tables := make(map[interfaces.Table]map[string]interfaces.Row, len(tableOrder))
	for _, t := range tableOrder {
		tables[t] = map[string]interfaces.Row{}
	}
	return &MemoryStore{tables: tables, now: func() time.Time { return time.Now().UTC() }}
}

// WithClock replaces the clock used to stamp created_at and updated_at.
func (s *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	s.now = now
	return s
}

func (s *MemoryStore) List(ctx context.Context, table interfaces.Table, filter interfaces.Filter) ([]interfaces.Row, error) {
	accountID, err := account.IDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	sc, err := schemaFor(table)
	if err != nil {
		return nil, err
	}
	f, err := sc.normalizeFilter(filter)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]interfaces.Row, 0)
	for _, row := range s.tables[table] {
		if row[interfaces.ColUserID] != accountID || !matches(row, f) {
			continue
		}
		out = append(out, copyRow(row))
	}
	sortRows(out)
	return out, nil
}

func (s *MemoryStore) Insert(ctx context.Context, table interfaces.Table, row interfaces.Row) (interfaces.Row, error) {
	accountID, err := account.IDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	sc, err := schemaFor(table)
	if err != nil {
		return nil, err
	}
	r, err := sc.normalizeRow(row, false)
	if err != nil {
		return nil, err
	}
	r, err = sc.complete(r, uuid.NewString(), accountID, s.now())
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := r[interfaces.ColID].(string)
	if _, exists := s.tables[table][id]; exists {
		return nil, fmt.Errorf("%w: %s %s already exists", entities.ErrReferentialConflict, table, id)
	}
	if err := s.checkRefs(sc, r, accountID); err != nil {
		return nil, err
	}
	s.tables[table][id] = r
	return copyRow(r), nil
}

func (s *MemoryStore) Update(ctx context.Context, table interfaces.Table, id string, patch interfaces.Row) error {
	accountID, err := account.IDFromContext(ctx)
	if err != nil {
		return err
	}
	sc, err := schemaFor(table)
	if err != nil {
		return err
	}
	p, err := sc.normalizeRow(patch, true)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.tables[table][id]
	if !ok || current[interfaces.ColUserID] != accountID {
		return fmt.Errorf("%w: %s %s", entities.ErrNotFound, table, id)
	}
	if err := s.checkRefs(sc, p, accountID); err != nil {
		return err
	}
	next := copyRow(current)
	for k, v := range p {
		next[k] = v
	}
	if _, ok := p[interfaces.ColUpdatedAt]; !ok {
		next[interfaces.ColUpdatedAt] = s.now()
	}
	s.tables[table][id] = next
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, table interfaces.Table, id string) error {
	accountID, err := account.IDFromContext(ctx)
	if err != nil {
		return err
	}
	if _, err := schemaFor(table); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.tables[table][id]
	if !ok || current[interfaces.ColUserID] != accountID {
		return fmt.Errorf("%w: %s %s", entities.ErrNotFound, table, id)
	}
	for _, ref := range referencing(table) {
		for _, row := range s.tables[ref.from] {
			if row[ref.column] == id {
				return fmt.Errorf("%w: %s %s is still referenced by %s.%s", entities.ErrReferentialConflict, table, id, ref.from, ref.column)
			}
		}
	}
	delete(s.tables[table], id)
	return nil
}

// checkRefs must be called with mu held.
func (s *MemoryStore) checkRefs(sc *tableSchema, row interfaces.Row, accountID string) error {
	for _, ref := range sc.refs {
		v, ok := row[ref.column]
		if !ok || v == nil {
			continue
		}
		target, exists := s.tables[ref.table][v.(string)]
		if !exists || target[interfaces.ColUserID] != accountID {
			return fmt.Errorf("%w: %s.%s points at missing %s %v", entities.ErrReferentialConflict, sc.name, ref.column, ref.table, v)
		}
	}
	return nil
}
