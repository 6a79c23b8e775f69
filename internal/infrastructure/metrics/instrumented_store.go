package metrics

import (
	"context"
	"time"

	"bizdesk/internal/usecase/interfaces"
)

// InstrumentedStore wraps an entity store and records every call.
type InstrumentedStore struct {
	next    interfaces.IEntityStore
	metrics *Metrics
}

var _ interfaces.IEntityStore = (*InstrumentedStore)(nil)

func NewInstrumentedStore(next interfaces.IEntityStore, m *Metrics) *InstrumentedStore {
	return &InstrumentedStore{next: next, metrics: m}
}

func (s *InstrumentedStore) List(ctx context.Context, table interfaces.Table, filter interfaces.Filter) ([]interfaces.Row, error) {
	defer s.observe(table, "list", time.Now())
	rows, err := s.next.List(ctx, table, filter)
	s.count(table, "list", err)
	return rows, err
}

func (s *InstrumentedStore) Insert(ctx context.Context, table interfaces.Table, row interfaces.Row) (interfaces.Row, error) {
	defer s.observe(table, "insert", time.Now())
	created, err := s.next.Insert(ctx, table, row)
	s.count(table, "insert", err)
	return created, err
}

func (s *InstrumentedStore) Update(ctx context.Context, table interfaces.Table, id string, patch interfaces.Row) error {
	defer s.observe(table, "update", time.Now())
	err := s.next.Update(ctx, table, id, patch)
	s.count(table, "update", err)
	return err
}

func (s *InstrumentedStore) Delete(ctx context.Context, table interfaces.Table, id string) error {
	defer s.observe(table, "delete", time.Now())
	err := s.next.Delete(ctx, table, id)
	s.count(table, "delete", err)
	return err
}

func (s *InstrumentedStore) observe(table interfaces.Table, op string, start time.Time) {
	s.metrics.StoreLatency.WithLabelValues(string(table), op).Observe(time.Since(start).Seconds())
}

func (s *InstrumentedStore) count(table interfaces.Table, op string, err error) {
	s.metrics.StoreOperations.WithLabelValues(string(table), op, Outcome(err)).Inc()
}
