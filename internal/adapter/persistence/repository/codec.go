package repository

import (
	"fmt"
	"time"

	"bizdesk/internal/domain/entities"
	"bizdesk/internal/usecase/interfaces"

	"github.com/shopspring/decimal"
)

// rowReader decodes a gateway row, keeping the first error.
type rowReader struct {
	row interfaces.Row
	err error
}

func (r *rowReader) fail(col string, v any, want string) {
	if r.err == nil {
		r.err = fmt.Errorf("%w: column %s: expected %s, got %T", entities.ErrStoreUnavailable, col, want, v)
	}
}

func (r *rowReader) str(col string) string {
	v := r.row[col]
	s, ok := v.(string)
	if !ok {
		r.fail(col, v, "text")
	}
	return s
}

func (r *rowReader) optStr(col string) *string {
	v := r.row[col]
	if v == nil {
		return nil
	}
	s, ok := v.(string)
	if !ok {
		r.fail(col, v, "text")
		return nil
	}
	return &s
}

func (r *rowReader) money(col string) decimal.Decimal {
	v := r.row[col]
	d, ok := v.(decimal.Decimal)
	if !ok {
		r.fail(col, v, "decimal")
	}
	return d
}

func (r *rowReader) timestamp(col string) time.Time {
	v := r.row[col]
	t, ok := v.(time.Time)
	if !ok {
		r.fail(col, v, "time")
	}
	return t
}

func (r *rowReader) optTimestamp(col string) *time.Time {
	v := r.row[col]
	if v == nil {
		return nil
	}
	t, ok := v.(time.Time)
	if !ok {
		r.fail(col, v, "time")
		return nil
	}
	return &t
}

// check records err unless an earlier one is already held.
func (r *rowReader) check(err error) {
	if r.err == nil && err != nil {
		r.err = err
	}
}

// optional turns a *string into the nullable value the gateway expects.
func optional(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func optionalTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}

func byID(id string) interfaces.Filter {
	return interfaces.Filter{interfaces.ColID: id}
}
