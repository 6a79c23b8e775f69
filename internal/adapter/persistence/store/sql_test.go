package store

import (
	"errors"
	"strings"
	"testing"
	"time"

	"bizdesk/internal/domain/entities"
	"bizdesk/internal/usecase/interfaces"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

func TestPostgresDialect_BuildSelect(t *testing.T) {
	sc := schemas[interfaces.TablePayments]
	q := postgresDialect.buildSelect(sc, "acct", interfaces.Filter{interfaces.ColQuoteID: "q-1", interfaces.ColClientID: nil})

	if !strings.Contains(q.text, "value::text AS value") {
		t.Fatalf("money must be selected as text: %s", q.text)
	}
	if !strings.Contains(q.text, "WHERE user_id = $1 AND client_id IS NULL AND quote_id = $2") {
		t.Fatalf("unexpected where clause: %s", q.text)
	}
	if !strings.HasSuffix(q.text, "ORDER BY created_at DESC, id ASC") {
		t.Fatalf("unexpected order: %s", q.text)
	}
	if len(q.args) != 2 || q.args[0] != "acct" || q.args[1] != "q-1" {
		t.Fatalf("unexpected args: %v", q.args)
	}
}

func TestPostgresDialect_BuildUpdate(t *testing.T) {
	sc := schemas[interfaces.TablePayments]
	q := postgresDialect.buildUpdate(sc, "acct", "p-1", interfaces.Row{
		interfaces.ColValue:   decimal.RequireFromString("150.00"),
		interfaces.ColQuoteID: nil,
	})
	want := "UPDATE payments SET quote_id = $1, value = $2 WHERE id = $3 AND user_id = $4"
	if q.text != want {
		t.Fatalf("expected %q, got %q", want, q.text)
	}
	if q.args[0] != nil || q.args[1] != "150" || q.args[2] != "p-1" || q.args[3] != "acct" {
		t.Fatalf("unexpected args: %v", q.args)
	}
}

func TestSQLiteDialect_EncodesTimeFixedWidth(t *testing.T) {
	a := sqliteDialect.encode(kindTime, time.Date(2025, 1, 1, 0, 0, 5, 0, time.UTC)).(string)
	b := sqliteDialect.encode(kindTime, time.Date(2025, 1, 1, 0, 0, 5, 500_000_000, time.UTC)).(string)
	if len(a) != len(b) || !(a < b) {
		t.Fatalf("encoded times must sort as text: %q %q", a, b)
	}
}

func TestPostgresStore_MapError(t *testing.T) {
	s := NewPostgresStore(nil, nil)

	cases := []struct {
		code string
		want error
	}{
		{code: pgForeignKeyViolation, want: entities.ErrReferentialConflict},
		{code: pgUniqueViolation, want: entities.ErrReferentialConflict},
		{code: pgInvalidTextRepresentation, want: entities.ErrInvalidValue},
		{code: "08006", want: entities.ErrStoreUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			err := s.mapError("insert", interfaces.TablePayments, &pgconn.PgError{Code: tc.code})
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}

	t.Run("plain error keeps cause", func(t *testing.T) {
		cause := errors.New("dial tcp: refused")
		err := s.mapError("list", interfaces.TableQuotes, cause)
		if !errors.Is(err, entities.ErrStoreUnavailable) || !errors.Is(err, cause) {
			t.Fatalf("expected unavailable wrapping cause, got %v", err)
		}
	})
}

func TestPgDecodeRow(t *testing.T) {
	sc := schemas[interfaces.TablePayments]
	targets := make([]any, len(sc.columns))
	for i, c := range sc.columns {
		targets[i] = pgScanTarget(c.kind)
		switch c.name {
		case interfaces.ColValue:
			*targets[i].(*string) = "99.90"
		case interfaces.ColQuoteID:
			q := "q-1"
			*targets[i].(**string) = &q
		case interfaces.ColCreatedAt:
			*targets[i].(*time.Time) = time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
		}
	}
	row, err := pgDecodeRow(sc, targets)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !row[interfaces.ColValue].(decimal.Decimal).Equal(decimal.RequireFromString("99.9")) {
		t.Fatalf("unexpected value: %v", row[interfaces.ColValue])
	}
	if row[interfaces.ColQuoteID] != "q-1" || row[interfaces.ColClientID] != nil || row["paid_at"] != nil {
		t.Fatalf("unexpected optional columns: %+v", row)
	}
}
