package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"bizdesk/internal/domain/account"
	"bizdesk/internal/domain/entities"
	"bizdesk/internal/infrastructure/database"
	"bizdesk/internal/infrastructure/migrations"
	"bizdesk/internal/usecase/interfaces"

	"github.com/shopspring/decimal"
)

func newSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	db, err := database.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "store.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := migrations.SQLite(db); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}
	return NewSQLiteStore(db, nil)
}

func TestEntityStoreConformance(t *testing.T) {
	backends := map[string]func(t *testing.T) interfaces.IEntityStore{
		"memory": func(t *testing.T) interfaces.IEntityStore { return NewMemoryStore() },
		"sqlite": func(t *testing.T) interfaces.IEntityStore { return newSQLiteStore(t) },
	}
	for name, newStore := range backends {
		t.Run(name, func(t *testing.T) {
			runConformance(t, newStore)
		})
	}
}

func clientRow(name string) interfaces.Row {
	return interfaces.Row{"name": name, "phone": "555-0101", "service_type": "cleaning"}
}

func quoteRow(clientID any, value string) interfaces.Row {
	return interfaces.Row{
		interfaces.ColClientID:   clientID,
		interfaces.ColClientName: "Ana",
		interfaces.ColService:    "Deep clean",
		interfaces.ColValue:      decimal.RequireFromString(value),
		interfaces.ColStatus:     "sent",
	}
}

func paymentRow(quoteID any, value string) interfaces.Row {
	return interfaces.Row{
		interfaces.ColQuoteID:    quoteID,
		interfaces.ColClientName: "Ana",
		interfaces.ColService:    "Deep clean",
		interfaces.ColValue:      decimal.RequireFromString(value),
		interfaces.ColStatus:     "pending",
	}
}

func runConformance(t *testing.T, newStore func(t *testing.T) interfaces.IEntityStore) {
	alice := account.WithID(context.Background(), "alice")
	bob := account.WithID(context.Background(), "bob")

	t.Run("requires account", func(t *testing.T) {
		s := newStore(t)
		if _, err := s.List(context.Background(), interfaces.TableQuotes, nil); !errors.Is(err, entities.ErrNotAuthenticated) {
			t.Fatalf("expected ErrNotAuthenticated, got %v", err)
		}
		if _, err := s.Insert(context.Background(), interfaces.TableClients, clientRow("Ana")); !errors.Is(err, entities.ErrNotAuthenticated) {
			t.Fatalf("expected ErrNotAuthenticated, got %v", err)
		}
		if err := s.Update(context.Background(), interfaces.TableClients, "x", interfaces.Row{"name": "B"}); !errors.Is(err, entities.ErrNotAuthenticated) {
			t.Fatalf("expected ErrNotAuthenticated, got %v", err)
		}
		if err := s.Delete(context.Background(), interfaces.TableClients, "x"); !errors.Is(err, entities.ErrNotAuthenticated) {
			t.Fatalf("expected ErrNotAuthenticated, got %v", err)
		}
	})

	t.Run("insert stamps account and defaults", func(t *testing.T) {
		s := newStore(t)
		row, err := s.Insert(alice, interfaces.TableClients, clientRow("Ana"))
		if err != nil {
			t.Fatalf("insert: %v", err)
		}
		if row[interfaces.ColID] == "" || row[interfaces.ColUserID] != "alice" || row["notes"] != nil {
			t.Fatalf("unexpected row: %+v", row)
		}
		if _, ok := row[interfaces.ColCreatedAt].(time.Time); !ok {
			t.Fatalf("expected created_at time, got %T", row[interfaces.ColCreatedAt])
		}
	})

	t.Run("rows are scoped to the account", func(t *testing.T) {
		s := newStore(t)
		row, err := s.Insert(alice, interfaces.TableClients, clientRow("Ana"))
		if err != nil {
			t.Fatalf("insert: %v", err)
		}
		id := row[interfaces.ColID].(string)

		rows, err := s.List(bob, interfaces.TableClients, nil)
		if err != nil || len(rows) != 0 {
			t.Fatalf("bob should see nothing, got %d rows err=%v", len(rows), err)
		}
		if err := s.Update(bob, interfaces.TableClients, id, interfaces.Row{"name": "Eve"}); !errors.Is(err, entities.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
		if err := s.Delete(bob, interfaces.TableClients, id); !errors.Is(err, entities.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("filters and null match", func(t *testing.T) {
		s := newStore(t)
		q, err := s.Insert(alice, interfaces.TableQuotes, quoteRow(nil, "100"))
		if err != nil {
			t.Fatalf("insert quote: %v", err)
		}
		qid := q[interfaces.ColID].(string)
		if _, err := s.Insert(alice, interfaces.TablePayments, paymentRow(qid, "100")); err != nil {
			t.Fatalf("insert linked payment: %v", err)
		}
		if _, err := s.Insert(alice, interfaces.TablePayments, paymentRow(nil, "40.50")); err != nil {
			t.Fatalf("insert manual payment: %v", err)
		}

		linked, err := s.List(alice, interfaces.TablePayments, interfaces.Filter{interfaces.ColQuoteID: qid})
		if err != nil || len(linked) != 1 {
			t.Fatalf("expected one linked payment, got %d err=%v", len(linked), err)
		}
		if !linked[0][interfaces.ColValue].(decimal.Decimal).Equal(decimal.RequireFromString("100")) {
			t.Fatalf("unexpected value: %v", linked[0][interfaces.ColValue])
		}

		manual, err := s.List(alice, interfaces.TablePayments, interfaces.Filter{interfaces.ColQuoteID: nil})
		if err != nil || len(manual) != 1 {
			t.Fatalf("expected one manual payment, got %d err=%v", len(manual), err)
		}
		if !manual[0][interfaces.ColValue].(decimal.Decimal).Equal(decimal.RequireFromString("40.5")) {
			t.Fatalf("unexpected value: %v", manual[0][interfaces.ColValue])
		}
	})

	t.Run("list is newest first", func(t *testing.T) {
		s := newStore(t)
		base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
		for i, id := range []string{"a", "b", "c"} {
			row := clientRow(id)
			row[interfaces.ColID] = id
			row[interfaces.ColCreatedAt] = base.Add(time.Duration(i) * time.Minute)
			if _, err := s.Insert(alice, interfaces.TableClients, row); err != nil {
				t.Fatalf("insert %s: %v", id, err)
			}
		}
		rows, err := s.List(alice, interfaces.TableClients, nil)
		if err != nil || len(rows) != 3 {
			t.Fatalf("expected 3 rows, got %d err=%v", len(rows), err)
		}
		if rows[0][interfaces.ColID] != "c" || rows[2][interfaces.ColID] != "a" {
			t.Fatalf("unexpected order: %v %v %v", rows[0][interfaces.ColID], rows[1][interfaces.ColID], rows[2][interfaces.ColID])
		}
	})

	t.Run("update patches only named columns", func(t *testing.T) {
		s := newStore(t)
		q, _ := s.Insert(alice, interfaces.TableQuotes, quoteRow(nil, "10"))
		qid := q[interfaces.ColID].(string)
		p, _ := s.Insert(alice, interfaces.TablePayments, paymentRow(qid, "10"))
		pid := p[interfaces.ColID].(string)

		paidAt := time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)
		if err := s.Update(alice, interfaces.TablePayments, pid, interfaces.Row{
			interfaces.ColStatus: "paid", "payment_method": "pix", "paid_at": paidAt,
		}); err != nil {
			t.Fatalf("mark paid: %v", err)
		}
		if err := s.Update(alice, interfaces.TablePayments, pid, interfaces.Row{interfaces.ColValue: decimal.RequireFromString("15")}); err != nil {
			t.Fatalf("update value: %v", err)
		}

		rows, _ := s.List(alice, interfaces.TablePayments, interfaces.Filter{interfaces.ColID: pid})
		got := rows[0]
		if got[interfaces.ColStatus] != "paid" || got["payment_method"] != "pix" {
			t.Fatalf("status fields were lost: %+v", got)
		}
		if !got["paid_at"].(time.Time).Equal(paidAt) {
			t.Fatalf("unexpected paid_at: %v", got["paid_at"])
		}
		if !got[interfaces.ColValue].(decimal.Decimal).Equal(decimal.RequireFromString("15")) {
			t.Fatalf("unexpected value: %v", got[interfaces.ColValue])
		}
		if got[interfaces.ColQuoteID] != qid {
			t.Fatalf("quote link was lost: %v", got[interfaces.ColQuoteID])
		}
	})

	t.Run("update rejects immutable columns", func(t *testing.T) {
		s := newStore(t)
		c, _ := s.Insert(alice, interfaces.TableClients, clientRow("Ana"))
		if err := s.Update(alice, interfaces.TableClients, c[interfaces.ColID].(string), interfaces.Row{interfaces.ColUserID: "bob"}); !errors.Is(err, entities.ErrInvalidValue) {
			t.Fatalf("expected ErrInvalidValue, got %v", err)
		}
	})

	t.Run("unknown column rejected", func(t *testing.T) {
		s := newStore(t)
		if _, err := s.List(alice, interfaces.TableClients, interfaces.Filter{"nope": "x"}); !errors.Is(err, entities.ErrInvalidValue) {
			t.Fatalf("expected ErrInvalidValue, got %v", err)
		}
	})

	t.Run("referenced client cannot be deleted", func(t *testing.T) {
		s := newStore(t)
		c, _ := s.Insert(alice, interfaces.TableClients, clientRow("Ana"))
		cid := c[interfaces.ColID].(string)
		if _, err := s.Insert(alice, interfaces.TableQuotes, quoteRow(cid, "10")); err != nil {
			t.Fatalf("insert quote: %v", err)
		}
		if err := s.Delete(alice, interfaces.TableClients, cid); !errors.Is(err, entities.ErrReferentialConflict) {
			t.Fatalf("expected ErrReferentialConflict, got %v", err)
		}
	})

	t.Run("unreferenced client can be deleted", func(t *testing.T) {
		s := newStore(t)
		c, _ := s.Insert(alice, interfaces.TableClients, clientRow("Ana"))
		cid := c[interfaces.ColID].(string)
		if err := s.Delete(alice, interfaces.TableClients, cid); err != nil {
			t.Fatalf("delete: %v", err)
		}
		if err := s.Delete(alice, interfaces.TableClients, cid); !errors.Is(err, entities.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("reference to missing row rejected", func(t *testing.T) {
		s := newStore(t)
		if _, err := s.Insert(alice, interfaces.TableQuotes, quoteRow("ghost", "10")); !errors.Is(err, entities.ErrReferentialConflict) {
			t.Fatalf("expected ErrReferentialConflict, got %v", err)
		}
	})

	t.Run("linked quote cannot be deleted until unlinked", func(t *testing.T) {
		s := newStore(t)
		q, _ := s.Insert(alice, interfaces.TableQuotes, quoteRow(nil, "10"))
		qid := q[interfaces.ColID].(string)
		p, _ := s.Insert(alice, interfaces.TablePayments, paymentRow(qid, "10"))
		pid := p[interfaces.ColID].(string)

		if err := s.Delete(alice, interfaces.TableQuotes, qid); !errors.Is(err, entities.ErrReferentialConflict) {
			t.Fatalf("expected ErrReferentialConflict, got %v", err)
		}
		if err := s.Update(alice, interfaces.TablePayments, pid, interfaces.Row{interfaces.ColQuoteID: nil}); err != nil {
			t.Fatalf("unlink: %v", err)
		}
		if err := s.Delete(alice, interfaces.TableQuotes, qid); err != nil {
			t.Fatalf("delete after unlink: %v", err)
		}
		rows, _ := s.List(alice, interfaces.TablePayments, nil)
		if len(rows) != 1 || rows[0][interfaces.ColQuoteID] != nil {
			t.Fatalf("payment must survive unlinked, got %+v", rows)
		}
	})

	t.Run("duplicate id rejected", func(t *testing.T) {
		s := newStore(t)
		row := clientRow("Ana")
		row[interfaces.ColID] = "fixed"
		if _, err := s.Insert(alice, interfaces.TableClients, row); err != nil {
			t.Fatalf("insert: %v", err)
		}
		row = clientRow("Ana")
		row[interfaces.ColID] = "fixed"
		if _, err := s.Insert(alice, interfaces.TableClients, row); !errors.Is(err, entities.ErrReferentialConflict) {
			t.Fatalf("expected ErrReferentialConflict, got %v", err)
		}
	})

	t.Run("missing required column", func(t *testing.T) {
		s := newStore(t)
		if _, err := s.Insert(alice, interfaces.TableClients, interfaces.Row{"name": "Ana"}); !errors.Is(err, entities.ErrInvalidValue) {
			t.Fatalf("expected ErrInvalidValue, got %v", err)
		}
	})
}

func TestSQLiteStore_UniqueQuoteLink(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := account.WithID(context.Background(), "alice")
	q, err := s.Insert(ctx, interfaces.TableQuotes, quoteRow(nil, "10"))
	if err != nil {
		t.Fatalf("insert quote: %v", err)
	}
	qid := q[interfaces.ColID].(string)
	if _, err := s.Insert(ctx, interfaces.TablePayments, paymentRow(qid, "10")); err != nil {
		t.Fatalf("insert payment: %v", err)
	}
	if _, err := s.Insert(ctx, interfaces.TablePayments, paymentRow(qid, "10")); !errors.Is(err, entities.ErrReferentialConflict) {
		t.Fatalf("expected ErrReferentialConflict, got %v", err)
	}
}
