package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"bizdesk/internal/domain/account"
	"bizdesk/internal/domain/entities"
	"bizdesk/internal/usecase/interfaces"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PostgreSQL error codes.
const (
	pgForeignKeyViolation       = "23503"
	pgUniqueViolation           = "23505"
	pgCheckViolation            = "23514"
	pgInvalidTextRepresentation = "22P02"
)

// pgxConn is the subset of pgxpool.Pool the store needs.
type pgxConn interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

var postgresDialect = dialect{
	placeholder: func(n int) string { return "$" + strconv.Itoa(n) },
	// uuid, enum and numeric columns come back as text.
	selectExpr: func(c column) string {
		switch c.kind {
		case kindTime, kindNullableTime:
			return c.name
		}
		return c.name + "::text AS " + c.name
	},
	encode: func(kind columnKind, v any) any {
		if d, ok := v.(decimal.Decimal); ok {
			return d.String()
		}
		return v
	},
}

// PostgresStore is the entity store over Supabase Postgres. Integrity rules
// live in the database (see migrations/postgres).
type PostgresStore struct {
	conn   pgxConn
	logger *zap.Logger
	now    func() time.Time
}

var _ interfaces.IEntityStore = (*PostgresStore)(nil)

func NewPostgresStore(conn pgxConn, logger *zap.Logger) *PostgresStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PostgresStore{
		conn:   conn,
		logger: logger.Named("postgres_store"),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *PostgresStore) List(ctx context.Context, table interfaces.Table, filter interfaces.Filter) ([]interfaces.Row, error) {
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

	q := postgresDialect.buildSelect(sc, accountID, f)
	rows, err := s.conn.Query(ctx, q.text, q.args...)
	if err != nil {
		return nil, s.mapError("list", table, err)
	}
	defer rows.Close()

	out := make([]interfaces.Row, 0)
	for rows.Next() {
		targets := make([]any, len(sc.columns))
		for i, c := range sc.columns {
			targets[i] = pgScanTarget(c.kind)
		}
		if err := rows.Scan(targets...); err != nil {
			return nil, s.mapError("scan", table, err)
		}
		row, err := pgDecodeRow(sc, targets)
		if err != nil {
			return nil, fmt.Errorf("%w: decode %s: %w", entities.ErrStoreUnavailable, table, err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, s.mapError("list", table, err)
	}
	return out, nil
}

func (s *PostgresStore) Insert(ctx context.Context, table interfaces.Table, row interfaces.Row) (interfaces.Row, error) {
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

	q := postgresDialect.buildInsert(sc, r)
	if _, err := s.conn.Exec(ctx, q.text, q.args...); err != nil {
		return nil, s.mapError("insert", table, err)
	}
	return copyRow(r), nil
}

func (s *PostgresStore) Update(ctx context.Context, table interfaces.Table, id string, patch interfaces.Row) error {
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
	if _, ok := p[interfaces.ColUpdatedAt]; !ok {
		p[interfaces.ColUpdatedAt] = s.now()
	}

	q := postgresDialect.buildUpdate(sc, accountID, id, p)
	ct, err := s.conn.Exec(ctx, q.text, q.args...)
	if err != nil {
		return s.mapError("update", table, err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s %s", entities.ErrNotFound, table, id)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, table interfaces.Table, id string) error {
	accountID, err := account.IDFromContext(ctx)
	if err != nil {
		return err
	}
	sc, err := schemaFor(table)
	if err != nil {
		return err
	}

	q := postgresDialect.buildDelete(sc, accountID, id)
	ct, err := s.conn.Exec(ctx, q.text, q.args...)
	if err != nil {
		return s.mapError("delete", table, err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s %s", entities.ErrNotFound, table, id)
	}
	return nil
}

func (s *PostgresStore) mapError(op string, table interfaces.Table, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgForeignKeyViolation, pgUniqueViolation:
			return fmt.Errorf("%w: %s %s: %s", entities.ErrReferentialConflict, op, table, pgErr.Message)
		case pgCheckViolation, pgInvalidTextRepresentation:
			return fmt.Errorf("%w: %s %s: %s", entities.ErrInvalidValue, op, table, pgErr.Message)
		}
	}
	s.logger.Error("store call failed", zap.String("op", op), zap.String("table", string(table)), zap.Error(err))
	return fmt.Errorf("%w: %s %s: %w", entities.ErrStoreUnavailable, op, table, err)
}

func pgScanTarget(kind columnKind) any {
	switch kind {
	case kindNullableText:
		return new(*string)
	case kindTime:
		return new(time.Time)
	case kindNullableTime:
		return new(*time.Time)
	default:
		return new(string)
	}
}

func pgDecodeRow(sc *tableSchema, targets []any) (interfaces.Row, error) {
	row := make(interfaces.Row, len(sc.columns))
	for i, c := range sc.columns {
		switch c.kind {
		case kindText:
			row[c.name] = *targets[i].(*string)
		case kindNullableText:
			if p := *targets[i].(**string); p != nil {
				row[c.name] = *p
			} else {
				row[c.name] = nil
			}
		case kindMoney:
			d, err := decimal.NewFromString(*targets[i].(*string))
			if err != nil {
				return nil, fmt.Errorf("column %s: %w", c.name, err)
			}
			row[c.name] = d
		case kindTime:
			row[c.name] = targets[i].(*time.Time).UTC()
		case kindNullableTime:
			if p := *targets[i].(**time.Time); p != nil {
				row[c.name] = p.UTC()
			} else {
				row[c.name] = nil
			}
		}
	}
	return row, nil
}
