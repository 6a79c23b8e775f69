package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"bizdesk/internal/domain/account"
	"bizdesk/internal/domain/entities"
	"bizdesk/internal/usecase/interfaces"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// sqliteTimeLayout is fixed width so text order equals time order.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z"

var sqliteDialect = dialect{
	placeholder: func(int) string { return "?" },
	selectExpr:  func(c column) string { return c.name },
	encode: func(kind columnKind, v any) any {
		switch t := v.(type) {
		case decimal.Decimal:
			return t.String()
		case time.Time:
			return t.UTC().Format(sqliteTimeLayout)
		}
		return v
	},
}

// SQLiteStore is the entity store for single-node installs. Every value is
// stored as TEXT; foreign keys must be enabled on the connection.
type SQLiteStore struct {
	db     *sql.DB
	logger *zap.Logger
	now    func() time.Time
}

var _ interfaces.IEntityStore = (*SQLiteStore)(nil)

func NewSQLiteStore(db *sql.DB, logger *zap.Logger) *SQLiteStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SQLiteStore{
		db:     db,
		logger: logger.Named("sqlite_store"),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *SQLiteStore) List(ctx context.Context, table interfaces.Table, filter interfaces.Filter) ([]interfaces.Row, error) {
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

	q := sqliteDialect.buildSelect(sc, accountID, f)
	rows, err := s.db.QueryContext(ctx, q.text, q.args...)
	if err != nil {
		return nil, s.mapError("list", table, err)
	}
	defer rows.Close()

	out := make([]interfaces.Row, 0)
	for rows.Next() {
		targets := make([]any, len(sc.columns))
		for i := range targets {
			targets[i] = new(sql.NullString)
		}
		if err := rows.Scan(targets...); err != nil {
			return nil, s.mapError("scan", table, err)
		}
		row, err := sqliteDecodeRow(sc, targets)
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

func (s *SQLiteStore) Insert(ctx context.Context, table interfaces.Table, row interfaces.Row) (interfaces.Row, error) {
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

	q := sqliteDialect.buildInsert(sc, r)
	if _, err := s.db.ExecContext(ctx, q.text, q.args...); err != nil {
		return nil, s.mapError("insert", table, err)
	}
	return copyRow(r), nil
}

func (s *SQLiteStore) Update(ctx context.Context, table interfaces.Table, id string, patch interfaces.Row) error {
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

	q := sqliteDialect.buildUpdate(sc, accountID, id, p)
	res, err := s.db.ExecContext(ctx, q.text, q.args...)
	if err != nil {
		return s.mapError("update", table, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s %s", entities.ErrNotFound, table, id)
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, table interfaces.Table, id string) error {
	accountID, err := account.IDFromContext(ctx)
	if err != nil {
		return err
	}
	sc, err := schemaFor(table)
	if err != nil {
		return err
	}

	q := sqliteDialect.buildDelete(sc, accountID, id)
	res, err := s.db.ExecContext(ctx, q.text, q.args...)
	if err != nil {
		return s.mapError("delete", table, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s %s", entities.ErrNotFound, table, id)
	}
	return nil
}

func (s *SQLiteStore) mapError(op string, table interfaces.Table, err error) error {
	var sqErr *sqlite.Error
	if errors.As(err, &sqErr) {
		switch code := sqErr.Code(); {
		case code == sqlite3.SQLITE_CONSTRAINT_CHECK, code == sqlite3.SQLITE_CONSTRAINT_NOTNULL:
			return fmt.Errorf("%w: %s %s: %s", entities.ErrInvalidValue, op, table, sqErr.Error())
		case code&0xff == sqlite3.SQLITE_CONSTRAINT:
			// foreign key, unique and primary key violations
			return fmt.Errorf("%w: %s %s: %s", entities.ErrReferentialConflict, op, table, sqErr.Error())
		}
	}
	s.logger.Error("store call failed", zap.String("op", op), zap.String("table", string(table)), zap.Error(err))
	return fmt.Errorf("%w: %s %s: %w", entities.ErrStoreUnavailable, op, table, err)
}

func sqliteDecodeRow(sc *tableSchema, targets []any) (interfaces.Row, error) {
	row := make(interfaces.Row, len(sc.columns))
	for i, c := range sc.columns {
		ns := targets[i].(*sql.NullString)
		if !ns.Valid {
			row[c.name] = nil
			continue
		}
		switch c.kind {
		case kindMoney:
			d, err := decimal.NewFromString(ns.String)
			if err != nil {
				return nil, fmt.Errorf("column %s: %w", c.name, err)
			}
			row[c.name] = d
		case kindTime, kindNullableTime:
			t, err := time.Parse(time.RFC3339Nano, ns.String)
			if err != nil {
				return nil, fmt.Errorf("column %s: %w", c.name, err)
			}
			row[c.name] = t.UTC()
		default:
			row[c.name] = ns.String
		}
	}
	return row, nil
}
