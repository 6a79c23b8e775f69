package store

import (
	"fmt"
	"strings"

	"bizdesk/internal/usecase/interfaces"
)

// dialect is what differs between the SQL backends.
type dialect struct {
	placeholder func(n int) string
	selectExpr  func(c column) string
	encode      func(kind columnKind, v any) any
}

type sqlQuery struct {
	text string
	args []any
}

func (d dialect) selectList(sc *tableSchema) string {
	exprs := make([]string, len(sc.columns))
	for i, c := range sc.columns {
		exprs[i] = d.selectExpr(c)
	}
	return strings.Join(exprs, ", ")
}

func (d dialect) buildSelect(sc *tableSchema, accountID string, filter interfaces.Filter) sqlQuery {
	args := []any{accountID}
	where := []string{fmt.Sprintf("%s = %s", interfaces.ColUserID, d.placeholder(1))}
	for _, k := range sortedKeys(filter) {
		v := filter[k]
		if v == nil {
			where = append(where, k+" IS NULL")
			continue
		}
		args = append(args, d.encode(sc.kinds[k], v))
		where = append(where, fmt.Sprintf("%s = %s", k, d.placeholder(len(args))))
	}
	text := fmt.Sprintf("SELECT %s FROM %s WHERE %s ORDER BY %s DESC, %s ASC",
		d.selectList(sc), sc.name, strings.Join(where, " AND "), interfaces.ColCreatedAt, interfaces.ColID)
	return sqlQuery{text: text, args: args}
}

func (d dialect) buildInsert(sc *tableSchema, row interfaces.Row) sqlQuery {
	cols := make([]string, 0, len(sc.columns))
	marks := make([]string, 0, len(sc.columns))
	args := make([]any, 0, len(sc.columns))
	for _, c := range sc.columns {
		args = append(args, d.encode(c.kind, row[c.name]))
		cols = append(cols, c.name)
		marks = append(marks, d.placeholder(len(args)))
	}
	text := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", sc.name, strings.Join(cols, ", "), strings.Join(marks, ", "))
	return sqlQuery{text: text, args: args}
}

// buildUpdate expects patch to already carry updated_at.
func (d dialect) buildUpdate(sc *tableSchema, accountID, id string, patch interfaces.Row) sqlQuery {
	sets := make([]string, 0, len(patch))
	args := make([]any, 0, len(patch)+2)
	for _, k := range sortedKeys(patch) {
		args = append(args, d.encode(sc.kinds[k], patch[k]))
		sets = append(sets, fmt.Sprintf("%s = %s", k, d.placeholder(len(args))))
	}
	args = append(args, id, accountID)
	text := fmt.Sprintf("UPDATE %s SET %s WHERE %s = %s AND %s = %s",
		sc.name, strings.Join(sets, ", "),
		interfaces.ColID, d.placeholder(len(args)-1),
		interfaces.ColUserID, d.placeholder(len(args)))
	return sqlQuery{text: text, args: args}
}

func (d dialect) buildDelete(sc *tableSchema, accountID, id string) sqlQuery {
	text := fmt.Sprintf("DELETE FROM %s WHERE %s = %s AND %s = %s",
		sc.name, interfaces.ColID, d.placeholder(1), interfaces.ColUserID, d.placeholder(2))
	return sqlQuery{text: text, args: []any{id, accountID}}
}
