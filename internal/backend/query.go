package backend

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/lib/pq"
)

var identRe = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

type filter struct {
	column string
	op     string
	value  any
}

type order struct {
	column string
	desc   bool
}

type query struct {
	filters []filter
	orders  []order
	limit   int
}

// Option narrows or orders a query.
type Option func(*query)

func where(column, op string, value any) Option {
	return func(q *query) {
		q.filters = append(q.filters, filter{column: column, op: op, value: value})
	}
}

func Eq(column string, value any) Option  { return where(column, "=", value) }
func Neq(column string, value any) Option { return where(column, "<>", value) }
func Gt(column string, value any) Option  { return where(column, ">", value) }
func Gte(column string, value any) Option { return where(column, ">=", value) }
func Lt(column string, value any) Option  { return where(column, "<", value) }
func Lte(column string, value any) Option { return where(column, "<=", value) }

// In matches any of values; values must be a slice pq.Array understands
// ([]int64, []string, ...).
func In(column string, values any) Option {
	return func(q *query) {
		q.filters = append(q.filters, filter{column: column, op: "in", value: pq.Array(values)})
	}
}

func IsNull(column string) Option { return where(column, "is null", nil) }

func Order(column string, desc bool) Option {
	return func(q *query) {
		q.orders = append(q.orders, order{column: column, desc: desc})
	}
}

func Limit(n int) Option {
	return func(q *query) { q.limit = n }
}

func newQuery(opts []Option) query {
	var q query
	for _, opt := range opts {
		opt(&q)
	}
	return q
}

func ident(name string) (string, error) {
	if !identRe.MatchString(name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidIdentifier, name)
	}
	return pq.QuoteIdentifier(name), nil
}

func tableName(schema, table string) (string, error) {
	t, err := ident(table)
	if err != nil {
		return "", err
	}
	if schema == "" {
		return t, nil
	}
	s, err := ident(schema)
	if err != nil {
		return "", err
	}
	return s + "." + t, nil
}

// whereClause renders filters starting at placeholder $start.
func (q query) whereClause(start int) (string, []any, error) {
	if len(q.filters) == 0 {
		return "", nil, nil
	}

	parts := make([]string, 0, len(q.filters))
	args := make([]any, 0, len(q.filters))
	n := start
	for _, f := range q.filters {
		col, err := ident(f.column)
		if err != nil {
			return "", nil, err
		}
		switch f.op {
		case "is null":
			parts = append(parts, col+" IS NULL")
		case "in":
			parts = append(parts, fmt.Sprintf("%s = ANY($%d)", col, n))
			args = append(args, f.value)
			n++
		default:
			parts = append(parts, fmt.Sprintf("%s %s $%d", col, f.op, n))
			args = append(args, f.value)
			n++
		}
	}
	return " WHERE " + strings.Join(parts, " AND "), args, nil
}

func buildSelect(schema, table string, q query) (string, []any, error) {
	tbl, err := tableName(schema, table)
	if err != nil {
		return "", nil, err
	}

	where, args, err := q.whereClause(1)
	if err != nil {
		return "", nil, err
	}

	var sb strings.Builder
	sb.WriteString("SELECT * FROM ")
	sb.WriteString(tbl)
	sb.WriteString(where)

	if len(q.orders) > 0 {
		parts := make([]string, 0, len(q.orders))
		for _, o := range q.orders {
			col, err := ident(o.column)
			if err != nil {
				return "", nil, err
			}
			if o.desc {
				col += " DESC"
			}
			parts = append(parts, col)
		}
		sb.WriteString(" ORDER BY ")
		sb.WriteString(strings.Join(parts, ", "))
	}
	if q.limit > 0 {
		fmt.Fprintf(&sb, " LIMIT %d", q.limit)
	}
	return sb.String(), args, nil
}

// sortedColumns keeps generated SQL stable for equal rows.
func sortedColumns(row Row) []string {
	cols := make([]string, 0, len(row))
	for c := range row {
		cols = append(cols, c)
	}
	sort.Strings(cols)
	return cols
}

func buildInsert(schema, table string, row Row) (string, []any, error) {
	if len(row) == 0 {
		return "", nil, ErrEmptyRow
	}
	tbl, err := tableName(schema, table)
	if err != nil {
		return "", nil, err
	}

	cols := sortedColumns(row)
	quoted := make([]string, len(cols))
	marks := make([]string, len(cols))
	args := make([]any, len(cols))
	for i, c := range cols {
		q, err := ident(c)
		if err != nil {
			return "", nil, err
		}
		quoted[i] = q
		marks[i] = fmt.Sprintf("$%d", i+1)
		args[i] = row[c]
	}

	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING *",
		tbl, strings.Join(quoted, ", "), strings.Join(marks, ", "))
	return sql, args, nil
}

func buildUpdate(schema, table string, row Row, q query) (string, []any, error) {
	if len(row) == 0 {
		return "", nil, ErrEmptyRow
	}
	if len(q.filters) == 0 {
		return "", nil, ErrUnfiltered
	}
	tbl, err := tableName(schema, table)
	if err != nil {
		return "", nil, err
	}

	cols := sortedColumns(row)
	sets := make([]string, len(cols))
	args := make([]any, 0, len(cols)+len(q.filters))
	for i, c := range cols {
		col, err := ident(c)
		if err != nil {
			return "", nil, err
		}
		sets[i] = fmt.Sprintf("%s = $%d", col, i+1)
		args = append(args, row[c])
	}

	where, whereArgs, err := q.whereClause(len(cols) + 1)
	if err != nil {
		return "", nil, err
	}
	args = append(args, whereArgs...)

	return fmt.Sprintf("UPDATE %s SET %s%s", tbl, strings.Join(sets, ", "), where), args, nil
}

func buildDelete(schema, table string, q query) (string, []any, error) {
	if len(q.filters) == 0 {
		return "", nil, ErrUnfiltered
	}
	tbl, err := tableName(schema, table)
	if err != nil {
		return "", nil, err
	}

	where, args, err := q.whereClause(1)
	if err != nil {
		return "", nil, err
	}
	return "DELETE FROM " + tbl + where, args, nil
}

// Explain renders the select a table+options pair would run, without a
// schema. Used in logs and by test doubles.
func Explain(table string, opts ...Option) string {
	sql, args, err := buildSelect("", table, newQuery(opts))
	if err != nil {
		return "invalid: " + err.Error()
	}
	if len(args) == 0 {
		return sql
	}
	return fmt.Sprintf("%s %v", sql, args)
}
