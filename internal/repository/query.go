package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
)

// Op is a filter operator understood by the collection API.
type Op string

const (
	OpEq Op = "eq"
	OpIn Op = "in"
)

// Filter restricts a query to rows whose column matches Values. OpEq uses
// the first value; OpIn matches any of them and matches nothing when empty.
type Filter struct {
	Column string
	Op     Op
	Values []string
}

// Eq and In build filters.
func Eq(column, value string) Filter            { return Filter{Column: column, Op: OpEq, Values: []string{value}} }
func In(column string, values ...string) Filter { return Filter{Column: column, Op: OpIn, Values: values} }

// Order sorts a result set by one column.
type Order struct {
	Column string
	Desc   bool
}

// Query is a filtered, ordered read of one collection.
type Query struct {
	Filters []Filter
	Order   []Order
}

// Patch maps column names to new values. Values are string, bool or nil
// (SQL NULL).
type Patch map[string]any

type kind int

const (
	kindText kind = iota
	kindBool
)

type column struct {
	name     string
	kind     kind
	expr     string // select expression when it differs from name
	readOnly bool   // never patched (ids, timestamps)
}

// table describes a collection: its SQL name and the columns it exposes.
type table struct {
	name    string
	columns []column
	index   map[string]column
}

func newTable(name string, cols ...column) *table {
	t := &table{name: name, columns: cols, index: make(map[string]column, len(cols))}
	for _, c := range cols {
		t.index[c.name] = c
	}
	return t
}

// Columns lists the exposed column names in select order.
func (t *table) Columns() []string {
	out := make([]string, len(t.columns))
	for i, c := range t.columns {
		out[i] = c.name
	}
	return out
}

func (t *table) selectList() string {
	parts := make([]string, len(t.columns))
	for i, c := range t.columns {
		if c.expr != "" {
			parts[i] = c.expr + " AS " + c.name
		} else {
			parts[i] = c.name
		}
	}
	return strings.Join(parts, ", ")
}

func (t *table) arg(c column, v string) (any, error) {
	if c.kind == kindBool {
		switch strings.ToLower(v) {
		case "true", "1":
			return true, nil
		case "false", "0":
			return false, nil
		}
		return nil, fmt.Errorf("%w: %s=%q", ErrInvalidValue, c.name, v)
	}
	return v, nil
}

// where renders filters as a WHERE clause with positional args.
func (t *table) where(filters []Filter) (string, []any, error) {
	if len(filters) == 0 {
		return "", nil, nil
	}
	var (
		conds []string
		args  []any
	)
	for _, f := range filters {
		c, ok := t.index[f.Column]
		if !ok {
			return "", nil, fmt.Errorf("%w: %s.%s", ErrUnknownColumn, t.name, f.Column)
		}
		switch f.Op {
		case OpEq:
			if len(f.Values) != 1 {
				return "", nil, fmt.Errorf("%w: eq on %s needs one value", ErrInvalidValue, f.Column)
			}
			a, err := t.arg(c, f.Values[0])
			if err != nil {
				return "", nil, err
			}
			conds = append(conds, c.name+" = ?")
			args = append(args, a)
		case OpIn:
			if len(f.Values) == 0 {
				conds = append(conds, "1 = 0")
				continue
			}
			marks := make([]string, len(f.Values))
			for i, v := range f.Values {
				a, err := t.arg(c, v)
				if err != nil {
					return "", nil, err
				}
				marks[i] = "?"
				args = append(args, a)
			}
			conds = append(conds, c.name+" IN ("+strings.Join(marks, ",")+")")
		default:
			return "", nil, fmt.Errorf("%w: operator %q", ErrInvalidValue, f.Op)
		}
	}
	return " WHERE " + strings.Join(conds, " AND "), args, nil
}

func (t *table) orderBy(order []Order) (string, error) {
	if len(order) == 0 {
		return "", nil
	}
	parts := make([]string, len(order))
	for i, o := range order {
		if _, ok := t.index[o.Column]; !ok {
			return "", fmt.Errorf("%w: %s.%s", ErrUnknownColumn, t.name, o.Column)
		}
		dir := "ASC"
		if o.Desc {
			dir = "DESC"
		}
		parts[i] = o.Column + " " + dir
	}
	return " ORDER BY " + strings.Join(parts, ", "), nil
}

// selectSQL renders a full SELECT for q.
func (t *table) selectSQL(q Query) (string, []any, error) {
	w, args, err := t.where(q.Filters)
	if err != nil {
		return "", nil, err
	}
	o, err := t.orderBy(q.Order)
	if err != nil {
		return "", nil, err
	}
	return "SELECT " + t.selectList() + " FROM " + t.name + w + o, args, nil
}

// set renders a patch as a SET clause. Keys are sorted so statements are
// stable.
func (t *table) set(p Patch) (string, []any, error) {
	if len(p) == 0 {
		return "", nil, fmt.Errorf("%w: empty patch", ErrInvalidValue)
	}
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	args := make([]any, len(keys))
	for i, k := range keys {
		c, ok := t.index[k]
		if !ok || c.readOnly {
			return "", nil, fmt.Errorf("%w: %s.%s", ErrUnknownColumn, t.name, k)
		}
		parts[i] = k + " = ?"
		args[i] = p[k]
	}
	return strings.Join(parts, ", "), args, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func list[T any](ctx context.Context, db *sql.DB, t *table, q Query, scan func(rowScanner) (T, error)) ([]T, error) {
	stmt, args, err := t.selectSQL(q)
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// matchingIDs returns the ids of rows matching filters.
func matchingIDs(ctx context.Context, db *sql.DB, t *table, filters []Filter) ([]string, error) {
	w, args, err := t.where(filters)
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, "SELECT id FROM "+t.name+w, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// update patches every row matching filters and returns the updated rows.
// Matching ids are resolved first so a patch that changes a filtered
// column still returns the rows it touched.
func update[T any](ctx context.Context, db *sql.DB, t *table, filters []Filter, p Patch, scan func(rowScanner) (T, error)) ([]T, error) {
	setSQL, setArgs, err := t.set(p)
	if err != nil {
		return nil, err
	}
	ids, err := matchingIDs(ctx, db, t, filters)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []T{}, nil
	}
	w, idArgs, err := t.where([]Filter{In("id", ids...)})
	if err != nil {
		return nil, err
	}
	if _, err := db.ExecContext(ctx, "UPDATE "+t.name+" SET "+setSQL+w, append(setArgs, idArgs...)...); err != nil {
		if isDuplicate(err) {
			return nil, ErrConflict
		}
		return nil, err
	}
	return list(ctx, db, t, Query{Filters: []Filter{In("id", ids...)}}, scan)
}

// remove deletes every row matching filters. An empty filter set is
// refused so a bad request can never wipe a table.
func remove(ctx context.Context, db *sql.DB, t *table, filters []Filter) (int64, error) {
	if len(filters) == 0 {
		return 0, fmt.Errorf("%w: delete without filter", ErrInvalidValue)
	}
	w, args, err := t.where(filters)
	if err != nil {
		return 0, err
	}
	res, err := db.ExecContext(ctx, "DELETE FROM "+t.name+w, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func nullString(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
