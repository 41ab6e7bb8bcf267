package gateway

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

// Collections exposed by the API.
const (
	Profiles         = "profiles"
	Registrations    = "registrations"
	TutorAssignments = "tutor_assignments"
	TutoringSessions = "tutoring_sessions"
)

// Filter is one column condition. Op is "eq" or "in".
type Filter struct {
	Column string
	Op     string
	Values []string
}

func Eq(column, value string) Filter            { return Filter{Column: column, Op: "eq", Values: []string{value}} }
func In(column string, values ...string) Filter { return Filter{Column: column, Op: "in", Values: values} }

// Order sorts by one column.
type Order struct {
	Column string
	Desc   bool
}

func Asc(column string) Order  { return Order{Column: column} }
func Desc(column string) Order { return Order{Column: column, Desc: true} }

// Query is a filtered, ordered read.
type Query struct {
	Filters []Filter
	Order   []Order
}

// Where returns a query with the given filters.
func Where(filters ...Filter) Query { return Query{Filters: filters} }

// OrderBy appends sort keys.
func (q Query) OrderBy(o ...Order) Query {
	q.Order = append(append([]Order(nil), q.Order...), o...)
	return q
}

func (f Filter) encode() string {
	if f.Op == "in" {
		return "in.(" + strings.Join(f.Values, ",") + ")"
	}
	v := ""
	if len(f.Values) > 0 {
		v = f.Values[0]
	}
	return f.Op + "." + v
}

func encodeFilters(filters []Filter) url.Values {
	v := url.Values{}
	for _, f := range filters {
		v.Add(f.Column, f.encode())
	}
	return v
}

// Values encodes q as col=op.value pairs plus order=col.dir,...
func (q Query) Values() url.Values {
	v := encodeFilters(q.Filters)
	if len(q.Order) > 0 {
		parts := make([]string, len(q.Order))
		for i, o := range q.Order {
			dir := "asc"
			if o.Desc {
				dir = "desc"
			}
			parts[i] = o.Column + "." + dir
		}
		v.Set("order", strings.Join(parts, ","))
	}
	return v
}

func restPath(collection string) string { return "/v1/rest/" + url.PathEscape(collection) }

// Select decodes the matching rows into out, which should point to a slice.
func (c *Client) Select(ctx context.Context, collection string, q Query, out any) error {
	return c.do(ctx, http.MethodGet, restPath(collection), q.Values(), nil, out)
}

// Insert creates one row and decodes the stored row into out.
func (c *Client) Insert(ctx context.Context, collection string, record, out any) error {
	return c.do(ctx, http.MethodPost, restPath(collection), nil, record, out)
}

// Update patches every matching row and decodes the updated rows into out.
func (c *Client) Update(ctx context.Context, collection string, filters []Filter, patch map[string]any, out any) error {
	return c.do(ctx, http.MethodPatch, restPath(collection), encodeFilters(filters), patch, out)
}

func (c *Client) Delete(ctx context.Context, collection string, filters []Filter) error {
	return c.do(ctx, http.MethodDelete, restPath(collection), encodeFilters(filters), nil, nil)
}

// Invoke calls a privileged server function such as "impersonate".
func (c *Client) Invoke(ctx context.Context, function string, body, out any) error {
	return c.do(ctx, http.MethodPost, "/v1/admin/"+url.PathEscape(function), nil, body, out)
}
