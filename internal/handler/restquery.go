package handler

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/iliyamo/tutoplus/internal/repository"
)

// reserved query keys that are not column filters.
var reserved = map[string]bool{"order": true, "select": true}

// parseQuery reads PostgREST-style parameters: col=eq.v, col=in.(a,b) and
// order=col.desc,col2.asc. Keys are visited in sorted order so the filter
// list is stable.
func parseQuery(values url.Values) (repository.Query, error) {
	var q repository.Query
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if reserved[k] {
			continue
		}
		for _, raw := range values[k] {
			f, err := parseFilter(k, raw)
			if err != nil {
				return repository.Query{}, err
			}
			q.Filters = append(q.Filters, f)
		}
	}
	for _, raw := range values["order"] {
		orders, err := parseOrder(raw)
		if err != nil {
			return repository.Query{}, err
		}
		q.Order = append(q.Order, orders...)
	}
	return q, nil
}

func parseFilter(column, raw string) (repository.Filter, error) {
	op, val, ok := strings.Cut(raw, ".")
	if !ok {
		return repository.Filter{}, fmt.Errorf("%w: %s=%q", repository.ErrInvalidValue, column, raw)
	}
	switch repository.Op(op) {
	case repository.OpEq:
		return repository.Eq(column, unquote(val)), nil
	case repository.OpIn:
		if !strings.HasPrefix(val, "(") || !strings.HasSuffix(val, ")") {
			return repository.Filter{}, fmt.Errorf("%w: %s=%q", repository.ErrInvalidValue, column, raw)
		}
		inner := strings.TrimSuffix(strings.TrimPrefix(val, "("), ")")
		var vals []string
		if inner != "" {
			for _, v := range strings.Split(inner, ",") {
				vals = append(vals, unquote(strings.TrimSpace(v)))
			}
		}
		return repository.In(column, vals...), nil
	}
	return repository.Filter{}, fmt.Errorf("%w: operator %q", repository.ErrInvalidValue, op)
}

func parseOrder(raw string) ([]repository.Order, error) {
	var out []repository.Order
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		col, dir, _ := strings.Cut(part, ".")
		o := repository.Order{Column: col}
		switch dir {
		case "", "asc":
		case "desc":
			o.Desc = true
		default:
			return nil, fmt.Errorf("%w: order %q", repository.ErrInvalidValue, part)
		}
		out = append(out, o)
	}
	return out, nil
}

func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}
