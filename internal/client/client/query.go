package client

import (
	"fmt"
	"net/url"
	"strings"
)

// Query describes a read or filtered write against one table.
//
//	client.From("medications").
//		Select("*").
//		Eq("profile_id", id).
//		Eq("is_active", true).
//		Order("name", true)
type Query struct {
	table   string
	columns string
	filters []filter
	order   []string
	limit   int
}

type filter struct {
	column string
	expr   string
}

func From(table string) *Query {
	return &Query{table: table}
}

func (q *Query) Table() string {
	return q.table
}

// Select sets the column list; "*" when never called.
func (q *Query) Select(columns string) *Query {
	q.columns = columns
	return q
}

// Eq adds an equality filter. Values are rendered with fmt's %v.
func (q *Query) Eq(column string, value any) *Query {
	q.filters = append(q.filters, filter{column: column, expr: fmt.Sprintf("eq.%v", value)})
	return q
}

// Order appends a sort key.
func (q *Query) Order(column string, ascending bool) *Query {
	dir := "desc"
	if ascending {
		dir = "asc"
	}
	q.order = append(q.order, column+"."+dir)
	return q
}

func (q *Query) Limit(n int) *Query {
	q.limit = n
	return q
}

// Values renders the query string. withSelect is false for writes that do
// not ask for the changed rows back.
func (q *Query) Values(withSelect bool) url.Values {
	v := url.Values{}
	if withSelect {
		cols := q.columns
		if cols == "" {
			cols = "*"
		}
		v.Set("select", cols)
	}
	for _, f := range q.filters {
		v.Add(f.column, f.expr)
	}
	if len(q.order) > 0 {
		v.Set("order", strings.Join(q.order, ","))
	}
	if q.limit > 0 {
		v.Set("limit", fmt.Sprint(q.limit))
	}
	return v
}
