package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Op is a filter operator understood by every backend.
type Op string

const (
	OpEq Op = "eq"
	OpGt Op = "gt"
	OpLt Op = "lt"
)

// Filter restricts a read, update or delete to matching rows.
type Filter struct {
	Column string
	Op     Op
	Value  interface{}
}

// Eq builds an equality filter.
func Eq(column string, value interface{}) Filter {
	return Filter{Column: column, Op: OpEq, Value: value}
}

// Gt builds a greater-than filter.
func Gt(column string, value interface{}) Filter {
	return Filter{Column: column, Op: OpGt, Value: value}
}

// Lt builds a less-than filter.
func Lt(column string, value interface{}) Filter {
	return Filter{Column: column, Op: OpLt, Value: value}
}

// Order describes the result ordering of a select.
type Order struct {
	Column     string
	Descending bool
}

// Query describes a filtered, ordered select against one relation.
type Query struct {
	Filters []Filter
	Order   *Order
	Limit   int
}

var (
	// ErrNoRows is returned by Update when no row matched the filters.
	ErrNoRows = errors.New("no rows matched")
)

// Gateway is the narrow surface the stores use against the remote
// relational store. Inserted and updated rows are returned with
// server-assigned values (id, timestamps); results are decoded into
// the caller-supplied destination.
type Gateway interface {
	Select(ctx context.Context, relation string, q Query, dest interface{}) error
	Insert(ctx context.Context, relation string, record interface{}, dest interface{}) error
	Update(ctx context.Context, relation string, fields interface{}, filters []Filter, dest interface{}) error
	Delete(ctx context.Context, relation string, filters []Filter) error
}

// formatValue renders a filter value the way PostgREST expects it on
// the wire. The SQL backend passes values through natively and does
// not use this.
func formatValue(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case time.Time:
		return t.UTC().Format(time.RFC3339)
	default:
		return fmt.Sprintf("%v", v)
	}
}
