package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/supabase-community/postgrest-go"
	supa "github.com/supabase-community/supabase-go"
)

// PostgREST talks to a Supabase/PostgREST backend. This is the
// default gateway: the dashboard's relational store is a hosted
// Supabase project in every current deployment.
//
// The postgrest client executes requests without a context, so the
// ctx arguments govern only the callers here; cancellation mid-flight
// is honored by the SQL gateway alone.
type PostgREST struct {
	client *supa.Client
}

// Ensure PostgREST implements Gateway
var _ Gateway = (*PostgREST)(nil)

// NewPostgREST creates a gateway backed by a Supabase project.
func NewPostgREST(url, serviceKey string) (*PostgREST, error) {
	client, err := supa.NewClient(url, serviceKey, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create supabase client: %w", err)
	}
	log.Printf("✓ Connected to PostgREST backend")
	return &PostgREST{client: client}, nil
}

func (g *PostgREST) Select(ctx context.Context, relation string, q Query, dest interface{}) error {
	fb := g.client.From(relation).Select("*", "", false)
	fb = applyFilters(fb, q.Filters)
	if q.Order != nil {
		fb = fb.Order(q.Order.Column, &postgrest.OrderOpts{Ascending: !q.Order.Descending})
	}
	if q.Limit > 0 {
		fb = fb.Limit(q.Limit, "")
	}

	data, _, err := fb.Execute()
	if err != nil {
		return fmt.Errorf("failed to select from %s: %w", relation, err)
	}
	if dest == nil {
		return nil
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("failed to decode %s rows: %w", relation, err)
	}
	return nil
}

func (g *PostgREST) Insert(ctx context.Context, relation string, record interface{}, dest interface{}) error {
	fb := g.client.From(relation).Insert(record, false, "", "representation", "").Single()

	data, _, err := fb.Execute()
	if err != nil {
		return fmt.Errorf("failed to insert into %s: %w", relation, err)
	}
	if dest == nil {
		return nil
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("failed to decode inserted %s row: %w", relation, err)
	}
	return nil
}

func (g *PostgREST) Update(ctx context.Context, relation string, fields interface{}, filters []Filter, dest interface{}) error {
	fb := applyFilters(g.client.From(relation).Update(fields, "representation", ""), filters)

	data, _, err := fb.Execute()
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", relation, err)
	}

	// The representation is requested even for fire-and-forget
	// updates: an empty array is the only signal that no row matched.
	var rows []json.RawMessage
	if err := json.Unmarshal(data, &rows); err != nil {
		return fmt.Errorf("failed to decode updated %s rows: %w", relation, err)
	}
	if len(rows) == 0 {
		return fmt.Errorf("failed to update %s: %w", relation, ErrNoRows)
	}
	if dest == nil {
		return nil
	}
	if err := json.Unmarshal(rows[0], dest); err != nil {
		return fmt.Errorf("failed to decode updated %s row: %w", relation, err)
	}
	return nil
}

func (g *PostgREST) Delete(ctx context.Context, relation string, filters []Filter) error {
	fb := applyFilters(g.client.From(relation).Delete("", ""), filters)

	if _, _, err := fb.Execute(); err != nil {
		return fmt.Errorf("failed to delete from %s: %w", relation, err)
	}
	return nil
}

func applyFilters(fb *postgrest.FilterBuilder, filters []Filter) *postgrest.FilterBuilder {
	for _, f := range filters {
		switch f.Op {
		case OpEq:
			fb = fb.Eq(f.Column, formatValue(f.Value))
		case OpGt:
			fb = fb.Gt(f.Column, formatValue(f.Value))
		case OpLt:
			fb = fb.Lt(f.Column, formatValue(f.Value))
		}
	}
	return fb
}
