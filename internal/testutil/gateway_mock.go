package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/clinicore/department-service/internal/gateway"
)

// MockGateway is an in-memory implementation of gateway.Gateway for
// store tests. Behavior is supplied per test through the func fields;
// calls are recorded for assertions.
type MockGateway struct {
	SelectFunc func(ctx context.Context, relation string, q gateway.Query, dest interface{}) error
	InsertFunc func(ctx context.Context, relation string, record interface{}, dest interface{}) error
	UpdateFunc func(ctx context.Context, relation string, fields interface{}, filters []gateway.Filter, dest interface{}) error
	DeleteFunc func(ctx context.Context, relation string, filters []gateway.Filter) error

	mu    sync.Mutex
	calls []GatewayCall
}

// GatewayCall records one call made against the mock.
type GatewayCall struct {
	Method   string
	Relation string
	Filters  []gateway.Filter
}

var _ gateway.Gateway = (*MockGateway)(nil)

func (m *MockGateway) record(method, relation string, filters []gateway.Filter) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, GatewayCall{Method: method, Relation: relation, Filters: filters})
}

func (m *MockGateway) Select(ctx context.Context, relation string, q gateway.Query, dest interface{}) error {
	m.record("Select", relation, q.Filters)
	if m.SelectFunc == nil {
		return fmt.Errorf("unexpected Select on %s", relation)
	}
	return m.SelectFunc(ctx, relation, q, dest)
}

func (m *MockGateway) Insert(ctx context.Context, relation string, record interface{}, dest interface{}) error {
	m.record("Insert", relation, nil)
	if m.InsertFunc == nil {
		return fmt.Errorf("unexpected Insert on %s", relation)
	}
	return m.InsertFunc(ctx, relation, record, dest)
}

func (m *MockGateway) Update(ctx context.Context, relation string, fields interface{}, filters []gateway.Filter, dest interface{}) error {
	m.record("Update", relation, filters)
	if m.UpdateFunc == nil {
		return fmt.Errorf("unexpected Update on %s", relation)
	}
	return m.UpdateFunc(ctx, relation, fields, filters, dest)
}

func (m *MockGateway) Delete(ctx context.Context, relation string, filters []gateway.Filter) error {
	m.record("Delete", relation, filters)
	if m.DeleteFunc == nil {
		return fmt.Errorf("unexpected Delete on %s", relation)
	}
	return m.DeleteFunc(ctx, relation, filters)
}

// Calls returns a copy of the recorded calls.
func (m *MockGateway) Calls() []GatewayCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]GatewayCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallsTo returns the recorded calls against one relation.
func (m *MockGateway) CallsTo(relation string) []GatewayCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []GatewayCall
	for _, c := range m.calls {
		if c.Relation == relation {
			out = append(out, c)
		}
	}
	return out
}

// DecodeRows copies fixture rows into a gateway destination the way
// the real backends do, through a JSON round trip.
func DecodeRows(dest interface{}, rows interface{}) error {
	b, err := json.Marshal(rows)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, dest)
}

// HasFilter reports whether the filter list contains a filter with the
// given column and operator.
func HasFilter(filters []gateway.Filter, column string, op gateway.Op) bool {
	for _, f := range filters {
		if f.Column == column && f.Op == op {
			return true
		}
	}
	return false
}
