package gateway

import (
	"testing"
	"time"
)

// TestBuildSelect_Full tests filters, ordering and limit together
func TestBuildSelect_Full(t *testing.T) {
	cutoff := time.Date(2024, 6, 9, 12, 0, 0, 0, time.UTC)
	q := Query{
		Filters: []Filter{
			Eq("status", "active"),
			Gt("created_at", cutoff),
		},
		Order: &Order{Column: "created_at", Descending: true},
		Limit: 10,
	}

	query, args := buildSelect("appointments", q)

	want := "SELECT * FROM appointments WHERE status = $1 AND created_at > $2 ORDER BY created_at DESC LIMIT 10"
	if query != want {
		t.Errorf("Expected query:\n%s\ngot:\n%s", want, query)
	}
	if len(args) != 2 {
		t.Fatalf("Expected 2 args, got %d", len(args))
	}
	if args[0] != "active" {
		t.Errorf("Expected first arg 'active', got %v", args[0])
	}
	if args[1] != cutoff {
		t.Errorf("Expected second arg %v, got %v", cutoff, args[1])
	}
}

// TestBuildSelect_Bare tests the no-filter no-order case
func TestBuildSelect_Bare(t *testing.T) {
	query, args := buildSelect("users", Query{})

	if query != "SELECT * FROM users" {
		t.Errorf("Expected bare select, got: %s", query)
	}
	if len(args) != 0 {
		t.Errorf("Expected no args, got %d", len(args))
	}
}

// TestBuildWhere_PlaceholderOffset tests that placeholder numbering
// continues after existing args, as Update relies on
func TestBuildWhere_PlaceholderOffset(t *testing.T) {
	existing := []interface{}{"discharged", "routine"}

	where, args := buildWhere([]Filter{Eq("id", int64(7))}, existing)

	if where != " WHERE id = $3" {
		t.Errorf("Expected ' WHERE id = $3', got '%s'", where)
	}
	if len(args) != 3 {
		t.Fatalf("Expected 3 args, got %d", len(args))
	}
	if args[2] != int64(7) {
		t.Errorf("Expected filter arg appended, got %v", args[2])
	}
}

// TestBuildWhere_Operators tests the operator mapping
func TestBuildWhere_Operators(t *testing.T) {
	where, args := buildWhere([]Filter{
		Gt("created_at", "a"),
		Lt("created_at", "b"),
	}, nil)

	if where != " WHERE created_at > $1 AND created_at < $2" {
		t.Errorf("Unexpected where clause: '%s'", where)
	}
	if len(args) != 2 {
		t.Errorf("Expected 2 args, got %d", len(args))
	}
}

// TestFieldMap_OmitEmpty tests that omitempty fields vanish from the
// column map, so partial updates only touch submitted columns
func TestFieldMap_OmitEmpty(t *testing.T) {
	type update struct {
		Name   string `json:"name,omitempty"`
		Status string `json:"status,omitempty"`
	}

	fields, err := fieldMap(update{Status: "discharged"})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if len(fields) != 1 {
		t.Fatalf("Expected 1 field, got %d: %v", len(fields), fields)
	}
	if fields["status"] != "discharged" {
		t.Errorf("Expected status 'discharged', got %v", fields["status"])
	}
}

// TestSortedKeys_Deterministic tests stable column ordering
func TestSortedKeys_Deterministic(t *testing.T) {
	m := map[string]interface{}{"b": 1, "a": 2, "c": 3}

	keys := sortedKeys(m)

	if len(keys) != 3 || keys[0] != "a" || keys[1] != "b" || keys[2] != "c" {
		t.Errorf("Expected sorted keys [a b c], got %v", keys)
	}
}

// TestDecodeInto_JSONRoundTrip tests decoding scanned rows into a
// typed destination
func TestDecodeInto_JSONRoundTrip(t *testing.T) {
	type row struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	}

	records := []map[string]interface{}{
		{"id": int64(1), "name": "Ada Obi"},
		{"id": int64(2), "name": "Ben Cole"},
	}

	var out []row
	if err := decodeInto(records, &out, "patients"); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(out) != 2 || out[0].ID != 1 || out[1].Name != "Ben Cole" {
		t.Errorf("Unexpected decode result: %v", out)
	}
}

// TestFormatValue tests the wire rendering of filter values
func TestFormatValue(t *testing.T) {
	ts := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

	if got := formatValue("active"); got != "active" {
		t.Errorf("Expected 'active', got '%s'", got)
	}
	if got := formatValue(ts); got != "2024-06-10T12:00:00Z" {
		t.Errorf("Expected RFC3339 timestamp, got '%s'", got)
	}
	if got := formatValue(int64(7)); got != "7" {
		t.Errorf("Expected '7', got '%s'", got)
	}
}
