package gateway

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/XSAM/otelsql"
	_ "github.com/lib/pq"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
)

// Postgres talks to the relational store directly over database/sql.
// Used by deployments colocated with the database and by the sweeper
// job, which runs inside the cluster and has no reason to go through
// the PostgREST edge. Rows are surfaced as JSON so both gateways
// decode into the same destinations.
type Postgres struct {
	db *sql.DB
}

// Ensure Postgres implements Gateway
var _ Gateway = (*Postgres)(nil)

// OpenPostgres creates a connection to PostgreSQL with OpenTelemetry instrumentation
func OpenPostgres(host, port, user, password, dbname string) (*Postgres, error) {
	if host == "" || user == "" || password == "" || dbname == "" {
		return nil, fmt.Errorf("missing required database settings")
	}

	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname,
	)

	db, err := otelsql.Open("postgres", connStr,
		otelsql.WithAttributes(
			semconv.DBSystemPostgreSQL,
			semconv.DBName(dbname),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	_, err = otelsql.RegisterDBStatsMetrics(db,
		otelsql.WithAttributes(
			semconv.DBSystemPostgreSQL,
			semconv.DBName(dbname),
		),
	)
	if err != nil {
		log.Printf("Warning: failed to register database stats metrics: %v", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	log.Println("✓ Connected to PostgreSQL database (OpenTelemetry enabled)")
	return &Postgres{db: db}, nil
}

// NewPostgres wraps an existing database handle.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// Close closes the underlying database handle.
func (g *Postgres) Close() error {
	return g.db.Close()
}

func (g *Postgres) Select(ctx context.Context, relation string, q Query, dest interface{}) error {
	query, args := buildSelect(relation, q)

	rows, err := g.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to select from %s: %w", relation, err)
	}
	defer rows.Close()

	records, err := scanRows(rows)
	if err != nil {
		return fmt.Errorf("failed to scan %s rows: %w", relation, err)
	}
	if dest == nil {
		return nil
	}
	return decodeInto(records, dest, relation)
}

func (g *Postgres) Insert(ctx context.Context, relation string, record interface{}, dest interface{}) error {
	fields, err := fieldMap(record)
	if err != nil {
		return fmt.Errorf("failed to encode %s record: %w", relation, err)
	}

	cols := sortedKeys(fields)
	placeholders := make([]string, len(cols))
	args := make([]interface{}, len(cols))
	for i, c := range cols {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = fields[c]
	}

	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) RETURNING *",
		relation, strings.Join(cols, ", "), strings.Join(placeholders, ", "),
	)

	rows, err := g.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to insert into %s: %w", relation, err)
	}
	defer rows.Close()

	return scanSingle(rows, dest, relation)
}

func (g *Postgres) Update(ctx context.Context, relation string, updates interface{}, filters []Filter, dest interface{}) error {
	fields, err := fieldMap(updates)
	if err != nil {
		return fmt.Errorf("failed to encode %s update: %w", relation, err)
	}

	cols := sortedKeys(fields)
	setClauses := make([]string, len(cols))
	args := make([]interface{}, 0, len(cols)+len(filters))
	for i, c := range cols {
		setClauses[i] = fmt.Sprintf("%s = $%d", c, i+1)
		args = append(args, fields[c])
	}

	where, args := buildWhere(filters, args)
	query := fmt.Sprintf("UPDATE %s SET %s%s RETURNING *", relation, strings.Join(setClauses, ", "), where)

	rows, err := g.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", relation, err)
	}
	defer rows.Close()

	return scanSingle(rows, dest, relation)
}

func (g *Postgres) Delete(ctx context.Context, relation string, filters []Filter) error {
	where, args := buildWhere(filters, nil)
	query := fmt.Sprintf("DELETE FROM %s%s", relation, where)

	if _, err := g.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to delete from %s: %w", relation, err)
	}
	return nil
}

// buildSelect renders a Query as parameterized SQL. Relation and
// column names come from in-package constants, never request input.
func buildSelect(relation string, q Query) (string, []interface{}) {
	query := fmt.Sprintf("SELECT * FROM %s", relation)

	where, args := buildWhere(q.Filters, nil)
	query += where

	if q.Order != nil {
		dir := "ASC"
		if q.Order.Descending {
			dir = "DESC"
		}
		query += fmt.Sprintf(" ORDER BY %s %s", q.Order.Column, dir)
	}
	if q.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", q.Limit)
	}

	return query, args
}

func buildWhere(filters []Filter, args []interface{}) (string, []interface{}) {
	if len(filters) == 0 {
		return "", args
	}

	clauses := make([]string, len(filters))
	for i, f := range filters {
		op := "="
		switch f.Op {
		case OpGt:
			op = ">"
		case OpLt:
			op = "<"
		}
		args = append(args, f.Value)
		clauses[i] = fmt.Sprintf("%s %s $%d", f.Column, op, len(args))
	}

	return " WHERE " + strings.Join(clauses, " AND "), args
}

// fieldMap flattens a record through JSON so both gateways agree on
// column names and omitempty behavior.
func fieldMap(record interface{}) (map[string]interface{}, error) {
	b, err := json.Marshal(record)
	if err != nil {
		return nil, err
	}
	var m map[string]interface{}
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return m, nil
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func scanRows(rows *sql.Rows) ([]map[string]interface{}, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	records := make([]map[string]interface{}, 0)
	for rows.Next() {
		vals := make([]interface{}, len(cols))
		ptrs := make([]interface{}, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}

		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}

		record := make(map[string]interface{}, len(cols))
		for i, c := range cols {
			if b, ok := vals[i].([]byte); ok {
				record[c] = string(b)
			} else {
				record[c] = vals[i]
			}
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func scanSingle(rows *sql.Rows, dest interface{}, relation string) error {
	records, err := scanRows(rows)
	if err != nil {
		return fmt.Errorf("failed to scan %s row: %w", relation, err)
	}
	if len(records) == 0 {
		return ErrNoRows
	}
	if dest == nil {
		return nil
	}

	b, err := json.Marshal(records[0])
	if err != nil {
		return fmt.Errorf("failed to encode %s row: %w", relation, err)
	}
	if err := json.Unmarshal(b, dest); err != nil {
		return fmt.Errorf("failed to decode %s row: %w", relation, err)
	}
	return nil
}

func decodeInto(records []map[string]interface{}, dest interface{}, relation string) error {
	b, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to encode %s rows: %w", relation, err)
	}
	if err := json.Unmarshal(b, dest); err != nil {
		return fmt.Errorf("failed to decode %s rows: %w", relation, err)
	}
	return nil
}
