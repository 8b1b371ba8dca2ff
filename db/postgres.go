package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/rs/zerolog"
)

// PostgresStore implements Store directly on PostgreSQL. Collections map to
// tables and records round-trip through JSON so the same model types serve
// both backends.
type PostgresStore struct {
	DB      *sql.DB
	Timeout time.Duration
	Log     *zerolog.Logger
}

// NewPostgresStore opens the database and checks the connection.
func NewPostgresStore(driver, source string, timeout time.Duration, log *zerolog.Logger) (*PostgresStore, error) {
	if source == "" {
		log.Error().Msg("database source is not set")
		return nil, fmt.Errorf("database source is not set")
	}

	db, err := sql.Open(driver, source)
	if err != nil {
		log.Error().Err(err).Msg("Failed to open database connection")
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		log.Error().Err(err).Msg("Database connection failed during ping")
		db.Close()
		return nil, err
	}

	return &PostgresStore{DB: db, Timeout: timeout, Log: log}, nil
}

func (p *PostgresStore) Close() error {
	if err := p.DB.Close(); err != nil {
		return err
	}
	p.Log.Info().Msg("database connection closed")
	return nil
}

func (p *PostgresStore) Ping(ctx context.Context) error {
	ctx, cancel := p.bound(ctx)
	defer cancel()
	return p.DB.PingContext(ctx)
}

func (p *PostgresStore) Insert(ctx context.Context, collection string, record any, out any) error {
	if err := validName(collection); err != nil {
		return err
	}

	fields, err := recordFields(record)
	if err != nil {
		return &StoreError{Op: "insert", Collection: collection, Err: err}
	}
	keys, err := fields.sortedKeys()
	if err != nil {
		return err
	}

	cols := make([]string, len(keys))
	marks := make([]string, len(keys))
	args := make([]any, len(keys))
	for i, k := range keys {
		cols[i] = pq.QuoteIdentifier(k)
		marks[i] = fmt.Sprintf("$%d", i+1)
		args[i] = fields[k]
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING *",
		pq.QuoteIdentifier(collection), strings.Join(cols, ", "), strings.Join(marks, ", "))

	rows, err := p.query(ctx, "insert", collection, query, args...)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return &StoreError{Op: "insert", Collection: collection, Err: ErrEmptyResult}
	}
	return decodeRows(rows[0], out)
}

func (p *PostgresStore) Select(ctx context.Context, collection string, q Query, out any) error {
	if err := validName(collection); err != nil {
		return err
	}

	where, args, err := whereClause(q.Filters)
	if err != nil {
		return err
	}

	query := "SELECT * FROM " + pq.QuoteIdentifier(collection) + where
	if q.Order != nil {
		if err := validName(q.Order.Field); err != nil {
			return err
		}
		dir := "ASC"
		if q.Order.Desc {
			dir = "DESC"
		}
		query += " ORDER BY " + pq.QuoteIdentifier(q.Order.Field) + " " + dir
	}
	if q.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", q.Limit)
	}

	rows, err := p.query(ctx, "select", collection, query, args...)
	if err != nil {
		return err
	}
	if rows == nil {
		rows = []map[string]any{}
	}
	return decodeRows(rows, out)
}

func (p *PostgresStore) Delete(ctx context.Context, collection string, filters Filters) error {
	if err := validName(collection); err != nil {
		return err
	}
	if len(filters) == 0 {
		return ErrUnfilteredDelete
	}

	where, args, err := whereClause(filters)
	if err != nil {
		return err
	}

	ctx, cancel := p.bound(ctx)
	defer cancel()

	res, err := p.DB.ExecContext(ctx, "DELETE FROM "+pq.QuoteIdentifier(collection)+where, args...)
	if err != nil {
		return &StoreError{Op: "delete", Collection: collection, Err: err}
	}
	if n, err := res.RowsAffected(); err == nil {
		zerolog.Ctx(ctx).Debug().Str("collection", collection).Int64("rows", n).Msg("deleted rows")
	}
	return nil
}

func (p *PostgresStore) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, p.Timeout)
}

// query runs a statement and collects each row as a column->value map.
func (p *PostgresStore) query(ctx context.Context, op, collection, query string, args ...any) ([]map[string]any, error) {
	ctx, cancel := p.bound(ctx)
	defer cancel()

	rows, err := p.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &StoreError{Op: op, Collection: collection, Err: err}
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, &StoreError{Op: op, Collection: collection, Err: err}
	}

	var result []map[string]any
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, &StoreError{Op: op, Collection: collection, Err: err}
		}

		row := make(map[string]any, len(cols))
		for i, col := range cols {
			// numeric columns arrive as text
			if b, ok := values[i].([]byte); ok {
				row[col] = json.RawMessage(b)
				if !json.Valid(b) {
					row[col] = string(b)
				}
				continue
			}
			row[col] = values[i]
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, &StoreError{Op: op, Collection: collection, Err: err}
	}
	return result, nil
}

func whereClause(filters Filters) (string, []any, error) {
	keys, err := filters.sortedKeys()
	if err != nil {
		return "", nil, err
	}
	if len(keys) == 0 {
		return "", nil, nil
	}

	conds := make([]string, len(keys))
	args := make([]any, len(keys))
	for i, k := range keys {
		conds[i] = fmt.Sprintf("%s = $%d", pq.QuoteIdentifier(k), i+1)
		args[i] = filters[k]
	}
	return " WHERE " + strings.Join(conds, " AND "), args, nil
}

// recordFields flattens a record into column values, leaving out fields the
// store assigns.
func recordFields(record any) (Filters, error) {
	b, err := json.Marshal(record)
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(strings.NewReader(string(b)))
	dec.UseNumber()
	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return nil, err
	}

	for k, v := range fields {
		if n, ok := v.(json.Number); ok {
			fields[k] = n.String()
		}
	}
	for _, assigned := range []string{"id", "created_at", "updated_at"} {
		delete(fields, assigned)
	}
	return fields, nil
}

func decodeRows(v any, out any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}
