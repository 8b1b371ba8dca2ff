// Package db is the resource store layer. Store is a collection-parametric
// CRUD interface over a remote tabular store; LedgerDB exposes the groups and
// expenses collections on top of it.
package db

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
)

const (
	GroupsCollection   = "groups"
	ExpensesCollection = "expenses"
)

var (
	ErrNotFound         = errors.New("record not found")
	ErrEmptyResult      = errors.New("store returned no record")
	ErrUnfilteredDelete = errors.New("refusing to delete without filters")
	ErrInvalidName      = errors.New("invalid collection or field name")
)

// Filters maps field names to exact-match values. All entries must match.
type Filters map[string]any

// Order sorts a selection by one field.
type Order struct {
	Field string
	Desc  bool
}

// Query describes a selection.
type Query struct {
	Filters Filters
	Order   *Order
	Limit   int
}

// Store issues create/read/delete operations against named collections.
// Insert decodes the stored record into out (a pointer to a struct). Select
// decodes matching records into out (a pointer to a slice) and yields an
// empty slice when nothing matches. Delete succeeds when zero rows match.
type Store interface {
	Insert(ctx context.Context, collection string, record any, out any) error
	Select(ctx context.Context, collection string, q Query, out any) error
	Delete(ctx context.Context, collection string, filters Filters) error
	Ping(ctx context.Context) error
	Close() error
}

// StoreError reports a failed upstream call. Body holds the upstream
// response and must not be forwarded to API clients.
type StoreError struct {
	Op         string
	Collection string
	Status     int
	Body       string
	Err        error
}

func (e *StoreError) Error() string {
	msg := fmt.Sprintf("store %s %s failed", e.Op, e.Collection)
	if e.Status != 0 {
		msg += fmt.Sprintf(": status %d", e.Status)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

var identifierRegex = regexp.MustCompile(`^[a-z_][a-z0-9_]{0,62}$`)

func validName(name string) error {
	if !identifierRegex.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// sortedKeys returns the filter fields in a stable order, validating each.
func (f Filters) sortedKeys() ([]string, error) {
	keys := make([]string, 0, len(f))
	for k := range f {
		if err := validName(k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}
