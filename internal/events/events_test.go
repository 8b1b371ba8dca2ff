package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLedgerEvent(t *testing.T) {
	a := NewLedgerEvent(ExpenseCreated, 3, 9, "u1")
	b := NewLedgerEvent(ExpenseCreated, 3, 9, "u1")

	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, ExpenseCreated, a.Type)
	assert.False(t, a.Timestamp.IsZero())
}

func TestDecodeEvent(t *testing.T) {
	event := NewLedgerEvent(GroupDeleted, 5, 0, "u1")
	payload, err := json.Marshal(event)
	require.NoError(t, err)
	assert.NotContains(t, string(payload), "expense_id")

	decoded, err := DecodeEvent(payload)
	require.NoError(t, err)
	assert.Equal(t, event.ID, decoded.ID)
	assert.Equal(t, int64(5), decoded.GroupID)
	assert.True(t, event.Timestamp.Equal(decoded.Timestamp))

	_, err = DecodeEvent([]byte(`not json`))
	assert.Error(t, err)

	_, err = DecodeEvent([]byte(`{"id": "x"}`))
	assert.Error(t, err)
}

func TestNoopPublisher(t *testing.T) {
	var n Notifier = NoopPublisher{}
	assert.NoError(t, n.Publish(context.Background(), NewLedgerEvent(GroupCreated, 1, 0, "u1")))
	n.Close()
}

type fakeCleaner struct {
	groups []int64
	err    error
}

func (f *fakeCleaner) DeleteGroupExpenses(_ context.Context, groupID int64) error {
	f.groups = append(f.groups, groupID)
	return f.err
}

func TestCascadeHandler(t *testing.T) {
	cleaner := &fakeCleaner{}
	handle := CascadeHandler(cleaner)
	ctx := context.Background()

	require.NoError(t, handle(ctx, NewLedgerEvent(GroupCreated, 1, 0, "u1")))
	require.NoError(t, handle(ctx, NewLedgerEvent(ExpenseDeleted, 1, 4, "u1")))
	assert.Empty(t, cleaner.groups)

	require.NoError(t, handle(ctx, NewLedgerEvent(GroupDeleted, 7, 0, "u1")))
	assert.Equal(t, []int64{7}, cleaner.groups)

	cleaner.err = errors.New("store down")
	assert.Error(t, handle(ctx, NewLedgerEvent(GroupDeleted, 8, 0, "u1")))
}
