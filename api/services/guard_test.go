package services

import (
	"context"
	"errors"
	"testing"

	"github.com/splitbook/splitbook-services/db"
	"github.com/splitbook/splitbook-services/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestStoreGuard_AssertOwnsGroup(t *testing.T) {
	mockDB := new(MockLedgerDB)
	guard := &StoreGuard{DB: mockDB}
	ctx := context.Background()

	mockDB.On("GetOwnedGroup", mock.Anything, int64(1), "u1").Return(&models.Group{ID: 1, CreatedBy: "u1"}, nil)
	mockDB.On("GetOwnedGroup", mock.Anything, int64(1), "u2").Return(nil, db.ErrNotFound)
	mockDB.On("GetOwnedGroup", mock.Anything, int64(2), "u1").Return(nil, db.ErrNotFound)
	mockDB.On("GetOwnedGroup", mock.Anything, int64(3), "u1").Return(nil, &db.StoreError{Op: "select", Status: 503})

	group, err := guard.AssertOwnsGroup(ctx, &models.User{ID: "u1"}, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), group.ID)

	// not yours and absent are indistinguishable
	_, errOther := guard.AssertOwnsGroup(ctx, &models.User{ID: "u2"}, 1)
	_, errAbsent := guard.AssertOwnsGroup(ctx, &models.User{ID: "u1"}, 2)
	assert.ErrorIs(t, errOther, ErrNotFoundOrForbidden)
	assert.ErrorIs(t, errAbsent, ErrNotFoundOrForbidden)

	_, err = guard.AssertOwnsGroup(ctx, &models.User{ID: "u1"}, 3)
	var storeErr *db.StoreError
	assert.True(t, errors.As(err, &storeErr))
	assert.False(t, errors.Is(err, ErrNotFoundOrForbidden))
}

func TestStoreGuard_AssertOwnsExpense(t *testing.T) {
	mockDB := new(MockLedgerDB)
	guard := &StoreGuard{DB: mockDB}
	ctx := context.Background()

	mockDB.On("GetExpense", mock.Anything, int64(10)).Return(&models.Expense{ID: 10, GroupID: 1}, nil)
	mockDB.On("GetExpense", mock.Anything, int64(11)).Return(nil, db.ErrNotFound)
	mockDB.On("GetOwnedGroup", mock.Anything, int64(1), "u1").Return(&models.Group{ID: 1, CreatedBy: "u1"}, nil)
	mockDB.On("GetOwnedGroup", mock.Anything, int64(1), "u2").Return(nil, db.ErrNotFound)

	expense, err := guard.AssertOwnsExpense(ctx, &models.User{ID: "u1"}, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(10), expense.ID)

	_, err = guard.AssertOwnsExpense(ctx, &models.User{ID: "u2"}, 10)
	assert.ErrorIs(t, err, ErrNotFoundOrForbidden)

	_, err = guard.AssertOwnsExpense(ctx, &models.User{ID: "u1"}, 11)
	assert.ErrorIs(t, err, ErrNotFoundOrForbidden)
	mockDB.AssertNotCalled(t, "GetOwnedGroup", mock.Anything, int64(0), mock.Anything)
}
