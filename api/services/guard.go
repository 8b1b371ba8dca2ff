package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/splitbook/splitbook-services/db"
	"github.com/splitbook/splitbook-services/models"
)

// ErrNotFoundOrForbidden is returned for resources that are absent or owned
// by someone else. Callers cannot tell the two apart.
var ErrNotFoundOrForbidden = errors.New("resource not found")

// Guard confirms that a user owns a group or an expense.
type Guard interface {
	AssertOwnsGroup(ctx context.Context, user *models.User, groupID int64) (*models.Group, error)
	AssertOwnsExpense(ctx context.Context, user *models.User, expenseID int64) (*models.Expense, error)
}

// OwnershipLookup is the part of the ledger a StoreGuard reads.
type OwnershipLookup interface {
	GetOwnedGroup(ctx context.Context, groupID int64, userID string) (*models.Group, error)
	GetExpense(ctx context.Context, expenseID int64) (*models.Expense, error)
}

// StoreGuard checks ownership with a query filtered on both the group id and
// its creator. Expenses are owned through their group.
type StoreGuard struct {
	DB OwnershipLookup
}

func (g *StoreGuard) AssertOwnsGroup(ctx context.Context, user *models.User, groupID int64) (*models.Group, error) {
	group, err := g.DB.GetOwnedGroup(ctx, groupID, user.ID)
	if errors.Is(err, db.ErrNotFound) {
		return nil, fmt.Errorf("group %d: %w", groupID, ErrNotFoundOrForbidden)
	}
	if err != nil {
		return nil, err
	}
	return group, nil
}

func (g *StoreGuard) AssertOwnsExpense(ctx context.Context, user *models.User, expenseID int64) (*models.Expense, error) {
	expense, err := g.DB.GetExpense(ctx, expenseID)
	if errors.Is(err, db.ErrNotFound) {
		return nil, fmt.Errorf("expense %d: %w", expenseID, ErrNotFoundOrForbidden)
	}
	if err != nil {
		return nil, err
	}

	if _, err := g.AssertOwnsGroup(ctx, user, expense.GroupID); err != nil {
		if errors.Is(err, ErrNotFoundOrForbidden) {
			return nil, fmt.Errorf("expense %d: %w", expenseID, ErrNotFoundOrForbidden)
		}
		return nil, err
	}
	return expense, nil
}
