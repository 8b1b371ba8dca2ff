package db

import (
	"context"
	"fmt"

	"github.com/splitbook/splitbook-services/models"
)

// LedgerDB exposes the groups and expenses collections of a Store.
type LedgerDB struct {
	Store Store
}

// NewLedgerDB wraps store.
func NewLedgerDB(store Store) *LedgerDB {
	return &LedgerDB{Store: store}
}

var newestFirst = &Order{Field: "created_at", Desc: true}

// CreateGroup stores a new group and returns it with its assigned id.
func (l *LedgerDB) CreateGroup(ctx context.Context, group *models.Group) (*models.Group, error) {
	var created models.Group
	if err := l.Store.Insert(ctx, GroupsCollection, group, &created); err != nil {
		return nil, fmt.Errorf("error inserting group: %w", err)
	}
	return &created, nil
}

// GetUserGroups lists the groups created by userID, newest first.
func (l *LedgerDB) GetUserGroups(ctx context.Context, userID string) ([]models.Group, error) {
	groups := []models.Group{}
	q := Query{Filters: Filters{"created_by": userID}, Order: newestFirst}
	if err := l.Store.Select(ctx, GroupsCollection, q, &groups); err != nil {
		return nil, fmt.Errorf("error retrieving groups: %w", err)
	}
	return groups, nil
}

// GetAllGroups lists every group visible to the store credentials.
func (l *LedgerDB) GetAllGroups(ctx context.Context) ([]models.Group, error) {
	groups := []models.Group{}
	if err := l.Store.Select(ctx, GroupsCollection, Query{}, &groups); err != nil {
		return nil, fmt.Errorf("error retrieving groups: %w", err)
	}
	return groups, nil
}

// GetOwnedGroup returns the group only if it was created by userID, and
// ErrNotFound otherwise.
func (l *LedgerDB) GetOwnedGroup(ctx context.Context, groupID int64, userID string) (*models.Group, error) {
	var groups []models.Group
	q := Query{Filters: Filters{"id": groupID, "created_by": userID}, Limit: 1}
	if err := l.Store.Select(ctx, GroupsCollection, q, &groups); err != nil {
		return nil, fmt.Errorf("error retrieving group %d: %w", groupID, err)
	}
	if len(groups) == 0 {
		return nil, ErrNotFound
	}
	return &groups[0], nil
}

// DeleteGroup removes the group's expenses and then the group itself.
func (l *LedgerDB) DeleteGroup(ctx context.Context, groupID int64, userID string) error {
	if err := l.DeleteGroupExpenses(ctx, groupID); err != nil {
		return err
	}
	if err := l.Store.Delete(ctx, GroupsCollection, Filters{"id": groupID, "created_by": userID}); err != nil {
		return fmt.Errorf("error deleting group %d: %w", groupID, err)
	}
	return nil
}

// DeleteGroupExpenses removes every expense referencing groupID.
func (l *LedgerDB) DeleteGroupExpenses(ctx context.Context, groupID int64) error {
	if err := l.Store.Delete(ctx, ExpensesCollection, Filters{"group_id": groupID}); err != nil {
		return fmt.Errorf("error deleting expenses of group %d: %w", groupID, err)
	}
	return nil
}

// CreateExpense stores a new expense and returns it with its assigned id.
func (l *LedgerDB) CreateExpense(ctx context.Context, expense *models.Expense) (*models.Expense, error) {
	var created models.Expense
	if err := l.Store.Insert(ctx, ExpensesCollection, expense, &created); err != nil {
		return nil, fmt.Errorf("error inserting expense: %w", err)
	}
	return &created, nil
}

// GetGroupExpenses lists the expenses of a group, newest first.
func (l *LedgerDB) GetGroupExpenses(ctx context.Context, groupID int64) ([]models.Expense, error) {
	expenses := []models.Expense{}
	q := Query{Filters: Filters{"group_id": groupID}, Order: newestFirst}
	if err := l.Store.Select(ctx, ExpensesCollection, q, &expenses); err != nil {
		return nil, fmt.Errorf("error retrieving expenses of group %d: %w", groupID, err)
	}
	return expenses, nil
}

// GetAllExpenses lists every expense visible to the store credentials.
func (l *LedgerDB) GetAllExpenses(ctx context.Context) ([]models.Expense, error) {
	expenses := []models.Expense{}
	if err := l.Store.Select(ctx, ExpensesCollection, Query{}, &expenses); err != nil {
		return nil, fmt.Errorf("error retrieving expenses: %w", err)
	}
	return expenses, nil
}

// GetExpense returns one expense or ErrNotFound.
func (l *LedgerDB) GetExpense(ctx context.Context, expenseID int64) (*models.Expense, error) {
	var expenses []models.Expense
	q := Query{Filters: Filters{"id": expenseID}, Limit: 1}
	if err := l.Store.Select(ctx, ExpensesCollection, q, &expenses); err != nil {
		return nil, fmt.Errorf("error retrieving expense %d: %w", expenseID, err)
	}
	if len(expenses) == 0 {
		return nil, ErrNotFound
	}
	return &expenses[0], nil
}

// DeleteExpense removes one expense. Deleting an absent id succeeds.
func (l *LedgerDB) DeleteExpense(ctx context.Context, expenseID int64) error {
	if err := l.Store.Delete(ctx, ExpensesCollection, Filters{"id": expenseID}); err != nil {
		return fmt.Errorf("error deleting expense %d: %w", expenseID, err)
	}
	return nil
}

// DeleteOrphanExpenses removes expenses whose group no longer exists and
// returns how many were removed. It needs credentials that can see every row.
func (l *LedgerDB) DeleteOrphanExpenses(ctx context.Context) (int, error) {
	groups, err := l.GetAllGroups(ctx)
	if err != nil {
		return 0, err
	}
	expenses, err := l.GetAllExpenses(ctx)
	if err != nil {
		return 0, err
	}

	known := make(map[int64]struct{}, len(groups))
	for _, g := range groups {
		known[g.ID] = struct{}{}
	}

	removed := 0
	for _, e := range expenses {
		if _, ok := known[e.GroupID]; ok {
			continue
		}
		if err := l.DeleteExpense(ctx, e.ID); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

// Ping checks the underlying store.
func (l *LedgerDB) Ping(ctx context.Context) error {
	return l.Store.Ping(ctx)
}

// Close releases the underlying store.
func (l *LedgerDB) Close() error {
	return l.Store.Close()
}
