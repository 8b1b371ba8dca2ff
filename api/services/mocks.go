package services

import (
	"context"

	"github.com/splitbook/splitbook-services/internal/events"
	"github.com/splitbook/splitbook-services/models"
	"github.com/stretchr/testify/mock"
)

type MockLedgerDB struct {
	mock.Mock
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockLedgerDB) CreateGroup(ctx context.Context, group *models.Group) (*models.Group, error) {
	args := m.Called(ctx, group)
	created, _ := args.Get(0).(*models.Group)
	return created, args.Error(1)
}

func (m *MockLedgerDB) GetUserGroups(ctx context.Context, userID string) ([]models.Group, error) {
	args := m.Called(ctx, userID)
	groups, _ := args.Get(0).([]models.Group)
	return groups, args.Error(1)
}

func (m *MockLedgerDB) GetOwnedGroup(ctx context.Context, groupID int64, userID string) (*models.Group, error) {
	args := m.Called(ctx, groupID, userID)
	group, _ := args.Get(0).(*models.Group)
	return group, args.Error(1)
}

func (m *MockLedgerDB) DeleteGroup(ctx context.Context, groupID int64, userID string) error {
	args := m.Called(ctx, groupID, userID)
	return args.Error(0)
}

func (m *MockLedgerDB) CreateExpense(ctx context.Context, expense *models.Expense) (*models.Expense, error) {
	args := m.Called(ctx, expense)
	created, _ := args.Get(0).(*models.Expense)
	return created, args.Error(1)
}

func (m *MockLedgerDB) GetGroupExpenses(ctx context.Context, groupID int64) ([]models.Expense, error) {
	args := m.Called(ctx, groupID)
	expenses, _ := args.Get(0).([]models.Expense)
	return expenses, args.Error(1)
}

func (m *MockLedgerDB) GetExpense(ctx context.Context, expenseID int64) (*models.Expense, error) {
	args := m.Called(ctx, expenseID)
	expense, _ := args.Get(0).(*models.Expense)
	return expense, args.Error(1)
}

func (m *MockLedgerDB) DeleteExpense(ctx context.Context, expenseID int64) error {
	args := m.Called(ctx, expenseID)
	return args.Error(0)
}

func (m *MockEventPublisher) Publish(ctx context.Context, event events.LedgerEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventPublisher) Close() {
	m.Called()
}
