package services

import (
	"context"

	"github.com/splitbook/splitbook-services/internal/appconfig"
	"github.com/splitbook/splitbook-services/internal/events"
	"github.com/splitbook/splitbook-services/models"
)

// LedgerStore is the persistence used by the request services.
type LedgerStore interface {
	CreateGroup(ctx context.Context, group *models.Group) (*models.Group, error)
	GetUserGroups(ctx context.Context, userID string) ([]models.Group, error)
	GetOwnedGroup(ctx context.Context, groupID int64, userID string) (*models.Group, error)
	DeleteGroup(ctx context.Context, groupID int64, userID string) error
	CreateExpense(ctx context.Context, expense *models.Expense) (*models.Expense, error)
	GetGroupExpenses(ctx context.Context, groupID int64) ([]models.Expense, error)
	GetExpense(ctx context.Context, expenseID int64) (*models.Expense, error)
	DeleteExpense(ctx context.Context, expenseID int64) error
}

// Service contains all shared dependencies for handlers.
type Service struct {
	Config    *appconfig.Config
	DB        LedgerStore
	Guard     Guard
	Publisher events.Notifier
}

// NewService wires a Service guarded by ownership lookups against ledger.
// A nil publisher discards events.
func NewService(cfg *appconfig.Config, ledger LedgerStore, publisher events.Notifier) *Service {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &Service{
		Config:    cfg,
		DB:        ledger,
		Guard:     &StoreGuard{DB: ledger},
		Publisher: publisher,
	}
}

// publish sends a ledger event. Failures are logged and never surface to
// the caller, the change is already stored.
func (svc *Service) publish(ctx context.Context, event events.LedgerEvent) {
	if err := svc.Publisher.Publish(ctx, event); err != nil {
		logger(ctx).Error().Err(err).Str("event_id", event.ID).Str("type", event.Type).Msg("Failed to publish ledger event")
	}
}
