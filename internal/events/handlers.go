package events

import (
	"context"

	"github.com/rs/zerolog"
)

// ExpenseCleaner removes the expenses left behind by a group.
type ExpenseCleaner interface {
	DeleteGroupExpenses(ctx context.Context, groupID int64) error
}

// CascadeHandler repairs the group delete cascade: on group.deleted it
// removes any expenses still referencing the group. Other events are ignored.
func CascadeHandler(cleaner ExpenseCleaner) Handler {
	return func(ctx context.Context, event LedgerEvent) error {
		if event.Type != GroupDeleted {
			return nil
		}
		zerolog.Ctx(ctx).Info().Int64("group_id", event.GroupID).Msg("purging expenses of deleted group")
		return cleaner.DeleteGroupExpenses(ctx, event.GroupID)
	}
}
