//go:build integration

package db_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/splitbook/splitbook-services/db"
	"github.com/splitbook/splitbook-services/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupPostgresContainer starts a throwaway PostgreSQL and returns its DSN.
func setupPostgresContainer(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:13",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "postgres",
			"POSTGRES_PASSWORD": "postgres",
			"POSTGRES_DB":       "postgres",
		},
		WaitingFor: wait.ForListeningPort("5432/tcp"),
	}

	postgresC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err, "could not start container")
	t.Cleanup(func() { _ = postgresC.Terminate(ctx) })

	host, err := postgresC.Host(ctx)
	require.NoError(t, err)
	port, err := postgresC.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	return fmt.Sprintf("postgres://postgres:postgres@%s:%s/postgres?sslmode=disable", host, port.Port())
}

func openStore(t *testing.T, dsn string) *db.PostgresStore {
	t.Helper()
	logger := zerolog.New(os.Stdout)

	var (
		store *db.PostgresStore
		err   error
	)
	// the port opens before the server accepts connections
	for i := 0; i < 10; i++ {
		store, err = db.NewPostgresStore("postgres", dsn, 5*time.Second, &logger)
		if err == nil {
			break
		}
		time.Sleep(time.Second)
	}
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestPostgresStore_Ledger(t *testing.T) {
	store := openStore(t, setupPostgresContainer(t))
	require.NoError(t, store.Migrate())

	ledger := db.NewLedgerDB(store)
	ctx := context.Background()

	require.NoError(t, ledger.Ping(ctx))

	trip, err := ledger.CreateGroup(ctx, &models.Group{Name: "Trip", CreatedBy: "u1"})
	require.NoError(t, err)
	assert.NotZero(t, trip.ID)
	assert.NotEmpty(t, trip.CreatedAt)
	assert.Nil(t, trip.Description)

	expense, err := ledger.CreateExpense(ctx, &models.Expense{
		Description: "Lift ticket",
		Amount:      models.MustMoney("89.00"),
		GroupID:     trip.ID,
		CreatedBy:   "u1",
	})
	require.NoError(t, err)
	assert.Equal(t, "89.00", expense.Amount.StringFixed(2))

	expenses, err := ledger.GetGroupExpenses(ctx, trip.ID)
	require.NoError(t, err)
	require.Len(t, expenses, 1)
	assert.Equal(t, "89.00", models.SumAmounts(expenses).StringFixed(2))

	_, err = ledger.GetOwnedGroup(ctx, trip.ID, "u2")
	assert.ErrorIs(t, err, db.ErrNotFound)

	_, err = ledger.CreateExpense(ctx, &models.Expense{Description: "x", Amount: models.MustMoney("1"), GroupID: trip.ID + 100, CreatedBy: "u1"})
	assert.Error(t, err, "foreign key must reject unknown group")

	require.NoError(t, ledger.DeleteGroup(ctx, trip.ID, "u1"))
	expenses, err = ledger.GetGroupExpenses(ctx, trip.ID)
	require.NoError(t, err)
	assert.Empty(t, expenses)
}
