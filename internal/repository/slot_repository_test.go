package repository

import (
	"context"
	"os"
	"testing"

	"github.com/Freeeeeet/fishery_booking/internal/repository/repotest"
	"github.com/Freeeeeet/fishery_booking/internal/service"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

// Тест идёт только против настоящего Postgres с применёнными миграциями.
// TEST_DB_DSN=postgres://... go test ./internal/repository/
func TestSlotRepositoryContract(t *testing.T) {
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN is not set")
	}

	pool, err := pgxpool.New(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	repotest.RunSlotStoreContract(t, func(t *testing.T) service.SlotStore {
		_, err := pool.Exec(context.Background(), `TRUNCATE booking_calendar RESTART IDENTITY`)
		require.NoError(t, err)
		return NewSlotRepository(pool)
	})
}
