package sqlite

import (
	"path/filepath"
	"testing"

	"github.com/Freeeeeet/fishery_booking/internal/repository/repotest"
	"github.com/Freeeeeet/fishery_booking/internal/service"
	"github.com/stretchr/testify/require"
)

func TestSlotRepositoryContract(t *testing.T) {
	repotest.RunSlotStoreContract(t, func(t *testing.T) service.SlotStore {
		repo, err := Open(filepath.Join(t.TempDir(), "calendar.db"))
		require.NoError(t, err)
		t.Cleanup(func() { repo.Close() })
		return repo
	})
}

func TestOpenInMemory(t *testing.T) {
	repo, err := Open(":memory:")
	require.NoError(t, err)
	require.NoError(t, repo.Close())
}
