// Package repotest общий набор проверок для реализаций service.SlotStore.
package repotest

import (
	"context"
	"testing"

	"github.com/Freeeeeet/fishery_booking/internal/model"
	"github.com/Freeeeeet/fishery_booking/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSlotStoreContract проверяет семантику хранилища на пустой таблице,
// которую возвращает newStore для каждого подтеста.
func RunSlotStoreContract(t *testing.T, newStore func(t *testing.T) service.SlotStore) {
	t.Run("insert and find by key", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		slot := model.Slot{Date: "2024-01-01", Peg: "Peg 1", Status: model.SlotStatusAvailable}
		require.NoError(t, store.Insert(ctx, &slot))
		assert.NotZero(t, slot.ID)

		found, err := store.FindByKey(ctx, "2024-01-01", "Peg 1")
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, slot, found[0])

		found, err = store.FindByKey(ctx, "2024-01-01", "Peg 2")
		require.NoError(t, err)
		assert.Empty(t, found)
	})

	t.Run("duplicate key is rejected", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		first := model.Slot{Date: "2024-01-01", Peg: "Peg 1", Status: model.SlotStatusAvailable}
		require.NoError(t, store.Insert(ctx, &first))

		second := model.Slot{Date: "2024-01-01", Peg: "Peg 1", Status: model.SlotStatusBooked}
		assert.ErrorIs(t, store.Insert(ctx, &second), model.ErrDuplicateSlot)
	})

	t.Run("conditional update", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		slot := model.Slot{Date: "2024-01-01", Peg: "Peg 1", Status: model.SlotStatusAvailable}
		require.NoError(t, store.Insert(ctx, &slot))

		ok, err := store.UpdateStatus(ctx, slot.ID, model.SlotStatusAvailable, model.SlotStatusBooked)
		require.NoError(t, err)
		assert.True(t, ok)

		// статус уже не available
		ok, err = store.UpdateStatus(ctx, slot.ID, model.SlotStatusAvailable, model.SlotStatusBooked)
		require.NoError(t, err)
		assert.False(t, ok)

		ok, err = store.UpdateStatus(ctx, slot.ID+1000, model.SlotStatusBooked, model.SlotStatusAvailable)
		require.NoError(t, err)
		assert.False(t, ok)

		found, err := store.FindByKey(ctx, "2024-01-01", "Peg 1")
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, model.SlotStatusBooked, found[0].Status)
	})

	t.Run("pages cover every row once", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		dates := []string{"2024-01-03", "2024-01-01", "2024-01-02", "2024-01-05", "2024-01-04"}
		for _, date := range dates {
			slot := model.Slot{Date: date, Peg: "Peg 1", Status: model.SlotStatusAvailable}
			require.NoError(t, store.Insert(ctx, &slot))
		}

		var all []model.Slot
		for offset := 0; ; offset += 2 {
			page, err := store.ListPage(ctx, offset, 2)
			require.NoError(t, err)
			all = append(all, page...)
			if len(page) < 2 {
				break
			}
		}

		require.Len(t, all, len(dates))
		for i, slot := range all {
			// порядок по id, то есть по порядку вставки
			assert.Equal(t, dates[i], slot.Date)
		}

		page, err := store.ListPage(ctx, 100, 2)
		require.NoError(t, err)
		assert.Empty(t, page)
	})

	t.Run("list and delete before date", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		for _, date := range []string{"2023-12-31", "2024-01-09", "2024-01-10", "2024-01-11"} {
			slot := model.Slot{Date: date, Peg: "Peg 1", Status: model.SlotStatusBooked}
			require.NoError(t, store.Insert(ctx, &slot))
		}

		past, err := store.ListBefore(ctx, "2024-01-10")
		require.NoError(t, err)
		require.Len(t, past, 2)
		assert.Equal(t, "2023-12-31", past[0].Date)
		assert.Equal(t, "2024-01-09", past[1].Date)

		deleted, err := store.DeleteBefore(ctx, "2024-01-10")
		require.NoError(t, err)
		assert.Equal(t, int64(2), deleted)

		deleted, err = store.DeleteBefore(ctx, "2024-01-10")
		require.NoError(t, err)
		assert.Zero(t, deleted)

		rest, err := store.ListPage(ctx, 0, 10)
		require.NoError(t, err)
		require.Len(t, rest, 2)
		assert.Equal(t, "2024-01-10", rest[0].Date)
		assert.Equal(t, "2024-01-11", rest[1].Date)
	})
}
