package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Freeeeeet/fishery_booking/internal/model"
	"github.com/Freeeeeet/fishery_booking/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testPegs = []string{"Peg 1", "Peg 2", "Peg 3"}

var errStoreDown = errors.New("store is down")

// flakyStore оборачивает memory-хранилище и умеет ломать отдельные операции
type flakyStore struct {
	*memory.SlotRepository

	mu          sync.Mutex
	failFind    map[string]bool // ключ date/peg
	failPageAt  int             // offset, на котором ListPage падает; -1 выключено
	failUpdate  bool
	failInsert  bool
	pageCalls   []int
	updateCalls int
	findCalls   int
}

func newFlakyStore() *flakyStore {
	return &flakyStore{
		SlotRepository: memory.NewSlotRepository(),
		failFind:       map[string]bool{},
		failPageAt:     -1,
	}
}

func (f *flakyStore) FindByKey(ctx context.Context, date, peg string) ([]model.Slot, error) {
	f.mu.Lock()
	f.findCalls++
	fail := f.failFind[date+"/"+peg]
	f.mu.Unlock()

	if fail {
		return nil, errStoreDown
	}
	return f.SlotRepository.FindByKey(ctx, date, peg)
}

func (f *flakyStore) ListPage(ctx context.Context, offset, limit int) ([]model.Slot, error) {
	f.mu.Lock()
	f.pageCalls = append(f.pageCalls, offset)
	fail := f.failPageAt == offset
	f.mu.Unlock()

	if fail {
		return nil, errStoreDown
	}
	return f.SlotRepository.ListPage(ctx, offset, limit)
}

func (f *flakyStore) UpdateStatus(ctx context.Context, id int64, expected, next model.SlotStatus) (bool, error) {
	f.mu.Lock()
	f.updateCalls++
	fail := f.failUpdate
	f.mu.Unlock()

	if fail {
		return false, errStoreDown
	}
	return f.SlotRepository.UpdateStatus(ctx, id, expected, next)
}

func (f *flakyStore) Insert(ctx context.Context, slot *model.Slot) error {
	if f.failInsert {
		return errStoreDown
	}
	return f.SlotRepository.Insert(ctx, slot)
}

func newTestService(store SlotStore, pageSize int) *CalendarService {
	return NewCalendarService(store, CalendarOptions{
		Location: time.UTC,
		PageSize: pageSize,
	}, zap.NewNop())
}

func statusOf(t *testing.T, store SlotStore, date, peg string) model.SlotStatus {
	t.Helper()
	slots, err := store.FindByKey(context.Background(), date, peg)
	require.NoError(t, err)
	require.Len(t, slots, 1)
	return slots[0].Status
}

func TestSeedIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := memory.NewSlotRepository()
	svc := newTestService(store, 0)

	report, err := svc.Seed(ctx, "2024-01-30", 3, testPegs)
	require.NoError(t, err)
	assert.Equal(t, 9, report.Inserted)
	assert.Equal(t, 0, report.Skipped)
	assert.Equal(t, 9, store.Len())

	_, err = svc.Toggle(ctx, "2024-01-31", "Peg 2")
	require.NoError(t, err)

	report, err = svc.Seed(ctx, "2024-01-30", 3, testPegs)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Inserted)
	assert.Equal(t, 9, report.Skipped)
	assert.Equal(t, 9, store.Len())

	// второй прогон не сбрасывает бронь
	assert.Equal(t, model.SlotStatusBooked, statusOf(t, store, "2024-01-31", "Peg 2"))
	// переход через конец месяца
	assert.Equal(t, model.SlotStatusAvailable, statusOf(t, store, "2024-02-01", "Peg 3"))
}

func TestSeedContinuesAfterPairFailure(t *testing.T) {
	store := newFlakyStore()
	store.failFind["2024-01-01/Peg 2"] = true
	svc := newTestService(store, 0)

	report, err := svc.Seed(context.Background(), "2024-01-01", 2, testPegs)
	require.NoError(t, err)

	assert.Equal(t, 5, report.Inserted)
	assert.Equal(t, 1, report.Failed)
	require.Len(t, report.Errors, 1)
	assert.Equal(t, "2024-01-01", report.Errors[0].Date)
	assert.Equal(t, "Peg 2", report.Errors[0].Peg)
	assert.ErrorIs(t, report.Errors[0], errStoreDown)
	assert.Equal(t, 5, store.Len())
}

func TestSeedCountsInsertFailures(t *testing.T) {
	store := newFlakyStore()
	store.failInsert = true
	svc := newTestService(store, 0)

	report, err := svc.Seed(context.Background(), "2024-01-01", 2, testPegs)
	require.NoError(t, err)

	assert.Equal(t, 0, report.Inserted)
	assert.Equal(t, 0, report.Skipped)
	assert.Equal(t, 6, report.Failed)
	require.Len(t, report.Errors, 6)
	assert.Equal(t, "2024-01-02", report.Errors[5].Date)
	assert.Equal(t, "Peg 3", report.Errors[5].Peg)
	assert.ErrorIs(t, report.Errors[0], errStoreDown)
	assert.Equal(t, 6, store.findCalls)
	assert.Equal(t, 0, store.Len())
}

func TestSeedRejectsBadInput(t *testing.T) {
	svc := newTestService(memory.NewSlotRepository(), 0)
	ctx := context.Background()

	_, err := svc.Seed(ctx, "01/02/2024", 1, testPegs)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Seed(ctx, "2024-01-01", 0, testPegs)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Seed(ctx, "2024-01-01", 1, nil)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestSeedStopsOnCancelledContext(t *testing.T) {
	store := memory.NewSlotRepository()
	svc := newTestService(store, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := svc.Seed(ctx, "2024-01-01", 10, testPegs)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, report.Total())
	assert.Equal(t, 0, store.Len())
}

func TestToggleFlipsStatus(t *testing.T) {
	ctx := context.Background()
	store := memory.NewSlotRepository()
	svc := newTestService(store, 0)
	store.Put(model.Slot{Date: "2024-03-10", Peg: "Peg 1", Status: model.SlotStatusAvailable})

	result, err := svc.Toggle(ctx, "2024-03-10", "Peg 1")
	require.NoError(t, err)
	assert.False(t, result.Created)
	assert.Equal(t, model.SlotStatusBooked, result.Slot.Status)
	assert.Equal(t, model.SlotStatusAvailable, result.Previous)
	assert.Equal(t, "Booking status updated to booked", result.Message())

	result, err = svc.Toggle(ctx, "2024-03-10", "Peg 1")
	require.NoError(t, err)
	assert.Equal(t, model.SlotStatusAvailable, result.Slot.Status)
	assert.Equal(t, "Booking status updated to available", result.Message())

	assert.Equal(t, model.SlotStatusAvailable, statusOf(t, store, "2024-03-10", "Peg 1"))
}

func TestToggleUnknownStatusBecomesBooked(t *testing.T) {
	store := memory.NewSlotRepository()
	svc := newTestService(store, 0)
	store.Put(model.Slot{Date: "2024-03-10", Peg: "Peg 1", Status: "pending"})

	result, err := svc.Toggle(context.Background(), "2024-03-10", "Peg 1")
	require.NoError(t, err)
	assert.Equal(t, model.SlotStatusBooked, result.Slot.Status)
}

func TestToggleCreatesMissingSlotAsBooked(t *testing.T) {
	store := memory.NewSlotRepository()
	svc := newTestService(store, 0)

	result, err := svc.Toggle(context.Background(), "2030-06-01", "Peg 7")
	require.NoError(t, err)
	assert.True(t, result.Created)
	assert.NotZero(t, result.Slot.ID)
	assert.Equal(t, "Booking created successfully", result.Message())

	assert.Equal(t, 1, store.Len())
	assert.Equal(t, model.SlotStatusBooked, statusOf(t, store, "2030-06-01", "Peg 7"))
}

func TestToggleMutatesOnlyFirstDuplicate(t *testing.T) {
	store := memory.NewSlotRepository()
	svc := newTestService(store, 0)
	first := store.Put(model.Slot{Date: "2024-03-10", Peg: "Peg 1", Status: model.SlotStatusAvailable})
	second := store.Put(model.Slot{Date: "2024-03-10", Peg: "Peg 1", Status: model.SlotStatusAvailable})

	result, err := svc.Toggle(context.Background(), "2024-03-10", "Peg 1")
	require.NoError(t, err)
	assert.Equal(t, first.ID, result.Slot.ID)

	slots, err := store.FindByKey(context.Background(), "2024-03-10", "Peg 1")
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Equal(t, first.ID, slots[0].ID)
	assert.Equal(t, model.SlotStatusBooked, slots[0].Status)
	assert.Equal(t, second.ID, slots[1].ID)
	assert.Equal(t, model.SlotStatusAvailable, slots[1].Status)
}

func TestToggleValidation(t *testing.T) {
	store := newFlakyStore()
	svc := newTestService(store, 0)
	ctx := context.Background()

	cases := []struct {
		name string
		date string
		peg  string
	}{
		{"missing date", "", "Peg 1"},
		{"missing peg", "2024-01-01", ""},
		{"blank peg", "2024-01-01", "   "},
		{"malformed date", "2024-13-01", "Peg 1"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Toggle(ctx, tc.date, tc.peg)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}

	assert.Zero(t, store.findCalls, "validation must not touch the store")
}

func TestToggleSurfacesStoreErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("read", func(t *testing.T) {
		store := newFlakyStore()
		store.failFind["2024-01-01/Peg 1"] = true
		_, err := newTestService(store, 0).Toggle(ctx, "2024-01-01", "Peg 1")
		assert.ErrorIs(t, err, errStoreDown)
		assert.NotErrorIs(t, err, ErrValidation)
	})

	t.Run("update", func(t *testing.T) {
		store := newFlakyStore()
		store.Put(model.Slot{Date: "2024-01-01", Peg: "Peg 1", Status: model.SlotStatusAvailable})
		store.failUpdate = true
		_, err := newTestService(store, 0).Toggle(ctx, "2024-01-01", "Peg 1")
		assert.ErrorIs(t, err, errStoreDown)
		assert.Equal(t, 1, store.updateCalls, "store errors are not retried")
	})

	t.Run("insert", func(t *testing.T) {
		store := newFlakyStore()
		store.failInsert = true
		_, err := newTestService(store, 0).Toggle(ctx, "2024-01-01", "Peg 1")
		assert.ErrorIs(t, err, errStoreDown)
	})
}

// casLosingStore всегда проигрывает conditional update
type casLosingStore struct {
	*memory.SlotRepository
	attempts int
}

func (s *casLosingStore) UpdateStatus(context.Context, int64, model.SlotStatus, model.SlotStatus) (bool, error) {
	s.attempts++
	return false, nil
}

func TestToggleReportsConflictAfterRetry(t *testing.T) {
	store := &casLosingStore{SlotRepository: memory.NewSlotRepository()}
	store.Put(model.Slot{Date: "2024-01-01", Peg: "Peg 1", Status: model.SlotStatusAvailable})

	_, err := newTestService(store, 0).Toggle(context.Background(), "2024-01-01", "Peg 1")
	assert.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, toggleAttempts, store.attempts)
}

func TestConcurrentTogglesStayConsistent(t *testing.T) {
	for _, seeded := range []bool{true, false} {
		t.Run(fmt.Sprintf("seeded=%v", seeded), func(t *testing.T) {
			store := memory.NewSlotRepository()
			svc := newTestService(store, 0)
			if seeded {
				store.Put(model.Slot{Date: "2024-05-05", Peg: "Peg 1", Status: model.SlotStatusAvailable})
			}

			var wg sync.WaitGroup
			results := make([]*ToggleResult, 2)
			errs := make([]error, 2)
			for i := 0; i < 2; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					results[i], errs[i] = svc.Toggle(context.Background(), "2024-05-05", "Peg 1")
				}(i)
			}
			wg.Wait()

			require.NoError(t, errs[0])
			require.NoError(t, errs[1])

			// одна попытка забронировала, вторая увидела бронь и сняла её
			statuses := []model.SlotStatus{results[0].Slot.Status, results[1].Slot.Status}
			assert.ElementsMatch(t, []model.SlotStatus{model.SlotStatusBooked, model.SlotStatusAvailable}, statuses)

			assert.Equal(t, 1, store.Len())
			assert.Equal(t, model.SlotStatusAvailable, statusOf(t, store, "2024-05-05", "Peg 1"))
		})
	}
}

func TestReadAllPagination(t *testing.T) {
	cases := []struct {
		name      string
		rows      int
		pageSize  int
		wantCalls []int
	}{
		{"empty store", 0, 4, []int{0}},
		{"not a multiple", 10, 4, []int{0, 4, 8}},
		{"exact multiple", 8, 4, []int{0, 4, 8}},
		{"single short page", 3, 4, []int{0}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := newFlakyStore()
			for i := 0; i < tc.rows; i++ {
				store.Put(model.Slot{
					Date:   fmt.Sprintf("2024-02-%02d", i+1),
					Peg:    "Peg 1",
					Status: model.SlotStatusAvailable,
				})
			}

			slots, err := newTestService(store, tc.pageSize).ReadAll(context.Background())
			require.NoError(t, err)
			require.NotNil(t, slots)
			assert.Len(t, slots, tc.rows)
			assert.Equal(t, tc.wantCalls, store.pageCalls)

			seen := map[int64]bool{}
			for _, slot := range slots {
				assert.False(t, seen[slot.ID], "duplicate id %d", slot.ID)
				seen[slot.ID] = true
			}
		})
	}
}

func TestReadAllDefaultPageSize(t *testing.T) {
	store := newFlakyStore()
	for i := 0; i < CalendarPageSize+1; i++ {
		store.Put(model.Slot{Date: "2024-02-01", Peg: fmt.Sprintf("Peg %d", i), Status: model.SlotStatusAvailable})
	}

	slots, err := newTestService(store, 0).ReadAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, slots, CalendarPageSize+1)
	assert.Equal(t, []int{0, CalendarPageSize}, store.pageCalls)
}

func TestReadAllDiscardsPartialResultsOnError(t *testing.T) {
	store := newFlakyStore()
	for i := 0; i < 10; i++ {
		store.Put(model.Slot{Date: "2024-02-01", Peg: fmt.Sprintf("Peg %d", i), Status: model.SlotStatusAvailable})
	}
	store.failPageAt = 4

	slots, err := newTestService(store, 4).ReadAll(context.Background())
	assert.ErrorIs(t, err, errStoreDown)
	assert.Nil(t, slots)
}

func TestPurgePastBoundary(t *testing.T) {
	store := memory.NewSlotRepository()
	svc := newTestService(store, 0)
	store.Put(model.Slot{Date: "2024-06-14", Peg: "Peg 1", Status: model.SlotStatusBooked})
	store.Put(model.Slot{Date: "2024-06-15", Peg: "Peg 1", Status: model.SlotStatusAvailable})
	store.Put(model.Slot{Date: "2024-06-16", Peg: "Peg 1", Status: model.SlotStatusAvailable})

	now := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	deleted, err := svc.PurgePast(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	slots, err := svc.ReadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Equal(t, "2024-06-15", slots[0].Date)
	assert.Equal(t, "2024-06-16", slots[1].Date)

	// повторный запуск ничего не находит
	deleted, err = svc.PurgePast(context.Background(), now)
	require.NoError(t, err)
	assert.Zero(t, deleted)
}

func TestPurgePastUsesConfiguredZone(t *testing.T) {
	zone := time.FixedZone("UTC+10", 10*60*60)
	store := memory.NewSlotRepository()
	svc := NewCalendarService(store, CalendarOptions{Location: zone}, zap.NewNop())
	store.Put(model.Slot{Date: "2024-06-14", Peg: "Peg 1", Status: model.SlotStatusAvailable})

	// 20:00 UTC 14-го это уже 15-е в UTC+10
	now := time.Date(2024, 6, 14, 20, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024-06-15", svc.Today(now))

	deleted, err := svc.PurgePast(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
}

func TestDayStatus(t *testing.T) {
	store := memory.NewSlotRepository()
	svc := newTestService(store, 0)
	store.Put(model.Slot{Date: "2024-01-01", Peg: "Peg 1", Status: model.SlotStatusBooked})

	statuses, err := svc.DayStatus(context.Background(), "2024-01-01", []string{"Peg 1", "Peg 2"})
	require.NoError(t, err)
	require.Len(t, statuses, 2)
	require.NotNil(t, statuses[0].Slot)
	assert.Equal(t, model.SlotStatusBooked, statuses[0].Slot.Status)
	assert.Nil(t, statuses[1].Slot)

	_, err = svc.DayStatus(context.Background(), "tomorrow", []string{"Peg 1"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestEndToEndScenario(t *testing.T) {
	ctx := context.Background()
	store := memory.NewSlotRepository()
	svc := newTestService(store, 0)

	report, err := svc.Seed(ctx, "2024-01-01", 2, testPegs)
	require.NoError(t, err)
	assert.Equal(t, 6, report.Inserted)

	slots, err := svc.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, slots, 6)
	for _, slot := range slots {
		assert.Equal(t, model.SlotStatusAvailable, slot.Status)
	}

	result, err := svc.Toggle(ctx, "2024-01-01", "Peg 1")
	require.NoError(t, err)
	assert.Equal(t, model.SlotStatusBooked, result.Slot.Status)
	assert.Contains(t, result.Message(), "booked")

	result, err = svc.Toggle(ctx, "2024-01-01", "Peg 1")
	require.NoError(t, err)
	assert.Equal(t, model.SlotStatusAvailable, result.Slot.Status)

	deleted, err := svc.PurgePast(ctx, time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, int64(3), deleted)

	slots, err = svc.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, slots, 3)
	for _, slot := range slots {
		assert.Equal(t, "2024-01-02", slot.Date)
	}
}

func TestReleaseFreesBookedPeg(t *testing.T) {
	ctx := context.Background()
	store := memory.NewSlotRepository()
	svc := newTestService(store, 0)
	store.Put(model.Slot{Date: "2024-06-01", Peg: "Peg 1", Status: model.SlotStatusBooked})

	result, err := svc.Release(ctx, "2024-06-01", "Peg 1")
	require.NoError(t, err)
	assert.Equal(t, model.SlotStatusAvailable, result.Slot.Status)
	assert.Equal(t, model.SlotStatusBooked, result.Previous)
	assert.Equal(t, model.SlotStatusAvailable, statusOf(t, store, "2024-06-01", "Peg 1"))

	// повторное освобождение не бронирует колышек обратно
	_, err = svc.Release(ctx, "2024-06-01", "Peg 1")
	assert.ErrorIs(t, err, ErrNotBooked)
	assert.Equal(t, model.SlotStatusAvailable, statusOf(t, store, "2024-06-01", "Peg 1"))
}

func TestReleaseNeverCreatesSlot(t *testing.T) {
	store := memory.NewSlotRepository()
	svc := newTestService(store, 0)

	_, err := svc.Release(context.Background(), "2024-06-01", "Peg 1")
	assert.ErrorIs(t, err, ErrNotBooked)
	assert.Equal(t, 0, store.Len())

	_, err = svc.Release(context.Background(), "June", "Peg 1")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestReleaseReportsConflictAfterRetry(t *testing.T) {
	store := &casLosingStore{SlotRepository: memory.NewSlotRepository()}
	store.Put(model.Slot{Date: "2024-06-01", Peg: "Peg 1", Status: model.SlotStatusBooked})

	_, err := newTestService(store, 0).Release(context.Background(), "2024-06-01", "Peg 1")
	assert.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, toggleAttempts, store.attempts)
}
