package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type countingPurger struct {
	mu    sync.Mutex
	calls []time.Time
	err   error
}

func (p *countingPurger) PurgePast(_ context.Context, now time.Time) (int64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, now)
	return 0, p.err
}

func (p *countingPurger) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.calls)
}

func TestNextMidnight(t *testing.T) {
	london, err := time.LoadLocation("Europe/London")
	require.NoError(t, err)

	cases := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{
			name: "evening",
			now:  time.Date(2024, 1, 10, 22, 30, 0, 0, london),
			want: time.Date(2024, 1, 11, 0, 0, 0, 0, london),
		},
		{
			name: "exactly midnight",
			now:  time.Date(2024, 1, 10, 0, 0, 0, 0, london),
			want: time.Date(2024, 1, 11, 0, 0, 0, 0, london),
		},
		{
			name: "utc input converted",
			now:  time.Date(2024, 7, 1, 23, 30, 0, 0, time.UTC), // 00:30 BST 2 июля
			want: time.Date(2024, 7, 3, 0, 0, 0, 0, london),
		},
		{
			name: "spring forward day is 23 hours",
			now:  time.Date(2024, 3, 30, 12, 0, 0, 0, london),
			want: time.Date(2024, 3, 31, 0, 0, 0, 0, london),
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := nextMidnight(tc.now, london)
			assert.True(t, tc.want.Equal(got), "want %s, got %s", tc.want, got)
		})
	}

	d1 := nextMidnight(time.Date(2024, 3, 31, 0, 0, 0, 0, london), london)
	assert.Equal(t, 23*time.Hour, d1.Sub(time.Date(2024, 3, 31, 0, 0, 0, 0, london)))
}

func TestSchedulerPurgesOnStart(t *testing.T) {
	purger := &countingPurger{err: errors.New("store is down")}
	s := NewScheduler(purger, time.UTC, zap.NewNop())

	s.Start(context.Background())
	require.Eventually(t, func() bool { return purger.count() == 1 }, time.Second, 5*time.Millisecond)

	// ошибка чистки не роняет задачу, Stop корректно её завершает
	s.Stop()
	s.Stop()
	assert.Equal(t, 1, purger.count())
}

func TestSchedulerStopsOnContextCancel(t *testing.T) {
	purger := &countingPurger{}
	s := NewScheduler(purger, time.UTC, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	require.Eventually(t, func() bool { return purger.count() == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	s.wg.Wait()
}
