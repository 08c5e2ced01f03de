package scheduler

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

func TestExpression(t *testing.T) {
	tests := []struct {
		name    string
		typ     string
		value   string
		want    string
		wantErr bool
	}{
		{name: "preset 15min", typ: TypePreset, value: "15min", want: "@every 15m"},
		{name: "preset hourly", typ: TypePreset, value: "1hour", want: "@every 1h"},
		{name: "preset 6 hours", typ: TypePreset, value: "6hours", want: "@every 6h"},
		{name: "preset 12 hours", typ: TypePreset, value: "12hours", want: "@every 12h"},
		{name: "preset daily", typ: TypePreset, value: "daily", want: "0 0 * * *"},
		{name: "unknown preset", typ: TypePreset, value: "weekly", wantErr: true},
		{name: "interval", typ: TypeInterval, value: " 45 ", want: "@every 45m"},
		{name: "zero interval", typ: TypeInterval, value: "0", wantErr: true},
		{name: "non numeric interval", typ: TypeInterval, value: "1h", wantErr: true},
		{name: "cron", typ: TypeCron, value: "30 2 * * 1-5", want: "30 2 * * 1-5"},
		{name: "invalid cron", typ: TypeCron, value: "61 * * * *", wantErr: true},
		{name: "unknown type", typ: "yearly", value: "1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Expression(tt.typ, tt.value)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNextRun(t *testing.T) {
	from := time.Date(2024, 6, 1, 10, 20, 0, 0, time.UTC)

	next, err := NextRun("0 0 * * *", from, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC), next)

	next, err = NextRun("@every 15m", from, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, from.Add(15*time.Minute), next)

	_, err = NextRun("not a schedule", from, nil)
	assert.Error(t, err)
}

func TestMemoryRegistry(t *testing.T) {
	r := NewMemoryRegistry()

	assert.True(t, r.TryAcquire(1))
	assert.False(t, r.TryAcquire(1))
	assert.True(t, r.TryAcquire(2))
	assert.Equal(t, []uint{1, 2}, r.Running())

	r.Release(1)
	assert.True(t, r.TryAcquire(1))
}

func TestMemoryRegistry_Concurrent(t *testing.T) {
	r := NewMemoryRegistry()

	var wg sync.WaitGroup
	var mu sync.Mutex
	acquired := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if r.TryAcquire(7) {
				mu.Lock()
				acquired++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, acquired)
}

func TestScheduler_RunSkipsOverlap(t *testing.T) {
	s, err := New(Config{Timezone: "UTC"}, nil, zap.NewNop())
	require.NoError(t, err)

	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)

	go func() {
		done <- s.Run(context.Background(), 3, func(ctx context.Context) error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started

	err = s.Run(context.Background(), 3, func(ctx context.Context) error {
		t.Fatal("overlapping execution must not run")
		return nil
	})
	assert.ErrorIs(t, err, ErrAlreadyRunning)

	// Other tasks are unaffected.
	assert.NoError(t, s.Run(context.Background(), 4, func(ctx context.Context) error { return nil }))

	close(release)
	require.NoError(t, <-done)

	// The task can run again once released.
	jobErr := errors.New("boom")
	assert.ErrorIs(t, s.Run(context.Background(), 3, func(ctx context.Context) error { return jobErr }), jobErr)
}

func TestScheduler_AddRemove(t *testing.T) {
	s, err := New(Config{Timezone: "Europe/Berlin"}, NewMemoryRegistry(), zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "Europe/Berlin", s.Location().String())

	noop := func(ctx context.Context) error { return nil }
	require.NoError(t, s.Add(1, "@every 1h", noop))
	require.NoError(t, s.Add(2, "0 0 * * *", noop))
	// Re-adding replaces the schedule.
	require.NoError(t, s.Add(1, "@every 15m", noop))
	assert.Equal(t, 2, s.Len())

	assert.Error(t, s.Add(3, "bogus", noop))
	assert.Equal(t, 2, s.Len())

	s.Start()
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		assert.NoError(t, s.Stop(ctx))
	}()

	assert.Eventually(t, func() bool {
		next, ok := s.Next(1)
		return ok && time.Until(next) <= 15*time.Minute
	}, time.Second, 10*time.Millisecond)

	s.Remove(1)
	_, ok := s.Next(1)
	assert.False(t, ok)

	s.RemoveAll()
	assert.Equal(t, 0, s.Len())
}

func TestScheduler_InvalidTimezone(t *testing.T) {
	_, err := New(Config{Timezone: "Mars/Olympus"}, nil, zap.NewNop())
	assert.Error(t, err)
}
