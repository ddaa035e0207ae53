package monitor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	mu      sync.Mutex
	entries map[string]time.Time
	saveErr error
}

func (s *memStore) Load(ctx context.Context) (map[string]time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res := make(map[string]time.Time, len(s.entries))
	for k, v := range s.entries {
		res[k] = v
	}
	return res, nil
}

func (s *memStore) Save(ctx context.Context, key string, firedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	if s.entries == nil {
		s.entries = make(map[string]time.Time)
	}
	s.entries[key] = firedAt
	return nil
}

func (s *memStore) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
	return nil
}

func TestLedger_Admit(t *testing.T) {
	clk := &clock{t: t0}
	l := NewLedger(WithClock(clk.Now))
	ctx := context.Background()
	const key = "BTCUSDT_4h_short_13_25_bullish_cross"
	cooldown := 4 * time.Hour

	testCases := []struct {
		name string
		at   time.Time
		want bool
	}{
		{name: "first firing", at: t0, want: true},
		{name: "inside cooldown", at: t0.Add(time.Hour), want: false},
		{name: "just before expiry", at: t0.Add(cooldown - time.Nanosecond), want: false},
		{name: "at expiry", at: t0.Add(cooldown), want: true},
		{name: "refreshed", at: t0.Add(cooldown + time.Minute), want: false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			clk.t = tc.at
			assert.Equal(t, tc.want, l.Admit(ctx, key, cooldown))
		})
	}
	last, ok := l.LastFired(key)
	require.True(t, ok)
	assert.Equal(t, t0.Add(cooldown), last)
}

func TestLedger_Concurrent(t *testing.T) {
	l := NewLedger()
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		admitted int
	)
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Admit(context.Background(), "k", time.Hour) {
				mu.Lock()
				admitted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, admitted)
}

func TestLedger_Persistence(t *testing.T) {
	ctx := context.Background()
	store := &memStore{}
	clk := &clock{t: t0}

	l := NewLedger(WithClock(clk.Now), WithLedgerStore(store))
	require.True(t, l.Admit(ctx, "a", time.Hour))
	assert.Equal(t, t0, store.entries["a"])

	// 重启后冷却仍然生效
	restarted := NewLedger(WithClock(clk.Now), WithLedgerStore(store))
	require.NoError(t, restarted.Restore(ctx))
	assert.Equal(t, 1, restarted.Len())
	clk.t = t0.Add(30 * time.Minute)
	assert.False(t, restarted.Admit(ctx, "a", time.Hour))

	// 持久化失败不影响内存中的判断
	store.saveErr = errors.New("disk full")
	assert.True(t, restarted.Admit(ctx, "b", time.Hour))
	assert.False(t, restarted.Admit(ctx, "b", time.Hour))

	require.NoError(t, restarted.Reset(ctx))
	assert.Zero(t, restarted.Len())
	assert.Empty(t, store.entries)
}

func TestLedger_Reset(t *testing.T) {
	ctx := context.Background()
	clk := &clock{t: t0}
	store := &memStore{}
	l := NewLedger(WithClock(clk.Now), WithLedgerStore(store))
	const key = "AAPL_1d_long_compression"

	require.True(t, l.Admit(ctx, key, time.Hour))
	require.False(t, l.Admit(ctx, key, time.Hour))
	gen := l.Generation()

	require.NoError(t, l.Reset(ctx))
	assert.Equal(t, 0, l.Len())
	assert.Empty(t, store.entries)
	assert.Equal(t, gen+1, l.Generation())

	// 重置后立即可以再次触发
	assert.True(t, l.Admit(ctx, key, time.Hour))
	assert.Len(t, store.entries, 1)
}
