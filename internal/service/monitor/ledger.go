package monitor

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// LedgerStore 冷却账本的持久化
type LedgerStore interface {
	Load(ctx context.Context) (map[string]time.Time, error)
	Save(ctx context.Context, key string, firedAt time.Time) error
	Reset(ctx context.Context) error
}

// Ledger remembers when each alert key last fired. Admit is the only
// transition and is atomic per key.
type Ledger struct {
	mu      sync.Mutex
	entries map[string]time.Time
	store   LedgerStore
	now     func() time.Time
	// gen 每次 Reset 加一
	gen uint64
}

type LedgerOption func(l *Ledger)

func WithLedgerStore(store LedgerStore) LedgerOption {
	return func(l *Ledger) {
		l.store = store
	}
}

func WithClock(now func() time.Time) LedgerOption {
	return func(l *Ledger) {
		l.now = now
	}
}

func NewLedger(opts ...LedgerOption) *Ledger {
	l := &Ledger{
		entries: make(map[string]time.Time),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Restore loads persisted entries, keeping the later timestamp when a key
// exists in both places.
func (l *Ledger) Restore(ctx context.Context) error {
	if l.store == nil {
		return nil
	}
	loaded, err := l.store.Load(ctx)
	if err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	for k, t := range loaded {
		if cur, ok := l.entries[k]; !ok || t.After(cur) {
			l.entries[k] = t
		}
	}
	return nil
}

// Admit marks key as fired and returns true when it has never fired or
// its last firing is at least cooldown ago. Otherwise the ledger is left
// untouched and Admit returns false.
func (l *Ledger) Admit(ctx context.Context, key string, cooldown time.Duration) bool {
	l.mu.Lock()
	now := l.now()
	if last, ok := l.entries[key]; ok && now.Sub(last) < cooldown {
		l.mu.Unlock()
		return false
	}
	l.entries[key] = now
	l.mu.Unlock()

	if l.store != nil {
		if err := l.store.Save(ctx, key, now); err != nil {
			slog.Error("failed to persist alert ledger entry", "key", key, "error", err)
		}
	}
	return true
}

func (l *Ledger) LastFired(key string) (time.Time, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	t, ok := l.entries[key]
	return t, ok
}

func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Generation changes on every Reset.
func (l *Ledger) Generation() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.gen
}

// Reset forgets every entry, in memory and in the store. The MA task treats
// a reset ledger as a fresh start and warms up again.
func (l *Ledger) Reset(ctx context.Context) error {
	l.mu.Lock()
	l.entries = make(map[string]time.Time)
	l.gen++
	l.mu.Unlock()
	if l.store != nil {
		return l.store.Reset(ctx)
	}
	return nil
}
