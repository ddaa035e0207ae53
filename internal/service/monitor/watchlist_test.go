package monitor

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/KNICEX/signal-monitor/internal/repo"
	"github.com/KNICEX/signal-monitor/internal/service/exchange"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newWatchlist(t *testing.T, opts ...WatchlistOption) *Watchlist {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "watchlist.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, repo.InitTables(db))
	return NewWatchlist(repo.NewInstrumentRepo(db), opts...)
}

func TestWatchlist_Seed(t *testing.T) {
	ctx := context.Background()
	w := newWatchlist(t)

	require.NoError(t, w.Seed(ctx))
	require.NoError(t, w.Seed(ctx))

	count, err := w.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[exchange.AssetClass]int{exchange.Crypto: 2, exchange.Equity: 3}, count)

	spx, err := w.Resolve(ctx, exchange.Equity, "spx")
	require.NoError(t, err)
	assert.Equal(t, "^GSPC", spx.Symbol)

	all, err := w.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, btc, all[0])
}

func TestWatchlist_AddRemove(t *testing.T) {
	ctx := context.Background()
	w := newWatchlist(t)

	testCases := []struct {
		name    string
		class   exchange.AssetClass
		short   string
		symbol  string
		added   bool
		wantErr error
	}{
		{name: "crypto", class: exchange.Crypto, short: "sol", symbol: "solusdt", added: true},
		{name: "duplicate", class: exchange.Crypto, short: "SOL", symbol: "SOLBUSD", added: false},
		{name: "btc quote", class: exchange.Crypto, short: "ETHBTC", symbol: "ETHBTC", added: true},
		{name: "bad quote", class: exchange.Crypto, short: "DOGE", symbol: "DOGEEUR", wantErr: ErrInvalidSymbol},
		{name: "quote only", class: exchange.Crypto, short: "X", symbol: "USDT", wantErr: ErrInvalidSymbol},
		{name: "equity", class: exchange.Equity, short: "nvda", symbol: "NVDA", added: true},
		{name: "blank", class: exchange.Equity, short: "X", symbol: "  ", wantErr: ErrInvalidSymbol},
		{name: "unknown class", class: "forex", short: "EUR", symbol: "EURUSD", wantErr: ErrInvalidSymbol},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			added, err := w.Add(ctx, tc.class, tc.short, tc.symbol)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.added, added)
		})
	}

	sol, err := w.Resolve(ctx, exchange.Crypto, "SOL")
	require.NoError(t, err)
	assert.Equal(t, "SOLUSDT", sol.Symbol)

	ok, err := w.Exists(ctx, exchange.Crypto, "sol")
	require.NoError(t, err)
	assert.True(t, ok)

	removed, err := w.Remove(ctx, exchange.Crypto, "sol")
	require.NoError(t, err)
	assert.True(t, removed)
	removed, err = w.Remove(ctx, exchange.Crypto, "sol")
	require.NoError(t, err)
	assert.False(t, removed)

	_, err = w.Resolve(ctx, exchange.Crypto, "SOL")
	assert.ErrorIs(t, err, ErrNotTracked)

	list, err := w.List(ctx, exchange.Equity)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

type verifierFunc func(ctx context.Context, ins exchange.Instrument) (decimal.Decimal, error)

func (f verifierFunc) Verify(ctx context.Context, ins exchange.Instrument) (decimal.Decimal, error) {
	return f(ctx, ins)
}

func TestWatchlist_Verifier(t *testing.T) {
	ctx := context.Background()
	var calls []string
	w := newWatchlist(t, WithVerifier(exchange.Crypto, verifierFunc(func(_ context.Context, ins exchange.Instrument) (decimal.Decimal, error) {
		calls = append(calls, ins.Symbol)
		switch ins.Symbol {
		case "SOLUSDT":
			return decimal.NewFromInt(140), nil
		case "FOOUSDT":
			return decimal.Zero, exchange.ErrUnknownSymbol
		default:
			return decimal.Zero, errors.New("connection reset")
		}
	})))

	// 种子数据不校验
	require.NoError(t, w.Seed(ctx))
	assert.Empty(t, calls)

	ok, err := w.Add(ctx, exchange.Crypto, "SOL", "SOLUSDT")
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = w.Add(ctx, exchange.Crypto, "FOO", "FOOUSDT")
	assert.ErrorIs(t, err, ErrInvalidSymbol)

	_, err = w.Add(ctx, exchange.Crypto, "BAR", "BARUSDT")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidSymbol)

	// 股票没有注册校验
	ok, err = w.Add(ctx, exchange.Equity, "NVDA", "NVDA")
	require.NoError(t, err)
	assert.True(t, ok)

	assert.Equal(t, []string{"SOLUSDT", "FOOUSDT", "BARUSDT"}, calls)
}
