package monitor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/KNICEX/signal-monitor/internal/entity"
	"github.com/KNICEX/signal-monitor/internal/repo"
	"github.com/KNICEX/signal-monitor/internal/service/exchange"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

var (
	ErrInvalidSymbol = errors.New("invalid symbol")
	ErrNotTracked    = errors.New("instrument not tracked")
)

var cryptoQuotes = []string{"USDT", "BUSD", "BTC", "ETH"}

// DefaultInstruments 首次启动时写入
var DefaultInstruments = []exchange.Instrument{
	{Short: "BTC", Symbol: "BTCUSDT", Class: exchange.Crypto},
	{Short: "ETH", Symbol: "ETHUSDT", Class: exchange.Crypto},
	{Short: "AAPL", Symbol: "AAPL", Class: exchange.Equity},
	{Short: "MSFT", Symbol: "MSFT", Class: exchange.Equity},
	{Short: "SPX", Symbol: "^GSPC", Class: exchange.Equity},
}

// Watchlist 被监控标的集合, 扫描开始时取一次快照
type Watchlist struct {
	repo      repo.InstrumentRepo
	verifiers map[exchange.AssetClass]exchange.SymbolVerifier
}

type WatchlistOption func(w *Watchlist)

// WithVerifier checks new instruments of class against the venue before
// they are stored.
func WithVerifier(class exchange.AssetClass, v exchange.SymbolVerifier) WatchlistOption {
	return func(w *Watchlist) {
		w.verifiers[class] = v
	}
}

func NewWatchlist(repo repo.InstrumentRepo, opts ...WatchlistOption) *Watchlist {
	w := &Watchlist{
		repo:      repo,
		verifiers: make(map[exchange.AssetClass]exchange.SymbolVerifier),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Seed writes DefaultInstruments when the store is empty.
func (w *Watchlist) Seed(ctx context.Context) error {
	n, err := w.repo.Count(ctx)
	if err != nil || n > 0 {
		return err
	}
	// 默认标的不走交易所校验, 启动时不依赖网络
	for _, ins := range DefaultInstruments {
		if _, err := w.add(ctx, ins, false); err != nil {
			return err
		}
	}
	return nil
}

func normalize(class exchange.AssetClass, short, symbol string) (exchange.Instrument, error) {
	if !class.Valid() {
		return exchange.Instrument{}, fmt.Errorf("%w: unknown asset class %q", ErrInvalidSymbol, class)
	}
	short = strings.ToUpper(strings.TrimSpace(short))
	symbol = strings.TrimSpace(symbol)
	if short == "" || symbol == "" {
		return exchange.Instrument{}, fmt.Errorf("%w: empty symbol", ErrInvalidSymbol)
	}
	if class == exchange.Crypto {
		symbol = strings.ToUpper(symbol)
		if !lo.SomeBy(cryptoQuotes, func(q string) bool { return strings.HasSuffix(symbol, q) && len(symbol) > len(q) }) {
			return exchange.Instrument{}, fmt.Errorf("%w: %s must end with one of %v", ErrInvalidSymbol, symbol, cryptoQuotes)
		}
	}
	return exchange.Instrument{Short: short, Symbol: symbol, Class: class}, nil
}

// Add returns false when the short symbol is already tracked for class.
func (w *Watchlist) Add(ctx context.Context, class exchange.AssetClass, short, symbol string) (bool, error) {
	ins, err := normalize(class, short, symbol)
	if err != nil {
		return false, err
	}
	return w.add(ctx, ins, true)
}

func (w *Watchlist) add(ctx context.Context, ins exchange.Instrument, verify bool) (bool, error) {
	ok, err := w.Exists(ctx, ins.Class, ins.Short)
	if err != nil || ok {
		return false, err
	}
	if v := w.verifiers[ins.Class]; verify && v != nil {
		if _, err := v.Verify(ctx, ins); err != nil {
			if errors.Is(err, exchange.ErrUnknownSymbol) {
				return false, fmt.Errorf("%w: %v", ErrInvalidSymbol, err)
			}
			return false, err
		}
	}
	err = w.repo.Create(ctx, entity.Instrument{
		Class:  string(ins.Class),
		Short:  ins.Short,
		Symbol: ins.Symbol,
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

// Remove returns false when nothing was tracked under short.
func (w *Watchlist) Remove(ctx context.Context, class exchange.AssetClass, short string) (bool, error) {
	return w.repo.Delete(ctx, string(class), strings.ToUpper(strings.TrimSpace(short)))
}

func (w *Watchlist) Exists(ctx context.Context, class exchange.AssetClass, short string) (bool, error) {
	_, err := w.Resolve(ctx, class, short)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrNotTracked):
		return false, nil
	default:
		return false, err
	}
}

// Resolve maps a short symbol to the tracked instrument.
func (w *Watchlist) Resolve(ctx context.Context, class exchange.AssetClass, short string) (exchange.Instrument, error) {
	e, err := w.repo.FindByShort(ctx, string(class), strings.ToUpper(strings.TrimSpace(short)))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return exchange.Instrument{}, fmt.Errorf("%w: %s %s", ErrNotTracked, class, short)
	}
	if err != nil {
		return exchange.Instrument{}, err
	}
	return toInstrument(e), nil
}

func (w *Watchlist) List(ctx context.Context, class exchange.AssetClass) ([]exchange.Instrument, error) {
	list, err := w.repo.FindByClass(ctx, string(class))
	if err != nil {
		return nil, err
	}
	return lo.Map(list, func(e entity.Instrument, _ int) exchange.Instrument {
		return toInstrument(e)
	}), nil
}

// Snapshot returns every tracked instrument, crypto first.
func (w *Watchlist) Snapshot(ctx context.Context) ([]exchange.Instrument, error) {
	list, err := w.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return lo.Map(list, func(e entity.Instrument, _ int) exchange.Instrument {
		return toInstrument(e)
	}), nil
}

func (w *Watchlist) Count(ctx context.Context) (map[exchange.AssetClass]int, error) {
	all, err := w.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	res := map[exchange.AssetClass]int{exchange.Crypto: 0, exchange.Equity: 0}
	for k, v := range lo.CountValuesBy(all, func(ins exchange.Instrument) exchange.AssetClass { return ins.Class }) {
		res[k] = v
	}
	return res, nil
}

func toInstrument(e entity.Instrument) exchange.Instrument {
	return exchange.Instrument{
		Short:  e.Short,
		Symbol: e.Symbol,
		Class:  exchange.AssetClass(e.Class),
	}
}
