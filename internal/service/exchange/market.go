package exchange

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

type AssetClass string

const (
	Crypto AssetClass = "crypto"
	Equity AssetClass = "equity"
)

func (c AssetClass) Valid() bool {
	return c == Crypto || c == Equity
}

// Instrument 被监控的标的
type Instrument struct {
	Short  string     `json:"short"`  // BTC, AAPL, SPX
	Symbol string     `json:"symbol"` // 交易所原生代码: BTCUSDT, AAPL, ^GSPC
	Class  AssetClass `json:"class"`
}

func (i Instrument) String() string {
	return i.Symbol
}

// DisplayName drops the quote asset of crypto pairs.
func (i Instrument) DisplayName() string {
	s := strings.TrimSuffix(i.Symbol, "USDT")
	return strings.TrimSuffix(s, "BUSD")
}

type Interval string

func (i Interval) ToString() string {
	return string(i)
}

const (
	Interval5m  Interval = "5m"
	Interval15m Interval = "15m"
	Interval1h  Interval = "1h"
	Interval4h  Interval = "4h"
	Interval1d  Interval = "1d"
)

var intervalDurations = map[Interval]time.Duration{
	Interval5m:  5 * time.Minute,
	Interval15m: 15 * time.Minute,
	Interval1h:  time.Hour,
	Interval4h:  4 * time.Hour,
	Interval1d:  24 * time.Hour,
}

func (i Interval) Duration() time.Duration {
	return intervalDurations[i]
}

func (i Interval) Valid() bool {
	_, ok := intervalDurations[i]
	return ok
}

func ParseInterval(s string) (Interval, error) {
	i := Interval(strings.ToLower(strings.TrimSpace(s)))
	if !i.Valid() {
		return "", fmt.Errorf("unsupported interval %q", s)
	}
	return i, nil
}

type Kline struct {
	OpenTime  time.Time
	CloseTime time.Time
	Open      decimal.Decimal
	Close     decimal.Decimal
	High      decimal.Decimal
	Low       decimal.Decimal
	Volume    decimal.Decimal // 成交量
}

// Closed reports whether the bar had finished forming at now.
func (k Kline) Closed(now time.Time) bool {
	return k.CloseTime.Before(now)
}

// ClosedKlines 裁剪掉末尾尚未收盘的K线
func ClosedKlines(kLines []Kline, now time.Time) []Kline {
	end := len(kLines)
	for end > 0 && !kLines[end-1].Closed(now) {
		end--
	}
	return kLines[:end]
}

func Closes(kLines []Kline) []float64 {
	return lo.Map(kLines, func(item Kline, index int) float64 {
		return item.Close.InexactFloat64()
	})
}

func Volumes(kLines []Kline) []float64 {
	return lo.Map(kLines, func(item Kline, index int) float64 {
		return item.Volume.InexactFloat64()
	})
}

type GetKlinesReq struct {
	Instrument Instrument
	Interval   Interval
	// Limit 最近N根K线, 包含尚未收盘的一根
	Limit int
}

type MarketService interface {
	GetKlines(ctx context.Context, req GetKlinesReq) ([]Kline, error)
}

// SymbolVerifier 添加标的前确认交易所有这个代码, 返回最新价
type SymbolVerifier interface {
	Verify(ctx context.Context, ins Instrument) (decimal.Decimal, error)
}

var _ MarketService = (*MarketRouter)(nil)

// MarketRouter dispatches a request to the backend of the instrument's asset class.
type MarketRouter struct {
	backends map[AssetClass]MarketService
}

func NewMarketRouter(crypto, equity MarketService) *MarketRouter {
	return &MarketRouter{
		backends: map[AssetClass]MarketService{
			Crypto: crypto,
			Equity: equity,
		},
	}
}

func (r *MarketRouter) GetKlines(ctx context.Context, req GetKlinesReq) ([]Kline, error) {
	backend, ok := r.backends[req.Instrument.Class]
	if !ok || backend == nil {
		return nil, NewFetchError(req, fmt.Errorf("no market backend for asset class %q", req.Instrument.Class))
	}
	return backend.GetKlines(ctx, req)
}
