package monitor

import (
	"context"
	"time"

	"github.com/KNICEX/signal-monitor/internal/service/exchange"
	"github.com/KNICEX/signal-monitor/internal/service/notification"
	"github.com/KNICEX/signal-monitor/internal/service/settings"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type mockMarket struct {
	mock.Mock
}

func (m *mockMarket) GetKlines(ctx context.Context, req exchange.GetKlinesReq) ([]exchange.Kline, error) {
	args := m.Called(ctx, req)
	kLines, _ := args.Get(0).([]exchange.Kline)
	return kLines, args.Error(1)
}

func forSymbol(symbol string) any {
	return mock.MatchedBy(func(req exchange.GetKlinesReq) bool {
		return req.Instrument.Symbol == symbol
	})
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Deliver(ctx context.Context, destination string, msg notification.Message) error {
	return m.Called(ctx, destination, msg).Error(0)
}

type staticSource []exchange.Instrument

func (s staticSource) Snapshot(ctx context.Context) ([]exchange.Instrument, error) {
	return s, nil
}

type maCfg settings.MASettings

func (c maCfg) Get() settings.MASettings {
	return settings.MASettings(c)
}

type volumeCfg settings.VolumeSettings

func (c volumeCfg) Get() settings.VolumeSettings {
	return settings.VolumeSettings(c)
}

// clock 测试用的可调时钟
type clock struct {
	t time.Time
}

func (c *clock) Now() time.Time {
	return c.t
}

var (
	btc  = exchange.Instrument{Short: "BTC", Symbol: "BTCUSDT", Class: exchange.Crypto}
	aapl = exchange.Instrument{Short: "AAPL", Symbol: "AAPL", Class: exchange.Equity}
	t0   = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
)

// makeKlines 生成收盘价为 closes 的日线, 最后一根收盘于 t0 之前; 另外追加一根未收盘的K线
func makeKlines(closes []float64, volumes []float64) []exchange.Kline {
	d := exchange.Interval1d.Duration()
	start := t0.Add(-time.Duration(len(closes)) * d)
	res := make([]exchange.Kline, 0, len(closes)+1)
	for i, c := range closes {
		open := start.Add(time.Duration(i) * d)
		vol := 1.0
		if volumes != nil {
			vol = volumes[i]
		}
		res = append(res, exchange.Kline{
			OpenTime:  open,
			CloseTime: open.Add(d - time.Millisecond),
			Open:      decimal.NewFromFloat(c),
			Close:     decimal.NewFromFloat(c),
			High:      decimal.NewFromFloat(c),
			Low:       decimal.NewFromFloat(c),
			Volume:    decimal.NewFromFloat(vol),
		})
	}
	// 未收盘, 数值离谱, 一旦被计算进去测试就会失败
	res = append(res, exchange.Kline{
		OpenTime:  t0,
		CloseTime: t0.Add(d - time.Millisecond),
		Open:      decimal.NewFromInt(1),
		Close:     decimal.NewFromInt(1),
		High:      decimal.NewFromInt(1),
		Low:       decimal.NewFromInt(1),
		Volume:    decimal.NewFromInt(1_000_000_000),
	})
	return res
}

// breakout 399 根 100 之后最后一根 110: 短周期系统所有均线同时上穿
func breakout() []float64 {
	closes := make([]float64, 400)
	for i := range closes {
		closes[i] = 100
	}
	closes[len(closes)-1] = 110
	return closes
}

func defaultMA() settings.MASettings {
	cfg, err := settings.Defaults[settings.MASettings]()
	if err != nil {
		panic(err)
	}
	cfg.Timeframes = []string{"1d"}
	cfg.Destinations = settings.Destinations{Cross: "cross", Alignment: "alignment", Compression: "compression"}
	return cfg
}
