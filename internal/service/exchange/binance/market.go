package binance

import (
	"context"
	"errors"
	"time"

	"github.com/KNICEX/signal-monitor/internal/service/exchange"
	"github.com/KNICEX/signal-monitor/pkg/decimalx"
	"github.com/adshao/go-binance/v2"
	"github.com/adshao/go-binance/v2/common"
	"golang.org/x/time/rate"
)

var _ exchange.MarketService = (*MarketService)(nil)

// 现货K线单次最多返回1000根
const maxKlineLimit = 1000

// binance: Invalid symbol.
const codeInvalidSymbol = -1121

type MarketService struct {
	cli     *binance.Client
	limiter *rate.Limiter
}

type Option func(svc *MarketService)

func WithRateLimit(perSecond float64, burst int) Option {
	return func(svc *MarketService) {
		svc.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// NewMarketService 创建现货市场数据服务
func NewMarketService(cli *binance.Client, opts ...Option) *MarketService {
	svc := &MarketService{
		cli:     cli,
		limiter: rate.NewLimiter(rate.Limit(10), 5),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

func (m *MarketService) convertKlines(klines []*binance.Kline) ([]exchange.Kline, error) {
	kls := make([]exchange.Kline, len(klines))
	for i, k := range klines {
		var err error
		kls[i] = exchange.Kline{
			OpenTime:  time.UnixMilli(k.OpenTime),
			CloseTime: time.UnixMilli(k.CloseTime),
		}
		if kls[i].Open, err = decimalx.FromString(k.Open); err != nil {
			return nil, err
		}
		if kls[i].Close, err = decimalx.FromString(k.Close); err != nil {
			return nil, err
		}
		if kls[i].High, err = decimalx.FromString(k.High); err != nil {
			return nil, err
		}
		if kls[i].Low, err = decimalx.FromString(k.Low); err != nil {
			return nil, err
		}
		if kls[i].Volume, err = decimalx.FromString(k.Volume); err != nil {
			return nil, err
		}
	}
	return kls, nil
}

func (m *MarketService) GetKlines(ctx context.Context, req exchange.GetKlinesReq) ([]exchange.Kline, error) {
	if err := m.limiter.Wait(ctx); err != nil {
		return nil, exchange.NewFetchError(req, err)
	}

	svc := m.cli.NewKlinesService().Symbol(req.Instrument.Symbol).Interval(req.Interval.ToString())
	if req.Limit > 0 {
		svc.Limit(min(req.Limit, maxKlineLimit))
	}
	res, err := svc.Do(ctx)
	if err != nil {
		var apiErr *common.APIError
		if errors.As(err, &apiErr) && apiErr.Code == codeInvalidSymbol {
			err = errors.Join(exchange.ErrUnknownSymbol, err)
		}
		return nil, exchange.NewFetchError(req, err)
	}

	kls, err := m.convertKlines(res)
	if err != nil {
		return nil, exchange.NewFetchError(req, err)
	}
	return kls, nil
}
