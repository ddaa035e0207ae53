package monitor

import (
	"context"
	"log/slog"
	"time"

	"github.com/KNICEX/signal-monitor/internal/entity"
	"github.com/KNICEX/signal-monitor/internal/metrics"
	"github.com/KNICEX/signal-monitor/internal/repo"
	"github.com/KNICEX/signal-monitor/internal/service/exchange"
	"github.com/bytedance/sonic"
)

// InstrumentSource 扫描开始时读取一次
type InstrumentSource interface {
	Snapshot(ctx context.Context) ([]exchange.Instrument, error)
}

// scanner 两个 monitor 共用的依赖和投递逻辑
type scanner struct {
	market   exchange.MarketService
	source   InstrumentSource
	ledger   *Ledger
	notifier Notifier

	signals      repo.SignalRepo
	metrics      *metrics.Recorder
	workers      int
	fetchTimeout time.Duration
	now          func() time.Time
}

type Option func(s *scanner)

// WithWorkers bounds the number of units evaluated in parallel.
func WithWorkers(n int) Option {
	return func(s *scanner) {
		if n > 0 {
			s.workers = n
		}
	}
}

func WithFetchTimeout(d time.Duration) Option {
	return func(s *scanner) {
		if d > 0 {
			s.fetchTimeout = d
		}
	}
}

func WithMetrics(m *metrics.Recorder) Option {
	return func(s *scanner) {
		s.metrics = m
	}
}

// WithSignalRepo 记录已投递的信号
func WithSignalRepo(r repo.SignalRepo) Option {
	return func(s *scanner) {
		s.signals = r
	}
}

func WithNow(now func() time.Time) Option {
	return func(s *scanner) {
		s.now = now
	}
}

func newScanner(market exchange.MarketService, source InstrumentSource, ledger *Ledger, notifier Notifier, opts ...Option) scanner {
	s := scanner{
		market:       market,
		source:       source,
		ledger:       ledger,
		notifier:     notifier,
		workers:      4,
		fetchTimeout: 30 * time.Second,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// fetch 只返回已收盘的K线
func (s *scanner) fetch(ctx context.Context, ins exchange.Instrument, tf exchange.Interval, limit int) ([]exchange.Kline, error) {
	ctx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	kLines, err := s.market.GetKlines(ctx, exchange.GetKlinesReq{
		Instrument: ins,
		Interval:   tf,
		Limit:      limit,
	})
	if err != nil {
		s.metrics.FetchError(string(ins.Class), string(tf))
		return nil, err
	}
	return exchange.ClosedKlines(kLines, s.now()), nil
}

// emit gates ev through the ledger and delivers it unless silent. A failed
// delivery still consumes the cooldown slot.
func (s *scanner) emit(ctx context.Context, ev *Event, destination string, cooldown time.Duration, silent bool) {
	if !s.ledger.Admit(ctx, ev.Key, cooldown) {
		ev.Suppressed = true
		s.metrics.Event(string(ev.Kind), metrics.OutcomeSuppressed)
		return
	}
	s.metrics.LedgerSize(s.ledger.Len())
	if silent {
		ev.Suppressed = true
		s.metrics.Event(string(ev.Kind), metrics.OutcomeSilent)
		return
	}

	if destination == "" {
		slog.Warn("destination not configured, skip notification", "route", ev.Kind.Route(),
			"symbol", ev.Instrument.Symbol, "timeframe", ev.Timeframe, "kind", ev.Kind)
		s.metrics.Event(string(ev.Kind), metrics.OutcomeFailed)
	} else if err := s.notifier.Deliver(ctx, destination, FormatMessage(*ev)); err != nil {
		slog.Error("failed to deliver notification", "symbol", ev.Instrument.Symbol, "timeframe", ev.Timeframe,
			"system", ev.System, "kind", ev.Kind, "error", err)
		s.metrics.Event(string(ev.Kind), metrics.OutcomeFailed)
	} else {
		ev.Delivered = true
		s.metrics.Event(string(ev.Kind), metrics.OutcomeDelivered)
	}
	s.record(ctx, *ev)
}

func (s *scanner) record(ctx context.Context, ev Event) {
	if s.signals == nil {
		return
	}
	detail, err := sonic.MarshalString(ev.Detail())
	if err != nil {
		detail = "{}"
	}
	_, err = s.signals.Create(ctx, entity.Signal{
		Class:     string(ev.Instrument.Class),
		Short:     ev.Instrument.Short,
		Symbol:    ev.Instrument.Symbol,
		Timeframe: string(ev.Timeframe),
		System:    ev.System,
		Kind:      string(ev.Kind),
		Key:       ev.Key,
		Detail:    detail,
		Delivered: ev.Delivered,
		CreatedAt: s.now(),
	})
	if err != nil {
		slog.Error("failed to save signal", "key", ev.Key, "error", err)
	}
}
