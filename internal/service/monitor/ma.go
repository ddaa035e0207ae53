package monitor

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/KNICEX/signal-monitor/internal/service/exchange"
	"github.com/KNICEX/signal-monitor/internal/service/indicator"
	"github.com/KNICEX/signal-monitor/internal/service/settings"
	"github.com/samber/lo"
	"github.com/sourcegraph/conc/pool"
)

type MASettingsSource interface {
	Get() settings.MASettings
}

// MAMonitor 均线交叉/排列/压缩监控
type MAMonitor struct {
	scanner
	settings MASettingsSource
}

func NewMAMonitor(market exchange.MarketService, source InstrumentSource, cfg MASettingsSource,
	ledger *Ledger, notifier Notifier, opts ...Option) *MAMonitor {
	return &MAMonitor{
		scanner:  newScanner(market, source, ledger, notifier, opts...),
		settings: cfg,
	}
}

// fetchLimit 两个系统共用一次拉取, 多取一根给未收盘的K线
func fetchLimit() int {
	return lo.Max(lo.Map(Systems(), func(s System, _ int) int {
		return indicator.WindowSize(s.Lengths)
	})) + 1
}

// Scan evaluates every timeframe, instrument and system once. A failing unit
// is logged and skipped. The returned events include the suppressed ones.
func (m *MAMonitor) Scan(ctx context.Context, silent bool) ([]Event, error) {
	events, _, err := m.scan(ctx, silent)
	return events, err
}

type unitResult struct {
	events  []Event
	fetched bool
}

// scan also reports how many units got their bars
func (m *MAMonitor) scan(ctx context.Context, silent bool) ([]Event, int, error) {
	start := time.Now()
	cfg := m.settings.Get()
	instruments, err := m.source.Snapshot(ctx)
	if err != nil {
		return nil, 0, err
	}

	p := pool.NewWithResults[unitResult]().WithMaxGoroutines(m.workers)
	for _, tf := range cfg.Intervals() {
		for _, ins := range instruments {
			p.Go(func() unitResult {
				events, ok := m.scanUnit(ctx, cfg, ins, tf, silent)
				return unitResult{events: events, fetched: ok}
			})
		}
	}
	results := p.Wait()
	fetched := lo.CountBy(results, func(r unitResult) bool { return r.fetched })
	events := lo.FlatMap(results, func(r unitResult, _ int) []Event { return r.events })
	slices.SortStableFunc(events, func(a, b Event) int {
		return strings.Compare(a.Key, b.Key)
	})

	m.metrics.ScanDone("ma", silent, time.Since(start))
	slog.Info("ma scan finished", "silent", silent, "instruments", len(instruments), "fetched", fetched,
		"events", len(events), "delivered", lo.CountBy(events, func(e Event) bool { return e.Delivered }),
		"elapsed", time.Since(start))
	return events, fetched, ctx.Err()
}

func (m *MAMonitor) scanUnit(ctx context.Context, cfg settings.MASettings, ins exchange.Instrument, tf exchange.Interval, silent bool) ([]Event, bool) {
	if ctx.Err() != nil {
		return nil, false
	}
	kLines, err := m.fetch(ctx, ins, tf, fetchLimit())
	if err != nil {
		slog.Error("failed to get k lines", "symbol", ins.Symbol, "timeframe", tf, "error", err)
		return nil, false
	}

	var res []Event
	for _, sys := range Systems() {
		events, err := Evaluate(ins, tf, sys, kLines, cfg)
		if errors.Is(err, indicator.ErrInsufficientData) {
			m.metrics.InsufficientData("ma")
			slog.Warn("skip ma analysis", "symbol", ins.Symbol, "timeframe", tf, "system", sys.Name,
				"reason", "insufficient data", "bars", len(kLines))
		}
		for i := range events {
			m.emit(ctx, &events[i], cfg.Destination(events[i].Kind.Route()), cfg.Cooldown(), silent)
		}
		res = append(res, events...)
	}
	return res, true
}

// Evaluate classifies the latest closed bar of one system. Crossovers only
// need their own two lengths. Alignment and compression need every length
// and report ErrInsufficientData otherwise, alongside any crossover events.
func Evaluate(ins exchange.Instrument, tf exchange.Interval, sys System, kLines []exchange.Kline, cfg settings.MASettings) ([]Event, error) {
	if len(kLines) == 0 {
		return nil, indicator.ErrInsufficientData
	}
	closes := exchange.Closes(kLines)
	ma := indicator.SMA(closes, sys.Lengths...)
	snap := ma.LatestSnapshot()
	last := kLines[len(kLines)-1]

	base := Event{
		Instrument: ins,
		Timeframe:  tf,
		System:     sys.Name,
		Price:      closes[len(closes)-1],
		BarTime:    last.OpenTime,
		Averages:   snap,
	}

	var events []Event
	if cfg.AlertTypes.Crossover {
		for _, p := range sys.Pairs() {
			d := indicator.DetectCross(ma, p.Fast, p.Slow)
			if d == indicator.CrossNone {
				continue
			}
			ev := base
			ev.Kind = crossKind(p, d)
			ev.Key = crossKey(ins, tf, sys.Name, p, ev.Kind)
			ev.Fast, ev.Slow, ev.Direction = p.Fast, p.Slow, d
			ev.Priority = lo.ToPtr(indicator.PairPriority(p))
			events = append(events, ev)
		}
		for _, mc := range indicator.DetectMultiCross(ma, sys.Lengths) {
			ev := base
			ev.Kind = KindMultiCross
			ev.Key = multiCrossKey(ins, tf, sys.Name, mc.Fast, mc.Direction)
			ev.Fast, ev.Slows, ev.Direction = mc.Fast, mc.Slows, mc.Direction
			ev.Priority = lo.ToPtr(indicator.MultiCrossPriority(mc, sys.Lengths))
			events = append(events, ev)
		}
	}

	align, err := indicator.Analyze(snap, sys.Lengths, base.Price, cfg.CompressionThreshold)
	if err != nil {
		return events, err
	}
	if cfg.AlertTypes.Alignment && align.Ordering != indicator.OrderingNeither {
		ev := base
		ev.Kind = KindBullishAlignment
		if align.Ordering == indicator.OrderingBearish {
			ev.Kind = KindBearishAlignment
		}
		ev.Key = stateKey(ins, tf, sys.Name, ev.Kind)
		events = append(events, ev)
	}
	if cfg.AlertTypes.Compression && align.Compressed {
		ev := base
		ev.Kind = KindCompression
		ev.Key = stateKey(ins, tf, sys.Name, ev.Kind)
		ev.CompressionPct = align.CompressionPct
		events = append(events, ev)
	}
	return events, nil
}

func crossKind(p indicator.Pair, d indicator.Direction) Kind {
	up := d == indicator.CrossUp
	switch {
	case p == goldenPair && up:
		return KindGoldenCross
	case p == goldenPair:
		return KindDeathCross
	case up:
		return KindBullishCross
	default:
		return KindBearishCross
	}
}
