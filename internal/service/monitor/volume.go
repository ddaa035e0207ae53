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

type VolumeSettingsSource interface {
	Get() settings.VolumeSettings
}

// VolumeMonitor 成交量异动监控, 不区分均线系统
type VolumeMonitor struct {
	scanner
	settings VolumeSettingsSource
}

func NewVolumeMonitor(market exchange.MarketService, source InstrumentSource, cfg VolumeSettingsSource,
	ledger *Ledger, notifier Notifier, opts ...Option) *VolumeMonitor {
	return &VolumeMonitor{
		scanner:  newScanner(market, source, ledger, notifier, opts...),
		settings: cfg,
	}
}

// VolumeStatus 某个标的当前的成交量读数
type VolumeStatus struct {
	Instrument exchange.Instrument     `json:"instrument"`
	Timeframe  exchange.Interval       `json:"timeframe"`
	Price      float64                 `json:"price"`
	BarTime    time.Time               `json:"bar_time"`
	Reading    indicator.VolumeReading `json:"reading"`
}

func thresholds(cfg settings.VolumeSettings) indicator.Thresholds {
	return indicator.Thresholds{
		Moderate: cfg.Thresholds.Moderate,
		High:     cfg.Thresholds.High,
		Critical: cfg.Thresholds.Critical,
	}
}

func (m *VolumeMonitor) read(ctx context.Context, cfg settings.VolumeSettings, ins exchange.Instrument) (VolumeStatus, error) {
	tf := cfg.Interval()
	kLines, err := m.fetch(ctx, ins, tf, indicator.WindowSize(indicator.VolumeLengths))
	if err != nil {
		return VolumeStatus{}, err
	}
	st := VolumeStatus{Instrument: ins, Timeframe: tf}
	if len(kLines) == 0 {
		return st, indicator.ErrInsufficientData
	}
	last := kLines[len(kLines)-1]
	st.Price = last.Close.InexactFloat64()
	st.BarTime = last.OpenTime
	st.Reading, err = indicator.ReadVolume(exchange.Volumes(kLines), indicator.VolumeLengths,
		cfg.ReferencePeriods.Short, cfg.ReferencePeriods.Long, thresholds(cfg))
	return st, err
}

// Scan checks every tracked instrument for a volume spike on the last closed bar.
func (m *VolumeMonitor) Scan(ctx context.Context) ([]Event, error) {
	cfg := m.settings.Get()
	if !cfg.Enabled {
		return nil, nil
	}
	start := time.Now()
	instruments, err := m.source.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	p := pool.NewWithResults[*Event]().WithMaxGoroutines(m.workers)
	for _, ins := range instruments {
		p.Go(func() *Event {
			return m.scanUnit(ctx, cfg, ins)
		})
	}
	events := lo.FilterMap(p.Wait(), func(ev *Event, _ int) (Event, bool) {
		if ev == nil {
			return Event{}, false
		}
		return *ev, true
	})
	slices.SortStableFunc(events, func(a, b Event) int {
		return strings.Compare(a.Key, b.Key)
	})

	m.metrics.ScanDone("volume", false, time.Since(start))
	slog.Info("volume scan finished", "instruments", len(instruments), "spikes", len(events), "elapsed", time.Since(start))
	return events, ctx.Err()
}

func (m *VolumeMonitor) scanUnit(ctx context.Context, cfg settings.VolumeSettings, ins exchange.Instrument) *Event {
	if ctx.Err() != nil {
		return nil
	}
	st, err := m.read(ctx, cfg, ins)
	switch {
	case errors.Is(err, indicator.ErrInsufficientData):
		m.metrics.InsufficientData("volume")
		slog.Warn("skip volume check", "symbol", ins.Symbol, "timeframe", cfg.Timeframe, "reason", "insufficient data")
		return nil
	case err != nil:
		slog.Error("failed to read volume", "symbol", ins.Symbol, "timeframe", cfg.Timeframe, "error", err)
		return nil
	}
	if st.Reading.Tier == indicator.TierNone {
		return nil
	}

	ev := &Event{
		Instrument: ins,
		Timeframe:  st.Timeframe,
		Kind:       KindVolumeSpike,
		Key:        volumeKey(ins, st.Timeframe),
		Price:      st.Price,
		BarTime:    st.BarTime,
		Averages:   st.Reading.Averages,
		Volume:     &st.Reading,
		Tier:       st.Reading.Tier,
	}
	m.emit(ctx, ev, cfg.Destination, cfg.Cooldown(), false)
	return ev
}

// Status reads the current volume of every tracked instrument without alerting.
func (m *VolumeMonitor) Status(ctx context.Context) ([]VolumeStatus, error) {
	cfg := m.settings.Get()
	instruments, err := m.source.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	p := pool.NewWithResults[*VolumeStatus]().WithMaxGoroutines(m.workers)
	for _, ins := range instruments {
		p.Go(func() *VolumeStatus {
			st, err := m.read(ctx, cfg, ins)
			if err != nil && !errors.Is(err, indicator.ErrInsufficientData) {
				slog.Error("failed to read volume", "symbol", ins.Symbol, "error", err)
				return nil
			}
			return &st
		})
	}
	res := lo.FilterMap(p.Wait(), func(st *VolumeStatus, _ int) (VolumeStatus, bool) {
		if st == nil {
			return VolumeStatus{}, false
		}
		return *st, true
	})
	// pool 不保证顺序
	slices.SortStableFunc(res, func(a, b VolumeStatus) int {
		if c := strings.Compare(string(a.Instrument.Class), string(b.Instrument.Class)); c != 0 {
			return c
		}
		return strings.Compare(a.Instrument.Symbol, b.Instrument.Symbol)
	})
	return res, nil
}
