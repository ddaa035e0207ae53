package monitor

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/KNICEX/signal-monitor/internal/service/exchange"
	"github.com/KNICEX/signal-monitor/internal/service/indicator"
	"github.com/KNICEX/signal-monitor/internal/service/notification"
	"github.com/KNICEX/signal-monitor/internal/service/settings"
)

type Kind string

const (
	KindGoldenCross      Kind = "golden_cross"
	KindDeathCross       Kind = "death_cross"
	KindBullishCross     Kind = "bullish_cross"
	KindBearishCross     Kind = "bearish_cross"
	KindMultiCross       Kind = "multi_cross"
	KindBullishAlignment Kind = "bullish_alignment"
	KindBearishAlignment Kind = "bearish_alignment"
	KindCompression      Kind = "compression"
	KindVolumeSpike      Kind = "volume_spike"
)

// Route 信号类别, 决定开关和投递目标
func (k Kind) Route() string {
	switch k {
	case KindGoldenCross, KindDeathCross, KindBullishCross, KindBearishCross, KindMultiCross:
		return settings.KindCross
	case KindBullishAlignment, KindBearishAlignment:
		return settings.KindAlignment
	case KindCompression:
		return settings.KindCompression
	default:
		return settings.KindVolume
	}
}

// System 一组一起评估的均线周期
type System struct {
	Name    string
	Lengths []int
}

var (
	ShortSystem = System{Name: "short", Lengths: []int{13, 25, 32, 50, 100, 200, 300}}
	LongSystem  = System{Name: "long", Lengths: []int{112, 336, 375, 448, 750}}
)

// goldenPair 唯一会被称为金叉/死叉的组合
var goldenPair = indicator.Pair{Fast: 50, Slow: 200}

func Systems() []System {
	return []System{ShortSystem, LongSystem}
}

func SystemByName(name string) (System, bool) {
	for _, s := range Systems() {
		if strings.EqualFold(s.Name, name) {
			return s, true
		}
	}
	return System{}, false
}

// Pairs returns the designated crossover pairs: every adjacent pair plus
// 50/200 when the system contains both.
func (s System) Pairs() []indicator.Pair {
	pairs := indicator.AdjacentPairs(s.Lengths)
	if slices.Contains(s.Lengths, goldenPair.Fast) && slices.Contains(s.Lengths, goldenPair.Slow) &&
		!slices.Contains(pairs, goldenPair) {
		pairs = append(pairs, goldenPair)
	}
	return pairs
}

// Event 一次满足条件的信号, 无论是否因冷却被抑制都会返回给调用方
type Event struct {
	Instrument exchange.Instrument `json:"instrument"`
	Timeframe  exchange.Interval   `json:"timeframe"`
	System     string              `json:"system,omitempty"`
	Kind       Kind                `json:"kind"`
	Key        string              `json:"key"`
	Price      float64             `json:"price"`
	BarTime    time.Time           `json:"bar_time"`

	// 均线交叉
	Fast      int                 `json:"fast,omitempty"`
	Slow      int                 `json:"slow,omitempty"`
	Slows     []int               `json:"slows,omitempty"`
	Direction indicator.Direction `json:"direction,omitempty"`
	Priority  *indicator.Priority `json:"priority,omitempty"`

	CompressionPct float64            `json:"compression_pct,omitempty"`
	Averages       indicator.Snapshot `json:"averages,omitempty"`

	// 成交量
	Volume *indicator.VolumeReading `json:"volume,omitempty"`
	Tier   indicator.Tier           `json:"tier,omitempty"`

	// Suppressed is set when the event was not delivered, either because of
	// the cooldown or because the scan was silent.
	Suppressed bool `json:"suppressed"`
	Delivered  bool `json:"delivered"`
}

// Detail 写入信号历史的明细
func (e Event) Detail() map[string]any {
	d := map[string]any{
		"price": e.Price,
	}
	switch {
	case e.Volume != nil:
		d["tier"] = e.Tier
		d["current_volume"] = e.Volume.Current
		d["short_deviation"] = e.Volume.ShortDeviation
		d["long_deviation"] = e.Volume.LongDeviation
	case e.Kind == KindCompression:
		d["compression_pct"] = e.CompressionPct
	case e.Fast > 0:
		d["fast"] = e.Fast
		d["slow"] = e.Slow
		d["slows"] = e.Slows
		d["direction"] = e.Direction
	}
	if e.Priority != nil {
		d["priority"] = e.Priority.Label
	}
	return d
}

// Key formats: symbol_tf_system_fast_slow_kind for crossovers,
// symbol_tf_system_multi_fast_direction for composite crossings and
// symbol_tf_system_kind for alignment and compression.
func crossKey(ins exchange.Instrument, tf exchange.Interval, system string, p indicator.Pair, kind Kind) string {
	return fmt.Sprintf("%s_%s_%s_%d_%d_%s", ins.Symbol, tf, system, p.Fast, p.Slow, kind)
}

func multiCrossKey(ins exchange.Instrument, tf exchange.Interval, system string, fast int, d indicator.Direction) string {
	return fmt.Sprintf("%s_%s_%s_multi_%d_%s", ins.Symbol, tf, system, fast, d)
}

func stateKey(ins exchange.Instrument, tf exchange.Interval, system string, kind Kind) string {
	return fmt.Sprintf("%s_%s_%s_%s", ins.Symbol, tf, system, kind)
}

func volumeKey(ins exchange.Instrument, tf exchange.Interval) string {
	return fmt.Sprintf("%s_%s_volume", ins.Symbol, tf)
}

// Notifier 发送一条通知到指定目标
type Notifier interface {
	Deliver(ctx context.Context, destination string, msg notification.Message) error
}
