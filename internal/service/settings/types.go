package settings

import (
	"fmt"
	"time"

	"github.com/KNICEX/signal-monitor/internal/service/exchange"
	"github.com/samber/lo"
)

const (
	WarmupEmptyLedger = "empty_ledger"
	WarmupAlways      = "always"
)

// 信号类别, 同时也是 destination 的路由 key
const (
	KindCross       = "cross"
	KindAlignment   = "alignment"
	KindCompression = "compression"
	KindVolume      = "volume"
)

type AlertTypes struct {
	Crossover   bool `mapstructure:"crossover" json:"crossover" default:"true"`
	Alignment   bool `mapstructure:"alignment" json:"alignment" default:"true"`
	Compression bool `mapstructure:"compression" json:"compression" default:"true"`
}

// Destinations 每类信号的投递目标 (discord webhook url 或 telegram chat id), 空表示未配置
type Destinations struct {
	Cross       string `mapstructure:"cross" json:"cross"`
	Alignment   string `mapstructure:"alignment" json:"alignment"`
	Compression string `mapstructure:"compression" json:"compression"`
}

type MASettings struct {
	CheckIntervalMinutes int          `mapstructure:"check_interval_minutes" json:"check_interval_minutes" default:"60" validate:"gte=1"`
	CooldownHours        float64      `mapstructure:"cooldown_hours" json:"cooldown_hours" default:"4" validate:"gt=0"`
	CompressionThreshold float64      `mapstructure:"compression_threshold" json:"compression_threshold" default:"3.0" validate:"gt=0,lte=100"`
	Timeframes           []string     `mapstructure:"timeframes" json:"timeframes" default:"[\"4h\",\"1d\"]" validate:"min=1,dive,oneof=5m 15m 1h 4h 1d"`
	AlertTypes           AlertTypes   `mapstructure:"alert_types" json:"alert_types"`
	Destinations         Destinations `mapstructure:"destinations" json:"destinations"`
	Warmup               string       `mapstructure:"warmup" json:"warmup" default:"empty_ledger" validate:"oneof=empty_ledger always"`
}

func (s MASettings) CheckInterval() time.Duration {
	return time.Duration(s.CheckIntervalMinutes) * time.Minute
}

func (s MASettings) Cooldown() time.Duration {
	return time.Duration(s.CooldownHours * float64(time.Hour))
}

// Intervals 已通过校验, 这里不会出现非法值
func (s MASettings) Intervals() []exchange.Interval {
	return lo.Map(s.Timeframes, func(tf string, _ int) exchange.Interval {
		return exchange.Interval(tf)
	})
}

func (s MASettings) Destination(kind string) string {
	switch kind {
	case KindCross:
		return s.Destinations.Cross
	case KindAlignment:
		return s.Destinations.Alignment
	case KindCompression:
		return s.Destinations.Compression
	default:
		return ""
	}
}

func (s MASettings) Enabled(kind string) bool {
	switch kind {
	case KindCross:
		return s.AlertTypes.Crossover
	case KindAlignment:
		return s.AlertTypes.Alignment
	case KindCompression:
		return s.AlertTypes.Compression
	default:
		return false
	}
}

func (s *MASettings) SetDestination(kind, dest string) error {
	switch kind {
	case KindCross:
		s.Destinations.Cross = dest
	case KindAlignment:
		s.Destinations.Alignment = dest
	case KindCompression:
		s.Destinations.Compression = dest
	default:
		return fmt.Errorf("unknown signal kind %q", kind)
	}
	return nil
}

func (s *MASettings) SetEnabled(kind string, enabled bool) error {
	switch kind {
	case KindCross:
		s.AlertTypes.Crossover = enabled
	case KindAlignment:
		s.AlertTypes.Alignment = enabled
	case KindCompression:
		s.AlertTypes.Compression = enabled
	default:
		return fmt.Errorf("unknown signal kind %q", kind)
	}
	return nil
}

type Thresholds struct {
	Moderate float64 `mapstructure:"moderate" json:"moderate" default:"150" validate:"gt=0"`
	High     float64 `mapstructure:"high" json:"high" default:"200" validate:"gtfield=Moderate"`
	Critical float64 `mapstructure:"critical" json:"critical" default:"300" validate:"gtfield=High"`
}

type ReferencePeriods struct {
	Short int `mapstructure:"short" json:"short" default:"25" validate:"oneof=13 25 32 100 200 300"`
	Long  int `mapstructure:"long" json:"long" default:"300" validate:"oneof=13 25 32 100 200 300,gtfield=Short"`
}

type VolumeSettings struct {
	Enabled              bool             `mapstructure:"enabled" json:"enabled" default:"true"`
	CheckIntervalMinutes int              `mapstructure:"check_interval_minutes" json:"check_interval_minutes" default:"15" validate:"gte=1"`
	CooldownMinutes      int              `mapstructure:"cooldown_minutes" json:"cooldown_minutes" default:"30" validate:"gte=1"`
	Timeframe            string           `mapstructure:"timeframe" json:"timeframe" default:"1h" validate:"oneof=5m 15m 1h 4h 1d"`
	Thresholds           Thresholds       `mapstructure:"thresholds" json:"thresholds"`
	ReferencePeriods     ReferencePeriods `mapstructure:"reference_periods" json:"reference_periods"`
	Destination          string           `mapstructure:"destination" json:"destination"`
}

func (s VolumeSettings) CheckInterval() time.Duration {
	return time.Duration(s.CheckIntervalMinutes) * time.Minute
}

func (s VolumeSettings) Cooldown() time.Duration {
	return time.Duration(s.CooldownMinutes) * time.Minute
}

func (s VolumeSettings) Interval() exchange.Interval {
	return exchange.Interval(s.Timeframe)
}
