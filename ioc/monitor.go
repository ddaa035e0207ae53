package ioc

import (
	"time"

	"github.com/KNICEX/signal-monitor/internal/metrics"
	"github.com/KNICEX/signal-monitor/internal/repo"
	"github.com/KNICEX/signal-monitor/internal/service/monitor"
	"github.com/spf13/viper"
)

// InitScanOptions 两个监控共用的扫描参数
func InitScanOptions(recorder *metrics.Recorder, signals repo.SignalRepo) []monitor.Option {
	type Config struct {
		Workers      int           `mapstructure:"workers"`
		FetchTimeout time.Duration `mapstructure:"fetch_timeout"`
	}

	var cfg Config
	if err := viper.UnmarshalKey("monitor", &cfg); err != nil {
		panic(err)
	}

	opts := []monitor.Option{
		monitor.WithMetrics(recorder),
		monitor.WithSignalRepo(signals),
	}
	if cfg.Workers > 0 {
		opts = append(opts, monitor.WithWorkers(cfg.Workers))
	}
	if cfg.FetchTimeout > 0 {
		opts = append(opts, monitor.WithFetchTimeout(cfg.FetchTimeout))
	}
	return opts
}
