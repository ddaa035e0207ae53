package ioc

import (
	"github.com/KNICEX/signal-monitor/internal/service/exchange/yahoo"
	"github.com/spf13/viper"
)

func InitYahooMarket() *yahoo.MarketService {
	type Config struct {
		BaseURL   string  `mapstructure:"base_url"`
		RateLimit float64 `mapstructure:"rate_limit"`
		Burst     int     `mapstructure:"burst"`
	}

	var cfg Config
	if err := viper.UnmarshalKey("equity.yahoo", &cfg); err != nil {
		panic(err)
	}

	var opts []yahoo.Option
	if cfg.BaseURL != "" {
		opts = append(opts, yahoo.WithBaseURL(cfg.BaseURL))
	}
	if cfg.RateLimit > 0 {
		opts = append(opts, yahoo.WithRateLimit(cfg.RateLimit, max(cfg.Burst, 1)))
	}
	return yahoo.NewMarketService(opts...)
}
