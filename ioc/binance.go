package ioc

import (
	"github.com/KNICEX/signal-monitor/internal/service/exchange/binance"
	bn "github.com/adshao/go-binance/v2"
	"github.com/spf13/viper"
)

func InitBinanceCli() *bn.Client {
	type Config struct {
		ApiKey    string `mapstructure:"api_key"`
		ApiSecret string `mapstructure:"api_secret"`
	}

	var cfg Config
	if err := viper.UnmarshalKey("cex.binance", &cfg); err != nil {
		panic(err)
	}

	// K线接口是公开的, key 可以为空
	return bn.NewClient(cfg.ApiKey, cfg.ApiSecret)
}

func InitBinanceMarket(cli *bn.Client) *binance.MarketService {
	type Config struct {
		RateLimit float64 `mapstructure:"rate_limit"`
		Burst     int     `mapstructure:"burst"`
	}

	var cfg Config
	if err := viper.UnmarshalKey("cex.binance", &cfg); err != nil {
		panic(err)
	}

	var opts []binance.Option
	if cfg.RateLimit > 0 {
		opts = append(opts, binance.WithRateLimit(cfg.RateLimit, max(cfg.Burst, 1)))
	}
	return binance.NewMarketService(cli, opts...)
}
