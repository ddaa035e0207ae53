package ioc

import (
	"context"
	"time"

	"github.com/KNICEX/signal-monitor/internal/repo"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
	"gorm.io/gorm"
)

// InitLedgerRepo 冷却账本默认存 sqlite, 配置 redis 后多实例可共享
func InitLedgerRepo(db *gorm.DB) repo.LedgerRepo {
	type Config struct {
		Backend string `mapstructure:"backend"`
		Redis   struct {
			Addr     string `mapstructure:"addr"`
			Password string `mapstructure:"password"`
			DB       int    `mapstructure:"db"`
			Hash     string `mapstructure:"hash"`
		} `mapstructure:"redis"`
	}

	var cfg Config
	if err := viper.UnmarshalKey("ledger", &cfg); err != nil {
		panic(err)
	}

	if cfg.Backend != "redis" {
		return repo.NewLedgerRepo(db)
	}

	cli := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := cli.Ping(ctx).Err(); err != nil {
		panic(err)
	}
	return repo.NewRedisLedgerRepo(cli, cfg.Redis.Hash)
}
