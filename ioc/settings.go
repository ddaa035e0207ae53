package ioc

import (
	"github.com/KNICEX/signal-monitor/internal/service/settings"
	"github.com/spf13/viper"
)

func InitSettings() (*settings.Store[settings.MASettings], *settings.Store[settings.VolumeSettings]) {
	type Config struct {
		MA     string `mapstructure:"ma"`
		Volume string `mapstructure:"volume"`
	}

	cfg := Config{MA: "./data/ma_settings.json", Volume: "./data/volume_settings.json"}
	if err := viper.UnmarshalKey("settings", &cfg); err != nil {
		panic(err)
	}

	ma, err := settings.Load[settings.MASettings](cfg.MA)
	if err != nil {
		panic(err)
	}
	vol, err := settings.Load[settings.VolumeSettings](cfg.Volume)
	if err != nil {
		panic(err)
	}
	return ma, vol
}
