package ioc

import (
	"log/slog"

	"github.com/KNICEX/signal-monitor/internal/service/notification"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/spf13/viper"
)

func InitNotifier() *notification.Router {
	type Config struct {
		Telegram struct {
			Token string `mapstructure:"token"`
		} `mapstructure:"telegram"`
	}

	var cfg Config
	if err := viper.UnmarshalKey("notification", &cfg); err != nil {
		panic(err)
	}

	opts := []notification.RouterOption{
		notification.WithDiscord(notification.NewDiscordSink(nil)),
	}
	if cfg.Telegram.Token != "" {
		bot, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
		if err != nil {
			panic(err)
		}
		slog.Info("telegram bot authorized", "account", bot.Self.UserName)
		opts = append(opts, notification.WithTelegram(notification.NewTelegramSink(bot)))
	}
	return notification.NewRouter(opts...)
}
