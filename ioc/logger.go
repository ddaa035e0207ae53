package ioc

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/rs/zerolog"
	slogzerolog "github.com/samber/slog-zerolog/v2"
	"github.com/spf13/viper"
)

// InitLogger 用 zerolog 作为 slog 的 handler, 并设置为默认 logger
func InitLogger() *slog.Logger {
	type Config struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"` // json or console
	}

	cfg := Config{Level: "info", Format: "console"}
	if err := viper.UnmarshalKey("log", &cfg); err != nil {
		panic(err)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		panic(err)
	}

	var output io.Writer = os.Stdout
	if cfg.Format == "console" {
		output = zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.DateTime,
		}
	}
	zl := zerolog.New(output).With().Timestamp().Logger()

	logger := slog.New(slogzerolog.Option{Level: level, Logger: &zl}.NewZerologHandler())
	slog.SetDefault(logger)
	return logger
}
