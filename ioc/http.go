package ioc

import (
	"github.com/KNICEX/signal-monitor/internal/web"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/viper"
)

func InitHTTP(handler *web.Handler, gatherer prometheus.Gatherer) *web.Server {
	addr := viper.GetString("http.addr")
	if addr == "" {
		addr = ":8080"
	}
	return web.NewServer(addr, handler, gatherer)
}
