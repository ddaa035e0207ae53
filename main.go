package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/KNICEX/signal-monitor/internal/metrics"
	"github.com/KNICEX/signal-monitor/internal/repo"
	"github.com/KNICEX/signal-monitor/internal/schedule"
	"github.com/KNICEX/signal-monitor/internal/service/exchange"
	"github.com/KNICEX/signal-monitor/internal/service/exchange/binance"
	"github.com/KNICEX/signal-monitor/internal/service/monitor"
	"github.com/KNICEX/signal-monitor/internal/web"
	"github.com/KNICEX/signal-monitor/ioc"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func initViper() {

	// --config=./config/xxx.yaml
	file := pflag.String("config", "./config/config.dev.yaml", "specify config file")
	pflag.Parse()

	viper.SetConfigFile(*file)
	err := viper.ReadInConfig()
	if err != nil {
		panic(fmt.Errorf("fatal error config file: %s \n", err))
	}

}

func main() {
	initViper()
	ioc.InitLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db := ioc.InitDB()
	instrumentRepo := repo.NewInstrumentRepo(db)
	signalRepo := repo.NewSignalRepo(db)
	ledgerRepo := ioc.InitLedgerRepo(db)

	binanceCli := ioc.InitBinanceCli()
	watchlist := monitor.NewWatchlist(instrumentRepo,
		monitor.WithVerifier(exchange.Crypto, binance.NewSymbolService(binanceCli)))
	if err := watchlist.Seed(ctx); err != nil {
		panic(err)
	}

	maSettings, volSettings := ioc.InitSettings()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder := metrics.New(reg)

	market := exchange.NewMarketRouter(
		ioc.InitBinanceMarket(binanceCli),
		ioc.InitYahooMarket(),
	)
	notifier := ioc.InitNotifier()
	opts := ioc.InitScanOptions(recorder, signalRepo)

	// 两个监控各自一份账本, 互不影响预热判断
	maLedger := monitor.NewLedger(monitor.WithLedgerStore(ledgerRepo))
	volLedger := monitor.NewLedger(monitor.WithLedgerStore(ledgerRepo))
	for _, l := range []*monitor.Ledger{maLedger, volLedger} {
		if err := l.Restore(ctx); err != nil {
			panic(err)
		}
	}

	maMonitor := monitor.NewMAMonitor(market, watchlist, maSettings, maLedger, notifier, opts...)
	volMonitor := monitor.NewVolumeMonitor(market, watchlist, volSettings, volLedger, notifier, opts...)

	runners := []*schedule.Runner{
		schedule.NewRunner(monitor.NewMATask(maMonitor), func() time.Duration {
			return maSettings.Get().CheckInterval()
		}),
		schedule.NewRunner(monitor.NewVolumeTask(volMonitor), func() time.Duration {
			return volSettings.Get().CheckInterval()
		}),
		schedule.NewRunner(schedule.NewFuncTask("tracked instruments gauge", func(ctx context.Context) error {
			counts, err := watchlist.Count(ctx)
			if err != nil {
				return err
			}
			for class, n := range counts {
				recorder.Tracked(string(class), n)
			}
			return nil
		}), func() time.Duration {
			return time.Minute
		}),
	}
	for _, r := range runners {
		r.Start(ctx)
	}

	handler := web.NewHandler(watchlist, maMonitor, volMonitor, signalRepo, maSettings, volSettings,
		maLedger, volLedger)
	server := ioc.InitHTTP(handler, reg)
	server.Start()

	slog.Info("signal monitor started")
	<-ctx.Done()
	slog.Info("shutting down")

	for _, r := range runners {
		r.Stop()
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Stop(shutdownCtx); err != nil {
		slog.Error("http server shutdown", "error", err)
	}
}
