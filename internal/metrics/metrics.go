package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// 事件结果
const (
	OutcomeDelivered  = "delivered"
	OutcomeFailed     = "failed"
	OutcomeSuppressed = "suppressed"
	OutcomeSilent     = "silent"
)

// Recorder 监控指标. nil Recorder 的所有方法都是空操作
type Recorder struct {
	scans        *prometheus.CounterVec
	scanDuration *prometheus.HistogramVec
	fetchErrors  *prometheus.CounterVec
	skipped      *prometheus.CounterVec
	events       *prometheus.CounterVec
	ledgerSize   prometheus.Gauge
	tracked      *prometheus.GaugeVec
}

func New(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		scans: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "signal_monitor_scans_total",
			Help: "Completed scan cycles",
		}, []string{"monitor", "mode"}),
		scanDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "signal_monitor_scan_duration_seconds",
			Help:    "Wall clock duration of one scan cycle",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}, []string{"monitor"}),
		fetchErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "signal_monitor_fetch_errors_total",
			Help: "Failed series fetches",
		}, []string{"class", "timeframe"}),
		skipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "signal_monitor_insufficient_data_total",
			Help: "Units skipped for lack of history",
		}, []string{"monitor"}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "signal_monitor_events_total",
			Help: "Qualifying events by kind and outcome",
		}, []string{"kind", "outcome"}),
		ledgerSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "signal_monitor_ledger_entries",
			Help: "Entries in the cooldown ledger",
		}),
		tracked: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "signal_monitor_tracked_instruments",
			Help: "Tracked instruments per asset class",
		}, []string{"class"}),
	}
	reg.MustRegister(r.scans, r.scanDuration, r.fetchErrors, r.skipped, r.events, r.ledgerSize, r.tracked)
	return r
}

func (r *Recorder) ScanDone(monitor string, silent bool, elapsed time.Duration) {
	if r == nil {
		return
	}
	mode := "normal"
	if silent {
		mode = "silent"
	}
	r.scans.WithLabelValues(monitor, mode).Inc()
	r.scanDuration.WithLabelValues(monitor).Observe(elapsed.Seconds())
}

func (r *Recorder) FetchError(class, timeframe string) {
	if r == nil {
		return
	}
	r.fetchErrors.WithLabelValues(class, timeframe).Inc()
}

func (r *Recorder) InsufficientData(monitor string) {
	if r == nil {
		return
	}
	r.skipped.WithLabelValues(monitor).Inc()
}

func (r *Recorder) Event(kind, outcome string) {
	if r == nil {
		return
	}
	r.events.WithLabelValues(kind, outcome).Inc()
}

func (r *Recorder) LedgerSize(n int) {
	if r == nil {
		return
	}
	r.ledgerSize.Set(float64(n))
}

func (r *Recorder) Tracked(class string, n int) {
	if r == nil {
		return
	}
	r.tracked.WithLabelValues(class).Set(float64(n))
}
