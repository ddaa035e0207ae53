package monitor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/KNICEX/signal-monitor/internal/service/exchange"
	"github.com/KNICEX/signal-monitor/internal/service/indicator"
)

type AnalysisStatus string

const (
	StatusSuccess          AnalysisStatus = "success"
	StatusInsufficientData AnalysisStatus = "insufficient_data"
	StatusError            AnalysisStatus = "error"
)

// Analysis 单个标的的均线分析, 供命令前端展示
type Analysis struct {
	Instrument  exchange.Instrument
	Timeframe   exchange.Interval
	System      string
	Status      AnalysisStatus
	Message     string
	Price       float64
	Averages    indicator.Snapshot
	Alignment   indicator.Alignment
	DataPoints  int
	PeriodStart time.Time
	PeriodEnd   time.Time
}

// Fields flattens the analysis into named fields.
func (a Analysis) Fields() map[string]any {
	f := map[string]any{
		"status": string(a.Status),
		"symbol": a.Instrument.Symbol,
	}
	if a.Status != StatusSuccess {
		f["message"] = a.Message
		return f
	}
	maValues := make(map[string]float64, len(a.Averages))
	for l, v := range a.Averages {
		maValues[fmt.Sprintf("MA%d", l)] = v
	}
	f["timeframe"] = string(a.Timeframe)
	f["system"] = a.System
	f["current_price"] = a.Price
	f["ma_values"] = maValues
	f["aligned_bullish"] = a.Alignment.Ordering == indicator.OrderingBullish
	f["aligned_bearish"] = a.Alignment.Ordering == indicator.OrderingBearish
	f["compression_pct"] = a.Alignment.CompressionPct
	f["is_compressed"] = a.Alignment.Compressed
	f["price_above_all_ma"] = a.Alignment.PricePosition == indicator.AboveAll
	f["price_below_all_ma"] = a.Alignment.PricePosition == indicator.BelowAll
	f["current_order"] = a.Alignment.CurrentOrder
	f["ma_distances"] = a.Alignment.Distances
	f["data_points"] = a.DataPoints
	f["period_start"] = a.PeriodStart
	f["period_end"] = a.PeriodEnd
	return f
}

// Analyze runs the alignment analysis for one instrument without touching
// the ledger. It never returns an error: failures are reported in Status.
func (m *MAMonitor) Analyze(ctx context.Context, ins exchange.Instrument, tf exchange.Interval, sys System) Analysis {
	res := Analysis{
		Instrument: ins,
		Timeframe:  tf,
		System:     sys.Name,
	}
	kLines, err := m.fetch(ctx, ins, tf, indicator.WindowSize(sys.Lengths)+1)
	if err != nil {
		res.Status, res.Message = StatusError, err.Error()
		return res
	}
	res.DataPoints = len(kLines)
	if len(kLines) == 0 {
		res.Status, res.Message = StatusInsufficientData, indicator.ErrInsufficientData.Error()
		return res
	}
	res.PeriodStart = kLines[0].OpenTime
	res.PeriodEnd = kLines[len(kLines)-1].OpenTime

	closes := exchange.Closes(kLines)
	res.Price = closes[len(closes)-1]
	res.Averages = indicator.SMA(closes, sys.Lengths...).LatestSnapshot()

	align, err := indicator.Analyze(res.Averages, sys.Lengths, res.Price, m.settings.Get().CompressionThreshold)
	switch {
	case errors.Is(err, indicator.ErrInsufficientData):
		res.Status = StatusInsufficientData
		res.Message = fmt.Sprintf("need %d closed bars for MA%d, got %d", sys.Lengths[len(sys.Lengths)-1], sys.Lengths[len(sys.Lengths)-1], len(kLines))
	case err != nil:
		res.Status, res.Message = StatusError, err.Error()
	default:
		res.Status = StatusSuccess
		res.Alignment = align
	}
	return res
}
