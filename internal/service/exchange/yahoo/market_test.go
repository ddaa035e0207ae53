package yahoo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/KNICEX/signal-monitor/internal/service/exchange"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2024-01-02 00:00:00 UTC
const day = int64(1704153600)

const hourlyChart = `{"chart":{"result":[{
	"meta":{"symbol":"AAPL","dataGranularity":"60m"},
	"timestamp":[1704153600,1704157200,1704160800,1704164400,1704168000,1704171600],
	"indicators":{"quote":[{
		"open":  [10, 11, 12, null, 20, 21],
		"high":  [11, 15, 13, 14, 22, 25],
		"low":   [9, 10, 8, 11, 19, 20],
		"close": [11, 12, 13, 14, 21, 24],
		"volume":[100, 200, 300, 400, 500, 600]
	}]}
}],"error":null}}`

func newService(t *testing.T, handler http.HandlerFunc) *MarketService {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewMarketService(WithBaseURL(srv.URL), WithRateLimit(1000, 10))
}

func TestMarketService_GetKlinesHourly(t *testing.T) {
	var gotPath, gotInterval, gotRange string
	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotInterval = r.URL.Query().Get("interval")
		gotRange = r.URL.Query().Get("range")
		_, _ = w.Write([]byte(hourlyChart))
	})

	kLines, err := svc.GetKlines(context.Background(), exchange.GetKlinesReq{
		Instrument: exchange.Instrument{Short: "AAPL", Symbol: "AAPL", Class: exchange.Equity},
		Interval:   exchange.Interval1h,
		Limit:      3,
	})
	require.NoError(t, err)

	assert.Equal(t, "/v8/finance/chart/AAPL", gotPath)
	assert.Equal(t, "60m", gotInterval)
	assert.Equal(t, "730d", gotRange)

	// null 行被跳过, 只保留最近3根
	require.Len(t, kLines, 3)
	assert.Equal(t, time.Unix(day+5*3600, 0), kLines[2].OpenTime)
	assert.Equal(t, time.Unix(day+6*3600, 0).Add(-time.Millisecond), kLines[2].CloseTime)
	assert.True(t, kLines[0].Close.Equal(decimal.NewFromInt(13)))
}

func TestMarketService_GetKlinesResampledTo4h(t *testing.T) {
	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(hourlyChart))
	})

	kLines, err := svc.GetKlines(context.Background(), exchange.GetKlinesReq{
		Instrument: exchange.Instrument{Short: "AAPL", Symbol: "AAPL", Class: exchange.Equity},
		Interval:   exchange.Interval4h,
	})
	require.NoError(t, err)
	require.Len(t, kLines, 2)

	first := kLines[0]
	assert.Equal(t, time.Unix(day, 0).UTC(), first.OpenTime)
	assert.True(t, first.Open.Equal(decimal.NewFromInt(10)))
	assert.True(t, first.High.Equal(decimal.NewFromInt(15)))
	assert.True(t, first.Low.Equal(decimal.NewFromInt(8)))
	assert.True(t, first.Close.Equal(decimal.NewFromInt(13)))
	assert.True(t, first.Volume.Equal(decimal.NewFromInt(600)))

	second := kLines[1]
	assert.Equal(t, time.Unix(day+4*3600, 0).UTC(), second.OpenTime)
	assert.True(t, second.Open.Equal(decimal.NewFromInt(20)))
	assert.True(t, second.Close.Equal(decimal.NewFromInt(24)))
	assert.True(t, second.Volume.Equal(decimal.NewFromInt(1100)))
}

// 13:30, 14:30, 15:30 UTC 三根小时线, 最后一根尚未收盘
const sessionChart = `{"chart":{"result":[{
	"meta":{"symbol":"AAPL","dataGranularity":"60m"},
	"timestamp":[1704202200,1704205800,1704209400],
	"indicators":{"quote":[{
		"open":  [10, 11, 12],
		"high":  [11, 12, 99],
		"low":   [9, 10, 11],
		"close": [11, 12, 99],
		"volume":[100, 200, 300]
	}]}
}],"error":null}}`

func TestMarketService_GetKlines4hKeepsFormingHourOpen(t *testing.T) {
	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(sessionChart))
	})

	kLines, err := svc.GetKlines(context.Background(), exchange.GetKlinesReq{
		Instrument: exchange.Instrument{Short: "AAPL", Symbol: "AAPL", Class: exchange.Equity},
		Interval:   exchange.Interval4h,
	})
	require.NoError(t, err)
	require.Len(t, kLines, 1)
	assert.Equal(t, time.Unix(day+12*3600, 0).UTC(), kLines[0].OpenTime)
	assert.True(t, kLines[0].CloseTime.Equal(time.Unix(day+16*3600+1800, 0).Add(-time.Millisecond)))

	// 16:10 时 15:30 那根还在走, 整个 4h 桶不能算收盘
	assert.Empty(t, exchange.ClosedKlines(kLines, time.Unix(day+16*3600+600, 0)))

	closed := exchange.ClosedKlines(kLines, time.Unix(day+16*3600+1860, 0))
	require.Len(t, closed, 1)
	assert.True(t, closed[0].Close.Equal(decimal.NewFromInt(99)))
	assert.True(t, closed[0].Volume.Equal(decimal.NewFromInt(600)))
}

func TestMarketService_GetKlinesErrors(t *testing.T) {
	testCases := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{
			name:    "unknown symbol status",
			status:  http.StatusNotFound,
			body:    `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`,
			wantErr: exchange.ErrUnknownSymbol,
		},
		{
			name:    "unknown symbol payload",
			status:  http.StatusOK,
			body:    `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`,
			wantErr: exchange.ErrUnknownSymbol,
		},
		{
			name:   "rate limited",
			status: http.StatusTooManyRequests,
			body:   `Too Many Requests`,
		},
		{
			name:   "garbage",
			status: http.StatusOK,
			body:   `not json`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			})
			_, err := svc.GetKlines(context.Background(), exchange.GetKlinesReq{
				Instrument: exchange.Instrument{Short: "X", Symbol: "X", Class: exchange.Equity},
				Interval:   exchange.Interval1d,
			})
			var fetchErr *exchange.FetchError
			require.ErrorAs(t, err, &fetchErr)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
			}
		})
	}
}

func TestMarketService_GetKlinesTimeout(t *testing.T) {
	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := svc.GetKlines(ctx, exchange.GetKlinesReq{
		Instrument: exchange.Instrument{Short: "X", Symbol: "X", Class: exchange.Equity},
		Interval:   exchange.Interval1d,
	})
	var fetchErr *exchange.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.True(t, fetchErr.Timeout())
}
