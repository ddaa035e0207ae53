package yahoo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/KNICEX/signal-monitor/internal/service/exchange"
	"github.com/bytedance/sonic"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"
)

var _ exchange.MarketService = (*MarketService)(nil)

const DefaultBaseURL = "https://query1.finance.yahoo.com"

// Yahoo has no native 4h granularity, 4h bars are built from 1h.
var granularity = map[exchange.Interval]struct {
	interval string
	rng      string
	source   exchange.Interval
}{
	exchange.Interval5m:  {interval: "5m", rng: "60d", source: exchange.Interval5m},
	exchange.Interval15m: {interval: "15m", rng: "60d", source: exchange.Interval15m},
	exchange.Interval1h:  {interval: "60m", rng: "730d", source: exchange.Interval1h},
	exchange.Interval4h:  {interval: "60m", rng: "730d", source: exchange.Interval1h},
	exchange.Interval1d:  {interval: "1d", rng: "10y", source: exchange.Interval1d},
}

type MarketService struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
}

type Option func(svc *MarketService)

func WithBaseURL(baseURL string) Option {
	return func(svc *MarketService) {
		svc.baseURL = baseURL
	}
}

func WithHTTPClient(client *http.Client) Option {
	return func(svc *MarketService) {
		svc.client = client
	}
}

func WithRateLimit(perSecond float64, burst int) Option {
	return func(svc *MarketService) {
		svc.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

func NewMarketService(opts ...Option) *MarketService {
	svc := &MarketService{
		baseURL: DefaultBaseURL,
		client:  &http.Client{Timeout: 15 * time.Second},
		limiter: rate.NewLimiter(rate.Limit(5), 2),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

func (m *MarketService) GetKlines(ctx context.Context, req exchange.GetKlinesReq) ([]exchange.Kline, error) {
	g, ok := granularity[req.Interval]
	if !ok {
		return nil, exchange.NewFetchError(req, fmt.Errorf("unsupported interval %q", req.Interval))
	}
	if err := m.limiter.Wait(ctx); err != nil {
		return nil, exchange.NewFetchError(req, err)
	}

	body, err := m.fetchChart(ctx, req.Instrument.Symbol, g.interval, g.rng)
	if err != nil {
		return nil, exchange.NewFetchError(req, err)
	}

	kLines, err := parseChart(body, g.source)
	if err != nil {
		return nil, exchange.NewFetchError(req, err)
	}
	if g.source != req.Interval {
		kLines = exchange.Resample(kLines, req.Interval)
	}
	if req.Limit > 0 && len(kLines) > req.Limit {
		kLines = kLines[len(kLines)-req.Limit:]
	}
	return kLines, nil
}

func (m *MarketService) fetchChart(ctx context.Context, symbol, interval, rng string) ([]byte, error) {
	params := url.Values{}
	params.Set("interval", interval)
	params.Set("range", rng)
	params.Set("includePrePost", "false")
	u := fmt.Sprintf("%s/v8/finance/chart/%s?%s", m.baseURL, url.PathEscape(symbol), params.Encode())

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("yahoo: create request: %w", err)
	}
	// yahoo 会拒绝没有 UA 的请求
	httpReq.Header.Set("User-Agent", "Mozilla/5.0 (compatible; signal-monitor)")

	resp, err := m.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("yahoo: send: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("yahoo: read body: %w", err)
	}
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("yahoo: %s: %w", symbol, exchange.ErrUnknownSymbol)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("yahoo: unexpected status %d", resp.StatusCode)
	}
	return body, nil
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol          string `json:"symbol"`
				DataGranularity string `json:"dataGranularity"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// parseChart converts a chart payload into ascending bars, skipping rows with
// any null field.
func parseChart(data []byte, interval exchange.Interval) ([]exchange.Kline, error) {
	var resp chartResponse
	if err := sonic.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("yahoo: decode chart: %w", err)
	}
	if resp.Chart.Error != nil {
		if resp.Chart.Error.Code == "Not Found" {
			return nil, fmt.Errorf("yahoo: %s: %w", resp.Chart.Error.Description, exchange.ErrUnknownSymbol)
		}
		return nil, fmt.Errorf("yahoo: api error: %s - %s", resp.Chart.Error.Code, resp.Chart.Error.Description)
	}
	if len(resp.Chart.Result) == 0 || len(resp.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, errors.New("yahoo: empty chart result")
	}

	result := resp.Chart.Result[0]
	quote := result.Indicators.Quote[0]
	n := len(result.Timestamp)
	if len(quote.Open) != n || len(quote.High) != n || len(quote.Low) != n ||
		len(quote.Close) != n || len(quote.Volume) != n {
		return nil, errors.New("yahoo: mismatched quote array lengths")
	}

	d := interval.Duration()
	kLines := make([]exchange.Kline, 0, n)
	for i, ts := range result.Timestamp {
		if quote.Open[i] == nil || quote.High[i] == nil || quote.Low[i] == nil ||
			quote.Close[i] == nil || quote.Volume[i] == nil {
			continue
		}
		openTime := time.Unix(ts, 0)
		kLines = append(kLines, exchange.Kline{
			OpenTime:  openTime,
			CloseTime: openTime.Add(d - time.Millisecond),
			Open:      decimal.NewFromFloat(*quote.Open[i]),
			High:      decimal.NewFromFloat(*quote.High[i]),
			Low:       decimal.NewFromFloat(*quote.Low[i]),
			Close:     decimal.NewFromFloat(*quote.Close[i]),
			Volume:    decimal.NewFromFloat(*quote.Volume[i]),
		})
	}
	if len(kLines) == 0 {
		return nil, fmt.Errorf("yahoo: no valid bars: %w", exchange.ErrInsufficientData)
	}
	return kLines, nil
}
