package yahoo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/wonny/tse-screener/internal/contracts"
	"github.com/wonny/tse-screener/pkg/httputil"
	"github.com/wonny/tse-screener/pkg/logger"
)

// DefaultBaseURL is the public chart API host
const DefaultBaseURL = "https://query1.finance.yahoo.com"

// ErrNotFound means the provider has no such symbol. The ticker is treated as absent.
var ErrNotFound = errors.New("yahoo: symbol not found")

// ErrBatchFailed means no ticker of a FetchDaily call could be fetched
var ErrBatchFailed = errors.New("yahoo: every ticker in the batch failed")

// Config holds the client knobs
type Config struct {
	BaseURL           string
	RequestsPerSecond float64 // <= 0 disables pacing
	Workers           int     // concurrent requests inside one batch call
}

// Client fetches daily bars from the Yahoo Finance chart API.
// It implements contracts.BarSource: one FetchDaily call covers one batch.
// ⭐ SSOT: Yahoo 시세 호출은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
	limiter    *rate.Limiter
	workers    int
}

// NewClient creates a new Yahoo chart client
func NewClient(httpClient *httputil.Client, log *logger.Logger, cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Workers)
	}

	return &Client{
		httpClient: httpClient,
		logger:     log.Module("yahoo"),
		baseURL:    cfg.BaseURL,
		limiter:    limiter,
		workers:    cfg.Workers,
	}
}

// FetchDaily downloads lookback of daily bars for every ticker.
// A ticker that cannot be fetched is logged and left out of the map, like an unknown symbol.
// The call itself fails only when ctx is done or every ticker failed.
func (c *Client) FetchDaily(ctx context.Context, tickers []string, lookback string) (map[string]contracts.BarTable, error) {
	var (
		mu      sync.Mutex
		out     = make(map[string]contracts.BarTable, len(tickers))
		failed  int
		lastErr error
	)

	// 종목별 실패는 다른 종목 요청을 취소하지 않음
	var g errgroup.Group
	g.SetLimit(c.workers)

	for _, ticker := range tickers {
		ticker := ticker
		g.Go(func() error {
			if err := c.limiter.Wait(ctx); err != nil {
				return err
			}

			table, err := c.fetchChart(ctx, ticker, lookback)
			if errors.Is(err, ErrNotFound) {
				c.logger.WithField("ticker", ticker).Debug("Symbol not found")
				return nil
			}
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				c.logger.WithError(err).WithField("ticker", ticker).Warn("Chart fetch failed, skipping ticker")
				mu.Lock()
				failed++
				lastErr = fmt.Errorf("%s: %w", ticker, err)
				mu.Unlock()
				return nil
			}

			mu.Lock()
			out[ticker] = table
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if len(tickers) > 0 && failed == len(tickers) {
		return nil, fmt.Errorf("%w: %d tickers, last %v", ErrBatchFailed, failed, lastErr)
	}
	return out, nil
}

// chartResponse is the v8 chart payload. Null bars decode to nil pointers.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol               string `json:"symbol"`
				ExchangeTimezoneName string `json:"exchangeTimezoneName"`
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

func (c *Client) chartURL(ticker, lookback string) string {
	params := url.Values{}
	params.Set("interval", "1d")
	params.Set("range", lookback)
	return fmt.Sprintf("%s/v8/finance/chart/%s?%s", c.baseURL, url.PathEscape(ticker), params.Encode())
}

func (c *Client) fetchChart(ctx context.Context, ticker, lookback string) (contracts.BarTable, error) {
	body, err := c.httpClient.GetBytes(ctx, c.chartURL(ticker, lookback))
	if err != nil {
		var se *httputil.StatusError
		if errors.As(err, &se) && se.StatusCode == http.StatusNotFound {
			return contracts.BarTable{}, ErrNotFound
		}
		return contracts.BarTable{}, err
	}

	var chart chartResponse
	if err := json.Unmarshal(body, &chart); err != nil {
		return contracts.BarTable{}, fmt.Errorf("decode chart: %w", err)
	}
	if chart.Chart.Error != nil {
		if chart.Chart.Error.Code == "Not Found" {
			return contracts.BarTable{}, ErrNotFound
		}
		return contracts.BarTable{}, fmt.Errorf("chart error: %s", chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 {
		return contracts.BarTable{}, nil
	}

	result := chart.Chart.Result[0]
	loc := time.UTC
	if tz := result.Meta.ExchangeTimezoneName; tz != "" {
		if l, err := time.LoadLocation(tz); err == nil {
			loc = l
		}
	}

	table := contracts.BarTable{
		Timestamps: make([]time.Time, len(result.Timestamp)),
	}
	for i, ts := range result.Timestamp {
		table.Timestamps[i] = time.Unix(ts, 0).In(loc)
	}
	if len(result.Indicators.Quote) > 0 {
		q := result.Indicators.Quote[0]
		table.Open, table.High, table.Low, table.Close, table.Volume = q.Open, q.High, q.Low, q.Close, q.Volume
	}
	return table, nil
}
