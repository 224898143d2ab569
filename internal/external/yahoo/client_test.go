package yahoo

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/tse-screener/pkg/config"
	"github.com/wonny/tse-screener/pkg/httputil"
	"github.com/wonny/tse-screener/pkg/logger"
)

const chartJSON = `{"chart":{"result":[{"meta":{"symbol":"%s","exchangeTimezoneName":"Asia/Tokyo"},
"timestamp":[1760486400,1760572800,1760659200],
"indicators":{"quote":[{"open":[98,null,100],"high":[103,101,110],"low":[97,99,95],"close":[102,100,105],"volume":[900000,800000,1000000]}]}}],"error":null}}`

const notFoundJSON = `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`

func newTestClient(baseURL string) *Client {
	cfg := &config.Config{Env: "test"}
	return NewClient(httputil.New(cfg, logger.Nop()), logger.Nop(), Config{
		BaseURL: baseURL,
		Workers: 4,
	})
}

func chartServer(t *testing.T, handle func(symbol string, w http.ResponseWriter)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		symbol := strings.TrimPrefix(r.URL.Path, "/v8/finance/chart/")
		assert.Equal(t, "1d", r.URL.Query().Get("interval"))
		assert.Equal(t, "5d", r.URL.Query().Get("range"))
		handle(symbol, w)
	}))
}

func TestFetchDaily(t *testing.T) {
	server := chartServer(t, func(symbol string, w http.ResponseWriter) {
		switch symbol {
		case "9999.T":
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(notFoundJSON))
		case "8888.T":
			_, _ = w.Write([]byte(notFoundJSON))
		default:
			_, _ = fmt.Fprintf(w, chartJSON, symbol)
		}
	})
	defer server.Close()

	got, err := newTestClient(server.URL).FetchDaily(context.Background(), []string{"1234.T", "9999.T", "8888.T", "7203.T"}, "5d")
	require.NoError(t, err)
	require.Len(t, got, 2)

	table := got["1234.T"]
	n, err := table.Len()
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Nil(t, table.Open[1])
	assert.Equal(t, 105.0, *table.Close[2])
	assert.Equal(t, "Asia/Tokyo", table.Timestamps[0].Location().String())
}

func TestFetchDaily_TickerErrorSkipsOnlyThatTicker(t *testing.T) {
	tests := []struct {
		name   string
		handle func(w http.ResponseWriter)
	}{
		{"bad request", func(w http.ResponseWriter) { w.WriteHeader(http.StatusBadRequest) }},
		{"server error", func(w http.ResponseWriter) { w.WriteHeader(http.StatusInternalServerError) }},
		{"rate limited", func(w http.ResponseWriter) { w.WriteHeader(http.StatusTooManyRequests) }},
		{"undecodable body", func(w http.ResponseWriter) { _, _ = w.Write([]byte("<html>")) }},
		{"chart error", func(w http.ResponseWriter) {
			_, _ = w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Bad Request","description":"Invalid input"}}}`))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := chartServer(t, func(symbol string, w http.ResponseWriter) {
				if symbol == "6758.T" {
					tt.handle(w)
					return
				}
				_, _ = fmt.Fprintf(w, chartJSON, symbol)
			})
			defer server.Close()

			got, err := newTestClient(server.URL).FetchDaily(context.Background(), []string{"1234.T", "6758.T", "7203.T", "8306.T"}, "5d")
			require.NoError(t, err)
			assert.Len(t, got, 3)
			assert.NotContains(t, got, "6758.T")
			assert.Contains(t, got, "8306.T")
		})
	}
}

func TestFetchDaily_EveryTickerFailedFailsBatch(t *testing.T) {
	var calls int32
	server := chartServer(t, func(symbol string, w http.ResponseWriter) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	})
	defer server.Close()

	_, err := newTestClient(server.URL).FetchDaily(context.Background(), []string{"1234.T", "6758.T"}, "5d")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBatchFailed)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestFetchDaily_NotFoundOnlyIsNotAFailure(t *testing.T) {
	server := chartServer(t, func(symbol string, w http.ResponseWriter) {
		_, _ = w.Write([]byte(notFoundJSON))
	})
	defer server.Close()

	got, err := newTestClient(server.URL).FetchDaily(context.Background(), []string{"9999.T"}, "5d")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFetchDaily_Cancelled(t *testing.T) {
	server := chartServer(t, func(symbol string, w http.ResponseWriter) {
		_, _ = fmt.Fprintf(w, chartJSON, symbol)
	})
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestClient(server.URL).FetchDaily(ctx, []string{"1234.T"}, "5d")
	assert.Error(t, err)
}

func TestFetchDaily_EmptyResult(t *testing.T) {
	server := chartServer(t, func(symbol string, w http.ResponseWriter) {
		_, _ = w.Write([]byte(`{"chart":{"result":[],"error":null}}`))
	})
	defer server.Close()

	got, err := newTestClient(server.URL).FetchDaily(context.Background(), []string{"1234.T"}, "5d")
	require.NoError(t, err)
	n, err := got["1234.T"].Len()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestChartURL(t *testing.T) {
	c := newTestClient("https://example.com")
	assert.Equal(t, "https://example.com/v8/finance/chart/7203.T?interval=1d&range=5d", c.chartURL("7203.T", "5d"))
}
