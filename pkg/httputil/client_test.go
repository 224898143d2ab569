package httputil

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/tse-screener/pkg/config"
	"github.com/wonny/tse-screener/pkg/logger"
	"github.com/wonny/tse-screener/pkg/redis"
)

func testConfig(retries int) *config.Config {
	return &config.Config{
		Env:      "test",
		LogLevel: "error",
		Pipeline: config.PipelineConfig{HTTPMaxRetries: retries},
	}
}

func TestNew(t *testing.T) {
	client := New(testConfig(2), logger.Nop())
	require.NotNil(t, client)
	assert.NotNil(t, client.httpClient)
	assert.Equal(t, 2, client.retryConfig.MaxRetries)
	assert.True(t, client.retryConfig.Enabled)

	noRetry := New(testConfig(0), logger.Nop())
	assert.False(t, noRetry.retryConfig.Enabled)
}

func TestNewWithTimeout(t *testing.T) {
	client := NewWithTimeout(testConfig(0), logger.Nop(), 5*time.Second)
	assert.Equal(t, 5*time.Second, client.httpClient.Timeout)
}

func TestWithRetry(t *testing.T) {
	client := New(testConfig(0), logger.Nop()).WithRetry(5, 2*time.Second)
	assert.Equal(t, 5, client.retryConfig.MaxRetries)
	assert.Equal(t, 2*time.Second, client.retryConfig.InitialDelay)
	assert.True(t, client.retryConfig.Enabled)

	client.DisableRetry()
	assert.False(t, client.retryConfig.Enabled)
}

func TestGetBytes_Success(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	body, err := New(testConfig(0), logger.Nop()).GetBytes(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, string(body))
	assert.Equal(t, defaultUserAgent, gotUA)
}

func TestGetBytes_StatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	_, err := New(testConfig(0), logger.Nop()).GetBytes(context.Background(), server.URL)
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusNotFound, se.StatusCode)
}

func TestRetryOnServerError(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := New(testConfig(0), logger.Nop()).WithRetry(3, time.Millisecond)
	resp, err := client.Get(context.Background(), server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestRetryExhaustedReturnsLastStatus(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := New(testConfig(0), logger.Nop()).WithRetry(2, time.Millisecond)
	_, err := client.GetBytes(context.Background(), server.URL)

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusTooManyRequests, se.StatusCode)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestNoRetryOnClientError(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	client := New(testConfig(0), logger.Nop()).WithRetry(3, time.Millisecond)
	resp, err := client.Get(context.Background(), server.URL)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestWithRateLimiter_Disabled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	limiter := redis.NewRateLimiter(redis.Disabled(), "test")
	client := New(testConfig(0), logger.Nop()).WithRateLimiter(limiter, redis.YahooRateLimit)

	_, err := client.GetBytes(context.Background(), server.URL)
	assert.NoError(t, err)
}

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		code int
		want bool
	}{
		{200, false},
		{400, false},
		{404, false},
		{429, true},
		{500, true},
		{503, true},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, IsRetryableError(tt.code), "status %d", tt.code)
	}
}
