package api

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/tse-screener/pkg/config"
	"github.com/wonny/tse-screener/pkg/logger"
)

func TestServer_ServeAndDrain(t *testing.T) {
	cfg := &config.Config{
		Port: "0",
		Server: config.ServerConfig{
			ReadTimeout:     time.Second,
			WriteTimeout:    time.Second,
			ShutdownTimeout: time.Second,
		},
	}
	router := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	server := New(cfg, logger.Nop(), router)

	var drained []string
	server.OnDrain(func() { drained = append(drained, "pipeline") })
	server.OnDrain(func() { drained = append(drained, "second") })

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- server.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
	assert.Equal(t, []string{"pipeline", "second"}, drained)
}

func TestServer_RunListenError(t *testing.T) {
	ln, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	defer ln.Close()

	_, port, err := net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)

	server := New(&config.Config{Port: port}, logger.Nop(), http.NotFoundHandler())
	err = server.Run(context.Background())
	assert.ErrorContains(t, err, "listen")
}
