package pipeline

import (
	"io"

	"github.com/wonny/tse-screener/internal/contracts"
	"github.com/wonny/tse-screener/internal/external/jpx"
	"github.com/wonny/tse-screener/internal/external/yahoo"
	"github.com/wonny/tse-screener/internal/s1_universe"
	"github.com/wonny/tse-screener/internal/s2_quotes"
	"github.com/wonny/tse-screener/internal/s3_metrics"
	"github.com/wonny/tse-screener/internal/s4_snapshot"
	"github.com/wonny/tse-screener/pkg/config"
	"github.com/wonny/tse-screener/pkg/database"
	"github.com/wonny/tse-screener/pkg/httputil"
	"github.com/wonny/tse-screener/pkg/logger"
	"github.com/wonny/tse-screener/pkg/redis"
)

// Deps are the optional shared resources. Nil fields are skipped.
type Deps struct {
	DB    *database.DB
	Redis *redis.Client
}

// New wires every stage from config
func New(cfg *config.Config, log *logger.Logger, progress io.Writer, deps Deps) *Orchestrator {
	limiter := redis.NewRateLimiter(deps.Redis, "screener")

	jpxHTTP := httputil.New(cfg, log).WithRateLimiter(limiter, redis.JPXRateLimit)
	jpxClient := jpx.NewClient(jpxHTTP, log, cfg.Pipeline.MasterURL)

	yahooHTTP := httputil.New(cfg, log).WithRateLimiter(limiter, redis.YahooRateLimit)
	yahooClient := yahoo.NewClient(yahooHTTP, log, yahoo.Config{
		BaseURL:           cfg.Pipeline.QuoteBaseURL,
		RequestsPerSecond: cfg.Pipeline.RequestsPerSecond,
		Workers:           cfg.Pipeline.FetchWorkers,
	})

	orch := NewOrchestrator(
		s1_universe.NewLoader(jpxClient, log),
		s2_quotes.NewBatcher(yahooClient, s2_quotes.ConfigFrom(cfg.Pipeline), log),
		s3_metrics.NewEngine(log),
		s4_snapshot.NewWriter(s4_snapshot.WriterConfigFrom(cfg), log),
		progress,
		log,
	)
	if deps.DB != nil {
		orch.WithArchive(s4_snapshot.NewRepository(deps.DB.Pool))
	}
	return orch
}

// RunConfigFrom builds the run settings from config
func RunConfigFrom(cfg *config.Config) RunConfig {
	return RunConfig{
		Segments:    contracts.ParseSegments(cfg.Pipeline.Markets),
		SkipWeekend: cfg.Pipeline.SkipWeekend,
		Location:    cfg.Location(),
	}
}
