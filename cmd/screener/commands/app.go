package commands

import (
	"context"
	"errors"

	"github.com/wonny/tse-screener/pkg/config"
	"github.com/wonny/tse-screener/pkg/database"
	"github.com/wonny/tse-screener/pkg/logger"
	"github.com/wonny/tse-screener/pkg/redis"
)

// app holds the shared resources of one command
type app struct {
	cfg   *config.Config
	log   *logger.Logger
	db    *database.DB  // nil when the archive is disabled
	redis *redis.Client // disabled client when Redis is off
}

// loadConfig reads the environment and applies the global flags
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	if logFormat != "" {
		cfg.LogFormat = logFormat
	}
	return cfg, nil
}

// newApp connects the optional backends. Redis and the archive DB never block a command:
// a failed connection is logged and the feature is turned off.
func newApp(ctx context.Context, cfg *config.Config, withDB bool) *app {
	log := logger.New(cfg)
	a := &app{cfg: cfg, log: log, redis: redis.Disabled()}

	rdb, err := redis.New(cfg)
	if err != nil {
		log.WithError(err).Warn("Redis unavailable, continuing without it")
	} else {
		a.redis = rdb
	}

	if withDB {
		db, err := database.New(ctx, cfg)
		switch {
		case errors.Is(err, database.ErrDisabled):
		case err != nil:
			log.WithError(err).Warn("Archive database unavailable, continuing without it")
		default:
			a.db = db
			log.Info("Connected to archive database")
		}
	}

	return a
}

func (a *app) Close() {
	a.db.Close()
	_ = a.redis.Close()
}
