package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/tse-screener/internal/api"
	"github.com/wonny/tse-screener/internal/api/handlers"
	"github.com/wonny/tse-screener/internal/pipeline"
	"github.com/wonny/tse-screener/internal/viewer"
	"github.com/wonny/tse-screener/pkg/redis"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "ビューア API サーバー起動",
	Long: `Starts the JSON viewer API.

Endpoints:
  GET  /health
  GET  /api/presets
  GET  /api/snapshots
  GET  /api/snapshots/{date}/rows?market=&sector=&min_turnover=&chg_min=&chg_max=&preset=&n=
  GET  /api/snapshots/{date}/rows/{code}
  GET  /api/snapshots/{date}/sectors?market=
  GET  /api/snapshots/{date}/sectors/{sector}?n=
  POST /api/pipeline/run        (with --allow-run)
  GET  /api/pipeline/status     (with --allow-run)

{date} is YYYY-MM-DD or "latest".

Example:
  go run ./cmd/screener serve
  go run ./cmd/screener serve --port 8080 --allow-run`,
	RunE: runServe,
}

var (
	servePort     string
	serveAllowRun bool
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&servePort, "port", "", "API port; default PORT")
	serveCmd.Flags().BoolVar(&serveAllowRun, "allow-run", false, "expose the pipeline trigger endpoints")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if servePort != "" {
		cfg.Port = servePort
	}

	ctx := context.Background()
	a := newApp(ctx, cfg, true)
	defer a.Close()

	presets, err := viewer.LoadPresets(cfg.Viewer.PresetsFile)
	if err != nil {
		return err
	}

	store := viewer.NewStore(cfg.Pipeline.OutputDir, cfg.Pipeline.OutputPrefix, a.log)
	h := api.Handlers{
		Health: handlers.NewHealthHandler(store, a.db, a.redis, Version),
		Snapshot: handlers.NewSnapshotHandler(
			store, presets,
			redis.NewCache(a.redis, "screener"), cfg.Viewer.CacheTTL, cfg.Viewer.DefaultTopN,
			a.log,
		),
	}
	if serveAllowRun {
		orch := pipeline.New(cfg, a.log, nil, pipeline.Deps{DB: archiveDB(ctx, a), Redis: a.redis})
		h.Pipeline = handlers.NewPipelineHandler(orch, pipeline.RunConfigFrom(cfg), a.log)
	}

	server := api.New(cfg, a.log, api.NewRouter(h, a.log))
	if h.Pipeline != nil {
		server.OnDrain(h.Pipeline.Wait)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("\n✅ Server running on http://localhost:%s\n", cfg.Port)
	fmt.Println("\nPress Ctrl+C to stop")

	if err := server.Run(ctx); err != nil {
		return fmt.Errorf("viewer API: %w", err)
	}
	return nil
}
