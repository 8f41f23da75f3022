package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"fraudscore/config"
	"fraudscore/db"
	"fraudscore/features"
	qhttp "fraudscore/http"
	"fraudscore/logging"
	"fraudscore/ml"
	"fraudscore/monitoring"
	"fraudscore/scoring"
)

func main() {
	configFlag := flag.String("config", "", "path to config.yaml")
	flag.Parse()

	// 1. Load config
	cfg, err := config.Load(resolveConfigPath(*configFlag))
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := logging.New(cfg.Log)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 2. Load the model. The service does not start without one.
	schema := features.Default()
	adapter, err := ml.Load(cfg.Model.Path, schema)
	if err != nil {
		logger.Fatal("failed to load model artifact", zap.Error(err))
	}
	info := adapter.Info()
	logger.Info("model loaded",
		zap.String("kind", info.Kind),
		zap.String("version", info.Version),
		zap.String("sha256", info.SHA256),
		zap.Int("features", info.Features),
	)

	pipeline := scoring.NewPipeline(schema, adapter)
	var scorer scoring.Scorer = pipeline
	if cfg.Cache.Size > 0 {
		cached, err := scoring.NewCachedScorer(pipeline, cfg.Cache.Size)
		if err != nil {
			logger.Fatal("failed to create result cache", zap.Error(err))
		}
		scorer = cached
	}

	// 3. Metrics and the live feed
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := monitoring.NewMetrics(reg)
	hub := monitoring.NewHub(logger, metrics, cfg.Http.AllowedOrigins)
	go hub.Run(ctx)

	deps := qhttp.Deps{
		Scorer:    scorer,
		Model:     info,
		Metrics:   metrics,
		Publisher: hub,
		Hub:       hub,
		Gatherer:  reg,
		Logger:    logger,
	}

	// 4. Audit log
	if cfg.Database.Path != "" {
		store, err := db.Open(cfg.Database.Path, cfg.Database.WAL)
		if err != nil {
			logger.Fatal("failed to open audit database", zap.String("path", cfg.Database.Path), zap.Error(err))
		}
		defer store.Close()
		if err := store.RecordModelLoad(ctx, info); err != nil {
			logger.Warn("failed to record model load", zap.Error(err))
		}
		deps.Store = store
		logger.Info("audit database initialized", zap.String("path", cfg.Database.Path))
	}

	if cfg.Model.Watch {
		go watchArtifact(ctx, cfg.Model.Path, logger, metrics, hub)
	}

	// 5. Start HTTP server
	server := qhttp.NewServer(cfg.Http, deps)
	go func() {
		if err := server.Start(); err != nil {
			logger.Error("HTTP server failed", zap.Error(err))
			stop()
		}
	}()

	// 6. Handle graceful shutdown
	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Stop(shutdownCtx); err != nil {
		logger.Warn("server forced to shutdown", zap.Error(err))
	}
	logger.Info("exiting")
}

func watchArtifact(ctx context.Context, path string, logger *zap.Logger, metrics *monitoring.Metrics, hub *monitoring.Hub) {
	err := ml.WatchArtifact(ctx, path, logger, func(ev fsnotify.Event) {
		metrics.ArtifactChanged()
		if err := hub.Publish(monitoring.ModelChanged, map[string]string{
			"path": ev.Name,
			"op":   ev.Op.String(),
		}); err != nil {
			logger.Warn("publish model change", zap.Error(err))
		}
	})
	if err != nil {
		logger.Warn("artifact watch disabled", zap.Error(err))
	}
}

// resolveConfigPath looks for config.yaml in the working directory, then one
// level up so the binary can be run from cmd/.
func resolveConfigPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv("FRAUDSCORE_CONFIG"); env != "" {
		return env
	}
	configPath := "config.yaml"
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		configPath = filepath.Join("..", "config.yaml")
	}
	return configPath
}
