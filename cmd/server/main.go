// Command server runs the CureHelp chat and risk-assessment API.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/curehelp/curehelp-go/internal/adapters/directory"
	"github.com/curehelp/curehelp-go/internal/adapters/filewatcher"
	"github.com/curehelp/curehelp-go/internal/adapters/guidance"
	"github.com/curehelp/curehelp-go/internal/adapters/loader"
	"github.com/curehelp/curehelp-go/internal/adapters/predictor"
	"github.com/curehelp/curehelp-go/internal/adapters/profilestore"
	"github.com/curehelp/curehelp-go/internal/adapters/report"
	"github.com/curehelp/curehelp-go/internal/config"
	"github.com/curehelp/curehelp-go/internal/domain/entities"
	"github.com/curehelp/curehelp-go/internal/domain/ports"
	"github.com/curehelp/curehelp-go/internal/domain/usecases"
	httpserver "github.com/curehelp/curehelp-go/internal/infrastructure/http"
	"github.com/curehelp/curehelp-go/internal/infrastructure/logging"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logger := logging.Configure(os.Stdout, cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 1. Reference datasets
	datasets := usecases.NewDatasetUseCase(loader.NewDatasetLoader(cfg.DataArchive, logger), logger)
	if err := datasets.Load(ctx); err != nil {
		logger.Warn("reference datasets unavailable; answering with empty tables", "error", err)
	}
	if cfg.WatchData {
		if err := startWatcher(ctx, datasets, cfg.DataArchive, logger); err != nil {
			logger.Warn("dataset watcher disabled", "error", err)
		}
	}

	// 2. Profile store
	store, err := openProfileStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	// 3. Risk models
	predictors, err := buildPredictors(cfg)
	if err != nil {
		return err
	}
	if len(predictors) == 0 {
		logger.Warn("no risk models configured", "model_dir", cfg.ModelDir)
	}

	// 4. Provider directory and guidance
	providers, err := directory.Load(cfg.ProvidersFile)
	if err != nil {
		return err
	}

	recommendations, err := guidance.Load(cfg.GuidanceFile)
	if err != nil {
		return err
	}

	renderer := report.NewPDFRenderer(cfg.PDFFontPath)
	if _, ok := report.FindFont(renderer.FontPaths()); !ok {
		logger.Warn("no PDF font found; report generation will fail", "pdf_font_path", cfg.PDFFontPath)
	}

	// 5. Serve
	server := httpserver.NewServer(httpserver.Deps{
		Query:     usecases.NewQueryUseCase(datasets, logger),
		Datasets:  datasets,
		Assess:    usecases.NewAssessUseCase(predictors, recommendations, logger),
		Profiles:  usecases.NewProfileUseCase(store, logger),
		Reports:   usecases.NewReportUseCase(renderer),
		Providers: providers,
	}, cfg.Addr(), logger)

	return server.Start(ctx)
}

type closableStore interface {
	ports.ProfileStore
	io.Closer
}

func openProfileStore(ctx context.Context, cfg *config.Config) (closableStore, error) {
	switch cfg.ProfileStore {
	case config.StoreMemory:
		return profilestore.NewInMemoryStore(), nil
	case config.StorePostgres:
		return profilestore.NewPostgresStore(ctx, cfg.DatabaseURL)
	default:
		return profilestore.NewSQLiteStore(ctx, cfg.ProfileDBPath)
	}
}

func buildPredictors(cfg *config.Config) (map[entities.Condition]ports.RiskPredictor, error) {
	if cfg.PredictorURL != "" {
		return predictor.NewHTTPPredictors(cfg.PredictorURL), nil
	}
	models, err := predictor.LoadModelDir(cfg.ModelDir)
	if err != nil {
		return nil, fmt.Errorf("loading risk models: %w", err)
	}
	return models, nil
}

func startWatcher(ctx context.Context, datasets *usecases.DatasetUseCase, archive string, logger *slog.Logger) error {
	watcher, err := filewatcher.NewFSNotifyWatcher(nil, filewatcher.DefaultDebounce, logger)
	if err != nil {
		return err
	}
	go func() {
		defer watcher.Stop()
		if err := datasets.WatchAndReload(ctx, watcher, archive); err != nil && ctx.Err() == nil {
			logger.Warn("dataset watcher stopped", "error", err)
		}
	}()
	logger.Info("watching dataset archive", "path", archive)
	return nil
}
