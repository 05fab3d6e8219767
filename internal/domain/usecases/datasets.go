package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/curehelp/curehelp-go/internal/domain/entities"
	"github.com/curehelp/curehelp-go/internal/domain/ports"
)

// DatasetUseCase owns the active reference snapshot.
// Snapshots are immutable; a reload builds a new one and swaps the pointer, so queries
// already running keep reading the snapshot they started with.
type DatasetUseCase struct {
	loader  ports.DatasetLoader
	logger  *slog.Logger
	current atomic.Pointer[entities.ReferenceData]
}

// NewDatasetUseCase creates a DatasetUseCase with an empty snapshot installed.
// Dependency Injection: Adapters are passed in, not created here.
func NewDatasetUseCase(loader ports.DatasetLoader, logger *slog.Logger) *DatasetUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	uc := &DatasetUseCase{loader: loader, logger: logger}
	uc.current.Store(&entities.ReferenceData{})
	return uc
}

// Load reads the datasets and installs them. When the loader fails outright an empty
// snapshot is installed so queries still resolve, and the error is returned.
func (uc *DatasetUseCase) Load(ctx context.Context) error {
	ref, err := uc.loader.Load(ctx)
	if err != nil {
		uc.current.Store(&entities.ReferenceData{LoadedAt: time.Now()})
		return fmt.Errorf("loading datasets: %w", err)
	}
	if ref == nil {
		ref = &entities.ReferenceData{}
	}
	if ref.LoadedAt.IsZero() {
		ref.LoadedAt = time.Now()
	}
	uc.current.Store(ref)

	uc.logger.InfoContext(ctx, "reference datasets installed",
		"precautions", ref.Precautions.Len(),
		"catalogue", ref.Catalogue.Len(),
		"faq", ref.FAQ.Len(),
		"matrix_rows", ref.Matrix.Rows(),
	)
	return nil
}

// Snapshot returns the active reference data. It is never nil.
func (uc *DatasetUseCase) Snapshot() *entities.ReferenceData {
	return uc.current.Load()
}

// WatchAndReload reloads the datasets whenever archivePath is created or rewritten.
// A failed reload keeps the previous snapshot. It returns when ctx is done.
func (uc *DatasetUseCase) WatchAndReload(ctx context.Context, watcher ports.FileWatcher, archivePath string) error {
	events, err := watcher.Watch(ctx, filepath.Dir(archivePath))
	if err != nil {
		return fmt.Errorf("watching %s: %w", archivePath, err)
	}

	target := filepath.Clean(archivePath)
	for event := range events {
		if filepath.Clean(event.Path) != target || event.Operation == ports.FileDeleted {
			continue
		}
		if err := uc.reload(ctx); err != nil {
			uc.logger.WarnContext(ctx, "dataset reload failed; keeping previous snapshot", "error", err)
		}
	}
	return ctx.Err()
}

func (uc *DatasetUseCase) reload(ctx context.Context) error {
	ref, err := uc.loader.Load(ctx)
	if err != nil {
		return err
	}
	if ref == nil {
		return fmt.Errorf("loader returned no data")
	}
	if ref.LoadedAt.IsZero() {
		ref.LoadedAt = time.Now()
	}
	uc.current.Store(ref)
	uc.logger.InfoContext(ctx, "reference datasets reloaded", "faq", ref.FAQ.Len(), "matrix_rows", ref.Matrix.Rows())
	return nil
}
