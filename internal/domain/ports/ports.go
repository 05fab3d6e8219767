// Package ports defines interfaces for external dependencies.
// Clean Architecture: These are the boundaries - usecases depend on these abstractions,
// not concrete implementations. Adapters implement these interfaces.
package ports

import (
	"context"

	"github.com/curehelp/curehelp-go/internal/domain/entities"
)

// DatasetLoader reads the reference tables from durable storage.
type DatasetLoader interface {
	// Load returns the cleaned, preprocessed tables. Individual tables may be nil;
	// an error means nothing could be read at all.
	Load(ctx context.Context) (*entities.ReferenceData, error)
}

// RiskPredictor is a pretrained model scoring one condition.
// Interface Segregation: the core never sees scalers or model internals.
type RiskPredictor interface {
	// Predict returns a probability in [0,1] and an optional label.
	Predict(ctx context.Context, features map[string]float64) (entities.Prediction, error)
}

// FeatureLister is implemented by predictors that know their input order.
// Reports list a model's inputs in this order.
type FeatureLister interface {
	Features() []string
}

// GuidanceSource looks up prevention and medication guidance.
type GuidanceSource interface {
	// Recommendations reports false when nothing is known for the condition and band.
	Recommendations(condition entities.Condition, band entities.RiskBand) (entities.Recommendations, bool)
}

// ProfileStore persists patient profiles.
type ProfileStore interface {
	Save(ctx context.Context, p *entities.Profile) error

	// Get returns entities.ErrNotFound (wrapped) for an unknown id.
	Get(ctx context.Context, id string) (*entities.Profile, error)

	// List returns every profile ordered by creation time.
	List(ctx context.Context) ([]entities.Profile, error)

	// AppendAssessment atomically adds an assessment to a stored profile and returns
	// the updated profile. Concurrent appends to one profile are all kept.
	AppendAssessment(ctx context.Context, id string, a entities.RiskAssessment) (*entities.Profile, error)
}

// ReportRenderer turns assessments into a printable document.
type ReportRenderer interface {
	Render(ctx context.Context, assessments []entities.RiskAssessment) ([]byte, error)
}

// ProviderDirectory is the static hospitals and doctors lookup.
type ProviderDirectory interface {
	Hospitals(speciality string) []entities.Hospital
	Doctors(specialization string) []entities.Doctor
}

// FileWatcher monitors a directory for changes.
type FileWatcher interface {
	// Watch starts monitoring the directory and emits events.
	Watch(ctx context.Context, dir string) (<-chan FileEvent, error)

	// Stop stops the watcher.
	Stop() error
}

// FileEvent represents a file system change.
type FileEvent struct {
	Path      string
	Operation FileOperation
}

// FileOperation is the type of file change.
type FileOperation int

const (
	FileCreated FileOperation = iota
	FileModified
	FileDeleted
)
