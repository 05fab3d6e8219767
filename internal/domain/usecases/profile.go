package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/curehelp/curehelp-go/internal/domain/entities"
	"github.com/curehelp/curehelp-go/internal/domain/ports"
)

const (
	minAge = 1
	maxAge = 120
)

var genders = []string{"Male", "Female", "Other"}

// ProfileUseCase manages stored patient profiles.
type ProfileUseCase struct {
	store  ports.ProfileStore
	logger *slog.Logger
	now    func() time.Time
}

// NewProfileUseCase creates a ProfileUseCase backed by store.
func NewProfileUseCase(store ports.ProfileStore, logger *slog.Logger) *ProfileUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProfileUseCase{store: store, logger: logger, now: time.Now}
}

// ProfileInput is the user-supplied part of a profile.
type ProfileInput struct {
	Name    string `json:"name"`
	Age     int    `json:"age"`
	Gender  string `json:"gender"`
	Contact string `json:"contact"`
	Address string `json:"address"`
}

// Add validates the input, assigns an id and stores the profile.
func (uc *ProfileUseCase) Add(ctx context.Context, in ProfileInput) (*entities.Profile, error) {
	gender, err := validateProfile(in)
	if err != nil {
		return nil, err
	}

	p := &entities.Profile{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(in.Name),
		Age:         in.Age,
		Gender:      gender,
		Contact:     strings.TrimSpace(in.Contact),
		Address:     strings.TrimSpace(in.Address),
		Assessments: []entities.RiskAssessment{},
		CreatedAt:   uc.now().UTC(),
	}
	if err := uc.store.Save(ctx, p); err != nil {
		return nil, fmt.Errorf("saving profile: %w", err)
	}

	uc.logger.InfoContext(ctx, "profile added", "id", p.ID)
	return p, nil
}

// Get returns one profile. Unknown ids yield entities.ErrNotFound.
func (uc *ProfileUseCase) Get(ctx context.Context, id string) (*entities.Profile, error) {
	p, err := uc.store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("getting profile %s: %w", id, err)
	}
	return p, nil
}

// List returns every profile, oldest first.
func (uc *ProfileUseCase) List(ctx context.Context) ([]entities.Profile, error) {
	profiles, err := uc.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing profiles: %w", err)
	}
	return profiles, nil
}

// RecordAssessment appends an assessment to a stored profile.
func (uc *ProfileUseCase) RecordAssessment(ctx context.Context, id string, a entities.RiskAssessment) (*entities.Profile, error) {
	p, err := uc.store.AppendAssessment(ctx, id, a)
	if err != nil {
		return nil, fmt.Errorf("recording assessment for profile %s: %w", id, err)
	}
	uc.logger.DebugContext(ctx, "assessment recorded", "profile", id, "condition", a.Condition, "count", len(p.Assessments))
	return p, nil
}

// validateProfile checks the required fields and returns the canonical gender.
func validateProfile(in ProfileInput) (string, error) {
	var problems []string
	if strings.TrimSpace(in.Name) == "" {
		problems = append(problems, "name is required")
	}
	if strings.TrimSpace(in.Contact) == "" {
		problems = append(problems, "contact is required")
	}
	if strings.TrimSpace(in.Address) == "" {
		problems = append(problems, "address is required")
	}
	if in.Age < minAge || in.Age > maxAge {
		problems = append(problems, fmt.Sprintf("age must be between %d and %d", minAge, maxAge))
	}

	gender := ""
	for _, g := range genders {
		if strings.EqualFold(strings.TrimSpace(in.Gender), g) {
			gender = g
		}
	}
	if gender == "" {
		problems = append(problems, "gender must be one of "+strings.Join(genders, ", "))
	}

	if len(problems) > 0 {
		return "", fmt.Errorf("%w: %s", entities.ErrInvalidProfile, strings.Join(problems, "; "))
	}
	return gender, nil
}
