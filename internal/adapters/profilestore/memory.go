package profilestore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/curehelp/curehelp-go/internal/domain/entities"
)

// InMemoryStore keeps profiles for the lifetime of the process.
// Open-Closed: Can be replaced with the SQL stores without changing usecases.
type InMemoryStore struct {
	mu       sync.RWMutex
	profiles map[string]entities.Profile
}

// NewInMemoryStore creates an empty store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{profiles: make(map[string]entities.Profile)}
}

// Save stores a copy of p.
func (s *InMemoryStore) Save(ctx context.Context, p *entities.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *p
	cp.Assessments = append([]entities.RiskAssessment{}, p.Assessments...)
	if prev, ok := s.profiles[p.ID]; ok {
		cp.CreatedAt = prev.CreatedAt
	}
	s.profiles[p.ID] = cp
	return nil
}

// Get returns a copy of the stored profile.
func (s *InMemoryStore) Get(ctx context.Context, id string) (*entities.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[id]
	if !ok {
		return nil, fmt.Errorf("profile %s: %w", id, entities.ErrNotFound)
	}
	p.Assessments = append([]entities.RiskAssessment{}, p.Assessments...)
	return &p, nil
}

// AppendAssessment adds a to the stored profile under the write lock.
func (s *InMemoryStore) AppendAssessment(ctx context.Context, id string, a entities.RiskAssessment) (*entities.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[id]
	if !ok {
		return nil, fmt.Errorf("profile %s: %w", id, entities.ErrNotFound)
	}
	p.Assessments = append(append([]entities.RiskAssessment{}, p.Assessments...), a)
	s.profiles[id] = p

	out := p
	out.Assessments = append([]entities.RiskAssessment{}, p.Assessments...)
	return &out, nil
}

// List returns every profile ordered by creation time.
func (s *InMemoryStore) List(ctx context.Context) ([]entities.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]entities.Profile, 0, len(s.profiles))
	for _, p := range s.profiles {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// Close is a no-op.
func (s *InMemoryStore) Close() error { return nil }
