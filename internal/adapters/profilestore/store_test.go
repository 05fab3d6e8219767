package profilestore

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/curehelp/curehelp-go/internal/domain/entities"
	"github.com/curehelp/curehelp-go/internal/domain/ports"
)

func newProfile(name string, created time.Time) *entities.Profile {
	return &entities.Profile{
		ID:          uuid.NewString(),
		Name:        name,
		Age:         40,
		Gender:      "Other",
		Contact:     "555-0100",
		Address:     "12 Main St",
		Assessments: []entities.RiskAssessment{},
		CreatedAt:   created,
	}
}

// runStoreContract exercises behaviour every ports.ProfileStore must share.
func runStoreContract(t *testing.T, store ports.ProfileStore) {
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	later := newProfile("Later", base.Add(time.Minute))
	earlier := newProfile("Earlier", base)
	require.NoError(t, store.Save(ctx, later))
	require.NoError(t, store.Save(ctx, earlier))

	got, err := store.Get(ctx, later.ID)
	require.NoError(t, err)
	assert.Equal(t, "Later", got.Name)
	assert.Equal(t, 40, got.Age)
	assert.True(t, later.CreatedAt.Equal(got.CreatedAt))
	assert.Empty(t, got.Assessments)

	_, err = store.Get(ctx, "missing")
	assert.ErrorIs(t, err, entities.ErrNotFound)

	// Updating keeps the original creation time.
	later.Assessments = append(later.Assessments, entities.RiskAssessment{
		Condition:  entities.ConditionHeart,
		Risk:       62.5,
		Band:       entities.RiskMedium,
		Inputs:     []entities.Feature{{Name: "age", Value: 63}},
		AssessedAt: base.Add(time.Hour),
	})
	later.CreatedAt = base.Add(24 * time.Hour)
	require.NoError(t, store.Save(ctx, later))

	got, err = store.Get(ctx, later.ID)
	require.NoError(t, err)
	require.Len(t, got.Assessments, 1)
	assert.Equal(t, entities.ConditionHeart, got.Assessments[0].Condition)
	assert.Equal(t, []entities.Feature{{Name: "age", Value: 63}}, got.Assessments[0].Inputs)
	assert.True(t, base.Add(time.Minute).Equal(got.CreatedAt))

	all, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, earlier.ID, all[0].ID)
	assert.Equal(t, later.ID, all[1].ID)

	appended, err := store.AppendAssessment(ctx, earlier.ID, entities.RiskAssessment{
		Condition: entities.ConditionFever, Risk: 20, Band: entities.RiskLow, Label: "Mild",
	})
	require.NoError(t, err)
	require.Len(t, appended.Assessments, 1)
	assert.Equal(t, "Mild", appended.Assessments[0].Label)
	assert.Equal(t, "Earlier", appended.Name)
	assert.True(t, base.Equal(appended.CreatedAt))

	_, err = store.AppendAssessment(ctx, "missing", entities.RiskAssessment{})
	assert.ErrorIs(t, err, entities.ErrNotFound)

	runConcurrentAppends(t, store)
}

// runConcurrentAppends checks that parallel appends to one profile are all kept.
func runConcurrentAppends(t *testing.T, store ports.ProfileStore) {
	const writers = 50
	ctx := context.Background()
	p := newProfile("Busy", time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC))
	require.NoError(t, store.Save(ctx, p))

	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := store.AppendAssessment(ctx, p.ID, entities.RiskAssessment{
				Condition: entities.ConditionDiabetes,
				Risk:      float64(i),
				Band:      entities.BandFor(float64(i)),
			})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	got, err := store.Get(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, got.Assessments, writers)

	seen := map[float64]bool{}
	for _, a := range got.Assessments {
		seen[a.Risk] = true
	}
	assert.Len(t, seen, writers)
}

func TestInMemoryStore(t *testing.T) {
	runStoreContract(t, NewInMemoryStore())
}

func TestInMemoryStore_ReturnsCopies(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()
	p := newProfile("Copy", time.Now())
	require.NoError(t, store.Save(ctx, p))

	got, err := store.Get(ctx, p.ID)
	require.NoError(t, err)
	got.Name = "changed"
	got.Assessments = append(got.Assessments, entities.RiskAssessment{Condition: entities.ConditionFever})

	again, err := store.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Copy", again.Name)
	assert.Empty(t, again.Assessments)
}

func TestSQLiteStore(t *testing.T) {
	store, err := NewSQLiteStore(context.Background(), t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	runStoreContract(t, store)
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := NewSQLiteStore(ctx, dir)
	require.NoError(t, err)
	p := newProfile("Persisted", time.Now())
	require.NoError(t, store.Save(ctx, p))
	require.NoError(t, store.Close())

	reopened, err := NewSQLiteStore(ctx, dir)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Persisted", got.Name)
}

func TestPostgresStore(t *testing.T) {
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	store, err := NewPostgresStore(ctx, url)
	require.NoError(t, err)
	defer store.Close()

	_, err = store.db.ExecContext(ctx, "DELETE FROM profiles")
	require.NoError(t, err)

	runStoreContract(t, store)
}

func TestRebind(t *testing.T) {
	s := &SQLStore{dialect: postgresDialect}
	assert.Equal(t, "SELECT a FROM t WHERE x = $1 AND y = $2", s.rebind("SELECT a FROM t WHERE x = ? AND y = ?"))

	s = &SQLStore{dialect: sqliteDialect}
	assert.Equal(t, "WHERE x = ?", s.rebind("WHERE x = ?"))
}
