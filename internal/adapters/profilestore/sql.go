// Package profilestore provides profile persistence adapters.
// Clean Architecture: Adapters implementing ports.ProfileStore.
// SQLite is the default; Postgres shares the same SQL through database/sql.
package profilestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/curehelp/curehelp-go/internal/domain/entities"
)

const schema = `
CREATE TABLE IF NOT EXISTS profiles (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	age INTEGER NOT NULL,
	gender TEXT NOT NULL,
	contact TEXT NOT NULL,
	address TEXT NOT NULL,
	assessments TEXT NOT NULL,
	created_at BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_profiles_created_at ON profiles(created_at);
`

const (
	upsertProfile = `
		INSERT INTO profiles (id, name, age, gender, contact, address, assessments, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			age = excluded.age,
			gender = excluded.gender,
			contact = excluded.contact,
			address = excluded.address,
			assessments = excluded.assessments`

	selectProfiles = `SELECT id, name, age, gender, contact, address, assessments, created_at FROM profiles`

	updateAssessments = `UPDATE profiles SET assessments = ? WHERE id = ?`
)

// dialect holds the driver differences the shared SQL has to bridge.
type dialect struct {
	placeholder func(n int) string // nil keeps ?
	rowLock     string             // appended to a SELECT inside a transaction
}

var (
	sqliteDialect   = dialect{}
	postgresDialect = dialect{placeholder: dollarPlaceholder, rowLock: " FOR UPDATE"}
)

// SQLStore implements ports.ProfileStore over database/sql.
type SQLStore struct {
	db      *sql.DB
	dialect dialect
}

func newSQLStore(ctx context.Context, db *sql.DB, d dialect) (*SQLStore, error) {
	s := &SQLStore{db: db, dialect: d}
	for _, stmt := range strings.Split(schema, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return nil, fmt.Errorf("initializing schema: %w", err)
		}
	}
	return s, nil
}

// Save inserts or replaces a profile. CreatedAt is never overwritten.
func (s *SQLStore) Save(ctx context.Context, p *entities.Profile) error {
	assessments := p.Assessments
	if assessments == nil {
		assessments = []entities.RiskAssessment{}
	}
	encoded, err := json.Marshal(assessments)
	if err != nil {
		return fmt.Errorf("encoding assessments: %w", err)
	}

	_, err = s.db.ExecContext(ctx, s.rebind(upsertProfile),
		p.ID, p.Name, p.Age, p.Gender, p.Contact, p.Address, string(encoded), p.CreatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("saving profile %s: %w", p.ID, err)
	}
	return nil
}

// Get loads one profile.
func (s *SQLStore) Get(ctx context.Context, id string) (*entities.Profile, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(selectProfiles+` WHERE id = ?`), id)
	p, err := scanProfile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("profile %s: %w", id, entities.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// AppendAssessment adds a to the profile's assessments in one transaction. On Postgres the
// row is locked for the read-modify-write; SQLite runs on a single connection.
func (s *SQLStore) AppendAssessment(ctx context.Context, id string, a entities.RiskAssessment) (*entities.Profile, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, s.rebind(selectProfiles+` WHERE id = ?`+s.dialect.rowLock), id)
	p, err := scanProfile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("profile %s: %w", id, entities.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	p.Assessments = append(p.Assessments, a)
	encoded, err := json.Marshal(p.Assessments)
	if err != nil {
		return nil, fmt.Errorf("encoding assessments: %w", err)
	}
	if _, err := tx.ExecContext(ctx, s.rebind(updateAssessments), string(encoded), id); err != nil {
		return nil, fmt.Errorf("updating assessments of %s: %w", id, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing assessments of %s: %w", id, err)
	}
	return p, nil
}

// List returns every profile ordered by creation time.
func (s *SQLStore) List(ctx context.Context) ([]entities.Profile, error) {
	rows, err := s.db.QueryContext(ctx, selectProfiles+` ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("querying profiles: %w", err)
	}
	defer rows.Close()

	profiles := []entities.Profile{}
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, *p)
	}
	return profiles, rows.Err()
}

// Close closes the database connection.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProfile(row scanner) (*entities.Profile, error) {
	var (
		p           entities.Profile
		assessments string
		createdAt   int64
	)
	err := row.Scan(&p.ID, &p.Name, &p.Age, &p.Gender, &p.Contact, &p.Address, &assessments, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning profile: %w", err)
	}
	if err := json.Unmarshal([]byte(assessments), &p.Assessments); err != nil {
		return nil, fmt.Errorf("decoding assessments of %s: %w", p.ID, err)
	}
	p.CreatedAt = time.Unix(0, createdAt).UTC()
	return &p, nil
}

// rebind rewrites ? placeholders into the driver's syntax.
func (s *SQLStore) rebind(query string) string {
	if s.dialect.placeholder == nil {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString(s.dialect.placeholder(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func dollarPlaceholder(n int) string {
	return "$" + strconv.Itoa(n)
}
