package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"github.com/lumina-app/lumina-import-go/internal/domain"
	"github.com/lumina-app/lumina-import-go/pkg/errors"
	"go.uber.org/zap"
)

const uniqueViolation = "23505"

// ProfileRepository persists imported profiles. The importer only inserts;
// uniqueness on name is enforced by the database and surfaced as a typed
// conflict error.
type ProfileRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewProfileRepository(postgres *PostgresService, logger *zap.Logger) *ProfileRepository {
	return &ProfileRepository{
		db:     postgres.GetDB(),
		logger: logger,
	}
}

// NewProfileRepositoryWithDB wires an existing *sql.DB, used by tests.
func NewProfileRepositoryWithDB(db *sql.DB, logger *zap.Logger) *ProfileRepository {
	return &ProfileRepository{db: db, logger: logger}
}

// Insert stores a new profile and returns it with store-assigned fields
// populated. A duplicate name yields *errors.ConflictError.
func (r *ProfileRepository) Insert(ctx context.Context, profile *domain.Profile) (*domain.Profile, error) {
	query := `
		INSERT INTO profiles (name, intro, accomplishments, image_url, tags, birth_year, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	tags := profile.Tags
	if tags == nil {
		tags = []string{}
	}

	err := r.db.QueryRowContext(ctx, query,
		profile.Name,
		profile.Intro,
		profile.Accomplishments,
		profile.ImageURL,
		pq.Array(tags),
		profile.BirthYear,
		profile.CreatedBy,
	).Scan(&profile.ID, &profile.CreatedAt, &profile.UpdatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && string(pqErr.Code) == uniqueViolation {
			return nil, errors.NewConflictError(profile.Name)
		}
		return nil, fmt.Errorf("failed to insert profile: %w", err)
	}

	r.logger.Info("Profile inserted",
		zap.Int("id", profile.ID),
		zap.String("name", profile.Name),
	)

	return profile, nil
}

// FindByName looks a profile up by its exact (case-sensitive) name. Returns
// (nil, nil) when no row exists.
func (r *ProfileRepository) FindByName(ctx context.Context, name string) (*domain.Profile, error) {
	query := `
		SELECT id, name, intro, accomplishments, image_url, tags, birth_year, created_by, created_at, updated_at
		FROM profiles
		WHERE name = $1
		LIMIT 1
	`

	var profile domain.Profile
	var tags pq.StringArray

	err := r.db.QueryRowContext(ctx, query, name).Scan(
		&profile.ID,
		&profile.Name,
		&profile.Intro,
		&profile.Accomplishments,
		&profile.ImageURL,
		&tags,
		&profile.BirthYear,
		&profile.CreatedBy,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query profile by name: %w", err)
	}

	profile.Tags = []string(tags)
	return &profile, nil
}
