// internal/repository/postgres/tier_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"loyaltystudio-service/internal/domain/program"
	xerrors "loyaltystudio-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TierRepository struct {
	db *pgxpool.Pool
}

func NewTierRepository(db *pgxpool.Pool) *TierRepository {
	return &TierRepository{db: db}
}

// Create inserts a tier.
func (r *TierRepository) Create(ctx context.Context, t *program.Tier) error {
	return r.create(ctx, r.db, t)
}

// CreateTx inserts a tier inside a wizard transaction.
func (r *TierRepository) CreateTx(ctx context.Context, tx pgx.Tx, t *program.Tier) error {
	return r.create(ctx, tx, t)
}

type execQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (r *TierRepository) create(ctx context.Context, q execQuerier, t *program.Tier) error {
	query := `
		INSERT INTO tiers (id, loyalty_program_id, name, description, points_threshold, benefits)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		t.ID, t.LoyaltyProgramID, t.Name, t.Description, t.PointsThreshold, t.Benefits,
	).Scan(&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create tier: %w", err)
	}

	return nil
}

// FindByID retrieves a tier.
func (r *TierRepository) FindByID(ctx context.Context, id string) (*program.Tier, error) {
	query := `
		SELECT id, loyalty_program_id, name, description, points_threshold, benefits,
		       created_at, updated_at
		FROM tiers
		WHERE id = $1
	`

	var t program.Tier
	err := r.db.QueryRow(ctx, query, id).Scan(
		&t.ID, &t.LoyaltyProgramID, &t.Name, &t.Description, &t.PointsThreshold, &t.Benefits,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find tier: %w", err)
	}

	return &t, nil
}

// ListByProgram returns a program's tiers ordered by ascending threshold,
// creation order breaking ties so the first-created minimum stays first.
func (r *TierRepository) ListByProgram(ctx context.Context, programID string) ([]program.Tier, error) {
	query := `
		SELECT id, loyalty_program_id, name, description, points_threshold, benefits,
		       created_at, updated_at
		FROM tiers
		WHERE loyalty_program_id = $1
		ORDER BY points_threshold ASC, created_at ASC
	`

	rows, err := r.db.Query(ctx, query, programID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tiers: %w", err)
	}
	defer rows.Close()

	tiers := []program.Tier{}
	for rows.Next() {
		var t program.Tier
		if err := rows.Scan(
			&t.ID, &t.LoyaltyProgramID, &t.Name, &t.Description, &t.PointsThreshold, &t.Benefits,
			&t.CreatedAt, &t.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan tier: %w", err)
		}
		tiers = append(tiers, t)
	}

	return tiers, rows.Err()
}

// Update rewrites a tier's mutable fields.
func (r *TierRepository) Update(ctx context.Context, t *program.Tier) error {
	query := `
		UPDATE tiers
		SET name = $1, description = $2, points_threshold = $3, benefits = $4, updated_at = $5
		WHERE id = $6
	`

	result, err := r.db.Exec(ctx, query,
		t.Name, t.Description, t.PointsThreshold, t.Benefits, time.Now(), t.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update tier: %w", err)
	}
	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	return nil
}

// Delete removes a tier.
func (r *TierRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.Exec(ctx, `DELETE FROM tiers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete tier: %w", err)
	}
	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	return nil
}
