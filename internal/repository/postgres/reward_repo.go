// internal/repository/postgres/reward_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"loyaltystudio-service/internal/domain/reward"
	xerrors "loyaltystudio-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RewardRepository struct {
	db *pgxpool.Pool
}

func NewRewardRepository(db *pgxpool.Pool) *RewardRepository {
	return &RewardRepository{db: db}
}

// Create inserts a reward.
func (r *RewardRepository) Create(ctx context.Context, rw *reward.Reward) error {
	query := `
		INSERT INTO rewards (
			id, loyalty_program_id, name, description, type, points_cost,
			stock, validity_period, redemption_limit, is_active
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		rw.ID, rw.LoyaltyProgramID, rw.Name, rw.Description, rw.Type, rw.PointsCost,
		rw.Stock, rw.ValidityPeriod, rw.RedemptionLimit, rw.IsActive,
	).Scan(&rw.CreatedAt, &rw.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create reward: %w", err)
	}

	return nil
}

// CreateTx inserts a reward inside a wizard transaction.
func (r *RewardRepository) CreateTx(ctx context.Context, tx pgx.Tx, rw *reward.Reward) error {
	query := `
		INSERT INTO rewards (
			id, loyalty_program_id, name, description, type, points_cost,
			stock, validity_period, redemption_limit, is_active
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at
	`

	err := tx.QueryRow(ctx, query,
		rw.ID, rw.LoyaltyProgramID, rw.Name, rw.Description, rw.Type, rw.PointsCost,
		rw.Stock, rw.ValidityPeriod, rw.RedemptionLimit, rw.IsActive,
	).Scan(&rw.CreatedAt, &rw.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create reward: %w", err)
	}

	return nil
}

// FindByID retrieves a reward.
func (r *RewardRepository) FindByID(ctx context.Context, id string) (*reward.Reward, error) {
	query := `
		SELECT id, loyalty_program_id, name, description, type, points_cost,
		       stock, validity_period, redemption_limit, is_active, created_at, updated_at
		FROM rewards
		WHERE id = $1
	`

	var rw reward.Reward
	err := r.db.QueryRow(ctx, query, id).Scan(
		&rw.ID, &rw.LoyaltyProgramID, &rw.Name, &rw.Description, &rw.Type, &rw.PointsCost,
		&rw.Stock, &rw.ValidityPeriod, &rw.RedemptionLimit, &rw.IsActive, &rw.CreatedAt, &rw.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find reward: %w", err)
	}

	return &rw, nil
}

// ListByProgram returns a program's rewards.
func (r *RewardRepository) ListByProgram(ctx context.Context, programID string) ([]reward.Reward, error) {
	query := `
		SELECT id, loyalty_program_id, name, description, type, points_cost,
		       stock, validity_period, redemption_limit, is_active, created_at, updated_at
		FROM rewards
		WHERE loyalty_program_id = $1
		ORDER BY points_cost ASC
	`

	rows, err := r.db.Query(ctx, query, programID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rewards: %w", err)
	}
	defer rows.Close()

	rewards := []reward.Reward{}
	for rows.Next() {
		var rw reward.Reward
		if err := rows.Scan(
			&rw.ID, &rw.LoyaltyProgramID, &rw.Name, &rw.Description, &rw.Type, &rw.PointsCost,
			&rw.Stock, &rw.ValidityPeriod, &rw.RedemptionLimit, &rw.IsActive, &rw.CreatedAt, &rw.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan reward: %w", err)
		}
		rewards = append(rewards, rw)
	}

	return rewards, rows.Err()
}

// Update rewrites a reward's mutable fields.
func (r *RewardRepository) Update(ctx context.Context, rw *reward.Reward) error {
	query := `
		UPDATE rewards
		SET name = $1, description = $2, points_cost = $3, stock = $4,
		    validity_period = $5, redemption_limit = $6, is_active = $7, updated_at = $8
		WHERE id = $9
	`

	result, err := r.db.Exec(ctx, query,
		rw.Name, rw.Description, rw.PointsCost, rw.Stock,
		rw.ValidityPeriod, rw.RedemptionLimit, rw.IsActive, time.Now(), rw.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update reward: %w", err)
	}
	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	return nil
}

// DecrementStock consumes one unit of stock; unlimited rewards (NULL
// stock) always succeed.
func (r *RewardRepository) DecrementStock(ctx context.Context, id string) error {
	query := `
		UPDATE rewards
		SET stock = stock - 1, updated_at = $1
		WHERE id = $2 AND (stock IS NULL OR stock > 0)
	`

	result, err := r.db.Exec(ctx, query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to decrement stock: %w", err)
	}
	if result.RowsAffected() == 0 {
		return xerrors.ErrConflict
	}

	return nil
}

// Delete removes a reward.
func (r *RewardRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.Exec(ctx, `DELETE FROM rewards WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete reward: %w", err)
	}
	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	return nil
}
