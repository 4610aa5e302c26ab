// internal/repository/postgres/program_repo.go
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

type ProgramRepository struct {
	db *pgxpool.Pool
}

func NewProgramRepository(db *pgxpool.Pool) *ProgramRepository {
	return &ProgramRepository{db: db}
}

// CreateTx inserts a program inside an existing transaction. The wizard
// writes program, rules, tiers, and rewards in one unit.
func (r *ProgramRepository) CreateTx(ctx context.Context, tx pgx.Tx, p *program.LoyaltyProgram) error {
	query := `
		INSERT INTO loyalty_programs (
			id, merchant_id, name, description, points_currency_name,
			currency, timezone, is_active
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`

	err := tx.QueryRow(
		ctx, query,
		p.ID, p.MerchantID, p.Name, p.Description, p.PointsCurrencyName,
		p.Currency, p.Timezone, p.IsActive,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create program: %w", err)
	}

	return nil
}

// CreateEarningRuleTx inserts a wizard earning rule.
func (r *ProgramRepository) CreateEarningRuleTx(ctx context.Context, tx pgx.Tx, er *program.EarningRule) error {
	query := `
		INSERT INTO earning_rules (id, loyalty_program_id, name, type, points, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`

	err := tx.QueryRow(ctx, query, er.ID, er.LoyaltyProgramID, er.Name, er.Type, er.Points, er.IsActive).
		Scan(&er.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create earning rule: %w", err)
	}

	return nil
}

// FindByID retrieves a program by ID.
func (r *ProgramRepository) FindByID(ctx context.Context, id string) (*program.LoyaltyProgram, error) {
	query := `
		SELECT id, merchant_id, name, description, points_currency_name,
		       currency, timezone, is_active, created_at, updated_at
		FROM loyalty_programs
		WHERE id = $1
	`

	var p program.LoyaltyProgram
	err := r.db.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.MerchantID, &p.Name, &p.Description, &p.PointsCurrencyName,
		&p.Currency, &p.Timezone, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find program: %w", err)
	}

	return &p, nil
}

// ListByMerchant returns all programs owned by a merchant.
func (r *ProgramRepository) ListByMerchant(ctx context.Context, merchantID string) ([]program.LoyaltyProgram, error) {
	query := `
		SELECT id, merchant_id, name, description, points_currency_name,
		       currency, timezone, is_active, created_at, updated_at
		FROM loyalty_programs
		WHERE merchant_id = $1
		ORDER BY created_at
	`

	rows, err := r.db.Query(ctx, query, merchantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list programs: %w", err)
	}
	defer rows.Close()

	programs := []program.LoyaltyProgram{}
	for rows.Next() {
		var p program.LoyaltyProgram
		if err := rows.Scan(
			&p.ID, &p.MerchantID, &p.Name, &p.Description, &p.PointsCurrencyName,
			&p.Currency, &p.Timezone, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan program: %w", err)
		}
		programs = append(programs, p)
	}

	return programs, rows.Err()
}

// ListEarningRules returns a program's wizard earning rules.
func (r *ProgramRepository) ListEarningRules(ctx context.Context, programID string) ([]program.EarningRule, error) {
	query := `
		SELECT id, loyalty_program_id, name, type, points, is_active, created_at
		FROM earning_rules
		WHERE loyalty_program_id = $1
		ORDER BY created_at
	`

	rows, err := r.db.Query(ctx, query, programID)
	if err != nil {
		return nil, fmt.Errorf("failed to list earning rules: %w", err)
	}
	defer rows.Close()

	earningRules := []program.EarningRule{}
	for rows.Next() {
		var er program.EarningRule
		if err := rows.Scan(&er.ID, &er.LoyaltyProgramID, &er.Name, &er.Type, &er.Points, &er.IsActive, &er.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan earning rule: %w", err)
		}
		earningRules = append(earningRules, er)
	}

	return earningRules, rows.Err()
}

// Update rewrites a program's mutable fields.
func (r *ProgramRepository) Update(ctx context.Context, p *program.LoyaltyProgram) error {
	query := `
		UPDATE loyalty_programs
		SET name = $1, description = $2, points_currency_name = $3, is_active = $4, updated_at = $5
		WHERE id = $6
	`

	result, err := r.db.Exec(ctx, query,
		p.Name, p.Description, p.PointsCurrencyName, p.IsActive, time.Now(), p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update program: %w", err)
	}
	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	return nil
}

// Delete removes a program and, through FK cascades, its children.
func (r *ProgramRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.Exec(ctx, `DELETE FROM loyalty_programs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete program: %w", err)
	}
	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	return nil
}
