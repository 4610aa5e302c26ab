// internal/repository/postgres/rules_repo.go
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"loyaltystudio-service/internal/domain/rules"
	xerrors "loyaltystudio-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RulesRepository struct {
	db *pgxpool.Pool
}

func NewRulesRepository(db *pgxpool.Pool) *RulesRepository {
	return &RulesRepository{db: db}
}

// ReplaceAll swaps the program's entire rule list in one transaction.
// The dashboard saves the whole list at once; there is no per-rule
// persistence or versioning.
func (r *RulesRepository) ReplaceAll(ctx context.Context, programID string, list []rules.EnhancedRule) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM enhanced_rules WHERE loyalty_program_id = $1`, programID); err != nil {
		return fmt.Errorf("failed to clear rules: %w", err)
	}

	query := `
		INSERT INTO enhanced_rules (
			id, loyalty_program_id, name, description, is_active, position, conditions, effects
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`

	for i := range list {
		rule := &list[i]

		conditionsJSON, err := json.Marshal(rule.Conditions)
		if err != nil {
			return fmt.Errorf("failed to marshal conditions: %w", err)
		}
		effectsJSON, err := json.Marshal(rule.Effects)
		if err != nil {
			return fmt.Errorf("failed to marshal effects: %w", err)
		}

		err = tx.QueryRow(ctx, query,
			rule.ID, programID, rule.Name, rule.Description, rule.IsActive,
			rule.Position, conditionsJSON, effectsJSON,
		).Scan(&rule.CreatedAt, &rule.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert rule %q: %w", rule.Name, err)
		}
	}

	return tx.Commit(ctx)
}

// ListByProgram returns a program's rules in display order.
func (r *RulesRepository) ListByProgram(ctx context.Context, programID string) ([]rules.EnhancedRule, error) {
	query := `
		SELECT id, loyalty_program_id, name, description, is_active, position,
		       conditions, effects, created_at, updated_at
		FROM enhanced_rules
		WHERE loyalty_program_id = $1
		ORDER BY position ASC
	`

	rows, err := r.db.Query(ctx, query, programID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rules: %w", err)
	}
	defer rows.Close()

	list := []rules.EnhancedRule{}
	for rows.Next() {
		var rule rules.EnhancedRule
		var conditionsJSON, effectsJSON []byte

		if err := rows.Scan(
			&rule.ID, &rule.LoyaltyProgramID, &rule.Name, &rule.Description,
			&rule.IsActive, &rule.Position, &conditionsJSON, &effectsJSON,
			&rule.CreatedAt, &rule.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan rule: %w", err)
		}

		if err := json.Unmarshal(conditionsJSON, &rule.Conditions); err != nil {
			return nil, fmt.Errorf("failed to unmarshal conditions: %w", err)
		}
		if err := json.Unmarshal(effectsJSON, &rule.Effects); err != nil {
			return nil, fmt.Errorf("failed to unmarshal effects: %w", err)
		}

		list = append(list, rule)
	}

	return list, rows.Err()
}

// SaveGraph upserts the program's rule graph.
func (r *RulesRepository) SaveGraph(ctx context.Context, g *rules.Graph) error {
	query := `
		INSERT INTO rule_graphs (loyalty_program_id, nodes, edges, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (loyalty_program_id)
		DO UPDATE SET nodes = EXCLUDED.nodes, edges = EXCLUDED.edges, updated_at = EXCLUDED.updated_at
	`

	nodesJSON, err := json.Marshal(g.Nodes)
	if err != nil {
		return fmt.Errorf("failed to marshal nodes: %w", err)
	}
	edgesJSON, err := json.Marshal(g.Edges)
	if err != nil {
		return fmt.Errorf("failed to marshal edges: %w", err)
	}

	g.UpdatedAt = time.Now()
	if _, err := r.db.Exec(ctx, query, g.LoyaltyProgramID, nodesJSON, edgesJSON, g.UpdatedAt); err != nil {
		return fmt.Errorf("failed to save rule graph: %w", err)
	}

	return nil
}

// FindGraph loads the program's rule graph.
func (r *RulesRepository) FindGraph(ctx context.Context, programID string) (*rules.Graph, error) {
	query := `SELECT loyalty_program_id, nodes, edges, updated_at FROM rule_graphs WHERE loyalty_program_id = $1`

	var g rules.Graph
	var nodesJSON, edgesJSON []byte

	err := r.db.QueryRow(ctx, query, programID).Scan(&g.LoyaltyProgramID, &nodesJSON, &edgesJSON, &g.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find rule graph: %w", err)
	}

	if err := json.Unmarshal(nodesJSON, &g.Nodes); err != nil {
		return nil, fmt.Errorf("failed to unmarshal nodes: %w", err)
	}
	if err := json.Unmarshal(edgesJSON, &g.Edges); err != nil {
		return nil, fmt.Errorf("failed to unmarshal edges: %w", err)
	}

	return &g, nil
}
