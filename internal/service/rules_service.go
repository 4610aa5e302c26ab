// internal/service/rules_service.go
package service

import (
	"context"
	"database/sql"

	"loyaltystudio-service/internal/domain/rules"
	xerrors "loyaltystudio-service/internal/pkg/errors"
	"loyaltystudio-service/internal/repository/postgres"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

// RulesService owns enhanced rules and the visual rule graph. Rules are
// saved as a whole list per program; the graph is upserted as one row.
type RulesService struct {
	repo     *postgres.RulesRepository
	programs *postgres.ProgramRepository
	logger   *zap.Logger
}

func NewRulesService(repo *postgres.RulesRepository, programs *postgres.ProgramRepository, logger *zap.Logger) *RulesService {
	return &RulesService{repo: repo, programs: programs, logger: logger}
}

// ReplaceAll validates and atomically replaces the program's rule list.
// Operators invalidated by a condition type change are reset to the
// type's default before validation, matching the builder's behavior.
func (s *RulesService) ReplaceAll(ctx context.Context, programID string, inputs []rules.RuleInput) ([]rules.EnhancedRule, error) {
	if _, err := s.programs.FindByID(ctx, programID); err != nil {
		return nil, err
	}

	list := make([]rules.EnhancedRule, 0, len(inputs))
	for i, in := range inputs {
		r := rules.EnhancedRule{
			ID:               in.ID,
			LoyaltyProgramID: programID,
			Name:             in.Name,
			IsActive:         true,
			Position:         i,
			Conditions:       make([]rules.Condition, len(in.Conditions)),
			Effects:          in.Effects,
		}
		if r.ID == "" {
			r.ID = ulid.Make().String()
		}
		if in.Description != "" {
			r.Description = sql.NullString{String: in.Description, Valid: true}
		}
		if in.IsActive != nil {
			r.IsActive = *in.IsActive
		}

		for j, c := range in.Conditions {
			r.Conditions[j] = rules.NormalizeCondition(c)
		}

		if err := r.Validate(); err != nil {
			return nil, xerrors.Wrap(xerrors.ErrInvalidInput, err.Error())
		}

		list = append(list, r)
	}

	if err := s.repo.ReplaceAll(ctx, programID, list); err != nil {
		return nil, err
	}

	s.logger.Info("rules replaced",
		zap.String("program_id", programID),
		zap.Int("count", len(list)),
	)

	return list, nil
}

// List returns a program's rules in display order.
func (s *RulesService) List(ctx context.Context, programID string) ([]rules.EnhancedRule, error) {
	return s.repo.ListByProgram(ctx, programID)
}

// SaveGraph validates and persists the visual rule builder state.
func (s *RulesService) SaveGraph(ctx context.Context, programID string, req *rules.SaveGraphRequest) (*rules.Graph, error) {
	if _, err := s.programs.FindByID(ctx, programID); err != nil {
		return nil, err
	}

	g := &rules.Graph{
		LoyaltyProgramID: programID,
		Nodes:            req.Nodes,
		Edges:            req.Edges,
	}
	if err := g.Validate(); err != nil {
		return nil, xerrors.Wrap(xerrors.ErrInvalidInput, err.Error())
	}

	if err := s.repo.SaveGraph(ctx, g); err != nil {
		return nil, err
	}

	return g, nil
}

// GetGraph loads the program's rule graph.
func (s *RulesService) GetGraph(ctx context.Context, programID string) (*rules.Graph, error) {
	return s.repo.FindGraph(ctx, programID)
}

// EarningConfig flattens the saved graph for the transaction path. A
// program without a graph earns through its wizard rules alone.
func (s *RulesService) EarningConfig(ctx context.Context, programID string) (*rules.EarningConfig, error) {
	g, err := s.repo.FindGraph(ctx, programID)
	if xerrors.Is(err, xerrors.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	cfg := g.Export()
	return &cfg, nil
}
