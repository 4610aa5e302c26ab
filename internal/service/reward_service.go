// internal/service/reward_service.go
package service

import (
	"context"
	"database/sql"
	"fmt"

	"loyaltystudio-service/internal/domain/reward"
	xerrors "loyaltystudio-service/internal/pkg/errors"
	"loyaltystudio-service/internal/repository/postgres"

	"github.com/oklog/ulid/v2"
)

type RewardService struct {
	repo     *postgres.RewardRepository
	programs *postgres.ProgramRepository
}

func NewRewardService(repo *postgres.RewardRepository, programs *postgres.ProgramRepository) *RewardService {
	return &RewardService{repo: repo, programs: programs}
}

// Create stores a reward in a program's catalog.
func (s *RewardService) Create(ctx context.Context, programID string, req *reward.CreateRewardRequest) (*reward.Reward, error) {
	if _, err := s.programs.FindByID(ctx, programID); err != nil {
		return nil, err
	}
	if !reward.ValidType(req.Type) {
		return nil, xerrors.Wrap(xerrors.ErrInvalidInput, fmt.Sprintf("unknown reward type %q", req.Type))
	}

	rw := &reward.Reward{
		ID:               ulid.Make().String(),
		LoyaltyProgramID: programID,
		Name:             req.Name,
		Description:      req.Description,
		Type:             req.Type,
		PointsCost:       req.PointsCost,
		IsActive:         true,
	}
	if req.Stock != nil {
		rw.Stock = sql.NullInt32{Int32: *req.Stock, Valid: true}
	}
	if req.ValidityPeriod != nil {
		rw.ValidityPeriod = sql.NullInt32{Int32: *req.ValidityPeriod, Valid: true}
	}
	if req.RedemptionLimit != nil {
		rw.RedemptionLimit = sql.NullInt32{Int32: *req.RedemptionLimit, Valid: true}
	}

	if err := s.repo.Create(ctx, rw); err != nil {
		return nil, err
	}

	return rw, nil
}

// Get retrieves a reward.
func (s *RewardService) Get(ctx context.Context, id string) (*reward.Reward, error) {
	return s.repo.FindByID(ctx, id)
}

// List returns a program's rewards, cheapest first.
func (s *RewardService) List(ctx context.Context, programID string) ([]reward.Reward, error) {
	return s.repo.ListByProgram(ctx, programID)
}

// Update rewrites a reward's mutable fields.
func (s *RewardService) Update(ctx context.Context, id string, req *reward.UpdateRewardRequest) (*reward.Reward, error) {
	rw, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		rw.Name = *req.Name
	}
	if req.Description != nil {
		rw.Description = *req.Description
	}
	if req.PointsCost != nil {
		rw.PointsCost = *req.PointsCost
	}
	if req.Stock != nil {
		rw.Stock = sql.NullInt32{Int32: *req.Stock, Valid: true}
	}
	if req.ValidityPeriod != nil {
		rw.ValidityPeriod = sql.NullInt32{Int32: *req.ValidityPeriod, Valid: true}
	}
	if req.RedemptionLimit != nil {
		rw.RedemptionLimit = sql.NullInt32{Int32: *req.RedemptionLimit, Valid: true}
	}
	if req.IsActive != nil {
		rw.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, rw); err != nil {
		return nil, err
	}

	return rw, nil
}

// Delete removes a reward from the catalog.
func (s *RewardService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
