// internal/service/program_service.go
package service

import (
	"context"
	"database/sql"
	"fmt"

	"loyaltystudio-service/internal/domain/program"
	"loyaltystudio-service/internal/domain/reward"
	"loyaltystudio-service/internal/domain/webhook"
	xerrors "loyaltystudio-service/internal/pkg/errors"
	"loyaltystudio-service/internal/repository/postgres"
	"loyaltystudio-service/internal/webhookq"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

// ProgramService owns loyalty programs and the creation wizard. The
// wizard submission (program, earning rules, tiers, rewards) commits as
// one transaction: either the whole program exists or none of it does.
type ProgramService struct {
	db         *postgres.DB
	repo       *postgres.ProgramRepository
	tiers      *postgres.TierRepository
	rewards    *postgres.RewardRepository
	dispatcher *webhookq.Dispatcher
	logger     *zap.Logger
}

func NewProgramService(
	db *postgres.DB,
	repo *postgres.ProgramRepository,
	tiers *postgres.TierRepository,
	rewards *postgres.RewardRepository,
	dispatcher *webhookq.Dispatcher,
	logger *zap.Logger,
) *ProgramService {
	return &ProgramService{
		db:         db,
		repo:       repo,
		tiers:      tiers,
		rewards:    rewards,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// ProgramDetail is a program with its wizard-created children attached.
type ProgramDetail struct {
	Program      program.LoyaltyProgram `json:"program"`
	EarningRules []program.EarningRule  `json:"earning_rules"`
	Tiers        []program.Tier         `json:"tiers"`
	Rewards      []reward.Reward        `json:"rewards"`
	Completion   int                    `json:"completion_percent"`
}

// CreateFromWizard validates the aggregate form and writes it atomically.
func (s *ProgramService) CreateFromWizard(ctx context.Context, merchantID string, form *program.ProgramFormData) (*ProgramDetail, error) {
	if err := form.Validate(); err != nil {
		return nil, xerrors.Wrap(xerrors.ErrInvalidInput, err.Error())
	}
	for _, rw := range form.Rewards {
		if !reward.ValidType(reward.RewardType(rw.Type)) {
			return nil, xerrors.Wrap(xerrors.ErrInvalidInput, fmt.Sprintf("unknown reward type %q", rw.Type))
		}
	}

	p := &program.LoyaltyProgram{
		ID:                 ulid.Make().String(),
		MerchantID:         merchantID,
		Name:               form.BasicInfo.Name,
		PointsCurrencyName: defaultString(form.BasicInfo.PointsCurrencyName, "Points"),
		Currency:           defaultString(form.BasicInfo.Currency, "USD"),
		Timezone:           defaultString(form.BasicInfo.Timezone, "UTC"),
		IsActive:           true,
	}
	if form.BasicInfo.Description != "" {
		p.Description = sql.NullString{String: form.BasicInfo.Description, Valid: true}
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin wizard transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := s.repo.CreateTx(ctx, tx, p); err != nil {
		return nil, err
	}

	detail := &ProgramDetail{Program: *p, Completion: form.CompletionPercent()}

	for _, in := range form.Rules {
		er := &program.EarningRule{
			ID:               ulid.Make().String(),
			LoyaltyProgramID: p.ID,
			Name:             in.Name,
			Type:             in.Type,
			Points:           in.Points,
			IsActive:         true,
		}
		if err := s.repo.CreateEarningRuleTx(ctx, tx, er); err != nil {
			return nil, err
		}
		detail.EarningRules = append(detail.EarningRules, *er)
	}

	for _, in := range form.Tiers {
		t := &program.Tier{
			ID:               ulid.Make().String(),
			LoyaltyProgramID: p.ID,
			Name:             in.Name,
			PointsThreshold:  in.PointsThreshold,
			Benefits:         in.Benefits,
		}
		if in.Description != "" {
			t.Description = sql.NullString{String: in.Description, Valid: true}
		}
		if err := s.tiers.CreateTx(ctx, tx, t); err != nil {
			return nil, err
		}
		detail.Tiers = append(detail.Tiers, *t)
	}

	for _, in := range form.Rewards {
		rw := &reward.Reward{
			ID:               ulid.Make().String(),
			LoyaltyProgramID: p.ID,
			Name:             in.Name,
			Description:      in.Description,
			Type:             reward.RewardType(in.Type),
			PointsCost:       in.PointsCost,
			IsActive:         true,
		}
		if in.Stock != nil {
			rw.Stock = sql.NullInt32{Int32: int32(*in.Stock), Valid: true}
		}
		if in.ValidityPeriod != nil {
			rw.ValidityPeriod = sql.NullInt32{Int32: int32(*in.ValidityPeriod), Valid: true}
		}
		if in.RedemptionLimit != nil {
			rw.RedemptionLimit = sql.NullInt32{Int32: int32(*in.RedemptionLimit), Valid: true}
		}
		if err := s.rewards.CreateTx(ctx, tx, rw); err != nil {
			return nil, err
		}
		detail.Rewards = append(detail.Rewards, *rw)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit wizard transaction: %w", err)
	}

	s.logger.Info("program created",
		zap.String("program_id", p.ID),
		zap.String("merchant_id", merchantID),
		zap.Int("rules", len(detail.EarningRules)),
		zap.Int("tiers", len(detail.Tiers)),
		zap.Int("rewards", len(detail.Rewards)),
	)

	s.dispatcher.Publish(merchantID, webhook.EventProgramCreated, p)

	return detail, nil
}

// Get loads a program with its children and completion percentage.
func (s *ProgramService) Get(ctx context.Context, id string) (*ProgramDetail, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	earningRules, err := s.repo.ListEarningRules(ctx, id)
	if err != nil {
		return nil, err
	}
	tiers, err := s.tiers.ListByProgram(ctx, id)
	if err != nil {
		return nil, err
	}
	rewards, err := s.rewards.ListByProgram(ctx, id)
	if err != nil {
		return nil, err
	}

	form := program.ProgramFormData{
		BasicInfo: program.BasicInfo{Name: p.Name},
	}
	form.Rules = make([]program.RuleInput, len(earningRules))
	form.Tiers = make([]program.TierInput, len(tiers))
	form.Rewards = make([]program.RewardInput, len(rewards))

	return &ProgramDetail{
		Program:      *p,
		EarningRules: earningRules,
		Tiers:        tiers,
		Rewards:      rewards,
		Completion:   form.CompletionPercent(),
	}, nil
}

// List returns a merchant's programs.
func (s *ProgramService) List(ctx context.Context, merchantID string) ([]program.LoyaltyProgram, error) {
	return s.repo.ListByMerchant(ctx, merchantID)
}

// Update rewrites a program's mutable fields.
func (s *ProgramService) Update(ctx context.Context, id string, req *program.UpdateProgramRequest) (*program.LoyaltyProgram, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if *req.Name == "" {
			return nil, xerrors.Wrap(xerrors.ErrInvalidInput, "program name cannot be empty")
		}
		p.Name = *req.Name
	}
	if req.Description != nil {
		p.Description = sql.NullString{String: *req.Description, Valid: *req.Description != ""}
	}
	if req.PointsCurrencyName != nil {
		p.PointsCurrencyName = *req.PointsCurrencyName
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}

	return p, nil
}

// Delete removes a program and all of its children.
func (s *ProgramService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// DefaultTier returns the tier new members land in for a program, or nil
// when the program has no tiers.
func (s *ProgramService) DefaultTier(ctx context.Context, programID string) (*program.Tier, error) {
	tiers, err := s.tiers.ListByProgram(ctx, programID)
	if err != nil {
		return nil, err
	}
	return program.DefaultTier(tiers), nil
}

// ListTiers returns a program's tiers, lowest threshold first.
func (s *ProgramService) ListTiers(ctx context.Context, programID string) ([]program.Tier, error) {
	return s.tiers.ListByProgram(ctx, programID)
}

// CreateTier adds a tier to an existing program.
func (s *ProgramService) CreateTier(ctx context.Context, programID string, req *program.CreateTierRequest) (*program.Tier, error) {
	if _, err := s.repo.FindByID(ctx, programID); err != nil {
		return nil, err
	}

	t := &program.Tier{
		ID:               ulid.Make().String(),
		LoyaltyProgramID: programID,
		Name:             req.Name,
		PointsThreshold:  req.PointsThreshold,
		Benefits:         req.Benefits,
	}
	if req.Description != "" {
		t.Description = sql.NullString{String: req.Description, Valid: true}
	}

	if err := s.tiers.Create(ctx, t); err != nil {
		return nil, err
	}

	return t, nil
}

// UpdateTier rewrites a tier's mutable fields.
func (s *ProgramService) UpdateTier(ctx context.Context, tierID string, req *program.UpdateTierRequest) (*program.Tier, error) {
	t, err := s.tiers.FindByID(ctx, tierID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		t.Name = *req.Name
	}
	if req.Description != nil {
		t.Description = sql.NullString{String: *req.Description, Valid: *req.Description != ""}
	}
	if req.PointsThreshold != nil {
		t.PointsThreshold = *req.PointsThreshold
	}
	if req.Benefits != nil {
		t.Benefits = req.Benefits
	}

	if err := s.tiers.Update(ctx, t); err != nil {
		return nil, err
	}

	return t, nil
}

// DeleteTier removes a tier. Members pointing at it fall back to no tier
// through the FK's ON DELETE SET NULL.
func (s *ProgramService) DeleteTier(ctx context.Context, tierID string) error {
	return s.tiers.Delete(ctx, tierID)
}
