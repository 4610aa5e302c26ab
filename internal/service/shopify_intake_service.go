// internal/service/shopify_intake_service.go
package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"loyaltystudio-service/internal/domain/member"
	"loyaltystudio-service/internal/domain/transaction"
	xerrors "loyaltystudio-service/internal/pkg/errors"
	"loyaltystudio-service/internal/shopify"

	"go.uber.org/zap"
)

// ShopifyIntakeService processes inbound Shopify webhooks: order events
// drive auto-enrollment and point earning, uninstalls tear the shop down.
type ShopifyIntakeService struct {
	merchants    *MerchantService
	programs     *ProgramService
	members      *MemberService
	transactions *TransactionService
	logger       *zap.Logger
}

func NewShopifyIntakeService(
	merchants *MerchantService,
	programs *ProgramService,
	members *MemberService,
	transactions *TransactionService,
	logger *zap.Logger,
) *ShopifyIntakeService {
	return &ShopifyIntakeService{
		merchants:    merchants,
		programs:     programs,
		members:      members,
		transactions: transactions,
		logger:       logger,
	}
}

// HandleOrderCreated enrolls the order's customer (when auto-enroll is on)
// and awards points against the merchant's first active program. A shop
// without a merchant or a program is not an error; Shopify retries on
// non-2xx and there is nothing to retry into.
func (s *ShopifyIntakeService) HandleOrderCreated(ctx context.Context, shopDomain string, order *shopify.OrderPayload) error {
	m, err := s.merchants.GetByShopDomain(ctx, shopDomain)
	if err != nil {
		if xerrors.Is(err, xerrors.ErrNotFound) {
			return nil
		}
		return err
	}

	settings, err := s.merchants.GetSettings(ctx, m.ID)
	if err != nil {
		if xerrors.Is(err, xerrors.ErrNotFound) {
			return nil
		}
		return err
	}
	if !settings.PointsOnOrders {
		return nil
	}

	email := strings.ToLower(strings.TrimSpace(order.CustomerEmail()))
	if email == "" {
		s.logger.Debug("order without customer email, skipping",
			zap.String("shop_domain", shopDomain),
			zap.Int64("order_id", order.ID),
		)
		return nil
	}

	prog, err := s.firstActiveProgram(ctx, m.ID)
	if err != nil || prog == "" {
		return err
	}

	mem, err := s.members.FindByEmail(ctx, prog, email)
	if err != nil {
		if !xerrors.Is(err, xerrors.ErrNotFound) {
			return err
		}
		if !settings.AutoEnrollOnOrder {
			return nil
		}
		mem, err = s.members.Create(ctx, m.ID, prog, &member.CreateMemberRequest{
			Email: email,
			Name:  order.CustomerName(),
		})
		if err != nil {
			return err
		}
	}

	amount, err := strconv.ParseFloat(strings.TrimSpace(order.TotalPrice), 64)
	if err != nil || amount <= 0 {
		return nil
	}

	_, err = s.transactions.Earn(ctx, m.ID, prog, &transaction.EarnRequest{
		MemberID:    mem.ID,
		OrderAmount: amount,
		OrderRef:    fmt.Sprintf("shopify:%d", order.ID),
		Description: "shopify order " + order.Name,
	})
	if err != nil {
		// Orders below every earning threshold come out to zero points.
		if xerrors.Is(err, xerrors.ErrInvalidInput) {
			return nil
		}
		return err
	}

	return nil
}

// HandleOrderCancelled reverses the points granted for the order, if any.
// Reversals are recorded under their own order ref so a redelivered
// cancellation webhook finds them and does nothing.
func (s *ShopifyIntakeService) HandleOrderCancelled(ctx context.Context, shopDomain string, order *shopify.OrderPayload) error {
	m, err := s.merchants.GetByShopDomain(ctx, shopDomain)
	if err != nil {
		if xerrors.Is(err, xerrors.ErrNotFound) {
			return nil
		}
		return err
	}

	orderRef := fmt.Sprintf("shopify:%d", order.ID)
	reversalRef := orderRef + ":cancelled"

	if _, err := s.transactions.FindByOrderRef(ctx, reversalRef); err == nil {
		return nil
	} else if !xerrors.Is(err, xerrors.ErrNotFound) {
		return err
	}

	earned, err := s.transactions.FindByOrderRef(ctx, orderRef)
	if err != nil {
		if xerrors.Is(err, xerrors.ErrNotFound) {
			return nil
		}
		return err
	}
	if earned.Type != transaction.TypeEarn || earned.Points <= 0 {
		return nil
	}

	mem, err := s.members.Get(ctx, earned.MemberID)
	if err != nil {
		if xerrors.Is(err, xerrors.ErrNotFound) {
			return nil
		}
		return err
	}

	// The member may have spent part of the grant already; claw back what
	// is left rather than driving the balance negative.
	points := earned.Points
	if mem.PointsBalance < points {
		points = mem.PointsBalance
	}
	if points <= 0 {
		return nil
	}

	_, err = s.transactions.Adjust(ctx, m.ID, mem.LoyaltyProgramID, &transaction.AdjustRequest{
		MemberID:    mem.ID,
		Points:      -points,
		Description: "reversal for cancelled shopify order " + order.Name,
		OrderRef:    reversalRef,
	})
	return err
}

// HandleCustomerUpsert keeps member records in step with Shopify customer
// events: known members get their display name refreshed, unknown ones are
// enrolled when auto-enroll is on.
func (s *ShopifyIntakeService) HandleCustomerUpsert(ctx context.Context, shopDomain string, cust *shopify.CustomerPayload) error {
	m, err := s.merchants.GetByShopDomain(ctx, shopDomain)
	if err != nil {
		if xerrors.Is(err, xerrors.ErrNotFound) {
			return nil
		}
		return err
	}

	settings, err := s.merchants.GetSettings(ctx, m.ID)
	if err != nil {
		if xerrors.Is(err, xerrors.ErrNotFound) {
			return nil
		}
		return err
	}

	email := strings.ToLower(strings.TrimSpace(cust.Email))
	if email == "" {
		return nil
	}

	prog, err := s.firstActiveProgram(ctx, m.ID)
	if err != nil || prog == "" {
		return err
	}

	mem, err := s.members.FindByEmail(ctx, prog, email)
	if err != nil {
		if !xerrors.Is(err, xerrors.ErrNotFound) {
			return err
		}
		if !settings.AutoEnrollOnOrder {
			return nil
		}
		_, err = s.members.Create(ctx, m.ID, prog, &member.CreateMemberRequest{
			Email:       email,
			Name:        cust.Name(),
			ExternalRef: fmt.Sprintf("shopify:%d", cust.ID),
		})
		return err
	}

	if name := cust.Name(); name != "" && name != email && name != mem.Name {
		_, err = s.members.Update(ctx, m.ID, mem.ID, &member.UpdateMemberRequest{Name: &name})
		return err
	}

	return nil
}

// HandleAppUninstalled deactivates the shop mapping and kills its sessions.
func (s *ShopifyIntakeService) HandleAppUninstalled(ctx context.Context, shopDomain string) error {
	return s.merchants.HandleUninstall(ctx, shopDomain)
}

func (s *ShopifyIntakeService) firstActiveProgram(ctx context.Context, merchantID string) (string, error) {
	programs, err := s.programs.List(ctx, merchantID)
	if err != nil {
		return "", err
	}
	for i := range programs {
		if programs[i].IsActive {
			return programs[i].ID, nil
		}
	}
	return "", nil
}
