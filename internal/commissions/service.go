package commissions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/arcacommerce/arca-backend/internal/users"
	"github.com/arcacommerce/arca-backend/pkg/auth"
	"github.com/arcacommerce/arca-backend/pkg/db/models"
	"github.com/arcacommerce/arca-backend/pkg/enums"
	pkgerrors "github.com/arcacommerce/arca-backend/pkg/errors"
	"github.com/arcacommerce/arca-backend/pkg/logger"
	"github.com/arcacommerce/arca-backend/pkg/metrics"
	"github.com/arcacommerce/arca-backend/pkg/money"
	"github.com/arcacommerce/arca-backend/pkg/pagination"
)

// Engine computes the commissions owed on a paid order inside the caller's transaction.
type Engine interface {
	ComputeAndPersist(ctx context.Context, tx *gorm.DB, order *models.Order) ([]models.CommissionRecord, error)
}

// Service is the engine plus commission read paths and the eligibility sweep.
type Service interface {
	Engine
	ListForBeneficiary(ctx context.Context, actor auth.Actor, beneficiaryID uuid.UUID, params pagination.Params) (pagination.Page[CommissionDTO], error)
	ListAll(ctx context.Context, actor auth.Actor, input ListAllInput) (pagination.Page[CommissionDTO], error)
	Summary(ctx context.Context, actor auth.Actor, beneficiaryID uuid.UUID) (*SummaryDTO, error)
	PromoteDue(ctx context.Context) (int64, error)
}

type service struct {
	repo    *Repository
	users   *users.Repository
	rates   Rates
	metrics *metrics.SettlementMetrics
	logg    *logger.Logger
	now     func() time.Time
}

func NewService(repo *Repository, userRepo *users.Repository, rates Rates, rec *metrics.SettlementMetrics, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("commissions repository required")
	}
	if userRepo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		repo:    repo,
		users:   userRepo,
		rates:   rates,
		metrics: rec,
		logg:    logg,
		now:     func() time.Time { return time.Now().UTC() },
	}, nil
}

// ComputeAndPersist creates the consultant and two upline records for order, skipping any
// tier that already exists or rounds to zero. It is safe to call repeatedly for the same order.
func (s *service) ComputeAndPersist(ctx context.Context, tx *gorm.DB, order *models.Order) ([]models.CommissionRecord, error) {
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "commission computation requires a transaction")
	}
	if order == nil || !order.Status.IsSettled() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "commissions are computed for paid orders only")
	}

	userRepo := s.users.WithTx(tx)
	repo := s.repo.WithTx(tx)

	earner, err := s.resolveEarner(ctx, userRepo, order)
	if err != nil {
		return nil, err
	}
	if earner == nil {
		return nil, nil
	}

	base := money.FloorZero(order.TotalAmount.Sub(order.DiscountAmount))
	plan := []pendingRecord{{beneficiary: earner.ID, tier: tier{kind: enums.CommissionConsultant, rate: s.rates.Consultant}}}

	uplines, err := userRepo.Uplines(ctx, earner.ID, maxUplineHops)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "walk referral chain")
	}
	for i, tierSpec := range s.rates.uplineTiers() {
		if i >= len(uplines) {
			break
		}
		plan = append(plan, pendingRecord{beneficiary: uplines[i].ID, tier: tierSpec})
	}

	now := s.now()
	status, eligibleAt := enums.CommissionStatusEligible, now
	if s.rates.EligibilityDelay > 0 {
		status, eligibleAt = enums.CommissionStatusPending, now.Add(s.rates.EligibilityDelay)
	}

	created := make([]models.CommissionRecord, 0, len(plan))
	for _, item := range plan {
		amount := money.ApplyRate(base, item.tier.rate)
		if !amount.IsPositive() {
			continue
		}
		exists, err := repo.Exists(ctx, item.beneficiary, order.ID, item.tier.kind)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check existing commission")
		}
		if exists {
			continue
		}
		rec := models.CommissionRecord{
			BeneficiaryID: item.beneficiary,
			OrderID:       order.ID,
			Type:          item.tier.kind,
			Status:        status,
			Rate:          item.tier.rate,
			Amount:        amount,
			EligibleAt:    eligibleAt,
		}
		inserted, err := repo.InsertIgnoringDuplicate(ctx, &rec)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert commission")
		}
		if !inserted {
			s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
				"order_id":       order.ID.String(),
				"beneficiary_id": item.beneficiary.String(),
				"type":           string(item.tier.kind),
			}), "concurrent commission insert discarded")
			continue
		}
		s.metrics.CommissionCreated(string(item.tier.kind))
		created = append(created, rec)
	}
	return created, nil
}

type pendingRecord struct {
	beneficiary uuid.UUID
	tier        tier
}

// resolveEarner prefers the order's attributed consultant, then a consultant buyer.
func (s *service) resolveEarner(ctx context.Context, repo *users.Repository, order *models.Order) (*models.User, error) {
	if order.ConsultantID != nil {
		consultant, err := repo.FindByID(ctx, *order.ConsultantID)
		if err == nil {
			return consultant, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load consultant")
		}
		s.logg.Warn(s.logg.WithOrderID(ctx, order.ID.String()), "attributed consultant no longer exists")
		return nil, nil
	}
	buyer, err := repo.FindByID(ctx, order.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "buyer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load buyer")
	}
	if buyer.Role.CanEarnCommission() {
		return buyer, nil
	}
	return nil, nil
}

func (s *service) ListForBeneficiary(ctx context.Context, actor auth.Actor, beneficiaryID uuid.UUID, params pagination.Params) (pagination.Page[CommissionDTO], error) {
	if !actor.CanAccess(beneficiaryID) {
		return pagination.Page[CommissionDTO]{}, pkgerrors.New(pkgerrors.CodeForbidden, "cannot view another user's commissions")
	}
	return s.list(ctx, Filter{BeneficiaryID: &beneficiaryID}, params)
}

func (s *service) ListAll(ctx context.Context, actor auth.Actor, input ListAllInput) (pagination.Page[CommissionDTO], error) {
	if actor.Role != enums.UserRoleAdmin {
		return pagination.Page[CommissionDTO]{}, pkgerrors.New(pkgerrors.CodeForbidden, "admin required")
	}
	filter := Filter{BeneficiaryID: input.BeneficiaryID}
	if input.Status != "" {
		status, err := enums.ParseCommissionStatus(input.Status)
		if err != nil {
			return pagination.Page[CommissionDTO]{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter")
		}
		filter.Status = status
	}
	return s.list(ctx, filter, input.Params)
}

func (s *service) list(ctx context.Context, filter Filter, params pagination.Params) (pagination.Page[CommissionDTO], error) {
	rows, err := s.repo.List(ctx, filter, params)
	if err != nil {
		if errors.Is(err, pagination.ErrInvalidCursor) {
			return pagination.Page[CommissionDTO]{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		return pagination.Page[CommissionDTO]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list commissions")
	}
	return pagination.Build(fromModels(rows), params, cursorOf), nil
}

func (s *service) Summary(ctx context.Context, actor auth.Actor, beneficiaryID uuid.UUID) (*SummaryDTO, error) {
	if !actor.CanAccess(beneficiaryID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "cannot view another user's commissions")
	}
	rows, err := s.repo.ListAmountsForBeneficiary(ctx, beneficiaryID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load commission totals")
	}
	summary := &SummaryDTO{
		BeneficiaryID: beneficiaryID,
		Totals:        map[enums.CommissionStatus]decimal.Decimal{},
		Counts:        map[enums.CommissionStatus]int{},
	}
	for _, row := range rows {
		summary.Totals[row.Status] = summary.Totals[row.Status].Add(row.Amount)
		summary.Counts[row.Status]++
	}
	return summary, nil
}

// PromoteDue releases pending records whose delay has elapsed.
func (s *service) PromoteDue(ctx context.Context) (int64, error) {
	promoted, err := s.repo.PromoteDue(ctx, s.now())
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "promote pending commissions")
	}
	return promoted, nil
}
