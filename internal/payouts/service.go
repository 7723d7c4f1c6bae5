package payouts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/arcacommerce/arca-backend/internal/commissions"
	"github.com/arcacommerce/arca-backend/pkg/auth"
	"github.com/arcacommerce/arca-backend/pkg/config"
	"github.com/arcacommerce/arca-backend/pkg/db/models"
	"github.com/arcacommerce/arca-backend/pkg/enums"
	pkgerrors "github.com/arcacommerce/arca-backend/pkg/errors"
	"github.com/arcacommerce/arca-backend/pkg/logger"
	"github.com/arcacommerce/arca-backend/pkg/metrics"
	"github.com/arcacommerce/arca-backend/pkg/money"
	"github.com/arcacommerce/arca-backend/pkg/outbox"
	"github.com/arcacommerce/arca-backend/pkg/outbox/payloads"
	"github.com/arcacommerce/arca-backend/pkg/pagination"
)

const maxWindowDays = 365

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service batches eligible commissions into payouts and serves payout reads.
type Service interface {
	// GeneratePayouts claims every eligible, unlinked commission created in [start, end).
	GeneratePayouts(ctx context.Context, start, end time.Time, claim enums.CommissionStatus, trigger Trigger) (*GenerateResult, error)
	GenerateTrailing(ctx context.Context, actor auth.Actor, days int) (*GenerateResult, error)
	RunScheduled(ctx context.Context) (*GenerateResult, error)
	Get(ctx context.Context, actor auth.Actor, payoutID uuid.UUID) (*PayoutDTO, error)
	ListForBeneficiary(ctx context.Context, actor auth.Actor, beneficiaryID uuid.UUID, params pagination.Params) (pagination.Page[PayoutDTO], error)
	ListAll(ctx context.Context, actor auth.Actor, params pagination.Params) (pagination.Page[PayoutDTO], error)
}

type service struct {
	repo        *Repository
	commissions *commissions.Repository
	tx          txRunner
	outbox      outboxPublisher
	cfg         config.PayoutsConfig
	metrics     *metrics.SettlementMetrics
	logg        *logger.Logger
	now         func() time.Time
}

func NewService(repo *Repository, commissionRepo *commissions.Repository, tx txRunner, outbox outboxPublisher, cfg config.PayoutsConfig, rec *metrics.SettlementMetrics, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("payouts repository required")
	}
	if commissionRepo == nil {
		return nil, fmt.Errorf("commissions repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		repo:        repo,
		commissions: commissionRepo,
		tx:          tx,
		outbox:      outbox,
		cfg:         cfg,
		metrics:     rec,
		logg:        logg,
		now:         func() time.Time { return time.Now().UTC() },
	}, nil
}

// errNothingClaimed aborts a beneficiary transaction whose commissions were taken by another run.
var errNothingClaimed = errors.New("nothing claimed")

func (s *service) GeneratePayouts(ctx context.Context, start, end time.Time, claim enums.CommissionStatus, trigger Trigger) (*GenerateResult, error) {
	start, end = start.UTC(), end.UTC()
	if !start.Before(end) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "period_start must be before period_end")
	}
	if claim != enums.CommissionStatusLocked && claim != enums.CommissionStatusPaid {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "claim status must be locked or paid")
	}

	result := &GenerateResult{PeriodStart: start, PeriodEnd: end, Payouts: []PayoutDTO{}}
	beneficiaries, err := s.commissions.ClaimableBeneficiaries(ctx, start, end)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list claimable beneficiaries")
	}

	ctx = s.logg.WithFields(ctx, map[string]any{"trigger": string(trigger), "period_start": start, "period_end": end})
	var errs error
	for _, beneficiaryID := range beneficiaries {
		payout, linked, err := s.generateFor(ctx, beneficiaryID, start, end, claim, trigger)
		if err != nil {
			s.logg.Error(s.logg.WithField(ctx, "beneficiary_id", beneficiaryID.String()), "payout generation failed", err)
			errs = multierr.Append(errs, fmt.Errorf("beneficiary %s: %w", beneficiaryID, err))
			continue
		}
		if payout == nil {
			continue
		}
		s.metrics.PayoutGenerated(string(trigger), payout.Amount)
		result.PayoutsCreated++
		result.CommissionsLinked += linked
		result.Payouts = append(result.Payouts, FromModel(payout))
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"payouts_created":    result.PayoutsCreated,
		"commissions_linked": result.CommissionsLinked,
	}), "payout generation finished")
	if errs != nil {
		return result, pkgerrors.Wrap(pkgerrors.CodeDependency, errs, "payout generation incomplete")
	}
	return result, nil
}

// generateFor claims one beneficiary's commissions in its own transaction. A nil payout means
// there was nothing positive left to claim.
func (s *service) generateFor(ctx context.Context, beneficiaryID uuid.UUID, start, end time.Time, claim enums.CommissionStatus, trigger Trigger) (*models.Payout, int, error) {
	var (
		payout *models.Payout
		linked int
	)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		commissionRepo := s.commissions.WithTx(tx)
		repo := s.repo.WithTx(tx)

		rows, err := commissionRepo.ListClaimable(ctx, beneficiaryID, start, end)
		if err != nil {
			return err
		}
		ids := make([]uuid.UUID, 0, len(rows))
		amounts := make([]decimal.Decimal, 0, len(rows))
		for _, row := range rows {
			ids = append(ids, row.ID)
			amounts = append(amounts, row.Amount)
		}
		total := money.RoundHalfUp(money.Sum(amounts...))
		if !total.IsPositive() {
			return errNothingClaimed
		}

		payout = &models.Payout{
			BeneficiaryID: beneficiaryID,
			PeriodStart:   start,
			PeriodEnd:     end,
			Amount:        total,
			Status:        enums.PayoutStatusPending,
			State:         enums.PayoutStateGenerated,
		}
		if err := repo.Create(ctx, payout); err != nil {
			return err
		}
		claimed, err := commissionRepo.Claim(ctx, ids, payout.ID, claim)
		if err != nil {
			return err
		}
		if claimed == 0 {
			return errNothingClaimed
		}
		linked = int(claimed)
		if linked != len(ids) {
			// Another run claimed part of the batch; pay only what this payout holds.
			held, err := commissionRepo.ListByPayout(ctx, payout.ID)
			if err != nil {
				return err
			}
			amounts = amounts[:0]
			for _, row := range held {
				amounts = append(amounts, row.Amount)
			}
			total = money.RoundHalfUp(money.Sum(amounts...))
			if !total.IsPositive() {
				return errNothingClaimed
			}
			if err := repo.UpdateAmount(ctx, payout.ID, total); err != nil {
				return err
			}
			payout.Amount = total
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventPayoutsGenerated,
			AggregateType: enums.AggregatePayout,
			AggregateID:   payout.ID,
			Data: payloads.PayoutGeneratedEvent{
				PayoutID:        payout.ID,
				BeneficiaryID:   beneficiaryID,
				Amount:          payout.Amount,
				PeriodStart:     start,
				PeriodEnd:       end,
				CommissionCount: linked,
				ClaimStatus:     claim,
				Trigger:         string(trigger),
			},
		})
	})
	if errors.Is(err, errNothingClaimed) {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, err
	}
	return payout, linked, nil
}

// GenerateTrailing is the admin variant: the trailing window ends now and claims lock.
func (s *service) GenerateTrailing(ctx context.Context, actor auth.Actor, days int) (*GenerateResult, error) {
	if actor.Role != enums.UserRoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "admin required")
	}
	if days == 0 {
		days = s.cfg.WindowDays
	}
	if days < 1 || days > maxWindowDays {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("days must be between 1 and %d", maxWindowDays))
	}
	end := s.now()
	return s.GeneratePayouts(ctx, end.AddDate(0, 0, -days), end, enums.CommissionStatusLocked, TriggerAdmin)
}

// RunScheduled generates over the configured trailing window with the configured claim status.
func (s *service) RunScheduled(ctx context.Context) (*GenerateResult, error) {
	days := s.cfg.WindowDays
	if days <= 0 {
		days = 30
	}
	claim := enums.CommissionStatusLocked
	if strings.EqualFold(strings.TrimSpace(s.cfg.ScheduledClaimStatus), string(enums.CommissionStatusPaid)) {
		claim = enums.CommissionStatusPaid
	}
	end := s.now()
	return s.GeneratePayouts(ctx, end.AddDate(0, 0, -days), end, claim, TriggerScheduled)
}

func (s *service) Get(ctx context.Context, actor auth.Actor, payoutID uuid.UUID) (*PayoutDTO, error) {
	payout, err := s.repo.FindByID(ctx, payoutID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payout not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payout")
	}
	if !actor.CanAccess(payout.BeneficiaryID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "cannot view another user's payout")
	}
	dto := FromModel(payout)
	return &dto, nil
}

func (s *service) ListForBeneficiary(ctx context.Context, actor auth.Actor, beneficiaryID uuid.UUID, params pagination.Params) (pagination.Page[PayoutDTO], error) {
	if !actor.CanAccess(beneficiaryID) {
		return pagination.Page[PayoutDTO]{}, pkgerrors.New(pkgerrors.CodeForbidden, "cannot view another user's payouts")
	}
	return s.list(ctx, &beneficiaryID, params)
}

func (s *service) ListAll(ctx context.Context, actor auth.Actor, params pagination.Params) (pagination.Page[PayoutDTO], error) {
	if actor.Role != enums.UserRoleAdmin {
		return pagination.Page[PayoutDTO]{}, pkgerrors.New(pkgerrors.CodeForbidden, "admin required")
	}
	return s.list(ctx, nil, params)
}

func (s *service) list(ctx context.Context, beneficiaryID *uuid.UUID, params pagination.Params) (pagination.Page[PayoutDTO], error) {
	rows, err := s.repo.List(ctx, beneficiaryID, params)
	if err != nil {
		if errors.Is(err, pagination.ErrInvalidCursor) {
			return pagination.Page[PayoutDTO]{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		return pagination.Page[PayoutDTO]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list payouts")
	}
	out := make([]PayoutDTO, 0, len(rows))
	for i := range rows {
		out = append(out, FromModel(&rows[i]))
	}
	return pagination.Build(out, params, cursorOf), nil
}
