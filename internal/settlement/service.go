// Package settlement closes out payouts and voids commissions on the refund path.
package settlement

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/arcacommerce/arca-backend/internal/commissions"
	"github.com/arcacommerce/arca-backend/internal/payouts"
	"github.com/arcacommerce/arca-backend/pkg/auth"
	"github.com/arcacommerce/arca-backend/pkg/config"
	"github.com/arcacommerce/arca-backend/pkg/enums"
	pkgerrors "github.com/arcacommerce/arca-backend/pkg/errors"
	"github.com/arcacommerce/arca-backend/pkg/logger"
	"github.com/arcacommerce/arca-backend/pkg/metrics"
	"github.com/arcacommerce/arca-backend/pkg/money"
	"github.com/arcacommerce/arca-backend/pkg/outbox"
	"github.com/arcacommerce/arca-backend/pkg/outbox/payloads"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// MarkPaidInput records how a payout was disbursed. An empty method falls back to the
// configured default; the reference is optional.
type MarkPaidInput struct {
	Method    enums.PaymentMethod `json:"method"`
	Reference string              `json:"reference" validate:"max=128"`
}

type Service interface {
	MarkPayoutPaid(ctx context.Context, actor auth.Actor, payoutID uuid.UUID, input MarkPaidInput) (*payouts.PayoutDTO, error)
	VoidOrderCommissions(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) (int64, error)
}

type service struct {
	payouts       *payouts.Repository
	commissions   *commissions.Repository
	tx            txRunner
	outbox        outboxPublisher
	defaultMethod enums.PaymentMethod
	metrics       *metrics.SettlementMetrics
	logg          *logger.Logger
	now           func() time.Time
}

func NewService(payoutRepo *payouts.Repository, commissionRepo *commissions.Repository, tx txRunner, outbox outboxPublisher, cfg config.PayoutsConfig, rec *metrics.SettlementMetrics, logg *logger.Logger) (Service, error) {
	if payoutRepo == nil {
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
	defaultMethod := enums.PaymentMethodMpesa
	if m := strings.TrimSpace(cfg.DefaultMethod); m != "" {
		defaultMethod = enums.PaymentMethod(strings.ToLower(m))
	}
	if !defaultMethod.IsValid() {
		return nil, fmt.Errorf("invalid default payout method %q", cfg.DefaultMethod)
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		payouts:       payoutRepo,
		commissions:   commissionRepo,
		tx:            tx,
		outbox:        outbox,
		defaultMethod: defaultMethod,
		metrics:       rec,
		logg:          logg,
		now:           func() time.Time { return time.Now().UTC() },
	}, nil
}

// MarkPayoutPaid records the disbursement and moves linked non-void commissions to paid.
// The first call settles the payout at the sum of its non-void commissions, which may be zero
// when every linked order was refunded. Repeating the call re-applies method and reference but
// keeps the settled amount.
func (s *service) MarkPayoutPaid(ctx context.Context, actor auth.Actor, payoutID uuid.UUID, input MarkPaidInput) (*payouts.PayoutDTO, error) {
	if actor.Role != enums.UserRoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "admin required")
	}
	method := enums.PaymentMethod(strings.ToLower(strings.TrimSpace(string(input.Method))))
	if method == "" {
		method = s.defaultMethod
	}
	if !method.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method")
	}
	var reference *string
	if ref := strings.TrimSpace(input.Reference); ref != "" {
		if len(ref) > 128 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "reference too long")
		}
		reference = &ref
	}

	var dto payouts.PayoutDTO
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.payouts.WithTx(tx)
		payout, err := repo.FindByIDForUpdate(ctx, payoutID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "payout not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payout")
		}

		commissionRepo := s.commissions.WithTx(tx)
		amount := payout.Amount
		if payout.State != enums.PayoutStatePaid {
			amount, err = payableAmount(ctx, commissionRepo, payout.ID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum payout commissions")
			}
			if !amount.Equal(payout.Amount) {
				s.logg.Warn(s.logg.WithPayoutID(ctx, payout.ID.String()), "payout amount reduced by voided commissions")
			}
		}

		paidAt := s.now()
		if err := repo.Update(ctx, payout.ID, map[string]any{
			"status":    enums.PayoutStatusProcessed,
			"state":     enums.PayoutStatePaid,
			"amount":    amount,
			"paid_at":   paidAt,
			"method":    method,
			"reference": reference,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update payout")
		}
		if _, err := commissionRepo.MarkPaidByPayout(ctx, payout.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark commissions paid")
		}

		payout.Status = enums.PayoutStatusProcessed
		payout.State = enums.PayoutStatePaid
		payout.Amount = amount
		payout.PaidAt = &paidAt
		payout.Method = &method
		payout.Reference = reference
		dto = payouts.FromModel(payout)

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventPayoutPaid,
			AggregateType: enums.AggregatePayout,
			AggregateID:   payout.ID,
			Actor:         &outbox.ActorRef{UserID: actor.UserID, Role: actor.Role},
			Data: payloads.PayoutPaidEvent{
				PayoutID:      payout.ID,
				BeneficiaryID: payout.BeneficiaryID,
				Amount:        payout.Amount,
				Method:        payout.Method,
				Reference:     payout.Reference,
				PaidAt:        paidAt,
			},
		})
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark payout paid")
	}

	s.metrics.PayoutPaid()
	s.logg.Info(s.logg.WithPayoutID(ctx, payoutID.String()), "payout marked paid")
	return &dto, nil
}

func payableAmount(ctx context.Context, repo *commissions.Repository, payoutID uuid.UUID) (decimal.Decimal, error) {
	rows, err := repo.ListByPayout(ctx, payoutID)
	if err != nil {
		return decimal.Zero, err
	}
	amounts := make([]decimal.Decimal, 0, len(rows))
	for _, row := range rows {
		if row.Status == enums.CommissionStatusVoid {
			continue
		}
		amounts = append(amounts, row.Amount)
	}
	return money.RoundHalfUp(money.Sum(amounts...)), nil
}

// VoidOrderCommissions voids every commission on the order inside the caller's transaction.
// Records keep their amount and payout link.
func (s *service) VoidOrderCommissions(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) (int64, error) {
	if tx == nil {
		return 0, pkgerrors.New(pkgerrors.CodeInternal, "voiding commissions requires a transaction")
	}
	voided, err := s.commissions.WithTx(tx).VoidByOrder(ctx, orderID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "void commissions")
	}
	s.metrics.CommissionsVoided(int(voided))
	return voided, nil
}
