package payouts

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/arcacommerce/arca-backend/internal/commissions"
	"github.com/arcacommerce/arca-backend/pkg/auth"
	"github.com/arcacommerce/arca-backend/pkg/config"
	"github.com/arcacommerce/arca-backend/pkg/db/dbtest"
	"github.com/arcacommerce/arca-backend/pkg/db/models"
	"github.com/arcacommerce/arca-backend/pkg/enums"
	pkgerrors "github.com/arcacommerce/arca-backend/pkg/errors"
	"github.com/arcacommerce/arca-backend/pkg/logger"
	"github.com/arcacommerce/arca-backend/pkg/outbox"
	"github.com/arcacommerce/arca-backend/pkg/pagination"
)

var (
	admin       = auth.Actor{UserID: uuid.New(), Role: enums.UserRoleAdmin}
	windowStart = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	windowEnd   = time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)
)

type fixture struct {
	svc    *service
	db     *gorm.DB
	outbox *outbox.Repository
}

func newFixture(t *testing.T, cfg config.PayoutsConfig) fixture {
	t.Helper()
	conn := dbtest.Open(t)
	outboxRepo := outbox.NewRepository(conn.DB())
	svc, err := NewService(
		NewRepository(conn.DB()),
		commissions.NewRepository(conn.DB()),
		conn,
		outbox.NewService(outboxRepo, logger.Nop()),
		cfg,
		nil,
		nil,
	)
	require.NoError(t, err)
	return fixture{svc: svc.(*service), db: conn.DB(), outbox: outboxRepo}
}

func mustCommission(t *testing.T, conn *gorm.DB, beneficiary uuid.UUID, amount string, status enums.CommissionStatus, createdAt time.Time) *models.CommissionRecord {
	t.Helper()
	rec := &models.CommissionRecord{
		BeneficiaryID: beneficiary,
		OrderID:       uuid.New(),
		Type:          enums.CommissionConsultant,
		Status:        status,
		Rate:          decimal.RequireFromString("0.05"),
		Amount:        decimal.RequireFromString(amount),
		EligibleAt:    createdAt,
		CreatedAt:     createdAt,
	}
	require.NoError(t, conn.Create(rec).Error)
	return rec
}

func TestGeneratePayoutsAggregatesPerBeneficiary(t *testing.T) {
	f := newFixture(t, config.PayoutsConfig{WindowDays: 30})
	ctx := context.Background()
	alice, bob, carol, dave := uuid.New(), uuid.New(), uuid.New(), uuid.New()

	a1 := mustCommission(t, f.db, alice, "10.00", enums.CommissionStatusEligible, windowStart)
	a2 := mustCommission(t, f.db, alice, "5.50", enums.CommissionStatusEligible, windowStart.Add(72*time.Hour))
	b1 := mustCommission(t, f.db, bob, "3.00", enums.CommissionStatusEligible, windowEnd.Add(-time.Second))
	pending := mustCommission(t, f.db, carol, "7.00", enums.CommissionStatusPending, windowStart.Add(time.Hour))
	atEnd := mustCommission(t, f.db, dave, "9.00", enums.CommissionStatusEligible, windowEnd)
	voided := mustCommission(t, f.db, alice, "4.00", enums.CommissionStatusVoid, windowStart.Add(time.Hour))

	result, err := f.svc.GeneratePayouts(ctx, windowStart, windowEnd, enums.CommissionStatusLocked, TriggerAdmin)
	require.NoError(t, err)
	assert.Equal(t, 2, result.PayoutsCreated)
	assert.Equal(t, 3, result.CommissionsLinked)
	assert.True(t, result.PeriodStart.Equal(windowStart))
	assert.True(t, result.PeriodEnd.Equal(windowEnd))

	amounts := map[uuid.UUID]string{}
	for _, p := range result.Payouts {
		amounts[p.BeneficiaryID] = p.Amount.String()
		assert.Equal(t, enums.PayoutStatusPending, p.Status)
		assert.Equal(t, enums.PayoutStateGenerated, p.State)
		events, err := f.outbox.ListForAggregate(ctx, p.ID)
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, enums.EventPayoutsGenerated, events[0].EventType)
	}
	assert.Equal(t, map[uuid.UUID]string{alice: "15.5", bob: "3"}, amounts)

	for _, rec := range []*models.CommissionRecord{a1, a2, b1} {
		dbtest.MustReload(t, f.db, rec)
		assert.Equal(t, enums.CommissionStatusLocked, rec.Status)
		require.NotNil(t, rec.PayoutID)
	}
	for _, rec := range []*models.CommissionRecord{pending, atEnd, voided} {
		before := rec.Status
		dbtest.MustReload(t, f.db, rec)
		assert.Equal(t, before, rec.Status)
		assert.Nil(t, rec.PayoutID)
	}
}

func TestGeneratePayoutsNeverClaimsTwice(t *testing.T) {
	f := newFixture(t, config.PayoutsConfig{WindowDays: 30})
	ctx := context.Background()
	mustCommission(t, f.db, uuid.New(), "12.00", enums.CommissionStatusEligible, windowStart.Add(time.Hour))

	first, err := f.svc.GeneratePayouts(ctx, windowStart, windowEnd, enums.CommissionStatusLocked, TriggerAdmin)
	require.NoError(t, err)
	assert.Equal(t, 1, first.PayoutsCreated)

	second, err := f.svc.GeneratePayouts(ctx, windowStart, windowEnd, enums.CommissionStatusLocked, TriggerAdmin)
	require.NoError(t, err)
	assert.Zero(t, second.PayoutsCreated)
	assert.Empty(t, second.Payouts)

	var payouts int64
	require.NoError(t, f.db.Model(&models.Payout{}).Count(&payouts).Error)
	assert.Equal(t, int64(1), payouts)
}

func TestClaimSkipsRowsLinkedElsewhere(t *testing.T) {
	f := newFixture(t, config.PayoutsConfig{WindowDays: 30})
	ctx := context.Background()
	beneficiary := uuid.New()
	free := mustCommission(t, f.db, beneficiary, "1.00", enums.CommissionStatusEligible, windowStart)
	taken := mustCommission(t, f.db, beneficiary, "2.00", enums.CommissionStatusEligible, windowStart)
	otherPayout := uuid.New()
	require.NoError(t, f.db.Model(taken).Update("payout_id", otherPayout).Error)

	claimed, err := f.svc.commissions.Claim(ctx, []uuid.UUID{free.ID, taken.ID}, uuid.New(), enums.CommissionStatusLocked)
	require.NoError(t, err)
	assert.Equal(t, int64(1), claimed)

	dbtest.MustReload(t, f.db, taken)
	require.NotNil(t, taken.PayoutID)
	assert.Equal(t, otherPayout, *taken.PayoutID)
}

func TestRunScheduledUsesConfiguredClaimStatus(t *testing.T) {
	f := newFixture(t, config.PayoutsConfig{WindowDays: 30, ScheduledClaimStatus: "paid"})
	now := windowEnd
	f.svc.now = func() time.Time { return now }
	rec := mustCommission(t, f.db, uuid.New(), "8.00", enums.CommissionStatusEligible, now.AddDate(0, 0, -2))
	old := mustCommission(t, f.db, uuid.New(), "8.00", enums.CommissionStatusEligible, now.AddDate(0, 0, -31))

	result, err := f.svc.RunScheduled(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.PayoutsCreated)
	assert.True(t, result.PeriodStart.Equal(now.AddDate(0, 0, -30)))

	dbtest.MustReload(t, f.db, rec)
	assert.Equal(t, enums.CommissionStatusPaid, rec.Status)
	dbtest.MustReload(t, f.db, old)
	assert.Equal(t, enums.CommissionStatusEligible, old.Status)
}

func TestGenerateValidation(t *testing.T) {
	f := newFixture(t, config.PayoutsConfig{WindowDays: 30})
	ctx := context.Background()

	_, err := f.svc.GeneratePayouts(ctx, windowEnd, windowStart, enums.CommissionStatusLocked, TriggerAdmin)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = f.svc.GeneratePayouts(ctx, windowStart, windowEnd, enums.CommissionStatusEligible, TriggerAdmin)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = f.svc.GenerateTrailing(ctx, auth.Actor{UserID: uuid.New(), Role: enums.UserRoleStaff}, 30)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))

	_, err = f.svc.GenerateTrailing(ctx, admin, 366)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	result, err := f.svc.GenerateTrailing(ctx, admin, 0)
	require.NoError(t, err)
	assert.Equal(t, 30*24*time.Hour, result.PeriodEnd.Sub(result.PeriodStart))
}

func TestReadPaths(t *testing.T) {
	f := newFixture(t, config.PayoutsConfig{WindowDays: 30})
	ctx := context.Background()
	owner := uuid.New()
	mustCommission(t, f.db, owner, "4.00", enums.CommissionStatusEligible, windowStart)
	mustCommission(t, f.db, uuid.New(), "6.00", enums.CommissionStatusEligible, windowStart)
	result, err := f.svc.GeneratePayouts(ctx, windowStart, windowEnd, enums.CommissionStatusLocked, TriggerAdmin)
	require.NoError(t, err)
	require.Len(t, result.Payouts, 2)

	self := auth.Actor{UserID: owner, Role: enums.UserRoleConsultant}
	page, err := f.svc.ListForBeneficiary(ctx, self, owner, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)

	got, err := f.svc.Get(ctx, self, page.Items[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "4", got.Amount.String())

	for _, p := range result.Payouts {
		if p.BeneficiaryID != owner {
			_, err := f.svc.Get(ctx, self, p.ID)
			assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))
		}
	}

	_, err = f.svc.Get(ctx, admin, uuid.New())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	all, err := f.svc.ListAll(ctx, admin, pagination.Params{})
	require.NoError(t, err)
	assert.Len(t, all.Items, 2)

	_, err = f.svc.ListAll(ctx, self, pagination.Params{})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))
}
