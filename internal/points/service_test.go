package points

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/arcacommerce/arca-backend/pkg/auth"
	"github.com/arcacommerce/arca-backend/pkg/db"
	"github.com/arcacommerce/arca-backend/pkg/db/dbtest"
	"github.com/arcacommerce/arca-backend/pkg/enums"
	pkgerrors "github.com/arcacommerce/arca-backend/pkg/errors"
	"github.com/arcacommerce/arca-backend/pkg/pagination"
)

var admin = auth.Actor{UserID: uuid.New(), Role: enums.UserRoleAdmin}

func newTestService(t *testing.T) (Service, *db.Client) {
	t.Helper()
	conn := dbtest.Open(t)
	svc, err := NewService(NewRepository(conn.DB()), conn)
	require.NoError(t, err)
	return svc, conn
}

func assertReconciled(t *testing.T, svc Service, userID uuid.UUID) int64 {
	t.Helper()
	res, err := svc.Reconcile(context.Background(), admin, userID)
	require.NoError(t, err)
	assert.True(t, res.InSync, "cached %d ledger %d", res.Cached, res.LedgerSum)
	return res.Cached
}

func TestAccrueAndRedeemKeepLedgerInSync(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	user := dbtest.MustCreateUser(t, conn.DB(), dbtest.WithPoints(40))
	orderID := uuid.New()

	require.NoError(t, conn.WithTx(ctx, func(tx *gorm.DB) error {
		if err := svc.Redeem(ctx, tx, user.ID, 15, "order discount", &orderID); err != nil {
			return err
		}
		return svc.Accrue(ctx, tx, user.ID, 7, "order earn", &orderID)
	}))
	assert.Equal(t, int64(32), assertReconciled(t, svc, user.ID))

	page, err := svc.History(ctx, auth.Actor{UserID: user.ID, Role: enums.UserRoleCustomer}, user.ID, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, page.Items, 3)
	var redeemed int64
	for _, entry := range page.Items {
		if entry.Type == enums.PointsRedeem {
			redeemed = entry.Points
		}
	}
	assert.Equal(t, int64(-15), redeemed)
}

func TestNonPositivePointsAreNoops(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	user := dbtest.MustCreateUser(t, conn.DB(), dbtest.WithPoints(5))

	require.NoError(t, conn.WithTx(ctx, func(tx *gorm.DB) error {
		if err := svc.Accrue(ctx, tx, user.ID, 0, "nothing", nil); err != nil {
			return err
		}
		return svc.Redeem(ctx, tx, user.ID, -3, "nothing", nil)
	}))
	assert.Equal(t, int64(5), assertReconciled(t, svc, user.ID))
}

func TestRedeemBeyondBalanceFailsWithoutSideEffects(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	user := dbtest.MustCreateUser(t, conn.DB(), dbtest.WithPoints(10))

	err := conn.WithTx(ctx, func(tx *gorm.DB) error {
		return svc.Redeem(ctx, tx, user.ID, 11, "too much", nil)
	})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInsufficientBalance))
	details, ok := pkgerrors.As(err).Details().(map[string]any)
	require.True(t, ok)
	assert.Equal(t, int64(10), details["balance"])
	assert.Equal(t, int64(11), details["requested"])

	assert.Equal(t, int64(10), assertReconciled(t, svc, user.ID))
}

func TestAdjust(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	user := dbtest.MustCreateUser(t, conn.DB(), dbtest.WithPoints(3))

	_, err := svc.Adjust(ctx, auth.Actor{UserID: uuid.New(), Role: enums.UserRoleStaff}, user.ID, 5, "bonus")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))

	bal, err := svc.Adjust(ctx, admin, user.ID, 5, "bonus")
	require.NoError(t, err)
	assert.Equal(t, int64(8), bal.Balance)

	_, err = svc.Adjust(ctx, admin, user.ID, -9, "clawback")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInsufficientBalance))

	_, err = svc.Adjust(ctx, admin, uuid.New(), 1, "ghost")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	assert.Equal(t, int64(8), assertReconciled(t, svc, user.ID))
}

func TestFindDrift(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	healthy := dbtest.MustCreateUser(t, conn.DB(), dbtest.WithPoints(4))
	broken := dbtest.MustCreateUser(t, conn.DB(), dbtest.WithPoints(4))
	require.NoError(t, conn.DB().Model(broken).UpdateColumn("points_balance", 9).Error)

	drift, err := svc.FindDrift(ctx, 10)
	require.NoError(t, err)
	require.Len(t, drift, 1)
	assert.Equal(t, broken.ID, drift[0].UserID)
	assert.Equal(t, int64(9), drift[0].Cached)
	assert.Equal(t, int64(4), drift[0].LedgerSum)

	assertReconciled(t, svc, healthy.ID)
}

func TestPolicy(t *testing.T) {
	p := DefaultPolicy()
	total := decimal.RequireFromString("1000.00")

	assert.Equal(t, int64(300), p.MaxRedeemable(500, total))
	assert.Equal(t, int64(120), p.MaxRedeemable(120, total))
	assert.Equal(t, int64(0), p.MaxRedeemable(0, total))
	assert.Equal(t, int64(29), p.MaxRedeemable(100, decimal.RequireFromString("99.99")))

	assert.True(t, p.Discount(100).Equal(decimal.NewFromInt(100)))

	payable := decimal.RequireFromString("900.00")
	assert.Equal(t, int64(18), p.Earned(enums.UserLevelBronze, payable))
	assert.Equal(t, int64(45), p.Earned(enums.UserLevelPrata, payable))
	assert.Equal(t, int64(90), p.Earned(enums.UserLevelOuro, payable))
	assert.Equal(t, int64(1), p.Earned(enums.UserLevelBronze, decimal.RequireFromString("99.99")))
}
