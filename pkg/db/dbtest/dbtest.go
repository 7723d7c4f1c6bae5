// Package dbtest opens throwaway SQLite databases with the full schema for package tests.
package dbtest

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/arcacommerce/arca-backend/pkg/config"
	"github.com/arcacommerce/arca-backend/pkg/db"
	"github.com/arcacommerce/arca-backend/pkg/db/models"
	"github.com/arcacommerce/arca-backend/pkg/enums"
)

// Open returns a client over a private in-memory database with every table migrated.
func Open(t testing.TB) *db.Client {
	t.Helper()
	dsn := fmt.Sprintf("file:arca_%s?mode=memory&cache=shared", uuid.NewString())
	client, err := db.New(context.Background(), config.DBConfig{Driver: db.DriverSQLite, DSN: dsn}, nil)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := client.DB().AutoMigrate(models.All()...); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

// UserOption tweaks a fixture user before insert.
type UserOption func(*models.User)

func WithRole(role enums.UserRole) UserOption {
	return func(u *models.User) { u.Role = role }
}

func WithLevel(level enums.UserLevel) UserOption {
	return func(u *models.User) { u.Level = level }
}

func WithPoints(balance int64) UserOption {
	return func(u *models.User) { u.PointsBalance = balance }
}

func ReferredBy(referrer *models.User) UserOption {
	return func(u *models.User) {
		id := referrer.ID
		u.ReferredByID = &id
	}
}

func WithDefaultConsultant(consultant *models.User) UserOption {
	return func(u *models.User) {
		id := consultant.ID
		u.DefaultConsultantID = &id
	}
}

// MustCreateUser inserts an active bronze customer, adjusted by opts.
// A non-zero starting balance is backed by an "adjust" ledger entry so the ledger stays reconciled.
func MustCreateUser(t testing.TB, conn *gorm.DB, opts ...UserOption) *models.User {
	t.Helper()
	user := &models.User{
		Email:    fmt.Sprintf("user_%s@example.com", uuid.NewString()),
		FullName: "Test User",
		Role:     enums.UserRoleCustomer,
		Level:    enums.UserLevelBronze,
		IsActive: true,
	}
	for _, opt := range opts {
		opt(user)
	}
	if err := conn.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	if user.PointsBalance > 0 {
		entry := &models.PointsTransaction{
			UserID: user.ID,
			Type:   enums.PointsAdjust,
			Points: user.PointsBalance,
			Reason: "opening balance",
		}
		if err := conn.Create(entry).Error; err != nil {
			t.Fatalf("create opening balance: %v", err)
		}
	}
	return user
}

// MustCreateProduct inserts an active product with the given price and stock.
func MustCreateProduct(t testing.TB, conn *gorm.DB, price string, stock int) *models.Product {
	t.Helper()
	product := &models.Product{
		Name:     "Product " + uuid.NewString()[:8],
		Price:    decimal.RequireFromString(price),
		Cost:     decimal.Zero,
		Stock:    stock,
		IsActive: true,
	}
	if err := conn.Create(product).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}
	return product
}

// MustReload refreshes dest (a pointer to a model with its ID set) from the database.
func MustReload(t testing.TB, conn *gorm.DB, dest any) {
	t.Helper()
	if err := conn.First(dest).Error; err != nil {
		t.Fatalf("reload %T: %v", dest, err)
	}
}
