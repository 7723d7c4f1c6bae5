package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcacommerce/arca-backend/pkg/migrate"
)

func readMigration(t *testing.T, suffix string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", "*_"+suffix+".sql"))
	require.NoError(t, err)
	require.NotEmpty(t, matches, "no migration matching %s", suffix)

	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	return string(data)
}

func TestMigrationsDirIsValid(t *testing.T) {
	require.NoError(t, migrate.ValidateDir("migrations"))
}

func TestUsersAndProductsMigrationsGuardBalances(t *testing.T) {
	users := readMigration(t, "create_users_table")
	assert.Contains(t, users, "CONSTRAINT chk_users_points_balance CHECK (points_balance >= 0)")
	assert.Contains(t, users, "CREATE INDEX IF NOT EXISTS idx_users_referred_by")

	products := readMigration(t, "create_products_table")
	assert.Contains(t, products, "CONSTRAINT chk_products_stock CHECK (stock >= 0)")
}

func TestCommissionMigrationEnforcesTriple(t *testing.T) {
	content := readMigration(t, "create_commission_records_table")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS commission_records",
		"CREATE UNIQUE INDEX IF NOT EXISTS ux_commission_records_triple",
		"(beneficiary_id, order_id, type)",
		"WHERE status = 'eligible' AND payout_id IS NULL",
		"payout_id uuid REFERENCES payouts(id)",
	}
	for _, sub := range checks {
		assert.Contains(t, content, sub)
	}
}

func TestPayoutMigrationRejectsEmptyPayouts(t *testing.T) {
	content := readMigration(t, "create_payouts_table")
	assert.Contains(t, content, "CHECK (amount > 0)")

	settled := readMigration(t, "allow_zero_settled_payouts")
	assert.Contains(t, settled, "DROP CONSTRAINT IF EXISTS chk_payouts_amount_positive")
	assert.Contains(t, settled, "CHECK (amount > 0 OR (amount = 0 AND state = 'paid'))")
}

func TestMigrationsAreOrderedByDependency(t *testing.T) {
	entries, err := os.ReadDir("migrations")
	require.NoError(t, err)

	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	index := func(suffix string) int {
		for i, name := range names {
			if strings.HasSuffix(name, suffix) {
				return i
			}
		}
		return -1
	}
	assert.Less(t, index("create_users_table.sql"), index("create_orders_table.sql"))
	assert.Less(t, index("create_payouts_table.sql"), index("create_commission_records_table.sql"))
}

func TestCreateSQLMigrationWritesTemplate(t *testing.T) {
	dir := t.TempDir()
	path, err := migrate.CreateSQLMigration(dir, "Add Payout Notes")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, "_add_payout_notes.sql"))
	require.NoError(t, migrate.ValidateDir(dir))
}
