package database

import (
	"testing"

	"github.com/contractgen/contractgen/pkg/database"
	"github.com/contractgen/contractgen/test/util"
	"github.com/stretchr/testify/require"
)

// NewTestClient creates a migrated test database client in its own schema.
// In CI (when CI_DATABASE_URL is set): connects to external PostgreSQL service container.
// In local dev: uses a shared PostgreSQL testcontainer.
// Cleanup (schema drop and connection close) is registered on t.
func NewTestClient(t *testing.T) *database.Client {
	t.Helper()

	db := util.SetupTestDatabase(t)

	err := database.RunMigrations(db, "test")
	require.NoError(t, err)

	return database.NewClientFromDB(db)
}
