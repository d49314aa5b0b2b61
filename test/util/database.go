// Package util holds PostgreSQL helpers shared by the container-backed tests.
package util

import (
	"context"
	stdsql "database/sql"
	"fmt"
	"net/url"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	defaultPostgresImage = "postgres:17-alpine"
	maxSchemaPrefix      = 40
)

// One container per test binary. CI_DATABASE_URL skips it entirely.
var sharedPostgres = sync.OnceValues(startPostgres)

func startPostgres() (string, error) {
	ctx := context.Background()

	image := os.Getenv("CONTRACTGEN_TEST_PG_IMAGE")
	if image == "" {
		image = defaultPostgresImage
	}

	container, err := postgres.Run(ctx, image,
		postgres.WithDatabase("contractgen_test"),
		postgres.WithUsername("contractgen"),
		postgres.WithPassword("contractgen"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		return "", fmt.Errorf("start %s: %w", image, err)
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return "", fmt.Errorf("container connection string: %w", err)
	}
	return connStr, nil
}

func baseConnString(t *testing.T) string {
	t.Helper()
	if ci := os.Getenv("CI_DATABASE_URL"); ci != "" {
		return ci
	}
	connStr, err := sharedPostgres()
	require.NoError(t, err, "shared postgres container")
	return connStr
}

// SetupTestDatabase returns a pool bound to a fresh schema named after the
// test. Every pooled session resolves unqualified tables in that schema.
// Migrations are the caller's job. The schema is dropped on cleanup.
func SetupTestDatabase(t *testing.T) *stdsql.DB {
	t.Helper()
	ctx := context.Background()

	base := baseConnString(t)
	schema := GenerateSchemaName(t)
	quoted := pgx.Identifier{schema}.Sanitize()

	admin, err := stdsql.Open("pgx", base)
	require.NoError(t, err)
	defer func() { _ = admin.Close() }()
	_, err = admin.ExecContext(ctx, "CREATE SCHEMA "+quoted)
	require.NoError(t, err)

	db, err := stdsql.Open("pgx", AddSearchPathToConnString(base, schema))
	require.NoError(t, err)
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)

	t.Cleanup(func() {
		if _, err := db.ExecContext(context.Background(), "DROP SCHEMA IF EXISTS "+quoted+" CASCADE"); err != nil {
			t.Logf("drop schema %s: %v", schema, err)
		}
		_ = db.Close()
	})
	return db
}

// GenerateSchemaName derives a schema name from t.Name() plus a random
// suffix, e.g. test_testfoo_sub_1a2b3c4d. It stays under PostgreSQL's
// 63 byte identifier limit.
func GenerateSchemaName(t *testing.T) string {
	var b strings.Builder
	for _, r := range strings.ToLower(t.Name()) {
		if b.Len() == maxSchemaPrefix {
			break
		}
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return "test_" + b.String() + "_" + suffix
}

// AddSearchPathToConnString sets search_path on a URL or keyword/value DSN.
func AddSearchPathToConnString(connStr, schema string) string {
	u, err := url.Parse(connStr)
	if err != nil || u.Scheme == "" {
		return connStr + " search_path=" + schema
	}
	param := "search_path=" + url.QueryEscape(schema)
	if u.RawQuery == "" {
		u.RawQuery = param
	} else {
		u.RawQuery += "&" + param
	}
	return u.String()
}
