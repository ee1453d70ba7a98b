//go:build integration

package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/quizforge/packadmin/internal/db"
	"github.com/quizforge/packadmin/internal/db/storetest"
)

// Requires a migrated database; see cmd/migrator.
func TestStoreContract(t *testing.T) {
	dsn := os.Getenv("TEST_POSTGRES_URL")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_URL not set")
	}

	storetest.Run(t, func(t *testing.T) db.Store {
		ctx := context.Background()
		q, err := Connect(ctx, dsn)
		require.NoError(t, err)
		_, err = q.db.Exec(ctx, "TRUNCATE packs, categories")
		require.NoError(t, err)
		t.Cleanup(func() { _ = q.Close() })
		return q
	})
}
