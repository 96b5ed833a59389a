package migrate_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/storyweb/internal/migrate"
	"github.com/target/storyweb/internal/testutil"
)

func TestRun_Idempotent(t *testing.T) {
	db := testutil.SetupEphemeralSchemaDB(t)
	ctx := context.Background()

	// SetupEphemeralSchemaDB already migrated; a second run applies nothing.
	ran, err := migrate.Run(ctx, db)
	require.NoError(t, err)
	assert.Empty(t, ran)

	status, err := migrate.Status(ctx, db)
	require.NoError(t, err)
	require.NotEmpty(t, status)
	for _, m := range status {
		assert.True(t, m.Applied, "migration %s not applied", m.Version)
	}

	var n int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT count(*) FROM sessions`).Scan(&n))
	assert.Zero(t, n)
}
