package migration_test

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/shandysiswandi/otpgate/internal/pkg/migration"
	"github.com/shandysiswandi/otpgate/internal/pkg/pgtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpDown(t *testing.T) {
	dsn := pgtest.DSN(t)
	ctx := context.Background()

	require.NoError(t, migration.Up(dsn))
	require.NoError(t, migration.Up(dsn), "second Up is a no-op")

	conn, err := pgx.Connect(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close(ctx) })

	var n int
	err = conn.QueryRow(ctx, `SELECT count(*) FROM information_schema.tables
		WHERE table_name IN ('tenant_organizations','tenant_users','otp_records','delivery_logs')`).Scan(&n)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	require.NoError(t, migration.Down(dsn))

	err = conn.QueryRow(ctx, `SELECT count(*) FROM information_schema.tables WHERE table_name = 'otp_records'`).Scan(&n)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestUp_RequiresDSN(t *testing.T) {
	assert.ErrorIs(t, migration.Up(" "), migration.ErrDSNRequired)
}
