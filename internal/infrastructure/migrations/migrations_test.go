package migrations

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFiles_AreOrderedAndAnnotated(t *testing.T) {
	names, err := Files()
	require.NoError(t, err)
	require.Equal(t, []string{"00001_schema.sql", "00002_default_tenant.sql"}, names)

	for _, name := range names {
		body, err := files.ReadFile(dir + "/" + name)
		require.NoError(t, err)
		assert.Contains(t, string(body), "-- +goose Up", name)
		assert.Contains(t, string(body), "-- +goose Down", name)
	}
}

func TestSchema_PendingPayoutIndex(t *testing.T) {
	body, err := files.ReadFile(dir + "/00001_schema.sql")
	require.NoError(t, err)
	schema := string(body)
	assert.Contains(t, schema, "CREATE UNIQUE INDEX uq_payouts_vendor_pending ON payouts(vendor_id) WHERE status = 'PENDING'")
	assert.True(t, strings.Contains(schema, "order_id       UUID         NOT NULL UNIQUE"))
}

func TestRun_UnknownCommand(t *testing.T) {
	m, err := NewMigrator(nil)
	require.NoError(t, err)
	err = m.Run(context.Background(), "sideways")
	require.ErrorIs(t, err, ErrUnknownCommand)
}
