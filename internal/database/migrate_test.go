package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrations_OrderedAndEmbedded(t *testing.T) {
	ms, err := Migrations()
	require.NoError(t, err)
	require.Len(t, ms, 3)

	assert.Equal(t, "0001_users", ms[0].Version)
	assert.Equal(t, "0002_invoices", ms[1].Version)
	assert.Equal(t, "0003_invoice_events", ms[2].Version)
	assert.Contains(t, ms[1].SQL, "REFERENCES users (id) ON DELETE CASCADE")
}
