package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDBHealth_SQLite(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_URL", ":memory:")
	out, err := execute(t, "", "dbhealth")
	require.NoError(t, err)
	assert.Contains(t, out, "DB health: OK (sqlite)")
	assert.Contains(t, out, "products: 0")
}

func TestRuns_RequiresDatabase(t *testing.T) {
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_URL", "")
	_, err := execute(t, "", "runs")
	assert.ErrorContains(t, err, "DB_URL is required")
}
