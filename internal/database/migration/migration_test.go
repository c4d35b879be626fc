package migration

import (
	"io/fs"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fileName = regexp.MustCompile(`^(\d{6})_([a-z0-9_]+)\.(up|down)\.sql$`)

func TestMigrationsArePaired(t *testing.T) {
	entries, err := fs.ReadDir(files, "migrations")
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	pairs := map[string]map[string]bool{}
	for _, e := range entries {
		m := fileName.FindStringSubmatch(e.Name())
		require.NotNil(t, m, "unexpected file %s", e.Name())
		key := m[1] + "_" + m[2]
		if pairs[key] == nil {
			pairs[key] = map[string]bool{}
		}
		pairs[key][m[3]] = true
	}
	for key, dirs := range pairs {
		assert.True(t, dirs["up"], "%s has no up migration", key)
		assert.True(t, dirs["down"], "%s has no down migration", key)
	}
}

func TestInitCreatesEveryTable(t *testing.T) {
	up, err := fs.ReadFile(files, "migrations/000001_init.up.sql")
	require.NoError(t, err)
	down, err := fs.ReadFile(files, "migrations/000001_init.down.sql")
	require.NoError(t, err)

	for _, table := range []string{"users", "user_configs", "accounts", "cards", "debts", "subscriptions", "funds", "movements"} {
		assert.Contains(t, string(up), "CREATE TABLE IF NOT EXISTS "+table+" (")
		assert.Contains(t, string(down), "DROP TABLE IF EXISTS "+table+";")
	}
	assert.Equal(t, 8, strings.Count(string(up), "CREATE TABLE"))
}
