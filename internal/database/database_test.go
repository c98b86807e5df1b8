package database

import (
	"path/filepath"
	"testing"

	"github.com/mauv0809/drift-bracket/internal/database/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitDB_CreatesTables(t *testing.T) {
	db, err := InitDB(":memory:", "", "")
	require.NoError(t, err, "InitDB should not return an error")
	defer db.Close()

	tables := []string{
		"tournaments", "tournament_drivers", "judges", "laps", "lap_scores",
		"battles", "battle_votes", "drivers", "driver_ratings", "rating_history", "metrics",
	}
	for _, table := range tables {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		require.NoError(t, err, "table %q should exist", table)
		assert.Equal(t, table, name)
	}
}

func TestInitDB_ForeignKeysEnabled(t *testing.T) {
	db, err := InitDB(":memory:", "", "")
	require.NoError(t, err)
	defer db.Close()

	var enabled int
	require.NoError(t, db.QueryRow("PRAGMA foreign_keys").Scan(&enabled))
	assert.Equal(t, 1, enabled)

	_, err = db.Exec("INSERT INTO laps (entry_id, round) VALUES (42, 1)")
	assert.Error(t, err, "a lap must belong to an existing entry")
}

func TestInitDB_FileIsMigratedOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bracket.db")

	db, err := InitDB(path, "", "")
	require.NoError(t, err)
	_, err = db.Exec("INSERT INTO drivers (name, created_at) VALUES ('Keiichi', 0)")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = InitDB(path, "", "")
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, migrations.Run(db, "sqlite3"), "running migrations again is a no-op")

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM drivers").Scan(&count))
	assert.Equal(t, 1, count)
}
