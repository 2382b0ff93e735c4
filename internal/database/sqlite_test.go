package database

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCreatesSchema(t *testing.T) {
	db, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer db.Close()

	for _, table := range []string{"players", "hands"} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		require.NoError(t, err, table)
	}

	require.NoError(t, migrate(db.DB), "migration is idempotent")
}

func TestMigrateUpgradesOldPlayers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "old.db")

	raw, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	_, err = raw.Exec(`
		CREATE TABLE players (
			chat_id INTEGER PRIMARY KEY,
			balance INTEGER DEFAULT 1000,
			wins INTEGER DEFAULT 0,
			losses INTEGER DEFAULT 0,
			draws INTEGER DEFAULT 0,
			games INTEGER DEFAULT 0,
			last_bet INTEGER DEFAULT 100,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		INSERT INTO players (chat_id, balance) VALUES (7, 500);
	`)
	require.NoError(t, err)
	require.NoError(t, raw.Close())

	db, err := New(path)
	require.NoError(t, err)
	defer db.Close()

	var balance, blackjacks, surrenders int
	err = db.QueryRow(`SELECT balance, blackjacks, surrenders FROM players WHERE chat_id = 7`).
		Scan(&balance, &blackjacks, &surrenders)
	require.NoError(t, err)
	assert.Equal(t, 500, balance)
	assert.Zero(t, blackjacks)
	assert.Zero(t, surrenders)
}
