package database

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestOpen_Migrates(t *testing.T) {
	db, err := Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	require.NoError(t, err)
	defer db.Close()

	for _, table := range []string{"user", "token", "survey", "question", "option", "response", "response_answer"} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		assert.NoError(t, err, table)
	}
}

func TestEnsureUser(t *testing.T) {
	db, err := Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, EnsureUser(db, "admin", "first"))
	require.NoError(t, EnsureUser(db, "admin", "second"))

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM user`).Scan(&n))
	assert.Equal(t, 1, n)

	var hash []byte
	require.NoError(t, db.QueryRow(`SELECT password_hash FROM user WHERE username = ?`, "admin").Scan(&hash))
	assert.NoError(t, bcrypt.CompareHashAndPassword(hash, []byte("second")))
}

func TestMigrateDB_Idempotent(t *testing.T) {
	db, err := Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	require.NoError(t, err)
	defer db.Close()

	version, err := migrateDB(db)
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
}
