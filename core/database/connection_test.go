package database

import (
	"path/filepath"
	"testing"

	"github.com/AzielCF/az-hotelbot/core/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDatabase_SQLiteCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "hotelbot.db")

	db, err := NewDatabase(config.DatabaseConfig{Driver: "sqlite", Name: path}, false)
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })

	assert.NoError(t, db.Exec("SELECT 1").Error)
	assert.FileExists(t, path)
}

func TestNewDatabase_UnsupportedDriver(t *testing.T) {
	_, err := NewDatabase(config.DatabaseConfig{Driver: "mysql", Name: "x"}, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database driver")
}

func TestPostgresDSN(t *testing.T) {
	dsn := postgresDSN(config.DatabaseConfig{Host: "db", User: "bot", Password: "pw", Name: "hotels", Port: 6543})
	assert.Equal(t, "host=db user=bot password=pw dbname=hotels port=6543 sslmode=disable TimeZone=UTC", dsn)
}
