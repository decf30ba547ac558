package database

import (
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDSN(t *testing.T) {
	cfg, err := mysql.ParseDSN(DSN("planner", "p@ss:word", "db.internal", "3307", "production"))
	require.NoError(t, err)
	assert.Equal(t, "planner", cfg.User)
	assert.Equal(t, "p@ss:word", cfg.Passwd)
	assert.Equal(t, "db.internal:3307", cfg.Addr)
	assert.Equal(t, "production", cfg.DBName)
	assert.True(t, cfg.ParseTime)
	assert.Equal(t, time.UTC, cfg.Loc)
}

func TestDSNWithoutPassword(t *testing.T) {
	assert.Contains(t, DSN("root", "", "localhost", "3306", "prod"), "root@tcp(localhost:3306)/prod?")
}
