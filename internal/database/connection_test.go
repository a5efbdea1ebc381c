package database

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

func TestDialectorFor(t *testing.T) {
	cases := map[string]string{
		"postgres://u:p@localhost:5432/db":   "postgres",
		"postgresql://u:p@localhost:5432/db": "postgres",
		"sqlite://dev.db":                    "sqlite",
		"file:dev.db?cache=shared":           "sqlite",
	}
	for url, want := range cases {
		dialector, err := dialectorFor(url)
		require.NoError(t, err, url)
		require.Equal(t, want, dialector.Name(), url)
	}

	_, err := dialectorFor("mysql://localhost")
	require.Error(t, err)
}

func TestInitializeSQLite(t *testing.T) {
	db, err := Initialize("file:connection_test?mode=memory&cache=shared", "silent", nil)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Ping())
	require.NoError(t, sqlDB.Close())
}

func TestParseLogLevel(t *testing.T) {
	require.Equal(t, logger.Silent, parseLogLevel("SILENT"))
	require.Equal(t, logger.Info, parseLogLevel(" info "))
	require.Equal(t, logger.Warn, parseLogLevel(""))
}
