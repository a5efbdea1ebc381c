package database

import (
	"fmt"
	"strings"
	"time"

	"stone_sales/internal/observability"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Initialize opens the database named by databaseURL. postgres:// and
// postgresql:// URLs use the postgres driver; file: and sqlite:// URLs open an
// embedded SQLite database.
func Initialize(databaseURL, logLevel string, log *zap.Logger) (*gorm.DB, error) {
	dialector, err := dialectorFor(databaseURL)
	if err != nil {
		return nil, err
	}

	config := &gorm.Config{
		Logger: logger.New(observability.NewPrintfAdapter(log), logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  parseLogLevel(logLevel),
			IgnoreRecordNotFoundError: true,
		}),
	}

	db, err := gorm.Open(dialector, config)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if log != nil {
		log.Info("database connected", zap.String("dialect", dialector.Name()))
	}
	return db, nil
}

func dialectorFor(databaseURL string) (gorm.Dialector, error) {
	switch {
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		return postgres.Open(databaseURL), nil
	case strings.HasPrefix(databaseURL, "sqlite://"):
		return sqlite.Open(strings.TrimPrefix(databaseURL, "sqlite://")), nil
	case strings.HasPrefix(databaseURL, "file:"):
		return sqlite.Open(databaseURL), nil
	default:
		return nil, fmt.Errorf("unsupported database url %q", databaseURL)
	}
}

func parseLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}
