package migrations

import (
	"context"
	"errors"
	"fmt"

	"stone_sales/internal/models"
	"stone_sales/internal/repository"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AutoMigrate creates or updates every table the service owns.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Customer{},
		&models.Employee{},
		&models.Account{},
		&models.Stone{},
		&models.Order{},
		&models.OrderItem{},
		&models.CustomOrder{},
	)
}

// RunMigrations migrates the schema and, when adminPassword is set, seeds an
// admin account if one with adminUsername does not exist yet.
func RunMigrations(ctx context.Context, db *gorm.DB, adminUsername, adminPassword string, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}
	log.Info("running database migrations")

	if err := AutoMigrate(db); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	if adminPassword == "" {
		log.Info("admin seed skipped, no password configured")
		return nil
	}
	if err := seedAdmin(ctx, repository.NewStore(db), adminUsername, adminPassword); err != nil {
		return err
	}
	log.Info("database migrations completed", zap.String("admin", adminUsername))
	return nil
}

func seedAdmin(ctx context.Context, store repository.Store, username, password string) error {
	_, err := store.Accounts().GetByUsername(ctx, username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("failed to look up admin account: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}
	return store.Accounts().Create(ctx, &models.Account{
		Username:     username,
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
	})
}
