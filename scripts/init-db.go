package main

import (
	"context"
	"flag"
	"log"

	"stone_sales/internal/config"
	"stone_sales/internal/database"
	"stone_sales/internal/migrations"
	"stone_sales/internal/models"
	"stone_sales/internal/observability"
	"stone_sales/internal/repository"
	"stone_sales/internal/services"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var sampleStones = []services.StoneInput{
	{Name: "Marble-30x30", Type: "marble", Size: "30x30", UnitPrice: decimal.RequireFromString("185000"), StockQuantity: 40},
	{Name: "Granite-60x60", Type: "granite", Size: "60x60", UnitPrice: decimal.RequireFromString("320000"), StockQuantity: 25},
	{Name: "Andesite-20x40", Type: "andesite", Size: "20x40", UnitPrice: decimal.RequireFromString("95000"), StockQuantity: 120},
	{Name: "Travertine-40x40", Type: "travertine", Size: "40x40", UnitPrice: decimal.RequireFromString("210000"), StockQuantity: 30},
}

func main() {
	reset := flag.Bool("reset", false, "drop every table before migrating")
	sample := flag.Bool("sample", false, "add sample catalog stones")
	flag.Parse()

	cfg := config.Load()

	logger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatal("Failed to create logger:", err)
	}
	defer logger.Sync()

	db, err := database.Initialize(cfg.DatabaseURL, cfg.DBLogLevel, logger)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}

	if *reset {
		logger.Warn("dropping existing tables")
		err = db.Migrator().DropTable(
			&models.CustomOrder{},
			&models.OrderItem{},
			&models.Order{},
			&models.Stone{},
			&models.Account{},
			&models.Employee{},
			&models.Customer{},
		)
		if err != nil {
			logger.Fatal("failed to drop tables", zap.Error(err))
		}
	}

	ctx := context.Background()
	if err := migrations.RunMigrations(ctx, db, cfg.SeedAdminUsername, cfg.SeedAdminPassword, logger); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	if *sample {
		catalog := services.NewCatalogService(services.Dependencies{
			Store:  repository.NewStore(db),
			Logger: logger,
		})
		for _, input := range sampleStones {
			if _, err := catalog.CreateStone(ctx, input); err != nil {
				logger.Fatal("failed to create sample stone", zap.String("name", input.Name), zap.Error(err))
			}
		}
	}

	logger.Info("database initialization completed")
}
