package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/infra/catalog"
	"app/internal/infra/db"
	infraRepo "app/internal/infra/repository"

	"github.com/joho/godotenv"
)

// initdbはテーブルを作り直し、商品フィードからカタログスナップショットを取り込む。
func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("config load failed", "error", err)
		os.Exit(1)
	}
	if cfg.ProductsAPIURL == "" {
		logger.Error("PRODUCTS_API_URL is required")
		os.Exit(1)
	}

	gormDB, err := db.Connect(cfg)
	if err != nil {
		logger.Error("db connect failed", "error", err)
		os.Exit(1)
	}

	tables := []any{
		&model.Product{},
		&model.Order{},
		&model.OrderProduct{},
		&model.ShippingInformation{},
		&model.CreditCard{},
		&model.Transaction{},
	}

	//既存データごと作り直す
	if err := gormDB.Migrator().DropTable(tables...); err != nil {
		logger.Error("drop tables failed", "error", err)
		os.Exit(1)
	}
	if err := gormDB.AutoMigrate(tables...); err != nil {
		logger.Error("automigrate failed", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	feed := catalog.NewClient(cfg.ProductsAPIURL, 20*time.Second)
	products, err := feed.FetchProducts(ctx)
	if err != nil {
		logger.Error("product feed fetch failed", "error", err)
		os.Exit(1)
	}

	productRepo := infraRepo.NewProductGormRepository(gormDB)
	if err := productRepo.ReplaceAll(ctx, products); err != nil {
		logger.Error("product import failed", "error", err)
		os.Exit(1)
	}

	logger.Info("initialized the database", "products", len(products))
}
