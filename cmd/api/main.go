package main

import (
	"log/slog"
	"os"
	"time"

	"app/internal/cache"
	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/handler"
	"app/internal/infra/db"
	infraPayment "app/internal/infra/payment"
	infraRepo "app/internal/infra/repository"
	"app/internal/server"
	"app/internal/usecase"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

type uuidGenerator struct{}

func (g *uuidGenerator) NewID() string {
	return uuid.NewString()
}

func main() {
	//.envは無ければ環境変数だけで動かす
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("config load failed", "error", err)
		os.Exit(1)
	}
	if cfg.PaymentAPIURL == "" {
		logger.Error("PAYMENT_API_URL is required")
		os.Exit(1)
	}

	//DB接続
	gormDB, err := db.Connect(cfg)
	if err != nil {
		logger.Error("db connect failed", "error", err)
		os.Exit(1)
	}
	if err := gormDB.AutoMigrate(
		&model.Product{},
		&model.Order{},
		&model.OrderProduct{},
		&model.ShippingInformation{},
		&model.CreditCard{},
		&model.Transaction{},
	); err != nil {
		logger.Error("automigrate failed", "error", err)
		os.Exit(1)
	}

	//Repository（GORM実装）生成
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	txManager := infraRepo.NewTxManagerGorm(gormDB)

	//決済ゲートウェイ。タイムアウトは有界
	gateway := infraPayment.NewClient(cfg.PaymentAPIURL, 10*time.Second)

	//支払い済み注文キャッシュ（任意）
	var orderCache cache.OrderCache
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		orderCache = cache.NewRedisCache(client)
	}

	//Usecase生成
	productUC := usecase.NewProductUsecase(productRepo)
	checkoutUC := usecase.NewCheckoutUsecase(txManager, gateway, orderCache, &uuidGenerator{}, logger)

	//Handler生成
	productH := handler.NewProductHandler(productUC)
	orderH := handler.NewOrderHandler(checkoutUC)

	//Server起動
	addr := ":" + cfg.Port
	logger.Info("starting server", "addr", addr)
	if err := server.Start(addr, productH, orderH); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
