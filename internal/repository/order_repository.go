package repository

import (
	"app/internal/domain/model"
	"context"
)

type OrderRepository interface {
	//子レコード（配送先・カード・取引・明細）込みで取得
	FindByID(ctx context.Context, orderID int64) (model.Order, error)

	//行ロック付き取得。状態遷移のread-modify-writeはここから始める
	FindByIDForUpdate(ctx context.Context, orderID int64) (model.Order, error)

	Create(ctx context.Context, order model.Order) (int64, error)

	//メールと配送先をまとめて設定（一度だけ）
	SetShippingInfo(ctx context.Context, orderID int64, email string, info model.ShippingInformation) error

	//失敗取引の記録。既存の取引があれば置き換える
	ReplaceTransaction(ctx context.Context, orderID int64, t model.Transaction) error

	//成功時の一括確定：カード概要＋成功取引＋paid=true
	AttachPayment(ctx context.Context, orderID int64, card model.CreditCard, t model.Transaction) error
}

type OrderProductRepository interface {
	CreateBulk(ctx context.Context, orderID int64, items []model.OrderProduct) error
	ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderProduct, error)
}
