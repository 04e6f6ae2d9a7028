package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderGormRepository struct {
	db *gorm.DB
}

func NewOrderGormRepository(db *gorm.DB) *OrderGormRepository {
	return &OrderGormRepository{db: db}
}

func (r *OrderGormRepository) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	return r.find(ctx, r.db, orderID)
}

// FindByIDForUpdateは注文行をFOR UPDATEで取る。
// 同じ注文への同時の支払い送信はここで直列化され、後続はpaid=trueを観測する。
func (r *OrderGormRepository) FindByIDForUpdate(ctx context.Context, orderID int64) (model.Order, error) {
	locked := r.db.Clauses(clause.Locking{Strength: "UPDATE", Table: clause.Table{Name: "orders"}})
	return r.find(ctx, locked, orderID)
}

func (r *OrderGormRepository) find(ctx context.Context, db *gorm.DB, orderID int64) (model.Order, error) {
	var o model.Order
	err := db.WithContext(ctx).
		Preload("ShippingInformation").
		Preload("CreditCard").
		Preload("Transaction").
		Preload("Products").
		Where("orders.id = ?", orderID).
		First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Order{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Order{}, err
	}
	return o, nil
}

func (r *OrderGormRepository) Create(ctx context.Context, order model.Order) (int64, error) {
	if err := r.db.WithContext(ctx).Create(&order).Error; err != nil {
		return 0, err
	}
	return order.ID, nil
}

func (r *OrderGormRepository) SetShippingInfo(ctx context.Context, orderID int64, email string, info model.ShippingInformation) error {
	info.OrderID = orderID
	if err := r.db.WithContext(ctx).Create(&info).Error; err != nil {
		return err
	}

	res := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ?", orderID).
		Update("email", email)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 再試行時は前回の取引を消してから新しい記録を入れる
func (r *OrderGormRepository) ReplaceTransaction(ctx context.Context, orderID int64, t model.Transaction) error {
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Delete(&model.Transaction{}).Error; err != nil {
		return err
	}

	t.OrderID = orderID
	return r.db.WithContext(ctx).Create(&t).Error
}

func (r *OrderGormRepository) AttachPayment(ctx context.Context, orderID int64, card model.CreditCard, t model.Transaction) error {
	card.OrderID = orderID
	if err := r.db.WithContext(ctx).Create(&card).Error; err != nil {
		return err
	}

	if err := r.ReplaceTransaction(ctx, orderID, t); err != nil {
		return err
	}

	res := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ?", orderID).
		Update("paid", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
