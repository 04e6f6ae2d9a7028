package repository

import (
	"app/internal/domain/model"
	"context"
	"errors"
)

var ErrNotFound = errors.New("not found")

// カタログスナップショットの読み取りと、initdbからの再投入だけを約束。
type ProductRepository interface {
	ListAll(ctx context.Context) ([]model.Product, error)
	FindByID(ctx context.Context, id int64) (model.Product, error)

	//カタログ取り込み用
	ReplaceAll(ctx context.Context, products []model.Product) error
}
