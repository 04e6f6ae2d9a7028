package usecase

import (
	"context"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

type ProductUsecase struct {
	productRepo repo.ProductRepository
}

// DI
func NewProductUsecase(productRepo repo.ProductRepository) *ProductUsecase {
	return &ProductUsecase{productRepo: productRepo}
}

type ProductListOutput struct {
	Products []model.Product `json:"products"`
}

// カタログスナップショットの全件。店頭の一覧表示用
func (u *ProductUsecase) ListProducts(ctx context.Context) (ProductListOutput, error) {
	items, err := u.productRepo.ListAll(ctx)
	if err != nil {
		return ProductListOutput{}, NewInternal()
	}
	return ProductListOutput{Products: items}, nil
}
