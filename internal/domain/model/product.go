package model

import "time"

// カタログスナップショット。注文作成時に読むだけで、チェックアウト側からは変更しない。
type Product struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"type:varchar(255);not null" json:"name"`
	Type        string    `gorm:"type:varchar(100);not null" json:"type"`
	Description string    `gorm:"type:text" json:"description"`
	Image       string    `gorm:"type:varchar(255)" json:"image"`
	Height      int64     `gorm:"not null" json:"height"`
	Weight      int64     `gorm:"not null" json:"weight"`
	Price       float64   `gorm:"not null" json:"price"`
	Rating      int64     `gorm:"not null" json:"rating"`
	InStock     bool      `gorm:"not null;default:false" json:"inStock"`
	CreatedAt   time.Time `gorm:"not null;autoCreateTime" json:"-"`
	UpdatedAt   time.Time `gorm:"not null;autoUpdateTime" json:"-"`
}
