package model

// 配送先。注文ごとに一度だけ設定し、以後上書きしない。
type ShippingInformation struct {
	ID         int64  `gorm:"primaryKey;autoIncrement" json:"-"`
	OrderID    int64  `gorm:"not null;uniqueIndex" json:"-"`
	Country    string `gorm:"type:varchar(100);not null" json:"country"`
	Address    string `gorm:"type:varchar(255);not null" json:"address"`
	PostalCode string `gorm:"type:varchar(20);not null" json:"postal_code"`
	City       string `gorm:"type:varchar(255);not null" json:"city"`
	Province   string `gorm:"type:varchar(100);not null" json:"province"`
}
