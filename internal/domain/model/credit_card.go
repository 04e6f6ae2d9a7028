package model

// カード番号の先頭4桁と末尾4桁だけを保持する。生番号とCVVは永続化しない。
type CreditCard struct {
	ID              int64  `gorm:"primaryKey;autoIncrement" json:"-"`
	OrderID         int64  `gorm:"not null;uniqueIndex" json:"-"`
	Name            string `gorm:"type:varchar(255);not null" json:"name"`
	FirstDigits     string `gorm:"type:varchar(4);not null" json:"first_digits"`
	LastDigits      string `gorm:"type:varchar(4);not null" json:"last_digits"`
	ExpirationYear  int64  `gorm:"not null" json:"expiration_year"`
	ExpirationMonth int64  `gorm:"not null" json:"expiration_month"`
}
