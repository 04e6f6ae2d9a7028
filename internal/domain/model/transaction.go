package model

// 支払い試行の記録。成功時のIDは決済ゲートウェイ採番、失敗時はローカル採番。
// 注文ごとに同時に持てるのは1件だけで、再試行時は古い失敗分を置き換える。
type Transaction struct {
	ID            string  `gorm:"primaryKey;type:varchar(64)" json:"id"`
	OrderID       int64   `gorm:"not null;uniqueIndex" json:"-"`
	Success       bool    `gorm:"not null" json:"success"`
	AmountCharged float64 `gorm:"not null" json:"amount_charged"`

	//失敗時だけ入る
	ErrorCode string `gorm:"type:varchar(50)" json:"-"`
	ErrorName string `gorm:"type:varchar(255)" json:"-"`
}

// HasErrorは失敗情報を持つかどうか。
func (t *Transaction) HasError() bool {
	return t.ErrorCode != ""
}
