package model

import "time"

// チェックアウトの進行状態。どのフィールドが埋まっているかから導出する。
type CheckoutState string

const (
	// 作成直後。メールも配送先もまだない
	CheckoutStateCreated CheckoutState = "CREATED"

	// 配送先設定済み・未払い。支払い失敗後もここに留まる
	CheckoutStateInfoSet CheckoutState = "INFO_SET"

	// 支払い完了。終端状態
	CheckoutStatePaid CheckoutState = "PAID"
)

type Order struct {
	ID    int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Email string `gorm:"type:varchar(255)" json:"email"`

	//作成時に一度だけ確定。以後再計算しない
	TotalPrice    float64 `gorm:"not null" json:"total_price"`
	ShippingPrice float64 `gorm:"not null" json:"shipping_price"`

	Paid bool `gorm:"not null;default:false" json:"paid"`

	//任意の子レコード。未設定の間はnil
	ShippingInformation *ShippingInformation `gorm:"foreignKey:OrderID" json:"shipping_information"`
	CreditCard          *CreditCard          `gorm:"foreignKey:OrderID" json:"credit_card"`
	Transaction         *Transaction         `gorm:"foreignKey:OrderID" json:"transaction"`

	Products []OrderProduct `gorm:"foreignKey:OrderID" json:"products"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"-"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"-"`
}

// Stateは永続化済みフィールドからチェックアウト状態を導出する。
// 分岐ごとにフィールドの有無を見直すのではなく、必ずこのタグで判定する。
func (o *Order) State() CheckoutState {
	if o.Paid {
		return CheckoutStatePaid
	}
	if o.ShippingInformation != nil || o.Email != "" {
		return CheckoutStateInfoSet
	}
	return CheckoutStateCreated
}

// 注文内の（商品, 数量）ペア。作成後は変更しない。
type OrderProduct struct {
	ID        int64 `gorm:"primaryKey;autoIncrement" json:"-"`
	OrderID   int64 `gorm:"not null;index" json:"-"`
	ProductID int64 `gorm:"not null" json:"id"`
	Quantity  int64 `gorm:"not null" json:"quantity"`
}
