package usecase

import "app/internal/domain/model"

// クライアント向けの注文ビュー。
// 未設定のサブオブジェクトはnullではなく {} で返す（クライアント側の分岐を減らすため）。
type OrderView struct {
	ID                  int64              `json:"id"`
	Email               *string            `json:"email"`
	TotalPrice          float64            `json:"total_price"`
	ShippingPrice       float64            `json:"shipping_price"`
	Paid                bool               `json:"paid"`
	ShippingInformation any                `json:"shipping_information"`
	CreditCard          any                `json:"credit_card"`
	Transaction         any                `json:"transaction"`
	Products            []OrderProductView `json:"products"`
}

type OrderProductView struct {
	ID       int64 `json:"id"`
	Quantity int64 `json:"quantity"`
}

type shippingInformationView struct {
	Country    string `json:"country"`
	Address    string `json:"address"`
	PostalCode string `json:"postal_code"`
	City       string `json:"city"`
	Province   string `json:"province"`
}

type creditCardView struct {
	Name            string `json:"name"`
	FirstDigits     string `json:"first_digits"`
	LastDigits      string `json:"last_digits"`
	ExpirationYear  int64  `json:"expiration_year"`
	ExpirationMonth int64  `json:"expiration_month"`
}

type transactionView struct {
	ID            string  `json:"id"`
	Success       bool    `json:"success"`
	AmountCharged float64 `json:"amount_charged"`
	Error         any     `json:"error"`
}

type transactionErrorView struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

func toOrderView(o model.Order) OrderView {
	v := OrderView{
		ID:                  o.ID,
		TotalPrice:          o.TotalPrice,
		ShippingPrice:       o.ShippingPrice,
		Paid:                o.Paid,
		ShippingInformation: struct{}{},
		CreditCard:          struct{}{},
		Transaction:         struct{}{},
		Products:            make([]OrderProductView, 0, len(o.Products)),
	}

	if o.Email != "" {
		email := o.Email
		v.Email = &email
	}

	if o.ShippingInformation != nil {
		v.ShippingInformation = shippingInformationView{
			Country:    o.ShippingInformation.Country,
			Address:    o.ShippingInformation.Address,
			PostalCode: o.ShippingInformation.PostalCode,
			City:       o.ShippingInformation.City,
			Province:   o.ShippingInformation.Province,
		}
	}

	if o.CreditCard != nil {
		v.CreditCard = creditCardView{
			Name:            o.CreditCard.Name,
			FirstDigits:     o.CreditCard.FirstDigits,
			LastDigits:      o.CreditCard.LastDigits,
			ExpirationYear:  o.CreditCard.ExpirationYear,
			ExpirationMonth: o.CreditCard.ExpirationMonth,
		}
	}

	if o.Transaction != nil {
		tv := transactionView{
			ID:            o.Transaction.ID,
			Success:       o.Transaction.Success,
			AmountCharged: o.Transaction.AmountCharged,
			Error:         struct{}{},
		}
		if o.Transaction.HasError() {
			tv.Error = transactionErrorView{
				Code: o.Transaction.ErrorCode,
				Name: o.Transaction.ErrorName,
			}
		}
		v.Transaction = tv
	}

	for _, p := range o.Products {
		v.Products = append(v.Products, OrderProductView{ID: p.ProductID, Quantity: p.Quantity})
	}

	return v
}
