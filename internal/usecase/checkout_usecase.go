package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"app/internal/cache"
	"app/internal/domain/model"
	"app/internal/payment"
	repo "app/internal/repository"
)

// 失敗取引のローカルID採番
type IDGenerator interface {
	NewID() string
}

// CheckoutUsecaseが注文のチェックアウト状態機械。
// すべての変更は永続化済みの現在状態に対して、同一トランザクション内で検証・適用する。
type CheckoutUsecase struct {
	tx      repo.TransactionManager
	gateway payment.Gateway
	cache   cache.OrderCache // nilならキャッシュなし
	idGen   IDGenerator
	logger  *slog.Logger
}

func NewCheckoutUsecase(
	tx repo.TransactionManager,
	gateway payment.Gateway,
	orderCache cache.OrderCache,
	idGen IDGenerator,
	logger *slog.Logger,
) *CheckoutUsecase {
	return &CheckoutUsecase{
		tx:      tx,
		gateway: gateway,
		cache:   orderCache,
		idGen:   idGen,
		logger:  logger,
	}
}

// =====================
// 注文作成
// =====================

// フィールド欠落を検出するためポインタで受ける
type OrderLineInput struct {
	ID       *int64 `json:"id"`
	Quantity *int64 `json:"quantity"`
}

type CreateOrderInput struct {
	Products []*OrderLineInput `json:"products"`
}

// CreateOrderは明細を検証し、合計と配送料を確定して注文を作る。
// 1件でも不正な明細があれば全体を拒否し、何も永続化しない。
func (u *CheckoutUsecase) CreateOrder(ctx context.Context, in CreateOrderInput) (int64, error) {
	if len(in.Products) == 0 {
		return 0, NewMissingFields(ScopeProduct, "La création d'une commande nécessite un produit")
	}
	for _, line := range in.Products {
		if line == nil || line.ID == nil || line.Quantity == nil || *line.Quantity < 1 {
			return 0, NewMissingFields(ScopeProduct, "La création d'une commande nécessite un produit")
		}
	}

	var orderID int64

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		var totalPrice float64
		var totalWeight float64

		items := make([]model.OrderProduct, 0, len(in.Products))
		for _, line := range in.Products {
			p, err := r.Products().FindByID(ctx, *line.ID)
			if err == repo.ErrNotFound {
				return NewOutOfInventory()
			}
			if err != nil {
				return NewInternal()
			}
			if !p.InStock {
				return NewOutOfInventory()
			}

			qty := *line.Quantity
			totalPrice += p.Price * float64(qty)
			totalWeight += float64(p.Weight) * float64(qty)

			items = append(items, model.OrderProduct{ProductID: p.ID, Quantity: qty})
		}

		//合計と配送料はここで一度だけ確定する
		id, err := r.Orders().Create(ctx, model.Order{
			TotalPrice:    totalPrice,
			ShippingPrice: ShippingPrice(totalWeight),
		})
		if err != nil {
			return NewInternal()
		}

		if err := r.OrderProducts().CreateBulk(ctx, id, items); err != nil {
			return NewInternal()
		}

		orderID = id
		return nil
	})

	if err != nil {
		return 0, err
	}
	return orderID, nil
}

// =====================
// 注文取得
// =====================

// GetOrderは状態を問わず現在のスナップショットを返す。
// 支払い済み注文はキャッシュから返せることがある（不変なので古くならない）。
func (u *CheckoutUsecase) GetOrder(ctx context.Context, orderID int64) (OrderView, error) {
	if u.cache != nil {
		if data, err := u.cache.Get(ctx, orderID); err == nil {
			var v OrderView
			if err := json.Unmarshal(data, &v); err == nil {
				return v, nil
			}
			u.logger.Warn("order cache entry unreadable", "order_id", orderID)
		}
	}

	var out OrderView
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewOrderNotFound()
		}
		if err != nil {
			return NewInternal()
		}
		out = toOrderView(o)
		return nil
	})

	if err != nil {
		return OrderView{}, err
	}
	return out, nil
}

// =====================
// 注文の前進（PUT）
// =====================

type ShippingInformationInput struct {
	Country    *string `json:"country"`
	Address    *string `json:"address"`
	PostalCode *string `json:"postal_code"`
	City       *string `json:"city"`
	Province   *string `json:"province"`
}

type OrderUpdateInput struct {
	Email               *string                   `json:"email"`
	ShippingInformation *ShippingInformationInput `json:"shipping_information"`
}

type CreditCardInput struct {
	Name            *string `json:"name"`
	Number          *string `json:"number"`
	CVV             *string `json:"cvv"`
	ExpirationYear  *int64  `json:"expiration_year"`
	ExpirationMonth *int64  `json:"expiration_month"`
}

type AdvanceOrderInput struct {
	Order      *OrderUpdateInput `json:"order"`
	CreditCard *CreditCardInput  `json:"credit_card"`
}

// AdvanceOrderはチェックアウトを1段階進める。
// 注文行をロックして現在状態を読み、状態タグで受け付ける変更を決める。
func (u *CheckoutUsecase) AdvanceOrder(ctx context.Context, orderID int64, in AdvanceOrderInput) (OrderView, error) {
	var out OrderView
	var businessErr error //コミットしたうえで返すエラー（カード拒否）
	var paidNow bool

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByIDForUpdate(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewOrderNotFound()
		}
		if err != nil {
			return NewInternal()
		}

		switch o.State() {
		case model.CheckoutStateCreated:
			out, err = u.applyShippingInfo(ctx, r, o, in)
			return err

		case model.CheckoutStateInfoSet:
			out, paidNow, businessErr, err = u.applyPayment(ctx, r, o, in)
			return err

		default: //支払い済みは終端
			return NewAlreadyPaid()
		}
	})

	if err != nil {
		return OrderView{}, err
	}
	if businessErr != nil {
		return OrderView{}, businessErr
	}

	//支払い完了の遷移でだけキャッシュを埋める。失敗しても応答は変えない
	if paidNow && u.cache != nil {
		if data, err := json.Marshal(out); err == nil {
			if err := u.cache.Set(ctx, orderID, data); err != nil {
				u.logger.Warn("order cache fill failed", "order_id", orderID, "error", err)
			}
		}
	}

	return out, nil
}

// ステップ1：メールと配送先。全項目が揃っていなければ受け付けない
func (u *CheckoutUsecase) applyShippingInfo(ctx context.Context, r repo.TxRepos, o model.Order, in AdvanceOrderInput) (OrderView, error) {
	//配送先より先にカード情報は受け付けない（コードは互換のためmissing-fieldsのまま）
	if in.CreditCard != nil {
		return OrderView{}, NewMissingFields(ScopeOrder,
			"Les informations du client sont nécessaires avant d'appliquer une carte de crédit")
	}

	if in.Order == nil || in.Order.Email == nil || in.Order.ShippingInformation == nil {
		return OrderView{}, NewMissingFields(ScopeOrder, "Il manque un ou plusieurs champs qui sont obligatoires")
	}

	si := in.Order.ShippingInformation
	for _, f := range []*string{si.Country, si.Address, si.PostalCode, si.City, si.Province, in.Order.Email} {
		if f == nil || *f == "" {
			return OrderView{}, NewMissingFields(ScopeOrder, "Il manque un ou plusieurs champs qui sont obligatoires")
		}
	}

	info := model.ShippingInformation{
		Country:    *si.Country,
		Address:    *si.Address,
		PostalCode: *si.PostalCode,
		City:       *si.City,
		Province:   *si.Province,
	}
	if err := r.Orders().SetShippingInfo(ctx, o.ID, *in.Order.Email, info); err != nil {
		return OrderView{}, NewInternal()
	}

	o.Email = *in.Order.Email
	o.ShippingInformation = &info
	return toOrderView(o), nil
}

// ステップ2：支払い。ゲートウェイ呼び出しは前進経路で唯一の外部呼び出し
func (u *CheckoutUsecase) applyPayment(ctx context.Context, r repo.TxRepos, o model.Order, in AdvanceOrderInput) (view OrderView, paidNow bool, businessErr error, err error) {
	if in.CreditCard == nil {
		return OrderView{}, false, nil, NewMissingFields(ScopeOrder, "Il manque un ou plusieurs champs qui sont obligatoires")
	}

	//状態タグ上ここには来ないはずだが、二重請求だけは絶対に防ぐ
	if o.Paid {
		return OrderView{}, false, nil, NewAlreadyPaid()
	}

	cc := in.CreditCard
	if cc.Name == nil || cc.Number == nil || cc.CVV == nil || cc.ExpirationYear == nil || cc.ExpirationMonth == nil {
		return OrderView{}, false, nil, NewMissingFields(ScopeOrder, "Il manque un ou plusieurs champs qui sont obligatoires")
	}
	//番号8桁未満は拒否。成功時に先頭4桁と末尾4桁だけ保存するため、それより短いと切り出せない
	if *cc.Name == "" || *cc.CVV == "" || len(*cc.Number) < 8 {
		return OrderView{}, false, nil, NewMissingFields(ScopeOrder, "Il manque un ou plusieurs champs qui sont obligatoires")
	}

	amount := o.TotalPrice + o.ShippingPrice

	result, gwErr := u.gateway.Charge(ctx, payment.CardDetails{
		Name:            *cc.Name,
		Number:          *cc.Number,
		CVV:             *cc.CVV,
		ExpirationYear:  *cc.ExpirationYear,
		ExpirationMonth: *cc.ExpirationMonth,
	}, amount)

	if gwErr != nil {
		//結果不明の障害。何も記録せず未払いのまま再試行可能にしておく
		if errors.Is(gwErr, payment.ErrGatewayUnavailable) {
			u.logger.Error("payment gateway unreachable", "order_id", o.ID, "error", gwErr)
			return OrderView{}, false, nil, NewPaymentUnavailable()
		}
		return OrderView{}, false, nil, NewInternal()
	}

	if !result.Success {
		//拒否は業務上の結果。失敗取引を残してコミットし、注文は再試行可能なまま
		failed := model.Transaction{
			ID:            u.idGen.NewID(),
			Success:       false,
			AmountCharged: amount,
			ErrorCode:     CodeCardDeclined,
			ErrorName:     result.ErrorMessage,
		}
		if err := r.Orders().ReplaceTransaction(ctx, o.ID, failed); err != nil {
			return OrderView{}, false, nil, NewInternal()
		}
		return OrderView{}, false, NewCardDeclined(), nil
	}

	number := *cc.Number
	card := model.CreditCard{
		Name:            *cc.Name,
		FirstDigits:     number[:4],
		LastDigits:      number[len(number)-4:],
		ExpirationYear:  *cc.ExpirationYear,
		ExpirationMonth: *cc.ExpirationMonth,
	}
	txn := model.Transaction{
		ID:            result.TransactionID,
		Success:       true,
		AmountCharged: result.AmountCharged,
	}
	if err := r.Orders().AttachPayment(ctx, o.ID, card, txn); err != nil {
		return OrderView{}, false, nil, NewInternal()
	}

	o.Paid = true
	o.CreditCard = &card
	o.Transaction = &txn
	return toOrderView(o), true, nil, nil
}
