package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"app/internal/domain/model"
	"app/internal/payment"
	repo "app/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// =====================
// Mocks
// =====================

type OrderRepoMock struct{ mock.Mock }

func (m *OrderRepoMock) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderRepoMock) FindByIDForUpdate(ctx context.Context, orderID int64) (model.Order, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderRepoMock) Create(ctx context.Context, order model.Order) (int64, error) {
	args := m.Called(ctx, order)
	return args.Get(0).(int64), args.Error(1)
}

func (m *OrderRepoMock) SetShippingInfo(ctx context.Context, orderID int64, email string, info model.ShippingInformation) error {
	args := m.Called(ctx, orderID, email, info)
	return args.Error(0)
}

func (m *OrderRepoMock) ReplaceTransaction(ctx context.Context, orderID int64, t model.Transaction) error {
	args := m.Called(ctx, orderID, t)
	return args.Error(0)
}

func (m *OrderRepoMock) AttachPayment(ctx context.Context, orderID int64, card model.CreditCard, t model.Transaction) error {
	args := m.Called(ctx, orderID, card, t)
	return args.Error(0)
}

type OrderProductRepoMock struct{ mock.Mock }

func (m *OrderProductRepoMock) CreateBulk(ctx context.Context, orderID int64, items []model.OrderProduct) error {
	args := m.Called(ctx, orderID, items)
	return args.Error(0)
}

func (m *OrderProductRepoMock) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderProduct, error) {
	args := m.Called(ctx, orderID)
	items, _ := args.Get(0).([]model.OrderProduct)
	return items, args.Error(1)
}

type ProductRepoMock struct{ mock.Mock }

func (m *ProductRepoMock) ListAll(ctx context.Context) ([]model.Product, error) {
	args := m.Called(ctx)
	items, _ := args.Get(0).([]model.Product)
	return items, args.Error(1)
}

func (m *ProductRepoMock) FindByID(ctx context.Context, id int64) (model.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *ProductRepoMock) ReplaceAll(ctx context.Context, products []model.Product) error {
	args := m.Called(ctx, products)
	return args.Error(0)
}

type GatewayMock struct{ mock.Mock }

func (m *GatewayMock) Charge(ctx context.Context, card payment.CardDetails, amount float64) (payment.ChargeResult, error) {
	args := m.Called(ctx, card, amount)
	r, _ := args.Get(0).(payment.ChargeResult)
	return r, args.Error(1)
}

type CacheMock struct{ mock.Mock }

func (m *CacheMock) Get(ctx context.Context, orderID int64) ([]byte, error) {
	args := m.Called(ctx, orderID)
	b, _ := args.Get(0).([]byte)
	return b, args.Error(1)
}

func (m *CacheMock) Set(ctx context.Context, orderID int64, view []byte) error {
	args := m.Called(ctx, orderID, view)
	return args.Error(0)
}

// TxManagerはモックではなくスタブ。fnに同じrepo群を渡すだけ
type txReposStub struct {
	orders        *OrderRepoMock
	orderProducts *OrderProductRepoMock
	products      *ProductRepoMock
}

func (s *txReposStub) Orders() repo.OrderRepository               { return s.orders }
func (s *txReposStub) OrderProducts() repo.OrderProductRepository { return s.orderProducts }
func (s *txReposStub) Products() repo.ProductRepository           { return s.products }

type txManagerStub struct{ repos *txReposStub }

func (m *txManagerStub) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return fn(m.repos)
}

type stubIDGen struct{}

func (stubIDGen) NewID() string { return "local-txn-1" }

type checkoutFixture struct {
	orders        *OrderRepoMock
	orderProducts *OrderProductRepoMock
	products      *ProductRepoMock
	gateway       *GatewayMock
	cache         *CacheMock
	uc            *CheckoutUsecase
}

func newCheckoutFixture(withCache bool) checkoutFixture {
	f := checkoutFixture{
		orders:        new(OrderRepoMock),
		orderProducts: new(OrderProductRepoMock),
		products:      new(ProductRepoMock),
		gateway:       new(GatewayMock),
	}
	tx := &txManagerStub{repos: &txReposStub{
		orders:        f.orders,
		orderProducts: f.orderProducts,
		products:      f.products,
	}}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	if withCache {
		f.cache = new(CacheMock)
		f.uc = NewCheckoutUsecase(tx, f.gateway, f.cache, stubIDGen{}, logger)
	} else {
		f.uc = NewCheckoutUsecase(tx, f.gateway, nil, stubIDGen{}, logger)
	}
	return f
}

func sp(s string) *string { return &s }
func ip(i int64) *int64   { return &i }

func assertCheckoutCode(t *testing.T, err error, status int, code string) {
	t.Helper()
	ce, ok := AsCheckoutError(err)
	if !ok {
		t.Fatalf("expected CheckoutError, got %v", err)
	}
	assert.Equal(t, status, ce.Status)
	assert.Equal(t, code, ce.Code)
}

func shippingStep() AdvanceOrderInput {
	return AdvanceOrderInput{
		Order: &OrderUpdateInput{
			Email: sp("client@example.org"),
			ShippingInformation: &ShippingInformationInput{
				Country:    sp("Canada"),
				Address:    sp("201, rue Président-Kennedy"),
				PostalCode: sp("G7X 3Y7"),
				City:       sp("Chicoutimi"),
				Province:   sp("QC"),
			},
		},
	}
}

func paymentStep() AdvanceOrderInput {
	return AdvanceOrderInput{
		CreditCard: &CreditCardInput{
			Name:            sp("John Doe"),
			Number:          sp("4242424242424242"),
			CVV:             sp("123"),
			ExpirationYear:  ip(2029),
			ExpirationMonth: ip(9),
		},
	}
}

func orderInfoSet() model.Order {
	return model.Order{
		ID:            7,
		Email:         "client@example.org",
		TotalPrice:    20,
		ShippingPrice: 5,
		ShippingInformation: &model.ShippingInformation{
			Country:    "Canada",
			Address:    "201, rue Président-Kennedy",
			PostalCode: "G7X 3Y7",
			City:       "Chicoutimi",
			Province:   "QC",
		},
	}
}

// =====================
// 注文作成
// =====================

func TestCreateOrder_EmptyProducts(t *testing.T) {
	f := newCheckoutFixture(false)

	_, err := f.uc.CreateOrder(context.Background(), CreateOrderInput{})

	assertCheckoutCode(t, err, 422, CodeMissingFields)
	f.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateOrder_MissingQuantity(t *testing.T) {
	f := newCheckoutFixture(false)

	_, err := f.uc.CreateOrder(context.Background(), CreateOrderInput{
		Products: []*OrderLineInput{{ID: ip(1)}},
	})

	assertCheckoutCode(t, err, 422, CodeMissingFields)
}

func TestCreateOrder_NullLineEntry(t *testing.T) {
	f := newCheckoutFixture(false)

	_, err := f.uc.CreateOrder(context.Background(), CreateOrderInput{
		Products: []*OrderLineInput{nil},
	})

	assertCheckoutCode(t, err, 422, CodeMissingFields)
}

func TestCreateOrder_ZeroQuantity(t *testing.T) {
	f := newCheckoutFixture(false)

	_, err := f.uc.CreateOrder(context.Background(), CreateOrderInput{
		Products: []*OrderLineInput{{ID: ip(1), Quantity: ip(0)}},
	})

	assertCheckoutCode(t, err, 422, CodeMissingFields)
}

func TestCreateOrder_UnknownProduct(t *testing.T) {
	f := newCheckoutFixture(false)
	f.products.On("FindByID", mock.Anything, int64(99)).Return(model.Product{}, repo.ErrNotFound)

	_, err := f.uc.CreateOrder(context.Background(), CreateOrderInput{
		Products: []*OrderLineInput{{ID: ip(99), Quantity: ip(1)}},
	})

	assertCheckoutCode(t, err, 422, CodeOutOfInventory)
	f.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

// 1件でも在庫切れなら注文全体を拒否し、何も作らない
func TestCreateOrder_AtomicRejectsWholeOrder(t *testing.T) {
	f := newCheckoutFixture(false)
	f.products.On("FindByID", mock.Anything, int64(1)).
		Return(model.Product{ID: 1, Price: 10, Weight: 100, InStock: true}, nil)
	f.products.On("FindByID", mock.Anything, int64(2)).
		Return(model.Product{ID: 2, Price: 3, Weight: 50, InStock: false}, nil)

	_, err := f.uc.CreateOrder(context.Background(), CreateOrderInput{
		Products: []*OrderLineInput{
			{ID: ip(1), Quantity: ip(1)},
			{ID: ip(2), Quantity: ip(1)},
		},
	})

	assertCheckoutCode(t, err, 422, CodeOutOfInventory)
	f.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.orderProducts.AssertNotCalled(t, "CreateBulk", mock.Anything, mock.Anything, mock.Anything)
}

// 単価10・重量100の商品を2個 → 合計20、重量200で配送料5
func TestCreateOrder_ComputesTotalsOnce(t *testing.T) {
	f := newCheckoutFixture(false)
	f.products.On("FindByID", mock.Anything, int64(1)).
		Return(model.Product{ID: 1, Price: 10, Weight: 100, InStock: true}, nil)
	f.orders.On("Create", mock.Anything, mock.MatchedBy(func(o model.Order) bool {
		return o.TotalPrice == 20 && o.ShippingPrice == 5 && !o.Paid
	})).Return(int64(42), nil)
	f.orderProducts.On("CreateBulk", mock.Anything, int64(42), []model.OrderProduct{
		{ProductID: 1, Quantity: 2},
	}).Return(nil)

	orderID, err := f.uc.CreateOrder(context.Background(), CreateOrderInput{
		Products: []*OrderLineInput{{ID: ip(1), Quantity: ip(2)}},
	})

	assert.NoError(t, err)
	assert.Equal(t, int64(42), orderID)
	f.orders.AssertExpectations(t)
	f.orderProducts.AssertExpectations(t)
}

// 総重量2000ちょうどは上の段（25）
func TestCreateOrder_ShippingTierBoundary(t *testing.T) {
	f := newCheckoutFixture(false)
	f.products.On("FindByID", mock.Anything, int64(1)).
		Return(model.Product{ID: 1, Price: 1, Weight: 1000, InStock: true}, nil)
	f.orders.On("Create", mock.Anything, mock.MatchedBy(func(o model.Order) bool {
		return o.ShippingPrice == 25
	})).Return(int64(1), nil)
	f.orderProducts.On("CreateBulk", mock.Anything, int64(1), mock.Anything).Return(nil)

	_, err := f.uc.CreateOrder(context.Background(), CreateOrderInput{
		Products: []*OrderLineInput{{ID: ip(1), Quantity: ip(2)}},
	})

	assert.NoError(t, err)
	f.orders.AssertExpectations(t)
}

// =====================
// 注文取得
// =====================

// 存在しない注文は404
func TestGetOrder_NotFound(t *testing.T) {
	f := newCheckoutFixture(false)
	f.orders.On("FindByID", mock.Anything, int64(404)).Return(model.Order{}, repo.ErrNotFound)

	_, err := f.uc.GetOrder(context.Background(), 404)

	ce, ok := AsCheckoutError(err)
	assert.True(t, ok)
	assert.Equal(t, 404, ce.Status)
}

// 未設定のサブオブジェクトは {} で返る
func TestGetOrder_FreshOrderRendersEmptyObjects(t *testing.T) {
	f := newCheckoutFixture(false)
	f.orders.On("FindByID", mock.Anything, int64(1)).Return(model.Order{
		ID:            1,
		TotalPrice:    20,
		ShippingPrice: 5,
		Products:      []model.OrderProduct{{ProductID: 3, Quantity: 2}},
	}, nil)

	v, err := f.uc.GetOrder(context.Background(), 1)
	assert.NoError(t, err)

	data, err := json.Marshal(v)
	assert.NoError(t, err)

	var m map[string]any
	assert.NoError(t, json.Unmarshal(data, &m))
	assert.Equal(t, map[string]any{}, m["shipping_information"])
	assert.Equal(t, map[string]any{}, m["credit_card"])
	assert.Equal(t, map[string]any{}, m["transaction"])
	assert.Nil(t, m["email"])
	assert.Equal(t, []any{map[string]any{"id": float64(3), "quantity": float64(2)}}, m["products"])
}

func TestGetOrder_CacheHitSkipsStore(t *testing.T) {
	f := newCheckoutFixture(true)

	cached, _ := json.Marshal(OrderView{ID: 9, Paid: true})
	f.cache.On("Get", mock.Anything, int64(9)).Return(cached, nil)

	v, err := f.uc.GetOrder(context.Background(), 9)

	assert.NoError(t, err)
	assert.True(t, v.Paid)
	f.orders.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

// =====================
// 前進：ステップ1（配送先）
// =====================

func TestAdvanceOrder_NotFound(t *testing.T) {
	f := newCheckoutFixture(false)
	f.orders.On("FindByIDForUpdate", mock.Anything, int64(404)).Return(model.Order{}, repo.ErrNotFound)

	_, err := f.uc.AdvanceOrder(context.Background(), 404, shippingStep())

	ce, ok := AsCheckoutError(err)
	assert.True(t, ok)
	assert.Equal(t, 404, ce.Status)
}

// 完全な住所で配送先設定済みへ。合計は一切変わらない
func TestAdvanceOrder_SetShippingInfo(t *testing.T) {
	f := newCheckoutFixture(false)
	f.orders.On("FindByIDForUpdate", mock.Anything, int64(7)).
		Return(model.Order{ID: 7, TotalPrice: 20, ShippingPrice: 5}, nil)
	f.orders.On("SetShippingInfo", mock.Anything, int64(7), "client@example.org",
		mock.MatchedBy(func(si model.ShippingInformation) bool {
			return si.Country == "Canada" && si.PostalCode == "G7X 3Y7" && si.Province == "QC"
		})).Return(nil)

	v, err := f.uc.AdvanceOrder(context.Background(), 7, shippingStep())

	assert.NoError(t, err)
	assert.Equal(t, float64(20), v.TotalPrice)
	assert.Equal(t, float64(5), v.ShippingPrice)
	assert.False(t, v.Paid)
	if assert.NotNil(t, v.Email) {
		assert.Equal(t, "client@example.org", *v.Email)
	}
	f.orders.AssertExpectations(t)
}

// 配送先より先のカード情報は受け付けない（コードはmissing-fields互換）
func TestAdvanceOrder_PaymentBeforeShippingRejected(t *testing.T) {
	f := newCheckoutFixture(false)
	f.orders.On("FindByIDForUpdate", mock.Anything, int64(7)).
		Return(model.Order{ID: 7, TotalPrice: 20, ShippingPrice: 5}, nil)

	_, err := f.uc.AdvanceOrder(context.Background(), 7, paymentStep())

	assertCheckoutCode(t, err, 422, CodeMissingFields)
	f.gateway.AssertNotCalled(t, "Charge", mock.Anything, mock.Anything, mock.Anything)
	f.orders.AssertNotCalled(t, "SetShippingInfo", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAdvanceOrder_IncompleteAddressRejected(t *testing.T) {
	f := newCheckoutFixture(false)
	f.orders.On("FindByIDForUpdate", mock.Anything, int64(7)).
		Return(model.Order{ID: 7}, nil)

	in := shippingStep()
	in.Order.ShippingInformation.Province = nil

	_, err := f.uc.AdvanceOrder(context.Background(), 7, in)

	assertCheckoutCode(t, err, 422, CodeMissingFields)
	f.orders.AssertNotCalled(t, "SetShippingInfo", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// =====================
// 前進：ステップ2（支払い）
// =====================

func TestAdvanceOrder_IncompleteCardRejected(t *testing.T) {
	f := newCheckoutFixture(false)
	f.orders.On("FindByIDForUpdate", mock.Anything, int64(7)).Return(orderInfoSet(), nil)

	in := paymentStep()
	in.CreditCard.CVV = nil

	_, err := f.uc.AdvanceOrder(context.Background(), 7, in)

	assertCheckoutCode(t, err, 422, CodeMissingFields)
	f.gateway.AssertNotCalled(t, "Charge", mock.Anything, mock.Anything, mock.Anything)
}

// 保存するのは先頭4桁と末尾4桁なので、8桁未満の番号はゲートウェイに渡す前に弾く
func TestAdvanceOrder_ShortCardNumberRejected(t *testing.T) {
	f := newCheckoutFixture(false)
	f.orders.On("FindByIDForUpdate", mock.Anything, int64(7)).Return(orderInfoSet(), nil)

	in := paymentStep()
	in.CreditCard.Number = sp("1234567")

	_, err := f.uc.AdvanceOrder(context.Background(), 7, in)

	assertCheckoutCode(t, err, 422, CodeMissingFields)
	f.gateway.AssertNotCalled(t, "Charge", mock.Anything, mock.Anything, mock.Anything)
}

// 拒否は失敗取引として残り、注文は未払いのまま再試行できる
func TestAdvanceOrder_Declined(t *testing.T) {
	f := newCheckoutFixture(false)
	f.orders.On("FindByIDForUpdate", mock.Anything, int64(7)).Return(orderInfoSet(), nil)
	f.gateway.On("Charge", mock.Anything, mock.Anything, float64(25)).
		Return(payment.ChargeResult{
			Success:      false,
			ErrorCode:    "card-declined",
			ErrorMessage: "The card was declined",
		}, nil)
	f.orders.On("ReplaceTransaction", mock.Anything, int64(7),
		mock.MatchedBy(func(txn model.Transaction) bool {
			return !txn.Success &&
				txn.ID == "local-txn-1" &&
				txn.AmountCharged == 25 &&
				txn.ErrorCode == CodeCardDeclined &&
				txn.ErrorName == "The card was declined"
		})).Return(nil)

	_, err := f.uc.AdvanceOrder(context.Background(), 7, paymentStep())

	assertCheckoutCode(t, err, 422, CodeCardDeclined)
	f.orders.AssertExpectations(t)
	f.orders.AssertNotCalled(t, "AttachPayment", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// 拒否後の再試行：失敗取引が付いていても支払いを受け付ける
func TestAdvanceOrder_RetryAfterDecline(t *testing.T) {
	f := newCheckoutFixture(false)

	o := orderInfoSet()
	o.Transaction = &model.Transaction{
		ID: "local-txn-0", Success: false, AmountCharged: 25,
		ErrorCode: CodeCardDeclined, ErrorName: "The card was declined",
	}
	f.orders.On("FindByIDForUpdate", mock.Anything, int64(7)).Return(o, nil)
	f.gateway.On("Charge", mock.Anything, mock.Anything, float64(25)).
		Return(payment.ChargeResult{Success: true, TransactionID: "gw-1", AmountCharged: 25}, nil)
	f.orders.On("AttachPayment", mock.Anything, int64(7), mock.Anything, mock.Anything).Return(nil)

	v, err := f.uc.AdvanceOrder(context.Background(), 7, paymentStep())

	assert.NoError(t, err)
	assert.True(t, v.Paid)
}

// 成功で支払い済みへ。カードはマスク済みの4桁だけ残る
func TestAdvanceOrder_PaymentSuccess(t *testing.T) {
	f := newCheckoutFixture(true)
	f.orders.On("FindByIDForUpdate", mock.Anything, int64(7)).Return(orderInfoSet(), nil)
	f.gateway.On("Charge", mock.Anything, mock.MatchedBy(func(card payment.CardDetails) bool {
		return card.Number == "4242424242424242" && card.CVV == "123"
	}), float64(25)).
		Return(payment.ChargeResult{Success: true, TransactionID: "gw-77", AmountCharged: 25}, nil)
	f.orders.On("AttachPayment", mock.Anything, int64(7),
		mock.MatchedBy(func(card model.CreditCard) bool {
			return card.FirstDigits == "4242" && card.LastDigits == "4242" && card.Name == "John Doe"
		}),
		mock.MatchedBy(func(txn model.Transaction) bool {
			return txn.Success && txn.ID == "gw-77" && txn.AmountCharged == 25
		})).Return(nil)
	f.cache.On("Set", mock.Anything, int64(7), mock.Anything).Return(nil)

	v, err := f.uc.AdvanceOrder(context.Background(), 7, paymentStep())

	assert.NoError(t, err)
	assert.True(t, v.Paid)
	f.orders.AssertExpectations(t)
	f.cache.AssertExpectations(t)
}

// 支払い済み注文への再PUTはalready-paid
func TestAdvanceOrder_AlreadyPaid(t *testing.T) {
	f := newCheckoutFixture(false)

	o := orderInfoSet()
	o.Paid = true
	o.CreditCard = &model.CreditCard{FirstDigits: "4242", LastDigits: "4242"}
	o.Transaction = &model.Transaction{ID: "gw-77", Success: true, AmountCharged: 25}
	f.orders.On("FindByIDForUpdate", mock.Anything, int64(7)).Return(o, nil)

	_, err := f.uc.AdvanceOrder(context.Background(), 7, paymentStep())

	assertCheckoutCode(t, err, 422, CodeAlreadyPaid)
	f.gateway.AssertNotCalled(t, "Charge", mock.Anything, mock.Anything, mock.Anything)
}

// ゲートウェイ障害：拒否扱いにせず、何も記録せず503
func TestAdvanceOrder_GatewayUnavailable(t *testing.T) {
	f := newCheckoutFixture(false)
	f.orders.On("FindByIDForUpdate", mock.Anything, int64(7)).Return(orderInfoSet(), nil)
	f.gateway.On("Charge", mock.Anything, mock.Anything, float64(25)).
		Return(payment.ChargeResult{}, fmt.Errorf("%w: connection refused", payment.ErrGatewayUnavailable))

	_, err := f.uc.AdvanceOrder(context.Background(), 7, paymentStep())

	assertCheckoutCode(t, err, 503, CodePaymentUnavailable)
	f.orders.AssertNotCalled(t, "ReplaceTransaction", mock.Anything, mock.Anything, mock.Anything)
	f.orders.AssertNotCalled(t, "AttachPayment", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// キャッシュ書き込み失敗は応答に影響しない
func TestAdvanceOrder_CacheFillFailureIgnored(t *testing.T) {
	f := newCheckoutFixture(true)
	f.orders.On("FindByIDForUpdate", mock.Anything, int64(7)).Return(orderInfoSet(), nil)
	f.gateway.On("Charge", mock.Anything, mock.Anything, float64(25)).
		Return(payment.ChargeResult{Success: true, TransactionID: "gw-1", AmountCharged: 25}, nil)
	f.orders.On("AttachPayment", mock.Anything, int64(7), mock.Anything, mock.Anything).Return(nil)
	f.cache.On("Set", mock.Anything, int64(7), mock.Anything).Return(fmt.Errorf("redis down"))

	v, err := f.uc.AdvanceOrder(context.Background(), 7, paymentStep())

	assert.NoError(t, err)
	assert.True(t, v.Paid)
}
