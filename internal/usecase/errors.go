package usecase

import (
	"errors"
	"fmt"
	"net/http"
)

// 安定したエラーコード。クライアントはこの語彙に依存している
const (
	CodeMissingFields      = "missing-fields"
	CodeOutOfInventory     = "out-of-inventory"
	CodeAlreadyPaid        = "already-paid"
	CodeCardDeclined       = "card-declined"
	CodePaymentUnavailable = "payment-unavailable"
)

// JSONの {"errors": {<scope>: {...}}} のキー
const (
	ScopeProduct    = "product"
	ScopeOrder      = "order"
	ScopeCreditCard = "credit_card"
)

// CheckoutErrorはHTTPステータスと安定コード、表示用メッセージを運ぶ。
// 404だけはスコープなし（本文はプレーンテキスト）。
type CheckoutError struct {
	Status int
	Scope  string
	Code   string
	Name   string
}

func (e *CheckoutError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.Status, e.Code, e.Name)
}

func AsCheckoutError(err error) (*CheckoutError, bool) {
	var ce *CheckoutError
	ok := errors.As(err, &ce)
	return ce, ok
}

func NewMissingFields(scope string, name string) error {
	return &CheckoutError{
		Status: http.StatusUnprocessableEntity,
		Scope:  scope,
		Code:   CodeMissingFields,
		Name:   name,
	}
}

func NewOutOfInventory() error {
	return &CheckoutError{
		Status: http.StatusUnprocessableEntity,
		Scope:  ScopeProduct,
		Code:   CodeOutOfInventory,
		Name:   "Le produit demandé n'est pas en inventaire",
	}
}

func NewAlreadyPaid() error {
	return &CheckoutError{
		Status: http.StatusUnprocessableEntity,
		Scope:  ScopeOrder,
		Code:   CodeAlreadyPaid,
		Name:   "La commande a déjà été payée",
	}
}

func NewCardDeclined() error {
	return &CheckoutError{
		Status: http.StatusUnprocessableEntity,
		Scope:  ScopeCreditCard,
		Code:   CodeCardDeclined,
		Name:   "La carte de crédit a été déclinée",
	}
}

func NewPaymentUnavailable() error {
	return &CheckoutError{
		Status: http.StatusServiceUnavailable,
		Scope:  ScopeCreditCard,
		Code:   CodePaymentUnavailable,
		Name:   "Le service de paiement est temporairement indisponible",
	}
}

func NewOrderNotFound() error {
	return &CheckoutError{
		Status: http.StatusNotFound,
		Name:   "Commande non existante",
	}
}

func NewInternal() error {
	return &CheckoutError{
		Status: http.StatusInternalServerError,
		Scope:  ScopeOrder,
		Code:   "internal",
		Name:   "internal error",
	}
}
