package payment

import (
	"context"
	"errors"
)

// ErrGatewayUnavailableは通信断・タイムアウトなどの障害。
// カード拒否（正常な業務結果）とは別物として扱い、勝手に拒否へ潰さない。
var ErrGatewayUnavailable = errors.New("payment gateway unavailable")

// ゲートウェイに渡す生のカード情報。ここ以外には出さない
type CardDetails struct {
	Name            string
	Number          string
	CVV             string
	ExpirationYear  int64
	ExpirationMonth int64
}

type ChargeResult struct {
	Success       bool
	TransactionID string  // 成功時のみ（ゲートウェイ採番）
	AmountCharged float64 // 成功時のみ
	ErrorCode     string  // 拒否時のみ
	ErrorMessage  string  // 拒否時のみ
}

// Gatewayは外部決済サービスへの同期呼び出し。自動リトライはしない。
type Gateway interface {
	Charge(ctx context.Context, card CardDetails, amount float64) (ChargeResult, error)
}
