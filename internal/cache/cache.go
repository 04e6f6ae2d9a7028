package cache

import (
	"context"
	"errors"
)

var ErrCacheMiss = errors.New("cache miss")

// 支払い済み注文のビュー（JSON）を置くだけのキャッシュ。
// 書き込むのは支払い完了の遷移時だけで、支払い済み注文は不変なので無効化はしない。
type OrderCache interface {
	Get(ctx context.Context, orderID int64) ([]byte, error)
	Set(ctx context.Context, orderID int64, view []byte) error
}
