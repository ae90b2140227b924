// Package contextx 在 context 中传递事务句柄，供仓储层在同一事务内协作
package contextx

import "context"

type txKey struct{}

// WithTx 把事务句柄写入 context
func WithTx(ctx context.Context, tx any) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// GetTx 取出事务句柄，不存在时返回 nil
func GetTx(ctx context.Context) any {
	return ctx.Value(txKey{})
}
