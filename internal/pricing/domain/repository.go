package domain

import "context"

// PricingRepository 定价结果仓储接口
type PricingRepository interface {
	// WithTx 在单个事务内执行 fn，事务句柄通过 ctx 传递
	WithTx(ctx context.Context, fn func(txCtx context.Context) error) error
	// SavePricingResult 保存定价结果
	SavePricingResult(ctx context.Context, result *PricingResult) error
	// GetLatestPricingResult 查询合约最近一次定价结果，不存在时返回 nil
	GetLatestPricingResult(ctx context.Context, symbol string) (*PricingResult, error)
	// GetPricingResultHistory 按时间倒序查询合约历史定价结果
	GetPricingResultHistory(ctx context.Context, symbol string, limit int) ([]*PricingResult, error)
}

// PricingCache 定价结果缓存接口
type PricingCache interface {
	SavePricingResult(ctx context.Context, result *PricingResult) error
	// GetLatestPricingResult 缓存未命中时返回 nil, nil
	GetLatestPricingResult(ctx context.Context, symbol string) (*PricingResult, error)
}
