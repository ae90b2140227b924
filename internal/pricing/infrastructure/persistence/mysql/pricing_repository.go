// Package mysql 定价结果的 GORM 持久化实现
package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/wyfcoding/optionpricing/internal/pricing/domain"
	"github.com/wyfcoding/optionpricing/pkg/contextx"
)

// PricingRepository domain.PricingRepository 的 MySQL 实现
type PricingRepository struct {
	db *gorm.DB
}

// NewPricingRepository 创建定价结果仓储
func NewPricingRepository(db *gorm.DB) *PricingRepository {
	return &PricingRepository{db: db}
}

// getDB 优先使用 context 中的事务句柄
func (r *PricingRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := contextx.GetTx(ctx).(*gorm.DB); ok && tx != nil {
		return tx
	}
	return r.db.WithContext(ctx)
}

// WithTx 在事务中执行 fn，事务句柄通过 ctx 传递给嵌套的仓储调用
func (r *PricingRepository) WithTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(contextx.WithTx(ctx, tx))
	})
}

// SavePricingResult 保存定价结果
func (r *PricingRepository) SavePricingResult(ctx context.Context, result *domain.PricingResult) error {
	model := toModel(result)
	if err := r.getDB(ctx).Create(model).Error; err != nil {
		return err
	}
	result.ID = model.ID
	return nil
}

// GetLatestPricingResult 查询合约最近一次定价结果，不存在时返回 nil
func (r *PricingRepository) GetLatestPricingResult(ctx context.Context, symbol string) (*domain.PricingResult, error) {
	var model PricingResultModel
	err := r.getDB(ctx).
		Where("symbol = ?", symbol).
		Order("calculated_at DESC").
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return toDomain(&model), nil
}

// GetPricingResultHistory 按计算时间倒序查询合约历史定价结果
func (r *PricingRepository) GetPricingResultHistory(ctx context.Context, symbol string, limit int) ([]*domain.PricingResult, error) {
	var models []PricingResultModel
	err := r.getDB(ctx).
		Where("symbol = ?", symbol).
		Order("calculated_at DESC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	results := make([]*domain.PricingResult, 0, len(models))
	for i := range models {
		results = append(results, toDomain(&models[i]))
	}
	return results, nil
}
