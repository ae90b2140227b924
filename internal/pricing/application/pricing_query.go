package application

import (
	"context"
	"time"

	"github.com/wyfcoding/optionpricing/internal/pricing/domain"
	"github.com/wyfcoding/optionpricing/pkg/logger"
)

// PricingQueryService 定价查询服务，只读路径
type PricingQueryService struct {
	repo  domain.PricingRepository
	cache domain.PricingCache
}

// NewPricingQueryService 创建定价查询服务，cache 可为 nil
func NewPricingQueryService(repo domain.PricingRepository, cache domain.PricingCache) *PricingQueryService {
	return &PricingQueryService{repo: repo, cache: cache}
}

// GetGreeks 计算希腊字母，纯计算不落库。
// 合约已到期时返回全零，不视为错误。
func (s *PricingQueryService) GetGreeks(ctx context.Context, q *GreeksQuery) (*domain.Valuation, error) {
	contract := domain.OptionContract{
		Type:       domain.OptionType(q.OptionType),
		ExpiryDate: q.ExpiryDate,
	}
	if contract.IsExpired(time.Now()) {
		return &domain.Valuation{}, nil
	}

	cmd := &PriceOptionCommand{
		OptionType:      q.OptionType,
		PricingModel:    q.PricingModel,
		StrikePrice:     q.StrikePrice,
		UnderlyingPrice: q.UnderlyingPrice,
		Volatility:      q.Volatility,
		RiskFreeRate:    q.RiskFreeRate,
		DividendYield:   q.DividendYield,
		ForeignRate:     q.ForeignRate,
		AveragingStart:  q.AveragingStart,
		SecondLeg:       q.SecondLeg,
		SecondLegVol:    q.SecondLegVol,
		Correlation:     q.Correlation,
	}
	return valuate(cmd, contract.TimeToExpiry(time.Now()))
}

// GetLatestResult 查询合约最近一次定价结果，缓存优先，未命中回源数据库并回填
func (s *PricingQueryService) GetLatestResult(ctx context.Context, symbol string) (*domain.PricingResult, error) {
	if s.cache != nil {
		cached, err := s.cache.GetLatestPricingResult(ctx, symbol)
		if err != nil {
			logger.Warn(ctx, "pricing cache read failed", "symbol", symbol, "error", err)
		} else if cached != nil {
			return cached, nil
		}
	}

	result, err := s.repo.GetLatestPricingResult(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if result != nil && s.cache != nil {
		if err := s.cache.SavePricingResult(ctx, result); err != nil {
			logger.Warn(ctx, "pricing cache backfill failed", "symbol", symbol, "error", err)
		}
	}
	return result, nil
}

// GetHistory 按时间倒序查询合约历史定价结果
func (s *PricingQueryService) GetHistory(ctx context.Context, symbol string, limit int) ([]*domain.PricingResult, error) {
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	return s.repo.GetPricingResultHistory(ctx, symbol, limit)
}
