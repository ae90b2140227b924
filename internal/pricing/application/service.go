package application

import (
	"github.com/wyfcoding/optionpricing/internal/pricing/domain"
	"github.com/wyfcoding/optionpricing/pkg/metrics"
)

// PricingService 定价应用服务门面，聚合命令与查询两侧
type PricingService struct {
	Commands *PricingCommandService
	Queries  *PricingQueryService
}

// NewPricingService 创建定价应用服务
func NewPricingService(
	repo domain.PricingRepository,
	cache domain.PricingCache,
	publisher domain.EventPublisher,
	m *metrics.Metrics,
) *PricingService {
	return &PricingService{
		Commands: NewPricingCommandService(repo, cache, publisher, m),
		Queries:  NewPricingQueryService(repo, cache),
	}
}
