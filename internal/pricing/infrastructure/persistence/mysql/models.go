package mysql

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/wyfcoding/optionpricing/internal/pricing/domain"
)

// PricingResultModel 定价结果表
type PricingResultModel struct {
	ID              uint64          `gorm:"primaryKey;autoIncrement"`
	Symbol          string          `gorm:"type:varchar(64);not null;index:idx_symbol_calculated,priority:1"`
	OptionType      string          `gorm:"type:varchar(8);not null"`
	PricingModel    string          `gorm:"type:varchar(32);not null"`
	StrikePrice     decimal.Decimal `gorm:"type:decimal(24,8);not null"`
	UnderlyingPrice decimal.Decimal `gorm:"type:decimal(24,8);not null"`
	TheoreticalPx   decimal.Decimal `gorm:"type:decimal(24,8);not null"`
	Volatility      decimal.Decimal `gorm:"type:decimal(12,8);not null"`
	RiskFreeRate    decimal.Decimal `gorm:"type:decimal(12,8);not null"`
	TimeToExpiry    decimal.Decimal `gorm:"type:decimal(16,8);not null"`
	Delta           decimal.Decimal `gorm:"type:decimal(18,10);not null"`
	Gamma           decimal.Decimal `gorm:"type:decimal(18,10);not null"`
	Theta           decimal.Decimal `gorm:"type:decimal(18,10);not null"`
	Vega            decimal.Decimal `gorm:"type:decimal(18,10);not null"`
	Rho             decimal.Decimal `gorm:"type:decimal(18,10);not null"`
	CalculatedAt    time.Time       `gorm:"not null;index:idx_symbol_calculated,priority:2"`
	CreatedAt       time.Time
}

// TableName 指定表名
func (PricingResultModel) TableName() string {
	return "pricing_results"
}

func toModel(r *domain.PricingResult) *PricingResultModel {
	return &PricingResultModel{
		ID:              r.ID,
		Symbol:          r.Symbol,
		OptionType:      string(r.OptionType),
		PricingModel:    string(r.PricingModel),
		StrikePrice:     r.StrikePrice,
		UnderlyingPrice: r.UnderlyingPrice,
		TheoreticalPx:   r.TheoreticalPx,
		Volatility:      r.Volatility,
		RiskFreeRate:    r.RiskFreeRate,
		TimeToExpiry:    r.TimeToExpiry,
		Delta:           r.Greeks.Delta,
		Gamma:           r.Greeks.Gamma,
		Theta:           r.Greeks.Theta,
		Vega:            r.Greeks.Vega,
		Rho:             r.Greeks.Rho,
		CalculatedAt:    r.CalculatedAt,
	}
}

func toDomain(m *PricingResultModel) *domain.PricingResult {
	return &domain.PricingResult{
		ID:              m.ID,
		Symbol:          m.Symbol,
		OptionType:      domain.OptionType(m.OptionType),
		PricingModel:    domain.PricingModel(m.PricingModel),
		StrikePrice:     m.StrikePrice,
		UnderlyingPrice: m.UnderlyingPrice,
		TheoreticalPx:   m.TheoreticalPx,
		Volatility:      m.Volatility,
		RiskFreeRate:    m.RiskFreeRate,
		TimeToExpiry:    m.TimeToExpiry,
		Greeks: domain.Greeks{
			Delta: m.Delta,
			Gamma: m.Gamma,
			Theta: m.Theta,
			Vega:  m.Vega,
			Rho:   m.Rho,
		},
		CalculatedAt: m.CalculatedAt,
	}
}
