package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OptionContract 期权合约
type OptionContract struct {
	Symbol      string          `json:"symbol"`       // 合约代码
	Type        OptionType      `json:"type"`         // 期权类型
	StrikePrice decimal.Decimal `json:"strike_price"` // 行权价
	ExpiryDate  int64           `json:"expiry_date"`  // 到期时间(毫秒时间戳)
}

// TimeToExpiry 年化剩余期限，已到期返回 0
func (c *OptionContract) TimeToExpiry(now time.Time) float64 {
	remain := time.UnixMilli(c.ExpiryDate).Sub(now)
	if remain <= 0 {
		return 0
	}
	return remain.Hours() / (24 * 365)
}

// IsExpired 合约是否已到期
func (c *OptionContract) IsExpired(now time.Time) bool {
	return c.ExpiryDate <= now.UnixMilli()
}

// Greeks 期权价格敏感度指标
type Greeks struct {
	Delta decimal.Decimal `json:"delta"`
	Gamma decimal.Decimal `json:"gamma"`
	Theta decimal.Decimal `json:"theta"`
	Vega  decimal.Decimal `json:"vega"`
	Rho   decimal.Decimal `json:"rho"`
}

// GreeksFromValuation 把定价核心的浮点结果转换为实体字段
func GreeksFromValuation(v *Valuation) Greeks {
	return Greeks{
		Delta: decimal.NewFromFloat(v.Delta),
		Gamma: decimal.NewFromFloat(v.Gamma),
		Theta: decimal.NewFromFloat(v.Theta),
		Vega:  decimal.NewFromFloat(v.Vega),
		Rho:   decimal.NewFromFloat(v.Rho),
	}
}

// PricingResult 定价结果实体，持久化与事件发布的载体
type PricingResult struct {
	ID              uint64          `json:"id"`
	Symbol          string          `json:"symbol"`           // 合约代码
	OptionType      OptionType      `json:"option_type"`      // 期权类型
	PricingModel    PricingModel    `json:"pricing_model"`    // 使用的定价模型
	StrikePrice     decimal.Decimal `json:"strike_price"`     // 行权价
	UnderlyingPrice decimal.Decimal `json:"underlying_price"` // 标的价格
	TheoreticalPx   decimal.Decimal `json:"theoretical_px"`   // 理论价值
	Volatility      decimal.Decimal `json:"volatility"`       // 输入或反解出的波动率
	RiskFreeRate    decimal.Decimal `json:"risk_free_rate"`   // 无风险利率
	TimeToExpiry    decimal.Decimal `json:"time_to_expiry"`   // 年化剩余期限
	Greeks          Greeks          `json:"greeks"`           // 希腊字母
	CalculatedAt    time.Time       `json:"calculated_at"`    // 计算时间
}

// NewPricingResult 构造定价结果
func NewPricingResult(contract OptionContract, model PricingModel, underlying, vol, rate, tte float64, val *Valuation) *PricingResult {
	return &PricingResult{
		Symbol:          contract.Symbol,
		OptionType:      contract.Type,
		PricingModel:    model,
		StrikePrice:     contract.StrikePrice,
		UnderlyingPrice: decimal.NewFromFloat(underlying),
		TheoreticalPx:   decimal.NewFromFloat(val.Value),
		Volatility:      decimal.NewFromFloat(vol),
		RiskFreeRate:    decimal.NewFromFloat(rate),
		TimeToExpiry:    decimal.NewFromFloat(tte),
		Greeks:          GreeksFromValuation(val),
		CalculatedAt:    time.Now(),
	}
}
