package domain

import "time"

// 领域事件类型
const (
	EventTypeOptionPriced          = "pricing.option_priced"
	EventTypeGreeksCalculated      = "pricing.greeks_calculated"
	EventTypeVolatilityImplied     = "pricing.volatility_implied"
	EventTypePricingError          = "pricing.error"
	EventTypeBatchPricingCompleted = "pricing.batch_completed"
)

// OptionPricedEvent 期权定价完成事件
type OptionPricedEvent struct {
	Symbol          string    `json:"symbol"`
	OptionType      string    `json:"option_type"`
	PricingModel    string    `json:"pricing_model"`
	TheoreticalPx   string    `json:"theoretical_px"`
	UnderlyingPrice string    `json:"underlying_price"`
	Volatility      string    `json:"volatility"`
	OccurredOn      time.Time `json:"occurred_on"`
}

// GreeksCalculatedEvent 希腊字母计算完成事件
type GreeksCalculatedEvent struct {
	Symbol     string    `json:"symbol"`
	Delta      string    `json:"delta"`
	Gamma      string    `json:"gamma"`
	Theta      string    `json:"theta"`
	Vega       string    `json:"vega"`
	Rho        string    `json:"rho"`
	OccurredOn time.Time `json:"occurred_on"`
}

// VolatilityImpliedEvent 隐含波动率求解完成事件
type VolatilityImpliedEvent struct {
	Symbol      string    `json:"symbol"`
	OptionType  string    `json:"option_type"`
	MarketPrice string    `json:"market_price"`
	ImpliedVol  string    `json:"implied_vol"`
	Solver      string    `json:"solver"`
	OccurredOn  time.Time `json:"occurred_on"`
}

// PricingErrorEvent 定价失败事件，供风控与监控侧消费
type PricingErrorEvent struct {
	Symbol       string    `json:"symbol"`
	PricingModel string    `json:"pricing_model"`
	Reason       string    `json:"reason"`
	OccurredOn   time.Time `json:"occurred_on"`
}

// BatchPricingCompletedEvent 批量定价完成事件
type BatchPricingCompletedEvent struct {
	Total      int       `json:"total"`
	Succeeded  int       `json:"succeeded"`
	Failed     int       `json:"failed"`
	Symbols    []string  `json:"symbols"`
	ElapsedMs  int64     `json:"elapsed_ms"`
	OccurredOn time.Time `json:"occurred_on"`
}
