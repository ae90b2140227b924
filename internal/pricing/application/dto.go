package application

import (
	"github.com/wyfcoding/optionpricing/internal/pricing/domain"
)

// PriceOptionResult 定价命令返回
type PriceOptionResult struct {
	Symbol        string            `json:"symbol"`
	PricingModel  string            `json:"pricing_model"`
	TheoreticalPx float64           `json:"theoretical_px"`
	Greeks        *domain.Valuation `json:"greeks"`
	TimeToExpiry  float64           `json:"time_to_expiry"`
}

// ImpliedVolResult 隐含波动率命令返回
type ImpliedVolResult struct {
	Symbol      string  `json:"symbol"`
	ImpliedVol  float64 `json:"implied_vol"`
	MarketPrice float64 `json:"market_price"`
	Solver      string  `json:"solver"`
}

// BatchPriceResult 批量定价返回，Results 与输入一一对应，失败项为 nil
type BatchPriceResult struct {
	Total     int                  `json:"total"`
	Succeeded int                  `json:"succeeded"`
	Failed    int                  `json:"failed"`
	Results   []*PriceOptionResult `json:"results"`
	Errors    []string             `json:"errors"` // 与输入一一对应，成功项为空串
	ElapsedMs int64                `json:"elapsed_ms"`
}
