package application

// PriceOptionCommand 期权定价命令。
// PricingModel 决定哪些可选字段生效：
// MERTON/AMERICAN 使用 DividendYield，GARMAN_KOHLHAGEN 使用 ForeignRate，
// ASIAN_76 使用 AveragingStart，KIRKS_76 使用第二腿字段。
type PriceOptionCommand struct {
	Symbol          string  `json:"symbol" binding:"required"`
	OptionType      string  `json:"option_type" binding:"required"`
	PricingModel    string  `json:"pricing_model"`
	StrikePrice     float64 `json:"strike_price" binding:"required"`
	ExpiryDate      int64   `json:"expiry_date" binding:"required"` // 毫秒时间戳
	UnderlyingPrice float64 `json:"underlying_price" binding:"required"`
	Volatility      float64 `json:"volatility" binding:"required"`
	RiskFreeRate    float64 `json:"risk_free_rate"`
	DividendYield   float64 `json:"dividend_yield"`
	ForeignRate     float64 `json:"foreign_rate"`
	AveragingStart  float64 `json:"averaging_start"` // 均价期起点，年
	SecondLeg       float64 `json:"second_leg"`      // 价差期权第二腿远期价格
	SecondLegVol    float64 `json:"second_leg_vol"`  // 第二腿波动率
	Correlation     float64 `json:"correlation"`     // 两腿相关系数
}

// ImpliedVolCommand 隐含波动率求解命令
type ImpliedVolCommand struct {
	Symbol          string  `json:"symbol" binding:"required"`
	OptionType      string  `json:"option_type" binding:"required"`
	PricingModel    string  `json:"pricing_model"`
	StrikePrice     float64 `json:"strike_price" binding:"required"`
	ExpiryDate      int64   `json:"expiry_date" binding:"required"`
	UnderlyingPrice float64 `json:"underlying_price" binding:"required"`
	MarketPrice     float64 `json:"market_price" binding:"required"`
	RiskFreeRate    float64 `json:"risk_free_rate"`
	DividendYield   float64 `json:"dividend_yield"`
	Precision       float64 `json:"precision"` // 0 取默认 1e-5
	MaxSteps        int     `json:"max_steps"` // 0 取默认 100
}

// BatchPriceOptionsCommand 批量定价命令
type BatchPriceOptionsCommand struct {
	Options []PriceOptionCommand `json:"options" binding:"required,dive"`
}

// GreeksQuery 希腊字母查询，纯计算不落库。
// 可选字段与 PriceOptionCommand 对齐，按模型取用。
type GreeksQuery struct {
	OptionType      string  `form:"option_type" json:"option_type" binding:"required"`
	PricingModel    string  `form:"pricing_model" json:"pricing_model"`
	StrikePrice     float64 `form:"strike_price" json:"strike_price" binding:"required"`
	ExpiryDate      int64   `form:"expiry_date" json:"expiry_date" binding:"required"`
	UnderlyingPrice float64 `form:"underlying_price" json:"underlying_price" binding:"required"`
	Volatility      float64 `form:"volatility" json:"volatility" binding:"required"`
	RiskFreeRate    float64 `form:"risk_free_rate" json:"risk_free_rate"`
	DividendYield   float64 `form:"dividend_yield" json:"dividend_yield"`
	ForeignRate     float64 `form:"foreign_rate" json:"foreign_rate"`
	AveragingStart  float64 `form:"averaging_start" json:"averaging_start"`
	SecondLeg       float64 `form:"second_leg" json:"second_leg"`
	SecondLegVol    float64 `form:"second_leg_vol" json:"second_leg_vol"`
	Correlation     float64 `form:"correlation" json:"correlation"`
}
