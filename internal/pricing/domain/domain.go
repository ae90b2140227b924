// Package domain 期权定价服务的领域层。
// 包含广义 Black-Scholes 定价核心（欧式、美式近似、隐含波动率求解）
// 及定价结果实体与仓储、事件接口。
package domain

// OptionType 期权类型
type OptionType string

const (
	OptionTypeCall OptionType = "CALL" // 看涨期权
	OptionTypePut  OptionType = "PUT"  // 看跌期权
)

// PricingModel 定价模型标识，应用层据此分发到具体模型
type PricingModel string

const (
	ModelBlackScholes    PricingModel = "BLACK_SCHOLES"    // 无股息股票期权
	ModelMerton          PricingModel = "MERTON"           // 连续股息率股票/指数期权
	ModelBlack76         PricingModel = "BLACK_76"         // 商品期货期权
	ModelGarmanKohlhagen PricingModel = "GARMAN_KOHLHAGEN" // 外汇期权
	ModelAsian76         PricingModel = "ASIAN_76"         // 商品均价（亚式）期权
	ModelKirks76         PricingModel = "KIRKS_76"         // 双标的价差期权
	ModelAmerican        PricingModel = "AMERICAN"         // 美式股票期权
	ModelAmerican76      PricingModel = "AMERICAN_76"      // 美式商品期权
)

// Valuation 单次定价输出：理论价值与五个一阶/二阶敏感度
type Valuation struct {
	Value float64 `json:"value"` // 理论价值
	Delta float64 `json:"delta"` // 对标的价格的一阶敏感度
	Gamma float64 `json:"gamma"` // 对标的价格的二阶敏感度
	Theta float64 `json:"theta"` // 时间价值衰减
	Vega  float64 `json:"vega"`  // 对波动率的敏感度
	Rho   float64 `json:"rho"`   // 对无风险利率的敏感度
}
