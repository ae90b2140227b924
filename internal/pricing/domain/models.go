package domain

import "math"

// 各具名定价模型。全部以广义 Black-Scholes 为核心，
// 通过持有成本率 b 的不同取法区分标的资产类别。

// BlackScholes 无股息股票期权，b = r
func BlackScholes(optionType OptionType, fs, x, t, r, v float64) (*Valuation, error) {
	return gbs(optionType, fs, x, t, r, r, v)
}

// Merton 连续股息率 q 的股票/指数期权，b = r - q
func Merton(optionType OptionType, fs, x, t, r, q, v float64) (*Valuation, error) {
	return gbs(optionType, fs, x, t, r, r-q, v)
}

// Black76 商品期货期权，标的为远期价格，b = 0
func Black76(optionType OptionType, fs, x, t, r, v float64) (*Valuation, error) {
	return gbs(optionType, fs, x, t, r, 0, v)
}

// GarmanKohlhagen 外汇期权，rf 为外币无风险利率，b = r - rf
func GarmanKohlhagen(optionType OptionType, fs, x, t, r, rf, v float64) (*Valuation, error) {
	return gbs(optionType, fs, x, t, r, r-rf, v)
}

// Asian76 商品均价期权的矩匹配近似。
// ta 为均价期起点（距今年数），须落在 [0, t]；
// ta == t 表示均价期尚未开始，退化为普通 Black 76。
func Asian76(optionType OptionType, fs, x, t, ta, r, v float64) (*Valuation, error) {
	if ta < limits.MinTA || ta > t {
		return nil, &InputError{Field: "averaging_start", Value: ta, Min: limits.MinTA, Max: t}
	}

	va := v
	if ta < t {
		// 几何布朗运动算术平均的二阶矩，映射为等效波动率
		m := (2*math.Exp(v*v*t) - 2*math.Exp(v*v*ta)*(1+v*v*(t-ta))) /
			(v * v * v * v * (t - ta) * (t - ta))
		va = math.Sqrt(math.Log(m) / t)
	}
	return gbs(optionType, fs, x, t, r, 0, va)
}

// Kirks76 双标的价差期权 max(F1 - F2 - X, 0) 的 Kirk 近似。
// 以 F1/(F2+X) 为合成标的、1 为行权价定价，再按 (F2+X) 还原。
// 合成变换下的希腊字母没有直接含义，结果中置零。
func Kirks76(optionType OptionType, f1, f2, x, t, r, v1, v2, corr float64) (*Valuation, error) {
	fTemp := f2 / (f2 + x)
	v := math.Sqrt(v1*v1 + (v2*fTemp)*(v2*fTemp) - 2*corr*v1*v2*fTemp)

	val, err := gbs(optionType, f1/(f2+x), 1.0, t, r, 0, v)
	if err != nil {
		return nil, err
	}
	return &Valuation{Value: val.Value * (f2 + x)}, nil
}

// American 美式股票期权，Bjerksund-Stensland 2002 近似，q 为股息率
func American(optionType OptionType, fs, x, t, r, q, v float64) (*Valuation, error) {
	return americanOption(optionType, fs, x, t, r, r-q, v)
}

// American76 美式商品期权，b = 0
func American76(optionType OptionType, fs, x, t, r, v float64) (*Valuation, error) {
	return americanOption(optionType, fs, x, t, r, 0, v)
}

// EuroImpliedVol 欧式股票期权隐含波动率，Newton 快速通道
func EuroImpliedVol(optionType OptionType, fs, x, t, r, q, price float64) (float64, error) {
	return EuroImpliedVolWith(DefaultSolverConfig, optionType, fs, x, t, r, q, price)
}

// EuroImpliedVolWith 同 EuroImpliedVol，求解参数可调
func EuroImpliedVolWith(cfg SolverConfig, optionType OptionType, fs, x, t, r, q, price float64) (float64, error) {
	return newtonImpliedVol(gbs, optionType, fs, x, t, r, r-q, price, cfg)
}

// EuroImpliedVol76 欧式商品期权隐含波动率
func EuroImpliedVol76(optionType OptionType, fs, x, t, r, price float64) (float64, error) {
	return EuroImpliedVol76With(DefaultSolverConfig, optionType, fs, x, t, r, price)
}

// EuroImpliedVol76With 同 EuroImpliedVol76，求解参数可调
func EuroImpliedVol76With(cfg SolverConfig, optionType OptionType, fs, x, t, r, price float64) (float64, error) {
	return newtonImpliedVol(gbs, optionType, fs, x, t, r, 0, price, cfg)
}

// AmerImpliedVol 美式股票期权隐含波动率，直接二分求解
func AmerImpliedVol(optionType OptionType, fs, x, t, r, q, price float64) (float64, error) {
	return AmerImpliedVolWith(DefaultSolverConfig, optionType, fs, x, t, r, q, price)
}

// AmerImpliedVolWith 同 AmerImpliedVol，求解参数可调
func AmerImpliedVolWith(cfg SolverConfig, optionType OptionType, fs, x, t, r, q, price float64) (float64, error) {
	return bisectionImpliedVol(americanOption, optionType, fs, x, t, r, r-q, price, cfg)
}

// AmerImpliedVol76 美式商品期权隐含波动率
func AmerImpliedVol76(optionType OptionType, fs, x, t, r, price float64) (float64, error) {
	return AmerImpliedVol76With(DefaultSolverConfig, optionType, fs, x, t, r, price)
}

// AmerImpliedVol76With 同 AmerImpliedVol76，求解参数可调
func AmerImpliedVol76With(cfg SolverConfig, optionType OptionType, fs, x, t, r, price float64) (float64, error) {
	return bisectionImpliedVol(americanOption, optionType, fs, x, t, r, 0, price, cfg)
}
