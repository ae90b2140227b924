package domain

import "math"

// SolverConfig 隐含波动率迭代求解参数
type SolverConfig struct {
	Precision float64 // 收敛精度，理论价与市场价之差的绝对值
	MaxSteps  int     // 最大迭代步数
}

// DefaultSolverConfig 默认求解参数
var DefaultSolverConfig = SolverConfig{Precision: 1e-5, MaxSteps: 100}

func (c SolverConfig) orDefaults() SolverConfig {
	if c.Precision <= 0 {
		c.Precision = DefaultSolverConfig.Precision
	}
	if c.MaxSteps <= 0 {
		c.MaxSteps = DefaultSolverConfig.MaxSteps
	}
	return c
}

// pricerFunc 求解器可作用于任意满足 GBS 签名的定价函数
type pricerFunc func(optionType OptionType, fs, x, t, r, b, v float64) (*Valuation, error)

func clampVol(v float64) float64 {
	return math.Min(limits.MaxV, math.Max(limits.MinV, v))
}

// approxImpliedVol Brenner-Subrahmanyam 封闭式估计。
// 精度不高，仅作为迭代求解的初值，不单独对外提供。
func approxImpliedVol(optionType OptionType, fs, x, t, r, b, price float64) (float64, error) {
	if err := checkOptionType(optionType); err != nil {
		return 0, err
	}

	ebrt := math.Exp((b - r) * t)
	ert := math.Exp(-r * t)

	a := math.Sqrt(2*math.Pi) / (fs*ebrt + x*ert)
	var payoff float64
	if optionType == OptionTypeCall {
		payoff = fs*ebrt - x*ert
	} else {
		payoff = x*ert - fs*ebrt
	}
	b2 := price - payoff/2
	c := payoff * payoff / math.Pi

	return a * (b2 + math.Sqrt(b2*b2+c)) / math.Sqrt(t), nil
}

// newtonImpliedVol Newton-Raphson 快速通道，vega 作斜率。
// 三种情形转入二分保底：残差不再改善、波动率越界、步数耗尽未收敛。
func newtonImpliedVol(pricer pricerFunc, optionType OptionType, fs, x, t, r, b, price float64, cfg SolverConfig) (float64, error) {
	cfg = cfg.orDefaults()

	seed, err := approxImpliedVol(optionType, fs, x, t, r, b, price)
	if err != nil {
		return 0, err
	}
	v := clampVol(seed)

	val, err := pricer(optionType, fs, x, t, r, b, v)
	if err != nil {
		return 0, err
	}
	minDiff := math.Abs(price - val.Value)

	for step := 0; step < cfg.MaxSteps; step++ {
		diff := math.Abs(price - val.Value)
		if diff < cfg.Precision || diff > minDiff {
			break
		}

		v -= (val.Value - price) / val.Vega
		if v < limits.MinV || v > limits.MaxV {
			break
		}

		val, err = pricer(optionType, fs, x, t, r, b, v)
		if err != nil {
			return 0, err
		}
		minDiff = math.Min(math.Abs(price-val.Value), minDiff)
	}

	if math.Abs(price-val.Value) < cfg.Precision {
		return v, nil
	}
	return bisectionImpliedVol(pricer, optionType, fs, x, t, r, b, price, cfg)
}

// bisectionImpliedVol 二分求解，区间中点用端点价格做割线插值加速。
// 美式定价的 vega 不可靠，美式隐含波动率直接走这里。
// 步数耗尽仍未收敛时返回最优估计与 CalculationError。
func bisectionImpliedVol(pricer pricerFunc, optionType OptionType, fs, x, t, r, b, price float64, cfg SolverConfig) (float64, error) {
	cfg = cfg.orDefaults()

	vMid, err := approxImpliedVol(optionType, fs, x, t, r, b, price)
	if err != nil {
		return 0, err
	}

	var vLow, vHigh float64
	if vMid <= limits.MinV || vMid >= limits.MaxV {
		// 初值出界时退回全域搜索
		vLow, vHigh = limits.MinV, limits.MaxV
		vMid = (vLow + vHigh) / 2
	} else {
		vLow = math.Max(limits.MinV, vMid*0.5)
		vHigh = math.Min(limits.MaxV, vMid*1.5)
	}

	val, err := pricer(optionType, fs, x, t, r, b, vMid)
	if err != nil {
		return 0, err
	}
	diff := math.Abs(price - val.Value)

	for step := 0; step < cfg.MaxSteps && diff > cfg.Precision; step++ {
		if val.Value < price {
			vLow = vMid
		} else {
			vHigh = vMid
		}

		lowVal, err := pricer(optionType, fs, x, t, r, b, vLow)
		if err != nil {
			return 0, err
		}
		highVal, err := pricer(optionType, fs, x, t, r, b, vHigh)
		if err != nil {
			return 0, err
		}

		// 区间两端价格重合时割线斜率为零，退回普通中点
		if denom := highVal.Value - lowVal.Value; denom != 0 {
			vMid = vLow + (price-lowVal.Value)*(vHigh-vLow)/denom
		} else {
			vMid = (vLow + vHigh) / 2
		}
		vMid = clampVol(vMid)

		val, err = pricer(optionType, fs, x, t, r, b, vMid)
		if err != nil {
			return 0, err
		}
		diff = math.Abs(price - val.Value)
	}

	if diff < cfg.Precision {
		return vMid, nil
	}
	return vMid, &CalculationError{BestGuess: vMid, Residual: diff, Precision: cfg.Precision}
}
