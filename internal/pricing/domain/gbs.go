package domain

import "math"

// gbs 广义 Black-Scholes 模型，持有成本率形式。
// 各具名模型通过选择 b 退化得到：b=r 为标准 Black-Scholes，
// b=r-q 为 Merton，b=0 为 Black 76，b=r-rf 为 Garman-Kohlhagen。
//
//	fs 标的或远期价格
//	x  行权价
//	t  年化剩余期限
//	r  无风险利率
//	b  持有成本率
//	v  年化波动率
func gbs(optionType OptionType, fs, x, t, r, b, v float64) (*Valuation, error) {
	if err := checkInputs(optionType, fs, x, t, r, b, v); err != nil {
		return nil, err
	}

	sqrtT := math.Sqrt(t)
	d1 := (math.Log(fs/x) + (b+v*v/2)*t) / (v * sqrtT)
	d2 := d1 - v*sqrtT

	// e^((b-r)t) 把远期测度下的期望折回现值，b=r 时退化为 1
	ebrt := math.Exp((b - r) * t)
	ert := math.Exp(-r * t)

	out := &Valuation{}
	if optionType == OptionTypeCall {
		out.Value = fs*ebrt*normCDF(d1) - x*ert*normCDF(d2)
		out.Delta = ebrt * normCDF(d1)
		out.Theta = -(fs*v*ebrt*normPDF(d1))/(2*sqrtT) - (b-r)*fs*ebrt*normCDF(d1) - r*x*ert*normCDF(d2)
		out.Rho = x * t * ert * normCDF(d2)
	} else {
		out.Value = x*ert*normCDF(-d2) - fs*ebrt*normCDF(-d1)
		out.Delta = -ebrt * normCDF(-d1)
		out.Theta = -(fs*v*ebrt*normPDF(d1))/(2*sqrtT) + (b-r)*fs*ebrt*normCDF(-d1) + r*x*ert*normCDF(-d2)
		out.Rho = -x * t * ert * normCDF(-d2)
	}
	// Gamma 与 Vega 对看涨看跌相同
	out.Gamma = ebrt * normPDF(d1) / (fs * v * sqrtT)
	out.Vega = ebrt * fs * sqrtT * normPDF(d1)
	return out, nil
}
