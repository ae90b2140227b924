package domain

import "math"

// americanOption 美式期权估值入口。
// 看跌通过 put-call 对偶变换成看涨后求解：
// P(fs, x, t, r, b, v) = C(x, fs, t, r-b, -b, v)。
// 变换先于输入校验，校验作用在交换后的参数上。
func americanOption(optionType OptionType, fs, x, t, r, b, v float64) (*Valuation, error) {
	if err := checkOptionType(optionType); err != nil {
		return nil, err
	}
	if optionType == OptionTypePut {
		fs, x = x, fs
		r, b = r-b, -b
	}
	return bjerksundStensland2002(fs, x, t, r, b, v)
}

// bjerksundStensland2002 两段行权边界的美式看涨近似。
// b >= r 时提前行权无利可图，直接返回欧式结果（含希腊字母）。
// 其余情形价值取近似式与欧式价值的较大者，希腊字母沿用欧式值。
func bjerksundStensland2002(fs, x, t, r, b, v float64) (*Valuation, error) {
	euro, err := gbs(OptionTypeCall, fs, x, t, r, b, v)
	if err != nil {
		return nil, err
	}
	if b >= r {
		return euro, nil
	}

	v2 := v * v
	t1 := 0.5 * (math.Sqrt(5) - 1) * t
	t2 := t

	// 浮点噪声可能让根号内出现极小负数，取绝对值兜底
	beta := (0.5 - b/v2) + math.Sqrt(math.Abs((b/v2-0.5)*(b/v2-0.5)+2*r/v2))
	bInfinity := beta / (beta - 1) * x
	bZero := math.Max(x, r/(r-b)*x)

	h1 := -(b*t1 + 2*v*math.Sqrt(t1)) * (x * x / ((bInfinity - bZero) * bZero))
	h2 := -(b*t2 + 2*v*math.Sqrt(t2)) * (x * x / ((bInfinity - bZero) * bZero))

	i1 := bZero + (bInfinity-bZero)*(1-math.Exp(h1))
	i2 := bZero + (bInfinity-bZero)*(1-math.Exp(h2))

	alpha1 := (i1 - x) * math.Pow(i1, -beta)
	alpha2 := (i2 - x) * math.Pow(i2, -beta)

	var value float64
	if fs >= i2 {
		// 已越过远端行权边界，立即行权
		value = fs - x
	} else {
		value = alpha2*math.Pow(fs, beta) -
			alpha2*phi(fs, t1, beta, i2, i2, r, b, v) +
			phi(fs, t1, 1, i2, i2, r, b, v) -
			phi(fs, t1, 1, i1, i2, r, b, v) -
			x*phi(fs, t1, 0, i2, i2, r, b, v) +
			x*phi(fs, t1, 0, i1, i2, r, b, v) +
			alpha1*phi(fs, t1, beta, i1, i2, r, b, v) -
			alpha1*psi(fs, t2, beta, i1, i2, i1, t1, r, b, v) +
			psi(fs, t2, 1, i1, i2, i1, t1, r, b, v) -
			psi(fs, t2, 1, x, i2, i1, t1, r, b, v) -
			x*psi(fs, t2, 0, i1, i2, i1, t1, r, b, v) +
			x*psi(fs, t2, 0, x, i2, i1, t1, r, b, v)
	}

	out := *euro
	out.Value = math.Max(value, euro.Value)
	return &out, nil
}

// bjerksundStensland1993 单段行权边界的早期版本。
// 数值上略低于 2002 版，保留用于交叉验证。
func bjerksundStensland1993(fs, x, t, r, b, v float64) (*Valuation, error) {
	euro, err := gbs(OptionTypeCall, fs, x, t, r, b, v)
	if err != nil {
		return nil, err
	}
	if b >= r {
		return euro, nil
	}

	v2 := v * v
	beta := (0.5 - b/v2) + math.Sqrt(math.Abs((b/v2-0.5)*(b/v2-0.5)+2*r/v2))
	bInfinity := beta / (beta - 1) * x
	bZero := math.Max(x, r/(r-b)*x)
	ht := -(b*t + 2*v*math.Sqrt(t)) * (bZero / (bInfinity - bZero))
	i := bZero + (bInfinity-bZero)*(1-math.Exp(ht))
	alpha := (i - x) * math.Pow(i, -beta)

	var value float64
	if fs >= i {
		value = fs - x
	} else {
		value = alpha*math.Pow(fs, beta) -
			alpha*phi(fs, t, beta, i, i, r, b, v) +
			phi(fs, t, 1, i, i, r, b, v) -
			phi(fs, t, 1, x, i, r, b, v) -
			x*phi(fs, t, 0, i, i, r, b, v) +
			x*phi(fs, t, 0, x, i, r, b, v)
	}

	out := *euro
	out.Value = math.Max(value, euro.Value)
	return &out, nil
}

// phi 首段行权边界下的单变量辅助积分
func phi(fs, t, gamma, h, i, r, b, v float64) float64 {
	vSqrtT := v * math.Sqrt(t)
	d1 := -(math.Log(fs/h) + (b+(gamma-0.5)*v*v)*t) / vSqrtT
	d2 := d1 - 2*math.Log(i/fs)/vSqrtT

	lambda := -r + gamma*b + 0.5*gamma*(gamma-1)*v*v
	kappa := 2*b/(v*v) + 2*gamma - 1

	return math.Exp(lambda*t) * math.Pow(fs, gamma) *
		(normCDF(d1) - math.Pow(i/fs, kappa)*normCDF(d2))
}

// psi 跨两段边界的双变量辅助积分，时间相关性 sqrt(t1/t2)
func psi(fs, t2, gamma, h, i2, i1, t1, r, b, v float64) float64 {
	vSqrtT1 := v * math.Sqrt(t1)
	vSqrtT2 := v * math.Sqrt(t2)

	bGammaT1 := (b + (gamma-0.5)*v*v) * t1
	bGammaT2 := (b + (gamma-0.5)*v*v) * t2

	d1 := (math.Log(fs/i1) + bGammaT1) / vSqrtT1
	d2 := (math.Log(i2*i2/(fs*i1)) + bGammaT1) / vSqrtT1
	d3 := (math.Log(fs/i1) - bGammaT1) / vSqrtT1
	d4 := (math.Log(i2*i2/(fs*i1)) - bGammaT1) / vSqrtT1

	e1 := (math.Log(fs/h) + bGammaT2) / vSqrtT2
	e2 := (math.Log(i2*i2/(fs*h)) + bGammaT2) / vSqrtT2
	e3 := (math.Log(i1*i1/(fs*h)) + bGammaT2) / vSqrtT2
	e4 := (math.Log(fs*i1*i1/(h*i2*i2)) + bGammaT2) / vSqrtT2

	tau := math.Sqrt(t1 / t2)
	lambda := -r + gamma*b + 0.5*gamma*(gamma-1)*v*v
	kappa := 2*b/(v*v) + 2*gamma - 1

	return math.Exp(lambda*t2) * math.Pow(fs, gamma) *
		(cbnd(-d1, -e1, tau) -
			math.Pow(i2/fs, kappa)*cbnd(-d2, -e2, tau) -
			math.Pow(i1/fs, kappa)*cbnd(-d3, -e3, -tau) +
			math.Pow(i1/i2, kappa)*cbnd(-d4, -e4, -tau))
}
