package domain

import "fmt"

// maxPrice 价格类输入的上界，沿用衍生品系统常见的 32 位近似上限
const maxPrice = 2147483248.0

// limitTable GBS 模型各输入的取值范围，越界输入直接拒绝，不进入计算
type limitTable struct {
	MinFS, MaxFS float64 // 标的/远期价格
	MinX, MaxX   float64 // 行权价
	MinT, MaxT   float64 // 年化剩余期限
	MinB, MaxB   float64 // 持有成本率
	MinR, MaxR   float64 // 无风险利率
	MinV, MaxV   float64 // 年化波动率
	MinTA        float64 // 均价期起点
}

// limits 进程级只读配置，启动时构造后不再修改
var limits = limitTable{
	MinFS: 0.01, MaxFS: maxPrice,
	MinX: 0.01, MaxX: maxPrice,
	// 期限下限约等于一个交易日的 1/8，上限 100 年
	MinT: 1.0 / 1000.0, MaxT: 100,
	MinB: -1, MaxB: 1,
	MinR: -1, MaxR: 1,
	// 波动率低于 0.5% 时美式近似的中间量会溢出，下限取 0.005
	MinV: 0.005, MaxV: 1,
	MinTA: 0,
}

func checkOptionType(optionType OptionType) error {
	if optionType != OptionTypeCall && optionType != OptionTypePut {
		return &InputError{
			Field:  "option_type",
			Detail: fmt.Sprintf("%q is not a valid option type, acceptable values are CALL or PUT", string(optionType)),
		}
	}
	return nil
}

// checkInputs 校验 GBS 模型的全部输入。
// 区间判断写成否定形式，NaN 对任何比较都为假，一并被拒绝。
func checkInputs(optionType OptionType, fs, x, t, r, b, v float64) error {
	if err := checkOptionType(optionType); err != nil {
		return err
	}
	if !(x >= limits.MinX && x <= limits.MaxX) {
		return &InputError{Field: "strike", Value: x, Min: limits.MinX, Max: limits.MaxX}
	}
	if !(fs >= limits.MinFS && fs <= limits.MaxFS) {
		return &InputError{Field: "underlying", Value: fs, Min: limits.MinFS, Max: limits.MaxFS}
	}
	if !(t >= limits.MinT && t <= limits.MaxT) {
		return &InputError{Field: "time", Value: t, Min: limits.MinT, Max: limits.MaxT}
	}
	if !(b >= limits.MinB && b <= limits.MaxB) {
		return &InputError{Field: "cost_of_carry", Value: b, Min: limits.MinB, Max: limits.MaxB}
	}
	if !(r >= limits.MinR && r <= limits.MaxR) {
		return &InputError{Field: "risk_free_rate", Value: r, Min: limits.MinR, Max: limits.MaxR}
	}
	if !(v >= limits.MinV && v <= limits.MaxV) {
		return &InputError{Field: "volatility", Value: v, Min: limits.MinV, Max: limits.MaxV}
	}
	return nil
}
