package domain

import "fmt"

// InputError 定价输入超出模型允许范围。
// 携带违规字段、实际值与允许区间，接口层据此返回 400。
type InputError struct {
	Field  string
	Value  float64
	Min    float64
	Max    float64
	Detail string
}

func (e *InputError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("invalid input %s: %s", e.Field, e.Detail)
	}
	return fmt.Sprintf("invalid input %s (%g): acceptable range is %g to %g", e.Field, e.Value, e.Min, e.Max)
}

// CalculationError 迭代求解在步数耗尽后仍未达到精度要求。
// BestGuess 为当前最优估计，调用方可自行决定是否接受降级结果。
type CalculationError struct {
	BestGuess float64
	Residual  float64
	Precision float64
}

func (e *CalculationError) Error() string {
	return fmt.Sprintf("implied volatility did not converge: best guess %g, residual %g exceeds precision %g",
		e.BestGuess, e.Residual, e.Precision)
}
