package domain

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// ReturnStats 对数收益率的描述统计。
// Drift 是几何布朗运动的确定性分量：mean - 0.5*variance。
type ReturnStats struct {
	Mean      float64 `json:"mean"`
	Variance  float64 `json:"variance"`
	Deviation float64 `json:"deviation"`
	Drift     float64 `json:"drift"`
	Samples   int     `json:"samples"`
}

// EstimateReturnStats 估计对数收益率列的均值、方差、标准差与漂移率。
// 缺失值（NaN，序列首日）不参与统计。方差取样本公式（n-1 分母），
// 标准差与之保持一致。有效观测不足两个时方差无定义，返回观测不足错误。
// 纯函数，无副作用。
func EstimateReturnStats(logReturns []float64) (ReturnStats, error) {
	clean := make([]float64, 0, len(logReturns))
	for _, r := range logReturns {
		if math.IsNaN(r) {
			continue
		}
		clean = append(clean, r)
	}
	if len(clean) < 2 {
		return ReturnStats{}, NewInsufficientDataError(len(clean))
	}

	mean := stat.Mean(clean, nil)
	variance := stat.Variance(clean, nil)
	return ReturnStats{
		Mean:      mean,
		Variance:  variance,
		Deviation: math.Sqrt(variance),
		Drift:     mean - 0.5*variance,
		Samples:   len(clean),
	}, nil
}
