package domain

import (
	"math"
	"sort"
)

// StepBand 单个时间步上的横截面分位数带。
type StepBand struct {
	Step int     `json:"step"`
	P5   float64 `json:"p5"`
	P50  float64 `json:"p50"`
	P95  float64 `json:"p95"`
}

// Summary 模拟结果汇总：终值分布的 5/50/95 分位对应最坏/平均/最好情形，
// 百分比变化以起始价格为基准。Bands 覆盖包括起始行在内的每个时间步。
type Summary struct {
	StartingPrice  float64    `json:"starting_price"`
	Horizon        int        `json:"horizon"`
	Iterations     int        `json:"iterations"`
	WorstCase      float64    `json:"worst_case"`
	WorstCasePct   float64    `json:"worst_case_pct"`
	AverageCase    float64    `json:"average_case"`
	AverageCasePct float64    `json:"average_case_pct"`
	BestCase       float64    `json:"best_case"`
	BestCasePct    float64    `json:"best_case_pct"`
	Bands          []StepBand `json:"bands"`
}

// Summarize 对价格路径做横截面汇总。
// 路径数或时间步数为零时返回零规模错误；百分比变化按
// (case - startingPrice) * 100 / startingPrice 计算。
func Summarize(paths *PricePaths, startingPrice float64) (*Summary, error) {
	if paths == nil || paths.Horizon() <= 0 || paths.Iterations() <= 0 {
		horizon, iterations := 0, 0
		if paths != nil {
			horizon, iterations = paths.Horizon(), paths.Iterations()
		}
		return nil, NewEmptyResultError(horizon, iterations)
	}

	bands := make([]StepBand, paths.Horizon()+1)
	buf := make([]float64, paths.Iterations())
	for t := 0; t <= paths.Horizon(); t++ {
		copy(buf, paths.Row(t))
		sort.Float64s(buf)
		bands[t] = StepBand{
			Step: t,
			P5:   percentileLinear(buf, 5),
			P50:  percentileLinear(buf, 50),
			P95:  percentileLinear(buf, 95),
		}
	}

	terminal := bands[paths.Horizon()]
	pct := func(v float64) float64 { return (v - startingPrice) * 100 / startingPrice }
	return &Summary{
		StartingPrice:  startingPrice,
		Horizon:        paths.Horizon(),
		Iterations:     paths.Iterations(),
		WorstCase:      terminal.P5,
		WorstCasePct:   pct(terminal.P5),
		AverageCase:    terminal.P50,
		AverageCasePct: pct(terminal.P50),
		BestCase:       terminal.P95,
		BestCasePct:    pct(terminal.P95),
		Bands:          bands,
	}, nil
}

// percentileLinear 在升序序列上取第 p 百分位，次序统计量之间线性插值：
// rank = p/100 * (n-1)，按 rank 的小数部分在相邻两个元素之间加权。
// 与 numpy 默认的 type-7 规则一致；n=1 时退化为该唯一值。
func percentileLinear(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}
	rank := p / 100 * float64(n-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi || sorted[lo] == sorted[hi] {
		return sorted[lo]
	}
	w := rank - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}
