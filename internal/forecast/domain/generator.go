package domain

import (
	"context"
	"math"
	"math/rand"
	"time"
)

// FactorMatrix 日乘数因子矩阵：horizon 行（时间步）× iterations 列（独立路径）。
// 每个单元都是正的乘数因子（期望接近 1），生成后只读。
type FactorMatrix struct {
	horizon    int
	iterations int
	factors    [][]float64
}

// Horizon 时间步数。
func (m *FactorMatrix) Horizon() int { return m.horizon }

// Iterations 独立路径数。
func (m *FactorMatrix) Iterations() int { return m.iterations }

// At 第 t 个时间步、第 i 条路径的因子。
func (m *FactorMatrix) At(t, i int) float64 { return m.factors[t][i] }

// Row 第 t 个时间步的整行因子。
func (m *FactorMatrix) Row(t int) []float64 { return m.factors[t] }

// NewFactorMatrixFromRows 由现成的因子行构造矩阵，供固定因子的情景使用。
// 所有行必须等长且至少各有一个元素。
func NewFactorMatrixFromRows(rows [][]float64) (*FactorMatrix, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, NewEmptyResultError(len(rows), 0)
	}
	width := len(rows[0])
	for _, row := range rows[1:] {
		if len(row) != width {
			return nil, NewEmptyResultError(len(rows), len(row))
		}
	}
	return &FactorMatrix{horizon: len(rows), iterations: width, factors: rows}, nil
}

// FactorGenerator 通过逆 CDF 变换把均匀随机数转成日乘数因子。
type FactorGenerator struct {
	dist      Distribution
	drift     float64
	deviation float64
	rng       *rand.Rand
}

// NewFactorGenerator 创建因子生成器。
// seed 非零时输出逐位可复现；为零时取当前纳秒时间做种，两次运行不保证一致。
func NewFactorGenerator(stats ReturnStats, dist Distribution, seed int64) *FactorGenerator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &FactorGenerator{
		dist:      dist,
		drift:     stats.Drift,
		deviation: stats.Deviation,
		rng:       rand.New(rand.NewSource(seed)),
	}
}

// Generate 生成 horizon × iterations 的因子矩阵。
// 每个单元在给定 (drift, deviation, distribution) 下独立同分布：
//
//	factor = exp(drift + deviation * inverseCDF(u))，u ~ U(0,1)
//
// 单一随机源按行主序填充，保证固定种子下的确定性；行与行之间响应取消。
// 规模不为正时在任何抽样发生前拒绝。
func (g *FactorGenerator) Generate(ctx context.Context, horizon, iterations int) (*FactorMatrix, error) {
	if horizon <= 0 || iterations <= 0 {
		return nil, NewEmptyResultError(horizon, iterations)
	}

	rows := make([][]float64, horizon)
	for t := 0; t < horizon; t++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row := make([]float64, iterations)
		for i := 0; i < iterations; i++ {
			q, err := g.dist.InverseCDF(g.uniformOpen())
			if err != nil {
				return nil, err
			}
			row[i] = math.Exp(g.drift + g.deviation*q)
		}
		rows[t] = row
	}
	return &FactorMatrix{horizon: horizon, iterations: iterations, factors: rows}, nil
}

// uniformOpen 返回 (0,1) 开区间内的均匀随机数。
// Float64 的取值范围是 [0,1)：1 取不到，恰好抽到 0 时重抽。
func (g *FactorGenerator) uniformOpen() float64 {
	u := g.rng.Float64()
	for u == 0 {
		u = g.rng.Float64()
	}
	return u
}
