package domain

import (
	"context"
	"runtime"
	"sync"
)

// PricePaths 模拟价格路径矩阵，共 horizon+1 行：
// 第 0 行是起始价格在所有路径上的广播，
// 第 t 行（1<=t<=horizon）= 第 t-1 行与因子矩阵第 t-1 行逐元素相乘。
// 构建完成后只读。
type PricePaths struct {
	startingPrice float64
	iterations    int
	rows          [][]float64
}

// StartingPrice 起始价格（最后一个已知收盘价）。
func (p *PricePaths) StartingPrice() float64 { return p.startingPrice }

// Horizon 模拟的时间步数（不含起始行）。
func (p *PricePaths) Horizon() int { return len(p.rows) - 1 }

// Iterations 独立路径数。
func (p *PricePaths) Iterations() int { return p.iterations }

// Row 第 t 行价格，t=0 为起始行。
func (p *PricePaths) Row(t int) []float64 { return p.rows[t] }

// Terminal 终值行，即最后一个时间步上全部路径的价格。
func (p *PricePaths) Terminal() []float64 { return p.rows[len(p.rows)-1] }

// BuildPaths 由因子矩阵和起始价格构建价格路径。
//
// 时间轴折叠严格有序：同一条路径上第 t 步必须在第 t-1 步之后计算，
// 绝不能沿时间轴并行。路径列之间相互独立，按列分派给信号量限制的
// worker 并行执行；路径数较小时退化为单 worker。每个 worker 只写
// 自己那一列的单元，无共享写。
//
// 多步复利下价格趋于 0 或溢出为 +Inf 属于合法模拟结果，不做钳制。
func BuildPaths(ctx context.Context, factors *FactorMatrix, startingPrice float64) (*PricePaths, error) {
	if factors == nil || factors.Horizon() <= 0 || factors.Iterations() <= 0 {
		horizon, iterations := 0, 0
		if factors != nil {
			horizon, iterations = factors.Horizon(), factors.Iterations()
		}
		return nil, NewEmptyResultError(horizon, iterations)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	horizon := factors.Horizon()
	iterations := factors.Iterations()

	rows := make([][]float64, horizon+1)
	for t := range rows {
		rows[t] = make([]float64, iterations)
	}
	for i := 0; i < iterations; i++ {
		rows[0][i] = startingPrice
	}

	numWorkers := runtime.GOMAXPROCS(0)
	if iterations < 100 {
		numWorkers = 1
	}
	sem := make(chan struct{}, numWorkers)
	var wg sync.WaitGroup

	for i := 0; i < iterations; i++ {
		wg.Add(1)
		sem <- struct{}{}
		go func(col int) {
			defer wg.Done()
			defer func() { <-sem }()
			price := startingPrice
			for t := 1; t <= horizon; t++ {
				price *= factors.At(t-1, col)
				rows[t][col] = price
			}
		}(i)
	}
	wg.Wait()

	return &PricePaths{startingPrice: startingPrice, iterations: iterations, rows: rows}, nil
}
