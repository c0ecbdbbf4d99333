package domain

import (
	"context"
	"errors"
	"time"

	"github.com/wyfcoding/pkg/xerrors"
)

// 管线阶段名，失败时随错误上下文一起上报。
const (
	StageValidate     = "validate"
	StageLoader       = "loader"
	StageEstimator    = "estimator"
	StageDistribution = "distribution"
	StageGenerator    = "generator"
	StageBuilder      = "builder"
	StageSummarizer   = "summarizer"
)

// ForecastRequest 一次预测运行的全部参数。
type ForecastRequest struct {
	Symbol           string
	Horizon          int
	Iterations       int
	Distribution     string
	DegreesOfFreedom float64
	Seed             int64
}

// ForecastReport 一次成功运行的完整产出。
type ForecastReport struct {
	Symbol      string      `json:"symbol"`
	GeneratedAt time.Time   `json:"generated_at"`
	Stats       ReturnStats `json:"stats"`
	Summary     *Summary    `json:"summary"`
}

// RunForecast 在给定历史序列上执行一次完整的蒙特卡洛预测：
// 统计估计 -> 因子生成 -> 路径构建 -> 结果汇总。
// 阶段之间检查取消；任一阶段失败都携带阶段名向上传播，不产出部分结果。
func RunForecast(ctx context.Context, req ForecastRequest, series *PriceSeries) (*ForecastReport, error) {
	if req.Horizon <= 0 || req.Iterations <= 0 {
		return nil, WithStage(NewEmptyResultError(req.Horizon, req.Iterations), StageValidate)
	}

	stats, err := EstimateReturnStats(series.LogReturns())
	if err != nil {
		return nil, WithStage(err, StageEstimator)
	}

	dist, err := ParseDistribution(req.Distribution, req.DegreesOfFreedom)
	if err != nil {
		return nil, WithStage(err, StageDistribution)
	}

	gen := NewFactorGenerator(stats, dist, req.Seed)
	factors, err := gen.Generate(ctx, req.Horizon, req.Iterations)
	if err != nil {
		return nil, WithStage(err, StageGenerator)
	}

	paths, err := BuildPaths(ctx, factors, series.LastClose())
	if err != nil {
		return nil, WithStage(err, StageBuilder)
	}

	summary, err := Summarize(paths, series.LastClose())
	if err != nil {
		return nil, WithStage(err, StageSummarizer)
	}

	return &ForecastReport{
		Symbol:      series.Symbol(),
		GeneratedAt: time.Now(),
		Stats:       stats,
		Summary:     summary,
	}, nil
}

// WithStage 在管线错误上标注失败阶段。
// 取消等非业务错误原样透传，不强行包装。
func WithStage(err error, stage string) error {
	if err == nil {
		return nil
	}
	var e *xerrors.Error
	if errors.As(err, &e) {
		return e.WithContext("stage", stage)
	}
	return err
}

// FailedStage 取出错误上标注的阶段名，未标注时返回空串。
func FailedStage(err error) string {
	var e *xerrors.Error
	if !errors.As(err, &e) {
		return ""
	}
	if stage, ok := e.Context["stage"].(string); ok {
		return stage
	}
	return ""
}
