package application

import (
	"context"

	"github.com/wyfcoding/pkg/xerrors"
	"github.com/wyfcoding/priceforecast/internal/forecast/domain"
)

// ForecastQueryService 处理所有预测相关的读取操作（Queries）。
type ForecastQueryService struct {
	runs  domain.ForecastRunRepository
	cache domain.ReportCache
}

// NewForecastQueryService 构造函数。
func NewForecastQueryService(runs domain.ForecastRunRepository, cache domain.ReportCache) *ForecastQueryService {
	return &ForecastQueryService{runs: runs, cache: cache}
}

// GetRun 按 run_id 查询运行记录。
func (s *ForecastQueryService) GetRun(ctx context.Context, runID string) (*ForecastRunDTO, error) {
	run, err := s.runs.Get(ctx, runID)
	if err != nil {
		return nil, err
	}
	if run == nil {
		return nil, xerrors.NotFound("forecast run not found").WithContext("run_id", runID)
	}
	return toForecastRunDTO(run), nil
}

// ListRuns 按创建时间倒序列出最近的运行记录。
func (s *ForecastQueryService) ListRuns(ctx context.Context, limit int) ([]*ForecastRunDTO, error) {
	runs, err := s.runs.List(ctx, limit)
	if err != nil {
		return nil, err
	}
	dtos := make([]*ForecastRunDTO, 0, len(runs))
	for _, run := range runs {
		dtos = append(dtos, toForecastRunDTO(run))
	}
	return dtos, nil
}

// GetReport 取缓存中的报告。缓存过期或运行未成功时返回未找到。
func (s *ForecastQueryService) GetReport(ctx context.Context, runID string) (*ForecastReportDTO, error) {
	if s.cache == nil {
		return nil, xerrors.NotFound("report cache is not enabled")
	}
	report, err := s.cache.GetReport(ctx, runID)
	if err != nil {
		return nil, err
	}
	if report == nil {
		return nil, xerrors.NotFound("forecast report expired or not produced").WithContext("run_id", runID)
	}
	return toForecastReportDTO(runID, report), nil
}
