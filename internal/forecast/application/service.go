package application

import (
	"context"
	"log/slog"

	"github.com/wyfcoding/pkg/metrics"
	"github.com/wyfcoding/priceforecast/internal/forecast/domain"
)

// ForecastService 预测服务门面，整合命令服务和查询服务。
type ForecastService struct {
	commandService *ForecastCommandService
	queryService   *ForecastQueryService
}

// NewForecastService 创建预测服务门面实例。
func NewForecastService(
	runs domain.ForecastRunRepository,
	sources map[string]domain.HistorySource,
	defaultSource string,
	cache domain.ReportCache,
	publisher domain.EventPublisher,
	m *metrics.Metrics,
	logger *slog.Logger,
) *ForecastService {
	return &ForecastService{
		commandService: NewForecastCommandService(runs, sources, defaultSource, cache, publisher, m, logger),
		queryService:   NewForecastQueryService(runs, cache),
	}
}

// RunForecast 执行一次预测运行。
func (s *ForecastService) RunForecast(ctx context.Context, cmd RunForecastCommand) (*ForecastReportDTO, error) {
	return s.commandService.RunForecast(ctx, cmd)
}

// GetRun 查询运行记录。
func (s *ForecastService) GetRun(ctx context.Context, runID string) (*ForecastRunDTO, error) {
	return s.queryService.GetRun(ctx, runID)
}

// ListRuns 列出最近的运行记录。
func (s *ForecastService) ListRuns(ctx context.Context, limit int) ([]*ForecastRunDTO, error) {
	return s.queryService.ListRuns(ctx, limit)
}

// GetReport 取运行对应的报告。
func (s *ForecastService) GetReport(ctx context.Context, runID string) (*ForecastReportDTO, error) {
	return s.queryService.GetReport(ctx, runID)
}
