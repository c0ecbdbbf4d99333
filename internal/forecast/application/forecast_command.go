package application

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/wyfcoding/pkg/logging"
	"github.com/wyfcoding/pkg/metrics"
	"github.com/wyfcoding/pkg/xerrors"
	"github.com/wyfcoding/priceforecast/internal/forecast/domain"
)

// ForecastCommandService 处理所有预测相关的写入操作（Commands）。
type ForecastCommandService struct {
	runs          domain.ForecastRunRepository
	sources       map[string]domain.HistorySource
	defaultSource string
	cache         domain.ReportCache
	publisher     domain.EventPublisher
	logger        *slog.Logger

	runsTotal   *prometheus.CounterVec
	runDuration *prometheus.HistogramVec
}

// NewForecastCommandService 构造函数。publisher 与 cache 可为 nil，表示未启用。
func NewForecastCommandService(
	runs domain.ForecastRunRepository,
	sources map[string]domain.HistorySource,
	defaultSource string,
	cache domain.ReportCache,
	publisher domain.EventPublisher,
	m *metrics.Metrics,
	logger *slog.Logger,
) *ForecastCommandService {
	s := &ForecastCommandService{
		runs:          runs,
		sources:       sources,
		defaultSource: defaultSource,
		cache:         cache,
		publisher:     publisher,
		logger:        logger,
	}
	if m != nil {
		s.runsTotal = m.NewCounterVec(prometheus.CounterOpts{
			Name: "forecast_runs_total",
			Help: "Total number of forecast runs by terminal status",
		}, []string{"status"})
		s.runDuration = m.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "forecast_run_duration_seconds",
			Help:    "Forecast run latency in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"distribution"})
	}
	return s
}

// RunForecast 执行一次完整的预测管线并返回报告。
// 运行记录先落库再执行，失败时记录失败阶段与原因。
func (s *ForecastCommandService) RunForecast(ctx context.Context, cmd RunForecastCommand) (*ForecastReportDTO, error) {
	if cmd.Symbol == "" {
		return nil, xerrors.InvalidArg("symbol is required")
	}
	sourceName := cmd.Source
	if sourceName == "" {
		sourceName = s.defaultSource
	}
	source, ok := s.sources[sourceName]
	if !ok {
		return nil, xerrors.InvalidArg("unknown history source").WithContext("source", sourceName)
	}

	defer logging.LogDuration(ctx, "forecast run",
		"symbol", cmd.Symbol,
		"horizon", cmd.Horizon,
		"iterations", cmd.Iterations,
	)()

	req := domain.ForecastRequest{
		Symbol:           cmd.Symbol,
		Horizon:          cmd.Horizon,
		Iterations:       cmd.Iterations,
		Distribution:     cmd.Distribution,
		DegreesOfFreedom: cmd.DegreesOfFreedom,
		Seed:             cmd.Seed,
	}
	run := domain.NewForecastRun(req, sourceName)
	if err := s.runs.Save(ctx, run); err != nil {
		return nil, err
	}

	run.Start()
	if err := s.runs.Save(ctx, run); err != nil {
		return nil, err
	}

	started := time.Now()
	report, err := s.execute(ctx, run, source)
	if err != nil {
		stage := domain.FailedStage(err)
		run.Fail(stage, err.Error())
		if saveErr := s.runs.Save(ctx, run); saveErr != nil {
			s.logger.Error("failed to record run failure", "run_id", run.RunID, "error", saveErr)
		}
		s.countRun(string(domain.ForecastStatusFailed))
		s.logger.Error("forecast run failed",
			"run_id", run.RunID, "symbol", run.Symbol, "stage", stage, "error", err)
		return nil, err
	}

	run.Complete()
	if err := s.runs.Save(ctx, run); err != nil {
		return nil, err
	}
	s.countRun(string(domain.ForecastStatusSucceeded))
	s.observeDuration(run.Distribution, time.Since(started))

	if s.cache != nil {
		if err := s.cache.SaveReport(ctx, run.RunID, report); err != nil {
			s.logger.Warn("failed to cache forecast report", "run_id", run.RunID, "error", err)
		}
	}
	s.publishCompleted(ctx, run, report)

	s.logger.Info("forecast run completed",
		"run_id", run.RunID,
		"symbol", run.Symbol,
		"starting_price", report.Summary.StartingPrice,
		"average_case", report.Summary.AverageCase,
	)
	return toForecastReportDTO(run.RunID, report), nil
}

// execute 拉取历史并跑数值管线，错误带上失败阶段。
func (s *ForecastCommandService) execute(ctx context.Context, run *domain.ForecastRun, source domain.HistorySource) (*domain.ForecastReport, error) {
	series, err := source.FetchDailyBars(ctx, run.Symbol)
	if err != nil {
		return nil, domain.WithStage(err, domain.StageLoader)
	}
	return domain.RunForecast(ctx, run.Request(), series)
}

func (s *ForecastCommandService) publishCompleted(ctx context.Context, run *domain.ForecastRun, report *domain.ForecastReport) {
	if s.publisher == nil {
		return
	}
	evt := &domain.ForecastCompletedEvent{
		RunID:         run.RunID,
		Symbol:        run.Symbol,
		Horizon:       run.Horizon,
		Iterations:    run.Iterations,
		StartingPrice: report.Summary.StartingPrice,
		WorstCase:     report.Summary.WorstCase,
		AverageCase:   report.Summary.AverageCase,
		BestCase:      report.Summary.BestCase,
		Timestamp:     time.Now().UnixMilli(),
	}
	if err := s.publisher.PublishForecastCompleted(ctx, evt); err != nil {
		s.logger.Error("failed to publish forecast completed event", "run_id", run.RunID, "error", err)
	}
}

func (s *ForecastCommandService) countRun(status string) {
	if s.runsTotal != nil {
		s.runsTotal.WithLabelValues(status).Inc()
	}
}

func (s *ForecastCommandService) observeDuration(distribution string, d time.Duration) {
	if s.runDuration == nil {
		return
	}
	if distribution == "" {
		distribution = domain.DistributionNormal
	}
	s.runDuration.WithLabelValues(distribution).Observe(d.Seconds())
}
