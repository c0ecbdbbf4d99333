package application

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/priceforecast/internal/forecast/domain"
)

// RunForecastCommand 发起一次预测运行的请求参数。
type RunForecastCommand struct {
	Symbol           string  `json:"symbol" binding:"required"`
	Source           string  `json:"source"`
	Horizon          int     `json:"horizon" binding:"required"`
	Iterations       int     `json:"iterations" binding:"required"`
	Distribution     string  `json:"distribution"`
	DegreesOfFreedom float64 `json:"degrees_of_freedom"`
	Seed             int64   `json:"seed"`
}

// ForecastRunDTO 对外暴露的运行记录。
type ForecastRunDTO struct {
	RunID            string    `json:"run_id"`
	Symbol           string    `json:"symbol"`
	Source           string    `json:"source"`
	Horizon          int       `json:"horizon"`
	Iterations       int       `json:"iterations"`
	Distribution     string    `json:"distribution"`
	DegreesOfFreedom float64   `json:"degrees_of_freedom,omitempty"`
	Seed             int64     `json:"seed"`
	Status           string    `json:"status"`
	FailureStage     string    `json:"failure_stage,omitempty"`
	FailureReason    string    `json:"failure_reason,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	StartedAt        time.Time `json:"started_at,omitempty"`
	FinishedAt       time.Time `json:"finished_at,omitempty"`
}

// CaseDTO 单个分位情景，价格与涨跌幅均为两位小数的字符串。
type CaseDTO struct {
	Price     string `json:"price"`
	ChangePct string `json:"change_pct"`
}

// ForecastReportDTO 对外暴露的预测报告。
type ForecastReportDTO struct {
	RunID         string            `json:"run_id"`
	Symbol        string            `json:"symbol"`
	GeneratedAt   time.Time         `json:"generated_at"`
	Horizon       int               `json:"horizon"`
	Iterations    int               `json:"iterations"`
	StartingPrice string            `json:"starting_price"`
	Drift         float64           `json:"drift"`
	Deviation     float64           `json:"deviation"`
	Samples       int               `json:"samples"`
	WorstCase     CaseDTO           `json:"worst_case"`
	AverageCase   CaseDTO           `json:"average_case"`
	BestCase      CaseDTO           `json:"best_case"`
	Bands         []domain.StepBand `json:"bands,omitempty"`
}

func toForecastRunDTO(run *domain.ForecastRun) *ForecastRunDTO {
	if run == nil {
		return nil
	}
	return &ForecastRunDTO{
		RunID:            run.RunID,
		Symbol:           run.Symbol,
		Source:           run.Source,
		Horizon:          run.Horizon,
		Iterations:       run.Iterations,
		Distribution:     run.Distribution,
		DegreesOfFreedom: run.DegreesOfFreedom,
		Seed:             run.Seed,
		Status:           string(run.Status),
		FailureStage:     run.FailureStage,
		FailureReason:    run.FailureReason,
		CreatedAt:        run.CreatedAt,
		StartedAt:        run.StartedAt,
		FinishedAt:       run.FinishedAt,
	}
}

// fixed2 以两位小数渲染价格与百分比。
func fixed2(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

func toForecastReportDTO(runID string, report *domain.ForecastReport) *ForecastReportDTO {
	if report == nil || report.Summary == nil {
		return nil
	}
	s := report.Summary
	return &ForecastReportDTO{
		RunID:         runID,
		Symbol:        report.Symbol,
		GeneratedAt:   report.GeneratedAt,
		Horizon:       s.Horizon,
		Iterations:    s.Iterations,
		StartingPrice: fixed2(s.StartingPrice),
		Drift:         report.Stats.Drift,
		Deviation:     report.Stats.Deviation,
		Samples:       report.Stats.Samples,
		WorstCase:     CaseDTO{Price: fixed2(s.WorstCase), ChangePct: fixed2(s.WorstCasePct)},
		AverageCase:   CaseDTO{Price: fixed2(s.AverageCase), ChangePct: fixed2(s.AverageCasePct)},
		BestCase:      CaseDTO{Price: fixed2(s.BestCase), ChangePct: fixed2(s.BestCasePct)},
		Bands:         s.Bands,
	}
}
