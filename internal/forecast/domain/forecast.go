package domain

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// ForecastStatus 预测运行的生命周期状态。
type ForecastStatus string

const (
	ForecastStatusPending   ForecastStatus = "PENDING"
	ForecastStatusRunning   ForecastStatus = "RUNNING"
	ForecastStatusSucceeded ForecastStatus = "SUCCEEDED"
	ForecastStatusFailed    ForecastStatus = "FAILED"
)

// ForecastRun 一次预测请求的运行记录。
// 只记录请求参数与生命周期，模拟产出的汇总数字不落库。
type ForecastRun struct {
	gorm.Model
	// RunID 运行唯一标识
	RunID string `gorm:"column:run_id;type:varchar(32);uniqueIndex;not null" json:"run_id"`
	// Symbol 预测的交易标的
	Symbol string `gorm:"column:symbol;type:varchar(20);not null" json:"symbol"`
	// Source 历史数据来源（csv / clickhouse）
	Source string `gorm:"column:source;type:varchar(20);not null" json:"source"`
	// Horizon 模拟天数
	Horizon int `gorm:"column:horizon;not null" json:"horizon"`
	// Iterations 独立路径数
	Iterations int `gorm:"column:iterations;not null" json:"iterations"`
	// Distribution 分布名称
	Distribution string `gorm:"column:distribution;type:varchar(20)" json:"distribution"`
	// DegreesOfFreedom Student-t 自由度，其余分布为 0
	DegreesOfFreedom float64 `gorm:"column:degrees_of_freedom;type:decimal(10,4)" json:"degrees_of_freedom,omitempty"`
	// Seed 随机种子，0 表示按时间取种
	Seed int64 `gorm:"column:seed;type:bigint" json:"seed"`
	// Status 运行状态
	Status ForecastStatus `gorm:"column:status;type:varchar(20);default:'PENDING'" json:"status"`
	// FailureStage 失败的管线阶段
	FailureStage string `gorm:"column:failure_stage;type:varchar(32)" json:"failure_stage,omitempty"`
	// FailureReason 失败原因
	FailureReason string `gorm:"column:failure_reason;type:text" json:"failure_reason,omitempty"`
	// StartedAt 开始执行时间
	StartedAt time.Time `gorm:"column:started_at;type:datetime" json:"started_at"`
	// FinishedAt 结束时间
	FinishedAt time.Time `gorm:"column:finished_at;type:datetime" json:"finished_at"`
}

// NewForecastRun 由请求参数创建待执行的运行记录。
func NewForecastRun(req ForecastRequest, source string) *ForecastRun {
	return &ForecastRun{
		RunID:            fmt.Sprintf("FC-%d", time.Now().UnixNano()),
		Symbol:           req.Symbol,
		Source:           source,
		Horizon:          req.Horizon,
		Iterations:       req.Iterations,
		Distribution:     req.Distribution,
		DegreesOfFreedom: req.DegreesOfFreedom,
		Seed:             req.Seed,
		Status:           ForecastStatusPending,
	}
}

// Start 标记运行开始。
func (r *ForecastRun) Start() {
	r.Status = ForecastStatusRunning
	r.StartedAt = time.Now()
}

// Complete 标记运行成功结束。
func (r *ForecastRun) Complete() {
	r.Status = ForecastStatusSucceeded
	r.FinishedAt = time.Now()
}

// Fail 标记运行失败并记录失败阶段与原因。
func (r *ForecastRun) Fail(stage, reason string) {
	r.Status = ForecastStatusFailed
	r.FailureStage = stage
	r.FailureReason = reason
	r.FinishedAt = time.Now()
}

// Request 还原运行记录对应的请求参数。
func (r *ForecastRun) Request() ForecastRequest {
	return ForecastRequest{
		Symbol:           r.Symbol,
		Horizon:          r.Horizon,
		Iterations:       r.Iterations,
		Distribution:     r.Distribution,
		DegreesOfFreedom: r.DegreesOfFreedom,
		Seed:             r.Seed,
	}
}

// ForecastRunRepository 运行记录仓储接口。
type ForecastRunRepository interface {
	Save(ctx context.Context, run *ForecastRun) error
	Get(ctx context.Context, runID string) (*ForecastRun, error)
	List(ctx context.Context, limit int) ([]*ForecastRun, error)
}

// HistorySource 历史行情来源（文件、数据库等外部协作方）。
// 实现必须保证返回序列日期严格升序且衍生列已计算。
type HistorySource interface {
	FetchDailyBars(ctx context.Context, symbol string) (*PriceSeries, error)
}

// ReportCache 报告的短期缓存。过期即失效，不承诺持久保存。
type ReportCache interface {
	SaveReport(ctx context.Context, runID string, report *ForecastReport) error
	GetReport(ctx context.Context, runID string) (*ForecastReport, error)
}

// EventPublisher 领域事件发布接口。
type EventPublisher interface {
	PublishForecastCompleted(ctx context.Context, evt *ForecastCompletedEvent) error
}
