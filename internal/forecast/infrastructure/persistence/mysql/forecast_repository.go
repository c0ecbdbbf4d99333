// Package mysql 提供了预测运行仓储接口的 MySQL GORM 实现。
package mysql

import (
	"context"
	"errors"

	"github.com/wyfcoding/priceforecast/internal/forecast/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// forecastRunRepository 运行记录仓储的 GORM 实现。
type forecastRunRepository struct {
	db *gorm.DB
}

// NewForecastRunRepository 创建运行记录仓储实例。
func NewForecastRunRepository(db *gorm.DB) domain.ForecastRunRepository {
	return &forecastRunRepository{db: db}
}

// Save 按 run_id 幂等写入，状态流转复用同一条记录。
func (r *forecastRunRepository) Save(ctx context.Context, run *domain.ForecastRun) error {
	if run == nil {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "run_id"}},
		UpdateAll: true,
	}).Create(run).Error
}

func (r *forecastRunRepository) Get(ctx context.Context, runID string) (*domain.ForecastRun, error) {
	var run domain.ForecastRun
	err := r.db.WithContext(ctx).Where("run_id = ?", runID).First(&run).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

func (r *forecastRunRepository) List(ctx context.Context, limit int) ([]*domain.ForecastRun, error) {
	if limit <= 0 {
		limit = 20
	}
	var runs []*domain.ForecastRun
	err := r.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&runs).Error
	if err != nil {
		return nil, err
	}
	return runs, nil
}
