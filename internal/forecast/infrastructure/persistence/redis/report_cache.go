// Package redis 提供了预测报告缓存的 Redis 实现。
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/wyfcoding/priceforecast/internal/forecast/domain"
)

// ReportRedisCache 以 TTL 键缓存最近一次运行的完整报告。
// 缓存过期后报告即不可取，符合结果不持久化的约束。
type ReportRedisCache struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewReportRedisCache 创建报告缓存实例。
func NewReportRedisCache(client redis.UniversalClient, ttl time.Duration) *ReportRedisCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &ReportRedisCache{
		client: client,
		prefix: "forecast:report:",
		ttl:    ttl,
	}
}

func (c *ReportRedisCache) SaveReport(ctx context.Context, runID string, report *domain.ForecastReport) error {
	if report == nil {
		return nil
	}
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal forecast report: %w", err)
	}
	return c.client.Set(ctx, c.prefix+runID, data, c.ttl).Err()
}

func (c *ReportRedisCache) GetReport(ctx context.Context, runID string) (*domain.ForecastReport, error) {
	data, err := c.client.Get(ctx, c.prefix+runID).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get forecast report from redis: %w", err)
	}

	var report domain.ForecastReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to unmarshal forecast report: %w", err)
	}
	return &report, nil
}
