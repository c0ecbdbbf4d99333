// Package clickhouse 提供了基于 ClickHouse 行情库的历史数据源。
package clickhouse

import (
	"context"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/shopspring/decimal"
	"github.com/wyfcoding/priceforecast/internal/forecast/domain"
)

// Source 从 daily_bars 表按标的读取日线历史。
type Source struct {
	conn driver.Conn
}

// NewSource 创建 ClickHouse 数据源。
func NewSource(conn driver.Conn) *Source {
	return &Source{conn: conn}
}

// FetchDailyBars 实现 domain.HistorySource。日期升序由查询保证。
func (s *Source) FetchDailyBars(ctx context.Context, symbol string) (*domain.PriceSeries, error) {
	query := `SELECT date, open, high, low, close, adj_close, volume
	          FROM daily_bars
	          WHERE symbol = ?
	          ORDER BY date ASC`

	rows, err := s.conn.Query(ctx, query, symbol)
	if err != nil {
		return nil, domain.NewSchemaError("failed to query daily bars", err)
	}
	defer rows.Close()

	var records []domain.PriceRecord
	for rows.Next() {
		var (
			date                                 time.Time
			open, high, low, closePx, adjClosePx float64
			volume                               int64
		)
		if err := rows.Scan(&date, &open, &high, &low, &closePx, &adjClosePx, &volume); err != nil {
			return nil, domain.NewSchemaError("failed to scan daily bar", err)
		}
		records = append(records, domain.PriceRecord{
			Date:     date,
			Open:     decimal.NewFromFloat(open),
			High:     decimal.NewFromFloat(high),
			Low:      decimal.NewFromFloat(low),
			Close:    decimal.NewFromFloat(closePx),
			AdjClose: decimal.NewFromFloat(adjClosePx),
			Volume:   volume,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewSchemaError("daily bar cursor failed", err)
	}
	return domain.NewPriceSeries(symbol, records)
}
