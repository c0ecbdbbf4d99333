// Package domain 价格预测服务的领域模型与数值管线：
// 历史序列 -> 收益率统计 -> 因子生成 -> 路径构建 -> 结果汇总。
package domain

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// PriceRecord 单个交易日的原始行情记录，按日期唯一。
type PriceRecord struct {
	Date     time.Time
	Open     decimal.Decimal
	High     decimal.Decimal
	Low      decimal.Decimal
	Close    decimal.Decimal
	AdjClose decimal.Decimal
	Volume   int64
}

// DerivedPoint 在原始记录上追加衍生列：
//
//	change[t]    = close[t] - close[t-1]
//	pctChange[t] = change[t] / close[t-1]
//	logReturn[t] = ln(1 + pctChange[t])
//
// 序列首条记录没有前一日，三个衍生字段为 NaN（缺失），绝不能是零，
// 否则会污染后续统计。
type DerivedPoint struct {
	PriceRecord
	Change    float64
	PctChange float64
	LogReturn float64
}

// PriceSeries 日期严格升序的行情序列。衍生列在构造时一次性计算，
// 之后整个序列只读，可被后续阶段并行消费。
type PriceSeries struct {
	symbol string
	points []DerivedPoint
}

// NewPriceSeries 校验并派生行情序列。
// 违反固定模式的输入（日期乱序、日期重复、收盘价不为正）返回模式错误，
// 不做静默修正。空序列合法，由统计阶段以观测不足拒绝。
func NewPriceSeries(symbol string, records []PriceRecord) (*PriceSeries, error) {
	points := make([]DerivedPoint, len(records))
	for t, rec := range records {
		if !rec.Close.IsPositive() {
			return nil, NewSchemaError(
				fmt.Sprintf("close must be positive, got %s on %s", rec.Close, rec.Date.Format(time.DateOnly)), nil).
				WithContext("symbol", symbol)
		}
		if t > 0 && !rec.Date.After(records[t-1].Date) {
			return nil, NewSchemaError(
				fmt.Sprintf("dates must be strictly ascending, got %s after %s",
					rec.Date.Format(time.DateOnly), records[t-1].Date.Format(time.DateOnly)), nil).
				WithContext("symbol", symbol)
		}

		p := DerivedPoint{PriceRecord: rec}
		if t == 0 {
			p.Change = math.NaN()
			p.PctChange = math.NaN()
			p.LogReturn = math.NaN()
		} else {
			prev := records[t-1].Close.InexactFloat64()
			cur := rec.Close.InexactFloat64()
			p.Change = cur - prev
			p.PctChange = p.Change / prev
			p.LogReturn = math.Log1p(p.PctChange)
		}
		points[t] = p
	}
	return &PriceSeries{symbol: symbol, points: points}, nil
}

// Symbol 序列所属的交易标的。
func (s *PriceSeries) Symbol() string { return s.symbol }

// Len 记录条数。
func (s *PriceSeries) Len() int { return len(s.points) }

// Points 全部带衍生列的记录。
func (s *PriceSeries) Points() []DerivedPoint { return s.points }

// LogReturns 对数收益率列，与记录一一对应，首位为 NaN。
func (s *PriceSeries) LogReturns() []float64 {
	rs := make([]float64, len(s.points))
	for i, p := range s.points {
		rs[i] = p.LogReturn
	}
	return rs
}

// LastClose 最后一个交易日的收盘价，作为模拟的起始价格。
func (s *PriceSeries) LastClose() float64 {
	if len(s.points) == 0 {
		return 0
	}
	return s.points[len(s.points)-1].Close.InexactFloat64()
}

// LastDate 最后一个交易日。序列为空时返回零值。
func (s *PriceSeries) LastDate() time.Time {
	if len(s.points) == 0 {
		return time.Time{}
	}
	return s.points[len(s.points)-1].Date
}
