// Package csvfile 提供了基于本地 CSV 文件的历史行情数据源。
// 文件格式兼容 Yahoo Finance 导出的日线（Date,Open,High,Low,Close,Adj Close,Volume），
// 列名大小写不敏感，Adj Close 缺失时回退为 Close。
package csvfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/priceforecast/internal/forecast/domain"
)

const dateLayout = "2006-01-02"

// Source 按标的从目录下的 <symbol>.csv 读取日线历史。
type Source struct {
	dir   string
	comma rune
}

// NewSource 创建文件数据源。comma 为 0 时使用逗号分隔。
func NewSource(dir string, comma rune) *Source {
	if comma == 0 {
		comma = ','
	}
	return &Source{dir: dir, comma: comma}
}

// FetchDailyBars 实现 domain.HistorySource。
func (s *Source) FetchDailyBars(ctx context.Context, symbol string) (*domain.PriceSeries, error) {
	path := filepath.Join(s.dir, symbol+".csv")
	return s.LoadFile(ctx, symbol, path)
}

// LoadFile 从指定路径读取并构建价格序列。路径不限于数据源目录。
func (s *Source) LoadFile(ctx context.Context, symbol, path string) (*domain.PriceSeries, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, domain.NewSchemaError(fmt.Sprintf("cannot open history file %s", path), err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.Comma = s.comma
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, domain.NewSchemaError(fmt.Sprintf("malformed csv in %s", path), err)
	}
	if len(rows) < 2 {
		return nil, domain.NewSchemaError(fmt.Sprintf("history file %s has a header but no data rows", path), nil)
	}

	cols, err := indexHeader(rows[0])
	if err != nil {
		return nil, err
	}

	records := make([]domain.PriceRecord, 0, len(rows)-1)
	for i, row := range rows[1:] {
		rec, err := parseRow(cols, row)
		if err != nil {
			return nil, domain.NewSchemaError(fmt.Sprintf("row %d of %s", i+2, path), err)
		}
		records = append(records, rec)
	}
	return domain.NewPriceSeries(symbol, records)
}

// columnIndex 表头各列的下标。adjClose 为 -1 表示该列缺失。
type columnIndex struct {
	date, open, high, low, close, adjClose, volume int
}

func indexHeader(header []string) (columnIndex, error) {
	byName := make(map[string]int, len(header))
	for idx, name := range header {
		byName[strings.ToLower(strings.TrimSpace(name))] = idx
	}

	cols := columnIndex{adjClose: -1}
	required := []struct {
		name string
		dst  *int
	}{
		{"date", &cols.date},
		{"open", &cols.open},
		{"high", &cols.high},
		{"low", &cols.low},
		{"close", &cols.close},
		{"volume", &cols.volume},
	}
	for _, col := range required {
		idx, ok := byName[col.name]
		if !ok {
			return cols, domain.NewSchemaError(fmt.Sprintf("missing required column %q", col.name), nil)
		}
		*col.dst = idx
	}
	if idx, ok := byName["adj close"]; ok {
		cols.adjClose = idx
	}
	return cols, nil
}

func parseRow(cols columnIndex, row []string) (domain.PriceRecord, error) {
	var rec domain.PriceRecord

	width := cols.volume
	if cols.adjClose > width {
		width = cols.adjClose
	}
	if len(row) <= width {
		return rec, fmt.Errorf("expected at least %d fields, got %d", width+1, len(row))
	}

	date, err := time.Parse(dateLayout, strings.TrimSpace(row[cols.date]))
	if err != nil {
		return rec, fmt.Errorf("date: %w", err)
	}
	open, err := decimal.NewFromString(strings.TrimSpace(row[cols.open]))
	if err != nil {
		return rec, fmt.Errorf("open: %w", err)
	}
	high, err := decimal.NewFromString(strings.TrimSpace(row[cols.high]))
	if err != nil {
		return rec, fmt.Errorf("high: %w", err)
	}
	low, err := decimal.NewFromString(strings.TrimSpace(row[cols.low]))
	if err != nil {
		return rec, fmt.Errorf("low: %w", err)
	}
	closePrice, err := decimal.NewFromString(strings.TrimSpace(row[cols.close]))
	if err != nil {
		return rec, fmt.Errorf("close: %w", err)
	}
	adjClose := closePrice
	if cols.adjClose >= 0 {
		adjClose, err = decimal.NewFromString(strings.TrimSpace(row[cols.adjClose]))
		if err != nil {
			return rec, fmt.Errorf("adj close: %w", err)
		}
	}
	volume, err := strconv.ParseInt(strings.TrimSpace(row[cols.volume]), 10, 64)
	if err != nil {
		return rec, fmt.Errorf("volume: %w", err)
	}

	rec = domain.PriceRecord{
		Date:     date,
		Open:     open,
		High:     high,
		Low:      low,
		Close:    closePrice,
		AdjClose: adjClose,
		Volume:   volume,
	}
	return rec, nil
}
