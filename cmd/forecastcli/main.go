// forecastcli 从本地 CSV 历史出发执行一次价格预测并打印报告。
// 不依赖数据库与消息队列，适合批处理与算例核对。
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/priceforecast/internal/forecast/domain"
	"github.com/wyfcoding/priceforecast/internal/forecast/infrastructure/marketdata/csvfile"
)

func main() {
	var (
		dataPath   = flag.String("data", "", "path to a daily bar CSV file (overrides -dir)")
		dataDir    = flag.String("dir", ".", "directory holding <symbol>.csv files")
		symbol     = flag.String("symbol", "", "instrument symbol")
		horizon    = flag.Int("horizon", 30, "simulation horizon in trading days")
		iterations = flag.Int("iterations", 1000, "number of independent price paths")
		dist       = flag.String("dist", "", "sampling distribution: normal or student-t")
		dof        = flag.Float64("dof", 0, "degrees of freedom for student-t (0 = default)")
		seed       = flag.Int64("seed", 0, "random seed (0 = time based)")
		delimiter  = flag.String("delimiter", ",", "CSV field delimiter")
		showBands  = flag.Bool("bands", false, "print per-step percentile bands")
	)
	flag.Parse()

	if *symbol == "" {
		fmt.Fprintln(os.Stderr, "error: -symbol is required")
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	comma := ','
	if *delimiter != "" {
		comma = rune((*delimiter)[0])
	}
	source := csvfile.NewSource(*dataDir, comma)

	var (
		series *domain.PriceSeries
		err    error
	)
	if *dataPath != "" {
		series, err = source.LoadFile(ctx, *symbol, *dataPath)
	} else {
		series, err = source.FetchDailyBars(ctx, *symbol)
	}
	if err != nil {
		fail(domain.WithStage(err, domain.StageLoader))
	}

	report, err := domain.RunForecast(ctx, domain.ForecastRequest{
		Symbol:           *symbol,
		Horizon:          *horizon,
		Iterations:       *iterations,
		Distribution:     *dist,
		DegreesOfFreedom: *dof,
		Seed:             *seed,
	}, series)
	if err != nil {
		fail(err)
	}

	printReport(report)
	if *showBands {
		printBands(report.Summary)
	}
}

// fail 打印失败阶段与原因后退出，不产出部分结果。
func fail(err error) {
	if stage := domain.FailedStage(err); stage != "" {
		fmt.Fprintf(os.Stderr, "forecast failed at stage %s: %v\n", stage, err)
	} else {
		fmt.Fprintf(os.Stderr, "forecast failed: %v\n", err)
	}
	os.Exit(1)
}

func fixed(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

func printReport(report *domain.ForecastReport) {
	s := report.Summary
	fmt.Printf("Symbol:          %s\n", report.Symbol)
	fmt.Printf("Horizon:         %d days\n", s.Horizon)
	fmt.Printf("Iterations:      %d\n", s.Iterations)
	fmt.Printf("Starting price:  %s\n", fixed(s.StartingPrice))
	fmt.Printf("Drift:           %.6f\n", report.Stats.Drift)
	fmt.Printf("Deviation:       %.6f\n", report.Stats.Deviation)
	fmt.Println()
	fmt.Printf("Worst case (P5):    %s (%s%%)\n", fixed(s.WorstCase), fixed(s.WorstCasePct))
	fmt.Printf("Average case (P50): %s (%s%%)\n", fixed(s.AverageCase), fixed(s.AverageCasePct))
	fmt.Printf("Best case (P95):    %s (%s%%)\n", fixed(s.BestCase), fixed(s.BestCasePct))
}

func printBands(s *domain.Summary) {
	fmt.Println()
	fmt.Printf("%-6s %12s %12s %12s\n", "step", "P5", "P50", "P95")
	for _, band := range s.Bands {
		fmt.Printf("%-6d %12s %12s %12s\n", band.Step, fixed(band.P5), fixed(band.P50), fixed(band.P95))
	}
}
