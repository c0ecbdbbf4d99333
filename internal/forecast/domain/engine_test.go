package domain

import (
	"context"
	"errors"
	"testing"
)

func scenarioSeries(t *testing.T) *PriceSeries {
	t.Helper()
	series, err := NewPriceSeries("AAPL", makeRecords(100, 102, 101, 103, 104))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return series
}

func TestRunForecastSeededIdempotence(t *testing.T) {
	req := ForecastRequest{
		Symbol:     "AAPL",
		Horizon:    30,
		Iterations: 500,
		Seed:       4242,
	}
	first, err := RunForecast(context.Background(), req, scenarioSeries(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := RunForecast(context.Background(), req, scenarioSeries(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first.Summary.WorstCase != second.Summary.WorstCase ||
		first.Summary.AverageCase != second.Summary.AverageCase ||
		first.Summary.BestCase != second.Summary.BestCase {
		t.Errorf("same seed must reproduce the run: first=%+v second=%+v",
			first.Summary, second.Summary)
	}
	if first.Summary.StartingPrice != 104 {
		t.Errorf("starting price = %v, want the last close 104", first.Summary.StartingPrice)
	}
	if first.Summary.Horizon != 30 || first.Summary.Iterations != 500 {
		t.Errorf("summary dimensions = %dx%d, want 30x500",
			first.Summary.Horizon, first.Summary.Iterations)
	}
}

func TestRunForecastRejectsZeroIterations(t *testing.T) {
	req := ForecastRequest{Symbol: "AAPL", Horizon: 10, Iterations: 0, Seed: 1}
	_, err := RunForecast(context.Background(), req, scenarioSeries(t))
	if !IsEmptyResultError(err) {
		t.Fatalf("expected empty result error, got %v", err)
	}
	if stage := FailedStage(err); stage != StageValidate {
		t.Errorf("failed stage = %q, want %q", stage, StageValidate)
	}
}

func TestRunForecastRejectsZeroHorizon(t *testing.T) {
	req := ForecastRequest{Symbol: "AAPL", Horizon: 0, Iterations: 10, Seed: 1}
	_, err := RunForecast(context.Background(), req, scenarioSeries(t))
	if !IsEmptyResultError(err) {
		t.Fatalf("expected empty result error, got %v", err)
	}
	if stage := FailedStage(err); stage != StageValidate {
		t.Errorf("failed stage = %q, want %q", stage, StageValidate)
	}
}

func TestRunForecastInsufficientHistory(t *testing.T) {
	series, err := NewPriceSeries("AAPL", makeRecords(100))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	req := ForecastRequest{Symbol: "AAPL", Horizon: 5, Iterations: 10, Seed: 1}
	_, err = RunForecast(context.Background(), req, series)
	if !IsInsufficientDataError(err) {
		t.Fatalf("expected insufficient data error, got %v", err)
	}
	if stage := FailedStage(err); stage != StageEstimator {
		t.Errorf("failed stage = %q, want %q", stage, StageEstimator)
	}
}

func TestRunForecastUnknownDistribution(t *testing.T) {
	req := ForecastRequest{
		Symbol:       "AAPL",
		Horizon:      5,
		Iterations:   10,
		Distribution: "cauchy",
		Seed:         1,
	}
	_, err := RunForecast(context.Background(), req, scenarioSeries(t))
	if err == nil {
		t.Fatal("expected an error for an unknown distribution")
	}
	if stage := FailedStage(err); stage != StageDistribution {
		t.Errorf("failed stage = %q, want %q", stage, StageDistribution)
	}
}

func TestRunForecastStudentT(t *testing.T) {
	req := ForecastRequest{
		Symbol:           "AAPL",
		Horizon:          10,
		Iterations:       200,
		Distribution:     DistributionStudentT,
		DegreesOfFreedom: 4,
		Seed:             77,
	}
	report, err := RunForecast(context.Background(), req, scenarioSeries(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Summary.WorstCase <= 0 {
		t.Errorf("worst case = %v, want a positive price", report.Summary.WorstCase)
	}
}

func TestRunForecastCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := ForecastRequest{Symbol: "AAPL", Horizon: 50, Iterations: 1000, Seed: 1}
	_, err := RunForecast(ctx, req, scenarioSeries(t))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestWithStageLeavesPlainErrorsAlone(t *testing.T) {
	plain := errors.New("boom")
	if got := WithStage(plain, StageLoader); got != plain {
		t.Errorf("plain errors must pass through unchanged, got %v", got)
	}
	if stage := FailedStage(plain); stage != "" {
		t.Errorf("plain errors carry no stage, got %q", stage)
	}
	if stage := FailedStage(nil); stage != "" {
		t.Errorf("nil error carries no stage, got %q", stage)
	}
}

func TestWithStageAnnotatesTaxonomyErrors(t *testing.T) {
	err := WithStage(NewInsufficientDataError(1), StageEstimator)
	if !IsInsufficientDataError(err) {
		t.Fatalf("stage annotation must keep the error type, got %v", err)
	}
	if stage := FailedStage(err); stage != StageEstimator {
		t.Errorf("failed stage = %q, want %q", stage, StageEstimator)
	}
}
