package domain

import (
	"context"
	"math"
	"testing"
)

func TestBuildPathsRowZeroBroadcast(t *testing.T) {
	gen := NewFactorGenerator(scenarioStats(t), NewNormalDistribution(), 99)
	factors, err := gen.Generate(context.Background(), 5, 200)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	paths, err := BuildPaths(context.Background(), factors, 123.45)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, price := range paths.Row(0) {
		if price != 123.45 {
			t.Fatalf("row 0 column %d = %v, want the starting price in every column", i, price)
		}
	}
	if paths.Horizon() != 5 || paths.Iterations() != 200 {
		t.Errorf("paths are %dx%d, want 5x200", paths.Horizon(), paths.Iterations())
	}
}

func TestBuildPathsSingleFixedFactor(t *testing.T) {
	factors, err := NewFactorMatrixFromRows([][]float64{{1.05}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	paths, err := BuildPaths(context.Background(), factors, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if paths.Horizon() != 1 || paths.Iterations() != 1 {
		t.Fatalf("paths are %dx%d, want 1x1", paths.Horizon(), paths.Iterations())
	}
	if got := paths.Row(0)[0]; got != 100 {
		t.Errorf("path[0] = %v, want 100", got)
	}
	if got := paths.Row(1)[0]; math.Abs(got-105) > 1e-12 {
		t.Errorf("path[1] = %v, want 105", got)
	}
	if got := paths.Terminal()[0]; math.Abs(got-105) > 1e-12 {
		t.Errorf("terminal = %v, want 105", got)
	}
}

func TestBuildPathsRecurrence(t *testing.T) {
	rows := [][]float64{
		{1.10, 0.90},
		{1.05, 1.20},
		{0.80, 1.00},
	}
	factors, err := NewFactorMatrixFromRows(rows)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	paths, err := BuildPaths(context.Background(), factors, 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for col := 0; col < 2; col++ {
		price := 50.0
		for step := 1; step <= 3; step++ {
			price *= rows[step-1][col]
			if got := paths.Row(step)[col]; math.Abs(got-price) > 1e-12 {
				t.Errorf("path[%d][%d] = %v, want %v", step, col, got, price)
			}
		}
	}
}

// The worker fan-out must produce exactly what a sequential fold does.
func TestBuildPathsParallelMatchesSequential(t *testing.T) {
	gen := NewFactorGenerator(scenarioStats(t), NewNormalDistribution(), 7)
	factors, err := gen.Generate(context.Background(), 20, 500)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	paths, err := BuildPaths(context.Background(), factors, 104)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for col := 0; col < factors.Iterations(); col++ {
		price := 104.0
		for step := 1; step <= factors.Horizon(); step++ {
			price *= factors.At(step-1, col)
			if got := paths.Row(step)[col]; got != price {
				t.Fatalf("path[%d][%d] = %v, want %v", step, col, got, price)
			}
		}
	}
}

func TestBuildPathsRejectsMissingFactors(t *testing.T) {
	if _, err := BuildPaths(context.Background(), nil, 100); !IsEmptyResultError(err) {
		t.Errorf("expected empty result error for nil factors, got %v", err)
	}
}
