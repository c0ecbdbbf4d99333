package application

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/priceforecast/internal/forecast/domain"
)

type memRunRepository struct {
	runs map[string]*domain.ForecastRun
}

func newMemRunRepository() *memRunRepository {
	return &memRunRepository{runs: make(map[string]*domain.ForecastRun)}
}

func (r *memRunRepository) Save(ctx context.Context, run *domain.ForecastRun) error {
	copied := *run
	r.runs[run.RunID] = &copied
	return nil
}

func (r *memRunRepository) Get(ctx context.Context, runID string) (*domain.ForecastRun, error) {
	return r.runs[runID], nil
}

func (r *memRunRepository) List(ctx context.Context, limit int) ([]*domain.ForecastRun, error) {
	out := make([]*domain.ForecastRun, 0, len(r.runs))
	for _, run := range r.runs {
		out = append(out, run)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

type stubSource struct {
	series *domain.PriceSeries
	err    error
}

func (s *stubSource) FetchDailyBars(ctx context.Context, symbol string) (*domain.PriceSeries, error) {
	return s.series, s.err
}

type memReportCache struct {
	reports map[string]*domain.ForecastReport
}

func newMemReportCache() *memReportCache {
	return &memReportCache{reports: make(map[string]*domain.ForecastReport)}
}

func (c *memReportCache) SaveReport(ctx context.Context, runID string, report *domain.ForecastReport) error {
	c.reports[runID] = report
	return nil
}

func (c *memReportCache) GetReport(ctx context.Context, runID string) (*domain.ForecastReport, error) {
	return c.reports[runID], nil
}

type memPublisher struct {
	events []*domain.ForecastCompletedEvent
	err    error
}

func (p *memPublisher) PublishForecastCompleted(ctx context.Context, evt *domain.ForecastCompletedEvent) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, evt)
	return nil
}

func historySeries(t *testing.T, closes ...float64) *domain.PriceSeries {
	t.Helper()
	base := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	records := make([]domain.PriceRecord, 0, len(closes))
	for i, c := range closes {
		price := decimal.NewFromFloat(c)
		records = append(records, domain.PriceRecord{
			Date:     base.AddDate(0, 0, i),
			Open:     price,
			High:     price,
			Low:      price,
			Close:    price,
			AdjClose: price,
			Volume:   1000,
		})
	}
	series, err := domain.NewPriceSeries("AAPL", records)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return series
}

func newTestService(t *testing.T, source domain.HistorySource) (*ForecastService, *memRunRepository, *memReportCache, *memPublisher) {
	t.Helper()
	repo := newMemRunRepository()
	cache := newMemReportCache()
	publisher := &memPublisher{}
	svc := NewForecastService(
		repo,
		map[string]domain.HistorySource{"csv": source},
		"csv",
		cache,
		publisher,
		nil,
		slog.Default(),
	)
	return svc, repo, cache, publisher
}

func assertTwoDecimals(t *testing.T, field, value string) {
	t.Helper()
	parts := strings.Split(value, ".")
	if len(parts) != 2 || len(parts[1]) != 2 {
		t.Errorf("%s = %q, want two decimal places", field, value)
	}
}

func TestRunForecastHappyPath(t *testing.T) {
	source := &stubSource{series: historySeries(t, 100, 102, 101, 103, 104)}
	svc, repo, cache, publisher := newTestService(t, source)

	report, err := svc.RunForecast(context.Background(), RunForecastCommand{
		Symbol:     "AAPL",
		Horizon:    20,
		Iterations: 200,
		Seed:       7,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.Symbol != "AAPL" || report.Horizon != 20 || report.Iterations != 200 {
		t.Errorf("report header = %s %dx%d, want AAPL 20x200",
			report.Symbol, report.Horizon, report.Iterations)
	}
	if report.StartingPrice != "104.00" {
		t.Errorf("starting price = %q, want 104.00", report.StartingPrice)
	}
	assertTwoDecimals(t, "worst case price", report.WorstCase.Price)
	assertTwoDecimals(t, "worst case pct", report.WorstCase.ChangePct)
	assertTwoDecimals(t, "average case price", report.AverageCase.Price)
	assertTwoDecimals(t, "best case price", report.BestCase.Price)

	run, err := repo.Get(context.Background(), report.RunID)
	if err != nil || run == nil {
		t.Fatalf("run record not persisted: %v", err)
	}
	if run.Status != domain.ForecastStatusSucceeded {
		t.Errorf("run status = %s, want SUCCEEDED", run.Status)
	}
	if run.Source != "csv" {
		t.Errorf("run source = %q, want csv", run.Source)
	}
	if cache.reports[report.RunID] == nil {
		t.Error("report must be cached after a successful run")
	}
	if len(publisher.events) != 1 {
		t.Fatalf("expected 1 completed event, got %d", len(publisher.events))
	}
	if publisher.events[0].Symbol != "AAPL" || publisher.events[0].RunID != report.RunID {
		t.Errorf("unexpected event payload: %+v", publisher.events[0])
	}
}

func TestRunForecastSeededReproducibility(t *testing.T) {
	source := &stubSource{series: historySeries(t, 100, 102, 101, 103, 104)}
	svc, _, _, _ := newTestService(t, source)

	cmd := RunForecastCommand{Symbol: "AAPL", Horizon: 10, Iterations: 300, Seed: 99}
	first, err := svc.RunForecast(context.Background(), cmd)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := svc.RunForecast(context.Background(), cmd)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.WorstCase != second.WorstCase ||
		first.AverageCase != second.AverageCase ||
		first.BestCase != second.BestCase {
		t.Errorf("seeded runs must agree: %+v vs %+v", first, second)
	}
}

func TestRunForecastLoaderFailure(t *testing.T) {
	source := &stubSource{err: domain.NewSchemaError("missing column", nil)}
	svc, repo, _, _ := newTestService(t, source)

	_, err := svc.RunForecast(context.Background(), RunForecastCommand{
		Symbol:     "AAPL",
		Horizon:    5,
		Iterations: 10,
		Seed:       1,
	})
	if !domain.IsSchemaError(err) {
		t.Fatalf("expected schema error, got %v", err)
	}

	var failed *domain.ForecastRun
	for _, run := range repo.runs {
		failed = run
	}
	if failed == nil {
		t.Fatal("failed run must still be recorded")
	}
	if failed.Status != domain.ForecastStatusFailed {
		t.Errorf("run status = %s, want FAILED", failed.Status)
	}
	if failed.FailureStage != domain.StageLoader {
		t.Errorf("failure stage = %q, want %q", failed.FailureStage, domain.StageLoader)
	}
	if failed.FailureReason == "" {
		t.Error("failure reason must be recorded")
	}
}

func TestRunForecastValidationFailure(t *testing.T) {
	source := &stubSource{series: historySeries(t, 100, 102, 101, 103, 104)}
	svc, repo, _, _ := newTestService(t, source)

	_, err := svc.RunForecast(context.Background(), RunForecastCommand{
		Symbol:     "AAPL",
		Horizon:    10,
		Iterations: 0,
		Seed:       1,
	})
	if !domain.IsEmptyResultError(err) {
		t.Fatalf("expected empty result error, got %v", err)
	}
	for _, run := range repo.runs {
		if run.FailureStage != domain.StageValidate {
			t.Errorf("failure stage = %q, want %q", run.FailureStage, domain.StageValidate)
		}
	}
}

func TestRunForecastUnknownSource(t *testing.T) {
	source := &stubSource{series: historySeries(t, 100, 102)}
	svc, repo, _, _ := newTestService(t, source)

	_, err := svc.RunForecast(context.Background(), RunForecastCommand{
		Symbol:     "AAPL",
		Source:     "ftp",
		Horizon:    5,
		Iterations: 10,
	})
	if err == nil {
		t.Fatal("expected an error for an unknown source")
	}
	if len(repo.runs) != 0 {
		t.Error("no run record should be created before source resolution")
	}
}

func TestRunForecastPublishFailureIsNotFatal(t *testing.T) {
	source := &stubSource{series: historySeries(t, 100, 102, 101, 103, 104)}
	repo := newMemRunRepository()
	publisher := &memPublisher{err: errors.New("broker down")}
	svc := NewForecastService(
		repo,
		map[string]domain.HistorySource{"csv": source},
		"csv",
		newMemReportCache(),
		publisher,
		nil,
		slog.Default(),
	)

	report, err := svc.RunForecast(context.Background(), RunForecastCommand{
		Symbol:     "AAPL",
		Horizon:    5,
		Iterations: 20,
		Seed:       3,
	})
	if err != nil {
		t.Fatalf("publish failures must not fail the run: %v", err)
	}
	run, _ := repo.Get(context.Background(), report.RunID)
	if run.Status != domain.ForecastStatusSucceeded {
		t.Errorf("run status = %s, want SUCCEEDED", run.Status)
	}
}

func TestGetReportAfterRun(t *testing.T) {
	source := &stubSource{series: historySeries(t, 100, 102, 101, 103, 104)}
	svc, _, _, _ := newTestService(t, source)

	report, err := svc.RunForecast(context.Background(), RunForecastCommand{
		Symbol:     "AAPL",
		Horizon:    5,
		Iterations: 50,
		Seed:       11,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cached, err := svc.GetReport(context.Background(), report.RunID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cached.AverageCase != report.AverageCase {
		t.Errorf("cached report differs: %+v vs %+v", cached.AverageCase, report.AverageCase)
	}
}

func TestGetReportMissing(t *testing.T) {
	source := &stubSource{series: historySeries(t, 100, 102)}
	svc, _, _, _ := newTestService(t, source)

	if _, err := svc.GetReport(context.Background(), "FC-unknown"); err == nil {
		t.Error("expected a not found error for an unknown report")
	}
}

func TestGetRunMissing(t *testing.T) {
	source := &stubSource{series: historySeries(t, 100, 102)}
	svc, _, _, _ := newTestService(t, source)

	if _, err := svc.GetRun(context.Background(), "FC-unknown"); err == nil {
		t.Error("expected a not found error for an unknown run")
	}
}

func TestFixedTwoDecimalRendering(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{92, "92.00"},
		{-8, "-8.00"},
		{109.5, "109.50"},
		{0.125, "0.13"},
	}
	for _, c := range cases {
		if got := fixed2(c.in); got != c.want {
			t.Errorf("fixed2(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}
