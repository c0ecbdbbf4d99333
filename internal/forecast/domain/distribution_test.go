package domain

import (
	"math"
	"testing"
)

func TestNormalInverseCDF(t *testing.T) {
	dist := NewNormalDistribution()

	q, err := dist.InverseCDF(0.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(q) > 1e-12 {
		t.Errorf("inverse CDF at 0.5 = %v, want 0", q)
	}

	hi, err := dist.InverseCDF(0.975)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(hi-1.959964) > 1e-5 {
		t.Errorf("inverse CDF at 0.975 = %v, want 1.959964", hi)
	}

	lo, err := dist.InverseCDF(0.025)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(lo+hi) > 1e-9 {
		t.Errorf("expected symmetry, got %v and %v", lo, hi)
	}
}

func TestInverseCDFRejectsOutOfDomain(t *testing.T) {
	studentT, err := NewStudentTDistribution(4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	dists := []Distribution{NewNormalDistribution(), studentT}

	for _, dist := range dists {
		for _, p := range []float64{0, 1, -0.5, 1.5} {
			if _, err := dist.InverseCDF(p); !IsProbabilityDomainError(err) {
				t.Errorf("expected probability domain error for p=%v, got %v", p, err)
			}
		}
	}
}

func TestStudentTHeavierTails(t *testing.T) {
	studentT, err := NewStudentTDistribution(5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	normal := NewNormalDistribution()

	tq, err := studentT.InverseCDF(0.99)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	nq, err := normal.InverseCDF(0.99)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tq <= nq {
		t.Errorf("student-t tail quantile %v should exceed normal %v", tq, nq)
	}
}

func TestParseDistribution(t *testing.T) {
	if d, err := ParseDistribution("", 0); err != nil {
		t.Errorf("empty name must default to normal, got %v", err)
	} else if _, ok := d.(*NormalDistribution); !ok {
		t.Errorf("empty name produced %T, want *NormalDistribution", d)
	}

	if d, err := ParseDistribution(DistributionStudentT, 0); err != nil {
		t.Errorf("student-t with zero dof must use the default, got %v", err)
	} else if _, ok := d.(*StudentTDistribution); !ok {
		t.Errorf("student-t produced %T", d)
	}

	if _, err := ParseDistribution("cauchy", 0); err == nil {
		t.Errorf("expected error for unsupported distribution")
	}
	if _, err := NewStudentTDistribution(-1); err == nil {
		t.Errorf("expected error for negative degrees of freedom")
	}
}
