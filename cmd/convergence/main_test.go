package main

import (
	"math"
	"testing"
)

func TestStudyFollowsEigenvalue(t *testing.T) {
	rows, err := study(32, 4, 50)
	if err != nil {
		t.Fatalf("study: %v", err)
	}
	if len(rows) != 51 {
		t.Fatalf("rows = %d, want 51", len(rows))
	}
	for _, r := range rows[1:] {
		if rel := math.Abs(r.Residual-r.Predicted) / r.Predicted; rel > 1e-2 {
			t.Fatalf("iteration %d: residual %g, predicted %g", r.Iteration, r.Residual, r.Predicted)
		}
	}

	lambda := eigenvalue(32, 4)
	if got := rows[10].Ratio; math.Abs(got-lambda) > 1e-3 {
		t.Errorf("ratio at iteration 10 = %g, want %g", got, lambda)
	}
}

func TestStudyRejectsBadResolution(t *testing.T) {
	if _, err := study(0, 1, 10); err == nil {
		t.Error("study(res=0) should fail")
	}
}
