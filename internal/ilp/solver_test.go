package ilp

import (
	"testing"

	"wavepick/internal/wave"
)

func TestSolveTinyInstance(t *testing.T) {
	orders := []map[int]int{{0: 5}, {0: 6}}
	aisles := []map[int]int{{0: 10}, {0: 8}}
	in := wave.NewContext(orders, aisles, 1, 1, 10, 1)

	w := Solver{}.Solve(in, 5000)
	if len(w.Orders) == 0 || len(w.Aisles) == 0 {
		t.Fatalf("wave: %+v, want a non-empty solution", w)
	}
	if !wave.IsFeasible(in, w) {
		t.Fatalf("wave must be feasible: %+v", w)
	}
	// the optimum takes the 6-unit order alone from one aisle
	if w.TotalUnits != 6 {
		t.Fatalf("total: got %d, want 6", w.TotalUnits)
	}
	if len(w.Aisles) != 1 {
		t.Fatalf("aisles: got %v, want exactly one", w.Aisles)
	}
}

func TestSolveDegenerateBudgets(t *testing.T) {
	orders := []map[int]int{{0: 5}}
	aisles := []map[int]int{{0: 10}}
	in := wave.NewContext(orders, aisles, 1, 1, 10, 1)

	if w := (Solver{}).Solve(in, 0); len(w.Orders) != 0 {
		t.Fatalf("zero budget: %+v, want empty wave", w)
	}

	empty := wave.NewContext(nil, nil, 1, 0, 0, 1)
	if w := (Solver{}).Solve(empty, 1000); len(w.Orders) != 0 || len(w.Aisles) != 0 {
		t.Fatalf("empty instance: %+v, want empty wave", w)
	}
}

func TestSolveInfeasibleInstance(t *testing.T) {
	// LB is unreachable: total demand is 5, LB is 20
	orders := []map[int]int{{0: 5}}
	aisles := []map[int]int{{0: 10}}
	in := wave.NewContext(orders, aisles, 1, 20, 30, 1)

	if w := (Solver{}).Solve(in, 2000); len(w.Orders) != 0 {
		t.Fatalf("infeasible formulation: %+v, want empty wave", w)
	}
}
