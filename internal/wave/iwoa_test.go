package wave

import (
	"testing"
	"time"
)

// stubSeed returns a fixed wave from the seed port.
type stubSeed struct{ w Wave }

func (s stubSeed) Solve(*Context, int64) Wave { return s.w }

// budgetStopwatch backdates a stopwatch so that only budgetMs of the
// runtime wall remains.
func budgetStopwatch(budgetMs int64) *Stopwatch {
	sw := NewStopwatch()
	sw.Start = sw.Start.Add(-time.Duration(MaxRuntime-budgetMs) * time.Millisecond)
	return sw
}

func TestIWOASingleOrderInstance(t *testing.T) {
	orders := []map[int]int{{0: 5}}
	aisles := []map[int]int{{0: 10}}
	in := NewContext(orders, aisles, 1, 1, 10, 1)

	driver := NewIWOA(in, NoSeed{})
	w, st := driver.Solve(budgetStopwatch(300))

	if !w.Orders[0] || !w.Aisles[0] {
		t.Fatalf("wave: %+v, want order 0 and aisle 0", w)
	}
	if w.TotalUnits != 5 || w.UnitsPicked[0] != 5 || w.UnitsAvailable[0] != 10 {
		t.Fatalf("aggregates: %+v", w)
	}
	if !IsFeasible(in, w) {
		t.Fatal("wave must be feasible")
	}
	if got := w.ObjectiveValue(); got != 5.0 {
		t.Fatalf("objective: got %v, want 5.0", got)
	}
	if st.BestFitness != 5.0 {
		t.Fatalf("best fitness: got %v, want 5.0", st.BestFitness)
	}
}

func TestIWOAUsesSeedWave(t *testing.T) {
	orders := []map[int]int{{0: 5}}
	aisles := []map[int]int{{0: 10}}
	in := NewContext(orders, aisles, 1, 1, 10, 1)

	seedWave := NewWave(in, map[int]bool{0: true}, map[int]bool{0: true})
	driver := NewIWOA(in, stubSeed{w: seedWave})
	driver.MaxGenerations = 1
	w, _ := driver.Solve(budgetStopwatch(1000))
	if !IsFeasible(in, w) {
		t.Fatalf("seeded solve must stay feasible, got %+v", w)
	}
}

func TestIWOALeaderMonotonic(t *testing.T) {
	orders := []map[int]int{{0: 2}, {1: 3}, {0: 1, 1: 1}, {2: 4}}
	aisles := []map[int]int{{0: 3, 1: 2}, {1: 4, 2: 4}, {2: 2}}
	in := NewContext(orders, aisles, 3, 2, 8, 5)

	driver := NewIWOA(in, NoSeed{})
	last := -1.0
	first := true
	driver.OnGeneration = func(_ int, best float64) {
		if !first && best < last {
			t.Fatalf("best fitness regressed: %v -> %v", last, best)
		}
		last = best
		first = false
	}
	driver.Solve(budgetStopwatch(200))
	if first {
		t.Fatal("no generation ran within the budget")
	}
}

func TestIWOADeterministicWithSeed(t *testing.T) {
	orders := []map[int]int{{0: 1}, {1: 2}, {0: 1, 1: 1}, {1: 1}}
	aisles := []map[int]int{{0: 2, 1: 2}, {1: 3}, {0: 1}, {1: 1}}

	run := func() (Wave, Stats) {
		in := NewContext(orders, aisles, 2, 1, 4, 99)
		driver := NewIWOA(in, NoSeed{})
		driver.PopulationSize = 2
		driver.MaxGenerations = 25
		// manual clock: one millisecond per reading, fully reproducible
		base := time.Unix(0, 0)
		tick := 0
		sw := &Stopwatch{Start: base, Now: func() time.Time {
			tick++
			return base.Add(time.Duration(tick) * time.Millisecond)
		}}
		return driver.Solve(sw)
	}

	w1, st1 := run()
	w2, st2 := run()
	if st1.Generations != 25 || st2.Generations != 25 {
		t.Fatalf("generation cap: got %d and %d, want 25", st1.Generations, st2.Generations)
	}
	if st1.BestFitness != st2.BestFitness || st1.Evaluations != st2.Evaluations || st1.Improvements != st2.Improvements {
		t.Fatalf("runs diverged: %+v vs %+v", st1, st2)
	}
	if len(w1.Orders) != len(w2.Orders) || len(w1.Aisles) != len(w2.Aisles) || w1.TotalUnits != w2.TotalUnits {
		t.Fatalf("waves diverged: %+v vs %+v", w1, w2)
	}
	for o := range w1.Orders {
		if !w2.Orders[o] {
			t.Fatalf("order sets diverged: %v vs %v", w1.Orders, w2.Orders)
		}
	}
	for a := range w1.Aisles {
		if !w2.Aisles[a] {
			t.Fatalf("aisle sets diverged: %v vs %v", w1.Aisles, w2.Aisles)
		}
	}
}

func TestIWOAEmptyOrders(t *testing.T) {
	in := NewContext(nil, []map[int]int{{0: 5}}, 1, 0, 0, 1)

	driver := NewIWOA(in, NoSeed{})
	start := time.Now()
	w, _ := driver.Solve(budgetStopwatch(100))
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Fatalf("degenerate solve took %v", elapsed)
	}
	if len(w.Orders) != 0 {
		t.Fatalf("orders: got %v, want empty", w.Orders)
	}
	if IsFeasible(in, w) {
		t.Fatal("empty wave cannot be feasible")
	}
}

func TestIWOARespectsBudget(t *testing.T) {
	orders := []map[int]int{{0: 1}, {0: 2}}
	aisles := []map[int]int{{0: 4}}
	in := NewContext(orders, aisles, 1, 1, 3, 1)

	driver := NewIWOA(in, NoSeed{})
	start := time.Now()
	driver.Solve(budgetStopwatch(150))
	if elapsed := time.Since(start); elapsed > 3*time.Second {
		t.Fatalf("solve overran its 150ms budget: %v", elapsed)
	}
}
