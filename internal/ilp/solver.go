// Package ilp seeds the population optimizer with the solution of an exact
// pseudo-Boolean formulation of the wave selection problem.
package ilp

import (
	"time"

	"github.com/crillab/gophersat/solver"

	"wavepick/internal/wave"
)

// costScale converts the fractional aisle tiebreak (1e-3 per aisle against
// one unit picked) into integer costs: not picking an order costs
// 1000 x its units, visiting an aisle costs 1.
const costScale = 1000

// Solver implements wave.SeedSolver on top of the gophersat pseudo-Boolean
// optimizer. The wave MILP is integral and binary, so it maps directly onto
// PB constraints:
//
//	LB <= sum s_o*x_o <= UB
//	per item i: sum u_oi*x_o - sum v_ai*y_a <= 0
//
// minimizing sum costScale*s_o*(1-x_o) + sum y_a, which is equivalent to
// maximizing sum s_o*x_o - 1e-3 * sum y_a.
type Solver struct{}

// Solve runs the optimizer for at most budgetMillis and decodes the best
// model found into a wave. Timeout with no model, an exhausted budget, or
// an unsatisfiable formulation all yield an empty wave.
func (Solver) Solve(in *wave.Context, budgetMillis int64) wave.Wave {
	nOrders, nAisles := in.NOrders(), in.NAisles()
	if budgetMillis <= 0 || nOrders == 0 || nAisles == 0 {
		return wave.EmptyWave()
	}

	// DIMACS-style variable numbering: orders 1..nOrders, aisles after.
	orderVar := func(o int) int { return o + 1 }
	aisleVar := func(a int) int { return nOrders + a + 1 }

	var constrs []solver.PBConstr

	orderLits := make([]int, nOrders)
	orderWeights := make([]int, nOrders)
	for o := 0; o < nOrders; o++ {
		orderLits[o] = orderVar(o)
		orderWeights[o] = in.OrderSum(o)
	}
	constrs = append(constrs, solver.GtEq(append([]int(nil), orderLits...), append([]int(nil), orderWeights...), in.WaveSizeLB()))
	constrs = append(constrs, solver.LtEq(append([]int(nil), orderLits...), append([]int(nil), orderWeights...), in.WaveSizeUB()))

	// sum u_oi*x_o + sum v_ai*(1-y_a) <= sum v_ai, with (1-y_a) as the
	// negated literal.
	for i := 0; i < in.NItems(); i++ {
		var lits, weights []int
		bound := 0
		for o := 0; o < nOrders; o++ {
			if q := in.Order(o)[i]; q > 0 {
				lits = append(lits, orderVar(o))
				weights = append(weights, q)
			}
		}
		if len(lits) == 0 {
			continue
		}
		for a := 0; a < nAisles; a++ {
			if q := in.Aisle(a)[i]; q > 0 {
				lits = append(lits, -aisleVar(a))
				weights = append(weights, q)
				bound += q
			}
		}
		constrs = append(constrs, solver.LtEq(lits, weights, bound))
	}

	pb := solver.ParsePBConstrs(constrs)
	if pb.NbVars < nOrders+nAisles {
		pb.NbVars = nOrders + nAisles
	}

	costLits := make([]solver.Lit, 0, nOrders+nAisles)
	costWeights := make([]int, 0, nOrders+nAisles)
	for o := 0; o < nOrders; o++ {
		costLits = append(costLits, solver.IntToLit(int32(-orderVar(o))))
		costWeights = append(costWeights, costScale*in.OrderSum(o))
	}
	for a := 0; a < nAisles; a++ {
		costLits = append(costLits, solver.IntToLit(int32(aisleVar(a))))
		costWeights = append(costWeights, 1)
	}
	pb.SetCostFunc(costLits, costWeights)

	s := solver.New(pb)
	s.Verbose = false

	results := make(chan solver.Result)
	stop := make(chan struct{})
	go func() {
		s.Optimal(results, stop)
	}()

	timer := time.NewTimer(time.Duration(budgetMillis) * time.Millisecond)
	defer timer.Stop()

	var model []bool
	keep := func(res solver.Result) {
		if res.Status == solver.Sat && len(res.Model) > 0 {
			model = append(model[:0], res.Model...)
		}
	}
loop:
	for {
		select {
		case res, ok := <-results:
			if !ok {
				break loop
			}
			keep(res)
		case <-timer.C:
			close(stop)
			for res := range results {
				keep(res)
			}
			break loop
		}
	}

	if model == nil {
		return wave.EmptyWave()
	}

	orders := map[int]bool{}
	for o := 0; o < nOrders; o++ {
		if model[orderVar(o)-1] {
			orders[o] = true
		}
	}
	aisles := map[int]bool{}
	for a := 0; a < nAisles; a++ {
		if model[aisleVar(a)-1] {
			aisles[a] = true
		}
	}
	return wave.NewWave(in, orders, aisles)
}
