package wave

import "sort"

// Constructive order-first heuristics. Both walk a sorted order permutation
// once, greedily committing orders that keep the running wave admissible,
// and extending the aisle set only once the total reaches the lower bound.

// DecreasingTotal builds a wave by trying orders in decreasing order of
// their unit totals.
func DecreasingTotal(in *Context) Wave {
	indices := make([]int, in.NOrders())
	for i := range indices {
		indices[i] = i
	}
	sort.SliceStable(indices, func(i, j int) bool {
		return in.OrderSum(indices[i]) > in.OrderSum(indices[j])
	})
	return buildWave(in, indices)
}

// DecreasingEffort builds a wave by trying orders in decreasing order of
// units per aisle the order would cost, pre-estimated against a greedy
// coverage of the order alone.
func DecreasingEffort(in *Context) Wave {
	scores := make([]float64, in.NOrders())
	for i := 0; i < in.NOrders(); i++ {
		cost := len(SelectAisles(in.Order(i), in, CoverGreedy))
		scores[i] = float64(in.OrderSum(i)) / float64(cost)
	}
	indices := make([]int, in.NOrders())
	for i := range indices {
		indices[i] = i
	}
	sort.SliceStable(indices, func(i, j int) bool {
		return scores[indices[i]] > scores[indices[j]]
	})
	return buildWave(in, indices)
}

// buildWave applies the shared single-pass acceptance rule. The pool of
// aisles considered for coverage extensions shrinks as commits consume
// aisles; orders committed while the total is still below the lower bound
// deliberately leave the aisle set untouched.
func buildWave(in *Context, indices []int) Wave {
	pool := make(map[int]bool, in.NAisles())
	for a := 0; a < in.NAisles(); a++ {
		pool[a] = true
	}

	best := EmptyWave()

	for _, i := range indices {
		if !in.ValidOrder(i) {
			continue
		}

		newTotal := best.TotalUnits + in.OrderSum(i)
		if newTotal > in.WaveSizeUB() {
			continue
		}

		ordersNew := copyIntSet(best.Orders)
		aislesNew := copyIntSet(best.Aisles)
		pickedNew := mergeMap(best.UnitsPicked, in.Order(i))
		availableNew := copyIntMap(best.UnitsAvailable)
		ordersNew[i] = true

		if newTotal < in.WaveSizeLB() {
			if !AnyExceeds(pickedNew, in.Stock()) {
				best = Wave{Orders: ordersNew, Aisles: aislesNew, UnitsPicked: pickedNew, UnitsAvailable: availableNew, TotalUnits: newTotal}
			}
			continue
		}

		deficit := removeMap(pickedNew, availableNew)
		change := len(deficit) == 0

		if !change {
			covering := map[int]bool{}
			covered := true
			for _, item := range sortedKeys(deficit) {
				got := in.Matrix().CoverRow(item, pool, deficit[item], true)
				if got == nil {
					covered = false
					break
				}
				for _, a := range got {
					covering[a] = true
				}
			}
			if covered {
				change = true
				for _, a := range sortedSet(covering) {
					aislesNew[a] = true
					availableNew = mergeMap(availableNew, in.Aisle(a))
				}
			}
		}

		if change {
			best = Wave{Orders: ordersNew, Aisles: aislesNew, UnitsPicked: pickedNew, UnitsAvailable: availableNew, TotalUnits: newTotal}
			for a := range aislesNew {
				delete(pool, a)
			}
		}
	}

	return best
}

func sortedSet(s map[int]bool) []int {
	keys := make([]int, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
