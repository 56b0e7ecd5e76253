package wave

import "github.com/bits-and-blooms/bitset"

// Repair pushes an individual toward the feasible region in place. It does
// not chase local optimality: it trims orders above the upper bound, pads
// orders below the lower bound, guarantees at least one aisle, and extends
// the aisle set when the selected aisles cannot supply the demand. The
// penalized objective handles whatever infeasibility is left.
func Repair(ind *Individual) {
	in := ind.in
	orders, aisles := ind.Binary()
	totalUnits := recalcTotalUnits(orders, in)

	for totalUnits > in.WaveSizeUB() && orders.Count() > 0 {
		lowest, _ := orders.NextSet(0)
		orders.Clear(lowest)
		totalUnits = recalcTotalUnits(orders, in)
	}

	for totalUnits < in.WaveSizeLB() {
		candidate := randomClearIndex(orders, in.NOrders(), in.Rand())
		if candidate == -1 {
			break
		}
		orders.Set(uint(candidate))
		totalUnits = recalcTotalUnits(orders, in)
	}

	if aisles.Count() == 0 && in.NAisles() > 0 {
		aisles.Set(uint(in.Rand().Intn(in.NAisles())))
	}

	required := computeRequired(orders, in.Orders())
	available := computeRequired(aisles, in.Aisles())
	if AnyExceeds(required, available) {
		mode := CoverGreedy
		if in.Rand().Intn(2) == 0 {
			mode = CoverWeighted
		}
		for a := range SelectAisles(required, in, mode) {
			aisles.Set(uint(a))
		}
	}

	vectorFromBits(orders, ind.Orders)
	vectorFromBits(aisles, ind.Aisles)
}

func recalcTotalUnits(orders *bitset.BitSet, in *Context) int {
	total := 0
	for i, ok := orders.NextSet(0); ok; i, ok = orders.NextSet(i + 1) {
		total += in.OrderSum(int(i))
	}
	return total
}
