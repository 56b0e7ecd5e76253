package wave

import (
	"math"

	"github.com/bits-and-blooms/bitset"
)

// penaltyLambda scales every infeasibility penalty in the fitness function.
const penaltyLambda = 1.0

// fitness is the penalized objective over a binarized individual: units
// picked per visited aisle, minus penalties for leaving the [LB, UB] band,
// for visiting no aisle at all, and for demand the selected aisles cannot
// supply. It is the only fitness used by the driver.
func fitness(orders, aisles *bitset.BitSet, in *Context) float64 {
	totalUnits := 0
	for i, ok := orders.NextSet(0); ok; i, ok = orders.NextSet(i + 1) {
		totalUnits += in.OrderSum(int(i))
	}

	nAisles := int(aisles.Count())
	base := 0.0
	if nAisles > 0 {
		base = float64(totalUnits) / float64(nAisles)
	}

	penalty := 0.0

	if totalUnits > in.WaveSizeUB() || totalUnits < in.WaveSizeLB() {
		mid := float64(in.WaveSizeUB()+in.WaveSizeLB()) / 2.0
		penalty += penaltyLambda * math.Abs(float64(totalUnits)-mid)
	}

	if nAisles == 0 {
		penalty += penaltyLambda * float64(totalUnits)
	}

	required := computeRequired(orders, in.Orders())
	available := computeRequired(aisles, in.Aisles())
	if AnyExceeds(required, available) {
		penalty += penaltyLambda * float64(totalUnits)
	}

	if penalty == 0 {
		return base
	}
	return base - penalty
}
