package wave

import (
	"math/rand"

	"github.com/bits-and-blooms/bitset"
)

// Bridges between packed bitsets and the continuous position vectors of an
// Individual. The binarization threshold is 0.5 everywhere.

const binarizeThreshold = 0.5

func bitsFromVector(v []float64) *bitset.BitSet {
	b := bitset.New(uint(len(v)))
	for i, x := range v {
		if x >= binarizeThreshold {
			b.Set(uint(i))
		}
	}
	return b
}

// vectorFromBits overwrites v in place with 1.0 for set bits and 0.0
// otherwise.
func vectorFromBits(b *bitset.BitSet, v []float64) {
	for i := range v {
		if b.Test(uint(i)) {
			v[i] = 1.0
		} else {
			v[i] = 0.0
		}
	}
}

func bitsToSet(b *bitset.BitSet) map[int]bool {
	set := map[int]bool{}
	for i, ok := b.NextSet(0); ok; i, ok = b.NextSet(i + 1) {
		set[int(i)] = true
	}
	return set
}

// randomClearIndex picks a uniformly random clear bit below size, or -1
// when every bit is set.
func randomClearIndex(b *bitset.BitSet, size int, rng *rand.Rand) int {
	free := size - int(b.Count())
	if free <= 0 {
		return -1
	}
	target := rng.Intn(free)
	count := 0
	for i, ok := b.NextClear(0); ok && int(i) < size; i, ok = b.NextClear(i + 1) {
		if count == target {
			return int(i)
		}
		count++
	}
	return -1
}

// computeRequired sums the item maps selected by the set bits.
func computeRequired(bits *bitset.BitSet, maps []map[int]int) map[int]int {
	required := map[int]int{}
	for i, ok := bits.NextSet(0); ok; i, ok = bits.NextSet(i + 1) {
		mergeMapInPlace(required, maps[i])
	}
	return required
}
