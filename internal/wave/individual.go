package wave

import "github.com/bits-and-blooms/bitset"

// Individual is one population member: two continuous position vectors in
// [0,1], one coordinate per order and per aisle. Thresholding at 0.5 yields
// the binary wave it encodes.
type Individual struct {
	in     *Context
	Orders []float64
	Aisles []float64
}

func NewIndividual(in *Context) *Individual {
	return &Individual{
		in:     in,
		Orders: make([]float64, in.NOrders()),
		Aisles: make([]float64, in.NAisles()),
	}
}

// NewRandomIndividual draws every coordinate uniformly from [0,1).
func NewRandomIndividual(in *Context) *Individual {
	ind := NewIndividual(in)
	for i := range ind.Orders {
		ind.Orders[i] = in.Rand().Float64()
	}
	for i := range ind.Aisles {
		ind.Aisles[i] = in.Rand().Float64()
	}
	return ind
}

// NewSeededIndividual places 1.0 at the wave's selected indices and 0.0
// elsewhere.
func NewSeededIndividual(in *Context, w Wave) *Individual {
	ind := NewIndividual(in)
	for o := range w.Orders {
		ind.Orders[o] = 1.0
	}
	for a := range w.Aisles {
		ind.Aisles[a] = 1.0
	}
	return ind
}

// Binary returns the thresholded order and aisle bitsets.
func (ind *Individual) Binary() (orders, aisles *bitset.BitSet) {
	return bitsFromVector(ind.Orders), bitsFromVector(ind.Aisles)
}

// Evaluate scores the individual with the penalized objective.
func (ind *Individual) Evaluate() float64 {
	orders, aisles := ind.Binary()
	return fitness(orders, aisles, ind.in)
}

// Clip clamps every coordinate to [0,1].
func (ind *Individual) Clip() {
	clip01(ind.Orders)
	clip01(ind.Aisles)
}

func clip01(v []float64) {
	for i, x := range v {
		if x < 0 {
			v[i] = 0
		} else if x > 1 {
			v[i] = 1
		}
	}
}

// ToWave decodes the individual into a Wave with derived aggregates.
func (ind *Individual) ToWave() Wave {
	orders, aisles := ind.Binary()
	return NewWave(ind.in, bitsToSet(orders), bitsToSet(aisles))
}

// Clone returns an individual with independent position arrays.
func (ind *Individual) Clone() *Individual {
	cloned := NewIndividual(ind.in)
	copy(cloned.Orders, ind.Orders)
	copy(cloned.Aisles, ind.Aisles)
	return cloned
}
